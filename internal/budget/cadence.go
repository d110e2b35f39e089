package budget

import (
	"fmt"
	"time"

	"envelope/internal/core"
)

// Cadence computes the next due date of a target. Each frequency has its own
// implementation, looked up through the registry below.
type Cadence interface {
	// NextDue returns the first due date on or after today.
	NextDue(t core.Target, today time.Time) (time.Time, error)
}

// MonthlyCadence is due on DueDay of every month. Days past the end of a
// short month fall on its last day.
type MonthlyCadence struct{}

func (MonthlyCadence) NextDue(t core.Target, today time.Time) (time.Time, error) {
	if t.DueDay == nil || *t.DueDay < 1 || *t.DueDay > 31 {
		return time.Time{}, core.ErrInvalidDueDay
	}
	day := *t.DueDay
	y, m, d := today.Date()
	if d <= clampDay(y, m, day) {
		return time.Date(y, m, clampDay(y, m, day), 0, 0, 0, 0, time.UTC), nil
	}
	next := time.Date(y, m+1, 1, 0, 0, 0, 0, time.UTC)
	return time.Date(next.Year(), next.Month(), clampDay(next.Year(), next.Month(), day), 0, 0, 0, 0, time.UTC), nil
}

// WeeklyCadence is due on a weekday, 1=Monday through 7=Sunday.
type WeeklyCadence struct{}

func (WeeklyCadence) NextDue(t core.Target, today time.Time) (time.Time, error) {
	if t.DueDay == nil || *t.DueDay < 1 || *t.DueDay > 7 {
		return time.Time{}, core.ErrInvalidDueDay
	}
	want := time.Weekday(*t.DueDay % 7)
	diff := (int(want) - int(today.Weekday()) + 7) % 7
	y, m, d := today.Date()
	return time.Date(y, m, d+diff, 0, 0, 0, 0, time.UTC), nil
}

// CustomCadence is due once, on DueDate.
type CustomCadence struct{}

func (CustomCadence) NextDue(t core.Target, _ time.Time) (time.Time, error) {
	return core.ParseDueDate(t.DueDate)
}

var cadences = map[core.Frequency]Cadence{
	core.Monthly: MonthlyCadence{},
	core.Weekly:  WeeklyCadence{},
	core.Custom:  CustomCadence{},
}

// CadenceFor returns the cadence registered for a frequency.
func CadenceFor(f core.Frequency) (Cadence, error) {
	c, ok := cadences[f]
	if !ok {
		return nil, fmt.Errorf("unknown frequency: %s", f)
	}
	return c, nil
}

// RegisterCadence adds or replaces the cadence of a frequency.
func RegisterCadence(f core.Frequency, c Cadence) {
	cadences[f] = c
}

// NextDue returns the next due date of the target.
func NextDue(t core.Target, today time.Time) (time.Time, error) {
	c, err := CadenceFor(t.Frequency)
	if err != nil {
		return time.Time{}, err
	}
	return c.NextDue(t, today)
}

func clampDay(year int, month time.Month, day int) int {
	last := time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
	if day > last {
		return last
	}
	return day
}
