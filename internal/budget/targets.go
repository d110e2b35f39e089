package budget

import (
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"envelope/internal/core"
)

// TargetRemaining is how much is still missing to fund the target, never negative.
func TargetRemaining(t core.Target, budgeted decimal.Decimal) decimal.Decimal {
	remaining := t.TargetAmount.Sub(budgeted)
	if remaining.IsNegative() {
		return decimal.Zero
	}
	return remaining
}

// TargetProgressText renders the one-line funding status shown under a
// category, relative to today.
func TargetProgressText(t core.Target, budgeted decimal.Decimal, today time.Time) string {
	remaining := TargetRemaining(t, budgeted)
	if remaining.IsZero() {
		return "Funded"
	}
	amount := core.FormatAmount(remaining)

	switch t.Frequency {
	case core.Monthly:
		day := 1
		if t.DueDay != nil {
			day = *t.DueDay
		}
		return fmt.Sprintf("%s more needed by the %s", amount, ordinal(day))
	case core.Weekly:
		day := 1
		if t.DueDay != nil {
			day = *t.DueDay
		}
		return fmt.Sprintf("%s more needed by %s", amount, weekdayName(day))
	case core.Custom:
		due, err := core.ParseDueDate(t.DueDate)
		if err != nil {
			return fmt.Sprintf("%s more needed by %s", amount, t.DueDate)
		}
		months := monthsRemaining(today, due)
		switch {
		case months <= 0:
			return fmt.Sprintf("%s overdue (was due %s)", amount, due.Format("01/02/2006"))
		case months == 1:
			return fmt.Sprintf("%s more needed this month", amount)
		default:
			perMonth := remaining.DivRound(decimal.NewFromInt(int64(months)), 2)
			return fmt.Sprintf("%s needed this month (%s by %s)",
				core.FormatAmount(perMonth), amount, due.Format("01/02/2006"))
		}
	default:
		return fmt.Sprintf("%s more needed", amount)
	}
}

// monthsRemaining counts calendar months from today's month to the due month,
// both inclusive.
func monthsRemaining(today, due time.Time) int {
	return (due.Year()-today.Year())*12 + int(due.Month()) - int(today.Month()) + 1
}

func ordinal(day int) string {
	suffix := "th"
	switch {
	case day%100 >= 11 && day%100 <= 13:
	case day%10 == 1:
		suffix = "st"
	case day%10 == 2:
		suffix = "nd"
	case day%10 == 3:
		suffix = "rd"
	}
	return strconv.Itoa(day) + suffix
}

func weekdayName(day int) string {
	if day < 1 || day > 7 {
		day = 1
	}
	return time.Weekday(day % 7).String()
}
