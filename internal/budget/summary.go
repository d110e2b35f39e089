package budget

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"envelope/internal/core"
)

// Summary builds the plan overview: cash, assigned, ready to assign and
// every group with its categories in display order.
func Summary(s Snapshot, today time.Time) core.PlanOverview {
	overview := core.PlanOverview{
		TotalCash:     TotalCash(s),
		TotalAssigned: TotalAssigned(s),
		ReadyToAssign: ReadyToAssign(s),
	}
	for _, g := range OrderedGroups(s) {
		line := core.GroupLine{
			Group:     g,
			Budgeted:  decimal.Zero,
			Available: decimal.Zero,
		}
		for _, c := range CategoriesInGroup(s, g.ID) {
			cl := core.CategoryLine{
				Category:  c,
				Spending:  CategorySpending(s, c.ID),
				Available: CategoryAvailable(s, c.ID),
			}
			if t, ok := s.TargetFor(c.ID); ok {
				cl.TargetText = TargetProgressText(t, c.Budgeted, today)
			}
			line.Budgeted = line.Budgeted.Add(c.Budgeted)
			line.Available = line.Available.Add(cl.Available)
			line.Categories = append(line.Categories, cl)
		}
		overview.Groups = append(overview.Groups, line)
	}
	return overview
}

// AccountActivity groups the transactions of an account by calendar day,
// newest day first. Within a day the recording order is kept.
func AccountActivity(s Snapshot, accountID string) []core.DayActivity {
	byDay := make(map[time.Time][]core.Transaction)
	for _, tx := range s.Transactions {
		if tx.AccountID != accountID {
			continue
		}
		y, m, d := tx.Date.Date()
		day := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
		byDay[day] = append(byDay[day], tx)
	}

	days := make([]core.DayActivity, 0, len(byDay))
	for day, txs := range byDay {
		days = append(days, core.DayActivity{Day: day, Transactions: txs})
	}
	sort.Slice(days, func(i, j int) bool {
		return days[i].Day.After(days[j].Day)
	})
	return days
}

// AccountTypeLabel is the display name of an account type.
func AccountTypeLabel(t core.AccountType) string {
	switch t {
	case core.Checking:
		return "Checking"
	case core.Savings:
		return "Savings"
	case core.CreditCard:
		return "Credit Card"
	default:
		return string(t)
	}
}
