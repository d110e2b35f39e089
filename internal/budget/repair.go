package budget

import (
	"fmt"

	"github.com/shopspring/decimal"

	"envelope/internal/core"
)

// DefaultGroups are seeded into a ledger that has no groups yet.
func DefaultGroups() []core.CategoryGroup {
	return []core.CategoryGroup{
		{ID: "needs", Name: "Needs", Order: 1},
		{ID: core.CreditCardPaymentsGroupID, Name: "Credit Card Payments", Order: 2},
		{ID: "wants", Name: "Wants", Order: 3},
		{ID: "savings", Name: "Savings", Order: 4},
	}
}

// Seed fills in the default groups when s has none.
func Seed(s Snapshot) Snapshot {
	if len(s.Groups) > 0 {
		return s
	}
	next := s.Clone()
	next.Groups = DefaultGroups()
	return next
}

// Repair restores invariants that persisted data may have lost: categories
// pointing at a missing group get a recovered group, every credit card gets
// its payment category back, and each category keeps only its newest target.
// Targets of vanished categories are dropped. The returned notes describe
// each repair.
func Repair(s Snapshot) (Snapshot, []string) {
	next := s.Clone()
	var notes []string

	for _, c := range next.Categories {
		if next.groupIndex(c.GroupID) >= 0 {
			continue
		}
		next.Groups = append(next.Groups, core.CategoryGroup{
			ID:    c.GroupID,
			Name:  "Recovered",
			Order: maxGroupOrder(next.Groups) + 1,
		})
		notes = append(notes, fmt.Sprintf("recreated missing group %s", c.GroupID))
	}

	for _, a := range next.Accounts {
		if a.Type != core.CreditCard {
			continue
		}
		paymentID := core.PaymentCategoryID(a.ID)
		if next.categoryIndex(paymentID) >= 0 {
			continue
		}
		ensurePaymentGroup(&next)
		next.Categories = append(next.Categories, core.Category{
			ID:       paymentID,
			Name:     a.Name,
			Budgeted: decimal.Zero,
			GroupID:  core.CreditCardPaymentsGroupID,
		})
		notes = append(notes, fmt.Sprintf("recreated payment category for account %s", a.ID))
	}

	newest := make(map[string]int)
	for i, t := range next.Targets {
		newest[t.CategoryID] = i
	}
	targets := make([]core.Target, 0, len(newest))
	for i, t := range next.Targets {
		switch {
		case next.categoryIndex(t.CategoryID) < 0:
			notes = append(notes, fmt.Sprintf("dropped target %s of missing category %s", t.ID, t.CategoryID))
		case core.IsPaymentCategoryID(t.CategoryID):
			notes = append(notes, fmt.Sprintf("dropped target %s of payment category %s", t.ID, t.CategoryID))
		case newest[t.CategoryID] != i:
			notes = append(notes, fmt.Sprintf("dropped duplicate target %s of category %s", t.ID, t.CategoryID))
		default:
			targets = append(targets, t)
		}
	}
	next.Targets = targets

	if len(notes) == 0 {
		return s, nil
	}
	return next, notes
}
