package budget

import (
	"fmt"

	"github.com/shopspring/decimal"

	"envelope/internal/core"
)

// AssignMoney replaces the budgeted amount of a category. Negative amounts
// are clamped to zero.
func (e Engine) AssignMoney(s Snapshot, categoryID string, amount decimal.Decimal) (Snapshot, error) {
	i := s.categoryIndex(categoryID)
	if i < 0 {
		return s, unknown(KindCategory, categoryID)
	}
	if amount.IsNegative() {
		amount = decimal.Zero
	}
	next := s.Clone()
	next.Categories[i].Budgeted = amount
	return next, nil
}

// AdjustMoney adds delta to the budgeted amount, clamping the result at zero.
func (e Engine) AdjustMoney(s Snapshot, categoryID string, delta decimal.Decimal) (Snapshot, error) {
	i := s.categoryIndex(categoryID)
	if i < 0 {
		return s, unknown(KindCategory, categoryID)
	}
	return e.AssignMoney(s, categoryID, s.Categories[i].Budgeted.Add(delta))
}

// MoveMoney moves budget from one category to another. Only what the source
// actually holds is moved; the amount moved is returned.
func (e Engine) MoveMoney(s Snapshot, fromID, toID string, amount decimal.Decimal) (Snapshot, decimal.Decimal, error) {
	if !amount.IsPositive() {
		return s, decimal.Zero, invalid(KindCategory, core.ErrInvalidAmount)
	}
	if fromID == toID {
		return s, decimal.Zero, invalid(KindCategory, ErrSameCategory)
	}
	fi := s.categoryIndex(fromID)
	if fi < 0 {
		return s, decimal.Zero, unknown(KindCategory, fromID)
	}
	ti := s.categoryIndex(toID)
	if ti < 0 {
		return s, decimal.Zero, unknown(KindCategory, toID)
	}

	held := decimal.Max(s.Categories[fi].Budgeted, decimal.Zero)
	moved := decimal.Min(amount, held)

	next := s.Clone()
	next.Categories[fi].Budgeted = next.Categories[fi].Budgeted.Sub(moved)
	next.Categories[ti].Budgeted = next.Categories[ti].Budgeted.Add(moved)
	return next, moved, nil
}

// UpsertTarget creates or replaces the target of a category. The existing
// target id is kept when spec carries none.
func (e Engine) UpsertTarget(s Snapshot, categoryID string, spec core.Target) (Snapshot, error) {
	if s.categoryIndex(categoryID) < 0 {
		return s, unknown(KindCategory, categoryID)
	}
	if core.IsPaymentCategoryID(categoryID) {
		return s, invalid(KindTarget, ErrPaymentCategoryTarget)
	}
	spec.CategoryID = categoryID

	existing := s.targetIndex(categoryID)
	if spec.ID == "" && existing >= 0 {
		spec.ID = s.Targets[existing].ID
	}
	if err := spec.Validate(); err != nil {
		return s, invalid(KindTarget, err)
	}

	next := s.Clone()
	if existing < 0 {
		next.Targets = append(next.Targets, spec)
		return next, nil
	}
	targets := next.Targets[:0]
	for i, t := range next.Targets {
		switch {
		case i == existing:
			targets = append(targets, spec)
		case t.CategoryID == categoryID:
			// stale duplicate
		default:
			targets = append(targets, t)
		}
	}
	next.Targets = targets
	return next, nil
}

// DeleteTarget removes the target of a category.
func (e Engine) DeleteTarget(s Snapshot, categoryID string) (Snapshot, error) {
	if s.targetIndex(categoryID) < 0 {
		return s, unknown(KindTarget, categoryID)
	}
	next := s.Clone()
	targets := next.Targets[:0]
	for _, t := range next.Targets {
		if t.CategoryID != categoryID {
			targets = append(targets, t)
		}
	}
	next.Targets = targets
	return next, nil
}

func duplicate(entity, id string) error {
	return invalid(entity, fmt.Errorf("%w: %s", ErrDuplicateID, id))
}
