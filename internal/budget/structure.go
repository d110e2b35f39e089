package budget

import (
	"fmt"

	"envelope/internal/core"
)

// OrderKind tells whether an OrderItem names a group or a category.
type OrderKind string

const (
	OrderGroup    OrderKind = "group"
	OrderCategory OrderKind = "category"
)

// OrderItem is one row of a flattened plan listing.
type OrderItem struct {
	Kind OrderKind `json:"kind"`
	ID   string    `json:"id"`
}

// AddGroup appends a category group. A zero Order places it last.
func (e Engine) AddGroup(s Snapshot, g core.CategoryGroup) (Snapshot, error) {
	if err := g.Validate(); err != nil {
		return s, invalid(KindGroup, err)
	}
	if s.groupIndex(g.ID) >= 0 {
		return s, duplicate(KindGroup, g.ID)
	}
	next := s.Clone()
	if g.Order == 0 {
		g.Order = maxGroupOrder(next.Groups) + 1
	}
	next.Groups = append(next.Groups, g)
	return next, nil
}

func (e Engine) RenameGroup(s Snapshot, groupID, name string) (Snapshot, error) {
	i := s.groupIndex(groupID)
	if i < 0 {
		return s, unknown(KindGroup, groupID)
	}
	renamed := s.Groups[i]
	renamed.Name = name
	if err := renamed.Validate(); err != nil {
		return s, invalid(KindGroup, err)
	}
	next := s.Clone()
	next.Groups[i] = renamed
	return next, nil
}

// DeleteGroup removes a group with all of its categories and their targets.
// The credit card payment group stays while any credit card exists.
func (e Engine) DeleteGroup(s Snapshot, groupID string) (Snapshot, error) {
	i := s.groupIndex(groupID)
	if i < 0 {
		return s, unknown(KindGroup, groupID)
	}
	if groupID == core.CreditCardPaymentsGroupID {
		for _, a := range s.Accounts {
			if a.Type == core.CreditCard {
				return s, invalid(KindGroup, ErrReservedGroup)
			}
		}
	}

	next := s.Clone()
	next.Groups = append(next.Groups[:i], next.Groups[i+1:]...)
	doomed := make(map[string]bool)
	for _, c := range next.Categories {
		if c.GroupID == groupID {
			doomed[c.ID] = true
		}
	}
	return removeCategories(next, doomed), nil
}

// AddCategory appends a category to an existing group.
func (e Engine) AddCategory(s Snapshot, c core.Category) (Snapshot, error) {
	if err := c.Validate(); err != nil {
		return s, invalid(KindCategory, err)
	}
	if core.IsPaymentCategoryID(c.ID) {
		return s, invalid(KindCategory, ErrReservedID)
	}
	if c.Budgeted.IsNegative() {
		return s, invalid(KindCategory, core.ErrInvalidAmount)
	}
	if s.categoryIndex(c.ID) >= 0 {
		return s, duplicate(KindCategory, c.ID)
	}
	if s.groupIndex(c.GroupID) < 0 {
		return s, unknown(KindGroup, c.GroupID)
	}
	next := s.Clone()
	next.Categories = append(next.Categories, c)
	return next, nil
}

func (e Engine) RenameCategory(s Snapshot, categoryID, name string) (Snapshot, error) {
	i := s.categoryIndex(categoryID)
	if i < 0 {
		return s, unknown(KindCategory, categoryID)
	}
	renamed := s.Categories[i]
	renamed.Name = name
	if err := renamed.Validate(); err != nil {
		return s, invalid(KindCategory, err)
	}
	next := s.Clone()
	next.Categories[i].Name = name
	return next, nil
}

// DeleteCategory removes a user category and its target.
func (e Engine) DeleteCategory(s Snapshot, categoryID string) (Snapshot, error) {
	if core.IsPaymentCategoryID(categoryID) {
		return s, invalid(KindCategory, ErrPaymentCategoryDelete)
	}
	if s.categoryIndex(categoryID) < 0 {
		return s, unknown(KindCategory, categoryID)
	}
	return removeCategories(s.Clone(), map[string]bool{categoryID: true}), nil
}

// Reorder applies a complete display order. Groups are numbered by their
// position among groups and categories by their position within their own
// group, both starting at 1. Categories never change group.
func (e Engine) Reorder(s Snapshot, items []OrderItem) (Snapshot, error) {
	next := s.Clone()
	seenGroups := make(map[string]bool)
	seenCats := make(map[string]bool)
	groupPos := 0
	catPos := make(map[string]int)

	for _, item := range items {
		switch item.Kind {
		case OrderGroup:
			i := next.groupIndex(item.ID)
			if i < 0 {
				return s, unknown(KindGroup, item.ID)
			}
			if seenGroups[item.ID] {
				return s, duplicate(KindGroup, item.ID)
			}
			seenGroups[item.ID] = true
			groupPos++
			next.Groups[i].Order = groupPos
		case OrderCategory:
			i := next.categoryIndex(item.ID)
			if i < 0 {
				return s, unknown(KindCategory, item.ID)
			}
			if seenCats[item.ID] {
				return s, duplicate(KindCategory, item.ID)
			}
			seenCats[item.ID] = true
			gid := next.Categories[i].GroupID
			catPos[gid]++
			pos := catPos[gid]
			next.Categories[i].Order = &pos
		default:
			return s, invalid("order", fmt.Errorf("unknown item kind %q", item.Kind))
		}
	}

	if len(seenGroups) != len(next.Groups) || len(seenCats) != len(next.Categories) {
		return s, invalid("order", ErrIncompleteOrder)
	}
	return next, nil
}
