// Package budget is the allocation and consistency engine of the ledger.
//
// Derivations (balances, availability, ready to assign, target progress) are
// pure functions over a Snapshot. Mutations are methods on Engine that take a
// Snapshot and return a new one; on error the input is returned unchanged and
// nothing is partially applied.
package budget

import (
	"sort"

	"envelope/internal/core"
)

// Snapshot is the complete ledger state at one point in time.
type Snapshot struct {
	Accounts     []core.Account
	Groups       []core.CategoryGroup
	Categories   []core.Category
	Transactions []core.Transaction
	Targets      []core.Target
}

// Clone returns a deep copy; mutations work on clones so the caller's
// snapshot is never aliased.
func (s Snapshot) Clone() Snapshot {
	out := Snapshot{
		Accounts:     append([]core.Account(nil), s.Accounts...),
		Groups:       append([]core.CategoryGroup(nil), s.Groups...),
		Categories:   append([]core.Category(nil), s.Categories...),
		Transactions: append([]core.Transaction(nil), s.Transactions...),
		Targets:      append([]core.Target(nil), s.Targets...),
	}
	for i, c := range out.Categories {
		if c.Order != nil {
			order := *c.Order
			out.Categories[i].Order = &order
		}
	}
	for i, t := range out.Targets {
		if t.DueDay != nil {
			day := *t.DueDay
			out.Targets[i].DueDay = &day
		}
	}
	return out
}

func (s Snapshot) accountIndex(id string) int {
	for i, a := range s.Accounts {
		if a.ID == id {
			return i
		}
	}
	return -1
}

func (s Snapshot) groupIndex(id string) int {
	for i, g := range s.Groups {
		if g.ID == id {
			return i
		}
	}
	return -1
}

func (s Snapshot) categoryIndex(id string) int {
	for i, c := range s.Categories {
		if c.ID == id {
			return i
		}
	}
	return -1
}

func (s Snapshot) targetIndex(categoryID string) int {
	for i, t := range s.Targets {
		if t.CategoryID == categoryID {
			return i
		}
	}
	return -1
}

// Account looks up an account by id.
func (s Snapshot) Account(id string) (core.Account, bool) {
	if i := s.accountIndex(id); i >= 0 {
		return s.Accounts[i], true
	}
	return core.Account{}, false
}

// Group looks up a category group by id.
func (s Snapshot) Group(id string) (core.CategoryGroup, bool) {
	if i := s.groupIndex(id); i >= 0 {
		return s.Groups[i], true
	}
	return core.CategoryGroup{}, false
}

// Category looks up a category by id.
func (s Snapshot) Category(id string) (core.Category, bool) {
	if i := s.categoryIndex(id); i >= 0 {
		return s.Categories[i], true
	}
	return core.Category{}, false
}

// TargetFor returns the target of a category, if any.
func (s Snapshot) TargetFor(categoryID string) (core.Target, bool) {
	if i := s.targetIndex(categoryID); i >= 0 {
		return s.Targets[i], true
	}
	return core.Target{}, false
}

// OrderedGroups returns the groups sorted by Order, ties in insertion order.
func OrderedGroups(s Snapshot) []core.CategoryGroup {
	groups := append([]core.CategoryGroup(nil), s.Groups...)
	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].Order < groups[j].Order
	})
	return groups
}

// CategoriesInGroup returns the categories of a group in display order.
// Categories that were never reordered keep insertion order after the
// explicitly ordered ones.
func CategoriesInGroup(s Snapshot, groupID string) []core.Category {
	var out []core.Category
	for _, c := range s.Categories {
		if c.GroupID == groupID {
			out = append(out, c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		oi, oj := out[i].Order, out[j].Order
		switch {
		case oi == nil:
			return false
		case oj == nil:
			return true
		default:
			return *oi < *oj
		}
	})
	return out
}

func maxGroupOrder(groups []core.CategoryGroup) int {
	max := 0
	for _, g := range groups {
		if g.Order > max {
			max = g.Order
		}
	}
	return max
}
