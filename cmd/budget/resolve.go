package main

import (
	"fmt"
	"strings"

	"envelope/internal/budget"
	"envelope/internal/core"
)

// lookup finds the item whose id equals ref, or failing that the single
// item whose name matches ref case-insensitively.
func lookup[T any](items []T, ref, kind string, id, name func(T) string) (T, error) {
	var zero T
	ref = strings.TrimSpace(ref)
	for _, it := range items {
		if id(it) == ref {
			return it, nil
		}
	}

	var matches []T
	for _, it := range items {
		if strings.EqualFold(name(it), ref) {
			matches = append(matches, it)
		}
	}
	switch len(matches) {
	case 0:
		return zero, fmt.Errorf("no %s matches %q", kind, ref)
	case 1:
		return matches[0], nil
	default:
		ids := make([]string, len(matches))
		for i, m := range matches {
			ids[i] = id(m)
		}
		return zero, fmt.Errorf("%d matches for %s %q, use an id: %s", len(matches), kind, ref, strings.Join(ids, ", "))
	}
}

func findAccount(s budget.Snapshot, ref string) (core.Account, error) {
	return lookup(s.Accounts, ref, "account",
		func(a core.Account) string { return a.ID },
		func(a core.Account) string { return a.Name })
}

func findCategory(s budget.Snapshot, ref string) (core.Category, error) {
	return lookup(s.Categories, ref, "category",
		func(c core.Category) string { return c.ID },
		func(c core.Category) string { return c.Name })
}

func findGroup(s budget.Snapshot, ref string) (core.CategoryGroup, error) {
	return lookup(s.Groups, ref, "group",
		func(g core.CategoryGroup) string { return g.ID },
		func(g core.CategoryGroup) string { return g.Name })
}
