package ledger

import (
	"encoding/json"
	"fmt"

	"envelope/internal/budget"
	"envelope/internal/persistence"
)

// DefaultPlanName is used until the plan is renamed.
const DefaultPlanName = "Plan"

// encodeAll renders every persisted key. Empty collections encode as [].
func encodeAll(s budget.Snapshot, planName string) (map[string][]byte, error) {
	values := map[string]any{
		persistence.KeyAccounts:       nonNil(s.Accounts),
		persistence.KeyCategoryGroups: nonNil(s.Groups),
		persistence.KeyCategories:     nonNil(s.Categories),
		persistence.KeyTransactions:   nonNil(s.Transactions),
		persistence.KeyTargets:        nonNil(s.Targets),
		persistence.KeyPlanName:       planName,
	}
	out := make(map[string][]byte, len(values))
	for key, v := range values {
		raw, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", key, err)
		}
		out[key] = raw
	}
	return out, nil
}

// decodeAll builds a snapshot from loaded keys. Missing keys are empty.
func decodeAll(raw map[string][]byte) (budget.Snapshot, string, error) {
	var s budget.Snapshot
	planName := DefaultPlanName

	targets := []struct {
		key string
		dst any
	}{
		{persistence.KeyAccounts, &s.Accounts},
		{persistence.KeyCategoryGroups, &s.Groups},
		{persistence.KeyCategories, &s.Categories},
		{persistence.KeyTransactions, &s.Transactions},
		{persistence.KeyTargets, &s.Targets},
		{persistence.KeyPlanName, &planName},
	}
	for _, t := range targets {
		data, ok := raw[t.key]
		if !ok || len(data) == 0 {
			continue
		}
		if err := json.Unmarshal(data, t.dst); err != nil {
			return budget.Snapshot{}, "", fmt.Errorf("decode %s: %w", t.key, err)
		}
	}
	if planName == "" {
		planName = DefaultPlanName
	}
	return s, planName, nil
}

func nonNil[T any](in []T) []T {
	if in == nil {
		return []T{}
	}
	return in
}
