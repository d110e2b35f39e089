// Package persistence defines the key-value port the ledger store persists
// through. Each key holds one JSON-encoded collection.
package persistence

import (
	"context"
	"errors"
)

// Keys of the persisted collections.
const (
	KeyCategories     = "categories"
	KeyTransactions   = "transactions"
	KeyAccounts       = "accounts"
	KeyCategoryGroups = "categoryGroups"
	KeyTargets        = "targets"
	KeyPlanName       = "planName"
)

// ErrUnknownKey is returned by adapters that restrict themselves to AllKeys.
var ErrUnknownKey = errors.New("unknown persistence key")

// AllKeys lists every key in load order.
func AllKeys() []string {
	return []string{
		KeyAccounts,
		KeyCategoryGroups,
		KeyCategories,
		KeyTransactions,
		KeyTargets,
		KeyPlanName,
	}
}

// IsKnownKey reports whether key is one of AllKeys.
func IsKnownKey(key string) bool {
	for _, k := range AllKeys() {
		if k == key {
			return true
		}
	}
	return false
}

type (
	// Loader reads a key. ok is false when the key was never saved.
	Loader interface {
		Load(ctx context.Context, key string) (data []byte, ok bool, err error)
	}

	// Saver durably replaces the value of a key.
	Saver interface {
		Save(ctx context.Context, key string, data []byte) error
	}

	// Clearer removes keys. Missing keys are not an error.
	Clearer interface {
		Clear(ctx context.Context, keys []string) error
	}

	// Adapter is the full persistence port.
	Adapter interface {
		Loader
		Saver
		Clearer
	}
)
