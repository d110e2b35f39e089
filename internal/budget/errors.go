package budget

import (
	"errors"
	"fmt"
)

// Error classes. Every error returned by the engine matches exactly one of
// these through errors.Is.
var (
	ErrValidation  = errors.New("validation error")
	ErrReference   = errors.New("reference error")
	ErrPersistence = errors.New("persistence error")
)

var (
	ErrDuplicateID           = errors.New("duplicate id")
	ErrPaymentCategoryTarget = errors.New("payment categories cannot have targets")
	ErrPaymentCategoryDelete = errors.New("payment categories are removed with their credit card")
	ErrReservedID            = errors.New("id is reserved for credit card payment categories")
	ErrReservedGroup         = errors.New("group holds payment categories of existing credit cards")
	ErrIncompleteOrder       = errors.New("order must list every group and category exactly once")
	ErrSameCategory          = errors.New("source and destination category are the same")
)

// Entity kinds used in error messages.
const (
	KindAccount     = "account"
	KindGroup       = "group"
	KindCategory    = "category"
	KindTransaction = "transaction"
	KindTarget      = "target"
)

// ValidationError is returned when a command carries a malformed or missing
// field. It is raised before any state change.
type ValidationError struct {
	Entity string
	Err    error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %v", e.Entity, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// ReferenceError is returned when a command names an account, group,
// category or target that does not exist.
type ReferenceError struct {
	Kind string
	ID   string
}

func (e *ReferenceError) Error() string {
	return fmt.Sprintf("unknown %s %q", e.Kind, e.ID)
}

func (e *ReferenceError) Is(target error) bool { return target == ErrReference }

// PersistenceError reports a durable write that kept failing after the
// in-memory snapshot had already changed. The snapshot is not rolled back.
type PersistenceError struct {
	Key      string
	Attempts int
	Err      error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persist %s failed after %d attempt(s): %v", e.Key, e.Attempts, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

func (e *PersistenceError) Is(target error) bool { return target == ErrPersistence }

func invalid(entity string, err error) error {
	return &ValidationError{Entity: entity, Err: err}
}

func unknown(kind, id string) error {
	return &ReferenceError{Kind: kind, ID: id}
}
