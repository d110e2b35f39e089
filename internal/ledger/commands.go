package ledger

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"

	"envelope/internal/budget"
	"envelope/internal/core"
	"envelope/internal/log"
)

// AddAccount creates an account; an empty id is generated.
func (s *Store) AddAccount(ctx context.Context, a core.Account) (budget.Snapshot, error) {
	if a.ID == "" {
		a.ID = core.NewID()
	}
	return s.apply(ctx, log.OpAddAccount, func(snap budget.Snapshot) (budget.Snapshot, error) {
		return s.engine.AddAccount(snap, a)
	})
}

func (s *Store) DeleteAccount(ctx context.Context, accountID string) (budget.Snapshot, error) {
	return s.apply(ctx, log.OpDeleteAccount, func(snap budget.Snapshot) (budget.Snapshot, error) {
		return s.engine.DeleteAccount(snap, accountID)
	})
}

// AddTransaction records a transaction. Empty id and date are filled in.
func (s *Store) AddTransaction(ctx context.Context, tx core.Transaction) (budget.Snapshot, error) {
	tx = s.fillTransaction(tx)
	return s.apply(ctx, log.OpAddTransaction, func(snap budget.Snapshot) (budget.Snapshot, error) {
		return s.engine.AddTransaction(snap, tx)
	})
}

func (s *Store) AssignMoney(ctx context.Context, categoryID string, amount decimal.Decimal) (budget.Snapshot, error) {
	return s.apply(ctx, log.OpAssign, func(snap budget.Snapshot) (budget.Snapshot, error) {
		return s.engine.AssignMoney(snap, categoryID, amount)
	})
}

func (s *Store) AdjustMoney(ctx context.Context, categoryID string, delta decimal.Decimal) (budget.Snapshot, error) {
	return s.apply(ctx, log.OpAdjust, func(snap budget.Snapshot) (budget.Snapshot, error) {
		return s.engine.AdjustMoney(snap, categoryID, delta)
	})
}

// MoveMoney moves budget between categories and returns the amount moved.
func (s *Store) MoveMoney(ctx context.Context, fromID, toID string, amount decimal.Decimal) (budget.Snapshot, decimal.Decimal, error) {
	moved := decimal.Zero
	snap, err := s.apply(ctx, log.OpMove, func(snap budget.Snapshot) (budget.Snapshot, error) {
		next, m, err := s.engine.MoveMoney(snap, fromID, toID, amount)
		moved = m
		return next, err
	})
	return snap, moved, err
}

// Reconcile matches an account to its statement balance and reports whether
// an adjustment transaction was recorded.
func (s *Store) Reconcile(ctx context.Context, accountID string, statementBalance decimal.Decimal) (budget.Snapshot, bool, error) {
	created := false
	snap, err := s.apply(ctx, log.OpReconcile, func(snap budget.Snapshot) (budget.Snapshot, error) {
		next, c, err := s.engine.Reconcile(snap, accountID, statementBalance, s.now())
		created = c
		return next, err
	})
	return snap, created, err
}

// UpsertTarget sets the target of a category; an empty target id is generated
// unless the category already has one.
func (s *Store) UpsertTarget(ctx context.Context, categoryID string, spec core.Target) (budget.Snapshot, error) {
	return s.apply(ctx, log.OpUpsertTarget, func(snap budget.Snapshot) (budget.Snapshot, error) {
		if spec.ID == "" {
			if existing, ok := snap.TargetFor(categoryID); ok {
				spec.ID = existing.ID
			} else {
				spec.ID = core.NewID()
			}
		}
		return s.engine.UpsertTarget(snap, categoryID, spec)
	})
}

func (s *Store) DeleteTarget(ctx context.Context, categoryID string) (budget.Snapshot, error) {
	return s.apply(ctx, log.OpDeleteTarget, func(snap budget.Snapshot) (budget.Snapshot, error) {
		return s.engine.DeleteTarget(snap, categoryID)
	})
}

func (s *Store) Reorder(ctx context.Context, items []budget.OrderItem) (budget.Snapshot, error) {
	return s.apply(ctx, log.OpReorder, func(snap budget.Snapshot) (budget.Snapshot, error) {
		return s.engine.Reorder(snap, items)
	})
}

func (s *Store) AddGroup(ctx context.Context, g core.CategoryGroup) (budget.Snapshot, error) {
	if g.ID == "" {
		g.ID = core.NewID()
	}
	return s.apply(ctx, log.OpAddGroup, func(snap budget.Snapshot) (budget.Snapshot, error) {
		return s.engine.AddGroup(snap, g)
	})
}

func (s *Store) RenameGroup(ctx context.Context, groupID, name string) (budget.Snapshot, error) {
	return s.apply(ctx, log.OpRenameGroup, func(snap budget.Snapshot) (budget.Snapshot, error) {
		return s.engine.RenameGroup(snap, groupID, name)
	})
}

func (s *Store) DeleteGroup(ctx context.Context, groupID string) (budget.Snapshot, error) {
	return s.apply(ctx, log.OpDeleteGroup, func(snap budget.Snapshot) (budget.Snapshot, error) {
		return s.engine.DeleteGroup(snap, groupID)
	})
}

func (s *Store) AddCategory(ctx context.Context, c core.Category) (budget.Snapshot, error) {
	if c.ID == "" {
		c.ID = core.NewID()
	}
	return s.apply(ctx, log.OpAddCategory, func(snap budget.Snapshot) (budget.Snapshot, error) {
		return s.engine.AddCategory(snap, c)
	})
}

func (s *Store) RenameCategory(ctx context.Context, categoryID, name string) (budget.Snapshot, error) {
	return s.apply(ctx, log.OpRenameCategory, func(snap budget.Snapshot) (budget.Snapshot, error) {
		return s.engine.RenameCategory(snap, categoryID, name)
	})
}

func (s *Store) DeleteCategory(ctx context.Context, categoryID string) (budget.Snapshot, error) {
	return s.apply(ctx, log.OpDeleteCategory, func(snap budget.Snapshot) (budget.Snapshot, error) {
		return s.engine.DeleteCategory(snap, categoryID)
	})
}

// RenamePlan changes the budget name.
func (s *Store) RenamePlan(ctx context.Context, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return &budget.ValidationError{Entity: "plan", Err: core.ErrEmptyName}
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	s.planName = name
	changed, err := s.persistChanged()
	if len(changed) > 0 {
		s.version++
	}
	version := s.version
	s.mu.Unlock()
	if err != nil {
		return err
	}
	s.publish(ctx, log.OpRenamePlan, changed, version)
	return nil
}

// Summary derives the plan overview as of the store clock.
func (s *Store) Summary() core.PlanOverview {
	return budget.Summary(s.Snapshot(), s.Today())
}
