package budget

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"envelope/internal/core"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func intPtr(v int) *int {
	return &v
}

// base returns a seeded snapshot with one checking account holding 1000 and
// one empty "groceries" category in the needs group.
func base(t *testing.T) Snapshot {
	t.Helper()
	var e Engine
	s := Seed(Snapshot{})
	s, err := e.AddAccount(s, core.Account{ID: "chk", Name: "Checking", Balance: d("1000"), Type: core.Checking})
	require.NoError(t, err)
	s, err = e.AddCategory(s, core.Category{ID: "groceries", Name: "Groceries", GroupID: "needs"})
	require.NoError(t, err)
	return s
}

func withCard(t *testing.T, s Snapshot, id string) Snapshot {
	t.Helper()
	s, err := Engine{}.AddAccount(s, core.Account{ID: id, Name: "Visa", Balance: decimal.Zero, Type: core.CreditCard})
	require.NoError(t, err)
	return s
}

func spend(id, account, category, amount string) core.Transaction {
	return core.Transaction{
		ID:         id,
		AccountID:  account,
		CategoryID: category,
		Amount:     d(amount),
		Date:       time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
		Payee:      "Store",
	}
}

func budgetedOf(t *testing.T, s Snapshot, categoryID string) decimal.Decimal {
	t.Helper()
	c, ok := s.Category(categoryID)
	require.True(t, ok, "category %s not found", categoryID)
	return c.Budgeted
}

func assertDecimal(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	require.Truef(t, d(want).Equal(got), "want %s, got %s", want, got)
}
