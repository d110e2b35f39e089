package budget

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"envelope/internal/core"
)

func TestWorkingBalanceMatchesTransactions(t *testing.T) {
	var e Engine
	s := withCard(t, base(t), "visa")
	for i, amount := range []string{"-12.50", "300", "-0.01", "-99.99"} {
		var err error
		s, err = e.AddTransaction(s, spend(string(rune('a'+i)), "chk", "groceries", amount))
		require.NoError(t, err)
	}
	s, err := e.AddTransaction(s, spend("card", "visa", "groceries", "-40"))
	require.NoError(t, err)

	for _, a := range s.Accounts {
		want := a.Balance
		for _, tx := range s.Transactions {
			if tx.AccountID == a.ID {
				want = want.Add(tx.Amount)
			}
		}
		assert.True(t, want.Equal(WorkingBalance(s, a.ID)), a.ID)
		assert.True(t, want.Equal(ClearedBalance(s, a.ID)), a.ID)
	}
	assertDecimal(t, "1187.50", WorkingBalance(s, "chk"))
	assertDecimal(t, "1187.50", CashAccountsTotal(s))
	assertDecimal(t, "-40", CreditAccountsTotal(s))
}

func TestCategoryAvailableAfterAssign(t *testing.T) {
	var e Engine
	for _, amount := range []string{"0", "0.01", "200", "12345.67"} {
		s, err := e.AssignMoney(base(t), "groceries", d(amount))
		require.NoError(t, err)
		assertDecimal(t, amount, CategoryAvailable(s, "groceries"))
	}
}

func TestTotalCashIgnoresTransactionsAndCards(t *testing.T) {
	var e Engine
	s := withCard(t, base(t), "visa")
	s, err := e.AddTransaction(s, spend("a", "chk", "groceries", "-100"))
	require.NoError(t, err)
	assertDecimal(t, "1000", TotalCash(s))
}

func TestSummary(t *testing.T) {
	var e Engine
	s := withCard(t, base(t), "visa")
	s, err := e.AssignMoney(s, "groceries", d("100"))
	require.NoError(t, err)
	s, err = e.AddTransaction(s, spend("a", "visa", "groceries", "-30"))
	require.NoError(t, err)
	s, err = e.UpsertTarget(s, "groceries", core.Target{
		ID: "t", Frequency: core.Monthly, TargetAmount: d("100"), DueDay: intPtr(15), NextMonthBehavior: core.Refill,
	})
	require.NoError(t, err)

	o := Summary(s, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC))
	assertDecimal(t, "1000", o.TotalCash)
	assertDecimal(t, "100", o.TotalAssigned)
	assertDecimal(t, "900", o.ReadyToAssign)
	require.Len(t, o.Groups, 4)

	needs := o.Groups[0]
	assert.Equal(t, "needs", needs.Group.ID)
	require.Len(t, needs.Categories, 1)
	assertDecimal(t, "70", needs.Budgeted)
	assertDecimal(t, "40", needs.Available)
	assertDecimal(t, "-30", needs.Categories[0].Spending)
	assert.Equal(t, "$30.00 more needed by the 15th", needs.Categories[0].TargetText)

	cards := o.Groups[1]
	assert.Equal(t, core.CreditCardPaymentsGroupID, cards.Group.ID)
	assertDecimal(t, "30", cards.Available)
}

func TestAccountActivity(t *testing.T) {
	var e Engine
	s := base(t)
	dates := []time.Time{
		time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC),
		time.Date(2025, 3, 3, 8, 0, 0, 0, time.UTC),
		time.Date(2025, 3, 1, 18, 0, 0, 0, time.UTC),
	}
	for i, date := range dates {
		tx := spend(string(rune('a'+i)), "chk", "groceries", "-1")
		tx.Date = date
		var err error
		s, err = e.AddTransaction(s, tx)
		require.NoError(t, err)
	}

	days := AccountActivity(s, "chk")
	require.Len(t, days, 2)
	assert.Equal(t, core.NewDate(2025, 3, 3), days[0].Day)
	assert.Equal(t, core.NewDate(2025, 3, 1), days[1].Day)
	require.Len(t, days[1].Transactions, 2)
	assert.Equal(t, "a", days[1].Transactions[0].ID)
	assert.Equal(t, "c", days[1].Transactions[1].ID)

	assert.Empty(t, AccountActivity(s, "other"))
}

func TestAccountTypeLabel(t *testing.T) {
	assert.Equal(t, "Credit Card", AccountTypeLabel(core.CreditCard))
	assert.Equal(t, "Checking", AccountTypeLabel(core.Checking))
	assert.Equal(t, "Savings", AccountTypeLabel(core.Savings))
}
