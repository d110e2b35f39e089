package budget

import (
	"github.com/shopspring/decimal"

	"envelope/internal/core"
)

// WorkingBalance is the opening balance of the account plus every
// transaction recorded against it. Unknown accounts have a zero balance.
func WorkingBalance(s Snapshot, accountID string) decimal.Decimal {
	acct, ok := s.Account(accountID)
	if !ok {
		return decimal.Zero
	}
	balance := acct.Balance
	for _, tx := range s.Transactions {
		if tx.AccountID == accountID {
			balance = balance.Add(tx.Amount)
		}
	}
	return balance
}

// ClearedBalance equals WorkingBalance; transactions carry no cleared flag.
func ClearedBalance(s Snapshot, accountID string) decimal.Decimal {
	return WorkingBalance(s, accountID)
}

// CategorySpending sums the signed amounts of the category's transactions.
// Outflows make it negative.
func CategorySpending(s Snapshot, categoryID string) decimal.Decimal {
	total := decimal.Zero
	for _, tx := range s.Transactions {
		if tx.CategoryID == categoryID {
			total = total.Add(tx.Amount)
		}
	}
	return total
}

// CategoryAvailable is budgeted plus spending.
func CategoryAvailable(s Snapshot, categoryID string) decimal.Decimal {
	cat, ok := s.Category(categoryID)
	if !ok {
		return decimal.Zero
	}
	return cat.Budgeted.Add(CategorySpending(s, categoryID))
}

// TotalCash sums the opening balances of checking and savings accounts.
// Transactions are deliberately not included.
func TotalCash(s Snapshot) decimal.Decimal {
	total := decimal.Zero
	for _, a := range s.Accounts {
		if a.Type.IsCash() {
			total = total.Add(a.Balance)
		}
	}
	return total
}

// TotalAssigned sums budgeted over every category, payment categories included.
func TotalAssigned(s Snapshot) decimal.Decimal {
	total := decimal.Zero
	for _, c := range s.Categories {
		total = total.Add(c.Budgeted)
	}
	return total
}

// ReadyToAssign is TotalCash minus TotalAssigned. It is never clamped; a
// negative value means more money is assigned than exists.
func ReadyToAssign(s Snapshot) decimal.Decimal {
	return TotalCash(s).Sub(TotalAssigned(s))
}

// CashAccountsTotal sums working balances of checking and savings accounts.
func CashAccountsTotal(s Snapshot) decimal.Decimal {
	total := decimal.Zero
	for _, a := range s.Accounts {
		if a.Type.IsCash() {
			total = total.Add(WorkingBalance(s, a.ID))
		}
	}
	return total
}

// CreditAccountsTotal sums working balances of credit card accounts.
func CreditAccountsTotal(s Snapshot) decimal.Decimal {
	total := decimal.Zero
	for _, a := range s.Accounts {
		if a.Type == core.CreditCard {
			total = total.Add(WorkingBalance(s, a.ID))
		}
	}
	return total
}
