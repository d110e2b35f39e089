package budget

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"envelope/internal/core"
)

// SpendPolicy selects how a non credit card transaction affects the budgeted
// amount of its category.
//
// With 1000 in checking, 200 assigned to a category and a 50 spend from it:
//
//	consume:  budgeted 150, available 100, ready to assign 850
//	activity: budgeted 200, available 150, ready to assign 800
//
// consume is the default. activity is the usual envelope reading, where a
// spend only lowers what is available.
type SpendPolicy int

const (
	// SpendConsumesBudget subtracts |amount| from budgeted for every categorized
	// transaction. Available therefore counts the spend twice: once through
	// budgeted and once through spending.
	SpendConsumesBudget SpendPolicy = iota
	// SpendAsActivity leaves budgeted untouched; spending alone reduces
	// available. The credit card transfer to the payment category still applies.
	SpendAsActivity
)

func (p SpendPolicy) String() string {
	switch p {
	case SpendAsActivity:
		return "activity"
	default:
		return "consume"
	}
}

// ParseSpendPolicy maps "consume" and "activity" to a policy. An empty
// string is consume. See SpendPolicy for how the two differ.
func ParseSpendPolicy(s string) (SpendPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "consume":
		return SpendConsumesBudget, nil
	case "activity":
		return SpendAsActivity, nil
	default:
		return SpendConsumesBudget, fmt.Errorf("unknown spend policy: %s", s)
	}
}

// Engine applies commands to snapshots. The zero value uses SpendConsumesBudget.
type Engine struct {
	Policy SpendPolicy
}

// AddAccount appends an account. A credit card also gets its payment
// category, creating the reserved payment group when it does not exist yet.
func (e Engine) AddAccount(s Snapshot, a core.Account) (Snapshot, error) {
	if err := a.Validate(); err != nil {
		return s, invalid(KindAccount, err)
	}
	if s.accountIndex(a.ID) >= 0 {
		return s, duplicate(KindAccount, a.ID)
	}

	next := s.Clone()
	if a.Type == core.CreditCard {
		a.Balance = a.Balance.Abs().Neg()
		paymentID := core.PaymentCategoryID(a.ID)
		if next.categoryIndex(paymentID) >= 0 {
			return s, duplicate(KindCategory, paymentID)
		}
		ensurePaymentGroup(&next)
		next.Categories = append(next.Categories, core.Category{
			ID:       paymentID,
			Name:     a.Name,
			Budgeted: decimal.Zero,
			GroupID:  core.CreditCardPaymentsGroupID,
		})
	}
	next.Accounts = append(next.Accounts, a)
	return next, nil
}

// DeleteAccount removes an account together with its transactions and, for a
// credit card, its payment category.
func (e Engine) DeleteAccount(s Snapshot, accountID string) (Snapshot, error) {
	i := s.accountIndex(accountID)
	if i < 0 {
		return s, unknown(KindAccount, accountID)
	}

	next := s.Clone()
	acct := next.Accounts[i]
	next.Accounts = append(next.Accounts[:i], next.Accounts[i+1:]...)

	txs := next.Transactions[:0]
	for _, tx := range next.Transactions {
		if tx.AccountID != accountID {
			txs = append(txs, tx)
		}
	}
	next.Transactions = txs

	if acct.Type == core.CreditCard {
		next = removeCategories(next, map[string]bool{core.PaymentCategoryID(accountID): true})
	}
	return next, nil
}

// AddTransaction records a user transaction and applies the spend
// allocation rule to the category budget.
func (e Engine) AddTransaction(s Snapshot, tx core.Transaction) (Snapshot, error) {
	if err := tx.Validate(); err != nil {
		return s, invalid(KindTransaction, err)
	}
	acct, ok := s.Account(tx.AccountID)
	if !ok {
		return s, unknown(KindAccount, tx.AccountID)
	}
	if s.categoryIndex(tx.CategoryID) < 0 {
		return s, unknown(KindCategory, tx.CategoryID)
	}

	next := s.Clone()
	if err := e.apply(&next, acct, tx); err != nil {
		return s, err
	}
	return next, nil
}

// Reconcile brings the working balance of an account to statementBalance by
// recording an uncategorized adjustment. It reports whether an adjustment
// was needed.
func (e Engine) Reconcile(s Snapshot, accountID string, statementBalance decimal.Decimal, now time.Time) (Snapshot, bool, error) {
	acct, ok := s.Account(accountID)
	if !ok {
		return s, false, unknown(KindAccount, accountID)
	}
	delta := statementBalance.Sub(WorkingBalance(s, accountID))
	if delta.IsZero() {
		return s, false, nil
	}

	next := s.Clone()
	adj := core.Transaction{
		ID:        core.NewID(),
		AccountID: accountID,
		Amount:    delta,
		Date:      now,
		Payee:     core.ReconciliationPayee,
	}
	if err := e.apply(&next, acct, adj); err != nil {
		return s, false, err
	}
	return next, true, nil
}

// apply appends tx to s and moves budget according to the policy.
func (e Engine) apply(s *Snapshot, acct core.Account, tx core.Transaction) error {
	if tx.CategoryID == "" {
		s.Transactions = append(s.Transactions, tx)
		return nil
	}
	ci := s.categoryIndex(tx.CategoryID)
	if ci < 0 {
		return unknown(KindCategory, tx.CategoryID)
	}
	abs := tx.Amount.Abs()

	if acct.Type == core.CreditCard && tx.Amount.IsNegative() {
		pi := s.categoryIndex(core.PaymentCategoryID(acct.ID))
		if pi < 0 {
			return unknown(KindCategory, core.PaymentCategoryID(acct.ID))
		}
		s.Categories[ci].Budgeted = s.Categories[ci].Budgeted.Sub(abs)
		s.Categories[pi].Budgeted = s.Categories[pi].Budgeted.Add(abs)
	} else if e.Policy == SpendConsumesBudget {
		s.Categories[ci].Budgeted = s.Categories[ci].Budgeted.Sub(abs)
	}
	s.Transactions = append(s.Transactions, tx)
	return nil
}

func ensurePaymentGroup(s *Snapshot) {
	if s.groupIndex(core.CreditCardPaymentsGroupID) >= 0 {
		return
	}
	s.Groups = append(s.Groups, core.CategoryGroup{
		ID:    core.CreditCardPaymentsGroupID,
		Name:  "Credit Card Payments",
		Order: maxGroupOrder(s.Groups) + 1,
	})
}

// removeCategories drops the given categories and their targets.
func removeCategories(s Snapshot, ids map[string]bool) Snapshot {
	cats := s.Categories[:0]
	for _, c := range s.Categories {
		if !ids[c.ID] {
			cats = append(cats, c)
		}
	}
	s.Categories = cats

	targets := s.Targets[:0]
	for _, t := range s.Targets {
		if !ids[t.CategoryID] {
			targets = append(targets, t)
		}
	}
	s.Targets = targets
	return s
}
