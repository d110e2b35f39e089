package core

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	Checking   AccountType = "checking"
	Savings    AccountType = "savings"
	CreditCard AccountType = "credit-card"

	Weekly  Frequency = "weekly"
	Monthly Frequency = "monthly"
	Custom  Frequency = "custom"

	SetAside NextMonthBehavior = "setAside"
	Refill   NextMonthBehavior = "refill"
)

type (
	AccountType       string
	Frequency         string
	NextMonthBehavior string

	Account struct {
		ID      string          `json:"id"`
		Name    string          `json:"name"`
		Balance decimal.Decimal `json:"balance"` // opening balance
		Type    AccountType     `json:"type"`
	}

	CategoryGroup struct {
		ID    string `json:"id"`
		Name  string `json:"name"`
		Order int    `json:"order"`
	}

	Category struct {
		ID       string          `json:"id"`
		Name     string          `json:"name"`
		Budgeted decimal.Decimal `json:"budgeted"`
		GroupID  string          `json:"groupId"`
		Order    *int            `json:"order,omitempty"`
	}

	Transaction struct {
		ID         string          `json:"id"`
		CategoryID string          `json:"categoryId"`
		AccountID  string          `json:"accountId"`
		Amount     decimal.Decimal `json:"amount"` // negative = outflow
		Date       time.Time       `json:"date"`
		Payee      string          `json:"payee"`
	}

	Target struct {
		ID                string            `json:"id"`
		CategoryID        string            `json:"categoryId"`
		Frequency         Frequency         `json:"frequency"`
		TargetAmount      decimal.Decimal   `json:"targetAmount"`
		DueDay            *int              `json:"dueDay,omitempty"`  // 1-31 monthly, 1-7 weekly (1=Monday)
		DueDate           string            `json:"dueDate,omitempty"` // custom only
		NextMonthBehavior NextMonthBehavior `json:"nextMonthBehavior"`
	}
)

var (
	ErrEmptyID            = errors.New("empty id")
	ErrEmptyName          = errors.New("empty name")
	ErrNameTooLong        = errors.New("name too long (max 100 characters)")
	ErrInvalidAccountType = errors.New("invalid account type")
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrZeroAmount         = errors.New("amount cannot be zero")
	ErrEmptyPayee         = errors.New("empty payee")
	ErrEmptyAccount       = errors.New("empty account")
	ErrEmptyCategory      = errors.New("empty category")
	ErrInvalidFrequency   = errors.New("invalid frequency")
	ErrInvalidDueDay      = errors.New("invalid due day")
	ErrInvalidDueDate     = errors.New("invalid due date")
	ErrInvalidBehavior    = errors.New("invalid next month behavior")
)

const maxNameLength = 100

func (t AccountType) IsValid() bool {
	switch t {
	case Checking, Savings, CreditCard:
		return true
	default:
		return false
	}
}

// IsCash reports whether balances of this type count towards ready to assign.
func (t AccountType) IsCash() bool {
	return t == Checking || t == Savings
}

func (f Frequency) IsValid() bool {
	switch f {
	case Weekly, Monthly, Custom:
		return true
	default:
		return false
	}
}

func (b NextMonthBehavior) IsValid() bool {
	return b == SetAside || b == Refill
}

func validateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return ErrEmptyName
	}
	if len(name) > maxNameLength {
		return ErrNameTooLong
	}
	return nil
}

func (a Account) Validate() error {
	if strings.TrimSpace(a.ID) == "" {
		return ErrEmptyID
	}
	if err := validateName(a.Name); err != nil {
		return err
	}
	if !a.Type.IsValid() {
		return ErrInvalidAccountType
	}
	return nil
}

func (g CategoryGroup) Validate() error {
	if strings.TrimSpace(g.ID) == "" {
		return ErrEmptyID
	}
	return validateName(g.Name)
}

func (c Category) Validate() error {
	if strings.TrimSpace(c.ID) == "" {
		return ErrEmptyID
	}
	if err := validateName(c.Name); err != nil {
		return err
	}
	if strings.TrimSpace(c.GroupID) == "" {
		return errors.New("empty group")
	}
	return nil
}

// Validate checks a user-entered transaction. Reconciliation adjustments are
// built by the engine and skip the category requirement.
func (t Transaction) Validate() error {
	if strings.TrimSpace(t.ID) == "" {
		return ErrEmptyID
	}
	if strings.TrimSpace(t.AccountID) == "" {
		return ErrEmptyAccount
	}
	if strings.TrimSpace(t.CategoryID) == "" {
		return ErrEmptyCategory
	}
	if strings.TrimSpace(t.Payee) == "" {
		return ErrEmptyPayee
	}
	if len(t.Payee) > 200 {
		return errors.New("payee too long (max 200 characters)")
	}
	if t.Amount.IsZero() {
		return ErrZeroAmount
	}
	return nil
}

func (t Target) Validate() error {
	if strings.TrimSpace(t.ID) == "" {
		return ErrEmptyID
	}
	if strings.TrimSpace(t.CategoryID) == "" {
		return ErrEmptyCategory
	}
	if !t.TargetAmount.IsPositive() {
		return ErrInvalidAmount
	}
	if !t.NextMonthBehavior.IsValid() {
		return ErrInvalidBehavior
	}

	switch t.Frequency {
	case Monthly:
		if t.DueDay == nil || *t.DueDay < 1 || *t.DueDay > 31 {
			return ErrInvalidDueDay
		}
	case Weekly:
		if t.DueDay == nil || *t.DueDay < 1 || *t.DueDay > 7 {
			return ErrInvalidDueDay
		}
	case Custom:
		if _, err := ParseDueDate(t.DueDate); err != nil {
			return err
		}
	default:
		return ErrInvalidFrequency
	}
	return nil
}
