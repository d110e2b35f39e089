package core

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	// CreditCardPaymentsGroupID is the reserved group holding every payment category.
	CreditCardPaymentsGroupID = "credit-card-payments"

	paymentCategoryPrefix = "cc-payment-"

	// ReconciliationPayee marks system-generated balance adjustments.
	ReconciliationPayee = "Reconciliation Adjustment"
)

// NewID returns a fresh entity id.
func NewID() string {
	return uuid.NewString()
}

// PaymentCategoryID is the id of the payment category bound to a credit card.
func PaymentCategoryID(accountID string) string {
	return paymentCategoryPrefix + accountID
}

// IsPaymentCategoryID reports whether id names a credit card payment category.
func IsPaymentCategoryID(id string) bool {
	return strings.HasPrefix(id, paymentCategoryPrefix) && len(id) > len(paymentCategoryPrefix)
}

// PaymentCategoryAccountID returns the card account id a payment category is bound to.
func PaymentCategoryAccountID(id string) (string, bool) {
	if !IsPaymentCategoryID(id) {
		return "", false
	}
	return strings.TrimPrefix(id, paymentCategoryPrefix), true
}

var dueDateLayouts = []string{"01/02/2006", "1/2/2006", "2006-01-02"}

// ParseDueDate parses a custom target due date, written MM/DD/YYYY or
// YYYY-MM-DD. Years outside 1900-2100 are rejected.
func ParseDueDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, ErrInvalidDueDate
	}
	for _, layout := range dueDateLayouts {
		t, err := time.Parse(layout, s)
		if err != nil {
			continue
		}
		if t.Year() < 1900 || t.Year() > 2100 {
			return time.Time{}, fmt.Errorf("%w: year %d out of range", ErrInvalidDueDate, t.Year())
		}
		return t, nil
	}
	return time.Time{}, ErrInvalidDueDate
}

// NewDate creates a UTC midnight date from year, month, day.
func NewDate(year, month, day int) time.Time {
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
}
