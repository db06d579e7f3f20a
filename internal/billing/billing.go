// Package billing handles condominium quota payments and the receipts
// issued for them. A payment moves through a small lifecycle; confirming
// it issues a receipt and credits the owner's current account.
package billing

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Status is the lifecycle state of a payment.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusConfirmed Status = "CONFIRMED"
	StatusCancelled Status = "CANCELLED"
)

// allowedTransitions defines the valid payment lifecycle. Confirmed and
// cancelled are terminal.
func allowedTransitions() map[Status][]Status {
	return map[Status][]Status{
		StatusPending:   {StatusConfirmed, StatusCancelled},
		StatusConfirmed: {},
		StatusCancelled: {},
	}
}

// CanTransition reports whether a payment may move between two states.
func CanTransition(from, to Status) bool {
	for _, s := range allowedTransitions()[from] {
		if s == to {
			return true
		}
	}
	return false
}

// InvalidTransitionError reports a rejected lifecycle change.
type InvalidTransitionError struct {
	From      Status
	To        Status
	PaymentID string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid payment transition from %s to %s for payment %s", e.From, e.To, e.PaymentID)
}

// Payment is one quota payment reported for a unit.
type Payment struct {
	ID        string          `json:"id"`
	UnitID    string          `json:"unit_id"`
	OwnerID   string          `json:"owner_id"`
	AccountID string          `json:"account_id"`
	Period    string          `json:"period"` // YYYY-MM
	Amount    decimal.Decimal `json:"amount"`
	Method    string          `json:"method"`
	Status    Status          `json:"status"`
	CreatedAt string          `json:"created_at"`
}

// Receipt is the numbered proof issued when a payment is confirmed.
type Receipt struct {
	ID        string          `json:"id"`
	PaymentID string          `json:"payment_id"`
	Number    string          `json:"number"`
	Amount    decimal.Decimal `json:"amount"`
	IssuedAt  string          `json:"issued_at"`
}

// PaymentFilter narrows payment listings.
type PaymentFilter struct {
	OwnerID string
	UnitID  string
	Period  string
	Status  string
	Limit   int
	Offset  int
}
