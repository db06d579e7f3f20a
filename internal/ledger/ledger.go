package ledger

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Kind classifies a movement as money leaving or entering an account.
type Kind string

const (
	KindDebit  Kind = "debit"
	KindCredit Kind = "credit"
)

// ParseKind normalizes a wire value into a Kind. It accepts the English
// forms as well as the legacy Portuguese values ("debito", "credito")
// still emitted by older imports, in any casing. The second return value
// is false for anything else.
func ParseKind(s string) (Kind, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debit", "debito", "débito":
		return KindDebit, true
	case "credit", "credito", "crédito":
		return KindCredit, true
	}
	return Kind(s), false
}

// Movement is a single ledger entry against a current account. Amount is
// always non-negative; the sign of its effect on the balance is implied by
// Kind alone.
type Movement struct {
	ID          string          `json:"id"`
	AccountID   string          `json:"account_id"`
	Date        time.Time       `json:"date"`
	Description string          `json:"description"`
	Kind        Kind            `json:"kind"`
	Amount      decimal.Decimal `json:"amount"`
}

// Account is an owner's current account.
type Account struct {
	ID             string          `json:"id"`
	OwnerID        string          `json:"owner_id"`
	Description    string          `json:"description"`
	OpeningBalance decimal.Decimal `json:"opening_balance"`
	CreatedAt      string          `json:"created_at"`
}

// ReconciledMovement is a Movement annotated with the account balance
// immediately after the movement is applied.
type ReconciledMovement struct {
	Movement
	RunningBalance decimal.Decimal `json:"running_balance"`
}

// Summary aggregates a full movement batch.
type Summary struct {
	TotalDebit     decimal.Decimal `json:"total_debit"`
	TotalCredit    decimal.Decimal `json:"total_credit"`
	ClosingBalance decimal.Decimal `json:"closing_balance"`
}

// Warning flags a movement that could not contribute to the balance,
// typically an unrecognized kind coming from bad upstream data.
type Warning struct {
	Index      int    `json:"index"`
	MovementID string `json:"movement_id"`
	Kind       string `json:"kind"`
}

// Reconciliation is the derived view of one account statement: the opening
// balance, every movement annotated with its running balance, the batch
// summary, and any data-quality warnings collected along the way. It is
// recomputed from scratch on every request and never persisted.
type Reconciliation struct {
	OpeningBalance decimal.Decimal      `json:"opening_balance"`
	Movements      []ReconciledMovement `json:"movements"`
	Summary        Summary              `json:"summary"`
	Warnings       []Warning            `json:"warnings,omitempty"`
}

// Reconcile folds an ordered movement batch over an opening balance. The
// batch is processed exactly in input order; movements are never re-sorted.
// Debits subtract from the running balance, credits add to it, and a
// movement with any other kind contributes zero while still appearing in
// the output and in Warnings. The input slice is not mutated.
//
// Invariant: Summary.ClosingBalance == opening + TotalCredit - TotalDebit,
// which equals the last running balance whenever the batch is non-empty.
func Reconcile(opening decimal.Decimal, movements []Movement) Reconciliation {
	rec := Reconciliation{
		OpeningBalance: opening,
		Movements:      make([]ReconciledMovement, 0, len(movements)),
	}

	balance := opening
	totalDebit := decimal.Zero
	totalCredit := decimal.Zero

	for i, m := range movements {
		switch m.Kind {
		case KindDebit:
			balance = balance.Sub(m.Amount)
			totalDebit = totalDebit.Add(m.Amount)
		case KindCredit:
			balance = balance.Add(m.Amount)
			totalCredit = totalCredit.Add(m.Amount)
		default:
			rec.Warnings = append(rec.Warnings, Warning{
				Index:      i,
				MovementID: m.ID,
				Kind:       string(m.Kind),
			})
		}

		rec.Movements = append(rec.Movements, ReconciledMovement{
			Movement:       m,
			RunningBalance: balance,
		})
	}

	rec.Summary = Summary{
		TotalDebit:     totalDebit,
		TotalCredit:    totalCredit,
		ClosingBalance: opening.Add(totalCredit).Sub(totalDebit),
	}

	return rec
}
