package export

import (
	"github.com/example/condo-admin/internal/currency"
	"github.com/example/condo-admin/internal/ledger"
)

const statementDateLayout = "02/01/2006"

// StatementTable builds the export table for a reconciled current-account
// statement: one row per movement with the amount under its own column
// (debit or credit, the other blank) and the running balance, plus a
// totals footer. It consumes the reconciliation as-is and computes nothing.
func StatementTable(title string, rec ledger.Reconciliation) Table {
	t := Table{
		Title:  title,
		Header: []string{"Date", "Description", "Debit", "Credit", "Balance"},
		Rows:   make([][]string, 0, len(rec.Movements)),
	}

	for _, m := range rec.Movements {
		debit, credit := "", ""
		switch m.Kind {
		case ledger.KindDebit:
			debit = currency.Format(m.Amount)
		case ledger.KindCredit:
			credit = currency.Format(m.Amount)
		}

		t.Rows = append(t.Rows, []string{
			m.Date.Format(statementDateLayout),
			m.Description,
			debit,
			credit,
			currency.Format(m.RunningBalance),
		})
	}

	t.Footer = [][]string{{
		"",
		"Totals",
		currency.Format(rec.Summary.TotalDebit),
		currency.Format(rec.Summary.TotalCredit),
		currency.Format(rec.Summary.ClosingBalance),
	}}

	return t
}
