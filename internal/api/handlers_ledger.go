package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/example/condo-admin/internal/currency"
	"github.com/example/condo-admin/internal/export"
	"github.com/example/condo-admin/internal/ledger"
	"github.com/example/condo-admin/internal/security"
)

type recordMovementRequest struct {
	Date        string          `json:"date"`
	Description string          `json:"description"`
	Kind        string          `json:"kind"`
	Amount      decimal.Decimal `json:"amount"`
}

type statementLine struct {
	ID             string `json:"id"`
	Date           string `json:"date"`
	Description    string `json:"description"`
	Kind           string `json:"kind"`
	Amount         string `json:"amount"`
	RunningBalance string `json:"running_balance"`
}

type statementResponse struct {
	CorrelationID  string           `json:"correlation_id"`
	Account        *ledger.Account  `json:"account"`
	OpeningBalance string           `json:"opening_balance"`
	Lines          []statementLine  `json:"lines"`
	TotalDebit     string           `json:"total_debit"`
	TotalCredit    string           `json:"total_credit"`
	ClosingBalance string           `json:"closing_balance"`
	Warnings       []ledger.Warning `json:"warnings,omitempty"`
}

func handleCreateAccount(deps Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ledger.CreateAccountRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			security.WriteJSONError(w, r, http.StatusBadRequest, "invalid_json")
			return
		}

		account, err := deps.Ledger.CreateAccount(r.Context(), req)
		if err != nil {
			security.WriteJSONError(w, r, http.StatusBadRequest, "invalid_request")
			return
		}
		writeJSON(w, r, http.StatusCreated, account)
	}
}

func handleListAccounts(deps Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filter := ledger.AccountFilter{OwnerID: r.URL.Query().Get("owner_id")}
		if v := r.URL.Query().Get("limit"); v != "" {
			if i, err := strconv.Atoi(v); err == nil {
				filter.Limit = i
			}
		}
		if v := r.URL.Query().Get("offset"); v != "" {
			if i, err := strconv.Atoi(v); err == nil {
				filter.Offset = i
			}
		}

		accounts, err := deps.Ledger.ListAccounts(r.Context(), filter)
		if err != nil {
			security.WriteJSONError(w, r, http.StatusInternalServerError, "internal_error")
			return
		}
		writeJSON(w, r, http.StatusOK, accounts)
	}
}

func handleGetAccount(deps Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		account, err := deps.Ledger.GetAccount(r.Context(), chi.URLParam(r, "accountID"))
		if err != nil {
			if errors.Is(err, ledger.ErrAccountNotFound) {
				security.WriteJSONError(w, r, http.StatusNotFound, "not_found")
				return
			}
			security.WriteJSONError(w, r, http.StatusInternalServerError, "internal_error")
			return
		}
		writeJSON(w, r, http.StatusOK, account)
	}
}

func parseMovementDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}

func handleRecordMovement(deps Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req recordMovementRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			security.WriteJSONError(w, r, http.StatusBadRequest, "invalid_json")
			return
		}

		date, err := parseMovementDate(req.Date)
		if err != nil {
			security.WriteJSONError(w, r, http.StatusBadRequest, "invalid_date")
			return
		}

		movement, err := deps.Ledger.RecordMovement(r.Context(), ledger.RecordMovementRequest{
			AccountID:   chi.URLParam(r, "accountID"),
			Date:        date,
			Description: req.Description,
			Kind:        req.Kind,
			Amount:      req.Amount,
		})
		if err != nil {
			if errors.Is(err, ledger.ErrAccountNotFound) {
				security.WriteJSONError(w, r, http.StatusNotFound, "not_found")
				return
			}
			security.WriteJSONError(w, r, http.StatusBadRequest, "invalid_request")
			return
		}
		writeJSON(w, r, http.StatusCreated, movement)
	}
}

// handleStatement serves the reconciled account statement. The JSON view,
// the CSV download, and the printable page all come from the same
// reconciliation pass.
func handleStatement(deps Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		accountID := chi.URLParam(r, "accountID")
		account, rec, err := deps.Ledger.Statement(r.Context(), accountID)
		if err != nil {
			if errors.Is(err, ledger.ErrAccountNotFound) {
				security.WriteJSONError(w, r, http.StatusNotFound, "not_found")
				return
			}
			security.WriteJSONError(w, r, http.StatusInternalServerError, "internal_error")
			return
		}

		title := fmt.Sprintf("Account statement %s", account.ID)
		switch r.URL.Query().Get("format") {
		case "csv":
			w.Header().Set("Content-Type", "text/csv; charset=utf-8")
			w.Header().Set("Content-Disposition",
				fmt.Sprintf("attachment; filename=%q", "statement-"+account.ID+".csv"))
			if err := export.WriteCSV(w, export.StatementTable(title, rec)); err != nil {
				deps.Logger.Error("statement csv write failed", "error", err, "account_id", accountID)
			}
			return
		case "print":
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			if err := export.RenderPrintHTML(w, export.StatementTable(title, rec)); err != nil {
				deps.Logger.Error("statement print render failed", "error", err, "account_id", accountID)
			}
			return
		}

		resp := statementResponse{
			CorrelationID:  security.CorrelationIDFromContext(r.Context()),
			Account:        account,
			OpeningBalance: currency.Format(rec.OpeningBalance),
			Lines:          make([]statementLine, 0, len(rec.Movements)),
			TotalDebit:     currency.Format(rec.Summary.TotalDebit),
			TotalCredit:    currency.Format(rec.Summary.TotalCredit),
			ClosingBalance: currency.Format(rec.Summary.ClosingBalance),
			Warnings:       rec.Warnings,
		}
		for _, m := range rec.Movements {
			resp.Lines = append(resp.Lines, statementLine{
				ID:             m.ID,
				Date:           m.Date.Format("02/01/2006"),
				Description:    m.Description,
				Kind:           string(m.Kind),
				Amount:         currency.Format(m.Amount),
				RunningBalance: currency.Format(m.RunningBalance),
			})
		}
		writeJSON(w, r, http.StatusOK, resp)
	}
}
