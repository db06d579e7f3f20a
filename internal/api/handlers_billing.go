package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/example/condo-admin/internal/billing"
	"github.com/example/condo-admin/internal/security"
	"github.com/example/condo-admin/internal/session"
)

func actorFrom(r *http.Request) string {
	if claims, ok := session.CurrentSession(r.Context()); ok {
		return claims.Subject
	}
	return ""
}

func handleCreatePayment(deps Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req billing.CreatePaymentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			security.WriteJSONError(w, r, http.StatusBadRequest, "invalid_json")
			return
		}

		payment, err := deps.Billing.CreatePayment(r.Context(), req)
		if err != nil {
			security.WriteJSONError(w, r, http.StatusBadRequest, "invalid_request")
			return
		}
		writeJSON(w, r, http.StatusCreated, payment)
	}
}

func handleListPayments(deps Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f := billing.PaymentFilter{
			OwnerID: r.URL.Query().Get("owner_id"),
			UnitID:  r.URL.Query().Get("unit_id"),
			Period:  r.URL.Query().Get("period"),
			Status:  r.URL.Query().Get("status"),
		}
		if v := r.URL.Query().Get("limit"); v != "" {
			if i, err := strconv.Atoi(v); err == nil {
				f.Limit = i
			}
		}
		if v := r.URL.Query().Get("offset"); v != "" {
			if i, err := strconv.Atoi(v); err == nil {
				f.Offset = i
			}
		}

		payments, err := deps.Billing.ListPayments(r.Context(), f)
		if err != nil {
			security.WriteJSONError(w, r, http.StatusInternalServerError, "internal_error")
			return
		}
		writeJSON(w, r, http.StatusOK, payments)
	}
}

func handleGetPayment(deps Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payment, err := deps.Billing.GetPayment(r.Context(), chi.URLParam(r, "paymentID"))
		if err != nil {
			if errors.Is(err, billing.ErrPaymentNotFound) {
				security.WriteJSONError(w, r, http.StatusNotFound, "not_found")
				return
			}
			security.WriteJSONError(w, r, http.StatusInternalServerError, "internal_error")
			return
		}
		writeJSON(w, r, http.StatusOK, payment)
	}
}

func handleConfirmPayment(deps Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		receipt, err := deps.Billing.ConfirmPayment(r.Context(), chi.URLParam(r, "paymentID"), actorFrom(r))
		if err != nil {
			var transition *billing.InvalidTransitionError
			switch {
			case errors.Is(err, billing.ErrPaymentNotFound):
				security.WriteJSONError(w, r, http.StatusNotFound, "not_found")
			case errors.As(err, &transition):
				security.WriteJSONError(w, r, http.StatusConflict, "invalid_transition")
			default:
				security.WriteJSONError(w, r, http.StatusInternalServerError, "internal_error")
			}
			return
		}
		writeJSON(w, r, http.StatusOK, receipt)
	}
}

func handleCancelPayment(deps Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := deps.Billing.CancelPayment(r.Context(), chi.URLParam(r, "paymentID"), actorFrom(r))
		if err != nil {
			var transition *billing.InvalidTransitionError
			switch {
			case errors.Is(err, billing.ErrPaymentNotFound):
				security.WriteJSONError(w, r, http.StatusNotFound, "not_found")
			case errors.As(err, &transition):
				security.WriteJSONError(w, r, http.StatusConflict, "invalid_transition")
			default:
				security.WriteJSONError(w, r, http.StatusInternalServerError, "internal_error")
			}
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func handleListReceipts(deps Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, offset := 0, 0
		if v := r.URL.Query().Get("limit"); v != "" {
			if i, err := strconv.Atoi(v); err == nil {
				limit = i
			}
		}
		if v := r.URL.Query().Get("offset"); v != "" {
			if i, err := strconv.Atoi(v); err == nil {
				offset = i
			}
		}

		receipts, err := deps.Billing.ListReceipts(r.Context(), limit, offset)
		if err != nil {
			security.WriteJSONError(w, r, http.StatusInternalServerError, "internal_error")
			return
		}
		writeJSON(w, r, http.StatusOK, receipts)
	}
}
