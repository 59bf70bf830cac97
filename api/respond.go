package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/billbatista/acasinha-ledger/app"
	"github.com/billbatista/acasinha-ledger/category"
	"github.com/billbatista/acasinha-ledger/currency"
	"github.com/billbatista/acasinha-ledger/ledger"
	"github.com/billbatista/acasinha-ledger/user"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

var (
	errInvalidID   = errors.New("invalid id")
	errInvalidBody = errors.New("invalid request body")
	errInvalidDate = errors.New("dates must look like 2006-01-02")
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeError maps domain errors to status codes. Anything unrecognised is
// logged and reported as a 500 without details.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, app.ErrLedgerNotFound),
		errors.Is(err, app.ErrExpenseNotFound),
		errors.Is(err, app.ErrUserNotFound),
		errors.Is(err, app.ErrCategoryNotFound):
		writeMessage(w, http.StatusNotFound, err.Error())

	case errors.Is(err, app.ErrInvalidCredentials):
		writeMessage(w, http.StatusUnauthorized, err.Error())

	case errors.Is(err, user.ErrEmailExists),
		errors.Is(err, user.ErrLastUser),
		errors.Is(err, category.ErrLastCategory),
		errors.Is(err, app.ErrNothingToSettle),
		errors.Is(err, app.ErrNoCounterpart),
		errors.Is(err, ledger.ErrAmbiguousSettlement):
		writeMessage(w, http.StatusConflict, err.Error())

	case errors.Is(err, ledger.ErrNotMember):
		writeMessage(w, http.StatusUnprocessableEntity, err.Error())

	case errors.Is(err, errInvalidID),
		errors.Is(err, errInvalidBody),
		errors.Is(err, errInvalidDate),
		errors.Is(err, user.ErrInvalidEmail),
		errors.Is(err, user.ErrBlankPassword),
		errors.Is(err, user.ErrBlankName),
		errors.Is(err, category.ErrEmptyName),
		errors.Is(err, currency.ErrUnsupportedCurrency),
		errors.Is(err, app.ErrNegativeBudget),
		errors.Is(err, app.ErrAvatarTooLarge),
		errors.Is(err, ledger.ErrEmptyName),
		errors.Is(err, ledger.ErrInvalidType),
		errors.Is(err, ledger.ErrInvalidAmount),
		errors.Is(err, ledger.ErrEmptyDescription),
		errors.Is(err, ledger.ErrMissingPayer),
		errors.Is(err, ledger.ErrUnknownSplitType),
		errors.Is(err, ledger.ErrMissingBeneficiary),
		errors.Is(err, ledger.ErrSettlementType),
		errors.Is(err, ledger.ErrPercentageSum),
		errors.Is(err, ledger.ErrAmountSum),
		errors.Is(err, ledger.ErrNoSplits):
		writeMessage(w, http.StatusBadRequest, err.Error())

	default:
		slog.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		writeMessage(w, http.StatusInternalServerError, "internal server error")
	}
}

func decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: %v", errInvalidBody, err)
	}
	return nil
}

func idParam(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		return uuid.Nil, errInvalidID
	}
	return id, nil
}
