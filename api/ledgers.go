package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/billbatista/acasinha-ledger/app"
	"github.com/billbatista/acasinha-ledger/currency"
	"github.com/billbatista/acasinha-ledger/ledger"
	"github.com/shopspring/decimal"
)

func (h *Handler) listLedgers(w http.ResponseWriter, r *http.Request) {
	ledgers, err := h.state.ListLedgers(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ledgers)
}

func (h *Handler) createLedger(w http.ResponseWriter, r *http.Request) {
	var req app.LedgerInput
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	l, err := h.state.CreateLedger(r.Context(), currentUser(r), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, l)
}

func (h *Handler) getLedger(w http.ResponseWriter, r *http.Request) {
	ledgerID, err := idParam(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	l, err := h.state.GetLedger(r.Context(), ledgerID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, l)
}

func (h *Handler) updateLedger(w http.ResponseWriter, r *http.Request) {
	ledgerID, err := idParam(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req app.LedgerInput
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	l, err := h.state.UpdateLedger(r.Context(), currentUser(r), ledgerID, req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, l)
}

func (h *Handler) deleteLedger(w http.ResponseWriter, r *http.Request) {
	ledgerID, err := idParam(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := h.state.DeleteLedger(r.Context(), currentUser(r), ledgerID); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type balancesResponse struct {
	Currency  currency.Code    `json:"currency"`
	Balances  []ledger.Balance `json:"balances"`
	MyBalance decimal.Decimal  `json:"my_balance"`
}

func (h *Handler) balances(w http.ResponseWriter, r *http.Request) {
	ledgerID, err := idParam(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	balances, err := h.state.Balances(r.Context(), ledgerID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	resp := balancesResponse{
		Currency:  h.state.Settings().BaseCurrency,
		Balances:  balances,
		MyBalance: decimal.Zero,
	}
	me := currentUser(r)
	for _, b := range balances {
		if b.UserID == me {
			resp.MyBalance = b.Amount
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) settle(w http.ResponseWriter, r *http.Request) {
	ledgerID, err := idParam(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	settlement, err := h.state.SettleUp(r.Context(), ledgerID, currentUser(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, settlement)
}

// stats accepts optional from/to days, both inclusive. Without them the
// current month is summarized.
func (h *Handler) stats(w http.ResponseWriter, r *http.Request) {
	ledgerID, err := idParam(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	var period ledger.Period
	if from := r.URL.Query().Get("from"); from != "" {
		if period.From, err = time.Parse(time.DateOnly, from); err != nil {
			writeError(w, r, errInvalidDate)
			return
		}
		period.To = period.From.AddDate(0, 1, 0)
	}
	if to := r.URL.Query().Get("to"); to != "" {
		day, err := time.Parse(time.DateOnly, to)
		if err != nil {
			writeError(w, r, errInvalidDate)
			return
		}
		period.To = day.AddDate(0, 0, 1)
		if period.From.IsZero() {
			period.From = time.Date(day.Year(), day.Month(), 1, 0, 0, 0, 0, time.UTC)
		}
	}

	summary, err := h.state.Stats(r.Context(), ledgerID, period)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (h *Handler) activity(w http.ResponseWriter, r *http.Request) {
	ledgerID, err := idParam(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	events, err := h.state.Activity(r.Context(), ledgerID, limit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, events)
}
