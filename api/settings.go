package api

import (
	"log/slog"
	"net/http"

	"github.com/billbatista/acasinha-ledger/currency"
	"github.com/shopspring/decimal"
)

func (h *Handler) getSettings(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.state.Settings())
}

func (h *Handler) updateSettings(w http.ResponseWriter, r *http.Request) {
	req := h.state.Settings()
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	settings, err := h.state.UpdateSettings(req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	slog.Info("settings updated", "base_currency", settings.BaseCurrency, "strict_settlements", settings.StrictSettlements)
	writeJSON(w, http.StatusOK, settings)
}

type ratesResponse struct {
	Reference currency.Code                     `json:"reference"`
	Rates     map[currency.Code]decimal.Decimal `json:"rates"`
}

func (h *Handler) getRates(w http.ResponseWriter, r *http.Request) {
	ref, rates := h.state.Rates().Snapshot()
	writeJSON(w, http.StatusOK, ratesResponse{Reference: ref, Rates: rates})
}

func (h *Handler) refreshRates(w http.ResponseWriter, r *http.Request) {
	if h.rates == nil {
		writeMessage(w, http.StatusServiceUnavailable, "rate refresh is not configured")
		return
	}
	if err := h.rates.Refresh(r.Context()); err != nil {
		slog.Warn("manual rate refresh failed", "error", err)
		writeMessage(w, http.StatusBadGateway, "could not refresh exchange rates")
		return
	}
	h.getRates(w, r)
}
