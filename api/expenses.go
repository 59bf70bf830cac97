package api

import (
	"net/http"

	"github.com/billbatista/acasinha-ledger/ledger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func (h *Handler) listExpenses(w http.ResponseWriter, r *http.Request) {
	ledgerID, err := idParam(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	expenses, err := h.state.ListExpenses(r.Context(), ledgerID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if expenses == nil {
		expenses = []ledger.Expense{}
	}
	writeJSON(w, http.StatusOK, expenses)
}

func (h *Handler) addExpense(w http.ResponseWriter, r *http.Request) {
	ledgerID, err := idParam(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req ledger.ExpenseInput
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if req.PaidBy == uuid.Nil {
		req.PaidBy = currentUser(r)
	}

	e, err := h.state.AddExpense(r.Context(), currentUser(r), ledgerID, req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, e)
}

func (h *Handler) getExpense(w http.ResponseWriter, r *http.Request) {
	expenseID, err := idParam(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	e, err := h.state.GetExpense(r.Context(), expenseID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

func (h *Handler) updateExpense(w http.ResponseWriter, r *http.Request) {
	expenseID, err := idParam(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req ledger.ExpenseInput
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	e, err := h.state.UpdateExpense(r.Context(), currentUser(r), expenseID, req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

func (h *Handler) deleteExpense(w http.ResponseWriter, r *http.Request) {
	expenseID, err := idParam(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := h.state.DeleteExpense(r.Context(), currentUser(r), expenseID); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) duplicateExpense(w http.ResponseWriter, r *http.Request) {
	expenseID, err := idParam(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	e, err := h.state.DuplicateExpense(r.Context(), currentUser(r), expenseID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, e)
}

type pinRequest struct {
	Pinned bool `json:"pinned"`
}

func (h *Handler) pinExpense(w http.ResponseWriter, r *http.Request) {
	expenseID, err := idParam(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req pinRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	e, err := h.state.PinExpense(r.Context(), currentUser(r), expenseID, req.Pinned)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

func (h *Handler) pinnedExpenses(w http.ResponseWriter, r *http.Request) {
	ledgerID, err := idParam(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	expenses, err := h.state.PinnedExpenses(r.Context(), ledgerID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, expenses)
}

type distributeRequest struct {
	SplitType ledger.SplitType              `json:"split_type"`
	Total     decimal.Decimal               `json:"total"`
	Members   []uuid.UUID                   `json:"members"`
	Splits    map[uuid.UUID]decimal.Decimal `json:"splits"`
}

type distributeResponse struct {
	Splits    map[uuid.UUID]decimal.Decimal `json:"splits"`
	Remaining decimal.Decimal               `json:"remaining"`
	Error     string                        `json:"error,omitempty"`
}

// distribute backs the split entry form: without splits it pre-fills an
// even distribution, with splits it reports what is left to assign.
func (h *Handler) distribute(w http.ResponseWriter, r *http.Request) {
	var req distributeRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	splits := req.Splits
	if splits == nil {
		var err error
		splits, err = ledger.DistributeEvenly(req.SplitType, req.Total, req.Members)
		if err != nil {
			writeError(w, r, err)
			return
		}
	}

	resp := distributeResponse{
		Splits:    splits,
		Remaining: ledger.Remaining(req.SplitType, req.Total, splits),
	}
	if err := ledger.ValidateSplits(req.SplitType, req.Total, splits, req.Members); err != nil {
		resp.Error = err.Error()
	}
	writeJSON(w, http.StatusOK, resp)
}
