package ledger

import (
	"github.com/billbatista/acasinha-ledger/currency"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	EventLedgerCreated  = "ledger.created"
	EventLedgerUpdated  = "ledger.updated"
	EventLedgerDeleted  = "ledger.deleted"
	EventLedgerSettled  = "ledger.settled"
	EventExpenseAdded   = "expense.added"
	EventExpenseUpdated = "expense.updated"
	EventExpenseDeleted = "expense.deleted"
	EventExpensePinned  = "expense.pinned"
)

type LedgerEvent struct {
	LedgerID uuid.UUID   `json:"ledger_id"`
	Name     string      `json:"name"`
	Type     Type        `json:"type"`
	Members  []uuid.UUID `json:"members"`
}

type ExpenseEvent struct {
	ExpenseID   uuid.UUID       `json:"expense_id"`
	LedgerID    uuid.UUID       `json:"ledger_id"`
	PaidBy      uuid.UUID       `json:"paid_by"`
	Amount      decimal.Decimal `json:"amount"`
	Currency    currency.Code   `json:"currency"`
	SplitType   SplitType       `json:"split_type"`
	Description string          `json:"description"`
}

type SettledEvent struct {
	LedgerID  uuid.UUID       `json:"ledger_id"`
	ExpenseID uuid.UUID       `json:"expense_id"`
	From      uuid.UUID       `json:"from"`
	To        uuid.UUID       `json:"to"`
	Amount    decimal.Decimal `json:"amount"`
	Currency  currency.Code   `json:"currency"`
}

func NewLedgerEvent(l Ledger) LedgerEvent {
	return LedgerEvent{LedgerID: l.ID, Name: l.Name, Type: l.Type, Members: l.Members}
}

func NewExpenseEvent(e Expense) ExpenseEvent {
	return ExpenseEvent{
		ExpenseID:   e.ID,
		LedgerID:    e.LedgerID,
		PaidBy:      e.PaidBy,
		Amount:      e.Amount,
		Currency:    e.Currency,
		SplitType:   e.SplitType,
		Description: e.Description,
	}
}

func NewSettledEvent(settlement Expense) SettledEvent {
	return SettledEvent{
		LedgerID:  settlement.LedgerID,
		ExpenseID: settlement.ID,
		From:      settlement.PaidBy,
		To:        settlement.BeneficiaryID.UUID,
		Amount:    settlement.Amount,
		Currency:  settlement.Currency,
	}
}
