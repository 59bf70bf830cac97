package app

import (
	"context"
	"fmt"

	"github.com/billbatista/acasinha-ledger/ledger"
	"github.com/google/uuid"
)

func (s *State) ListExpenses(ctx context.Context, ledgerID uuid.UUID) ([]ledger.Expense, error) {
	_, expenses, err := s.ledgerWithExpenses(ctx, ledgerID)
	return expenses, err
}

func (s *State) GetExpense(ctx context.Context, expenseID uuid.UUID) (*ledger.Expense, error) {
	e, err := s.ledgers.GetExpense(ctx, expenseID)
	if err != nil {
		return nil, fmt.Errorf("fetching expense: %w", err)
	}
	if e == nil {
		return nil, ErrExpenseNotFound
	}
	return e, nil
}

func (s *State) AddExpense(ctx context.Context, actorID, ledgerID uuid.UUID, in ledger.ExpenseInput) (*ledger.Expense, error) {
	l, err := s.GetLedger(ctx, ledgerID)
	if err != nil {
		return nil, err
	}
	if err := checkParticipants(*l, in); err != nil {
		return nil, err
	}

	e, err := ledger.NewExpense(*l, in)
	if err != nil {
		return nil, err
	}
	if err := s.ledgers.SaveExpense(ctx, *e); err != nil {
		return nil, fmt.Errorf("saving expense: %w", err)
	}

	s.record(ledger.EventExpenseAdded, actorID, l.ID, ledger.NewExpenseEvent(*e))
	return e, nil
}

// UpdateExpense replaces every editable field of an expense. Settlements
// are immutable; delete and settle again instead.
func (s *State) UpdateExpense(ctx context.Context, actorID, expenseID uuid.UUID, in ledger.ExpenseInput) (*ledger.Expense, error) {
	current, err := s.GetExpense(ctx, expenseID)
	if err != nil {
		return nil, err
	}
	if current.IsSettlement {
		return nil, ledger.ErrSettlementType
	}

	l, err := s.GetLedger(ctx, current.LedgerID)
	if err != nil {
		return nil, err
	}
	if err := checkParticipants(*l, in); err != nil {
		return nil, err
	}

	updated, err := ledger.NewExpense(*l, in)
	if err != nil {
		return nil, err
	}
	updated.ID = current.ID
	updated.CreatedAt = current.CreatedAt
	updated.Pinned = current.Pinned

	if err := s.ledgers.UpdateExpense(ctx, *updated); err != nil {
		return nil, fmt.Errorf("updating expense: %w", err)
	}

	s.record(ledger.EventExpenseUpdated, actorID, l.ID, ledger.NewExpenseEvent(*updated))
	return updated, nil
}

func (s *State) DeleteExpense(ctx context.Context, actorID, expenseID uuid.UUID) error {
	e, err := s.GetExpense(ctx, expenseID)
	if err != nil {
		return err
	}
	if err := s.ledgers.DeleteExpense(ctx, expenseID); err != nil {
		return fmt.Errorf("deleting expense: %w", err)
	}

	s.record(ledger.EventExpenseDeleted, actorID, e.LedgerID, ledger.NewExpenseEvent(*e))
	return nil
}

// DuplicateExpense saves a copy of an expense dated now.
func (s *State) DuplicateExpense(ctx context.Context, actorID, expenseID uuid.UUID) (*ledger.Expense, error) {
	e, err := s.GetExpense(ctx, expenseID)
	if err != nil {
		return nil, err
	}
	if e.IsSettlement {
		return nil, ledger.ErrSettlementType
	}

	dup := e.AsTemplate()
	if err := s.ledgers.SaveExpense(ctx, *dup); err != nil {
		return nil, fmt.Errorf("saving duplicate: %w", err)
	}

	s.record(ledger.EventExpenseAdded, actorID, dup.LedgerID, ledger.NewExpenseEvent(*dup))
	return dup, nil
}

// PinExpense marks an expense as a reusable template, or unmarks it.
// Settlements can't be pinned.
func (s *State) PinExpense(ctx context.Context, actorID, expenseID uuid.UUID, pinned bool) (*ledger.Expense, error) {
	e, err := s.GetExpense(ctx, expenseID)
	if err != nil {
		return nil, err
	}
	if e.IsSettlement {
		return nil, ledger.ErrSettlementType
	}
	if e.Pinned == pinned {
		return e, nil
	}

	e.Pinned = pinned
	if err := s.ledgers.UpdateExpense(ctx, *e); err != nil {
		return nil, fmt.Errorf("pinning expense: %w", err)
	}

	s.record(ledger.EventExpensePinned, actorID, e.LedgerID, map[string]any{
		"expense_id": e.ID.String(),
		"pinned":     pinned,
	})
	return e, nil
}

// PinnedExpenses lists the ledger's pinned templates, newest first.
func (s *State) PinnedExpenses(ctx context.Context, ledgerID uuid.UUID) ([]ledger.Expense, error) {
	_, expenses, err := s.ledgerWithExpenses(ctx, ledgerID)
	if err != nil {
		return nil, err
	}

	pinned := make([]ledger.Expense, 0)
	for _, e := range expenses {
		if e.Pinned && !e.IsSettlement {
			pinned = append(pinned, e)
		}
	}
	return pinned, nil
}

// checkParticipants requires the payer and beneficiary to belong to l.
// Ledgers without members accept anyone.
func checkParticipants(l ledger.Ledger, in ledger.ExpenseInput) error {
	if len(l.Members) == 0 {
		return nil
	}
	if in.PaidBy != uuid.Nil && !l.HasMember(in.PaidBy) {
		return ledger.ErrNotMember
	}
	if in.BeneficiaryID.Valid && !l.HasMember(in.BeneficiaryID.UUID) {
		return ledger.ErrNotMember
	}
	return nil
}
