package app

import (
	"context"
	"fmt"
	"time"

	"github.com/billbatista/acasinha-ledger/category"
	"github.com/billbatista/acasinha-ledger/eventlogger"
	"github.com/billbatista/acasinha-ledger/ledger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type LedgerInput struct {
	Name    string      `json:"name"`
	Type    ledger.Type `json:"type"`
	Members []uuid.UUID `json:"members"`
}

func (s *State) ListLedgers(ctx context.Context) ([]ledger.Ledger, error) {
	return s.ledgers.ListLedgers(ctx)
}

func (s *State) GetLedger(ctx context.Context, ledgerID uuid.UUID) (*ledger.Ledger, error) {
	l, err := s.ledgers.GetLedgerByID(ctx, ledgerID)
	if err != nil {
		return nil, fmt.Errorf("fetching ledger: %w", err)
	}
	if l == nil {
		return nil, ErrLedgerNotFound
	}
	return l, nil
}

func (s *State) CreateLedger(ctx context.Context, actorID uuid.UUID, in LedgerInput) (*ledger.Ledger, error) {
	l, err := ledger.NewLedger(in.Name, in.Type, in.Members, actorID)
	if err != nil {
		return nil, err
	}
	if err := s.requireUsers(ctx, l.Members); err != nil {
		return nil, err
	}

	if err := s.ledgers.CreateNew(ctx, l); err != nil {
		return nil, fmt.Errorf("creating ledger: %w", err)
	}

	s.record(ledger.EventLedgerCreated, actorID, l.ID, ledger.NewLedgerEvent(l))
	return &l, nil
}

func (s *State) UpdateLedger(ctx context.Context, actorID, ledgerID uuid.UUID, in LedgerInput) (*ledger.Ledger, error) {
	current, err := s.GetLedger(ctx, ledgerID)
	if err != nil {
		return nil, err
	}

	updated, err := ledger.NewLedger(in.Name, in.Type, in.Members, current.CreatedBy)
	if err != nil {
		return nil, err
	}
	updated.ID = current.ID
	updated.CreatedAt = current.CreatedAt
	if err := s.requireUsers(ctx, updated.Members); err != nil {
		return nil, err
	}

	if err := s.ledgers.UpdateLedger(ctx, updated); err != nil {
		return nil, fmt.Errorf("updating ledger: %w", err)
	}

	s.record(ledger.EventLedgerUpdated, actorID, updated.ID, ledger.NewLedgerEvent(updated))
	return &updated, nil
}

// DeleteLedger removes the ledger and all of its expenses.
func (s *State) DeleteLedger(ctx context.Context, actorID, ledgerID uuid.UUID) error {
	l, err := s.GetLedger(ctx, ledgerID)
	if err != nil {
		return err
	}
	if err := s.ledgers.DeleteLedger(ctx, ledgerID); err != nil {
		return fmt.Errorf("deleting ledger: %w", err)
	}

	s.record(ledger.EventLedgerDeleted, actorID, ledgerID, ledger.NewLedgerEvent(*l))
	return nil
}

// Balances returns every member's net position in the current base
// currency. With strict settlements enabled a settlement without a
// receiver fails the whole computation.
func (s *State) Balances(ctx context.Context, ledgerID uuid.UUID) ([]ledger.Balance, error) {
	l, expenses, err := s.ledgerWithExpenses(ctx, ledgerID)
	if err != nil {
		return nil, err
	}

	settings := s.Settings()
	if !settings.StrictSettlements {
		return ledger.MemberBalances(*l, expenses, settings.BaseCurrency, s.convert()), nil
	}

	balances := make([]ledger.Balance, 0, len(l.Members))
	for _, userID := range l.Members {
		amount, err := ledger.CalculateBalanceStrict(*l, expenses, userID, settings.BaseCurrency, s.convert())
		if err != nil {
			return nil, err
		}
		balances = append(balances, ledger.Balance{UserID: userID, Amount: amount})
	}
	return balances, nil
}

func (s *State) Balance(ctx context.Context, ledgerID, userID uuid.UUID) (decimal.Decimal, error) {
	l, expenses, err := s.ledgerWithExpenses(ctx, ledgerID)
	if err != nil {
		return decimal.Zero, err
	}
	return s.balanceOf(*l, expenses, userID)
}

func (s *State) balanceOf(l ledger.Ledger, expenses []ledger.Expense, userID uuid.UUID) (decimal.Decimal, error) {
	settings := s.Settings()
	if settings.StrictSettlements {
		return ledger.CalculateBalanceStrict(l, expenses, userID, settings.BaseCurrency, s.convert())
	}
	return ledger.CalculateBalance(l, expenses, userID, settings.BaseCurrency, s.convert()), nil
}

// SettleUp records the payment that zeroes the balance between the current
// user and the first other member of the ledger.
func (s *State) SettleUp(ctx context.Context, ledgerID, currentUserID uuid.UUID) (*ledger.Expense, error) {
	l, expenses, err := s.ledgerWithExpenses(ctx, ledgerID)
	if err != nil {
		return nil, err
	}
	if !l.HasMember(currentUserID) {
		return nil, ledger.ErrNotMember
	}

	other, ok := ledger.CounterpartOf(*l, currentUserID)
	if !ok {
		return nil, ErrNoCounterpart
	}

	balance, err := s.balanceOf(*l, expenses, currentUserID)
	if err != nil {
		return nil, err
	}

	settlement, ok := ledger.SettleUp(*l, currentUserID, other, balance, s.Settings().BaseCurrency)
	if !ok {
		return nil, ErrNothingToSettle
	}

	cat, err := s.categories.GetByName(ctx, category.OtherName)
	if err != nil {
		return nil, fmt.Errorf("fetching settlement category: %w", err)
	}
	if cat != nil {
		settlement.CategoryID = uuid.NullUUID{UUID: cat.ID, Valid: true}
	}

	if err := s.ledgers.SaveExpense(ctx, *settlement); err != nil {
		return nil, fmt.Errorf("saving settlement: %w", err)
	}

	s.record(ledger.EventLedgerSettled, currentUserID, l.ID, ledger.NewSettledEvent(*settlement))
	return settlement, nil
}

// Stats summarizes the ledger's spending in period against the monthly
// budget. A zero period covers the current UTC month.
func (s *State) Stats(ctx context.Context, ledgerID uuid.UUID, period ledger.Period) (ledger.Summary, error) {
	_, expenses, err := s.ledgerWithExpenses(ctx, ledgerID)
	if err != nil {
		return ledger.Summary{}, err
	}
	if period.From.IsZero() && period.To.IsZero() {
		period = currentMonth(time.Now())
	}

	settings := s.Settings()
	return ledger.Summarize(expenses, period, settings.BaseCurrency, s.convert(), settings.MonthlyBudget), nil
}

// Activity lists the newest recorded events of a ledger.
func (s *State) Activity(ctx context.Context, ledgerID uuid.UUID, limit int) ([]eventlogger.Event, error) {
	if _, err := s.GetLedger(ctx, ledgerID); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return s.history.ForLedger(ctx, ledgerID, limit)
}

// currentMonth bounds the UTC month containing now, matching the UTC
// boundaries built from explicit from/to dates.
func currentMonth(now time.Time) ledger.Period {
	return ledger.MonthOf(now.UTC())
}

func (s *State) ledgerWithExpenses(ctx context.Context, ledgerID uuid.UUID) (*ledger.Ledger, []ledger.Expense, error) {
	l, err := s.GetLedger(ctx, ledgerID)
	if err != nil {
		return nil, nil, err
	}
	expenses, err := s.ledgers.GetExpenses(ctx, ledgerID)
	if err != nil {
		return nil, nil, fmt.Errorf("fetching expenses: %w", err)
	}
	return l, expenses, nil
}

func (s *State) requireUsers(ctx context.Context, ids []uuid.UUID) error {
	for _, id := range ids {
		u, err := s.users.GetByID(ctx, id)
		if err != nil {
			return fmt.Errorf("fetching member: %w", err)
		}
		if u == nil {
			return fmt.Errorf("member %s: %w", id, ErrUserNotFound)
		}
	}
	return nil
}
