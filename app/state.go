package app

import (
	"errors"
	"sync"

	"github.com/billbatista/acasinha-ledger/category"
	"github.com/billbatista/acasinha-ledger/currency"
	"github.com/billbatista/acasinha-ledger/eventlogger"
	"github.com/billbatista/acasinha-ledger/ledger"
	"github.com/billbatista/acasinha-ledger/session"
	"github.com/billbatista/acasinha-ledger/user"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrLedgerNotFound   = errors.New("ledger not found")
	ErrExpenseNotFound  = errors.New("expense not found")
	ErrUserNotFound     = errors.New("user not found")
	ErrCategoryNotFound = errors.New("category not found")
	ErrNoCounterpart    = errors.New("ledger has no other member to settle with")
	ErrNothingToSettle  = errors.New("balance is already settled")
	ErrNegativeBudget   = errors.New("monthly budget can't be negative")
)

// Settings are the user-editable preferences shared by every ledger.
type Settings struct {
	BaseCurrency      currency.Code   `json:"base_currency"`
	MonthlyBudget     decimal.Decimal `json:"monthly_budget"`
	StrictSettlements bool            `json:"strict_settlements"`
}

type Repositories struct {
	Ledgers    ledger.Repository
	Users      user.Repository
	Categories category.Repository
	Sessions   session.Repository
}

// State is the application's shared state. It is built once in main and
// handed to the HTTP layer; nothing in it is global.
type State struct {
	ledgers    ledger.Repository
	users      user.Repository
	categories category.Repository
	sessions   session.Repository

	events  eventlogger.Sink
	history eventlogger.EventLogger
	rates   *currency.RateTable

	mu       sync.RWMutex
	settings Settings
}

func New(repos Repositories, events eventlogger.Sink, history eventlogger.EventLogger, rates *currency.RateTable, settings Settings) *State {
	return &State{
		ledgers:    repos.Ledgers,
		users:      repos.Users,
		categories: repos.Categories,
		sessions:   repos.Sessions,
		events:     events,
		history:    history,
		rates:      rates,
		settings:   settings,
	}
}

func (s *State) Settings() Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings
}

func (s *State) UpdateSettings(next Settings) (Settings, error) {
	if !next.BaseCurrency.Valid() {
		return Settings{}, currency.ErrUnsupportedCurrency
	}
	if next.MonthlyBudget.IsNegative() {
		return Settings{}, ErrNegativeBudget
	}

	s.mu.Lock()
	s.settings = next
	s.mu.Unlock()

	return next, nil
}

func (s *State) Rates() *currency.RateTable {
	return s.rates
}

func (s *State) convert() currency.ConvertFunc {
	return s.rates.Convert
}

func (s *State) record(eventType string, actorID, ledgerID uuid.UUID, data any) {
	if s.events == nil {
		return
	}
	opts := []eventlogger.EventOption{
		eventlogger.WithType(eventType),
		eventlogger.WithActor(actorID),
		eventlogger.WithData(data),
	}
	if ledgerID != uuid.Nil {
		opts = append(opts, eventlogger.WithLedger(ledgerID))
	}
	s.events.Log(eventlogger.NewEvent(opts...))
}
