package ledger

import (
	"context"
	"errors"
	"slices"
	"strings"
	"time"

	"github.com/billbatista/acasinha-ledger/currency"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type SplitType string

const (
	SplitTypeEqual          SplitType = "equal"
	SplitTypeFullForPartner SplitType = "full_for_partner"
	SplitTypePercentage     SplitType = "percentage"
	SplitTypeAmount         SplitType = "amount"
	SplitTypeSettlement     SplitType = "settlement"
)

// Regular reports whether t is one of the four expense policies that
// attribute cost to members (everything except settlement).
func (t SplitType) Regular() bool {
	switch t {
	case SplitTypeEqual, SplitTypeFullForPartner, SplitTypePercentage, SplitTypeAmount:
		return true
	}
	return false
}

type Type string

const (
	TypeDaily Type = "daily"
	TypeTrip  Type = "trip"
)

type Ledger struct {
	ID        uuid.UUID   `json:"id,omitempty"`
	Name      string      `json:"name,omitempty"`
	Type      Type        `json:"type,omitempty"`
	Members   []uuid.UUID `json:"members"`
	CreatedBy uuid.UUID   `json:"created_by,omitempty"`
	CreatedAt time.Time   `json:"created_at,omitempty"`
}

func (l Ledger) HasMember(userID uuid.UUID) bool {
	return slices.Contains(l.Members, userID)
}

type Expense struct {
	ID            uuid.UUID                     `json:"id,omitempty"`
	LedgerID      uuid.UUID                     `json:"ledger_id,omitempty"`
	Amount        decimal.Decimal               `json:"amount"`
	Currency      currency.Code                 `json:"currency"`
	Description   string                        `json:"description,omitempty"`
	CategoryID    uuid.NullUUID                 `json:"category_id"`
	Date          time.Time                     `json:"date"`
	PaidBy        uuid.UUID                     `json:"paid_by"`
	SplitType     SplitType                     `json:"split_type"`
	BeneficiaryID uuid.NullUUID                 `json:"beneficiary_id"`
	Splits        map[uuid.UUID]decimal.Decimal `json:"splits,omitempty"`
	IsSettlement  bool                          `json:"is_settlement"`
	Notes         string                        `json:"notes,omitempty"`
	ReceiptImage  string                        `json:"receipt_image,omitempty"`
	Tags          []string                      `json:"tags,omitempty"`
	Pinned        bool                          `json:"is_pinned"`
	CreatedAt     time.Time                     `json:"created_at,omitempty"`
}

// ExpenseSplit is one stored row of an expense's per-member values.
// Value is a percentage or an amount in the expense currency, depending on
// the expense split type.
type ExpenseSplit struct {
	ExpenseID uuid.UUID       `json:"expense_id,omitempty"`
	UserID    uuid.UUID       `json:"user_id,omitempty"`
	Value     decimal.Decimal `json:"value"`
}

// Balance represents a user's net balance in a ledger, in base currency.
// Calculated on-the-fly from expenses.
type Balance struct {
	UserID uuid.UUID       `json:"user_id"`
	Amount decimal.Decimal `json:"amount"` // Positive = owed money, Negative = owes money
}

type Repository interface {
	CreateNew(ctx context.Context, ledger Ledger) error
	UpdateLedger(ctx context.Context, ledger Ledger) error
	GetLedgerByID(ctx context.Context, ledgerID uuid.UUID) (*Ledger, error)
	ListLedgers(ctx context.Context) ([]Ledger, error)
	DeleteLedger(ctx context.Context, ledgerID uuid.UUID) error
	RemoveMember(ctx context.Context, userID uuid.UUID) error
	SaveExpense(ctx context.Context, expense Expense) error
	UpdateExpense(ctx context.Context, expense Expense) error
	DeleteExpense(ctx context.Context, expenseID uuid.UUID) error
	GetExpense(ctx context.Context, expenseID uuid.UUID) (*Expense, error)
	GetExpenses(ctx context.Context, ledgerID uuid.UUID) ([]Expense, error)
}

var (
	ErrEmptyName          = errors.New("name can't be empty")
	ErrInvalidType        = errors.New("ledger type must be daily or trip")
	ErrInvalidAmount      = errors.New("amount must be positive")
	ErrEmptyDescription   = errors.New("description can't be empty")
	ErrMissingPayer       = errors.New("expense needs a payer")
	ErrUnknownSplitType   = errors.New("unsupported split type")
	ErrMissingBeneficiary = errors.New("full_for_partner expense needs a beneficiary")
	ErrSettlementType     = errors.New("settlement records can only be created by settling up")
	ErrNotMember          = errors.New("user is not a member of the ledger")
)

func NewLedger(name string, ledgerType Type, members []uuid.UUID, createdBy uuid.UUID) (Ledger, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Ledger{}, ErrEmptyName
	}

	if ledgerType == "" {
		ledgerType = TypeTrip
	}
	if ledgerType != TypeDaily && ledgerType != TypeTrip {
		return Ledger{}, ErrInvalidType
	}

	// An empty member list means "just me".
	if len(members) == 0 && createdBy != uuid.Nil {
		members = []uuid.UUID{createdBy}
	}

	return Ledger{
		ID:        uuid.New(),
		Name:      name,
		Type:      ledgerType,
		Members:   dedupe(members),
		CreatedBy: createdBy,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// ExpenseInput is what the entry form submits.
type ExpenseInput struct {
	Amount        decimal.Decimal               `json:"amount"`
	Currency      currency.Code                 `json:"currency"`
	Description   string                        `json:"description"`
	CategoryID    uuid.NullUUID                 `json:"category_id"`
	Date          time.Time                     `json:"date"`
	PaidBy        uuid.UUID                     `json:"paid_by"`
	SplitType     SplitType                     `json:"split_type"`
	BeneficiaryID uuid.NullUUID                 `json:"beneficiary_id"`
	Splits        map[uuid.UUID]decimal.Decimal `json:"splits"`
	Notes         string                        `json:"notes"`
	ReceiptImage  string                        `json:"receipt_image"`
	Tags          []string                      `json:"tags"`
}

// NewExpense builds a regular expense in l, running the entry-time checks.
// Settlement records are refused here; SettleUp is the only way to make one.
func NewExpense(l Ledger, in ExpenseInput) (*Expense, error) {
	if in.SplitType == SplitTypeSettlement {
		return nil, ErrSettlementType
	}

	date := in.Date
	if date.IsZero() {
		date = time.Now().UTC()
	}

	expense := &Expense{
		ID:            uuid.New(),
		LedgerID:      l.ID,
		Amount:        in.Amount,
		Currency:      in.Currency,
		Description:   strings.TrimSpace(in.Description),
		CategoryID:    in.CategoryID,
		Date:          date,
		PaidBy:        in.PaidBy,
		SplitType:     in.SplitType,
		BeneficiaryID: in.BeneficiaryID,
		Splits:        in.Splits,
		Notes:         in.Notes,
		ReceiptImage:  in.ReceiptImage,
		Tags:          in.Tags,
		CreatedAt:     time.Now().UTC(),
	}

	if err := expense.Validate(l.Members); err != nil {
		return nil, err
	}
	expense.normalize()

	return expense, nil
}

// Validate runs the entry-time invariants. Balance computation never calls
// it: stored data is folded as-is.
func (e *Expense) Validate(members []uuid.UUID) error {
	if e.Description == "" {
		return ErrEmptyDescription
	}

	if !e.Amount.IsPositive() {
		return ErrInvalidAmount
	}

	if !e.Currency.Valid() {
		return currency.ErrUnsupportedCurrency
	}

	if e.PaidBy == uuid.Nil {
		return ErrMissingPayer
	}

	if e.IsSettlement || e.SplitType == SplitTypeSettlement {
		if !e.IsSettlement || e.SplitType != SplitTypeSettlement {
			return ErrSettlementType
		}
		return nil
	}

	switch e.SplitType {
	case SplitTypeEqual:
		return nil
	case SplitTypeFullForPartner:
		if !e.BeneficiaryID.Valid {
			return ErrMissingBeneficiary
		}
		return nil
	case SplitTypePercentage, SplitTypeAmount:
		return ValidateSplits(e.SplitType, e.Amount, e.Splits, members)
	default:
		return ErrUnknownSplitType
	}
}

// normalize drops fields that the split type does not make authoritative.
func (e *Expense) normalize() {
	if e.SplitType != SplitTypeFullForPartner && !e.IsSettlement {
		e.BeneficiaryID = uuid.NullUUID{}
	}
	if e.SplitType != SplitTypePercentage && e.SplitType != SplitTypeAmount {
		e.Splits = nil
	}
}

// AsTemplate copies e into a fresh record with a new id, dated now, so it
// can be saved again as a new expense.
func (e Expense) AsTemplate() *Expense {
	dup := e
	dup.ID = uuid.New()
	dup.Date = time.Now().UTC()
	dup.CreatedAt = dup.Date

	if e.Splits != nil {
		dup.Splits = make(map[uuid.UUID]decimal.Decimal, len(e.Splits))
		for k, v := range e.Splits {
			dup.Splits[k] = v
		}
	}
	dup.Tags = slices.Clone(e.Tags)
	dup.Pinned = false

	return &dup
}

// SplitRows flattens the splits map for storage.
func (e Expense) SplitRows() []ExpenseSplit {
	rows := make([]ExpenseSplit, 0, len(e.Splits))
	for userID, value := range e.Splits {
		rows = append(rows, ExpenseSplit{ExpenseID: e.ID, UserID: userID, Value: value})
	}
	return rows
}

func dedupe(ids []uuid.UUID) []uuid.UUID {
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if id == uuid.Nil || slices.Contains(out, id) {
			continue
		}
		out = append(out, id)
	}
	return out
}
