package ledger

import (
	"testing"

	"github.com/billbatista/acasinha-ledger/currency"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLedger(t *testing.T) {
	l, err := NewLedger("  Japan Trip ", "", []uuid.UUID{alice, bob, alice, uuid.Nil}, alice)
	require.NoError(t, err)
	assert.Equal(t, "Japan Trip", l.Name)
	assert.Equal(t, TypeTrip, l.Type)
	assert.Equal(t, []uuid.UUID{alice, bob}, l.Members)
	assert.NotEqual(t, uuid.Nil, l.ID)

	solo, err := NewLedger("Me", TypeDaily, nil, alice)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{alice}, solo.Members)

	_, err = NewLedger(" ", TypeDaily, nil, alice)
	assert.ErrorIs(t, err, ErrEmptyName)

	_, err = NewLedger("x", Type("weekly"), nil, alice)
	assert.ErrorIs(t, err, ErrInvalidType)
}

func TestNewExpense(t *testing.T) {
	l := pair()
	base := ExpenseInput{
		Amount:      d("100"),
		Currency:    currency.TWD,
		Description: "Groceries",
		PaidBy:      alice,
		SplitType:   SplitTypeEqual,
	}

	t.Run("equal", func(t *testing.T) {
		in := base
		in.BeneficiaryID = beneficiary(bob)
		in.Splits = map[uuid.UUID]decimal.Decimal{alice: d("1")}

		e, err := NewExpense(l, in)
		require.NoError(t, err)
		assert.Equal(t, l.ID, e.LedgerID)
		assert.False(t, e.Date.IsZero())
		assert.False(t, e.BeneficiaryID.Valid, "beneficiary only matters for full_for_partner")
		assert.Nil(t, e.Splits)
	})

	t.Run("percentage", func(t *testing.T) {
		in := base
		in.SplitType = SplitTypePercentage
		in.Splits = map[uuid.UUID]decimal.Decimal{alice: d("50"), bob: d("50")}

		e, err := NewExpense(l, in)
		require.NoError(t, err)
		assert.Len(t, e.Splits, 2)
		assert.Len(t, e.SplitRows(), 2)
	})

	errs := []struct {
		name   string
		mutate func(*ExpenseInput)
		want   error
	}{
		{"blank description", func(in *ExpenseInput) { in.Description = " " }, ErrEmptyDescription},
		{"zero amount", func(in *ExpenseInput) { in.Amount = decimal.Zero }, ErrInvalidAmount},
		{"negative amount", func(in *ExpenseInput) { in.Amount = d("-3") }, ErrInvalidAmount},
		{"bad currency", func(in *ExpenseInput) { in.Currency = "GBP" }, currency.ErrUnsupportedCurrency},
		{"no payer", func(in *ExpenseInput) { in.PaidBy = uuid.Nil }, ErrMissingPayer},
		{"settlement", func(in *ExpenseInput) { in.SplitType = SplitTypeSettlement }, ErrSettlementType},
		{"unknown split", func(in *ExpenseInput) { in.SplitType = "thirds" }, ErrUnknownSplitType},
		{"partner without beneficiary", func(in *ExpenseInput) { in.SplitType = SplitTypeFullForPartner }, ErrMissingBeneficiary},
		{"bad amount split", func(in *ExpenseInput) {
			in.SplitType = SplitTypeAmount
			in.Splits = map[uuid.UUID]decimal.Decimal{alice: d("10")}
		}, ErrAmountSum},
	}

	for _, tt := range errs {
		t.Run(tt.name, func(t *testing.T) {
			in := base
			tt.mutate(&in)
			_, err := NewExpense(l, in)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestExpense_ValidateSettlement(t *testing.T) {
	s, ok := SettleUp(pair(), alice, bob, d("12"), currency.TWD)
	require.True(t, ok)
	assert.NoError(t, s.Validate(pair().Members))

	s.SplitType = SplitTypeEqual
	assert.ErrorIs(t, s.Validate(pair().Members), ErrSettlementType)
}

func TestExpense_AsTemplate(t *testing.T) {
	e := expense("40", alice, SplitTypePercentage)
	e.Splits = map[uuid.UUID]decimal.Decimal{alice: d("50"), bob: d("50")}
	e.Tags = []string{"dinner"}
	e.Pinned = true

	dup := e.AsTemplate()
	assert.NotEqual(t, e.ID, dup.ID)
	assert.False(t, dup.Pinned)
	assert.True(t, dup.Amount.Equal(e.Amount))

	dup.Splits[alice] = d("0")
	dup.Tags[0] = "lunch"
	assert.Equal(t, "50", e.Splits[alice].String())
	assert.Equal(t, "dinner", e.Tags[0])
}

func TestSplitType_Regular(t *testing.T) {
	assert.True(t, SplitTypeAmount.Regular())
	assert.False(t, SplitTypeSettlement.Regular())
	assert.False(t, SplitType("x").Regular())
}
