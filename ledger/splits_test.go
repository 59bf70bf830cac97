package ledger

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateSplits(t *testing.T) {
	members := []uuid.UUID{alice, bob}

	tests := []struct {
		name   string
		split  SplitType
		amount string
		values map[uuid.UUID]decimal.Decimal
		want   error
	}{
		{"percentage exact", SplitTypePercentage, "0", map[uuid.UUID]decimal.Decimal{alice: d("70"), bob: d("30")}, nil},
		{"percentage within tolerance", SplitTypePercentage, "0", map[uuid.UUID]decimal.Decimal{alice: d("33.3"), bob: d("66.3")}, nil},
		{"percentage off", SplitTypePercentage, "0", map[uuid.UUID]decimal.Decimal{alice: d("60"), bob: d("30")}, ErrPercentageSum},
		{"percentage just over tolerance", SplitTypePercentage, "0", map[uuid.UUID]decimal.Decimal{alice: d("50"), bob: d("50.6")}, ErrPercentageSum},
		{"amount exact", SplitTypeAmount, "100", map[uuid.UUID]decimal.Decimal{alice: d("60"), bob: d("40")}, nil},
		{"amount within tolerance", SplitTypeAmount, "100", map[uuid.UUID]decimal.Decimal{alice: d("33.33"), bob: d("66.66")}, nil},
		{"amount off", SplitTypeAmount, "100", map[uuid.UUID]decimal.Decimal{alice: d("50"), bob: d("49")}, ErrAmountSum},
		{"non-member value is ignored", SplitTypeAmount, "100", map[uuid.UUID]decimal.Decimal{alice: d("100"), carol: d("50")}, nil},
		{"no values", SplitTypeAmount, "100", nil, ErrNoSplits},
		{"wrong split type", SplitTypeEqual, "100", map[uuid.UUID]decimal.Decimal{alice: d("100")}, ErrUnknownSplitType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSplits(tt.split, d(tt.amount), tt.values, members)
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestValidateSplits_NoMembersSumsEnteredValues(t *testing.T) {
	err := ValidateSplits(SplitTypePercentage, decimal.Zero, map[uuid.UUID]decimal.Decimal{alice: d("100")}, nil)
	assert.NoError(t, err)
}

func TestDistributeEvenly(t *testing.T) {
	three := []uuid.UUID{alice, bob, carol}

	t.Run("percentage", func(t *testing.T) {
		got, err := DistributeEvenly(SplitTypePercentage, decimal.Zero, three)
		require.NoError(t, err)
		assert.Equal(t, "33.4", got[alice].String())
		assert.Equal(t, "33.3", got[bob].String())
		assert.Equal(t, "33.3", got[carol].String())
		assert.NoError(t, ValidateSplits(SplitTypePercentage, decimal.Zero, got, three))
	})

	t.Run("percentage seven ways", func(t *testing.T) {
		seven := []uuid.UUID{alice, bob, carol, uuid.New(), uuid.New(), uuid.New(), uuid.New()}
		got, err := DistributeEvenly(SplitTypePercentage, decimal.Zero, seven)
		require.NoError(t, err)
		assert.Equal(t, "14.8", got[alice].String())
		assert.Equal(t, "14.2", got[bob].String())
	})

	t.Run("amount", func(t *testing.T) {
		got, err := DistributeEvenly(SplitTypeAmount, d("100"), three)
		require.NoError(t, err)
		assert.Equal(t, "33.34", got[alice].String())
		assert.Equal(t, "33.33", got[bob].String())
		assert.NoError(t, ValidateSplits(SplitTypeAmount, d("100"), got, three))
	})

	t.Run("amount without total", func(t *testing.T) {
		got, err := DistributeEvenly(SplitTypeAmount, decimal.Zero, three)
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("no members", func(t *testing.T) {
		got, err := DistributeEvenly(SplitTypePercentage, decimal.Zero, nil)
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("equal is not distributable", func(t *testing.T) {
		_, err := DistributeEvenly(SplitTypeEqual, d("10"), three)
		assert.ErrorIs(t, err, ErrUnknownSplitType)
	})
}

func TestRemaining(t *testing.T) {
	values := map[uuid.UUID]decimal.Decimal{alice: d("40")}
	assert.Equal(t, "60", Remaining(SplitTypePercentage, decimal.Zero, values).String())
	assert.Equal(t, "10.5", Remaining(SplitTypeAmount, d("50.5"), values).String())
}
