package ledger

import (
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	PercentageTolerance = decimal.RequireFromString("0.5")
	AmountTolerance     = decimal.RequireFromString("0.1")
)

var (
	ErrPercentageSum = errors.New("percentages must add up to 100")
	ErrAmountSum     = errors.New("split amounts must add up to the expense amount")
	ErrNoSplits      = errors.New("split values are required")
)

// ValidateSplits checks entered per-member values before an expense is
// saved. Members without an entry count as zero. When members is empty the
// entered values are summed as given.
func ValidateSplits(splitType SplitType, amount decimal.Decimal, splits map[uuid.UUID]decimal.Decimal, members []uuid.UUID) error {
	if len(splits) == 0 {
		return ErrNoSplits
	}

	sum := decimal.Zero
	if len(members) == 0 {
		for _, v := range splits {
			sum = sum.Add(v)
		}
	} else {
		for _, m := range members {
			sum = sum.Add(shareOf(splits, m))
		}
	}

	switch splitType {
	case SplitTypePercentage:
		if sum.Sub(hundred).Abs().GreaterThan(PercentageTolerance) {
			return ErrPercentageSum
		}
	case SplitTypeAmount:
		if sum.Sub(amount).Abs().GreaterThan(AmountTolerance) {
			return ErrAmountSum
		}
	default:
		return ErrUnknownSplitType
	}

	return nil
}

// DistributeEvenly pre-fills split values: 100 (percentage, 1 decimal
// place) or total (amount, 2 decimal places) divided across members, with
// the rounding remainder on the first member.
func DistributeEvenly(splitType SplitType, total decimal.Decimal, members []uuid.UUID) (map[uuid.UUID]decimal.Decimal, error) {
	var places int32
	switch splitType {
	case SplitTypePercentage:
		total, places = hundred, 1
	case SplitTypeAmount:
		places = 2
	default:
		return nil, ErrUnknownSplitType
	}

	out := make(map[uuid.UUID]decimal.Decimal, len(members))
	if len(members) == 0 || !total.IsPositive() {
		return out, nil
	}

	n := decimal.NewFromInt(int64(len(members)))
	each := total.Div(n).RoundFloor(places)
	remainder := total.Sub(each.Mul(n))

	for i, m := range members {
		if i == 0 {
			out[m] = each.Add(remainder).Round(places)
			continue
		}
		out[m] = each
	}

	return out, nil
}

// Remaining is what is still unassigned on the entry form.
func Remaining(splitType SplitType, total decimal.Decimal, splits map[uuid.UUID]decimal.Decimal) decimal.Decimal {
	places := int32(2)
	if splitType == SplitTypePercentage {
		total, places = hundred, 1
	}

	sum := decimal.Zero
	for _, v := range splits {
		sum = sum.Add(v)
	}
	return total.Sub(sum).Round(places)
}
