package ledger

import (
	"errors"
	"fmt"
	"time"

	"github.com/billbatista/acasinha-ledger/currency"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// EmptyLedgerMemberCount is the divisor an equal split uses when the ledger
// has no members at all. With nobody to share with, the payer carries the
// whole expense.
const EmptyLedgerMemberCount = 1

// SettlementDescription is the description given to generated settlements.
const SettlementDescription = "Settlement Payment"

var (
	// SettlementEpsilon is the smallest balance, in base currency, worth
	// settling.
	SettlementEpsilon = decimal.RequireFromString("0.01")

	hundred = decimal.NewFromInt(100)
	one     = decimal.NewFromInt(1)
)

var ErrAmbiguousSettlement = errors.New("settlement has no beneficiary")

// CalculateBalance folds expenses into userID's net position in base
// currency. Positive means the group owes the user, negative means the user
// owes the group. Expenses must already be filtered to l; convert is called
// once per expense. Malformed records are folded permissively and never
// cause an error.
func CalculateBalance(l Ledger, expenses []Expense, userID uuid.UUID, base currency.Code, convert currency.ConvertFunc) decimal.Decimal {
	balance, _ := foldBalance(l, expenses, userID, base, convert, false)
	return balance
}

// CalculateBalanceStrict is CalculateBalance without the implicit-receiver
// guess: a settlement with no beneficiary that the user did not pay fails
// with ErrAmbiguousSettlement instead of being charged to the user.
func CalculateBalanceStrict(l Ledger, expenses []Expense, userID uuid.UUID, base currency.Code, convert currency.ConvertFunc) (decimal.Decimal, error) {
	return foldBalance(l, expenses, userID, base, convert, true)
}

// MemberBalances computes every member's balance in l.
func MemberBalances(l Ledger, expenses []Expense, base currency.Code, convert currency.ConvertFunc) []Balance {
	balances := make([]Balance, 0, len(l.Members))
	for _, userID := range l.Members {
		balances = append(balances, Balance{
			UserID: userID,
			Amount: CalculateBalance(l, expenses, userID, base, convert),
		})
	}
	return balances
}

func foldBalance(l Ledger, expenses []Expense, userID uuid.UUID, base currency.Code, convert currency.ConvertFunc, strict bool) (decimal.Decimal, error) {
	net := decimal.Zero

	for _, e := range expenses {
		normalized := convert(e.Amount, e.Currency, base)

		if e.IsSettlement {
			delta, err := settlementDelta(e, userID, normalized, strict)
			if err != nil {
				return decimal.Zero, err
			}
			net = net.Add(delta)
			continue
		}

		net = net.Add(expenseDelta(l, e, userID, normalized))
	}

	return net, nil
}

// settlementDelta applies a transfer from PaidBy to BeneficiaryID.
func settlementDelta(e Expense, userID uuid.UUID, normalized decimal.Decimal, strict bool) (decimal.Decimal, error) {
	switch {
	case e.PaidBy == userID:
		return normalized, nil
	case e.BeneficiaryID.Valid && e.BeneficiaryID.UUID == userID:
		return normalized.Neg(), nil
	case e.SplitType == SplitTypeSettlement && !e.BeneficiaryID.Valid:
		// Legacy records without a receiver: anyone who did not pay is
		// assumed to have received. Wrong for ledgers of three or more.
		if strict {
			return decimal.Zero, fmt.Errorf("expense %s: %w", e.ID, ErrAmbiguousSettlement)
		}
		return normalized.Neg(), nil
	}
	return decimal.Zero, nil
}

func expenseDelta(l Ledger, e Expense, userID uuid.UUID, normalized decimal.Decimal) decimal.Decimal {
	isPayer := e.PaidBy == userID

	switch e.SplitType {
	case SplitTypeEqual:
		share := normalized.Div(decimal.NewFromInt(int64(memberCount(l))))
		return payerOrDebtor(isPayer, normalized, share)

	case SplitTypeFullForPartner:
		isBeneficiary := e.BeneficiaryID.Valid && e.BeneficiaryID.UUID == userID
		if isPayer && !isBeneficiary {
			return normalized
		}
		if !isPayer && isBeneficiary {
			return normalized.Neg()
		}
		return decimal.Zero

	case SplitTypePercentage:
		if e.Splits == nil {
			return decimal.Zero
		}
		share := normalized.Mul(shareOf(e.Splits, userID)).Div(hundred)
		return payerOrDebtor(isPayer, normalized, share)

	case SplitTypeAmount:
		if e.Splits == nil {
			return decimal.Zero
		}
		// Shares are stored in the expense currency; scale them by the same
		// factor the total was converted with.
		rate := normalized.Div(amountOrOne(e.Amount))
		share := shareOf(e.Splits, userID).Mul(rate)
		return payerOrDebtor(isPayer, normalized, share)
	}

	return decimal.Zero
}

func payerOrDebtor(isPayer bool, normalized, share decimal.Decimal) decimal.Decimal {
	if isPayer {
		return normalized.Sub(share)
	}
	return share.Neg()
}

// shareOf returns the user's recorded split value, or zero when the user
// has no entry.
func shareOf(splits map[uuid.UUID]decimal.Decimal, userID uuid.UUID) decimal.Decimal {
	v, ok := splits[userID]
	if !ok {
		return decimal.Zero
	}
	return v
}

// amountOrOne guards the amount-split rate against a zero total.
func amountOrOne(amount decimal.Decimal) decimal.Decimal {
	if amount.IsZero() {
		return one
	}
	return amount
}

// memberCount is the equal-split divisor, never zero.
func memberCount(l Ledger) int {
	if len(l.Members) == 0 {
		return EmptyLedgerMemberCount
	}
	return len(l.Members)
}

// SettleUp builds the settlement that zeroes the balance between the
// current user and one counterpart. It reports false when the balance is
// below SettlementEpsilon and there is nothing to settle.
//
// Only the pair is settled; ledgers with more members are not netted.
func SettleUp(l Ledger, currentUserID, otherMemberID uuid.UUID, balance decimal.Decimal, base currency.Code) (*Expense, bool) {
	if balance.Abs().LessThan(SettlementEpsilon) {
		return nil, false
	}

	payer, receiver := otherMemberID, currentUserID
	if balance.IsNegative() {
		payer, receiver = currentUserID, otherMemberID
	}

	now := time.Now().UTC()
	return &Expense{
		ID:            uuid.New(),
		LedgerID:      l.ID,
		Amount:        balance.Abs(),
		Currency:      base,
		Description:   SettlementDescription,
		Date:          now,
		PaidBy:        payer,
		SplitType:     SplitTypeSettlement,
		BeneficiaryID: uuid.NullUUID{UUID: receiver, Valid: true},
		IsSettlement:  true,
		CreatedAt:     now,
	}, true
}

// CounterpartOf returns the first member of l other than userID.
func CounterpartOf(l Ledger, userID uuid.UUID) (uuid.UUID, bool) {
	for _, m := range l.Members {
		if m != userID {
			return m, true
		}
	}
	return uuid.Nil, false
}
