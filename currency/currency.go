package currency

import (
	"errors"
	"strings"
	"sync"

	"github.com/shopspring/decimal"
)

type Code string

const (
	TWD Code = "TWD"
	USD Code = "USD"
	JPY Code = "JPY"
	EUR Code = "EUR"
	KRW Code = "KRW"
)

var ErrUnsupportedCurrency = errors.New("unsupported currency")

// Supported lists the currencies an expense can be recorded in.
var Supported = []Code{TWD, USD, JPY, EUR, KRW}

// FallbackRates are TWD-quoted rates used until the first successful
// refresh.
func FallbackRates() map[Code]decimal.Decimal {
	return map[Code]decimal.Decimal{
		TWD: decimal.NewFromInt(1),
		USD: decimal.RequireFromString("0.032"),
		JPY: decimal.RequireFromString("4.7"),
		EUR: decimal.RequireFromString("0.029"),
		KRW: decimal.NewFromInt(42),
	}
}

// Parse normalizes s and checks it against the supported set.
func Parse(s string) (Code, error) {
	c := Code(strings.ToUpper(strings.TrimSpace(s)))
	if !c.Valid() {
		return "", ErrUnsupportedCurrency
	}
	return c, nil
}

func (c Code) Valid() bool {
	for _, s := range Supported {
		if c == s {
			return true
		}
	}
	return false
}

// ConvertFunc moves an amount from one currency into another.
type ConvertFunc func(amount decimal.Decimal, from, to Code) decimal.Decimal

// RateTable holds exchange rates quoted against a single reference currency.
// A currency missing from the table converts with a rate of 1.
type RateTable struct {
	mu        sync.RWMutex
	reference Code
	rates     map[Code]decimal.Decimal
}

func NewRateTable(reference Code, rates map[Code]decimal.Decimal) *RateTable {
	t := &RateTable{reference: reference}
	t.Replace(reference, rates)
	return t
}

// Replace swaps the whole table atomically.
func (t *RateTable) Replace(reference Code, rates map[Code]decimal.Decimal) {
	copied := make(map[Code]decimal.Decimal, len(rates)+1)
	for k, v := range rates {
		copied[k] = v
	}
	if _, ok := copied[reference]; !ok {
		copied[reference] = decimal.NewFromInt(1)
	}

	t.mu.Lock()
	t.reference = reference
	t.rates = copied
	t.mu.Unlock()
}

// Rate returns the rate for code, or 1 when the table has none.
func (t *RateTable) Rate(code Code) decimal.Decimal {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return rateOrOne(t.rates, code)
}

// Snapshot returns a copy of the current rates.
func (t *RateTable) Snapshot() (Code, map[Code]decimal.Decimal) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make(map[Code]decimal.Decimal, len(t.rates))
	for k, v := range t.rates {
		out[k] = v
	}
	return t.reference, out
}

func (t *RateTable) Convert(amount decimal.Decimal, from, to Code) decimal.Decimal {
	if from == to {
		return amount
	}

	t.mu.RLock()
	rateFrom := rateOrOne(t.rates, from)
	rateTo := rateOrOne(t.rates, to)
	t.mu.RUnlock()

	return amount.Div(rateFrom).Mul(rateTo)
}

// rateOrOne is the permissive lookup: unknown or zero rates read as 1 so a
// gap in the table degrades to no conversion instead of an error.
func rateOrOne(rates map[Code]decimal.Decimal, code Code) decimal.Decimal {
	r, ok := rates[code]
	if !ok || r.IsZero() {
		return decimal.NewFromInt(1)
	}
	return r
}
