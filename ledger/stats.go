package ledger

import (
	"bytes"
	"sort"
	"time"

	"github.com/billbatista/acasinha-ledger/currency"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type CategoryTotal struct {
	CategoryID uuid.NullUUID   `json:"category_id"`
	Amount     decimal.Decimal `json:"amount"`
}

type Summary struct {
	Currency        currency.Code   `json:"currency"`
	Total           decimal.Decimal `json:"total"`
	Count           int             `json:"count"`
	ByCategory      []CategoryTotal `json:"by_category"`
	Budget          decimal.Decimal `json:"budget"`
	BudgetUsed      decimal.Decimal `json:"budget_used_percent"`
	BudgetRemaining decimal.Decimal `json:"budget_remaining"`
}

// Period bounds a summary; zero values leave that side open.
type Period struct {
	From time.Time
	To   time.Time
}

func (p Period) contains(t time.Time) bool {
	if !p.From.IsZero() && t.Before(p.From) {
		return false
	}
	if !p.To.IsZero() && !t.Before(p.To) {
		return false
	}
	return true
}

// categoryLess orders ids bytewise with uncategorized last.
func categoryLess(a, b uuid.NullUUID) bool {
	if a.Valid != b.Valid {
		return a.Valid
	}
	return bytes.Compare(a.UUID[:], b.UUID[:]) < 0
}

// MonthOf returns the calendar month containing t.
func MonthOf(t time.Time) Period {
	from := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	return Period{From: from, To: from.AddDate(0, 1, 0)}
}

// Summarize totals spending in base currency. Settlements move money
// between members and are not spending, so they are skipped.
func Summarize(expenses []Expense, period Period, base currency.Code, convert currency.ConvertFunc, budget decimal.Decimal) Summary {
	s := Summary{Currency: base, Total: decimal.Zero, Budget: budget}
	byCategory := make(map[uuid.NullUUID]decimal.Decimal)

	for _, e := range expenses {
		if e.IsSettlement || !period.contains(e.Date) {
			continue
		}
		normalized := convert(e.Amount, e.Currency, base)
		s.Total = s.Total.Add(normalized)
		s.Count++
		byCategory[e.CategoryID] = byCategory[e.CategoryID].Add(normalized)
	}

	s.ByCategory = make([]CategoryTotal, 0, len(byCategory))
	for id, amount := range byCategory {
		s.ByCategory = append(s.ByCategory, CategoryTotal{CategoryID: id, Amount: amount})
	}
	sort.Slice(s.ByCategory, func(i, j int) bool {
		a, b := s.ByCategory[i], s.ByCategory[j]
		if !a.Amount.Equal(b.Amount) {
			return a.Amount.GreaterThan(b.Amount)
		}
		return categoryLess(a.CategoryID, b.CategoryID)
	})

	s.BudgetUsed = decimal.Zero
	s.BudgetRemaining = decimal.Zero
	if budget.IsPositive() {
		s.BudgetUsed = s.Total.Div(budget).Mul(hundred).Round(0)
		s.BudgetRemaining = decimal.Max(budget.Sub(s.Total), decimal.Zero)
	}

	return s
}
