package currency

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
)

var ErrEmptyRates = errors.New("rate provider returned no rates")

type ratesResponse struct {
	Base  string                     `json:"base"`
	Rates map[string]decimal.Decimal `json:"rates"`
}

// Fetcher pulls the latest rates from an exchangerate-api style endpoint
// and loads them into a RateTable.
type Fetcher struct {
	url    string
	client *http.Client
	table  *RateTable
}

func NewFetcher(url string, table *RateTable, timeout time.Duration) *Fetcher {
	return &Fetcher{
		url:    url,
		client: &http.Client{Timeout: timeout},
		table:  table,
	}
}

// Refresh replaces the table on success. On failure the previous rates stay
// in place.
func (f *Fetcher) Refresh(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.url, nil)
	if err != nil {
		return fmt.Errorf("building rates request: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return fmt.Errorf("fetching rates: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("fetching rates: unexpected status %d", resp.StatusCode)
	}

	var body ratesResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return fmt.Errorf("decoding rates: %w", err)
	}

	rates := make(map[Code]decimal.Decimal, len(Supported))
	for _, code := range Supported {
		if r, ok := body.Rates[string(code)]; ok {
			rates[code] = r
		}
	}
	if len(rates) == 0 {
		return ErrEmptyRates
	}

	reference, err := Parse(body.Base)
	if err != nil {
		reference, _ = f.table.Snapshot()
	}

	f.table.Replace(reference, rates)
	slog.Info("exchange rates refreshed", "reference", reference, "currencies", len(rates))
	return nil
}

// RefreshJob adapts Refresh to a cron callback.
func (f *Fetcher) RefreshJob() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := f.Refresh(ctx); err != nil {
		slog.Error("failed to refresh exchange rates", "error", err)
	}
}
