package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/billbatista/acasinha-ledger/api"
	"github.com/billbatista/acasinha-ledger/app"
	"github.com/billbatista/acasinha-ledger/category"
	"github.com/billbatista/acasinha-ledger/currency"
	"github.com/billbatista/acasinha-ledger/eventlogger"
	"github.com/billbatista/acasinha-ledger/ledger"
	"github.com/billbatista/acasinha-ledger/migrations"
	"github.com/billbatista/acasinha-ledger/scheduler"
	"github.com/billbatista/acasinha-ledger/session"
	"github.com/billbatista/acasinha-ledger/user"
	"github.com/spf13/cobra"
)

func serveCmd() *cobra.Command {
	var migrate bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd.Context(), migrate)
		},
	}
	cmd.Flags().BoolVar(&migrate, "migrate", false, "apply the schema before serving")
	return cmd
}

func serve(ctx context.Context, migrate bool) error {
	db, err := openDB(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	if migrate {
		if err := migrations.Apply(ctx, db); err != nil {
			return err
		}
	}

	categoryRepo := category.NewRepository(db)
	if err := category.SeedDefaults(ctx, categoryRepo); err != nil {
		return err
	}

	evtlogger := eventlogger.NewSqlEventLogger(db)
	worker := eventlogger.NewWorker(evtlogger, cfg.Events.BufferSize, cfg.EventsDrainTimeout())
	worker.Start()
	defer worker.Shutdown()

	rates := currency.NewRateTable(currency.TWD, currency.FallbackRates())
	fetcher := currency.NewFetcher(cfg.Rates.URL, rates, cfg.RatesTimeout())
	if err := fetcher.Refresh(ctx); err != nil {
		slog.Warn("using fallback exchange rates", "error", err)
	}

	sched := scheduler.New()
	if cfg.Rates.RefreshSchedule != "" {
		if err := sched.Add("rates.refresh", cfg.Rates.RefreshSchedule, fetcher.RefreshJob); err != nil {
			return err
		}
	}
	sched.Start()
	defer sched.Stop()

	state := newState(db, categoryRepo, worker, evtlogger, rates)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           api.NewRouter(state, fetcher),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server starting", "port", cfg.Server.Port, "base_currency", cfg.BaseCurrency())
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case <-ctx.Done():
		slog.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout())
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutting down server: %w", err)
		}
	}
	return nil
}

func newState(db *sql.DB, categoryRepo category.Repository, events eventlogger.Sink, history eventlogger.EventLogger, rates *currency.RateTable) *app.State {
	return app.New(app.Repositories{
		Ledgers:    ledger.NewRepository(db),
		Users:      user.NewRepository(db),
		Categories: categoryRepo,
		Sessions:   session.NewRepository(db, cfg.SessionTTL()),
	}, events, history, rates, app.Settings{
		BaseCurrency:      cfg.BaseCurrency(),
		MonthlyBudget:     cfg.MonthlyBudget(),
		StrictSettlements: cfg.Ledger.StrictSettlements,
	})
}
