package main

import (
	"log/slog"

	"github.com/billbatista/acasinha-ledger/category"
	"github.com/billbatista/acasinha-ledger/migrations"
	"github.com/spf13/cobra"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create missing tables and seed default categories",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			db, err := openDB(ctx)
			if err != nil {
				return err
			}
			defer db.Close()

			if err := migrations.Apply(ctx, db); err != nil {
				return err
			}
			if err := category.SeedDefaults(ctx, category.NewRepository(db)); err != nil {
				return err
			}

			slog.Info("database is up to date")
			return nil
		},
	}
}
