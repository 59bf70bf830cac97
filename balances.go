package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/billbatista/acasinha-ledger/category"
	"github.com/billbatista/acasinha-ledger/currency"
	"github.com/billbatista/acasinha-ledger/eventlogger"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

// balancesCmd prints a ledger's balances using the fallback rates. Events
// are not recorded since nothing is written.
func balancesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "balances <ledger-id>",
		Short: "Print every member's balance in a ledger",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ledgerID, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid ledger id: %w", err)
			}

			ctx := cmd.Context()
			db, err := openDB(ctx)
			if err != nil {
				return err
			}
			defer db.Close()

			rates := currency.NewRateTable(currency.TWD, currency.FallbackRates())
			state := newState(db, category.NewRepository(db), nil, eventlogger.NewSqlEventLogger(db), rates)

			l, err := state.GetLedger(ctx, ledgerID)
			if err != nil {
				return err
			}
			balances, err := state.Balances(ctx, ledgerID)
			if err != nil {
				return err
			}

			names := make(map[uuid.UUID]string)
			users, err := state.ListUsers(ctx)
			if err != nil {
				return err
			}
			for _, u := range users {
				names[u.ID] = u.Name
			}

			out := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintf(out, "%s (%s)\n", l.Name, l.Type)
			for _, b := range balances {
				fmt.Fprintf(out, "%s\t%s %s\n", names[b.UserID], b.Amount.StringFixed(2), cfg.BaseCurrency())
			}
			return out.Flush()
		},
	}
}
