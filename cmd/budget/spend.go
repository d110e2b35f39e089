package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"envelope/internal/core"
	"envelope/internal/ledger"
)

func spendCmd() *cobra.Command {
	var (
		payee  string
		date   string
		inflow bool
	)

	cmd := &cobra.Command{
		Use:   "spend <account> <category> <amount>",
		Short: "Record a transaction",
		Long: `Record a transaction against an account and category. The amount is an
outflow unless --inflow is given.

Spending on a credit card moves the amount from the category to the card's
payment category.`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := core.ParseAmount(args[2])
			if err != nil {
				return fmt.Errorf("amount %q: %w", args[2], err)
			}
			amount = amount.Abs()
			if !inflow {
				amount = amount.Neg()
			}

			var when time.Time
			if date != "" {
				when, err = time.Parse(time.DateOnly, date)
				if err != nil {
					return fmt.Errorf("date %q: expected YYYY-MM-DD", date)
				}
			}

			return withLedger(cmd, func(ctx context.Context, store *ledger.Store) error {
				snap := store.Snapshot()
				account, err := findAccount(snap, args[0])
				if err != nil {
					return err
				}
				category, err := findCategory(snap, args[1])
				if err != nil {
					return err
				}

				_, err = store.AddTransaction(ctx, core.Transaction{
					AccountID:  account.ID,
					CategoryID: category.ID,
					Amount:     amount,
					Date:       when,
					Payee:      payee,
				})
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), success(fmt.Sprintf("%s %s on %s (%s)",
					payee, money(amount), account.Name, category.Name)))
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&payee, "payee", "p", "", "who was paid (required)")
	cmd.Flags().StringVarP(&date, "date", "d", "", "transaction date, YYYY-MM-DD (default today)")
	cmd.Flags().BoolVar(&inflow, "inflow", false, "record money coming in")
	_ = cmd.MarkFlagRequired("payee")

	return cmd
}
