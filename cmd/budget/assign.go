package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"envelope/internal/budget"
	"envelope/internal/core"
	"envelope/internal/ledger"
)

func assignCmd() *cobra.Command {
	var add, subtract bool

	cmd := &cobra.Command{
		Use:   "assign <category> <amount>",
		Short: "Set the amount assigned to a category",
		Long: `Set the amount assigned to a category, replacing the previous value.

With --add or --subtract the amount is applied to the current assignment
instead. A result below zero is clamped to zero.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if add && subtract {
				return errors.New("--add and --subtract are mutually exclusive")
			}
			amount, err := core.ParseAmount(args[1])
			if err != nil {
				return fmt.Errorf("amount %q: %w", args[1], err)
			}

			return withLedger(cmd, func(ctx context.Context, store *ledger.Store) error {
				category, err := findCategory(store.Snapshot(), args[0])
				if err != nil {
					return err
				}

				var snap budget.Snapshot
				switch {
				case add:
					snap, err = store.AdjustMoney(ctx, category.ID, amount.Abs())
				case subtract:
					snap, err = store.AdjustMoney(ctx, category.ID, amount.Abs().Neg())
				default:
					snap, err = store.AssignMoney(ctx, category.ID, amount)
				}
				if err != nil {
					return err
				}

				updated, _ := snap.Category(category.ID)
				fmt.Fprintln(cmd.OutOrStdout(), success(fmt.Sprintf("%s assigned %s, ready to assign %s",
					category.Name, core.FormatAmount(updated.Budgeted), money(budget.ReadyToAssign(snap)))))
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&add, "add", false, "add the amount to the current assignment")
	cmd.Flags().BoolVar(&subtract, "subtract", false, "subtract the amount from the current assignment")

	return cmd
}

func moveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "move <from-category> <to-category> <amount>",
		Short: "Move assigned money between categories",
		Long: `Move assigned money from one category to another. No more than the
source category holds is moved.`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := core.ParseAmount(args[2])
			if err != nil {
				return fmt.Errorf("amount %q: %w", args[2], err)
			}

			return withLedger(cmd, func(ctx context.Context, store *ledger.Store) error {
				snap := store.Snapshot()
				from, err := findCategory(snap, args[0])
				if err != nil {
					return err
				}
				to, err := findCategory(snap, args[1])
				if err != nil {
					return err
				}

				_, moved, err := store.MoveMoney(ctx, from.ID, to.ID, amount)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), success(fmt.Sprintf("Moved %s from %s to %s",
					core.FormatAmount(moved), from.Name, to.Name)))
				return nil
			})
		},
	}
}
