package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"envelope/internal/budget"
	"envelope/internal/core"
	"envelope/internal/ledger"
)

func targetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "target",
		Aliases: []string{"targets"},
		Short:   "Manage category targets",
	}

	cmd.AddCommand(targetSetCmd())
	cmd.AddCommand(targetDeleteCmd())

	return cmd
}

func targetSetCmd() *cobra.Command {
	var (
		frequency string
		amount    string
		day       int
		dueDate   string
		behavior  string
	)

	cmd := &cobra.Command{
		Use:   "set <category>",
		Short: "Create or replace the target of a category",
		Long: `Create or replace the target of a category.

  monthly  --day is the day of the month (1-31)
  weekly   --day is the weekday, 1 = Monday ... 7 = Sunday
  custom   --date is the due date, MM/DD/YYYY`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			targetAmount, err := core.ParseAmount(amount)
			if err != nil {
				return fmt.Errorf("amount %q: %w", amount, err)
			}
			spec := core.Target{
				Frequency:         core.Frequency(frequency),
				TargetAmount:      targetAmount,
				DueDate:           dueDate,
				NextMonthBehavior: core.NextMonthBehavior(behavior),
			}
			if cmd.Flags().Changed("day") {
				spec.DueDay = &day
			}

			return withLedger(cmd, func(ctx context.Context, store *ledger.Store) error {
				category, err := findCategory(store.Snapshot(), args[0])
				if err != nil {
					return err
				}
				snap, err := store.UpsertTarget(ctx, category.ID, spec)
				if err != nil {
					return err
				}

				saved, _ := snap.TargetFor(category.ID)
				updated, _ := snap.Category(category.ID)
				fmt.Fprintln(cmd.OutOrStdout(), success(fmt.Sprintf("%s: %s", category.Name,
					budget.TargetProgressText(saved, updated.Budgeted, store.Today()))))
				if due, err := budget.NextDue(saved, store.Today()); err == nil {
					fmt.Fprintln(cmd.OutOrStdout(), mutedStyle.Render("Next due "+due.Format("Mon Jan 2, 2006")))
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&frequency, "frequency", "f", string(core.Monthly), "weekly, monthly or custom")
	cmd.Flags().StringVarP(&amount, "amount", "a", "", "target amount (required)")
	cmd.Flags().IntVar(&day, "day", 0, "due day for weekly and monthly targets")
	cmd.Flags().StringVar(&dueDate, "date", "", "due date for custom targets, MM/DD/YYYY")
	cmd.Flags().StringVar(&behavior, "behavior", string(core.SetAside), "next month behavior: setAside or refill")
	_ = cmd.MarkFlagRequired("amount")

	return cmd
}

func targetDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <category>",
		Short: "Remove the target of a category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withLedger(cmd, func(ctx context.Context, store *ledger.Store) error {
				category, err := findCategory(store.Snapshot(), args[0])
				if err != nil {
					return err
				}
				if _, err := store.DeleteTarget(ctx, category.ID); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), success(fmt.Sprintf("Removed target from %s", category.Name)))
				return nil
			})
		},
	}
}
