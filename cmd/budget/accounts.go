package main

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"envelope/internal/budget"
	"envelope/internal/core"
	"envelope/internal/ledger"
)

func accountCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "account",
		Aliases: []string{"accounts"},
		Short:   "Manage accounts",
	}

	cmd.AddCommand(accountAddCmd())
	cmd.AddCommand(accountListCmd())
	cmd.AddCommand(accountShowCmd())
	cmd.AddCommand(accountReconcileCmd())
	cmd.AddCommand(accountDeleteCmd())

	return cmd
}

func accountAddCmd() *cobra.Command {
	var (
		accountType string
		balance     string
	)

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add an account",
		Long: `Add a checking, savings or credit-card account with its opening balance.

A credit card balance is the amount owed; it is stored as debt whatever its
sign. Adding a card also creates its payment category.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := core.ParseAmount(balance)
			if err != nil {
				return fmt.Errorf("balance %q: %w", balance, err)
			}
			account := core.Account{
				Name:    args[0],
				Balance: amount,
				Type:    core.AccountType(accountType),
			}

			return withLedger(cmd, func(ctx context.Context, store *ledger.Store) error {
				if _, err := store.AddAccount(ctx, account); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), success(fmt.Sprintf("Added %s account %q", budget.AccountTypeLabel(account.Type), account.Name)))
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&accountType, "type", "t", string(core.Checking), "account type (checking, savings, credit-card)")
	cmd.Flags().StringVarP(&balance, "balance", "b", "0", "opening balance")

	return cmd
}

func accountListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List accounts with working balances",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withLedger(cmd, func(_ context.Context, store *ledger.Store) error {
				printAccounts(cmd.OutOrStdout(), store.Snapshot())
				return nil
			})
		},
	}
}

func printAccounts(out io.Writer, s budget.Snapshot) {
	if len(s.Accounts) == 0 {
		fmt.Fprintln(out, mutedStyle.Render("No accounts yet. Use 'budget account add' to create one."))
		return
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
		headerStyle.Render("ID"),
		headerStyle.Render("Name"),
		headerStyle.Render("Type"),
		headerStyle.Render("Balance"))
	for _, a := range s.Accounts {
		bal := budget.WorkingBalance(s, a.ID)
		rendered := money(bal)
		if a.Type == core.CreditCard {
			rendered = cardMoney(bal)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", mutedStyle.Render(a.ID), a.Name, budget.AccountTypeLabel(a.Type), rendered)
	}
	w.Flush()

	fmt.Fprintln(out)
	fmt.Fprintf(out, "Cash: %s  Credit: %s\n",
		money(budget.CashAccountsTotal(s)),
		cardMoney(budget.CreditAccountsTotal(s)))
}

func accountShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <account>",
		Short: "Show an account register grouped by day",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withLedger(cmd, func(_ context.Context, store *ledger.Store) error {
				snap := store.Snapshot()
				account, err := findAccount(snap, args[0])
				if err != nil {
					return err
				}
				printRegister(cmd.OutOrStdout(), snap, account)
				return nil
			})
		},
	}
}

func printRegister(out io.Writer, s budget.Snapshot, a core.Account) {
	fmt.Fprintf(out, "%s  %s\n", headerStyle.Render(a.Name), mutedStyle.Render(budget.AccountTypeLabel(a.Type)))
	fmt.Fprintf(out, "Working: %s  Cleared: %s\n\n",
		money(budget.WorkingBalance(s, a.ID)),
		money(budget.ClearedBalance(s, a.ID)))

	days := budget.AccountActivity(s, a.ID)
	if len(days) == 0 {
		fmt.Fprintln(out, mutedStyle.Render("No transactions."))
		return
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	defer w.Flush()
	for _, day := range days {
		fmt.Fprintf(w, "%s\t\t\n", headerStyle.Render(day.Day.Format("Mon Jan 2, 2006")))
		for _, tx := range day.Transactions {
			category := mutedStyle.Render("(none)")
			if c, ok := s.Category(tx.CategoryID); ok {
				category = c.Name
			}
			fmt.Fprintf(w, "  %s\t%s\t%s\n", tx.Payee, category, money(tx.Amount))
		}
	}
}

func accountReconcileCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reconcile <account> <statement-balance>",
		Short: "Match the working balance to a statement",
		Long: `Compare the account's working balance with the statement balance and
record a "Reconciliation Adjustment" for any difference.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			statement, err := core.ParseAmount(args[1])
			if err != nil {
				return fmt.Errorf("statement balance %q: %w", args[1], err)
			}

			return withLedger(cmd, func(ctx context.Context, store *ledger.Store) error {
				account, err := findAccount(store.Snapshot(), args[0])
				if err != nil {
					return err
				}
				snap, created, err := store.Reconcile(ctx, account.ID, statement)
				if err != nil {
					return err
				}
				if !created {
					fmt.Fprintln(cmd.OutOrStdout(), success(fmt.Sprintf("%s already matches the statement", account.Name)))
					return nil
				}
				fmt.Fprintln(cmd.OutOrStdout(), success(fmt.Sprintf("Reconciled %s, working balance now %s",
					account.Name, money(budget.WorkingBalance(snap, account.ID)))))
				return nil
			})
		},
	}
}

func accountDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <account>",
		Short: "Delete an account and its transactions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withLedger(cmd, func(ctx context.Context, store *ledger.Store) error {
				account, err := findAccount(store.Snapshot(), args[0])
				if err != nil {
					return err
				}
				if _, err := store.DeleteAccount(ctx, account.ID); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), success(fmt.Sprintf("Deleted account %q", account.Name)))
				return nil
			})
		},
	}
}
