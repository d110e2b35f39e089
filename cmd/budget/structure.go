package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"envelope/internal/core"
	"envelope/internal/ledger"
)

func groupCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "group",
		Aliases: []string{"groups"},
		Short:   "Manage category groups",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "add <name>",
		Short: "Add a category group at the end of the plan",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withLedger(cmd, func(ctx context.Context, store *ledger.Store) error {
				if _, err := store.AddGroup(ctx, core.CategoryGroup{Name: args[0]}); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), success(fmt.Sprintf("Added group %q", args[0])))
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "rename <group> <new-name>",
		Short: "Rename a category group",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withLedger(cmd, func(ctx context.Context, store *ledger.Store) error {
				group, err := findGroup(store.Snapshot(), args[0])
				if err != nil {
					return err
				}
				if _, err := store.RenameGroup(ctx, group.ID, args[1]); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), success(fmt.Sprintf("Renamed %q to %q", group.Name, args[1])))
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "delete <group>",
		Short: "Delete a group with all of its categories",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withLedger(cmd, func(ctx context.Context, store *ledger.Store) error {
				group, err := findGroup(store.Snapshot(), args[0])
				if err != nil {
					return err
				}
				if _, err := store.DeleteGroup(ctx, group.ID); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), success(fmt.Sprintf("Deleted group %q", group.Name)))
				return nil
			})
		},
	})

	return cmd
}

func categoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "category",
		Aliases: []string{"categories"},
		Short:   "Manage categories",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "add <group> <name>",
		Short: "Add a category to a group",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withLedger(cmd, func(ctx context.Context, store *ledger.Store) error {
				group, err := findGroup(store.Snapshot(), args[0])
				if err != nil {
					return err
				}
				if _, err := store.AddCategory(ctx, core.Category{Name: args[1], GroupID: group.ID}); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), success(fmt.Sprintf("Added %q to %s", args[1], group.Name)))
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "rename <category> <new-name>",
		Short: "Rename a category",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withLedger(cmd, func(ctx context.Context, store *ledger.Store) error {
				category, err := findCategory(store.Snapshot(), args[0])
				if err != nil {
					return err
				}
				if _, err := store.RenameCategory(ctx, category.ID, args[1]); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), success(fmt.Sprintf("Renamed %q to %q", category.Name, args[1])))
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "delete <category>",
		Short: "Delete a category and its target",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withLedger(cmd, func(ctx context.Context, store *ledger.Store) error {
				category, err := findCategory(store.Snapshot(), args[0])
				if err != nil {
					return err
				}
				if _, err := store.DeleteCategory(ctx, category.ID); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), success(fmt.Sprintf("Deleted category %q", category.Name)))
				return nil
			})
		},
	})

	return cmd
}

func planCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Rename or reset the plan",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "rename <name>",
		Short: "Rename the plan",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withLedger(cmd, func(ctx context.Context, store *ledger.Store) error {
				if err := store.RenamePlan(ctx, args[0]); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), success(fmt.Sprintf("Plan renamed to %q", store.PlanName())))
				return nil
			})
		},
	})

	var confirmed bool
	reset := &cobra.Command{
		Use:   "reset",
		Short: "Delete all data and start over with the default groups",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !confirmed {
				return errors.New("reset deletes every account, category and transaction; pass --yes to confirm")
			}
			return withLedger(cmd, func(ctx context.Context, store *ledger.Store) error {
				if err := store.Reset(ctx); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), success("All data cleared"))
				return nil
			})
		},
	}
	reset.Flags().BoolVar(&confirmed, "yes", false, "confirm the reset")
	cmd.AddCommand(reset)

	return cmd
}
