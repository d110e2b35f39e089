package main

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"envelope/internal/core"
	"envelope/internal/ledger"
)

func summaryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Show ready to assign and every category",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withLedger(cmd, func(_ context.Context, store *ledger.Store) error {
				printSummary(cmd.OutOrStdout(), store.PlanName(), store.Summary())
				return nil
			})
		},
	}
}

func printSummary(out io.Writer, planName string, o core.PlanOverview) {
	fmt.Fprintln(out, headerStyle.Render(planName))
	fmt.Fprintf(out, "Ready to Assign: %s\n", money(o.ReadyToAssign))
	fmt.Fprintln(out, mutedStyle.Render(fmt.Sprintf("cash %s, assigned %s",
		core.FormatAmount(o.TotalCash), core.FormatAmount(o.TotalAssigned))))
	fmt.Fprintln(out)

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	defer w.Flush()

	fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
		headerStyle.Render("Category"),
		headerStyle.Render("Assigned"),
		headerStyle.Render("Activity"),
		headerStyle.Render("Available"),
		headerStyle.Render("Target"))

	for _, g := range o.Groups {
		fmt.Fprintf(w, "%s\t%s\t\t%s\t\n",
			headerStyle.Render(g.Group.Name),
			core.FormatAmount(g.Budgeted),
			money(g.Available))
		if len(g.Categories) == 0 {
			fmt.Fprintf(w, "  %s\t\t\t\t\n", mutedStyle.Render("(no categories)"))
		}
		for _, c := range g.Categories {
			fmt.Fprintf(w, "  %s\t%s\t%s\t%s\t%s\n",
				c.Category.Name,
				core.FormatAmount(c.Category.Budgeted),
				core.FormatAmount(c.Spending),
				money(c.Available),
				mutedStyle.Render(c.TargetText))
		}
	}
}
