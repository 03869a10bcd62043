package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/DanielPopoola/racing-academy-payments/internal/interfaces/rest"
	"github.com/DanielPopoola/racing-academy-payments/internal/worker"
)

func reconcileCmd() *cobra.Command {
	var (
		limit  int
		dryRun bool
	)

	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Run one seat reconciliation pass over flagged enrollments",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			e, err := loadEnv(ctx)
			if err != nil {
				return err
			}
			svc, stop := e.enrollments()
			defer stop()

			out := cmd.OutOrStdout()
			if dryRun {
				flagged, err := svc.ListReconciliation(ctx, limit)
				if err != nil {
					return err
				}
				for _, enrollment := range rest.ToAPIEnrollments(flagged) {
					fmt.Fprintf(out, "%s\t%s\tseat=%t\t%s\n",
						enrollment.ID, enrollment.Status, enrollment.SeatReserved, enrollment.ReconciliationReason)
				}
				fmt.Fprintf(out, "%d enrollment(s) flagged\n", len(flagged))
				return nil
			}

			resolved := worker.NewReconciler(svc, 0, limit, e.logger).RunOnce(ctx)
			fmt.Fprintf(out, "%d enrollment(s) reconciled\n", resolved)
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 50, "maximum enrollments to examine")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "list flagged enrollments without changing them")
	return cmd
}
