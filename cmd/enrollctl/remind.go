package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/DanielPopoola/racing-academy-payments/internal/worker"
)

func remindCmd() *cobra.Command {
	var (
		window time.Duration
		limit  int
	)

	cmd := &cobra.Command{
		Use:   "remind",
		Short: "Send start reminders for courses beginning soon",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			e, err := loadEnv(ctx)
			if err != nil {
				return err
			}
			svc, stop := e.enrollments()
			defer stop()

			if window == 0 {
				window = e.cfg.Worker.ReminderWindow
			}
			job, err := worker.NewReminderJob(svc, e.cfg.Worker.ReminderCron, window, limit, e.logger)
			if err != nil {
				return err
			}

			sent := job.RunOnce(ctx)
			fmt.Fprintf(cmd.OutOrStdout(), "%d reminder(s) queued\n", sent)
			return nil
		},
	}

	cmd.Flags().DurationVarP(&window, "window", "w", 0, "look-ahead window (defaults to worker.reminder_window)")
	cmd.Flags().IntVarP(&limit, "limit", "n", 500, "maximum reminders to send")
	return cmd
}
