package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

type ReminderSender interface {
	SendReminders(ctx context.Context, window time.Duration, limit int) (int, error)
}

// ReminderJob emails students whose course starts within window, on a cron
// schedule. Overlapping runs are skipped.
type ReminderJob struct {
	sender    ReminderSender
	schedule  cron.Schedule
	window    time.Duration
	batchSize int
	logger    *slog.Logger
}

// NewReminderJob accepts a standard five-field spec or a descriptor such as
// "@daily" or "@every 1h".
func NewReminderJob(
	sender ReminderSender,
	spec string,
	window time.Duration,
	batchSize int,
	logger *slog.Logger,
) (*ReminderJob, error) {
	schedule, err := cron.ParseStandard(spec)
	if err != nil {
		return nil, fmt.Errorf("invalid reminder schedule %q: %w", spec, err)
	}
	return &ReminderJob{
		sender:    sender,
		schedule:  schedule,
		window:    window,
		batchSize: batchSize,
		logger:    logger,
	}, nil
}

// Start blocks until ctx is cancelled and any running job has returned.
func (j *ReminderJob) Start(ctx context.Context) {
	c := cron.New(cron.WithLocation(time.UTC))
	job := cron.NewChain(cron.SkipIfStillRunning(cron.DiscardLogger)).
		Then(cron.FuncJob(func() { j.RunOnce(ctx) }))
	c.Schedule(j.schedule, job)

	j.logger.Info("starting reminder job", "window", j.window, "next_run", j.schedule.Next(time.Now().UTC()))
	c.Start()

	<-ctx.Done()
	<-c.Stop().Done()
	j.logger.Info("stopping reminder job")
}

func (j *ReminderJob) RunOnce(ctx context.Context) int {
	sent, err := j.sender.SendReminders(ctx, j.window, j.batchSize)
	if err != nil {
		j.logger.Error("failed to send reminders", "error", err)
		return 0
	}
	if sent > 0 {
		j.logger.Info("queued course reminders", "count", sent)
	}
	return sent
}
