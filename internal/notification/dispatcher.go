// Package notification turns enrollment transitions into templated emails
// sent off the request path.
package notification

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/DanielPopoola/racing-academy-payments/internal/application"
	"github.com/DanielPopoola/racing-academy-payments/internal/config"
	"github.com/DanielPopoola/racing-academy-payments/internal/domain"
)

type message struct {
	enrollmentID string
	to           string
	template     string
	data         map[string]any
}

// Dispatcher queues emails onto a fixed pool of workers. Enqueueing never
// blocks; a full queue drops the message.
type Dispatcher struct {
	mailer   application.Mailer
	recorder application.Recorder
	logger   *slog.Logger
	policy   retryPolicy
	workers  int

	mu     sync.RWMutex
	queue  chan message
	closed bool
	wg     sync.WaitGroup
}

var _ application.Notifier = (*Dispatcher)(nil)

func NewDispatcher(
	mailer application.Mailer,
	recorder application.Recorder,
	cfg config.NotifierConfig,
	logger *slog.Logger,
) *Dispatcher {
	return &Dispatcher{
		mailer:   mailer,
		recorder: recorder,
		logger:   logger,
		policy: retryPolicy{
			maxAttempts: cfg.MaxAttempts,
			baseDelay:   cfg.BaseDelay,
		},
		workers: cfg.Workers,
		queue:   make(chan message, cfg.QueueSize),
	}
}

// TemplateFor returns the email sent when an enrollment enters status, or ""
// when that transition sends nothing.
func TemplateFor(status domain.EnrollmentStatus) string {
	switch status {
	case domain.StatusPaid:
		return application.TemplatePaymentConfirmation
	case domain.StatusPaymentFailed:
		return application.TemplatePaymentFailed
	case domain.StatusConfirmed:
		return application.TemplateEnrollmentConfirmation
	default:
		return ""
	}
}

func (d *Dispatcher) Start(ctx context.Context) {
	d.logger.Info("starting notification dispatcher", "workers", d.workers)
	for i := 0; i < d.workers; i++ {
		d.wg.Add(1)
		go d.work(ctx)
	}
}

// Stop refuses new messages and waits for the queue to drain.
func (d *Dispatcher) Stop() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	close(d.queue)
	d.mu.Unlock()

	d.wg.Wait()
	d.logger.Info("notification dispatcher stopped")
}

func (d *Dispatcher) NotifyTransition(notice application.TransitionNotice) {
	template := TemplateFor(notice.Transition.To)
	if template == "" {
		return
	}

	d.enqueue(message{
		enrollmentID: notice.Transition.EnrollmentID,
		to:           notice.ContactEmail,
		template:     template,
		data: map[string]any{
			"enrollment_id":  notice.Transition.EnrollmentID,
			"student_id":     notice.StudentID,
			"course_id":      notice.CourseID,
			"status":         string(notice.Transition.To),
			"amount":         notice.Amount.String(),
			"currency":       notice.Amount.Currency,
			"transaction_id": notice.TransactionID,
			"decline_code":   notice.DeclineCode,
			"decline_reason": notice.DeclineReason,
		},
	})
}

func (d *Dispatcher) NotifyReminder(target domain.ReminderTarget) {
	d.enqueue(message{
		enrollmentID: target.EnrollmentID,
		to:           target.ContactEmail,
		template:     application.TemplateReminder,
		data: map[string]any{
			"enrollment_id": target.EnrollmentID,
			"student_id":    target.StudentID,
			"course_title":  target.CourseTitle,
			"starts_at":     target.StartsAt.Format(time.RFC3339),
		},
	})
}

func (d *Dispatcher) enqueue(msg message) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		d.logger.Warn("notification dropped, dispatcher stopped",
			"enrollment_id", msg.enrollmentID,
			"template", msg.template,
		)
		d.recorder.NotificationOutcome(msg.template, "dropped")
		return
	}

	select {
	case d.queue <- msg:
	default:
		d.logger.Warn("notification dropped, queue full",
			"enrollment_id", msg.enrollmentID,
			"template", msg.template,
		)
		d.recorder.NotificationOutcome(msg.template, "dropped")
	}
}

func (d *Dispatcher) work(ctx context.Context) {
	defer d.wg.Done()
	for msg := range d.queue {
		d.deliver(ctx, msg)
	}
}

func (d *Dispatcher) deliver(ctx context.Context, msg message) {
	attempts, err := retry(ctx, d.policy, func(ctx context.Context) error {
		return d.mailer.SendTemplateEmail(ctx, msg.to, msg.template, msg.data)
	})
	if err != nil {
		d.logger.Error("failed to send notification",
			"enrollment_id", msg.enrollmentID,
			"template", msg.template,
			"attempts", attempts,
			"error", err,
		)
		d.recorder.NotificationOutcome(msg.template, "failed")
		return
	}

	d.logger.Debug("notification sent",
		"enrollment_id", msg.enrollmentID,
		"template", msg.template,
		"attempts", attempts,
	)
	d.recorder.NotificationOutcome(msg.template, "sent")
}
