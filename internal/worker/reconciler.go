package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/DanielPopoola/racing-academy-payments/internal/domain"
)

type SeatReconciler interface {
	ListReconciliation(ctx context.Context, limit int) ([]*domain.Enrollment, error)
	ReconcileSeat(ctx context.Context, enrollment *domain.Enrollment) (bool, error)
}

// Reconciler periodically retries the seat bookkeeping of enrollments that
// were flagged after a charge or refund.
type Reconciler struct {
	service   SeatReconciler
	interval  time.Duration
	batchSize int
	logger    *slog.Logger
}

func NewReconciler(
	service SeatReconciler,
	interval time.Duration,
	batchSize int,
	logger *slog.Logger,
) *Reconciler {
	return &Reconciler{
		service:   service,
		interval:  interval,
		batchSize: batchSize,
		logger:    logger,
	}
}

func (r *Reconciler) Start(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.logger.Info("starting seat reconciler", "interval", r.interval, "batch_size", r.batchSize)

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("stopping seat reconciler")
			return
		case <-ticker.C:
			r.RunOnce(ctx)
		}
	}
}

// RunOnce executes a single reconciliation cycle and returns how many
// enrollments were resolved.
func (r *Reconciler) RunOnce(ctx context.Context) int {
	flagged, err := r.service.ListReconciliation(ctx, r.batchSize)
	if err != nil {
		r.logger.Error("failed to fetch flagged enrollments", "error", err)
		return 0
	}
	if len(flagged) == 0 {
		return 0
	}

	r.logger.Info("reconciling enrollments", "count", len(flagged))

	resolved := 0
	for _, enrollment := range flagged {
		if ctx.Err() != nil {
			return resolved
		}

		ok, err := r.service.ReconcileSeat(ctx, enrollment)
		switch {
		case err != nil:
			r.logger.Error("reconciliation failed for enrollment",
				"enrollment_id", enrollment.ID,
				"status", enrollment.Status,
				"error", err,
			)
		case ok:
			resolved++
			r.logger.Info("reconciled enrollment",
				"enrollment_id", enrollment.ID,
				"status", enrollment.Status,
				"seat_reserved", enrollment.SeatReserved,
			)
		default:
			r.logger.Warn("enrollment still awaiting a seat",
				"enrollment_id", enrollment.ID,
				"course_id", enrollment.CourseID,
			)
		}
	}
	return resolved
}
