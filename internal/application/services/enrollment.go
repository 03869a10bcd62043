package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/DanielPopoola/racing-academy-payments/internal/application"
	"github.com/DanielPopoola/racing-academy-payments/internal/config"
	"github.com/DanielPopoola/racing-academy-payments/internal/domain"
	"github.com/DanielPopoola/racing-academy-payments/internal/infrastructure/persistence/postgres"
	"github.com/google/uuid"
)

type EnrollmentService struct {
	enrollmentRepo *postgres.EnrollmentRepository
	courseRepo     *postgres.CourseRepository
	coordinator    *postgres.TransactionCoordinator
	notifier       application.Notifier
	recorder       application.Recorder
	cfg            config.PaymentsConfig
	logger         *slog.Logger
}

func NewEnrollmentService(
	db *postgres.DB,
	notifier application.Notifier,
	recorder application.Recorder,
	cfg config.PaymentsConfig,
	logger *slog.Logger,
) *EnrollmentService {
	return &EnrollmentService{
		enrollmentRepo: postgres.NewEnrollmentRepository(db),
		courseRepo:     postgres.NewCourseRepository(db),
		coordinator:    postgres.NewTransactionCoordinator(db),
		notifier:       notifier,
		recorder:       recorder,
		cfg:            cfg,
		logger:         logger,
	}
}

// Create opens a pending enrollment priced at the course's current price.
// No seat is taken until payment succeeds.
func (s *EnrollmentService) Create(ctx context.Context, cmd CreateEnrollmentCommand) (*domain.Enrollment, error) {
	course, err := s.courseRepo.FindByID(ctx, cmd.CourseID)
	if err != nil {
		return nil, mapLookupError(err)
	}

	enrollment, err := domain.NewEnrollment(
		uuid.New().String(),
		course.ID,
		cmd.StudentID,
		cmd.ParentID,
		cmd.ContactEmail,
		course.Price,
	)
	if err != nil {
		return nil, application.NewValidationError(err)
	}

	if err := s.enrollmentRepo.Create(ctx, enrollment); err != nil {
		return nil, application.NewInternalError(err)
	}
	return enrollment, nil
}

func (s *EnrollmentService) Get(ctx context.Context, id string) (*domain.Enrollment, error) {
	enrollment, err := s.enrollmentRepo.FindByID(ctx, id)
	if err != nil {
		return nil, mapLookupError(err)
	}
	return enrollment, nil
}

// Confirm moves a paid enrollment to confirmed; an already confirmed one is
// returned unchanged.
func (s *EnrollmentService) Confirm(ctx context.Context, id string) (*domain.Enrollment, error) {
	enrollment, err := s.enrollmentRepo.FindByID(ctx, id)
	if err != nil {
		return nil, mapLookupError(err)
	}

	expected := enrollment.Status
	if err := enrollment.Confirm(); err != nil {
		return nil, application.NewInvalidTransitionError(err)
	}
	if expected == enrollment.Status {
		return enrollment, nil
	}

	if err := s.enrollmentRepo.Save(ctx, enrollment, expected); err != nil {
		return nil, mapSaveError(enrollment.ID, err)
	}

	notifyTransitions(s.notifier, enrollment, enrollment.PullTransitions())
	return enrollment, nil
}

// Cancel ends a confirmed enrollment without a refund and frees its seat.
func (s *EnrollmentService) Cancel(ctx context.Context, id string) (*domain.Enrollment, error) {
	enrollment, err := s.enrollmentRepo.FindByID(ctx, id)
	if err != nil {
		return nil, mapLookupError(err)
	}

	expected := enrollment.Status
	release, err := enrollment.Cancel()
	if err != nil {
		return nil, application.NewInvalidTransitionError(err)
	}

	err = s.coordinator.WithTransaction(ctx, func(ctx context.Context, repos postgres.Repositories) error {
		if err := repos.Enrollments.Save(ctx, enrollment, expected); err != nil {
			return err
		}
		if release {
			return repos.Courses.ReleaseSeat(ctx, enrollment.CourseID)
		}
		return nil
	})
	if err != nil {
		return nil, mapSaveError(enrollment.ID, err)
	}

	notifyTransitions(s.notifier, enrollment, enrollment.PullTransitions())
	return enrollment, nil
}

func (s *EnrollmentService) ListReconciliation(ctx context.Context, limit int) ([]*domain.Enrollment, error) {
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	enrollments, err := s.enrollmentRepo.ListNeedingReconciliation(ctx, limit)
	if err != nil {
		return nil, application.NewInternalError(err)
	}
	return enrollments, nil
}

// ReconcileSeat retries the seat bookkeeping of a flagged enrollment. A paid
// enrollment without a seat tries to take one; a refunded or cancelled one
// still holding a seat hands it back. It reports whether the flag was cleared.
func (s *EnrollmentService) ReconcileSeat(ctx context.Context, enrollment *domain.Enrollment) (bool, error) {
	if !enrollment.NeedsReconciliation {
		return true, nil
	}
	if enrollment.InFlightAttempt != nil {
		return false, nil
	}

	expected := enrollment.Status
	resolved := false

	err := s.coordinator.WithTransaction(ctx, func(ctx context.Context, repos postgres.Repositories) error {
		switch {
		case enrollment.IsTerminal() && enrollment.SeatReserved:
			if err := repos.Courses.ReleaseSeat(ctx, enrollment.CourseID); err != nil {
				return err
			}
			enrollment.DetachSeat()
			resolved = true

		case !enrollment.IsTerminal() && !enrollment.SeatReserved:
			reserved, err := repos.Courses.ReserveSeat(ctx, enrollment.CourseID)
			if err != nil {
				return err
			}
			if !reserved {
				return nil
			}
			enrollment.AttachSeat()
			if s.cfg.AutoConfirm {
				if err := enrollment.Confirm(); err != nil {
					return err
				}
			}
			resolved = true

		default:
			enrollment.ClearReconciliation()
			resolved = true
		}

		if !resolved {
			return nil
		}
		return repos.Enrollments.Save(ctx, enrollment, expected)
	})
	if err != nil {
		enrollment.PullTransitions()
		if errors.Is(err, postgres.ErrStaleWrite) {
			s.recorder.SeatReconciliation("busy")
			return false, mapSaveError(enrollment.ID, err)
		}
		s.recorder.SeatReconciliation("error")
		return false, err
	}

	if !resolved {
		s.recorder.SeatReconciliation("still_full")
		return false, nil
	}

	s.recorder.SeatReconciliation("resolved")
	notifyTransitions(s.notifier, enrollment, enrollment.PullTransitions())
	return true, nil
}

// SendReminders queues a reminder for every confirmed enrollment whose course
// starts within window from now and returns how many were queued.
func (s *EnrollmentService) SendReminders(ctx context.Context, window time.Duration, limit int) (int, error) {
	now := time.Now().UTC()
	targets, err := s.enrollmentRepo.ListReminderTargets(ctx, now, now.Add(window), limit)
	if err != nil {
		return 0, fmt.Errorf("list reminder targets: %w", err)
	}

	sent := 0
	for _, target := range targets {
		if err := s.enrollmentRepo.MarkReminderSent(ctx, target.EnrollmentID, now); err != nil {
			s.logger.Error("failed to mark reminder", "enrollment_id", target.EnrollmentID, "error", err)
			continue
		}
		s.notifier.NotifyReminder(target)
		sent++
	}
	return sent, nil
}

func mapSaveError(id string, err error) error {
	if errors.Is(err, postgres.ErrStaleWrite) {
		return application.NewConcurrentAttemptError(domain.NewAttemptInFlightError(id))
	}
	return application.NewInternalError(err)
}
