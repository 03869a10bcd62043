package services

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/DanielPopoola/racing-academy-payments/internal/application"
	"github.com/DanielPopoola/racing-academy-payments/internal/domain"
	"github.com/DanielPopoola/racing-academy-payments/internal/infrastructure/persistence/postgres"
)

func ComputeHash(v interface{}) string {
	data := fmt.Sprintf("%+v", v)
	hash := sha256.Sum256([]byte(data))
	return fmt.Sprintf("%x", hash)
}

// lookupAttempt returns a finished attempt recorded under key, nil when the
// key is new, or an error when the key cannot be used for this request.
func lookupAttempt(
	ctx context.Context,
	attempts *postgres.AttemptRepository,
	key string,
	requestHash string,
	kind domain.AttemptKind,
) (*domain.PaymentAttempt, error) {
	attempt, err := attempts.FindByKey(ctx, key)
	if err != nil {
		if errors.Is(err, postgres.ErrAttemptNotFound) {
			return nil, nil
		}
		return nil, application.NewInternalError(err)
	}

	if attempt.RequestHash != requestHash || attempt.Kind != kind {
		return nil, application.NewIdempotencyMismatchError()
	}
	if attempt.IsInFlight() {
		return nil, application.NewRequestProcessingError()
	}
	return attempt, nil
}

// replayFailure rebuilds the error a finished, unsuccessful attempt returned.
func replayFailure(a *domain.PaymentAttempt) error {
	code := deref(a.ErrorCode)
	msg := deref(a.ErrorMessage)

	switch a.Outcome {
	case domain.OutcomeDeclined:
		return application.NewGatewayDeclineError(&application.GatewayError{
			Kind:          application.GatewayKindDecline,
			Description:   msg,
			ResponseCode:  code,
			TransactionID: deref(a.TransactionID),
		})
	case domain.OutcomeFailed:
		return application.NewPersistenceError(errors.New(msg))
	default:
		if code == application.ErrCodeValidation {
			return application.NewValidationError(errors.New(msg))
		}
		return application.NewGatewayUnavailableError(errors.New(msg))
	}
}

// claimEnrollment records the attempt and marks the enrollment as owned by it
// in one transaction.
func claimEnrollment(
	ctx context.Context,
	coordinator *postgres.TransactionCoordinator,
	e *domain.Enrollment,
	expected domain.EnrollmentStatus,
	attempt *domain.PaymentAttempt,
	staleBefore time.Time,
) error {
	err := coordinator.WithTransaction(ctx, func(ctx context.Context, repos postgres.Repositories) error {
		if err := repos.Attempts.Create(ctx, attempt); err != nil {
			return err
		}
		return repos.Enrollments.Claim(ctx, e, expected, staleBefore)
	})
	switch {
	case err == nil:
		return nil
	case errors.Is(err, postgres.ErrDuplicateAttemptKey):
		return application.NewRequestProcessingError()
	case errors.Is(err, postgres.ErrStaleWrite):
		return application.NewConcurrentAttemptError(domain.NewAttemptInFlightError(e.ID))
	default:
		return application.NewInternalError(err)
	}
}

// settle derives the context that records a gateway result. It keeps ctx's
// values and drops its cancellation and deadline.
func settle(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(context.WithoutCancel(ctx))
	}
	return context.WithTimeout(context.WithoutCancel(ctx), timeout)
}

// completeAttempt is best effort; a lost write leaves the attempt in_flight
// and the key answers REQUEST_PROCESSING until an operator looks at it.
func completeAttempt(
	ctx context.Context,
	attempts *postgres.AttemptRepository,
	logger *slog.Logger,
	key string,
	res postgres.AttemptResult,
) {
	if err := attempts.Complete(ctx, key, res); err != nil {
		logger.Error("failed to record attempt outcome",
			"attempt_key", key,
			"outcome", res.Outcome,
			"error", err,
		)
	}
}

func notifyTransitions(notifier application.Notifier, e *domain.Enrollment, transitions []domain.Transition) {
	for _, t := range transitions {
		notifier.NotifyTransition(application.TransitionNotice{
			Transition:    t,
			ContactEmail:  e.ContactEmail,
			StudentID:     e.StudentID,
			CourseID:      e.CourseID,
			Amount:        e.Payment.Amount,
			TransactionID: e.TransactionIDValue(),
			DeclineCode:   deref(e.Payment.DeclineCode),
			DeclineReason: deref(e.Payment.DeclineReason),
		})
	}
}

func mapLookupError(err error) error {
	if errors.Is(err, domain.ErrEnrollmentNotFound) || errors.Is(err, domain.ErrCourseNotFound) {
		return application.NewNotFoundError(err)
	}
	return application.NewInternalError(err)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
