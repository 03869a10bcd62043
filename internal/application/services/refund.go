package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/DanielPopoola/racing-academy-payments/internal/application"
	"github.com/DanielPopoola/racing-academy-payments/internal/config"
	"github.com/DanielPopoola/racing-academy-payments/internal/domain"
	"github.com/DanielPopoola/racing-academy-payments/internal/infrastructure/persistence/postgres"
)

const reasonSeatReleasePending = "refund recorded but seat release failed"

type RefundService struct {
	enrollmentRepo *postgres.EnrollmentRepository
	attemptRepo    *postgres.AttemptRepository
	coordinator    *postgres.TransactionCoordinator
	gateway        application.GatewayClient
	notifier       application.Notifier
	recorder       application.Recorder
	cfg            config.PaymentsConfig
	logger         *slog.Logger
}

func NewRefundService(
	db *postgres.DB,
	gateway application.GatewayClient,
	notifier application.Notifier,
	recorder application.Recorder,
	cfg config.PaymentsConfig,
	logger *slog.Logger,
) *RefundService {
	return &RefundService{
		enrollmentRepo: postgres.NewEnrollmentRepository(db),
		attemptRepo:    postgres.NewAttemptRepository(db),
		coordinator:    postgres.NewTransactionCoordinator(db),
		gateway:        gateway,
		notifier:       notifier,
		recorder:       recorder,
		cfg:            cfg,
		logger:         logger,
	}
}

// Refund returns money for a paid or confirmed enrollment found by its
// transaction id. A held seat goes back to the course.
func (s *RefundService) Refund(ctx context.Context, cmd RefundCommand, idempotencyKey string) (*RefundResult, error) {
	if idempotencyKey == "" {
		return nil, application.NewValidationError(domain.NewMissingRequiredFieldError("Idempotency-Key"))
	}
	if cmd.TransactionID == "" {
		return nil, application.NewValidationError(domain.NewMissingRequiredFieldError("transaction ID"))
	}
	requestHash := ComputeHash(cmd)

	previous, err := lookupAttempt(ctx, s.attemptRepo, idempotencyKey, requestHash, domain.AttemptRefund)
	if err != nil {
		return nil, err
	}
	if previous != nil {
		return s.replay(ctx, previous)
	}

	enrollment, err := s.enrollmentRepo.FindByTransactionID(ctx, cmd.TransactionID)
	if err != nil {
		return nil, mapLookupError(err)
	}

	paid := enrollment.Payment.Amount
	if cmd.Amount.Amount <= 0 || cmd.Amount.Amount > paid.Amount {
		return nil, application.NewValidationError(domain.NewInvalidAmountError(cmd.Amount.String()))
	}
	if cmd.Amount.Currency != "" && cmd.Amount.Currency != paid.Currency {
		return nil, application.NewValidationError(fmt.Errorf("refund currency %s does not match charge currency %s", cmd.Amount.Currency, paid.Currency))
	}
	amount := domain.Money{Amount: cmd.Amount.Amount, Currency: paid.Currency}

	expected := enrollment.Status
	now := time.Now().UTC()
	if err := enrollment.BeginRefund(idempotencyKey, now); err != nil {
		return nil, application.NewInvalidTransitionError(err)
	}
	attempt := &domain.PaymentAttempt{
		Key:          idempotencyKey,
		EnrollmentID: enrollment.ID,
		Kind:         domain.AttemptRefund,
		RequestHash:  requestHash,
		Outcome:      domain.OutcomeInFlight,
		CreatedAt:    now,
	}
	if err := claimEnrollment(ctx, s.coordinator, enrollment, expected, attempt, now.Add(-s.cfg.ClaimTTL)); err != nil {
		return nil, err
	}

	result, err := s.gateway.Refund(ctx, application.RefundRequest{
		TransactionID: cmd.TransactionID,
		Amount:        amount,
		OrderID:       idempotencyKey,
	})

	sctx, cancel := settle(ctx, s.cfg.FinalizeTimeout)
	defer cancel()
	if err != nil {
		return nil, s.handleRefundFailure(sctx, enrollment, idempotencyKey, err)
	}

	return s.finalizeRefund(sctx, enrollment, expected, idempotencyKey, result)
}

func (s *RefundService) handleRefundFailure(ctx context.Context, enrollment *domain.Enrollment, key string, err error) error {
	if releaseErr := s.enrollmentRepo.ReleaseClaim(ctx, enrollment.ID, key); releaseErr != nil {
		s.logger.Error("failed to release claim", "enrollment_id", enrollment.ID, "error", releaseErr)
	}

	var (
		svcErr *application.ServiceError
		res    = postgres.AttemptResult{ErrorMessage: err.Error()}
	)
	gwErr, ok := application.IsGatewayError(err)
	switch {
	case ok && gwErr.Kind == application.GatewayKindDecline:
		svcErr = application.NewGatewayDeclineError(gwErr)
		res.Outcome = domain.OutcomeDeclined
		res.ErrorCode = gwErr.ResponseCode
		res.ErrorMessage = gwErr.Message()
	case ok && gwErr.Kind == application.GatewayKindInvalidRequest:
		svcErr = application.NewValidationError(gwErr)
		res.Outcome = domain.OutcomeUnknown
		res.ErrorCode = svcErr.Code
	case ok && gwErr.Kind == application.GatewayKindProtocol:
		svcErr = application.NewGatewayUnavailableError(err)
		res.Outcome = domain.OutcomeUnknown
		res.ErrorCode = svcErr.Code
		s.logger.Error("unrecognized gateway response during refund", "enrollment_id", enrollment.ID, "attempt_key", key, "error", err)
	default:
		svcErr = application.NewGatewayUnavailableError(err)
		res.Outcome = domain.OutcomeUnavailable
		res.ErrorCode = svcErr.Code
	}

	s.logger.Warn("refund failed",
		"enrollment_id", enrollment.ID,
		"transaction_id", enrollment.TransactionIDValue(),
		"outcome", res.Outcome,
		"error", err,
	)
	completeAttempt(ctx, s.attemptRepo, s.logger, key, res)
	s.recorder.RefundOutcome(string(res.Outcome))
	return svcErr
}

func (s *RefundService) finalizeRefund(
	ctx context.Context,
	enrollment *domain.Enrollment,
	expected domain.EnrollmentStatus,
	key string,
	refund *application.RefundResult,
) (*RefundResult, error) {
	fallback := *enrollment

	err := s.coordinator.WithTransaction(ctx, func(ctx context.Context, repos postgres.Repositories) error {
		release, err := enrollment.MarkRefunded(refund.RefundID)
		if err != nil {
			return err
		}
		if err := repos.Enrollments.SaveOutcome(ctx, enrollment, expected, key); err != nil {
			return err
		}
		if release {
			if err := repos.Courses.ReleaseSeat(ctx, enrollment.CourseID); err != nil {
				return err
			}
		}
		return repos.Attempts.Complete(ctx, key, postgres.AttemptResult{
			Outcome:       domain.OutcomeApproved,
			TransactionID: refund.RefundID,
		})
	})
	if err != nil {
		return s.finalizeFallback(ctx, &fallback, expected, key, refund, err)
	}

	s.recorder.RefundOutcome(string(domain.OutcomeApproved))
	notifyTransitions(s.notifier, enrollment, enrollment.PullTransitions())
	return &RefundResult{
		EnrollmentID: enrollment.ID,
		RefundID:     refund.RefundID,
		Status:       enrollment.Status,
	}, nil
}

// finalizeFallback records the refund alone. A seat that was held stays
// marked so the reconciler can hand it back later.
func (s *RefundService) finalizeFallback(
	ctx context.Context,
	enrollment *domain.Enrollment,
	expected domain.EnrollmentStatus,
	key string,
	refund *application.RefundResult,
	txErr error,
) (*RefundResult, error) {
	enrollment.PullTransitions()
	release, err := enrollment.MarkRefunded(refund.RefundID)
	if err != nil {
		return nil, application.NewPersistenceError(err)
	}
	enrollment.SeatReserved = release
	if release {
		enrollment.FlagForReconciliation(reasonSeatReleasePending)
	}

	if err := s.enrollmentRepo.SaveOutcome(ctx, enrollment, expected, key); err != nil {
		s.logger.Error("refund issued but enrollment could not be saved",
			"alert", "reconciliation",
			"enrollment_id", enrollment.ID,
			"transaction_id", enrollment.TransactionIDValue(),
			"refund_id", refund.RefundID,
			"tx_error", txErr,
			"error", err,
		)
		completeAttempt(ctx, s.attemptRepo, s.logger, key, postgres.AttemptResult{
			Outcome:       domain.OutcomeFailed,
			TransactionID: refund.RefundID,
			ErrorCode:     application.ErrCodePersistence,
			ErrorMessage:  err.Error(),
		})
		s.recorder.RefundOutcome("persistence_error")
		return nil, application.NewPersistenceError(err)
	}

	s.logger.Error("refund recorded without seat release",
		"alert", "reconciliation",
		"enrollment_id", enrollment.ID,
		"refund_id", refund.RefundID,
		"error", txErr,
	)
	completeAttempt(ctx, s.attemptRepo, s.logger, key, postgres.AttemptResult{
		Outcome:       domain.OutcomeApproved,
		TransactionID: refund.RefundID,
	})
	s.recorder.RefundOutcome(string(domain.OutcomeApproved))
	notifyTransitions(s.notifier, enrollment, enrollment.PullTransitions())
	return &RefundResult{
		EnrollmentID: enrollment.ID,
		RefundID:     refund.RefundID,
		Status:       enrollment.Status,
	}, nil
}

func (s *RefundService) replay(ctx context.Context, attempt *domain.PaymentAttempt) (*RefundResult, error) {
	if !attempt.Succeeded() {
		return nil, replayFailure(attempt)
	}
	enrollment, err := s.enrollmentRepo.FindByID(ctx, attempt.EnrollmentID)
	if err != nil {
		return nil, mapLookupError(err)
	}
	return &RefundResult{
		EnrollmentID: enrollment.ID,
		RefundID:     deref(attempt.TransactionID),
		Status:       enrollment.Status,
		Replayed:     true,
	}, nil
}
