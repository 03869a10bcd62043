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
)

const reasonNoSeatAfterCharge = "charge approved but no seat was available"

type PaymentService struct {
	enrollmentRepo *postgres.EnrollmentRepository
	courseRepo     *postgres.CourseRepository
	attemptRepo    *postgres.AttemptRepository
	coordinator    *postgres.TransactionCoordinator
	gateway        application.GatewayClient
	vault          application.TokenVault
	notifier       application.Notifier
	recorder       application.Recorder
	cfg            config.PaymentsConfig
	logger         *slog.Logger
}

func NewPaymentService(
	db *postgres.DB,
	gateway application.GatewayClient,
	vault application.TokenVault,
	notifier application.Notifier,
	recorder application.Recorder,
	cfg config.PaymentsConfig,
	logger *slog.Logger,
) *PaymentService {
	return &PaymentService{
		enrollmentRepo: postgres.NewEnrollmentRepository(db),
		courseRepo:     postgres.NewCourseRepository(db),
		attemptRepo:    postgres.NewAttemptRepository(db),
		coordinator:    postgres.NewTransactionCoordinator(db),
		gateway:        gateway,
		vault:          vault,
		notifier:       notifier,
		recorder:       recorder,
		cfg:            cfg,
		logger:         logger,
	}
}

// paymentPlan is the payment method resolved before anything is claimed.
type paymentPlan struct {
	method     domain.PaymentMethod
	customerID string
	fromVault  bool
	tokenize   bool
}

// ProcessPayment charges the enrollment once per idempotency key. The key is
// also sent to the gateway as the order id.
func (s *PaymentService) ProcessPayment(ctx context.Context, cmd ProcessPaymentCommand, idempotencyKey string) (*PaymentResult, error) {
	if idempotencyKey == "" {
		return nil, application.NewValidationError(domain.NewMissingRequiredFieldError("Idempotency-Key"))
	}
	requestHash := ComputeHash(cmd)

	previous, err := lookupAttempt(ctx, s.attemptRepo, idempotencyKey, requestHash, domain.AttemptCharge)
	if err != nil {
		return nil, err
	}
	if previous != nil {
		return s.replay(ctx, previous)
	}

	enrollment, err := s.enrollmentRepo.FindByID(ctx, cmd.EnrollmentID)
	if err != nil {
		return nil, mapLookupError(err)
	}
	if cmd.CourseID != "" && cmd.CourseID != enrollment.CourseID {
		return nil, application.NewValidationError(fmt.Errorf("enrollment %s does not belong to course %s", enrollment.ID, cmd.CourseID))
	}

	expected := enrollment.Status
	if expected != domain.StatusPending && expected != domain.StatusPaymentFailed {
		return nil, application.NewInvalidTransitionError(domain.NewInvalidTransitionError(expected, domain.StatusPaid))
	}

	course, err := s.courseRepo.FindByID(ctx, enrollment.CourseID)
	if err != nil {
		return nil, mapLookupError(err)
	}
	if !course.HasSeat() {
		return nil, application.NewSeatUnavailableError(domain.NewSeatUnavailableError(course.ID))
	}

	plan, err := s.resolveMethod(ctx, cmd)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if err := enrollment.BeginPaymentAttempt(idempotencyKey, now); err != nil {
		return nil, application.NewInvalidTransitionError(err)
	}
	attempt := &domain.PaymentAttempt{
		Key:          idempotencyKey,
		EnrollmentID: enrollment.ID,
		Kind:         domain.AttemptCharge,
		RequestHash:  requestHash,
		Outcome:      domain.OutcomeInFlight,
		CreatedAt:    now,
	}
	if err := claimEnrollment(ctx, s.coordinator, enrollment, expected, attempt, now.Add(-s.cfg.ClaimTTL)); err != nil {
		return nil, err
	}
	notifyTransitions(s.notifier, enrollment, enrollment.PullTransitions())

	if plan.tokenize {
		token, err := s.gateway.Tokenize(ctx, application.TokenizeRequest{
			Card:       cmd.Card,
			Billing:    cmd.Billing,
			CustomerID: cmd.CustomerID,
		})
		if err != nil {
			sctx, cancel := settle(ctx, s.cfg.FinalizeTimeout)
			defer cancel()
			return nil, s.handleChargeFailure(sctx, enrollment, idempotencyKey, plan, err)
		}
		s.storeToken(ctx, *token)
		plan.method = domain.TokenMethod{TokenID: token.TokenID}
	}

	req := application.ChargeRequest{
		Amount:      enrollment.Payment.Amount,
		Method:      plan.method,
		OrderID:     idempotencyKey,
		Description: s.description(cmd),
	}
	if cmd.hasBilling() {
		billing := cmd.Billing
		req.Billing = &billing
	}

	result, err := s.gateway.Charge(ctx, req)

	sctx, cancel := settle(ctx, s.cfg.FinalizeTimeout)
	defer cancel()
	if err != nil {
		return nil, s.handleChargeFailure(sctx, enrollment, idempotencyKey, plan, err)
	}

	return s.finalizeApproved(sctx, enrollment, idempotencyKey, result)
}

func (s *PaymentService) resolveMethod(ctx context.Context, cmd ProcessPaymentCommand) (paymentPlan, error) {
	if cmd.TokenID != "" {
		if cmd.hasCard() {
			return paymentPlan{}, application.NewValidationError(errors.New("provide either a token or card details, not both"))
		}
		return paymentPlan{method: domain.TokenMethod{TokenID: cmd.TokenID}}, nil
	}

	if cmd.CustomerID != "" && !cmd.hasCard() {
		token, err := s.vault.Get(ctx, cmd.CustomerID)
		switch {
		case err == nil:
			return paymentPlan{
				method:     domain.TokenMethod{TokenID: token.TokenID},
				customerID: cmd.CustomerID,
				fromVault:  true,
			}, nil
		case !errors.Is(err, application.ErrTokenNotFound):
			s.logger.Warn("token vault lookup failed", "customer_id", cmd.CustomerID, "error", err)
		}
	}

	if !cmd.hasCard() {
		return paymentPlan{}, application.NewValidationError(errors.New("card details are required when no stored token exists"))
	}
	if err := cmd.Card.Validate(); err != nil {
		return paymentPlan{}, application.NewValidationError(err)
	}
	if err := cmd.Billing.Validate(); err != nil {
		return paymentPlan{}, application.NewValidationError(err)
	}

	if s.cfg.TokenizeCards && cmd.CustomerID != "" {
		return paymentPlan{customerID: cmd.CustomerID, tokenize: true}, nil
	}
	return paymentPlan{method: domain.CardMethod{Card: cmd.Card}}, nil
}

func (s *PaymentService) storeToken(ctx context.Context, token domain.PaymentToken) {
	if err := s.vault.Put(ctx, token); err != nil {
		s.logger.Warn("failed to store payment token", "customer_id", token.CustomerID, "error", err)
	}
}

func (s *PaymentService) description(cmd ProcessPaymentCommand) string {
	if cmd.Description != "" {
		return cmd.Description
	}
	if s.cfg.ChargeDescription != "" {
		return s.cfg.ChargeDescription
	}
	return "Course enrollment " + cmd.EnrollmentID
}

func (s *PaymentService) handleChargeFailure(
	ctx context.Context,
	enrollment *domain.Enrollment,
	key string,
	plan paymentPlan,
	err error,
) error {
	gwErr, ok := application.IsGatewayError(err)
	if ok && gwErr.Kind == application.GatewayKindDecline {
		return s.recordDecline(ctx, enrollment, key, plan, gwErr)
	}

	outcome := domain.OutcomeUnavailable
	if ok && gwErr.Kind == application.GatewayKindProtocol {
		outcome = domain.OutcomeUnknown
		s.logger.Error("unrecognized gateway response",
			"enrollment_id", enrollment.ID,
			"attempt_key", key,
			"error", err,
		)
	} else {
		s.logger.Warn("gateway unavailable during charge",
			"enrollment_id", enrollment.ID,
			"attempt_key", key,
			"error", err,
		)
	}

	if releaseErr := s.enrollmentRepo.ReleaseClaim(ctx, enrollment.ID, key); releaseErr != nil {
		s.logger.Error("failed to release claim", "enrollment_id", enrollment.ID, "error", releaseErr)
	}
	svcErr := application.NewGatewayUnavailableError(err)
	if ok && gwErr.Kind == application.GatewayKindInvalidRequest {
		svcErr = application.NewValidationError(gwErr)
	}
	completeAttempt(ctx, s.attemptRepo, s.logger, key, postgres.AttemptResult{
		Outcome:      outcome,
		ErrorCode:    svcErr.Code,
		ErrorMessage: err.Error(),
	})
	s.recorder.PaymentOutcome(string(outcome))
	return svcErr
}

func (s *PaymentService) recordDecline(
	ctx context.Context,
	enrollment *domain.Enrollment,
	key string,
	plan paymentPlan,
	gwErr *application.GatewayError,
) error {
	if plan.fromVault && gwErr.IsCardRejection() {
		if err := s.vault.Forget(ctx, plan.customerID); err != nil {
			s.logger.Warn("failed to forget rejected token", "enrollment_id", enrollment.ID, "error", err)
		}
	}

	if err := enrollment.MarkPaymentFailed(domain.Decline{
		Code:          gwErr.ResponseCode,
		Reason:        gwErr.Message(),
		TransactionID: gwErr.TransactionID,
	}); err != nil {
		return application.NewInvalidTransitionError(err)
	}

	err := s.coordinator.WithTransaction(ctx, func(ctx context.Context, repos postgres.Repositories) error {
		if err := repos.Enrollments.SaveOutcome(ctx, enrollment, domain.StatusPending, key); err != nil {
			return err
		}
		return repos.Attempts.Complete(ctx, key, postgres.AttemptResult{
			Outcome:       domain.OutcomeDeclined,
			TransactionID: gwErr.TransactionID,
			ErrorCode:     gwErr.ResponseCode,
			ErrorMessage:  gwErr.Message(),
		})
	})
	if err != nil {
		s.logger.Error("failed to persist declined charge",
			"enrollment_id", enrollment.ID,
			"attempt_key", key,
			"response_code", gwErr.ResponseCode,
			"error", err,
		)
		if releaseErr := s.enrollmentRepo.ReleaseClaim(ctx, enrollment.ID, key); releaseErr != nil {
			s.logger.Error("failed to release claim", "enrollment_id", enrollment.ID, "error", releaseErr)
		}
		enrollment.PullTransitions()
	} else {
		notifyTransitions(s.notifier, enrollment, enrollment.PullTransitions())
	}

	s.recorder.PaymentOutcome(string(domain.OutcomeDeclined))
	return application.NewGatewayDeclineError(gwErr)
}

// finalizeApproved commits the paid status and the seat together. The charge
// already happened, so every failure here ends with a record flagged for
// reconciliation or, if even that cannot be written, a PersistenceError.
func (s *PaymentService) finalizeApproved(
	ctx context.Context,
	enrollment *domain.Enrollment,
	key string,
	charge *application.ChargeResult,
) (*PaymentResult, error) {
	fallback := *enrollment

	err := s.coordinator.WithTransaction(ctx, func(ctx context.Context, repos postgres.Repositories) error {
		if err := enrollment.MarkPaid(charge.TransactionID, charge.AuthCode); err != nil {
			return err
		}

		reserved, err := repos.Courses.ReserveSeat(ctx, enrollment.CourseID)
		if err != nil {
			return err
		}
		if reserved {
			enrollment.AttachSeat()
			if s.cfg.AutoConfirm {
				if err := enrollment.Confirm(); err != nil {
					return err
				}
			}
		} else {
			enrollment.FlagForReconciliation(reasonNoSeatAfterCharge)
		}

		if err := repos.Enrollments.SaveOutcome(ctx, enrollment, domain.StatusPending, key); err != nil {
			return err
		}
		return repos.Attempts.Complete(ctx, key, postgres.AttemptResult{
			Outcome:       domain.OutcomeApproved,
			TransactionID: charge.TransactionID,
			AuthCode:      charge.AuthCode,
		})
	})
	if err != nil {
		return s.finalizeFallback(ctx, &fallback, key, charge, err)
	}

	if enrollment.NeedsReconciliation {
		s.logger.Warn("paid enrollment has no seat",
			"alert", "reconciliation",
			"enrollment_id", enrollment.ID,
			"course_id", enrollment.CourseID,
			"transaction_id", charge.TransactionID,
		)
		s.recorder.PaymentOutcome("approved_no_seat")
	} else {
		s.recorder.PaymentOutcome(string(domain.OutcomeApproved))
	}

	notifyTransitions(s.notifier, enrollment, enrollment.PullTransitions())
	return paymentResult(enrollment, charge), nil
}

func (s *PaymentService) finalizeFallback(
	ctx context.Context,
	enrollment *domain.Enrollment,
	key string,
	charge *application.ChargeResult,
	txErr error,
) (*PaymentResult, error) {
	enrollment.PullTransitions()
	if err := enrollment.MarkPaid(charge.TransactionID, charge.AuthCode); err != nil {
		return nil, application.NewPersistenceError(err)
	}
	enrollment.FlagForReconciliation("seat update failed after charge: " + txErr.Error())

	if err := s.enrollmentRepo.SaveOutcome(ctx, enrollment, domain.StatusPending, key); err != nil {
		s.logger.Error("charge approved but enrollment could not be saved",
			"alert", "reconciliation",
			"enrollment_id", enrollment.ID,
			"transaction_id", charge.TransactionID,
			"attempt_key", key,
			"tx_error", txErr,
			"error", err,
		)
		completeAttempt(ctx, s.attemptRepo, s.logger, key, postgres.AttemptResult{
			Outcome:       domain.OutcomeFailed,
			TransactionID: charge.TransactionID,
			AuthCode:      charge.AuthCode,
			ErrorCode:     application.ErrCodePersistence,
			ErrorMessage:  err.Error(),
		})
		s.recorder.PaymentOutcome("persistence_error")
		return nil, application.NewPersistenceError(err)
	}

	s.logger.Error("charge approved, seat not reserved",
		"alert", "reconciliation",
		"enrollment_id", enrollment.ID,
		"transaction_id", charge.TransactionID,
		"error", txErr,
	)
	completeAttempt(ctx, s.attemptRepo, s.logger, key, postgres.AttemptResult{
		Outcome:       domain.OutcomeApproved,
		TransactionID: charge.TransactionID,
		AuthCode:      charge.AuthCode,
	})
	s.recorder.PaymentOutcome("approved_no_seat")

	notifyTransitions(s.notifier, enrollment, enrollment.PullTransitions())
	return paymentResult(enrollment, charge), nil
}

func (s *PaymentService) replay(ctx context.Context, attempt *domain.PaymentAttempt) (*PaymentResult, error) {
	if !attempt.Succeeded() {
		return nil, replayFailure(attempt)
	}

	enrollment, err := s.enrollmentRepo.FindByID(ctx, attempt.EnrollmentID)
	if err != nil {
		return nil, mapLookupError(err)
	}
	return &PaymentResult{
		EnrollmentID:        enrollment.ID,
		Status:              enrollment.Status,
		TransactionID:       deref(attempt.TransactionID),
		AuthCode:            deref(attempt.AuthCode),
		NeedsReconciliation: enrollment.NeedsReconciliation,
		Replayed:            true,
	}, nil
}

// Tokenize stores the card with the gateway and remembers the token for the customer.
func (s *PaymentService) Tokenize(ctx context.Context, cmd TokenizeCommand) (*domain.PaymentToken, error) {
	if cmd.CustomerID == "" {
		return nil, application.NewValidationError(domain.NewMissingRequiredFieldError("customer ID"))
	}
	if err := cmd.Card.Validate(); err != nil {
		return nil, application.NewValidationError(err)
	}
	if err := cmd.Billing.Validate(); err != nil {
		return nil, application.NewValidationError(err)
	}

	token, err := s.gateway.Tokenize(ctx, application.TokenizeRequest{
		Card:       cmd.Card,
		Billing:    cmd.Billing,
		CustomerID: cmd.CustomerID,
	})
	if err != nil {
		if gwErr, ok := application.IsGatewayError(err); ok {
			switch gwErr.Kind {
			case application.GatewayKindDecline:
				return nil, application.NewGatewayDeclineError(gwErr)
			case application.GatewayKindInvalidRequest:
				return nil, application.NewValidationError(gwErr)
			}
		}
		return nil, application.NewGatewayUnavailableError(err)
	}

	s.storeToken(ctx, *token)
	return token, nil
}

func paymentResult(e *domain.Enrollment, charge *application.ChargeResult) *PaymentResult {
	return &PaymentResult{
		EnrollmentID:        e.ID,
		Status:              e.Status,
		TransactionID:       charge.TransactionID,
		AuthCode:            charge.AuthCode,
		NeedsReconciliation: e.NeedsReconciliation,
	}
}
