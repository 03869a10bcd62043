package testhelpers

import (
	"context"
	"testing"
	"time"

	"github.com/DanielPopoola/racing-academy-payments/internal/application"
	"github.com/DanielPopoola/racing-academy-payments/internal/application/services"
	"github.com/DanielPopoola/racing-academy-payments/internal/config"
	"github.com/DanielPopoola/racing-academy-payments/internal/domain"
	"github.com/DanielPopoola/racing-academy-payments/internal/infrastructure/persistence/postgres"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// CoursePrice is $299.00.
var CoursePrice = domain.Money{Amount: 29900, Currency: "USD"}

// DefaultPaymentsConfig charges raw cards, auto-confirms and lets claims go
// stale after a minute.
func DefaultPaymentsConfig() config.PaymentsConfig {
	return config.PaymentsConfig{
		Currency:        "USD",
		AutoConfirm:     true,
		ClaimTTL:        time.Minute,
		FinalizeTimeout: 5 * time.Second,
	}
}

// CreateCourse stores a course priced at CoursePrice with the given number of seats.
func CreateCourse(t *testing.T, ctx context.Context, db *postgres.DB, seats int) *domain.Course {
	course, err := domain.NewCourse(
		"course-"+uuid.New().String(),
		"Advanced Racecraft",
		CoursePrice,
		seats,
		time.Now().UTC().Add(72*time.Hour),
	)
	require.NoError(t, err)
	require.NoError(t, postgres.NewCourseRepository(db).Create(ctx, course))
	return course
}

// CreatePendingEnrollment stores a pending enrollment for course.
func CreatePendingEnrollment(t *testing.T, ctx context.Context, db *postgres.DB, course *domain.Course) *domain.Enrollment {
	enrollment, err := domain.NewEnrollment(
		uuid.New().String(),
		course.ID,
		"student-"+uuid.New().String(),
		"parent-"+uuid.New().String(),
		"parent@example.com",
		course.Price,
	)
	require.NoError(t, err)
	require.NoError(t, postgres.NewEnrollmentRepository(db).Create(ctx, enrollment))
	return enrollment
}

// CreatePaidEnrollment drives a real charge through svc with an approved
// gateway response carrying transactionID.
func CreatePaidEnrollment(
	t *testing.T,
	ctx context.Context,
	db *postgres.DB,
	svc *services.PaymentService,
	course *domain.Course,
	transactionID string,
) *domain.Enrollment {
	enrollment := CreatePendingEnrollment(t, ctx, db, course)

	_, err := svc.ProcessPayment(ctx, DefaultProcessCommand(enrollment), "idem-"+uuid.New().String())
	require.NoError(t, err)

	saved, err := postgres.NewEnrollmentRepository(db).FindByID(ctx, enrollment.ID)
	require.NoError(t, err)
	require.Equal(t, transactionID, saved.TransactionIDValue())
	return saved
}

// DefaultProcessCommand returns a raw card charge for enrollment.
func DefaultProcessCommand(enrollment *domain.Enrollment) services.ProcessPaymentCommand {
	return services.ProcessPaymentCommand{
		EnrollmentID: enrollment.ID,
		CourseID:     enrollment.CourseID,
		Card:         DefaultCard(),
		Billing:      DefaultBilling(),
	}
}

func DefaultCard() domain.Card {
	return domain.Card{
		Number:      "4111111111111111",
		ExpiryMonth: 12,
		ExpiryYear:  2030,
		CVV:         "123",
	}
}

func DefaultBilling() domain.BillingAddress {
	return domain.BillingAddress{
		FirstName: "Ayrton",
		LastName:  "Parent",
		Address1:  "1 Pit Lane",
		City:      "Austin",
		State:     "TX",
		Zip:       "78701",
		Country:   "US",
	}
}

func ApprovedCharge(transactionID string) *application.ChargeResult {
	return &application.ChargeResult{
		TransactionID: transactionID,
		AuthCode:      "A1B2C3",
		ResponseCode:  "100",
		ResponseText:  "SUCCESS",
	}
}

// InvalidCardDecline is the processor's answer for a bad card number.
func InvalidCardDecline(transactionID string) *application.GatewayError {
	return &application.GatewayError{
		Kind:          application.GatewayKindDecline,
		Reason:        application.DeclineInvalidCardNumber,
		Description:   "Invalid card number",
		ResponseCode:  "200",
		ResponseText:  "Invalid card number",
		TransactionID: transactionID,
	}
}
