package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/DanielPopoola/racing-academy-payments/internal/application"
	"github.com/DanielPopoola/racing-academy-payments/internal/application/services"
	"github.com/DanielPopoola/racing-academy-payments/internal/application/services/testhelpers"
	"github.com/DanielPopoola/racing-academy-payments/internal/domain"
	"github.com/DanielPopoola/racing-academy-payments/internal/infrastructure/persistence/postgres"
	"github.com/DanielPopoola/racing-academy-payments/internal/mocks"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type EnrollmentServiceTestSuite struct {
	suite.Suite
	testDB         *testhelpers.TestDatabase
	enrollmentRepo *postgres.EnrollmentRepository
	courseRepo     *postgres.CourseRepository
	mockGateway    *mocks.MockGatewayClient
	notifier       *testhelpers.RecordingNotifier
	paymentService *services.PaymentService
	service        *services.EnrollmentService
}

func TestEnrollmentServiceSuite(t *testing.T) {
	suite.Run(t, new(EnrollmentServiceTestSuite))
}

func (suite *EnrollmentServiceTestSuite) SetupSuite() {
	suite.testDB = testhelpers.SetupTestDatabase(suite.T())
	suite.enrollmentRepo = postgres.NewEnrollmentRepository(suite.testDB.DB)
	suite.courseRepo = postgres.NewCourseRepository(suite.testDB.DB)
}

func (suite *EnrollmentServiceTestSuite) TearDownSuite() {
	suite.testDB.Cleanup(suite.T())
}

func (suite *EnrollmentServiceTestSuite) SetupTest() {
	suite.testDB.CleanTables(suite.T())
	suite.mockGateway = mocks.NewMockGatewayClient(suite.T())
	suite.notifier = &testhelpers.RecordingNotifier{}

	cfg := testhelpers.DefaultPaymentsConfig()
	cfg.AutoConfirm = false
	logger := testhelpers.TestLogger()

	suite.paymentService = services.NewPaymentService(
		suite.testDB.DB,
		suite.mockGateway,
		testhelpers.NewMemoryVault(),
		&testhelpers.RecordingNotifier{},
		application.NopRecorder,
		cfg,
		logger,
	)
	suite.service = services.NewEnrollmentService(
		suite.testDB.DB,
		suite.notifier,
		application.NopRecorder,
		cfg,
		logger,
	)
}

func (suite *EnrollmentServiceTestSuite) paidEnrollment(course *domain.Course, transactionID string) *domain.Enrollment {
	suite.mockGateway.EXPECT().
		Charge(mock.Anything, mock.Anything).
		Return(testhelpers.ApprovedCharge(transactionID), nil).
		Once()
	return testhelpers.CreatePaidEnrollment(suite.T(), context.Background(), suite.testDB.DB, suite.paymentService, course, transactionID)
}

func (suite *EnrollmentServiceTestSuite) seats(courseID string) int {
	course, err := suite.courseRepo.FindByID(context.Background(), courseID)
	suite.Require().NoError(err)
	return course.AvailableSpots
}

func (suite *EnrollmentServiceTestSuite) Test_Create_PendingAtCoursePrice() {
	ctx := context.Background()
	t := suite.T()
	course := testhelpers.CreateCourse(t, ctx, suite.testDB.DB, 5)

	enrollment, err := suite.service.Create(ctx, services.CreateEnrollmentCommand{
		CourseID:     course.ID,
		StudentID:    "student-1",
		ParentID:     "parent-1",
		ContactEmail: "parent@example.com",
	})

	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, enrollment.Status)
	assert.Equal(t, "299.00", enrollment.Payment.Amount.String())
	assert.Equal(t, 5, suite.seats(course.ID))

	saved, err := suite.service.Get(ctx, enrollment.ID)
	require.NoError(t, err)
	assert.Equal(t, course.ID, saved.CourseID)
}

func (suite *EnrollmentServiceTestSuite) Test_Create_UnknownCourse_NotFound() {
	_, err := suite.service.Create(context.Background(), services.CreateEnrollmentCommand{
		CourseID:     "course-missing",
		StudentID:    "student-1",
		ParentID:     "parent-1",
		ContactEmail: "parent@example.com",
	})

	require.Error(suite.T(), err)
	assert.Equal(suite.T(), application.ErrCodeNotFound, application.ToErrorCode(err))
}

func (suite *EnrollmentServiceTestSuite) Test_Get_Unknown_NotFound() {
	_, err := suite.service.Get(context.Background(), uuid.New().String())

	require.Error(suite.T(), err)
	assert.Equal(suite.T(), application.ErrCodeNotFound, application.ToErrorCode(err))
}

func (suite *EnrollmentServiceTestSuite) Test_Confirm_PaidThenNoOp() {
	ctx := context.Background()
	t := suite.T()
	course := testhelpers.CreateCourse(t, ctx, suite.testDB.DB, 5)
	paid := suite.paidEnrollment(course, "T100")
	require.Equal(t, domain.StatusPaid, paid.Status)

	confirmed, err := suite.service.Confirm(ctx, paid.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusConfirmed, confirmed.Status)

	again, err := suite.service.Confirm(ctx, paid.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusConfirmed, again.Status)

	assert.Equal(t, []domain.EnrollmentStatus{domain.StatusConfirmed}, suite.notifier.Targets())
}

func (suite *EnrollmentServiceTestSuite) Test_Confirm_Pending_InvalidTransition() {
	ctx := context.Background()
	t := suite.T()
	course := testhelpers.CreateCourse(t, ctx, suite.testDB.DB, 5)
	pending := testhelpers.CreatePendingEnrollment(t, ctx, suite.testDB.DB, course)

	_, err := suite.service.Confirm(ctx, pending.ID)

	require.Error(t, err)
	assert.Equal(t, application.ErrCodeInvalidTransition, application.ToErrorCode(err))

	saved, err := suite.enrollmentRepo.FindByID(ctx, pending.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, saved.Status)
}

func (suite *EnrollmentServiceTestSuite) Test_Cancel_Confirmed_ReleasesSeat() {
	ctx := context.Background()
	t := suite.T()
	course := testhelpers.CreateCourse(t, ctx, suite.testDB.DB, 5)
	paid := suite.paidEnrollment(course, "T101")
	_, err := suite.service.Confirm(ctx, paid.ID)
	require.NoError(t, err)
	require.Equal(t, 4, suite.seats(course.ID))

	cancelled, err := suite.service.Cancel(ctx, paid.ID)

	require.NoError(t, err)
	assert.Equal(t, domain.StatusCancelled, cancelled.Status)
	assert.False(t, cancelled.SeatReserved)
	assert.Equal(t, 5, suite.seats(course.ID))

	_, err = suite.service.Cancel(ctx, paid.ID)
	require.Error(t, err)
	assert.Equal(t, application.ErrCodeInvalidTransition, application.ToErrorCode(err))
	assert.Equal(t, 5, suite.seats(course.ID))
}

func (suite *EnrollmentServiceTestSuite) Test_Cancel_Paid_InvalidTransition() {
	ctx := context.Background()
	t := suite.T()
	course := testhelpers.CreateCourse(t, ctx, suite.testDB.DB, 5)
	paid := suite.paidEnrollment(course, "T102")

	_, err := suite.service.Cancel(ctx, paid.ID)

	require.Error(t, err)
	assert.Equal(t, application.ErrCodeInvalidTransition, application.ToErrorCode(err))
}

func (suite *EnrollmentServiceTestSuite) Test_ReconcileSeat_TakesFreedSeat() {
	ctx := context.Background()
	t := suite.T()
	course := testhelpers.CreateCourse(t, ctx, suite.testDB.DB, 1)
	enrollment := testhelpers.CreatePendingEnrollment(t, ctx, suite.testDB.DB, course)

	suite.mockGateway.EXPECT().
		Charge(mock.Anything, mock.Anything).
		RunAndReturn(func(ctx context.Context, _ application.ChargeRequest) (*application.ChargeResult, error) {
			_, err := suite.testDB.DB.Pool.Exec(ctx, "UPDATE courses SET available_spots = 0 WHERE id = $1", course.ID)
			require.NoError(t, err)
			return testhelpers.ApprovedCharge("T103"), nil
		}).
		Once()

	_, err := suite.paymentService.ProcessPayment(ctx, testhelpers.DefaultProcessCommand(enrollment), "idem-"+uuid.New().String())
	require.NoError(t, err)

	flagged, err := suite.service.ListReconciliation(ctx, 10)
	require.NoError(t, err)
	require.Len(t, flagged, 1)

	resolved, err := suite.service.ReconcileSeat(ctx, flagged[0])
	require.NoError(t, err)
	assert.False(t, resolved)

	_, err = suite.testDB.DB.Pool.Exec(ctx, "UPDATE courses SET available_spots = 1 WHERE id = $1", course.ID)
	require.NoError(t, err)

	flagged, err = suite.service.ListReconciliation(ctx, 10)
	require.NoError(t, err)
	require.Len(t, flagged, 1)

	resolved, err = suite.service.ReconcileSeat(ctx, flagged[0])
	require.NoError(t, err)
	assert.True(t, resolved)

	saved, err := suite.enrollmentRepo.FindByID(ctx, enrollment.ID)
	require.NoError(t, err)
	assert.True(t, saved.SeatReserved)
	assert.False(t, saved.NeedsReconciliation)
	assert.Equal(t, domain.StatusPaid, saved.Status)
	assert.Equal(t, 0, suite.seats(course.ID))

	flagged, err = suite.service.ListReconciliation(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, flagged)
}

func (suite *EnrollmentServiceTestSuite) Test_ReconcileSeat_ReleasesSeatOfRefundedEnrollment() {
	ctx := context.Background()
	t := suite.T()
	course := testhelpers.CreateCourse(t, ctx, suite.testDB.DB, 5)
	paid := suite.paidEnrollment(course, "T104")

	_, err := suite.testDB.DB.Pool.Exec(ctx, `
		UPDATE enrollments
		SET status = 'refunded', payment_status = 'refunded',
		    needs_reconciliation = TRUE, reconciliation_reason = 'refund recorded but seat release failed'
		WHERE id = $1`, paid.ID)
	require.NoError(t, err)

	flagged, err := suite.service.ListReconciliation(ctx, 10)
	require.NoError(t, err)
	require.Len(t, flagged, 1)
	require.True(t, flagged[0].SeatReserved)

	resolved, err := suite.service.ReconcileSeat(ctx, flagged[0])
	require.NoError(t, err)
	assert.True(t, resolved)
	assert.Equal(t, 5, suite.seats(course.ID))

	saved, err := suite.enrollmentRepo.FindByID(ctx, paid.ID)
	require.NoError(t, err)
	assert.False(t, saved.SeatReserved)
	assert.False(t, saved.NeedsReconciliation)
}

func (suite *EnrollmentServiceTestSuite) Test_SendReminders_OncePerEnrollment() {
	ctx := context.Background()
	t := suite.T()
	course := testhelpers.CreateCourse(t, ctx, suite.testDB.DB, 5)
	paid := suite.paidEnrollment(course, "T105")
	_, err := suite.service.Confirm(ctx, paid.ID)
	require.NoError(t, err)

	later := testhelpers.CreateCourse(t, ctx, suite.testDB.DB, 5)
	_, err = suite.testDB.DB.Pool.Exec(ctx, "UPDATE courses SET starts_at = $1 WHERE id = $2", time.Now().Add(30*24*time.Hour), later.ID)
	require.NoError(t, err)
	farOff := suite.paidEnrollment(later, "T106")
	_, err = suite.service.Confirm(ctx, farOff.ID)
	require.NoError(t, err)

	sent, err := suite.service.SendReminders(ctx, 96*time.Hour, 50)
	require.NoError(t, err)
	assert.Equal(t, 1, sent)

	reminders := suite.notifier.Reminders()
	require.Len(t, reminders, 1)
	assert.Equal(t, paid.ID, reminders[0].EnrollmentID)
	assert.Equal(t, "Advanced Racecraft", reminders[0].CourseTitle)

	sent, err = suite.service.SendReminders(ctx, 96*time.Hour, 50)
	require.NoError(t, err)
	assert.Equal(t, 0, sent)
}
