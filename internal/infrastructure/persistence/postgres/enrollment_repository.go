package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/DanielPopoola/racing-academy-payments/internal/domain"
	"github.com/jackc/pgx/v5"
)

// ErrStaleWrite is returned when a conditional update matched no row because
// the enrollment moved on since it was read.
var ErrStaleWrite = errors.New("enrollment was modified concurrently")

const enrollmentColumns = `
	id, course_id, student_id, parent_id, contact_email, status,
	amount_cents, currency, payment_status, transaction_id, auth_code,
	decline_code, decline_reason, refund_id,
	seat_reserved, needs_reconciliation, reconciliation_reason,
	in_flight_attempt, in_flight_since, reminder_sent_at,
	created_at, updated_at`

type EnrollmentRepository struct {
	q Executor
}

func NewEnrollmentRepository(db *DB) *EnrollmentRepository {
	return &EnrollmentRepository{q: db.Pool}
}

func (r *EnrollmentRepository) Create(ctx context.Context, e *domain.Enrollment) error {
	query := `INSERT INTO enrollments (` + enrollmentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22)`

	m := toEnrollmentModel(e)
	_, err := r.q.Exec(ctx, query,
		m.ID, m.CourseID, m.StudentID, m.ParentID, m.ContactEmail, m.Status,
		m.AmountCents, m.Currency, m.PaymentStatus, m.TransactionID, m.AuthCode,
		m.DeclineCode, m.DeclineReason, m.RefundID,
		m.SeatReserved, m.NeedsReconciliation, m.ReconciliationReason,
		m.InFlightAttempt, m.InFlightSince, m.ReminderSentAt,
		m.CreatedAt, m.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create enrollment: %w", err)
	}
	return nil
}

func (r *EnrollmentRepository) FindByID(ctx context.Context, id string) (*domain.Enrollment, error) {
	query := `SELECT ` + enrollmentColumns + ` FROM enrollments WHERE id = $1`
	enrollment, err := scanEnrollment(r.q.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.NewEnrollmentNotFoundError(id)
	}
	return enrollment, err
}

// FindByTransactionID looks up the enrollment a charge was recorded on.
func (r *EnrollmentRepository) FindByTransactionID(ctx context.Context, transactionID string) (*domain.Enrollment, error) {
	query := `SELECT ` + enrollmentColumns + ` FROM enrollments
		WHERE transaction_id = $1 AND payment_status IN ('approved', 'refunded')`
	enrollment, err := scanEnrollment(r.q.QueryRow(ctx, query, transactionID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.NewEnrollmentNotFoundError("for transaction " + transactionID)
	}
	return enrollment, err
}

// Claim marks e as owned by its in-flight attempt. The write only lands when
// the stored status is still expected and no live attempt holds the row;
// claims started before staleBefore are considered abandoned.
func (r *EnrollmentRepository) Claim(ctx context.Context, e *domain.Enrollment, expected domain.EnrollmentStatus, staleBefore time.Time) error {
	query := `
		UPDATE enrollments
		SET status = $1, in_flight_attempt = $2, in_flight_since = $3, updated_at = $4
		WHERE id = $5
		  AND status = $6
		  AND (in_flight_attempt IS NULL OR in_flight_since < $7)
	`
	tag, err := r.q.Exec(ctx, query,
		string(e.Status), e.InFlightAttempt, e.InFlightSince, e.UpdatedAt,
		e.ID, string(expected), staleBefore,
	)
	if err != nil {
		return fmt.Errorf("failed to claim enrollment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrStaleWrite
	}
	return nil
}

// SaveOutcome persists the result of an attempt. It is conditioned on the
// status read before the gateway call and on the attempt still owning the row.
func (r *EnrollmentRepository) SaveOutcome(ctx context.Context, e *domain.Enrollment, expected domain.EnrollmentStatus, attemptKey string) error {
	return r.update(ctx, e, `AND status = $19 AND in_flight_attempt = $20`, string(expected), attemptKey)
}

// Save persists e when its stored status still equals expected and no
// attempt holds the row.
func (r *EnrollmentRepository) Save(ctx context.Context, e *domain.Enrollment, expected domain.EnrollmentStatus) error {
	return r.update(ctx, e, `AND status = $19 AND in_flight_attempt IS NULL`, string(expected))
}

func (r *EnrollmentRepository) update(ctx context.Context, e *domain.Enrollment, guard string, guardArgs ...any) error {
	query := `
		UPDATE enrollments
		SET status = $1,
			payment_status = $2, transaction_id = $3, auth_code = $4,
			decline_code = $5, decline_reason = $6, refund_id = $7,
			seat_reserved = $8, needs_reconciliation = $9, reconciliation_reason = $10,
			in_flight_attempt = $11, in_flight_since = $12, reminder_sent_at = $13,
			updated_at = $14, amount_cents = $15, currency = $16, contact_email = $17
		WHERE id = $18 ` + guard

	m := toEnrollmentModel(e)
	args := []any{
		m.Status,
		m.PaymentStatus, m.TransactionID, m.AuthCode,
		m.DeclineCode, m.DeclineReason, m.RefundID,
		m.SeatReserved, m.NeedsReconciliation, m.ReconciliationReason,
		m.InFlightAttempt, m.InFlightSince, m.ReminderSentAt,
		m.UpdatedAt, m.AmountCents, m.Currency, m.ContactEmail,
		m.ID,
	}
	args = append(args, guardArgs...)

	tag, err := r.q.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update enrollment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrStaleWrite
	}
	return nil
}

// ReleaseClaim clears the in-flight marker if attemptKey still holds it.
func (r *EnrollmentRepository) ReleaseClaim(ctx context.Context, id, attemptKey string) error {
	query := `
		UPDATE enrollments
		SET in_flight_attempt = NULL, in_flight_since = NULL, updated_at = $1
		WHERE id = $2 AND in_flight_attempt = $3
	`
	_, err := r.q.Exec(ctx, query, time.Now().UTC(), id, attemptKey)
	if err != nil {
		return fmt.Errorf("failed to release claim: %w", err)
	}
	return nil
}

// ListNeedingReconciliation returns paid enrollments that hold money but no seat.
func (r *EnrollmentRepository) ListNeedingReconciliation(ctx context.Context, limit int) ([]*domain.Enrollment, error) {
	query := `SELECT ` + enrollmentColumns + ` FROM enrollments
		WHERE needs_reconciliation = TRUE
		ORDER BY updated_at ASC
		LIMIT $1`

	rows, err := r.q.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query reconciliation enrollments: %w", err)
	}

	results, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*domain.Enrollment, error) {
		return scanEnrollment(row)
	})
	if err != nil {
		return nil, fmt.Errorf("scan reconciliation enrollments: %w", err)
	}
	return results, nil
}

// ListReminderTargets finds confirmed enrollments whose course starts in
// [from, to) and that have not been reminded yet.
func (r *EnrollmentRepository) ListReminderTargets(ctx context.Context, from, to time.Time, limit int) ([]domain.ReminderTarget, error) {
	query := `
		SELECT e.id, e.contact_email, e.student_id, c.title, c.starts_at
		FROM enrollments e
		JOIN courses c ON c.id = e.course_id
		WHERE e.status = 'confirmed'
		  AND e.reminder_sent_at IS NULL
		  AND c.starts_at >= $1 AND c.starts_at < $2
		ORDER BY c.starts_at ASC
		LIMIT $3
	`

	rows, err := r.q.Query(ctx, query, from, to, limit)
	if err != nil {
		return nil, fmt.Errorf("query reminder targets: %w", err)
	}

	results, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.ReminderTarget, error) {
		var t domain.ReminderTarget
		err := row.Scan(&t.EnrollmentID, &t.ContactEmail, &t.StudentID, &t.CourseTitle, &t.StartsAt)
		return t, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan reminder targets: %w", err)
	}
	return results, nil
}

func (r *EnrollmentRepository) MarkReminderSent(ctx context.Context, id string, at time.Time) error {
	query := `UPDATE enrollments SET reminder_sent_at = $1 WHERE id = $2 AND reminder_sent_at IS NULL`
	_, err := r.q.Exec(ctx, query, at, id)
	if err != nil {
		return fmt.Errorf("failed to mark reminder sent: %w", err)
	}
	return nil
}

// scanEnrollment converts a database row into a domain Enrollment.
func scanEnrollment(row pgx.Row) (*domain.Enrollment, error) {
	var m EnrollmentModel
	err := row.Scan(
		&m.ID, &m.CourseID, &m.StudentID, &m.ParentID, &m.ContactEmail, &m.Status,
		&m.AmountCents, &m.Currency, &m.PaymentStatus, &m.TransactionID, &m.AuthCode,
		&m.DeclineCode, &m.DeclineReason, &m.RefundID,
		&m.SeatReserved, &m.NeedsReconciliation, &m.ReconciliationReason,
		&m.InFlightAttempt, &m.InFlightSince, &m.ReminderSentAt,
		&m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan enrollment: %w", err)
	}
	return toDomainEnrollment(m), nil
}
