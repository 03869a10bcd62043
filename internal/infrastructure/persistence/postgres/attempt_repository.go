package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/DanielPopoola/racing-academy-payments/internal/domain"
	"github.com/jackc/pgx/v5"
)

var (
	ErrDuplicateAttemptKey = errors.New("attempt key already used")
	ErrAttemptNotFound     = errors.New("attempt not found")
)

// AttemptResult is what gets written when an attempt leaves in_flight.
type AttemptResult struct {
	Outcome       domain.AttemptOutcome
	TransactionID string
	AuthCode      string
	ErrorCode     string
	ErrorMessage  string
}

type AttemptRepository struct {
	q Executor
}

func NewAttemptRepository(db *DB) *AttemptRepository {
	return &AttemptRepository{q: db.Pool}
}

func (r *AttemptRepository) Create(ctx context.Context, a *domain.PaymentAttempt) error {
	query := `
		INSERT INTO payment_attempts (key, enrollment_id, kind, request_hash, outcome, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.q.Exec(ctx, query,
		a.Key, a.EnrollmentID, string(a.Kind), a.RequestHash, string(a.Outcome), a.CreatedAt,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return ErrDuplicateAttemptKey
		}
		return fmt.Errorf("failed to create attempt: %w", err)
	}
	return nil
}

func (r *AttemptRepository) FindByKey(ctx context.Context, key string) (*domain.PaymentAttempt, error) {
	query := `
		SELECT key, enrollment_id, kind, request_hash, outcome,
		       transaction_id, auth_code, error_code, error_message, created_at, completed_at
		FROM payment_attempts
		WHERE key = $1
	`
	var m AttemptModel
	err := r.q.QueryRow(ctx, query, key).Scan(
		&m.Key, &m.EnrollmentID, &m.Kind, &m.RequestHash, &m.Outcome,
		&m.TransactionID, &m.AuthCode, &m.ErrorCode, &m.ErrorMessage, &m.CreatedAt, &m.CompletedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAttemptNotFound
		}
		return nil, fmt.Errorf("failed to scan attempt: %w", err)
	}
	return toDomainAttempt(m), nil
}

// Complete records the final outcome of an in-flight attempt.
func (r *AttemptRepository) Complete(ctx context.Context, key string, res AttemptResult) error {
	query := `
		UPDATE payment_attempts
		SET outcome = $1, transaction_id = $2, auth_code = $3,
		    error_code = $4, error_message = $5, completed_at = $6
		WHERE key = $7 AND outcome = 'in_flight'
	`
	_, err := r.q.Exec(ctx, query,
		string(res.Outcome),
		nullable(res.TransactionID), nullable(res.AuthCode),
		nullable(res.ErrorCode), nullable(res.ErrorMessage),
		time.Now().UTC(), key,
	)
	if err != nil {
		return fmt.Errorf("failed to complete attempt: %w", err)
	}
	return nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
