package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/DanielPopoola/racing-academy-payments/internal/domain"
	"github.com/jackc/pgx/v5"
)

type CourseRepository struct {
	q Executor
}

func NewCourseRepository(db *DB) *CourseRepository {
	return &CourseRepository{q: db.Pool}
}

func (r *CourseRepository) Create(ctx context.Context, c *domain.Course) error {
	query := `
		INSERT INTO courses (id, title, price_cents, currency, available_spots, max_students, starts_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.q.Exec(ctx, query,
		c.ID, c.Title, c.Price.Amount, c.Price.Currency,
		c.AvailableSpots, c.MaxStudents, c.StartsAt, c.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create course: %w", err)
	}
	return nil
}

func (r *CourseRepository) FindByID(ctx context.Context, id string) (*domain.Course, error) {
	query := `
		SELECT id, title, price_cents, currency, available_spots, max_students, starts_at, created_at
		FROM courses WHERE id = $1
	`
	var m CourseModel
	err := r.q.QueryRow(ctx, query, id).Scan(
		&m.ID, &m.Title, &m.PriceCents, &m.Currency,
		&m.AvailableSpots, &m.MaxStudents, &m.StartsAt, &m.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NewCourseNotFoundError(id)
		}
		return nil, fmt.Errorf("failed to scan course: %w", err)
	}
	return toDomainCourse(m), nil
}

// ReserveSeat takes one seat in a single conditional statement. It reports
// false when the course was already full.
func (r *CourseRepository) ReserveSeat(ctx context.Context, courseID string) (bool, error) {
	query := `
		UPDATE courses
		SET available_spots = available_spots - 1
		WHERE id = $1 AND available_spots > 0
	`
	tag, err := r.q.Exec(ctx, query, courseID)
	if err != nil {
		return false, fmt.Errorf("failed to reserve seat: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// ReleaseSeat hands one seat back, never above the course capacity.
func (r *CourseRepository) ReleaseSeat(ctx context.Context, courseID string) error {
	query := `
		UPDATE courses
		SET available_spots = available_spots + 1
		WHERE id = $1 AND available_spots < max_students
	`
	tag, err := r.q.Exec(ctx, query, courseID)
	if err != nil {
		return fmt.Errorf("failed to release seat: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("course %s already at capacity", courseID)
	}
	return nil
}
