package postgres

import (
	"github.com/DanielPopoola/racing-academy-payments/internal/domain"
)

// toDomainEnrollment: maps db model to domain entity
func toDomainEnrollment(m EnrollmentModel) *domain.Enrollment {
	return &domain.Enrollment{
		ID:           m.ID,
		CourseID:     m.CourseID,
		StudentID:    m.StudentID,
		ParentID:     m.ParentID,
		ContactEmail: m.ContactEmail,
		Status:       domain.EnrollmentStatus(m.Status),
		Payment: domain.PaymentDetails{
			Amount:        domain.Money{Amount: m.AmountCents, Currency: m.Currency},
			PaymentState:  domain.PaymentState(m.PaymentStatus),
			TransactionID: m.TransactionID,
			AuthCode:      m.AuthCode,
			DeclineCode:   m.DeclineCode,
			DeclineReason: m.DeclineReason,
			RefundID:      m.RefundID,
		},
		SeatReserved:         m.SeatReserved,
		NeedsReconciliation:  m.NeedsReconciliation,
		ReconciliationReason: m.ReconciliationReason,
		InFlightAttempt:      m.InFlightAttempt,
		InFlightSince:        m.InFlightSince,
		ReminderSentAt:       m.ReminderSentAt,
		CreatedAt:            m.CreatedAt,
		UpdatedAt:            m.UpdatedAt,
	}
}

// toEnrollmentModel: maps domain entity to db model
func toEnrollmentModel(e *domain.Enrollment) EnrollmentModel {
	return EnrollmentModel{
		ID:                   e.ID,
		CourseID:             e.CourseID,
		StudentID:            e.StudentID,
		ParentID:             e.ParentID,
		ContactEmail:         e.ContactEmail,
		Status:               string(e.Status),
		AmountCents:          e.Payment.Amount.Amount,
		Currency:             e.Payment.Amount.Currency,
		PaymentStatus:        string(e.Payment.PaymentState),
		TransactionID:        e.Payment.TransactionID,
		AuthCode:             e.Payment.AuthCode,
		DeclineCode:          e.Payment.DeclineCode,
		DeclineReason:        e.Payment.DeclineReason,
		RefundID:             e.Payment.RefundID,
		SeatReserved:         e.SeatReserved,
		NeedsReconciliation:  e.NeedsReconciliation,
		ReconciliationReason: e.ReconciliationReason,
		InFlightAttempt:      e.InFlightAttempt,
		InFlightSince:        e.InFlightSince,
		ReminderSentAt:       e.ReminderSentAt,
		CreatedAt:            e.CreatedAt,
		UpdatedAt:            e.UpdatedAt,
	}
}

func toDomainCourse(m CourseModel) *domain.Course {
	return &domain.Course{
		ID:             m.ID,
		Title:          m.Title,
		Price:          domain.Money{Amount: m.PriceCents, Currency: m.Currency},
		AvailableSpots: m.AvailableSpots,
		MaxStudents:    m.MaxStudents,
		StartsAt:       m.StartsAt,
		CreatedAt:      m.CreatedAt,
	}
}

func toDomainAttempt(m AttemptModel) *domain.PaymentAttempt {
	return &domain.PaymentAttempt{
		Key:           m.Key,
		EnrollmentID:  m.EnrollmentID,
		Kind:          domain.AttemptKind(m.Kind),
		RequestHash:   m.RequestHash,
		Outcome:       domain.AttemptOutcome(m.Outcome),
		TransactionID: m.TransactionID,
		AuthCode:      m.AuthCode,
		ErrorCode:     m.ErrorCode,
		ErrorMessage:  m.ErrorMessage,
		CreatedAt:     m.CreatedAt,
		CompletedAt:   m.CompletedAt,
	}
}
