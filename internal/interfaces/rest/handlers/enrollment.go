package handlers

import (
	"net/http"

	"github.com/DanielPopoola/racing-academy-payments/internal/application"
	"github.com/DanielPopoola/racing-academy-payments/internal/application/services"
	"github.com/DanielPopoola/racing-academy-payments/internal/domain"
	"github.com/DanielPopoola/racing-academy-payments/internal/interfaces/rest"
	"github.com/oapi-codegen/runtime"
)

func (h *Handlers) CreateEnrollment(w http.ResponseWriter, r *http.Request) {
	var req rest.CreateEnrollmentRequest
	if err := h.decode(r, &req); err != nil {
		h.fail(w, err)
		return
	}

	enrollment, err := h.enrollmentService.Create(r.Context(), services.CreateEnrollmentCommand{
		CourseID:     req.CourseID,
		StudentID:    req.StudentID,
		ParentID:     req.ParentID,
		ContactEmail: req.ContactEmail,
	})
	if err != nil {
		h.fail(w, err)
		return
	}

	h.writeEnrollment(w, http.StatusCreated, enrollment)
}

func (h *Handlers) GetEnrollment(w http.ResponseWriter, r *http.Request) {
	enrollment, err := h.enrollmentService.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		h.fail(w, err)
		return
	}
	h.writeEnrollment(w, http.StatusOK, enrollment)
}

func (h *Handlers) ConfirmEnrollment(w http.ResponseWriter, r *http.Request) {
	enrollment, err := h.enrollmentService.Confirm(r.Context(), r.PathValue("id"))
	if err != nil {
		h.fail(w, err)
		return
	}
	h.writeEnrollment(w, http.StatusOK, enrollment)
}

func (h *Handlers) CancelEnrollment(w http.ResponseWriter, r *http.Request) {
	enrollment, err := h.enrollmentService.Cancel(r.Context(), r.PathValue("id"))
	if err != nil {
		h.fail(w, err)
		return
	}
	h.writeEnrollment(w, http.StatusOK, enrollment)
}

func (h *Handlers) ListReconciliation(w http.ResponseWriter, r *http.Request) {
	var limit *int
	if err := runtime.BindQueryParameter("form", true, false, "limit", r.URL.Query(), &limit); err != nil {
		h.fail(w, application.NewValidationError(err))
		return
	}

	n := 0
	if limit != nil {
		n = *limit
	}
	enrollments, err := h.enrollmentService.ListReconciliation(r.Context(), n)
	if err != nil {
		h.fail(w, err)
		return
	}

	rest.WriteJSON(w, http.StatusOK, rest.EnrollmentListResponse{
		Success: true,
		Data:    rest.ToAPIEnrollments(enrollments),
	})
}

func (h *Handlers) writeEnrollment(w http.ResponseWriter, status int, e *domain.Enrollment) {
	rest.WriteJSON(w, status, rest.EnrollmentResponse{
		Success: true,
		Data:    rest.ToAPIEnrollment(e),
	})
}
