package httpx

import (
	"errors"
	"net/http"

	"github.com/studyzone/studyzone-api/internal/service"
)

var errNotFound = errors.New("resource not found")

// EnrollmentHandlers provides HTTP handlers for enrollments.
type EnrollmentHandlers struct {
	Svc *service.EnrollmentService
}

type enrollRequest struct {
	CourseID string `json:"course_id"`
}

// Enroll enrolls the calling student in a course.
// POST /api/enrollments.
func (h *EnrollmentHandlers) Enroll(w http.ResponseWriter, r *http.Request) {
	session, ok := SessionFromContext(r.Context())
	if !ok {
		writeAuthRequired(w)
		return
	}

	var req enrollRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	if req.CourseID == "" {
		WriteError(w, ErrorParams{
			Code:    http.StatusBadRequest,
			ErrCode: "validation_failed",
			Err:     errors.New("course_id is required"),
		})
		return
	}

	enrollment, err := h.Svc.Enroll(r.Context(), session.UserID, req.CourseID)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, enrollment)
}

// ListMine returns the caller's enrollments.
// GET /api/enrollments.
func (h *EnrollmentHandlers) ListMine(w http.ResponseWriter, r *http.Request) {
	session, ok := SessionFromContext(r.Context())
	if !ok {
		writeAuthRequired(w)
		return
	}

	limit, offset := pageParams(r)
	enrollments, err := h.Svc.ListForStudent(r.Context(), session.UserID, limit, offset)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"enrollments": enrollments})
}

// ListForCourse returns a course's enrollments. Admin surface.
// GET /api/courses/{id}/enrollments.
func (h *EnrollmentHandlers) ListForCourse(w http.ResponseWriter, r *http.Request) {
	limit, offset := pageParams(r)
	enrollments, err := h.Svc.ListForCourse(r.Context(), r.PathValue("id"), limit, offset)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"enrollments": enrollments})
}

// Unenroll removes the caller's own enrollment.
// DELETE /api/enrollments/{id}.
func (h *EnrollmentHandlers) Unenroll(w http.ResponseWriter, r *http.Request) {
	session, ok := SessionFromContext(r.Context())
	if !ok {
		writeAuthRequired(w)
		return
	}

	deleted, err := h.Svc.Unenroll(r.Context(), session.UserID, r.PathValue("id"))
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	if !deleted {
		WriteError(w, ErrorParams{Code: http.StatusNotFound, ErrCode: "not_found", Err: errNotFound})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
