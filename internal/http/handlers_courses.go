package httpx

import (
	"net/http"

	"github.com/studyzone/studyzone-api/internal/domain/model"
	"github.com/studyzone/studyzone-api/internal/service"
)

// CourseHandlers provides HTTP handlers for the course catalogue.
type CourseHandlers struct {
	Svc *service.CourseService
}

// List returns courses with paging, search, and sorting.
// GET /api/courses.
func (h *CourseHandlers) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := pageParams(r)
	opts := model.CoursesListOptions{
		Limit:  limit,
		Offset: offset,
		Sort:   r.URL.Query().Get("sort"),
		Dir:    r.URL.Query().Get("dir"),
	}
	if q := r.URL.Query().Get("q"); q != "" {
		opts.Q = &q
	}

	courses, err := h.Svc.List(r.Context(), opts)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"courses": courses})
}

// GetBySlug returns one course by its URL slug.
// GET /api/courses/{slug}.
func (h *CourseHandlers) GetBySlug(w http.ResponseWriter, r *http.Request) {
	course, err := h.Svc.GetBySlug(r.Context(), r.PathValue("slug"))
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, course)
}

// Create creates a course owned by the calling admin.
// POST /api/courses.
func (h *CourseHandlers) Create(w http.ResponseWriter, r *http.Request) {
	session, ok := SessionFromContext(r.Context())
	if !ok {
		writeAuthRequired(w)
		return
	}

	var req model.CreateCourseRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "validation_failed", Err: err})
		return
	}

	course, err := h.Svc.Create(r.Context(), session.UserID, &req)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, course)
}

// Update applies partial updates to a course.
// PUT /api/courses/{id}.
func (h *CourseHandlers) Update(w http.ResponseWriter, r *http.Request) {
	var req model.UpdateCourseRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "validation_failed", Err: err})
		return
	}

	course, err := h.Svc.Update(r.Context(), r.PathValue("id"), req)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, course)
}

// Delete removes a course.
// DELETE /api/courses/{id}.
func (h *CourseHandlers) Delete(w http.ResponseWriter, r *http.Request) {
	deleted, err := h.Svc.Delete(r.Context(), r.PathValue("id"))
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
