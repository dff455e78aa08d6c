package httpx

import (
	"net/http"

	"github.com/studyzone/studyzone-api/internal/domain/model"
	"github.com/studyzone/studyzone-api/internal/service"
)

// AnnouncementHandlers provides HTTP handlers for announcements.
type AnnouncementHandlers struct {
	Svc *service.AnnouncementService
}

// List returns announcements, newest first. With course_id it returns the
// course's announcements plus global ones; without it, global only.
// GET /api/announcements[?course_id=].
func (h *AnnouncementHandlers) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := pageParams(r)

	var (
		announcements []*model.Announcement
		err           error
	)
	if courseID := r.URL.Query().Get("course_id"); courseID != "" {
		announcements, err = h.Svc.ListForCourse(r.Context(), courseID, limit, offset)
	} else {
		announcements, err = h.Svc.ListGlobal(r.Context(), limit, offset)
	}
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"announcements": announcements})
}

// Create publishes an announcement.
// POST /api/announcements.
func (h *AnnouncementHandlers) Create(w http.ResponseWriter, r *http.Request) {
	session, ok := SessionFromContext(r.Context())
	if !ok {
		writeAuthRequired(w)
		return
	}

	var req model.CreateAnnouncementRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "validation_failed", Err: err})
		return
	}

	announcement, err := h.Svc.Create(r.Context(), session.UserID, &req)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, announcement)
}

// Update edits an announcement's title or content.
// PUT /api/announcements/{id}.
func (h *AnnouncementHandlers) Update(w http.ResponseWriter, r *http.Request) {
	var req model.UpdateAnnouncementRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "validation_failed", Err: err})
		return
	}

	announcement, err := h.Svc.Update(r.Context(), r.PathValue("id"), req)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, announcement)
}

// Delete removes an announcement.
// DELETE /api/announcements/{id}.
func (h *AnnouncementHandlers) Delete(w http.ResponseWriter, r *http.Request) {
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
