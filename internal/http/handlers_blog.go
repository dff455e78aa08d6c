package httpx

import (
	"net/http"

	"github.com/studyzone/studyzone-api/internal/domain/model"
	"github.com/studyzone/studyzone-api/internal/service"
)

// BlogHandlers provides HTTP handlers for the public blog and its admin CRUD.
type BlogHandlers struct {
	Svc *service.BlogService
}

// ListPublished returns published posts, optionally filtered by category.
// GET /api/blog[?category=].
func (h *BlogHandlers) ListPublished(w http.ResponseWriter, r *http.Request) {
	limit, offset := pageParams(r)

	var category *string
	if c := r.URL.Query().Get("category"); c != "" {
		category = &c
	}

	posts, err := h.Svc.ListPublished(r.Context(), category, limit, offset)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"posts": posts})
}

// GetBySlug returns one published post. Drafts read as 404 here.
// GET /api/blog/{slug}.
func (h *BlogHandlers) GetBySlug(w http.ResponseWriter, r *http.Request) {
	post, err := h.Svc.GetPublishedBySlug(r.Context(), r.PathValue("slug"))
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, post)
}

// ListAll returns all posts including drafts. Admin surface.
// GET /api/admin/blog.
func (h *BlogHandlers) ListAll(w http.ResponseWriter, r *http.Request) {
	limit, offset := pageParams(r)
	posts, err := h.Svc.ListAll(r.Context(), limit, offset)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"posts": posts})
}

// Create creates a post authored by the calling admin.
// POST /api/admin/blog.
func (h *BlogHandlers) Create(w http.ResponseWriter, r *http.Request) {
	session, ok := SessionFromContext(r.Context())
	if !ok {
		writeAuthRequired(w)
		return
	}

	var req model.CreateBlogPostRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "validation_failed", Err: err})
		return
	}

	post, err := h.Svc.Create(r.Context(), session.UserID, &req)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, post)
}

// Update applies partial updates, including publish/unpublish.
// PUT /api/admin/blog/{id}.
func (h *BlogHandlers) Update(w http.ResponseWriter, r *http.Request) {
	var req model.UpdateBlogPostRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "validation_failed", Err: err})
		return
	}

	post, err := h.Svc.Update(r.Context(), r.PathValue("id"), req)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, post)
}

// Delete removes a post.
// DELETE /api/admin/blog/{id}.
func (h *BlogHandlers) Delete(w http.ResponseWriter, r *http.Request) {
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
