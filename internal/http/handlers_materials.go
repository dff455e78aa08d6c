package httpx

import (
	"errors"
	"net/http"

	"github.com/studyzone/studyzone-api/internal/domain/model"
	"github.com/studyzone/studyzone-api/internal/service"
)

// maxUploadMemory bounds the multipart form parse buffer; larger files
// spill to disk.
const maxUploadMemory = 32 << 20

// MaterialHandlers provides HTTP handlers for course materials.
type MaterialHandlers struct {
	Svc *service.MaterialService
}

// ListForCourse returns a course's materials.
// GET /api/courses/{id}/materials.
func (h *MaterialHandlers) ListForCourse(w http.ResponseWriter, r *http.Request) {
	limit, offset := pageParams(r)
	materials, err := h.Svc.ListForCourse(r.Context(), r.PathValue("id"), limit, offset)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"materials": materials})
}

// Upload stores an uploaded file and creates the material row.
// POST /api/courses/{id}/materials (multipart form: file, title,
// description, type).
func (h *MaterialHandlers) Upload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "invalid_multipart", Err: err})
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		WriteError(w, ErrorParams{
			Code:    http.StatusBadRequest,
			ErrCode: "validation_failed",
			Err:     errors.New("file field is required"),
		})
		return
	}
	defer file.Close()

	materialType, ok := model.ParseMaterialType(r.FormValue("type"))
	if !ok {
		WriteError(w, ErrorParams{
			Code:    http.StatusBadRequest,
			ErrCode: "validation_failed",
			Err:     errors.New("unsupported material type"),
		})
		return
	}

	req := &model.CreateMaterialRequest{
		CourseID: r.PathValue("id"),
		Title:    r.FormValue("title"),
		Type:     materialType,
	}
	if desc := r.FormValue("description"); desc != "" {
		req.Description = &desc
	}

	contentType := header.Header.Get("Content-Type")
	material, err := h.Svc.Upload(r.Context(), req, header.Filename, contentType, header.Size, file)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, material)
}

// Update applies partial updates to material metadata.
// PUT /api/materials/{id}.
func (h *MaterialHandlers) Update(w http.ResponseWriter, r *http.Request) {
	var req model.UpdateMaterialRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "validation_failed", Err: err})
		return
	}

	material, err := h.Svc.Update(r.Context(), r.PathValue("id"), req)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, material)
}

// Delete removes a material and its stored object.
// DELETE /api/materials/{id}.
func (h *MaterialHandlers) Delete(w http.ResponseWriter, r *http.Request) {
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

// Download issues a short-lived download token for the caller and redirects
// through the redeem endpoint, which answers with the presigned object URL.
// GET /api/materials/{id}/download.
func (h *MaterialHandlers) Download(w http.ResponseWriter, r *http.Request) {
	session, ok := SessionFromContext(r.Context())
	if !ok {
		writeAuthRequired(w)
		return
	}

	token, err := h.Svc.IssueDownloadToken(r.Context(), session.UserID, r.PathValue("id"), session.IsAdmin())
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{
		"token":      token,
		"redeem_url": "/api/materials/download?token=" + token,
	})
}

// Redeem verifies a download token and redirects to the presigned URL.
// GET /api/materials/download?token=<token>.
func (h *MaterialHandlers) Redeem(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		WriteError(w, ErrorParams{
			Code:    http.StatusBadRequest,
			ErrCode: "validation_failed",
			Err:     errors.New("token is required"),
		})
		return
	}

	url, err := h.Svc.RedeemDownloadToken(r.Context(), token)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	http.Redirect(w, r, url, http.StatusFound)
}
