package httpx

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"

	apperrors "github.com/studyzone/studyzone-api/internal/errors"
	"github.com/studyzone/studyzone-api/internal/adapters/storage"
	"github.com/studyzone/studyzone-api/internal/data"
	"github.com/studyzone/studyzone-api/internal/service"
)

// DecodeJSON decodes JSON from the request body into the destination and handles errors.
// Returns true if successful, false if there was an error (error response already written).
func DecodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "invalid_json", Err: err})
		return false
	}

	return true
}

// WriteJSON writes a JSON response with the given status code and data.
func WriteJSON(w http.ResponseWriter, code int, v any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if _, err := buf.WriteTo(w); err != nil {
		// Response writer errors (e.g., client disconnect) can't be recovered from here.
		return
	}
}

// ErrorParams groups parameters for WriteError.
type ErrorParams struct {
	Code    int
	ErrCode string
	Err     error
}

// WriteError writes a JSON error response using ErrorParams.
func WriteError(w http.ResponseWriter, p ErrorParams) {
	WriteJSON(w, p.Code, map[string]string{"error": p.ErrCode, "message": p.Err.Error()})
}

// WriteServiceError maps a service or repository error onto a status code
// and writes it. Unknown errors become an opaque 500 so internals never
// leak to clients.
func WriteServiceError(w http.ResponseWriter, err error) {
	code, errCode := classifyError(err)
	if code == http.StatusInternalServerError {
		WriteError(w, ErrorParams{
			Code:    code,
			ErrCode: errCode,
			Err:     errors.New("internal server error"),
		})
		return
	}
	WriteError(w, ErrorParams{Code: code, ErrCode: errCode, Err: err})
}

// classifyError translates the error taxonomy of the lower layers into
// HTTP status codes. Repository sentinels and AppError codes are both
// understood; everything else is a 500.
func classifyError(err error) (int, string) {
	switch {
	case errors.Is(err, service.ErrSessionExpired):
		return http.StatusUnauthorized, "session_expired"
	case errors.Is(err, service.ErrInvalidDownloadToken):
		return http.StatusUnauthorized, "invalid_download_token"
	case errors.Is(err, service.ErrChatRateLimited):
		return http.StatusTooManyRequests, "rate_limited"
	case errors.Is(err, service.ErrSSOUnavailable):
		return http.StatusServiceUnavailable, "sso_unavailable"
	case errors.Is(err, storage.ErrTooLarge):
		return http.StatusRequestEntityTooLarge, "file_too_large"
	}

	switch {
	case errors.Is(err, data.ErrUserNotFound),
		errors.Is(err, data.ErrProfileNotFound),
		errors.Is(err, data.ErrCourseNotFound),
		errors.Is(err, data.ErrEnrollmentNotFound),
		errors.Is(err, data.ErrMaterialNotFound),
		errors.Is(err, data.ErrAnnouncementNotFound),
		errors.Is(err, data.ErrBlogPostNotFound),
		errors.Is(err, data.ErrPaymentNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, data.ErrEmailExists),
		errors.Is(err, data.ErrCourseSlugExists),
		errors.Is(err, data.ErrAlreadyEnrolled),
		errors.Is(err, data.ErrBlogPostSlugExists),
		errors.Is(err, data.ErrPaymentReferenceExists):
		return http.StatusConflict, "conflict"
	}

	switch {
	case apperrors.IsValidation(err):
		return http.StatusBadRequest, "validation_failed"
	case apperrors.IsNotFound(err):
		return http.StatusNotFound, "not_found"
	case apperrors.IsConflict(err):
		return http.StatusConflict, "conflict"
	case apperrors.IsUnauthorized(err):
		return http.StatusUnauthorized, "unauthorized"
	case apperrors.IsForbidden(err):
		return http.StatusForbidden, "forbidden"
	case apperrors.IsRateLimited(err):
		return http.StatusTooManyRequests, "rate_limited"
	}

	return http.StatusInternalServerError, "internal_error"
}
