package httpx

import (
	"net/http"

	"github.com/studyzone/studyzone-api/internal/domain/model"
	"github.com/studyzone/studyzone-api/internal/service"
)

// ChatHandlers provides HTTP handlers for the AI study helper.
type ChatHandlers struct {
	Svc *service.ChatService
}

// Chat sends the caller's prompt to the study helper and returns the reply.
// POST /api/ai/chat.
func (h *ChatHandlers) Chat(w http.ResponseWriter, r *http.Request) {
	session, ok := SessionFromContext(r.Context())
	if !ok {
		writeAuthRequired(w)
		return
	}

	var req model.ChatRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "validation_failed", Err: err})
		return
	}

	reply, err := h.Svc.Chat(r.Context(), session.UserID, req)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, reply)
}

// History returns the caller's conversation, newest first.
// GET /api/ai/history.
func (h *ChatHandlers) History(w http.ResponseWriter, r *http.Request) {
	session, ok := SessionFromContext(r.Context())
	if !ok {
		writeAuthRequired(w)
		return
	}

	limit, offset := pageParams(r)
	messages, err := h.Svc.History(r.Context(), session.UserID, model.ChatHistoryOptions{
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"messages": messages})
}
