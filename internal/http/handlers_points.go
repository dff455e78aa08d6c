package httpx

import (
	"net/http"
	"strconv"

	"github.com/studyzone/studyzone-api/internal/service"
)

// PointsHandlers provides HTTP handlers for engagement points.
type PointsHandlers struct {
	Svc *service.PointsService
}

// Mine returns the caller's balance and recent ledger entries.
// GET /api/points.
func (h *PointsHandlers) Mine(w http.ResponseWriter, r *http.Request) {
	session, ok := SessionFromContext(r.Context())
	if !ok {
		writeAuthRequired(w)
		return
	}

	balance, err := h.Svc.Balance(r.Context(), session.UserID)
	if err != nil {
		WriteServiceError(w, err)
		return
	}

	limit, offset := pageParams(r)
	history, err := h.Svc.History(r.Context(), session.UserID, limit, offset)
	if err != nil {
		WriteServiceError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{
		"balance": balance,
		"history": history,
	})
}

// Leaderboard returns the top balances. Admin surface.
// GET /api/points/leaderboard[?limit=].
func (h *PointsHandlers) Leaderboard(w http.ResponseWriter, r *http.Request) {
	limit := 10
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 100 {
			limit = n
		}
	}

	leaders, err := h.Svc.Leaderboard(r.Context(), limit)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"leaderboard": leaders})
}
