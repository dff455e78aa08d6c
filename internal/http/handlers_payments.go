package httpx

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/studyzone/studyzone-api/internal/domain/model"
	"github.com/studyzone/studyzone-api/internal/service"
)

// PaymentHandlers provides HTTP handlers for payments and revenue.
type PaymentHandlers struct {
	Svc *service.PaymentService
}

type recordPaymentRequest struct {
	CourseID    string `json:"course_id"`
	AmountCents int64  `json:"amount_cents"`
	Currency    string `json:"currency"`
	Reference   string `json:"reference"`
}

// Record records a pending payment for the calling student.
// POST /api/payments.
func (h *PaymentHandlers) Record(w http.ResponseWriter, r *http.Request) {
	session, ok := SessionFromContext(r.Context())
	if !ok {
		writeAuthRequired(w)
		return
	}

	var req recordPaymentRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	create := &model.CreatePaymentRequest{
		StudentID:   session.UserID,
		CourseID:    req.CourseID,
		AmountCents: req.AmountCents,
		Currency:    req.Currency,
		Reference:   req.Reference,
	}
	if err := create.Validate(); err != nil {
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "validation_failed", Err: err})
		return
	}

	payment, err := h.Svc.Record(r.Context(), create)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, payment)
}

// ListMine returns the caller's payments.
// GET /api/payments.
func (h *PaymentHandlers) ListMine(w http.ResponseWriter, r *http.Request) {
	session, ok := SessionFromContext(r.Context())
	if !ok {
		writeAuthRequired(w)
		return
	}

	limit, offset := pageParams(r)
	payments, err := h.Svc.ListForStudent(r.Context(), session.UserID, limit, offset)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"payments": payments})
}

type settlePaymentRequest struct {
	Status string `json:"status"`
}

// Settle transitions a payment out of pending. Admin surface.
// PUT /api/payments/{id}/status.
func (h *PaymentHandlers) Settle(w http.ResponseWriter, r *http.Request) {
	var req settlePaymentRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	status, ok := model.ParsePaymentStatus(req.Status)
	if !ok {
		WriteError(w, ErrorParams{
			Code:    http.StatusBadRequest,
			ErrCode: "validation_failed",
			Err:     errors.New("unsupported payment status"),
		})
		return
	}

	payment, err := h.Svc.Settle(r.Context(), r.PathValue("id"), status)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, payment)
}

// RevenueSummary returns totals and the monthly series. Admin surface.
// GET /api/revenue/summary[?months=].
func (h *PaymentHandlers) RevenueSummary(w http.ResponseWriter, r *http.Request) {
	months := 0
	if v := r.URL.Query().Get("months"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 60 {
			months = n
		}
	}

	summary, err := h.Svc.RevenueSummary(r.Context(), months)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, summary)
}
