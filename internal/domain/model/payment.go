package model

import (
	"errors"
	"strings"
	"time"
)

// PaymentStatus tracks the lifecycle of a course payment.
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusSucceeded PaymentStatus = "succeeded"
	PaymentStatusFailed    PaymentStatus = "failed"
	PaymentStatusRefunded  PaymentStatus = "refunded"
)

// Valid reports whether the payment status is supported.
func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentStatusPending, PaymentStatusSucceeded, PaymentStatusFailed, PaymentStatusRefunded:
		return true
	default:
		return false
	}
}

// ParsePaymentStatus normalizes a payment status string and reports whether it is supported.
func ParsePaymentStatus(value string) (PaymentStatus, bool) {
	s := PaymentStatus(strings.ToLower(strings.TrimSpace(value)))
	if s.Valid() {
		return s, true
	}
	return "", false
}

// Payment records a student's payment for a course.
// Amounts are stored in the currency's minor unit to avoid float drift.
type Payment struct {
	ID          string        `json:"id"           db:"id"`
	StudentID   string        `json:"student_id"   db:"student_id"`
	CourseID    string        `json:"course_id"    db:"course_id"`
	AmountCents int64         `json:"amount_cents" db:"amount_cents"`
	Currency    string        `json:"currency"     db:"currency"`
	Status      PaymentStatus `json:"status"       db:"status"`
	Reference   string        `json:"reference"    db:"reference"`
	CreatedAt   time.Time     `json:"created_at"   db:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"   db:"updated_at"`
}

// CreatePaymentRequest represents parameters to record a payment.
type CreatePaymentRequest struct {
	StudentID   string `json:"student_id"`
	CourseID    string `json:"course_id"`
	AmountCents int64  `json:"amount_cents"`
	Currency    string `json:"currency"`
	Reference   string `json:"reference"`
}

// Validate validates CreatePaymentRequest.
func (r *CreatePaymentRequest) Validate() error {
	if strings.TrimSpace(r.StudentID) == "" {
		return errors.New("student_id is required")
	}
	if strings.TrimSpace(r.CourseID) == "" {
		return errors.New("course_id is required")
	}
	if r.AmountCents <= 0 {
		return errors.New("amount_cents must be > 0")
	}
	cur := strings.ToUpper(strings.TrimSpace(r.Currency))
	if len(cur) != 3 {
		return errors.New("currency must be a 3-letter code")
	}
	r.Currency = cur
	if strings.TrimSpace(r.Reference) == "" {
		return errors.New("reference is required")
	}
	return nil
}

// MonthlyRevenue is one month's succeeded-payment total.
type MonthlyRevenue struct {
	Month      time.Time `json:"month"       db:"month"`
	TotalCents int64     `json:"total_cents" db:"total_cents"`
	Count      int64     `json:"count"       db:"count"`
}

// RevenueSummary aggregates succeeded payments for the admin dashboard.
type RevenueSummary struct {
	TotalCents   int64            `json:"total_cents"`
	PaymentCount int64            `json:"payment_count"`
	Currency     string           `json:"currency"`
	ByMonth      []MonthlyRevenue `json:"by_month"`
}
