package model

import (
	"errors"
	"strings"
	"time"
)

// PointsEntry is one row in a student's points ledger.
// Balances are derived by summing deltas, never stored.
type PointsEntry struct {
	ID        string    `json:"id"         db:"id"`
	StudentID string    `json:"student_id" db:"student_id"`
	Delta     int       `json:"delta"      db:"delta"`
	Reason    string    `json:"reason"     db:"reason"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// PointsBalance is a student's current total.
type PointsBalance struct {
	StudentID string `json:"student_id" db:"student_id"`
	Total     int64  `json:"total"      db:"total"`
}

// AwardPointsRequest represents parameters to credit or debit points.
type AwardPointsRequest struct {
	StudentID string `json:"student_id"`
	Delta     int    `json:"delta"`
	Reason    string `json:"reason"`
}

// Validate validates AwardPointsRequest.
func (r *AwardPointsRequest) Validate() error {
	if strings.TrimSpace(r.StudentID) == "" {
		return errors.New("student_id is required")
	}
	if r.Delta == 0 {
		return errors.New("delta must be non-zero")
	}
	if strings.TrimSpace(r.Reason) == "" {
		return errors.New("reason is required")
	}
	return nil
}
