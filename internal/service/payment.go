package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/studyzone/studyzone-api/internal/domain/model"
)

// paymentStore is satisfied by *data.PaymentRepo.
type paymentStore interface {
	Create(ctx context.Context, req *model.CreatePaymentRequest) (*model.Payment, error)
	GetByID(ctx context.Context, id string) (*model.Payment, error)
	UpdateStatus(ctx context.Context, id string, status model.PaymentStatus) (*model.Payment, error)
	ListByStudent(ctx context.Context, studentID string, limit, offset int) ([]*model.Payment, error)
	RevenueSummary(ctx context.Context, months int) (*model.RevenueSummary, error)
}

// PaymentServiceOptions groups dependencies for PaymentService.
type PaymentServiceOptions struct {
	Payments paymentStore
}

// PaymentService records course payments and serves the admin revenue view.
type PaymentService struct {
	payments paymentStore
}

// NewPaymentService constructs a new PaymentService.
func NewPaymentService(opts PaymentServiceOptions) (*PaymentService, error) {
	if opts.Payments == nil {
		return nil, errors.New("payment store is required")
	}
	return &PaymentService{payments: opts.Payments}, nil
}

// Record creates a pending payment for a course.
func (s *PaymentService) Record(ctx context.Context, req *model.CreatePaymentRequest) (*model.Payment, error) {
	payment, err := s.payments.Create(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("record payment: %w", err)
	}
	return payment, nil
}

// Settle transitions a payment out of pending. Terminal states cannot move
// back to pending.
func (s *PaymentService) Settle(ctx context.Context, id string, status model.PaymentStatus) (*model.Payment, error) {
	if status == model.PaymentStatusPending {
		return nil, errors.New("cannot settle a payment back to pending")
	}
	return s.payments.UpdateStatus(ctx, id, status)
}

// GetByID returns a payment by id.
func (s *PaymentService) GetByID(ctx context.Context, id string) (*model.Payment, error) {
	return s.payments.GetByID(ctx, id)
}

// ListForStudent returns a student's payments, newest first.
func (s *PaymentService) ListForStudent(ctx context.Context, studentID string, limit, offset int) ([]*model.Payment, error) {
	return s.payments.ListByStudent(ctx, studentID, limit, offset)
}

// RevenueSummary returns totals and a monthly series over the trailing
// window. Admin surface.
func (s *PaymentService) RevenueSummary(ctx context.Context, months int) (*model.RevenueSummary, error) {
	if months <= 0 {
		months = 12
	}
	return s.payments.RevenueSummary(ctx, months)
}
