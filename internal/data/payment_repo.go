package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/studyzone/studyzone-api/internal/data/pgxutil"
	"github.com/studyzone/studyzone-api/internal/domain/model"
)

// PaymentRepo provides database operations for course payments.
type PaymentRepo struct {
	DB           *sql.DB
	timeProvider TimeProvider
}

// NewPaymentRepo creates a new PaymentRepo with real time provider.
func NewPaymentRepo(db *sql.DB) *PaymentRepo {
	return &PaymentRepo{DB: db, timeProvider: &RealTimeProvider{}}
}

// NewPaymentRepoWithTimeProvider creates a new PaymentRepo with a custom time provider (useful for tests).
func NewPaymentRepoWithTimeProvider(db *sql.DB, tp TimeProvider) *PaymentRepo {
	return &PaymentRepo{DB: db, timeProvider: tp}
}

const paymentColumns = `id, student_id, course_id, amount_cents, currency, status, reference, created_at, updated_at`

// Create records a new pending payment.
func (r *PaymentRepo) Create(
	ctx context.Context,
	req *model.CreatePaymentRequest,
) (*model.Payment, error) {
	if req == nil {
		return nil, errors.New("create payment request is required")
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	now := r.timeProvider.Now().UTC()
	var out model.Payment
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `
			INSERT INTO payments (student_id, course_id, amount_cents, currency, status, reference, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $7)
			RETURNING `+paymentColumns,
			req.StudentID,
			req.CourseID,
			req.AmountCents,
			req.Currency,
			model.PaymentStatusPending,
			req.Reference,
			now,
		)
		if err != nil {
			return err
		}
		defer rows.Close()
		out, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Payment])
		return err
	}); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case pgerrcode.UniqueViolation:
				return nil, ErrPaymentReferenceExists
			case pgerrcode.ForeignKeyViolation:
				return nil, ErrCourseNotFound
			}
		}
		return nil, fmt.Errorf("failed to create payment: %w", err)
	}
	return &out, nil
}

// GetByID retrieves a payment by ID.
func (r *PaymentRepo) GetByID(ctx context.Context, id string) (*model.Payment, error) {
	var out model.Payment
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx,
			`SELECT `+paymentColumns+` FROM payments WHERE id = $1`, id)
		if err != nil {
			return err
		}
		defer rows.Close()
		out, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Payment])
		return err
	}); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPaymentNotFound
		}
		return nil, fmt.Errorf("failed to get payment: %w", err)
	}
	return &out, nil
}

// UpdateStatus transitions a payment to the given status.
func (r *PaymentRepo) UpdateStatus(
	ctx context.Context,
	id string,
	status model.PaymentStatus,
) (*model.Payment, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("unknown payment status %q", status)
	}

	var out model.Payment
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `
			UPDATE payments SET status = $1, updated_at = $2
			WHERE id = $3
			RETURNING `+paymentColumns,
			status, r.timeProvider.Now().UTC(), id,
		)
		if err != nil {
			return err
		}
		defer rows.Close()
		out, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Payment])
		return err
	}); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPaymentNotFound
		}
		return nil, fmt.Errorf("failed to update payment status: %w", err)
	}
	return &out, nil
}

// ListByStudent retrieves a student's payments, newest first.
func (r *PaymentRepo) ListByStudent(
	ctx context.Context,
	studentID string,
	limit, offset int,
) ([]*model.Payment, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	var rowsOut []model.Payment
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `
			SELECT `+paymentColumns+`
			FROM payments
			WHERE student_id = $1
			ORDER BY created_at DESC
			LIMIT $2 OFFSET $3`,
			studentID, limit, offset,
		)
		if err != nil {
			return err
		}
		defer rows.Close()
		rowsOut, err = pgx.CollectRows(rows, pgx.RowToStructByName[model.Payment])
		return err
	}); err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}

	res := make([]*model.Payment, len(rowsOut))
	for i := range rowsOut {
		res[i] = &rowsOut[i]
	}
	return res, nil
}

// RevenueSummary aggregates succeeded payments, optionally bucketed by month.
func (r *PaymentRepo) RevenueSummary(ctx context.Context, months int) (*model.RevenueSummary, error) {
	if months <= 0 {
		months = 12
	}

	summary := &model.RevenueSummary{}
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		if err := conn.QueryRow(ctx, `
			SELECT COALESCE(SUM(amount_cents), 0), COUNT(*), COALESCE(MIN(currency), '')
			FROM payments WHERE status = $1`,
			model.PaymentStatusSucceeded,
		).Scan(&summary.TotalCents, &summary.PaymentCount, &summary.Currency); err != nil {
			return err
		}

		rows, err := conn.Query(ctx, `
			SELECT date_trunc('month', created_at) AS month,
			       SUM(amount_cents) AS total_cents,
			       COUNT(*) AS count
			FROM payments
			WHERE status = $1 AND created_at >= date_trunc('month', now()) - ($2 || ' months')::interval
			GROUP BY 1
			ORDER BY 1 DESC`,
			model.PaymentStatusSucceeded, months,
		)
		if err != nil {
			return err
		}
		defer rows.Close()
		summary.ByMonth, err = pgx.CollectRows(rows, pgx.RowToStructByName[model.MonthlyRevenue])
		return err
	}); err != nil {
		return nil, fmt.Errorf("failed to compute revenue summary: %w", err)
	}
	return summary, nil
}
