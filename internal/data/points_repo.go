package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/studyzone/studyzone-api/internal/data/pgxutil"
	"github.com/studyzone/studyzone-api/internal/domain/model"
)

// PointsRepo provides database operations for the student points ledger.
type PointsRepo struct {
	DB           *sql.DB
	timeProvider TimeProvider
}

// NewPointsRepo creates a new PointsRepo with real time provider.
func NewPointsRepo(db *sql.DB) *PointsRepo {
	return &PointsRepo{DB: db, timeProvider: &RealTimeProvider{}}
}

// NewPointsRepoWithTimeProvider creates a new PointsRepo with a custom time provider (useful for tests).
func NewPointsRepoWithTimeProvider(db *sql.DB, tp TimeProvider) *PointsRepo {
	return &PointsRepo{DB: db, timeProvider: tp}
}

// Award appends a ledger entry for a student.
func (r *PointsRepo) Award(
	ctx context.Context,
	req *model.AwardPointsRequest,
) (*model.PointsEntry, error) {
	if req == nil {
		return nil, errors.New("award points request is required")
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var out model.PointsEntry
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `
			INSERT INTO points_ledger (student_id, delta, reason, created_at)
			VALUES ($1, $2, $3, $4)
			RETURNING id, student_id, delta, reason, created_at`,
			req.StudentID, req.Delta, req.Reason, r.timeProvider.Now().UTC(),
		)
		if err != nil {
			return err
		}
		defer rows.Close()
		out, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.PointsEntry])
		return err
	}); err != nil {
		return nil, fmt.Errorf("failed to award points: %w", err)
	}
	return &out, nil
}

// Balance sums a student's ledger entries.
func (r *PointsRepo) Balance(ctx context.Context, studentID string) (*model.PointsBalance, error) {
	var total int64
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		return conn.QueryRow(ctx,
			`SELECT COALESCE(SUM(delta), 0) FROM points_ledger WHERE student_id = $1`,
			studentID,
		).Scan(&total)
	}); err != nil {
		return nil, fmt.Errorf("failed to compute points balance: %w", err)
	}
	return &model.PointsBalance{StudentID: studentID, Total: total}, nil
}

// History lists a student's ledger entries, newest first.
func (r *PointsRepo) History(
	ctx context.Context,
	studentID string,
	limit, offset int,
) ([]*model.PointsEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	var rowsOut []model.PointsEntry
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `
			SELECT id, student_id, delta, reason, created_at
			FROM points_ledger
			WHERE student_id = $1
			ORDER BY created_at DESC
			LIMIT $2 OFFSET $3`,
			studentID, limit, offset,
		)
		if err != nil {
			return err
		}
		defer rows.Close()
		rowsOut, err = pgx.CollectRows(rows, pgx.RowToStructByName[model.PointsEntry])
		return err
	}); err != nil {
		return nil, fmt.Errorf("failed to list points history: %w", err)
	}

	res := make([]*model.PointsEntry, len(rowsOut))
	for i := range rowsOut {
		res[i] = &rowsOut[i]
	}
	return res, nil
}

// Leaderboard returns the top student totals, highest first.
func (r *PointsRepo) Leaderboard(ctx context.Context, limit int) ([]*model.PointsBalance, error) {
	if limit <= 0 {
		limit = 10
	}

	var rowsOut []model.PointsBalance
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `
			SELECT student_id, COALESCE(SUM(delta), 0) AS total
			FROM points_ledger
			GROUP BY student_id
			ORDER BY total DESC, student_id
			LIMIT $1`,
			limit,
		)
		if err != nil {
			return err
		}
		defer rows.Close()
		rowsOut, err = pgx.CollectRows(rows, pgx.RowToStructByName[model.PointsBalance])
		return err
	}); err != nil {
		return nil, fmt.Errorf("failed to build points leaderboard: %w", err)
	}

	res := make([]*model.PointsBalance, len(rowsOut))
	for i := range rowsOut {
		res[i] = &rowsOut[i]
	}
	return res, nil
}
