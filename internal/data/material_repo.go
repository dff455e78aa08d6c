package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/jackc/pgerrcode"
	"github.com/studyzone/studyzone-api/internal/data/pgxutil"
	"github.com/studyzone/studyzone-api/internal/domain/model"
)

// MaterialRepo provides database operations for course materials.
type MaterialRepo struct {
	DB           *sql.DB
	timeProvider TimeProvider
}

// NewMaterialRepo creates a new MaterialRepo with real time provider.
func NewMaterialRepo(db *sql.DB) *MaterialRepo {
	return &MaterialRepo{DB: db, timeProvider: &RealTimeProvider{}}
}

// NewMaterialRepoWithTimeProvider creates a new MaterialRepo with a custom time provider (useful for tests).
func NewMaterialRepoWithTimeProvider(db *sql.DB, tp TimeProvider) *MaterialRepo {
	return &MaterialRepo{DB: db, timeProvider: tp}
}

const materialColumns = `id, course_id, title, description, type, file_path, file_size, created_at, updated_at`

// Create inserts a new material.
func (r *MaterialRepo) Create(
	ctx context.Context,
	req *model.CreateMaterialRequest,
) (*model.Material, error) {
	if req == nil {
		return nil, errors.New("create material request is required")
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	now := r.timeProvider.Now().UTC()
	var out model.Material
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `
			INSERT INTO materials (course_id, title, description, type, file_path, file_size, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $7)
			RETURNING `+materialColumns,
			req.CourseID,
			strings.TrimSpace(req.Title),
			req.Description,
			req.Type,
			strings.TrimSpace(req.FilePath),
			req.FileSize,
			now,
		)
		if err != nil {
			return err
		}
		defer rows.Close()
		out, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Material])
		return err
	}); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.ForeignKeyViolation {
			return nil, ErrCourseNotFound
		}
		return nil, fmt.Errorf("failed to create material: %w", err)
	}
	return &out, nil
}

// GetByID retrieves a material by ID.
func (r *MaterialRepo) GetByID(ctx context.Context, id string) (*model.Material, error) {
	var out model.Material
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx,
			`SELECT `+materialColumns+` FROM materials WHERE id = $1`, id)
		if err != nil {
			return err
		}
		defer rows.Close()
		out, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Material])
		return err
	}); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrMaterialNotFound
		}
		return nil, fmt.Errorf("failed to get material: %w", err)
	}
	return &out, nil
}

// List retrieves materials with optional course/type filters.
func (r *MaterialRepo) List(
	ctx context.Context,
	opts model.MaterialsListOptions,
) ([]*model.Material, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 50
	}
	offset := max(opts.Offset, 0)

	query := `SELECT ` + materialColumns + ` FROM materials WHERE 1=1`
	args := []any{}
	if opts.CourseID != nil {
		args = append(args, *opts.CourseID)
		query += fmt.Sprintf(" AND course_id = $%d", len(args))
	}
	if opts.Type != nil {
		args = append(args, *opts.Type)
		query += fmt.Sprintf(" AND type = $%d", len(args))
	}
	args = append(args, limit)
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d", len(args))
	args = append(args, offset)
	query += fmt.Sprintf(" OFFSET $%d", len(args))

	var rowsOut []model.Material
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()
		rowsOut, err = pgx.CollectRows(rows, pgx.RowToStructByName[model.Material])
		return err
	}); err != nil {
		return nil, fmt.Errorf("failed to list materials: %w", err)
	}

	res := make([]*model.Material, len(rowsOut))
	for i := range rowsOut {
		res[i] = &rowsOut[i]
	}
	return res, nil
}

// Update updates fields of a material.
func (r *MaterialRepo) Update(
	ctx context.Context,
	id string,
	req model.UpdateMaterialRequest,
) (*model.Material, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	setParts := make([]string, 0, 6)
	args := make([]any, 0, 7)
	nextIdx := func() int { return len(args) + 1 }

	if req.Title != nil {
		setParts = append(setParts, fmt.Sprintf("title = $%d", nextIdx()))
		args = append(args, strings.TrimSpace(*req.Title))
	}
	if req.Description != nil {
		setParts = append(setParts, fmt.Sprintf("description = $%d", nextIdx()))
		args = append(args, *req.Description)
	}
	if req.Type != nil {
		setParts = append(setParts, fmt.Sprintf("type = $%d", nextIdx()))
		args = append(args, *req.Type)
	}
	if req.FilePath != nil {
		setParts = append(setParts, fmt.Sprintf("file_path = $%d", nextIdx()))
		args = append(args, strings.TrimSpace(*req.FilePath))
	}
	if req.FileSize != nil {
		setParts = append(setParts, fmt.Sprintf("file_size = $%d", nextIdx()))
		args = append(args, *req.FileSize)
	}
	setParts = append(setParts, fmt.Sprintf("updated_at = $%d", nextIdx()))
	args = append(args, r.timeProvider.Now().UTC())

	args = append(args, id)
	query := "UPDATE materials SET " + strings.Join(setParts, ", ") +
		" WHERE id = $" + strconv.Itoa(len(args)) + " RETURNING " + materialColumns

	var out model.Material
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()
		out, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Material])
		return err
	}); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrMaterialNotFound
		}
		return nil, fmt.Errorf("failed to update material: %w", err)
	}
	return &out, nil
}

// Delete deletes a material by ID.
func (r *MaterialRepo) Delete(ctx context.Context, id string) (bool, error) {
	var rows int64
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		ct, err := conn.Exec(ctx, `DELETE FROM materials WHERE id = $1`, id)
		if err != nil {
			return err
		}
		rows = ct.RowsAffected()
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("failed to delete material: %w", err)
	}
	return rows > 0, nil
}
