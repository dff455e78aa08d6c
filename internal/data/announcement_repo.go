package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/studyzone/studyzone-api/internal/data/pgxutil"
	"github.com/studyzone/studyzone-api/internal/domain/model"
)

// AnnouncementRepo provides database operations for announcements.
type AnnouncementRepo struct {
	DB           *sql.DB
	timeProvider TimeProvider
}

// NewAnnouncementRepo creates a new AnnouncementRepo with real time provider.
func NewAnnouncementRepo(db *sql.DB) *AnnouncementRepo {
	return &AnnouncementRepo{DB: db, timeProvider: &RealTimeProvider{}}
}

// NewAnnouncementRepoWithTimeProvider creates a new AnnouncementRepo with a custom time provider (useful for tests).
func NewAnnouncementRepoWithTimeProvider(db *sql.DB, tp TimeProvider) *AnnouncementRepo {
	return &AnnouncementRepo{DB: db, timeProvider: tp}
}

const announcementSelect = `
	SELECT a.id, a.course_id, a.created_by, p.full_name AS author_name,
	       a.title, a.content, a.is_global, a.created_at, a.updated_at
	FROM announcements a
	LEFT JOIN profiles p ON p.id = a.created_by`

// Create inserts a new announcement authored by createdBy.
func (r *AnnouncementRepo) Create(
	ctx context.Context,
	createdBy string,
	req *model.CreateAnnouncementRequest,
) (*model.Announcement, error) {
	if req == nil {
		return nil, errors.New("create announcement request is required")
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(createdBy) == "" {
		return nil, errors.New("created_by is required")
	}

	var id string
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		return conn.QueryRow(ctx, `
			INSERT INTO announcements (course_id, created_by, title, content, is_global, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $6)
			RETURNING id`,
			req.CourseID,
			createdBy,
			strings.TrimSpace(req.Title),
			req.Content,
			req.IsGlobal,
			r.timeProvider.Now().UTC(),
		).Scan(&id)
	}); err != nil {
		return nil, fmt.Errorf("failed to create announcement: %w", err)
	}
	return r.GetByID(ctx, id)
}

// GetByID retrieves an announcement by ID.
func (r *AnnouncementRepo) GetByID(ctx context.Context, id string) (*model.Announcement, error) {
	var out model.Announcement
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, announcementSelect+` WHERE a.id = $1`, id)
		if err != nil {
			return err
		}
		defer rows.Close()
		out, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Announcement])
		return err
	}); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAnnouncementNotFound
		}
		return nil, fmt.Errorf("failed to get announcement: %w", err)
	}
	return &out, nil
}

// List retrieves announcements. When CourseID is set, global announcements are
// included alongside the course's own.
func (r *AnnouncementRepo) List(
	ctx context.Context,
	opts model.AnnouncementsListOptions,
) ([]*model.Announcement, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 50
	}
	offset := max(opts.Offset, 0)

	query := announcementSelect
	args := []any{}
	switch {
	case opts.GlobalOnly:
		query += ` WHERE a.is_global`
	case opts.CourseID != nil:
		args = append(args, *opts.CourseID)
		query += fmt.Sprintf(` WHERE (a.is_global OR a.course_id = $%d)`, len(args))
	}
	args = append(args, limit)
	query += fmt.Sprintf(" ORDER BY a.created_at DESC LIMIT $%d", len(args))
	args = append(args, offset)
	query += fmt.Sprintf(" OFFSET $%d", len(args))

	var rowsOut []model.Announcement
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()
		rowsOut, err = pgx.CollectRows(rows, pgx.RowToStructByName[model.Announcement])
		return err
	}); err != nil {
		return nil, fmt.Errorf("failed to list announcements: %w", err)
	}

	res := make([]*model.Announcement, len(rowsOut))
	for i := range rowsOut {
		res[i] = &rowsOut[i]
	}
	return res, nil
}

// Update updates title or content of an announcement.
func (r *AnnouncementRepo) Update(
	ctx context.Context,
	id string,
	req model.UpdateAnnouncementRequest,
) (*model.Announcement, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	setParts := make([]string, 0, 3)
	args := make([]any, 0, 4)
	nextIdx := func() int { return len(args) + 1 }

	if req.Title != nil {
		setParts = append(setParts, fmt.Sprintf("title = $%d", nextIdx()))
		args = append(args, strings.TrimSpace(*req.Title))
	}
	if req.Content != nil {
		setParts = append(setParts, fmt.Sprintf("content = $%d", nextIdx()))
		args = append(args, *req.Content)
	}
	setParts = append(setParts, fmt.Sprintf("updated_at = $%d", nextIdx()))
	args = append(args, r.timeProvider.Now().UTC())

	args = append(args, id)
	query := "UPDATE announcements SET " + strings.Join(setParts, ", ") +
		" WHERE id = $" + strconv.Itoa(len(args))

	var affected int64
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		ct, err := conn.Exec(ctx, query, args...)
		if err != nil {
			return err
		}
		affected = ct.RowsAffected()
		return nil
	}); err != nil {
		return nil, fmt.Errorf("failed to update announcement: %w", err)
	}
	if affected == 0 {
		return nil, ErrAnnouncementNotFound
	}
	return r.GetByID(ctx, id)
}

// Delete deletes an announcement by ID.
func (r *AnnouncementRepo) Delete(ctx context.Context, id string) (bool, error) {
	var rows int64
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		ct, err := conn.Exec(ctx, `DELETE FROM announcements WHERE id = $1`, id)
		if err != nil {
			return err
		}
		rows = ct.RowsAffected()
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("failed to delete announcement: %w", err)
	}
	return rows > 0, nil
}
