package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/studyzone/studyzone-api/internal/data/database"
	"github.com/studyzone/studyzone-api/internal/data/pgxutil"
	"github.com/studyzone/studyzone-api/internal/domain/model"
)

// CourseRepo provides database operations for courses.
type CourseRepo struct {
	DB           *sql.DB
	timeProvider TimeProvider
}

// NewCourseRepo creates a new CourseRepo with real time provider.
func NewCourseRepo(db *sql.DB) *CourseRepo {
	return &CourseRepo{DB: db, timeProvider: &RealTimeProvider{}}
}

// NewCourseRepoWithTimeProvider creates a new CourseRepo with a custom time provider (useful for tests).
func NewCourseRepoWithTimeProvider(db *sql.DB, tp TimeProvider) *CourseRepo {
	return &CourseRepo{DB: db, timeProvider: tp}
}

// SQL query constants for static queries (no dynamic WHERE/ORDER BY).
const (
	courseSelect = `
		SELECT c.id, c.title, c.description, c.slug, c.instructor_id,
		       p.full_name AS instructor_name, c.created_at, c.updated_at
		FROM courses c
		LEFT JOIN profiles p ON p.id = c.instructor_id`

	courseGetByIDQuery   = courseSelect + ` WHERE c.id = $1`
	courseGetBySlugQuery = courseSelect + ` WHERE c.slug = $1`
)

// Create inserts a new course owned by instructorID.
func (r *CourseRepo) Create(
	ctx context.Context,
	instructorID string,
	req *model.CreateCourseRequest,
) (*model.Course, error) {
	if req == nil {
		return nil, errors.New("create course request is required")
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(instructorID) == "" {
		return nil, errors.New("instructor_id is required")
	}

	now := r.timeProvider.Now().UTC()
	var id string
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		return conn.QueryRow(ctx, `
			INSERT INTO courses (title, description, slug, instructor_id, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $5)
			RETURNING id`,
			strings.TrimSpace(req.Title),
			req.Description,
			strings.TrimSpace(req.Slug),
			instructorID,
			now,
		).Scan(&id)
	}); err != nil {
		return nil, r.mapWriteErr(err)
	}
	return r.GetByID(ctx, id)
}

// GetByID retrieves a course by ID.
func (r *CourseRepo) GetByID(ctx context.Context, id string) (*model.Course, error) {
	return r.getByQuery(ctx, courseGetByIDQuery, "failed to get course by ID", id)
}

// GetBySlug retrieves a course by slug.
func (r *CourseRepo) GetBySlug(ctx context.Context, slug string) (*model.Course, error) {
	return r.getByQuery(ctx, courseGetBySlugQuery, "failed to get course by slug", slug)
}

// ListWithOptions retrieves courses with optional filters and sorting.
func (r *CourseRepo) ListWithOptions(
	ctx context.Context,
	opts model.CoursesListOptions,
) ([]*model.Course, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 50
	}
	offset := max(opts.Offset, 0)

	queryOpts := []database.ListQueryOption{
		database.WithColumns("id"),
		database.WithLimit(limit),
		database.WithOffset(offset),
	}
	if opts.Q != nil && strings.TrimSpace(*opts.Q) != "" {
		queryOpts = append(queryOpts,
			database.WithCondition(database.WhereCond("title", database.ILike, "%"+strings.TrimSpace(*opts.Q)+"%")))
	}
	if opts.InstructorID != nil {
		queryOpts = append(queryOpts,
			database.WithCondition(database.WhereCond("instructor_id", database.Equal, *opts.InstructorID)))
	}

	sort := strings.ToLower(opts.Sort)
	if sort != "title" {
		sort = "created_at"
	}
	dir := strings.ToLower(opts.Dir)
	if dir != "asc" {
		dir = "desc"
	}
	queryOpts = append(queryOpts, database.WithOrderBy(sort, dir))

	idQuery, args := database.BuildListQuery(database.NewListQueryOptions("courses", queryOpts...))

	// Two-step fetch: filter on the base table, then hydrate the joined view.
	var rowsOut []model.Course
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx,
			courseSelect+` WHERE c.id IN (`+idQuery+`) ORDER BY c.`+sort+` `+strings.ToUpper(dir),
			args...,
		)
		if err != nil {
			return err
		}
		defer rows.Close()
		rowsOut, err = pgx.CollectRows(rows, pgx.RowToStructByName[model.Course])
		return err
	}); err != nil {
		return nil, fmt.Errorf("failed to list courses: %w", err)
	}

	res := make([]*model.Course, len(rowsOut))
	for i := range rowsOut {
		res[i] = &rowsOut[i]
	}
	return res, nil
}

// Update updates fields of a course.
func (r *CourseRepo) Update(
	ctx context.Context,
	id string,
	req model.UpdateCourseRequest,
) (*model.Course, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	setParts := make([]string, 0, 4)
	args := make([]any, 0, 5)
	nextIdx := func() int { return len(args) + 1 }

	if req.Title != nil {
		setParts = append(setParts, fmt.Sprintf("title = $%d", nextIdx()))
		args = append(args, strings.TrimSpace(*req.Title))
	}
	if req.Description != nil {
		setParts = append(setParts, fmt.Sprintf("description = $%d", nextIdx()))
		args = append(args, *req.Description)
	}
	if req.Slug != nil {
		setParts = append(setParts, fmt.Sprintf("slug = $%d", nextIdx()))
		args = append(args, strings.TrimSpace(*req.Slug))
	}
	setParts = append(setParts, fmt.Sprintf("updated_at = $%d", nextIdx()))
	args = append(args, r.timeProvider.Now().UTC())

	args = append(args, id)
	query := "UPDATE courses SET " + strings.Join(setParts, ", ") +
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
		return nil, r.mapWriteErr(err)
	}
	if affected == 0 {
		return nil, ErrCourseNotFound
	}
	return r.GetByID(ctx, id)
}

// Delete deletes a course by ID.
func (r *CourseRepo) Delete(ctx context.Context, id string) (bool, error) {
	var rows int64
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		ct, err := conn.Exec(ctx, `DELETE FROM courses WHERE id = $1`, id)
		if err != nil {
			return err
		}
		rows = ct.RowsAffected()
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("failed to delete course: %w", err)
	}
	return rows > 0, nil
}

func (r *CourseRepo) getByQuery(
	ctx context.Context,
	query, errMsg string,
	arg any,
) (*model.Course, error) {
	var out model.Course
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, query, arg)
		if err != nil {
			return err
		}
		defer rows.Close()
		out, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Course])
		return err
	}); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCourseNotFound
		}
		return nil, fmt.Errorf("%s: %w", errMsg, err)
	}
	return &out, nil
}

func (r *CourseRepo) mapWriteErr(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
		return ErrCourseSlugExists
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrCourseNotFound
	}
	return fmt.Errorf("course write failed: %w", err)
}
