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

// EnrollmentRepo provides database operations for course enrollments.
type EnrollmentRepo struct {
	DB           *sql.DB
	timeProvider TimeProvider
}

// NewEnrollmentRepo creates a new EnrollmentRepo with real time provider.
func NewEnrollmentRepo(db *sql.DB) *EnrollmentRepo {
	return &EnrollmentRepo{DB: db, timeProvider: &RealTimeProvider{}}
}

// NewEnrollmentRepoWithTimeProvider creates a new EnrollmentRepo with a custom time provider (useful for tests).
func NewEnrollmentRepoWithTimeProvider(db *sql.DB, tp TimeProvider) *EnrollmentRepo {
	return &EnrollmentRepo{DB: db, timeProvider: tp}
}

const enrollmentSelect = `
	SELECT e.id, e.student_id, e.course_id, e.enrolled_at,
	       c.title AS course_title, p.full_name AS student_name
	FROM enrollments e
	JOIN courses c ON c.id = e.course_id
	LEFT JOIN profiles p ON p.id = e.student_id`

// Create enrolls a student in a course.
func (r *EnrollmentRepo) Create(
	ctx context.Context,
	req *model.CreateEnrollmentRequest,
) (*model.Enrollment, error) {
	if req == nil {
		return nil, errors.New("create enrollment request is required")
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var id string
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		return conn.QueryRow(ctx, `
			INSERT INTO enrollments (student_id, course_id, enrolled_at)
			VALUES ($1, $2, $3)
			RETURNING id`,
			req.StudentID, req.CourseID, r.timeProvider.Now().UTC(),
		).Scan(&id)
	}); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case pgerrcode.UniqueViolation:
				return nil, ErrAlreadyEnrolled
			case pgerrcode.ForeignKeyViolation:
				return nil, ErrCourseNotFound
			}
		}
		return nil, fmt.Errorf("failed to create enrollment: %w", err)
	}
	return r.GetByID(ctx, id)
}

// GetByID retrieves an enrollment by ID.
func (r *EnrollmentRepo) GetByID(ctx context.Context, id string) (*model.Enrollment, error) {
	var out model.Enrollment
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, enrollmentSelect+` WHERE e.id = $1`, id)
		if err != nil {
			return err
		}
		defer rows.Close()
		out, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Enrollment])
		return err
	}); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrEnrollmentNotFound
		}
		return nil, fmt.Errorf("failed to get enrollment: %w", err)
	}
	return &out, nil
}

// Exists reports whether a student is enrolled in a course.
func (r *EnrollmentRepo) Exists(ctx context.Context, studentID, courseID string) (bool, error) {
	var exists bool
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		return conn.QueryRow(ctx,
			`SELECT EXISTS(SELECT 1 FROM enrollments WHERE student_id = $1 AND course_id = $2)`,
			studentID, courseID,
		).Scan(&exists)
	}); err != nil {
		return false, fmt.Errorf("failed to check enrollment: %w", err)
	}
	return exists, nil
}

// List retrieves enrollments with optional student/course filters.
func (r *EnrollmentRepo) List(
	ctx context.Context,
	opts model.EnrollmentsListOptions,
) ([]*model.Enrollment, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 50
	}
	offset := max(opts.Offset, 0)

	query := enrollmentSelect + ` WHERE 1=1`
	args := []any{}
	if opts.StudentID != nil {
		args = append(args, *opts.StudentID)
		query += fmt.Sprintf(" AND e.student_id = $%d", len(args))
	}
	if opts.CourseID != nil {
		args = append(args, *opts.CourseID)
		query += fmt.Sprintf(" AND e.course_id = $%d", len(args))
	}
	args = append(args, limit)
	query += fmt.Sprintf(" ORDER BY e.enrolled_at DESC LIMIT $%d", len(args))
	args = append(args, offset)
	query += fmt.Sprintf(" OFFSET $%d", len(args))

	var rowsOut []model.Enrollment
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()
		rowsOut, err = pgx.CollectRows(rows, pgx.RowToStructByName[model.Enrollment])
		return err
	}); err != nil {
		return nil, fmt.Errorf("failed to list enrollments: %w", err)
	}

	res := make([]*model.Enrollment, len(rowsOut))
	for i := range rowsOut {
		res[i] = &rowsOut[i]
	}
	return res, nil
}

// Delete removes an enrollment by ID.
func (r *EnrollmentRepo) Delete(ctx context.Context, id string) (bool, error) {
	var rows int64
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		ct, err := conn.Exec(ctx, `DELETE FROM enrollments WHERE id = $1`, id)
		if err != nil {
			return err
		}
		rows = ct.RowsAffected()
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("failed to delete enrollment: %w", err)
	}
	return rows > 0, nil
}
