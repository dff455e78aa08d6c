package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/studyzone/studyzone-api/internal/data/pgxutil"
	domainauth "github.com/studyzone/studyzone-api/internal/domain/auth"
	"github.com/studyzone/studyzone-api/internal/domain/model"
)

// ProfileRepo provides database operations for user profiles.
// Profiles share their primary key with the owning users row.
type ProfileRepo struct {
	DB           *sql.DB
	timeProvider TimeProvider
}

// NewProfileRepo creates a new ProfileRepo with real time provider.
func NewProfileRepo(db *sql.DB) *ProfileRepo {
	return &ProfileRepo{DB: db, timeProvider: &RealTimeProvider{}}
}

// NewProfileRepoWithTimeProvider creates a new ProfileRepo with a custom time provider (useful for tests).
func NewProfileRepoWithTimeProvider(db *sql.DB, tp TimeProvider) *ProfileRepo {
	return &ProfileRepo{DB: db, timeProvider: tp}
}

const profileColumns = `id, full_name, role, faculty, department, matric_number, created_at, updated_at`

// GetByID retrieves a profile by user ID.
func (r *ProfileRepo) GetByID(ctx context.Context, id string) (*domainauth.Profile, error) {
	var out domainauth.Profile
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx,
			`SELECT `+profileColumns+` FROM profiles WHERE id = $1`, id)
		if err != nil {
			return err
		}
		defer rows.Close()
		out, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[domainauth.Profile])
		return err
	}); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return &out, nil
}

// Upsert creates the profile row for a user, or refreshes role and name if it
// already exists. Used at sign-up and by the sign-in self-heal path.
func (r *ProfileRepo) Upsert(
	ctx context.Context,
	id string,
	fullName *string,
	role domainauth.Role,
) (*domainauth.Profile, error) {
	if strings.TrimSpace(id) == "" {
		return nil, errors.New("profile id is required")
	}
	if !role.Valid() {
		return nil, fmt.Errorf("unknown role %q", role)
	}

	now := r.timeProvider.Now().UTC()
	var out domainauth.Profile
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `
			INSERT INTO profiles (id, full_name, role, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $4)
			ON CONFLICT (id) DO UPDATE SET
				full_name = COALESCE(EXCLUDED.full_name, profiles.full_name),
				role = EXCLUDED.role,
				updated_at = EXCLUDED.updated_at
			RETURNING `+profileColumns,
			id, fullName, role, now,
		)
		if err != nil {
			return err
		}
		defer rows.Close()
		out, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[domainauth.Profile])
		return err
	}); err != nil {
		return nil, fmt.Errorf("failed to upsert profile: %w", err)
	}
	return &out, nil
}

// Update applies partial updates to a profile.
func (r *ProfileRepo) Update(
	ctx context.Context,
	id string,
	req model.UpdateProfileRequest,
) (*domainauth.Profile, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	setParts := make([]string, 0, 5)
	args := make([]any, 0, 6)
	nextIdx := func() int { return len(args) + 1 }

	if req.FullName != nil {
		setParts = append(setParts, fmt.Sprintf("full_name = $%d", nextIdx()))
		args = append(args, strings.TrimSpace(*req.FullName))
	}
	if req.Faculty != nil {
		setParts = append(setParts, fmt.Sprintf("faculty = $%d", nextIdx()))
		args = append(args, strings.TrimSpace(*req.Faculty))
	}
	if req.Department != nil {
		setParts = append(setParts, fmt.Sprintf("department = $%d", nextIdx()))
		args = append(args, strings.TrimSpace(*req.Department))
	}
	if req.MatricNumber != nil {
		setParts = append(setParts, fmt.Sprintf("matric_number = $%d", nextIdx()))
		args = append(args, strings.TrimSpace(*req.MatricNumber))
	}
	setParts = append(setParts, fmt.Sprintf("updated_at = $%d", nextIdx()))
	args = append(args, r.timeProvider.Now().UTC())

	args = append(args, id)
	query := "UPDATE profiles SET " + strings.Join(setParts, ", ") +
		fmt.Sprintf(" WHERE id = $%d RETURNING ", len(args)) + profileColumns

	var out domainauth.Profile
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()
		out, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[domainauth.Profile])
		return err
	}); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	return &out, nil
}

// ListStudents retrieves student profiles with pagination.
func (r *ProfileRepo) ListStudents(ctx context.Context, limit, offset int) ([]*domainauth.Profile, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	var rowsOut []domainauth.Profile
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `
			SELECT `+profileColumns+`
			FROM profiles
			WHERE role = $1
			ORDER BY created_at DESC
			LIMIT $2 OFFSET $3`,
			domainauth.RoleStudent, limit, offset,
		)
		if err != nil {
			return err
		}
		defer rows.Close()
		rowsOut, err = pgx.CollectRows(rows, pgx.RowToStructByName[domainauth.Profile])
		return err
	}); err != nil {
		return nil, fmt.Errorf("failed to list students: %w", err)
	}

	res := make([]*domainauth.Profile, len(rowsOut))
	for i := range rowsOut {
		res[i] = &rowsOut[i]
	}
	return res, nil
}
