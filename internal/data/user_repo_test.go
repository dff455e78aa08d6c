package data

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	domainauth "github.com/studyzone/studyzone-api/internal/domain/auth"
	"github.com/studyzone/studyzone-api/internal/domain/model"
	"github.com/studyzone/studyzone-api/internal/testutil"
)

func createTestUser(t *testing.T, db *sql.DB, email string, role domainauth.Role) *model.UserAccount {
	t.Helper()
	repo := NewUserRepo(db)
	u, err := repo.Create(context.Background(), &model.CreateUserRequest{
		Email:    email,
		Password: "secret123",
		FullName: "Test User",
		Role:     role,
	}, "$2a$10$abcdefghijklmnopqrstuvabcdefghijklmnopqrstuvabcdefghij")
	require.NoError(t, err)
	return u
}

func TestUserRepo_CreateAndGet(t *testing.T) {
	testutil.SkipIfNoTestDB(t)

	testutil.WithAutoDB(t, func(db *sql.DB) {
		ctx := context.Background()
		repo := NewUserRepo(db)

		email := fmt.Sprintf("user-%d@studyzone.com", time.Now().UnixNano())
		u := createTestUser(t, db, email, domainauth.RoleStudent)
		require.NotEmpty(t, u.ID)
		assert.Equal(t, email, u.Email)
		assert.Equal(t, domainauth.RoleStudent, u.Role)
		assert.NotZero(t, u.CreatedAt)

		// case-insensitive email lookup
		got, err := repo.GetByEmail(ctx, "USER"+email[4:])
		require.NoError(t, err)
		assert.Equal(t, u.ID, got.ID)

		byID, err := repo.GetByID(ctx, u.ID)
		require.NoError(t, err)
		assert.Equal(t, u.Email, byID.Email)
	})
}

func TestUserRepo_DuplicateEmail(t *testing.T) {
	testutil.SkipIfNoTestDB(t)

	testutil.WithAutoDB(t, func(db *sql.DB) {
		repo := NewUserRepo(db)
		email := fmt.Sprintf("dup-%d@studyzone.com", time.Now().UnixNano())
		createTestUser(t, db, email, domainauth.RoleStudent)

		_, err := repo.Create(context.Background(), &model.CreateUserRequest{
			Email:    email,
			Password: "secret123",
		}, "$2a$10$abcdefghijklmnopqrstuvabcdefghijklmnopqrstuvabcdefghij")
		assert.ErrorIs(t, err, ErrEmailExists)
	})
}

func TestUserRepo_GetMissing(t *testing.T) {
	testutil.SkipIfNoTestDB(t)

	testutil.WithAutoDB(t, func(db *sql.DB) {
		repo := NewUserRepo(db)
		_, err := repo.GetByEmail(context.Background(), "nobody@studyzone.com")
		assert.ErrorIs(t, err, ErrUserNotFound)
	})
}

func TestUserRepo_UpdateRole(t *testing.T) {
	testutil.SkipIfNoTestDB(t)

	testutil.WithAutoDB(t, func(db *sql.DB) {
		ctx := context.Background()
		repo := NewUserRepo(db)

		email := fmt.Sprintf("promote-%d@studyzone.com", time.Now().UnixNano())
		u := createTestUser(t, db, email, domainauth.RoleStudent)

		require.NoError(t, repo.UpdateRole(ctx, u.ID, domainauth.RoleAdmin))

		got, err := repo.GetByID(ctx, u.ID)
		require.NoError(t, err)
		assert.Equal(t, domainauth.RoleAdmin, got.Role)

		err = repo.UpdateRole(ctx, "00000000-0000-0000-0000-000000000000", domainauth.RoleAdmin)
		assert.ErrorIs(t, err, ErrUserNotFound)
	})
}
