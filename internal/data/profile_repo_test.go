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

func TestProfileRepo_UpsertGetUpdate(t *testing.T) {
	testutil.SkipIfNoTestDB(t)

	testutil.WithAutoDB(t, func(db *sql.DB) {
		ctx := context.Background()
		repo := NewProfileRepo(db)

		user := createTestUser(t, db,
			fmt.Sprintf("profile-%d@studyzone.com", time.Now().UnixNano()), domainauth.RoleStudent)

		// missing row before upsert
		_, err := repo.GetByID(ctx, user.ID)
		assert.ErrorIs(t, err, ErrProfileNotFound)

		name := "Ada Lovelace"
		p, err := repo.Upsert(ctx, user.ID, &name, domainauth.RoleStudent)
		require.NoError(t, err)
		assert.Equal(t, user.ID, p.ID)
		require.NotNil(t, p.FullName)
		assert.Equal(t, name, *p.FullName)

		// second upsert keeps the name when none given and refreshes the role
		p2, err := repo.Upsert(ctx, user.ID, nil, domainauth.RoleAdmin)
		require.NoError(t, err)
		require.NotNil(t, p2.FullName)
		assert.Equal(t, name, *p2.FullName)
		assert.Equal(t, domainauth.RoleAdmin, p2.Role)

		faculty := "Engineering"
		updated, err := repo.Update(ctx, user.ID, model.UpdateProfileRequest{Faculty: &faculty})
		require.NoError(t, err)
		require.NotNil(t, updated.Faculty)
		assert.Equal(t, faculty, *updated.Faculty)
	})
}

func TestProfileRepo_ListStudents(t *testing.T) {
	testutil.SkipIfNoTestDB(t)

	testutil.WithAutoDB(t, func(db *sql.DB) {
		ctx := context.Background()
		repo := NewProfileRepo(db)

		admin := createTestUser(t, db,
			fmt.Sprintf("staff-%d@studyzone.com", time.Now().UnixNano()), domainauth.RoleAdmin)
		student := createTestUser(t, db,
			fmt.Sprintf("listed-%d@studyzone.com", time.Now().UnixNano()), domainauth.RoleStudent)

		_, err := repo.Upsert(ctx, admin.ID, nil, domainauth.RoleAdmin)
		require.NoError(t, err)
		_, err = repo.Upsert(ctx, student.ID, nil, domainauth.RoleStudent)
		require.NoError(t, err)

		students, err := repo.ListStudents(ctx, 10, 0)
		require.NoError(t, err)
		require.Len(t, students, 1)
		assert.Equal(t, student.ID, students[0].ID)
	})
}
