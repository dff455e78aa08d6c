package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRole(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Role
		wantErr bool
	}{
		{name: "admin", input: "admin", want: RoleAdmin},
		{name: "student", input: "student", want: RoleStudent},
		{name: "uppercase admin", input: "ADMIN", want: RoleAdmin},
		{name: "padded student", input: "  student ", want: RoleStudent},
		{name: "unknown value", input: "superuser", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseRole(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRole_Valid(t *testing.T) {
	assert.True(t, RoleAdmin.Valid())
	assert.True(t, RoleStudent.Valid())
	assert.False(t, Role("guest").Valid())
	assert.False(t, Role("").Valid())
}

func TestSession_IsAdmin(t *testing.T) {
	admin := Session{ID: "s1", UserID: "u1", Role: RoleAdmin, ExpiresAt: time.Now().Add(time.Hour)}
	student := Session{ID: "s2", UserID: "u2", Role: RoleStudent, ExpiresAt: time.Now().Add(time.Hour)}

	assert.True(t, admin.IsAdmin())
	assert.False(t, student.IsAdmin())
}

func TestSignedOut(t *testing.T) {
	state := SignedOut()

	assert.Nil(t, state.User)
	assert.Nil(t, state.Profile)
	assert.Nil(t, state.Session)
	assert.False(t, state.Loading)
	assert.False(t, state.IsAdmin)
}
