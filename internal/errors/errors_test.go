package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *AppError
		want string
	}{
		{
			name: "message only",
			err:  &AppError{Code: ErrCodeNotFound, Message: "course not found"},
			want: "course not found",
		},
		{
			name: "with cause",
			err:  &AppError{Code: ErrCodeInternal, Message: "save session", Cause: errors.New("redis down")},
			want: "save session: redis down",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	cause := errors.New("root")
	err := Wrap(cause, ErrCodeInternal, "wrapped")
	assert.ErrorIs(t, err, cause)
}

func TestConstructors(t *testing.T) {
	tests := []struct {
		name string
		err  *AppError
		code ErrorCode
	}{
		{"not found", NotFound("x"), ErrCodeNotFound},
		{"not foundf", NotFoundf("course %q", "algo-101"), ErrCodeNotFound},
		{"conflict", Conflict("x"), ErrCodeConflict},
		{"validation", Validation("x"), ErrCodeValidation},
		{"validationf", Validationf("bad %s", "slug"), ErrCodeValidation},
		{"unauthorized", Unauthorized("x"), ErrCodeUnauthorized},
		{"forbidden", Forbidden("x"), ErrCodeForbidden},
		{"rate limited", RateLimited("x"), ErrCodeRateLimited},
		{"internal", Internal("x"), ErrCodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, tt.err.Code)
		})
	}
}

func TestNotFoundf_FormatsMessage(t *testing.T) {
	err := NotFoundf("course %q not found", "algo-101")
	assert.Equal(t, `course "algo-101" not found`, err.Message)
}

func TestValidationField(t *testing.T) {
	err := ValidationField("email", "invalid email address")
	assert.Equal(t, ErrCodeValidation, err.Code)
	assert.Equal(t, "email", err.Field)
	assert.Equal(t, "email", GetField(err))
}

func TestWrap_NilErr(t *testing.T) {
	assert.Nil(t, Wrap(nil, ErrCodeInternal, "ignored"))
}

func TestWrapf(t *testing.T) {
	cause := errors.New("boom")
	err := Wrapf(cause, ErrCodeInternal, "operation %d failed", 7)
	require.NotNil(t, err)
	assert.Equal(t, "operation 7 failed: boom", err.Error())
	assert.ErrorIs(t, err, cause)
}

func TestPredicates(t *testing.T) {
	tests := []struct {
		name  string
		check func(error) bool
		err   error
		want  bool
	}{
		{"not found matches", IsNotFound, NotFound("x"), true},
		{"not found wrapped", IsNotFound, fmt.Errorf("outer: %w", NotFound("x")), true},
		{"not found mismatch", IsNotFound, Conflict("x"), false},
		{"conflict matches", IsConflict, Conflict("x"), true},
		{"validation matches", IsValidation, Validation("x"), true},
		{"unauthorized matches", IsUnauthorized, Unauthorized("x"), true},
		{"forbidden matches", IsForbidden, Forbidden("x"), true},
		{"rate limited matches", IsRateLimited, RateLimited("x"), true},
		{"plain error", IsNotFound, errors.New("x"), false},
		{"nil error", IsNotFound, nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.check(tt.err))
		})
	}
}

func TestGetCode(t *testing.T) {
	assert.Equal(t, ErrCodeForbidden, GetCode(Forbidden("x")))
	assert.Equal(t, ErrorCode(""), GetCode(errors.New("plain")))
	assert.Equal(t, ErrorCode(""), GetCode(nil))
}
