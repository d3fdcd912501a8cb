package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusCode(t *testing.T) {
	cases := []struct {
		err  *AppError
		want int
	}{
		{NewDatabaseError("db", nil), http.StatusInternalServerError},
		{NewConfigError("cfg", nil), http.StatusInternalServerError},
		{NewAuthError("auth", nil), http.StatusUnauthorized},
		{NewUnauthorizedError("forbidden", nil), http.StatusForbidden},
		{NewNotFoundError("missing", nil), http.StatusNotFound},
		{NewValidationError("invalid", nil), http.StatusBadRequest},
		{NewBadRequestError("bad", nil), http.StatusBadRequest},
		{NewInternalError("boom", nil), http.StatusInternalServerError},
		{NewMigrationError("migrate", nil), http.StatusInternalServerError},
		{NewConflictError("dup", nil), http.StatusConflict},
		{NewAppError(UnknownError, "?", nil), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.err.Message, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.err.StatusCode())
		})
	}
}

func TestErrorIncludesCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewDatabaseError("failed to load movies", cause)

	assert.Equal(t, "failed to load movies: connection refused", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, ErrorResponse{Error: "failed to load movies"}, err.ToResponse())
}

func TestFromErrorWalksWrappedChain(t *testing.T) {
	inner := NewNotFoundError("favourites not found", nil)
	wrapped := fmt.Errorf("delete favourites: %w", inner)

	got, ok := FromError(wrapped)
	require.True(t, ok)
	assert.Same(t, inner, got)
	assert.True(t, IsNotFound(wrapped))
	assert.False(t, IsConflictError(wrapped))

	_, ok = FromError(errors.New("plain"))
	assert.False(t, ok)
	_, ok = FromError(nil)
	assert.False(t, ok)
}

func TestTypePredicates(t *testing.T) {
	assert.True(t, IsAuthError(NewAuthError("x", nil)))
	assert.True(t, IsUnauthorizedError(NewUnauthorizedError("x", nil)))
	assert.True(t, IsValidationError(NewValidationError("x", nil)))
	assert.True(t, IsBadRequest(NewBadRequestError("x", nil)))
	assert.True(t, IsConflictError(NewConflictError("x", nil)))
	assert.False(t, IsBadRequest(NewValidationError("x", nil)))
}
