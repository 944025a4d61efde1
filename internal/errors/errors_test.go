package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError_IsMatchesByCode(t *testing.T) {
	err := NotFoundf("page %s not found", "node-1")

	assert.True(t, Is(err, ErrNotFound))
	assert.False(t, Is(err, ErrConflict))
	assert.Equal(t, "page node-1 not found", err.Error())
}

func TestError_WrappedSurvivesFmtWrap(t *testing.T) {
	base := Conflictf("page has children")
	wrapped := fmt.Errorf("delete page: %w", base)

	assert.True(t, Is(wrapped, ErrConflict))

	var domainErr *Error
	require.True(t, As(wrapped, &domainErr))
	assert.Equal(t, CodeConflict, domainErr.Code)
}

func TestError_WithCause(t *testing.T) {
	cause := fmt.Errorf("disk full")
	err := ErrInternal.WithCause(cause)

	assert.Equal(t, "internal error: disk full", err.Error())
	assert.Equal(t, cause, Unwrap(err))
	// Sentinel must not be mutated.
	assert.Nil(t, ErrInternal.Unwrap())
}

func TestError_WithDetails(t *testing.T) {
	err := ValidationWithDetails("validation failed", map[string]string{"slug": "is invalid"})
	withMore := err.WithDetails("other")

	assert.Equal(t, map[string]string{"slug": "is invalid"}, err.Details)
	assert.Equal(t, "other", withMore.Details)
	assert.True(t, Is(withMore, ErrValidation))
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, 0},
		{"plain", fmt.Errorf("boom"), 1},
		{"validation", Validation("bad"), 2},
		{"not found", NotFoundf("x"), 3},
		{"conflict", Conflictf("x"), 4},
		{"already exists", AlreadyExistsf("x"), 4},
		{"inconsistent", Inconsistentf("x"), 5},
		{"wrapped", fmt.Errorf("ctx: %w", NotFoundf("x")), 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExitCode(tt.err))
		})
	}
}
