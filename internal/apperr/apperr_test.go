package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_IsMatchesByCode(t *testing.T) {
	err := Duplicate("Author already exist")

	assert.True(t, errors.Is(err, ErrDuplicate))
	assert.False(t, errors.Is(err, ErrNotFound))

	wrapped := fmt.Errorf("create author: %w", err)
	assert.True(t, errors.Is(wrapped, ErrDuplicate))
}

func TestError_WithCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := ErrConnectionFailure.WithCause(cause)

	assert.True(t, errors.Is(err, ErrConnectionFailure))
	assert.True(t, errors.Is(err, cause))
	assert.Equal(t, "Connection error: connection refused", err.Error())
	assert.Nil(t, ErrConnectionFailure.Unwrap(), "sentinel must stay untouched")
}

func TestDescribeAndStatus(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantDesc   string
		wantStatus int
	}{
		{"duplicate", Duplicate("Category already exist"), "Category already exist", http.StatusBadRequest},
		{"missing parameter", ErrMissingParameter, "missing search parameter", http.StatusBadRequest},
		{"wrapped not found", fmt.Errorf("get: %w", NotFound("Book does not exist")), "Book does not exist", http.StatusBadRequest},
		{"uncoded", errors.New("pq: syntax error"), "Error while processing request", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantDesc, Describe(tt.err))
			assert.Equal(t, tt.wantStatus, StatusOf(tt.err))
		})
	}
}

func TestCodeOf(t *testing.T) {
	assert.Equal(t, CodeAmbiguous, CodeOf(Ambiguous("x")))
	assert.Equal(t, CodePersistence, CodeOf(Wrap(errors.New("boom"), CodePersistence, "commit failed")))
	assert.Equal(t, Code(""), CodeOf(errors.New("plain")))
}
