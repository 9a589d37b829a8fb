package server

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jonathan/fitscore/internal/engine"
	"github.com/jonathan/fitscore/internal/schemas"
)

func TestErrNotFound(t *testing.T) {
	err := &ErrNotFound{Resource: "profile", ID: "c-1"}
	assert.Equal(t, "profile not found: c-1", err.Error())
	assert.Equal(t, http.StatusNotFound, HTTPStatus(err))
}

func TestErrValidation(t *testing.T) {
	err := &ErrValidation{Field: "min_score", Message: "must be between 0 and 100"}
	assert.Equal(t, "validation error: min_score - must be between 0 and 100", err.Error())
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(err))
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{
			name:     "ErrNotFound",
			err:      &ErrNotFound{Resource: "match result", ID: "x"},
			expected: http.StatusNotFound,
		},
		{
			name:     "Wrapped ErrNotFound",
			err:      fmt.Errorf("resolve: %w", &ErrNotFound{Resource: "profile", ID: "x"}),
			expected: http.StatusNotFound,
		},
		{
			name:     "ErrValidation",
			err:      &ErrValidation{Field: "id", Message: "mismatch"},
			expected: http.StatusBadRequest,
		},
		{
			name:     "Engine validation error",
			err:      &engine.ValidationError{Field: "candidate", Message: "is required"},
			expected: http.StatusBadRequest,
		},
		{
			name:     "Schema validation error",
			err:      &schemas.ValidationError{Errors: []schemas.FieldError{{Field: "pairs", Message: "required"}}},
			expected: http.StatusBadRequest,
		},
		{
			name:     "ErrStoreUnavailable",
			err:      &ErrStoreUnavailable{},
			expected: http.StatusServiceUnavailable,
		},
		{
			name:     "Unknown error",
			err:      assert.AnError,
			expected: http.StatusInternalServerError,
		},
		{
			name:     "Nil error",
			err:      nil,
			expected: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, HTTPStatus(tt.err))
		})
	}
}

func TestErrorMessage(t *testing.T) {
	schemaErr := &schemas.ValidationError{Errors: []schemas.FieldError{
		{Field: "pairs", Message: "pairs is required"},
		{Field: "mode", Message: "must be one of basic, advanced"},
	}}
	assert.Equal(t, "pairs: pairs is required; mode: must be one of basic, advanced", errorMessage(schemaErr))
	assert.Equal(t, "internal error", errorMessage(assert.AnError))
	assert.Equal(t, "profile not found: p", errorMessage(&ErrNotFound{Resource: "profile", ID: "p"}))
}
