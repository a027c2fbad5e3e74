package apperrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatus(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{"nil", nil, http.StatusOK},
		{"validation", Invalid("situation", "must be at most %d characters", 400), http.StatusBadRequest},
		{"wrapped validation", fmt.Errorf("create: %w", Invalid("stars", "out of range")), http.StatusBadRequest},
		{"auth", ErrAuthRequired, http.StatusUnauthorized},
		{"forbidden", ErrForbidden, http.StatusForbidden},
		{"not found", fmt.Errorf("situation 7: %w", ErrNotFound), http.StatusNotFound},
		{"upstream", Upstream("generator", errors.New("timeout")), http.StatusInternalServerError},
		{"persistence", Persistence("insert situation", errors.New("conn reset")), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Status(tt.err))
		})
	}
}

func TestUnwrap(t *testing.T) {
	root := errors.New("boom")
	err := Upstream("moderation", root)
	assert.ErrorIs(t, err, root)
	assert.Equal(t, "moderation: boom", err.Error())

	var upstream *UpstreamError
	assert.True(t, errors.As(fmt.Errorf("submit: %w", err), &upstream))
	assert.Equal(t, "moderation", upstream.Service)
}
