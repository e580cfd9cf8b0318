package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestErrors_Existence tests that all error variables exist and are not nil
func TestErrors_Existence(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"ErrNotFound", ErrNotFound},
		{"ErrInvalidInput", ErrInvalidInput},
		{"ErrConfiguration", ErrConfiguration},
		{"ErrEmbeddingUnavailable", ErrEmbeddingUnavailable},
		{"ErrSearchUnavailable", ErrSearchUnavailable},
		{"ErrVectorIndexUnavailable", ErrVectorIndexUnavailable},
		{"ErrRateLimited", ErrRateLimited},
		{"ErrRetriesExhausted", ErrRetriesExhausted},
		{"ErrDownloadFailed", ErrDownloadFailed},
		{"ErrDownloadTooLarge", ErrDownloadTooLarge},
		{"ErrEmptyDownload", ErrEmptyDownload},
		{"ErrDimensionMismatch", ErrDimensionMismatch},
		{"ErrNoExtractableText", ErrNoExtractableText},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotNil(t, tt.err)
			assert.NotEmpty(t, tt.err.Error())
		})
	}
}

// TestErrNotFound tests ErrNotFound error
func TestErrNotFound(t *testing.T) {
	assert.Equal(t, "not found", ErrNotFound.Error())
	assert.True(t, errors.Is(ErrNotFound, ErrNotFound))
	assert.False(t, errors.Is(ErrNotFound, ErrInvalidInput))
}

func TestErrors_Wrapping(t *testing.T) {
	wrapped := fmt.Errorf("fetching label: %w", ErrDownloadTooLarge)

	assert.ErrorIs(t, wrapped, ErrDownloadTooLarge)
	assert.NotErrorIs(t, wrapped, ErrEmptyDownload)
	assert.Contains(t, wrapped.Error(), "download exceeds maximum size")
}
