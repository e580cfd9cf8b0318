package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProductQuery(t *testing.T) {
	q, err := NewProductQuery("  Roundup®  PowerMAX™ ", " glyphosate ")
	require.NoError(t, err)

	assert.Equal(t, "Roundup PowerMAX", q.CleanName())
	assert.Equal(t, "roundup powermax", q.ScopeKey())
	assert.Equal(t, "glyphosate", q.ActiveIngredient)
}

func TestNewProductQuery_Empty(t *testing.T) {
	_, err := NewProductQuery("   ", "")
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = NewProductQuery("®™", "")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestProductQuery_SignificantWords(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"single word", "Roundup", []string{"roundup"}},
		{"short tokens dropped", "Actagro 10% Boron", []string{"actagro", "10%", "boron"}},
		{"two-char tokens dropped", "Dual II Magnum", []string{"dual", "magnum"}},
		{"nothing significant", "2 4D", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ProductQuery{Name: tt.in}.SignificantWords())
		})
	}
}

func TestScopeKeyFor(t *testing.T) {
	assert.Equal(t, "sevin xlr plus", ScopeKeyFor("Sevin®   XLR Plus"))
	assert.Equal(t, ScopeKeyFor("ROUNDUP"), ScopeKeyFor("roundup"))
}
