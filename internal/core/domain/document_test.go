package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestDocument_Fields tests Document structure fields
func TestDocument_Fields(t *testing.T) {
	now := time.Now()

	doc := Document{
		ID:            DocumentIDForPath("/cache/roundup_abc123def456.pdf"),
		Filename:      "roundup_abc123def456.pdf",
		Filepath:      "/cache/roundup_abc123def456.pdf",
		FileSize:      2048,
		NumPages:      12,
		NumChunks:     30,
		ProductKey:    "roundup",
		SourceURL:     "https://www.cdms.net/ldat/ld1.pdf",
		URLHash:       "abc123def456",
		Processed:     true,
		Metadata:      map[string]any{"source": "CDMS"},
		CreatedAt:     now,
		LastProcessed: &now,
	}

	assert.Len(t, doc.ID, 32)
	assert.Equal(t, "roundup_abc123def456.pdf", doc.Filename)
	assert.Equal(t, int64(2048), doc.FileSize)
	assert.Equal(t, 12, doc.NumPages)
	assert.True(t, doc.Processed)
	require.NotNil(t, doc.LastProcessed)
	assert.Equal(t, now, *doc.LastProcessed)
	assert.Equal(t, "CDMS", doc.Metadata["source"])
}

func TestDocumentIDForPath_Deterministic(t *testing.T) {
	a := DocumentIDForPath("/data/labels/sevin.pdf")
	b := DocumentIDForPath("/data/labels/sevin.pdf")
	c := DocumentIDForPath("/data/labels/sevin2.pdf")

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Regexp(t, "^[0-9a-f]{32}$", a)
}

func TestChunkID(t *testing.T) {
	assert.Equal(t, "doc1_0", ChunkID("doc1", 0))
	assert.Equal(t, "doc1_17", ChunkID("doc1", 17))
}

func TestEstimateTokens(t *testing.T) {
	tests := []struct {
		name string
		text string
		want int
	}{
		{"empty", "", 0},
		{"short", "abc", 0},
		{"exact", "abcdefgh", 2},
		{"multibyte counts runes", "ééééééééé", 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, EstimateTokens(tt.text))
		})
	}
}

// TestChunk_Fields tests Chunk structure fields
func TestChunk_Fields(t *testing.T) {
	chunk := Chunk{
		ID:         ChunkID("doc-1", 3),
		DocumentID: "doc-1",
		Index:      3,
		Content:    "Do not enter treated areas for 12 hours.",
		PageNumber: 4,
		CharCount:  40,
		TokenCount: 10,
	}

	assert.Equal(t, "doc-1_3", chunk.ID)
	assert.Equal(t, 4, chunk.PageNumber)
	assert.Nil(t, chunk.Metadata)
}

func TestTruncateToTokens(t *testing.T) {
	assert.Equal(t, "abcdefgh", TruncateToTokens("abcdefghij", 2))
	assert.Equal(t, "short", TruncateToTokens("short", 100))
	assert.Equal(t, "unlimited", TruncateToTokens("unlimited", 0))
	assert.Equal(t, "éééé", TruncateToTokens("éééééé", 1))
}
