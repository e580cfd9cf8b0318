package postprocessors

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/labelrag/internal/core/domain"
)

// mockProcessor returns predefined chunks, or passes its input through.
type mockProcessor struct {
	name   string
	chunks []domain.Chunk
	err    error
	seen   []domain.Chunk
}

func (m *mockProcessor) Name() string {
	return m.name
}

func (m *mockProcessor) Process(_ context.Context, _ *domain.Document, chunks []domain.Chunk) ([]domain.Chunk, error) {
	m.seen = chunks
	if m.err != nil {
		return nil, m.err
	}
	if m.chunks != nil {
		return m.chunks, nil
	}
	return chunks, nil
}

func TestPipeline_Process(t *testing.T) {
	doc := &domain.Document{ID: "doc"}

	_, err := NewPipeline().Process(context.Background(), nil)
	assert.Error(t, err)

	chunks, err := NewPipeline().Process(context.Background(), doc)
	require.NoError(t, err)
	assert.Empty(t, chunks)

	first := &mockProcessor{name: "first", chunks: []domain.Chunk{
		{Index: 0, Content: "KEEP OUT OF REACH OF CHILDREN"},
		{Index: 1, Content: "CAUTION"},
	}}
	second := &mockProcessor{name: "second"}
	p := NewPipeline(first)
	p.Add(second)
	assert.Equal(t, 2, p.Len())

	chunks, err = p.Process(context.Background(), doc)
	require.NoError(t, err)
	assert.Nil(t, first.seen, "the first processor creates chunks")
	assert.Equal(t, first.chunks, second.seen)
	assert.Equal(t, first.chunks, chunks)
}

func TestPipeline_ProcessorError(t *testing.T) {
	boom := errors.New("boom")
	later := &mockProcessor{name: "later"}
	p := NewPipeline(&mockProcessor{name: "broken", err: boom}, later)

	_, err := p.Process(context.Background(), &domain.Document{})
	assert.ErrorIs(t, err, boom)
	assert.ErrorContains(t, err, "processor broken")
	assert.Nil(t, later.seen)
}

func TestBuildPipeline_Defaults(t *testing.T) {
	r := NewRegistry()
	RegisterDefaults(r)

	p, err := BuildPipeline(r, domain.DefaultPipelineConfig())
	require.NoError(t, err)
	require.Equal(t, 2, p.Len())

	doc := &domain.Document{
		ID:    "doc",
		Pages: []string{"", "Do not enter treated areas for 12 hours."},
	}
	chunks, err := p.Process(context.Background(), doc)
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, 2, chunks[0].PageNumber)
	assert.NotContains(t, chunks[0].Metadata, domain.MetadataPageEstimated)
}

func TestBuildPipeline_Errors(t *testing.T) {
	r := NewRegistry()
	RegisterDefaults(r)

	_, err := BuildPipeline(r, domain.PipelineConfig{Processors: []string{"stemmer"}})
	assert.Error(t, err)

	_, err = BuildPipeline(r, domain.PipelineConfig{
		Processors:       []string{"chunker"},
		ProcessorConfigs: map[string]map[string]any{"chunker": {"chunk_size": -1}},
	})
	assert.Error(t, err)
}
