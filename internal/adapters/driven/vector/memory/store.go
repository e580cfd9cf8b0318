// Package memory provides an in-process VectorStore. Points are lost when
// the process exits; it serves tests and single-shot CLI runs without a
// Qdrant server.
package memory

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/custodia-labs/labelrag/internal/core/domain"
	"github.com/custodia-labs/labelrag/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.VectorStore = (*Store)(nil)

type point struct {
	vector  []float32
	norm    float64
	passage domain.Passage
}

// Store keeps points in a map keyed by chunk id.
type Store struct {
	mu         sync.RWMutex
	dimensions int
	points     map[string]point
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{points: make(map[string]point)}
}

// EnsureCollection fixes the vector width on first call.
func (s *Store) EnsureCollection(_ context.Context, dimensions int) error {
	if dimensions <= 0 {
		return fmt.Errorf("memory: invalid dimension %d", dimensions)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.dimensions != 0 && s.dimensions != dimensions {
		return fmt.Errorf("memory: store width %d, embeddings have %d: %w",
			s.dimensions, dimensions, domain.ErrDimensionMismatch)
	}
	s.dimensions = dimensions
	return nil
}

// Upsert inserts or replaces points.
func (s *Store) Upsert(_ context.Context, points []driven.VectorPoint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, p := range points {
		if s.dimensions != 0 && len(p.Vector) != s.dimensions {
			return fmt.Errorf("memory: point %s has width %d: %w", p.ChunkID, len(p.Vector), domain.ErrDimensionMismatch)
		}
	}
	for _, p := range points {
		vec := make([]float32, len(p.Vector))
		copy(vec, p.Vector)
		s.points[p.ChunkID] = point{vector: vec, norm: norm(vec), passage: p.Passage}
	}
	return nil
}

// Query scores every point by cosine similarity. Ties are broken by id so
// results are stable.
func (s *Store) Query(ctx context.Context, q driven.VectorQuery) ([]driven.VectorHit, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	limit := q.Limit
	if limit <= 0 {
		limit = domain.DefaultRetrievalLimit
	}
	qnorm := norm(q.Vector)

	s.mu.RLock()
	hits := make([]driven.VectorHit, 0, len(s.points))
	for id, p := range s.points {
		if q.ProductKey != "" && p.passage.ProductKey != q.ProductKey {
			continue
		}
		score := cosine(q.Vector, qnorm, p.vector, p.norm)
		if q.ScoreThreshold > 0 && score < q.ScoreThreshold {
			continue
		}
		hits = append(hits, driven.VectorHit{ID: id, Score: score, Passage: p.passage})
	}
	s.mu.RUnlock()

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].ID < hits[j].ID
	})
	if len(hits) > limit {
		hits = hits[:limit]
	}
	return hits, nil
}

// DeleteByDocument removes every point of a document.
func (s *Store) DeleteByDocument(_ context.Context, documentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, p := range s.points {
		if p.passage.DocumentID == documentID {
			delete(s.points, id)
		}
	}
	return nil
}

// Count returns the number of points, for one document when documentID is set.
func (s *Store) Count(_ context.Context, documentID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if documentID == "" {
		return len(s.points), nil
	}
	n := 0
	for _, p := range s.points {
		if p.passage.DocumentID == documentID {
			n++
		}
	}
	return n, nil
}

// Close releases resources.
func (s *Store) Close() error {
	return nil
}

func norm(v []float32) float64 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	return math.Sqrt(sum)
}

func cosine(a []float32, anorm float64, b []float32, bnorm float64) float64 {
	if anorm == 0 || bnorm == 0 || len(a) != len(b) {
		return 0
	}
	var dot float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
	}
	return dot / (anorm * bnorm)
}
