package services

import (
	"context"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/custodia-labs/labelrag/internal/core/domain"
	"github.com/custodia-labs/labelrag/internal/core/ports/driven"
	"github.com/custodia-labs/labelrag/internal/logger"
)

// Retriever answers a question with passages from one product's labels.
type Retriever struct {
	vectors  driven.VectorStore
	embedder driven.EmbeddingService
	boosts   []domain.TopicBoostGroup
}

// NewRetriever creates a retriever. Nil boosts use
// domain.DefaultTopicBoostGroups.
func NewRetriever(vectors driven.VectorStore, embedder driven.EmbeddingService, boosts []domain.TopicBoostGroup) *Retriever {
	if boosts == nil {
		boosts = domain.DefaultTopicBoostGroups()
	}
	return &Retriever{
		vectors:  vectors,
		embedder: embedder,
		boosts:   boosts,
	}
}

// Retrieve returns up to opts.Limit passages for question, scoped to the
// product. When the scoped query finds nothing it falls back to an
// unscoped query re-filtered on the product name; those passages are
// flagged ViaFallback. A question that mentions a safety-critical topic
// gets one extra boost query when no selected passage covers it.
//
// Only a failure to embed the question is returned as an error.
func (r *Retriever) Retrieve(
	ctx context.Context, question string, product domain.ProductQuery, opts domain.RetrievalOptions,
) ([]domain.RetrievedPassage, error) {
	logger.Section("Retrieval")
	opts = opts.WithDefaults()
	scope := product.ScopeKey()
	logger.Debug("Question: %q, scope: %q, limit: %d, threshold: %.2f", question, scope, opts.Limit, opts.ScoreThreshold)

	vec, err := r.embedder.Embed(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("embedding question: %w: %w", domain.ErrEmbeddingUnavailable, err)
	}

	passages := r.query(ctx, driven.VectorQuery{
		Vector:         vec,
		ProductKey:     scope,
		Limit:          opts.Limit,
		ScoreThreshold: opts.ScoreThreshold,
	})
	logger.Debug("Scoped query returned %d passages", len(passages))

	if len(passages) == 0 {
		passages = r.fallback(ctx, vec, product, opts)
	}

	for _, group := range r.boosts {
		passages = r.boost(ctx, question, scope, group, passages, opts)
	}

	return passages, nil
}

func (r *Retriever) query(ctx context.Context, q driven.VectorQuery) []domain.RetrievedPassage {
	hits, err := r.vectors.Query(ctx, q)
	if err != nil {
		logger.Warn("Vector query failed: %v", err)
		return nil
	}
	passages := make([]domain.RetrievedPassage, len(hits))
	for i, h := range hits {
		passages[i] = domain.RetrievedPassage{ID: h.ID, Passage: h.Passage, Score: h.Score}
		// Passages indexed before page repair may carry no page.
		if h.Passage.PageNumber <= 0 {
			passages[i].Passage.PageNumber = domain.EstimatePage(h.Passage.ChunkIndex)
			passages[i].PageEstimated = true
			logger.Warn("Passage %s has no page number, estimated page %d from chunk %d",
				h.ID, passages[i].Passage.PageNumber, h.Passage.ChunkIndex)
		}
	}
	return passages
}

// fallback runs a wider unscoped query and keeps passages whose filename,
// stored product key, or leading content mention the product.
func (r *Retriever) fallback(
	ctx context.Context, vec []float32, product domain.ProductQuery, opts domain.RetrievalOptions,
) []domain.RetrievedPassage {
	candidates := r.query(ctx, driven.VectorQuery{
		Vector:         vec,
		Limit:          opts.Limit * domain.FallbackLimitFactor,
		ScoreThreshold: opts.ScoreThreshold * domain.FallbackThresholdFactor,
	})

	name := product.ScopeKey()
	stem := domain.SanitizeName(product.CleanName())
	var kept []domain.RetrievedPassage
	for _, c := range candidates {
		if !mentionsProduct(c.Passage, name, stem) {
			continue
		}
		c.ViaFallback = true
		kept = append(kept, c)
		if len(kept) == opts.Limit {
			break
		}
	}

	if len(kept) > 0 {
		logger.Warn("No passages scoped to %q; using %d unscoped passages that mention it", name, len(kept))
	} else {
		logger.Debug("Unscoped fallback found nothing for %q (%d candidates)", name, len(candidates))
	}
	return kept
}

func mentionsProduct(p domain.Passage, name, stem string) bool {
	if strings.EqualFold(p.ProductKey, name) {
		return true
	}
	file := strings.ToLower(p.SourceFile + " " + p.DocumentName)
	if strings.Contains(file, name) || (stem != "" && strings.Contains(file, stem)) {
		return true
	}
	prefix := []rune(p.Content)
	if len(prefix) > domain.FallbackContentPrefix {
		prefix = prefix[:domain.FallbackContentPrefix]
	}
	return strings.Contains(strings.ToLower(string(prefix)), name)
}

// boost applies one topic group. When the question triggers the group
// and no passage covers it, an augmented scoped query is run without a
// threshold and matching passages are moved to the front.
func (r *Retriever) boost(
	ctx context.Context, question, scope string, group domain.TopicBoostGroup,
	passages []domain.RetrievedPassage, opts domain.RetrievalOptions,
) []domain.RetrievedPassage {
	if !containsAnyTerm(question, group.Triggers) {
		return passages
	}
	for _, p := range passages {
		if containsAnyTerm(p.Passage.Content, group.Keywords) {
			logger.Debug("Topic %s already covered", group.Name)
			return passages
		}
	}

	vec, err := r.embedder.Embed(ctx, question+" "+group.Augment)
	if err != nil {
		logger.Warn("Topic boost %s skipped: %v", group.Name, err)
		return passages
	}
	extra := r.query(ctx, driven.VectorQuery{
		Vector:     vec,
		ProductKey: scope,
		Limit:      opts.Limit * domain.FallbackLimitFactor,
	})

	seen := make(map[string]bool, len(passages))
	for _, p := range passages {
		seen[p.ID] = true
	}
	var promoted []domain.RetrievedPassage
	for _, p := range extra {
		if seen[p.ID] || !containsAnyTerm(p.Passage.Content, group.Keywords) {
			continue
		}
		p.Boosted = true
		promoted = append(promoted, p)
		seen[p.ID] = true
	}
	if len(promoted) == 0 {
		logger.Debug("Topic %s: boost query found no covering passage", group.Name)
		return passages
	}

	logger.Info("Topic %s: promoted %d passages", group.Name, len(promoted))
	merged := append(promoted, passages...)
	if len(merged) > opts.Limit {
		merged = merged[:opts.Limit]
	}
	return merged
}

// containsAnyTerm reports whether text contains any term as a whole word
// or phrase, case-insensitively.
func containsAnyTerm(text string, terms []string) bool {
	lower := strings.ToLower(text)
	for _, t := range terms {
		if containsTerm(lower, strings.ToLower(t)) {
			return true
		}
	}
	return false
}

func containsTerm(text, term string) bool {
	if term == "" {
		return false
	}
	for from := 0; from < len(text); {
		i := strings.Index(text[from:], term)
		if i < 0 {
			return false
		}
		start := from + i
		end := start + len(term)
		before, _ := utf8.DecodeLastRuneInString(text[:start])
		after, _ := utf8.DecodeRuneInString(text[end:])
		if isBoundary(before) && isBoundary(after) {
			return true
		}
		from = start + 1
	}
	return false
}

// isBoundary reports whether r may sit next to a whole-word match.
// utf8.RuneError stands for the start or end of the text.
func isBoundary(r rune) bool {
	return r == utf8.RuneError || (!unicode.IsLetter(r) && !unicode.IsDigit(r))
}
