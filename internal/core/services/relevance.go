package services

import (
	"strings"

	"github.com/custodia-labs/labelrag/internal/core/domain"
)

// PrioritizePDFs returns results with direct PDF links first, keeping the
// search service's order within each group, truncated to limit.
// A non-positive limit keeps everything.
func PrioritizePDFs(results []domain.CandidateResult, limit int) []domain.CandidateResult {
	ordered := make([]domain.CandidateResult, 0, len(results))
	for _, r := range results {
		if r.IsDirectPDF() {
			ordered = append(ordered, r)
		}
	}
	for _, r := range results {
		if !r.IsDirectPDF() {
			ordered = append(ordered, r)
		}
	}
	if limit > 0 && len(ordered) > limit {
		ordered = ordered[:limit]
	}
	return ordered
}

// ValidateRelevance keeps results whose title, snippet or URL mention at
// least one of words. Results are prioritised and truncated first.
func ValidateRelevance(results []domain.CandidateResult, words []string, limit int) []domain.CandidateResult {
	candidates := PrioritizePDFs(results, limit)
	if len(words) == 0 {
		return candidates
	}

	valid := make([]domain.CandidateResult, 0, len(candidates))
	for _, r := range candidates {
		combined := strings.ToLower(r.Title + " " + r.Snippet + " " + r.URL)
		if mentionsAny(combined, words) {
			valid = append(valid, r)
		}
	}
	return valid
}

// relevanceWords returns the tokens a result must mention to count as
// relevant. Names made only of short tokens ("2 4D") fall back to the
// whole scope key.
func relevanceWords(q domain.ProductQuery) []string {
	if words := q.SignificantWords(); len(words) > 0 {
		return words
	}
	return []string{q.ScopeKey()}
}

func mentionsAny(text string, words []string) bool {
	for _, w := range words {
		if w != "" && strings.Contains(text, w) {
			return true
		}
	}
	return false
}
