package driving

import (
	"context"

	"github.com/custodia-labs/labelrag/internal/core/domain"
)

// LabelService answers questions about a pesticide product from its label.
type LabelService interface {
	// FindAndRetrieve discovers, acquires and indexes label PDFs for the
	// product, then returns cited passages answering the question.
	// "No label found" is a successful result with no passages; only
	// configuration failures and a failed question embedding return an error.
	FindAndRetrieve(ctx context.Context, req domain.FindRequest) (*domain.FindResult, error)
}
