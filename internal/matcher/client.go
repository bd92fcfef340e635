// Package matcher implements the LLM-backed rule matcher boundary. The
// matcher decides which user rules apply to a document; everything it
// returns is schema-validated before the rest of the pipeline sees it.
package matcher

import (
	"context"

	"github.com/joshsymonds/cardflow/internal/model"
)

// Client defines the interface for LLM matcher backends.
type Client interface {
	// Match sends the document and rules to the model and returns its raw
	// parsed response. Transport failures are retryable; responses that
	// fail to parse are not.
	Match(ctx context.Context, doc *model.ProcessedDocument, rules []model.ClassificationRule) (model.ClassificationResult, error)
}
