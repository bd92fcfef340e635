package engine

import (
	"context"

	"github.com/joshsymonds/cardflow/internal/model"
)

// Matcher defines the contract for the LLM-backed rule matcher. Rules are
// always handed over pre-sorted by priority ascending; the matcher decides
// which rules apply to the document and with what actions. The engine
// treats it as an oracle and validates everything it returns.
type Matcher interface {
	Match(ctx context.Context, doc *model.ProcessedDocument, rules []model.ClassificationRule) (model.ClassificationResult, error)
}
