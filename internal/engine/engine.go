// Package engine implements the core classification engine: it retrieves a
// user's rules, invokes the rule matcher, validates the result, reduces it
// to a mutation plan, and applies the plan to the document's card.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/joshsymonds/cardflow/internal/card"
	"github.com/joshsymonds/cardflow/internal/common"
	"github.com/joshsymonds/cardflow/internal/model"
	"github.com/joshsymonds/cardflow/internal/service"
)

// Engine orchestrates the classification of processed documents.
type Engine struct {
	storage service.Storage
	matcher Matcher
	timeout time.Duration
}

// Config holds configuration options for the classification engine.
type Config struct {
	// MatcherTimeout bounds the rule matcher call. On expiry no partial
	// result is accepted and the card is left untouched.
	MatcherTimeout time.Duration
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		MatcherTimeout: 60 * time.Second,
	}
}

// New creates a new classification engine with the given dependencies.
func New(storage service.Storage, matcher Matcher) *Engine {
	return NewWithConfig(storage, matcher, DefaultConfig())
}

// NewWithConfig creates a new classification engine with custom configuration.
func NewWithConfig(storage service.Storage, matcher Matcher, config Config) *Engine {
	if config.MatcherTimeout <= 0 {
		config.MatcherTimeout = DefaultConfig().MatcherTimeout
	}
	return &Engine{
		storage: storage,
		matcher: matcher,
		timeout: config.MatcherTimeout,
	}
}

// Classify matches a processed document against the user's enabled rules.
// It is a pure function of its inputs plus the matcher's response: no side
// effects beyond the external call. An empty rule list short-circuits to an
// empty result without calling the matcher at all.
func (e *Engine) Classify(ctx context.Context, doc *model.ProcessedDocument, userID string) (model.ClassificationResult, error) {
	rules, err := e.storage.ListEnabledRules(ctx, userID)
	if err != nil {
		return model.ClassificationResult{}, fmt.Errorf("%w: %v", common.ErrRuleRetrieval, err)
	}

	if len(rules) == 0 {
		slog.Debug("no enabled rules, skipping matcher call",
			"user_id", userID,
			"document_id", doc.ID)
		return model.EmptyResult(), nil
	}

	// Storage already orders by priority, but the matcher contract depends
	// on it, so enforce it here rather than trusting the query.
	model.SortRulesByPriority(rules)

	matchCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	result, err := e.matcher.Match(matchCtx, doc, rules)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return model.ClassificationResult{}, fmt.Errorf("%w: %v", common.ErrMatcherTimeout, err)
		}
		return model.ClassificationResult{}, fmt.Errorf("rule matcher call failed: %w", err)
	}

	if err := result.Validate(); err != nil {
		slog.Error("matcher response failed validation",
			"user_id", userID,
			"document_id", doc.ID,
			"error", err)
		if errors.Is(err, model.ErrUnknownAction) {
			return model.ClassificationResult{}, fmt.Errorf("%w: %v", common.ErrInvalidAction, err)
		}
		return model.ClassificationResult{}, fmt.Errorf("%w: %v", common.ErrMatcherSchema, err)
	}

	slog.Info("document classified",
		"user_id", userID,
		"document_id", doc.ID,
		"matched_rules", len(result.MatchedRules),
		"overall_confidence", result.OverallConfidence)

	return result, nil
}

// ProcessDocument runs the full pipeline for one document: persist the
// document, find or create its pending card, classify, resolve, and apply
// the resulting plan atomically. Any classification failure leaves the card
// pending with requiresAction intact, which is indistinguishable from "not
// yet classified".
func (e *Engine) ProcessDocument(ctx context.Context, doc *model.ProcessedDocument, userID string) (*model.Card, error) {
	if err := e.storage.SaveDocument(ctx, doc); err != nil {
		return nil, fmt.Errorf("failed to save document: %w", err)
	}

	c, err := e.storage.GetCardByDocument(ctx, doc.ID)
	if err != nil {
		if !errors.Is(err, common.ErrCardNotFound) {
			return nil, fmt.Errorf("failed to load card: %w", err)
		}
		c = model.NewCard(userID, doc)
		if err := e.storage.SaveCard(ctx, c); err != nil {
			return nil, fmt.Errorf("failed to create card: %w", err)
		}
	}

	result, err := e.Classify(ctx, doc, userID)
	if err != nil {
		// The card stays pending; the caller may retry the whole pipeline.
		return nil, err
	}

	return e.apply(ctx, c, result)
}

// ReclassifyCard re-runs classification for an existing card from its
// persisted state, for when rules changed after the card surfaced. Safe to
// race with an in-flight run: applying a plan is idempotent and the card
// write is a single atomic row update, so the later commit wins.
func (e *Engine) ReclassifyCard(ctx context.Context, cardID string) (*model.Card, error) {
	c, err := e.storage.GetCard(ctx, cardID)
	if err != nil {
		return nil, err
	}

	doc, err := e.storage.GetDocument(ctx, c.DocumentID)
	if err != nil {
		return nil, err
	}

	result, err := e.Classify(ctx, doc, c.UserID)
	if err != nil {
		return nil, err
	}

	return e.apply(ctx, c, result)
}

// apply reduces the result to a plan, runs the state machine, and commits
// the new card state plus its audit trail in one transaction.
func (e *Engine) apply(ctx context.Context, c *model.Card, result model.ClassificationResult) (*model.Card, error) {
	plan := Resolve(result)
	updated := card.ApplyPlan(c, plan, time.Now())

	if err := updated.CheckInvariants(); err != nil {
		return nil, fmt.Errorf("refusing to persist card: %w", err)
	}

	tx, err := e.storage.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := tx.SaveCard(ctx, updated); err != nil {
		return nil, fmt.Errorf("failed to save card: %w", err)
	}

	if entries := auditEntries(updated.ID, result); len(entries) > 0 {
		if err := tx.SaveClassificationLog(ctx, entries); err != nil {
			return nil, fmt.Errorf("failed to save classification log: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit card update: %w", err)
	}

	slog.Info("card updated",
		"card_id", updated.ID,
		"status", updated.Status,
		"payment_status", updated.PaymentStatus,
		"categories", len(updated.Categories))

	return updated, nil
}

func auditEntries(cardID string, result model.ClassificationResult) []model.ClassificationLogEntry {
	now := time.Now()
	entries := make([]model.ClassificationLogEntry, 0, len(result.MatchedRules))
	for _, matched := range result.MatchedRules {
		entries = append(entries, model.ClassificationLogEntry{
			CardID:       cardID,
			RuleID:       matched.RuleID,
			RuleName:     matched.RuleName,
			Confidence:   matched.Confidence,
			Actions:      append([]model.Action(nil), matched.Actions...),
			ClassifiedAt: now,
		})
	}
	return entries
}
