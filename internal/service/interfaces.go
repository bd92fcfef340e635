// Package service defines the interfaces for all application services.
package service

import (
	"context"
	"time"

	"github.com/joshsymonds/cardflow/internal/model"
)

// CardFilter defines filtering options for card queries.
type CardFilter struct {
	Status *model.CardStatus
	UserID string
	Limit  int
	Offset int
}

// Storage defines the contract for our persistence layer.
type Storage interface {
	// Rule operations. ListEnabledRules returns rules sorted by priority
	// ascending; the engine passes them to the matcher in that order.
	ListEnabledRules(ctx context.Context, userID string) ([]model.ClassificationRule, error)
	ListRules(ctx context.Context, userID string) ([]model.ClassificationRule, error)
	GetRule(ctx context.Context, id string) (*model.ClassificationRule, error)
	SaveRule(ctx context.Context, rule *model.ClassificationRule) error
	SetRuleEnabled(ctx context.Context, id string, enabled bool) error
	DeleteRule(ctx context.Context, id string) error

	// Document operations. Documents are insert-only versions.
	SaveDocument(ctx context.Context, doc *model.ProcessedDocument) error
	GetDocument(ctx context.Context, id string) (*model.ProcessedDocument, error)

	// Card operations. SaveCard is an atomic single-row write: either the
	// whole card state commits or none of it does.
	GetCard(ctx context.Context, id string) (*model.Card, error)
	GetCardByDocument(ctx context.Context, documentID string) (*model.Card, error)
	SaveCard(ctx context.Context, card *model.Card) error
	ListCards(ctx context.Context, filter CardFilter) ([]model.Card, error)

	// Classification audit log.
	SaveClassificationLog(ctx context.Context, entries []model.ClassificationLogEntry) error
	GetClassificationLog(ctx context.Context, cardID string) ([]model.ClassificationLogEntry, error)

	// Database management
	Migrate(ctx context.Context) error
	BeginTx(ctx context.Context) (Transaction, error)
	Close() error
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit() error
	Rollback() error
	// Include all Storage methods for use within transaction
	Storage
}

// RetryOptions configures retry behavior for operations.
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}

// CompletionStats shows the results of a classification run.
type CompletionStats struct {
	Duration     time.Duration
	TotalCards   int
	Classified   int
	AutoResolved int
	Failed       int
}
