package matcher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/joshsymonds/cardflow/internal/common"
	"github.com/joshsymonds/cardflow/internal/model"
	"github.com/joshsymonds/cardflow/internal/service"
)

// Matcher wraps an LLM client with rate limiting and bounded retry. It
// implements the engine.Matcher interface.
type Matcher struct {
	client      Client
	logger      *slog.Logger
	rateLimiter *rateLimiter
	retryOpts   service.RetryOptions
}

// Config holds configuration for the rule matcher.
type Config struct {
	Provider    string
	APIKey      string
	Model       string
	MaxRetries  int
	RetryDelay  time.Duration
	RateLimit   int
	Temperature float32
}

// New creates a new LLM-backed rule matcher.
func New(cfg Config, logger *slog.Logger) (*Matcher, error) {
	var client Client
	var err error

	switch strings.ToLower(cfg.Provider) {
	case "", "openai":
		client, err = newOpenAIClient(cfg)
	default:
		return nil, fmt.Errorf("%w: unsupported matcher provider: %s", common.ErrInvalidConfig, cfg.Provider)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to create matcher client: %w", err)
	}

	retryOpts := service.RetryOptions{
		MaxAttempts:  cfg.MaxRetries,
		InitialDelay: cfg.RetryDelay,
		MaxDelay:     30 * time.Second,
		Multiplier:   2.0,
	}
	if retryOpts.MaxAttempts == 0 {
		retryOpts.MaxAttempts = 3
	}
	if retryOpts.InitialDelay == 0 {
		retryOpts.InitialDelay = time.Second
	}

	return &Matcher{
		client:      client,
		logger:      logger,
		retryOpts:   retryOpts,
		rateLimiter: newRateLimiter(cfg.RateLimit),
	}, nil
}

// Match sends the document and priority-sorted rules to the model. Only
// transport failures are retried; a response that parses but violates the
// schema comes back immediately, because the model already answered and a
// retry would just repair around bad output.
func (m *Matcher) Match(ctx context.Context, doc *model.ProcessedDocument, rules []model.ClassificationRule) (model.ClassificationResult, error) {
	if err := m.rateLimiter.wait(ctx); err != nil {
		return model.ClassificationResult{}, fmt.Errorf("rate limit error: %w", err)
	}

	var result model.ClassificationResult

	err := common.WithRetry(ctx, func() error {
		m.logger.Debug("attempting rule match",
			"document_id", doc.ID,
			"rule_count", len(rules))

		response, err := m.client.Match(ctx, doc, rules)
		if err != nil {
			if errors.Is(err, common.ErrMatcherSchema) || errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
				return &common.RetryableError{Err: err, Retryable: false}
			}
			m.logger.Warn("rule match attempt failed",
				"error", err,
				"document_id", doc.ID)
			return &common.RetryableError{Err: err, Retryable: true}
		}

		result = response
		return nil
	}, m.retryOpts)

	if err != nil {
		var retryable *common.RetryableError
		if errors.As(err, &retryable) {
			return model.ClassificationResult{}, retryable.Err
		}
		return model.ClassificationResult{}, fmt.Errorf("rule match failed: %w", err)
	}

	m.logger.Info("rules matched",
		"document_id", doc.ID,
		"matched", len(result.MatchedRules),
		"overall_confidence", result.OverallConfidence)

	return result, nil
}

// Close stops background goroutines and cleans up resources.
func (m *Matcher) Close() error {
	if m.rateLimiter != nil {
		m.rateLimiter.Close()
	}
	return nil
}
