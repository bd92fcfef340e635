package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/viper"

	"github.com/joshsymonds/cardflow/internal/common"
	"github.com/joshsymonds/cardflow/internal/config"
	"github.com/joshsymonds/cardflow/internal/matcher"
	"github.com/joshsymonds/cardflow/internal/storage"
)

// initStorage opens the configured database and applies pending migrations.
// This function is shared by every command that touches persistence.
func initStorage(ctx context.Context) (*storage.SQLiteStorage, error) {
	dbPath := config.DatabasePath(viper.GetString("database.path"))

	db, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Migrate(ctx); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			slog.Error("failed to close database", "error", closeErr)
		}
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return db, nil
}

// createMatcher builds the rule matcher from viper configuration.
func createMatcher() (*matcher.Matcher, error) {
	provider := viper.GetString("matcher.provider")
	if provider == "" {
		provider = "openai"
	}

	apiKey := viper.GetString("matcher.openai_api_key")
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}
	if apiKey == "" {
		return nil, common.NewUserError("OpenAI API key not found in config or OPENAI_API_KEY environment variable", common.ErrMissingConfig)
	}

	cfg := matcher.Config{
		Provider:    provider,
		APIKey:      apiKey,
		Model:       viper.GetString("matcher.model"),
		MaxRetries:  viper.GetInt("matcher.max_retries"),
		RetryDelay:  viper.GetDuration("matcher.retry_delay"),
		RateLimit:   viper.GetInt("matcher.rate_limit"),
		Temperature: float32(viper.GetFloat64("matcher.temperature")),
	}

	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 3
	}
	if cfg.RetryDelay == 0 {
		cfg.RetryDelay = time.Second
	}
	if cfg.RateLimit == 0 {
		cfg.RateLimit = 60 // requests per minute
	}

	m, err := matcher.New(cfg, slog.Default())
	if err != nil {
		return nil, fmt.Errorf("failed to create rule matcher: %w", err)
	}

	return m, nil
}

// requireUserID reads the user flag shared by several commands.
func requireUserID() (string, error) {
	userID := viper.GetString("user.id")
	if userID == "" {
		return "", common.NewUserError("user ID is required (set --user or user.id in config)", common.ErrMissingConfig)
	}
	return userID, nil
}
