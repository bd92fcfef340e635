// Package testutil provides shared test helpers.
package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/joshsymonds/cardflow/internal/model"
	"github.com/joshsymonds/cardflow/internal/storage"
)

// SetupTestDB creates an in-memory SQLite database with migrations applied.
// The database is closed automatically when the test finishes.
func SetupTestDB(t *testing.T) *storage.SQLiteStorage {
	t.Helper()

	store, err := storage.NewSQLiteStorage(":memory:")
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = store.Close()
	})

	require.NoError(t, store.Migrate(context.Background()))

	return store
}

// TestRule builds an enabled classification rule with sensible defaults.
func TestRule(id, userID, name, prompt string, priority int) model.ClassificationRule {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	return model.ClassificationRule{
		ID:        id,
		UserID:    userID,
		Name:      name,
		Prompt:    prompt,
		Enabled:   true,
		Priority:  priority,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// TestDocument builds a processed invoice document with sensible defaults.
func TestDocument(id, seller, amount string) model.ProcessedDocument {
	amt := decimal.RequireFromString(amount)
	issued := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	due := time.Date(2026, 4, 15, 0, 0, 0, 0, time.UTC)
	return model.ProcessedDocument{
		ID:               id,
		DocumentType:     model.DocumentTypeInvoice,
		CardTitle:        "Invoice from " + seller,
		ExtractedSummary: "Invoice from " + seller + " for " + amount + " USD",
		InvoiceNumber:    "INV-" + id,
		SellerName:       seller,
		BuyerName:        "Cardflow Test Co",
		Amount:           &amt,
		Currency:         "USD",
		IssueDate:        &issued,
		DueDate:          &due,
		Confidence:       95,
		RequiresAction:   true,
	}
}
