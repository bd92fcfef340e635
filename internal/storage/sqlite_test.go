package storage

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/joshsymonds/cardflow/internal/model"
)

func createTestStorage(t *testing.T) *SQLiteStorage {
	t.Helper()

	store, err := NewSQLiteStorage(":memory:")
	require.NoError(t, err)

	t.Cleanup(func() { _ = store.Close() })

	require.NoError(t, store.Migrate(context.Background()))
	return store
}

func testRule(id string, priority int) model.ClassificationRule {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	return model.ClassificationRule{
		ID:        id,
		UserID:    "user-1",
		Name:      "Rule " + id,
		Prompt:    "Match documents for " + id,
		Enabled:   true,
		Priority:  priority,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func testDocument(id string) model.ProcessedDocument {
	amount := decimal.RequireFromString("249.99")
	due := time.Date(2026, 4, 15, 0, 0, 0, 0, time.UTC)
	return model.ProcessedDocument{
		ID:             id,
		DocumentType:   model.DocumentTypeInvoice,
		CardTitle:      "Invoice " + id,
		SellerName:     "Acme Corp",
		Amount:         &amount,
		Currency:       "USD",
		DueDate:        &due,
		InvoiceNumber:  "INV-" + id,
		Confidence:     90,
		RequiresAction: true,
		Items: []model.LineItem{{
			Description: "Widget",
			Quantity:    decimal.NewFromInt(2),
			UnitPrice:   decimal.RequireFromString("124.995"),
			Amount:      decimal.RequireFromString("249.99"),
		}},
	}
}

func testCard(id, documentID string) *model.Card {
	now := time.Date(2026, 3, 1, 11, 0, 0, 0, time.UTC)
	return &model.Card{
		ID:             id,
		UserID:         "user-1",
		DocumentID:     documentID,
		Status:         model.CardStatusPending,
		PaymentStatus:  model.PaymentStatusUnpaid,
		RequiresAction: true,
		Categories:     []string{},
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}
