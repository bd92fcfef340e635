package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshsymonds/cardflow/internal/common"
	"github.com/joshsymonds/cardflow/internal/model"
	"github.com/joshsymonds/cardflow/internal/service"
)

func TestCardRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := createTestStorage(t)

	label := model.LabelAutoApproved
	expense := "Software"
	paidAt := time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC)

	c := testCard("card-1", "doc-1")
	c.Status = model.CardStatusAuto
	c.RequiresAction = false
	c.SuggestedActionLabel = &label
	c.PaymentStatus = model.PaymentStatusPaid
	c.PaidAt = &paidAt
	c.ExpenseCategory = &expense
	c.AddedToExpenses = true
	c.Categories = []string{"vendors", "software"}

	require.NoError(t, store.SaveCard(ctx, c))

	got, err := store.GetCard(ctx, "card-1")
	require.NoError(t, err)

	assert.Equal(t, c.UserID, got.UserID)
	assert.Equal(t, c.DocumentID, got.DocumentID)
	assert.Equal(t, model.CardStatusAuto, got.Status)
	assert.False(t, got.RequiresAction)
	require.NotNil(t, got.SuggestedActionLabel)
	assert.Equal(t, label, *got.SuggestedActionLabel)
	assert.Equal(t, model.PaymentStatusPaid, got.PaymentStatus)
	require.NotNil(t, got.PaidAt)
	assert.True(t, paidAt.Equal(*got.PaidAt))
	require.NotNil(t, got.ExpenseCategory)
	assert.Equal(t, expense, *got.ExpenseCategory)
	assert.True(t, got.AddedToExpenses)
	assert.Equal(t, []string{"vendors", "software"}, got.Categories)
}

func TestCardNullableFieldsStayNil(t *testing.T) {
	ctx := context.Background()
	store := createTestStorage(t)

	require.NoError(t, store.SaveCard(ctx, testCard("card-1", "doc-1")))

	got, err := store.GetCard(ctx, "card-1")
	require.NoError(t, err)
	assert.Nil(t, got.SuggestedActionLabel)
	assert.Nil(t, got.PaidAt)
	assert.Nil(t, got.ExpenseCategory)
	assert.Equal(t, []string{}, got.Categories)
}

func TestSaveCardUpserts(t *testing.T) {
	ctx := context.Background()
	store := createTestStorage(t)

	c := testCard("card-1", "doc-1")
	require.NoError(t, store.SaveCard(ctx, c))

	c.Status = model.CardStatusSeen
	c.RequiresAction = false
	c.Categories = []string{"receipts"}
	c.UpdatedAt = c.UpdatedAt.Add(time.Minute)
	require.NoError(t, store.SaveCard(ctx, c))

	got, err := store.GetCard(ctx, "card-1")
	require.NoError(t, err)
	assert.Equal(t, model.CardStatusSeen, got.Status)
	assert.Equal(t, []string{"receipts"}, got.Categories)
}

func TestSaveCardRejectsInvariantViolations(t *testing.T) {
	ctx := context.Background()
	store := createTestStorage(t)

	c := testCard("card-1", "doc-1")
	c.Status = model.CardStatusAuto // still RequiresAction=true

	err := store.SaveCard(ctx, c)
	require.Error(t, err)

	_, err = store.GetCard(ctx, "card-1")
	assert.ErrorIs(t, err, common.ErrCardNotFound, "a rejected card must not reach a row")
}

func TestGetCardByDocument(t *testing.T) {
	ctx := context.Background()
	store := createTestStorage(t)

	require.NoError(t, store.SaveCard(ctx, testCard("card-1", "doc-1")))

	got, err := store.GetCardByDocument(ctx, "doc-1")
	require.NoError(t, err)
	assert.Equal(t, "card-1", got.ID)

	_, err = store.GetCardByDocument(ctx, "doc-unknown")
	assert.ErrorIs(t, err, common.ErrCardNotFound)
}

func TestListCardsFiltering(t *testing.T) {
	ctx := context.Background()
	store := createTestStorage(t)

	pendingCard := testCard("card-pending", "doc-1")

	seenCard := testCard("card-seen", "doc-2")
	seenCard.Status = model.CardStatusSeen
	seenCard.RequiresAction = false
	seenCard.CreatedAt = pendingCard.CreatedAt.Add(time.Minute)

	otherUser := testCard("card-other", "doc-3")
	otherUser.UserID = "user-2"

	require.NoError(t, store.SaveCard(ctx, pendingCard))
	require.NoError(t, store.SaveCard(ctx, seenCard))
	require.NoError(t, store.SaveCard(ctx, otherUser))

	t.Run("by user", func(t *testing.T) {
		cards, err := store.ListCards(ctx, service.CardFilter{UserID: "user-1"})
		require.NoError(t, err)
		require.Len(t, cards, 2)
		// Most recent first.
		assert.Equal(t, "card-seen", cards[0].ID)
		assert.Equal(t, "card-pending", cards[1].ID)
	})

	t.Run("by status", func(t *testing.T) {
		pending := model.CardStatusPending
		cards, err := store.ListCards(ctx, service.CardFilter{UserID: "user-1", Status: &pending})
		require.NoError(t, err)
		require.Len(t, cards, 1)
		assert.Equal(t, "card-pending", cards[0].ID)
	})

	t.Run("with limit", func(t *testing.T) {
		cards, err := store.ListCards(ctx, service.CardFilter{UserID: "user-1", Limit: 1})
		require.NoError(t, err)
		require.Len(t, cards, 1)
		assert.Equal(t, "card-seen", cards[0].ID)
	})

	t.Run("with offset", func(t *testing.T) {
		cards, err := store.ListCards(ctx, service.CardFilter{UserID: "user-1", Limit: 1, Offset: 1})
		require.NoError(t, err)
		require.Len(t, cards, 1)
		assert.Equal(t, "card-pending", cards[0].ID)
	})
}

func TestTransactionRollback(t *testing.T) {
	ctx := context.Background()
	store := createTestStorage(t)

	tx, err := store.BeginTx(ctx)
	require.NoError(t, err)

	require.NoError(t, tx.SaveCard(ctx, testCard("card-1", "doc-1")))
	require.NoError(t, tx.Rollback())

	_, err = store.GetCard(ctx, "card-1")
	assert.ErrorIs(t, err, common.ErrCardNotFound)
}

func TestTransactionCommit(t *testing.T) {
	ctx := context.Background()
	store := createTestStorage(t)

	tx, err := store.BeginTx(ctx)
	require.NoError(t, err)

	require.NoError(t, tx.SaveCard(ctx, testCard("card-1", "doc-1")))
	require.NoError(t, tx.SaveClassificationLog(ctx, []model.ClassificationLogEntry{{
		CardID:     "card-1",
		RuleID:     "rule-1",
		RuleName:   "Rule rule-1",
		Confidence: 90,
		Actions:    []model.Action{{Type: model.ActionMarkSeen}},
	}}))
	require.NoError(t, tx.Commit())

	got, err := store.GetCard(ctx, "card-1")
	require.NoError(t, err)
	assert.Equal(t, "card-1", got.ID)

	entries, err := store.GetClassificationLog(ctx, "card-1")
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}
