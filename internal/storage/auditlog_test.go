package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshsymonds/cardflow/internal/model"
)

func TestClassificationLogRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := createTestStorage(t)

	classifiedAt := time.Date(2026, 3, 2, 14, 0, 0, 0, time.UTC)
	entries := []model.ClassificationLogEntry{
		{
			CardID:       "card-1",
			RuleID:       "rule-dismiss",
			RuleName:     "Dismiss promotions",
			Confidence:   88,
			Actions:      []model.Action{{Type: model.ActionDismiss}},
			ClassifiedAt: classifiedAt,
		},
		{
			CardID:     "card-1",
			RuleID:     "rule-tag",
			RuleName:   "Tag vendors",
			Confidence: 92,
			Actions: []model.Action{
				{Type: model.ActionAddCategory, Value: "vendors"},
				{Type: model.ActionSetExpenseCategory, Value: "Software"},
			},
			ClassifiedAt: classifiedAt,
		},
	}

	require.NoError(t, store.SaveClassificationLog(ctx, entries))

	got, err := store.GetClassificationLog(ctx, "card-1")
	require.NoError(t, err)
	require.Len(t, got, 2)

	// Insertion order is preserved.
	assert.Equal(t, "rule-dismiss", got[0].RuleID)
	assert.Equal(t, "rule-tag", got[1].RuleID)
	assert.Equal(t, 88, got[0].Confidence)
	require.Len(t, got[1].Actions, 2)
	assert.Equal(t, model.ActionAddCategory, got[1].Actions[0].Type)
	assert.Equal(t, "vendors", got[1].Actions[0].Value)
	assert.True(t, classifiedAt.Equal(got[0].ClassifiedAt))
}

func TestClassificationLogEmpty(t *testing.T) {
	store := createTestStorage(t)

	got, err := store.GetClassificationLog(context.Background(), "card-unknown")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSaveClassificationLogDefaultsTimestamp(t *testing.T) {
	ctx := context.Background()
	store := createTestStorage(t)

	require.NoError(t, store.SaveClassificationLog(ctx, []model.ClassificationLogEntry{{
		CardID:     "card-1",
		RuleID:     "rule-1",
		RuleName:   "Rule",
		Confidence: 50,
	}}))

	got, err := store.GetClassificationLog(ctx, "card-1")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.WithinDuration(t, time.Now(), got[0].ClassifiedAt, time.Minute)
}
