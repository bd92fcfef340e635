package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshsymonds/cardflow/internal/common"
)

func TestSaveAndGetRule(t *testing.T) {
	ctx := context.Background()
	store := createTestStorage(t)

	rule := testRule("rule-1", 10)
	require.NoError(t, store.SaveRule(ctx, &rule))

	got, err := store.GetRule(ctx, "rule-1")
	require.NoError(t, err)
	assert.Equal(t, rule.ID, got.ID)
	assert.Equal(t, rule.Name, got.Name)
	assert.Equal(t, rule.Prompt, got.Prompt)
	assert.Equal(t, rule.Priority, got.Priority)
	assert.True(t, got.Enabled)
}

func TestSaveRuleUpserts(t *testing.T) {
	ctx := context.Background()
	store := createTestStorage(t)

	rule := testRule("rule-1", 10)
	require.NoError(t, store.SaveRule(ctx, &rule))

	rule.Prompt = "Updated criterion"
	rule.Priority = 5
	rule.UpdatedAt = rule.UpdatedAt.Add(time.Hour)
	require.NoError(t, store.SaveRule(ctx, &rule))

	got, err := store.GetRule(ctx, "rule-1")
	require.NoError(t, err)
	assert.Equal(t, "Updated criterion", got.Prompt)
	assert.Equal(t, 5, got.Priority)
}

func TestGetRuleNotFound(t *testing.T) {
	store := createTestStorage(t)

	_, err := store.GetRule(context.Background(), "missing")
	assert.ErrorIs(t, err, common.ErrRuleNotFound)
}

func TestListEnabledRulesOrdering(t *testing.T) {
	ctx := context.Background()
	store := createTestStorage(t)

	third := testRule("rule-third", 30)
	first := testRule("rule-first", 1)
	second := testRule("rule-second", 10)
	disabled := testRule("rule-disabled", 2)
	disabled.Enabled = false

	require.NoError(t, store.SaveRule(ctx, &third))
	require.NoError(t, store.SaveRule(ctx, &first))
	require.NoError(t, store.SaveRule(ctx, &second))
	require.NoError(t, store.SaveRule(ctx, &disabled))

	rules, err := store.ListEnabledRules(ctx, "user-1")
	require.NoError(t, err)

	require.Len(t, rules, 3)
	assert.Equal(t, "rule-first", rules[0].ID)
	assert.Equal(t, "rule-second", rules[1].ID)
	assert.Equal(t, "rule-third", rules[2].ID)
}

func TestListEnabledRulesScopedToUser(t *testing.T) {
	ctx := context.Background()
	store := createTestStorage(t)

	mine := testRule("rule-mine", 10)
	theirs := testRule("rule-theirs", 1)
	theirs.UserID = "user-2"
	require.NoError(t, store.SaveRule(ctx, &mine))
	require.NoError(t, store.SaveRule(ctx, &theirs))

	rules, err := store.ListEnabledRules(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, rules, 1)
	assert.Equal(t, "rule-mine", rules[0].ID)
}

func TestListRulesIncludesDisabled(t *testing.T) {
	ctx := context.Background()
	store := createTestStorage(t)

	enabled := testRule("rule-on", 10)
	disabled := testRule("rule-off", 20)
	disabled.Enabled = false
	require.NoError(t, store.SaveRule(ctx, &enabled))
	require.NoError(t, store.SaveRule(ctx, &disabled))

	rules, err := store.ListRules(ctx, "user-1")
	require.NoError(t, err)
	assert.Len(t, rules, 2)
}

func TestSetRuleEnabled(t *testing.T) {
	ctx := context.Background()
	store := createTestStorage(t)

	rule := testRule("rule-1", 10)
	require.NoError(t, store.SaveRule(ctx, &rule))

	require.NoError(t, store.SetRuleEnabled(ctx, "rule-1", false))

	enabled, err := store.ListEnabledRules(ctx, "user-1")
	require.NoError(t, err)
	assert.Empty(t, enabled)

	require.NoError(t, store.SetRuleEnabled(ctx, "rule-1", true))

	enabled, err = store.ListEnabledRules(ctx, "user-1")
	require.NoError(t, err)
	assert.Len(t, enabled, 1)
}

func TestSetRuleEnabledNotFound(t *testing.T) {
	store := createTestStorage(t)

	err := store.SetRuleEnabled(context.Background(), "missing", true)
	assert.ErrorIs(t, err, common.ErrRuleNotFound)
}

func TestDeleteRule(t *testing.T) {
	ctx := context.Background()
	store := createTestStorage(t)

	rule := testRule("rule-1", 10)
	require.NoError(t, store.SaveRule(ctx, &rule))

	require.NoError(t, store.DeleteRule(ctx, "rule-1"))

	_, err := store.GetRule(ctx, "rule-1")
	assert.ErrorIs(t, err, common.ErrRuleNotFound)

	assert.ErrorIs(t, store.DeleteRule(ctx, "rule-1"), common.ErrRuleNotFound)
}
