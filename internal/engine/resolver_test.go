package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshsymonds/cardflow/internal/model"
)

func strPtr(s string) *string { return &s }

func TestResolveFirstTerminalWins(t *testing.T) {
	result := model.ClassificationResult{
		MatchedRules: []model.MatchedRule{
			{
				RuleID:     "rule-dismiss",
				RuleName:   "Dismiss promotions",
				Confidence: 90,
				Actions:    []model.Action{{Type: model.ActionDismiss}},
			},
			{
				RuleID:     "rule-approve",
				RuleName:   "Approve invoices",
				Confidence: 85,
				Actions:    []model.Action{{Type: model.ActionApprove}},
			},
		},
	}

	plan := Resolve(result)

	require.NotNil(t, plan.TerminalStatus)
	assert.Equal(t, model.CardStatusDismissed, *plan.TerminalStatus)
}

func TestResolveAccumulatesAcrossRules(t *testing.T) {
	result := model.ClassificationResult{
		MatchedRules: []model.MatchedRule{
			{
				RuleID:     "rule-1",
				Confidence: 90,
				Actions: []model.Action{
					{Type: model.ActionApprove},
					{Type: model.ActionAddCategory, Value: "vendors"},
				},
			},
			{
				RuleID:     "rule-2",
				Confidence: 80,
				Actions: []model.Action{
					{Type: model.ActionMarkPaid},
					{Type: model.ActionAddCategory, Value: "recurring"},
					{Type: model.ActionAddCategory, Value: "vendors"},
				},
			},
		},
	}

	plan := Resolve(result)

	require.NotNil(t, plan.TerminalStatus)
	assert.Equal(t, model.CardStatusAuto, *plan.TerminalStatus)
	assert.True(t, plan.MarkPaid)
	assert.Equal(t, []string{"vendors", "recurring"}, plan.CategoriesToAdd)
}

func TestResolveFirstExpenseCategoryWins(t *testing.T) {
	result := model.ClassificationResult{
		MatchedRules: []model.MatchedRule{
			{
				RuleID:     "rule-1",
				Confidence: 90,
				Actions:    []model.Action{{Type: model.ActionSetExpenseCategory, Value: "Software"}},
			},
			{
				RuleID:     "rule-2",
				Confidence: 85,
				Actions:    []model.Action{{Type: model.ActionSetExpenseCategory, Value: "Travel"}},
			},
		},
		ExpenseCategory: strPtr("Ignored"),
	}

	plan := Resolve(result)

	require.NotNil(t, plan.ExpenseCategory)
	assert.Equal(t, "Software", *plan.ExpenseCategory)
}

func TestResolveResultLevelExpenseCategoryFallback(t *testing.T) {
	result := model.ClassificationResult{
		MatchedRules: []model.MatchedRule{
			{
				RuleID:     "rule-1",
				Confidence: 90,
				Actions:    []model.Action{{Type: model.ActionApprove}},
			},
		},
		ExpenseCategory: strPtr("Office Supplies"),
	}

	plan := Resolve(result)

	require.NotNil(t, plan.ExpenseCategory)
	assert.Equal(t, "Office Supplies", *plan.ExpenseCategory)
}

func TestResolveSuggestedCategoriesAreUnioned(t *testing.T) {
	result := model.ClassificationResult{
		MatchedRules: []model.MatchedRule{
			{
				RuleID:     "rule-1",
				Confidence: 90,
				Actions:    []model.Action{{Type: model.ActionAddCategory, Value: "vendors"}},
			},
		},
		SuggestedCategories: []string{"vendors", "software", ""},
	}

	plan := Resolve(result)

	assert.Equal(t, []string{"vendors", "software"}, plan.CategoriesToAdd)
}

func TestResolveDegeneratePath(t *testing.T) {
	t.Run("top-level flags without matched rules", func(t *testing.T) {
		result := model.ClassificationResult{
			MatchedRules:        []model.MatchedRule{},
			SuggestedCategories: []string{"auto"},
			ShouldAutoApprove:   true,
			ShouldMarkPaid:      true,
		}

		plan := Resolve(result)

		require.NotNil(t, plan.TerminalStatus)
		assert.Equal(t, model.CardStatusAuto, *plan.TerminalStatus)
		assert.True(t, plan.MarkPaid)
		assert.Equal(t, []string{"auto"}, plan.CategoriesToAdd)
	})

	t.Run("flags are ignored when rules matched", func(t *testing.T) {
		result := model.ClassificationResult{
			MatchedRules: []model.MatchedRule{
				{
					RuleID:     "rule-1",
					Confidence: 90,
					Actions:    []model.Action{{Type: model.ActionMarkSeen}},
				},
			},
			ShouldAutoApprove: true,
			ShouldMarkPaid:    true,
		}

		plan := Resolve(result)

		require.NotNil(t, plan.TerminalStatus)
		assert.Equal(t, model.CardStatusSeen, *plan.TerminalStatus)
		assert.False(t, plan.MarkPaid)
	})
}

func TestResolveEmptyResult(t *testing.T) {
	plan := Resolve(model.EmptyResult())

	assert.True(t, plan.IsEmpty())
	assert.Nil(t, plan.TerminalStatus)
	assert.Nil(t, plan.ExpenseCategory)
	assert.False(t, plan.MarkPaid)
	assert.Empty(t, plan.CategoriesToAdd)
}

// Scenario coverage mirroring real rule sets end users write.
func TestResolveScenarios(t *testing.T) {
	t.Run("auto-approve small vendor invoice", func(t *testing.T) {
		result := model.ClassificationResult{
			MatchedRules: []model.MatchedRule{{
				RuleID:     "rule-acme",
				RuleName:   "Auto-approve Acme invoices under $500",
				Confidence: 95,
				Actions:    []model.Action{{Type: model.ActionApprove}},
			}},
			ShouldAutoApprove: true,
			OverallConfidence: 95,
		}

		plan := Resolve(result)

		require.NotNil(t, plan.TerminalStatus)
		assert.Equal(t, model.CardStatusAuto, *plan.TerminalStatus)
		assert.False(t, plan.MarkPaid)
	})

	t.Run("dismiss promotional mail", func(t *testing.T) {
		result := model.ClassificationResult{
			MatchedRules: []model.MatchedRule{{
				RuleID:     "rule-promo",
				RuleName:   "Dismiss promotional emails",
				Confidence: 88,
				Actions:    []model.Action{{Type: model.ActionDismiss}},
			}},
			OverallConfidence: 88,
		}

		plan := Resolve(result)

		require.NotNil(t, plan.TerminalStatus)
		assert.Equal(t, model.CardStatusDismissed, *plan.TerminalStatus)
	})

	t.Run("mark small receipts as seen", func(t *testing.T) {
		result := model.ClassificationResult{
			MatchedRules: []model.MatchedRule{{
				RuleID:     "rule-small",
				RuleName:   "Mark receipts under $10 as seen",
				Confidence: 92,
				Actions:    []model.Action{{Type: model.ActionMarkSeen}},
			}},
			OverallConfidence: 92,
		}

		plan := Resolve(result)

		require.NotNil(t, plan.TerminalStatus)
		assert.Equal(t, model.CardStatusSeen, *plan.TerminalStatus)
	})

	t.Run("higher-priority dismiss beats approve", func(t *testing.T) {
		// Matched rules arrive priority-sorted; the dismiss rule is first.
		result := model.ClassificationResult{
			MatchedRules: []model.MatchedRule{
				{
					RuleID:     "rule-dismiss-vendor",
					RuleName:   "Dismiss everything from MailChimp",
					Confidence: 90,
					Actions:    []model.Action{{Type: model.ActionDismiss}},
				},
				{
					RuleID:     "rule-approve-small",
					RuleName:   "Approve invoices under $100",
					Confidence: 85,
					Actions:    []model.Action{{Type: model.ActionApprove}},
				},
			},
			OverallConfidence: 90,
		}

		plan := Resolve(result)

		require.NotNil(t, plan.TerminalStatus)
		assert.Equal(t, model.CardStatusDismissed, *plan.TerminalStatus)
	})

	t.Run("multi-action utility rule", func(t *testing.T) {
		result := model.ClassificationResult{
			MatchedRules: []model.MatchedRule{{
				RuleID:     "rule-utility",
				RuleName:   "File utility bills",
				Confidence: 93,
				Actions: []model.Action{
					{Type: model.ActionApprove},
					{Type: model.ActionMarkPaid},
					{Type: model.ActionAddCategory, Value: "utilities"},
					{Type: model.ActionSetExpenseCategory, Value: "Utilities"},
				},
			}},
			SuggestedCategories: []string{"utilities", "recurring"},
			OverallConfidence:   93,
		}

		plan := Resolve(result)

		require.NotNil(t, plan.TerminalStatus)
		assert.Equal(t, model.CardStatusAuto, *plan.TerminalStatus)
		assert.True(t, plan.MarkPaid)
		assert.Equal(t, []string{"utilities", "recurring"}, plan.CategoriesToAdd)
		require.NotNil(t, plan.ExpenseCategory)
		assert.Equal(t, "Utilities", *plan.ExpenseCategory)
	})
}
