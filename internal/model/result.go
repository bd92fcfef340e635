package model

import "fmt"

// MatchedRule describes one rule the matcher decided applies to a document,
// together with the actions that rule declares.
type MatchedRule struct {
	RuleID     string   `json:"ruleId"`
	RuleName   string   `json:"ruleName"`
	Actions    []Action `json:"actions"`
	Confidence int      `json:"confidence"`
}

// Validate checks the matched rule against the matcher contract.
func (m MatchedRule) Validate() error {
	if m.RuleID == "" {
		return fmt.Errorf("matched rule is missing a rule id")
	}
	if m.Confidence < 0 || m.Confidence > 100 {
		return fmt.Errorf("matched rule %s: confidence %d out of range [0,100]", m.RuleID, m.Confidence)
	}
	for _, action := range m.Actions {
		if err := action.Validate(); err != nil {
			return fmt.Errorf("matched rule %s: %w", m.RuleID, err)
		}
	}
	return nil
}

// ClassificationResult is the sole output of the classification engine and
// the sole input to the action resolver. It is immutable once produced.
type ClassificationResult struct {
	ExpenseCategory     *string       `json:"expenseCategory"`
	AdditionalNotes     string        `json:"additionalNotes"`
	MatchedRules        []MatchedRule `json:"matchedRules"`
	SuggestedCategories []string      `json:"suggestedCategories"`
	OverallConfidence   int           `json:"overallConfidence"`
	ShouldAutoApprove   bool          `json:"shouldAutoApprove"`
	ShouldMarkPaid      bool          `json:"shouldMarkPaid"`
}

// EmptyResult is the result returned when a user has no enabled rules.
func EmptyResult() ClassificationResult {
	return ClassificationResult{
		MatchedRules:        []MatchedRule{},
		SuggestedCategories: []string{},
	}
}

// Validate checks the result against the matcher output schema. A failure
// here is fatal for the classification attempt; the engine never repairs
// malformed matcher output.
func (r ClassificationResult) Validate() error {
	if r.OverallConfidence < 0 || r.OverallConfidence > 100 {
		return fmt.Errorf("overall confidence %d out of range [0,100]", r.OverallConfidence)
	}
	for _, matched := range r.MatchedRules {
		if err := matched.Validate(); err != nil {
			return err
		}
	}
	return nil
}
