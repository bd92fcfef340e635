package model

// MutationPlan is the deterministic, order-independent reduction of a
// ClassificationResult, ready to apply to a card. The state machine never
// has to reason about rule ordering: any conflict between matched rules has
// already been resolved by the time a plan exists.
//
// MarkPaid and CategoriesToAdd accumulate across all matched rules;
// TerminalStatus and ExpenseCategory come from the first rule that set them.
type MutationPlan struct {
	TerminalStatus  *CardStatus
	ExpenseCategory *string
	CategoriesToAdd []string
	MarkPaid        bool
}

// IsEmpty reports whether applying the plan would change nothing on a
// freshly created pending card.
func (p MutationPlan) IsEmpty() bool {
	return p.TerminalStatus == nil && !p.MarkPaid && len(p.CategoriesToAdd) == 0 && p.ExpenseCategory == nil
}
