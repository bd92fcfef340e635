package engine

import "github.com/joshsymonds/cardflow/internal/model"

// Resolve reduces a validated classification result into a single coherent
// mutation plan. The matcher is instructed to emit only the winning rule's
// actions when rules conflict, but that instruction lives in a prompt, so
// it is never trusted: the reducer re-derives a conflict-free plan here.
//
// Matched rules are iterated in the order received, which is the
// priority-ascending order the rules were sent in. The first terminal
// action (approve/dismiss/mark_seen) and the first set_expense_category
// win; mark_paid and add_category accumulate from every matched rule.
// First-match-wins also settles ties between rules with equal priority.
func Resolve(result model.ClassificationResult) model.MutationPlan {
	var plan model.MutationPlan
	categories := newCategorySet()

	for _, matched := range result.MatchedRules {
		for _, action := range matched.Actions {
			if status, terminal := action.TerminalStatus(); terminal {
				if plan.TerminalStatus == nil {
					s := status
					plan.TerminalStatus = &s
				}
				continue
			}
			switch action.Type {
			case model.ActionMarkPaid:
				plan.MarkPaid = true
			case model.ActionAddCategory:
				categories.add(action.Value)
			case model.ActionSetExpenseCategory:
				if plan.ExpenseCategory == nil {
					value := action.Value
					plan.ExpenseCategory = &value
				}
			}
		}
	}

	for _, category := range result.SuggestedCategories {
		categories.add(category)
	}

	// Degenerate path: some callers set the top-level flags without any
	// matched rules. Honor them as if a single synthetic rule had matched.
	if len(result.MatchedRules) == 0 {
		if result.ShouldAutoApprove && plan.TerminalStatus == nil {
			status := model.CardStatusAuto
			plan.TerminalStatus = &status
		}
		if result.ShouldMarkPaid {
			plan.MarkPaid = true
		}
	}

	// The result-level expense category backs up the action form: the
	// matcher sets both when a rule mentions expenses, and older rule sets
	// only produce the top-level field.
	if plan.ExpenseCategory == nil && result.ExpenseCategory != nil {
		value := *result.ExpenseCategory
		plan.ExpenseCategory = &value
	}

	plan.CategoriesToAdd = categories.values()
	return plan
}

// categorySet keeps insertion order while deduplicating.
type categorySet struct {
	seen  map[string]struct{}
	order []string
}

func newCategorySet() *categorySet {
	return &categorySet{seen: make(map[string]struct{})}
}

func (s *categorySet) add(value string) {
	if value == "" {
		return
	}
	if _, dup := s.seen[value]; dup {
		return
	}
	s.seen[value] = struct{}{}
	s.order = append(s.order, value)
}

func (s *categorySet) values() []string {
	return s.order
}
