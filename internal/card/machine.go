// Package card implements the card state machine: the single place where a
// mutation plan is turned into new card state.
package card

import (
	"time"

	"github.com/joshsymonds/cardflow/internal/model"
)

// ApplyPlan applies a mutation plan to a card and returns the resulting
// card value. It is a pure, total function: it never fails for well-formed
// inputs, never mutates its argument, and never produces a card that
// violates the model invariants.
//
// Applying the same plan twice is a no-op the second time, which makes the
// whole pipeline safe to re-run after a transient failure.
func ApplyPlan(c *model.Card, plan model.MutationPlan, now time.Time) *model.Card {
	next := c.Clone()

	if plan.TerminalStatus != nil && next.Status == model.CardStatusPending {
		next.Status = *plan.TerminalStatus
		next.RequiresAction = false
		label := labelFor(*plan.TerminalStatus)
		if label != "" {
			next.SuggestedActionLabel = &label
		}
	}

	if plan.MarkPaid && next.PaymentStatus != model.PaymentStatusPaid {
		next.PaymentStatus = model.PaymentStatusPaid
		paidAt := now
		next.PaidAt = &paidAt
	}

	for _, category := range plan.CategoriesToAdd {
		next.AddCategory(category)
	}

	if plan.ExpenseCategory != nil {
		expense := *plan.ExpenseCategory
		next.ExpenseCategory = &expense
		next.AddedToExpenses = true
	}

	if !changed(c, next) {
		return c.Clone()
	}

	next.UpdatedAt = now
	return next
}

func labelFor(status model.CardStatus) string {
	switch status {
	case model.CardStatusAuto:
		return model.LabelAutoApproved
	case model.CardStatusDismissed:
		return model.LabelAutoDismissed
	case model.CardStatusSeen:
		return model.LabelAutoSeen
	default:
		return ""
	}
}

// changed compares the fields ApplyPlan may touch. UpdatedAt only moves when
// something else did, so re-applying a plan leaves the card byte-identical.
func changed(before, after *model.Card) bool {
	if before.Status != after.Status ||
		before.RequiresAction != after.RequiresAction ||
		before.PaymentStatus != after.PaymentStatus ||
		before.AddedToExpenses != after.AddedToExpenses {
		return true
	}
	if len(before.Categories) != len(after.Categories) {
		return true
	}
	if !equalPtr(before.PaidAt, after.PaidAt, func(a, b time.Time) bool { return a.Equal(b) }) {
		return true
	}
	if !equalPtr(before.SuggestedActionLabel, after.SuggestedActionLabel, func(a, b string) bool { return a == b }) {
		return true
	}
	if !equalPtr(before.ExpenseCategory, after.ExpenseCategory, func(a, b string) bool { return a == b }) {
		return true
	}
	return false
}

func equalPtr[T any](a, b *T, eq func(T, T) bool) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return eq(*a, *b)
}
