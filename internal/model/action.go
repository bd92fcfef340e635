package model

import (
	"errors"
	"fmt"
)

// ErrUnknownAction marks an action whose type is outside the closed set.
var ErrUnknownAction = errors.New("unknown action type")

// ActionType is the closed set of instructions a rule may declare.
type ActionType string

// Action type constants. Anything outside this set fails validation.
const (
	ActionApprove            ActionType = "approve"
	ActionDismiss            ActionType = "dismiss"
	ActionMarkSeen           ActionType = "mark_seen"
	ActionMarkPaid           ActionType = "mark_paid"
	ActionAddCategory        ActionType = "add_category"
	ActionSetExpenseCategory ActionType = "set_expense_category"
)

// Action is a single declarative instruction carried by a matched rule.
// It has no identity of its own. Value is only meaningful for the
// add_category and set_expense_category kinds.
type Action struct {
	Type  ActionType `json:"type"`
	Value string     `json:"value,omitempty"`
}

// Validate rejects unknown action types and value-carrying actions without
// a value. Unknown types are an error, never silently dropped.
func (a Action) Validate() error {
	switch a.Type {
	case ActionApprove, ActionDismiss, ActionMarkSeen, ActionMarkPaid:
		return nil
	case ActionAddCategory, ActionSetExpenseCategory:
		if a.Value == "" {
			return fmt.Errorf("action %q requires a value", a.Type)
		}
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnknownAction, a.Type)
	}
}

// IsTerminal reports whether the action moves a card out of pending.
func (a Action) IsTerminal() bool {
	switch a.Type {
	case ActionApprove, ActionDismiss, ActionMarkSeen:
		return true
	default:
		return false
	}
}

// TerminalStatus returns the card status a terminal action produces.
// The second return is false for non-terminal actions.
func (a Action) TerminalStatus() (CardStatus, bool) {
	switch a.Type {
	case ActionApprove:
		return CardStatusAuto, true
	case ActionDismiss:
		return CardStatusDismissed, true
	case ActionMarkSeen:
		return CardStatusSeen, true
	default:
		return "", false
	}
}
