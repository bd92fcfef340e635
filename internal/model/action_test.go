package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActionValidate(t *testing.T) {
	tests := []struct {
		name        string
		action      Action
		wantErr     bool
		wantUnknown bool
	}{
		{
			name:   "approve is valid without a value",
			action: Action{Type: ActionApprove},
		},
		{
			name:   "dismiss is valid without a value",
			action: Action{Type: ActionDismiss},
		},
		{
			name:   "mark_seen is valid without a value",
			action: Action{Type: ActionMarkSeen},
		},
		{
			name:   "mark_paid is valid without a value",
			action: Action{Type: ActionMarkPaid},
		},
		{
			name:   "add_category with value",
			action: Action{Type: ActionAddCategory, Value: "dev tools"},
		},
		{
			name:    "add_category without value",
			action:  Action{Type: ActionAddCategory},
			wantErr: true,
		},
		{
			name:   "set_expense_category with value",
			action: Action{Type: ActionSetExpenseCategory, Value: "Software"},
		},
		{
			name:    "set_expense_category without value",
			action:  Action{Type: ActionSetExpenseCategory},
			wantErr: true,
		},
		{
			name:        "unknown type is rejected",
			action:      Action{Type: "schedule_payment"},
			wantErr:     true,
			wantUnknown: true,
		},
		{
			name:        "empty type is rejected",
			action:      Action{},
			wantErr:     true,
			wantUnknown: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.action.Validate()
			if !tt.wantErr {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			if tt.wantUnknown {
				assert.ErrorIs(t, err, ErrUnknownAction)
			}
		})
	}
}

func TestActionTerminalStatus(t *testing.T) {
	tests := []struct {
		actionType ActionType
		wantStatus CardStatus
		terminal   bool
	}{
		{ActionApprove, CardStatusAuto, true},
		{ActionDismiss, CardStatusDismissed, true},
		{ActionMarkSeen, CardStatusSeen, true},
		{ActionMarkPaid, "", false},
		{ActionAddCategory, "", false},
		{ActionSetExpenseCategory, "", false},
	}

	for _, tt := range tests {
		t.Run(string(tt.actionType), func(t *testing.T) {
			action := Action{Type: tt.actionType}
			status, terminal := action.TerminalStatus()
			assert.Equal(t, tt.terminal, terminal)
			assert.Equal(t, tt.wantStatus, status)
			assert.Equal(t, tt.terminal, action.IsTerminal())
		})
	}
}
