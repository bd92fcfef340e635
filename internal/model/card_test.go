package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pendingDoc() *ProcessedDocument {
	return &ProcessedDocument{
		ID:             "doc-1",
		DocumentType:   DocumentTypeInvoice,
		CardTitle:      "Invoice from Acme Corp",
		RequiresAction: true,
	}
}

func TestNewCard(t *testing.T) {
	doc := pendingDoc()
	c := NewCard("user-1", doc)

	assert.NotEmpty(t, c.ID)
	assert.Equal(t, "user-1", c.UserID)
	assert.Equal(t, doc.ID, c.DocumentID)
	assert.Equal(t, CardStatusPending, c.Status)
	assert.Equal(t, PaymentStatusUnpaid, c.PaymentStatus)
	assert.True(t, c.RequiresAction)
	assert.Empty(t, c.Categories)
	assert.NoError(t, c.CheckInvariants())
}

func TestNewCardCopiesSuggestedLabel(t *testing.T) {
	doc := pendingDoc()
	doc.SuggestedActionLabel = "Pay by Friday"

	c := NewCard("user-1", doc)
	require.NotNil(t, c.SuggestedActionLabel)
	assert.Equal(t, "Pay by Friday", *c.SuggestedActionLabel)
}

func TestAddCategoryDeduplicates(t *testing.T) {
	c := NewCard("user-1", pendingDoc())

	c.AddCategory("dev tools")
	c.AddCategory("office")
	c.AddCategory("dev tools")
	c.AddCategory("")

	assert.Equal(t, []string{"dev tools", "office"}, c.Categories)
	assert.True(t, c.HasCategory("office"))
	assert.False(t, c.HasCategory("travel"))
}

func TestCheckInvariants(t *testing.T) {
	expense := "Software"

	tests := []struct {
		name    string
		mutate  func(*Card)
		wantErr string
	}{
		{
			name:   "fresh pending card is valid",
			mutate: func(_ *Card) {},
		},
		{
			name: "terminal card with requiresAction cleared is valid",
			mutate: func(c *Card) {
				c.Status = CardStatusAuto
				c.RequiresAction = false
			},
		},
		{
			name: "invalid status",
			mutate: func(c *Card) {
				c.Status = "archived"
			},
			wantErr: "invalid status",
		},
		{
			name: "terminal card must not require action",
			mutate: func(c *Card) {
				c.Status = CardStatusDismissed
				c.RequiresAction = true
			},
			wantErr: "requiresAction",
		},
		{
			name: "addedToExpenses without a category",
			mutate: func(c *Card) {
				c.AddedToExpenses = true
			},
			wantErr: "expenseCategory",
		},
		{
			name: "expense category without the flag",
			mutate: func(c *Card) {
				c.ExpenseCategory = &expense
			},
			wantErr: "expenseCategory",
		},
		{
			name: "duplicate categories",
			mutate: func(c *Card) {
				c.Categories = []string{"a", "b", "a"}
			},
			wantErr: "duplicate category",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewCard("user-1", pendingDoc())
			tt.mutate(c)

			err := c.CheckInvariants()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestCloneIsIndependent(t *testing.T) {
	expense := "Software"
	c := NewCard("user-1", pendingDoc())
	c.AddCategory("dev tools")
	c.ExpenseCategory = &expense
	c.AddedToExpenses = true

	clone := c.Clone()
	clone.AddCategory("office")
	*clone.ExpenseCategory = "Travel"
	clone.Status = CardStatusAuto

	assert.Equal(t, []string{"dev tools"}, c.Categories)
	assert.Equal(t, "Software", *c.ExpenseCategory)
	assert.Equal(t, CardStatusPending, c.Status)
}
