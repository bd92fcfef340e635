package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// CardStatus is the workflow state of a card.
type CardStatus string

// Card status constants. pending is the initial state; the other three are
// terminal for this subsystem (a human may move the card elsewhere later).
const (
	CardStatusPending   CardStatus = "pending"
	CardStatusAuto      CardStatus = "auto"
	CardStatusDismissed CardStatus = "dismissed"
	CardStatusSeen      CardStatus = "seen"
)

// PaymentStatus tracks whether the underlying obligation has been paid.
type PaymentStatus string

// Payment status constants.
const (
	PaymentStatusUnpaid PaymentStatus = "unpaid"
	PaymentStatusPaid   PaymentStatus = "paid"
)

// Suggested action labels assigned alongside each terminal transition.
const (
	LabelAutoApproved  = "Auto-approved"
	LabelAutoDismissed = "Auto-dismissed"
	LabelAutoSeen      = "Auto-marked as seen"
)

// Card is the persisted workflow entity representing one processed
// document's review state. It is mutated exclusively through the card state
// machine and never deleted by this subsystem.
type Card struct {
	CreatedAt            time.Time
	UpdatedAt            time.Time
	PaidAt               *time.Time
	SuggestedActionLabel *string
	ExpenseCategory      *string
	ID                   string
	UserID               string
	DocumentID           string
	Status               CardStatus
	PaymentStatus        PaymentStatus
	Categories           []string
	RequiresAction       bool
	AddedToExpenses      bool
}

// NewCard creates a pending card for a freshly surfaced document.
func NewCard(userID string, doc *ProcessedDocument) *Card {
	now := time.Now()
	var label *string
	if doc.SuggestedActionLabel != "" {
		l := doc.SuggestedActionLabel
		label = &l
	}
	return &Card{
		ID:                   uuid.NewString(),
		UserID:               userID,
		DocumentID:           doc.ID,
		Status:               CardStatusPending,
		PaymentStatus:        PaymentStatusUnpaid,
		RequiresAction:       doc.RequiresAction,
		SuggestedActionLabel: label,
		Categories:           []string{},
		CreatedAt:            now,
		UpdatedAt:            now,
	}
}

// HasCategory reports whether the card already carries the category.
func (c *Card) HasCategory(name string) bool {
	for _, existing := range c.Categories {
		if existing == name {
			return true
		}
	}
	return false
}

// AddCategory adds a category, keeping Categories duplicate-free.
func (c *Card) AddCategory(name string) {
	if name == "" || c.HasCategory(name) {
		return
	}
	c.Categories = append(c.Categories, name)
}

// CheckInvariants verifies the representation invariants every reachable
// card state must satisfy. Storage refuses to persist a card that fails.
func (c *Card) CheckInvariants() error {
	switch c.Status {
	case CardStatusPending, CardStatusAuto, CardStatusDismissed, CardStatusSeen:
	default:
		return fmt.Errorf("card %s: invalid status %q", c.ID, c.Status)
	}
	if c.Status != CardStatusPending && c.RequiresAction {
		return fmt.Errorf("card %s: status %s requires requiresAction=false", c.ID, c.Status)
	}
	if c.AddedToExpenses != (c.ExpenseCategory != nil) {
		return fmt.Errorf("card %s: addedToExpenses must track expenseCategory", c.ID)
	}
	seen := make(map[string]struct{}, len(c.Categories))
	for _, category := range c.Categories {
		if _, dup := seen[category]; dup {
			return fmt.Errorf("card %s: duplicate category %q", c.ID, category)
		}
		seen[category] = struct{}{}
	}
	return nil
}

// Clone returns a deep copy so the state machine can stay a pure function
// over card values.
func (c *Card) Clone() *Card {
	clone := *c
	clone.Categories = append([]string(nil), c.Categories...)
	if c.PaidAt != nil {
		paidAt := *c.PaidAt
		clone.PaidAt = &paidAt
	}
	if c.SuggestedActionLabel != nil {
		label := *c.SuggestedActionLabel
		clone.SuggestedActionLabel = &label
	}
	if c.ExpenseCategory != nil {
		category := *c.ExpenseCategory
		clone.ExpenseCategory = &category
	}
	return &clone
}
