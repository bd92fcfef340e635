package storage

import (
	"context"
	"fmt"

	"github.com/joshsymonds/cardflow/internal/model"
)

func validateContext(ctx context.Context) error {
	if ctx == nil {
		return fmt.Errorf("context cannot be nil")
	}
	return ctx.Err()
}

func validateString(value, name string) error {
	if value == "" {
		return fmt.Errorf("%s cannot be empty", name)
	}
	return nil
}

func validateRule(rule *model.ClassificationRule) error {
	if rule == nil {
		return fmt.Errorf("rule cannot be nil")
	}
	if err := validateString(rule.ID, "rule.ID"); err != nil {
		return err
	}
	if err := validateString(rule.UserID, "rule.UserID"); err != nil {
		return err
	}
	if err := validateString(rule.Name, "rule.Name"); err != nil {
		return err
	}
	return validateString(rule.Prompt, "rule.Prompt")
}

func validateDocument(doc *model.ProcessedDocument) error {
	if doc == nil {
		return fmt.Errorf("document cannot be nil")
	}
	if err := validateString(doc.ID, "document.ID"); err != nil {
		return err
	}
	switch doc.DocumentType {
	case model.DocumentTypeInvoice, model.DocumentTypeReceipt, model.DocumentTypeOther:
	default:
		return fmt.Errorf("document.DocumentType %q is invalid", doc.DocumentType)
	}
	if doc.Confidence < 0 || doc.Confidence > 100 {
		return fmt.Errorf("document.Confidence %d out of range [0,100]", doc.Confidence)
	}
	return nil
}

// validateCard refuses to persist cards that violate the model invariants;
// a half-applied card must never reach a row.
func validateCard(c *model.Card) error {
	if c == nil {
		return fmt.Errorf("card cannot be nil")
	}
	if err := validateString(c.ID, "card.ID"); err != nil {
		return err
	}
	if err := validateString(c.UserID, "card.UserID"); err != nil {
		return err
	}
	if err := validateString(c.DocumentID, "card.DocumentID"); err != nil {
		return err
	}
	return c.CheckInvariants()
}
