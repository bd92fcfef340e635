// Package model defines the core domain models used throughout the application.
package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// DocumentType identifies the kind of document the extractor recognized.
type DocumentType string

// Document type constants.
const (
	DocumentTypeInvoice DocumentType = "invoice"
	DocumentTypeReceipt DocumentType = "receipt"
	DocumentTypeOther   DocumentType = "other_document"
)

// LineItem is a single line of an invoice or receipt.
type LineItem struct {
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	Amount      decimal.Decimal `json:"amount"`
}

// ProcessedDocument is the structured record the upstream extractor produced
// for one ingested document. It is immutable: re-classification creates a new
// version rather than editing an existing one.
type ProcessedDocument struct {
	IssueDate            *time.Time       `json:"issueDate"`
	DueDate              *time.Time       `json:"dueDate"`
	Amount               *decimal.Decimal `json:"amount"`
	ID                   string           `json:"id"`
	DocumentType         DocumentType     `json:"documentType"`
	CardTitle            string           `json:"cardTitle"`
	ExtractedTitle       string           `json:"extractedTitle"`
	ExtractedSummary     string           `json:"extractedSummary"`
	Currency             string           `json:"currency"`
	SellerName           string           `json:"sellerName"`
	BuyerName            string           `json:"buyerName"`
	InvoiceNumber        string           `json:"invoiceNumber"`
	AIRationale          string           `json:"aiRationale"`
	SuggestedActionLabel string           `json:"suggestedActionLabel"`
	Items                []LineItem       `json:"items"`
	Confidence           int              `json:"confidence"`
	Version              int              `json:"version"`
	RequiresAction       bool             `json:"requiresAction"`
}

// Title returns the best available display title for the document.
func (d *ProcessedDocument) Title() string {
	if d.CardTitle != "" {
		return d.CardTitle
	}
	if d.ExtractedTitle != "" {
		return d.ExtractedTitle
	}
	return "Unknown"
}
