package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/joshsymonds/cardflow/internal/common"
	"github.com/joshsymonds/cardflow/internal/model"
)

// SaveDocument stores a processed document as a new immutable version.
// Saving the same document id again appends a version; nothing is edited.
func (s *SQLiteStorage) SaveDocument(ctx context.Context, doc *model.ProcessedDocument) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateDocument(doc); err != nil {
		return err
	}
	return s.saveDocumentTx(ctx, s.db, doc)
}

func (s *SQLiteStorage) saveDocumentTx(ctx context.Context, q queryable, doc *model.ProcessedDocument) error {
	var version int
	err := q.QueryRowContext(ctx, `
		SELECT COALESCE(MAX(version), 0) FROM documents WHERE id = ?
	`, doc.ID).Scan(&version)
	if err != nil {
		return fmt.Errorf("failed to read document version: %w", err)
	}
	doc.Version = version + 1

	items, err := json.Marshal(doc.Items)
	if err != nil {
		return fmt.Errorf("failed to encode line items: %w", err)
	}

	var amount *string
	if doc.Amount != nil {
		a := doc.Amount.String()
		amount = &a
	}

	_, err = q.ExecContext(ctx, `
		INSERT INTO documents (
			id, version, document_type, card_title, extracted_title,
			extracted_summary, amount, currency, seller_name, buyer_name,
			issue_date, due_date, invoice_number, ai_rationale, confidence,
			requires_action, suggested_action_label, items, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		doc.ID, doc.Version, doc.DocumentType, doc.CardTitle, doc.ExtractedTitle,
		doc.ExtractedSummary, amount, nullIfEmpty(doc.Currency), doc.SellerName, doc.BuyerName,
		doc.IssueDate, doc.DueDate, doc.InvoiceNumber, doc.AIRationale, doc.Confidence,
		doc.RequiresAction, nullIfEmpty(doc.SuggestedActionLabel), string(items), time.Now())
	if err != nil {
		return fmt.Errorf("failed to save document: %w", err)
	}
	return nil
}

// GetDocument retrieves the latest version of a document.
func (s *SQLiteStorage) GetDocument(ctx context.Context, id string) (*model.ProcessedDocument, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}
	return s.getDocumentTx(ctx, s.db, id)
}

func (s *SQLiteStorage) getDocumentTx(ctx context.Context, q queryable, id string) (*model.ProcessedDocument, error) {
	var (
		doc       model.ProcessedDocument
		amount    sql.NullString
		currency  sql.NullString
		label     sql.NullString
		issueDate sql.NullTime
		dueDate   sql.NullTime
		items     string
	)

	err := q.QueryRowContext(ctx, `
		SELECT id, version, document_type, card_title, extracted_title,
			extracted_summary, amount, currency, seller_name, buyer_name,
			issue_date, due_date, invoice_number, ai_rationale, confidence,
			requires_action, suggested_action_label, items
		FROM documents
		WHERE id = ?
		ORDER BY version DESC
		LIMIT 1
	`, id).Scan(
		&doc.ID, &doc.Version, &doc.DocumentType, &doc.CardTitle, &doc.ExtractedTitle,
		&doc.ExtractedSummary, &amount, &currency, &doc.SellerName, &doc.BuyerName,
		&issueDate, &dueDate, &doc.InvoiceNumber, &doc.AIRationale, &doc.Confidence,
		&doc.RequiresAction, &label, &items,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrDocumentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get document: %w", err)
	}

	if amount.Valid {
		value, err := decimal.NewFromString(amount.String)
		if err != nil {
			return nil, fmt.Errorf("failed to decode amount: %w", err)
		}
		doc.Amount = &value
	}
	if currency.Valid {
		doc.Currency = currency.String
	}
	if label.Valid {
		doc.SuggestedActionLabel = label.String
	}
	if issueDate.Valid {
		t := issueDate.Time
		doc.IssueDate = &t
	}
	if dueDate.Valid {
		t := dueDate.Time
		doc.DueDate = &t
	}
	if items != "" {
		if err := json.Unmarshal([]byte(items), &doc.Items); err != nil {
			return nil, fmt.Errorf("failed to decode line items: %w", err)
		}
	}

	return &doc, nil
}

func nullIfEmpty(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}
