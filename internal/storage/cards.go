package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/joshsymonds/cardflow/internal/common"
	"github.com/joshsymonds/cardflow/internal/model"
	"github.com/joshsymonds/cardflow/internal/service"
)

const cardColumns = `id, user_id, document_id, status, requires_action, categories,
	suggested_action_label, payment_status, paid_at, expense_category,
	added_to_expenses, created_at, updated_at`

// GetCard retrieves a card by id.
func (s *SQLiteStorage) GetCard(ctx context.Context, id string) (*model.Card, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}
	return s.getCardTx(ctx, s.db, id)
}

func (s *SQLiteStorage) getCardTx(ctx context.Context, q queryable, id string) (*model.Card, error) {
	row := q.QueryRowContext(ctx, `
		SELECT `+cardColumns+`
		FROM cards
		WHERE id = ?
	`, id)
	return scanCard(row)
}

// GetCardByDocument retrieves the card that tracks a document.
func (s *SQLiteStorage) GetCardByDocument(ctx context.Context, documentID string) (*model.Card, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(documentID, "documentID"); err != nil {
		return nil, err
	}
	return s.getCardByDocumentTx(ctx, s.db, documentID)
}

func (s *SQLiteStorage) getCardByDocumentTx(ctx context.Context, q queryable, documentID string) (*model.Card, error) {
	row := q.QueryRowContext(ctx, `
		SELECT `+cardColumns+`
		FROM cards
		WHERE document_id = ?
	`, documentID)
	return scanCard(row)
}

// SaveCard upserts the full card state in a single statement, so a card row
// is always either the old state or the new one, never a mix.
func (s *SQLiteStorage) SaveCard(ctx context.Context, c *model.Card) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateCard(c); err != nil {
		return err
	}
	return s.saveCardTx(ctx, s.db, c)
}

func (s *SQLiteStorage) saveCardTx(ctx context.Context, q queryable, c *model.Card) error {
	now := time.Now()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	if c.UpdatedAt.IsZero() {
		c.UpdatedAt = now
	}

	categories, err := json.Marshal(c.Categories)
	if err != nil {
		return fmt.Errorf("failed to encode categories: %w", err)
	}

	_, err = q.ExecContext(ctx, `
		INSERT INTO cards (
			id, user_id, document_id, status, requires_action, categories,
			suggested_action_label, payment_status, paid_at, expense_category,
			added_to_expenses, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			status = excluded.status,
			requires_action = excluded.requires_action,
			categories = excluded.categories,
			suggested_action_label = excluded.suggested_action_label,
			payment_status = excluded.payment_status,
			paid_at = excluded.paid_at,
			expense_category = excluded.expense_category,
			added_to_expenses = excluded.added_to_expenses,
			updated_at = excluded.updated_at
	`,
		c.ID, c.UserID, c.DocumentID, c.Status, c.RequiresAction, string(categories),
		c.SuggestedActionLabel, c.PaymentStatus, c.PaidAt, c.ExpenseCategory,
		c.AddedToExpenses, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to save card: %w", err)
	}
	return nil
}

// ListCards retrieves cards matching the filter, most recent first.
func (s *SQLiteStorage) ListCards(ctx context.Context, filter service.CardFilter) ([]model.Card, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return s.listCardsTx(ctx, s.db, filter)
}

func (s *SQLiteStorage) listCardsTx(ctx context.Context, q queryable, filter service.CardFilter) ([]model.Card, error) {
	query := `SELECT ` + cardColumns + ` FROM cards WHERE 1=1`
	args := []any{}

	if filter.UserID != "" {
		query += ` AND user_id = ?`
		args = append(args, filter.UserID)
	}
	if filter.Status != nil {
		query += ` AND status = ?`
		args = append(args, *filter.Status)
	}
	query += ` ORDER BY created_at DESC`
	if filter.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, filter.Limit)
		if filter.Offset > 0 {
			query += ` OFFSET ?`
			args = append(args, filter.Offset)
		}
	}

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list cards: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var cards []model.Card
	for rows.Next() {
		c, err := scanCardRow(rows)
		if err != nil {
			return nil, err
		}
		cards = append(cards, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate cards: %w", err)
	}
	return cards, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCard(row *sql.Row) (*model.Card, error) {
	c, err := scanCardRow(row)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func scanCardRow(row rowScanner) (*model.Card, error) {
	var (
		c          model.Card
		categories string
		label      sql.NullString
		expense    sql.NullString
		paidAt     sql.NullTime
	)

	err := row.Scan(
		&c.ID, &c.UserID, &c.DocumentID, &c.Status, &c.RequiresAction, &categories,
		&label, &c.PaymentStatus, &paidAt, &expense,
		&c.AddedToExpenses, &c.CreatedAt, &c.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrCardNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan card: %w", err)
	}

	if err := json.Unmarshal([]byte(categories), &c.Categories); err != nil {
		return nil, fmt.Errorf("failed to decode categories: %w", err)
	}
	if c.Categories == nil {
		c.Categories = []string{}
	}
	if label.Valid {
		l := label.String
		c.SuggestedActionLabel = &l
	}
	if expense.Valid {
		e := expense.String
		c.ExpenseCategory = &e
	}
	if paidAt.Valid {
		t := paidAt.Time
		c.PaidAt = &t
	}

	return &c, nil
}
