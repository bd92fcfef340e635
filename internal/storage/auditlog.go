package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/joshsymonds/cardflow/internal/model"
)

// SaveClassificationLog appends audit entries for the rules that were
// applied to a card.
func (s *SQLiteStorage) SaveClassificationLog(ctx context.Context, entries []model.ClassificationLogEntry) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	return s.saveClassificationLogTx(ctx, s.db, entries)
}

func (s *SQLiteStorage) saveClassificationLogTx(ctx context.Context, q queryable, entries []model.ClassificationLogEntry) error {
	for _, entry := range entries {
		actions, err := json.Marshal(entry.Actions)
		if err != nil {
			return fmt.Errorf("failed to encode actions: %w", err)
		}

		classifiedAt := entry.ClassifiedAt
		if classifiedAt.IsZero() {
			classifiedAt = time.Now()
		}

		if _, err := q.ExecContext(ctx, `
			INSERT INTO classification_log (card_id, rule_id, rule_name, confidence, actions, classified_at)
			VALUES (?, ?, ?, ?, ?, ?)
		`, entry.CardID, entry.RuleID, entry.RuleName, entry.Confidence, string(actions), classifiedAt); err != nil {
			return fmt.Errorf("failed to save classification log entry: %w", err)
		}
	}
	return nil
}

// GetClassificationLog returns a card's audit entries, oldest first.
func (s *SQLiteStorage) GetClassificationLog(ctx context.Context, cardID string) ([]model.ClassificationLogEntry, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(cardID, "cardID"); err != nil {
		return nil, err
	}
	return s.getClassificationLogTx(ctx, s.db, cardID)
}

func (s *SQLiteStorage) getClassificationLogTx(ctx context.Context, q queryable, cardID string) ([]model.ClassificationLogEntry, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, card_id, rule_id, rule_name, confidence, actions, classified_at
		FROM classification_log
		WHERE card_id = ?
		ORDER BY id ASC
	`, cardID)
	if err != nil {
		return nil, fmt.Errorf("failed to get classification log: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var entries []model.ClassificationLogEntry
	for rows.Next() {
		var (
			entry   model.ClassificationLogEntry
			actions string
		)
		if err := rows.Scan(
			&entry.ID,
			&entry.CardID,
			&entry.RuleID,
			&entry.RuleName,
			&entry.Confidence,
			&actions,
			&entry.ClassifiedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan log entry: %w", err)
		}
		if err := json.Unmarshal([]byte(actions), &entry.Actions); err != nil {
			return nil, fmt.Errorf("failed to decode actions: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate log entries: %w", err)
	}
	return entries, nil
}
