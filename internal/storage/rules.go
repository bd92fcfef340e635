package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/joshsymonds/cardflow/internal/common"
	"github.com/joshsymonds/cardflow/internal/model"
)

const ruleColumns = `id, user_id, name, prompt, enabled, priority, created_at, updated_at`

// ListEnabledRules returns the user's enabled rules sorted by priority
// ascending. Rules sharing a priority keep a stable creation order.
func (s *SQLiteStorage) ListEnabledRules(ctx context.Context, userID string) ([]model.ClassificationRule, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(userID, "userID"); err != nil {
		return nil, err
	}
	return s.listEnabledRulesTx(ctx, s.db, userID)
}

func (s *SQLiteStorage) listEnabledRulesTx(ctx context.Context, q queryable, userID string) ([]model.ClassificationRule, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT `+ruleColumns+`
		FROM classification_rules
		WHERE user_id = ? AND enabled = 1
		ORDER BY priority ASC, created_at ASC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list enabled rules: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return scanRules(rows)
}

// ListRules returns all of the user's rules, enabled or not.
func (s *SQLiteStorage) ListRules(ctx context.Context, userID string) ([]model.ClassificationRule, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(userID, "userID"); err != nil {
		return nil, err
	}
	return s.listRulesTx(ctx, s.db, userID)
}

func (s *SQLiteStorage) listRulesTx(ctx context.Context, q queryable, userID string) ([]model.ClassificationRule, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT `+ruleColumns+`
		FROM classification_rules
		WHERE user_id = ?
		ORDER BY priority ASC, created_at ASC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list rules: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return scanRules(rows)
}

// GetRule retrieves a rule by id.
func (s *SQLiteStorage) GetRule(ctx context.Context, id string) (*model.ClassificationRule, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}
	return s.getRuleTx(ctx, s.db, id)
}

func (s *SQLiteStorage) getRuleTx(ctx context.Context, q queryable, id string) (*model.ClassificationRule, error) {
	var rule model.ClassificationRule
	err := q.QueryRowContext(ctx, `
		SELECT `+ruleColumns+`
		FROM classification_rules
		WHERE id = ?
	`, id).Scan(
		&rule.ID,
		&rule.UserID,
		&rule.Name,
		&rule.Prompt,
		&rule.Enabled,
		&rule.Priority,
		&rule.CreatedAt,
		&rule.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrRuleNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get rule: %w", err)
	}
	return &rule, nil
}

// SaveRule inserts or updates a rule.
func (s *SQLiteStorage) SaveRule(ctx context.Context, rule *model.ClassificationRule) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateRule(rule); err != nil {
		return err
	}
	return s.saveRuleTx(ctx, s.db, rule)
}

func (s *SQLiteStorage) saveRuleTx(ctx context.Context, q queryable, rule *model.ClassificationRule) error {
	now := time.Now()
	if rule.CreatedAt.IsZero() {
		rule.CreatedAt = now
	}
	rule.UpdatedAt = now

	_, err := q.ExecContext(ctx, `
		INSERT INTO classification_rules (id, user_id, name, prompt, enabled, priority, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			prompt = excluded.prompt,
			enabled = excluded.enabled,
			priority = excluded.priority,
			updated_at = excluded.updated_at
	`, rule.ID, rule.UserID, rule.Name, rule.Prompt, rule.Enabled, rule.Priority, rule.CreatedAt, rule.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to save rule: %w", err)
	}
	return nil
}

// SetRuleEnabled toggles a rule without touching its other fields.
func (s *SQLiteStorage) SetRuleEnabled(ctx context.Context, id string, enabled bool) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(id, "id"); err != nil {
		return err
	}
	return s.setRuleEnabledTx(ctx, s.db, id, enabled)
}

func (s *SQLiteStorage) setRuleEnabledTx(ctx context.Context, q queryable, id string, enabled bool) error {
	result, err := q.ExecContext(ctx, `
		UPDATE classification_rules SET enabled = ?, updated_at = ? WHERE id = ?
	`, enabled, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to update rule: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update: %w", err)
	}
	if affected == 0 {
		return common.ErrRuleNotFound
	}
	return nil
}

// DeleteRule removes a rule permanently.
func (s *SQLiteStorage) DeleteRule(ctx context.Context, id string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(id, "id"); err != nil {
		return err
	}
	return s.deleteRuleTx(ctx, s.db, id)
}

func (s *SQLiteStorage) deleteRuleTx(ctx context.Context, q queryable, id string) error {
	result, err := q.ExecContext(ctx, `DELETE FROM classification_rules WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete rule: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete: %w", err)
	}
	if affected == 0 {
		return common.ErrRuleNotFound
	}
	return nil
}

func scanRules(rows *sql.Rows) ([]model.ClassificationRule, error) {
	var rules []model.ClassificationRule
	for rows.Next() {
		var rule model.ClassificationRule
		if err := rows.Scan(
			&rule.ID,
			&rule.UserID,
			&rule.Name,
			&rule.Prompt,
			&rule.Enabled,
			&rule.Priority,
			&rule.CreatedAt,
			&rule.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan rule: %w", err)
		}
		rules = append(rules, rule)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate rules: %w", err)
	}
	return rules, nil
}
