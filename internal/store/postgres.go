package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wareflow/ruleengine/internal/rule"
)

// PostgresStore is a PostgreSQL implementation of the Store interface.
// Each rule is stored as one row with its full document (condition tree and
// action list) in a JSONB column, so the wire shape and the stored shape are
// the same serialized form.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgreSQL-backed store.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// EnsureSchema creates the rules table when it does not exist yet.
func (p *PostgresStore) EnsureSchema(ctx context.Context) error {
	_, err := p.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS rules (
			rule_id    TEXT PRIMARY KEY,
			name       TEXT NOT NULL DEFAULT '',
			enabled    BOOLEAN NOT NULL DEFAULT FALSE,
			definition JSONB NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`)
	if err != nil {
		return fmt.Errorf("ensure rules schema: %w", err)
	}
	return nil
}

// ListRules retrieves all rules ordered by id.
func (p *PostgresStore) ListRules(ctx context.Context) ([]rule.Rule, error) {
	rows, err := p.pool.Query(ctx,
		`SELECT definition, updated_at FROM rules ORDER BY rule_id`)
	if err != nil {
		return nil, fmt.Errorf("list rules: %w", err)
	}
	defer rows.Close()

	var rules []rule.Rule
	for rows.Next() {
		r, err := scanRule(rows)
		if err != nil {
			return nil, err
		}
		rules = append(rules, r)
	}
	return rules, rows.Err()
}

// GetRule retrieves a single rule by id.
func (p *PostgresStore) GetRule(ctx context.Context, ruleID string) (*rule.Rule, error) {
	row := p.pool.QueryRow(ctx,
		`SELECT definition, updated_at FROM rules WHERE rule_id = $1`, ruleID)

	r, err := scanRule(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &r, nil
}

// UpsertRule creates or updates a rule document.
func (p *PostgresStore) UpsertRule(ctx context.Context, r rule.Rule) error {
	r.UpdatedAt = time.Now().UTC()
	definition, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("marshal rule %q: %w", r.RuleID, err)
	}

	_, err = p.pool.Exec(ctx, `
		INSERT INTO rules (rule_id, name, enabled, definition, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (rule_id) DO UPDATE SET
			name = EXCLUDED.name,
			enabled = EXCLUDED.enabled,
			definition = EXCLUDED.definition,
			updated_at = EXCLUDED.updated_at`,
		r.RuleID, r.Name, r.Enabled, definition, r.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upsert rule %q: %w", r.RuleID, err)
	}
	return nil
}

// DeleteRule removes a rule (idempotent).
func (p *PostgresStore) DeleteRule(ctx context.Context, ruleID string) error {
	_, err := p.pool.Exec(ctx, `DELETE FROM rules WHERE rule_id = $1`, ruleID)
	if err != nil {
		return fmt.Errorf("delete rule %q: %w", ruleID, err)
	}
	return nil
}

// Close closes the database connection pool.
func (p *PostgresStore) Close() error {
	p.pool.Close()
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRule(row rowScanner) (rule.Rule, error) {
	var definition []byte
	var updatedAt time.Time
	if err := row.Scan(&definition, &updatedAt); err != nil {
		return rule.Rule{}, err
	}

	var r rule.Rule
	if err := json.Unmarshal(definition, &r); err != nil {
		return rule.Rule{}, fmt.Errorf("decode rule document: %w", err)
	}
	r.UpdatedAt = updatedAt
	return r, nil
}
