package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/digi0/ACE/internal/models"
)

type policyRepo struct {
	pool *pgxpool.Pool
}

// NewPolicyRepository creates a PostgreSQL-backed vault store. Save
// replaces the whole table inside one transaction and keeps list order in
// the position column.
func NewPolicyRepository(pool *pgxpool.Pool) PolicyRepository {
	return &policyRepo{pool: pool}
}

// Load returns every policy in stored order.
func (r *policyRepo) Load(ctx context.Context) ([]models.Policy, error) {
	query := `
		SELECT vault_id, title, summary, category, tags, risk_category, content, source_link, last_reviewed
		FROM policies ORDER BY position`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	policies := make([]models.Policy, 0)
	for rows.Next() {
		var (
			p    models.Policy
			tags []byte
		)
		if err := rows.Scan(&p.VaultID, &p.Title, &p.Summary, &p.Category, &tags,
			&p.RiskCategory, &p.Content, &p.SourceLink, &p.LastReviewed); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(tags, &p.Tags); err != nil {
			return nil, fmt.Errorf("decode tags for %s: %w", p.VaultID, err)
		}
		policies = append(policies, p)
	}
	return policies, rows.Err()
}

// Save replaces the stored vault with policies.
func (r *policyRepo) Save(ctx context.Context, policies []models.Policy) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `DELETE FROM policies`); err != nil {
		return err
	}

	batch := &pgx.Batch{}
	for i, p := range policies {
		tags := p.Tags
		if tags == nil {
			tags = []string{}
		}
		tagJSON, err := json.Marshal(tags)
		if err != nil {
			return err
		}
		batch.Queue(`
			INSERT INTO policies (vault_id, position, title, summary, category, tags, risk_category, content, source_link, last_reviewed)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
			p.VaultID, i, p.Title, p.Summary, p.Category, tagJSON, p.RiskCategory, p.Content, p.SourceLink, p.LastReviewed)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("insert policies: %w", err)
	}

	return tx.Commit(ctx)
}

var _ PolicyRepository = (*policyRepo)(nil)
