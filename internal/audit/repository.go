package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/stratum-quant/stratum/internal/contracts"
)

// Repository persists the override log in PostgreSQL. The table is
// append-only: records are inserted once and never updated, so the
// log is a faithful history of every override ever applied.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new audit repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// EnsureSchema creates the audit schema and override log table if they
// do not exist yet.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	statements := []string{
		`CREATE SCHEMA IF NOT EXISTS audit`,
		`CREATE TABLE IF NOT EXISTS audit.override_log (
			id             TEXT PRIMARY KEY,
			ticker         TEXT NOT NULL,
			override_type  TEXT NOT NULL,
			conviction     TEXT NOT NULL,
			impact         DOUBLE PRECISION NOT NULL,
			extreme        BOOLEAN NOT NULL,
			rec_changed    BOOLEAN NOT NULL,
			policy_hash    TEXT NOT NULL,
			applied_at     TIMESTAMPTZ NOT NULL,
			record         JSONB NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS override_log_ticker_idx ON audit.override_log (ticker, applied_at)`,
	}

	for _, stmt := range statements {
		if _, err := r.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to ensure audit schema: %w", err)
		}
	}
	return nil
}

// Append inserts one override record.
func (r *Repository) Append(ctx context.Context, result contracts.OverrideResult) error {
	recordJSON, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal override record: %w", err)
	}

	query := `
		INSERT INTO audit.override_log (
			id, ticker, override_type, conviction, impact,
			extreme, rec_changed, policy_hash, applied_at, record
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err = r.pool.Exec(ctx, query,
		result.ID, result.Ticker, string(result.Type), string(result.Conviction),
		result.Impact, result.Extreme, result.RecommendationChanged,
		result.PolicyHash, result.AppliedAt, recordJSON,
	)

	if err != nil {
		return fmt.Errorf("failed to append override record: %w", err)
	}

	return nil
}

// Query retrieves matching records in application order.
func (r *Repository) Query(ctx context.Context, q Query) ([]contracts.OverrideResult, error) {
	var (
		conditions []string
		args       []interface{}
	)

	if q.Ticker != "" {
		args = append(args, q.Ticker)
		conditions = append(conditions, fmt.Sprintf("ticker = $%d", len(args)))
	}
	if !q.From.IsZero() {
		args = append(args, q.From)
		conditions = append(conditions, fmt.Sprintf("applied_at >= $%d", len(args)))
	}
	if !q.To.IsZero() {
		args = append(args, q.To)
		conditions = append(conditions, fmt.Sprintf("applied_at <= $%d", len(args)))
	}

	query := `SELECT record FROM audit.override_log`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY applied_at ASC"
	if q.Limit > 0 {
		args = append(args, q.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query override log: %w", err)
	}
	defer rows.Close()

	records := make([]contracts.OverrideResult, 0)

	for rows.Next() {
		var recordJSON []byte
		if err := rows.Scan(&recordJSON); err != nil {
			return nil, fmt.Errorf("failed to scan override record: %w", err)
		}

		var record contracts.OverrideResult
		if err := json.Unmarshal(recordJSON, &record); err != nil {
			return nil, fmt.Errorf("failed to unmarshal override record: %w", err)
		}
		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return records, nil
}

// Stats aggregates the matching records.
func (r *Repository) Stats(ctx context.Context, q Query) (Stats, error) {
	records, err := r.Query(ctx, q)
	if err != nil {
		return Stats{}, err
	}
	return Aggregate(records), nil
}
