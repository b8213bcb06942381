package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wonny/salesdesk/backend/internal/contracts"
)

// migrations create the sales schema; each statement is idempotent
var migrations = []string{
	`CREATE SCHEMA IF NOT EXISTS sales`,
	`CREATE TABLE IF NOT EXISTS sales.dataset_versions (
		version     TEXT PRIMARY KEY,
		created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
		source      TEXT NOT NULL DEFAULT '',
		row_count   INTEGER NOT NULL,
		has_cost    BOOLEAN NOT NULL DEFAULT false,
		warnings    JSONB NOT NULL DEFAULT '[]'
	)`,
	`CREATE INDEX IF NOT EXISTS idx_dataset_versions_created_at
		ON sales.dataset_versions (created_at DESC)`,
	`CREATE TABLE IF NOT EXISTS sales.transactions (
		version            TEXT NOT NULL REFERENCES sales.dataset_versions(version) ON DELETE CASCADE,
		row_no             INTEGER NOT NULL,
		id_transacao       TEXT NOT NULL DEFAULT '',
		data_venda         TIMESTAMPTZ,
		valor_final        DOUBLE PRECISION,
		subtotal           DOUBLE PRECISION,
		desconto_percent   DOUBLE PRECISION,
		desconto_valor     DOUBLE PRECISION,
		canal_venda        TEXT NOT NULL DEFAULT '',
		forma_pagamento    TEXT NOT NULL DEFAULT '',
		cliente_id         TEXT NOT NULL DEFAULT '',
		nome_cliente       TEXT NOT NULL DEFAULT '',
		idade_cliente      DOUBLE PRECISION,
		genero_cliente     TEXT NOT NULL DEFAULT '',
		cidade_cliente     TEXT NOT NULL DEFAULT '',
		estado_cliente     TEXT NOT NULL DEFAULT '',
		renda_estimada     DOUBLE PRECISION,
		produto_id         TEXT NOT NULL DEFAULT '',
		nome_produto       TEXT NOT NULL DEFAULT '',
		categoria          TEXT NOT NULL DEFAULT '',
		marca              TEXT NOT NULL DEFAULT '',
		preco_unitario     DOUBLE PRECISION,
		quantidade         DOUBLE PRECISION,
		margem_lucro       DOUBLE PRECISION,
		regiao             TEXT NOT NULL DEFAULT '',
		status_entrega     TEXT NOT NULL DEFAULT '',
		tempo_entrega_dias DOUBLE PRECISION,
		vendedor_id        TEXT NOT NULL DEFAULT '',
		custo_produto      DOUBLE PRECISION,
		PRIMARY KEY (version, row_no)
	)`,
}

// PostgresStore keeps versions in the sales schema
// ⭐ SSOT: sales.* 테이블 접근은 여기서만
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore wraps an open pool
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Migrate creates the schema and tables when missing
func (s *PostgresStore) Migrate(ctx context.Context) error {
	for _, stmt := range migrations {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to run migration: %w", err)
		}
	}
	return nil
}

// Put inserts the version row and bulk-copies its transactions in one
// database transaction
func (s *PostgresStore) Put(ctx context.Context, meta contracts.DatasetVersion, ds *contracts.Dataset) error {
	warnings := meta.Warnings
	if warnings == nil {
		warnings = []string{}
	}
	warningsJSON, err := json.Marshal(warnings)
	if err != nil {
		return fmt.Errorf("failed to marshal warnings: %w", err)
	}

	createdAt := meta.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO sales.dataset_versions (
			version, created_at, source, row_count, has_cost, warnings
		) VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err = tx.Exec(ctx, query,
		meta.ID, createdAt, meta.Source, ds.Len(),
		ds.Has(contracts.FieldProductCost), warningsJSON,
	)
	if err != nil {
		return fmt.Errorf("failed to insert version: %w", err)
	}

	columns := make([]string, 0, len(storedColumns)+2)
	columns = append(columns, "version", "row_no")
	for _, f := range storedColumns {
		columns = append(columns, string(f))
	}

	rows := make([][]any, 0, ds.Len())
	for i := range ds.Records {
		row := toStored(&ds.Records[i])
		rows = append(rows, append([]any{meta.ID, i}, row.values()...))
	}

	if _, err := tx.CopyFrom(ctx, pgx.Identifier{"sales", "transactions"}, columns, pgx.CopyFromRows(rows)); err != nil {
		return fmt.Errorf("failed to copy transactions: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// Get loads a version's transactions in upload order
func (s *PostgresStore) Get(ctx context.Context, version string) (*contracts.Dataset, error) {
	var hasCost bool
	err := s.pool.QueryRow(ctx,
		`SELECT has_cost FROM sales.dataset_versions WHERE version = $1`, version,
	).Scan(&hasCost)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get version: %w", err)
	}

	query := `SELECT ` + selectList() + `
		FROM sales.transactions
		WHERE version = $1
		ORDER BY row_no ASC
	`
	rows, err := s.pool.Query(ctx, query, version)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	records := make([]contracts.Record, 0)
	for rows.Next() {
		var (
			row  storedRow
			date *time.Time
		)
		if err := rows.Scan(row.targets(&date)...); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}

		rec := fromStored(&row)
		if date != nil {
			rec.SaleDate = contracts.Date{Time: date.UTC(), Valid: true}
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read transactions: %w", err)
	}

	if hasCost {
		return contracts.NewDataset(records, contracts.FieldProductCost), nil
	}
	return contracts.NewDataset(records), nil
}

// LatestVersion returns the most recently created version
func (s *PostgresStore) LatestVersion(ctx context.Context) (string, error) {
	var version string
	err := s.pool.QueryRow(ctx, `
		SELECT version FROM sales.dataset_versions
		ORDER BY created_at DESC
		LIMIT 1
	`).Scan(&version)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrNoData
	}
	if err != nil {
		return "", fmt.Errorf("failed to get latest version: %w", err)
	}
	return version, nil
}

// Versions lists stored versions, newest first
func (s *PostgresStore) Versions(ctx context.Context, limit int) ([]contracts.DatasetVersion, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT version, created_at, source, row_count, warnings
		FROM sales.dataset_versions
		ORDER BY created_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query versions: %w", err)
	}
	defer rows.Close()

	versions := make([]contracts.DatasetVersion, 0)
	for rows.Next() {
		var (
			v            contracts.DatasetVersion
			warningsJSON []byte
		)
		if err := rows.Scan(&v.ID, &v.CreatedAt, &v.Source, &v.Rows, &warningsJSON); err != nil {
			return nil, fmt.Errorf("failed to scan version: %w", err)
		}
		if err := json.Unmarshal(warningsJSON, &v.Warnings); err != nil {
			return nil, fmt.Errorf("failed to unmarshal warnings: %w", err)
		}
		versions = append(versions, v)
	}
	return versions, rows.Err()
}

func selectList() string {
	list := ""
	for i, f := range storedColumns {
		if i > 0 {
			list += ", "
		}
		list += string(f)
	}
	return list
}
