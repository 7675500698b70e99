// Package repository provides SQL persistence for secret records.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/atinyakov/secretkeeper/internal/models"
	"github.com/atinyakov/secretkeeper/internal/vault"
)

// ErrNotFound is returned when no live record matches. It matches
// vault.ErrNotFound under errors.Is.
var ErrNotFound = fmt.Errorf("record: %w", vault.ErrNotFound)

// PostgresSecretRepository stores secret records in PostgreSQL.
type PostgresSecretRepository struct {
	// DB is the database handle for executing queries and transactions.
	DB *sql.DB
}

// NewPostgresSecretRepository creates a repository using the provided *sql.DB.
// db must be a valid connection to a PostgreSQL instance.
func NewPostgresSecretRepository(db *sql.DB) *PostgresSecretRepository {
	return &PostgresSecretRepository{DB: db}
}

// ListRecords returns all live records of owner ordered by creation.
func (r *PostgresSecretRepository) ListRecords(ctx context.Context, owner string) ([]models.Record, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT owner, name, type, line, version, deleted FROM secrets
		WHERE owner = $1 AND deleted = false ORDER BY seq
	`, owner)
	if err != nil {
		return nil, fmt.Errorf("ListRecords: %w", err)
	}
	defer rows.Close()

	var out []models.Record
	for rows.Next() {
		var rec models.Record
		if err := rows.Scan(&rec.Owner, &rec.Name, &rec.Type, &rec.Line, &rec.Version, &rec.Deleted); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate: %w", err)
	}
	return out, nil
}

// GetRecord fetches the live record called name.
func (r *PostgresSecretRepository) GetRecord(ctx context.Context, owner, name string) (*models.Record, error) {
	var rec models.Record
	err := r.DB.QueryRowContext(ctx, `
		SELECT owner, name, type, line, version, deleted FROM secrets
		WHERE owner = $1 AND name = $2 AND deleted = false
	`, owner, name).Scan(&rec.Owner, &rec.Name, &rec.Type, &rec.Line, &rec.Version, &rec.Deleted)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("GetRecord: %w", err)
	}
	return &rec, nil
}

// UpsertRecord inserts rec or overwrites the record with the same owner and
// name, reviving it if it was soft-deleted.
func (r *PostgresSecretRepository) UpsertRecord(ctx context.Context, rec models.Record) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO secrets (owner, name, type, line, version, deleted)
		VALUES ($1, $2, $3, $4, $5, false)
		ON CONFLICT (owner, name) DO UPDATE SET
			type = EXCLUDED.type,
			line = EXCLUDED.line,
			version = EXCLUDED.version,
			deleted = false
	`, rec.Owner, rec.Name, rec.Type, rec.Line, rec.Version)
	if err != nil {
		return fmt.Errorf("upsert: %w", err)
	}
	return nil
}

// InsertRecord stores a new record. A soft-deleted record with the same name
// is replaced. A live one makes it fail with vault.ErrDuplicateName.
func (r *PostgresSecretRepository) InsertRecord(ctx context.Context, rec models.Record) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		DELETE FROM secrets WHERE owner = $1 AND name = $2 AND deleted = true
	`, rec.Owner, rec.Name); err != nil {
		return fmt.Errorf("drop tombstone: %w", err)
	}

	res, err := tx.ExecContext(ctx, `
		INSERT INTO secrets (owner, name, type, line, version, deleted)
		VALUES ($1, $2, $3, $4, $5, false)
		ON CONFLICT (owner, name) DO NOTHING
	`, rec.Owner, rec.Name, rec.Type, rec.Line, rec.Version)
	if err != nil {
		return fmt.Errorf("insert: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return fmt.Errorf("insert: %w", err)
	} else if n == 0 {
		return fmt.Errorf("%w: %q", vault.ErrDuplicateName, rec.Name)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// RenameRecord moves the live record called oldName to rec.Name in place, so
// it keeps its position in ListRecords.
func (r *PostgresSecretRepository) RenameRecord(ctx context.Context, oldName string, rec models.Record) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var taken bool
	if err := tx.QueryRowContext(ctx, `
		SELECT EXISTS (SELECT 1 FROM secrets WHERE owner = $1 AND name = $2 AND deleted = false)
	`, rec.Owner, rec.Name).Scan(&taken); err != nil {
		return fmt.Errorf("check new name: %w", err)
	}
	if taken {
		return fmt.Errorf("%w: %q", vault.ErrDuplicateName, rec.Name)
	}

	if _, err := tx.ExecContext(ctx, `
		DELETE FROM secrets WHERE owner = $1 AND name = $2 AND deleted = true
	`, rec.Owner, rec.Name); err != nil {
		return fmt.Errorf("drop tombstone: %w", err)
	}

	res, err := tx.ExecContext(ctx, `
		UPDATE secrets SET name = $3, type = $4, line = $5, version = $6
		WHERE owner = $1 AND name = $2 AND deleted = false
	`, rec.Owner, oldName, rec.Name, rec.Type, rec.Line, rec.Version)
	if err != nil {
		return fmt.Errorf("rename: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// DeleteRecords soft-deletes the named records of owner.
func (r *PostgresSecretRepository) DeleteRecords(ctx context.Context, owner string, names []string, version int64) error {
	query := `UPDATE secrets SET deleted = true, version = $3 WHERE owner = $1 AND name = ANY($2) AND deleted = false`
	if _, err := r.DB.ExecContext(ctx, query, owner, pq.Array(names), version); err != nil {
		return fmt.Errorf("DeleteRecords: %w", err)
	}
	return nil
}

// PurgeDeleted removes soft-deleted records last written before cutoff.
func (r *PostgresSecretRepository) PurgeDeleted(ctx context.Context, cutoff int64) (int64, error) {
	res, err := r.DB.ExecContext(ctx, `
		DELETE FROM secrets
		 WHERE deleted = true
		   AND version < $1
	`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("PurgeDeleted: %w", err)
	}
	return res.RowsAffected()
}
