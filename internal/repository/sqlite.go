package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/atinyakov/secretkeeper/internal/models"
	"github.com/atinyakov/secretkeeper/internal/vault"
)

// SQLiteSecretRepository stores secret records in a SQLite database whose
// schema was created by db.OpenSQLite.
type SQLiteSecretRepository struct {
	DB *sql.DB
}

// NewSQLiteSecretRepository creates a repository using the provided *sql.DB.
func NewSQLiteSecretRepository(db *sql.DB) *SQLiteSecretRepository {
	return &SQLiteSecretRepository{DB: db}
}

const sqliteUpsert = `
	INSERT INTO secrets (owner, name, type, line, version, deleted)
	VALUES (?, ?, ?, ?, ?, 0)
	ON CONFLICT (owner, name) DO UPDATE SET
		type = excluded.type,
		line = excluded.line,
		version = excluded.version,
		deleted = 0`

// ListRecords returns all live records of owner ordered by creation.
func (r *SQLiteSecretRepository) ListRecords(ctx context.Context, owner string) ([]models.Record, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT owner, name, type, line, version, deleted FROM secrets
		WHERE owner = ? AND deleted = 0 ORDER BY seq
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
func (r *SQLiteSecretRepository) GetRecord(ctx context.Context, owner, name string) (*models.Record, error) {
	var rec models.Record
	err := r.DB.QueryRowContext(ctx, `
		SELECT owner, name, type, line, version, deleted FROM secrets
		WHERE owner = ? AND name = ? AND deleted = 0
	`, owner, name).Scan(&rec.Owner, &rec.Name, &rec.Type, &rec.Line, &rec.Version, &rec.Deleted)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("GetRecord: %w", err)
	}
	return &rec, nil
}

// UpsertRecord inserts rec or overwrites the record with the same owner and name.
func (r *SQLiteSecretRepository) UpsertRecord(ctx context.Context, rec models.Record) error {
	_, err := r.DB.ExecContext(ctx, sqliteUpsert, rec.Owner, rec.Name, rec.Type, rec.Line, rec.Version)
	if err != nil {
		return fmt.Errorf("upsert: %w", err)
	}
	return nil
}

// InsertRecord stores a new record, replacing a soft-deleted one with the
// same name. A live record with that name gives vault.ErrDuplicateName.
func (r *SQLiteSecretRepository) InsertRecord(ctx context.Context, rec models.Record) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		DELETE FROM secrets WHERE owner = ? AND name = ? AND deleted = 1
	`, rec.Owner, rec.Name); err != nil {
		return fmt.Errorf("drop tombstone: %w", err)
	}

	res, err := tx.ExecContext(ctx, `
		INSERT INTO secrets (owner, name, type, line, version, deleted)
		VALUES (?, ?, ?, ?, ?, 0)
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

// RenameRecord renames the live record oldName in place.
func (r *SQLiteSecretRepository) RenameRecord(ctx context.Context, oldName string, rec models.Record) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var taken bool
	if err := tx.QueryRowContext(ctx, `
		SELECT EXISTS (SELECT 1 FROM secrets WHERE owner = ? AND name = ? AND deleted = 0)
	`, rec.Owner, rec.Name).Scan(&taken); err != nil {
		return fmt.Errorf("check new name: %w", err)
	}
	if taken {
		return fmt.Errorf("%w: %q", vault.ErrDuplicateName, rec.Name)
	}

	if _, err := tx.ExecContext(ctx, `
		DELETE FROM secrets WHERE owner = ? AND name = ? AND deleted = 1
	`, rec.Owner, rec.Name); err != nil {
		return fmt.Errorf("drop tombstone: %w", err)
	}

	res, err := tx.ExecContext(ctx, `
		UPDATE secrets SET name = ?, type = ?, line = ?, version = ?
		WHERE owner = ? AND name = ? AND deleted = 0
	`, rec.Name, rec.Type, rec.Line, rec.Version, rec.Owner, oldName)
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
func (r *SQLiteSecretRepository) DeleteRecords(ctx context.Context, owner string, names []string, version int64) error {
	if len(names) == 0 {
		return nil
	}
	args := make([]any, 0, len(names)+2)
	args = append(args, version, owner)
	for _, n := range names {
		args = append(args, n)
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(names)), ",")
	query := `UPDATE secrets SET deleted = 1, version = ? WHERE owner = ? AND deleted = 0 AND name IN (` + placeholders + `)`
	if _, err := r.DB.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("DeleteRecords: %w", err)
	}
	return nil
}

// PurgeDeleted removes soft-deleted records last written before cutoff.
func (r *SQLiteSecretRepository) PurgeDeleted(ctx context.Context, cutoff int64) (int64, error) {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM secrets WHERE deleted = 1 AND version < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("PurgeDeleted: %w", err)
	}
	return res.RowsAffected()
}
