package repository

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atinyakov/secretkeeper/internal/db"
	"github.com/atinyakov/secretkeeper/internal/models"
	"github.com/atinyakov/secretkeeper/internal/vault"
)

func setupSQLite(t *testing.T) *SQLiteSecretRepository {
	t.Helper()
	conn, err := db.OpenSQLite(filepath.Join(t.TempDir(), "secrets.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return NewSQLiteSecretRepository(conn)
}

func rec(owner, name string, version int64) models.Record {
	return models.Record{Owner: owner, Name: name, Type: "CreditCard", Line: cardLine, Version: version}
}

func TestSQLite_UpsertListGet(t *testing.T) {
	repo := setupSQLite(t)
	ctx := context.Background()

	require.NoError(t, repo.UpsertRecord(ctx, rec("alice", "card1", 1)))
	require.NoError(t, repo.UpsertRecord(ctx, rec("alice", "card2", 2)))
	require.NoError(t, repo.UpsertRecord(ctx, rec("bob", "card1", 3)))

	updated := rec("alice", "card1", 4)
	updated.Line = "CreditCard,card1,travel,Jane Doe,1234567890123456,123,12/25"
	require.NoError(t, repo.UpsertRecord(ctx, updated))

	recs, err := repo.ListRecords(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "card1", recs[0].Name)
	assert.Equal(t, updated.Line, recs[0].Line)
	assert.Equal(t, "card2", recs[1].Name)

	got, err := repo.GetRecord(ctx, "bob", "card1")
	require.NoError(t, err)
	assert.Equal(t, int64(3), got.Version)

	_, err = repo.GetRecord(ctx, "bob", "card2")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLite_DeleteAndPurge(t *testing.T) {
	repo := setupSQLite(t)
	ctx := context.Background()

	require.NoError(t, repo.UpsertRecord(ctx, rec("alice", "card1", 1)))
	require.NoError(t, repo.UpsertRecord(ctx, rec("alice", "card2", 1)))
	require.NoError(t, repo.UpsertRecord(ctx, rec("alice", "card3", 1)))

	require.NoError(t, repo.DeleteRecords(ctx, "alice", []string{"card1", "card3"}, 10))
	require.NoError(t, repo.DeleteRecords(ctx, "alice", nil, 10))

	recs, err := repo.ListRecords(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "card2", recs[0].Name)

	n, err := repo.PurgeDeleted(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)

	n, err = repo.PurgeDeleted(ctx, 11)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestSQLite_UpsertRevivesDeleted(t *testing.T) {
	repo := setupSQLite(t)
	ctx := context.Background()

	require.NoError(t, repo.UpsertRecord(ctx, rec("alice", "card1", 1)))
	require.NoError(t, repo.DeleteRecords(ctx, "alice", []string{"card1"}, 2))
	require.NoError(t, repo.UpsertRecord(ctx, rec("alice", "card1", 3)))

	got, err := repo.GetRecord(ctx, "alice", "card1")
	require.NoError(t, err)
	assert.False(t, got.Deleted)
}

func TestSQLite_Rename(t *testing.T) {
	repo := setupSQLite(t)
	ctx := context.Background()

	require.NoError(t, repo.UpsertRecord(ctx, rec("alice", "card1", 1)))
	require.NoError(t, repo.RenameRecord(ctx, "card1", rec("alice", "card9", 2)))

	_, err := repo.GetRecord(ctx, "alice", "card1")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = repo.GetRecord(ctx, "alice", "card9")
	assert.NoError(t, err)

	err = repo.RenameRecord(ctx, "missing", rec("alice", "card10", 3))
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = repo.GetRecord(ctx, "alice", "card10")
	assert.ErrorIs(t, err, ErrNotFound)
}

func names(t *testing.T, repo *SQLiteSecretRepository, owner string) []string {
	t.Helper()
	recs, err := repo.ListRecords(context.Background(), owner)
	require.NoError(t, err)
	out := make([]string, len(recs))
	for i, r := range recs {
		out[i] = r.Name
	}
	return out
}

func TestSQLite_InsertRecord(t *testing.T) {
	repo := setupSQLite(t)
	ctx := context.Background()

	require.NoError(t, repo.InsertRecord(ctx, rec("alice", "card1", 1)))
	require.NoError(t, repo.InsertRecord(ctx, rec("alice", "card2", 1)))
	require.NoError(t, repo.InsertRecord(ctx, rec("bob", "card1", 1)))

	second := rec("alice", "card1", 2)
	second.Line = "CreditCard,card1,other,Bob,6543210987654321,321,01/30"
	err := repo.InsertRecord(ctx, second)
	assert.ErrorIs(t, err, vault.ErrDuplicateName)

	got, err := repo.GetRecord(ctx, "alice", "card1")
	require.NoError(t, err)
	assert.Equal(t, cardLine, got.Line)

	// a deleted name can be used again and counts as newest
	require.NoError(t, repo.DeleteRecords(ctx, "alice", []string{"card1"}, 3))
	require.NoError(t, repo.InsertRecord(ctx, second))
	assert.Equal(t, []string{"card2", "card1"}, names(t, repo, "alice"))
}

func TestSQLite_RenameKeepsPosition(t *testing.T) {
	repo := setupSQLite(t)
	ctx := context.Background()

	for _, n := range []string{"card1", "card2", "card3"} {
		require.NoError(t, repo.InsertRecord(ctx, rec("alice", n, 1)))
	}
	require.NoError(t, repo.DeleteRecords(ctx, "alice", []string{"card3"}, 2))

	require.NoError(t, repo.RenameRecord(ctx, "card1", rec("alice", "card3", 3)))
	assert.Equal(t, []string{"card3", "card2"}, names(t, repo, "alice"))

	err := repo.RenameRecord(ctx, "card3", rec("alice", "card2", 4))
	assert.ErrorIs(t, err, vault.ErrDuplicateName)
	assert.Equal(t, []string{"card3", "card2"}, names(t, repo, "alice"))
}
