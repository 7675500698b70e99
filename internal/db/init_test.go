package db_test

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/atinyakov/secretkeeper/internal/db"
)

func TestInitPostgres_ErrorPaths(t *testing.T) {
	cases := []struct {
		name       string
		dsn        string
		wantSubstr string
	}{
		{"invalid DSN", "some=random", "ping postgres"},
		{"empty DSN", "", "ping postgres"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := db.InitPostgres(tc.dsn)
			if err == nil {
				t.Fatalf("InitPostgres(%q) did not return error", tc.dsn)
			}
			if !strings.Contains(err.Error(), tc.wantSubstr) {
				t.Errorf("InitPostgres(%q) error = %q; want substring %q", tc.dsn, err.Error(), tc.wantSubstr)
			}
		})
	}
}

func TestOpenSQLite_Migrates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vault.db")

	conn, err := db.OpenSQLite(path)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	defer conn.Close()

	var n int
	if err := conn.QueryRow(`SELECT COUNT(*) FROM secrets`).Scan(&n); err != nil {
		t.Fatalf("secrets table missing: %v", err)
	}
	if n != 0 {
		t.Errorf("fresh database has %d secrets", n)
	}

	// migrations are idempotent
	if err := db.RunMigrations(conn); err != nil {
		t.Errorf("second RunMigrations: %v", err)
	}
}
