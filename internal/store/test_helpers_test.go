package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
)

// createTestStore creates a new file-backed sqlite store for testing.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(context.Background(), Options{Driver: DriverSQLite, DSN: path})
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createMockStore creates a postgres-dialect store backed by sqlmock.
func createMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() failed: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return New(sqlx.NewDb(db, DriverPostgres)), mock
}

func mustInsert(t *testing.T, s Statements, id, introducerID int64) {
	t.Helper()
	if err := s.InsertProvisional(context.Background(), id, introducerID); err != nil {
		t.Fatalf("InsertProvisional(%d, %d) failed: %v", id, introducerID, err)
	}
}
