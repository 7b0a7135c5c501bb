package store

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jmoiron/sqlx"
)

func openPath(t *testing.T, path string) *Store {
	t.Helper()
	s, err := Open(context.Background(), Options{DSN: path})
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	return s
}

func TestOpen_CreatesNewDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	s := openPath(t, path)
	defer s.Close()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Error("database file was not created")
	}
	if s.Driver() != DriverSQLite {
		t.Errorf("Driver() = %q, want %q", s.Driver(), DriverSQLite)
	}
}

func TestOpen_OpensExistingDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	s1 := openPath(t, path)
	mustInsert(t, s1, 1, 0)
	s1.Close()

	s2 := openPath(t, path)
	defer s2.Close()

	var count int
	if err := s2.DB().QueryRow("SELECT COUNT(*) FROM accounts").Scan(&count); err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if count != 1 {
		t.Errorf("count = %d, want 1", count)
	}
}

func TestOpen_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	for i := 0; i < 3; i++ {
		s := openPath(t, path)
		s.Close()
	}

	s := openPath(t, path)
	defer s.Close()

	var name string
	err := s.DB().QueryRow(
		"SELECT name FROM sqlite_master WHERE type='table' AND name=?",
		"accounts",
	).Scan(&name)
	if err != nil {
		t.Errorf("accounts table not found after idempotent opens: %v", err)
	}
}

func TestOpen_InMemory(t *testing.T) {
	s := openPath(t, ":memory:")
	defer s.Close()

	mustInsert(t, s, 1, 0)
	got, err := s.ListAccounts(context.Background())
	if err != nil {
		t.Fatalf("ListAccounts() failed: %v", err)
	}
	if len(got) != 1 {
		t.Errorf("len = %d, want 1", len(got))
	}
}

func TestOpen_InvalidPath(t *testing.T) {
	_, err := Open(context.Background(), Options{DSN: "/nonexistent/dir/test.db"})
	if err == nil {
		t.Error("expected error for invalid path, got nil")
	}
}

func TestOpen_UnsupportedDriver(t *testing.T) {
	_, err := Open(context.Background(), Options{Driver: "mysql", DSN: "x"})
	if err == nil || !strings.Contains(err.Error(), "unsupported driver") {
		t.Errorf("expected unsupported driver error, got %v", err)
	}
}

func TestOpen_EmptyDSN(t *testing.T) {
	_, err := Open(context.Background(), Options{})
	if err == nil || !strings.Contains(err.Error(), "dsn is required") {
		t.Errorf("expected dsn error, got %v", err)
	}
}

func TestClose_NilDB(t *testing.T) {
	s := &Store{}
	if err := s.Close(); err != nil {
		t.Errorf("Close() on nil db should not error: %v", err)
	}
	var nilStore *Store
	if err := nilStore.Close(); err != nil {
		t.Errorf("Close() on nil store should not error: %v", err)
	}
}

func TestClose_MultipleCalls(t *testing.T) {
	s := openPath(t, filepath.Join(t.TempDir(), "test.db"))

	if err := s.Close(); err != nil {
		t.Errorf("first Close() failed: %v", err)
	}

	// Second close must not panic.
	_ = s.Close()
}

func TestPing(t *testing.T) {
	s := createTestStore(t)
	if err := s.Ping(context.Background()); err != nil {
		t.Errorf("Ping() failed: %v", err)
	}
}

// Pragma tests

func TestPragma_JournalMode(t *testing.T) {
	s := createTestStore(t)
	if err := s.verifyPragma("journal_mode", "wal"); err != nil {
		t.Error(err)
	}
}

func TestPragma_Synchronous(t *testing.T) {
	s := createTestStore(t)
	// NORMAL = 1
	if err := s.verifyPragma("synchronous", "1"); err != nil {
		t.Error(err)
	}
}

func TestPragma_BusyTimeout(t *testing.T) {
	s := createTestStore(t)
	if err := s.verifyPragma("busy_timeout", "5000"); err != nil {
		t.Error(err)
	}
}

func TestPragma_UserVersion(t *testing.T) {
	s := createTestStore(t)
	if err := s.verifyPragma("user_version", "1"); err != nil {
		t.Error(err)
	}
}

// Schema tests

func TestSchema_AccountsTable(t *testing.T) {
	s := createTestStore(t)

	columns := getTableColumns(t, s.db, "accounts")
	for _, col := range []string{"id", "introducer_id", "beneficiary_id"} {
		if !contains(columns, col) {
			t.Errorf("accounts table missing column %q", col)
		}
	}
}

func TestSchema_IntroducerIndex(t *testing.T) {
	s := createTestStore(t)

	indexes := getTableIndexes(t, s.db, "accounts")
	if !contains(indexes, "idx_accounts_introducer") {
		t.Error("accounts table missing index idx_accounts_introducer")
	}
}

func TestSchema_NoForeignKeyOnIntroducer(t *testing.T) {
	s := createTestStore(t)

	// Dangling introducer and beneficiary references are allowed.
	_, err := s.db.Exec(`INSERT INTO accounts (id, introducer_id, beneficiary_id) VALUES (1, 999, 888)`)
	if err != nil {
		t.Fatalf("insert with dangling references failed: %v", err)
	}
}

func getTableColumns(t *testing.T, db *sqlx.DB, table string) []string {
	t.Helper()

	rows, err := db.Query("PRAGMA table_info(" + table + ")")
	if err != nil {
		t.Fatalf("failed to get table info for %q: %v", table, err)
	}
	defer rows.Close()

	var columns []string
	for rows.Next() {
		var cid int
		var name, ctype string
		var notnull, pk int
		var dfltValue interface{}
		if err := rows.Scan(&cid, &name, &ctype, &notnull, &dfltValue, &pk); err != nil {
			t.Fatalf("failed to scan column info: %v", err)
		}
		columns = append(columns, name)
	}
	return columns
}

func getTableIndexes(t *testing.T, db *sqlx.DB, table string) []string {
	t.Helper()

	var indexes []string
	err := db.Select(&indexes, "SELECT name FROM sqlite_master WHERE type='index' AND tbl_name=?", table)
	if err != nil {
		t.Fatalf("failed to get indexes for %q: %v", table, err)
	}
	return indexes
}

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
