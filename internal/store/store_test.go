package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/roach88/actdb/internal/testutil"
)

func TestOpen_CreatesNewDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer s.Close()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Error("database file was not created")
	}
}

func TestOpen_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	for i := 0; i < 3; i++ {
		s, err := Open(path)
		if err != nil {
			t.Fatalf("Open() iteration %d failed: %v", i, err)
		}
		s.Close()
	}

	s, err := Open(path)
	if err != nil {
		t.Fatalf("final Open() failed: %v", err)
	}
	defer s.Close()

	for _, table := range []string{"meta", "entries", "results"} {
		var name string
		err := s.db.QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?",
			table,
		).Scan(&name)
		if err != nil {
			t.Errorf("table %q not found after idempotent opens: %v", table, err)
		}
	}
}

func TestOpen_Pragmas(t *testing.T) {
	s := createTestStore(t)

	tests := []struct {
		name     string
		expected string
	}{
		{"journal_mode", "wal"},
		{"synchronous", "1"}, // NORMAL
		{"busy_timeout", "5000"},
		{"foreign_keys", "1"},
	}

	for _, tt := range tests {
		if err := s.verifyPragma(tt.name, tt.expected); err != nil {
			t.Error(err)
		}
	}
}

func TestOpen_SetsSchemaVersion(t *testing.T) {
	s := createTestStore(t)

	var version int
	if err := s.db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		t.Fatalf("query user_version: %v", err)
	}
	if version != currentSchemaVersion {
		t.Errorf("user_version = %d, expected %d", version, currentSchemaVersion)
	}

	var index string
	err := s.db.QueryRow(
		"SELECT name FROM sqlite_master WHERE type='index' AND name='idx_entries_seq_unique'",
	).Scan(&index)
	if err != nil {
		t.Errorf("seq index missing: %v", err)
	}
}

func TestLogID_AssignedOnceAndPersisted(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")
	gen := testutil.SequentialLogIDs("log")

	s1, err := Open(path, WithLogIDGenerator(gen))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	id1, err := s1.LogID(ctx(t))
	if err != nil {
		t.Fatalf("LogID() failed: %v", err)
	}
	s1.Close()

	s2, err := Open(path, WithLogIDGenerator(gen))
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer s2.Close()
	id2, err := s2.LogID(ctx(t))
	if err != nil {
		t.Fatalf("LogID() failed: %v", err)
	}

	if id1 != "log-1" || id2 != "log-1" {
		t.Errorf("log ids = %q, %q; expected log-1 twice", id1, id2)
	}
}

func TestLogID_DefaultIsUUIDv7(t *testing.T) {
	s := createTestStore(t)

	id, err := s.LogID(ctx(t))
	if err != nil {
		t.Fatalf("LogID() failed: %v", err)
	}
	// xxxxxxxx-xxxx-7xxx-...
	if len(id) != 36 || id[14] != '7' {
		t.Errorf("log id %q is not a UUIDv7", id)
	}
}

func TestClose_NilDB(t *testing.T) {
	s := &Store{}
	if err := s.Close(); err != nil {
		t.Errorf("Close() on unopened store: %v", err)
	}
}
