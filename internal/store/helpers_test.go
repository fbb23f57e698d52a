package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/roach88/actdb/internal/actdb"
	"github.com/roach88/actdb/internal/actions"
	"github.com/roach88/actdb/internal/ir"
)

// createTestStore creates a new store in a temp directory.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func ctx(t *testing.T) context.Context {
	t.Helper()
	return context.Background()
}

// buildLog creates the scenario log: two values, a gather, two accumulates.
func buildLog(t *testing.T) *actdb.DB {
	t.Helper()
	db := actdb.New(actdb.WithRegistry(actions.NewRegistry()))
	db.Store(ir.IRString("foo"))
	db.Store(ir.NewIRObjectFromPairs(ir.O("bar", ir.IRInt(100))))
	mustAct(t, db, actions.Gather, ir.NewIRObjectFromPairs(
		ir.O("foo", ir.IRString("id_0")),
		ir.O("bar", ir.IRString("id_1")),
	))
	mustAct(t, db, actions.Accumulate, ir.NewIRObjectFromPairs(ir.O("biz", ir.IRInt(1))))
	mustAct(t, db, actions.Accumulate, ir.NewIRObjectFromPairs(ir.O("biz", ir.IRInt(2))))
	return db
}

func mustAct(t *testing.T, db *actdb.DB, name string, args ir.IRValue) *actdb.Entry {
	t.Helper()
	e, err := db.ActNamed(name, args)
	if err != nil {
		t.Fatalf("ActNamed(%q) failed: %v", name, err)
	}
	return e
}
