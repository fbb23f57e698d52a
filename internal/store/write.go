package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/actdb/internal/actdb"
	"github.com/roach88/actdb/internal/ir"
)

// Save appends every entry of db not yet in the store, in one transaction,
// and returns how many were written.
//
// The store must hold a prefix of db's log: the last stored entry is
// re-hashed from db and compared, and ErrDiverged is returned on mismatch.
// An anonymous action aborts the whole save with ErrAnonymousAction.
func (s *Store) Save(ctx context.Context, db *actdb.DB) (int, error) {
	entries := db.Entries()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("save: begin: %w", err)
	}
	defer tx.Rollback()

	next, err := nextVersion(ctx, tx)
	if err != nil {
		return 0, fmt.Errorf("save: %w", err)
	}
	if next > len(entries) {
		return 0, fmt.Errorf("save: store holds %d entries, log has %d: %w", next, len(entries), ErrDiverged)
	}
	if next > 0 {
		if err := checkTail(ctx, tx, db, entries[next-1]); err != nil {
			return 0, fmt.Errorf("save: %w", err)
		}
	}

	for _, e := range entries[next:] {
		rec, err := recordOf(db, e)
		if err != nil {
			return 0, fmt.Errorf("save %s: %w", e.ID(), err)
		}
		if err := insertRecord(ctx, tx, rec); err != nil {
			return 0, fmt.Errorf("save %s: %w", e.ID(), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("save: commit: %w", err)
	}
	return len(entries) - next, nil
}

// recordOf builds the durable form of e. Value entries carry their cached
// value; action entries carry their args and registry name.
func recordOf(db *actdb.DB, e *actdb.Entry) (Record, error) {
	rec := Record{
		ID:      e.ID(),
		Version: e.Version(),
		Seq:     e.Seq(),
		Name:    e.Name(),
	}

	if e.IsAction() {
		if e.Name() == "" {
			return Record{}, ErrAnonymousAction
		}
		rec.Payload = ir.Normalize(e.Args())
	} else {
		v, ok := db.Cached(e.ID())
		if !ok {
			return Record{}, fmt.Errorf("value entry has no cached value")
		}
		rec.Payload = v
	}

	hash, err := ir.EntryHash(rec.ID, rec.Version, rec.Seq, rec.Name, rec.Payload)
	if err != nil {
		return Record{}, err
	}
	rec.Hash = hash
	return rec, nil
}

func insertRecord(ctx context.Context, tx *sql.Tx, rec Record) error {
	payload, err := marshalPayload(rec.Payload)
	if err != nil {
		return err
	}

	var seq any
	if rec.IsAction() {
		seq = rec.Seq
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO entries (version, id, seq, name, payload, entry_hash)
		VALUES (?, ?, ?, ?, ?, ?)
	`, rec.Version, rec.ID, seq, rec.Name, payload, rec.Hash)
	if err != nil {
		return fmt.Errorf("insert entry: %w", err)
	}
	return nil
}

func nextVersion(ctx context.Context, tx *sql.Tx) (int, error) {
	var next int
	if err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(version) + 1, 0) FROM entries`).Scan(&next); err != nil {
		return 0, fmt.Errorf("read log length: %w", err)
	}
	return next, nil
}

// checkTail compares the stored hash of e's version with e itself.
func checkTail(ctx context.Context, tx *sql.Tx, db *actdb.DB, e *actdb.Entry) error {
	var stored string
	err := tx.QueryRowContext(ctx, `SELECT entry_hash FROM entries WHERE version = ?`, e.Version()).Scan(&stored)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("version %d missing: %w", e.Version(), ErrDiverged)
	}
	if err != nil {
		return fmt.Errorf("read entry %d: %w", e.Version(), err)
	}

	rec, err := recordOf(db, e)
	if err != nil {
		return fmt.Errorf("%s: %w", e.ID(), ErrDiverged)
	}
	if rec.Hash != stored {
		return fmt.Errorf("%s: %w", e.ID(), ErrDiverged)
	}
	return nil
}
