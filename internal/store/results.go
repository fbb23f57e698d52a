package store

import (
	"context"
	"fmt"

	"github.com/roach88/actdb/internal/actdb"
	"github.com/roach88/actdb/internal/ir"
)

// Divergence is an action whose replayed value differs from the stored hash.
type Divergence struct {
	ID       string
	Stored   string
	Replayed string // empty if the entry is missing from the replayed log
}

// SaveResults resolves every stored action entry in db and records the
// hash of its value. Hashes already recorded are kept, so the first run's
// results stay the reference. Returns the number of new hashes.
//
// Resolving forces evaluation of every action; call it once the log is in
// its final shape.
func (s *Store) SaveResults(ctx context.Context, db *actdb.DB) (int, error) {
	stored, err := s.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("save results: %w", err)
	}

	type result struct {
		id   string
		hash string
	}
	var results []result
	for _, e := range db.Entries() {
		if e.Version() >= stored {
			break
		}
		if !e.IsAction() {
			continue
		}
		hash, err := ir.ValueHash(db.Resolve(e))
		if err != nil {
			return 0, fmt.Errorf("save results %s: %w", e.ID(), err)
		}
		results = append(results, result{id: e.ID(), hash: hash})
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("save results: begin: %w", err)
	}
	defer tx.Rollback()

	written := 0
	for _, r := range results {
		res, err := tx.ExecContext(ctx, `
			INSERT INTO results (id, value_hash) VALUES (?, ?)
			ON CONFLICT(id) DO NOTHING
		`, r.id, r.hash)
		if err != nil {
			return 0, fmt.Errorf("save results %s: %w", r.id, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("save results %s: %w", r.id, err)
		}
		written += int(n)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("save results: commit: %w", err)
	}
	return written, nil
}

// VerifyResults resolves every action with a recorded hash in db and
// returns those whose value hash differs. An empty result means db
// reproduces the stored results.
func (s *Store) VerifyResults(ctx context.Context, db *actdb.DB) ([]Divergence, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT r.id, r.value_hash
		FROM results r
		JOIN entries e ON e.id = r.id
		ORDER BY e.version ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query results: %w", err)
	}

	type result struct {
		id   string
		hash string
	}
	var results []result
	for rows.Next() {
		var r result
		if err := rows.Scan(&r.id, &r.hash); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan result: %w", err)
		}
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("iterate results: %w", err)
	}
	rows.Close()

	// Resolution runs after the rows are closed; the pool has one connection.
	divergences := []Divergence{}
	for _, r := range results {
		e := db.Lookup(r.id)
		if e == nil {
			divergences = append(divergences, Divergence{ID: r.id, Stored: r.hash})
			continue
		}
		hash, err := ir.ValueHash(db.Resolve(e))
		if err != nil {
			return nil, fmt.Errorf("verify %s: %w", r.id, err)
		}
		if hash != r.hash {
			divergences = append(divergences, Divergence{ID: r.id, Stored: r.hash, Replayed: hash})
		}
	}
	return divergences, nil
}
