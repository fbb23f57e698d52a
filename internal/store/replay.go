package store

import (
	"context"
	"fmt"

	"github.com/roach88/actdb/internal/actdb"
	"github.com/roach88/actdb/internal/ir"
)

// Replay rebuilds a DB from the stored log.
//
// Records are re-appended in version order: value entries with Store,
// action entries with ActNamed against reg. Each record's hash is checked
// first, and the regenerated id, version and seq must match the stored
// ones. Nothing is evaluated; action values are computed lazily as usual.
//
// opts are applied after actdb.WithRegistry(reg).
func (s *Store) Replay(ctx context.Context, reg *actdb.Registry, opts ...actdb.Option) (*actdb.DB, error) {
	records, err := s.ReadEntries(ctx)
	if err != nil {
		return nil, fmt.Errorf("replay: %w", err)
	}

	all := append([]actdb.Option{actdb.WithRegistry(reg)}, opts...)
	db := actdb.New(all...)

	for _, rec := range records {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("replay: %w", err)
		}
		if err := replayRecord(db, rec); err != nil {
			return nil, fmt.Errorf("replay %s: %w", rec.ID, err)
		}
	}

	return db, nil
}

func replayRecord(db *actdb.DB, rec Record) error {
	hash, err := ir.EntryHash(rec.ID, rec.Version, rec.Seq, rec.Name, rec.Payload)
	if err != nil {
		return err
	}
	if hash != rec.Hash {
		return ErrCorruptRecord
	}

	if !rec.IsAction() {
		id := db.Store(rec.Payload)
		return checkIdentity(rec, id, db.Len()-1, actdb.NoSeq)
	}

	e, err := db.ActNamed(rec.Name, rec.Payload)
	if err != nil {
		return err
	}
	return checkIdentity(rec, e.ID(), e.Version(), e.Seq())
}

func checkIdentity(rec Record, id string, version, seq int) error {
	if id != rec.ID || version != rec.Version || seq != rec.Seq {
		return fmt.Errorf("regenerated %s@%d seq %d, stored %s@%d seq %d: %w",
			id, version, seq, rec.ID, rec.Version, rec.Seq, ErrDiverged)
	}
	return nil
}
