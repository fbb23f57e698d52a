package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/roach88/actdb/internal/actdb"
	"github.com/roach88/actdb/internal/ir"
)

// Record is the durable form of one log entry.
type Record struct {
	ID      string
	Version int

	// Seq is actdb.NoSeq for value entries.
	Seq int

	// Name is the registry name of an action; empty for value entries.
	Name string

	// Payload is the stored value of a value entry, or the args of an action.
	Payload ir.IRValue

	// Hash is ir.EntryHash over the fields above.
	Hash string
}

// IsAction reports whether the record is an action entry.
func (r Record) IsAction() bool {
	return r.Seq != actdb.NoSeq
}

// ReadEntries returns every stored entry ordered by version.
// Returns an empty slice (not nil) for an empty log.
func (s *Store) ReadEntries(ctx context.Context) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT version, id, seq, name, payload, entry_hash
		FROM entries
		ORDER BY version ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query entries: %w", err)
	}
	defer rows.Close()

	records := []Record{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate entries: %w", err)
	}

	return records, nil
}

// Count returns the number of stored entries.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM entries`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count entries: %w", err)
	}
	return n, nil
}

func scanRecord(rows *sql.Rows) (Record, error) {
	var (
		rec     Record
		seq     sql.NullInt64
		payload string
	)
	if err := rows.Scan(&rec.Version, &rec.ID, &seq, &rec.Name, &payload, &rec.Hash); err != nil {
		return Record{}, fmt.Errorf("scan entry: %w", err)
	}

	rec.Seq = actdb.NoSeq
	if seq.Valid {
		rec.Seq = int(seq.Int64)
	}

	v, err := unmarshalPayload(payload)
	if err != nil {
		return Record{}, fmt.Errorf("entry %s: %w", rec.ID, err)
	}
	rec.Payload = v

	return rec, nil
}
