package store

import "errors"

var (
	// ErrAnonymousAction is returned by Save for an action entry without a
	// registry name. Its function cannot be recovered on replay.
	ErrAnonymousAction = errors.New("action has no registry name")

	// ErrDiverged indicates the log in the store and the log being saved or
	// replayed disagree about an entry's identity.
	ErrDiverged = errors.New("log diverged from store")

	// ErrCorruptRecord indicates a stored entry whose hash does not match
	// its fields.
	ErrCorruptRecord = errors.New("stored entry hash mismatch")
)
