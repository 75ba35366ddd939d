package leaderboard

import (
	"context"
	"errors"
)

// ErrCorrupt is returned by Load when the stored document cannot be read back as a board.
var ErrCorrupt = errors.New("leaderboard: corrupt store")

// Store defines durable storage for the whole board.
// Implementations may be backed by a JSON file (FileStore), SQLite, etc.
type Store interface {
	// Load returns every stored entry in insertion order.
	// A store that was never written returns an empty slice and no error.
	Load(ctx context.Context) ([]Entry, error)

	// Save replaces the stored board with entries.
	Save(ctx context.Context, entries []Entry) error
}
