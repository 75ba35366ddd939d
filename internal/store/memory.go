// internal/store/memory.go
//
// In-memory implementation of the game.RoundStore interface.
// Holds the single active round of each player.
//
// Characteristics:
//   - Stores *game.Round objects keyed by player ID in a map.
//   - Concurrency-safe via RWMutex (concurrent reads allowed, writes exclusive).
//   - State is lost when the process restarts; rounds are never written to disk.
//   - Get returns game.ErrNoActiveRound for players without a round.

package store

import (
	"context"
	"sync"

	"github.com/robalobadob/cremewhiz/internal/game"
)

// memory is an in-memory map-based RoundStore implementation.
type memory struct {
	mu     sync.RWMutex           // guards rounds map
	rounds map[string]*game.Round // keyed by Round.PlayerID
}

// NewMemoryStore constructs a new in-memory RoundStore.
func NewMemoryStore() game.RoundStore {
	return &memory{rounds: make(map[string]*game.Round)}
}

// Save adds or replaces the player's round.
func (m *memory) Save(ctx context.Context, r *game.Round) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rounds[r.PlayerID] = r
	return nil
}

// Get looks up a round by player ID.
func (m *memory) Get(ctx context.Context, playerID string) (*game.Round, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if r, ok := m.rounds[playerID]; ok {
		return r, nil
	}
	return nil, game.ErrNoActiveRound
}

// Delete drops the player's round, if any.
func (m *memory) Delete(ctx context.Context, playerID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.rounds, playerID)
	return nil
}
