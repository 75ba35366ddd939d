// internal/leaderboard/board.go
//
// In-memory leaderboard.
// Responsibilities:
//   - Hold one Record per player, remembering the order players first scored.
//   - Answer point/streak lookups with a {0, 0} default for unknown players.
//   - Produce top-N rankings (points descending, ties in insertion order).
//
// Durability lives behind the Store interface (file.go, sqlite.go); the Board
// only mirrors what was loaded and what the engine has awarded since.

package leaderboard

import (
	"sort"
	"sync"
)

// DefaultTopN is the ranking size used when callers ask for n <= 0.
const DefaultTopN = 10

// Record is a player's durable score line.
type Record struct {
	Points int `json:"points"`
	Streak int `json:"streak"`
}

// Entry pairs a player ID with its record.
type Entry struct {
	PlayerID string `json:"playerId"`
	Record
}

// Board is a concurrency-safe, insertion-ordered map of player records.
type Board struct {
	mu      sync.RWMutex
	order   []string
	records map[string]Record
}

// NewBoard returns a board seeded with entries, in the order given.
// Later duplicates overwrite earlier ones but keep the first position.
func NewBoard(entries []Entry) *Board {
	b := &Board{records: make(map[string]Record, len(entries))}
	for _, e := range entries {
		b.setLocked(e.PlayerID, e.Record)
	}
	return b
}

// Get returns the record for id, or the zero record if the player never scored.
func (b *Board) Get(id string) Record {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.records[id]
}

// Set stores rec for id. New players are appended to the insertion order.
func (b *Board) Set(id string, rec Record) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.setLocked(id, rec)
}

func (b *Board) setLocked(id string, rec Record) {
	if _, ok := b.records[id]; !ok {
		b.order = append(b.order, id)
	}
	b.records[id] = rec
}

// Len reports how many players are on the board.
func (b *Board) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.order)
}

// Snapshot copies every entry in insertion order.
func (b *Board) Snapshot() []Entry {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]Entry, 0, len(b.order))
	for _, id := range b.order {
		out = append(out, Entry{PlayerID: id, Record: b.records[id]})
	}
	return out
}

// Top returns the n best entries by points, highest first.
// Equal points keep insertion order. n <= 0 means DefaultTopN.
func (b *Board) Top(n int) []Entry {
	if n <= 0 {
		n = DefaultTopN
	}
	all := b.Snapshot()
	sort.SliceStable(all, func(i, j int) bool { return all[i].Points > all[j].Points })
	if len(all) > n {
		all = all[:n]
	}
	return all
}
