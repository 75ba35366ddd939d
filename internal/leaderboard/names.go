package leaderboard

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/samber/lo"
)

// UnknownName is shown for players whose display name cannot be resolved.
const UnknownName = "Unknown"

// ErrNameNotFound is returned by Directory for players it has never seen.
var ErrNameNotFound = errors.New("display name not found")

// NameResolver maps a player ID to a display name. Lookups may fail; callers
// always fall back to UnknownName.
type NameResolver interface {
	DisplayName(ctx context.Context, playerID string) (string, error)
}

// Standing is a ranked, display-ready leaderboard line.
type Standing struct {
	Rank     int    `json:"rank"`
	PlayerID string `json:"playerId"`
	Name     string `json:"name"`
	Resolved bool   `json:"resolved"`
	Points   int    `json:"points"`
	Streak   int    `json:"streak"`
}

// Line renders the standing the way the bot prints it.
// Unresolved players omit the streak.
func (s Standing) Line() string {
	if !s.Resolved {
		return fmt.Sprintf("%d. %s — %d pts", s.Rank, s.Name, s.Points)
	}
	return fmt.Sprintf("%d. %s — %d pts (Streak %d)", s.Rank, s.Name, s.Points, s.Streak)
}

// Resolve ranks entries (already ordered) and attaches display names.
// A nil resolver resolves nobody.
func Resolve(ctx context.Context, entries []Entry, r NameResolver) []Standing {
	return lo.Map(entries, func(e Entry, i int) Standing {
		st := Standing{
			Rank:     i + 1,
			PlayerID: e.PlayerID,
			Name:     UnknownName,
			Points:   e.Points,
			Streak:   e.Streak,
		}
		if r == nil {
			return st
		}
		name, err := r.DisplayName(ctx, e.PlayerID)
		if err != nil || strings.TrimSpace(name) == "" {
			return st
		}
		st.Name, st.Resolved = name, true
		return st
	})
}

// Render joins standings into the leaderboard message body.
func Render(standings []Standing) string {
	var b strings.Builder
	for _, s := range standings {
		b.WriteString(s.Line())
		b.WriteByte('\n')
	}
	return b.String()
}

// Directory is an in-memory NameResolver fed with names as players show up.
type Directory struct {
	mu    sync.RWMutex
	names map[string]string
}

// NewDirectory returns an empty directory.
func NewDirectory() *Directory {
	return &Directory{names: make(map[string]string)}
}

// Remember records the latest display name for a player. Blank names are ignored.
func (d *Directory) Remember(playerID, name string) {
	name = strings.TrimSpace(name)
	if playerID == "" || name == "" {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.names[playerID] = name
}

// DisplayName implements NameResolver.
func (d *Directory) DisplayName(_ context.Context, playerID string) (string, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if n, ok := d.names[playerID]; ok {
		return n, nil
	}
	return "", fmt.Errorf("%w: %s", ErrNameNotFound, playerID)
}
