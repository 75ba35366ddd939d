package game

import (
	"errors"
	"fmt"
)

var (
	// ErrNoActiveRound is returned when a player guesses or asks for a hint
	// without a round in progress. RoundStore implementations return it from Get.
	ErrNoActiveRound = errors.New("no active round")
	// ErrHintAlreadyUsed is returned by the second UseHint call in a round.
	ErrHintAlreadyUsed = errors.New("hint already used")
	// ErrPersistence matches any *PersistError via errors.Is.
	ErrPersistence = errors.New("leaderboard write failed")
)

// PersistError reports that an awarded score could not be written to the
// leaderboard store. The in-memory board still holds the award.
type PersistError struct {
	PlayerID string
	Err      error
}

func (e *PersistError) Error() string {
	return fmt.Sprintf("persist score for %s: %v", e.PlayerID, e.Err)
}

func (e *PersistError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrPersistence) true for every PersistError.
func (e *PersistError) Is(target error) bool { return target == ErrPersistence }
