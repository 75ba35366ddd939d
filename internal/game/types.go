// internal/game/types.go
//
// Core type definitions for the word-guessing engine.
// Defines:
//   - Mark / Marks: per-letter result of a guess (exact/present/absent).
//   - Round: one player's in-progress attempt at a secret word.
//   - Summary, GuessResult: what the engine hands back to the command layer.

package game

import (
	"strings"
	"time"

	"github.com/robalobadob/cremewhiz/internal/words"
)

// Mark represents the evaluation result for a single letter in a guess.
//   - "exact":   letter is in the word at this position.
//   - "present": letter occurs somewhere else in the word.
//   - "absent":  letter is not in the word, or the guess is longer than the word here.
type Mark string

const (
	MarkExact   Mark = "exact"
	MarkPresent Mark = "present"
	MarkAbsent  Mark = "absent"
)

// Emoji returns the tile shown to players.
func (m Mark) Emoji() string {
	switch m {
	case MarkExact:
		return "💚"
	case MarkPresent:
		return "💛"
	default:
		return "⬛"
	}
}

// Marks is the feedback for a whole guess, one mark per guessed letter.
type Marks []Mark

// String renders the marks as a row of emoji tiles.
func (ms Marks) String() string {
	var b strings.Builder
	for _, m := range ms {
		b.WriteString(m.Emoji())
	}
	return b.String()
}

// Round holds the state of one player's in-progress round.
// Rounds live only in the RoundStore; they are never persisted.
type Round struct {
	ID          string           // random hex identifier, for logs
	PlayerID    string           // platform-supplied player identity
	Word        string           // target word, upper case
	Hint        string           // hint text from the word bank
	Category    string           // category the word was drawn from
	Difficulty  words.Difficulty // display label from the word bank
	GuessesLeft int              // starts at MaxGuesses, never below 0
	Streak      int              // copied from the leaderboard at start
	Points      int              // copied from the leaderboard at start
	HintUsed    bool             // set once by UseHint
	StartedAt   time.Time
}

// Summary describes a freshly started round without revealing the word.
type Summary struct {
	Category    string           `json:"category"`
	Difficulty  words.Difficulty `json:"difficulty"`
	WordLength  int              `json:"wordLength"`
	Hint        string           `json:"hint"`
	GuessesLeft int              `json:"guessesLeft"`
	Replaced    bool             `json:"replaced"` // an unfinished round was discarded
}

// Outcome is the coarse result of a guess.
type Outcome string

const (
	OutcomeContinue     Outcome = "continue"       // wrong guess, guesses remain
	OutcomeWon          Outcome = "won"            // correct guess, round over
	OutcomeLost         Outcome = "lost"           // last guess was wrong, round over
	OutcomeOutOfGuesses Outcome = "out_of_guesses" // round had no guesses left on entry
)

// Finished reports whether the round ended with this outcome.
func (o Outcome) Finished() bool { return o != OutcomeContinue }

// GuessResult is returned by SubmitGuess.
type GuessResult struct {
	Outcome       Outcome `json:"outcome"`
	Marks         Marks   `json:"marks,omitempty"`
	GuessesLeft   int     `json:"guessesLeft"`
	GuessesUsed   int     `json:"guessesUsed"`
	Word          string  `json:"word,omitempty"` // revealed only once the round is over
	PointsAwarded int     `json:"pointsAwarded"`
	Streak        int     `json:"streak"`
	TotalPoints   int     `json:"totalPoints"`
}
