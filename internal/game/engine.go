// internal/game/engine.go
//
// Game engine: per-player round lifecycle and scoring.
// Responsibilities:
//   - Start rounds from the word bank, seeded with the player's leaderboard record.
//   - Apply guesses: feedback, win/loss transitions, points and streaks.
//   - Hints (one per round, costs HintPenalty on a win).
//   - Persist the leaderboard after every win.
//
// State machine per player: no round → in progress → no round.
// Calls for the same player are serialized; different players run in parallel.

package game

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/cremewhiz/internal/leaderboard"
	"github.com/robalobadob/cremewhiz/internal/words"
)

const (
	// MaxGuesses is the number of guesses a round starts with.
	MaxGuesses = 3
	// HintPenalty is subtracted from a win's base points when the hint was used.
	HintPenalty = 20
)

// basePoints maps guesses used on a win to the points awarded.
var basePoints = map[int]int{1: 50, 2: 70, 3: 100}

// RoundStore holds active rounds keyed by player ID.
type RoundStore interface {
	// Save inserts or replaces the player's round.
	Save(ctx context.Context, r *Round) error
	// Get returns the player's round or ErrNoActiveRound.
	Get(ctx context.Context, playerID string) (*Round, error)
	// Delete removes the player's round; deleting a missing round is not an error.
	Delete(ctx context.Context, playerID string) error
}

// Engine runs rounds for every player.
type Engine struct {
	bank   *words.Bank
	rounds RoundStore
	board  *leaderboard.Board
	store  leaderboard.Store

	locksMu sync.Mutex
	locks   map[string]*playerLock // entries live while some call holds or waits on them

	saveMu sync.Mutex // serializes snapshot+write pairs

	now func() time.Time
}

// NewEngine wires an engine. board is the in-memory mirror of store, usually
// built from store.Load at startup.
func NewEngine(bank *words.Bank, rounds RoundStore, board *leaderboard.Board, store leaderboard.Store) *Engine {
	return &Engine{
		bank:   bank,
		rounds: rounds,
		board:  board,
		store:  store,
		locks:  make(map[string]*playerLock),
		now:    time.Now,
	}
}

// playerLock is a per-player mutex with a count of interested callers.
type playerLock struct {
	mu   sync.Mutex
	refs int
}

// lock acquires the player's critical section and returns its release func.
// The entry is dropped once the last caller releases it.
func (e *Engine) lock(playerID string) func() {
	e.locksMu.Lock()
	pl, ok := e.locks[playerID]
	if !ok {
		pl = &playerLock{}
		e.locks[playerID] = pl
	}
	pl.refs++
	e.locksMu.Unlock()

	pl.mu.Lock()
	return func() {
		pl.mu.Unlock()
		e.locksMu.Lock()
		if pl.refs--; pl.refs == 0 {
			delete(e.locks, playerID)
		}
		e.locksMu.Unlock()
	}
}

// Categories lists the word bank categories in catalog order.
func (e *Engine) Categories() []string { return e.bank.Categories() }

// StartRound draws a word from category and begins a round for the player.
// An unfinished round is discarded and replaced; Summary.Replaced reports it.
func (e *Engine) StartRound(ctx context.Context, playerID, category string) (Summary, error) {
	defer e.lock(playerID)()

	entry, err := e.bank.Select(category)
	if err != nil {
		return Summary{}, err
	}

	replaced := false
	if prev, err := e.rounds.Get(ctx, playerID); err == nil {
		replaced = true
		log.Info().Str("player", playerID).Str("round", prev.ID).Msg("discarding unfinished round")
	} else if !errors.Is(err, ErrNoActiveRound) {
		return Summary{}, fmt.Errorf("load round: %w", err)
	}

	rec := e.board.Get(playerID)
	r := &Round{
		ID:          randomID(),
		PlayerID:    playerID,
		Word:        entry.Word,
		Hint:        entry.Hint,
		Category:    category,
		Difficulty:  entry.Difficulty,
		GuessesLeft: MaxGuesses,
		Streak:      rec.Streak,
		Points:      rec.Points,
		StartedAt:   e.now(),
	}
	if err := e.rounds.Save(ctx, r); err != nil {
		return Summary{}, fmt.Errorf("save round: %w", err)
	}

	log.Info().Str("player", playerID).Str("round", r.ID).Str("category", category).
		Str("difficulty", string(r.Difficulty)).Msg("round started")
	log.Debug().Str("round", r.ID).Str("word", r.Word).Msg("round word")

	return Summary{
		Category:    category,
		Difficulty:  r.Difficulty,
		WordLength:  utf8.RuneCountInString(r.Word),
		Hint:        r.Hint,
		GuessesLeft: r.GuessesLeft,
		Replaced:    replaced,
	}, nil
}

// SubmitGuess applies one guess to the player's round.
//
// On a win the score is written to the leaderboard store. If that write
// fails the Won result is still returned, together with a *PersistError;
// the award stays on the in-memory board and goes out with the next write.
func (e *Engine) SubmitGuess(ctx context.Context, playerID, guess string) (GuessResult, error) {
	defer e.lock(playerID)()

	r, err := e.rounds.Get(ctx, playerID)
	if err != nil {
		return GuessResult{}, err
	}

	if r.GuessesLeft <= 0 {
		if err := e.rounds.Delete(ctx, playerID); err != nil {
			return GuessResult{}, fmt.Errorf("delete round: %w", err)
		}
		log.Warn().Str("player", playerID).Str("round", r.ID).Msg("round had no guesses left")
		return GuessResult{
			Outcome:     OutcomeOutOfGuesses,
			GuessesUsed: MaxGuesses,
			Word:        r.Word,
			Streak:      r.Streak,
			TotalPoints: r.Points,
		}, nil
	}

	// Mutate a copy; the stored round changes only through the RoundStore.
	next := *r
	r = &next
	r.GuessesLeft--
	used := MaxGuesses - r.GuessesLeft
	marks := Feedback(r.Word, guess)

	if fold(guess) == r.Word {
		return e.win(ctx, r, marks, used)
	}

	if r.GuessesLeft == 0 {
		if err := e.rounds.Delete(ctx, playerID); err != nil {
			return GuessResult{}, fmt.Errorf("delete round: %w", err)
		}
		log.Info().Str("player", playerID).Str("round", r.ID).Msg("round lost")
		return GuessResult{
			Outcome:     OutcomeLost,
			Marks:       marks,
			GuessesUsed: used,
			Word:        r.Word,
			Streak:      r.Streak,
			TotalPoints: r.Points,
		}, nil
	}

	if err := e.rounds.Save(ctx, r); err != nil {
		return GuessResult{}, fmt.Errorf("save round: %w", err)
	}
	return GuessResult{
		Outcome:     OutcomeContinue,
		Marks:       marks,
		GuessesLeft: r.GuessesLeft,
		GuessesUsed: used,
		Streak:      r.Streak,
		TotalPoints: r.Points,
	}, nil
}

// win scores a correct guess, ends the round and persists the board.
func (e *Engine) win(ctx context.Context, r *Round, marks Marks, used int) (GuessResult, error) {
	if err := e.rounds.Delete(ctx, r.PlayerID); err != nil {
		return GuessResult{}, fmt.Errorf("delete round: %w", err)
	}

	award := Score(used, r.HintUsed)
	r.Points += award
	r.Streak++
	e.board.Set(r.PlayerID, leaderboard.Record{Points: r.Points, Streak: r.Streak})

	res := GuessResult{
		Outcome:       OutcomeWon,
		Marks:         marks,
		GuessesUsed:   used,
		Word:          r.Word,
		PointsAwarded: award,
		Streak:        r.Streak,
		TotalPoints:   r.Points,
	}
	log.Info().Str("player", r.PlayerID).Str("round", r.ID).Int("used", used).
		Int("points", award).Int("streak", r.Streak).Msg("round won")

	if err := e.persist(ctx); err != nil {
		log.Error().Err(err).Str("player", r.PlayerID).Msg("leaderboard write failed")
		return res, &PersistError{PlayerID: r.PlayerID, Err: err}
	}
	return res, nil
}

// persist writes a fresh snapshot of the board, ignoring the caller's
// cancellation.
func (e *Engine) persist(ctx context.Context) error {
	e.saveMu.Lock()
	defer e.saveMu.Unlock()
	return e.store.Save(context.WithoutCancel(ctx), e.board.Snapshot())
}

// Score returns the points for a win after used guesses.
func Score(used int, hintUsed bool) int {
	pts := basePoints[used]
	if hintUsed {
		pts -= HintPenalty
	}
	return pts
}

// UseHint marks the hint as taken and returns it.
func (e *Engine) UseHint(ctx context.Context, playerID string) (string, error) {
	defer e.lock(playerID)()

	r, err := e.rounds.Get(ctx, playerID)
	if err != nil {
		return "", err
	}
	if r.HintUsed {
		return "", ErrHintAlreadyUsed
	}
	next := *r
	next.HintUsed = true
	if err := e.rounds.Save(ctx, &next); err != nil {
		return "", fmt.Errorf("save round: %w", err)
	}
	log.Info().Str("player", playerID).Str("round", r.ID).Msg("hint used")
	return r.Hint, nil
}

// Stats returns the player's leaderboard record, {0, 0} if they never won.
func (e *Engine) Stats(playerID string) leaderboard.Record {
	return e.board.Get(playerID)
}

// Leaderboard returns the topN players by points (topN <= 0 means 10).
// Display names are resolved by the caller.
func (e *Engine) Leaderboard(topN int) []leaderboard.Entry {
	return e.board.Top(topN)
}

// randomID returns a compact 16-hex-char identifier.
func randomID() string {
	var b [8]byte
	_, _ = rand.Read(b[:])
	return hex.EncodeToString(b[:])
}
