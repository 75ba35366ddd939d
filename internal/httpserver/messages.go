package httpserver

import (
	"fmt"
	"strings"

	"github.com/robalobadob/cremewhiz/internal/game"
	"github.com/robalobadob/cremewhiz/internal/leaderboard"
)

const (
	noActiveRoundText = "❌ No active game. Use `/startgame`"
	persistWarning    = "⚠️ Your score could not be saved right now."
)

// startText is the banner posted when a round begins.
func startText(s game.Summary) string {
	var b strings.Builder
	if s.Replaced {
		b.WriteString("♻️ Your unfinished round was discarded.\n")
	}
	fmt.Fprintf(&b, "🕵️ Category: %s\n", s.Category)
	fmt.Fprintf(&b, "🎲 Difficulty: %s\n", s.Difficulty)
	fmt.Fprintf(&b, "📝 Word length: %d letters\n", s.WordLength)
	fmt.Fprintf(&b, "Hint: %s\n", s.Hint)
	fmt.Fprintf(&b, "You have %d guesses. Use `/guess [word]`!", s.GuessesLeft)
	return b.String()
}

// guessText renders a guess result.
func guessText(r game.GuessResult) string {
	switch r.Outcome {
	case game.OutcomeWon:
		return fmt.Sprintf("✅ You guessed it! %s\nPoints:%d\nStreak:%d", r.Word, r.PointsAwarded, r.Streak)
	case game.OutcomeLost:
		return fmt.Sprintf("%s\n❌ Out of guesses! Word was %s", r.Marks, r.Word)
	case game.OutcomeOutOfGuesses:
		return fmt.Sprintf("❌ Out of guesses! Word was %s", r.Word)
	default:
		return fmt.Sprintf("%s\nGuesses left: %d\nUse `/hint`", r.Marks, r.GuessesLeft)
	}
}

func statsText(rec leaderboard.Record) string {
	return fmt.Sprintf("📊 Points: %d\nStreak: %d", rec.Points, rec.Streak)
}

func leaderboardText(standings []leaderboard.Standing) string {
	return "🏆 Leaderboard:\n" + leaderboard.Render(standings)
}
