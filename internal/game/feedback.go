package game

import (
	"slices"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Feedback scores guess against target, one mark per guessed letter.
//
// For each position i of the upper-cased guess:
//   - i past the end of target → absent
//   - same letter as target[i] → exact
//   - letter anywhere in target → present
//   - otherwise → absent
//
// Presence is plain membership, not a letter budget: a letter that occurs
// once in target can be marked present more than once. This differs from
// two-pass Wordle scoring.
func Feedback(target, guess string) Marks {
	w := []rune(target)
	g := []rune(fold(guess))
	out := make(Marks, len(g))
	for i, r := range g {
		switch {
		case i >= len(w):
			out[i] = MarkAbsent
		case r == w[i]:
			out[i] = MarkExact
		case slices.Contains(w, r):
			out[i] = MarkPresent
		default:
			out[i] = MarkAbsent
		}
	}
	return out
}

// fold upper-cases s the way word bank entries are canonicalized.
// A Caser keeps state, so each call gets its own.
func fold(s string) string {
	return cases.Upper(language.Und).String(s)
}
