// internal/words/words.go
//
// Word bank for the game engine.
//
// Responsibilities:
//   - Parse the catalog document {category: [{word, hint, difficulty}, ...]}.
//   - Keep categories in document order so menus list them the way the
//     catalog author wrote them.
//   - Supply uniform random word selection within a category.
//
// Sources:
//   - WORDS_FILE=/path/to/words.json, when configured.
//   - Otherwise the catalog embedded in the assets package.
//
// Constraints:
//   • Every category must hold at least one entry.
//   • Words are upper-cased on load; hints and difficulties are kept verbatim.
//   • A Bank is read-only after Load and safe for concurrent use.

package words

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"os"

	"github.com/tidwall/gjson"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/robalobadob/cremewhiz/assets"
)

var (
	// ErrUnknownCategory is returned by Select for a category the bank does not hold.
	ErrUnknownCategory = errors.New("unknown category")
	// ErrMalformedData is returned by Load when the document does not have the catalog shape.
	ErrMalformedData = errors.New("malformed word bank")
)

// Difficulty is the free-form difficulty label attached to a word ("easy", "hard", ...).
type Difficulty string

// Entry is one playable word.
type Entry struct {
	Word       string     // canonical, upper case
	Hint       string     // shown at round start and by the hint command
	Difficulty Difficulty // display label only
}

// Bank is an immutable catalog of categories.
type Bank struct {
	order      []string
	categories map[string][]Entry
	pick       func(n int) int
}

// Option tweaks a Bank at load time.
type Option func(*Bank)

// WithPicker replaces the random index source. pick(n) must return a value in [0, n).
// Tests use it to make selection deterministic.
func WithPicker(pick func(n int) int) Option {
	return func(b *Bank) { b.pick = pick }
}

// Load parses a catalog document.
func Load(data []byte, opts ...Option) (*Bank, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("%w: invalid JSON", ErrMalformedData)
	}
	doc := gjson.ParseBytes(data)
	if !doc.IsObject() {
		return nil, fmt.Errorf("%w: top level must be an object of categories", ErrMalformedData)
	}

	b := &Bank{categories: make(map[string][]Entry), pick: cryptoPick}
	var err error
	doc.ForEach(func(key, value gjson.Result) bool {
		name := key.String()
		var list []Entry
		list, err = parseCategory(name, value)
		if err != nil {
			return false
		}
		if _, dup := b.categories[name]; !dup {
			b.order = append(b.order, name)
		}
		b.categories[name] = list
		return true
	})
	if err != nil {
		return nil, err
	}
	if len(b.order) == 0 {
		return nil, fmt.Errorf("%w: no categories", ErrMalformedData)
	}
	for _, o := range opts {
		o(b)
	}
	return b, nil
}

// LoadFile reads and parses a catalog document from disk.
func LoadFile(path string, opts ...Option) (*Bank, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read word bank %s: %w", path, err)
	}
	return Load(data, opts...)
}

// Default loads the embedded catalog.
func Default(opts ...Option) (*Bank, error) {
	data, err := assets.WordBank()
	if err != nil {
		return nil, fmt.Errorf("read embedded word bank: %w", err)
	}
	return Load(data, opts...)
}

// parseCategory validates one category array and converts its entries.
func parseCategory(name string, value gjson.Result) ([]Entry, error) {
	if !value.IsArray() {
		return nil, fmt.Errorf("%w: category %q is not a list", ErrMalformedData, name)
	}
	items := value.Array()
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: category %q is empty", ErrMalformedData, name)
	}
	upper := cases.Upper(language.Und)
	out := make([]Entry, 0, len(items))
	for i, item := range items {
		if !item.IsObject() {
			return nil, fmt.Errorf("%w: %s[%d] is not an object", ErrMalformedData, name, i)
		}
		word, hint, diff := item.Get("word"), item.Get("hint"), item.Get("difficulty")
		if word.Type != gjson.String || word.Str == "" {
			return nil, fmt.Errorf("%w: %s[%d].word must be a non-empty string", ErrMalformedData, name, i)
		}
		if hint.Type != gjson.String {
			return nil, fmt.Errorf("%w: %s[%d].hint must be a string", ErrMalformedData, name, i)
		}
		if diff.Type != gjson.String {
			return nil, fmt.Errorf("%w: %s[%d].difficulty must be a string", ErrMalformedData, name, i)
		}
		out = append(out, Entry{
			Word:       upper.String(word.Str),
			Hint:       hint.Str,
			Difficulty: Difficulty(diff.Str),
		})
	}
	return out, nil
}

// Categories lists category names in document order.
func (b *Bank) Categories() []string {
	return append([]string(nil), b.order...)
}

// Entries returns a copy of a category's word list.
func (b *Bank) Entries(category string) ([]Entry, error) {
	list, ok := b.categories[category]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCategory, category)
	}
	return append([]Entry(nil), list...), nil
}

// Select picks a word uniformly at random from the given category.
func (b *Bank) Select(category string) (Entry, error) {
	list, ok := b.categories[category]
	if !ok {
		return Entry{}, fmt.Errorf("%w: %q", ErrUnknownCategory, category)
	}
	return list[b.pick(len(list))], nil
}

// Stats returns (categories, words) counts.
func (b *Bank) Stats() (categoryCount int, wordCount int) {
	for _, list := range b.categories {
		wordCount += len(list)
	}
	return len(b.order), wordCount
}

// cryptoPick returns a cryptographically random index in [0, n).
// Falls back to 0 if the entropy source fails.
func cryptoPick(n int) int {
	nBig, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return 0
	}
	return int(nBig.Int64())
}
