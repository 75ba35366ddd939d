// internal/leaderboard/file.go
//
// JSON document store for the leaderboard.
//
// Document shape (insertion order preserved both ways):
//
//	{
//	  "1234": {"points": 170, "streak": 2},
//	  "5678": {"points": 50, "streak": 1}
//	}
//
// Characteristics:
//   - A missing file loads as an empty board.
//   - Save rewrites the whole document: it writes a sibling temp file and
//     renames it over the target, so readers never see a half-written board.
//   - Save holds the store lock for the full write and releases it on every path.

package leaderboard

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog/log"
	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
)

// FileStore keeps the board in a single JSON document on disk.
type FileStore struct {
	mu   sync.Mutex
	path string
}

// NewFileStore returns a store backed by path. The file is created on first Save.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path reports the backing file.
func (s *FileStore) Path() string { return s.path }

// Load reads the document. A missing file is an empty board.
func (s *FileStore) Load(ctx context.Context) ([]Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		log.Info().Str("path", s.path).Msg("leaderboard file not found, starting empty")
		return []Entry{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read leaderboard %s: %w", s.path, err)
	}
	return decodeDocument(data)
}

// Save overwrites the document with entries.
func (s *FileStore) Save(ctx context.Context, entries []Entry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := encodeDocument(entries)
	if err != nil {
		return err
	}

	dir := filepath.Dir(s.path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir %s: %w", dir, err)
		}
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp leaderboard: %w", err)
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write leaderboard: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close leaderboard: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("replace leaderboard %s: %w", s.path, err)
	}
	committed = true
	return nil
}

// encodeDocument writes entries as an ordered JSON object, indented two spaces.
func encodeDocument(entries []Entry) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range entries {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(e.PlayerID)
		if err != nil {
			return nil, fmt.Errorf("encode player id: %w", err)
		}
		val, err := json.Marshal(e.Record)
		if err != nil {
			return nil, fmt.Errorf("encode record for %s: %w", e.PlayerID, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return pretty.Pretty(buf.Bytes()), nil
}

// decodeDocument parses the ordered JSON object back into entries.
// Missing fields read as 0; wrong types or negative values are corrupt.
func decodeDocument(data []byte) ([]Entry, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return []Entry{}, nil
	}
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("%w: invalid JSON", ErrCorrupt)
	}
	doc := gjson.ParseBytes(data)
	if !doc.IsObject() {
		return nil, fmt.Errorf("%w: top level must be an object", ErrCorrupt)
	}

	out := []Entry{}
	var err error
	doc.ForEach(func(key, value gjson.Result) bool {
		id := key.String()
		if !value.IsObject() {
			err = fmt.Errorf("%w: record for %q is not an object", ErrCorrupt, id)
			return false
		}
		var rec Record
		if rec.Points, err = nonNegative(value.Get("points"), id, "points"); err != nil {
			return false
		}
		if rec.Streak, err = nonNegative(value.Get("streak"), id, "streak"); err != nil {
			return false
		}
		out = append(out, Entry{PlayerID: id, Record: rec})
		return true
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func nonNegative(v gjson.Result, id, field string) (int, error) {
	if !v.Exists() {
		return 0, nil
	}
	if v.Type != gjson.Number || v.Int() < 0 {
		return 0, fmt.Errorf("%w: %s.%s must be a non-negative number", ErrCorrupt, id, field)
	}
	return int(v.Int()), nil
}
