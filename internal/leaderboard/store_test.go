package leaderboard

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

var sampleEntries = []Entry{
	{PlayerID: "9001", Record: Record{Points: 70, Streak: 1}},
	{PlayerID: "42", Record: Record{Points: 250, Streak: 4}},
	{PlayerID: "7", Record: Record{Points: 70, Streak: 0}},
}

func assertEntries(t *testing.T, got, want []Entry) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d (%+v)", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("entry %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestFileStoreMissingFileIsEmpty(t *testing.T) {
	s := NewFileStore(filepath.Join(t.TempDir(), "leaderboard.json"))
	got, err := s.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected empty board, got %+v", got)
	}
}

func TestFileStoreRoundTripKeepsOrder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "leaderboard.json")
	s := NewFileStore(path)
	if s.Path() != path {
		t.Fatalf("Path = %q, want %q", s.Path(), path)
	}
	ctx := context.Background()
	if err := s.Save(ctx, sampleEntries); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	assertEntries(t, got, sampleEntries)

	// Overwrite replaces the whole document.
	if err := s.Save(ctx, sampleEntries[:1]); err != nil {
		t.Fatalf("second save: %v", err)
	}
	got, _ = s.Load(ctx)
	assertEntries(t, got, sampleEntries[:1])

	leftovers, _ := filepath.Glob(filepath.Join(filepath.Dir(path), "*.tmp"))
	if len(leftovers) != 0 {
		t.Fatalf("temp files left behind: %v", leftovers)
	}
}

func TestFileStoreReadsLegacyDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "leaderboard.json")
	doc := `{
  "123": {"points": 100, "streak": 1},
  "456": {"points": 30}
}`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	got, err := NewFileStore(path).Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	assertEntries(t, got, []Entry{
		{PlayerID: "123", Record: Record{Points: 100, Streak: 1}},
		{PlayerID: "456", Record: Record{Points: 30}},
	})
}

func TestFileStoreRejectsCorruptDocument(t *testing.T) {
	cases := map[string]string{
		"truncated":       `{"1": {"points": 5`,
		"array":           `[1,2,3]`,
		"record not obj":  `{"1": 5}`,
		"string points":   `{"1": {"points": "5", "streak": 0}}`,
		"negative streak": `{"1": {"points": 5, "streak": -1}}`,
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "leaderboard.json")
			if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
				t.Fatalf("write: %v", err)
			}
			if _, err := NewFileStore(path).Load(context.Background()); !errors.Is(err, ErrCorrupt) {
				t.Fatalf("expected ErrCorrupt, got %v", err)
			}
		})
	}
}

func TestFileStoreSaveFailsWhenDirectoryIsAFile(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocker")
	if err := os.WriteFile(blocker, []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	s := NewFileStore(filepath.Join(blocker, "leaderboard.json"))
	if err := s.Save(context.Background(), sampleEntries); err == nil {
		t.Fatal("expected save to fail")
	}
	// The lock must be released after a failed save.
	if _, err := s.Load(context.Background()); err == nil {
		t.Fatal("expected load under a file to fail as well")
	}
}

func TestSQLiteStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	dsn := filepath.Join(t.TempDir(), "data", "cremewhiz.db")
	s, err := OpenSQLite(ctx, dsn)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer s.Close()

	got, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("load empty: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected empty, got %+v", got)
	}

	if err := s.Save(ctx, sampleEntries); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err = s.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	assertEntries(t, got, sampleEntries)

	if err := s.Save(ctx, sampleEntries[1:]); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	got, _ = s.Load(ctx)
	assertEntries(t, got, sampleEntries[1:])
}

func TestSQLiteMigrationsAreIdempotent(t *testing.T) {
	ctx := context.Background()
	dsn := filepath.Join(t.TempDir(), "cremewhiz.db")
	s, err := OpenSQLite(ctx, dsn)
	if err != nil {
		t.Fatalf("first open: %v", err)
	}
	if err := s.Save(ctx, sampleEntries); err != nil {
		t.Fatalf("save: %v", err)
	}
	_ = s.Close()

	s2, err := OpenSQLite(ctx, dsn)
	if err != nil {
		t.Fatalf("second open: %v", err)
	}
	defer s2.Close()
	got, err := s2.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	assertEntries(t, got, sampleEntries)
}
