package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/robalobadob/cremewhiz/internal/game"
	"github.com/robalobadob/cremewhiz/internal/leaderboard"
	"github.com/robalobadob/cremewhiz/internal/store"
	"github.com/robalobadob/cremewhiz/internal/words"
)

var testSecret = []byte("test-secret")

const testBank = `{
  "fruit": [{"word": "apple", "hint": "red or green", "difficulty": "easy"}],
  "coffee": [{"word": "latte", "hint": "milky", "difficulty": "easy"}]
}`

type stubStore struct{ fail error }

func (s *stubStore) Load(context.Context) ([]leaderboard.Entry, error) { return nil, nil }
func (s *stubStore) Save(context.Context, []leaderboard.Entry) error  { return s.fail }

func newTestServer(t *testing.T, seed []leaderboard.Entry, lb leaderboard.Store) *Server {
	t.Helper()
	bank, err := words.Load([]byte(testBank))
	if err != nil {
		t.Fatalf("load bank: %v", err)
	}
	if lb == nil {
		lb = &stubStore{}
	}
	eng := game.NewEngine(bank, store.NewMemoryStore(), leaderboard.NewBoard(seed), lb)
	return New(eng, Options{Secret: testSecret, RateLimitRPS: 100, RateLimitBurst: 100})
}

func token(t *testing.T, sub, name string, secret []byte) string {
	t.Helper()
	claims := gatewayClaims{
		Name: name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sub,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
		},
	}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return s
}

func do(t *testing.T, s *Server, method, path, tok, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	out := map[string]any{}
	_ = json.Unmarshal(rec.Body.Bytes(), &out)
	return rec, out
}

func TestHealthAndCategories(t *testing.T) {
	s := newTestServer(t, nil, nil)
	rec, body := do(t, s, http.MethodGet, "/health", "", "")
	if rec.Code != http.StatusOK || body["ok"] != true {
		t.Fatalf("health = %d %v", rec.Code, body)
	}
	rec, body = do(t, s, http.MethodGet, "/categories", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("categories status = %d", rec.Code)
	}
	cats, _ := body["categories"].([]any)
	if len(cats) != 2 || cats[0] != "fruit" || cats[1] != "coffee" {
		t.Fatalf("categories = %v", body["categories"])
	}
}

func TestGameRoutesRequireToken(t *testing.T) {
	s := newTestServer(t, nil, nil)
	rec, _ := do(t, s, http.MethodPost, "/rounds", "", `{"category":"fruit"}`)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("no token: status %d", rec.Code)
	}
	rec, _ = do(t, s, http.MethodPost, "/rounds", token(t, "p1", "", []byte("wrong")), `{"category":"fruit"}`)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("bad signature: status %d", rec.Code)
	}
	rec, _ = do(t, s, http.MethodPost, "/rounds", token(t, "", "", testSecret), `{"category":"fruit"}`)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("missing subject: status %d", rec.Code)
	}
}

func TestFullRoundOverHTTP(t *testing.T) {
	s := newTestServer(t, nil, nil)
	tok := token(t, "1234", "alice", testSecret)

	rec, body := do(t, s, http.MethodPost, "/rounds", tok, `{"category":"fruit"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("start = %d %v", rec.Code, body)
	}
	if body["wordLength"] != float64(5) || body["guessesLeft"] != float64(3) || body["hint"] != "red or green" {
		t.Fatalf("start body = %v", body)
	}
	if !strings.Contains(body["text"].(string), "Word length: 5 letters") {
		t.Fatalf("start text = %q", body["text"])
	}

	rec, body = do(t, s, http.MethodPost, "/rounds/guess", tok, `{"guess":"grape"}`)
	if rec.Code != http.StatusOK || body["outcome"] != "continue" || body["feedback"] != "⬛⬛💛💛💚" {
		t.Fatalf("first guess = %d %v", rec.Code, body)
	}

	rec, body = do(t, s, http.MethodPost, "/rounds/hint", tok, "")
	if rec.Code != http.StatusOK || body["hint"] != "red or green" {
		t.Fatalf("hint = %d %v", rec.Code, body)
	}
	rec, body = do(t, s, http.MethodPost, "/rounds/hint", tok, "")
	if rec.Code != http.StatusConflict || body["error"] != "hint_already_used" {
		t.Fatalf("second hint = %d %v", rec.Code, body)
	}

	rec, body = do(t, s, http.MethodPost, "/rounds/guess", tok, `{"guess":" Apple "}`)
	if rec.Code != http.StatusOK || body["outcome"] != "won" || body["pointsAwarded"] != float64(50) {
		t.Fatalf("winning guess = %d %v", rec.Code, body)
	}

	rec, body = do(t, s, http.MethodGet, "/stats/me", tok, "")
	if rec.Code != http.StatusOK || body["points"] != float64(50) || body["streak"] != float64(1) {
		t.Fatalf("stats = %d %v", rec.Code, body)
	}

	rec, body = do(t, s, http.MethodPost, "/rounds/guess", tok, `{"guess":"apple"}`)
	if rec.Code != http.StatusNotFound || body["error"] != "no_active_round" {
		t.Fatalf("guess after win = %d %v", rec.Code, body)
	}
}

func TestStartUnknownCategory(t *testing.T) {
	s := newTestServer(t, nil, nil)
	rec, body := do(t, s, http.MethodPost, "/rounds", token(t, "p1", "", testSecret), `{"category":"cars"}`)
	if rec.Code != http.StatusBadRequest || body["error"] != "unknown_category" {
		t.Fatalf("got %d %v", rec.Code, body)
	}
}

func TestEmptyGuessRejected(t *testing.T) {
	s := newTestServer(t, nil, nil)
	tok := token(t, "p1", "", testSecret)
	do(t, s, http.MethodPost, "/rounds", tok, `{"category":"fruit"}`)
	rec, body := do(t, s, http.MethodPost, "/rounds/guess", tok, `{"guess":"   "}`)
	if rec.Code != http.StatusBadRequest || body["error"] != "empty_guess" {
		t.Fatalf("got %d %v", rec.Code, body)
	}
}

func TestPersistFailureStillReportsWin(t *testing.T) {
	s := newTestServer(t, nil, &stubStore{fail: errors.New("disk full")})
	tok := token(t, "p1", "", testSecret)
	do(t, s, http.MethodPost, "/rounds", tok, `{"category":"coffee"}`)
	rec, body := do(t, s, http.MethodPost, "/rounds/guess", tok, `{"guess":"latte"}`)
	if rec.Code != http.StatusInternalServerError || body["error"] != "persist_failed" || body["outcome"] != "won" {
		t.Fatalf("got %d %v", rec.Code, body)
	}
	if !strings.Contains(body["text"].(string), persistWarning) {
		t.Fatalf("text = %q", body["text"])
	}
}

func TestLeaderboardResolvesNames(t *testing.T) {
	s := newTestServer(t, []leaderboard.Entry{
		{PlayerID: "1", Record: leaderboard.Record{Points: 70, Streak: 1}},
		{PlayerID: "2", Record: leaderboard.Record{Points: 250, Streak: 3}},
		{PlayerID: "3", Record: leaderboard.Record{Points: 70, Streak: 0}},
	}, nil)
	// Player 2 has been seen with a name; 1 and 3 have not.
	do(t, s, http.MethodGet, "/stats/me", token(t, "2", "bob", testSecret), "")

	rec, body := do(t, s, http.MethodGet, "/leaderboard", token(t, "9", "", testSecret), "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	text := body["text"].(string)
	want := "🏆 Leaderboard:\n1. bob — 250 pts (Streak 3)\n2. Unknown — 70 pts\n3. Unknown — 70 pts\n"
	if text != want {
		t.Fatalf("text = %q, want %q", text, want)
	}
	entries := body["entries"].([]any)
	if entries[1].(map[string]any)["playerId"] != "1" || entries[2].(map[string]any)["playerId"] != "3" {
		t.Fatalf("ties not in insertion order: %v", entries)
	}

	rec, body = do(t, s, http.MethodGet, "/leaderboard?limit=1", token(t, "9", "", testSecret), "")
	if rec.Code != http.StatusOK || len(body["entries"].([]any)) != 1 {
		t.Fatalf("limit=1 = %d %v", rec.Code, body)
	}
	rec, _ = do(t, s, http.MethodGet, "/leaderboard?limit=zero", token(t, "9", "", testSecret), "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("bad limit status = %d", rec.Code)
	}
}

func TestRateLimitPerPlayer(t *testing.T) {
	bank, _ := words.Load([]byte(testBank))
	eng := game.NewEngine(bank, store.NewMemoryStore(), leaderboard.NewBoard(nil), &stubStore{})
	s := New(eng, Options{Secret: testSecret, RateLimitRPS: 0.001, RateLimitBurst: 2})

	tok := token(t, "spammer", "", testSecret)
	for i := 0; i < 2; i++ {
		if rec, _ := do(t, s, http.MethodGet, "/stats/me", tok, ""); rec.Code != http.StatusOK {
			t.Fatalf("request %d = %d", i, rec.Code)
		}
	}
	if rec, _ := do(t, s, http.MethodGet, "/stats/me", tok, ""); rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rec.Code)
	}
	if rec, _ := do(t, s, http.MethodGet, "/stats/me", token(t, "other", "", testSecret), ""); rec.Code != http.StatusOK {
		t.Fatalf("other player throttled: %d", rec.Code)
	}
}

func TestIdleLimitersAreSwept(t *testing.T) {
	s := newTestServer(t, nil, nil)
	clock := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return clock }

	for i := 0; i < limiterSweepAt; i++ {
		s.limiter(strconv.Itoa(i))
	}
	clock = clock.Add(limiterIdle / 2)
	s.limiter("0") // still active

	clock = clock.Add(limiterIdle/2 + time.Second)
	s.limiter("newcomer")

	s.limMu.Lock()
	defer s.limMu.Unlock()
	if len(s.limiters) != 2 {
		t.Fatalf("%d limiters kept, want 2", len(s.limiters))
	}
	if _, ok := s.limiters["0"]; !ok {
		t.Fatal("recently used limiter was dropped")
	}
	if _, ok := s.limiters["newcomer"]; !ok {
		t.Fatal("new limiter missing")
	}
}
