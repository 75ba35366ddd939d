// internal/httpserver/server.go
//
// HTTP command surface for the chat-bot gateway.
// Responsibilities:
//   - Router + middleware (JSON, timeouts, panic recovery, request IDs).
//   - Public endpoints: "/", "/health", "/categories".
//   - Game endpoints (require a gateway token): /rounds, /rounds/guess,
//     /rounds/hint, /stats/me, /leaderboard.
//   - Mapping engine errors to status codes and player-facing text.
//
// Notes:
//   - The gateway signs one HS256 token per player action; the token's
//     subject is the platform player ID and is trusted as is.
//   - Every game response carries a `text` field the gateway can post verbatim.

package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/robalobadob/cremewhiz/internal/game"
	"github.com/robalobadob/cremewhiz/internal/leaderboard"
	"github.com/robalobadob/cremewhiz/internal/words"
)

// Options configures a Server.
type Options struct {
	Secret          []byte  // HS256 key shared with the bot gateway
	LeaderboardSize int     // default ranking size for GET /leaderboard
	RateLimitRPS    float64 // per-player sustained requests per second
	RateLimitBurst  int     // per-player burst
}

// Limiters idle longer than limiterIdle are dropped once the map holds
// limiterSweepAt players.
const (
	limiterIdle    = 10 * time.Minute
	limiterSweepAt = 1024
)

// Server bundles router, engine and per-player state.
type Server struct {
	r      *chi.Mux
	engine *game.Engine
	opts   Options
	names  *leaderboard.Directory // display names remembered from tokens

	limMu    sync.Mutex
	limiters map[string]*playerLimiter
	now      func() time.Time
}

type playerLimiter struct {
	lim  *rate.Limiter
	seen time.Time
}

// New constructs a Server, installs middleware, and registers routes.
func New(engine *game.Engine, opts Options) *Server {
	if opts.LeaderboardSize <= 0 {
		opts.LeaderboardSize = leaderboard.DefaultTopN
	}
	s := &Server{
		r:        chi.NewRouter(),
		engine:   engine,
		opts:     opts,
		names:    leaderboard.NewDirectory(),
		limiters: make(map[string]*playerLimiter),
		now:      time.Now,
	}

	s.r.Use(chimw.RequestID)
	s.r.Use(chimw.RealIP)
	s.r.Use(requestLogger)
	s.r.Use(chimw.Recoverer)
	s.r.Use(chimw.Timeout(10 * time.Second))
	s.r.Use(jsonContentType)

	s.r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"service":   "cremewhiz",
			"endpoints": []string{"/health", "/categories", "POST /rounds", "POST /rounds/guess", "POST /rounds/hint", "/stats/me", "/leaderboard"},
		})
	})
	s.r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
	})
	s.r.Get("/categories", s.handleCategories)

	s.r.Group(func(g chi.Router) {
		g.Use(s.requireAuth())
		g.Use(s.rateLimit())
		g.Post("/rounds", s.handleStart)
		g.Post("/rounds/guess", s.handleGuess)
		g.Post("/rounds/hint", s.handleHint)
		g.Get("/stats/me", s.handleStats)
		g.Get("/leaderboard", s.handleLeaderboard)
	})

	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not_found", "path": r.URL.Path})
	})
	return s
}

// Start begins serving HTTP on addr.
func (s *Server) Start(addr string) error { return http.ListenAndServe(addr, s.r) }

// Router exposes the internal router (useful for tests).
func (s *Server) Router() chi.Router { return s.r }

// ----------------------------- middleware ----------------------------------

// jsonContentType sets a default JSON Content-Type header on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

// requestLogger logs one line per request with zerolog.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("dur", time.Since(start)).
			Str("request_id", chimw.GetReqID(r.Context())).
			Msg("http")
	})
}

// rateLimit enforces a per-player token bucket. Must run after requireAuth.
func (s *Server) rateLimit() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p := playerFrom(r.Context())
			if p != nil && !s.limiter(p.ID).Allow() {
				writeJSON(w, http.StatusTooManyRequests, map[string]string{
					"error": "rate_limited",
					"text":  "⏳ Slow down a little!",
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// limiter returns the player's limiter, creating it on first use.
func (s *Server) limiter(playerID string) *rate.Limiter {
	s.limMu.Lock()
	defer s.limMu.Unlock()
	now := s.now()
	if pl, ok := s.limiters[playerID]; ok {
		pl.seen = now
		return pl.lim
	}
	if len(s.limiters) >= limiterSweepAt {
		s.sweepLimitersLocked(now)
	}
	rps, burst := s.opts.RateLimitRPS, s.opts.RateLimitBurst
	if rps <= 0 {
		rps = 1
	}
	if burst <= 0 {
		burst = 1
	}
	lim := rate.NewLimiter(rate.Limit(rps), burst)
	s.limiters[playerID] = &playerLimiter{lim: lim, seen: now}
	return lim
}

// sweepLimitersLocked drops limiters idle for longer than limiterIdle.
func (s *Server) sweepLimitersLocked(now time.Time) {
	for id, pl := range s.limiters {
		if now.Sub(pl.seen) > limiterIdle {
			delete(s.limiters, id)
		}
	}
}

// ------------------------------ handlers -----------------------------------

type categoriesRes struct {
	Categories []string `json:"categories"`
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, categoriesRes{Categories: s.engine.Categories()})
}

type startReq struct {
	Category string `json:"category"`
}
type startRes struct {
	game.Summary
	Text string `json:"text"`
}

// handleStart begins a round in the selected category.
func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	var req startReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "bad_json"})
		return
	}
	p := playerFrom(r.Context())
	sum, err := s.engine.StartRound(r.Context(), p.ID, req.Category)
	if err != nil {
		s.writeGameError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, startRes{Summary: sum, Text: startText(sum)})
}

type guessReq struct {
	Guess string `json:"guess"`
}
type guessRes struct {
	game.GuessResult
	Feedback string `json:"feedback"`
	Text     string `json:"text"`
	Error    string `json:"error,omitempty"`
}

// handleGuess applies a guess. A failed leaderboard write still returns the
// result, with status 500 and error "persist_failed".
func (s *Server) handleGuess(w http.ResponseWriter, r *http.Request) {
	var req guessReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "bad_json"})
		return
	}
	guess := strings.TrimSpace(req.Guess)
	if guess == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "empty_guess", "text": "❌ Guess can't be empty"})
		return
	}

	p := playerFrom(r.Context())
	res, err := s.engine.SubmitGuess(r.Context(), p.ID, guess)
	if err != nil && !errors.Is(err, game.ErrPersistence) {
		s.writeGameError(w, err)
		return
	}
	body := guessRes{GuessResult: res, Feedback: res.Marks.String(), Text: guessText(res)}
	if err != nil {
		body.Error = "persist_failed"
		body.Text += "\n" + persistWarning
		writeJSON(w, http.StatusInternalServerError, body)
		return
	}
	writeJSON(w, http.StatusOK, body)
}

type hintRes struct {
	Hint string `json:"hint"`
	Text string `json:"text"`
}

func (s *Server) handleHint(w http.ResponseWriter, r *http.Request) {
	p := playerFrom(r.Context())
	hint, err := s.engine.UseHint(r.Context(), p.ID)
	if err != nil {
		s.writeGameError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, hintRes{Hint: hint, Text: "💡 Extra hint: " + hint})
}

type statsRes struct {
	leaderboard.Record
	Text string `json:"text"`
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	p := playerFrom(r.Context())
	rec := s.engine.Stats(p.ID)
	writeJSON(w, http.StatusOK, statsRes{Record: rec, Text: statsText(rec)})
}

type leaderboardRes struct {
	Entries []leaderboard.Standing `json:"entries"`
	Text    string                 `json:"text"`
}

// handleLeaderboard ranks the top players; ?limit=N overrides the default size.
func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	n := s.opts.LeaderboardSize
	if v := r.URL.Query().Get("limit"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed <= 0 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "bad_limit"})
			return
		}
		n = parsed
	}
	standings := leaderboard.Resolve(r.Context(), s.engine.Leaderboard(n), s.names)
	writeJSON(w, http.StatusOK, leaderboardRes{Entries: standings, Text: leaderboardText(standings)})
}

// ------------------------------- errors ------------------------------------

// writeGameError maps engine and word bank errors to HTTP responses.
func (s *Server) writeGameError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, words.ErrUnknownCategory):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unknown_category", "text": "❌ Unknown category"})
	case errors.Is(err, game.ErrNoActiveRound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no_active_round", "text": noActiveRoundText})
	case errors.Is(err, game.ErrHintAlreadyUsed):
		writeJSON(w, http.StatusConflict, map[string]string{"error": "hint_already_used", "text": "❌ Hint already used!"})
	default:
		log.Error().Err(err).Msg("game operation failed")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal"})
	}
}

// writeJSON writes v with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warn().Err(err).Msg("encode response")
	}
}
