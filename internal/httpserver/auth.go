package httpserver

import (
	"context"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// player is placed into request context by requireAuth.
type player struct {
	ID   string
	Name string
}

// ctxPlayerKey is the context key type for storing *player.
type ctxPlayerKey struct{}

func playerFrom(ctx context.Context) *player {
	p, _ := ctx.Value(ctxPlayerKey{}).(*player)
	return p
}

// gatewayClaims are the claims the bot gateway signs for each action.
// Subject is the platform player ID; Name is the player's display name.
type gatewayClaims struct {
	Name string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// requireAuth enforces a valid gateway token and injects the player into
// request context. The display name, when present, is remembered for the
// leaderboard.
func (s *Server) requireAuth() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenStr := bearer(r)
			if tokenStr == "" {
				writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
				return
			}
			claims := &gatewayClaims{}
			token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
				return s.opts.Secret, nil
			}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
			if err != nil || !token.Valid {
				writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Invalid token"})
				return
			}
			id := strings.TrimSpace(claims.Subject)
			if id == "" {
				writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Invalid token"})
				return
			}
			s.names.Remember(id, claims.Name)
			ctx := context.WithValue(r.Context(), ctxPlayerKey{}, &player{ID: id, Name: claims.Name})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// bearer extracts a bearer token from the Authorization header.
func bearer(r *http.Request) string {
	if a := r.Header.Get("Authorization"); strings.HasPrefix(strings.ToLower(a), "bearer ") {
		return strings.TrimSpace(a[7:])
	}
	return ""
}
