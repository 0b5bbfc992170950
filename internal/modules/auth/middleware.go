package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/trendlotto/invest/internal/domain"
)

type contextKey string

const userContextKey contextKey = "auth.user"

// UserFromContext returns the authenticated user stored by RequireUser.
func UserFromContext(ctx context.Context) (*domain.User, bool) {
	user, ok := ctx.Value(userContextKey).(*domain.User)
	return user, ok
}

// RequireUser rejects requests without a valid Bearer token and stores the
// resolved user on the request context.
func (s *Service) RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, found := strings.CutPrefix(header, "Bearer ")
		if !found || token == "" {
			unauthorized(w, "authentication required")
			return
		}

		user, err := s.VerifyToken(token)
		if err != nil {
			unauthorized(w, "incorrect credentials")
			return
		}

		ctx := context.WithValue(r.Context(), userContextKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	w.Write([]byte(`{"error":"` + message + `"}`))
}
