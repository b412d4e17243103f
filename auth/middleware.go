package auth

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
)

// Verifier checks a raw bearer token.
type Verifier interface {
	Verify(raw string) (*Claims, error)
}

// Middleware rejects requests without a valid bearer token and attaches the
// verified Identity to the request context otherwise. It never touches the
// store, so role changes only take effect on the next login.
func Middleware(v Verifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, ok := bearerToken(r)
			if !ok {
				reject(w, http.StatusUnauthorized, "no token provided")
				return
			}

			claims, err := v.Verify(raw)
			if err != nil {
				slog.DebugContext(r.Context(), "Token rejected", slog.String("path", r.URL.Path), slog.Any("error", err))
				reject(w, http.StatusForbidden, "invalid or expired token")
				return
			}

			ctx := WithIdentity(r.Context(), Identity{
				UserID: claims.UserID,
				Email:  claims.Email,
				Role:   claims.Role,
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func reject(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"message": msg})
}
