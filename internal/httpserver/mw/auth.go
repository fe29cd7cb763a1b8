package mw

import (
	"encoding/json"
	"net/http"

	"github.com/MrSnakeDoc/icebreaker/internal/auth"
	"github.com/MrSnakeDoc/icebreaker/internal/logger"
)

// RequireUser rejects requests without a valid identity token and attaches the identity
// to the request context otherwise.
func RequireUser(tokens auth.TokenService, log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := auth.TokenFromRequest(r)
			if raw == "" {
				unauthorized(w)
				return
			}
			id, err := tokens.Parse(raw)
			if err != nil {
				log.Debug("RequireUser: token rejected", logger.Error(err))
				unauthorized(w)
				return
			}
			next.ServeHTTP(w, r.WithContext(auth.WithIdentity(r.Context(), id)))
		})
	}
}

// OptionalUser attaches the identity when a valid token is present and never rejects.
func OptionalUser(tokens auth.TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if raw := auth.TokenFromRequest(r); raw != "" {
				if id, err := tokens.Parse(raw); err == nil {
					r = r.WithContext(auth.WithIdentity(r.Context(), id))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", `Bearer realm="icebreaker"`)
	jsonError(w, http.StatusUnauthorized, "unauthorized")
}

// jsonError writes the same {"error": ...} envelope the handlers use.
func jsonError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
