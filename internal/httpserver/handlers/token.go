package handlers

import (
	"net/http"

	"github.com/MrSnakeDoc/icebreaker/internal/auth"
	"github.com/MrSnakeDoc/icebreaker/internal/domain"
	"github.com/MrSnakeDoc/icebreaker/internal/httpserver/deps"
)

type tokenResponse struct {
	Token     string `json:"token"`
	UserID    string `json:"userId"`
	SessionID string `json:"sessionId"`
}

// Token echoes the caller's token and the identity it resolves to.
func Token(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := auth.FromContext(r.Context())
		if !ok {
			writeError(w, r, d.Logger, domain.ErrUnauthorized)
			return
		}
		writeJSON(w, http.StatusOK, tokenResponse{
			Token:     id.Token,
			UserID:    id.UserID,
			SessionID: id.SessionID,
		})
	}
}
