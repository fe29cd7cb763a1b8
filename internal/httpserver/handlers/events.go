package handlers

import (
	"net/http"

	"github.com/MrSnakeDoc/icebreaker/internal/domain"
	"github.com/MrSnakeDoc/icebreaker/internal/httpserver/deps"
)

// Events upgrades to a websocket that streams the caller's content changes.
func Events(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid := userID(r)
		if uid == "" {
			writeError(w, r, d.Logger, domain.ErrUnauthorized)
			return
		}
		d.Hub.Serve(w, r, uid)
	}
}
