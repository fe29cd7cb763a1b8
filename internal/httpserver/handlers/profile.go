package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/icebreaker/internal/auth"
	"github.com/MrSnakeDoc/icebreaker/internal/httpserver/deps"
)

// Profile serves any user's content without store metadata. Public by design.
func Profile(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := d.Content.PublicProfile(r.Context(), chi.URLParam(r, "userId"))
		if err != nil {
			writeError(w, r, d.Logger, err)
			return
		}
		writeJSON(w, http.StatusOK, p)
	}
}

// ProfileSummary marks the summary as the viewer's own when a valid token is sent.
func ProfileSummary(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, err := d.Content.ProfileSummary(r.Context(), chi.URLParam(r, "userId"))
		if err != nil {
			writeError(w, r, d.Logger, err)
			return
		}
		if id, ok := auth.FromContext(r.Context()); ok {
			s.Self = id.UserID == s.UserID
		}
		writeJSON(w, http.StatusOK, s)
	}
}
