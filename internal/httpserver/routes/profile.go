package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/icebreaker/internal/httpserver/deps"
	"github.com/MrSnakeDoc/icebreaker/internal/httpserver/handlers"
)

func init() { Register("profile", Public, registerProfile) }

// Profiles are public; a token is only used to recognise the owner.
func registerProfile(r chi.Router, d deps.Deps) {
	r.Get("/api/profile/{userId}", handlers.Profile(d))
	r.Get("/api/profile/{userId}/summary", handlers.ProfileSummary(d))
}
