package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/icebreaker/internal/httpserver/deps"
	"github.com/MrSnakeDoc/icebreaker/internal/httpserver/handlers"
)

func init() { Register("account", User, registerAccount) }

// Card, token and recommendations all act on the caller.
func registerAccount(r chi.Router, d deps.Deps) {
	r.Get("/api/card", handlers.Card(d))
	r.Post("/api/card/save", handlers.SaveCard(d))
	r.Get("/api/token", handlers.Token(d))
	r.Get("/api/recommendations", handlers.Recommendations(d))
}
