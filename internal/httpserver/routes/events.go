package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/icebreaker/internal/httpserver/deps"
	"github.com/MrSnakeDoc/icebreaker/internal/httpserver/handlers"
)

func init() { Register("events", User, registerEvents) }

func registerEvents(r chi.Router, d deps.Deps) {
	if d.Hub == nil {
		return
	}
	r.Get("/api/content/events", handlers.Events(d))
}
