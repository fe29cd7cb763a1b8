package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/icebreaker/internal/httpserver/deps"
	"github.com/MrSnakeDoc/icebreaker/internal/httpserver/handlers"
)

func init() { Register("ops", Ops, registerOps) }

func registerOps(r chi.Router, d deps.Deps) {
	r.Get("/healthz", handlers.Healthz(d))
	r.Get("/infra", handlers.Infra(d))
}
