package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/icebreaker/internal/httpserver/deps"
	"github.com/MrSnakeDoc/icebreaker/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/icebreaker/internal/httpserver/mw"
)

func init() { Register("content", User, registerContent) }

func registerContent(r chi.Router, d deps.Deps) {
	// mutations are limited per user id; RequireUser has already run
	limited := r.With(mw.RateLimit(mw.RateLimitConfig{
		Burst:        d.RateLimitBurst,
		RefillPerMin: d.RateLimitPerMin,
		MaxKeys:      10000,
		TrustProxy:   d.TrustProxy,
		Now:          d.TimeNow,
	}))

	r.Get("/api/content/get", handlers.GetContent(d))
	r.Get("/api/content/stats", handlers.Stats(d))
	limited.Post("/api/content/add", handlers.AddItem(d))
	limited.Post("/api/content/move", handlers.MoveItem(d))
	limited.Post("/api/content/remove", handlers.RemoveItem(d))
}
