package handlers

import (
	"net/http"

	"github.com/MrSnakeDoc/icebreaker/internal/auth"
	"github.com/MrSnakeDoc/icebreaker/internal/domain"
	"github.com/MrSnakeDoc/icebreaker/internal/httpserver/deps"
)

type saveCardRequest struct {
	Username    string `json:"username"`
	Description string `json:"description"`
	Theme       string `json:"theme"`
}

// Card returns the caller's ice card with its stats.
func Card(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, _ := auth.FromContext(r.Context())
		view, err := d.Content.Card(r.Context(), id.UserID, id.Username)
		if err != nil {
			writeError(w, r, d.Logger, err)
			return
		}
		writeJSON(w, http.StatusOK, view)
	}
}

func SaveCard(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req saveCardRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, d.Logger, err)
			return
		}
		card, err := d.Content.SaveCard(r.Context(), userID(r), domain.CardProfile{
			Username:    req.Username,
			Description: req.Description,
			Theme:       domain.Category(req.Theme),
		})
		if err != nil {
			writeError(w, r, d.Logger, err)
			return
		}
		writeJSON(w, http.StatusOK, successResponse{Success: true, Data: card})
	}
}
