package handlers

import (
	"net/http"

	"github.com/MrSnakeDoc/icebreaker/internal/httpserver/deps"
)

func Recommendations(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		recs, err := d.Content.Recommendations(r.Context(), userID(r), r.URL.Query().Get("category"))
		if err != nil {
			writeError(w, r, d.Logger, err)
			return
		}
		writeJSON(w, http.StatusOK, recs)
	}
}
