package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/MrSnakeDoc/icebreaker/internal/domain"
	"github.com/MrSnakeDoc/icebreaker/internal/httpserver/deps"
)

type addRequest struct {
	Category string      `json:"category"`
	List     string      `json:"list"`
	Item     domain.Item `json:"item"`
}

type moveRequest struct {
	Category string `json:"category"`
	FromList string `json:"fromList"`
	ToList   string `json:"toList"`
	ItemID   itemID `json:"itemId"`
}

type removeRequest struct {
	Category string `json:"category"`
	List     string `json:"list"`
	ItemID   itemID `json:"itemId"`
}

// itemID accepts ids sent as JSON strings or numbers.
type itemID string

func (id *itemID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = itemID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("itemId must be a string or a number")
	}
	*id = itemID(n.String())
	return nil
}

// GetContent returns the caller's document.
func GetContent(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		doc, err := d.Content.GetContent(r.Context(), userID(r))
		if err != nil {
			writeError(w, r, d.Logger, err)
			return
		}
		writeJSON(w, http.StatusOK, doc)
	}
}

func AddItem(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req addRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, d.Logger, err)
			return
		}
		if err := d.Content.AddItem(r.Context(), userID(r), req.Category, req.List, req.Item); err != nil {
			writeError(w, r, d.Logger, err)
			return
		}
		writeJSON(w, http.StatusOK, successResponse{Success: true})
	}
}

func MoveItem(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req moveRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, d.Logger, err)
			return
		}
		err := d.Content.MoveItem(r.Context(), userID(r), req.Category, req.FromList, req.ToList, string(req.ItemID))
		if err != nil {
			writeError(w, r, d.Logger, err)
			return
		}
		writeJSON(w, http.StatusOK, successResponse{Success: true})
	}
}

// RemoveItem replies with the updated document.
func RemoveItem(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req removeRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, d.Logger, err)
			return
		}
		doc, err := d.Content.RemoveItem(r.Context(), userID(r), req.Category, req.List, string(req.ItemID))
		if err != nil {
			writeError(w, r, d.Logger, err)
			return
		}
		writeJSON(w, http.StatusOK, successResponse{Success: true, Data: doc})
	}
}

func Stats(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, err := d.Content.Stats(r.Context(), userID(r))
		if err != nil {
			writeError(w, r, d.Logger, err)
			return
		}
		writeJSON(w, http.StatusOK, s)
	}
}
