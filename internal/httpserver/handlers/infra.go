package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/MrSnakeDoc/icebreaker/internal/httpserver/deps"
)

type componentStatus struct {
	OK         bool   `json:"ok"`
	Backend    string `json:"backend,omitempty"`
	Users      *int64 `json:"users,omitempty"`
	Clients    *int   `json:"clients,omitempty"`
	File       string `json:"file,omitempty"`
	Entries    *int   `json:"entries,omitempty"`
	Skipped    *int   `json:"skipped_users,omitempty"`
	Failed     *int   `json:"failed,omitempty"`
	LastReload string `json:"last_reload,omitempty"`
	Mode       string `json:"mode,omitempty"`
	Impact     string `json:"impact,omitempty"`
	Error      string `json:"error,omitempty"`
}

type infraResponse struct {
	Mode       string                     `json:"mode"`
	Components map[string]componentStatus `json:"components"`
}

func Infra(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		components := map[string]componentStatus{
			"store":           checkStore(r.Context(), d),
			"seed":            seedStatus(d),
			"recommendations": recommenderStatus(d),
			"events":          eventsStatus(d),
		}

		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Cache-Control", "no-store")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(infraResponse{
			Mode:       determineMode(components),
			Components: components,
		})
	}
}

// determineMode is "critical" without a store, "degraded" when an optional component
// is failing and "operational" otherwise. Disabled components do not count.
func determineMode(components map[string]componentStatus) string {
	if s, ok := components["store"]; ok && !s.OK {
		return "critical"
	}
	for name, c := range components {
		if name == "store" || c.Mode == "disabled" {
			continue
		}
		if !c.OK {
			return "degraded"
		}
	}
	return "operational"
}

func checkStore(parent context.Context, d deps.Deps) componentStatus {
	if d.Store == nil {
		return componentStatus{OK: false, Impact: "content-unavailable", Error: "store not initialized"}
	}

	ctx, cancel := context.WithTimeout(parent, 2*time.Second)
	defer cancel()

	st := componentStatus{Backend: d.Store.Backend()}
	if err := d.Store.Ping(ctx); err != nil {
		st.Impact = "content-unavailable"
		st.Error = err.Error()
		return st
	}
	st.OK = true
	if n, err := d.Store.CountUsers(ctx); err == nil {
		st.Users = &n
	}
	return st
}

func seedStatus(d deps.Deps) componentStatus {
	if d.Seed == nil {
		return componentStatus{OK: true, Mode: "disabled"}
	}
	s := d.Seed.Status()
	lastReload := "never"
	if !s.LastRun.IsZero() {
		lastReload = s.LastRun.Format("2006-01-02 15:04:05")
	}
	return componentStatus{
		OK:         s.LastErr == "" && s.Failed == 0,
		File:       s.File,
		Entries:    &s.Entries,
		Skipped:    &s.Skipped,
		Failed:     &s.Failed,
		LastReload: lastReload,
		Mode:       "interval:" + s.Interval,
		Error:      s.LastErr,
	}
}

func recommenderStatus(d deps.Deps) componentStatus {
	name := d.Content.RecommenderName()
	if name == "" {
		return componentStatus{OK: true, Mode: "disabled", Impact: "recommendations-unavailable"}
	}
	return componentStatus{OK: true, Backend: name}
}

func eventsStatus(d deps.Deps) componentStatus {
	if d.Hub == nil {
		return componentStatus{OK: true, Mode: "disabled"}
	}
	n := d.Hub.Count()
	return componentStatus{OK: true, Backend: "websocket", Clients: &n}
}
