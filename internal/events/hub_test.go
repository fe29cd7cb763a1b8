package events

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/MrSnakeDoc/icebreaker/internal/domain"
	"github.com/MrSnakeDoc/icebreaker/internal/logger"
)

func dial(t *testing.T, srv *httptest.Server, userID string, header http.Header) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/?user=" + userID
	conn, _, err := websocket.DefaultDialer.Dial(url, header)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("reading welcome: %v", err)
	}
	if !strings.Contains(string(msg), "welcome") {
		t.Fatalf("first message = %s, want welcome", msg)
	}
	return conn
}

func waitForClients(t *testing.T, h *Hub, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for h.Count() != n {
		if time.Now().After(deadline) {
			t.Fatalf("Count() = %d, want %d", h.Count(), n)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func newTestServer(h *Hub) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h.Serve(w, r, r.URL.Query().Get("user"))
	}))
}

func TestPublishReachesOnlyOwner(t *testing.T) {
	h := NewHub(logger.NewNop(), []string{"http://localhost:3000"})
	srv := newTestServer(h)
	defer srv.Close()

	owner := dial(t, srv, "u1", nil)
	other := dial(t, srv, "u2", nil)
	waitForClients(t, h, 2)

	ev := FromMutation("u1", domain.ListMutation{
		Op: domain.OpMove, Category: domain.CategoryMovies,
		List: domain.ListPlanned, ToList: domain.ListCompleted, ItemID: "m1",
	}, time.Now())
	h.Publish(ev)

	_ = owner.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := owner.ReadMessage()
	if err != nil {
		t.Fatalf("owner ReadMessage() error = %v", err)
	}
	var got Event
	if err := json.Unmarshal(msg, &got); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if got.ID != ev.ID || got.Type != TypeMove || got.ToList != domain.ListCompleted || got.ItemID != "m1" {
		t.Errorf("event = %+v", got)
	}

	_ = other.SetReadDeadline(time.Now().Add(200 * time.Millisecond))
	if _, msg, err := other.ReadMessage(); err == nil {
		t.Errorf("other user received %s", msg)
	}
}

func TestDisconnectUnregisters(t *testing.T) {
	h := NewHub(logger.NewNop(), nil)
	srv := newTestServer(h)
	defer srv.Close()

	conn := dial(t, srv, "u1", nil)
	waitForClients(t, h, 1)

	_ = conn.Close()
	waitForClients(t, h, 0)

	// publishing with nobody listening is harmless
	h.Publish(Event{UserID: "u1", Type: TypeAdd})
}

func TestOriginCheck(t *testing.T) {
	h := NewHub(logger.NewNop(), []string{"https://icebreaker.example"})
	srv := newTestServer(h)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/?user=u1"

	_, resp, err := websocket.DefaultDialer.Dial(url, http.Header{"Origin": {"https://evil.example"}})
	if err == nil {
		t.Fatal("Dial() from foreign origin succeeded")
	}
	if resp != nil && resp.StatusCode != http.StatusForbidden {
		t.Errorf("status = %d, want 403", resp.StatusCode)
	}

	dial(t, srv, "u1", http.Header{"Origin": {"https://icebreaker.example"}})
}

func TestCloseWhileClientsConnect(t *testing.T) {
	h := NewHub(logger.NewNop(), nil)
	var panicked atomic.Bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if v := recover(); v != nil {
				panicked.Store(true)
			}
		}()
		h.Serve(w, r, "u1")
	}))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/"
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			conn, _, err := websocket.DefaultDialer.Dial(url, nil)
			if err != nil {
				return
			}
			defer func() { _ = conn.Close() }()
			_ = conn.SetReadDeadline(time.Now().Add(time.Second))
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()
		go func() {
			defer wg.Done()
			h.Close()
		}()
	}
	wg.Wait()
	h.Close()
	waitForClients(t, h, 0)

	if panicked.Load() {
		t.Error("Serve panicked while the hub was closing")
	}
}

func TestFromMutation(t *testing.T) {
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	tests := []struct {
		m    domain.ListMutation
		want string
	}{
		{m: domain.ListMutation{Op: domain.OpAdd, Item: domain.Item{ID: "a"}}, want: TypeAdd},
		{m: domain.ListMutation{Op: domain.OpMove, ItemID: "a", ToList: domain.ListCompleted}, want: TypeMove},
		{m: domain.ListMutation{Op: domain.OpRemove, ItemID: "a"}, want: TypeRemove},
	}
	for _, tt := range tests {
		ev := FromMutation("u1", tt.m, at)
		if ev.Type != tt.want || ev.ItemID != "a" || ev.ID == "" || !ev.At.Equal(at) {
			t.Errorf("FromMutation(%s) = %+v", tt.m.Op, ev)
		}
	}
}
