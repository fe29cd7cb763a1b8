package utils

import (
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/MrSnakeDoc/icebreaker/internal/logger"
)

func TestClientIP(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		headers    map[string]string
		trustProxy bool
		expected   string
	}{
		{name: "remote addr", remoteAddr: "10.0.0.1:5555", expected: "10.0.0.1"},
		{name: "xff ignored without trust", remoteAddr: "10.0.0.1:5555", headers: map[string]string{"X-Forwarded-For": "1.2.3.4"}, expected: "10.0.0.1"},
		{name: "xff first hop", remoteAddr: "10.0.0.1:5555", headers: map[string]string{"X-Forwarded-For": "1.2.3.4, 10.0.0.9"}, trustProxy: true, expected: "1.2.3.4"},
		{name: "cloudflare wins", remoteAddr: "10.0.0.1:5555", headers: map[string]string{"CF-Connecting-IP": "5.6.7.8", "X-Forwarded-For": "1.2.3.4"}, trustProxy: true, expected: "5.6.7.8"},
		{name: "real ip", remoteAddr: "10.0.0.1:5555", headers: map[string]string{"X-Real-IP": "9.9.9.9"}, trustProxy: true, expected: "9.9.9.9"},
		{name: "ipv6 remote addr", remoteAddr: "[2001:db8::1]:443", expected: "2001:db8::1"},
		{name: "empty headers fall back", remoteAddr: "10.0.0.1:5555", headers: map[string]string{"X-Forwarded-For": " "}, trustProxy: true, expected: "10.0.0.1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/", nil)
			r.RemoteAddr = tt.remoteAddr
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}
			if got := ClientIP(r, tt.trustProxy); got != tt.expected {
				t.Errorf("ClientIP() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestAddrSet(t *testing.T) {
	set, invalid := ParseAddrSet([]string{"192.168.1.10", " 10.0.0.0/8 ", "garbage", "", "fd00::/8"})
	if set.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", set.Len())
	}
	if len(invalid) != 1 || invalid[0] != "garbage" {
		t.Errorf("invalid = %v, want [garbage]", invalid)
	}

	tests := map[string]bool{
		"192.168.1.10":       true,
		"192.168.1.11":       false,
		"10.20.30.40":        true,
		"::ffff:10.20.30.40": true,
		"fd12::1":            true,
		"2001:db8::1":        false,
		"not-an-ip":          false,
		"":                   false,
	}
	for ip, want := range tests {
		if got := set.Contains(ip); got != want {
			t.Errorf("Contains(%q) = %v, want %v", ip, got, want)
		}
	}

	if empty, _ := ParseAddrSet(nil); empty.Len() != 0 {
		t.Error("set from nil list should be empty")
	}
}

type closer struct{ err error }

func (c closer) Close() error { return c.err }

func TestCloseLogged(t *testing.T) {
	log := logger.New("error", false)
	if !CloseLogged(closer{}, "ok", log) {
		t.Error("CloseLogged() = false for a clean close")
	}
	if CloseLogged(closer{err: errors.New("boom")}, "broken", log) {
		t.Error("CloseLogged() = true for a failing close")
	}
}
