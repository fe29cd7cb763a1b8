package deps

import (
	"time"

	"github.com/MrSnakeDoc/icebreaker/internal/auth"
	"github.com/MrSnakeDoc/icebreaker/internal/content"
	"github.com/MrSnakeDoc/icebreaker/internal/events"
	"github.com/MrSnakeDoc/icebreaker/internal/logger"
	"github.com/MrSnakeDoc/icebreaker/internal/scheduler"
	"github.com/MrSnakeDoc/icebreaker/internal/store"
)

type Deps struct {
	Logger          logger.Logger
	StartTime       time.Time
	Version         string
	Commit          string
	BuildDate       string
	GoVersion       string
	TimeNow         func() time.Time        // for testing, defaults to time.Now
	AllowedHosts    []string                // Host headers allowed to access the server
	AllowedCIDRS    []string                // IPs allowed to access the ops endpoints
	TrustProxy      bool                    // true if running behind a trusted reverse proxy (e.g., cloudflared)
	RateLimitBurst  int                     // mutation burst per client IP
	RateLimitPerMin int                     // mutation refill per client IP
	Store           store.Store             // content document store
	Content         *content.Service        // mutation API and readers
	Tokens          auth.TokenService       // identity token verification
	Hub             *events.Hub             // websocket change feed (nil disables the route)
	Seed            *scheduler.SeedReloader // seed collection loader (nil if disabled)
	ReloadTrigger   chan struct{}           // Channel to trigger a manual seed reload (nil if disabled)
}
