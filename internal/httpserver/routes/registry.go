package routes

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/icebreaker/internal/httpserver/deps"
	"github.com/MrSnakeDoc/icebreaker/internal/httpserver/mw"
	"github.com/MrSnakeDoc/icebreaker/internal/logger"
)

// Registrar mounts one group of routes on a router that already carries the group's access chain.
type Registrar func(r chi.Router, d deps.Deps)

// Access picks the middleware chain a group is mounted behind.
type Access int

const (
	// Public routes check the Host and attach an identity when a valid token is sent.
	Public Access = iota
	// User routes check the Host and require a valid token.
	User
	// Ops routes are reachable only from the allowed CIDRs.
	Ops
)

func (a Access) String() string {
	switch a {
	case Public:
		return "public"
	case User:
		return "user"
	case Ops:
		return "ops"
	default:
		return fmt.Sprintf("access(%d)", int(a))
	}
}

type group struct {
	name   string
	access Access
	reg    Registrar
}

var registry []group

// Register adds a named route group. Called from init(); a duplicate name is a programming error.
func Register(name string, access Access, reg Registrar) {
	for _, g := range registry {
		if g.name == name {
			panic("routes: group registered twice: " + name)
		}
	}
	registry = append(registry, group{name: name, access: access, reg: reg})
}

func chain(a Access, d deps.Deps) []func(http.Handler) http.Handler {
	switch a {
	case User:
		return []func(http.Handler) http.Handler{mw.EnforceHost(d.AllowedHosts, d.Logger), mw.RequireUser(d.Tokens, d.Logger)}
	case Ops:
		return []func(http.Handler) http.Handler{mw.AllowCIDRs(d.AllowedCIDRS, d.TrustProxy, d.Logger)}
	default:
		return []func(http.Handler) http.Handler{mw.EnforceHost(d.AllowedHosts, d.Logger), mw.OptionalUser(d.Tokens)}
	}
}

// RegisterAll mounts every group. Called once from NewRouter.
func RegisterAll(r chi.Router, d deps.Deps) {
	for _, g := range registry {
		g.reg(r.With(chain(g.access, d)...), d)
		d.Logger.Debug("route group mounted",
			logger.String("group", g.name),
			logger.String("access", g.access.String()))
	}
}
