package mw

import (
	"net"
	"net/http"
	"strings"

	"github.com/MrSnakeDoc/icebreaker/internal/logger"
	"github.com/MrSnakeDoc/icebreaker/internal/utils"
)

func passthrough(next http.Handler) http.Handler { return next }

// AllowCIDRs guards the ops endpoints. An empty list disables the check.
// trustProxy resolves the caller from proxy headers, for deployments behind a tunnel.
func AllowCIDRs(allowed []string, trustProxy bool, log logger.Logger) func(http.Handler) http.Handler {
	set, invalid := utils.ParseAddrSet(allowed)
	for _, s := range invalid {
		log.Warn("ignoring invalid CIDR entry", logger.String("entry", s))
	}
	if set.Len() == 0 {
		return passthrough
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := utils.ClientIP(r, trustProxy)
			if !set.Contains(ip) {
				log.Warn("ops request from outside allowed CIDRs",
					logger.String("ip", ip),
					logger.String("path", r.URL.Path))
				jsonError(w, http.StatusForbidden, "forbidden")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// hostRules holds exact names and "*.example.com" suffixes, lowercased.
type hostRules struct {
	exact    map[string]struct{}
	suffixes []string
}

func newHostRules(hosts []string) hostRules {
	rules := hostRules{exact: make(map[string]struct{}, len(hosts))}
	for _, h := range hosts {
		h = strings.ToLower(strings.TrimSpace(h))
		switch {
		case h == "":
		case strings.HasPrefix(h, "*."):
			rules.suffixes = append(rules.suffixes, h[1:])
		default:
			rules.exact[h] = struct{}{}
		}
	}
	return rules
}

func (hr hostRules) empty() bool { return len(hr.exact) == 0 && len(hr.suffixes) == 0 }

// match compares the Host header with its port stripped. A wildcard never matches the bare apex.
func (hr hostRules) match(host string) bool {
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	host = strings.ToLower(host)
	if _, ok := hr.exact[host]; ok {
		return true
	}
	for _, suffix := range hr.suffixes {
		if strings.HasSuffix(host, suffix) && len(host) > len(suffix) {
			return true
		}
	}
	return false
}

// EnforceHost rejects requests whose Host is not one of allowedHosts. An empty list disables the check.
func EnforceHost(allowedHosts []string, log logger.Logger) func(http.Handler) http.Handler {
	rules := newHostRules(allowedHosts)
	if rules.empty() {
		return passthrough
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !rules.match(r.Host) {
				log.Debug("request for unknown host", logger.String("host", r.Host))
				jsonError(w, http.StatusForbidden, "forbidden")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
