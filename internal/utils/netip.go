package utils

import (
	"net"
	"net/http"
	"net/netip"
	"strings"
)

// proxyHeaders are consulted in order when the origin sits behind a trusted tunnel.
var proxyHeaders = []string{"CF-Connecting-IP", "X-Forwarded-For", "X-Real-IP"}

// ClientIP returns the caller's address without a port. Proxy headers are only
// honoured with trustProxy; otherwise RemoteAddr is authoritative.
func ClientIP(r *http.Request, trustProxy bool) string {
	if trustProxy {
		for _, h := range proxyHeaders {
			v := r.Header.Get(h)
			// X-Forwarded-For lists hops left to right, the client first
			v, _, _ = strings.Cut(v, ",")
			if ip := stripPort(strings.TrimSpace(v)); ip != "" {
				return ip
			}
		}
	}
	return stripPort(r.RemoteAddr)
}

func stripPort(s string) string {
	if host, _, err := net.SplitHostPort(s); err == nil {
		return host
	}
	return s
}

// AddrSet is a list of prefixes; a bare address is stored as a single-host prefix.
type AddrSet struct {
	prefixes []netip.Prefix
}

// ParseAddrSet keeps the valid entries of list and reports the ones it dropped.
func ParseAddrSet(list []string) (AddrSet, []string) {
	var (
		set     AddrSet
		invalid []string
	)
	for _, raw := range list {
		s := strings.TrimSpace(raw)
		if s == "" {
			continue
		}
		if p, err := netip.ParsePrefix(s); err == nil {
			set.prefixes = append(set.prefixes, p.Masked())
			continue
		}
		if a, err := netip.ParseAddr(s); err == nil {
			a = a.Unmap()
			set.prefixes = append(set.prefixes, netip.PrefixFrom(a, a.BitLen()))
			continue
		}
		invalid = append(invalid, s)
	}
	return set, invalid
}

// Len is the number of usable prefixes.
func (s AddrSet) Len() int { return len(s.prefixes) }

// Contains reports whether ip falls inside any prefix. Unparseable input never matches.
func (s AddrSet) Contains(ip string) bool {
	a, err := netip.ParseAddr(ip)
	if err != nil {
		return false
	}
	a = a.Unmap()
	for _, p := range s.prefixes {
		if p.Contains(a) {
			return true
		}
	}
	return false
}
