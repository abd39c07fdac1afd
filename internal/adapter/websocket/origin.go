package websocket

import (
	"log/slog"
	"net/http"
	"net/url"
	"strings"
)

// OriginPolicy decides which browser origins may talk to the API and the status socket.
// An origin is allowed when it is on the explicit list, or when it is an https origin
// whose host ends with the configured suffix.
type OriginPolicy struct {
	allowed map[string]struct{}
	suffix  string
}

func NewOriginPolicy(allowedOrigins []string, suffix string) *OriginPolicy {
	allowed := make(map[string]struct{}, len(allowedOrigins))
	for _, o := range allowedOrigins {
		if origin := normalizeOrigin(o); origin != "" {
			allowed[origin] = struct{}{}
		}
	}
	return &OriginPolicy{
		allowed: allowed,
		suffix:  strings.ToLower(strings.TrimSpace(suffix)),
	}
}

// Allowed reports whether a non-empty Origin header value passes the policy.
func (p *OriginPolicy) Allowed(origin string) bool {
	normalized := normalizeOrigin(origin)
	if normalized == "" {
		return false
	}
	if _, ok := p.allowed[normalized]; ok {
		return true
	}
	return p.matchesSuffix(normalized)
}

// CheckOrigin is the upgrader hook. Requests without an Origin header come from
// non-browser clients and are accepted.
func (p *OriginPolicy) CheckOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	if p.Allowed(origin) {
		return true
	}

	slog.Warn("WebSocket origin rejected", "origin", origin, "remote_addr", r.RemoteAddr)
	return false
}

func (p *OriginPolicy) matchesSuffix(origin string) bool {
	if p.suffix == "" {
		return false
	}
	u, err := url.Parse(origin)
	if err != nil || u.Scheme != "https" {
		return false
	}
	return strings.HasSuffix(strings.ToLower(u.Hostname()), p.suffix)
}

func normalizeOrigin(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return ""
	}
	return strings.ToLower(u.Scheme + "://" + u.Host)
}
