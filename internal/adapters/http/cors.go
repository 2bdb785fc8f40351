package http //nolint:revive // package name conflicts with stdlib but is acceptable in this context

import (
	"net/http"
	"net/url"
	"strings"
)

// corsPolicy decides which browser origins may call the API. Patterns are
// "*" for any origin, an exact origin, or a subdomain wildcard such as
// "*.example.com", which matches sub.example.com but not example.com.
type corsPolicy struct {
	any      bool
	exact    map[string]struct{}
	suffixes []string
}

func newCORSPolicy(patterns []string) *corsPolicy {
	p := &corsPolicy{exact: make(map[string]struct{}, len(patterns))}
	for _, pattern := range patterns {
		pattern = strings.TrimSpace(pattern)
		switch {
		case pattern == "*":
			p.any = true
		case strings.HasPrefix(pattern, "*."):
			p.suffixes = append(p.suffixes, strings.ToLower(pattern[1:]))
		case pattern != "":
			p.exact[strings.TrimSuffix(pattern, "/")] = struct{}{}
		}
	}
	return p
}

// allows reports whether origin matches one of the patterns.
func (p *corsPolicy) allows(origin string) bool {
	if origin == "" {
		return false
	}
	if p.any {
		return true
	}
	if _, ok := p.exact[origin]; ok {
		return true
	}
	host := strings.ToLower(extractHost(origin))
	for _, suffix := range p.suffixes {
		if len(host) > len(suffix) && strings.HasSuffix(host, suffix) {
			return true
		}
	}
	return false
}

// middleware sets CORS headers for allowed origins and answers preflight
// requests itself.
func (p *corsPolicy) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Add("Vary", "Origin")

		if origin := r.Header.Get("Origin"); p.allows(origin) {
			h.Set("Access-Control-Allow-Origin", origin)
			h.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			h.Set("Access-Control-Allow-Headers", "Accept, Content-Type, Authorization")
			h.Set("Access-Control-Expose-Headers", "Retry-After")
			h.Set("Access-Control-Max-Age", "86400")
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// extractHost returns the host of an origin without port.
// Example: "https://example.com:8080" returns "example.com".
func extractHost(origin string) string {
	if !strings.Contains(origin, "://") {
		origin = "//" + origin
	}
	u, err := url.Parse(origin)
	if err != nil {
		return ""
	}
	return u.Hostname()
}
