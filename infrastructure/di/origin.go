package di

import (
	"net/http"
	"strings"
)

// originChecker allows websocket upgrades from the configured CORS origins.
// A single "*" entry allows everything; "https://*.example.com" matches subdomains.
func originChecker(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		for _, a := range allowed {
			if a == "*" || strings.EqualFold(a, origin) {
				return true
			}
			if i := strings.Index(a, "*"); i >= 0 {
				prefix, suffix := a[:i], a[i+1:]
				if strings.HasPrefix(origin, prefix) && strings.HasSuffix(origin, suffix) && len(origin) > len(prefix)+len(suffix) {
					return true
				}
			}
		}
		return false
	}
}
