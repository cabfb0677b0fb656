package mw

import (
	"net/http"

	"github.com/gobwas/glob"

	"github.com/MrSnakeDoc/webclipper/internal/logger"
)

// EnforceHost allows requests only if r.Host matches one of the allowed hosts.
// Patterns are globs with '.' as separator, so "*.example.com" matches one label.
// If allowedHosts is empty, it acts as a passthrough.
func EnforceHost(allowedHosts []string, log logger.Logger) func(http.Handler) http.Handler {
	patterns := compileGlobs(allowedHosts, log, '.')
	if len(patterns) == 0 {
		log.Debug("EnforceHost: empty allowedHosts, passthrough mode")
		return func(next http.Handler) http.Handler { return next }
	}

	log.Debugf("EnforceHost: initialized with hosts=%v", allowedHosts)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if matchAny(patterns, r.Host) {
				next.ServeHTTP(w, r)
				return
			}
			log.Debug("EnforceHost: rejected", logger.String("host", r.Host))
			http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
		})
	}
}

func compileGlobs(patterns []string, log logger.Logger, separators ...rune) []glob.Glob {
	out := make([]glob.Glob, 0, len(patterns))
	for _, p := range patterns {
		g, err := glob.Compile(p, separators...)
		if err != nil {
			log.Warn("ignoring invalid pattern", logger.String("pattern", p), logger.Error(err))
			continue
		}
		out = append(out, g)
	}
	return out
}

func matchAny(patterns []glob.Glob, s string) bool {
	for _, g := range patterns {
		if g.Match(s) {
			return true
		}
	}
	return false
}
