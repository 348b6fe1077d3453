package middleware

import (
	"net"
	"net/http"

	"github.com/JesseBremer/journal-mate/internal/http/ban"
	"github.com/JesseBremer/journal-mate/internal/http/rate_limiter"
	"github.com/JesseBremer/journal-mate/internal/logger"
)

const tooManyRequests = "Too many requests, try again later"

// RateLimit throttles clients by IP. Every rejected request counts as a
// strike; banned clients are rejected without touching their bucket. A nil
// limiter disables the middleware.
func RateLimit(limiter *rate_limiter.Limiter, tracker ban.Tracker) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if limiter == nil {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := clientIP(r)

			if tracker != nil {
				banned, err := tracker.IsBanned(r.Context(), ip)
				if err != nil {
					logger.Warningf("ban check for %s failed: %v", ip, err)
				}
				if banned {
					writeError(w, http.StatusTooManyRequests, tooManyRequests)
					return
				}
			}

			if !limiter.Allow(ip) {
				if tracker != nil {
					if _, err := tracker.Strike(r.Context(), ip, r.URL.Path); err != nil {
						logger.Warningf("failed to record strike for %s: %v", ip, err)
					}
				}
				writeError(w, http.StatusTooManyRequests, tooManyRequests)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
