package app

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"quizbank/internal/app/apiresp"
)

type rateBucket struct {
	Count      int
	WindowEnds time.Time
}

type IPRateLimiter struct {
	mu     sync.Mutex
	max    int
	window time.Duration
	store  map[string]rateBucket
}

func NewIPRateLimiter(max int, window time.Duration) *IPRateLimiter {
	if max <= 0 {
		max = 60
	}
	if window <= 0 {
		window = time.Minute
	}
	return &IPRateLimiter{
		max:    max,
		window: window,
		store:  make(map[string]rateBucket),
	}
}

func (l *IPRateLimiter) Allow(key string) bool {
	now := time.Now()
	l.mu.Lock()
	defer l.mu.Unlock()

	b := l.store[key]
	if now.After(b.WindowEnds) {
		b = rateBucket{Count: 0, WindowEnds: now.Add(l.window)}
	}
	if b.Count >= l.max {
		l.store[key] = b
		return false
	}
	b.Count++
	l.store[key] = b
	return true
}

// OriginAllowed reports whether the given Origin header value is in the
// configured allow-list.
func OriginAllowed(allowed []string, origin string) bool {
	for _, a := range allowed {
		if origin == a {
			return true
		}
	}
	return false
}

// RequireAllowedOrigin rejects any request carrying an Origin header that is
// not in the allow-list. Requests without an Origin header (curl, same-origin,
// server-to-server) pass through. The cors handler on its own only withholds
// response headers for actual requests; this middleware makes the refusal
// explicit.
func RequireAllowedOrigin(allowed []string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := strings.TrimSpace(r.Header.Get("Origin"))
			if origin != "" && !OriginAllowed(allowed, origin) {
				apiresp.WriteError(w, http.StatusForbidden, "The CORS policy for this site does not allow access from the specified Origin: "+origin)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func RateLimitMiddleware(l *IPRateLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := strings.TrimSpace(r.RemoteAddr)
			key := ip + "|" + r.Method + "|" + r.URL.Path
			if !l.Allow(key) {
				apiresp.WriteError(w, http.StatusTooManyRequests, "rate limit exceeded")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
