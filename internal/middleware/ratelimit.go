// Package middleware provides HTTP middleware for the battle plan API.
package middleware

import (
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// defaultMaxClients bounds the bucket map when no limit is configured.
const defaultMaxClients = 10000

// RateLimiter throttles requests per client IP with token buckets.
// Buckets unused for longer than the idle TTL are evicted in the background.
// At most maxClients buckets are tracked; clients arriving while the map is
// full share a single overflow bucket.
type RateLimiter struct {
	mu         sync.Mutex
	clients    map[string]*clientLimiter
	overflow   *rate.Limiter
	limit      rate.Limit
	burst      int
	idleTTL    time.Duration
	maxClients int
	now        func() time.Time

	stop     chan struct{}
	stopOnce sync.Once
	done     chan struct{}
}

// NewRateLimiter creates a rate limiter and starts the eviction goroutine.
// A non-positive maxClients selects 10000. Call Stop to release it.
func NewRateLimiter(rps float64, burst int, idleTTL time.Duration, maxClients int) *RateLimiter {
	if idleTTL <= 0 {
		idleTTL = 10 * time.Minute
	}
	if maxClients <= 0 {
		maxClients = defaultMaxClients
	}
	rl := &RateLimiter{
		clients:    make(map[string]*clientLimiter),
		overflow:   rate.NewLimiter(rate.Limit(rps), burst),
		limit:      rate.Limit(rps),
		burst:      burst,
		idleTTL:    idleTTL,
		maxClients: maxClients,
		now:        time.Now,
		stop:       make(chan struct{}),
		done:       make(chan struct{}),
	}
	go rl.evictLoop()
	return rl
}

// Allow reports whether a request from key may proceed now.
func (r *RateLimiter) Allow(key string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	c, ok := r.clients[key]
	if !ok {
		if len(r.clients) >= r.maxClients {
			r.evictLocked(now)
		}
		if len(r.clients) >= r.maxClients {
			return r.overflow.AllowN(now, 1)
		}
		c = &clientLimiter{limiter: rate.NewLimiter(r.limit, r.burst)}
		r.clients[key] = c
	}
	c.lastSeen = now
	return c.limiter.AllowN(now, 1)
}

// Len returns the number of tracked clients.
func (r *RateLimiter) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.clients)
}

// Stop terminates the eviction goroutine. It is safe to call more than once.
func (r *RateLimiter) Stop() {
	r.stopOnce.Do(func() { close(r.stop) })
	<-r.done
}

// Middleware rejects over-limit requests with onLimit, or a plain 429 when
// onLimit is nil.
func (r *RateLimiter) Middleware(onLimit http.HandlerFunc) func(http.Handler) http.Handler {
	if onLimit == nil {
		onLimit = func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
		}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			if !r.Allow(clientIP(req)) {
				w.Header().Set("Retry-After", "1")
				onLimit(w, req)
				return
			}
			next.ServeHTTP(w, req)
		})
	}
}

func (r *RateLimiter) evict() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.evictLocked(r.now())
}

func (r *RateLimiter) evictLocked(now time.Time) {
	cutoff := now.Add(-r.idleTTL)
	for key, c := range r.clients {
		if c.lastSeen.Before(cutoff) {
			delete(r.clients, key)
		}
	}
}

func (r *RateLimiter) evictLoop() {
	defer close(r.done)
	ticker := time.NewTicker(r.idleTTL)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			r.evict()
		case <-r.stop:
			return
		}
	}
}

// clientIP keys on the connection's RemoteAddr. Forwarding headers only
// count when the server mounts chi's RealIP, which it does solely when
// proxy headers are trusted.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
