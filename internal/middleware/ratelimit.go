package middleware

import (
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/onnwee/forcemap/internal/apierr"
	"github.com/onnwee/forcemap/internal/metrics"
)

// RateLimiter applies a global token bucket plus one bucket per client
// IP. It fronts the mutation routes: snapshot polling is cheap, but
// body insertion and relocation contend on the simulation step lock.
type RateLimiter struct {
	global  *rate.Limiter
	perIP   map[string]*ipLimiter
	mu      sync.Mutex
	ipRate  rate.Limit
	ipBurst int
}

type ipLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter creates a rate limiter with global and per-IP limits,
// both expressed as requests per second with a burst allowance.
func NewRateLimiter(globalRate float64, globalBurst int, ipRate float64, ipBurst int) *RateLimiter {
	rl := &RateLimiter{
		global:  rate.NewLimiter(rate.Limit(globalRate), globalBurst),
		perIP:   make(map[string]*ipLimiter),
		ipRate:  rate.Limit(ipRate),
		ipBurst: ipBurst,
	}
	go rl.cleanupStaleEntries()
	return rl
}

func (rl *RateLimiter) getLimiter(ip string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	if l, ok := rl.perIP[ip]; ok {
		l.lastSeen = time.Now()
		return l.limiter
	}
	l := &ipLimiter{limiter: rate.NewLimiter(rl.ipRate, rl.ipBurst), lastSeen: time.Now()}
	rl.perIP[ip] = l
	return l.limiter
}

// cleanupStaleEntries drops per-IP limiters unused for three minutes.
func (rl *RateLimiter) cleanupStaleEntries() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for range ticker.C {
		cutoff := time.Now().Add(-3 * time.Minute)
		rl.mu.Lock()
		for ip, l := range rl.perIP {
			if l.lastSeen.Before(cutoff) {
				delete(rl.perIP, ip)
			}
		}
		rl.mu.Unlock()
	}
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// Limit wraps next with the global and per-IP buckets.
func (rl *RateLimiter) Limit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !rl.global.Allow() {
			metrics.RateLimitRejections.WithLabelValues("global").Inc()
			apierr.TooManyRequests(apierr.ErrRateLimitGlobal, "global rate limit exceeded").Write(r.Context(), w)
			return
		}
		if !rl.getLimiter(clientIP(r)).Allow() {
			metrics.RateLimitRejections.WithLabelValues("ip").Inc()
			apierr.TooManyRequests(apierr.ErrRateLimitIP, "rate limit exceeded for client").Write(r.Context(), w)
			return
		}
		next.ServeHTTP(w, r)
	})
}
