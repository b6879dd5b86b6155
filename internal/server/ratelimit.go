package server

import (
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"
)

// limitReason describes why a connection was rejected.
type limitReason string

const (
	limitReasonGlobal limitReason = "global_limit"
	limitReasonPerIP  limitReason = "per_ip_limit"
)

// connectionLimits caps concurrent WebSocket connections, both per instance
// and per source IP.
type connectionLimits struct {
	current   atomic.Int64
	globalMax int64

	mu    sync.Mutex
	perIP map[string]int
	ipMax int
}

func newConnectionLimits(globalMax int64, perIPMax int) *connectionLimits {
	return &connectionLimits{
		globalMax: globalMax,
		perIP:     make(map[string]int),
		ipMax:     perIPMax,
	}
}

// Acquire claims a connection slot for ip. On rejection the returned reason
// names the exhausted limit and no slot is held.
func (l *connectionLimits) Acquire(ip string) (bool, limitReason) {
	for {
		current := l.current.Load()
		if current >= l.globalMax {
			return false, limitReasonGlobal
		}
		if l.current.CompareAndSwap(current, current+1) {
			break
		}
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.perIP[ip] >= l.ipMax {
		l.current.Add(-1)
		return false, limitReasonPerIP
	}
	l.perIP[ip]++
	return true, ""
}

func (l *connectionLimits) Release(ip string) {
	l.mu.Lock()
	if count := l.perIP[ip]; count > 0 {
		l.perIP[ip] = count - 1
		if l.perIP[ip] == 0 {
			delete(l.perIP, ip)
		}
	}
	l.mu.Unlock()

	l.current.Add(-1)
}

func (l *connectionLimits) Current() int64 {
	return l.current.Load()
}

// ipRateLimiter throttles requests per source IP with a token bucket each.
type ipRateLimiter struct {
	mu        sync.Mutex
	buckets   map[string]*bucketEntry
	rate      rate.Limit
	burst     int
	cleanupAt time.Time
}

type bucketEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func newIPRateLimiter(perSecond float64, burst int) *ipRateLimiter {
	return &ipRateLimiter{
		buckets:   make(map[string]*bucketEntry),
		rate:      rate.Limit(perSecond),
		burst:     burst,
		cleanupAt: time.Now().Add(5 * time.Minute),
	}
}

func (l *ipRateLimiter) allow(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if now := time.Now(); now.After(l.cleanupAt) {
		cutoff := now.Add(-10 * time.Minute)
		for ip, entry := range l.buckets {
			if entry.lastSeen.Before(cutoff) {
				delete(l.buckets, ip)
			}
		}
		l.cleanupAt = now.Add(5 * time.Minute)
	}

	entry, exists := l.buckets[ip]
	if !exists {
		entry = &bucketEntry{limiter: rate.NewLimiter(l.rate, l.burst)}
		l.buckets[ip] = entry
	}

	entry.lastSeen = time.Now()
	return entry.limiter.Allow()
}

// middleware rejects over-limit requests with 429 before the handler runs.
func (l *ipRateLimiter) middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !l.allow(c.RealIP()) {
				return echo.NewHTTPError(http.StatusTooManyRequests, "rate limit exceeded")
			}
			return next(c)
		}
	}
}
