package middlewares

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/campus-canteen/utils"
	"golang.org/x/time/rate"
)

// RateLimiter is a per-IP sliding window: at most rate requests per interval.
// IPs whose window has emptied are dropped once per interval.
type RateLimiter struct {
	rate      int
	interval  time.Duration
	ips       map[string][]time.Time
	lastSweep time.Time
	mu        sync.Mutex
}

func NewRateLimiter(rate int, interval time.Duration) *RateLimiter {
	return &RateLimiter{
		rate:     rate,
		interval: interval,
		ips:      make(map[string][]time.Time),
	}
}

func (rl *RateLimiter) RateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rl.allow(c.ClientIP(), time.Now()) {
			utils.RespondMessage(c, http.StatusTooManyRequests, "Too many requests, please slow down")
			c.Abort()
			return
		}
		c.Next()
	}
}

func (rl *RateLimiter) allow(ip string, now time.Time) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := now.Add(-rl.interval)
	if now.Sub(rl.lastSweep) >= rl.interval {
		rl.sweepLocked(cutoff)
		rl.lastSweep = now
	}

	valid := rl.ips[ip][:0]
	for _, t := range rl.ips[ip] {
		if t.After(cutoff) {
			valid = append(valid, t)
		}
	}

	if len(valid) >= rl.rate {
		rl.ips[ip] = valid
		return false
	}
	rl.ips[ip] = append(valid, now)
	return true
}

func (rl *RateLimiter) sweepLocked(cutoff time.Time) {
	for ip, times := range rl.ips {
		if len(times) == 0 || !times[len(times)-1].After(cutoff) {
			delete(rl.ips, ip)
		}
	}
}

func (rl *RateLimiter) trackedIPs() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.ips)
}

// StrictRateLimiter guards login with a token bucket per client IP. A bucket
// left alone long enough to refill completely is forgotten, since a new one
// behaves the same.
type StrictRateLimiter struct {
	every     time.Duration
	burst     int
	idle      time.Duration
	limiters  map[string]*visitor
	lastSweep time.Time
	mu        sync.Mutex
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func NewStrictRateLimiter(every time.Duration, burst int) *StrictRateLimiter {
	return &StrictRateLimiter{
		every:    every,
		burst:    burst,
		idle:     every * time.Duration(burst),
		limiters: make(map[string]*visitor),
	}
}

func (sl *StrictRateLimiter) allow(ip string, now time.Time) bool {
	sl.mu.Lock()
	if now.Sub(sl.lastSweep) >= sl.idle {
		for key, v := range sl.limiters {
			if now.Sub(v.lastSeen) >= sl.idle {
				delete(sl.limiters, key)
			}
		}
		sl.lastSweep = now
	}

	v, ok := sl.limiters[ip]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(rate.Every(sl.every), sl.burst)}
		sl.limiters[ip] = v
	}
	v.lastSeen = now
	sl.mu.Unlock()

	return v.limiter.AllowN(now, 1)
}

func (sl *StrictRateLimiter) trackedIPs() int {
	sl.mu.Lock()
	defer sl.mu.Unlock()
	return len(sl.limiters)
}

func (sl *StrictRateLimiter) Limit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !sl.allow(c.ClientIP(), time.Now()) {
			utils.RespondMessage(c, http.StatusTooManyRequests, "Too many attempts, please wait a moment")
			c.Abort()
			return
		}
		c.Next()
	}
}
