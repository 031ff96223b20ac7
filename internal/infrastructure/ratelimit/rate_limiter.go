package ratelimit

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	ActionReauthenticate = "reauthenticate"
	ActionCreatePost     = "create_post"
)

type entry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter keeps one token bucket per user and action.
type RateLimiter struct {
	limits  map[string]rate.Limit
	bursts  map[string]int
	entries map[string]*entry
	mutex   sync.Mutex
}

// NewRateLimiter takes per-minute allowances per action. Unlisted actions
// get 20 per minute.
func NewRateLimiter(perMinute map[string]int) *RateLimiter {
	rl := &RateLimiter{
		limits:  make(map[string]rate.Limit),
		bursts:  make(map[string]int),
		entries: make(map[string]*entry),
	}
	for action, n := range perMinute {
		if n <= 0 {
			continue
		}
		rl.limits[action] = rate.Every(time.Minute / time.Duration(n))
		rl.bursts[action] = n
	}
	return rl
}

// Allow consumes a token and, when refused, reports how long to wait.
func (rl *RateLimiter) Allow(userID, action string) (bool, time.Duration) {
	key := userID + ":" + action

	rl.mutex.Lock()
	e, ok := rl.entries[key]
	if !ok {
		limit, burst := rate.Every(3*time.Second), 20
		if l, found := rl.limits[action]; found {
			limit, burst = l, rl.bursts[action]
		}
		e = &entry{limiter: rate.NewLimiter(limit, burst)}
		rl.entries[key] = e
	}
	e.lastSeen = time.Now()
	rl.mutex.Unlock()

	r := e.limiter.Reserve()
	if delay := r.Delay(); delay > 0 {
		r.Cancel()
		return false, delay
	}
	return true, 0
}

// Cleanup drops buckets idle for longer than maxIdle.
func (rl *RateLimiter) Cleanup(maxIdle time.Duration) {
	rl.mutex.Lock()
	defer rl.mutex.Unlock()

	now := time.Now()
	for key, e := range rl.entries {
		if now.Sub(e.lastSeen) > maxIdle {
			delete(rl.entries, key)
		}
	}
}

func (rl *RateLimiter) StartCleanupRoutine(stop <-chan struct{}) {
	go func() {
		ticker := time.NewTicker(30 * time.Minute)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				rl.Cleanup(time.Hour)
			case <-stop:
				return
			}
		}
	}()
}
