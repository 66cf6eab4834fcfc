// Package antispam implements the per-identity cooldown gate shared by both
// front ends. Each identity gets a burst-1 token bucket refilled once per
// cooldown interval: the first action passes, repeats inside the interval are
// rejected, and a rejected attempt does not push the window forward.
package antispam

import (
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// Gate is a per-key cooldown tracker. Safe for concurrent use from both the
// update-dispatch goroutine and web request handlers.
type Gate struct {
	interval time.Duration
	ttl      time.Duration

	mu       sync.Mutex
	visitors map[string]*visitor
}

// New returns a Gate enforcing one action per interval per identity.
// Idle identities are dropped by Sweep after a TTL to bound memory.
func New(interval time.Duration) *Gate {
	return &Gate{
		interval: interval,
		ttl:      10 * time.Minute,
		visitors: make(map[string]*visitor),
	}
}

// Allow reports whether key may act now and, if so, starts its cooldown.
func (g *Gate) Allow(key string) bool {
	return g.allowAt(key, time.Now())
}

// AllowID is Allow for numeric chat identities.
func (g *Gate) AllowID(id int64) bool {
	return g.Allow(strconv.FormatInt(id, 10))
}

func (g *Gate) allowAt(key string, now time.Time) bool {
	g.mu.Lock()
	v, ok := g.visitors[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(rate.Every(g.interval), 1)}
		g.visitors[key] = v
	}
	v.lastSeen = now
	lim := v.limiter
	g.mu.Unlock()
	return lim.AllowN(now, 1)
}

// Sweep evicts identities idle longer than the TTL and returns how many were
// dropped. Entries older than the TTL have fully refilled buckets, so
// eviction never shortens anyone's cooldown.
func (g *Gate) Sweep() int {
	return g.sweepAt(time.Now())
}

func (g *Gate) sweepAt(now time.Time) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	n := 0
	for k, v := range g.visitors {
		if now.Sub(v.lastSeen) >= g.ttl {
			delete(g.visitors, k)
			n++
		}
	}
	return n
}

// Len reports the number of tracked identities.
func (g *Gate) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.visitors)
}
