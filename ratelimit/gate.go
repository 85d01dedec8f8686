// Package ratelimit implements a client-side sliding-window admission gate.
// It rejects outbound requests before they reach the network when recent
// traffic exceeds the window capacity, independent of any server-side
// throttling.
package ratelimit

import (
	"strings"
	"sync"
	"time"
)

const (
	// DefaultWindow is the default sliding-window duration
	DefaultWindow = 60 * time.Second

	// DefaultMaxRequests is the default window capacity
	DefaultMaxRequests = 200
)

// Record marks one admitted request. Records are created on admission,
// never mutated, and discarded when they age out of the window.
type Record struct {
	Timestamp time.Time
	Endpoint  string
}

// Gate admits or rejects requests based on a sliding window of recent
// admissions. Endpoints on the critical allow-list (login, token refresh,
// health checks) are always admitted but still recorded.
//
// All methods are safe for concurrent use; the purge-check-append sequence
// runs under one lock so no partial window state is ever observable.
type Gate struct {
	mu       sync.Mutex
	window   []Record
	duration time.Duration
	capacity int
	critical []string
	now      func() time.Time
}

// New creates a Gate with the given window duration, capacity, and
// critical-path allow-list. Non-positive duration or capacity select the
// defaults.
func New(window time.Duration, capacity int, criticalPaths []string) *Gate {
	if window <= 0 {
		window = DefaultWindow
	}
	if capacity <= 0 {
		capacity = DefaultMaxRequests
	}
	return &Gate{
		duration: window,
		capacity: capacity,
		critical: criticalPaths,
		now:      time.Now,
	}
}

// Admit decides whether a request to endpoint may proceed. Every call
// purges expired records first. Admitted requests are recorded; rejected
// ones are not.
func (g *Gate) Admit(endpoint string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	g.purge(now)

	if !g.isCritical(endpoint) && len(g.window) >= g.capacity {
		return false
	}

	g.window = append(g.window, Record{Timestamp: now, Endpoint: endpoint})
	return true
}

// Trim drops all but the most recent keep records. The retry orchestrator
// calls this when the server signals backpressure (429) to relieve local
// window pressure.
func (g *Gate) Trim(keep int) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if keep < 0 {
		keep = 0
	}
	if len(g.window) > keep {
		g.window = append(g.window[:0:0], g.window[len(g.window)-keep:]...)
	}
}

// Len returns the number of records currently in the window, after
// purging expired ones.
func (g *Gate) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.purge(g.now())
	return len(g.window)
}

// purge removes records that have aged out. Caller must hold g.mu.
// Records are appended in timestamp order, so the first survivor marks
// the cut point.
func (g *Gate) purge(now time.Time) {
	cut := 0
	for cut < len(g.window) && now.Sub(g.window[cut].Timestamp) >= g.duration {
		cut++
	}
	if cut > 0 {
		g.window = append(g.window[:0:0], g.window[cut:]...)
	}
}

func (g *Gate) isCritical(endpoint string) bool {
	for _, p := range g.critical {
		if p != "" && strings.Contains(endpoint, p) {
			return true
		}
	}
	return false
}
