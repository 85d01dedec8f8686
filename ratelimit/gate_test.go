package ratelimit

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock drives a Gate deterministically.
type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestGate(window time.Duration, capacity int, critical []string) (*Gate, *fakeClock) {
	clock := &fakeClock{t: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	g := New(window, capacity, critical)
	g.now = clock.Now
	return g, clock
}

func TestNewDefaults(t *testing.T) {
	g := New(0, 0, nil)
	assert.Equal(t, DefaultWindow, g.duration)
	assert.Equal(t, DefaultMaxRequests, g.capacity)
}

func TestAdmitUnderCapacity(t *testing.T) {
	g, _ := newTestGate(time.Minute, 3, nil)

	assert.True(t, g.Admit("/data/x"))
	assert.True(t, g.Admit("/data/x"))
	assert.True(t, g.Admit("/data/y"))
	assert.Equal(t, 3, g.Len())
}

func TestAdmitRejectsAtCapacity(t *testing.T) {
	const capacity = 5
	g, _ := newTestGate(time.Minute, capacity, nil)

	for i := 0; i < capacity; i++ {
		require.True(t, g.Admit("/data/x"), "admission %d should pass", i+1)
	}

	// The (C+1)th admission within the window is rejected and not recorded.
	assert.False(t, g.Admit("/data/x"))
	assert.Equal(t, capacity, g.Len())
}

func TestAdmitRecoversAfterWindowElapses(t *testing.T) {
	g, clock := newTestGate(time.Minute, 2, nil)

	require.True(t, g.Admit("/data/x"))
	require.True(t, g.Admit("/data/x"))
	require.False(t, g.Admit("/data/x"))

	// Exactly the window duration later the old records expire
	// (now - ts >= W drops them).
	clock.Advance(time.Minute)
	assert.True(t, g.Admit("/data/x"))
	assert.Equal(t, 1, g.Len())
}

func TestCriticalPathsNeverRejected(t *testing.T) {
	critical := []string{"/auth/login", "/auth/refresh", "/health"}
	g, _ := newTestGate(time.Minute, 2, critical)

	require.True(t, g.Admit("/data/x"))
	require.True(t, g.Admit("/data/x"))
	require.False(t, g.Admit("/data/x"), "window is full")

	// Critical endpoints pass regardless of window fullness, even well
	// beyond capacity, and are still recorded.
	for i := 0; i < 20; i++ {
		assert.True(t, g.Admit("/auth/login"))
		assert.True(t, g.Admit("/api/v2/auth/refresh"))
		assert.True(t, g.Admit("/health"))
	}
	assert.Equal(t, 62, g.Len())

	// Non-critical traffic is still blocked.
	assert.False(t, g.Admit("/data/x"))
}

func TestPartialExpiry(t *testing.T) {
	g, clock := newTestGate(time.Minute, 10, nil)

	require.True(t, g.Admit("/old"))
	clock.Advance(30 * time.Second)
	require.True(t, g.Admit("/new"))

	clock.Advance(30 * time.Second)
	// /old is now exactly one window old and must be gone; /new survives.
	assert.Equal(t, 1, g.Len())
}

func TestTrim(t *testing.T) {
	g, _ := newTestGate(time.Minute, 100, nil)

	for i := 0; i < 80; i++ {
		require.True(t, g.Admit(fmt.Sprintf("/data/%d", i)))
	}

	g.Trim(50)
	assert.Equal(t, 50, g.Len())

	// The most recent records are the ones kept.
	g.mu.Lock()
	assert.Equal(t, "/data/30", g.window[0].Endpoint)
	assert.Equal(t, "/data/79", g.window[len(g.window)-1].Endpoint)
	g.mu.Unlock()

	// Trimming below zero clamps to empty rather than panicking.
	g.Trim(-1)
	assert.Equal(t, 0, g.Len())
}

func TestTrimNoopWhenSmaller(t *testing.T) {
	g, _ := newTestGate(time.Minute, 100, nil)
	require.True(t, g.Admit("/data/x"))

	g.Trim(50)
	assert.Equal(t, 1, g.Len())
}

func TestConcurrentAdmission(t *testing.T) {
	g := New(time.Minute, 50, nil)

	done := make(chan int)
	for w := 0; w < 4; w++ {
		go func() {
			admitted := 0
			for i := 0; i < 25; i++ {
				if g.Admit("/data/x") {
					admitted++
				}
			}
			done <- admitted
		}()
	}

	total := 0
	for w := 0; w < 4; w++ {
		total += <-done
	}

	// Exactly capacity admissions may succeed across all goroutines.
	assert.Equal(t, 50, total)
	assert.Equal(t, 50, g.Len())
}
