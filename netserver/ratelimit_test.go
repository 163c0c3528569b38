package netserver

import (
	"context"
	"testing"
	"time"
)

func TestRateLimiterAcquireSucceedsWithinCapacity(t *testing.T) {
	rl := NewRateLimiter(3, time.Hour, 50*time.Millisecond)
	defer rl.Close()

	for i := 0; i < 3; i++ {
		if !rl.Acquire(context.Background()) {
			t.Fatalf("acquire %d: expected success within capacity", i)
		}
	}
}

func TestRateLimiterAcquireTimesOutPastCapacity(t *testing.T) {
	rl := NewRateLimiter(1, time.Hour, 30*time.Millisecond)
	defer rl.Close()

	if !rl.Acquire(context.Background()) {
		t.Fatal("first acquire should succeed")
	}

	start := time.Now()
	ok := rl.Acquire(context.Background())
	elapsed := time.Since(start)
	if ok {
		t.Fatal("second acquire should fail: capacity exhausted and refill period is effectively infinite")
	}
	if elapsed < 30*time.Millisecond {
		t.Fatalf("acquire returned after %v, want at least maxWait (30ms)", elapsed)
	}
}

func TestRateLimiterRefillsOneTokenPerPeriod(t *testing.T) {
	rl := NewRateLimiter(1, 20*time.Millisecond, 200*time.Millisecond)
	defer rl.Close()

	if !rl.Acquire(context.Background()) {
		t.Fatal("first acquire should succeed")
	}

	start := time.Now()
	if !rl.Acquire(context.Background()) {
		t.Fatal("second acquire should eventually succeed once the refill ticks")
	}
	elapsed := time.Since(start)
	if elapsed < 10*time.Millisecond {
		t.Fatalf("second acquire returned after %v, too fast to have waited for a refill tick", elapsed)
	}
}

func TestRateLimiterAcquireRespectsContextCancellation(t *testing.T) {
	rl := NewRateLimiter(1, time.Hour, time.Hour)
	defer rl.Close()

	if !rl.Acquire(context.Background()) {
		t.Fatal("first acquire should succeed")
	}

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	if rl.Acquire(ctx) {
		t.Fatal("acquire should fail once ctx is canceled, despite a long maxWait")
	}
}

func TestRateLimiterAvailableTokensNeverExceedCapacity(t *testing.T) {
	rl := NewRateLimiter(2, 5*time.Millisecond, time.Millisecond)
	defer rl.Close()

	// Let several refill ticks pass with nothing consumed; the channel
	// buffer itself (capacity 2) makes overflow structurally impossible,
	// this asserts the buffer was actually sized at capacity and not
	// something larger.
	time.Sleep(50 * time.Millisecond)
	if len(rl.tokens) > rl.capacity {
		t.Fatalf("tokens available = %d, want at most capacity %d", len(rl.tokens), rl.capacity)
	}
}
