package strategy

import "testing"

func TestRateLimiterBurst(t *testing.T) {
	rl := NewRateLimiter(60, 3)
	for i := 0; i < 3; i++ {
		if !rl.Allow() {
			t.Fatalf("expected burst token %d to be allowed", i)
		}
	}
	if rl.Allow() {
		t.Fatal("expected burst to be exhausted")
	}
}

func TestRateLimiterZeroBurstNeverAllows(t *testing.T) {
	rl := NewRateLimiter(60, 0)
	if rl.Allow() {
		t.Fatal("zero burst limiter should not allow immediately")
	}
}
