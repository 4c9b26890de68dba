package ws

import (
	"testing"
	"time"
)

func TestRateLimiterWindow(t *testing.T) {
	rl := NewRateLimiter(2, 50*time.Millisecond)

	if !rl.Allow("c1") || !rl.Allow("c1") {
		t.Fatal("first two attempts should pass")
	}
	if rl.Allow("c1") {
		t.Fatal("third attempt inside the window should be denied")
	}
	if !rl.Allow("c2") {
		t.Fatal("another connection must have its own window")
	}

	time.Sleep(60 * time.Millisecond)
	if !rl.Allow("c1") {
		t.Fatal("attempt after the window expired should pass")
	}
}

func TestRateLimiterForget(t *testing.T) {
	rl := NewRateLimiter(1, time.Minute)

	if !rl.Allow("c1") {
		t.Fatal("first attempt should pass")
	}
	if rl.Allow("c1") {
		t.Fatal("second attempt should be denied")
	}

	rl.Forget("c1")
	if !rl.Allow("c1") {
		t.Fatal("window should reset after Forget")
	}
}
