package mqtt

import (
	"testing"
	"time"

	"github.com/open-acs/acsd/pkg/logx"
)

func TestRateLimiterAllowsUpToMaxPerWindow(t *testing.T) {
	rl := &RateLimiter{maxMessages: 2, windowSize: time.Hour}

	if !rl.Allow() || !rl.Allow() {
		t.Fatal("expected first two calls to be allowed")
	}
	if rl.Allow() {
		t.Fatal("expected third call within the window to be denied")
	}
}

func TestRateLimiterResetsAfterWindow(t *testing.T) {
	rl := &RateLimiter{maxMessages: 1, windowSize: time.Millisecond}

	if !rl.Allow() {
		t.Fatal("expected first call to be allowed")
	}
	time.Sleep(2 * time.Millisecond)
	if !rl.Allow() {
		t.Fatal("expected a call after the window elapsed to be allowed")
	}
}

func TestPublishDecisionNoopWhenDisabled(t *testing.T) {
	c := NewClient(&Config{Enabled: false}, logx.Discard())
	if err := c.PublishDecision(Decision{Status: "valid", Channel: 6}); err != nil {
		t.Fatalf("PublishDecision() error = %v, want nil for disabled client", err)
	}
}
