package ramblings

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoginLimiterBlocksAfterMax(t *testing.T) {
	l := NewLoginLimiter(2, time.Minute)
	t.Cleanup(l.Stop)
	ip := "203.0.113.10"

	assert.True(t, l.Check(ip))
	l.Record(ip)
	assert.True(t, l.Check(ip))
	l.Record(ip)
	assert.False(t, l.Check(ip), "third attempt must be blocked")
}

func TestLoginLimiterResetsAfterWindow(t *testing.T) {
	l := NewLoginLimiter(1, 150*time.Millisecond)
	t.Cleanup(l.Stop)
	ip := "203.0.113.20"

	l.Record(ip)
	assert.False(t, l.Check(ip))

	time.Sleep(200 * time.Millisecond)
	assert.True(t, l.Check(ip), "attempt after window must be allowed")
}

func TestLoginLimiterIsPerIP(t *testing.T) {
	l := NewLoginLimiter(1, time.Minute)
	t.Cleanup(l.Stop)

	l.Record("203.0.113.30")
	assert.False(t, l.Check("203.0.113.30"))
	assert.True(t, l.Check("203.0.113.31"))
}

func TestLoginLimiterReset(t *testing.T) {
	l := NewLoginLimiter(1, time.Minute)
	l.Stop()
	l.Stop()

	l.Record("203.0.113.40")
	l.Reset("203.0.113.40")
	assert.True(t, l.Check("203.0.113.40"))
}
