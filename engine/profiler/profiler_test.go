package profiler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestProfiler_TickReportsPerInterval(t *testing.T) {
	now := time.Unix(100, 0)
	p := NewProfiler(WithClock(func() time.Time { return now }), WithInterval(2*time.Second))

	for range 39 {
		now = now.Add(50 * time.Millisecond)
		assert.False(t, p.Tick())
	}
	p.Drop()
	p.Drop()
	now = now.Add(50 * time.Millisecond)
	assert.True(t, p.Tick())

	s := p.Last()
	assert.InDelta(t, 20.0, s.FPS, 1e-6)
	assert.Equal(t, 2, s.Dropped)

	now = now.Add(3 * time.Second)
	assert.True(t, p.Tick())
	assert.Zero(t, p.Last().Dropped)
}

func TestWithInterval_IgnoresNonPositive(t *testing.T) {
	p := NewProfiler(WithInterval(0))
	assert.Equal(t, time.Second, p.updateInterval)
}
