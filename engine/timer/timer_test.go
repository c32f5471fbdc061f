package timer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) advance(d time.Duration) { c.now = c.now.Add(d) }
func (c *fakeClock) read() time.Time         { return c.now }

func TestTimer_TickMeasuresDelta(t *testing.T) {
	clock := &fakeClock{now: time.Unix(100, 0)}
	tm := NewTimer(WithClock(clock.read))

	clock.advance(250 * time.Millisecond)
	tm.Tick()
	assert.InDelta(t, 0.25, tm.Delta(), 1e-6)
	assert.InDelta(t, 0.25, tm.Total(), 1e-6)

	clock.advance(500 * time.Millisecond)
	tm.Tick()
	assert.InDelta(t, 0.5, tm.Delta(), 1e-6)
	assert.InDelta(t, 0.75, tm.Total(), 1e-6)
	assert.Equal(t, uint64(2), tm.Frames())
}

func TestTimer_PauseResume(t *testing.T) {
	clock := &fakeClock{now: time.Unix(0, 0)}
	tm := NewTimer(WithClock(clock.read))

	clock.advance(time.Second)
	tm.Tick()
	tm.Pause()
	assert.True(t, tm.Paused())

	clock.advance(10 * time.Second)
	tm.Tick()
	assert.Zero(t, tm.Delta())
	assert.InDelta(t, 1.0, tm.Total(), 1e-6)

	tm.Resume()
	clock.advance(2 * time.Second)
	tm.Tick()
	assert.InDelta(t, 2.0, tm.Delta(), 1e-6)
	assert.InDelta(t, 3.0, tm.Total(), 1e-6)
}

func TestTimer_ClockGoingBackwards(t *testing.T) {
	clock := &fakeClock{now: time.Unix(50, 0)}
	tm := NewTimer(WithClock(clock.read))

	clock.advance(-time.Second)
	tm.Tick()
	assert.Zero(t, tm.Delta())
	assert.Zero(t, tm.Total())
}

func TestTimer_Reset(t *testing.T) {
	clock := &fakeClock{now: time.Unix(0, 0)}
	tm := NewTimer(WithClock(clock.read))
	clock.advance(time.Second)
	tm.Tick()

	tm.Reset()
	assert.Zero(t, tm.Total())
	assert.Zero(t, tm.Delta())
	assert.Zero(t, tm.Frames())
}
