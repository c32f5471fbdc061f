package timer

import (
	"sync"
	"time"
)

// Clock returns the current time. Tests substitute a fake clock with WithClock.
type Clock func() time.Time

// timer is the implementation of the Timer interface.
type timer struct {
	mu *sync.Mutex

	now   Clock
	start time.Time
	last  time.Time

	delta  float32
	total  float32
	frames uint64
	paused bool
}

// Timer measures frame time. Tick is called once per frame by the engine loop; Delta and Total
// report the values captured by the last Tick so every consumer sees the same numbers for a frame.
type Timer interface {
	// Tick samples the clock and updates Delta and Total. While paused, Delta is zero and Total
	// does not advance.
	Tick()

	// Delta returns the seconds elapsed between the last two ticks.
	Delta() float32

	// Total returns the unpaused seconds elapsed since the timer was created or reset.
	Total() float32

	// Frames returns the number of ticks since the timer was created or reset.
	Frames() uint64

	// Pause stops Total from advancing until Resume.
	Pause()

	// Resume restarts time measurement from the current clock reading.
	Resume()

	// Paused reports whether the timer is paused.
	Paused() bool

	// Reset zeroes Delta, Total and Frames.
	Reset()
}

var _ Timer = &timer{}

// NewTimer creates a timer that starts measuring immediately.
//
// Parameters:
//   - options: a variadic list of TimerBuilderOption functions
//
// Returns:
//   - Timer: the timer
func NewTimer(options ...TimerBuilderOption) Timer {
	t := &timer{
		mu:  &sync.Mutex{},
		now: time.Now,
	}
	for _, opt := range options {
		opt(t)
	}
	t.start = t.now()
	t.last = t.start
	return t
}

func (t *timer) Tick() {
	t.mu.Lock()
	defer t.mu.Unlock()
	now := t.now()
	t.frames++
	if t.paused {
		t.delta = 0
		t.last = now
		return
	}
	t.delta = float32(now.Sub(t.last).Seconds())
	if t.delta < 0 {
		t.delta = 0
	}
	t.total += t.delta
	t.last = now
}

func (t *timer) Delta() float32 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.delta
}

func (t *timer) Total() float32 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.total
}

func (t *timer) Frames() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.frames
}

func (t *timer) Pause() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.paused = true
}

func (t *timer) Resume() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.paused {
		return
	}
	t.paused = false
	t.last = t.now()
}

func (t *timer) Paused() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.paused
}

func (t *timer) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.start = t.now()
	t.last = t.start
	t.delta = 0
	t.total = 0
	t.frames = 0
}
