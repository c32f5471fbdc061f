package profiler

import (
	"runtime"
	"time"

	"github.com/Carmen-Shannon/oxy-csm/common"
)

// Stats is one reporting window of the profiler.
type Stats struct {
	FPS       float64
	Dropped   int
	HeapMB    float64
	AllocRate float64 // MB/s allocated during the window
	GCCount   uint32
	MaxPause  time.Duration
	SysMB     float64
}

// Profiler tracks frame rate, dropped frames and memory statistics and logs them at a fixed
// interval. Not safe for concurrent use; the engine loop owns it.
type Profiler struct {
	now            func() time.Time
	frameCount     int
	dropCount      int
	lastTime       time.Time
	updateInterval time.Duration
	memStats       runtime.MemStats
	lastGCCount    uint32
	lastTotalAlloc uint64
	last           Stats
}

// ProfilerOption is a functional option applied in NewProfiler.
type ProfilerOption func(*Profiler)

// WithInterval sets how often stats are logged. Non-positive values keep the 1s default.
//
// Parameters:
//   - d: the reporting interval
//
// Returns:
//   - ProfilerOption: a function that applies the interval option
func WithInterval(d time.Duration) ProfilerOption {
	return func(p *Profiler) {
		if d > 0 {
			p.updateInterval = d
		}
	}
}

// WithClock replaces time.Now, for tests.
//
// Parameters:
//   - now: the clock
//
// Returns:
//   - ProfilerOption: a function that applies the clock option
func WithClock(now func() time.Time) ProfilerOption {
	return func(p *Profiler) {
		p.now = now
	}
}

// NewProfiler creates a new Profiler. Update interval defaults to 1 second.
//
// Parameters:
//   - options: a variadic list of ProfilerOption functions
//
// Returns:
//   - *Profiler: the newly created profiler instance
func NewProfiler(options ...ProfilerOption) *Profiler {
	p := &Profiler{
		now:            time.Now,
		updateInterval: time.Second,
	}
	for _, opt := range options {
		opt(p)
	}
	p.lastTime = p.now()
	return p
}

// Drop records a frame that was skipped because BeginFrame failed.
func (p *Profiler) Drop() {
	p.dropCount++
}

// Dropped returns the frames dropped so far in the current window.
func (p *Profiler) Dropped() int {
	return p.dropCount
}

// Last returns the stats of the most recent completed window.
func (p *Profiler) Last() Stats {
	return p.last
}

// Tick should be called once per rendered frame. Logs the window's stats when the update
// interval has elapsed.
//
// Returns:
//   - bool: true if stats were logged this tick, false otherwise
func (p *Profiler) Tick() bool {
	p.frameCount++
	currentTime := p.now()
	elapsed := currentTime.Sub(p.lastTime)
	if elapsed < p.updateInterval {
		return false
	}

	runtime.ReadMemStats(&p.memStats)
	s := Stats{
		FPS:     float64(p.frameCount) / elapsed.Seconds(),
		Dropped: p.dropCount,
		HeapMB:  float64(p.memStats.Alloc) / 1024 / 1024,
		SysMB:   float64(p.memStats.Sys) / 1024 / 1024,
		GCCount: p.memStats.NumGC,
	}
	s.AllocRate = float64(p.memStats.TotalAlloc-p.lastTotalAlloc) / 1024 / 1024 / elapsed.Seconds()

	// PauseNs is a circular buffer of the last 256 GC pauses.
	start := p.lastGCCount
	if s.GCCount-start > 256 {
		start = s.GCCount - 256
	}
	for i := start; i < s.GCCount; i++ {
		s.MaxPause = max(s.MaxPause, time.Duration(p.memStats.PauseNs[i%256]))
	}

	common.Logger().Info("frame stats",
		"fps", s.FPS,
		"dropped", s.Dropped,
		"heap_mb", s.HeapMB,
		"alloc_mb_s", s.AllocRate,
		"gc", s.GCCount,
		"max_pause", s.MaxPause,
		"sys_mb", s.SysMB,
	)

	p.last = s
	p.frameCount = 0
	p.dropCount = 0
	p.lastTime = currentTime
	p.lastGCCount = s.GCCount
	p.lastTotalAlloc = p.memStats.TotalAlloc
	return true
}
