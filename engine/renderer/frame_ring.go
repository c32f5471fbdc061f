package renderer

// FrameIndexer reports the frame-ring slot of the frame being recorded. Renderer implements it.
type FrameIndexer interface {
	FrameCount() int
	CurrentFrameIndex() int
}

// FrameRing holds N copies of a per-frame resource, one per frame in flight. Current returns
// the copy for the frame being recorded; the renderer's fence wait in BeginFrame guarantees the
// GPU is done with it.
type FrameRing[T any] struct {
	frames FrameIndexer
	slots  []T
}

// NewFrameRing creates a ring with one entry per frame in flight.
//
// Parameters:
//   - frames: the frame index source, typically the Renderer
//   - create: builds the entry for one slot
//
// Returns:
//   - *FrameRing[T]: the ring
func NewFrameRing[T any](frames FrameIndexer, create func(slot int) T) *FrameRing[T] {
	n := frames.FrameCount()
	ring := &FrameRing[T]{
		frames: frames,
		slots:  make([]T, n),
	}
	for i := range n {
		ring.slots[i] = create(i)
	}
	return ring
}

// Current returns the entry for the current frame.
func (f *FrameRing[T]) Current() T {
	return f.slots[f.frames.CurrentFrameIndex()%len(f.slots)]
}

// Slot returns the entry at slot i.
func (f *FrameRing[T]) Slot(i int) T {
	return f.slots[i]
}

// Len returns the number of slots.
func (f *FrameRing[T]) Len() int {
	return len(f.slots)
}

// Each calls fn for every slot in order.
func (f *FrameRing[T]) Each(fn func(slot int, v T)) {
	for i, v := range f.slots {
		fn(i, v)
	}
}
