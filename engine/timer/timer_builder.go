package timer

// TimerBuilderOption is a functional option applied to a timer during construction via NewTimer.
type TimerBuilderOption func(*timer)

// WithClock replaces time.Now as the timer's time source.
//
// Parameters:
//   - clock: the clock to sample
//
// Returns:
//   - TimerBuilderOption: a function that applies the clock option to a timer
func WithClock(clock Clock) TimerBuilderOption {
	return func(t *timer) {
		if clock != nil {
			t.now = clock
		}
	}
}
