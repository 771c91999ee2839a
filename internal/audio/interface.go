package audio

// SampleWindow is the fixed-length capture buffer of signed 16-bit samples.
// It is owned by the scheduler and overwritten in place on every capture; a
// failed capture leaves it unusable for the current cycle.
type SampleWindow []int16

// NewSampleWindow allocates a window of n samples.
func NewSampleWindow(n int) SampleWindow {
	return make(SampleWindow, n)
}

// Source delivers full sample windows from a capture peripheral. Capture
// blocks until the window is filled or the peripheral reports an error; on
// error the window contents are unspecified.
type Source interface {
	Capture(window SampleWindow) error
	Close() error
}
