package filter

import "sort"

// WindowSize is the number of samples held by the rolling window. The buffer
// starts zero-filled, so the median is skewed toward zero for the first
// WindowSize-1 pushes after boot or a reset. Downstream timing depends on
// that, so it is not corrected here.
const WindowSize = 15

// Window is a fixed-capacity FIFO of the most recent sensor samples.
type Window struct {
	samples []float64
}

func NewWindow() *Window {
	return &Window{samples: make([]float64, WindowSize)}
}

// Push appends one sample, evicting the oldest.
func (w *Window) Push(v float64) {
	copy(w.samples, w.samples[1:])
	w.samples[len(w.samples)-1] = v
}

// Median sorts a snapshot of the window and returns the middle element, or
// the mean of the two middle elements for even-length windows. The window
// itself is not modified.
func (w *Window) Median() float64 {
	return Median(w.samples)
}

// Reset returns the window to its zero-filled boot state.
func (w *Window) Reset() {
	for i := range w.samples {
		w.samples[i] = 0
	}
}

// Values returns a copy of the window contents, oldest first.
func (w *Window) Values() []float64 {
	out := make([]float64, len(w.samples))
	copy(out, w.samples)
	return out
}

// Median computes the textbook median of values without modifying them.
// Returns 0 for an empty slice.
func Median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}
