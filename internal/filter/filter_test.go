package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMedianOddLength(t *testing.T) {
	assert.Equal(t, 3.0, Median([]float64{5, 1, 3, 2, 4}))
	assert.Equal(t, 7.0, Median([]float64{7}))
}

func TestMedianEvenLength(t *testing.T) {
	assert.Equal(t, 2.5, Median([]float64{4, 1, 2, 3}))
	assert.Equal(t, 1.5, Median([]float64{2, 1}))
}

func TestMedianEmpty(t *testing.T) {
	assert.Equal(t, 0.0, Median(nil))
}

func TestMedianDoesNotMutateInput(t *testing.T) {
	in := []float64{9, 1, 5}
	Median(in)
	assert.Equal(t, []float64{9, 1, 5}, in)
}

func TestWindowStartsZeroFilled(t *testing.T) {
	w := NewWindow()
	assert.Len(t, w.Values(), WindowSize)
	assert.Equal(t, 0.0, w.Median())
}

func TestWindowFIFOEviction(t *testing.T) {
	w := NewWindow()
	for i := 1; i <= 20; i++ {
		w.Push(float64(i))
	}

	// After 20 pushes the window holds exactly the last 15, oldest first.
	expected := make([]float64, 0, WindowSize)
	for i := 6; i <= 20; i++ {
		expected = append(expected, float64(i))
	}
	assert.Equal(t, expected, w.Values())
	assert.Equal(t, 13.0, w.Median())
}

func TestWindowZeroPaddingSkewsEarlyMedian(t *testing.T) {
	w := NewWindow()
	for i := 0; i < 7; i++ {
		w.Push(200)
	}
	// 7 real samples against 8 zero pads: the median is still zero. This is
	// the accepted boot-time behavior.
	assert.Equal(t, 0.0, w.Median())

	w.Push(200)
	assert.Equal(t, 200.0, w.Median())
}

func TestWindowReset(t *testing.T) {
	w := NewWindow()
	for i := 0; i < WindowSize; i++ {
		w.Push(100)
	}
	assert.Equal(t, 100.0, w.Median())

	w.Reset()
	assert.Equal(t, 0.0, w.Median())
	for _, v := range w.Values() {
		assert.Equal(t, 0.0, v)
	}
}
