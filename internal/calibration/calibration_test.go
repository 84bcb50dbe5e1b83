package calibration

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/thatsimonsguy/gas-detector/internal/filter"
	"github.com/thatsimonsguy/gas-detector/internal/model"
)

type fakeStore struct {
	saved []int
	err   error
}

func (f *fakeStore) SaveBaseline(offset int) error {
	f.saved = append(f.saved, offset)
	return f.err
}

func TestEligibility(t *testing.T) {
	c := New(filter.NewWindow(), &fakeStore{})
	boot := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	assert.False(t, c.Eligible(boot.Add(30*time.Second), boot, model.BaselineUnset), "warm-up not elapsed")
	assert.True(t, c.Eligible(boot.Add(60*time.Second), boot, model.BaselineUnset))
	assert.False(t, c.Eligible(boot.Add(90*time.Second), boot, 120), "baseline already set")

	c.Start(boot.Add(60 * time.Second))
	assert.False(t, c.Eligible(boot.Add(61*time.Second), boot, model.BaselineUnset), "already collecting")
}

func TestCollectionEndsByTimeoutOnly(t *testing.T) {
	store := &fakeStore{}
	c := New(filter.NewWindow(), store)
	start := time.Date(2025, 6, 1, 12, 1, 0, 0, time.UTC)
	c.Start(start)

	// One tick per second for exactly the collection duration: never done.
	now := start
	for i := 0; i < 300; i++ {
		now = now.Add(time.Second)
		_, done := c.Collect(300, now)
		assert.False(t, done, "tick %d should still be collecting", i)
	}

	// First tick past the duration finishes regardless of count.
	now = now.Add(time.Second)
	baseline, done := c.Collect(300, now)
	assert.True(t, done)
	assert.Equal(t, 300, baseline)
	assert.Equal(t, []int{300}, store.saved)
	assert.False(t, c.Collecting())
}

func TestBaselineIsMeanOfCollectedMedians(t *testing.T) {
	store := &fakeStore{}
	w := filter.NewWindow()
	c := New(w, store)
	start := time.Unix(1000, 0)
	c.Start(start)

	// Fill past the zero-padding so the median tracks the input level.
	now := start
	for i := 0; i < 100; i++ {
		now = now.Add(time.Second)
		c.Collect(100, now)
	}
	for i := 0; i < 100; i++ {
		now = now.Add(time.Second)
		c.Collect(120, now)
	}

	baseline, done := c.Collect(120, start.Add(CollectDuration+time.Second))
	assert.True(t, done)
	// Recorded medians sit between 100 and 120; the mean must too.
	assert.GreaterOrEqual(t, baseline, 100)
	assert.LessOrEqual(t, baseline, 120)
	assert.Equal(t, []int{baseline}, store.saved)
}

func TestZeroPaddedMediansAreSkipped(t *testing.T) {
	c := New(filter.NewWindow(), &fakeStore{})
	start := time.Unix(0, 0)
	c.Start(start)

	// Fewer than 8 of 15 slots filled keeps the median at zero, so nothing
	// is recorded.
	now := start
	for i := 0; i < 7; i++ {
		now = now.Add(time.Second)
		c.Collect(500, now)
	}
	assert.Equal(t, 0, c.Collected())

	now = now.Add(time.Second)
	c.Collect(500, now)
	assert.Equal(t, 1, c.Collected())
}

func TestEmptySessionYieldsSentinel(t *testing.T) {
	store := &fakeStore{}
	c := New(filter.NewWindow(), store)
	start := time.Unix(0, 0)
	c.Start(start)

	// All-zero samples never produce a positive median.
	baseline, done := c.Collect(0, start.Add(CollectDuration+time.Millisecond))
	assert.True(t, done)
	assert.Equal(t, model.BaselineUnset, baseline)
	assert.Equal(t, []int{model.BaselineUnset}, store.saved)
}

func TestSessionCapsAtMaxReadings(t *testing.T) {
	c := New(filter.NewWindow(), &fakeStore{})
	start := time.Unix(0, 0)
	c.Start(start)

	now := start
	for i := 0; i < MaxReadings+40; i++ {
		now = now.Add(time.Millisecond) // stay inside the window
		c.Collect(250, now)
	}
	assert.Equal(t, MaxReadings, c.Collected())
}

func TestWindowClearedAfterCompletion(t *testing.T) {
	w := filter.NewWindow()
	c := New(w, &fakeStore{})
	start := time.Unix(0, 0)
	c.Start(start)

	now := start
	for i := 0; i < 30; i++ {
		now = now.Add(time.Second)
		c.Collect(400, now)
	}
	_, done := c.Collect(400, start.Add(CollectDuration+time.Second))
	assert.True(t, done)
	assert.Equal(t, 0.0, w.Median())
}
