package store_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thatsimonsguy/gas-detector/internal/model"
	"github.com/thatsimonsguy/gas-detector/internal/store"
)

func openTestStore(t *testing.T) *store.Store {
	s, err := store.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpenSeedsDefaults(t *testing.T) {
	s := openTestStore(t)

	st, err := s.LoadSettings()
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(st.DeviceName, "gasdetector-"))
	assert.Equal(t, 1883, st.MQTTPort)
	assert.False(t, st.MQTTEnabled)
	assert.Equal(t, 200, st.ThresholdLimit)
	assert.Equal(t, 10, st.ThresholdDuration)
	assert.Equal(t, 60, st.PublishWarmup)
	assert.Equal(t, model.BaselineUnset, st.Baseline)
}

func TestSaveAndLoadSettings(t *testing.T) {
	s := openTestStore(t)

	st, err := s.LoadSettings()
	require.NoError(t, err)

	st.DeviceName = "kitchen-detector"
	st.MQTTServer = "broker.local"
	st.MQTTEnabled = true
	st.ThresholdLimit = 350
	require.NoError(t, s.SaveSettings(st))

	got, err := s.LoadSettings()
	require.NoError(t, err)
	assert.Equal(t, st, got)
}

func TestBaselineRoundTrip(t *testing.T) {
	s := openTestStore(t)

	baseline, err := s.LoadBaseline()
	require.NoError(t, err)
	assert.Equal(t, model.BaselineUnset, baseline)

	require.NoError(t, s.SaveBaseline(127))
	baseline, err = s.LoadBaseline()
	require.NoError(t, err)
	assert.Equal(t, 127, baseline)

	// Recalibration resets to the sentinel.
	require.NoError(t, s.SaveBaseline(model.BaselineUnset))
	baseline, err = s.LoadBaseline()
	require.NoError(t, err)
	assert.Equal(t, model.BaselineUnset, baseline)
}

func TestEventHistoryNewestFirst(t *testing.T) {
	s := openTestStore(t)

	require.NoError(t, s.RecordEvent(model.EventAlert, 410))
	require.NoError(t, s.RecordEvent(model.EventCleared, 35))
	require.NoError(t, s.RecordEvent(model.EventCalibrationComplete, 88))

	events, err := s.RecentEvents(10)
	require.NoError(t, err)
	require.Len(t, events, 3)
	assert.Equal(t, model.EventCalibrationComplete, events[0].Kind)
	assert.Equal(t, model.EventCleared, events[1].Kind)
	assert.Equal(t, model.EventAlert, events[2].Kind)
	assert.Equal(t, 410.0, events[2].Value)
	assert.False(t, events[0].CreatedAt.IsZero())
}

func TestRecentEventsRespectsLimit(t *testing.T) {
	s := openTestStore(t)

	for i := 0; i < 5; i++ {
		require.NoError(t, s.RecordEvent(model.EventAlert, float64(i)))
	}

	events, err := s.RecentEvents(2)
	require.NoError(t, err)
	assert.Len(t, events, 2)
	assert.Equal(t, 4.0, events[0].Value)
}
