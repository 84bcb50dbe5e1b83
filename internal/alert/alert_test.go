package alert

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/thatsimonsguy/gas-detector/internal/model"
)

// feed runs one reading per second starting at start and collects fired
// notifications.
func feed(m *Machine, start time.Time, readings []float64) []model.NotificationKind {
	var fired []model.NotificationKind
	now := start
	for _, r := range readings {
		if kind := m.Evaluate(r, now); kind != "" {
			fired = append(fired, kind)
		}
		now = now.Add(time.Second)
	}
	return fired
}

func repeat(v float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

func TestCorrectReadingClampsAtZero(t *testing.T) {
	assert.Equal(t, 0.0, CorrectReading(50, 80))
	assert.Equal(t, 20.0, CorrectReading(100, 80))
	assert.Equal(t, 50.0, CorrectReading(50, 0), "unset baseline leaves reading untouched")
	assert.Equal(t, 50.0, CorrectReading(50, model.BaselineUnset))
}

func TestReadingAtLimitIsNotBreaching(t *testing.T) {
	m := New(200, 1)
	start := time.Unix(0, 0)
	fired := feed(m, start, []float64{200, 200, 200, 200})
	assert.Empty(t, fired)
	assert.False(t, m.Alerting())
}

func TestBreachShorterThanDurationNeverAlerts(t *testing.T) {
	m := New(200, 10)
	start := time.Unix(0, 0)

	readings := append(repeat(250, 9), repeat(50, 5)...)
	fired := feed(m, start, readings)

	for _, kind := range fired {
		assert.NotEqual(t, model.NotifyAlert, kind)
	}
	assert.False(t, m.Alerting())
}

func TestSustainedBreachAlertsOnce(t *testing.T) {
	m := New(200, 10)
	start := time.Unix(0, 0)

	// Tick 0 starts the breach; tick 10 is the first with >= 10 s elapsed.
	fired := feed(m, start, repeat(250, 11))
	assert.Equal(t, []model.NotificationKind{model.NotifyAlert}, fired)
	assert.True(t, m.Alerting())
}

func TestNotificationRateLimit(t *testing.T) {
	m := New(200, 10)
	start := time.Unix(0, 0)

	fired := feed(m, start, repeat(250, 120))

	// First alert at t=10, then every 30 s: 10, 40, 70, 100.
	assert.Len(t, fired, 4)
	for _, kind := range fired {
		assert.Equal(t, model.NotifyAlert, kind)
	}
}

func TestSustainedClearFiresClearedOnce(t *testing.T) {
	m := New(200, 10)
	start := time.Unix(0, 0)

	readings := append(repeat(250, 11), repeat(50, 30)...)
	fired := feed(m, start, readings)

	assert.Equal(t, []model.NotificationKind{model.NotifyAlert, model.NotifyCleared}, fired)
	assert.False(t, m.Alerting())
}

func TestBlipResetsClearTimer(t *testing.T) {
	m := New(200, 10)
	start := time.Unix(0, 0)

	// Confirmed alert, then readings that dip but re-breach before the clear
	// debounce elapses: the alert must hold.
	readings := repeat(250, 11)
	readings = append(readings, repeat(50, 5)...)
	readings = append(readings, repeat(250, 5)...)
	fired := feed(m, start, readings)

	assert.True(t, m.Alerting())
	for _, kind := range fired {
		assert.NotEqual(t, model.NotifyCleared, kind)
	}
}

func TestNewEpisodeAfterClearNotifiesAgain(t *testing.T) {
	m := New(200, 10)
	start := time.Unix(0, 0)

	readings := repeat(250, 11)            // alert
	readings = append(readings, repeat(50, 11)...)  // cleared
	readings = append(readings, repeat(250, 11)...) // second episode
	fired := feed(m, start, readings)

	assert.Equal(t, []model.NotificationKind{
		model.NotifyAlert,
		model.NotifyCleared,
		model.NotifyAlert,
	}, fired)
}

func TestZeroDurationAlertsImmediately(t *testing.T) {
	m := New(200, 0)
	start := time.Unix(0, 0)

	fired := feed(m, start, []float64{250})
	assert.Equal(t, []model.NotificationKind{model.NotifyAlert}, fired)
	assert.True(t, m.Alerting())

	// Still rate-limited to one notification per 30 s.
	fired = feed(m, start.Add(time.Second), repeat(250, 30))
	assert.Len(t, fired, 1)
}

func TestThresholdUpdateMidEpisode(t *testing.T) {
	m := New(200, 5)
	start := time.Unix(0, 0)
	feed(m, start, repeat(250, 6))
	assert.True(t, m.Alerting())

	// Raising the limit above the reading starts the clear debounce.
	m.SetThreshold(300, 5)
	fired := feed(m, start.Add(6*time.Second), repeat(250, 6))
	assert.Equal(t, []model.NotificationKind{model.NotifyCleared}, fired)
	assert.False(t, m.Alerting())
}
