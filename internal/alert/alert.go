package alert

import (
	"time"

	"github.com/rs/zerolog/log"

	"github.com/thatsimonsguy/gas-detector/internal/model"
)

// NotifyInterval is the minimum spacing between repeated alert
// notifications inside one breach episode.
const NotifyInterval = 30 * time.Second

// Machine tracks sustained-breach / sustained-clear debounce over the
// instantaneous corrected reading. A reading exactly at the limit counts as
// not breaching. Zero or negative duration degenerates to alerting (and
// renotifying, subject to the 30 s spacing) on any single breach tick.
type Machine struct {
	limit    int
	duration time.Duration

	breachStart      time.Time
	underStart       time.Time
	lastNotification time.Time
	alerting         bool
}

func New(limitPPM, durationSeconds int) *Machine {
	return &Machine{
		limit:    limitPPM,
		duration: time.Duration(durationSeconds) * time.Second,
	}
}

// SetThreshold applies an updated limit and duration without disturbing an
// episode in progress.
func (m *Machine) SetThreshold(limitPPM, durationSeconds int) {
	m.limit = limitPPM
	m.duration = time.Duration(durationSeconds) * time.Second
}

func (m *Machine) Alerting() bool {
	return m.alerting
}

// CorrectReading subtracts the calibrated baseline from a raw sample,
// clamped at zero. An unset baseline (<= 0) leaves the sample untouched.
func CorrectReading(raw float64, baseline int) float64 {
	if baseline <= 0 {
		return raw
	}
	corrected := raw - float64(baseline)
	if corrected < 0 {
		return 0
	}
	return corrected
}

// Evaluate consumes one corrected reading and returns the notification to
// fire this tick, if any.
func (m *Machine) Evaluate(reading float64, now time.Time) model.NotificationKind {
	if reading > float64(m.limit) {
		return m.evaluateBreach(reading, now)
	}
	return m.evaluateClear(reading, now)
}

func (m *Machine) evaluateBreach(reading float64, now time.Time) model.NotificationKind {
	m.underStart = time.Time{}

	if m.breachStart.IsZero() {
		m.breachStart = now
		log.Debug().Float64("reading", reading).Int("limit", m.limit).Msg("Threshold breach started")
	}

	if now.Sub(m.breachStart) < m.duration {
		return ""
	}

	m.alerting = true

	if m.lastNotification.IsZero() || now.Sub(m.lastNotification) >= NotifyInterval {
		m.lastNotification = now
		log.Warn().
			Float64("reading", reading).
			Int("limit", m.limit).
			Dur("breach_for", now.Sub(m.breachStart)).
			Msg("Gas level alert")
		return model.NotifyAlert
	}
	return ""
}

func (m *Machine) evaluateClear(reading float64, now time.Time) model.NotificationKind {
	if m.underStart.IsZero() {
		m.underStart = now
	}

	if now.Sub(m.underStart) < m.duration {
		return ""
	}

	if m.breachStart.IsZero() {
		return ""
	}

	// Sustained clear confirmed: end the episode.
	m.alerting = false
	m.breachStart = time.Time{}
	m.underStart = time.Time{}
	m.lastNotification = time.Time{}

	log.Info().Float64("reading", reading).Msg("Gas level cleared")
	return model.NotifyCleared
}
