package detector

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/thatsimonsguy/gas-detector/internal/alert"
	"github.com/thatsimonsguy/gas-detector/internal/calibration"
	"github.com/thatsimonsguy/gas-detector/internal/datadog"
	"github.com/thatsimonsguy/gas-detector/internal/filter"
	"github.com/thatsimonsguy/gas-detector/internal/model"
	"github.com/thatsimonsguy/gas-detector/internal/presentation"
	"github.com/thatsimonsguy/gas-detector/internal/sensor"
)

const publishInterval = time.Second

type Notifier interface {
	Notify(kind model.NotificationKind, value float64) error
}

type Telemetry interface {
	Publish(ctx context.Context, value float64) error
	Connected() bool
}

type NetworkChecker interface {
	Up() bool
}

type Store interface {
	SaveBaseline(offset int) error
	RecordEvent(kind string, value float64) error
}

// Deps are the external collaborators the tick driver fans out to.
type Deps struct {
	Sensor    sensor.Reader
	Store     Store
	Notifier  Notifier
	Telemetry Telemetry
	Network   NetworkChecker
	Hardware  presentation.Hardware
	Now       func() time.Time
}

// Snapshot is the cross-goroutine view of the pipeline for the web UI.
type Snapshot struct {
	Reading     float64       `json:"reading"`
	Median      float64       `json:"median"`
	Baseline    int           `json:"baseline"`
	Alerting    bool          `json:"alerting"`
	Calibrating bool          `json:"calibrating"`
	Collected   int           `json:"calibration_readings"`
	LEDMode     model.LEDMode `json:"led_mode"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// Detector owns all pipeline state and runs it on a single 1 Hz tick.
// Within one tick the order is fixed: sample, filter, calibration or
// threshold evaluation, presentation. Nothing here blocks beyond the
// collaborator calls themselves.
type Detector struct {
	settings model.Settings

	sensor    sensor.Reader
	store     Store
	notifier  Notifier
	telemetry Telemetry
	network   NetworkChecker

	window *filter.Window
	calib  *calibration.Controller
	alerts *alert.Machine
	pres   *presentation.Controller

	now         func() time.Time
	bootedAt    time.Time
	lastPublish time.Time

	recalRequested atomic.Bool

	mu      sync.RWMutex
	pending *model.Settings
	snap    Snapshot
}

func New(settings model.Settings, deps Deps) *Detector {
	now := deps.Now
	if now == nil {
		now = time.Now
	}

	window := filter.NewWindow()

	return &Detector{
		settings:  settings,
		sensor:    deps.Sensor,
		store:     deps.Store,
		notifier:  deps.Notifier,
		telemetry: deps.Telemetry,
		network:   deps.Network,
		window:    window,
		calib:     calibration.New(window, deps.Store),
		alerts:    alert.New(settings.ThresholdLimit, settings.ThresholdDuration),
		pres:      presentation.New(deps.Hardware),
		now:       now,
		bootedAt:  now(),
	}
}

// Run drives the tick loop until ctx is cancelled.
func (d *Detector) Run(ctx context.Context) {
	log.Info().
		Int("threshold_limit", d.settings.ThresholdLimit).
		Int("threshold_duration", d.settings.ThresholdDuration).
		Int("baseline", d.settings.Baseline).
		Msg("Starting detector loop")

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("Detector loop stopped")
			return
		case <-ticker.C:
			d.tick(d.now())
		}
	}
}

// RequestRecalibration queues a baseline reset, picked up at the top of the
// next tick.
func (d *Detector) RequestRecalibration() {
	d.recalRequested.Store(true)
}

// ApplySettings queues updated settings. Threshold changes take effect on
// the next tick; MQTT transport changes need a restart.
func (d *Detector) ApplySettings(st model.Settings) {
	d.mu.Lock()
	d.pending = &st
	d.mu.Unlock()
}

func (d *Detector) Status() Snapshot {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.snap
}

func (d *Detector) tick(now time.Time) {
	d.applyPending()

	if d.recalRequested.Swap(false) {
		log.Info().Msg("Recalibration requested - resetting baseline")
		d.settings.Baseline = model.BaselineUnset
		if err := d.store.SaveBaseline(model.BaselineUnset); err != nil {
			log.Error().Err(err).Msg("Failed to reset persisted baseline")
		}
		d.window.Reset()
	}

	raw, err := d.sensor.Read()
	if err == nil {
		d.process(raw, now)
	}

	d.pres.Update(now, presentation.Status{
		NetworkUp:   d.network.Up(),
		BrokerUp:    d.telemetry.Connected(),
		Alerting:    d.alerts.Alerting(),
		Calibrating: d.calib.Collecting(),
	})

	d.updateSnapshot(raw, now)
}

func (d *Detector) process(raw float64, now time.Time) {
	switch {
	case d.calib.Collecting():
		d.collect(raw, now)
	case d.calib.Eligible(now, d.bootedAt, d.settings.Baseline):
		d.calib.Start(now)
		d.collect(raw, now)
	case now.Sub(d.bootedAt) >= calibration.WarmupDelay:
		d.evaluate(raw, now)
	}
}

func (d *Detector) collect(raw float64, now time.Time) {
	baseline, done := d.calib.Collect(raw, now)
	if !done {
		return
	}

	d.settings.Baseline = baseline
	datadog.Gauge("calibration.baseline", float64(baseline))
	if err := d.store.RecordEvent(model.EventCalibrationComplete, float64(baseline)); err != nil {
		log.Error().Err(err).Msg("Failed to record calibration event")
	}
}

func (d *Detector) evaluate(raw float64, now time.Time) {
	corrected := alert.CorrectReading(raw, d.settings.Baseline)
	d.window.Push(corrected)

	if kind := d.alerts.Evaluate(corrected, now); kind != "" {
		d.dispatch(kind, corrected)
	}

	med := d.window.Median()
	datadog.Gauge("gas.median", med, "component:sensor")
	d.publishMedian(med, now)
}

func (d *Detector) dispatch(kind model.NotificationKind, value float64) {
	if err := d.notifier.Notify(kind, value); err != nil {
		log.Error().Err(err).Str("kind", string(kind)).Msg("Failed to send notification")
	}

	eventKind := model.EventAlert
	if kind == model.NotifyCleared {
		eventKind = model.EventCleared
	}
	if err := d.store.RecordEvent(eventKind, value); err != nil {
		log.Error().Err(err).Msg("Failed to record alert event")
	}
}

func (d *Detector) publishMedian(med float64, now time.Time) {
	warmup := time.Duration(d.settings.PublishWarmup) * time.Second
	if now.Sub(d.bootedAt) <= warmup {
		return
	}
	if !d.lastPublish.IsZero() && now.Sub(d.lastPublish) < publishInterval {
		return
	}
	d.lastPublish = now

	ctx, cancel := context.WithTimeout(context.Background(), publishInterval)
	defer cancel()
	if err := d.telemetry.Publish(ctx, med); err != nil {
		log.Debug().Err(err).Msg("Median publish failed")
	}
}

func (d *Detector) applyPending() {
	d.mu.Lock()
	pending := d.pending
	d.pending = nil
	d.mu.Unlock()

	if pending == nil {
		return
	}

	// The calibrated baseline is owned by the pipeline, not the UI.
	pending.Baseline = d.settings.Baseline
	d.settings = *pending
	d.alerts.SetThreshold(pending.ThresholdLimit, pending.ThresholdDuration)

	log.Info().
		Int("threshold_limit", pending.ThresholdLimit).
		Int("threshold_duration", pending.ThresholdDuration).
		Msg("Settings updated")
}

func (d *Detector) updateSnapshot(raw float64, now time.Time) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.snap = Snapshot{
		Reading:     raw,
		Median:      d.window.Median(),
		Baseline:    d.settings.Baseline,
		Alerting:    d.alerts.Alerting(),
		Calibrating: d.calib.Collecting(),
		Collected:   d.calib.Collected(),
		LEDMode:     d.pres.Mode(),
		UpdatedAt:   now,
	}
}
