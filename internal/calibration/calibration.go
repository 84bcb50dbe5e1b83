package calibration

import (
	"math"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/thatsimonsguy/gas-detector/internal/filter"
	"github.com/thatsimonsguy/gas-detector/internal/model"
)

const (
	// WarmupDelay is how long after boot the sensor heater needs before a
	// calibration pass is meaningful.
	WarmupDelay = 60 * time.Second

	// CollectDuration bounds a collection pass. The pass always ends by
	// timeout regardless of how many readings were gathered.
	CollectDuration = 5 * time.Minute

	// MaxReadings caps the session at one median per second for the full pass.
	MaxReadings = 300
)

type BaselineStore interface {
	SaveBaseline(offset int) error
}

// Controller runs the once-per-boot baseline calibration pass. While a pass
// is active the threshold machine is bypassed and raw samples feed the
// shared window here instead.
type Controller struct {
	window *filter.Window
	store  BaselineStore

	collecting bool
	startedAt  time.Time
	readings   []float64
}

func New(window *filter.Window, store BaselineStore) *Controller {
	return &Controller{window: window, store: store}
}

// Eligible reports whether a collection pass should begin: warm-up elapsed,
// no baseline on record, and not already collecting.
func (c *Controller) Eligible(now, bootedAt time.Time, baseline int) bool {
	if c.collecting {
		return false
	}
	if baseline != model.BaselineUnset {
		return false
	}
	return now.Sub(bootedAt) >= WarmupDelay
}

func (c *Controller) Start(now time.Time) {
	c.collecting = true
	c.startedAt = now
	c.readings = c.readings[:0]

	log.Info().Time("started_at", now).Msg("Starting baseline calibration")
}

func (c *Controller) Collecting() bool {
	return c.collecting
}

// Collected returns how many medians the active session has gathered.
func (c *Controller) Collected() int {
	return len(c.readings)
}

// Collect consumes one raw sample for the active session. Medians are only
// recorded while strictly positive, so the zero-padded window usually skips
// the first several ticks of a pass. When the pass times out, the baseline
// is the mean of whatever was recorded (sentinel if nothing was), persisted
// and returned with done=true.
func (c *Controller) Collect(raw float64, now time.Time) (baseline int, done bool) {
	if !c.collecting {
		return 0, false
	}

	c.window.Push(raw)
	med := c.window.Median()
	if med > 0 && len(c.readings) < MaxReadings {
		c.readings = append(c.readings, med)
	}

	if now.Sub(c.startedAt) <= CollectDuration {
		return 0, false
	}

	baseline = model.BaselineUnset
	if len(c.readings) > 0 {
		var sum float64
		for _, r := range c.readings {
			sum += r
		}
		baseline = int(math.Round(sum / float64(len(c.readings))))
	}

	if err := c.store.SaveBaseline(baseline); err != nil {
		log.Error().Err(err).Int("baseline", baseline).Msg("Failed to persist calibration baseline")
	}

	log.Info().
		Int("baseline", baseline).
		Int("readings", len(c.readings)).
		Dur("elapsed", now.Sub(c.startedAt)).
		Msg("Calibration complete")

	c.window.Reset()
	c.collecting = false
	c.readings = nil

	return baseline, true
}
