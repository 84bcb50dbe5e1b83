package presentation

import (
	"time"

	"github.com/rs/zerolog/log"

	"github.com/thatsimonsguy/gas-detector/internal/model"
)

const (
	flashOn       = 100 * time.Millisecond
	cycleInterval = 5 * time.Second
	alertInterval = time.Second
	chirpInterval = 60 * time.Second
	chirpDuration = 100 * time.Millisecond

	// Calibration pattern: R -> G -> B, 500 ms per color, 300 ms lit.
	calColorInterval = 500 * time.Millisecond
	calOnDuration    = 300 * time.Millisecond
)

// Hardware is the LED/buzzer write surface. Writes are fire-and-forget.
type Hardware interface {
	SetColor(r, g, b bool)
	SetBuzzer(on bool)
}

// Status is the per-tick input sampled by the controller.
type Status struct {
	NetworkUp   bool
	BrokerUp    bool
	Alerting    bool
	Calibrating bool
}

// Controller maps connectivity and alert status to LED color, blink pattern,
// and buzzer cadence. All timing is elapsed-time comparison against stored
// timestamps; the controller never sleeps.
type Controller struct {
	hw Hardware

	mode      model.LEDMode
	savedMode model.LEDMode

	phaseOn    bool
	lastToggle time.Time

	buzzerOn  bool
	lastChirp time.Time

	calibrating bool
	calStart    time.Time
}

func New(hw Hardware) *Controller {
	return &Controller{
		hw:      hw,
		mode:    model.ModeStartup,
		phaseOn: true,
	}
}

func (c *Controller) Mode() model.LEDMode {
	return c.mode
}

// Update runs once per tick, after the same tick's threshold evaluation.
func (c *Controller) Update(now time.Time, st Status) {
	if c.lastToggle.IsZero() {
		c.lastToggle = now
	}

	if st.Calibrating {
		if !c.calibrating {
			c.calibrating = true
			c.calStart = now
			c.setBuzzer(false)
		}
		c.renderCalibration(now)
		return
	}
	if c.calibrating {
		c.calibrating = false
		c.phaseOn = true
		c.lastToggle = now
	}

	c.transition(now, c.selectMode(st))
	c.render(now)
}

func (c *Controller) selectMode(st Status) model.LEDMode {
	switch {
	case st.Alerting:
		return model.ModeAlert
	case !st.NetworkUp:
		return model.ModeWifiDisconnected
	case st.BrokerUp:
		return model.ModeMqttActive
	default:
		return model.ModeWifiOnly
	}
}

func (c *Controller) transition(now time.Time, target model.LEDMode) {
	if target == c.mode {
		return
	}

	if target == model.ModeAlert {
		c.savedMode = c.mode
	} else if c.mode == model.ModeAlert && c.savedMode != "" {
		// Restore the pre-alert state; the next tick's selection corrects it
		// if connectivity moved meanwhile.
		target = c.selectRestore(target)
	}

	log.Debug().
		Str("from", string(c.mode)).
		Str("to", string(target)).
		Msg("LED mode change")

	c.mode = target
	c.phaseOn = true
	c.lastToggle = now
	if target == model.ModeWifiDisconnected {
		c.lastChirp = now
	}
}

func (c *Controller) selectRestore(computed model.LEDMode) model.LEDMode {
	saved := c.savedMode
	c.savedMode = ""
	if saved == model.ModeAlert {
		return computed
	}
	return saved
}

func (c *Controller) render(now time.Time) {
	switch c.mode {
	case model.ModeStartup:
		c.toggle(now, cycleInterval, cycleInterval)
		c.hw.SetColor(c.phaseOn, c.phaseOn, c.phaseOn)
		c.setBuzzer(false)
	case model.ModeWifiOnly:
		c.toggle(now, flashOn, cycleInterval-flashOn)
		c.hw.SetColor(false, c.phaseOn, false)
		c.setBuzzer(false)
	case model.ModeMqttActive:
		c.toggle(now, flashOn, cycleInterval-flashOn)
		c.hw.SetColor(false, false, c.phaseOn)
		c.setBuzzer(false)
	case model.ModeWifiDisconnected:
		c.hw.SetColor(true, false, false)
		c.chirp(now)
	case model.ModeAlert:
		c.toggle(now, alertInterval, alertInterval)
		c.hw.SetColor(c.phaseOn, false, false)
		c.setBuzzer(c.phaseOn)
	}
}

// toggle flips the blink phase once the current phase's interval elapses.
func (c *Controller) toggle(now time.Time, onFor, offFor time.Duration) {
	if c.phaseOn && now.Sub(c.lastToggle) >= onFor {
		c.phaseOn = false
		c.lastToggle = now
	} else if !c.phaseOn && now.Sub(c.lastToggle) >= offFor {
		c.phaseOn = true
		c.lastToggle = now
	}
}

// chirp emits a single 100 ms buzzer pulse once per minute.
func (c *Controller) chirp(now time.Time) {
	if c.buzzerOn {
		if now.Sub(c.lastChirp) >= chirpDuration {
			c.setBuzzer(false)
		}
		return
	}
	if now.Sub(c.lastChirp) >= chirpInterval {
		c.lastChirp = now
		c.setBuzzer(true)
	}
}

func (c *Controller) renderCalibration(now time.Time) {
	elapsed := now.Sub(c.calStart)
	slot := int(elapsed/calColorInterval) % 3
	lit := elapsed%calColorInterval < calOnDuration

	c.hw.SetColor(slot == 0 && lit, slot == 1 && lit, slot == 2 && lit)
}

func (c *Controller) setBuzzer(on bool) {
	if on == c.buzzerOn {
		return
	}
	c.buzzerOn = on
	c.hw.SetBuzzer(on)
}
