package gpio

import (
	"github.com/rs/zerolog/log"

	"github.com/thatsimonsguy/gas-detector/internal/model"
	"github.com/thatsimonsguy/gas-detector/internal/pinctrl"
)

var safeMode bool

func SetSafeMode(enabled bool) {
	safeMode = enabled
}

// Activate drives a pin to its active level. A failed write is logged and
// dropped; indicator writes are fire-and-forget.
var Activate = func(pin model.GPIOPin) {
	if safeMode {
		return
	}

	drive := "dh"
	if !pin.ActiveHigh {
		drive = "dl"
	}
	if err := pinctrl.SetPin(pin.Number, "op", "pn", drive); err != nil {
		log.Error().Err(err).Int("pin", pin.Number).Msg("Failed to activate pin")
	}
}

var Deactivate = func(pin model.GPIOPin) {
	if safeMode {
		return
	}

	drive := "dl"
	if !pin.ActiveHigh {
		drive = "dh"
	}
	if err := pinctrl.SetPin(pin.Number, "op", "pn", drive); err != nil {
		log.Error().Err(err).Int("pin", pin.Number).Msg("Failed to deactivate pin")
	}
}

var CurrentlyActive = func(pin model.GPIOPin) bool {
	level, err := pinctrl.ReadLevel(pin.Number)
	if err != nil {
		log.Error().Err(err).Int("pin", pin.Number).Msg("Failed to read pin level")
		return false
	}
	return pin.ActiveHigh == level
}

// Board is the detector's indicator hardware: three LED channels and the
// buzzer.
type Board struct {
	Red    model.GPIOPin
	Green  model.GPIOPin
	Blue   model.GPIOPin
	Buzzer model.GPIOPin
}

func NewBoard(red, green, blue, buzzer int, activeHigh bool) *Board {
	return &Board{
		Red:    model.GPIOPin{Number: red, ActiveHigh: activeHigh},
		Green:  model.GPIOPin{Number: green, ActiveHigh: activeHigh},
		Blue:   model.GPIOPin{Number: blue, ActiveHigh: activeHigh},
		Buzzer: model.GPIOPin{Number: buzzer, ActiveHigh: activeHigh},
	}
}

func (b *Board) SetColor(r, g, bl bool) {
	write(b.Red, r)
	write(b.Green, g)
	write(b.Blue, bl)
}

func (b *Board) SetBuzzer(on bool) {
	write(b.Buzzer, on)
}

// AllOff returns every indicator pin to its inactive level.
func (b *Board) AllOff() {
	b.SetColor(false, false, false)
	b.SetBuzzer(false)
}

func write(pin model.GPIOPin, active bool) {
	if active {
		Activate(pin)
		return
	}
	Deactivate(pin)
}
