package sensor

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
)

// Reader supplies one raw gas reading per tick, in sensor ADC units.
type Reader interface {
	Read() (float64, error)
}

// ADC reads an analog gas sensor through a sysfs IIO channel file, e.g.
// /sys/bus/iio/devices/iio:device0/in_voltage0_raw. A failed read is a
// transient error; the caller skips the tick and the next tick retries.
type ADC struct {
	Path string
}

func NewADC(path string) *ADC {
	return &ADC{Path: path}
}

func (a *ADC) Read() (float64, error) {
	data, err := os.ReadFile(a.Path)
	if err != nil {
		log.Error().Err(err).Str("path", a.Path).Msg("failed to read gas sensor")
		return 0, err
	}

	raw, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		log.Error().Err(err).Str("path", a.Path).Msg("gas sensor data malformed")
		return 0, fmt.Errorf("malformed sensor reading: %w", err)
	}

	return float64(raw), nil
}
