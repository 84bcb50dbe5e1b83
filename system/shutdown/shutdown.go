package shutdown

import (
	"os"

	"github.com/rs/zerolog/log"

	"github.com/thatsimonsguy/gas-detector/internal/gpio"
)

// Shutdown turns every indicator off and exits. The board handles safe mode
// itself, so this is unconditional.
func Shutdown(board *gpio.Board) {
	board.AllOff()
	log.Info().Msg("Indicators off, exiting")
	os.Exit(0)
}

func ShutdownWithError(board *gpio.Board, err error, msg string) {
	log.Error().Err(err).Msg(msg)
	board.AllOff()
	os.Exit(1)
}
