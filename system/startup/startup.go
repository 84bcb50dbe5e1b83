package startup

import (
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/thatsimonsguy/gas-detector/internal/config"
	"github.com/thatsimonsguy/gas-detector/internal/gpio"
)

// SelfTest cycles the LED through red, green and blue and chirps the buzzer
// once. This is the only place the firmware deliberately sleeps; it runs
// before the tick loop starts so a watcher can confirm the indicators work.
func SelfTest(board *gpio.Board) {
	log.Info().Msg("Running indicator self-test")

	colors := []struct{ r, g, b bool }{
		{true, false, false},
		{false, true, false},
		{false, false, true},
	}
	for _, c := range colors {
		board.SetColor(c.r, c.g, c.b)
		time.Sleep(300 * time.Millisecond)
	}
	board.AllOff()

	board.SetBuzzer(true)
	time.Sleep(100 * time.Millisecond)
	board.SetBuzzer(false)
}

// WriteBootScript generates the shell script that drives every indicator pin
// to its inactive level at boot, before this process starts.
func WriteBootScript(cfg *config.Config) error {
	var lines []string
	lines = append(lines, "#!/bin/bash", "", "# Gas detector GPIO pin configuration at boot", "")

	drive := "dl"
	if !cfg.LEDActiveHigh {
		drive = "dh"
	}

	pins := []struct {
		label string
		pin   int
	}{
		{"red_led", *cfg.GPIO.RedLED},
		{"green_led", *cfg.GPIO.GreenLED},
		{"blue_led", *cfg.GPIO.BlueLED},
		{"buzzer", *cfg.GPIO.Buzzer},
	}
	for _, p := range pins {
		lines = append(lines, fmt.Sprintf("# %s", p.label))
		lines = append(lines, fmt.Sprintf("pinctrl set %d op pn %s", p.pin, drive))
		lines = append(lines, "")
	}

	contents := strings.Join(lines, "\n") + "\n"
	return os.WriteFile(cfg.BootScriptFilePath, []byte(contents), 0755)
}

func InstallStartupService(cfg *config.Config) error {
	unitContents := fmt.Sprintf(`[Unit]
Description=Configure gas detector GPIO pins at boot
After=network.target

[Service]
Type=oneshot
Environment=PATH=/usr/local/bin:/usr/bin:/bin
ExecStart=%s
RemainAfterExit=true

[Install]
WantedBy=multi-user.target
`, cfg.BootScriptFilePath)

	return os.WriteFile(cfg.OSServicePath, []byte(unitContents), 0644)
}

func RunBootScript(cfg *config.Config) error {
	cmd := exec.Command("/bin/bash", cfg.BootScriptFilePath)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}
