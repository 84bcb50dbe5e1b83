package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/thatsimonsguy/gas-detector/internal/api"
	"github.com/thatsimonsguy/gas-detector/internal/config"
	"github.com/thatsimonsguy/gas-detector/internal/datadog"
	"github.com/thatsimonsguy/gas-detector/internal/detector"
	"github.com/thatsimonsguy/gas-detector/internal/gpio"
	"github.com/thatsimonsguy/gas-detector/internal/logging"
	"github.com/thatsimonsguy/gas-detector/internal/mqtt"
	"github.com/thatsimonsguy/gas-detector/internal/netstatus"
	"github.com/thatsimonsguy/gas-detector/internal/notifications"
	"github.com/thatsimonsguy/gas-detector/internal/sensor"
	"github.com/thatsimonsguy/gas-detector/internal/store"
	"github.com/thatsimonsguy/gas-detector/system/shutdown"
	"github.com/thatsimonsguy/gas-detector/system/startup"
)

func main() {
	godotenv.Load()

	cfg := config.Load()
	logging.Init(cfg.LogLevel, cfg.LogFile)

	log.Info().
		Str("db_file", cfg.DBFile).
		Str("sensor", cfg.SensorPath).
		Msg("Starting gas detector")

	gpio.SetSafeMode(cfg.SafeMode)
	if cfg.SafeMode {
		log.Warn().Msg("SAFE MODE ENABLED — GPIO writes are disabled system-wide")
	}

	if cfg.BootScriptFilePath != "" {
		if err := startup.WriteBootScript(cfg); err != nil {
			log.Warn().Err(err).Msg("Failed to write boot pin script")
		}
		if cfg.OSServicePath != "" {
			if err := startup.InstallStartupService(cfg); err != nil {
				log.Warn().Err(err).Msg("Failed to install boot pin service")
			}
		}
	}

	board := gpio.NewBoard(
		*cfg.GPIO.RedLED,
		*cfg.GPIO.GreenLED,
		*cfg.GPIO.BlueLED,
		*cfg.GPIO.Buzzer,
		cfg.LEDActiveHigh,
	)
	startup.SelfTest(board)

	st, err := store.Open(cfg.DBFile)
	if err != nil {
		shutdown.ShutdownWithError(board, err, "Failed to open database")
	}
	defer st.Close()

	settings, err := st.LoadSettings()
	if err != nil {
		shutdown.ShutdownWithError(board, err, "Failed to load settings")
	}

	// Broker credentials come from the environment so they stay out of the
	// database and the web UI.
	if v := os.Getenv("MQTT_USER"); v != "" {
		settings.MQTTUser = v
	}
	if v := os.Getenv("MQTT_PASSWORD"); v != "" {
		settings.MQTTPassword = v
	}

	log.Info().
		Str("device", settings.DeviceName).
		Int("threshold_limit", settings.ThresholdLimit).
		Int("threshold_duration", settings.ThresholdDuration).
		Int("baseline", settings.Baseline).
		Msg("Loaded settings")

	datadog.InitMetrics(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	publisher := mqtt.NewPublisher(settings)
	if publisher.Enabled() {
		go publisher.Run(ctx)
	} else {
		log.Info().Msg("MQTT publishing disabled")
	}

	det := detector.New(settings, detector.Deps{
		Sensor:    sensor.NewADC(cfg.SensorPath),
		Store:     st,
		Notifier:  notifications.New(cfg.NtfyTopic, settings.DeviceName),
		Telemetry: publisher,
		Network:   netstatus.New(cfg.NetworkInterface),
		Hardware:  board,
	})

	go func() {
		if err := api.NewServer(st, det).Start(cfg.ListenPort); err != nil {
			log.Error().Err(err).Msg("API server stopped")
		}
	}()

	det.Run(ctx)
	shutdown.Shutdown(board)
}
