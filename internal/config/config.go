package config

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/rs/zerolog"
)

type GPIO struct {
	RedLED   *int `json:"red_led"`
	GreenLED *int `json:"green_led"`
	BlueLED  *int `json:"blue_led"`
	Buzzer   *int `json:"buzzer"`
}

type Config struct {
	DBFile     string
	ConfigFile string
	LogLevel   zerolog.Level
	SafeMode   bool

	LogFile          string `json:"log_file"`
	SensorPath       string `json:"sensor_path"`
	NetworkInterface string `json:"network_interface"`
	ListenPort       int    `json:"listen_port"`

	LEDActiveHigh bool `json:"led_active_high"`

	NtfyTopic string `json:"ntfy_topic"`

	DDAgentAddr   string   `json:"dd_agent_addr"`
	DDNamespace   string   `json:"dd_namespace"`
	DDTags        []string `json:"dd_tags"`
	EnableDatadog bool     `json:"enable_datadog"`

	BootScriptFilePath string `json:"boot_script_file_path"`
	OSServicePath      string `json:"os_service_path"`

	GPIO GPIO `json:"gpio"`
}

func Load() *Config {
	var cfg Config
	var logLevel string

	flag.StringVar(&cfg.DBFile, "db-file", "data/gas-detector.db", "Path to sqlite database file")
	flag.StringVar(&cfg.ConfigFile, "config-file", "config.json", "Path to detector config file")
	flag.StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	flag.BoolVar(&cfg.SafeMode, "safe-mode", false, "Disable all GPIO writes")
	flag.Parse()

	cfg.LogLevel = parseLogLevel(logLevel)

	file, err := os.Open(cfg.ConfigFile)
	if err != nil {
		panic("Failed to load config file: " + err.Error())
	}
	defer file.Close()

	if err := json.NewDecoder(file).Decode(&cfg); err != nil {
		panic("Failed to parse config file: " + err.Error())
	}

	if cfg.SensorPath == "" {
		cfg.SensorPath = "/sys/bus/iio/devices/iio:device0/in_voltage0_raw"
	}
	if cfg.NetworkInterface == "" {
		cfg.NetworkInterface = "wlan0"
	}
	if cfg.ListenPort == 0 {
		cfg.ListenPort = 8080
	}

	cfg.validate()
	return &cfg
}

func parseLogLevel(level string) zerolog.Level {
	switch level {
	case "debug":
		return zerolog.DebugLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

func (cfg *Config) validate() {
	var (
		missingFields []string
		usedPins      = map[int]string{}
		conflicts     []string
	)

	v := reflect.ValueOf(cfg.GPIO)
	t := reflect.TypeOf(cfg.GPIO)

	for i := 0; i < v.NumField(); i++ {
		field := v.Field(i)
		fieldName := t.Field(i).Tag.Get("json")

		if field.IsNil() {
			missingFields = append(missingFields, "gpio."+fieldName)
			continue
		}

		pin := int(field.Elem().Int())
		if other, exists := usedPins[pin]; exists {
			conflicts = append(conflicts, fmt.Sprintf("gpio.%s and gpio.%s both use pin %d", fieldName, other, pin))
		} else {
			usedPins[pin] = fieldName
		}
	}

	if len(missingFields) > 0 {
		panic("Missing required GPIO config fields: " + strings.Join(missingFields, ", "))
	}
	if len(conflicts) > 0 {
		panic("Conflicting GPIO pins: " + strings.Join(conflicts, ", "))
	}
}
