package model

import "time"

// BaselineUnset is the sentinel persisted when no calibration has completed.
const BaselineUnset = -1

type NotificationKind string

const (
	NotifyAlert   NotificationKind = "alert"
	NotifyCleared NotificationKind = "cleared"
)

type LEDMode string

const (
	ModeStartup          LEDMode = "startup"
	ModeWifiOnly         LEDMode = "wifi_only"
	ModeMqttActive       LEDMode = "mqtt_active"
	ModeWifiDisconnected LEDMode = "wifi_disconnected"
	ModeAlert            LEDMode = "alert"
)

// Settings is the runtime-mutable device configuration, persisted in sqlite
// and editable through the web UI.
type Settings struct {
	DeviceName        string `json:"device_name"`
	MQTTServer        string `json:"mqtt_server"`
	MQTTPort          int    `json:"mqtt_port"`
	MQTTUser          string `json:"mqtt_user"`
	MQTTPassword      string `json:"mqtt_password"`
	MQTTEnabled       bool   `json:"mqtt_enabled"`
	ThresholdLimit    int    `json:"threshold_limit"`    // ppm
	ThresholdDuration int    `json:"threshold_duration"` // seconds a breach must persist
	PublishWarmup     int    `json:"publish_warmup"`     // seconds after boot before publishing
	Baseline          int    `json:"baseline"`           // calibrated offset, BaselineUnset if none
}

// Event is one row of the persisted episode history.
type Event struct {
	ID        int64     `json:"id"`
	Kind      string    `json:"kind"`
	Value     float64   `json:"value"`
	CreatedAt time.Time `json:"created_at"`
}

const (
	EventAlert               = "alert"
	EventCleared             = "cleared"
	EventCalibrationComplete = "calibration_complete"
)

type GPIOPin struct {
	Number     int
	ActiveHigh bool
}
