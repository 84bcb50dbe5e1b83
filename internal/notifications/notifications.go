package notifications

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/thatsimonsguy/gas-detector/internal/model"
)

// Sender delivers push notifications for alert episodes. Delivery is
// fire-and-forget: failures are logged and the episode state machine never
// retries inside a tick.
type Sender struct {
	client      *http.Client
	topic       string
	deviceName  string
	initialized bool
}

func New(topic, deviceName string) *Sender {
	if topic == "" {
		log.Warn().Msg("Ntfy topic not configured - notifications disabled")
		return &Sender{}
	}

	log.Info().Str("topic", topic).Msg("Ntfy notifications initialized")

	return &Sender{
		client:      &http.Client{Timeout: 10 * time.Second},
		topic:       topic,
		deviceName:  deviceName,
		initialized: true,
	}
}

// Notify sends one alert or cleared notification to ntfy.sh.
func (s *Sender) Notify(kind model.NotificationKind, value float64) error {
	if !s.initialized {
		return fmt.Errorf("notifications not initialized")
	}

	var title, message string
	switch kind {
	case model.NotifyAlert:
		title = "Gas Alert"
		message = fmt.Sprintf("[%s] Gas level %0.f ppm exceeds threshold", s.deviceName, value)
	case model.NotifyCleared:
		title = "Gas Cleared"
		message = fmt.Sprintf("[%s] Gas level back to normal (%0.f ppm)", s.deviceName, value)
	default:
		return fmt.Errorf("unknown notification kind: %s", kind)
	}

	url := fmt.Sprintf("https://ntfy.sh/%s", s.topic)

	payload := map[string]interface{}{
		"topic":   s.topic,
		"title":   title,
		"message": message,
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}

	req, err := http.NewRequest("POST", url, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("ntfy returned non-success status: %d", resp.StatusCode)
	}

	log.Debug().
		Str("title", title).
		Int("status", resp.StatusCode).
		Msg("Notification sent successfully")

	return nil
}
