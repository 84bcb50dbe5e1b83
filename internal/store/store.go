package store

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog/log"

	"github.com/thatsimonsguy/gas-detector/internal/model"
)

const schema = `
CREATE TABLE IF NOT EXISTS settings (
	id INTEGER PRIMARY KEY CHECK (id = 1),
	device_name TEXT NOT NULL,
	mqtt_server TEXT NOT NULL DEFAULT '',
	mqtt_port INTEGER NOT NULL DEFAULT 1883,
	mqtt_user TEXT NOT NULL DEFAULT '',
	mqtt_password TEXT NOT NULL DEFAULT '',
	mqtt_enabled INTEGER NOT NULL DEFAULT 0,
	threshold_limit INTEGER NOT NULL DEFAULT 200,
	threshold_duration INTEGER NOT NULL DEFAULT 10,
	publish_warmup INTEGER NOT NULL DEFAULT 60,
	baseline INTEGER NOT NULL DEFAULT -1
);

CREATE TABLE IF NOT EXISTS events (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	kind TEXT NOT NULL,
	value REAL NOT NULL,
	created_at TIMESTAMP NOT NULL
);
`

// Store persists device settings, the calibrated baseline, and the alert
// episode history in a local sqlite database.
type Store struct {
	conn *sql.DB
}

func Open(path string) (*Store, error) {
	conn, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := conn.Exec(schema); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	name := defaultDeviceName()
	if _, err := conn.Exec(`INSERT OR IGNORE INTO settings (id, device_name) VALUES (1, ?)`, name); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to seed settings: %w", err)
	}

	return &Store{conn: conn}, nil
}

func (s *Store) Close() error {
	return s.conn.Close()
}

func defaultDeviceName() string {
	id := strings.Split(uuid.NewString(), "-")[0]
	return "gasdetector-" + id
}

func (s *Store) LoadSettings() (model.Settings, error) {
	var st model.Settings
	err := s.conn.QueryRow(`SELECT device_name, mqtt_server, mqtt_port, mqtt_user, mqtt_password, mqtt_enabled,
		threshold_limit, threshold_duration, publish_warmup, baseline FROM settings WHERE id = 1`).Scan(
		&st.DeviceName, &st.MQTTServer, &st.MQTTPort, &st.MQTTUser, &st.MQTTPassword, &st.MQTTEnabled,
		&st.ThresholdLimit, &st.ThresholdDuration, &st.PublishWarmup, &st.Baseline)
	if err != nil {
		return model.Settings{}, fmt.Errorf("failed to load settings: %w", err)
	}
	return st, nil
}

func (s *Store) SaveSettings(st model.Settings) error {
	_, err := s.conn.Exec(`UPDATE settings SET device_name = ?, mqtt_server = ?, mqtt_port = ?, mqtt_user = ?,
		mqtt_password = ?, mqtt_enabled = ?, threshold_limit = ?, threshold_duration = ?, publish_warmup = ?,
		baseline = ? WHERE id = 1`,
		st.DeviceName, st.MQTTServer, st.MQTTPort, st.MQTTUser, st.MQTTPassword, st.MQTTEnabled,
		st.ThresholdLimit, st.ThresholdDuration, st.PublishWarmup, st.Baseline)
	if err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	return nil
}

func (s *Store) LoadBaseline() (int, error) {
	var baseline int
	err := s.conn.QueryRow(`SELECT baseline FROM settings WHERE id = 1`).Scan(&baseline)
	if err != nil {
		return model.BaselineUnset, fmt.Errorf("failed to load baseline: %w", err)
	}
	return baseline, nil
}

func (s *Store) SaveBaseline(offset int) error {
	_, err := s.conn.Exec(`UPDATE settings SET baseline = ? WHERE id = 1`, offset)
	if err != nil {
		return fmt.Errorf("failed to save baseline: %w", err)
	}
	log.Debug().Int("baseline", offset).Msg("Baseline persisted")
	return nil
}

// RecordEvent appends one row to the episode history.
func (s *Store) RecordEvent(kind string, value float64) error {
	_, err := s.conn.Exec(`INSERT INTO events (kind, value, created_at) VALUES (?, ?, ?)`,
		kind, value, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to record event: %w", err)
	}
	return nil
}

// RecentEvents returns up to limit events, newest first.
func (s *Store) RecentEvents(limit int) ([]model.Event, error) {
	rows, err := s.conn.Query(`SELECT id, kind, value, created_at FROM events ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	var events []model.Event
	for rows.Next() {
		var e model.Event
		if err := rows.Scan(&e.ID, &e.Kind, &e.Value, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}
