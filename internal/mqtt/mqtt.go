package mqtt

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/eclipse/paho.golang/paho"
	"github.com/rs/zerolog/log"

	"github.com/thatsimonsguy/gas-detector/internal/model"
)

// reconnectInterval matches the detector's historical 5 s broker retry
// cadence.
const reconnectInterval = 5 * time.Second

const keepAliveSeconds = 30

// Publisher maintains one broker connection and publishes the filtered gas
// reading to `<device>/state`. On every successful connect it re-announces
// the device with retained Home Assistant discovery payloads.
type Publisher struct {
	deviceName string
	server     string
	port       int
	username   string
	password   string
	enabled    bool

	mu        sync.Mutex
	client    *paho.Client
	connected atomic.Bool
}

func NewPublisher(st model.Settings) *Publisher {
	return &Publisher{
		deviceName: st.DeviceName,
		server:     st.MQTTServer,
		port:       st.MQTTPort,
		username:   st.MQTTUser,
		password:   st.MQTTPassword,
		enabled:    st.MQTTEnabled && st.MQTTServer != "",
	}
}

func (p *Publisher) Enabled() bool {
	return p.enabled
}

// Connected reports broker link state; polled once per tick by the
// presentation controller.
func (p *Publisher) Connected() bool {
	return p.connected.Load()
}

// Run keeps the broker connection alive until ctx is cancelled, retrying
// every reconnectInterval while down.
func (p *Publisher) Run(ctx context.Context) {
	if !p.enabled {
		return
	}

	log.Info().
		Str("server", p.server).
		Int("port", p.port).
		Str("client_id", p.deviceName).
		Msg("Starting MQTT publisher")

	ticker := time.NewTicker(reconnectInterval)
	defer ticker.Stop()

	for {
		if !p.connected.Load() {
			if err := p.connect(ctx); err != nil {
				log.Warn().Err(err).Msg("MQTT connection attempt failed")
			}
		}

		select {
		case <-ctx.Done():
			p.disconnect()
			return
		case <-ticker.C:
		}
	}
}

func (p *Publisher) connect(ctx context.Context) error {
	addr := net.JoinHostPort(p.server, strconv.Itoa(p.port))
	conn, err := net.DialTimeout("tcp", addr, reconnectInterval)
	if err != nil {
		return fmt.Errorf("failed to dial broker: %w", err)
	}

	client := paho.NewClient(paho.ClientConfig{
		Conn:     conn,
		ClientID: p.deviceName,
		OnClientError: func(err error) {
			log.Warn().Err(err).Msg("MQTT client error")
			p.connected.Store(false)
		},
		OnServerDisconnect: func(d *paho.Disconnect) {
			log.Warn().Uint8("reason", d.ReasonCode).Msg("MQTT server disconnect")
			p.connected.Store(false)
		},
	})

	connect := &paho.Connect{
		ClientID:   p.deviceName,
		CleanStart: true,
		KeepAlive:  keepAliveSeconds,
	}
	if p.username != "" {
		connect.Username = p.username
		connect.UsernameFlag = true
		connect.Password = []byte(p.password)
		connect.PasswordFlag = true
	}

	ca, err := client.Connect(ctx, connect)
	if err != nil {
		conn.Close()
		return fmt.Errorf("failed to connect to broker: %w", err)
	}
	if ca.ReasonCode != 0 {
		conn.Close()
		return fmt.Errorf("broker refused connection: reason %d", ca.ReasonCode)
	}

	p.mu.Lock()
	p.client = client
	p.mu.Unlock()
	p.connected.Store(true)

	log.Info().Str("server", p.server).Msg("Connected to MQTT broker")

	if err := p.announceDiscovery(ctx); err != nil {
		log.Warn().Err(err).Msg("Failed to publish discovery config")
	}
	return nil
}

func (p *Publisher) disconnect() {
	p.mu.Lock()
	client := p.client
	p.client = nil
	p.mu.Unlock()

	if client != nil {
		_ = client.Disconnect(&paho.Disconnect{ReasonCode: 0})
	}
	p.connected.Store(false)
}

// announceDiscovery publishes the retained Home Assistant sensor configs so
// the broker side can auto-create the entity.
func (p *Publisher) announceDiscovery(ctx context.Context) error {
	sensorConfig := map[string]string{
		"name":                p.deviceName + " Gas Sensor",
		"device_class":        "gas",
		"state_topic":         p.deviceName + "/state",
		"unit_of_measurement": "ppm",
		"unique_id":           p.deviceName + "_gas",
	}
	payload, err := json.Marshal(sensorConfig)
	if err != nil {
		return err
	}

	topic := fmt.Sprintf("homeassistant/sensor/%s/config", p.deviceName)
	return p.publish(ctx, topic, payload, true)
}

// Publish sends one median reading to the state topic. Called at most once
// per second by the tick driver.
func (p *Publisher) Publish(ctx context.Context, value float64) error {
	if !p.enabled {
		return nil
	}
	if !p.connected.Load() {
		return fmt.Errorf("not connected to broker")
	}

	payload := strconv.FormatFloat(value, 'f', -1, 64)
	return p.publish(ctx, p.deviceName+"/state", []byte(payload), false)
}

func (p *Publisher) publish(ctx context.Context, topic string, payload []byte, retain bool) error {
	p.mu.Lock()
	client := p.client
	p.mu.Unlock()

	if client == nil {
		return fmt.Errorf("no active broker connection")
	}

	_, err := client.Publish(ctx, &paho.Publish{
		Topic:   topic,
		Payload: payload,
		Retain:  retain,
	})
	if err != nil {
		p.connected.Store(false)
		return fmt.Errorf("failed to publish to %s: %w", topic, err)
	}
	return nil
}
