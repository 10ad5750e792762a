// Package mqtt ingests device position fixes published by drivers' phones and
// serves the latest fresh fix per driver as a ports.PositionSampler.
//
// Devices publish JSON to drivers/<driver id>/position:
//
//	{"lat": 36.1408, "lng": -5.4471, "ts": "2026-03-02T09:00:00Z"}
//
// ts is optional; the receive time is used when it is missing.
package mqtt

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"lastmile/internal/core/domain/model/kernel"
	"lastmile/internal/core/ports"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/facebookgo/clock"
)

const (
	DefaultTopic  = "drivers/+/position"
	DefaultMaxAge = 2 * time.Minute
)

type Config struct {
	Broker   string
	ClientID string
	Topic    string
	MaxAge   time.Duration
}

type fix struct {
	position kernel.Position
	at       time.Time
}

type positionMessage struct {
	Lat float64    `json:"lat"`
	Lng float64    `json:"lng"`
	TS  *time.Time `json:"ts"`
}

// Sampler keeps the most recent fix of every driver.
type Sampler struct {
	cfg    Config
	conn   pahomqtt.Client
	clock  clock.Clock
	logger *slog.Logger

	mu    sync.RWMutex
	fixes map[kernel.UUID]fix
}

func NewSampler(cfg Config, clk clock.Clock, logger *slog.Logger) *Sampler {
	if cfg.Topic == "" {
		cfg.Topic = DefaultTopic
	}
	if cfg.MaxAge <= 0 {
		cfg.MaxAge = DefaultMaxAge
	}
	if clk == nil {
		clk = clock.New()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Sampler{
		cfg:    cfg,
		clock:  clk,
		logger: logger.With("component", "mqtt-sampler"),
		fixes:  make(map[kernel.UUID]fix),
	}
}

// Connect dials the broker and subscribes to the position topic. Paho keeps
// reconnecting in the background and resubscribes on every connect.
func (s *Sampler) Connect(ctx context.Context) error {
	opts := pahomqtt.NewClientOptions().
		AddBroker(s.cfg.Broker).
		SetClientID(s.cfg.ClientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5 * time.Second).
		SetOnConnectHandler(func(c pahomqtt.Client) {
			token := c.Subscribe(s.cfg.Topic, 1, func(_ pahomqtt.Client, msg pahomqtt.Message) {
				s.handle(msg.Topic(), msg.Payload())
			})
			token.Wait()
			if err := token.Error(); err != nil {
				s.logger.Error("subscribe failed", "topic", s.cfg.Topic, "error", err)
				return
			}
			s.logger.Info("subscribed", "topic", s.cfg.Topic)
		})

	s.conn = pahomqtt.NewClient(opts)
	token := s.conn.Connect()
	select {
	case <-token.Done():
	case <-ctx.Done():
		return ctx.Err()
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("mqtt connect: %w", err)
	}
	return nil
}

func (s *Sampler) Close() {
	if s.conn != nil {
		s.conn.Disconnect(250)
	}
}

func (s *Sampler) CurrentPosition(_ context.Context, driverID kernel.UUID) (kernel.Position, error) {
	s.mu.RLock()
	f, ok := s.fixes[driverID]
	s.mu.RUnlock()

	if !ok {
		return kernel.Position{}, fmt.Errorf("%w: no fix for driver %s", ports.ErrPositionUnavailable, driverID)
	}
	if age := s.clock.Now().Sub(f.at); age > s.cfg.MaxAge {
		return kernel.Position{}, fmt.Errorf("%w: last fix is %s old", ports.ErrPositionUnavailable, age.Round(time.Second))
	}
	return f.position, nil
}

func (s *Sampler) handle(topic string, payload []byte) {
	driverID, err := driverFromTopic(topic)
	if err != nil {
		s.logger.Warn("ignoring message", "topic", topic, "error", err)
		return
	}

	var msg positionMessage
	if err = json.Unmarshal(payload, &msg); err != nil {
		s.logger.Warn("ignoring undecodable fix", "topic", topic, "error", err)
		return
	}
	position, err := kernel.NewPosition(msg.Lat, msg.Lng)
	if err != nil {
		s.logger.Warn("ignoring invalid fix", "topic", topic, "error", err)
		return
	}

	at := s.clock.Now()
	if msg.TS != nil {
		at = *msg.TS
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if current, ok := s.fixes[driverID]; ok && current.at.After(at) {
		return
	}
	s.fixes[driverID] = fix{position: position, at: at}
}

// driverFromTopic extracts the id from drivers/<id>/position.
func driverFromTopic(topic string) (kernel.UUID, error) {
	parts := strings.Split(topic, "/")
	if len(parts) != 3 || parts[0] != "drivers" || parts[2] != "position" {
		return kernel.UUID{}, fmt.Errorf("unexpected topic %q", topic)
	}
	return kernel.UUIDFromString(parts[1])
}
