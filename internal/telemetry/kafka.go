// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package telemetry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/segmentio/kafka-go"

	"github.com/mia-platform/pdm/internal/logger"
)

const defaultTopic = "destination_events"

// Config selects where events are captured.
type Config struct {
	Brokers      []string      `env:"TELEMETRY_KAFKA_BROKERS" envSeparator:","`
	Topic        string        `env:"TELEMETRY_KAFKA_TOPIC" envDefault:"destination_events"`
	WriteTimeout time.Duration `env:"TELEMETRY_KAFKA_WRITE_TIMEOUT" envDefault:"5s"`
}

// LoadConfigFromEnv reads the telemetry configuration from the environment.
func LoadConfigFromEnv() (Config, error) {
	config, err := env.ParseAs[Config]()
	if err != nil {
		var aggregateErr env.AggregateError
		if errors.As(err, &aggregateErr) && len(aggregateErr.Errors) > 0 {
			return Config{}, aggregateErr.Errors[0]
		}
		return Config{}, err
	}
	return config, nil
}

// New returns a kafka backed Capturer when brokers are configured and a LogCapturer otherwise.
// The returned close function releases the resources held by the capturer.
func New(config Config) (Capturer, func() error) {
	if len(config.Brokers) == 0 {
		return LogCapturer{}, func() error { return nil }
	}

	if config.Topic == "" {
		config.Topic = defaultTopic
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(config.Brokers...),
		Topic:        config.Topic,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 10 * time.Millisecond,
		WriteTimeout: config.WriteTimeout,
	}

	capturer := &KafkaCapturer{writer: writer}
	return capturer, writer.Close
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

var _ Capturer = &KafkaCapturer{}

// KafkaCapturer publishes every event as a JSON message keyed by its id.
type KafkaCapturer struct {
	writer messageWriter
}

func (k *KafkaCapturer) Capture(ctx context.Context, event Event) {
	log := logger.Named(ctx, loggerName, "event", event.Name, "eventId", event.ID)

	if err := k.publish(ctx, event); err != nil {
		log.Warn("event not published", "error", err)
		return
	}

	log.Trace("event published")
}

func (k *KafkaCapturer) publish(ctx context.Context, event Event) error {
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	message := kafka.Message{
		Key:   []byte(event.ID),
		Value: value,
		Time:  event.Time,
	}

	if err := k.writer.WriteMessages(context.WithoutCancel(ctx), message); err != nil {
		return fmt.Errorf("write to kafka: %w", err)
	}
	return nil
}
