// Copyright 2025 Nguyen Nhat Nguyen
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package sink

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/ngnhng/typedflow/api"
	"github.com/ngnhng/typedflow/api/serde"
	"github.com/ngnhng/typedflow/sdk/worker"
)

var (
	_ worker.Exporter = (*NATSPublisher)(nil)

	_ Publisher = (*nats.Conn)(nil)
)

// Publisher is the core NATS publish call; *nats.Conn implements it.
type Publisher interface {
	Publish(subject string, data []byte) error
}

// StreamPublisher is the JetStream publish call; jetstream.JetStream
// implements it.
type StreamPublisher interface {
	Publish(ctx context.Context, subject string, payload []byte, opts ...jetstream.PublishOpt) (*jetstream.PubAck, error)
}

type NATSOptions struct {
	// SubjectPrefix defaults to api.SinkSubjectPrefix.
	SubjectPrefix string
	Serde         serde.BinarySerde
	Logger        *slog.Logger
}

// NATSPublisher exports sink records as NATS messages on per-function
// subjects.
type NATSPublisher struct {
	publish func(ctx context.Context, subject string, data []byte) error
	prefix  string
	codec   serde.BinarySerde
	logger  *slog.Logger
}

// NewNATSPublisher publishes with core NATS: fire-and-forget, no storage.
func NewNATSPublisher(p Publisher, opts *NATSOptions) *NATSPublisher {
	return newNATSPublisher(func(_ context.Context, subject string, data []byte) error {
		return p.Publish(subject, data)
	}, opts)
}

// NewJetStreamPublisher publishes through JetStream and waits for the
// stream's acknowledgement.
func NewJetStreamPublisher(js StreamPublisher, opts *NATSOptions) *NATSPublisher {
	return newNATSPublisher(func(ctx context.Context, subject string, data []byte) error {
		_, err := js.Publish(ctx, subject, data)
		return err
	}, opts)
}

func newNATSPublisher(publish func(context.Context, string, []byte) error, opts *NATSOptions) *NATSPublisher {
	if opts == nil {
		opts = &NATSOptions{}
	}
	prefix := opts.SubjectPrefix
	if prefix == "" {
		prefix = api.SinkSubjectPrefix
	}
	codec := opts.Serde
	if codec == nil {
		codec = serde.Default()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &NATSPublisher{publish: publish, prefix: prefix, codec: codec, logger: logger}
}

// FilterSubject matches every record the publisher sends.
func (p *NATSPublisher) FilterSubject() string { return p.prefix + ".>" }

func (p *NATSPublisher) Export(ctx context.Context, r api.SinkRecord) error {
	data, err := Encode(p.codec, r)
	if err != nil {
		return err
	}
	subject := Subject(p.prefix, r)
	if err := p.publish(ctx, subject, data); err != nil {
		return fmt.Errorf("publish %s: %w", subject, err)
	}
	p.logger.Debug("sink record published", "subject", subject, "workflow_id", r.Info.WorkflowID)
	return nil
}

// Config carries the connection knobs of a NATS client.
type Config interface {
	Endpoint() string
	NATSClientName() string
	NATSMaxReconnects() int
	NATSReconnectWait() time.Duration
	NATSDrainTimeout() time.Duration
}

// Connect dials NATS with the reconnect policy from cfg.
func Connect(cfg Config, logger *slog.Logger) (*nats.Conn, error) {
	if cfg == nil {
		return nil, errors.New("sink: nil NATS config provided")
	}
	if logger == nil {
		logger = slog.Default()
	}
	clientName := cfg.NATSClientName()
	if clientName == "" {
		clientName = "typedflow-sdk"
	}
	opts := []nats.Option{
		nats.Name(clientName),
		nats.MaxReconnects(cfg.NATSMaxReconnects()),
		nats.ReconnectWait(cfg.NATSReconnectWait()),
		nats.DrainTimeout(cfg.NATSDrainTimeout()),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("NATS reconnected", "url", nc.ConnectedUrl())
		}),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			logger.Warn("NATS disconnected", "error", err)
		}),
		nats.ClosedHandler(func(*nats.Conn) {
			logger.Debug("NATS connection closed")
		}),
	}
	nc, err := nats.Connect(cfg.Endpoint(), opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS at %s: %w", cfg.Endpoint(), err)
	}
	return nc, nil
}

// StreamManager is the part of jetstream.JetStream EnsureStream needs.
type StreamManager interface {
	Stream(ctx context.Context, name string) (jetstream.Stream, error)
	CreateStream(ctx context.Context, cfg jetstream.StreamConfig) (jetstream.Stream, error)
	UpdateStream(ctx context.Context, cfg jetstream.StreamConfig) (jetstream.Stream, error)
}

// StreamConfig returns the JetStream stream capturing every subject of
// publisher p.
func StreamConfig(name string, p *NATSPublisher) jetstream.StreamConfig {
	return jetstream.StreamConfig{
		Name:      name,
		Subjects:  []string{p.FilterSubject()},
		Retention: jetstream.LimitsPolicy,
		Storage:   jetstream.FileStorage,
	}
}

// EnsureStream creates the stream described by cfg or updates it in place.
func EnsureStream(ctx context.Context, js StreamManager, cfg jetstream.StreamConfig) (jetstream.Stream, error) {
	_, err := js.Stream(ctx, cfg.Name)
	switch {
	case errors.Is(err, jetstream.ErrStreamNotFound):
		stream, err := js.CreateStream(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to create stream %s: %w", cfg.Name, err)
		}
		return stream, nil
	case err != nil:
		return nil, fmt.Errorf("failed to get stream %s info: %w", cfg.Name, err)
	}

	stream, err := js.UpdateStream(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to update stream %s: %w", cfg.Name, err)
	}
	return stream, nil
}
