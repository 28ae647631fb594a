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

package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/ngnhng/typedflow/api"
	"github.com/ngnhng/typedflow/sdk/workflow"
)

type Mode string

const (
	ModeDebug   Mode = "debug"
	ModeRelease Mode = "release"
)

// OTel log exporters
const (
	ExporterNone     = "none"
	ExporterOTLPHTTP = "otlp-http"
	ExporterOTLPGRPC = "otlp-grpc"
)

// Default configuration constants tuned for SDK workers and clients.
const (
	DefaultNATSHost = "localhost"
	DefaultNATSPort = "4222"

	DefaultReconnectWait = 2 * time.Second
	DefaultDrainTimeout  = 30 * time.Second
	DefaultMaxReconnects = -1 // reconnect forever

	DefaultRedisAddr = "localhost:6379"
)

type HistoryConfig struct {
	MaxEvents int `json:"max_events" env:"MAX_EVENTS"`
	MaxSize   int `json:"max_size"   env:"MAX_SIZE"`
}

type LogConfig struct {
	Level string `json:"level"  env:"LEVEL"`
	// Format is text or json; it applies to the release mode stdout handler.
	Format       string `json:"format"        env:"FORMAT"`
	OTelExporter string `json:"otel_exporter" env:"OTEL_EXPORTER"`
	OTelEndpoint string `json:"otel_endpoint" env:"OTEL_ENDPOINT"`
}

// NATSConfig holds NATS-specific configuration knobs for the sink publisher.
type NATSConfig struct {
	URL           string        `json:"url"            env:"URL"`
	Host          string        `json:"host"           env:"HOST"`
	Port          string        `json:"port"           env:"PORT"`
	ClientName    string        `json:"client_name"    env:"CLIENT_NAME"`
	MaxReconnects int           `json:"max_reconnects" env:"MAX_RECONNECTS"`
	ReconnectWait time.Duration `json:"reconnect_wait" env:"RECONNECT_WAIT"`
	DrainTimeout  time.Duration `json:"drain_timeout"  env:"DRAIN_TIMEOUT"`
}

type SinkConfig struct {
	// SubjectPrefix prefixes the NATS subjects sink calls are published on.
	SubjectPrefix string `json:"subject_prefix" env:"SUBJECT_PREFIX"`
	// Stream is the Redis stream key sink calls are appended to.
	Stream string `json:"stream" env:"STREAM"`
}

type RedisConfig struct {
	Addr     string `json:"addr"     env:"ADDR"`
	Password string `json:"-"        env:"PASSWORD"`
	DB       int    `json:"db"       env:"DB"`
}

// Config is the SDK configuration users can construct or load from env.
type Config struct {
	Mode          Mode          `json:"mode"           env:"MODE"`
	NamespaceFile string        `json:"namespace_file" env:"NAMESPACE_FILE"`
	History       HistoryConfig `json:"history"        envPrefix:"HISTORY_"`
	Log           LogConfig     `json:"log"            envPrefix:"LOG_"`
	NATS          NATSConfig    `json:"nats"           envPrefix:"NATS_"`
	Sink          SinkConfig    `json:"sink"           envPrefix:"SINK_"`
	Redis         RedisConfig   `json:"redis"          envPrefix:"REDIS_"`
}

// Default returns the configuration Load starts from.
func Default() Config {
	return Config{
		Mode: ModeRelease,
		History: HistoryConfig{
			MaxEvents: api.DefaultMaxHistoryEvents,
			MaxSize:   api.DefaultMaxHistorySize,
		},
		Log: LogConfig{
			Level:        "info",
			Format:       "text",
			OTelExporter: ExporterNone,
		},
		NATS: NATSConfig{
			Host:          DefaultNATSHost,
			Port:          DefaultNATSPort,
			ClientName:    "typedflow-sdk",
			MaxReconnects: DefaultMaxReconnects,
			ReconnectWait: DefaultReconnectWait,
			DrainTimeout:  DefaultDrainTimeout,
		},
		Sink: SinkConfig{
			SubjectPrefix: api.SinkSubjectPrefix,
			Stream:        api.SinkStream,
		},
		Redis: RedisConfig{
			Addr: DefaultRedisAddr,
		},
	}
}

// Load loads configuration from environment variables applying defaults.
func Load() (*Config, error) {
	return load(env.Options{})
}

// LoadFrom is Load reading from environ instead of the process environment.
func LoadFrom(environ map[string]string) (*Config, error) {
	return load(env.Options{Environment: environ})
}

func load(opts env.Options) (*Config, error) {
	cfg := Default()
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return nil, err
	}
	if cfg.NATS.URL == "" {
		cfg.NATS.URL = fmt.Sprintf("nats://%s:%s", cfg.NATS.Host, cfg.NATS.Port)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	var errs []error
	switch c.Mode {
	case ModeDebug, ModeRelease:
	default:
		errs = append(errs, fmt.Errorf("MODE: unknown mode %q", c.Mode))
	}
	if c.History.MaxEvents <= 0 {
		errs = append(errs, fmt.Errorf("HISTORY_MAX_EVENTS: must be positive, got %d", c.History.MaxEvents))
	}
	if c.History.MaxSize <= 0 {
		errs = append(errs, fmt.Errorf("HISTORY_MAX_SIZE: must be positive, got %d", c.History.MaxSize))
	}
	switch c.Log.OTelExporter {
	case ExporterNone, ExporterOTLPHTTP, ExporterOTLPGRPC:
	default:
		errs = append(errs, fmt.Errorf("LOG_OTEL_EXPORTER: unknown exporter %q", c.Log.OTelExporter))
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("LOG_FORMAT: unknown format %q", c.Log.Format))
	}
	if _, err := parseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("LOG_LEVEL: %w", err))
	}
	return errors.Join(errs...)
}

func (c *Config) HistoryLimits() workflow.HistoryLimits {
	return workflow.HistoryLimits{MaxEvents: c.History.MaxEvents, MaxSize: c.History.MaxSize}
}

// LogLevel falls back to info for unparsable levels.
func (c *Config) LogLevel() slog.Level {
	l, err := parseLevel(c.Log.Level)
	if err != nil {
		return slog.LevelInfo
	}
	return l
}

// Interface implementation for the sink transports.
func (c *Config) Endpoint() string                 { return c.NATS.URL }
func (c *Config) NATSClientName() string           { return c.NATS.ClientName }
func (c *Config) NATSMaxReconnects() int           { return c.NATS.MaxReconnects }
func (c *Config) NATSReconnectWait() time.Duration { return c.NATS.ReconnectWait }
func (c *Config) NATSDrainTimeout() time.Duration  { return c.NATS.DrainTimeout }
func (c *Config) SinkSubjectPrefix() string        { return c.Sink.SubjectPrefix }
func (c *Config) SinkStream() string               { return c.Sink.Stream }
func (c *Config) RedisAddr() string                { return c.Redis.Addr }

func parseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.ToUpper(s))); err != nil {
		return 0, err
	}
	return l, nil
}
