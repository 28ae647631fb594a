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

package logger

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"go.opentelemetry.io/contrib/bridges/otelslog"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploggrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploghttp"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.37.0"

	"github.com/ngnhng/typedflow/sdk/config"
)

const (
	serviceName    = "typedflow"
	serviceVersion = "v0.1.0"
)

type Logger struct {
	Slogger *slog.Logger
	*sdklog.LoggerProvider
}

type LoggerOptions struct {
	// Mode specifies the application mode (debug/release)
	Mode config.Mode

	// Writer is the writer to write the logs to
	Writer io.Writer

	Level slog.Level
	// Format of the release mode writer handler: text or json.
	Format string

	// Exporter selects the OpenTelemetry log exporter in release mode.
	Exporter string
	// Endpoint overrides the exporter's default endpoint URL.
	Endpoint string
}

// FromConfig builds LoggerOptions from the SDK configuration.
func FromConfig(cfg *config.Config, w io.Writer) *LoggerOptions {
	return &LoggerOptions{
		Mode:     cfg.Mode,
		Writer:   w,
		Level:    cfg.LogLevel(),
		Format:   cfg.Log.Format,
		Exporter: cfg.Log.OTelExporter,
		Endpoint: cfg.Log.OTelEndpoint,
	}
}

// NewLogger returns a colored debug logger in debug mode. In release mode it
// writes to opts.Writer and, when an exporter is configured, also ships
// records through an OpenTelemetry log pipeline.
func NewLogger(ctx context.Context, opts *LoggerOptions) (*Logger, error) {
	if opts == nil || opts.Writer == nil {
		return nil, fmt.Errorf("no log writer")
	}
	if opts.Mode == config.ModeDebug {
		return &Logger{Slogger: slog.New(NewDebugHandler(opts.Writer, slog.LevelDebug))}, nil
	}

	handlers := []slog.Handler{writerHandler(opts)}
	var provider *sdklog.LoggerProvider
	if opts.Exporter != "" && opts.Exporter != config.ExporterNone {
		exporter, err := newExporter(ctx, opts.Exporter, opts.Endpoint)
		if err != nil {
			return nil, err
		}
		res, err := resource.Merge(
			resource.Default(),
			resource.NewWithAttributes(
				semconv.SchemaURL,
				semconv.ServiceName(serviceName),
				semconv.ServiceVersion(serviceVersion),
			),
		)
		if err != nil {
			return nil, fmt.Errorf("log resource: %w", err)
		}
		provider = sdklog.NewLoggerProvider(
			sdklog.WithProcessor(sdklog.NewBatchProcessor(exporter)),
			sdklog.WithResource(res),
		)
		handlers = append(handlers, otelslog.NewHandler(serviceName, otelslog.WithLoggerProvider(provider)))
	}

	return &Logger{
		Slogger:        slog.New(NewMultiHandler(handlers...)),
		LoggerProvider: provider,
	}, nil
}

// Shutdown flushes the OpenTelemetry pipeline, if any.
func (l *Logger) Shutdown(ctx context.Context) error {
	if l.LoggerProvider == nil {
		return nil
	}
	return l.LoggerProvider.Shutdown(ctx)
}

func writerHandler(opts *LoggerOptions) slog.Handler {
	ho := &slog.HandlerOptions{Level: opts.Level}
	if opts.Format == "json" {
		return slog.NewJSONHandler(opts.Writer, ho)
	}
	return slog.NewTextHandler(opts.Writer, ho)
}

func newExporter(ctx context.Context, kind, endpoint string) (sdklog.Exporter, error) {
	switch kind {
	case config.ExporterOTLPHTTP:
		var opts []otlploghttp.Option
		if endpoint != "" {
			opts = append(opts, otlploghttp.WithEndpointURL(endpoint))
		}
		return otlploghttp.New(ctx, opts...)
	case config.ExporterOTLPGRPC:
		var opts []otlploggrpc.Option
		if endpoint != "" {
			opts = append(opts, otlploggrpc.WithEndpointURL(endpoint))
		}
		return otlploggrpc.New(ctx, opts...)
	}
	return nil, errors.New("unknown log exporter " + kind)
}

// Stderr is a release mode logger writing text to stderr, for programs that
// have not loaded their configuration yet.
func Stderr() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, nil))
}
