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
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/ngnhng/typedflow/api"
	"github.com/ngnhng/typedflow/api/serde"
	"github.com/ngnhng/typedflow/sdk/worker"
)

var _ worker.Exporter = (*RedisStream)(nil)

type RedisOptions struct {
	// Stream is the stream key; defaults to api.SinkStream.
	Stream string
	// MaxLen caps the stream approximately; zero keeps every entry.
	MaxLen        int64
	SubjectPrefix string
	Serde         serde.BinarySerde
	Logger        *slog.Logger
}

// RedisStream appends sink records to a Redis stream. Each entry carries the
// record's subject and its encoded payload.
type RedisStream struct {
	client redis.Cmdable
	stream string
	maxLen int64
	prefix string
	codec  serde.BinarySerde
	logger *slog.Logger
}

func NewRedisStream(client redis.Cmdable, opts *RedisOptions) *RedisStream {
	if opts == nil {
		opts = &RedisOptions{}
	}
	s := &RedisStream{
		client: client,
		stream: opts.Stream,
		maxLen: opts.MaxLen,
		prefix: opts.SubjectPrefix,
		codec:  opts.Serde,
		logger: opts.Logger,
	}
	if s.stream == "" {
		s.stream = api.SinkStream
	}
	if s.codec == nil {
		s.codec = serde.Default()
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

func (s *RedisStream) Stream() string { return s.stream }

func (s *RedisStream) Export(ctx context.Context, r api.SinkRecord) error {
	data, err := Encode(s.codec, r)
	if err != nil {
		return err
	}
	args := &redis.XAddArgs{
		Stream: s.stream,
		Values: map[string]any{
			api.SinkFieldSubject: Subject(s.prefix, r),
			api.SinkFieldPayload: data,
		},
	}
	if s.maxLen > 0 {
		args.MaxLen = s.maxLen
		args.Approx = true
	}
	id, err := s.client.XAdd(ctx, args).Result()
	if err != nil {
		return fmt.Errorf("xadd %s: %w", s.stream, err)
	}
	s.logger.Debug("sink record appended", "stream", s.stream, "id", id, "workflow_id", r.Info.WorkflowID)
	return nil
}

// Entry is a decoded stream entry.
type Entry struct {
	ID      string
	Subject string
	Record  api.SinkRecord
}

// Read returns up to count entries with IDs after afterID ("" reads from the
// start of the stream).
func (s *RedisStream) Read(ctx context.Context, afterID string, count int64) ([]Entry, error) {
	start, n := "-", count
	if afterID != "" {
		// XRANGE is inclusive; fetch one extra and drop afterID itself.
		start, n = afterID, count+1
	}
	msgs, err := s.client.XRangeN(ctx, s.stream, start, "+", n).Result()
	if err != nil {
		return nil, fmt.Errorf("xrange %s: %w", s.stream, err)
	}
	out := make([]Entry, 0, len(msgs))
	for _, m := range msgs {
		if m.ID == afterID {
			continue
		}
		payload, ok := m.Values[api.SinkFieldPayload].(string)
		if !ok {
			return nil, fmt.Errorf("entry %s: missing %s field", m.ID, api.SinkFieldPayload)
		}
		r, err := Decode(s.codec, []byte(payload))
		if err != nil {
			return nil, fmt.Errorf("entry %s: %w", m.ID, err)
		}
		subject, _ := m.Values[api.SinkFieldSubject].(string)
		out = append(out, Entry{ID: m.ID, Subject: subject, Record: r})
	}
	if int64(len(out)) > count {
		out = out[:count]
	}
	return out, nil
}
