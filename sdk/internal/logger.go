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

package internal

import (
	"context"
	"log/slog"
)

// replayAwareHandler drops records while the engine replays history, so
// workflow code logs each line once per execution.
type replayAwareHandler struct {
	inner     slog.Handler
	replaying func() bool
}

func newReplayAwareLogger(base *slog.Logger, replaying func() bool) *slog.Logger {
	return slog.New(&replayAwareHandler{inner: defaultLogger(base).Handler(), replaying: replaying})
}

func (h *replayAwareHandler) Enabled(ctx context.Context, level slog.Level) bool {
	if h.replaying() {
		return false
	}
	return h.inner.Enabled(ctx, level)
}

func (h *replayAwareHandler) Handle(ctx context.Context, r slog.Record) error {
	return h.inner.Handle(ctx, r)
}

func (h *replayAwareHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &replayAwareHandler{inner: h.inner.WithAttrs(attrs), replaying: h.replaying}
}

func (h *replayAwareHandler) WithGroup(name string) slog.Handler {
	return &replayAwareHandler{inner: h.inner.WithGroup(name), replaying: h.replaying}
}
