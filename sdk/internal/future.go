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
	"fmt"
	"log/slog"

	"github.com/ngnhng/typedflow/api/serde"
)

// Future is the result of an asynchronous engine operation.
type Future interface {
	// Get stores the resolved value into valuePtr (which may be nil to only
	// observe the error) and returns the operation's error.
	Get(ctx context.Context, valuePtr any) error
	IsReady() bool
}

// ErrorBlockingFuture is panicked by Get on a future that has not resolved
// yet in a replaying runtime. The factory turns it into a Blocked outcome:
// the attempt yields until the engine delivers the result and replays.
type ErrorBlockingFuture struct{}

func (ErrorBlockingFuture) Error() string {
	return "blocking_future"
}

var _ Future = (*settled)(nil)

type settled struct {
	isResolved bool
	value      any
	err        error
	converter  *serde.TypeConverter
	logger     *slog.Logger
}

// NewSettledFuture returns a future already resolved to value or err.
func NewSettledFuture(value any, err error, converter *serde.TypeConverter, logger *slog.Logger) Future {
	if converter == nil {
		converter = serde.NewTypeConverter(nil)
	}
	return &settled{isResolved: true, value: value, err: err, converter: converter, logger: logger}
}

// NewFailedFuture returns a future resolved to err.
func NewFailedFuture(err error) Future {
	return NewSettledFuture(nil, err, nil, nil)
}

// NewPendingFuture returns a future whose Get suspends the attempt with
// OutcomeBlocked, for runtimes that replay the workflow once the result is
// recorded.
func NewPendingFuture() Future {
	return &settled{}
}

func (f *settled) IsReady() bool { return f.isResolved }

func (f *settled) Get(ctx context.Context, valuePtr any) error {
	if !f.isResolved {
		panic(ErrorBlockingFuture{})
	}
	if f.err != nil {
		return f.err
	}
	if valuePtr == nil || f.value == nil {
		return nil
	}

	defaultLogger(f.logger).Debug("future resolved", "value", debugAnyValues([]any{f.value}))

	if err := f.converter.Assign(f.value, valuePtr); err != nil {
		return fmt.Errorf("failed to convert future result into %T: %w", valuePtr, err)
	}
	return nil
}
