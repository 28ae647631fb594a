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

package workflow

import (
	"log/slog"

	"github.com/ngnhng/typedflow/api"
	"github.com/ngnhng/typedflow/sdk/internal"
)

// Context is the workflow execution context that provides deterministic guarantees.
//
// Context extends context.Context with workflow-specific operations. A new
// Context is built for every execution attempt, including replays, so
// handlers and activity sets obtained from it are never shared between
// attempts.
//
// Important: Workflow code must be deterministic. Do not:
//   - Perform I/O operations directly
//   - Generate random numbers
//   - Access current time directly
//   - Use goroutines
//
// Use activities for all non-deterministic operations.
type Context = internal.Context

type (
	Info             = api.WorkflowInfo
	HistoryInfo      = api.HistoryInfo
	SearchAttributes = api.SearchAttributes
	Sink             = internal.Sink
)

func GetInfo(ctx Context) Info { return ctx.WorkflowInfo() }

// GetLogger returns a logger that stays silent while the engine replays
// history.
func GetLogger(ctx Context) *slog.Logger { return ctx.Logger() }

func IsReplaying(ctx Context) bool { return ctx.IsReplaying() }

// Await suspends the workflow until cond returns true. cond is re-evaluated
// after every signal and every resolved future.
func Await(ctx Context, cond func() bool) error { return ctx.Await(cond) }

// SetSignalHandler attaches fn to the declared signal name. fn has the form
// func(T1, ..., Tn) or func(T1, ..., Tn) error; arguments are converted to
// its parameter types. Setting a handler again replaces the previous one.
func SetSignalHandler(ctx Context, name string, fn any) error {
	return ctx.SetSignalHandler(name, fn)
}

// SetQueryHandler attaches fn to the declared query name. fn has the form
// func(T1, ..., Tn) R or func(T1, ..., Tn) (R, error).
func SetQueryHandler(ctx Context, name string, fn any) error {
	return ctx.SetQueryHandler(name, fn)
}

// OnSignal attaches a handler for a signal carrying a single T.
func OnSignal[T any](ctx Context, name string, fn func(T)) error {
	return ctx.SetSignalHandler(name, fn)
}

// OnQuery attaches a handler for an argument-less query answering R.
func OnQuery[R any](ctx Context, name string, fn func() R) error {
	return ctx.SetQueryHandler(name, fn)
}

// UpsertSearchAttributes merges attrs into the execution's indexed
// attributes. Every name must be declared in the namespace with a type the
// values match.
func UpsertSearchAttributes(ctx Context, attrs SearchAttributes) error {
	return ctx.UpsertSearchAttributes(attrs)
}

// GetSink returns the named sink. Calls are fire-and-forget and are not
// repeated during replay.
func GetSink(ctx Context, name string) Sink { return ctx.Sink(name) }
