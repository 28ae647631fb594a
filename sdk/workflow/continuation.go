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
	"iter"

	"github.com/ngnhng/typedflow/api"
	"github.com/ngnhng/typedflow/sdk/internal"
)

type (
	ContinueAsNewOptions = api.ContinueAsNewOptions
	ContinueAsNewError   = internal.ContinueAsNewError
	HistoryLimits        = internal.HistoryLimits
	IteratorOption       = internal.IteratorOption
)

type (
	// Source yields the items a SafeIterator walks.
	Source[T any]     = internal.Source[T]
	SourceFunc[T any] = internal.SourceFunc[T]
	// Checkpoint is the last yielded item and its index; LastIndex is -1
	// before the first item.
	Checkpoint[T any] = internal.Checkpoint[T]
	// SafeIterator walks a Source and restarts the workflow with
	// continue-as-new before its history outgrows the configured limits.
	SafeIterator[T any] = internal.SafeIterator[T]
)

// ContinueAsNew ends the current attempt and restarts the running workflow
// type with args. Return the error it gives from the workflow function.
//
//	if done < len(batch) {
//		return workflow.ContinueAsNew(ctx, batch[done:])
//	}
func ContinueAsNew(ctx Context, args ...any) error { return ctx.ContinueAsNew(args...) }

// NewContinueAsNewFunc returns a restart function for another workflow type or
// task queue. Empty option fields keep the running values.
func NewContinueAsNewFunc(ctx Context, opts ContinueAsNewOptions) func(args ...any) error {
	return ctx.NewContinueAsNewFunc(opts)
}

func IsContinueAsNew(err error) bool { return internal.IsContinueAsNew(err) }

// NewSafeIterator wraps source for iteration inside ctx's workflow. Once an
// item has been yielded, every Next first compares the history with the
// limits; when either is reached, makeArgs(lastValue, lastIndex) builds the
// arguments of the next attempt and Next returns the restart error without
// pulling another item. The workflow function must return that error.
// Loops that end early through Next should defer Stop; breaking out of All
// stops the iterator.
//
//	it := workflow.NewSafeIterator(ctx, workflow.FromSlice(orders),
//		func(_ Order, i int) []any { return []any{orders[i+1:]} })
//	for order, err := range it.All() {
//		if err != nil {
//			return err
//		}
//		if err := workflow.ExecuteActivity(ctx, Ship, order).Get(ctx, nil); err != nil {
//			return err
//		}
//	}
func NewSafeIterator[T any](ctx Context, source Source[T], makeArgs func(lastValue T, lastIndex int) []any, opts ...IteratorOption) *SafeIterator[T] {
	return internal.NewSafeIterator(ctx, source, makeArgs, opts...)
}

func FromSlice[T any](items []T) Source[T] { return internal.FromSlice(items) }

// FromSeq pulls from seq one item at a time; generators are resumed only
// when the iterator needs the next item.
func FromSeq[T any](seq iter.Seq[T]) Source[T] { return internal.FromSeq(seq) }

func FromSeq2[T any](seq iter.Seq2[T, error]) Source[T] { return internal.FromSeq2(seq) }

func WithMaxHistoryEvents(n int) IteratorOption { return internal.WithMaxHistoryEvents(n) }

func WithMaxHistorySize(bytes int) IteratorOption { return internal.WithMaxHistorySize(bytes) }
