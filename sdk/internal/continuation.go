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
	"errors"
	"iter"

	"github.com/ngnhng/typedflow/api"
)

// HistoryLimits bounds the history of a single execution attempt.
type HistoryLimits struct {
	MaxEvents int
	MaxSize   int
}

func DefaultHistoryLimits() HistoryLimits {
	return HistoryLimits{MaxEvents: api.DefaultMaxHistoryEvents, MaxSize: api.DefaultMaxHistorySize}
}

func (l HistoryLimits) withDefaults() HistoryLimits {
	d := DefaultHistoryLimits()
	if l.MaxEvents <= 0 {
		l.MaxEvents = d.MaxEvents
	}
	if l.MaxSize <= 0 {
		l.MaxSize = d.MaxSize
	}
	return l
}

// Exceeded reports whether h is at or above either limit.
func (l HistoryLimits) Exceeded(h api.HistoryInfo) bool {
	return h.Length >= l.MaxEvents || h.Size >= l.MaxSize
}

// Continuable is the part of a workflow context a SafeIterator needs.
type Continuable interface {
	HistoryInfo() api.HistoryInfo
	HistoryLimits() HistoryLimits
	// ContinueAsNew returns the error that ends the attempt and restarts the
	// workflow with args.
	ContinueAsNew(args ...any) error
}

// Source produces the items a SafeIterator walks. Next returns ok=false once
// the source is exhausted. Next may block, e.g. while an activity fetches the
// next page.
type Source[T any] interface {
	Next() (item T, ok bool, err error)
}

// SourceFunc adapts a pull function to a Source.
type SourceFunc[T any] func() (T, bool, error)

func (f SourceFunc[T]) Next() (T, bool, error) { return f() }

type sliceSource[T any] struct {
	items []T
	pos   int
}

func (s *sliceSource[T]) Next() (T, bool, error) {
	if s.pos >= len(s.items) {
		var zero T
		return zero, false, nil
	}
	v := s.items[s.pos]
	s.pos++
	return v, true, nil
}

// FromSlice returns a Source over items.
func FromSlice[T any](items []T) Source[T] {
	return &sliceSource[T]{items: items}
}

type seqSource[T any] struct {
	next func() (T, bool)
	stop func()
}

func (s *seqSource[T]) Next() (T, bool, error) {
	v, ok := s.next()
	return v, ok, nil
}

func (s *seqSource[T]) Stop() { s.stop() }

// FromSeq returns a Source pulling from seq. The sequence is only advanced
// when the iterator asks for the next item.
func FromSeq[T any](seq iter.Seq[T]) Source[T] {
	next, stop := iter.Pull(seq)
	return &seqSource[T]{next: next, stop: stop}
}

type seq2Source[T any] struct {
	next func() (T, error, bool)
	stop func()
}

func (s *seq2Source[T]) Next() (T, bool, error) {
	v, err, ok := s.next()
	if !ok {
		return v, false, nil
	}
	return v, true, err
}

func (s *seq2Source[T]) Stop() { s.stop() }

// FromSeq2 returns a Source pulling (item, error) pairs from seq.
func FromSeq2[T any](seq iter.Seq2[T, error]) Source[T] {
	next, stop := iter.Pull2(seq)
	return &seq2Source[T]{next: next, stop: stop}
}

// Checkpoint describes how far a SafeIterator has advanced. LastIndex is -1
// before the first item.
type Checkpoint[T any] struct {
	LastValue T
	LastIndex int
}

// IteratorOption overrides the history limits of one iterator.
type IteratorOption func(*HistoryLimits)

func WithMaxHistoryEvents(n int) IteratorOption {
	return func(l *HistoryLimits) { l.MaxEvents = n }
}

func WithMaxHistorySize(bytes int) IteratorOption {
	return func(l *HistoryLimits) { l.MaxSize = bytes }
}

type iteratorState int

const (
	iteratorReady iteratorState = iota
	iteratorDone
	iteratorRestarting
	iteratorFailed
)

var errNilContinuationArgs = errors.New("safe iterator: nil continuation args function")

// SafeIterator walks a Source while keeping the attempt's history bounded.
//
// Before pulling every item after the first, it compares the attempt's
// history with its limits. Once either is reached it stops without pulling
// and returns the ContinueAsNewError built from makeArgs(lastValue,
// lastIndex), so the next attempt resumes right after the last item the
// workflow saw. The workflow must return that error.
//
// Source errors are returned as-is and never cause a restart. After a
// restart or an error the iterator keeps returning the same error.
type SafeIterator[T any] struct {
	ctx      Continuable
	source   Source[T]
	makeArgs func(lastValue T, lastIndex int) []any
	limits   HistoryLimits

	index     int
	lastValue T
	state     iteratorState
	err       error
}

// NewSafeIterator wraps source. makeArgs computes the arguments of the
// restarted attempt; it is only called with lastIndex >= 0 by the iterator.
func NewSafeIterator[T any](ctx Continuable, source Source[T], makeArgs func(lastValue T, lastIndex int) []any, opts ...IteratorOption) *SafeIterator[T] {
	limits := ctx.HistoryLimits()
	for _, opt := range opts {
		opt(&limits)
	}
	it := &SafeIterator[T]{
		ctx:      ctx,
		source:   source,
		makeArgs: makeArgs,
		limits:   limits.withDefaults(),
		index:    -1,
	}
	if makeArgs == nil {
		it.fail(errNilContinuationArgs)
	}
	return it
}

// Next returns the next item. ok is false once the source is exhausted or
// when err is non-nil.
func (it *SafeIterator[T]) Next() (item T, ok bool, err error) {
	var zero T
	switch it.state {
	case iteratorDone:
		return zero, false, nil
	case iteratorRestarting, iteratorFailed:
		return zero, false, it.err
	}

	if it.index >= 0 && it.limits.Exceeded(it.ctx.HistoryInfo()) {
		it.state = iteratorRestarting
		it.err = it.ctx.ContinueAsNew(it.makeArgs(it.lastValue, it.index)...)
		it.stop()
		return zero, false, it.err
	}

	v, ok, err := it.source.Next()
	if err != nil {
		it.fail(err)
		return zero, false, err
	}
	if !ok {
		it.state = iteratorDone
		it.stop()
		return zero, false, nil
	}

	it.index++
	it.lastValue = v
	return v, true, nil
}

// All adapts the iterator to range-over-func. A terminal error is yielded
// once with the zero item. Breaking out of the loop stops the iterator.
func (it *SafeIterator[T]) All() iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		for {
			v, ok, err := it.Next()
			if err != nil {
				var zero T
				yield(zero, err)
				return
			}
			if !ok {
				return
			}
			if !yield(v, nil) {
				it.Stop()
				return
			}
		}
	}
}

// Stop releases the source. Later calls to Next report exhaustion. Callers
// that leave a Next loop early should defer it. Terminal states already
// released the source, so Stop is a no-op there.
func (it *SafeIterator[T]) Stop() {
	if it.state != iteratorReady {
		return
	}
	it.state = iteratorDone
	it.stop()
}

func (it *SafeIterator[T]) Checkpoint() Checkpoint[T] {
	return Checkpoint[T]{LastValue: it.lastValue, LastIndex: it.index}
}

func (it *SafeIterator[T]) Limits() HistoryLimits { return it.limits }

// Restarting reports whether the iterator ended the attempt.
func (it *SafeIterator[T]) Restarting() bool { return it.state == iteratorRestarting }

func (it *SafeIterator[T]) fail(err error) {
	it.state = iteratorFailed
	it.err = err
	it.stop()
}

func (it *SafeIterator[T]) stop() {
	if s, ok := it.source.(interface{ Stop() }); ok {
		s.Stop()
	}
}
