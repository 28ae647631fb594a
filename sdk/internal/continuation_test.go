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
	"reflect"
	"slices"
	"testing"

	"github.com/ngnhng/typedflow/api"
)

type fakeContinuable struct {
	history  api.HistoryInfo
	limits   HistoryLimits
	restarts [][]any
}

func (f *fakeContinuable) HistoryInfo() api.HistoryInfo { return f.history }
func (f *fakeContinuable) HistoryLimits() HistoryLimits { return f.limits }

func (f *fakeContinuable) ContinueAsNew(args ...any) error {
	f.restarts = append(f.restarts, args)
	return &ContinueAsNewError{WorkflowType: "wf", Args: args}
}

type makeArgsCall struct {
	value, index int
}

func ints(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i + 1
	}
	return out
}

// countingSource wraps a slice and records how many items were pulled.
type countingSource struct {
	items  []int
	pulled int
}

func (s *countingSource) Next() (int, bool, error) {
	if s.pulled >= len(s.items) {
		return 0, false, nil
	}
	s.pulled++
	return s.items[s.pulled-1], true, nil
}

// consume drains it, adding eventsPerItem history events per yielded item.
func consume(ctx *fakeContinuable, it *SafeIterator[int], eventsPerItem int) ([]int, error) {
	var seen []int
	for {
		v, ok, err := it.Next()
		if err != nil {
			return seen, err
		}
		if !ok {
			return seen, nil
		}
		seen = append(seen, v)
		ctx.history.Length += eventsPerItem
	}
}

func TestSafeIterator_UnderBudget(t *testing.T) {
	ctx := &fakeContinuable{limits: HistoryLimits{MaxEvents: 30}}
	var calls []makeArgsCall
	it := NewSafeIterator(ctx, FromSlice(ints(20)), func(v, i int) []any {
		calls = append(calls, makeArgsCall{v, i})
		return []any{v, i}
	})

	seen, err := consume(ctx, it, 1)
	if err != nil {
		t.Fatalf("consume: %v", err)
	}
	if !slices.Equal(seen, ints(20)) {
		t.Errorf("seen = %v", seen)
	}
	if len(ctx.restarts) != 0 || len(calls) != 0 {
		t.Errorf("restart triggered: restarts=%v makeArgs=%v", ctx.restarts, calls)
	}
	if cp := it.Checkpoint(); cp.LastValue != 20 || cp.LastIndex != 19 {
		t.Errorf("checkpoint = %+v", cp)
	}

	// Exhausted iterators stay exhausted.
	if _, ok, err := it.Next(); ok || err != nil {
		t.Errorf("Next after done = %v, %v", ok, err)
	}
}

func TestSafeIterator_RestartAfterFifth(t *testing.T) {
	ctx := &fakeContinuable{limits: HistoryLimits{MaxEvents: 5}}
	src := &countingSource{items: ints(20)}
	var calls []makeArgsCall
	it := NewSafeIterator[int](ctx, src, func(v, i int) []any {
		calls = append(calls, makeArgsCall{v, i})
		return []any{"resume", v, i}
	})

	seen, err := consume(ctx, it, 1)

	var can *ContinueAsNewError
	if !errors.As(err, &can) {
		t.Fatalf("err = %v, want *ContinueAsNewError", err)
	}
	if !slices.Equal(seen, []int{1, 2, 3, 4, 5}) {
		t.Errorf("seen = %v, want 1..5", seen)
	}
	if want := []makeArgsCall{{5, 4}}; !slices.Equal(calls, want) {
		t.Errorf("makeArgs calls = %v, want %v", calls, want)
	}
	if len(ctx.restarts) != 1 || !reflect.DeepEqual(ctx.restarts[0], []any{"resume", 5, 4}) {
		t.Errorf("restarts = %v", ctx.restarts)
	}
	if src.pulled != 5 {
		t.Errorf("pulled %d items, element 6 must never be pulled", src.pulled)
	}
	if !it.Restarting() {
		t.Error("Restarting() = false")
	}

	// The iterator is terminal: the same restart is returned, nothing is pulled.
	_, ok, again := it.Next()
	if ok || again != err || src.pulled != 5 || len(ctx.restarts) != 1 {
		t.Errorf("Next after restart = %v, %v (pulled %d, restarts %d)", ok, again, src.pulled, len(ctx.restarts))
	}
}

func TestSafeIterator_SizeBudget(t *testing.T) {
	ctx := &fakeContinuable{limits: HistoryLimits{MaxEvents: 1 << 20, MaxSize: 100}}
	it := NewSafeIterator(ctx, FromSlice(ints(10)), func(v, i int) []any { return []any{v} })

	var seen []int
	var err error
	for {
		var v int
		var ok bool
		v, ok, err = it.Next()
		if err != nil || !ok {
			break
		}
		seen = append(seen, v)
		ctx.history.Size += 40
	}
	if !IsContinueAsNew(err) {
		t.Fatalf("err = %v", err)
	}
	if !slices.Equal(seen, []int{1, 2, 3}) {
		t.Errorf("seen = %v, want [1 2 3]", seen)
	}
}

func TestSafeIterator_EmptySource(t *testing.T) {
	ctx := &fakeContinuable{limits: HistoryLimits{MaxEvents: 1}, history: api.HistoryInfo{Length: 100}}
	it := NewSafeIterator(ctx, FromSlice([]int{}), func(v, i int) []any {
		t.Error("makeArgs called for an empty source")
		return nil
	})

	seen, err := consume(ctx, it, 1)
	if err != nil || len(seen) != 0 {
		t.Fatalf("consume = %v, %v", seen, err)
	}
	if len(ctx.restarts) != 0 {
		t.Errorf("empty source restarted: %v", ctx.restarts)
	}
	if cp := it.Checkpoint(); cp.LastIndex != -1 {
		t.Errorf("checkpoint index = %d, want -1", cp.LastIndex)
	}
}

func TestSafeIterator_OverBudgetBeforeFirstItem(t *testing.T) {
	// The budget is only checked once an item has been yielded.
	ctx := &fakeContinuable{limits: HistoryLimits{MaxEvents: 1}, history: api.HistoryInfo{Length: 10}}
	var calls []makeArgsCall
	it := NewSafeIterator(ctx, FromSlice(ints(3)), func(v, i int) []any {
		calls = append(calls, makeArgsCall{v, i})
		return nil
	})

	seen, err := consume(ctx, it, 0)
	if !IsContinueAsNew(err) {
		t.Fatalf("err = %v", err)
	}
	if !slices.Equal(seen, []int{1}) || !slices.Equal(calls, []makeArgsCall{{1, 0}}) {
		t.Errorf("seen = %v, calls = %v", seen, calls)
	}
}

func TestSafeIterator_SourceError(t *testing.T) {
	boom := errors.New("page fetch failed")
	seq := func(yield func(int, error) bool) {
		if !yield(1, nil) {
			return
		}
		yield(0, boom)
	}
	ctx := &fakeContinuable{limits: HistoryLimits{MaxEvents: 100}}
	it := NewSafeIterator(ctx, FromSeq2(iter.Seq2[int, error](seq)), func(v, i int) []any { return nil })

	seen, err := consume(ctx, it, 1)
	if err != boom {
		t.Fatalf("err = %v, want %v", err, boom)
	}
	if !slices.Equal(seen, []int{1}) {
		t.Errorf("seen = %v", seen)
	}
	if len(ctx.restarts) != 0 {
		t.Errorf("error path restarted: %v", ctx.restarts)
	}
	if _, _, again := it.Next(); again != boom {
		t.Errorf("terminal error = %v", again)
	}
}

func TestSafeIterator_EagerAndLazyAgree(t *testing.T) {
	type run struct {
		seen     []int
		restarts [][]any
		pulled   int
	}
	drive := func(src Source[int], pulled func() int) run {
		ctx := &fakeContinuable{limits: HistoryLimits{MaxEvents: 14}}
		it := NewSafeIterator(ctx, src, func(v, i int) []any { return []any{v, i} })
		seen, _ := consume(ctx, it, 2)
		return run{seen: seen, restarts: ctx.restarts, pulled: pulled()}
	}

	eager := &countingSource{items: ints(20)}
	lazyPulled := 0
	lazy := FromSeq(func(yield func(int) bool) {
		for i := 1; i <= 20; i++ {
			lazyPulled++
			if !yield(i) {
				return
			}
		}
	})

	a := drive(eager, func() int { return eager.pulled })
	b := drive(lazy, func() int { return lazyPulled })
	if !reflect.DeepEqual(a, b) {
		t.Errorf("eager %+v != lazy %+v", a, b)
	}
	if a.pulled != 7 {
		t.Errorf("pulled %d, want 7", a.pulled)
	}
}

func TestSafeIterator_StopsGenerator(t *testing.T) {
	cleaned := false
	src := FromSeq(func(yield func(int) bool) {
		defer func() { cleaned = true }()
		for i := 0; ; i++ {
			if !yield(i) {
				return
			}
		}
	})
	ctx := &fakeContinuable{limits: HistoryLimits{MaxEvents: 3}}
	it := NewSafeIterator(ctx, src, func(v, i int) []any { return nil })

	if _, err := consume(ctx, it, 1); !IsContinueAsNew(err) {
		t.Fatalf("err = %v", err)
	}
	if !cleaned {
		t.Error("generator was not stopped after restart")
	}
}

func TestSafeIterator_BreakStopsGenerator(t *testing.T) {
	tests := []struct {
		name  string
		drain func(it *SafeIterator[int]) []int
	}{
		{
			name: "break out of All",
			drain: func(it *SafeIterator[int]) []int {
				var seen []int
				for v, err := range it.All() {
					if err != nil {
						break
					}
					seen = append(seen, v)
					if len(seen) == 2 {
						break
					}
				}
				return seen
			},
		},
		{
			name: "deferred Stop after Next",
			drain: func(it *SafeIterator[int]) []int {
				defer it.Stop()
				var seen []int
				for len(seen) < 2 {
					v, ok, err := it.Next()
					if err != nil || !ok {
						break
					}
					seen = append(seen, v)
				}
				return seen
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cleaned := false
			src := FromSeq(func(yield func(int) bool) {
				defer func() { cleaned = true }()
				for i := 1; ; i++ {
					if !yield(i) {
						return
					}
				}
			})
			ctx := &fakeContinuable{limits: HistoryLimits{MaxEvents: 100}}
			it := NewSafeIterator(ctx, src, func(v, i int) []any { return nil })

			seen := tt.drain(it)
			if !slices.Equal(seen, []int{1, 2}) {
				t.Errorf("seen = %v, want [1 2]", seen)
			}
			if !cleaned {
				t.Error("generator cleanup did not run")
			}
			if _, ok, err := it.Next(); ok || err != nil {
				t.Errorf("Next after stop = (%v, %v), want exhausted", ok, err)
			}
			if len(ctx.restarts) != 0 {
				t.Errorf("restarts = %v", ctx.restarts)
			}
		})
	}
}

func TestSafeIterator_All(t *testing.T) {
	ctx := &fakeContinuable{limits: HistoryLimits{MaxEvents: 4}}
	it := NewSafeIterator(ctx, FromSlice(ints(10)), func(v, i int) []any { return []any{v + 1} })

	var seen []int
	var last error
	for v, err := range it.All() {
		if err != nil {
			last = err
			break
		}
		seen = append(seen, v)
		ctx.history.Length++
	}
	if !slices.Equal(seen, []int{1, 2, 3, 4}) {
		t.Errorf("seen = %v", seen)
	}
	var can *ContinueAsNewError
	if !errors.As(last, &can) || !reflect.DeepEqual(can.Args, []any{5}) {
		t.Errorf("last = %v", last)
	}
}

func TestSafeIterator_Options(t *testing.T) {
	ctx := &fakeContinuable{}
	it := NewSafeIterator(ctx, FromSlice(ints(1)), func(int, int) []any { return nil })
	if got := it.Limits(); got != DefaultHistoryLimits() {
		t.Errorf("default limits = %+v", got)
	}

	ctx.limits = HistoryLimits{MaxEvents: 50, MaxSize: 500}
	it = NewSafeIterator(ctx, FromSlice(ints(1)), func(int, int) []any { return nil }, WithMaxHistoryEvents(7))
	if got := it.Limits(); got != (HistoryLimits{MaxEvents: 7, MaxSize: 500}) {
		t.Errorf("limits = %+v", got)
	}
	it = NewSafeIterator(ctx, FromSlice(ints(1)), func(int, int) []any { return nil }, WithMaxHistorySize(9))
	if got := it.Limits(); got != (HistoryLimits{MaxEvents: 50, MaxSize: 9}) {
		t.Errorf("limits = %+v", got)
	}
}

func TestSafeIterator_NilMakeArgs(t *testing.T) {
	it := NewSafeIterator[int](&fakeContinuable{}, FromSlice(ints(3)), nil)
	if _, ok, err := it.Next(); ok || err == nil {
		t.Errorf("Next = %v, %v; want error", ok, err)
	}
}
