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
	"fmt"

	"github.com/ngnhng/typedflow/api"
	"github.com/ngnhng/typedflow/api/serde"
)

type continueCall struct {
	workflowType string
	opts         api.ContinueAsNewOptions
	args         []any
}

type sinkCall struct {
	sink, function string
	args           []any
}

// fakeRuntime records every engine primitive called on it. Activities run
// inline and add two history events each.
type fakeRuntime struct {
	info      api.WorkflowInfo
	history   api.HistoryInfo
	replaying bool

	defined  []api.ChannelHandle
	signals  map[api.ChannelHandle]SignalHandler
	queries  map[api.ChannelHandle]QueryHandler
	defineFn func(kind api.ChannelKind, name string) (api.ChannelHandle, error)

	activities    map[string]func(args []any) (any, error)
	activityCalls []string
	pending       map[string]bool

	continued []continueCall
	upserts   []api.SearchAttributes
	sinks     []sinkCall
	children  []string

	conv *serde.TypeConverter
}

func newFakeRuntime(workflowType string) *fakeRuntime {
	return &fakeRuntime{
		info: api.WorkflowInfo{
			Namespace:    "test",
			WorkflowType: workflowType,
			WorkflowID:   "wf-1",
			RunID:        "run-1",
			TaskQueue:    "tq",
			Attempt:      1,
		},
		signals:    make(map[api.ChannelHandle]SignalHandler),
		queries:    make(map[api.ChannelHandle]QueryHandler),
		activities: make(map[string]func(args []any) (any, error)),
		pending:    make(map[string]bool),
		conv:       serde.NewTypeConverter(nil),
	}
}

func (r *fakeRuntime) WorkflowInfo() api.WorkflowInfo { return r.info }
func (r *fakeRuntime) HistoryInfo() api.HistoryInfo   { return r.history }
func (r *fakeRuntime) IsReplaying() bool              { return r.replaying }

func (r *fakeRuntime) DefineChannel(kind api.ChannelKind, name string) (api.ChannelHandle, error) {
	if r.defineFn != nil {
		return r.defineFn(kind, name)
	}
	h := api.ChannelHandle{Kind: kind, Name: name}
	r.defined = append(r.defined, h)
	return h, nil
}

func (r *fakeRuntime) SetSignalHandler(h api.ChannelHandle, fn SignalHandler) error {
	r.signals[h] = fn
	return nil
}

func (r *fakeRuntime) SetQueryHandler(h api.ChannelHandle, fn QueryHandler) error {
	r.queries[h] = fn
	return nil
}

func (r *fakeRuntime) signal(name string, args ...any) error {
	h, ok := r.signals[api.ChannelHandle{Kind: api.SignalChannel, Name: name}]
	if !ok {
		return fmt.Errorf("no handler for signal %s", name)
	}
	return h(args)
}

func (r *fakeRuntime) query(name string, args ...any) (any, error) {
	h, ok := r.queries[api.ChannelHandle{Kind: api.QueryChannel, Name: name}]
	if !ok {
		return nil, fmt.Errorf("no handler for query %s", name)
	}
	return h(args)
}

func (r *fakeRuntime) ExecuteActivity(name string, _ api.ActivityOptions, _ bool, args []any) Future {
	r.activityCalls = append(r.activityCalls, name)
	if r.pending[name] {
		return NewPendingFuture()
	}
	fn, ok := r.activities[name]
	if !ok {
		return NewFailedFuture(fmt.Errorf("%s: %w", name, ErrActivityNotRegistered))
	}
	r.history.Length += 2
	v, err := fn(args)
	return NewSettledFuture(v, err, r.conv, nil)
}

type fakeChild struct {
	id     api.WorkflowID
	result Future
}

func (c fakeChild) WorkflowID() api.WorkflowID  { return c.id }
func (c fakeChild) Result() Future              { return c.result }
func (c fakeChild) Signal(string, ...any) error { return nil }

func (r *fakeRuntime) StartChild(workflowType string, _ api.ChildWorkflowOptions, args []any) ChildWorkflowRun {
	r.children = append(r.children, workflowType)
	return fakeChild{id: api.WorkflowID("child-" + workflowType), result: NewSettledFuture(len(args), nil, r.conv, nil)}
}

func (r *fakeRuntime) ContinueAsNew(workflowType string, opts api.ContinueAsNewOptions, args []any) error {
	r.continued = append(r.continued, continueCall{workflowType: workflowType, opts: opts, args: args})
	return nil
}

func (r *fakeRuntime) UpsertSearchAttributes(attrs api.SearchAttributes) error {
	r.upserts = append(r.upserts, attrs)
	return nil
}

func (r *fakeRuntime) CallSink(sink, function string, args []any) error {
	r.sinks = append(r.sinks, sinkCall{sink: sink, function: function, args: args})
	return nil
}

func (r *fakeRuntime) Await(cond func() bool) error {
	if !cond() {
		panic(ErrorBlockingFuture{})
	}
	return nil
}
