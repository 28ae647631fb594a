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

package testsuite

import (
	"context"
	"fmt"

	"github.com/ngnhng/typedflow/api"
	"github.com/ngnhng/typedflow/sdk/internal"
)

var _ internal.Runtime = (*attempt)(nil)

// attempt is the Runtime of one execution attempt. Every method is called
// with the execution's mutex held.
type attempt struct {
	exec *execution
	info api.WorkflowInfo

	input    []any
	events   []api.HistoryEvent
	history  api.HistoryInfo
	seq      int
	canceled bool

	signals map[api.ChannelHandle]internal.SignalHandler
	queries map[api.ChannelHandle]internal.QueryHandler
}

func (a *attempt) args() []any { return a.input }

func (a *attempt) WorkflowInfo() api.WorkflowInfo { return a.info }
func (a *attempt) HistoryInfo() api.HistoryInfo   { return a.history }
func (a *attempt) IsReplaying() bool              { return false }

func (a *attempt) DefineChannel(kind api.ChannelKind, name string) (api.ChannelHandle, error) {
	return api.ChannelHandle{Kind: kind, Name: name}, nil
}

// SetSignalHandler installs h and hands it every buffered signal of the
// same name, oldest first.
func (a *attempt) SetSignalHandler(handle api.ChannelHandle, h internal.SignalHandler) error {
	a.signals[handle] = h

	e := a.exec
	kept := e.pending[:0]
	var deliver []pendingSignal
	for _, s := range e.pending {
		if s.name == handle.Name {
			deliver = append(deliver, s)
			continue
		}
		kept = append(kept, s)
	}
	e.pending = kept
	for _, s := range deliver {
		if err := h(s.args); err != nil {
			e.logger.Warn("buffered signal rejected by handler", "signal", s.name, "error", err)
		}
	}
	return nil
}

func (a *attempt) SetQueryHandler(handle api.ChannelHandle, h internal.QueryHandler) error {
	a.queries[handle] = h
	return nil
}

func (a *attempt) receiveSignal(name string, args []any) error {
	a.record(&api.SignalReceived{ID: a.info.WorkflowID, SignalName: name, Input: args})
	h, ok := a.signals[api.ChannelHandle{Kind: api.SignalChannel, Name: name}]
	if !ok {
		a.exec.pending = append(a.exec.pending, pendingSignal{name: name, args: args})
		return nil
	}
	return h(args)
}

// ExecuteActivity runs local activities inline and the rest on the
// environment's goroutine group.
func (a *attempt) ExecuteActivity(name string, opts api.ActivityOptions, local bool, args []any) internal.Future {
	env := a.exec.env
	a.seq++
	seq := a.seq
	f := &future{a: a}

	input, err := env.encode(args)
	if err != nil {
		f.settle(nil, err)
		return f
	}
	a.record(&api.ActivityScheduled{ID: a.info.WorkflowID, Seq: seq, ActivityName: name, Local: local, Input: input})

	if _, ok := env.worker.Activity(name); !ok {
		a.complete(f, seq, name, nil, fmt.Errorf("%s: %w", name, internal.ErrActivityNotRegistered))
		return f
	}

	info := internal.ActivityInfo{Name: name, Local: local, Workflow: a.info}
	if local {
		result, err := env.worker.ExecuteActivity(env.ctx, info, input)
		a.complete(f, seq, name, result, err)
		return f
	}

	e := a.exec
	env.group.Go(func() error {
		ctx := env.ctx
		if opts.StartToCloseTimeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, opts.StartToCloseTimeout)
			defer cancel()
		}
		result, err := env.worker.ExecuteActivity(ctx, info, input)

		e.mu.Lock()
		defer e.mu.Unlock()
		if a.canceled {
			return nil
		}
		a.complete(f, seq, name, result, err)
		e.cond.Broadcast()
		return nil
	})
	return f
}

func (a *attempt) complete(f *future, seq int, name string, result any, err error) {
	if err == nil {
		result, err = a.exec.env.encodeValue(result)
	}
	if err != nil {
		a.record(&api.ActivityFailed{ID: a.info.WorkflowID, Seq: seq, ActivityName: name, Error: err.Error()})
		f.settle(nil, &internal.ActivityError{ActivityName: name, WorkflowID: a.info.WorkflowID, Cause: err})
		return
	}
	a.record(&api.ActivityCompleted{ID: a.info.WorkflowID, Seq: seq, ActivityName: name, Result: result})
	f.settle(result, nil)
}

func (a *attempt) StartChild(workflowType string, opts api.ChildWorkflowOptions, args []any) internal.ChildWorkflowRun {
	e := a.exec
	env := e.env
	childID := opts.WorkflowID
	if childID == "" {
		childID = api.WorkflowID(newID())
	}
	run := &childRun{env: env, id: childID, result: &future{a: a}}
	a.record(&api.ChildWorkflowStarted{ID: a.info.WorkflowID, ChildID: childID, WorkflowType: workflowType, Input: args})

	_, _, err := env.start(api.StartWorkflowRequest{
		WorkflowID:       childID,
		WorkflowType:     workflowType,
		TaskQueue:        opts.TaskQueue,
		Args:             args,
		SearchAttributes: opts.SearchAttributes,
	})
	if err != nil {
		run.result.settle(nil, &internal.ChildWorkflowError{WorkflowType: workflowType, WorkflowID: childID, Cause: err})
		return run
	}

	env.group.Go(func() error {
		result, err := env.GetResult(env.ctx, childID)

		e.mu.Lock()
		defer e.mu.Unlock()
		if a.canceled {
			return nil
		}
		ev := &api.ChildWorkflowCompleted{ID: a.info.WorkflowID, ChildID: childID, Result: result}
		if err != nil {
			ev.Error = err.Error()
			err = &internal.ChildWorkflowError{WorkflowType: workflowType, WorkflowID: childID, Cause: err}
		}
		a.record(ev)
		run.result.settle(result, err)
		e.cond.Broadcast()
		return nil
	})
	return run
}

func (a *attempt) ContinueAsNew(workflowType string, opts api.ContinueAsNewOptions, args []any) error {
	a.record(&api.ContinuedAsNew{ID: a.info.WorkflowID, WorkflowType: workflowType, TaskQueue: opts.TaskQueue, Input: args})
	return nil
}

func (a *attempt) UpsertSearchAttributes(attrs api.SearchAttributes) error {
	mergeAttributes(a.exec.searchAttributes, attrs)
	a.record(&api.SearchAttributesUpserted{ID: a.info.WorkflowID, Attributes: attrs})
	return nil
}

// CallSink is fire-and-forget: failures are logged by the worker and never
// reach the workflow.
func (a *attempt) CallSink(sink, function string, args []any) error {
	env := a.exec.env
	info := api.SinkInfo{
		Namespace:    a.info.Namespace,
		WorkflowType: a.info.WorkflowType,
		WorkflowID:   a.info.WorkflowID,
		RunID:        a.info.RunID,
	}
	input, err := env.encode(args)
	if err != nil {
		a.exec.logger.Warn("sink call dropped", "sink", sink, "function", function, "error", err)
		return nil
	}
	_ = env.worker.CallSink(env.ctx, info, sink, function, input)
	return nil
}

func (a *attempt) Await(cond func() bool) error {
	return a.exec.block(a, cond)
}

type childRun struct {
	env    *Environment
	id     api.WorkflowID
	result *future
}

func (r *childRun) WorkflowID() api.WorkflowID { return r.id }
func (r *childRun) Result() internal.Future    { return r.result }

func (r *childRun) Signal(name string, args ...any) error {
	return r.env.SignalWorkflow(r.env.ctx, r.id, name, args)
}
