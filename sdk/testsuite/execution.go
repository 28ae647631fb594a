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
	"log/slog"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/ngnhng/typedflow/api"
	"github.com/ngnhng/typedflow/sdk/client"
	"github.com/ngnhng/typedflow/sdk/internal"
)

type pendingSignal struct {
	name string
	args []any
}

// execution is one workflow ID. Its attempts run one after the other on a
// single goroutine; mu is held whenever workflow code, a handler or a
// completion callback runs.
type execution struct {
	env *Environment
	id  api.WorkflowID

	mu   sync.Mutex
	cond *sync.Cond

	workflowType string
	taskQueue    string
	args         []any
	attempt      *attempt
	runs         int

	status api.ExecutionStatus
	result any
	err    error
	closed bool
	// closedFlag mirrors closed for readers that do not hold mu.
	closedFlag atomic.Bool
	// parked is true while the workflow goroutine waits for a state change.
	parked bool

	searchAttributes api.SearchAttributes
	pending          []pendingSignal
	logger           *slog.Logger
}

func newExecution(env *Environment, req api.StartWorkflowRequest, args []any) *execution {
	e := &execution{
		env:              env,
		id:               req.WorkflowID,
		workflowType:     req.WorkflowType,
		taskQueue:        req.TaskQueue,
		args:             args,
		status:           api.StatusRunning,
		searchAttributes: cloneAttributes(req.SearchAttributes),
		logger:           env.logger.With("workflow_id", req.WorkflowID),
	}
	e.cond = sync.NewCond(&e.mu)
	e.attempt = e.newAttempt()
	return e
}

// run drives attempts until the execution closes.
func (e *execution) run(ctx context.Context) {
	e.mu.Lock()
	defer e.mu.Unlock()

	for {
		a := e.attempt
		out := e.env.worker.Invoke(ctx, a, e.workflowType, a.args())
		if e.closed {
			return
		}

		switch out.Kind {
		case internal.OutcomeCompleted:
			result, err := e.env.encodeValue(out.Result)
			if err != nil {
				e.fail(err)
				return
			}
			a.record(&api.WorkflowCompleted{ID: e.id, WorkflowType: e.workflowType, Result: result})
			e.close(api.StatusCompleted, result, nil)
			return

		case internal.OutcomeFailed:
			e.fail(out.Err)
			return

		case internal.OutcomeRestarting:
			args, err := e.env.encode(out.Restart.Args)
			if err != nil {
				e.fail(err)
				return
			}
			a.canceled = true
			e.workflowType = out.Restart.WorkflowType
			if out.Restart.Options.TaskQueue != "" {
				e.taskQueue = out.Restart.Options.TaskQueue
			}
			e.args = args
			e.attempt = e.newAttempt()
			e.logger.Debug("execution continued as new", "workflow_type", e.workflowType, "runs", e.runs)

		default:
			e.fail(fmt.Errorf("workflow %s suspended with no pending work", e.workflowType))
			return
		}
	}
}

func (e *execution) newAttempt() *attempt {
	e.runs++
	a := &attempt{
		exec: e,
		info: api.WorkflowInfo{
			Namespace:    e.env.worker.Namespace().Name,
			WorkflowType: e.workflowType,
			WorkflowID:   e.id,
			RunID:        api.RunID(newID()),
			TaskQueue:    e.taskQueue,
			Attempt:      e.runs,
			StartTime:    time.Now().UTC(),
		},
		input:   e.args,
		signals: make(map[api.ChannelHandle]internal.SignalHandler),
		queries: make(map[api.ChannelHandle]internal.QueryHandler),
	}
	a.record(&api.WorkflowStarted{ID: e.id, RunID: a.info.RunID, WorkflowType: e.workflowType, Input: e.args})
	e.status = api.StatusRunning
	return a
}

func (e *execution) fail(err error) {
	e.attempt.record(&api.WorkflowFailed{ID: e.id, WorkflowType: e.workflowType, Error: err.Error()})
	e.logger.Debug("execution failed", "error", err)
	e.close(api.StatusFailed, nil, err)
}

// close must be called with mu held.
func (e *execution) close(status api.ExecutionStatus, result any, err error) {
	e.status = status
	e.result = result
	e.err = err
	e.closed = true
	e.closedFlag.Store(true)
	e.attempt.canceled = true
	e.cond.Broadcast()
}

func (e *execution) terminate(reason string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return fmt.Errorf("%s: %w", e.id, client.ErrWorkflowClosed)
	}
	e.close(api.StatusTerminated, nil, fmt.Errorf("%s: %w", reason, client.ErrWorkflowTerminated))
	return nil
}

// block parks the workflow goroutine until ready reports true or the
// attempt is over. Called with mu held.
func (e *execution) block(a *attempt, ready func() bool) error {
	for !ready() {
		if a.canceled {
			return internal.ErrCanceled
		}
		e.parked = true
		e.cond.Broadcast()
		e.cond.Wait()
		e.parked = false
	}
	return nil
}

// settle wakes the workflow after a state change made from outside it and
// waits until it parks again or closes.
func (e *execution) settle() {
	e.parked = false
	e.cond.Broadcast()
	for !e.parked && !e.closed {
		e.cond.Wait()
	}
}

func (e *execution) describe() api.ExecutionDescription {
	e.mu.Lock()
	defer e.mu.Unlock()
	return api.ExecutionDescription{
		Info:             e.attempt.info,
		Status:           e.status,
		Runs:             e.runs,
		History:          e.attempt.history,
		SearchAttributes: cloneAttributes(e.searchAttributes),
	}
}

// record appends ev to the attempt history. Sizes are the msgpack encoding
// of each event.
func (a *attempt) record(ev api.HistoryEvent) {
	a.events = append(a.events, ev)
	a.history.Length++
	if data, err := msgpack.Marshal(ev); err == nil {
		a.history.Size += len(data)
	}
}

func cloneAttributes(attrs api.SearchAttributes) api.SearchAttributes {
	out := make(api.SearchAttributes, len(attrs))
	for k, v := range attrs {
		out[k] = slices.Clone(v)
	}
	return out
}

func mergeAttributes(dst, src api.SearchAttributes) {
	for k, v := range src {
		if len(v) == 0 {
			delete(dst, k)
			continue
		}
		dst[k] = slices.Clone(v)
	}
}
