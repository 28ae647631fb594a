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
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"sync"

	"github.com/gofrs/uuid/v5"
	"golang.org/x/sync/errgroup"

	"github.com/ngnhng/typedflow/api"
	"github.com/ngnhng/typedflow/api/serde"
	"github.com/ngnhng/typedflow/sdk/client"
	"github.com/ngnhng/typedflow/sdk/worker"
)

var _ client.Backend = (*Environment)(nil)

// Options configures an Environment.
type Options struct {
	// Serde encodes every payload crossing the engine boundary, so workflows
	// and activities see decoded values the way a remote engine delivers
	// them. Defaults to msgpack.
	Serde  serde.BinarySerde
	Logger *slog.Logger
}

// Environment is an in-memory engine running the workflows and activities of
// one worker. Each execution runs on its own goroutine guarded by a mutex;
// workflow code, signal handlers and queries take turns on it, and futures
// and Await park the workflow on a condition variable until state changes.
//
// Environment implements client.Backend:
//
//	env := testsuite.NewEnvironment(w, nil)
//	defer env.Close()
//	c, _ := client.NewClient(&client.Options{Namespace: w.Namespace(), Backend: env})
type Environment struct {
	worker *worker.Worker
	codec  serde.BinarySerde
	logger *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	group  *errgroup.Group

	mu         sync.Mutex
	executions map[api.WorkflowID]*execution
	order      []api.WorkflowID
}

func NewEnvironment(w *worker.Worker, opts *Options) *Environment {
	if opts == nil {
		opts = &Options{}
	}
	codec := opts.Serde
	if codec == nil {
		codec = serde.Default()
	}
	logger := opts.Logger
	if logger == nil {
		logger = w.Logger()
	}

	ctx, cancel := context.WithCancel(context.Background())
	g, gctx := errgroup.WithContext(ctx)
	return &Environment{
		worker:     w,
		codec:      codec,
		logger:     logger.With("component", "testsuite"),
		ctx:        gctx,
		cancel:     cancel,
		group:      g,
		executions: make(map[api.WorkflowID]*execution),
	}
}

// Close terminates every running execution and waits for their goroutines
// and in-flight activities.
func (env *Environment) Close() error {
	env.mu.Lock()
	execs := slices.Collect(maps.Values(env.executions))
	env.mu.Unlock()

	for _, e := range execs {
		if err := e.terminate("environment closed"); err != nil && !errors.Is(err, client.ErrWorkflowClosed) {
			env.logger.Warn("failed to terminate execution", "workflow_id", e.id, "error", err)
		}
	}
	env.cancel()
	return env.group.Wait()
}

func (env *Environment) StartWorkflow(_ context.Context, req api.StartWorkflowRequest) (api.WorkflowID, api.RunID, error) {
	return env.start(req)
}

// start returns once the first attempt is suspended or closed.
func (env *Environment) start(req api.StartWorkflowRequest) (api.WorkflowID, api.RunID, error) {
	if !slices.Contains(env.worker.Workflows(), req.WorkflowType) {
		return "", "", fmt.Errorf("%s: %w", req.WorkflowType, worker.ErrWorkflowNotRegistered)
	}
	args, err := env.encode(req.Args)
	if err != nil {
		return "", "", err
	}
	if req.WorkflowID == "" {
		req.WorkflowID = api.WorkflowID(newID())
	}
	if req.TaskQueue == "" {
		req.TaskQueue = env.worker.Namespace().DefaultTaskQueue()
	}

	env.mu.Lock()
	if prev, ok := env.executions[req.WorkflowID]; ok && !prev.closedFlag.Load() {
		env.mu.Unlock()
		return "", "", fmt.Errorf("%s: %w", req.WorkflowID, client.ErrWorkflowAlreadyRunning)
	}
	e := newExecution(env, req, args)
	if _, ok := env.executions[req.WorkflowID]; !ok {
		env.order = append(env.order, req.WorkflowID)
	}
	env.executions[req.WorkflowID] = e
	env.mu.Unlock()

	e.mu.Lock()
	defer e.mu.Unlock()
	env.group.Go(func() error {
		e.run(env.ctx)
		return nil
	})
	for !e.parked && !e.closed {
		e.cond.Wait()
	}
	return e.id, e.attempt.info.RunID, nil
}

func (env *Environment) lookup(id api.WorkflowID) (*execution, error) {
	env.mu.Lock()
	defer env.mu.Unlock()
	e, ok := env.executions[id]
	if !ok {
		return nil, fmt.Errorf("%s: %w", id, client.ErrWorkflowNotFound)
	}
	return e, nil
}

// SignalWorkflow delivers a signal and returns once the workflow has reacted
// to it. Signals without a handler are buffered until one is set, across
// continue-as-new restarts.
func (env *Environment) SignalWorkflow(_ context.Context, id api.WorkflowID, signal string, args []any) error {
	e, err := env.lookup(id)
	if err != nil {
		return err
	}
	payload, err := env.encode(args)
	if err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return fmt.Errorf("%s: %w", id, client.ErrWorkflowClosed)
	}
	err = e.attempt.receiveSignal(signal, payload)
	e.settle()
	return err
}

func (env *Environment) QueryWorkflow(_ context.Context, id api.WorkflowID, query string, args []any) (any, error) {
	e, err := env.lookup(id)
	if err != nil {
		return nil, err
	}
	payload, err := env.encode(args)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	h, ok := e.attempt.queries[api.ChannelHandle{Kind: api.QueryChannel, Name: query}]
	if !ok {
		return nil, fmt.Errorf("%s: %w", query, client.ErrQueryNotFound)
	}
	result, err := h(payload)
	if err != nil {
		return nil, err
	}
	return env.encodeValue(result)
}

// GetResult waits until the execution is closed.
func (env *Environment) GetResult(ctx context.Context, id api.WorkflowID) (any, error) {
	e, err := env.lookup(id)
	if err != nil {
		return nil, err
	}
	stop := context.AfterFunc(ctx, func() {
		e.mu.Lock()
		e.cond.Broadcast()
		e.mu.Unlock()
	})
	defer stop()

	e.mu.Lock()
	defer e.mu.Unlock()
	for !e.closed {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		e.cond.Wait()
	}
	return e.result, e.err
}

func (env *Environment) DescribeWorkflow(_ context.Context, id api.WorkflowID) (api.ExecutionDescription, error) {
	e, err := env.lookup(id)
	if err != nil {
		return api.ExecutionDescription{}, err
	}
	return e.describe(), nil
}

// ListWorkflows returns the matching executions in start order.
func (env *Environment) ListWorkflows(_ context.Context, filter api.ListFilter) ([]api.ExecutionDescription, error) {
	env.mu.Lock()
	execs := make([]*execution, 0, len(env.order))
	for _, id := range env.order {
		execs = append(execs, env.executions[id])
	}
	env.mu.Unlock()

	var out []api.ExecutionDescription
	for _, e := range execs {
		desc := e.describe()
		if matches(desc, filter) {
			out = append(out, desc)
		}
	}
	return out, nil
}

func (env *Environment) TerminateWorkflow(_ context.Context, id api.WorkflowID, reason string) error {
	e, err := env.lookup(id)
	if err != nil {
		return err
	}
	return e.terminate(reason)
}

// History returns the events of the execution's current attempt.
func (env *Environment) History(id api.WorkflowID) ([]api.HistoryEvent, error) {
	e, err := env.lookup(id)
	if err != nil {
		return nil, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return slices.Clone(e.attempt.events), nil
}

// encode round-trips values through the payload codec.
func (env *Environment) encode(values []any) ([]any, error) {
	if len(values) == 0 {
		return []any{}, nil
	}
	data, err := env.codec.SerializeBinary(values)
	if err != nil {
		return nil, fmt.Errorf("encode payload: %w", err)
	}
	var out []any
	if err := env.codec.DeserializeBinary(data, &out); err != nil {
		return nil, fmt.Errorf("decode payload: %w", err)
	}
	return out, nil
}

func (env *Environment) encodeValue(v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	out, err := env.encode([]any{v})
	if err != nil {
		return nil, err
	}
	return out[0], nil
}

func matches(desc api.ExecutionDescription, filter api.ListFilter) bool {
	if filter.WorkflowType != "" && desc.Info.WorkflowType != filter.WorkflowType {
		return false
	}
	if filter.Status != "" && desc.Status != filter.Status {
		return false
	}
	for name, want := range filter.SearchAttributes {
		have := desc.SearchAttributes[name]
		for _, w := range want {
			if !slices.ContainsFunc(have, func(h any) bool { return fmt.Sprint(h) == fmt.Sprint(w) }) {
				return false
			}
		}
	}
	return true
}

func newID() string {
	return uuid.Must(uuid.NewV7()).String()
}
