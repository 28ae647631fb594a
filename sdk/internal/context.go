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

	"github.com/ngnhng/typedflow/api"
	"github.com/ngnhng/typedflow/api/serde"
)

// Context is passed as the first argument of every workflow function. It is
// built fresh for each execution attempt and exposes the channels, activities
// and continuation helpers of the workflow type being run.
type Context interface {
	context.Context
	Continuable

	WorkflowType() string
	WorkflowInfo() api.WorkflowInfo
	IsReplaying() bool
	Declaration() Declaration
	// Logger returns a logger that is silent while the engine replays.
	Logger() *slog.Logger
	Converter() *serde.TypeConverter

	// SetSignalHandler attaches fn to a declared signal. fn is
	// func(T1, ..., Tn) or func(T1, ..., Tn) error.
	SetSignalHandler(name string, fn any) error
	// SetQueryHandler attaches fn to a declared query. fn is
	// func(T1, ..., Tn) R or func(T1, ..., Tn) (R, error).
	SetQueryHandler(name string, fn any) error
	Channels() *ChannelRegistry

	// Activities exposes every activity of the namespace by its full name.
	Activities(opts api.ActivityOptions) ActivitySet
	LocalActivities(opts api.ActivityOptions) ActivitySet
	// ScopedActivities exposes only the activities scoped to this workflow
	// type, by their bare name.
	ScopedActivities(opts api.ActivityOptions) ActivitySet

	// NewContinueAsNewFunc returns a ContinueAsNew bound to opts.
	NewContinueAsNewFunc(opts api.ContinueAsNewOptions) func(args ...any) error

	ExecuteChild(workflowType string, opts api.ChildWorkflowOptions, args ...any) Future
	StartChild(workflowType string, opts api.ChildWorkflowOptions, args ...any) (ChildWorkflowRun, error)

	UpsertSearchAttributes(attrs api.SearchAttributes) error
	Sink(name string) Sink

	// Await blocks until cond is true, letting signal handlers run.
	Await(cond func() bool) error

	WithValue(key any, value any) Context
}

var _ Context = (*executionContext)(nil)

type executionContext struct {
	context.Context
	*executionState
}

// executionState is shared by an attempt's context and the contexts derived
// from it with WithValue.
type executionState struct {
	rt        Runtime
	ns        *Namespace
	decl      Declaration
	channels  *ChannelRegistry
	converter *serde.TypeConverter
	logger    *slog.Logger
	limits    HistoryLimits
	restart   *ContinueAsNewError
}

func newExecutionContext(parent context.Context, rt Runtime, ns *Namespace, decl Declaration, conv *serde.TypeConverter, logger *slog.Logger, limits HistoryLimits) *executionContext {
	if parent == nil {
		parent = context.Background()
	}
	info := rt.WorkflowInfo()
	state := &executionState{
		rt:        rt,
		ns:        ns,
		decl:      decl,
		channels:  newChannelRegistry(rt, decl),
		converter: conv,
		limits:    limits.withDefaults(),
	}
	state.logger = newReplayAwareLogger(logger, rt.IsReplaying).With(
		"workflow_type", decl.Name,
		"workflow_id", info.WorkflowID.String(),
		"run_id", info.RunID.String(),
	)
	return &executionContext{Context: parent, executionState: state}
}

func (c *executionContext) WorkflowType() string            { return c.decl.Name }
func (c *executionContext) WorkflowInfo() api.WorkflowInfo  { return c.rt.WorkflowInfo() }
func (c *executionContext) HistoryInfo() api.HistoryInfo    { return c.rt.HistoryInfo() }
func (c *executionContext) HistoryLimits() HistoryLimits    { return c.limits }
func (c *executionContext) IsReplaying() bool               { return c.rt.IsReplaying() }
func (c *executionContext) Declaration() Declaration        { return c.decl }
func (c *executionContext) Logger() *slog.Logger            { return c.logger }
func (c *executionContext) Converter() *serde.TypeConverter { return c.converter }
func (c *executionContext) Channels() *ChannelRegistry      { return c.channels }
func (c *executionContext) Await(cond func() bool) error    { return c.rt.Await(cond) }

func (c *executionContext) SetSignalHandler(name string, fn any) error {
	h, err := newSignalHandler(fn, c.converter)
	if err != nil {
		return fmt.Errorf("signal %s: %w", name, err)
	}
	return c.channels.SetSignalHandler(name, h)
}

func (c *executionContext) SetQueryHandler(name string, fn any) error {
	h, err := newQueryHandler(fn, c.converter)
	if err != nil {
		return fmt.Errorf("query %s: %w", name, err)
	}
	return c.channels.SetQueryHandler(name, h)
}

func (c *executionContext) Activities(opts api.ActivityOptions) ActivitySet {
	return NewActivitySet(c.activityLookup(opts, false))
}

func (c *executionContext) LocalActivities(opts api.ActivityOptions) ActivitySet {
	return NewActivitySet(c.activityLookup(opts, true))
}

func (c *executionContext) ScopedActivities(opts api.ActivityOptions) ActivitySet {
	return NewActivitySet(ForWorkflowType(c.activityLookup(opts, false), c.decl.Name))
}

func (c *executionContext) activityLookup(opts api.ActivityOptions, local bool) ActivityLookup {
	return catalogLookup{
		catalog: c.ns.Activities,
		bind: func(name string) ActivityHandle {
			return func(args ...any) Future {
				if c.restart != nil {
					return NewFailedFuture(fmt.Errorf("activity %s: %w", name, ErrCanceled))
				}
				return c.rt.ExecuteActivity(name, opts, local, args)
			}
		},
	}
}

// ContinueAsNew records a restart of the current workflow type with args and
// returns the error the workflow function must return.
func (c *executionContext) ContinueAsNew(args ...any) error {
	return c.NewContinueAsNewFunc(api.ContinueAsNewOptions{})(args...)
}

func (c *executionContext) NewContinueAsNewFunc(opts api.ContinueAsNewOptions) func(args ...any) error {
	if opts.WorkflowType == "" {
		opts.WorkflowType = c.decl.Name
	}
	if opts.TaskQueue == "" {
		opts.TaskQueue = c.rt.WorkflowInfo().TaskQueue
	}
	return func(args ...any) error {
		if _, ok := c.ns.Workflow(opts.WorkflowType); !ok && opts.WorkflowType != c.decl.Name {
			return fmt.Errorf("continue as new %s: %w", opts.WorkflowType, ErrWorkflowNotDeclared)
		}
		if c.restart == nil {
			c.restart = &ContinueAsNewError{WorkflowType: opts.WorkflowType, Args: args, Options: opts}
			c.logger.Debug("continue as new requested",
				"next_workflow_type", opts.WorkflowType,
				"history_length", c.rt.HistoryInfo().Length,
				"history_size", c.rt.HistoryInfo().Size,
			)
		}
		return c.restart
	}
}

func (c *executionContext) StartChild(workflowType string, opts api.ChildWorkflowOptions, args ...any) (ChildWorkflowRun, error) {
	if c.restart != nil {
		return nil, fmt.Errorf("child %s: %w", workflowType, ErrCanceled)
	}
	if _, ok := c.ns.Workflow(workflowType); !ok {
		return nil, fmt.Errorf("child %s: %w", workflowType, ErrWorkflowNotDeclared)
	}
	if err := ValidateSearchAttributes(c.ns.SearchAttributes, opts.SearchAttributes); err != nil {
		return nil, fmt.Errorf("child %s: %w", workflowType, err)
	}
	if opts.TaskQueue == "" {
		opts.TaskQueue = c.rt.WorkflowInfo().TaskQueue
	}
	return c.rt.StartChild(workflowType, opts, args), nil
}

func (c *executionContext) ExecuteChild(workflowType string, opts api.ChildWorkflowOptions, args ...any) Future {
	run, err := c.StartChild(workflowType, opts, args...)
	if err != nil {
		return NewFailedFuture(err)
	}
	return run.Result()
}

func (c *executionContext) UpsertSearchAttributes(attrs api.SearchAttributes) error {
	if err := ValidateSearchAttributes(c.ns.SearchAttributes, attrs); err != nil {
		return err
	}
	return c.rt.UpsertSearchAttributes(attrs)
}

func (c *executionContext) Sink(name string) Sink {
	return Sink{ctx: c, name: name}
}

func (c *executionContext) WithValue(key any, value any) Context {
	return &executionContext{
		Context:        context.WithValue(c.Context, key, value),
		executionState: c.executionState,
	}
}

// Sink forwards fire-and-forget calls from workflow code to worker-side
// exporters. Calls are skipped while replaying so each is exported once.
type Sink struct {
	ctx  *executionContext
	name string
}

func (s Sink) Call(function string, args ...any) error {
	if !s.ctx.ns.HasSink(s.name, function) {
		return fmt.Errorf("%s.%s: %w", s.name, function, ErrUndeclaredSink)
	}
	if s.ctx.rt.IsReplaying() {
		return nil
	}
	return s.ctx.rt.CallSink(s.name, function, args)
}
