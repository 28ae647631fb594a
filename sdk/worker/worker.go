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

package worker

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/ngnhng/typedflow/api"
	"github.com/ngnhng/typedflow/api/serde"
	"github.com/ngnhng/typedflow/sdk/internal"
	"github.com/ngnhng/typedflow/sdk/workflow"
)

// Options contains configuration for creating a new Worker.
type Options struct {
	// Serde decodes arguments and results. Defaults to msgpack.
	Serde  serde.BinarySerde
	Logger *slog.Logger
	// Limits are the default history limits of SafeIterators built by
	// workflows of this worker.
	Limits workflow.HistoryLimits
}

// Exporter receives every sink call made by the worker's workflows.
type Exporter interface {
	Export(ctx context.Context, record api.SinkRecord) error
}

// ActivityInfo describes the activity call an activity function is serving.
type ActivityInfo = internal.ActivityInfo

// GetActivityInfo returns the ActivityInfo of the activity ctx was passed to.
func GetActivityInfo(ctx context.Context) (ActivityInfo, bool) {
	return internal.GetActivityInfo(ctx)
}

// Worker holds the workflow entry points, activity functions and sink
// implementations of one namespace. An engine drives it through Invoke,
// ExecuteActivity and CallSink.
//
// Example:
//
//	w, err := worker.New(ns, nil)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	// Register workflows and activities
//	w.RegisterWorkflow(workflow.Declaration{Name: "orders"}, OrderWorkflow)
//	w.RegisterActivity(ChargeCard)
type Worker struct {
	ns       *workflow.Namespace
	factory  *internal.Factory
	registry *internal.Registry

	mu         sync.RWMutex
	activities map[string]any
	sinks      map[string]any
	exporters  []Exporter

	logger *slog.Logger
}

// New creates a Worker for ns. Registering activities adds their names to the
// namespace's activity catalog.
func New(ns *workflow.Namespace, opts *Options) (*Worker, error) {
	if opts == nil {
		opts = &Options{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	factory, err := internal.NewFactory(ns, &internal.FactoryOptions{
		Serde:  opts.Serde,
		Logger: logger,
		Limits: opts.Limits,
	})
	if err != nil {
		return nil, err
	}
	return &Worker{
		ns:         ns,
		factory:    factory,
		registry:   internal.NewRegistry(),
		activities: make(map[string]any),
		sinks:      make(map[string]any),
		logger:     logger.With("namespace", ns.Name),
	}, nil
}

func (w *Worker) Namespace() *workflow.Namespace { return w.ns }

func (w *Worker) Converter() *serde.TypeConverter { return w.factory.Converter() }

func (w *Worker) Logger() *slog.Logger { return w.logger }

// RegisterWorkflow registers fn as the entry point of decl. When the
// namespace already declares decl.Name, that declaration is used.
func (w *Worker) RegisterWorkflow(decl workflow.Declaration, fn any) error {
	wf, err := w.factory.Build(decl, fn)
	if err != nil {
		return NewRegistrationError(decl.Name, err)
	}
	if err := w.registry.Register(wf); err != nil {
		return NewRegistrationError(decl.Name, err)
	}
	w.logger.Debug("workflow registered", "workflow_type", decl.Name)
	return nil
}

// RegisterDeclaredWorkflow registers fn for a workflow type the namespace
// already declares.
func (w *Worker) RegisterDeclaredWorkflow(name string, fn any) error {
	decl, ok := w.ns.Workflow(name)
	if !ok {
		return NewRegistrationError(name, fmt.Errorf("%w: %s", internal.ErrWorkflowNotDeclared, name))
	}
	return w.RegisterWorkflow(decl, fn)
}

// RegisterActivity registers fn under its function name.
func (w *Worker) RegisterActivity(fn any) error {
	name, err := internal.FunctionName(fn)
	if err != nil {
		return NewRegistrationError(fmt.Sprintf("%T", fn), fmt.Errorf("%w: %v", ErrInvalidFunction, err))
	}
	return w.RegisterActivityWithName(name, fn)
}

func (w *Worker) RegisterActivityWithName(name string, fn any) error {
	if name == "" {
		return NewRegistrationError(name, fmt.Errorf("%w: empty activity name", ErrInvalidFunction))
	}
	if err := internal.ValidateActivityFunc(fn); err != nil {
		return NewRegistrationError(name, fmt.Errorf("%w: %v", ErrInvalidFunction, err))
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.activities[name]; ok {
		return NewRegistrationError(name, ErrDuplicateRegistration)
	}
	w.activities[name] = fn
	w.ns.DeclareActivities(name)
	return nil
}

// RegisterScopedActivity registers an activity private to workflowType,
// reachable from it as name through workflow.ScopedActivities.
func (w *Worker) RegisterScopedActivity(workflowType, name string, fn any) error {
	return w.RegisterActivityWithName(internal.ScopedName(workflowType, name), fn)
}

// RegisterActivities registers every function of activities under its key,
// typically the result of NewActivities.
func (w *Worker) RegisterActivities(activities map[string]any) error {
	for _, name := range sortedKeys(activities) {
		if err := w.RegisterActivityWithName(name, activities[name]); err != nil {
			return err
		}
	}
	return nil
}

// RegisterSink registers the implementation of a declared sink function. fn
// has the form func(api.SinkInfo, T1, ..., Tn) with an optional error result.
func (w *Worker) RegisterSink(sink, function string, fn any) error {
	key := sink + "." + function
	if !w.ns.HasSink(sink, function) {
		return NewRegistrationError(key, ErrUndeclaredSink)
	}
	if err := internal.ValidateSinkFunc(fn); err != nil {
		return NewRegistrationError(key, fmt.Errorf("%w: %v", ErrInvalidFunction, err))
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.sinks[key]; ok {
		return NewRegistrationError(key, ErrDuplicateRegistration)
	}
	w.sinks[key] = fn
	return nil
}

// AddExporter forwards every sink call to e, after the typed implementation
// if one is registered.
func (w *Worker) AddExporter(e Exporter) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.exporters = append(w.exporters, e)
}

func (w *Worker) Workflows() []string { return w.registry.Names() }

func (w *Worker) Activity(name string) (any, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	fn, ok := w.activities[name]
	return fn, ok
}

// Invoke runs one execution attempt of workflowType on rt.
func (w *Worker) Invoke(ctx context.Context, rt internal.Runtime, workflowType string, args []any) internal.Outcome {
	return w.registry.Invoke(ctx, rt, workflowType, args)
}

// ExecuteActivity runs the activity named info.Name with args.
func (w *Worker) ExecuteActivity(ctx context.Context, info ActivityInfo, args []any) (any, error) {
	fn, ok := w.Activity(info.Name)
	if !ok {
		return nil, fmt.Errorf("%s: %w", info.Name, ErrActivityNotRegistered)
	}
	logger := w.logger.With("activity", info.Name, "workflow_id", info.Workflow.WorkflowID)
	logger.Debug("executing activity", "local", info.Local)

	result, err := internal.InvokeActivity(internal.WithActivityInfo(ctx, info), fn, w.Converter(), args)
	if err != nil {
		logger.Debug("activity failed", "error", err)
		return nil, err
	}
	return result, nil
}

// CallSink delivers one sink call to its implementation and to every
// exporter. Failures are logged and returned, never retried.
func (w *Worker) CallSink(ctx context.Context, info api.SinkInfo, sink, function string, args []any) error {
	w.mu.RLock()
	fn, ok := w.sinks[sink+"."+function]
	exporters := append([]Exporter(nil), w.exporters...)
	w.mu.RUnlock()

	logger := w.logger.With("sink", sink, "function", function, "workflow_id", info.WorkflowID)
	var firstErr error
	if ok {
		if err := internal.InvokeSink(info, fn, w.Converter(), args); err != nil {
			logger.Warn("sink implementation failed", "error", err)
			firstErr = err
		}
	} else if len(exporters) == 0 {
		logger.Warn("sink call dropped: no implementation registered")
	}

	record := api.SinkRecord{Info: info, Sink: sink, Function: function, Args: args, Time: time.Now().UTC()}
	for _, e := range exporters {
		if err := e.Export(ctx, record); err != nil {
			logger.Warn("sink export failed", "error", err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}
