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
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"runtime/debug"

	"github.com/ngnhng/typedflow/api/serde"
)

type FactoryOptions struct {
	// Serde decodes arguments and results. Defaults to msgpack.
	Serde  serde.BinarySerde
	Logger *slog.Logger
	// Limits are the default history limits of SafeIterators.
	Limits HistoryLimits
}

// Factory builds workflow entry points for the workflow types of a namespace.
type Factory struct {
	ns        *Namespace
	converter *serde.TypeConverter
	logger    *slog.Logger
	limits    HistoryLimits
}

func NewFactory(ns *Namespace, opts *FactoryOptions) (*Factory, error) {
	if err := ns.Validate(); err != nil {
		return nil, fmt.Errorf("new factory: %w", err)
	}
	if opts == nil {
		opts = &FactoryOptions{}
	}
	return &Factory{
		ns:        ns,
		converter: serde.NewTypeConverter(opts.Serde),
		logger:    defaultLogger(opts.Logger),
		limits:    opts.Limits.withDefaults(),
	}, nil
}

func (f *Factory) Namespace() *Namespace { return f.ns }

func (f *Factory) Converter() *serde.TypeConverter { return f.converter }

// Build wraps fn as the entry point of decl, declaring decl in the namespace
// when it is not there yet. When the namespace already declares decl.Name,
// that declaration is used. fn must be func(Context, T1, ..., Tn) error or
// func(Context, T1, ..., Tn) (R, error).
func (f *Factory) Build(decl Declaration, fn any) (*Workflow, error) {
	if existing, ok := f.ns.Workflow(decl.Name); ok {
		decl = existing
	} else if err := f.ns.DeclareWorkflow(decl); err != nil {
		return nil, err
	}

	fnType := reflect.TypeOf(fn)
	if fnType == nil || fnType.Kind() != reflect.Func {
		return nil, fmt.Errorf("%s: %w: expected function, got %T", decl.Name, ErrInvalidWorkflowFunction, fn)
	}
	if fnType.IsVariadic() {
		return nil, fmt.Errorf("%s: %w: variadic workflow functions are not supported", decl.Name, ErrInvalidWorkflowFunction)
	}
	if fnType.NumIn() == 0 || fnType.In(0) != contextType {
		return nil, fmt.Errorf("%s: %w: first parameter must be workflow Context", decl.Name, ErrInvalidWorkflowFunction)
	}
	switch {
	case fnType.NumOut() == 1 && fnType.Out(0) == errorType:
	case fnType.NumOut() == 2 && fnType.Out(1) == errorType:
	default:
		return nil, fmt.Errorf("%s: %w: must return error or (R, error)", decl.Name, ErrInvalidWorkflowFunction)
	}

	return &Workflow{
		decl:    decl.clone(),
		fn:      reflect.ValueOf(fn),
		params:  paramTypes(fnType, 1),
		factory: f,
	}, nil
}

// BuildDeclared wraps fn as the entry point of a workflow type already
// declared in the namespace.
func (f *Factory) BuildDeclared(name string, fn any) (*Workflow, error) {
	decl, ok := f.ns.Workflow(name)
	if !ok {
		return nil, fmt.Errorf("%s: %w", name, ErrWorkflowNotDeclared)
	}
	return f.Build(decl, fn)
}

// Workflow is the entry point of one workflow type.
type Workflow struct {
	decl    Declaration
	fn      reflect.Value
	params  []reflect.Type
	factory *Factory
}

func (w *Workflow) Name() string { return w.decl.Name }

func (w *Workflow) Declaration() Declaration { return w.decl.clone() }

// Invoke runs one execution attempt: it builds a fresh context, validates
// and decodes rawArgs, calls the workflow function and maps what it returns
// to an Outcome. Invoke is called again on every replay and every attempt
// after a continue-as-new.
func (w *Workflow) Invoke(ctx context.Context, rt Runtime, rawArgs []any) (out Outcome) {
	f := w.factory
	ec := newExecutionContext(ctx, rt, f.ns, w.decl, f.converter, f.logger, f.limits)
	logger := ec.Logger()

	args, err := Validate(rawArgs, w.decl.Schema)
	if err != nil {
		logger.Warn("workflow arguments rejected", "error", err)
		return failed(NewNonRetryableApplicationError(err.Error(), ValidationFailureType, err))
	}
	values, err := DecodeArgs(f.converter, args, w.params)
	if err != nil {
		logger.Warn("workflow arguments could not be decoded", "error", err)
		return failed(err)
	}

	defer func() {
		r := recover()
		if r == nil {
			return
		}
		if _, ok := r.(ErrorBlockingFuture); ok {
			out = Outcome{Kind: OutcomeBlocked}
			return
		}
		logger.Error("workflow panicked", "panic", r)
		out = failed(NewPanicError(r, string(debug.Stack())))
	}()

	logger.Debug("invoking workflow", "args", debugAnyValues(args))
	results := w.fn.Call(append([]reflect.Value{reflect.ValueOf(ec)}, values...))

	var result any
	if len(results) == 2 {
		result = results[0].Interface()
	}
	if errVal := results[len(results)-1]; !errVal.IsNil() {
		err = errVal.Interface().(error)
	}

	var can *ContinueAsNewError
	switch {
	case errors.As(err, &can):
	case ec.restart != nil:
		// A requested restart ends the attempt whatever the function returned.
		logger.Warn("workflow returned without propagating continue as new", "error", err)
		can = ec.restart
	case err != nil:
		logger.Debug("workflow failed", "error", err)
		return failed(err)
	default:
		logger.Debug("workflow completed")
		return completed(result)
	}

	if err := rt.ContinueAsNew(can.WorkflowType, can.Options, can.Args); err != nil {
		return failed(fmt.Errorf("continue as new: %w", err))
	}
	logger.Info("workflow continuing as new", "next_workflow_type", can.WorkflowType)
	return restarting(can)
}
