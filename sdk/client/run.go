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

package client

import (
	"context"
	"fmt"

	"github.com/ngnhng/typedflow/api"
	"github.com/ngnhng/typedflow/sdk/workflow"
)

var _ workflow.Future = (*WorkflowRun)(nil)

// WorkflowRun is a handle to one execution. Its Get waits for the final
// result across continue-as-new restarts.
type WorkflowRun struct {
	client *Client
	decl   workflow.Declaration
	id     api.WorkflowID
	runID  api.RunID
}

func (r *WorkflowRun) ID() api.WorkflowID { return r.id }

// RunID is the run the execution was started with; it is empty for handles
// obtained with GetWorkflow.
func (r *WorkflowRun) RunID() api.RunID { return r.runID }

func (r *WorkflowRun) WorkflowType() string { return r.decl.Name }

// IsReady reports whether the execution is closed.
func (r *WorkflowRun) IsReady() bool {
	desc, err := r.client.backend.DescribeWorkflow(context.Background(), r.id)
	return err == nil && desc.Status.Closed()
}

// Get blocks until the execution is closed and stores its result in valuePtr.
// A failed execution returns a *WorkflowExecutionError wrapping the cause.
func (r *WorkflowRun) Get(ctx context.Context, valuePtr any) error {
	result, err := r.client.backend.GetResult(ctx, r.id)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return NewWorkflowExecutionError(r.id, err)
	}
	if valuePtr == nil || result == nil {
		return nil
	}
	if err := r.client.converter.Assign(result, valuePtr); err != nil {
		return fmt.Errorf("final result type casting failed: %w", err)
	}
	return nil
}

// Signal sends a declared signal to the execution.
func (r *WorkflowRun) Signal(ctx context.Context, name string, args ...any) error {
	if !r.decl.Declares(api.SignalChannel, name) {
		return fmt.Errorf("signal %s of %s: %w", name, r.decl.Name, ErrUndeclaredChannel)
	}
	return r.client.backend.SignalWorkflow(ctx, r.id, name, args)
}

// Query runs a declared query and stores the answer in valuePtr.
func (r *WorkflowRun) Query(ctx context.Context, name string, valuePtr any, args ...any) error {
	if !r.decl.Declares(api.QueryChannel, name) {
		return fmt.Errorf("query %s of %s: %w", name, r.decl.Name, ErrUndeclaredChannel)
	}
	result, err := r.client.backend.QueryWorkflow(ctx, r.id, name, args)
	if err != nil {
		return err
	}
	if valuePtr == nil || result == nil {
		return nil
	}
	return r.client.converter.Assign(result, valuePtr)
}

func (r *WorkflowRun) Describe(ctx context.Context) (api.ExecutionDescription, error) {
	return r.client.backend.DescribeWorkflow(ctx, r.id)
}

func (r *WorkflowRun) Terminate(ctx context.Context, reason string) error {
	return r.client.backend.TerminateWorkflow(ctx, r.id, reason)
}

// Result waits for run and returns its result converted to R.
func Result[R any](ctx context.Context, run *WorkflowRun) (R, error) {
	var out R
	if err := run.Get(ctx, &out); err != nil {
		var zero R
		return zero, err
	}
	return out, nil
}

// Query runs a declared query and returns its answer converted to R.
func Query[R any](ctx context.Context, run *WorkflowRun, name string, args ...any) (R, error) {
	var out R
	if err := run.Query(ctx, name, &out, args...); err != nil {
		var zero R
		return zero, err
	}
	return out, nil
}

