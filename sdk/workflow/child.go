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

package workflow

import (
	"github.com/ngnhng/typedflow/api"
	"github.com/ngnhng/typedflow/sdk/internal"
)

type (
	ChildWorkflowOptions = api.ChildWorkflowOptions
	// ChildWorkflowRun is a started child execution.
	ChildWorkflowRun = internal.ChildWorkflowRun
)

// ExecuteChildWorkflow starts a child execution of a declared workflow type
// and returns a Future for its result.
func ExecuteChildWorkflow(ctx Context, workflowType string, opts ChildWorkflowOptions, args ...any) Future {
	return ctx.ExecuteChild(workflowType, opts, args...)
}

func StartChildWorkflow(ctx Context, workflowType string, opts ChildWorkflowOptions, args ...any) (ChildWorkflowRun, error) {
	return ctx.StartChild(workflowType, opts, args...)
}
