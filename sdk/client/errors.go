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
	"errors"
	"fmt"

	"github.com/ngnhng/typedflow/api"
	"github.com/ngnhng/typedflow/sdk/internal"
)

var (
	// ErrWorkflowNotFound is returned when a workflow cannot be found
	ErrWorkflowNotFound = errors.New("workflow not found")

	// ErrWorkflowAlreadyRunning is returned when attempting to start a workflow that is already running
	ErrWorkflowAlreadyRunning = errors.New("workflow already running")

	// ErrWorkflowClosed is returned when signaling an execution that has completed, failed or been terminated
	ErrWorkflowClosed = errors.New("workflow execution closed")

	// ErrWorkflowTerminated is the failure of an execution ended with TerminateWorkflow
	ErrWorkflowTerminated = errors.New("workflow terminated")

	// ErrQueryNotFound is returned when the workflow has no handler for a declared query yet
	ErrQueryNotFound = errors.New("query handler not found")

	// ErrNoBackend is returned when the client is created without an engine backend
	ErrNoBackend = errors.New("no engine backend")

	ErrWorkflowNotDeclared       = internal.ErrWorkflowNotDeclared
	ErrUndeclaredChannel         = internal.ErrUndeclaredChannel
	ErrUndeclaredSearchAttribute = internal.ErrUndeclaredSearchAttribute
)

// WorkflowExecutionError represents an error that occurred during workflow execution
type WorkflowExecutionError struct {
	WorkflowID api.WorkflowID
	Cause      error
	Message    string
}

func (e *WorkflowExecutionError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("workflow %s failed: %s", e.WorkflowID, e.Message)
	}
	if e.Cause != nil {
		return fmt.Sprintf("workflow %s failed: %v", e.WorkflowID, e.Cause)
	}
	return fmt.Sprintf("workflow %s failed", e.WorkflowID)
}

func (e *WorkflowExecutionError) Unwrap() error {
	return e.Cause
}

// NewWorkflowExecutionError creates a new WorkflowExecutionError
func NewWorkflowExecutionError(workflowID api.WorkflowID, cause error) *WorkflowExecutionError {
	return &WorkflowExecutionError{
		WorkflowID: workflowID,
		Cause:      cause,
	}
}
