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
	"errors"
	"fmt"

	"github.com/ngnhng/typedflow/api"
)

var (
	// ErrUndeclaredChannel is returned when a handler is attached to a signal or
	// query name the workflow declaration does not list.
	ErrUndeclaredChannel = errors.New("channel not declared for workflow type")

	// ErrInvalidHandler is returned when a signal or query handler has an unsupported signature
	ErrInvalidHandler = errors.New("invalid handler function")

	// ErrInvalidWorkflowFunction is returned when a workflow function has an unsupported signature
	ErrInvalidWorkflowFunction = errors.New("invalid workflow function")

	ErrWorkflowNotRegistered     = errors.New("workflow not registered")
	ErrWorkflowAlreadyRegistered = errors.New("workflow already registered")
	ErrWorkflowNotDeclared       = errors.New("workflow not declared in namespace")

	// ErrActivityNotRegistered is returned when an activity name is unknown to the namespace
	ErrActivityNotRegistered = errors.New("activity not registered")

	ErrUndeclaredSearchAttribute = errors.New("search attribute not declared")
	ErrSearchAttributeType       = errors.New("search attribute value has wrong type")

	ErrUndeclaredSink = errors.New("sink function not declared")

	// ErrCanceled is returned by blocking operations once the attempt they
	// belong to is over (completed, restarted or terminated).
	ErrCanceled = errors.New("execution attempt canceled")
)

// Application error types used by the factory when failing an invocation.
const (
	ValidationFailureType = "ValidationFailure"
	DecodeFailureType     = "DecodeFailure"
	PanicErrorType        = "PanicError"
)

// ApplicationError is the failure type reported to the engine for workflow
// and activity failures. NonRetryable failures fail the execution immediately.
type ApplicationError struct {
	Message      string
	Type         string
	NonRetryable bool
	Cause        error
}

func (e *ApplicationError) Error() string {
	msg := e.Message
	if msg == "" && e.Cause != nil {
		msg = e.Cause.Error()
	}
	if e.Type != "" {
		return fmt.Sprintf("%s: %s", e.Type, msg)
	}
	return msg
}

func (e *ApplicationError) Unwrap() error {
	return e.Cause
}

// NewApplicationError creates a retryable ApplicationError
func NewApplicationError(message, errType string, cause error) *ApplicationError {
	return &ApplicationError{Message: message, Type: errType, Cause: cause}
}

// NewNonRetryableApplicationError creates an ApplicationError the engine must not retry
func NewNonRetryableApplicationError(message, errType string, cause error) *ApplicationError {
	return &ApplicationError{Message: message, Type: errType, NonRetryable: true, Cause: cause}
}

// IsNonRetryable reports whether err (or anything it wraps) is a non-retryable
// ApplicationError or a ValidationFailure.
func IsNonRetryable(err error) bool {
	var appErr *ApplicationError
	if errors.As(err, &appErr) && appErr.NonRetryable {
		return true
	}
	var vf *ValidationFailure
	return errors.As(err, &vf)
}

// ContinueAsNewError is returned by a workflow function to end the current
// attempt and start a new one. It is a control transfer, not a failure.
type ContinueAsNewError struct {
	WorkflowType string
	Args         []any
	Options      api.ContinueAsNewOptions
}

func (e *ContinueAsNewError) Error() string {
	return fmt.Sprintf("continue as new: %s", e.WorkflowType)
}

// IsContinueAsNew reports whether err requests a continue-as-new.
func IsContinueAsNew(err error) bool {
	var can *ContinueAsNewError
	return errors.As(err, &can)
}

// PanicError represents a panic that occurred in workflow code
type PanicError struct {
	Value any
	Stack string
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("workflow panic: %v\nStack: %s", e.Value, e.Stack)
}

func NewPanicError(value any, stack string) *PanicError {
	return &PanicError{Value: value, Stack: stack}
}

// ActivityError wraps the failure of a single activity call.
type ActivityError struct {
	ActivityName string
	WorkflowID   api.WorkflowID
	Cause        error
}

func (e *ActivityError) Error() string {
	return fmt.Sprintf("activity %s (workflow=%s) failed: %v", e.ActivityName, e.WorkflowID, e.Cause)
}

func (e *ActivityError) Unwrap() error {
	return e.Cause
}

// ChildWorkflowError wraps the failure of a child workflow execution.
type ChildWorkflowError struct {
	WorkflowType string
	WorkflowID   api.WorkflowID
	Cause        error
}

func (e *ChildWorkflowError) Error() string {
	return fmt.Sprintf("child workflow %s (%s) failed: %v", e.WorkflowType, e.WorkflowID, e.Cause)
}

func (e *ChildWorkflowError) Unwrap() error {
	return e.Cause
}
