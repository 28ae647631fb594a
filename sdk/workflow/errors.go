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
	"errors"

	"github.com/ngnhng/typedflow/sdk/internal"
)

var (
	// ErrActivityNotRegistered is returned when an activity name is unknown to the namespace
	ErrActivityNotRegistered = internal.ErrActivityNotRegistered

	// ErrInvalidActivityFunction is returned when the provided activity function is invalid
	ErrInvalidActivityFunction = errors.New("invalid activity function")

	// ErrUndeclaredChannel is returned when a handler is set for a signal or query
	// the workflow declaration does not list
	ErrUndeclaredChannel = internal.ErrUndeclaredChannel

	ErrInvalidHandler            = internal.ErrInvalidHandler
	ErrWorkflowNotDeclared       = internal.ErrWorkflowNotDeclared
	ErrUndeclaredSearchAttribute = internal.ErrUndeclaredSearchAttribute
	ErrSearchAttributeType       = internal.ErrSearchAttributeType
	ErrUndeclaredSink            = internal.ErrUndeclaredSink

	// ErrCanceled is returned by activities and children started after the
	// attempt requested a continue-as-new
	ErrCanceled = internal.ErrCanceled
)

type (
	// ApplicationError is the failure reported to the engine. NonRetryable
	// failures fail the execution without retries.
	ApplicationError   = internal.ApplicationError
	PanicError         = internal.PanicError
	ActivityError      = internal.ActivityError
	ChildWorkflowError = internal.ChildWorkflowError
)

// NewApplicationError creates a retryable application failure of the given type.
func NewApplicationError(message, errType string, cause error) *ApplicationError {
	return internal.NewApplicationError(message, errType, cause)
}

// NewNonRetryableError wraps err so the engine does not retry it.
func NewNonRetryableError(err error) *ApplicationError {
	return internal.NewNonRetryableApplicationError("", "", err)
}

// IsNonRetryable checks if an error is non-retryable
func IsNonRetryable(err error) bool {
	return internal.IsNonRetryable(err)
}
