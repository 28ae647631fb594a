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
	"errors"
	"fmt"

	"github.com/ngnhng/typedflow/sdk/internal"
)

var (
	// ErrWorkflowNotRegistered is returned when a workflow is not registered with the worker
	ErrWorkflowNotRegistered = internal.ErrWorkflowNotRegistered

	ErrWorkflowAlreadyRegistered = internal.ErrWorkflowAlreadyRegistered

	// ErrInvalidWorkflowFunction is returned when a workflow function has an unsupported signature
	ErrInvalidWorkflowFunction = internal.ErrInvalidWorkflowFunction

	// ErrActivityNotRegistered is returned when an activity is not registered with the worker
	ErrActivityNotRegistered = internal.ErrActivityNotRegistered

	// ErrInvalidFunction is returned when attempting to register an invalid function
	ErrInvalidFunction = errors.New("invalid function")

	// ErrDuplicateRegistration is returned when attempting to register a function that is already registered
	ErrDuplicateRegistration = errors.New("function already registered")

	// ErrUndeclaredActivity is returned when an activity factory names an activity the namespace does not declare
	ErrUndeclaredActivity = errors.New("activity not declared in namespace")

	ErrUndeclaredSink = internal.ErrUndeclaredSink
)

// RegistrationError represents an error that occurred during function registration
type RegistrationError struct {
	FunctionName string
	Cause        error
}

func (e *RegistrationError) Error() string {
	return fmt.Sprintf("failed to register function %s: %v", e.FunctionName, e.Cause)
}

func (e *RegistrationError) Unwrap() error {
	return e.Cause
}

// NewRegistrationError creates a new RegistrationError
func NewRegistrationError(functionName string, cause error) *RegistrationError {
	return &RegistrationError{
		FunctionName: functionName,
		Cause:        cause,
	}
}
