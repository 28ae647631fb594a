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
	"fmt"

	"github.com/ngnhng/typedflow/api"
	"github.com/ngnhng/typedflow/sdk/internal"
)

type activityOptionsKey struct{}

// ActivityOptions configures how an activity is executed, including timeouts and retry behavior.
// The options are forwarded to the engine untouched.
//
// Use WithActivityOptions to set these options:
//
//	ctx = workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
//		ScheduleToCloseTimeout: 5 * time.Minute,
//		StartToCloseTimeout:    30 * time.Second,
//		RetryPolicy: &workflow.RetryPolicy{
//			InitialInterval:    time.Second,
//			BackoffCoefficient: 2.0,
//			MaximumAttempts:    3,
//		},
//	})
type ActivityOptions = api.ActivityOptions

// RetryPolicy defines how the engine retries a failed activity.
//
//	RetryPolicy: &workflow.RetryPolicy{
//		InitialInterval:    time.Second,      // First retry after 1s
//		BackoffCoefficient: 2.0,              // Double delay each retry
//		MaximumInterval:    30 * time.Second, // Cap delay at 30s
//		MaximumAttempts:    5,                // Give up after 5 attempts
//	}
//
// Failures wrapped with NewNonRetryableError are never retried.
type RetryPolicy = api.RetryPolicy

type (
	// ActivitySet resolves activity names to handles. Lookups are computed
	// on every access, so names declared after the set was obtained are
	// visible.
	ActivitySet    = internal.ActivitySet
	ActivityHandle = internal.ActivityHandle
	ActivityLookup = internal.ActivityLookup
	ActivityMap    = internal.ActivityMap
)

// ScopedName returns the namespace-wide name of an activity private to
// workflowType, e.g. ScopedName("orders", "charge") is "orders$charge".
func ScopedName(workflowType, name string) string {
	return internal.ScopedName(workflowType, name)
}

// ForWorkflowType narrows all to the activities scoped to workflowType,
// addressed by their bare names.
func ForWorkflowType(all ActivityLookup, workflowType string) ActivityLookup {
	return internal.ForWorkflowType(all, workflowType)
}

func WithActivityOptions(ctx Context, opts ActivityOptions) Context {
	return ctx.WithValue(activityOptionsKey{}, opts)
}

// GetActivityOptions returns the options set with WithActivityOptions, or
// the zero value.
func GetActivityOptions(ctx Context) ActivityOptions {
	opts, _ := ctx.Value(activityOptionsKey{}).(ActivityOptions)
	return opts
}

// Activities returns the namespace's unscoped activities, bound to the
// options carried by ctx.
func Activities(ctx Context) ActivitySet {
	return ctx.Activities(GetActivityOptions(ctx))
}

func LocalActivities(ctx Context) ActivitySet {
	return ctx.LocalActivities(GetActivityOptions(ctx))
}

// ScopedActivities returns the activities private to the running workflow
// type, addressed by their bare names.
func ScopedActivities(ctx Context) ActivitySet {
	return ctx.ScopedActivities(GetActivityOptions(ctx))
}

// ExecuteActivity schedules the activity named by nameOrFn, either a name or
// the activity function itself, and returns its Future.
func ExecuteActivity(ctx Context, nameOrFn any, args ...any) Future {
	name, err := internal.ActivityName(nameOrFn)
	if err != nil {
		return internal.NewFailedFuture(fmt.Errorf("%w: %v", ErrInvalidActivityFunction, err))
	}
	return Activities(ctx).Execute(name, args...)
}

func ExecuteLocalActivity(ctx Context, nameOrFn any, args ...any) Future {
	name, err := internal.ActivityName(nameOrFn)
	if err != nil {
		return internal.NewFailedFuture(fmt.Errorf("%w: %v", ErrInvalidActivityFunction, err))
	}
	return LocalActivities(ctx).Execute(name, args...)
}

// CallActivity executes an activity and waits for its result.
//
//	total, err := workflow.CallActivity[int](ctx, SumActivity, items)
func CallActivity[R any](ctx Context, nameOrFn any, args ...any) (R, error) {
	return Result[R](ctx, ExecuteActivity(ctx, nameOrFn, args...))
}
