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

// Package workflow provides the typed API workflow functions are written
// against.
//
// A workflow function takes a Context followed by its positional arguments
// and returns either error or (R, error):
//
//	func Counter(ctx workflow.Context, start int) (int, error) {
//		count := start
//		if err := workflow.OnSignal(ctx, "increment", func(in Increment) { count += in.Delta }); err != nil {
//			return 0, err
//		}
//		if err := workflow.OnQuery(ctx, "get", func() int { return count }); err != nil {
//			return 0, err
//		}
//		if err := workflow.Await(ctx, func() bool { return count >= 10 }); err != nil {
//			return 0, err
//		}
//		return count, nil
//	}
//
// Every workflow type is described by a Declaration. Only the signal and query
// names it lists can get handlers, and when it carries an ArgumentSchema the
// arguments of every invocation are validated before the function runs:
//
//	schema, _ := workflow.SchemaFor(0)
//	decl := workflow.Declaration{
//		Name:    "counter",
//		Schema:  schema,
//		Signals: []string{"increment"},
//		Queries: []string{"get"},
//	}
//
// Invalid arguments fail the execution with a non-retryable
// ValidationFailure listing one line per offending path.
//
// # Determinism
//
// Workflows must be deterministic. This means:
//   - No direct I/O operations (filesystem, network, database)
//   - No random number generation
//   - No direct time/date operations
//   - No access to external mutable state
//   - No goroutines
//
// All non-deterministic operations must be performed in activities.
//
// # Activity Execution
//
// Activities are executed using workflow.ExecuteActivity:
//
//	future := workflow.ExecuteActivity(ctx, MyActivity, "arg1", "arg2")
//	var result string
//	if err := future.Get(ctx, &result); err != nil {
//		return "", err
//	}
//
// Activities private to one workflow type are declared as scoped activities
// ("orders$charge") and reached by their bare name:
//
//	err := workflow.ScopedActivities(ctx).Execute("charge", order).Get(ctx, nil)
//
// # Long Running Loops
//
// A SafeIterator restarts the workflow with continue-as-new before its
// history gets too large. Each item is yielded exactly once across attempts
// as long as makeArgs resumes after the last yielded index:
//
//	it := workflow.NewSafeIterator(ctx, workflow.FromSlice(ids),
//		func(_ string, i int) []any { return []any{ids[i+1:]} })
//	for id, err := range it.All() {
//		if err != nil {
//			return err
//		}
//		...
//	}
//
// # Error Handling
//
// Workflows can return errors. If a workflow returns an error, the workflow
// execution fails and the error is returned to the client. Errors wrapped with
// NewNonRetryableError, validation failures and panics are never retried.
package workflow
