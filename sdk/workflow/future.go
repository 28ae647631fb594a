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

import "github.com/ngnhng/typedflow/sdk/internal"

// Future represents the result of an asynchronous operation such as an
// activity or a child workflow.
//
// Futures allow starting several operations before waiting on any of them:
//
//	charge := workflow.ExecuteActivity(ctx, Charge, order)
//	reserve := workflow.ExecuteActivity(ctx, Reserve, order)
//
//	var receipt Receipt
//	if err := charge.Get(ctx, &receipt); err != nil {
//		return err
//	}
//	if err := reserve.Get(ctx, nil); err != nil {
//		return err
//	}
//
// Get suspends the workflow until the operation completes. During replay,
// Get returns recorded results immediately.
type Future = internal.Future

// Result waits on f and returns its value converted to R.
func Result[R any](ctx Context, f Future) (R, error) {
	var out R
	if err := f.Get(ctx, &out); err != nil {
		var zero R
		return zero, err
	}
	return out, nil
}
