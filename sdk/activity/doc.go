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

// Package activity holds helpers for code running inside an activity.
//
// Activities are plain Go functions. The first parameter is a
// context.Context, the rest are decoded from the workflow's arguments, and
// the result is either error or (R, error):
//
//	func ChargeCard(ctx context.Context, order Order) (Receipt, error) {
//		logger := activity.GetLogger(ctx, nil)
//		logger.Info("charging", "order", order.ID)
//		...
//	}
//
// # Registration
//
// Activities are registered with a worker, which also declares their names
// in the namespace:
//
//	w.RegisterActivity(ChargeCard)                       // "ChargeCard"
//	w.RegisterActivityWithName("charge", ChargeCard)     // plain name
//	w.RegisterScopedActivity("orders", "charge", charge) // "orders$charge"
//
// Activities needing shared dependencies can be built with
// worker.NewActivities from factories.
//
// # Calling activities from workflows
//
//	receipt, err := workflow.CallActivity[Receipt](ctx, "charge", order)
//
// or through the scoped view of the calling workflow type:
//
//	f := workflow.ScopedActivities(ctx).Execute("charge", order)
//
// # Errors
//
// Returned errors fail the activity future in the workflow. Errors built
// with NewNonRetryableError are not retried by the engine.
package activity
