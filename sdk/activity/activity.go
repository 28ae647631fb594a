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

package activity

import (
	"context"
	"log/slog"

	"github.com/ngnhng/typedflow/api"
	"github.com/ngnhng/typedflow/sdk/internal"
)

// Info describes the call an activity function is serving.
type Info = internal.ActivityInfo

// GetInfo returns the Info the worker attached to ctx. ok is false when ctx
// does not come from a worker, e.g. in a plain unit test.
func GetInfo(ctx context.Context) (info Info, ok bool) {
	return internal.GetActivityInfo(ctx)
}

// GetWorkflowInfo returns the info of the workflow attempt that scheduled
// the activity, or the zero value outside a worker.
func GetWorkflowInfo(ctx context.Context) api.WorkflowInfo {
	info, _ := internal.GetActivityInfo(ctx)
	return info.Workflow
}

// GetLogger returns base (or slog.Default) annotated with the activity and
// workflow identifiers found in ctx.
func GetLogger(ctx context.Context, base *slog.Logger) *slog.Logger {
	if base == nil {
		base = slog.Default()
	}
	info, ok := internal.GetActivityInfo(ctx)
	if !ok {
		return base
	}
	return base.With(
		"activity", info.Name,
		"local", info.Local,
		"workflow_type", info.Workflow.WorkflowType,
		"workflow_id", info.Workflow.WorkflowID,
		"run_id", info.Workflow.RunID,
	)
}

// NewNonRetryableError marks err so the engine fails the calling workflow's
// activity future without retrying.
func NewNonRetryableError(message, errType string, cause error) error {
	return internal.NewNonRetryableApplicationError(message, errType, cause)
}
