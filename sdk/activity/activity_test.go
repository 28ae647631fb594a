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

package activity_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/ngnhng/typedflow/api"
	"github.com/ngnhng/typedflow/sdk/activity"
	"github.com/ngnhng/typedflow/sdk/internal"
	"github.com/ngnhng/typedflow/sdk/workflow"
)

func TestGetInfo(t *testing.T) {
	if _, ok := activity.GetInfo(context.Background()); ok {
		t.Fatal("GetInfo found info on a bare context")
	}

	wf := api.WorkflowInfo{WorkflowType: "orders", WorkflowID: "o-1", RunID: "r-1"}
	ctx := internal.WithActivityInfo(context.Background(), activity.Info{Name: "charge", Local: true, Workflow: wf})

	info, ok := activity.GetInfo(ctx)
	if !ok || info.Name != "charge" || !info.Local {
		t.Errorf("GetInfo = %+v, %v", info, ok)
	}
	if got := activity.GetWorkflowInfo(ctx); got != wf {
		t.Errorf("GetWorkflowInfo = %+v, want %+v", got, wf)
	}

	var buf bytes.Buffer
	base := slog.New(slog.NewTextHandler(&buf, nil))
	activity.GetLogger(ctx, base).Info("charging")
	for _, want := range []string{"activity=charge", "workflow_id=o-1", "run_id=r-1"} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("log line %q missing %q", buf.String(), want)
		}
	}
}

func TestNewNonRetryableError(t *testing.T) {
	cause := errors.New("card expired")
	err := activity.NewNonRetryableError("", "CardError", cause)
	if !workflow.IsNonRetryable(err) {
		t.Error("IsNonRetryable = false")
	}
	if !errors.Is(err, cause) {
		t.Error("error does not wrap its cause")
	}
	if err.Error() != "CardError: card expired" {
		t.Errorf("Error() = %q", err.Error())
	}
}
