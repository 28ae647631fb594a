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

package api

// HistoryEvent is a single entry of an attempt's history. The in-memory engine
// appends these to measure history length and encoded size.
type HistoryEvent interface {
	EventName() string

	isHistoryEvent()
}

var _ HistoryEvent = (*WorkflowStarted)(nil)
var _ HistoryEvent = (*ActivityScheduled)(nil)
var _ HistoryEvent = (*ActivityCompleted)(nil)
var _ HistoryEvent = (*ActivityFailed)(nil)
var _ HistoryEvent = (*SignalReceived)(nil)
var _ HistoryEvent = (*SearchAttributesUpserted)(nil)
var _ HistoryEvent = (*ChildWorkflowStarted)(nil)
var _ HistoryEvent = (*ChildWorkflowCompleted)(nil)
var _ HistoryEvent = (*ContinuedAsNew)(nil)
var _ HistoryEvent = (*WorkflowCompleted)(nil)
var _ HistoryEvent = (*WorkflowFailed)(nil)

// -- Workflow Started Event --
type WorkflowStarted struct {
	ID    WorkflowID `msgpack:"id"`
	RunID RunID      `msgpack:"run_id"`

	WorkflowType string `msgpack:"name"`
	Input        []any  `msgpack:"input"`
}

func (*WorkflowStarted) EventName() string { return "workflow/started" }
func (*WorkflowStarted) isHistoryEvent()   {}

// -- Activity Scheduled Event --
type ActivityScheduled struct {
	ID  WorkflowID `msgpack:"id"`
	Seq int        `msgpack:"seq"`

	ActivityName string `msgpack:"name"`
	Local        bool   `msgpack:"local,omitempty"`
	Input        []any  `msgpack:"input"`
}

func (*ActivityScheduled) EventName() string { return "activity/scheduled" }
func (*ActivityScheduled) isHistoryEvent()   {}

// -- Activity Completed Event --
type ActivityCompleted struct {
	ID  WorkflowID `msgpack:"id"`
	Seq int        `msgpack:"seq"`

	ActivityName string `msgpack:"name"`
	Result       any    `msgpack:"result"`
}

func (*ActivityCompleted) EventName() string { return "activity/completed" }
func (*ActivityCompleted) isHistoryEvent()   {}

// -- Activity Failed Event --
type ActivityFailed struct {
	ID  WorkflowID `msgpack:"id"`
	Seq int        `msgpack:"seq"`

	ActivityName string `msgpack:"name"`
	Error        string `msgpack:"error"`
}

func (*ActivityFailed) EventName() string { return "activity/failed" }
func (*ActivityFailed) isHistoryEvent()   {}

// -- Signal Received --
type SignalReceived struct {
	ID WorkflowID `msgpack:"id"`

	SignalName string `msgpack:"name"`
	Input      []any  `msgpack:"input"`
}

func (*SignalReceived) EventName() string { return "signal/received" }
func (*SignalReceived) isHistoryEvent()   {}

// -- Search Attributes Upserted --
type SearchAttributesUpserted struct {
	ID WorkflowID `msgpack:"id"`

	Attributes SearchAttributes `msgpack:"attributes"`
}

func (*SearchAttributesUpserted) EventName() string { return "search_attributes/upserted" }
func (*SearchAttributesUpserted) isHistoryEvent()   {}

// -- Child Workflow Started --
type ChildWorkflowStarted struct {
	ID WorkflowID `msgpack:"id"`

	ChildID      WorkflowID `msgpack:"child_id"`
	WorkflowType string     `msgpack:"name"`
	Input        []any      `msgpack:"input"`
}

func (*ChildWorkflowStarted) EventName() string { return "child/started" }
func (*ChildWorkflowStarted) isHistoryEvent()   {}

// -- Child Workflow Completed --
type ChildWorkflowCompleted struct {
	ID WorkflowID `msgpack:"id"`

	ChildID WorkflowID `msgpack:"child_id"`
	Result  any        `msgpack:"result,omitempty"`
	Error   string     `msgpack:"error,omitempty"`
}

func (*ChildWorkflowCompleted) EventName() string { return "child/completed" }
func (*ChildWorkflowCompleted) isHistoryEvent()   {}

// -- Continued As New --
type ContinuedAsNew struct {
	ID WorkflowID `msgpack:"id"`

	WorkflowType string `msgpack:"name"`
	TaskQueue    string `msgpack:"task_queue"`
	Input        []any  `msgpack:"input"`
}

func (*ContinuedAsNew) EventName() string { return "workflow/continued_as_new" }
func (*ContinuedAsNew) isHistoryEvent()   {}

// -- Workflow Completed --
type WorkflowCompleted struct {
	ID WorkflowID `msgpack:"id"`

	WorkflowType string `msgpack:"name"`
	Result       any    `msgpack:"result"`
}

func (*WorkflowCompleted) EventName() string { return "workflow/completed" }
func (*WorkflowCompleted) isHistoryEvent()   {}

// -- Workflow Failed --
type WorkflowFailed struct {
	ID WorkflowID `msgpack:"id"`

	WorkflowType string `msgpack:"name"`
	Error        string `msgpack:"error"`
}

func (*WorkflowFailed) EventName() string { return "workflow/failed" }
func (*WorkflowFailed) isHistoryEvent()   {}
