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
	"github.com/ngnhng/typedflow/api"
)

// SignalHandler receives the raw arguments of a delivered signal.
type SignalHandler func(args []any) error

// QueryHandler answers a query from the raw query arguments.
type QueryHandler func(args []any) (any, error)

// Runtime is the set of engine primitives available to one workflow execution
// attempt. Implementations run workflow code on a single cooperative thread:
// handlers and workflow code never execute concurrently.
type Runtime interface {
	WorkflowInfo() api.WorkflowInfo
	// HistoryInfo reports the history accumulated by the current attempt.
	HistoryInfo() api.HistoryInfo
	IsReplaying() bool

	// DefineChannel tells the engine that name now has a live channel of the
	// given kind. It is called at most once per (kind, name) per attempt.
	DefineChannel(kind api.ChannelKind, name string) (api.ChannelHandle, error)
	SetSignalHandler(handle api.ChannelHandle, handler SignalHandler) error
	SetQueryHandler(handle api.ChannelHandle, handler QueryHandler) error

	ExecuteActivity(name string, opts api.ActivityOptions, local bool, args []any) Future
	StartChild(workflowType string, opts api.ChildWorkflowOptions, args []any) ChildWorkflowRun

	// ContinueAsNew ends the current attempt. After it returns nil the
	// attempt is over and the workflow function must return.
	ContinueAsNew(workflowType string, opts api.ContinueAsNewOptions, args []any) error

	UpsertSearchAttributes(attrs api.SearchAttributes) error
	CallSink(sink, function string, args []any) error

	// Await suspends the workflow until cond returns true. cond is evaluated
	// on the workflow thread after every state change.
	Await(cond func() bool) error
}

// ChildWorkflowRun is a started child workflow execution.
type ChildWorkflowRun interface {
	WorkflowID() api.WorkflowID
	// Result resolves once the child closes.
	Result() Future
	Signal(name string, args ...any) error
}
