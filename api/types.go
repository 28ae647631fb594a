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

import (
	"fmt"
	"time"
)

type WorkflowID string

func (w WorkflowID) String() string { return string(w) }

type RunID string

func (r RunID) String() string { return string(r) }

// ChannelKind distinguishes the two independent channel namespaces of a workflow.
type ChannelKind string

const (
	SignalChannel ChannelKind = "signal"
	QueryChannel  ChannelKind = "query"
)

func (k ChannelKind) Valid() bool {
	return k == SignalChannel || k == QueryChannel
}

// ChannelHandle identifies a registered signal or query channel.
//
// Handles are plain values: two handles for the same (kind, name) pair compare
// equal, including handles rebuilt when a workflow is replayed.
type ChannelHandle struct {
	Kind ChannelKind `json:"kind" msgpack:"kind"`
	Name string      `json:"name" msgpack:"name"`
}

func (h ChannelHandle) String() string {
	return fmt.Sprintf("%s:%s", h.Kind, h.Name)
}

// WorkflowInfo describes the execution attempt a workflow function is running in.
type WorkflowInfo struct {
	Namespace    string     `json:"namespace"`
	WorkflowType string     `json:"workflow_type"`
	WorkflowID   WorkflowID `json:"workflow_id"`
	RunID        RunID      `json:"run_id"`
	TaskQueue    string     `json:"task_queue"`
	// Attempt counts continue-as-new restarts, starting at 1.
	Attempt   int       `json:"attempt"`
	StartTime time.Time `json:"start_time"`
}

// HistoryInfo is the engine's view of the current attempt's history.
type HistoryInfo struct {
	// Length is the number of history events.
	Length int `json:"length"`
	// Size is the history size in bytes.
	Size int `json:"size"`
}

type RetryPolicy struct {
	InitialInterval    time.Duration `json:"initial_interval,omitempty"`
	BackoffCoefficient float64       `json:"backoff_coefficient,omitempty"`
	MaximumInterval    time.Duration `json:"maximum_interval,omitempty"`
	MaximumAttempts    int           `json:"maximum_attempts,omitempty"`
}

// ActivityOptions is forwarded to the engine untouched.
type ActivityOptions struct {
	TaskQueue              string        `json:"task_queue,omitempty"`
	ScheduleToCloseTimeout time.Duration `json:"schedule_to_close_timeout,omitempty"`
	StartToCloseTimeout    time.Duration `json:"start_to_close_timeout,omitempty"`
	HeartbeatTimeout       time.Duration `json:"heartbeat_timeout,omitempty"`
	RetryPolicy            *RetryPolicy  `json:"retry_policy,omitempty"`
}

type ChildWorkflowOptions struct {
	WorkflowID       WorkflowID       `json:"workflow_id,omitempty"`
	TaskQueue        string           `json:"task_queue,omitempty"`
	SearchAttributes SearchAttributes `json:"search_attributes,omitempty"`
}

// ContinueAsNewOptions selects the workflow type and task queue of the next
// attempt. Empty fields keep the current values.
type ContinueAsNewOptions struct {
	WorkflowType string `json:"workflow_type,omitempty"`
	TaskQueue    string `json:"task_queue,omitempty"`
}

// SearchAttributeType is the declared type of an indexed attribute.
type SearchAttributeType string

const (
	SearchAttributeText     SearchAttributeType = "text"
	SearchAttributeKeyword  SearchAttributeType = "keyword"
	SearchAttributeInt      SearchAttributeType = "int"
	SearchAttributeDouble   SearchAttributeType = "double"
	SearchAttributeBool     SearchAttributeType = "bool"
	SearchAttributeDatetime SearchAttributeType = "datetime"
)

func (t SearchAttributeType) Valid() bool {
	switch t {
	case SearchAttributeText, SearchAttributeKeyword, SearchAttributeInt,
		SearchAttributeDouble, SearchAttributeBool, SearchAttributeDatetime:
		return true
	}
	return false
}

// SearchAttributes maps attribute names to their values. Every attribute is
// multi-valued; an empty slice removes the attribute.
type SearchAttributes map[string][]any

// SinkInfo is passed to sink implementations together with the call arguments.
type SinkInfo struct {
	Namespace    string     `json:"namespace" msgpack:"namespace"`
	WorkflowType string     `json:"workflow_type" msgpack:"workflow_type"`
	WorkflowID   WorkflowID `json:"workflow_id" msgpack:"workflow_id"`
	RunID        RunID      `json:"run_id" msgpack:"run_id"`
}

// SinkRecord is the unit exported to external sink transports.
type SinkRecord struct {
	Info     SinkInfo  `json:"info" msgpack:"info"`
	Sink     string    `json:"sink" msgpack:"sink"`
	Function string    `json:"function" msgpack:"function"`
	Args     []any     `json:"args" msgpack:"args"`
	Time     time.Time `json:"time" msgpack:"time"`
}

// ExecutionStatus is the lifecycle state of a workflow execution.
type ExecutionStatus string

const (
	StatusRunning        ExecutionStatus = "running"
	StatusCompleted      ExecutionStatus = "completed"
	StatusFailed         ExecutionStatus = "failed"
	StatusContinuedAsNew ExecutionStatus = "continued_as_new"
	StatusTerminated     ExecutionStatus = "terminated"
)

func (s ExecutionStatus) Closed() bool {
	return s != StatusRunning && s != StatusContinuedAsNew
}

type ExecutionDescription struct {
	Info             WorkflowInfo     `json:"info"`
	Status           ExecutionStatus  `json:"status"`
	Runs             int              `json:"runs"`
	History          HistoryInfo      `json:"history"`
	SearchAttributes SearchAttributes `json:"search_attributes,omitempty"`
}

// StartWorkflowRequest is what a client hands the engine to start an execution.
type StartWorkflowRequest struct {
	WorkflowID       WorkflowID       `json:"workflow_id,omitempty"`
	WorkflowType     string           `json:"workflow_type"`
	TaskQueue        string           `json:"task_queue,omitempty"`
	Args             []any            `json:"args"`
	SearchAttributes SearchAttributes `json:"search_attributes,omitempty"`
}

// ListFilter selects executions. Zero fields match everything; every listed
// search attribute value must be present on a matching execution.
type ListFilter struct {
	WorkflowType     string           `json:"workflow_type,omitempty"`
	Status           ExecutionStatus  `json:"status,omitempty"`
	SearchAttributes SearchAttributes `json:"search_attributes,omitempty"`
}
