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

// History budget defaults
const (
	DefaultMaxHistoryEvents = 10_240
	DefaultMaxHistorySize   = 1_000_000
)

// ScopeSeparator joins a workflow type and a bare activity name into a scoped
// activity name, e.g. "orders$charge".
const ScopeSeparator = "$"

const DefaultTaskQueue = "default"

// Sink transport defaults
const (
	// SinkSubjectPrefix is the NATS subject prefix for exported sink calls.
	SinkSubjectPrefix = "sinks"
	// SinkSubjectPattern is <prefix>.<namespace>.<sink>.<function>
	SinkSubjectPattern = "%s.%s.%s.%s"

	SinkStream = "typedflow:sinks"
)

// Redis stream fields
const (
	SinkFieldSubject = "subject"
	SinkFieldPayload = "payload"
)
