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

import "fmt"

type OutcomeKind int

const (
	// OutcomeCompleted means the workflow function returned a result.
	OutcomeCompleted OutcomeKind = iota
	// OutcomeFailed means the attempt failed; Err says why.
	OutcomeFailed
	// OutcomeRestarting means the attempt ended with continue-as-new. The
	// engine has already been told; nothing else runs in this attempt.
	OutcomeRestarting
	// OutcomeBlocked means the attempt is waiting on a future the engine has
	// not resolved yet and must be replayed later. Replaying runtimes produce
	// it by returning pending futures from NewPendingFuture; runtimes that
	// park the workflow goroutine until results arrive, like the in-memory
	// engine in sdk/testsuite, never see it.
	OutcomeBlocked
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeCompleted:
		return "completed"
	case OutcomeFailed:
		return "failed"
	case OutcomeRestarting:
		return "restarting"
	case OutcomeBlocked:
		return "blocked"
	}
	return fmt.Sprintf("OutcomeKind(%d)", int(k))
}

// Outcome is the result of invoking a workflow entry point once.
type Outcome struct {
	Kind    OutcomeKind
	Result  any
	Err     error
	Restart *ContinueAsNewError
}

func completed(result any) Outcome { return Outcome{Kind: OutcomeCompleted, Result: result} }

func failed(err error) Outcome { return Outcome{Kind: OutcomeFailed, Err: err} }

func restarting(can *ContinueAsNewError) Outcome {
	return Outcome{Kind: OutcomeRestarting, Restart: can}
}

func (o Outcome) String() string {
	switch o.Kind {
	case OutcomeFailed:
		return fmt.Sprintf("failed: %v", o.Err)
	case OutcomeRestarting:
		return fmt.Sprintf("restarting as %s", o.Restart.WorkflowType)
	}
	return o.Kind.String()
}
