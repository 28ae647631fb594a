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

// Package client provides the typed client for starting and interacting with
// workflows.
//
// The client drives an engine through the Backend interface and checks every
// request against the namespace's declarations first: workflow types must be
// declared, start arguments must satisfy the declared schema, and signal and
// query names must belong to the workflow type.
//
// # Creating a Client
//
//	c, err := client.NewClient(&client.Options{
//		Namespace: ns,
//		Backend:   backend,
//		Logger:    slog.Default(),
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//
// # Executing Workflows
//
//	run, err := c.StartWorkflow(ctx, "counter", client.StartOptions{}, 0)
//	if err != nil {
//		log.Fatal(err)
//	}
//	if err := run.Signal(ctx, "increment", Increment{Delta: 1}); err != nil {
//		log.Fatal(err)
//	}
//	count, err := client.Query[int](ctx, run, "get")
//
// # Workflow Results
//
// WorkflowRun.Get blocks until the execution closes or the context is
// canceled. A workflow that restarted itself with continue-as-new keeps its
// workflow ID; Get returns the result of the final run.
//
// # Listing
//
// ListWorkflows filters executions by type, status and search attributes.
// Filtered attributes must be declared in the namespace.
package client
