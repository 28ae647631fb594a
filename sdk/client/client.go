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

package client

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ngnhng/typedflow/api"
	"github.com/ngnhng/typedflow/api/serde"
	"github.com/ngnhng/typedflow/sdk/internal"
	"github.com/ngnhng/typedflow/sdk/workflow"
)

// Backend is the engine client the typed Client drives. GetResult blocks
// until the execution is closed and follows continue-as-new restarts.
type Backend interface {
	StartWorkflow(ctx context.Context, req api.StartWorkflowRequest) (api.WorkflowID, api.RunID, error)
	SignalWorkflow(ctx context.Context, id api.WorkflowID, signal string, args []any) error
	QueryWorkflow(ctx context.Context, id api.WorkflowID, query string, args []any) (any, error)
	GetResult(ctx context.Context, id api.WorkflowID) (any, error)
	DescribeWorkflow(ctx context.Context, id api.WorkflowID) (api.ExecutionDescription, error)
	ListWorkflows(ctx context.Context, filter api.ListFilter) ([]api.ExecutionDescription, error)
	TerminateWorkflow(ctx context.Context, id api.WorkflowID, reason string) error
}

// Options contains configuration for creating a new Client.
type Options struct {
	Namespace *workflow.Namespace
	Backend   Backend
	// Serde converts results into caller types. Defaults to msgpack.
	Serde  serde.BinarySerde
	Logger *slog.Logger
}

// StartOptions configures one execution.
type StartOptions struct {
	// ID defaults to an engine generated identifier.
	ID api.WorkflowID
	// TaskQueue defaults to the namespace's first task queue.
	TaskQueue        string
	SearchAttributes api.SearchAttributes
}

// Client starts and interacts with the workflows of one namespace. It checks
// names against the namespace's declarations and validates start arguments
// before anything reaches the engine.
//
// Example:
//
//	c, err := client.NewClient(&client.Options{
//		Namespace: ns,
//		Backend:   backend,
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	run, err := c.StartWorkflow(ctx, "orders", client.StartOptions{}, order)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	var receipt Receipt
//	if err := run.Get(ctx, &receipt); err != nil {
//		log.Fatal(err)
//	}
type Client struct {
	ns        *workflow.Namespace
	backend   Backend
	converter *serde.TypeConverter
	logger    *slog.Logger
}

// NewClient creates a new Client with the provided Options.
//
// Returns an error if:
//   - Options is nil
//   - Options.Backend is nil
//   - Options.Namespace is invalid
func NewClient(options *Options) (*Client, error) {
	if options == nil {
		return nil, errors.New("client options are required")
	}
	if options.Backend == nil {
		return nil, ErrNoBackend
	}
	if err := options.Namespace.Validate(); err != nil {
		return nil, fmt.Errorf("new client: %w", err)
	}
	logger := options.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		ns:        options.Namespace,
		backend:   options.Backend,
		converter: serde.NewTypeConverter(options.Serde),
		logger:    logger.With("namespace", options.Namespace.Name),
	}, nil
}

func (c *Client) Namespace() *workflow.Namespace { return c.ns }

// StartWorkflow starts an execution of the declared workflow type. Arguments
// failing the declaration's schema are rejected with a *workflow.ValidationFailure.
func (c *Client) StartWorkflow(ctx context.Context, workflowType string, opts StartOptions, args ...any) (*WorkflowRun, error) {
	decl, ok := c.ns.Workflow(workflowType)
	if !ok {
		return nil, fmt.Errorf("start %s: %w", workflowType, ErrWorkflowNotDeclared)
	}
	if _, err := internal.Validate(args, decl.Schema); err != nil {
		return nil, fmt.Errorf("start %s: %w", workflowType, err)
	}
	if err := internal.ValidateSearchAttributes(c.ns.SearchAttributes, opts.SearchAttributes); err != nil {
		return nil, fmt.Errorf("start %s: %w", workflowType, err)
	}
	if opts.TaskQueue == "" {
		opts.TaskQueue = c.ns.DefaultTaskQueue()
	}

	id, runID, err := c.backend.StartWorkflow(ctx, api.StartWorkflowRequest{
		WorkflowID:       opts.ID,
		WorkflowType:     workflowType,
		TaskQueue:        opts.TaskQueue,
		Args:             args,
		SearchAttributes: opts.SearchAttributes,
	})
	if err != nil {
		return nil, fmt.Errorf("start %s: %w", workflowType, err)
	}
	c.logger.Debug("workflow started", "workflow_type", workflowType, "workflow_id", id, "run_id", runID)
	return &WorkflowRun{client: c, decl: decl, id: id, runID: runID}, nil
}

// GetWorkflow returns a handle to an existing execution of workflowType.
func (c *Client) GetWorkflow(workflowType string, id api.WorkflowID) (*WorkflowRun, error) {
	decl, ok := c.ns.Workflow(workflowType)
	if !ok {
		return nil, fmt.Errorf("%s: %w", workflowType, ErrWorkflowNotDeclared)
	}
	return &WorkflowRun{client: c, decl: decl, id: id}, nil
}

// ListWorkflows returns the executions matching filter. Filtered search
// attributes must be declared in the namespace.
func (c *Client) ListWorkflows(ctx context.Context, filter api.ListFilter) ([]api.ExecutionDescription, error) {
	if err := internal.ValidateSearchAttributes(c.ns.SearchAttributes, filter.SearchAttributes); err != nil {
		return nil, fmt.Errorf("list: %w", err)
	}
	if filter.WorkflowType != "" {
		if _, ok := c.ns.Workflow(filter.WorkflowType); !ok {
			return nil, fmt.Errorf("list %s: %w", filter.WorkflowType, ErrWorkflowNotDeclared)
		}
	}
	return c.backend.ListWorkflows(ctx, filter)
}
