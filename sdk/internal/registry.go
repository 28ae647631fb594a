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
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"
)

// Registry maps workflow type names to their entry points. It is what a
// worker dispatches inbound invocations through.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]*Workflow
}

func NewRegistry() *Registry {
	return &Registry{
		entries: make(map[string]*Workflow),
	}
}

func (r *Registry) Register(w *Workflow) error {
	if w == nil {
		return fmt.Errorf("register: nil workflow")
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.entries[w.Name()]; ok {
		return fmt.Errorf("%s: %w", w.Name(), ErrWorkflowAlreadyRegistered)
	}
	r.entries[w.Name()] = w
	return nil
}

func (r *Registry) Get(name string) (*Workflow, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	w, ok := r.entries[name]
	if !ok {
		return nil, fmt.Errorf("%s: %w", name, ErrWorkflowNotRegistered)
	}
	return w, nil
}

// Invoke runs an execution attempt of the workflow type name.
func (r *Registry) Invoke(ctx context.Context, rt Runtime, name string, rawArgs []any) Outcome {
	w, err := r.Get(name)
	if err != nil {
		return failed(NewNonRetryableApplicationError(err.Error(), "", err))
	}
	return w.Invoke(ctx, rt, rawArgs)
}

func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Sorted(maps.Keys(r.entries))
}

func (r *Registry) Size() int64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.entries))
}
