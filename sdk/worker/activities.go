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

package worker

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/ngnhng/typedflow/sdk/internal"
	"github.com/ngnhng/typedflow/sdk/workflow"
)

// ActivityFactory builds one activity function from the dependencies the
// activities of a worker share (clients, connection pools, configuration).
type ActivityFactory[D any] func(ctx context.Context, deps D) (any, error)

// NewActivities runs every factory with deps and returns the activity
// functions keyed by name, ready for Worker.RegisterActivities. Every name
// must be declared in ns, plain or scoped. Factories run concurrently; the
// first failure cancels the context passed to the others.
func NewActivities[D any](ctx context.Context, ns *workflow.Namespace, deps D, factories map[string]ActivityFactory[D]) (map[string]any, error) {
	names := sortedKeys(factories)
	for _, name := range names {
		if !ns.Activities.Has(name) {
			return nil, NewRegistrationError(name, ErrUndeclaredActivity)
		}
	}

	var mu sync.Mutex
	out := make(map[string]any, len(factories))

	g, gctx := errgroup.WithContext(ctx)
	for _, name := range names {
		factory := factories[name]
		g.Go(func() error {
			fn, err := factory(gctx, deps)
			if err != nil {
				return NewRegistrationError(name, err)
			}
			if err := internal.ValidateActivityFunc(fn); err != nil {
				return NewRegistrationError(name, fmt.Errorf("%w: %v", ErrInvalidFunction, err))
			}
			mu.Lock()
			out[name] = fn
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func sortedKeys[V any](m map[string]V) []string {
	return slices.Sorted(maps.Keys(m))
}
