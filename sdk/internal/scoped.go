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
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/ngnhng/typedflow/api"
)

// ActivityHandle starts an activity with positional arguments.
type ActivityHandle func(args ...any) Future

// ActivityLookup resolves activity handles by name.
type ActivityLookup interface {
	// Lookup returns the handle for name, or false when there is none.
	Lookup(name string) (ActivityHandle, bool)
	// Names lists the names Lookup resolves, sorted.
	Names() []string
}

// ScopedName returns the composite name of an activity private to workflowType.
func ScopedName(workflowType, name string) string {
	return workflowType + api.ScopeSeparator + name
}

// ActivityMap is a flat mapping of plain and scoped activity names to handles.
type ActivityMap map[string]ActivityHandle

func (m ActivityMap) Lookup(name string) (ActivityHandle, bool) {
	h, ok := m[name]
	return h, ok
}

func (m ActivityMap) Names() []string {
	return slices.Sorted(maps.Keys(m))
}

type scopedView struct {
	all    ActivityLookup
	prefix string
}

// ForWorkflowType returns the activities of all that are scoped to
// workflowType, addressed by their bare name. Plain names are never exposed.
// The view holds no copy: every access reads the backing lookup, so names
// added to it later are visible.
func ForWorkflowType(all ActivityLookup, workflowType string) ActivityLookup {
	return scopedView{all: all, prefix: workflowType + api.ScopeSeparator}
}

func (v scopedView) Lookup(name string) (ActivityHandle, bool) {
	if v.all == nil || name == "" || strings.Contains(name, api.ScopeSeparator) {
		return nil, false
	}
	return v.all.Lookup(v.prefix + name)
}

func (v scopedView) Names() []string {
	if v.all == nil {
		return nil
	}
	var names []string
	for _, n := range v.all.Names() {
		if bare, ok := strings.CutPrefix(n, v.prefix); ok && bare != "" {
			names = append(names, bare)
		}
	}
	return names
}

// catalogLookup binds the names of an ActivityCatalog to engine calls.
type catalogLookup struct {
	catalog *ActivityCatalog
	bind    func(name string) ActivityHandle
}

func (c catalogLookup) Lookup(name string) (ActivityHandle, bool) {
	if c.catalog == nil || !c.catalog.Has(name) {
		return nil, false
	}
	return c.bind(name), true
}

func (c catalogLookup) Names() []string {
	if c.catalog == nil {
		return nil
	}
	return c.catalog.Names()
}

// ActivitySet is what workflow code uses to call activities.
type ActivitySet struct {
	lookup ActivityLookup
}

func NewActivitySet(lookup ActivityLookup) ActivitySet {
	return ActivitySet{lookup: lookup}
}

// Get returns the handle for name. A missing name yields (nil, false).
func (s ActivitySet) Get(name string) (ActivityHandle, bool) {
	if s.lookup == nil {
		return nil, false
	}
	return s.lookup.Lookup(name)
}

func (s ActivitySet) Has(name string) bool {
	_, ok := s.Get(name)
	return ok
}

func (s ActivitySet) Names() []string {
	if s.lookup == nil {
		return nil
	}
	return s.lookup.Names()
}

// Execute calls the activity named name. A missing name resolves the
// returned future to ErrActivityNotRegistered.
func (s ActivitySet) Execute(name string, args ...any) Future {
	h, ok := s.Get(name)
	if !ok {
		return NewFailedFuture(fmt.Errorf("%s: %w", name, ErrActivityNotRegistered))
	}
	return h(args...)
}
