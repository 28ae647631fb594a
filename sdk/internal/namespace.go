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
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"

	"github.com/ngnhng/typedflow/api"
)

// Declaration identifies a workflow type and the names it owns.
type Declaration struct {
	Name string
	// Schema validates the positional arguments. Nil disables validation.
	Schema  *ArgumentSchema
	Signals []string
	Queries []string
}

func (d Declaration) clone() Declaration {
	d.Signals = slices.Clone(d.Signals)
	d.Queries = slices.Clone(d.Queries)
	return d
}

// Declares reports whether name is a declared channel of the given kind.
func (d Declaration) Declares(kind api.ChannelKind, name string) bool {
	switch kind {
	case api.SignalChannel:
		return slices.Contains(d.Signals, name)
	case api.QueryChannel:
		return slices.Contains(d.Queries, name)
	}
	return false
}

func (d Declaration) validate() error {
	if d.Name == "" {
		return errors.New("workflow declaration has empty name")
	}
	if strings.Contains(d.Name, api.ScopeSeparator) {
		return fmt.Errorf("workflow name %q must not contain %q", d.Name, api.ScopeSeparator)
	}
	for kind, names := range map[api.ChannelKind][]string{api.SignalChannel: d.Signals, api.QueryChannel: d.Queries} {
		seen := make(map[string]struct{}, len(names))
		for _, n := range names {
			if n == "" {
				return fmt.Errorf("workflow %s: empty %s name", d.Name, kind)
			}
			if _, dup := seen[n]; dup {
				return fmt.Errorf("workflow %s: %s %q declared twice", d.Name, kind, n)
			}
			seen[n] = struct{}{}
		}
	}
	return nil
}

// ActivityCatalog is the set of activity names known to a namespace. Names
// are either plain or scoped ("<workflow-type>$<name>"). Workers may add
// names after the namespace is built.
type ActivityCatalog struct {
	mu    sync.RWMutex
	names map[string]struct{}
}

func NewActivityCatalog(names ...string) *ActivityCatalog {
	c := &ActivityCatalog{names: make(map[string]struct{}, len(names))}
	c.Add(names...)
	return c
}

func (c *ActivityCatalog) Add(names ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, n := range names {
		if n != "" {
			c.names[n] = struct{}{}
		}
	}
}

func (c *ActivityCatalog) Has(name string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.names[name]
	return ok
}

// Names returns the catalog's names in sorted order.
func (c *ActivityCatalog) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Sorted(maps.Keys(c.names))
}

// Namespace groups everything workflows of one application share: workflow
// declarations, activity names, search attribute types and sink functions.
type Namespace struct {
	Name       string
	TaskQueues []string
	Activities *ActivityCatalog
	Workflows  map[string]Declaration
	// SearchAttributes maps attribute names to their declared type.
	SearchAttributes map[string]api.SearchAttributeType
	// Sinks maps sink names to their function names.
	Sinks map[string][]string
}

func NewNamespace(name string) *Namespace {
	return &Namespace{
		Name:             name,
		Activities:       NewActivityCatalog(),
		Workflows:        make(map[string]Declaration),
		SearchAttributes: make(map[string]api.SearchAttributeType),
		Sinks:            make(map[string][]string),
	}
}

// DefaultTaskQueue returns the first configured task queue.
func (ns *Namespace) DefaultTaskQueue() string {
	if len(ns.TaskQueues) == 0 {
		return api.DefaultTaskQueue
	}
	return ns.TaskQueues[0]
}

// DeclareWorkflow adds a workflow declaration. Declarations are immutable:
// declaring the same name twice fails.
func (ns *Namespace) DeclareWorkflow(decl Declaration) error {
	if err := decl.validate(); err != nil {
		return err
	}
	if ns.Workflows == nil {
		ns.Workflows = make(map[string]Declaration)
	}
	if _, ok := ns.Workflows[decl.Name]; ok {
		return fmt.Errorf("workflow %s: %w", decl.Name, ErrWorkflowAlreadyRegistered)
	}
	ns.Workflows[decl.Name] = decl.clone()
	return nil
}

func (ns *Namespace) Workflow(name string) (Declaration, bool) {
	d, ok := ns.Workflows[name]
	return d, ok
}

func (ns *Namespace) DeclareActivities(names ...string) {
	if ns.Activities == nil {
		ns.Activities = NewActivityCatalog()
	}
	ns.Activities.Add(names...)
}

// DeclareScopedActivities declares activities private to workflowType.
func (ns *Namespace) DeclareScopedActivities(workflowType string, names ...string) {
	scoped := make([]string, 0, len(names))
	for _, n := range names {
		scoped = append(scoped, ScopedName(workflowType, n))
	}
	ns.DeclareActivities(scoped...)
}

func (ns *Namespace) DeclareSearchAttribute(name string, typ api.SearchAttributeType) error {
	if name == "" {
		return errors.New("empty search attribute name")
	}
	if !typ.Valid() {
		return fmt.Errorf("search attribute %s: unknown type %q", name, typ)
	}
	if ns.SearchAttributes == nil {
		ns.SearchAttributes = make(map[string]api.SearchAttributeType)
	}
	ns.SearchAttributes[name] = typ
	return nil
}

func (ns *Namespace) DeclareSink(sink string, functions ...string) {
	if ns.Sinks == nil {
		ns.Sinks = make(map[string][]string)
	}
	for _, fn := range functions {
		if !slices.Contains(ns.Sinks[sink], fn) {
			ns.Sinks[sink] = append(ns.Sinks[sink], fn)
		}
	}
}

func (ns *Namespace) HasSink(sink, function string) bool {
	return slices.Contains(ns.Sinks[sink], function)
}

// Validate checks the namespace is usable by a factory or a client.
func (ns *Namespace) Validate() error {
	if ns == nil {
		return errors.New("nil namespace")
	}
	if ns.Name == "" {
		return errors.New("namespace has empty name")
	}
	for name, decl := range ns.Workflows {
		if name != decl.Name {
			return fmt.Errorf("workflow %q declared under key %q", decl.Name, name)
		}
		if err := decl.validate(); err != nil {
			return err
		}
	}
	for name, typ := range ns.SearchAttributes {
		if !typ.Valid() {
			return fmt.Errorf("search attribute %s: unknown type %q", name, typ)
		}
	}
	return nil
}
