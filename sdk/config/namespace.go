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

package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/ngnhng/typedflow/api"
	"github.com/ngnhng/typedflow/sdk/workflow"
)

// NamespaceFile is the YAML form of a namespace:
//
//	name: shop
//	task_queues: [orders]
//	activities: [charge, ship]
//	scoped_activities:
//	  orders: [reserve]
//	search_attributes:
//	  Customer: keyword
//	sinks:
//	  audit: [note]
//	workflows:
//	  - name: orders
//	    signals: [approve]
//	    queries: [status]
//	    schema:
//	      type: array
//	      items: [{type: object}]
type NamespaceFile struct {
	Name             string                             `yaml:"name"`
	TaskQueues       []string                           `yaml:"task_queues"`
	Activities       []string                           `yaml:"activities"`
	ScopedActivities map[string][]string                `yaml:"scoped_activities"`
	SearchAttributes map[string]api.SearchAttributeType `yaml:"search_attributes"`
	Sinks            map[string][]string                `yaml:"sinks"`
	Workflows        []WorkflowFile                     `yaml:"workflows"`
}

type WorkflowFile struct {
	Name    string   `yaml:"name"`
	Signals []string `yaml:"signals"`
	Queries []string `yaml:"queries"`
	// Schema is a JSON Schema document for the positional argument array.
	Schema map[string]any `yaml:"schema"`
}

// LoadNamespace reads and builds the namespace stored at path.
func LoadNamespace(path string) (*workflow.Namespace, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load namespace: %w", err)
	}
	ns, err := ParseNamespace(data)
	if err != nil {
		return nil, fmt.Errorf("load namespace %s: %w", path, err)
	}
	return ns, nil
}

// ParseNamespace builds a namespace from its YAML form. Unknown keys are
// rejected.
func ParseNamespace(data []byte) (*workflow.Namespace, error) {
	var f NamespaceFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode namespace: %w", err)
	}
	return f.Build()
}

func (f *NamespaceFile) Build() (*workflow.Namespace, error) {
	if f.Name == "" {
		return nil, errors.New("namespace name is required")
	}
	ns := workflow.NewNamespace(f.Name)
	ns.TaskQueues = slices.Clone(f.TaskQueues)
	ns.DeclareActivities(f.Activities...)
	for _, wfType := range sortedKeys(f.ScopedActivities) {
		ns.DeclareScopedActivities(wfType, f.ScopedActivities[wfType]...)
	}
	for _, name := range sortedKeys(f.SearchAttributes) {
		if err := ns.DeclareSearchAttribute(name, f.SearchAttributes[name]); err != nil {
			return nil, err
		}
	}
	for _, sink := range sortedKeys(f.Sinks) {
		ns.DeclareSink(sink, f.Sinks[sink]...)
	}
	for _, wf := range f.Workflows {
		decl := workflow.Declaration{Name: wf.Name, Signals: wf.Signals, Queries: wf.Queries}
		if wf.Schema != nil {
			schema, err := workflow.SchemaFromValue(wf.Schema)
			if err != nil {
				return nil, fmt.Errorf("workflow %s: %w", wf.Name, err)
			}
			decl.Schema = schema
		}
		if err := ns.DeclareWorkflow(decl); err != nil {
			return nil, err
		}
	}
	if err := ns.Validate(); err != nil {
		return nil, err
	}
	return ns, nil
}

func sortedKeys[V any](m map[string]V) []string {
	return slices.Sorted(maps.Keys(m))
}
