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
	"encoding/json"
	"errors"
	"fmt"
	"reflect"

	"github.com/invopop/jsonschema"
	"github.com/xeipuuv/gojsonschema"
)

// ArgumentSchema is a compiled JSON Schema describing a workflow's positional
// argument list. The schema applies to the whole list, usually as a tuple:
// {"type": "array", "items": [...], "minItems": n, "maxItems": n}.
type ArgumentSchema struct {
	source []byte
	schema *gojsonschema.Schema
}

// NewArgumentSchema compiles a JSON Schema document.
func NewArgumentSchema(doc []byte) (*ArgumentSchema, error) {
	s, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(doc))
	if err != nil {
		return nil, fmt.Errorf("compile argument schema: %w", err)
	}
	return &ArgumentSchema{source: append([]byte(nil), doc...), schema: s}, nil
}

// MustArgumentSchema is like NewArgumentSchema but panics on error.
func MustArgumentSchema(doc []byte) *ArgumentSchema {
	s, err := NewArgumentSchema(doc)
	if err != nil {
		panic(err)
	}
	return s
}

// SchemaFromValue compiles a schema held as a decoded document, e.g. a
// map[string]any read from YAML.
func SchemaFromValue(doc any) (*ArgumentSchema, error) {
	data, err := json.Marshal(normalizeDocument(doc))
	if err != nil {
		return nil, fmt.Errorf("encode argument schema: %w", err)
	}
	return NewArgumentSchema(data)
}

// SchemaForTypes derives a tuple schema from Go types. Struct fields follow
// their json tags: fields without omitempty are required and unknown fields
// are rejected.
func SchemaForTypes(types ...reflect.Type) (*ArgumentSchema, error) {
	r := &jsonschema.Reflector{
		DoNotReference:            true,
		Anonymous:                 true,
		AllowAdditionalProperties: false,
	}

	items := make([]json.RawMessage, 0, len(types))
	for i, t := range types {
		if t == nil {
			return nil, fmt.Errorf("argument %d: nil type", i)
		}
		s, err := reflectType(r, t)
		if err != nil {
			return nil, fmt.Errorf("argument %d: %w", i, err)
		}
		s.Version = ""
		s.ID = ""
		raw, err := json.Marshal(s)
		if err != nil {
			return nil, fmt.Errorf("argument %d: encode schema for %v: %w", i, t, err)
		}
		items = append(items, raw)
	}

	tuple := map[string]any{
		"type":     "array",
		"items":    items,
		"minItems": len(items),
		"maxItems": len(items),
	}
	data, err := json.Marshal(tuple)
	if err != nil {
		return nil, err
	}
	return NewArgumentSchema(data)
}

// reflectType converts the reflector's panic on unsupported kinds (funcs,
// channels) into an error.
func reflectType(r *jsonschema.Reflector, t reflect.Type) (s *jsonschema.Schema, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("reflect schema for %v: %v", t, rec)
		}
	}()
	return r.ReflectFromType(t), nil
}

// SchemaFor derives a tuple schema from sample values of each argument.
func SchemaFor(samples ...any) (*ArgumentSchema, error) {
	types := make([]reflect.Type, len(samples))
	for i, s := range samples {
		if s == nil {
			return nil, fmt.Errorf("argument %d: nil sample", i)
		}
		types[i] = reflect.TypeOf(s)
	}
	return SchemaForTypes(types...)
}

// SchemaOf derives a tuple schema from the parameters of a workflow function,
// skipping its leading Context.
func SchemaOf(workflowFn any) (*ArgumentSchema, error) {
	fnType := reflect.TypeOf(workflowFn)
	if fnType == nil || fnType.Kind() != reflect.Func {
		return nil, errors.New("SchemaOf: not a function")
	}
	if fnType.NumIn() == 0 || fnType.In(0) != contextType {
		return nil, fmt.Errorf("SchemaOf: %v: first parameter must be workflow Context", fnType)
	}
	return SchemaForTypes(paramTypes(fnType, 1)...)
}

// JSON returns the schema document.
func (s *ArgumentSchema) JSON() []byte {
	return append([]byte(nil), s.source...)
}

func (s *ArgumentSchema) MarshalJSON() ([]byte, error) {
	return s.JSON(), nil
}

func (s *ArgumentSchema) validate(args []any) (*gojsonschema.Result, error) {
	if args == nil {
		args = []any{}
	}
	return s.schema.Validate(gojsonschema.NewGoLoader(args))
}

// normalizeDocument turns map[any]any nodes into map[string]any so the
// document can be JSON encoded.
func normalizeDocument(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = normalizeDocument(val)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[fmt.Sprint(k)] = normalizeDocument(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = normalizeDocument(val)
		}
		return out
	}
	return v
}
