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

package workflow

import (
	"reflect"

	"github.com/ngnhng/typedflow/sdk/internal"
)

type (
	// Declaration names a workflow type, the schema of its positional
	// arguments and the signal and query names it owns.
	Declaration = internal.Declaration
	// ArgumentSchema is a compiled JSON Schema for a workflow's argument
	// tuple.
	ArgumentSchema    = internal.ArgumentSchema
	ValidationFailure = internal.ValidationFailure
	Violation         = internal.Violation
)

func NewArgumentSchema(doc []byte) (*ArgumentSchema, error) { return internal.NewArgumentSchema(doc) }
func MustArgumentSchema(doc []byte) *ArgumentSchema         { return internal.MustArgumentSchema(doc) }
func SchemaFromValue(doc any) (*ArgumentSchema, error)      { return internal.SchemaFromValue(doc) }

// SchemaFor derives the argument schema from one sample value per position.
//
//	schema, err := workflow.SchemaFor(Order{}, "")
func SchemaFor(samples ...any) (*ArgumentSchema, error) { return internal.SchemaFor(samples...) }

func SchemaForTypes(types ...reflect.Type) (*ArgumentSchema, error) {
	return internal.SchemaForTypes(types...)
}

// SchemaOf derives the argument schema from a workflow function's parameters.
func SchemaOf(workflowFn any) (*ArgumentSchema, error) { return internal.SchemaOf(workflowFn) }

// ValidateArgs checks args against schema. A nil schema accepts anything.
func ValidateArgs(args []any, schema *ArgumentSchema) error {
	_, err := internal.Validate(args, schema)
	return err
}
