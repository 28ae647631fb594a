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
	"reflect"
	"strings"
	"testing"

	"github.com/ngnhng/typedflow/api/serde"
)

type person struct {
	Name string `json:"name"`
	Age  int    `json:"age"`
}

func personSchema(t *testing.T) *ArgumentSchema {
	t.Helper()
	s, err := SchemaFor(person{}, 0)
	if err != nil {
		t.Fatalf("SchemaFor: %v", err)
	}
	return s
}

func TestValidate_NoSchema(t *testing.T) {
	args := []any{"anything", 1, nil}
	got, err := Validate(args, nil)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if !reflect.DeepEqual(got, args) {
		t.Errorf("got %v, want %v", got, args)
	}
}

func TestValidate_Identity(t *testing.T) {
	schema := personSchema(t)
	tests := [][]any{
		{map[string]any{"name": "ada", "age": 36}, 1},
		{person{Name: "bob", Age: 0}, int64(-3)},
		{map[string]any{"name": "", "age": 0}, uint8(7)},
	}
	for _, args := range tests {
		got, err := Validate(args, schema)
		if err != nil {
			t.Fatalf("Validate(%v): %v", args, err)
		}
		if !reflect.DeepEqual(got, args) {
			t.Errorf("Validate changed the arguments: got %v, want %v", got, args)
		}
	}
}

func TestValidate_Violations(t *testing.T) {
	schema := personSchema(t)
	tests := []struct {
		name string
		args []any
		want []string
	}{
		{
			name: "wrong field type",
			args: []any{map[string]any{"name": 5, "age": 1}, 1},
			want: []string{"args[0].name: Expected string, received number"},
		},
		{
			name: "one line per field",
			args: []any{map[string]any{"name": 5, "age": "x"}, "y"},
			want: []string{
				"args[0].age: Expected integer, received string",
				"args[0].name: Expected string, received number",
				"args[1]: Expected integer, received string",
			},
		},
		{
			name: "missing field",
			args: []any{map[string]any{"age": 1}, 1},
			want: []string{"args[0].name: Required"},
		},
		{
			name: "unknown field",
			args: []any{map[string]any{"name": "a", "age": 1, "nick": "z"}, 1},
			want: []string{"args[0].nick: Unrecognized key"},
		},
		{
			name: "too few arguments",
			args: []any{map[string]any{"name": "a", "age": 1}},
			want: []string{"args: Array must contain at least 2 element(s)"},
		},
		{
			name: "too many arguments",
			args: []any{map[string]any{"name": "a", "age": 1}, 1, 2},
			want: []string{"args: Array must contain at most 2 element(s)"},
		},
		{
			name: "fraction for integer",
			args: []any{map[string]any{"name": "a", "age": 1.5}, 1},
			want: []string{"args[0].age: Expected integer, received number"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Validate(tt.args, schema)
			var vf *ValidationFailure
			if !errors.As(err, &vf) {
				t.Fatalf("err = %v, want *ValidationFailure", err)
			}
			if !IsNonRetryable(err) {
				t.Error("validation failure must be non-retryable")
			}

			lines := strings.Split(vf.Error(), "\n")
			if lines[0] != "Invalid workflow arguments:" {
				t.Errorf("header = %q", lines[0])
			}
			got := make([]string, 0, len(lines)-1)
			for _, l := range lines[1:] {
				got = append(got, strings.TrimPrefix(l, "  "))
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("violations:\n got  %q\n want %q", got, tt.want)
			}
		})
	}
}

func TestValidate_OrdersIndexesNumerically(t *testing.T) {
	samples := make([]any, 12)
	for i := range samples {
		samples[i] = 0
	}
	schema, err := SchemaFor(samples...)
	if err != nil {
		t.Fatalf("SchemaFor: %v", err)
	}
	args := make([]any, 12)
	for i := range args {
		args[i] = i
	}
	args[10] = "ten"
	args[2] = "two"

	_, err = Validate(args, schema)
	var vf *ValidationFailure
	if !errors.As(err, &vf) {
		t.Fatalf("err = %v, want *ValidationFailure", err)
	}
	var paths []string
	for _, v := range vf.Violations {
		paths = append(paths, v.Path)
	}
	if want := []string{"args[2]", "args[10]"}; !reflect.DeepEqual(paths, want) {
		t.Errorf("paths = %v, want %v", paths, want)
	}
}

func TestPathLess(t *testing.T) {
	tests := []struct {
		a, b string
		want bool
	}{
		{"args[2]", "args[10]", true},
		{"args[10]", "args[2]", false},
		{"args[0].age", "args[0].name", true},
		{"args[1]", "args[1].name", true},
		{"args[3].items[9]", "args[3].items[11]", true},
		{"args[0]", "args[0]", false},
	}
	for _, tt := range tests {
		if got := pathLess(tt.a, tt.b); got != tt.want {
			t.Errorf("pathLess(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestValidate_Deterministic(t *testing.T) {
	schema := personSchema(t)
	args := []any{map[string]any{"name": 1, "age": "a", "x": 1, "y": 2}, "z"}

	_, first := Validate(args, schema)
	for range 20 {
		if _, err := Validate(args, schema); err.Error() != first.Error() {
			t.Fatalf("message changed between runs:\n%v\n---\n%v", first, err)
		}
	}
}

func TestNewArgumentSchema(t *testing.T) {
	schema, err := NewArgumentSchema([]byte(`{
		"type": "array",
		"items": [{"type": "object", "properties": {"delta": {"type": "integer", "minimum": 1}}, "required": ["delta"]}]
	}`))
	if err != nil {
		t.Fatalf("NewArgumentSchema: %v", err)
	}

	if _, err := Validate([]any{map[string]any{"delta": 2}}, schema); err != nil {
		t.Errorf("valid args rejected: %v", err)
	}
	_, err = Validate([]any{map[string]any{"delta": 0}}, schema)
	if err == nil || !strings.Contains(err.Error(), "args[0].delta: Number must be greater than or equal to 1") {
		t.Errorf("err = %v", err)
	}

	if _, err := NewArgumentSchema([]byte(`{"type": 12}`)); err == nil {
		t.Error("invalid schema compiled")
	}
}

func TestSchemaFromValue(t *testing.T) {
	doc := map[string]any{
		"type":  "array",
		"items": []any{map[any]any{"type": "string", "enum": []any{"a", "b"}}},
	}
	schema, err := SchemaFromValue(doc)
	if err != nil {
		t.Fatalf("SchemaFromValue: %v", err)
	}
	_, err = Validate([]any{"c"}, schema)
	if err == nil || !strings.Contains(err.Error(), "args[0]: Invalid enum value") {
		t.Errorf("err = %v", err)
	}
}

func TestSchemaOf(t *testing.T) {
	schema, err := SchemaOf(func(Context, string, person) error { return nil })
	if err != nil {
		t.Fatalf("SchemaOf: %v", err)
	}
	if _, err := Validate([]any{"id", map[string]any{"name": "a", "age": 1}}, schema); err != nil {
		t.Errorf("valid args rejected: %v", err)
	}

	if _, err := SchemaOf(func(string) error { return nil }); err == nil {
		t.Error("SchemaOf accepted a function without Context")
	}
	if _, err := SchemaFor(func() {}); err == nil {
		t.Error("SchemaFor accepted a func argument")
	}
}

func TestDecodeArgs(t *testing.T) {
	conv := serde.NewTypeConverter(nil)
	types := []reflect.Type{reflect.TypeOf(person{}), reflect.TypeOf(0)}

	values, err := DecodeArgs(conv, []any{map[string]any{"name": "a", "age": int8(3)}}, types)
	if err != nil {
		t.Fatalf("DecodeArgs: %v", err)
	}
	if p := values[0].Interface().(person); p.Name != "a" || p.Age != 3 {
		t.Errorf("person = %+v", p)
	}
	if values[1].Interface() != 0 {
		t.Errorf("missing trailing argument = %v, want zero", values[1])
	}

	_, err = DecodeArgs(conv, []any{1, 2, 3}, types)
	if !IsNonRetryable(err) {
		t.Errorf("surplus arguments err = %v, want non-retryable", err)
	}
}
