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
	"reflect"
	"sort"
	"strconv"
	"strings"

	"github.com/ngnhng/typedflow/api/serde"
	"github.com/xeipuuv/gojsonschema"
)

const argsRoot = "args"

// Violation is one schema violation addressed by its path in the argument list.
type Violation struct {
	Path    string
	Message string
}

// ValidationFailure is returned when workflow arguments do not match the
// declared schema. It is terminal: retrying cannot make the arguments valid.
type ValidationFailure struct {
	Violations []Violation
}

func (f *ValidationFailure) Error() string {
	var b strings.Builder
	b.WriteString("Invalid workflow arguments:")
	for _, v := range f.Violations {
		b.WriteString("\n  ")
		b.WriteString(v.Path)
		b.WriteString(": ")
		b.WriteString(v.Message)
	}
	return b.String()
}

// Validate checks rawArgs against schema. With no schema the arguments pass
// through unchecked. On success the arguments are returned unchanged.
func Validate(rawArgs []any, schema *ArgumentSchema) ([]any, error) {
	if schema == nil {
		return rawArgs, nil
	}
	result, err := schema.validate(rawArgs)
	if err != nil {
		return nil, &ValidationFailure{Violations: []Violation{{Path: argsRoot, Message: err.Error()}}}
	}
	if result.Valid() {
		return rawArgs, nil
	}
	return nil, &ValidationFailure{Violations: violations(result.Errors())}
}

// violations keeps the first violation per path, ordered by path with
// array indexes compared numerically.
func violations(errs []gojsonschema.ResultError) []Violation {
	seen := make(map[string]struct{}, len(errs))
	out := make([]Violation, 0, len(errs))
	for _, re := range errs {
		v := Violation{Path: violationPath(re), Message: violationMessage(re)}
		if _, dup := seen[v.Path]; dup {
			continue
		}
		seen[v.Path] = struct{}{}
		out = append(out, v)
	}
	sort.SliceStable(out, func(i, j int) bool { return pathLess(out[i].Path, out[j].Path) })
	return out
}

func pathLess(a, b string) bool {
	as, bs := pathSegments(a), pathSegments(b)
	for i := 0; i < len(as) && i < len(bs); i++ {
		if as[i] == bs[i] {
			continue
		}
		ai, aerr := strconv.Atoi(as[i])
		bi, berr := strconv.Atoi(bs[i])
		if aerr == nil && berr == nil {
			return ai < bi
		}
		return as[i] < bs[i]
	}
	return len(as) < len(bs)
}

func pathSegments(p string) []string {
	return strings.FieldsFunc(p, func(r rune) bool { return r == '.' || r == '[' || r == ']' })
}

func violationPath(re gojsonschema.ResultError) string {
	const sep = "\x1f"
	var b strings.Builder
	b.WriteString(argsRoot)

	segments := strings.Split(re.Context().String(sep), sep)
	switch re.Type() {
	case "required", "additional_property_not_allowed":
		if p, ok := re.Details()["property"].(string); ok {
			segments = append(segments, p)
		}
	}
	for _, s := range segments {
		if s == "" || s == gojsonschema.STRING_CONTEXT_ROOT {
			continue
		}
		if _, err := strconv.Atoi(s); err == nil {
			b.WriteString("[" + s + "]")
			continue
		}
		b.WriteString("." + s)
	}
	return b.String()
}

func violationMessage(re gojsonschema.ResultError) string {
	d := re.Details()
	switch re.Type() {
	case "invalid_type":
		return fmt.Sprintf("Expected %v, received %s", d["expected"], receivedType(d["given"]))
	case "required":
		return "Required"
	case "additional_property_not_allowed":
		return "Unrecognized key"
	case "array_min_items":
		return fmt.Sprintf("Array must contain at least %v element(s)", d["min"])
	case "array_max_items":
		return fmt.Sprintf("Array must contain at most %v element(s)", d["max"])
	case "string_gte":
		return fmt.Sprintf("String must contain at least %v character(s)", d["min"])
	case "string_lte":
		return fmt.Sprintf("String must contain at most %v character(s)", d["max"])
	case "number_gte":
		return fmt.Sprintf("Number must be greater than or equal to %v", d["min"])
	case "number_lte":
		return fmt.Sprintf("Number must be less than or equal to %v", d["max"])
	case "enum":
		return fmt.Sprintf("Invalid enum value. Expected %v", d["allowed"])
	}
	return re.Description()
}

func receivedType(given any) string {
	s := fmt.Sprint(given)
	if s == "integer" {
		return "number"
	}
	return s
}

// DecodeArgs converts raw positional arguments to the given parameter types.
// Missing trailing arguments become zero values; surplus arguments and
// values that cannot be converted fail with a non-retryable error.
func DecodeArgs(conv *serde.TypeConverter, rawArgs []any, types []reflect.Type) ([]reflect.Value, error) {
	if len(rawArgs) > len(types) {
		return nil, NewNonRetryableApplicationError(
			fmt.Sprintf("expected at most %d arguments, got %d", len(types), len(rawArgs)),
			DecodeFailureType, nil)
	}
	values, err := conv.ConvertArgs(rawArgs, types)
	if err != nil {
		return nil, NewNonRetryableApplicationError("decode arguments", DecodeFailureType, err)
	}
	return values, nil
}
