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
	"log/slog"
	"reflect"
	"runtime"
	"strings"
)

var (
	contextType = reflect.TypeOf((*Context)(nil)).Elem()
	errorType   = reflect.TypeOf((*error)(nil)).Elem()
)

func defaultLogger(l *slog.Logger) *slog.Logger {
	if l != nil {
		return l
	}
	return slog.Default()
}

func extractFullFunctionName(fn any) (string, error) {
	if fn == nil || reflect.TypeOf(fn).Kind() != reflect.Func {
		return "", fmt.Errorf("fn is not of function type")
	}
	fnObj := runtime.FuncForPC(reflect.ValueOf(fn).Pointer())
	if fnObj == nil {
		return "", fmt.Errorf("could not retrieve function metadata")
	}

	return fnObj.Name(), nil
}

// FunctionName returns the short name of fn: the identifier after the last
// package or receiver qualifier, without the method value suffix.
func FunctionName(fn any) (string, error) {
	full, err := extractFullFunctionName(fn)
	if err != nil {
		return "", err
	}
	full = strings.TrimSuffix(full, "-fm")
	if i := strings.LastIndex(full, "."); i >= 0 {
		full = full[i+1:]
	}
	return full, nil
}

// ActivityName accepts either an activity name or an activity function.
func ActivityName(nameOrFn any) (string, error) {
	switch v := nameOrFn.(type) {
	case string:
		if v == "" {
			return "", fmt.Errorf("empty activity name")
		}
		return v, nil
	default:
		return FunctionName(nameOrFn)
	}
}

func debugAnyValues(vals []any) string {
	if len(vals) == 0 {
		return "[]any{} (empty)"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "[]any{%d items}:", len(vals))
	for i, v := range vals {
		if v == nil {
			fmt.Fprintf(&b, " [%d]=<nil>", i)
			continue
		}
		fmt.Fprintf(&b, " [%d]=%v(%+v)", i, reflect.TypeOf(v), v)
	}
	return b.String()
}
