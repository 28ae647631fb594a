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

	"github.com/ngnhng/typedflow/api/serde"
)

// newSignalHandler adapts a typed signal function, func(T1, ..., Tn) or
// func(T1, ..., Tn) error, to a SignalHandler.
func newSignalHandler(fn any, conv *serde.TypeConverter) (SignalHandler, error) {
	if h, ok := fn.(SignalHandler); ok {
		return h, nil
	}
	if h, ok := fn.(func([]any) error); ok {
		return h, nil
	}
	fnType, err := handlerType(fn)
	if err != nil {
		return nil, err
	}
	switch {
	case fnType.NumOut() == 0:
	case fnType.NumOut() == 1 && fnType.Out(0) == errorType:
	default:
		return nil, fmt.Errorf("%w: signal handler must return nothing or error, got %v", ErrInvalidHandler, fnType)
	}

	fnVal := reflect.ValueOf(fn)
	in := paramTypes(fnType, 0)
	return func(args []any) error {
		values, err := DecodeArgs(conv, args, in)
		if err != nil {
			return err
		}
		out := fnVal.Call(values)
		if len(out) == 1 && !out[0].IsNil() {
			return out[0].Interface().(error)
		}
		return nil
	}, nil
}

// newQueryHandler adapts a typed query function, func(T1, ..., Tn) R or
// func(T1, ..., Tn) (R, error), to a QueryHandler.
func newQueryHandler(fn any, conv *serde.TypeConverter) (QueryHandler, error) {
	if h, ok := fn.(QueryHandler); ok {
		return h, nil
	}
	if h, ok := fn.(func([]any) (any, error)); ok {
		return h, nil
	}
	fnType, err := handlerType(fn)
	if err != nil {
		return nil, err
	}
	switch {
	case fnType.NumOut() == 1 && fnType.Out(0) != errorType:
	case fnType.NumOut() == 2 && fnType.Out(1) == errorType:
	default:
		return nil, fmt.Errorf("%w: query handler must return R or (R, error), got %v", ErrInvalidHandler, fnType)
	}

	fnVal := reflect.ValueOf(fn)
	in := paramTypes(fnType, 0)
	return func(args []any) (any, error) {
		values, err := DecodeArgs(conv, args, in)
		if err != nil {
			return nil, err
		}
		out := fnVal.Call(values)
		if len(out) == 2 && !out[1].IsNil() {
			return nil, out[1].Interface().(error)
		}
		return out[0].Interface(), nil
	}, nil
}

func handlerType(fn any) (reflect.Type, error) {
	if fn == nil {
		return nil, fmt.Errorf("%w: nil handler", ErrInvalidHandler)
	}
	fnType := reflect.TypeOf(fn)
	if fnType.Kind() != reflect.Func {
		return nil, fmt.Errorf("%w: expected function, got %v", ErrInvalidHandler, fnType)
	}
	if fnType.IsVariadic() {
		return nil, fmt.Errorf("%w: variadic handlers are not supported", ErrInvalidHandler)
	}
	return fnType, nil
}

// paramTypes returns the parameter types of fnType starting at skip.
func paramTypes(fnType reflect.Type, skip int) []reflect.Type {
	types := make([]reflect.Type, 0, fnType.NumIn()-skip)
	for i := skip; i < fnType.NumIn(); i++ {
		types = append(types, fnType.In(i))
	}
	return types
}
