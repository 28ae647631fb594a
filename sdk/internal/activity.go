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
	"context"
	"fmt"
	"reflect"
	"runtime/debug"

	"github.com/ngnhng/typedflow/api"
	"github.com/ngnhng/typedflow/api/serde"
)

var (
	stdContextType = reflect.TypeOf((*context.Context)(nil)).Elem()
	sinkInfoType   = reflect.TypeOf(api.SinkInfo{})
)

// ActivityInfo describes the activity call an activity function is serving.
type ActivityInfo struct {
	Name     string
	Local    bool
	Workflow api.WorkflowInfo
}

type activityInfoKey struct{}

func WithActivityInfo(ctx context.Context, info ActivityInfo) context.Context {
	return context.WithValue(ctx, activityInfoKey{}, info)
}

// GetActivityInfo returns the info stored by the worker, if any.
func GetActivityInfo(ctx context.Context) (ActivityInfo, bool) {
	info, ok := ctx.Value(activityInfoKey{}).(ActivityInfo)
	return info, ok
}

// ValidateActivityFunc checks fn is func(context.Context, ...) returning
// error or (R, error).
func ValidateActivityFunc(fn any) error {
	fnt := reflect.TypeOf(fn)
	if fnt == nil || fnt.Kind() != reflect.Func {
		return fmt.Errorf("activity must be a function, got %T", fn)
	}
	if fnt.NumIn() == 0 || fnt.In(0) != stdContextType {
		return fmt.Errorf("activity function must accept context.Context as its first argument")
	}
	if fnt.IsVariadic() {
		return fmt.Errorf("variadic activity functions are not supported")
	}
	switch {
	case fnt.NumOut() == 1 && fnt.Out(0) == errorType:
	case fnt.NumOut() == 2 && fnt.Out(1) == errorType:
	default:
		return fmt.Errorf("activity function must return error or (R, error), got %v", fnt)
	}
	return nil
}

// InvokeActivity calls fn with ctx and inputs converted to its parameter
// types. A panic in fn is returned as a PanicError.
func InvokeActivity(ctx context.Context, fn any, conv *serde.TypeConverter, inputs []any) (result any, err error) {
	if err := ValidateActivityFunc(fn); err != nil {
		return nil, err
	}
	fnv := reflect.ValueOf(fn)
	fnt := fnv.Type()

	if fnt.NumIn() != len(inputs)+1 { // +1 for the context.Context
		return nil, NewNonRetryableApplicationError(
			fmt.Sprintf("argument count mismatch: activity expects %d, got %d", fnt.NumIn()-1, len(inputs)),
			DecodeFailureType, nil)
	}
	values, err := DecodeArgs(conv, inputs, paramTypes(fnt, 1))
	if err != nil {
		return nil, err
	}
	if ctx == nil {
		ctx = context.Background()
	}

	defer func() {
		if r := recover(); r != nil {
			result, err = nil, NewPanicError(r, string(debug.Stack()))
		}
	}()
	out := fnv.Call(append([]reflect.Value{reflect.ValueOf(ctx)}, values...))
	if last := out[len(out)-1]; !last.IsNil() {
		return nil, last.Interface().(error)
	}
	if len(out) == 2 {
		return out[0].Interface(), nil
	}
	return nil, nil
}

// ValidateSinkFunc checks fn is func(api.SinkInfo, ...) with an optional
// error result.
func ValidateSinkFunc(fn any) error {
	fnt := reflect.TypeOf(fn)
	if fnt == nil || fnt.Kind() != reflect.Func {
		return fmt.Errorf("sink must be a function, got %T", fn)
	}
	if fnt.NumIn() == 0 || fnt.In(0) != sinkInfoType {
		return fmt.Errorf("sink function must accept api.SinkInfo as its first argument")
	}
	if fnt.NumOut() > 1 || (fnt.NumOut() == 1 && fnt.Out(0) != errorType) {
		return fmt.Errorf("sink function may only return error, got %v", fnt)
	}
	return nil
}

// InvokeSink calls a sink implementation. Sink failures never reach the
// workflow; the caller logs them.
func InvokeSink(info api.SinkInfo, fn any, conv *serde.TypeConverter, inputs []any) (err error) {
	if err := ValidateSinkFunc(fn); err != nil {
		return err
	}
	fnv := reflect.ValueOf(fn)
	values, err := DecodeArgs(conv, inputs, paramTypes(fnv.Type(), 1))
	if err != nil {
		return err
	}
	defer func() {
		if r := recover(); r != nil {
			err = NewPanicError(r, string(debug.Stack()))
		}
	}()
	out := fnv.Call(append([]reflect.Value{reflect.ValueOf(info)}, values...))
	if len(out) == 1 && !out[0].IsNil() {
		return out[0].Interface().(error)
	}
	return nil
}
