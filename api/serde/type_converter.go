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
package serde

import (
	"errors"
	"fmt"
	"reflect"
)

// ErrNotPointer is returned by Assign when the destination is not a non-nil pointer.
var ErrNotPointer = errors.New("destination must be a non-nil pointer")

// TypeConverter turns loosely typed payload values (as decoded into any) into
// the concrete Go types declared by workflow, activity and handler functions.
// Conversions that need more than a reflect conversion are done by
// round-tripping the value through the configured BinarySerde.
type TypeConverter struct {
	serde BinarySerde
}

// NewTypeConverter creates a new type converter using the provided serializer.
func NewTypeConverter(s BinarySerde) *TypeConverter {
	if s == nil {
		s = Default()
	}
	return &TypeConverter{serde: s}
}

// Serde returns the serializer backing the converter.
func (tc *TypeConverter) Serde() BinarySerde { return tc.serde }

// ConvertToType converts a value to the target type.
func (tc *TypeConverter) ConvertToType(value any, targetType reflect.Type) (reflect.Value, error) {
	if value == nil {
		return reflect.Zero(targetType), nil
	}

	valueType := reflect.TypeOf(value)
	if valueType == targetType {
		return reflect.ValueOf(value), nil
	}

	if targetType.Kind() == reflect.Interface {
		if valueType.Implements(targetType) {
			v := reflect.New(targetType).Elem()
			v.Set(reflect.ValueOf(value))
			return v, nil
		}
		return reflect.Value{}, fmt.Errorf("%v does not implement %v", valueType, targetType)
	}

	if isNumericKind(valueType.Kind()) && isNumericKind(targetType.Kind()) {
		return tc.convertNumeric(value, valueType, targetType)
	}

	// reflect allows int -> string as a rune conversion; payloads never mean that.
	if targetType.Kind() == reflect.String && valueType.Kind() != reflect.String {
		return reflect.Value{}, fmt.Errorf("cannot convert %v (%v) to %v", value, valueType, targetType)
	}

	if valueType.ConvertibleTo(targetType) && directlyConvertible(valueType, targetType) {
		return reflect.ValueOf(value).Convert(targetType), nil
	}

	if targetType.Kind() == reflect.Pointer && valueType == targetType.Elem() {
		ptr := reflect.New(valueType)
		ptr.Elem().Set(reflect.ValueOf(value))
		return ptr, nil
	}

	return tc.convertViaSerializer(value, targetType)
}

// convertNumeric converts between numeric kinds, refusing lossy conversions.
func (tc *TypeConverter) convertNumeric(value any, valueType, targetType reflect.Type) (reflect.Value, error) {
	src := reflect.ValueOf(value)
	out := reflect.New(targetType).Elem()

	switch {
	case isFloatKind(valueType.Kind()):
		f := src.Float()
		switch {
		case isFloatKind(targetType.Kind()):
			if out.OverflowFloat(f) {
				return reflect.Value{}, overflowErr(value, targetType)
			}
			out.SetFloat(f)
		case isUnsignedKind(targetType.Kind()):
			u := uint64(f)
			if f < 0 || float64(u) != f || out.OverflowUint(u) {
				return reflect.Value{}, fmt.Errorf("cannot convert %v to %v without losing precision", f, targetType)
			}
			out.SetUint(u)
		default:
			i := int64(f)
			if float64(i) != f || out.OverflowInt(i) {
				return reflect.Value{}, fmt.Errorf("cannot convert %v to %v without losing precision", f, targetType)
			}
			out.SetInt(i)
		}
	case isUnsignedKind(valueType.Kind()):
		u := src.Uint()
		switch {
		case isFloatKind(targetType.Kind()):
			out.SetFloat(float64(u))
		case isUnsignedKind(targetType.Kind()):
			if out.OverflowUint(u) {
				return reflect.Value{}, overflowErr(value, targetType)
			}
			out.SetUint(u)
		default:
			if u > 1<<63-1 || out.OverflowInt(int64(u)) {
				return reflect.Value{}, overflowErr(value, targetType)
			}
			out.SetInt(int64(u))
		}
	default:
		i := src.Int()
		switch {
		case isFloatKind(targetType.Kind()):
			out.SetFloat(float64(i))
		case isUnsignedKind(targetType.Kind()):
			if i < 0 || out.OverflowUint(uint64(i)) {
				return reflect.Value{}, overflowErr(value, targetType)
			}
			out.SetUint(uint64(i))
		default:
			if out.OverflowInt(i) {
				return reflect.Value{}, overflowErr(value, targetType)
			}
			out.SetInt(i)
		}
	}
	return out, nil
}

// convertViaSerializer converts by encoding the value and decoding it into a
// fresh instance of the target type.
func (tc *TypeConverter) convertViaSerializer(value any, targetType reflect.Type) (reflect.Value, error) {
	data, err := tc.serde.SerializeBinary(value)
	if err != nil {
		return reflect.Value{}, fmt.Errorf("failed to serialize value for type conversion: %w", err)
	}

	var targetValue reflect.Value
	if targetType.Kind() == reflect.Pointer {
		targetValue = reflect.New(targetType.Elem())
	} else {
		targetValue = reflect.New(targetType)
	}

	if err := tc.serde.DeserializeBinary(data, targetValue.Interface()); err != nil {
		return reflect.Value{}, fmt.Errorf("failed to deserialize value to %v: %w", targetType, err)
	}

	if targetType.Kind() != reflect.Pointer {
		return targetValue.Elem(), nil
	}
	return targetValue, nil
}

// ConvertSlice converts every element of values to targetElemType.
func (tc *TypeConverter) ConvertSlice(values []any, targetElemType reflect.Type) ([]reflect.Value, error) {
	result := make([]reflect.Value, len(values))
	for i, val := range values {
		converted, err := tc.ConvertToType(val, targetElemType)
		if err != nil {
			return nil, fmt.Errorf("failed to convert element %d: %w", i, err)
		}
		result[i] = converted
	}
	return result, nil
}

// ConvertArgs converts values positionally, values[i] to types[i]. The caller
// guarantees len(values) <= len(types); missing trailing values become zero values.
func (tc *TypeConverter) ConvertArgs(values []any, types []reflect.Type) ([]reflect.Value, error) {
	if len(values) > len(types) {
		return nil, fmt.Errorf("got %d values for %d parameters", len(values), len(types))
	}
	out := make([]reflect.Value, len(types))
	for i, t := range types {
		if i >= len(values) {
			out[i] = reflect.Zero(t)
			continue
		}
		v, err := tc.ConvertToType(values[i], t)
		if err != nil {
			return nil, fmt.Errorf("argument %d: %w", i, err)
		}
		out[i] = v
	}
	return out, nil
}

// Assign converts value into the variable valuePtr points to.
func (tc *TypeConverter) Assign(value any, valuePtr any) error {
	if valuePtr == nil {
		return ErrNotPointer
	}
	rv := reflect.ValueOf(valuePtr)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return ErrNotPointer
	}
	converted, err := tc.ConvertToType(value, rv.Elem().Type())
	if err != nil {
		return err
	}
	rv.Elem().Set(converted)
	return nil
}

// directlyConvertible limits reflect conversions to shapes that keep meaning:
// named/unnamed variants of the same kind and string/byte slices.
func directlyConvertible(from, to reflect.Type) bool {
	if from.Kind() == to.Kind() {
		switch from.Kind() {
		case reflect.Slice, reflect.Array, reflect.Map, reflect.Pointer:
			return from.Elem() == to.Elem()
		case reflect.Struct:
			return true
		default:
			return true
		}
	}
	isBytes := func(t reflect.Type) bool { return t.Kind() == reflect.Slice && t.Elem().Kind() == reflect.Uint8 }
	return from.Kind() == reflect.String && isBytes(to)
}

func overflowErr(value any, targetType reflect.Type) error {
	return fmt.Errorf("value %v overflows %v", value, targetType)
}

func isNumericKind(k reflect.Kind) bool {
	return isFloatKind(k) || isIntegerKind(k)
}

func isFloatKind(k reflect.Kind) bool {
	return k == reflect.Float32 || k == reflect.Float64
}

func isUnsignedKind(k reflect.Kind) bool {
	switch k {
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return true
	}
	return false
}

func isIntegerKind(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return true
	}
	return isUnsignedKind(k)
}
