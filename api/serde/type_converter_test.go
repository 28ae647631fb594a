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
package serde_test

import (
	"reflect"
	"testing"

	"github.com/ngnhng/typedflow/api/serde"
)

type order struct {
	ID    string         `json:"id" msgpack:"id"`
	Qty   int            `json:"qty" msgpack:"qty"`
	Price float64        `json:"price" msgpack:"price"`
	Tags  []string       `json:"tags" msgpack:"tags"`
	Line  *line          `json:"line,omitempty" msgpack:"line,omitempty"`
	Meta  map[string]any `json:"meta" msgpack:"meta"`
}

type line struct {
	SKU   string `json:"sku" msgpack:"sku"`
	Count int    `json:"count" msgpack:"count"`
}

var serdes = []struct {
	name  string
	serde serde.BinarySerde
}{
	{"JSON", &serde.JSONSerde{}},
	{"MessagePack", &serde.MsgpackSerde{}},
}

// roundTrip mimics a payload that crossed the engine boundary: encoded, then
// decoded without type information.
func roundTrip(t *testing.T, s serde.BinarySerde, v any) any {
	t.Helper()
	data, err := s.SerializeBinary(v)
	if err != nil {
		t.Fatalf("serialize: %v", err)
	}
	var out any
	if err := s.DeserializeBinary(data, &out); err != nil {
		t.Fatalf("deserialize: %v", err)
	}
	return out
}

func TestConvertToType_Struct(t *testing.T) {
	want := order{
		ID:    "o-1",
		Qty:   3,
		Price: 9.5,
		Tags:  []string{"a", "b"},
		Line:  &line{SKU: "sku-1", Count: 2},
		Meta:  map[string]any{"k": "v"},
	}
	for _, tc := range serdes {
		t.Run(tc.name, func(t *testing.T) {
			conv := serde.NewTypeConverter(tc.serde)
			loose := roundTrip(t, tc.serde, want)

			got, err := conv.ConvertToType(loose, reflect.TypeOf(order{}))
			if err != nil {
				t.Fatalf("ConvertToType: %v", err)
			}
			o := got.Interface().(order)
			if o.ID != want.ID || o.Qty != want.Qty || o.Price != want.Price {
				t.Errorf("scalar fields mismatch: got %+v", o)
			}
			if !reflect.DeepEqual(o.Tags, want.Tags) {
				t.Errorf("tags: got %v, want %v", o.Tags, want.Tags)
			}
			if o.Line == nil || *o.Line != *want.Line {
				t.Errorf("line: got %+v, want %+v", o.Line, want.Line)
			}
		})
	}
}

func TestConvertToType_Numbers(t *testing.T) {
	for _, tc := range serdes {
		t.Run(tc.name, func(t *testing.T) {
			conv := serde.NewTypeConverter(tc.serde)

			got, err := conv.ConvertToType(roundTrip(t, tc.serde, 42), reflect.TypeOf(0))
			if err != nil {
				t.Fatalf("int: %v", err)
			}
			if got.Interface() != 42 {
				t.Errorf("int: got %v (%T)", got.Interface(), got.Interface())
			}

			got, err = conv.ConvertToType(roundTrip(t, tc.serde, 7), reflect.TypeOf(float64(0)))
			if err != nil {
				t.Fatalf("float: %v", err)
			}
			if got.Interface() != float64(7) {
				t.Errorf("float: got %v", got.Interface())
			}
		})
	}
}

func TestConvertToType_Rejects(t *testing.T) {
	conv := serde.NewTypeConverter(&serde.MsgpackSerde{})

	tests := []struct {
		name   string
		value  any
		target reflect.Type
	}{
		{"int to string", 65, reflect.TypeOf("")},
		{"fraction to int", 1.5, reflect.TypeOf(0)},
		{"overflow int8", 300, reflect.TypeOf(int8(0))},
		{"negative to uint", -1, reflect.TypeOf(uint(0))},
		{"string to int", "12", reflect.TypeOf(0)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if v, err := conv.ConvertToType(tt.value, tt.target); err == nil {
				t.Fatalf("expected error, got %v", v.Interface())
			}
		})
	}
}

func TestConvertToType_Interface(t *testing.T) {
	conv := serde.NewTypeConverter(nil)
	anyType := reflect.TypeOf((*any)(nil)).Elem()

	got, err := conv.ConvertToType("x", anyType)
	if err != nil {
		t.Fatalf("ConvertToType: %v", err)
	}
	if got.Type() != anyType || got.Interface() != "x" {
		t.Errorf("got %v of %v", got.Interface(), got.Type())
	}
}

func TestConvertArgs(t *testing.T) {
	conv := serde.NewTypeConverter(&serde.MsgpackSerde{})
	types := []reflect.Type{reflect.TypeOf(""), reflect.TypeOf(0), reflect.TypeOf(false)}

	got, err := conv.ConvertArgs([]any{"a", int64(2)}, types)
	if err != nil {
		t.Fatalf("ConvertArgs: %v", err)
	}
	if got[0].Interface() != "a" || got[1].Interface() != 2 || got[2].Interface() != false {
		t.Errorf("got %v %v %v", got[0], got[1], got[2])
	}

	if _, err := conv.ConvertArgs([]any{"a", 1, true, "extra"}, types); err == nil {
		t.Error("expected error for surplus values")
	}
}

func TestAssign(t *testing.T) {
	conv := serde.NewTypeConverter(&serde.JSONSerde{})

	var l line
	if err := conv.Assign(map[string]any{"sku": "s", "count": float64(4)}, &l); err != nil {
		t.Fatalf("Assign: %v", err)
	}
	if l.SKU != "s" || l.Count != 4 {
		t.Errorf("got %+v", l)
	}

	if err := conv.Assign(1, l); err == nil {
		t.Error("expected error for non-pointer destination")
	}
}

func TestByName(t *testing.T) {
	for _, name := range []string{"", "msgpack", "json", "proto"} {
		if _, ok := serde.ByName(name); !ok {
			t.Errorf("ByName(%q) not found", name)
		}
	}
	if _, ok := serde.ByName("xml"); ok {
		t.Error("ByName(xml) should not resolve")
	}
}
