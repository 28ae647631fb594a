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
	"errors"
	"testing"

	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/ngnhng/typedflow/api/serde"
)

func TestProtoSerde(t *testing.T) {
	s, _ := serde.ByName("proto")

	data, err := s.SerializeBinary(wrapperspb.String("A-1"))
	if err != nil {
		t.Fatalf("SerializeBinary: %v", err)
	}
	var got wrapperspb.StringValue
	if err := s.DeserializeBinary(data, &got); err != nil {
		t.Fatalf("DeserializeBinary: %v", err)
	}
	if got.GetValue() != "A-1" {
		t.Errorf("value = %q, want A-1", got.GetValue())
	}

	if _, err := s.SerializeBinary("plain string"); !errors.Is(err, serde.ErrNotProtoMessage) {
		t.Errorf("SerializeBinary(string) = %v, want ErrNotProtoMessage", err)
	}
	var plain string
	if err := s.DeserializeBinary(data, &plain); !errors.Is(err, serde.ErrNotProtoMessage) {
		t.Errorf("DeserializeBinary(*string) = %v, want ErrNotProtoMessage", err)
	}
}
