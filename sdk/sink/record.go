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

package sink

import (
	"fmt"
	"strings"

	"github.com/ngnhng/typedflow/api"
	"github.com/ngnhng/typedflow/api/serde"
)

// Subject returns <prefix>.<namespace>.<sink>.<function>. Empty parts are
// replaced by "_" so the subject keeps four tokens.
func Subject(prefix string, r api.SinkRecord) string {
	if prefix == "" {
		prefix = api.SinkSubjectPrefix
	}
	return fmt.Sprintf(api.SinkSubjectPattern, prefix, token(r.Info.Namespace), token(r.Sink), token(r.Function))
}

func token(s string) string {
	s = strings.NewReplacer(".", "_", " ", "_", "*", "_", ">", "_").Replace(s)
	if s == "" {
		return "_"
	}
	return s
}

// Encode serializes a record for the wire.
func Encode(codec serde.BinarySerde, r api.SinkRecord) ([]byte, error) {
	if codec == nil {
		codec = serde.Default()
	}
	data, err := codec.SerializeBinary(r)
	if err != nil {
		return nil, fmt.Errorf("encode sink record %s.%s: %w", r.Sink, r.Function, err)
	}
	return data, nil
}

func Decode(codec serde.BinarySerde, data []byte) (api.SinkRecord, error) {
	if codec == nil {
		codec = serde.Default()
	}
	var r api.SinkRecord
	if err := codec.DeserializeBinary(data, &r); err != nil {
		return api.SinkRecord{}, fmt.Errorf("decode sink record: %w", err)
	}
	return r, nil
}
