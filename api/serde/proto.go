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

	"google.golang.org/protobuf/proto"
)

var _ BinarySerde = (*ProtoSerde)(nil)

// ErrNotProtoMessage is returned when ProtoSerde is given a non-proto value.
var ErrNotProtoMessage = errors.New("value is not a proto.Message")

// ProtoSerde encodes generated protobuf messages. Encoding is deterministic
// so equal messages always yield equal history sizes.
type ProtoSerde struct{}

var protoMarshal = proto.MarshalOptions{Deterministic: true}

func (p *ProtoSerde) SerializeBinary(value any) ([]byte, error) {
	msg, ok := value.(proto.Message)
	if !ok {
		return nil, fmt.Errorf("proto: encode %T: %w", value, ErrNotProtoMessage)
	}
	data, err := protoMarshal.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("proto: encode %T: %w", value, err)
	}
	return data, nil
}

func (p *ProtoSerde) DeserializeBinary(data []byte, valuePtr any) error {
	msg, ok := valuePtr.(proto.Message)
	if !ok {
		return fmt.Errorf("proto: decode into %T: %w", valuePtr, ErrNotProtoMessage)
	}
	if err := proto.Unmarshal(data, msg); err != nil {
		return fmt.Errorf("proto: decode into %T: %w", valuePtr, err)
	}
	return nil
}
