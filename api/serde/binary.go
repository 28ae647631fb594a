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

// BinarySerde encodes payloads exchanged with the engine.
type BinarySerde interface {
	SerializeBinary(value any) ([]byte, error)
	DeserializeBinary(data []byte, valuePtr any) error
}

// Default returns the serializer used when none is configured.
func Default() BinarySerde {
	return &MsgpackSerde{}
}

// ByName resolves a serializer from its configuration name.
func ByName(name string) (BinarySerde, bool) {
	switch name {
	case "", "msgpack":
		return &MsgpackSerde{}, true
	case "json":
		return &JSONSerde{}, true
	case "proto", "protobuf":
		return &ProtoSerde{}, true
	}
	return nil, false
}
