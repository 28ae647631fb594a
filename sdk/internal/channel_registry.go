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

	"github.com/ngnhng/typedflow/api"
)

// ChannelRegistry creates signal and query channels on demand for one
// execution attempt and remembers the handles it created.
//
// Signals and queries live in separate namespaces; the same name may be used
// for both. A channel is defined with the engine the first time a handler is
// attached to it, never up front for every declared name.
//
// Handlers follow a last-write-wins policy: attaching a handler to a name
// that already has one replaces it. The registry is owned by a single
// execution context whose code runs on one cooperative thread, so it is not
// locked.
type ChannelRegistry struct {
	rt      Runtime
	decl    Declaration
	handles map[api.ChannelHandle]api.ChannelHandle
}

func newChannelRegistry(rt Runtime, decl Declaration) *ChannelRegistry {
	return &ChannelRegistry{
		rt:      rt,
		decl:    decl,
		handles: make(map[api.ChannelHandle]api.ChannelHandle),
	}
}

// GetOrCreate returns the handle for (name, kind), defining the channel with
// the engine on first use. Repeated calls return equal handles.
func (r *ChannelRegistry) GetOrCreate(name string, kind api.ChannelKind) (api.ChannelHandle, error) {
	if !kind.Valid() {
		return api.ChannelHandle{}, fmt.Errorf("unknown channel kind %q", kind)
	}
	key := api.ChannelHandle{Kind: kind, Name: name}
	if h, ok := r.handles[key]; ok {
		return h, nil
	}
	if !r.decl.Declares(kind, name) {
		return api.ChannelHandle{}, fmt.Errorf("%s %q on workflow %s: %w", kind, name, r.decl.Name, ErrUndeclaredChannel)
	}

	h, err := r.rt.DefineChannel(kind, name)
	if err != nil {
		return api.ChannelHandle{}, fmt.Errorf("define %s: %w", key, err)
	}
	r.handles[key] = h
	return h, nil
}

func (r *ChannelRegistry) SetSignalHandler(name string, handler SignalHandler) error {
	h, err := r.GetOrCreate(name, api.SignalChannel)
	if err != nil {
		return err
	}
	return r.rt.SetSignalHandler(h, handler)
}

func (r *ChannelRegistry) SetQueryHandler(name string, handler QueryHandler) error {
	h, err := r.GetOrCreate(name, api.QueryChannel)
	if err != nil {
		return err
	}
	return r.rt.SetQueryHandler(h, handler)
}

// Len returns the number of channels defined so far.
func (r *ChannelRegistry) Len() int {
	return len(r.handles)
}
