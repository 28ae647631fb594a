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
	"errors"
	"testing"

	"github.com/ngnhng/typedflow/api"
)

func newTestRegistry(t *testing.T) (*ChannelRegistry, *fakeRuntime) {
	t.Helper()
	rt := newFakeRuntime("counter")
	decl := Declaration{Name: "counter", Signals: []string{"x", "increment"}, Queries: []string{"x", "get"}}
	return newChannelRegistry(rt, decl), rt
}

func TestChannelRegistry_GetOrCreate(t *testing.T) {
	reg, rt := newTestRegistry(t)

	first, err := reg.GetOrCreate("x", api.SignalChannel)
	if err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}
	second, err := reg.GetOrCreate("x", api.SignalChannel)
	if err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}
	if first != second {
		t.Errorf("handles differ: %v != %v", first, second)
	}

	query, err := reg.GetOrCreate("x", api.QueryChannel)
	if err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}
	if query == first {
		t.Errorf("signal and query handles must differ, both %v", query)
	}

	if len(rt.defined) != 2 {
		t.Errorf("DefineChannel called %d times, want 2: %v", len(rt.defined), rt.defined)
	}
	if reg.Len() != 2 {
		t.Errorf("Len() = %d, want 2", reg.Len())
	}
}

func TestChannelRegistry_HandleSurvivesRebuild(t *testing.T) {
	// A replayed attempt builds a new registry; its handles must equal the old ones.
	reg1, _ := newTestRegistry(t)
	reg2, _ := newTestRegistry(t)

	h1, _ := reg1.GetOrCreate("increment", api.SignalChannel)
	h2, _ := reg2.GetOrCreate("increment", api.SignalChannel)
	if h1 != h2 {
		t.Errorf("rebuilt handle %v != %v", h2, h1)
	}
}

func TestChannelRegistry_Lazy(t *testing.T) {
	reg, rt := newTestRegistry(t)
	if len(rt.defined) != 0 {
		t.Fatalf("channels defined before any handler: %v", rt.defined)
	}

	if err := reg.SetQueryHandler("get", func([]any) (any, error) { return 1, nil }); err != nil {
		t.Fatalf("SetQueryHandler: %v", err)
	}
	want := []api.ChannelHandle{{Kind: api.QueryChannel, Name: "get"}}
	if len(rt.defined) != 1 || rt.defined[0] != want[0] {
		t.Errorf("defined = %v, want %v", rt.defined, want)
	}
}

func TestChannelRegistry_LastWriteWins(t *testing.T) {
	reg, rt := newTestRegistry(t)

	var got string
	if err := reg.SetSignalHandler("increment", func([]any) error { got = "first"; return nil }); err != nil {
		t.Fatal(err)
	}
	if err := reg.SetSignalHandler("increment", func([]any) error { got = "second"; return nil }); err != nil {
		t.Fatal(err)
	}
	if err := rt.signal("increment"); err != nil {
		t.Fatal(err)
	}
	if got != "second" {
		t.Errorf("handler = %q, want second", got)
	}
	if len(rt.defined) != 1 {
		t.Errorf("channel defined %d times, want 1", len(rt.defined))
	}
}

func TestChannelRegistry_Errors(t *testing.T) {
	tests := []struct {
		name string
		kind api.ChannelKind
		ch   string
		want error
	}{
		{"undeclared signal", api.SignalChannel, "get", ErrUndeclaredChannel},
		{"undeclared query", api.QueryChannel, "increment", ErrUndeclaredChannel},
		{"unknown kind", api.ChannelKind("update"), "x", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg, rt := newTestRegistry(t)
			_, err := reg.GetOrCreate(tt.ch, tt.kind)
			if err == nil {
				t.Fatal("expected error")
			}
			if tt.want != nil && !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
			if len(rt.defined) != 0 {
				t.Errorf("DefineChannel called on error path: %v", rt.defined)
			}
		})
	}
}

func TestChannelRegistry_DefineFailure(t *testing.T) {
	reg, rt := newTestRegistry(t)
	boom := errors.New("engine down")
	rt.defineFn = func(api.ChannelKind, string) (api.ChannelHandle, error) { return api.ChannelHandle{}, boom }

	if _, err := reg.GetOrCreate("x", api.SignalChannel); !errors.Is(err, boom) {
		t.Fatalf("err = %v, want %v", err, boom)
	}
	// The failed definition is not cached.
	rt.defineFn = nil
	if _, err := reg.GetOrCreate("x", api.SignalChannel); err != nil {
		t.Fatalf("retry: %v", err)
	}
}
