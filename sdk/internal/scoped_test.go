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
	"errors"
	"slices"
	"testing"
)

func constHandle(v string) ActivityHandle {
	return func(...any) Future { return NewSettledFuture(v, nil, nil, nil) }
}

func resolve(t *testing.T, h ActivityHandle) string {
	t.Helper()
	var s string
	if err := h().Get(context.Background(), &s); err != nil {
		t.Fatalf("Get: %v", err)
	}
	return s
}

func TestForWorkflowType(t *testing.T) {
	all := ActivityMap{
		"foo$bar": constHandle("fn1"),
		"bar":     constHandle("fn2"),
	}
	scoped := ForWorkflowType(all, "foo")

	h, ok := scoped.Lookup("bar")
	if !ok {
		t.Fatal("scoped bar not found")
	}
	if got := resolve(t, h); got != "fn1" {
		t.Errorf("scoped bar -> %s, want fn1", got)
	}
	if got := scoped.Names(); !slices.Equal(got, []string{"bar"}) {
		t.Errorf("scoped names = %v, want [bar]", got)
	}

	h, ok = all.Lookup("bar")
	if !ok {
		t.Fatal("unscoped bar not found")
	}
	if got := resolve(t, h); got != "fn2" {
		t.Errorf("unscoped bar -> %s, want fn2", got)
	}
}

func TestForWorkflowType_Missing(t *testing.T) {
	all := ActivityMap{"foo$bar": constHandle("fn1"), "plain": constHandle("p")}

	tests := []struct {
		name, workflowType, lookup string
	}{
		{"plain name hidden", "foo", "plain"},
		{"composite key not addressable", "foo", "foo$bar"},
		{"other workflow type", "baz", "bar"},
		{"empty name", "foo", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, ok := ForWorkflowType(all, tt.workflowType).Lookup(tt.lookup)
			if ok || h != nil {
				t.Errorf("Lookup(%q) = (%v, %v), want (nil, false)", tt.lookup, h != nil, ok)
			}
		})
	}
}

func TestForWorkflowType_ReflectsAdditions(t *testing.T) {
	all := ActivityMap{}
	scoped := ForWorkflowType(all, "foo")
	if _, ok := scoped.Lookup("late"); ok {
		t.Fatal("unexpected late activity")
	}

	all["foo$late"] = constHandle("late")
	h, ok := scoped.Lookup("late")
	if !ok {
		t.Fatal("activity added after the view was built is not visible")
	}
	if got := resolve(t, h); got != "late" {
		t.Errorf("got %s", got)
	}
}

func TestActivitySet_Execute(t *testing.T) {
	set := NewActivitySet(ActivityMap{"ok": constHandle("done")})

	var s string
	if err := set.Execute("ok").Get(context.Background(), &s); err != nil || s != "done" {
		t.Errorf("Execute(ok) = %q, %v", s, err)
	}
	if err := set.Execute("nope").Get(context.Background(), nil); !errors.Is(err, ErrActivityNotRegistered) {
		t.Errorf("Execute(nope) err = %v", err)
	}
	if set.Has("nope") {
		t.Error("Has(nope) = true")
	}

	var empty ActivitySet
	if _, ok := empty.Get("x"); ok {
		t.Error("zero ActivitySet resolved a name")
	}
}

func TestCatalogLookup(t *testing.T) {
	catalog := NewActivityCatalog("orders$charge", "notify")
	var called []string
	lookup := catalogLookup{catalog: catalog, bind: func(name string) ActivityHandle {
		return func(...any) Future { called = append(called, name); return NewSettledFuture(nil, nil, nil, nil) }
	}}

	scoped := NewActivitySet(ForWorkflowType(lookup, "orders"))
	if !slices.Equal(scoped.Names(), []string{"charge"}) {
		t.Errorf("scoped names = %v", scoped.Names())
	}
	scoped.Execute("charge")

	catalog.Add("orders$refund")
	scoped.Execute("refund")

	if want := []string{"orders$charge", "orders$refund"}; !slices.Equal(called, want) {
		t.Errorf("called = %v, want %v", called, want)
	}
}
