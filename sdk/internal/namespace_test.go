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
	"slices"
	"testing"

	"github.com/ngnhng/typedflow/api"
)

func TestDeclaration_Validate(t *testing.T) {
	tests := []struct {
		name    string
		decl    Declaration
		wantErr bool
	}{
		{name: "minimal", decl: Declaration{Name: "orders"}},
		{name: "with channels", decl: Declaration{Name: "orders", Signals: []string{"cancel"}, Queries: []string{"cancel"}}},
		{name: "empty name", decl: Declaration{}, wantErr: true},
		{name: "scoped name", decl: Declaration{Name: "orders$charge"}, wantErr: true},
		{name: "empty signal", decl: Declaration{Name: "orders", Signals: []string{""}}, wantErr: true},
		{name: "duplicate query", decl: Declaration{Name: "orders", Queries: []string{"state", "state"}}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.decl.validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("validate() = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestDeclaration_Declares(t *testing.T) {
	d := Declaration{Name: "orders", Signals: []string{"cancel"}, Queries: []string{"state"}}
	tests := []struct {
		kind api.ChannelKind
		name string
		want bool
	}{
		{api.SignalChannel, "cancel", true},
		{api.QueryChannel, "state", true},
		{api.QueryChannel, "cancel", false},
		{api.SignalChannel, "state", false},
		{api.ChannelKind("update"), "cancel", false},
	}
	for _, tt := range tests {
		if got := d.Declares(tt.kind, tt.name); got != tt.want {
			t.Errorf("Declares(%s, %s) = %v, want %v", tt.kind, tt.name, got, tt.want)
		}
	}
}

func TestNamespace(t *testing.T) {
	ns := NewNamespace("shop")
	if ns.DefaultTaskQueue() != api.DefaultTaskQueue {
		t.Errorf("DefaultTaskQueue() = %s", ns.DefaultTaskQueue())
	}
	ns.TaskQueues = []string{"orders-tq", "billing-tq"}
	if ns.DefaultTaskQueue() != "orders-tq" {
		t.Errorf("DefaultTaskQueue() = %s", ns.DefaultTaskQueue())
	}

	decl := Declaration{Name: "orders", Signals: []string{"cancel"}}
	if err := ns.DeclareWorkflow(decl); err != nil {
		t.Fatal(err)
	}
	if err := ns.DeclareWorkflow(decl); !errors.Is(err, ErrWorkflowAlreadyRegistered) {
		t.Errorf("redeclare = %v", err)
	}
	decl.Signals[0] = "mutated"
	if got, _ := ns.Workflow("orders"); got.Signals[0] != "cancel" {
		t.Error("declaration shares its slices with the caller")
	}

	ns.DeclareActivities("ship", "")
	ns.DeclareScopedActivities("orders", "charge")
	if got := ns.Activities.Names(); !slices.Equal(got, []string{"orders$charge", "ship"}) {
		t.Errorf("activities = %v", got)
	}

	if err := ns.DeclareSearchAttribute("Total", api.SearchAttributeDouble); err != nil {
		t.Fatal(err)
	}
	if err := ns.DeclareSearchAttribute("Total", "money"); err == nil {
		t.Error("unknown attribute type accepted")
	}
	if err := ns.DeclareSearchAttribute("", api.SearchAttributeInt); err == nil {
		t.Error("empty attribute name accepted")
	}

	ns.DeclareSink("audit", "record", "record", "flush")
	if got := ns.Sinks["audit"]; !slices.Equal(got, []string{"record", "flush"}) {
		t.Errorf("sink functions = %v", got)
	}
	if !ns.HasSink("audit", "flush") || ns.HasSink("audit", "erase") || ns.HasSink("metrics", "record") {
		t.Error("HasSink mismatch")
	}

	if err := ns.Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}
	ns.Workflows["alias"] = Declaration{Name: "orders"}
	if err := ns.Validate(); err == nil {
		t.Error("mismatched workflow key accepted")
	}

	var nilNS *Namespace
	if err := nilNS.Validate(); err == nil {
		t.Error("nil namespace accepted")
	}
}
