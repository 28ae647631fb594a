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

func TestRegistry(t *testing.T) {
	f, _ := newTestFactory(t)
	r := NewRegistry()

	for _, name := range []string{"beta", "alpha"} {
		w := mustBuild(t, f, Declaration{Name: name}, func(ctx Context) (string, error) {
			return ctx.WorkflowType(), nil
		})
		if err := r.Register(w); err != nil {
			t.Fatalf("Register(%s): %v", name, err)
		}
	}

	if got := r.Names(); !slices.Equal(got, []string{"alpha", "beta"}) {
		t.Errorf("Names() = %v", got)
	}
	if r.Size() != 2 {
		t.Errorf("Size() = %d", r.Size())
	}

	dup, err := f.BuildDeclared("alpha", func(ctx Context) error { return nil })
	if err != nil {
		t.Fatal(err)
	}
	if err := r.Register(dup); !errors.Is(err, ErrWorkflowAlreadyRegistered) {
		t.Errorf("duplicate Register = %v", err)
	}
	if err := r.Register(nil); err == nil {
		t.Error("nil workflow accepted")
	}

	out := r.Invoke(context.Background(), newFakeRuntime("beta"), "beta", nil)
	if out.Kind != OutcomeCompleted || out.Result != "beta" {
		t.Errorf("Invoke(beta) = %v", out)
	}

	out = r.Invoke(context.Background(), newFakeRuntime("gamma"), "gamma", nil)
	if out.Kind != OutcomeFailed || !errors.Is(out.Err, ErrWorkflowNotRegistered) || !IsNonRetryable(out.Err) {
		t.Errorf("Invoke(gamma) = %v", out)
	}
	if _, err := r.Get("gamma"); !errors.Is(err, ErrWorkflowNotRegistered) {
		t.Errorf("Get(gamma) = %v", err)
	}
}
