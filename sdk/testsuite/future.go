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

package testsuite

import (
	"context"
	"fmt"

	"github.com/ngnhng/typedflow/sdk/internal"
)

var _ internal.Future = (*future)(nil)

// future resolves when the engine settles it. Get parks the workflow
// goroutine until then.
type future struct {
	a     *attempt
	done  bool
	value any
	err   error
}

func (f *future) IsReady() bool { return f.done }

func (f *future) Get(_ context.Context, valuePtr any) error {
	if err := f.a.exec.block(f.a, func() bool { return f.done }); err != nil {
		return err
	}
	if f.err != nil {
		return f.err
	}
	if valuePtr == nil || f.value == nil {
		return nil
	}
	if err := f.a.exec.env.worker.Converter().Assign(f.value, valuePtr); err != nil {
		return fmt.Errorf("failed to convert future result into %T: %w", valuePtr, err)
	}
	return nil
}

func (f *future) settle(value any, err error) {
	f.value = value
	f.err = err
	f.done = true
}
