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

package workflow

import "github.com/ngnhng/typedflow/sdk/internal"

type (
	// Namespace groups the declarations workflows of one application share:
	// workflow types, activity names, search attribute types and sinks.
	Namespace       = internal.Namespace
	ActivityCatalog = internal.ActivityCatalog
)

func NewNamespace(name string) *Namespace { return internal.NewNamespace(name) }
