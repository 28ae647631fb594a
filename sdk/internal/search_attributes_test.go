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
	"time"

	"github.com/ngnhng/typedflow/api"
)

func TestValidateSearchAttributes(t *testing.T) {
	declared := map[string]api.SearchAttributeType{
		"Title":     api.SearchAttributeText,
		"Customer":  api.SearchAttributeKeyword,
		"Items":     api.SearchAttributeInt,
		"Total":     api.SearchAttributeDouble,
		"Paid":      api.SearchAttributeBool,
		"CreatedAt": api.SearchAttributeDatetime,
	}

	tests := []struct {
		name    string
		attrs   api.SearchAttributes
		wantErr error
	}{
		{name: "empty", attrs: nil},
		{
			name: "all types",
			attrs: api.SearchAttributes{
				"Title":     {"Blue mug"},
				"Customer":  {"c-1", "c-2"},
				"Items":     {3, int64(4)},
				"Total":     {12.5, 3},
				"Paid":      {true},
				"CreatedAt": {time.Now(), "2025-01-02T15:04:05Z"},
			},
		},
		{name: "removal", attrs: api.SearchAttributes{"Customer": {}}},
		{name: "undeclared", attrs: api.SearchAttributes{"Region": {"eu"}}, wantErr: ErrUndeclaredSearchAttribute},
		{name: "float as int", attrs: api.SearchAttributes{"Items": {1.5}}, wantErr: ErrSearchAttributeType},
		{name: "string as bool", attrs: api.SearchAttributes{"Paid": {"yes"}}, wantErr: ErrSearchAttributeType},
		{name: "bad datetime", attrs: api.SearchAttributes{"CreatedAt": {"yesterday"}}, wantErr: ErrSearchAttributeType},
		{name: "second value wrong", attrs: api.SearchAttributes{"Customer": {"c-1", 2}}, wantErr: ErrSearchAttributeType},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSearchAttributes(declared, tt.attrs)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("err = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateSearchAttributes_StableOrder(t *testing.T) {
	attrs := api.SearchAttributes{"Zeta": {1}, "Alpha": {1}, "Mid": {1}}
	for range 10 {
		err := ValidateSearchAttributes(nil, attrs)
		if err == nil || err.Error() != "Alpha: "+ErrUndeclaredSearchAttribute.Error() {
			t.Fatalf("err = %v", err)
		}
	}
}
