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
	"maps"
	"slices"
	"time"

	"github.com/ngnhng/typedflow/api"
)

// ValidateSearchAttributes checks every attribute is declared and every value
// matches the declared type. Attributes are checked in name order so the
// reported error is stable.
func ValidateSearchAttributes(declared map[string]api.SearchAttributeType, attrs api.SearchAttributes) error {
	for _, name := range slices.Sorted(maps.Keys(attrs)) {
		typ, ok := declared[name]
		if !ok {
			return fmt.Errorf("%s: %w", name, ErrUndeclaredSearchAttribute)
		}
		for i, v := range attrs[name] {
			if !matchesSearchAttributeType(typ, v) {
				return fmt.Errorf("%s[%d]: %T is not %s: %w", name, i, v, typ, ErrSearchAttributeType)
			}
		}
	}
	return nil
}

func matchesSearchAttributeType(typ api.SearchAttributeType, v any) bool {
	switch typ {
	case api.SearchAttributeText, api.SearchAttributeKeyword:
		_, ok := v.(string)
		return ok
	case api.SearchAttributeBool:
		_, ok := v.(bool)
		return ok
	case api.SearchAttributeInt:
		switch v.(type) {
		case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
			return true
		}
	case api.SearchAttributeDouble:
		switch v.(type) {
		case float32, float64, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
			return true
		}
	case api.SearchAttributeDatetime:
		switch t := v.(type) {
		case time.Time:
			return true
		case string:
			_, err := time.Parse(time.RFC3339, t)
			return err == nil
		}
	}
	return false
}
