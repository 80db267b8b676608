// Nodeflow
// Copyright (C) 2013-2024+ James Shubin and the project contributors
// Written by James Shubin <james@shubin.ca> and the project contributors
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

package types

import (
	"fmt"
	"sort"
	"strings"
)

// Bindings maps generic parameter names to the types they have been resolved
// to. This is the shape that is stored per node, and in exported flows.
type Bindings map[string]*Type

// Copy returns a copy of the bindings. The types are shared, since they are
// never modified.
func (obj Bindings) Copy() Bindings {
	out := make(Bindings, len(obj))
	for k, v := range obj {
		out[k] = v
	}
	return out
}

// Keys returns the sorted list of bound parameter names.
func (obj Bindings) Keys() []string {
	keys := []string{}
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Merge returns a new set of bindings containing everything from both. When a
// parameter appears in both, the entry already in obj wins.
func (obj Bindings) Merge(fresh Bindings) Bindings {
	out := make(Bindings, len(obj)+len(fresh))
	for k, v := range fresh {
		out[k] = v
	}
	for k, v := range obj {
		out[k] = v
	}
	return out
}

// Cmp compares two sets of bindings. They must bind the same parameters, to
// structurally equal types.
func (obj Bindings) Cmp(bindings Bindings) error {
	if len(obj) != len(bindings) {
		return fmt.Errorf("bindings have different lengths (%d != %d)", len(obj), len(bindings))
	}
	for _, k := range obj.Keys() {
		typ, exists := bindings[k]
		if !exists {
			return fmt.Errorf("parameter %s is not bound", k)
		}
		if err := obj[k].Cmp(typ); err != nil {
			return fmt.Errorf("parameter %s differs: %v", k, err)
		}
	}
	return nil
}

// String returns a deterministic representation, as in `{K: str, T: list<int>}`.
func (obj Bindings) String() string {
	pairs := []string{}
	for _, k := range obj.Keys() {
		pairs = append(pairs, fmt.Sprintf("%s: %s", k, obj[k]))
	}
	return "{" + strings.Join(pairs, ", ") + "}"
}
