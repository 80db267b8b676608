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

//go:build !root

package types

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestMarshalJSON0(t *testing.T) {
	typ := MustParse("list<pair<int, str>>")
	b, err := json.Marshal(typ)
	if err != nil {
		t.Errorf("marshal failed: %+v", err)
		return
	}
	exp := `{"mainType":"list","genericTypes":[{"mainType":"pair","genericTypes":[{"mainType":"int","genericTypes":[]},{"mainType":"str","genericTypes":[]}]}]}`
	if s := string(b); s != exp {
		t.Errorf("unexpected json:\n%s\nexpected:\n%s", s, exp)
	}
}

func TestUnmarshalJSON0(t *testing.T) {
	data := `{"mainType":"pair","genericTypes":[{"mainType":"int","genericTypes":[]},{"mainType":"list","genericTypes":[{"mainType":"str"}]}]}`
	typ := &Type{}
	if err := json.Unmarshal([]byte(data), typ); err != nil {
		t.Errorf("unmarshal failed: %+v", err)
		return
	}
	if err := typ.Cmp(MustParse("pair<int, list<str>>")); err != nil {
		t.Errorf("unexpected type: %+v", err)
	}
	if typ.Args[0].Args != nil {
		t.Errorf("expected a leaf to have nil args")
	}
}

func TestUnmarshalJSONInvalid0(t *testing.T) {
	inputs := []string{
		`{"mainType":"","genericTypes":[]}`,
		`{"genericTypes":[]}`,
		`{"mainType":"list<int>","genericTypes":[]}`,
		`{"mainType":"a,b","genericTypes":[]}`,
		`{"mainType":"*","genericTypes":[{"mainType":"int","genericTypes":[]}]}`,
		`{"mainType":"list","genericTypes":[null]}`,
		`{"mainType":"list","genericTypes":[{"mainType":">"}]}`,
	}
	for _, data := range inputs {
		typ := &Type{}
		err := json.Unmarshal([]byte(data), typ)
		if err == nil {
			t.Errorf("expected an error from: %s", data)
			continue
		}
		if !errors.Is(err, ErrSyntax) {
			t.Errorf("expected a syntax error from: %s, got: %+v", data, err)
		}
	}

	typ := &Type{}
	if err := json.Unmarshal([]byte(`[1, 2]`), typ); err == nil {
		t.Errorf("expected an error from a json list")
	}
}

func TestBindingsJSON0(t *testing.T) {
	bindings := Bindings{
		"T": MustParse("int"),
		"K": MustParse("list<str>"),
	}
	b, err := json.Marshal(bindings)
	if err != nil {
		t.Errorf("marshal failed: %+v", err)
		return
	}
	var out Bindings
	if err := json.Unmarshal(b, &out); err != nil {
		t.Errorf("unmarshal failed: %+v", err)
		return
	}
	if err := bindings.Cmp(out); err != nil {
		t.Errorf("bindings differ after decoding: %+v", err)
	}

	if err := json.Unmarshal([]byte(`{"T": null}`), &out); err == nil {
		t.Errorf("expected an error from a null binding")
	}
}
