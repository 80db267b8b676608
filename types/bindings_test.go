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
	"testing"
)

func TestBindingsMerge0(t *testing.T) {
	existing := Bindings{
		"T": MustParse("int"),
	}
	fresh := Bindings{
		"T": MustParse("str"),
		"K": MustParse("list<int>"),
	}
	out := existing.Merge(fresh)
	exp := Bindings{
		"T": MustParse("int"), // existing wins
		"K": MustParse("list<int>"),
	}
	if err := out.Cmp(exp); err != nil {
		t.Errorf("unexpected merge result %s: %+v", out, err)
	}
	if len(existing) != 1 || len(fresh) != 2 {
		t.Errorf("merge modified its inputs")
	}

	var empty Bindings
	if out := empty.Merge(fresh); out.Cmp(fresh) != nil {
		t.Errorf("merging into nil bindings failed: %s", out)
	}
}

func TestBindingsCmp0(t *testing.T) {
	a := Bindings{"T": MustParse("int"), "K": MustParse("str")}
	if err := a.Cmp(a.Copy()); err != nil {
		t.Errorf("copy differs: %+v", err)
	}
	if err := a.Cmp(Bindings{"T": MustParse("int")}); err == nil {
		t.Errorf("expected different lengths to differ")
	}
	if err := a.Cmp(Bindings{"T": MustParse("int"), "V": MustParse("str")}); err == nil {
		t.Errorf("expected different keys to differ")
	}
	if err := a.Cmp(Bindings{"T": MustParse("int"), "K": MustParse("bool")}); err == nil {
		t.Errorf("expected different types to differ")
	}
}

func TestBindingsString0(t *testing.T) {
	b := Bindings{"T": MustParse("list<int>"), "K": MustParse("str")}
	if s := b.String(); s != "{K: str, T: list<int>}" {
		t.Errorf("unexpected string: %s", s)
	}
	if s := (Bindings{}).String(); s != "{}" {
		t.Errorf("unexpected string: %s", s)
	}
}
