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

// Package types contains the generic type trees which port type expressions
// are parsed into, and the structural operations on them.
package types

import (
	"fmt"
	"strings"

	"github.com/purpleidea/nodeflow/util"
	"github.com/purpleidea/nodeflow/util/errwrap"
)

// Wildcard is the main type which matches any other type. It never carries any
// generic arguments.
const Wildcard = "*"

// Type is a parsed type expression. Main is a concrete type name, a generic
// parameter name, or the wildcard, and Args are the ordered generic arguments.
// A Type is never modified once it has been built. Operations which change a
// tree, such as Substitute, return a new one instead.
type Type struct {
	Main string  `json:"mainType"`
	Args []*Type `json:"genericTypes"`
}

// newType builds a type and normalizes an empty argument list to nil, so that
// two structurally equal trees also look the same when they are dumped.
func newType(main string, args []*Type) *Type {
	if len(args) == 0 {
		args = nil
	}
	return &Type{
		Main: main,
		Args: args,
	}
}

// IsWildcard returns true if this is the match-anything type.
func (obj *Type) IsWildcard() bool {
	return obj.Main == Wildcard
}

// String returns the canonical textual representation for this type. A leaf is
// just its main type, otherwise the arguments are joined with a comma and a
// space, as in `pair<int, str>`. Parse accepts everything this produces.
func (obj *Type) String() string {
	if obj == nil {
		return "<nil>"
	}
	if len(obj.Args) == 0 {
		return obj.Main
	}
	args := []string{}
	for _, x := range obj.Args {
		args = append(args, x.String())
	}
	return fmt.Sprintf("%s<%s>", obj.Main, strings.Join(args, ", "))
}

// Copy returns a deep copy of this type.
func (obj *Type) Copy() *Type {
	if obj == nil {
		return nil
	}
	args := []*Type{}
	for _, x := range obj.Args {
		args = append(args, x.Copy())
	}
	return newType(obj.Main, args)
}

// Cmp compares this type to another for structural equality. The main types
// must be equal, and the arguments must pairwise compare equal, in order. It
// returns nil if they are equal, and an error describing the first difference
// otherwise.
func (obj *Type) Cmp(typ *Type) error {
	if obj == nil || typ == nil {
		return fmt.Errorf("cannot compare to nil")
	}
	if obj.Main != typ.Main {
		return fmt.Errorf("main type does not match (%s != %s)", obj.Main, typ.Main)
	}
	if len(obj.Args) != len(typ.Args) {
		return fmt.Errorf("arity of %s does not match (%d != %d)", obj.Main, len(obj.Args), len(typ.Args))
	}
	for i := range obj.Args {
		if err := obj.Args[i].Cmp(typ.Args[i]); err != nil {
			return errwrap.Wrapf(err, "arg %d of %s differs", i, obj.Main)
		}
	}
	return nil
}

// Match is like Cmp, except that a wildcard on either side matches anything at
// that position, without looking at what is underneath it. This is the check
// used to decide if a connection is type compatible.
func (obj *Type) Match(typ *Type) error {
	if obj == nil || typ == nil {
		return fmt.Errorf("cannot match against nil")
	}
	if obj.IsWildcard() || typ.IsWildcard() {
		return nil
	}
	if obj.Main != typ.Main {
		return fmt.Errorf("main type does not match (%s != %s)", obj.Main, typ.Main)
	}
	if len(obj.Args) != len(typ.Args) {
		return fmt.Errorf("arity of %s does not match (%d != %d)", obj.Main, len(obj.Args), len(typ.Args))
	}
	for i := range obj.Args {
		if err := obj.Args[i].Match(typ.Args[i]); err != nil {
			return errwrap.Wrapf(err, "arg %d of %s differs", i, obj.Main)
		}
	}
	return nil
}

// Substitute returns a new tree where every node whose main type is bound in
// the bindings is replaced by a copy of the bound type. The replaced node's own
// arguments are dropped, so the arity comes only from the binding. Every other
// node has the substitution applied to its arguments.
func (obj *Type) Substitute(bindings Bindings) *Type {
	if typ, exists := bindings[obj.Main]; exists && typ != nil {
		return typ.Copy()
	}
	args := []*Type{}
	for _, x := range obj.Args {
		args = append(args, x.Substitute(bindings))
	}
	return newType(obj.Main, args)
}

// HasUnresolved returns true if this type or any of its arguments, at any
// depth, has a main type which is one of the named parameters.
func (obj *Type) HasUnresolved(params []string) bool {
	if util.StrInList(obj.Main, params) {
		return true
	}
	for _, x := range obj.Args {
		if x.HasUnresolved(params) {
			return true
		}
	}
	return false
}
