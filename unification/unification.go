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

// Package unification resolves the free generic parameters of a type by
// matching it against a concrete type.
package unification

import (
	"fmt"

	"github.com/purpleidea/nodeflow/types"
	"github.com/purpleidea/nodeflow/util"
)

const (
	// ErrMainTypeMismatch means a fixed main type differed from the
	// concrete one at the same position.
	ErrMainTypeMismatch = util.Error("main type mismatch")

	// ErrArityMismatch means the number of generic arguments differed at
	// some position.
	ErrArityMismatch = util.Error("generic type length mismatch")

	// ErrConflict means a parameter would have to be bound to two different
	// types at once.
	ErrConflict = util.Error("conflicting generic type")
)

// ResolutionError is returned when resolution fails. It unwraps to one of the
// ErrMainTypeMismatch, ErrArityMismatch or ErrConflict constants. For a
// conflict, Param is the parameter and Want and Got are the existing and the
// new binding. Otherwise Want is the unresolved node and Got is the concrete
// node at the position where the walk stopped.
type ResolutionError struct {
	Err   error
	Param string
	Want  *types.Type
	Got   *types.Type
}

// Error fulfills the error interface of this type.
func (obj *ResolutionError) Error() string {
	if obj.Err == ErrConflict {
		return fmt.Sprintf("%s: %s -> %s -> %s", obj.Err, obj.Param, obj.Got, obj.Want)
	}
	return fmt.Sprintf("%s: %s -> %s", obj.Err, obj.Want, obj.Got)
}

// Unwrap returns the constant error which classifies this failure.
func (obj *ResolutionError) Unwrap() error {
	return obj.Err
}

// Resolve walks the unresolved type and the concrete type in lockstep, and
// returns the bindings for every parameter which it meets along the way. The
// unresolved side drives the structure, so a parameter in the concrete type is
// treated as a plain type name.
//
// A parameter with no arguments is bound to the whole concrete subtree at its
// position. A parameter with arguments, as in `C<T>`, must have the same arity
// as the concrete node. It is bound to the concrete main type alone, and its
// arguments are resolved against the concrete arguments. Any other node must
// have the same main type and arity as the concrete one. If a parameter is met
// more than once, every binding must be structurally equal.
func Resolve(unresolved, concrete *types.Type, params []string) (types.Bindings, error) {
	if unresolved == nil || concrete == nil {
		return nil, fmt.Errorf("cannot resolve a nil type")
	}
	bindings := make(types.Bindings)
	if err := resolve(unresolved, concrete, params, bindings); err != nil {
		return nil, err
	}
	return bindings, nil
}

// resolve is the recursive helper for Resolve. It adds to bindings as it goes.
func resolve(unresolved, concrete *types.Type, params []string, bindings types.Bindings) error {
	if !util.StrInList(unresolved.Main, params) {
		if unresolved.Main != concrete.Main {
			return &ResolutionError{
				Err:  ErrMainTypeMismatch,
				Want: unresolved,
				Got:  concrete,
			}
		}
		return resolveArgs(unresolved, concrete, params, bindings)
	}

	if len(unresolved.Args) == 0 {
		return bind(unresolved.Main, concrete, bindings)
	}

	// partially generic, eg: C<T> where C is itself a param
	if len(unresolved.Args) != len(concrete.Args) {
		return &ResolutionError{
			Err:  ErrArityMismatch,
			Want: unresolved,
			Got:  concrete,
		}
	}
	if err := bind(unresolved.Main, &types.Type{Main: concrete.Main}, bindings); err != nil {
		return err
	}
	return resolveArgs(unresolved, concrete, params, bindings)
}

// resolveArgs resolves the arguments of two nodes pairwise, after checking
// that they have the same arity.
func resolveArgs(unresolved, concrete *types.Type, params []string, bindings types.Bindings) error {
	if len(unresolved.Args) != len(concrete.Args) {
		return &ResolutionError{
			Err:  ErrArityMismatch,
			Want: unresolved,
			Got:  concrete,
		}
	}
	for i := range unresolved.Args {
		if err := resolve(unresolved.Args[i], concrete.Args[i], params, bindings); err != nil {
			return err
		}
	}
	return nil
}

// bind records that param is typ, unless it was already bound to something
// else.
func bind(param string, typ *types.Type, bindings types.Bindings) error {
	if old, exists := bindings[param]; exists {
		if err := old.Cmp(typ); err != nil {
			return &ResolutionError{
				Err:   ErrConflict,
				Param: param,
				Want:  old,
				Got:   typ,
			}
		}
		return nil
	}
	bindings[param] = typ
	return nil
}
