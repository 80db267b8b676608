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


package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	cliUtil "github.com/purpleidea/nodeflow/cli/util"
	"github.com/purpleidea/nodeflow/types"
	"github.com/purpleidea/nodeflow/unification"
)

// ResolveArgs is the CLI parsing structure and type of the parsed result. This
// particular one contains all the common flags for the `resolve` subcommand.
type ResolveArgs struct {
	Unresolved string `arg:"positional,required" help:"type expression with generic parameters"`
	Concrete   string `arg:"positional,required" help:"type expression to match it against"`

	Params []string `arg:"--param,separate,required" help:"name of a generic parameter"`

	Solver string `arg:"--solver" help:"pick a specific unification solver"`
}

// Run executes the correct subcommand. It errors if there's ever an error. It
// returns true if we did activate one of the subcommands. It returns false if
// we did not.
func (obj *ResolveArgs) Run(ctx context.Context, data *cliUtil.Data) (bool, error) {
	return true, obj.resolve(os.Stdout)
}

func (obj *ResolveArgs) resolve(w io.Writer) error {
	solver, err := lookupSolver(obj.Solver)
	if err != nil {
		return err
	}
	unresolved, err := types.Parse(obj.Unresolved)
	if err != nil {
		return err
	}
	concrete, err := types.Parse(obj.Concrete)
	if err != nil {
		return err
	}
	bindings, err := solver.Resolve(unresolved, concrete, obj.Params)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "%s\n", bindings)
	fmt.Fprintf(w, "%s\n", unresolved.Substitute(bindings))
	return nil
}

// lookupSolver returns the named solver, or the default one for an empty name.
func lookupSolver(name string) (unification.Solver, error) {
	if name == "" {
		return unification.LookupDefault(), nil
	}
	return unification.Lookup(name)
}
