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

package unification

import (
	"fmt"
	"sort"

	"github.com/purpleidea/nodeflow/types"
)

// DefaultSolverName is the name of the solver which LookupDefault returns.
const DefaultSolverName = "simple"

func init() {
	Register(DefaultSolverName, func() Solver { return &SimpleSolver{} })
}

// Solver is the general interface that any resolution strategy implements. The
// connection validator only ever asks one side of a wire to be resolved from
// the other, concrete side.
type Solver interface {
	// Resolve returns the bindings for params which make unresolved match
	// concrete, or a *ResolutionError.
	Resolve(unresolved, concrete *types.Type, params []string) (types.Bindings, error)
}

// SimpleSolver is the single direction solver implemented by Resolve. It never
// tries to bind parameters on both sides of a wire at the same time.
type SimpleSolver struct{}

// Resolve runs the solver.
func (obj *SimpleSolver) Resolve(unresolved, concrete *types.Type, params []string) (types.Bindings, error) {
	return Resolve(unresolved, concrete, params)
}

// registeredSolvers is a global map of all possible solvers which can be used.
// You should never touch this map directly. Use methods like Register instead.
var registeredSolvers = make(map[string]func() Solver) // must initialize

// Register takes a solver and its name and makes it available for use. It is
// commonly called in the init() method of the solver at program startup. There
// is no matching Unregister function.
func Register(name string, solver func() Solver) {
	if _, exists := registeredSolvers[name]; exists {
		panic(fmt.Sprintf("a solver named %s is already registered", name))
	}
	registeredSolvers[name] = solver
}

// Lookup returns a new instance of the named solver.
func Lookup(name string) (Solver, error) {
	solver, exists := registeredSolvers[name]
	if !exists {
		return nil, fmt.Errorf("solver %s not found", name)
	}
	return solver(), nil
}

// LookupDefault returns a new instance of the default solver.
func LookupDefault() Solver {
	solver, err := Lookup(DefaultSolverName)
	if err != nil {
		panic("the default solver is not registered") // programming error
	}
	return solver
}

// Names returns the sorted list of registered solver names.
func Names() []string {
	names := []string{}
	for name := range registeredSolvers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
