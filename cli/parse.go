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
	"encoding/json"
	"fmt"
	"io"
	"os"

	cliUtil "github.com/purpleidea/nodeflow/cli/util"
	"github.com/purpleidea/nodeflow/types"
)

// ParseArgs is the CLI parsing structure and type of the parsed result. This
// particular one contains all the common flags for the `parse` subcommand.
type ParseArgs struct {
	Input string `arg:"positional,required" help:"type expression, such as list<T>"`

	JSON bool `arg:"--json" help:"print the type tree as json"`

	// Params are the generic parameter names to report as unresolved.
	Params []string `arg:"--param,separate" help:"name of a generic parameter"`
}

// Run executes the correct subcommand. It errors if there's ever an error. It
// returns true if we did activate one of the subcommands. It returns false if
// we did not.
func (obj *ParseArgs) Run(ctx context.Context, data *cliUtil.Data) (bool, error) {
	return true, obj.parse(os.Stdout)
}

func (obj *ParseArgs) parse(w io.Writer) error {
	typ, err := types.Parse(obj.Input)
	if err != nil {
		return err
	}
	if obj.JSON {
		b, err := json.Marshal(typ)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s\n", b)
	} else {
		fmt.Fprintf(w, "%s\n", typ)
	}
	if len(obj.Params) > 0 {
		fmt.Fprintf(w, "unresolved: %t\n", typ.HasUnresolved(obj.Params))
	}
	return nil
}
