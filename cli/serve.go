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
	"os"
	"os/signal"
	"syscall"

	cliUtil "github.com/purpleidea/nodeflow/cli/util"
	"github.com/purpleidea/nodeflow/meta"
	"github.com/purpleidea/nodeflow/prometheus"
	"github.com/purpleidea/nodeflow/server"
	"github.com/purpleidea/nodeflow/util/errwrap"

	"github.com/spf13/afero"
)

// ServeArgs is the CLI parsing structure and type of the parsed result. This
// particular one contains all the common flags for the `serve` subcommand.
type ServeArgs struct {
	cliUtil.MetaArgs // embedded (can't be a pointer)

	Listen string `arg:"--listen,env:NODEFLOW_LISTEN" help:"address to listen on"`

	Prometheus bool `arg:"--prometheus" help:"count connection decisions and serve them on /metrics"`
}

// Run executes the correct subcommand. It errors if there's ever an error. It
// returns true if we did activate one of the subcommands. It returns false if
// we did not.
func (obj *ServeArgs) Run(ctx context.Context, data *cliUtil.Data) (bool, error) {
	Logf := func(format string, v ...interface{}) {
		data.Flags.Logf("serve: "+format, v...)
	}

	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cliUtil.Hello(os.Stdout, data) // say hello!
	defer Logf("goodbye!")

	metas, err := meta.Load(afero.NewOsFs(), obj.Meta)
	if err != nil {
		return false, err
	}
	solver, err := lookupSolver(obj.Solver)
	if err != nil {
		return false, err
	}

	var prom *prometheus.Prometheus
	if obj.Prometheus {
		prom = &prometheus.Prometheus{}
		if err := prom.Init(); err != nil {
			return false, errwrap.Wrapf(err, "can't init prometheus")
		}
		prom.InitConnectMetrics()
	}

	s := &server.Server{
		Listen:     obj.Listen,
		Metas:      metas,
		StartKind:  obj.StartKind,
		Solver:     solver,
		Prometheus: prom,
		Debug:      data.Flags.Debug,
		Logf: func(format string, v ...interface{}) {
			Logf("server: "+format, v...)
		},
	}
	if err := s.Init(); err != nil {
		return false, err
	}
	Logf("serving %d node types", len(metas))
	if err := s.Run(ctx); err != nil {
		return false, errwrap.Wrapf(err, "server failed")
	}
	return true, nil
}
