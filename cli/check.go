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
	"os/signal"
	"sort"

	cliUtil "github.com/purpleidea/nodeflow/cli/util"
	"github.com/purpleidea/nodeflow/editor"
	"github.com/purpleidea/nodeflow/flowformat"
	"github.com/purpleidea/nodeflow/meta"
	"github.com/purpleidea/nodeflow/prometheus"
	"github.com/purpleidea/nodeflow/util/errwrap"
	"github.com/purpleidea/nodeflow/util/recwatch"

	"github.com/spf13/afero"
)

// ErrRejected is returned by the check command when any edge was rejected.
const ErrRejected = cliUtil.Error("some edges were rejected")

// CheckArgs is the CLI parsing structure and type of the parsed result. This
// particular one contains all the common flags for the `check` subcommand.
type CheckArgs struct {
	cliUtil.MetaArgs // embedded (can't be a pointer)

	Flow string `arg:"positional,required" help:"exported flow file"`

	Reset bool `arg:"--reset" help:"drop the stored bindings and resolve them again from the edges"`
	JSON  bool `arg:"--json" help:"print the report as json"`

	Output         string `arg:"--output" help:"write the rebuilt flow to this file"`
	ExecuteRequest string `arg:"--execute-request" help:"write the execution request body to this file"`

	Graphviz       string `arg:"--graphviz" help:"output filename for graphviz"`
	GraphvizFilter string `arg:"--graphviz-filter" help:"graphviz filter to use to render a png"`

	Metrics bool `arg:"--metrics" help:"print the decision totals"`

	Watch bool `arg:"--watch" help:"check again whenever the flow or metadata changes"`
}

// Run executes the correct subcommand. It errors if there's ever an error. It
// returns true if we did activate one of the subcommands. It returns false if
// we did not.
func (obj *CheckArgs) Run(ctx context.Context, data *cliUtil.Data) (bool, error) {
	Logf := func(format string, v ...interface{}) {
		data.Flags.Logf("check: "+format, v...)
	}
	fs := afero.NewOsFs()

	if !obj.Watch {
		ok, err := obj.check(os.Stdout, fs, data.Flags.Debug, Logf)
		if err != nil {
			return false, err
		}
		if !ok {
			return true, ErrRejected
		}
		return true, nil
	}

	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt)
	defer cancel()

	watcher, err := recwatch.NewFileWatcher(
		[]string{obj.Flow, obj.Meta},
		recwatch.Debug(data.Flags.Debug),
		recwatch.Logf(func(format string, v ...interface{}) {
			Logf("recwatch: "+format, v...)
		}),
	)
	if err != nil {
		return false, errwrap.Wrapf(err, "could not watch")
	}
	defer watcher.Close()
	defer Logf("goodbye!")

	for {
		// a broken file is expected while someone is editing it
		if ok, err := obj.check(os.Stdout, fs, data.Flags.Debug, Logf); err != nil {
			Logf("error: %+v", err)
		} else if !ok {
			Logf("%s", ErrRejected)
		}

		select {
		case event, ok := <-watcher.Events():
			if !ok {
				return true, nil
			}
			if err := event.Error; err != nil {
				return true, errwrap.Wrapf(err, "watch failed")
			}
			Logf("changed: %s", event.Body.Name)

		case <-ctx.Done():
			return true, nil
		}
	}
}

// check runs a single check, and returns true if every edge was accepted.
func (obj *CheckArgs) check(w io.Writer, fs afero.Fs, debug bool, logf func(format string, v ...interface{})) (bool, error) {
	metas, err := meta.Load(fs, obj.Meta)
	if err != nil {
		return false, err
	}
	solver, err := lookupSolver(obj.Solver)
	if err != nil {
		return false, err
	}
	flow, err := flowformat.Load(fs, obj.Flow)
	if err != nil {
		return false, errwrap.Wrapf(err, "could not load %s", obj.Flow)
	}

	e := &editor.Editor{
		Metas:     metas,
		StartKind: obj.StartKind,
		Solver:    solver,
		Debug:     debug,
		Logf: func(format string, v ...interface{}) {
			logf("editor: "+format, v...)
		},
	}
	var prom *prometheus.Prometheus
	if obj.Metrics {
		prom = &prometheus.Prometheus{}
		if err := prom.Init(); err != nil {
			return false, errwrap.Wrapf(err, "can't init prometheus")
		}
		prom.InitConnectMetrics()
		e.Observer = prom
	}
	if err := e.Init(); err != nil {
		return false, err
	}

	report, err := e.Replay(flow, obj.Reset)
	if err != nil {
		return false, err
	}
	if obj.JSON {
		b, err := json.MarshalIndent(report, "", "\t")
		if err != nil {
			return false, err
		}
		fmt.Fprintf(w, "%s\n", b)
	} else {
		printReport(w, report)
	}

	if obj.Output != "" {
		if err := flowformat.Save(fs, obj.Output, e.Export()); err != nil {
			return false, errwrap.Wrapf(err, "could not write %s", obj.Output)
		}
	}
	if obj.ExecuteRequest != "" {
		b, err := json.Marshal(e.ExecuteRequest())
		if err != nil {
			return false, err
		}
		if err := afero.WriteFile(fs, obj.ExecuteRequest, b, 0644); err != nil {
			return false, errwrap.Wrapf(err, "could not write %s", obj.ExecuteRequest)
		}
	}
	if obj.Graphviz != "" {
		if obj.GraphvizFilter != "" {
			err = e.Graph().ExecGraphviz(obj.GraphvizFilter, obj.Graphviz)
		} else {
			err = e.Graph().WriteGraphviz(fs, obj.Graphviz)
		}
		if err != nil {
			return false, errwrap.Wrapf(err, "graphviz failed")
		}
	}

	if prom != nil {
		totals, err := prom.Totals()
		if err != nil {
			return false, err
		}
		keys := []string{}
		for k := range totals {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(w, "%s %v\n", k, totals[k])
		}
	}

	return report.OK(), nil
}

// printReport writes one line per replayed edge, and a summary.
func printReport(w io.Writer, report *editor.Report) {
	for _, r := range report.Results {
		if !r.Accepted {
			fmt.Fprintf(w, "rejected: %s (%s)\n", r.Connection, r.Reason)
			continue
		}
		if r.Bound != "" {
			fmt.Fprintf(w, "ok: %s binds %s to %s\n", r.Connection, r.Bound, r.Bindings)
			continue
		}
		fmt.Fprintf(w, "ok: %s\n", r.Connection)
	}
	fmt.Fprintf(w, "accepted: %d, rejected: %d\n", report.Accepted, report.Rejected)
}
