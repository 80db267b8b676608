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

package editor

import (
	"fmt"

	"github.com/purpleidea/nodeflow/flowformat"
	"github.com/purpleidea/nodeflow/graph"
	"github.com/purpleidea/nodeflow/types"
	"github.com/purpleidea/nodeflow/util/errwrap"
)

// Result is the decision made for one stored edge during a replay.
type Result struct {
	Connection string       `json:"connection"`
	Route      bool         `json:"route"`
	Accepted   bool         `json:"accepted"`
	Reason     graph.Reason `json:"reason"`

	// Bound is the node whose bindings this edge resolved, if any.
	Bound    string         `json:"bound,omitempty"`
	Bindings types.Bindings `json:"bindings,omitempty"`
}

// Report is the outcome of a replay.
type Report struct {
	Results  []*Result `json:"results"`
	Accepted int       `json:"accepted"`
	Rejected int       `json:"rejected"`
}

// OK returns true if every edge was accepted.
func (obj *Report) OK() bool {
	return obj.Rejected == 0
}

// Replay imports the nodes of a flow, and then adds each of its stored edges
// through the validator, data edges first, in the order they were stored. If
// reset is true, the stored bindings are dropped first, so that they must be
// resolved again from the wires. This checks that a flow, which may have been
// edited by hand, is one that the editor could have built.
func (obj *Editor) Replay(flow *flowformat.Flow, reset bool) (*Report, error) {
	nodes := &flowformat.Flow{
		Nodes:      flow.Nodes,
		Edges:      []*flowformat.DataEdge{},
		RouteEdges: []*flowformat.RouteEdge{},
	}
	if err := obj.Import(nodes); err != nil {
		return nil, err
	}
	if reset {
		g := obj.graph.Copy()
		for _, n := range g.Nodes() {
			if len(n.GenericTypes) == 0 {
				continue
			}
			c := n.Copy()
			c.GenericTypes = types.Bindings{}
			if err := g.ReplaceNode(c); err != nil {
				return nil, err // programming error
			}
		}
		obj.graph = g
		obj.history.Clear(g)
	}

	conns := []graph.Connection{}
	for i, e := range flow.Edges {
		if e == nil {
			return nil, fmt.Errorf("edge #%d is empty", i)
		}
		conns = append(conns, graph.Connection{
			Source:     e.SourceID,
			SourcePort: e.SourcePin,
			Target:     e.TargetID,
			TargetPort: e.TargetPin,
		})
	}
	for i, e := range flow.RouteEdges {
		if e == nil {
			return nil, fmt.Errorf("route edge #%d is empty", i)
		}
		conns = append(conns, graph.Connection{
			Source:     e.SourceID,
			SourcePort: e.SourcePin,
			Target:     e.TargetID,
			TargetPort: graph.TriggerPort,
		})
	}

	report := &Report{
		Results: []*Result{},
	}
	for _, conn := range conns {
		d, err := obj.Connect(conn)
		if err != nil {
			return nil, errwrap.Wrapf(err, "replay of %s failed", conn)
		}
		result := &Result{
			Connection: conn.String(),
			Route:      conn.TargetPort == graph.TriggerPort,
			Accepted:   d.Accepted,
			Reason:     d.Reason,
			Bound:      d.Node,
			Bindings:   d.Bindings,
		}
		report.Results = append(report.Results, result)
		if d.Accepted {
			report.Accepted++
		} else {
			report.Rejected++
		}
		if obj.Debug {
			obj.Logf("replay: %s: %s", conn, d.Reason)
		}
	}
	return report, nil
}
