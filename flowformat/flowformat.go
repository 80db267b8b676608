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

// Package flowformat converts graphs to and from the exported flow format, and
// projects them into the request that is sent to an execution backend.
package flowformat

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"

	"github.com/purpleidea/nodeflow/graph"
	"github.com/purpleidea/nodeflow/meta"
	"github.com/purpleidea/nodeflow/types"
	"github.com/purpleidea/nodeflow/util"
	"github.com/purpleidea/nodeflow/util/errwrap"

	"github.com/spf13/afero"
)

const (
	// Extension is the only file extension accepted on import.
	Extension = ".json"

	// ErrExtension is returned when importing a file without Extension.
	ErrExtension = util.Error("only .json files can be imported")
)

// Position is the location of a node.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Node is an exported node.
type Node struct {
	ID            string                 `json:"id"`
	NodeType      string                 `json:"node_type"`
	ExecutionType meta.ExecutionType     `json:"execution_type"`
	Inputs        map[string]interface{} `json:"inputs"`
	Position      Position               `json:"position"`
	Width         float64                `json:"width,omitempty"`
	Height        float64                `json:"height,omitempty"`
	GenericTypes  types.Bindings         `json:"generic_types"`
}

// DataEdge is an exported data edge.
type DataEdge struct {
	SourceID  string `json:"source_id"`
	SourcePin string `json:"source_pin"`
	TargetID  string `json:"target_id"`
	TargetPin string `json:"target_pin"`
}

// RouteEdge is an exported control edge. It always ends at the trigger port.
type RouteEdge struct {
	SourceID  string `json:"source_id"`
	SourcePin string `json:"source_pin"`
	TargetID  string `json:"target_id"`
}

// Flow is the exported form of a graph.
type Flow struct {
	Nodes      []*Node      `json:"nodes"`
	Edges      []*DataEdge  `json:"edges"`
	RouteEdges []*RouteEdge `json:"route_edges"`
}

// pin returns the port name, defaulting to the trigger port.
func pin(port string) string {
	if port == "" {
		return graph.TriggerPort
	}
	return port
}

// Export converts a graph into a flow. An edge ending at the trigger port is a
// route edge, and every other edge is a data edge.
func Export(g *graph.Graph) *Flow {
	flow := &Flow{
		Nodes:      []*Node{},
		Edges:      []*DataEdge{},
		RouteEdges: []*RouteEdge{},
	}
	for _, n := range g.Nodes() {
		inputs := n.Inputs
		if inputs == nil {
			inputs = map[string]interface{}{}
		}
		bindings := n.GenericTypes
		if bindings == nil {
			bindings = types.Bindings{}
		}
		flow.Nodes = append(flow.Nodes, &Node{
			ID:            n.ID,
			NodeType:      n.Kind,
			ExecutionType: n.ExecutionType,
			Inputs:        inputs,
			Position:      Position{X: n.Position.X, Y: n.Position.Y},
			Width:         n.Width,
			Height:        n.Height,
			GenericTypes:  bindings,
		})
	}
	for _, e := range g.Edges() {
		if e.IsRoute() {
			flow.RouteEdges = append(flow.RouteEdges, &RouteEdge{
				SourceID:  e.Source,
				SourcePin: pin(e.SourcePort),
				TargetID:  e.Target,
			})
			continue
		}
		flow.Edges = append(flow.Edges, &DataEdge{
			SourceID:  e.Source,
			SourcePin: pin(e.SourcePort),
			TargetID:  e.Target,
			TargetPin: pin(e.TargetPort),
		})
	}
	return flow
}

// Import converts a flow into a graph. Stored bindings are taken as they are,
// without checking that any connection could have produced them. Data edges
// are styled from the effective type of their source port. Every node must be
// of a type known to the inspector, and every edge must join two such nodes.
func Import(flow *Flow, inspector *graph.Inspector) (*graph.Graph, error) {
	g := graph.NewGraph("flow")
	for i, x := range flow.Nodes {
		if x == nil || x.ID == "" {
			return nil, fmt.Errorf("node #%d has no id", i)
		}
		if _, exists := inspector.Metas[x.NodeType]; !exists {
			return nil, fmt.Errorf("node %s has unknown type: %s", x.ID, x.NodeType)
		}
		execution := x.ExecutionType
		if execution == "" {
			execution = meta.ExecutionTriggered
		}
		if err := execution.Validate(); err != nil {
			return nil, errwrap.Wrapf(err, "node %s", x.ID)
		}
		inputs := map[string]interface{}{}
		for k, v := range x.Inputs {
			inputs[k] = v
		}
		n := &graph.Node{
			ID:            x.ID,
			Kind:          x.NodeType,
			ExecutionType: execution,
			Inputs:        inputs,
			GenericTypes:  x.GenericTypes.Copy(),
			Position:      graph.Position{X: x.Position.X, Y: x.Position.Y},
			Width:         x.Width,
			Height:        x.Height,
		}
		if err := g.AddNode(n); err != nil {
			return nil, err
		}
	}

	for i, x := range flow.Edges {
		if x == nil {
			return nil, fmt.Errorf("edge #%d is empty", i)
		}
		if err := joins(g, x.SourceID, x.TargetID); err != nil {
			return nil, errwrap.Wrapf(err, "edge #%d", i)
		}
		src := inspector.Inspect(g, x.SourceID, x.SourcePin, true)
		g.AddEdge(&graph.Edge{
			ID:         fmt.Sprintf("data-%d", i),
			Source:     x.SourceID,
			SourcePort: x.SourcePin,
			Target:     x.TargetID,
			TargetPort: x.TargetPin,
			Color:      graph.EdgeColor(src),
		})
	}
	for i, x := range flow.RouteEdges {
		if x == nil {
			return nil, fmt.Errorf("route edge #%d is empty", i)
		}
		if err := joins(g, x.SourceID, x.TargetID); err != nil {
			return nil, errwrap.Wrapf(err, "route edge #%d", i)
		}
		g.AddEdge(&graph.Edge{
			ID:         fmt.Sprintf("route-%d", i),
			Source:     x.SourceID,
			SourcePort: x.SourcePin,
			Target:     x.TargetID,
			TargetPort: graph.TriggerPort,
			Animated:   true,
		})
	}
	return g, nil
}

func joins(g *graph.Graph, source, target string) error {
	if g.Node(source) == nil {
		return fmt.Errorf("%w: %s", graph.ErrNodeNotFound, source)
	}
	if g.Node(target) == nil {
		return fmt.Errorf("%w: %s", graph.ErrNodeNotFound, target)
	}
	return nil
}

// Decode parses an exported flow. Missing lists are returned empty, and null
// entries in them are errors.
func Decode(data []byte) (*Flow, error) {
	flow := &Flow{}
	if err := json.Unmarshal(data, flow); err != nil {
		return nil, errwrap.Wrapf(err, "invalid flow")
	}
	if flow.Nodes == nil {
		flow.Nodes = []*Node{}
	}
	if flow.Edges == nil {
		flow.Edges = []*DataEdge{}
	}
	if flow.RouteEdges == nil {
		flow.RouteEdges = []*RouteEdge{}
	}
	for i, n := range flow.Nodes {
		if n == nil {
			return nil, fmt.Errorf("node #%d is empty", i)
		}
	}
	for i, e := range flow.Edges {
		if e == nil {
			return nil, fmt.Errorf("edge #%d is empty", i)
		}
	}
	for i, e := range flow.RouteEdges {
		if e == nil {
			return nil, fmt.Errorf("route edge #%d is empty", i)
		}
	}
	return flow, nil
}

// Encode returns the compact json form of a flow.
func Encode(flow *Flow) ([]byte, error) {
	return json.Marshal(flow)
}

// Load reads an exported flow from a .json file.
func Load(fs afero.Fs, filename string) (*Flow, error) {
	if filepath.Ext(filename) != Extension {
		return nil, ErrExtension
	}
	data, err := afero.ReadFile(fs, filename)
	if err != nil {
		return nil, errwrap.Wrapf(err, "can't read flow")
	}
	return Decode(data)
}

// Save writes an exported flow to a file.
func Save(fs afero.Fs, filename string, flow *Flow) error {
	data, err := Encode(flow)
	if err != nil {
		return errwrap.Wrapf(err, "can't encode flow")
	}
	return afero.WriteFile(fs, filename, data, 0644)
}

// Filename returns the default name of a flow exported at time t.
func Filename(t time.Time) string {
	return fmt.Sprintf("workflow-%s%s", t.Format("20060102150405"), Extension)
}
