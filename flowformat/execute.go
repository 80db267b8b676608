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

package flowformat

import (
	"github.com/purpleidea/nodeflow/graph"
	"github.com/purpleidea/nodeflow/meta"
)

// ExecuteNode is a node as seen by the execution backend.
type ExecuteNode struct {
	ID            string                 `json:"id"`
	NodeType      string                 `json:"node_type"`
	ExecutionType meta.ExecutionType     `json:"execution_type"`
	Inputs        map[string]interface{} `json:"inputs"`
}

// ExecuteRequest is the body of a request to execute a graph. Positions and
// bindings are not part of it.
type ExecuteRequest struct {
	Nodes      []*ExecuteNode `json:"nodes"`
	Edges      []*DataEdge    `json:"edges"`
	RouteEdges []*RouteEdge   `json:"route_edges"`
}

// NewExecuteRequest projects a graph into an execution request. Animated edges
// are the route edges. Types are not checked again here.
func NewExecuteRequest(g *graph.Graph) *ExecuteRequest {
	req := &ExecuteRequest{
		Nodes:      []*ExecuteNode{},
		Edges:      []*DataEdge{},
		RouteEdges: []*RouteEdge{},
	}
	for _, n := range g.Nodes() {
		inputs := n.Inputs
		if inputs == nil {
			inputs = map[string]interface{}{}
		}
		req.Nodes = append(req.Nodes, &ExecuteNode{
			ID:            n.ID,
			NodeType:      n.Kind,
			ExecutionType: n.ExecutionType,
			Inputs:        inputs,
		})
	}
	for _, e := range g.Edges() {
		if e.Animated {
			req.RouteEdges = append(req.RouteEdges, &RouteEdge{
				SourceID:  e.Source,
				SourcePin: pin(e.SourcePort),
				TargetID:  e.Target,
			})
			continue
		}
		req.Edges = append(req.Edges, &DataEdge{
			SourceID:  e.Source,
			SourcePin: pin(e.SourcePort),
			TargetID:  e.Target,
			TargetPin: pin(e.TargetPort),
		})
	}
	return req
}
