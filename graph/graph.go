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

// Package graph represents the node and edge graph of a flow, and contains the
// port inspector and the connection validator which decide what may be wired.
package graph

import (
	"fmt"

	"github.com/purpleidea/nodeflow/meta"
	"github.com/purpleidea/nodeflow/types"
	"github.com/purpleidea/nodeflow/util"
)

const (
	// TriggerPort is the reserved port id of the control input and the
	// control output of a triggered node.
	TriggerPort = "_"

	// ErrNodeNotFound is returned when a node id is not in the graph.
	ErrNodeNotFound = util.Error("node not found")

	// ErrNodeExists is returned when adding a node whose id is taken.
	ErrNodeExists = util.Error("node already exists")
)

// Position is the location of a node on the canvas.
type Position struct {
	X float64
	Y float64
}

// Node is a placed instance of a node type. Nodes are treated as values: once
// a node is in a graph it is never modified, and a changed node is a new Node
// which replaces it.
type Node struct {
	ID            string
	Kind          string // node type name in the meta registry
	ExecutionType meta.ExecutionType
	Inputs        map[string]interface{}

	// GenericTypes are the bindings for this node's generic parameters.
	// Unresolved parameters are absent.
	GenericTypes types.Bindings

	Position Position
	Width    float64
	Height   float64
}

// Copy returns a copy of the node which can be modified without affecting the
// original.
func (obj *Node) Copy() *Node {
	inputs := make(map[string]interface{}, len(obj.Inputs))
	for k, v := range obj.Inputs {
		inputs[k] = v
	}
	return &Node{
		ID:            obj.ID,
		Kind:          obj.Kind,
		ExecutionType: obj.ExecutionType,
		Inputs:        inputs,
		GenericTypes:  obj.GenericTypes.Copy(),
		Position:      obj.Position,
		Width:         obj.Width,
		Height:        obj.Height,
	}
}

// String returns a short name for the node.
func (obj *Node) String() string {
	return fmt.Sprintf("%s(%s)", obj.ID, obj.Kind)
}

// Edge is a wire between two ports. A route edge ends at the TriggerPort of
// its target, and every other edge is a data edge.
type Edge struct {
	ID         string
	Source     string
	SourcePort string
	Target     string
	TargetPort string

	// Animated is set on control edges. It is a display hint, and it is
	// what marks an edge as a route edge in an execution request.
	Animated bool

	// Color is the css stroke color of a data edge, if any.
	Color string
}

// IsRoute returns true if this is a control flow edge.
func (obj *Edge) IsRoute() bool {
	return obj.TargetPort == TriggerPort
}

// Touches returns true if either end of the edge is the given node and port.
func (obj *Edge) Touches(node, port string) bool {
	return (obj.Source == node && obj.SourcePort == port) || (obj.Target == node && obj.TargetPort == port)
}

// String returns a short description of the edge.
func (obj *Edge) String() string {
	return fmt.Sprintf("%s.%s -> %s.%s", obj.Source, obj.SourcePort, obj.Target, obj.TargetPort)
}

// Graph is a snapshot of all the nodes and edges in a flow, in insertion
// order. A graph which has been shared, such as one stored in the history,
// must not be modified. Copy it, and modify the copy instead.
type Graph struct {
	Name  string
	nodes []*Node
	edges []*Edge
}

// NewGraph builds a new, empty graph.
func NewGraph(name string) *Graph {
	return &Graph{
		Name:  name,
		nodes: []*Node{},
		edges: []*Edge{},
	}
}

// Copy makes a copy of the graph. The nodes and edges themselves are shared,
// since they are never modified in place.
func (g *Graph) Copy() *Graph {
	return &Graph{
		Name:  g.Name,
		nodes: append([]*Node{}, g.nodes...),
		edges: append([]*Edge{}, g.edges...),
	}
}

// Nodes returns the list of nodes in the graph.
func (g *Graph) Nodes() []*Node {
	return append([]*Node{}, g.nodes...)
}

// Edges returns the list of edges in the graph.
func (g *Graph) Edges() []*Edge {
	return append([]*Edge{}, g.edges...)
}

// NumNodes returns the number of nodes in the graph.
func (g *Graph) NumNodes() int {
	return len(g.nodes)
}

// NumEdges returns the number of edges in the graph.
func (g *Graph) NumEdges() int {
	return len(g.edges)
}

// Node returns the node with this id, or nil if it is not found.
func (g *Graph) Node(id string) *Node {
	for _, n := range g.nodes {
		if n.ID == id {
			return n
		}
	}
	return nil
}

// Edge returns the edge with this id, or nil if it is not found.
func (g *Graph) Edge(id string) *Edge {
	for _, e := range g.edges {
		if e.ID == id {
			return e
		}
	}
	return nil
}

// AddNode adds a node to the graph. The id must not be in use.
func (g *Graph) AddNode(n *Node) error {
	if g.Node(n.ID) != nil {
		return fmt.Errorf("%w: %s", ErrNodeExists, n.ID)
	}
	g.nodes = append(g.nodes, n)
	return nil
}

// ReplaceNode swaps the node with the same id for this one.
func (g *Graph) ReplaceNode(n *Node) error {
	for i, x := range g.nodes {
		if x.ID == n.ID {
			g.nodes[i] = n
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrNodeNotFound, n.ID)
}

// DeleteNode removes a node, and every edge touching it. It returns the edges
// which were removed.
func (g *Graph) DeleteNode(id string) ([]*Edge, error) {
	nodes := []*Node{}
	for _, n := range g.nodes {
		if n.ID != id {
			nodes = append(nodes, n)
		}
	}
	if len(nodes) == len(g.nodes) {
		return nil, fmt.Errorf("%w: %s", ErrNodeNotFound, id)
	}
	g.nodes = nodes
	return g.FilterEdges(func(e *Edge) bool {
		return e.Source == id || e.Target == id
	}), nil
}

// AddEdge adds an edge to the graph.
func (g *Graph) AddEdge(e *Edge) {
	g.edges = append(g.edges, e)
}

// DeleteEdge removes the edge with this id. It returns false if there was no
// such edge.
func (g *Graph) DeleteEdge(id string) bool {
	removed := g.FilterEdges(func(e *Edge) bool {
		return e.ID == id
	})
	return len(removed) > 0
}

// FilterEdges removes every edge for which fn returns true, and returns them.
func (g *Graph) FilterEdges(fn func(*Edge) bool) []*Edge {
	keep := []*Edge{}
	removed := []*Edge{}
	for _, e := range g.edges {
		if fn(e) {
			removed = append(removed, e)
			continue
		}
		keep = append(keep, e)
	}
	g.edges = keep
	return removed
}
