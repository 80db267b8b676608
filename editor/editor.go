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

// Package editor is the graph editor which drives the connection validator. It
// owns the current graph, applies every change as a new snapshot, and keeps
// the undo history.
package editor

import (
	"fmt"
	"strconv"

	"github.com/purpleidea/nodeflow/flowformat"
	"github.com/purpleidea/nodeflow/graph"
	"github.com/purpleidea/nodeflow/history"
	"github.com/purpleidea/nodeflow/meta"
	"github.com/purpleidea/nodeflow/types"
	"github.com/purpleidea/nodeflow/unification"
	"github.com/purpleidea/nodeflow/util"
	"github.com/purpleidea/nodeflow/util/errwrap"
)

const (
	// StartID is the id of the start node, which every graph has.
	StartID = "start"

	// DefaultStartKind is the node type of the start node.
	DefaultStartKind = "StartNode"

	// DuplicateOffset is how far a duplicated node is moved on both axes.
	DuplicateOffset = 100

	// ErrStartDelete is returned when deleting the start node.
	ErrStartDelete = util.Error("the start node cannot be deleted")

	// ErrStartExecution is returned when the start node is made untriggered.
	ErrStartExecution = util.Error("the start node can only use triggered execution")

	// ErrUnknownKind is returned for a node type missing from the registry.
	ErrUnknownKind = util.Error("unknown node type")
)

// startPosition is where the start node of a new graph is placed.
var startPosition = graph.Position{X: 20, Y: 20}

// Editor holds the graph being edited. It is not safe for concurrent use, since
// every operation runs to completion as a single user interaction.
type Editor struct {
	// Metas is the node type registry. It must be valid.
	Metas meta.Registry

	// StartKind is the node type of the start node. If empty, the default
	// is used.
	StartKind string

	// Solver and Observer are passed to the validator. Both are optional.
	Solver   unification.Solver
	Observer graph.Observer

	Debug bool
	Logf  func(format string, v ...interface{})

	inspector *graph.Inspector
	validator *graph.Validator

	graph   *graph.Graph
	history *history.History
	nextID  int
}

// Init must be called before the editor is used. It starts a new graph.
func (obj *Editor) Init() error {
	if obj.Metas == nil {
		return fmt.Errorf("no node metadata")
	}
	if obj.StartKind == "" {
		obj.StartKind = DefaultStartKind
	}
	if obj.Logf == nil {
		obj.Logf = func(format string, v ...interface{}) {}
	}
	obj.inspector = &graph.Inspector{
		Metas: obj.Metas,
	}
	obj.validator = &graph.Validator{
		Inspector: obj.inspector,
		Solver:    obj.Solver,
		Observer:  obj.Observer,
		Debug:     obj.Debug,
		Logf: func(format string, v ...interface{}) {
			obj.Logf("validator: "+format, v...)
		},
	}
	obj.New()
	return nil
}

// New replaces the graph with one holding only the start node. The history is
// cleared and ids start again from one.
func (obj *Editor) New() {
	g := graph.NewGraph("flow")
	start := &graph.Node{
		ID:            StartID,
		Kind:          obj.StartKind,
		ExecutionType: meta.ExecutionTriggered,
		Inputs:        map[string]interface{}{},
		GenericTypes:  types.Bindings{},
		Position:      startPosition,
	}
	if err := g.AddNode(start); err != nil {
		panic(err) // empty graph
	}
	obj.graph = g
	obj.history = history.New(g)
	obj.nextID = 1
}

// Graph returns the current graph. It must not be modified.
func (obj *Editor) Graph() *graph.Graph {
	return obj.graph
}

// Inspect returns information about a port of a node in the current graph, or
// nil if it can't be found.
func (obj *Editor) Inspect(nodeID, portID string, output bool) *graph.PortInfo {
	return obj.inspector.Inspect(obj.graph, nodeID, portID, output)
}

// commit makes g the current graph and records it in the history.
func (obj *Editor) commit(g *graph.Graph, accumulate bool) {
	obj.graph = g
	obj.history.Save(g, accumulate)
}

// node returns the node with this id in the current graph, or an error.
func (obj *Editor) node(id string) (*graph.Node, error) {
	n := obj.graph.Node(id)
	if n == nil {
		return nil, fmt.Errorf("%w: %s", graph.ErrNodeNotFound, id)
	}
	return n, nil
}

// takeID returns the next free numeric id.
func (obj *Editor) takeID() string {
	for {
		id := strconv.Itoa(obj.nextID)
		obj.nextID++
		if obj.graph.Node(id) == nil {
			return id
		}
	}
}

// Connect validates a proposed wire, and applies it if it is accepted. A
// rejection is not an error, and leaves the graph and history untouched.
func (obj *Editor) Connect(conn graph.Connection) (*graph.Decision, error) {
	g, d, err := obj.validator.Connect(obj.graph, conn)
	if err != nil {
		return nil, err
	}
	if d.Accepted {
		obj.commit(g, false)
	}
	return d, nil
}

// AddNode places a new node of the given type, with the default inputs and no
// bindings.
func (obj *Editor) AddNode(kind string, pos graph.Position) (*graph.Node, error) {
	m, exists := obj.Metas[kind]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrUnknownKind, kind)
	}
	n := &graph.Node{
		ID:            obj.takeID(),
		Kind:          kind,
		ExecutionType: m.DefaultExecution(),
		Inputs:        m.DefaultInputs(),
		GenericTypes:  types.Bindings{},
		Position:      pos,
	}
	g := obj.graph.Copy()
	if err := g.AddNode(n); err != nil {
		return nil, err
	}
	obj.commit(g, false)
	if obj.Debug {
		obj.Logf("added node %s", n)
	}
	return n, nil
}

// DeleteNode removes a node and every edge touching it.
func (obj *Editor) DeleteNode(id string) error {
	if id == StartID {
		return ErrStartDelete
	}
	g := obj.graph.Copy()
	removed, err := g.DeleteNode(id)
	if err != nil {
		return err
	}
	obj.commit(g, false)
	if obj.Debug {
		obj.Logf("deleted node %s and %d edge(s)", id, len(removed))
	}
	return nil
}

// DeleteEdge removes an edge. Bindings it caused are kept.
func (obj *Editor) DeleteEdge(id string) error {
	g := obj.graph.Copy()
	if !g.DeleteEdge(id) {
		return fmt.Errorf("edge not found: %s", id)
	}
	obj.commit(g, false)
	return nil
}

// DuplicateNode copies a node to a new id, offset from the original. The copy
// keeps the inputs and execution type, but starts with no bindings and no
// edges.
func (obj *Editor) DuplicateNode(id string) (*graph.Node, error) {
	orig, err := obj.node(id)
	if err != nil {
		return nil, err
	}
	n := orig.Copy()
	n.ID = obj.takeID()
	n.GenericTypes = types.Bindings{}
	n.Position = graph.Position{
		X: orig.Position.X + DuplicateOffset,
		Y: orig.Position.Y + DuplicateOffset,
	}
	g := obj.graph.Copy()
	if err := g.AddNode(n); err != nil {
		return nil, err
	}
	obj.commit(g, false)
	return n, nil
}

// SetExecutionType changes when a node runs. A node which stops being triggered
// no longer has a trigger port, so the wires on its trigger port are dropped.
// Its data wires are kept.
func (obj *Editor) SetExecutionType(id string, typ meta.ExecutionType) error {
	if err := typ.Validate(); err != nil {
		return err
	}
	if id == StartID && typ != meta.ExecutionTriggered {
		return ErrStartExecution
	}
	orig, err := obj.node(id)
	if err != nil {
		return err
	}

	g := obj.graph.Copy()
	if orig.ExecutionType == meta.ExecutionTriggered && typ != meta.ExecutionTriggered {
		removed := g.FilterEdges(func(e *graph.Edge) bool {
			return e.Touches(id, graph.TriggerPort)
		})
		if obj.Debug && len(removed) > 0 {
			obj.Logf("node %s is now %s, dropped %d trigger edge(s)", id, typ, len(removed))
		}
	}
	n := orig.Copy()
	n.ExecutionType = typ
	if err := g.ReplaceNode(n); err != nil {
		return err
	}
	obj.commit(g, false)
	return nil
}

// SetInput changes the value of a node input. Consecutive edits are merged into
// one history entry.
func (obj *Editor) SetInput(id, name string, value interface{}) error {
	orig, err := obj.node(id)
	if err != nil {
		return err
	}
	if m := obj.Metas[orig.Kind]; m == nil || m.Input(name) == nil {
		return fmt.Errorf("node %s has no input named %s", id, name)
	}
	n := orig.Copy()
	n.Inputs[name] = value
	g := obj.graph.Copy()
	if err := g.ReplaceNode(n); err != nil {
		return err
	}
	obj.commit(g, true)
	return nil
}

// MoveNode changes the position of a node. While dragging is true the move is
// made but not recorded, and the final move of a drag is recorded once.
func (obj *Editor) MoveNode(id string, pos graph.Position, dragging bool) error {
	orig, err := obj.node(id)
	if err != nil {
		return err
	}
	n := orig.Copy()
	n.Position = pos
	g := obj.graph.Copy()
	if err := g.ReplaceNode(n); err != nil {
		return err
	}
	if dragging {
		obj.graph = g
		return nil
	}
	obj.commit(g, false)
	return nil
}

// ResetBindings forgets every binding on a node. Its wires are kept.
func (obj *Editor) ResetBindings(id string) error {
	orig, err := obj.node(id)
	if err != nil {
		return err
	}
	n := orig.Copy()
	n.GenericTypes = types.Bindings{}
	g := obj.graph.Copy()
	if err := g.ReplaceNode(n); err != nil {
		return err
	}
	obj.commit(g, false)
	return nil
}

// Undo returns to the previous snapshot. It returns false if there is none.
func (obj *Editor) Undo() bool {
	g, ok := obj.history.Undo()
	if ok {
		obj.graph = g
	}
	return ok
}

// Redo returns to the next snapshot. It returns false if there is none.
func (obj *Editor) Redo() bool {
	g, ok := obj.history.Redo()
	if ok {
		obj.graph = g
	}
	return ok
}

// CanUndo returns true if Undo would do something.
func (obj *Editor) CanUndo() bool {
	return obj.history.CanUndo()
}

// CanRedo returns true if Redo would do something.
func (obj *Editor) CanRedo() bool {
	return obj.history.CanRedo()
}

// Import replaces the graph with an exported flow. The history is cleared, and
// new ids continue after the largest numeric id in the flow.
func (obj *Editor) Import(flow *flowformat.Flow) error {
	g, err := flowformat.Import(flow, obj.inspector)
	if err != nil {
		return errwrap.Wrapf(err, "import failed")
	}
	obj.graph = g
	obj.history = history.New(g)
	obj.nextID = MaxID(g) + 1
	return nil
}

// Export returns the current graph as a flow.
func (obj *Editor) Export() *flowformat.Flow {
	return flowformat.Export(obj.graph)
}

// ExecuteRequest returns the body of a request to execute the current graph.
func (obj *Editor) ExecuteRequest() *flowformat.ExecuteRequest {
	return flowformat.NewExecuteRequest(obj.graph)
}

// MaxID returns the largest numeric node id, or zero if there are none.
func MaxID(g *graph.Graph) int {
	largest := 0
	for _, n := range g.Nodes() {
		i, err := strconv.Atoi(n.ID)
		if err != nil {
			continue
		}
		if i > largest {
			largest = i
		}
	}
	return largest
}
