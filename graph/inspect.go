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

package graph

import (
	"fmt"

	"github.com/purpleidea/nodeflow/meta"
	"github.com/purpleidea/nodeflow/types"
	"github.com/purpleidea/nodeflow/util"
)

// PortKind says whether a port carries control flow or data.
type PortKind int

const (
	// KindNil is the zero value, and is never returned by an inspection.
	KindNil PortKind = iota

	// KindControl is an execution order port.
	KindControl

	// KindData is a value carrying port.
	KindData
)

// String returns the lowercase name of the kind.
func (obj PortKind) String() string {
	switch obj {
	case KindControl:
		return "control"
	case KindData:
		return "data"
	}
	return "nil"
}

// PortInfo is the result of inspecting one end of a wire.
type PortInfo struct {
	Kind PortKind

	// Type is the effective type of a data port, which is the declared
	// type with the node's bindings substituted in. It is nil for control.
	Type *types.Type

	// Unresolved are the generic parameters declared by the node type which
	// are not yet bound on this node. This is empty for control ports.
	Unresolved []string
}

// HasUnresolved returns true if the node still has free parameters.
func (obj *PortInfo) HasUnresolved() bool {
	return len(obj.Unresolved) > 0
}

// Inspector looks up the effective type of node ports.
type Inspector struct {
	// Metas is the table of node types. It is only read.
	Metas meta.Registry
}

// Inspect returns information about a port of the node with this id. If output
// is true, portID names an output port, otherwise an input. It returns nil if
// the node or the port can't be found.
func (obj *Inspector) Inspect(g *Graph, nodeID, portID string, output bool) *PortInfo {
	n := g.Node(nodeID)
	if n == nil {
		return nil
	}
	return obj.InspectNode(n, portID, output)
}

// InspectNode is like Inspect but takes the node directly.
func (obj *Inspector) InspectNode(n *Node, portID string, output bool) *PortInfo {
	m, exists := obj.Metas[n.Kind]
	if !exists || m == nil {
		return nil
	}
	if portID == TriggerPort {
		return &PortInfo{
			Kind:       KindControl,
			Unresolved: []string{},
		}
	}

	port := m.Input(portID)
	if output {
		port = m.Output(portID)
	}
	if port == nil {
		return nil
	}
	if port.IsRoute() {
		return &PortInfo{
			Kind:       KindControl,
			Unresolved: []string{},
		}
	}

	// The registry was validated when it was loaded, so this can't fail.
	typ, err := types.Parse(port.Type)
	if err != nil {
		panic(fmt.Sprintf("node type %s has an invalid port %s: %+v", n.Kind, port.Name, err))
	}

	bound := []string{}
	for k, v := range n.GenericTypes {
		if v != nil {
			bound = append(bound, k)
		}
	}

	return &PortInfo{
		Kind:       KindData,
		Type:       typ.Substitute(n.GenericTypes),
		Unresolved: util.StrFilterElementsInList(bound, m.GenericTypes),
	}
}
