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

	"github.com/purpleidea/nodeflow/types"
	"github.com/purpleidea/nodeflow/unification"
	"github.com/purpleidea/nodeflow/util/errwrap"

	"github.com/google/uuid"
	"github.com/sanity-io/litter"
)

// Connection is a proposed wire between an output port and an input port.
type Connection struct {
	Source     string
	SourcePort string
	Target     string
	TargetPort string
}

// String returns a short description of the connection.
func (obj Connection) String() string {
	return fmt.Sprintf("%s.%s -> %s.%s", obj.Source, obj.SourcePort, obj.Target, obj.TargetPort)
}

// Reason explains a connection decision. The values are used as metric labels.
type Reason string

const (
	// ReasonAccepted is the reason of every accepted connection.
	ReasonAccepted Reason = "accepted"

	// ReasonLookup means a node or port could not be found.
	ReasonLookup Reason = "lookup"

	// ReasonKind means a control port was wired to a data port.
	ReasonKind Reason = "kind"

	// ReasonUnresolved means both ends still have free parameters.
	ReasonUnresolved Reason = "unresolved"

	// ReasonMismatch means two concrete types did not match.
	ReasonMismatch Reason = "mismatch"

	// ReasonResolution means the free parameters could not be bound.
	ReasonResolution Reason = "resolution"
)

// Decision is the outcome of validating a connection. A rejected decision has
// no effects. An accepted one lists every mutation which must be applied to
// the graph, together, to add the wire.
type Decision struct {
	Connection Connection
	Accepted   bool
	Reason     Reason

	// Kind is the kind of both ends, if they could be inspected.
	Kind PortKind

	// Node is the id of the node whose bindings change, if any.
	Node string

	// Bindings is the complete new binding map of Node.
	Bindings types.Bindings

	// Evict are the existing edges which the new wire replaces.
	Evict []*Edge

	// Edge is the new wire.
	Edge *Edge
}

// Observer is told about every connection decision.
type Observer interface {
	// UpdateConnectTotal counts one decision.
	UpdateConnectTotal(kind string, accepted bool, reason string) error
}

// Validator decides whether proposed wires may be added to a graph.
type Validator struct {
	Inspector *Inspector

	// Solver resolves free parameters. If nil, the default solver is used.
	Solver unification.Solver

	// Observer is optional.
	Observer Observer

	Debug bool
	Logf  func(format string, v ...interface{})
}

// Validate decides whether the connection may be added to the graph. The graph
// is not modified.
func (obj *Validator) Validate(g *Graph, conn Connection) *Decision {
	d := obj.validate(g, conn)
	if obj.Debug {
		obj.Logf("connect: %s: %s", conn, d.Reason)
	}
	if obj.Observer != nil {
		if err := obj.Observer.UpdateConnectTotal(d.Kind.String(), d.Accepted, string(d.Reason)); err != nil && obj.Debug {
			obj.Logf("connect: observer error: %+v", err)
		}
	}
	return d
}

func (obj *Validator) validate(g *Graph, conn Connection) *Decision {
	reject := func(kind PortKind, reason Reason) *Decision {
		return &Decision{
			Connection: conn,
			Reason:     reason,
			Kind:       kind,
		}
	}

	src := obj.Inspector.Inspect(g, conn.Source, conn.SourcePort, true)
	dst := obj.Inspector.Inspect(g, conn.Target, conn.TargetPort, false)
	if src == nil || dst == nil {
		return reject(KindNil, ReasonLookup)
	}
	if src.Kind != dst.Kind {
		return reject(KindNil, ReasonKind)
	}

	d := &Decision{
		Connection: conn,
		Accepted:   true,
		Reason:     ReasonAccepted,
		Kind:       src.Kind,
		Evict:      []*Edge{},
	}

	if src.Kind == KindData {
		switch {
		case src.HasUnresolved() && dst.HasUnresolved():
			return reject(src.Kind, ReasonUnresolved)

		case !src.HasUnresolved() && !dst.HasUnresolved():
			if err := src.Type.Match(dst.Type); err != nil {
				if obj.Debug {
					obj.Logf("connect: %s: %+v", conn, err)
				}
				return reject(src.Kind, ReasonMismatch)
			}

		case src.HasUnresolved():
			bindings, err := obj.resolve(src, dst)
			if err != nil {
				obj.discard(conn, err)
				return reject(src.Kind, ReasonResolution)
			}
			d.Node = conn.Source
			d.Bindings = g.Node(conn.Source).GenericTypes.Merge(bindings)

		default:
			bindings, err := obj.resolve(dst, src)
			if err != nil {
				obj.discard(conn, err)
				return reject(src.Kind, ReasonResolution)
			}
			d.Node = conn.Target
			d.Bindings = g.Node(conn.Target).GenericTypes.Merge(bindings)
		}
	}

	for _, e := range g.Edges() {
		sameTarget := e.Target == conn.Target && e.TargetPort == conn.TargetPort
		sameSource := e.Source == conn.Source && e.SourcePort == conn.SourcePort
		if (dst.Kind == KindData && sameTarget) || (src.Kind == KindControl && sameSource) {
			d.Evict = append(d.Evict, e)
		}
	}

	// The style comes from the source as it was before this wire resolved it.
	d.Edge = &Edge{
		ID:         uuid.New().String(),
		Source:     conn.Source,
		SourcePort: conn.SourcePort,
		Target:     conn.Target,
		TargetPort: conn.TargetPort,
		Animated:   src.Kind == KindControl,
		Color:      EdgeColor(src),
	}
	return d
}

// resolve binds the free parameters of one end from the concrete other end.
func (obj *Validator) resolve(unresolved, concrete *PortInfo) (types.Bindings, error) {
	solver := obj.Solver
	if solver == nil {
		solver = unification.LookupDefault()
	}
	return solver.Resolve(unresolved.Type, concrete.Type, unresolved.Unresolved)
}

// discard drops a resolution error. A failed resolution is only a rejection,
// but the detail is kept in the debug log.
func (obj *Validator) discard(conn Connection, err error) {
	if !obj.Debug {
		return
	}
	obj.Logf("connect: %s: resolution failed: %+v", conn, err)
	obj.Logf("connect: %s", litter.Sdump(err))
}

// Connect validates the connection and applies the decision. It returns the new
// graph, which is the same graph if the connection was rejected.
func (obj *Validator) Connect(g *Graph, conn Connection) (*Graph, *Decision, error) {
	d := obj.Validate(g, conn)
	out, err := Apply(g, d)
	if err != nil {
		return nil, nil, errwrap.Wrapf(err, "could not apply %s", conn)
	}
	return out, d, nil
}

// Apply returns a copy of the graph with an accepted decision applied. The
// input graph is not modified. A rejected decision returns the input graph.
func Apply(g *Graph, d *Decision) (*Graph, error) {
	if d == nil || !d.Accepted {
		return g, nil
	}
	out := g.Copy()
	if d.Node != "" {
		n := out.Node(d.Node)
		if n == nil {
			return nil, fmt.Errorf("%w: %s", ErrNodeNotFound, d.Node)
		}
		n = n.Copy()
		n.GenericTypes = d.Bindings.Copy()
		if err := out.ReplaceNode(n); err != nil {
			return nil, err
		}
	}
	for _, e := range d.Evict {
		out.DeleteEdge(e.ID)
	}
	if d.Edge != nil {
		out.AddEdge(d.Edge)
	}
	return out, nil
}
