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

//go:build !root

package graph

import (
	"fmt"
	"testing"

	"github.com/purpleidea/nodeflow/meta"
	"github.com/purpleidea/nodeflow/types"

	"github.com/kylelemons/godebug/pretty"
)

func port(name, typ string) *meta.Port {
	return &meta.Port{Name: name, Type: typ}
}

func testMetas() meta.Registry {
	return meta.Registry{
		"start": {
			Title:   "Start",
			Inputs:  []*meta.Port{},
			Outputs: []*meta.Port{port("next", meta.RouteType)},
		},
		"print": {
			Title:   "Print",
			Inputs:  []*meta.Port{port("value", "*")},
			Outputs: []*meta.Port{port("next", meta.RouteType)},
		},
		"const_str": {
			Inputs:  []*meta.Port{},
			Outputs: []*meta.Port{port("out", "str")},
		},
		"const_list": {
			Inputs:  []*meta.Port{},
			Outputs: []*meta.Port{port("out", "list<int>")},
		},
		"const_pair": {
			Inputs:  []*meta.Port{},
			Outputs: []*meta.Port{port("out", "pair<str, bool>")},
		},
		"sink_int": {
			Inputs:  []*meta.Port{port("in", "int")},
			Outputs: []*meta.Port{},
		},
		"sink_list": {
			Inputs:  []*meta.Port{port("in", "list<int>")},
			Outputs: []*meta.Port{},
		},
		"first": {
			Inputs:       []*meta.Port{port("in", "list<T>")},
			Outputs:      []*meta.Port{port("out", "T")},
			GenericTypes: []string{"T"},
		},
		"make_list": {
			Inputs:       []*meta.Port{port("item", "T")},
			Outputs:      []*meta.Port{port("out", "list<T>")},
			GenericTypes: []string{"T"},
		},
		"pair_of": {
			Inputs:       []*meta.Port{port("k", "K"), port("kv", "pair<K, V>")},
			Outputs:      []*meta.Port{port("v", "V")},
			GenericTypes: []string{"K", "V"},
		},
		"wrap": {
			Inputs:       []*meta.Port{port("in", "C<T>")},
			Outputs:      []*meta.Port{port("out", "C<T>")},
			GenericTypes: []string{"C", "T"},
		},
	}
}

// testGraph builds a graph with one node of each id:kind pair.
func testGraph(t *testing.T, pairs ...string) *Graph {
	g := NewGraph("test")
	for i := 0; i+1 < len(pairs); i += 2 {
		n := &Node{
			ID:            pairs[i],
			Kind:          pairs[i+1],
			ExecutionType: meta.ExecutionTriggered,
			Inputs:        map[string]interface{}{},
			GenericTypes:  types.Bindings{},
		}
		if err := g.AddNode(n); err != nil {
			t.Fatalf("could not add node: %+v", err)
		}
	}
	return g
}

func TestInspect0(t *testing.T) {
	g := testGraph(t, "s", "start", "l", "make_list", "p", "pair_of", "c", "const_list")
	n := g.Node("p").Copy()
	n.GenericTypes["K"] = types.MustParse("str")
	if err := g.ReplaceNode(n); err != nil {
		t.Fatalf("could not replace node: %+v", err)
	}

	type test struct { // an individual test
		name   string
		node   string
		port   string
		output bool
		exp    *PortInfo
	}
	testCases := []test{
		{"missing node", "nope", "out", true, nil},
		{"missing port", "l", "nope", true, nil},
		{"wrong side", "l", "out", false, nil},
		{"trigger input", "l", TriggerPort, false, &PortInfo{Kind: KindControl, Unresolved: []string{}}},
		{"trigger output", "s", TriggerPort, true, &PortInfo{Kind: KindControl, Unresolved: []string{}}},
		{"route port", "s", "next", true, &PortInfo{Kind: KindControl, Unresolved: []string{}}},
		{"concrete", "c", "out", true, &PortInfo{Kind: KindData, Type: types.MustParse("list<int>"), Unresolved: []string{}}},
		{"unresolved", "l", "out", true, &PortInfo{Kind: KindData, Type: types.MustParse("list<T>"), Unresolved: []string{"T"}}},
		{"partly bound", "p", "kv", false, &PortInfo{Kind: KindData, Type: types.MustParse("pair<str, V>"), Unresolved: []string{"V"}}},
		// the set of free parameters is per node, not per port
		{"bound port on a free node", "p", "k", false, &PortInfo{Kind: KindData, Type: types.MustParse("str"), Unresolved: []string{"V"}}},
	}

	inspector := &Inspector{Metas: testMetas()}
	for index, tc := range testCases { // run all the tests
		name, node, port, output, exp := tc.name, tc.node, tc.port, tc.output, tc.exp
		t.Run(fmt.Sprintf("test #%d (%s)", index, name), func(t *testing.T) {
			info := inspector.Inspect(g, node, port, output)
			if exp == nil {
				if info != nil {
					t.Errorf("test #%d: expected nil, got: %+v", index, info)
				}
				return
			}
			if info == nil {
				t.Errorf("test #%d: unexpected nil", index)
				return
			}
			if info.Kind != exp.Kind {
				t.Errorf("test #%d: kind: %s != %s", index, info.Kind, exp.Kind)
			}
			if exp.Type == nil && info.Type != nil {
				t.Errorf("test #%d: expected no type, got: %s", index, info.Type)
			}
			if exp.Type != nil {
				if err := exp.Type.Cmp(info.Type); err != nil {
					t.Errorf("test #%d: type: %+v", index, err)
				}
			}
			if diff := pretty.Compare(exp.Unresolved, info.Unresolved); diff != "" {
				t.Errorf("test #%d: unresolved diff: (-exp +got)\n%s", index, diff)
			}
		})
	}
}

func TestInspectUnknownKind0(t *testing.T) {
	g := testGraph(t, "x", "no_such_type")
	inspector := &Inspector{Metas: testMetas()}
	if info := inspector.Inspect(g, "x", TriggerPort, false); info != nil {
		t.Errorf("expected nil for a node of an unknown type, got: %+v", info)
	}
}

func TestInspectPanic0(t *testing.T) {
	metas := meta.Registry{
		"broken": {Outputs: []*meta.Port{port("out", "list<")}},
	}
	g := testGraph(t, "b", "broken")
	defer func() {
		if r := recover(); r == nil {
			t.Errorf("expected a panic on invalid registry data")
		}
	}()
	(&Inspector{Metas: metas}).Inspect(g, "b", "out", true)
}
