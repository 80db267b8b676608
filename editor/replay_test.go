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

package editor

import (
	"testing"

	"github.com/purpleidea/nodeflow/flowformat"
	"github.com/purpleidea/nodeflow/graph"

	"github.com/davecgh/go-spew/spew"
)

const replayFlow = `{"nodes":[` +
	`{"id":"start","node_type":"start","execution_type":"TRIGGERED","inputs":{}},` +
	`{"id":"1","node_type":"const_list","execution_type":"DATA","inputs":{"count":2}},` +
	`{"id":"2","node_type":"first","execution_type":"DATA_ONCE","inputs":{},"generic_types":{"T":{"mainType":"str","genericTypes":[]}}},` +
	`{"id":"3","node_type":"sink_int","execution_type":"TRIGGERED","inputs":{}}],` +
	`"edges":[` +
	`{"source_id":"1","source_pin":"out","target_id":"2","target_pin":"in"},` +
	`{"source_id":"2","source_pin":"out","target_id":"3","target_pin":"in"}],` +
	`"route_edges":[{"source_id":"start","source_pin":"next","target_id":"3"}]}`

func TestReplay0(t *testing.T) {
	flow, err := flowformat.Decode([]byte(replayFlow))
	if err != nil {
		t.Fatalf("decode failed: %+v", err)
	}

	// the stored binding of T is wrong for both wires
	obj := testEditor(t)
	report, err := obj.Replay(flow, false)
	if err != nil {
		t.Fatalf("replay failed: %+v", err)
	}
	if report.OK() || report.Accepted != 1 || report.Rejected != 2 {
		t.Errorf("unexpected report: %s", spew.Sdump(report))
	}
	for _, r := range report.Results {
		if !r.Route && r.Reason != graph.ReasonMismatch {
			t.Errorf("unexpected result: %s", spew.Sdump(r))
		}
	}

	// with the bindings reset, the first wire resolves T and the rest fit
	obj = testEditor(t)
	report, err = obj.Replay(flow, true)
	if err != nil {
		t.Fatalf("replay failed: %+v", err)
	}
	if !report.OK() || report.Accepted != 3 {
		t.Errorf("unexpected report: %s", spew.Sdump(report))
	}
	if r := report.Results[0]; r.Bound != "2" || r.Bindings.String() != "{T: int}" {
		t.Errorf("unexpected first result: %s", spew.Sdump(r))
	}
	if !report.Results[2].Route {
		t.Errorf("route edges are not replayed last")
	}
	if obj.CanUndo() != true || obj.Graph().NumEdges() != 3 {
		t.Errorf("unexpected graph after replay")
	}
}

func TestReplayUnknownKind0(t *testing.T) {
	flow, err := flowformat.Decode([]byte(`{"nodes":[{"id":"1","node_type":"nope"}]}`))
	if err != nil {
		t.Fatalf("decode failed: %+v", err)
	}
	if _, err := testEditor(t).Replay(flow, false); err == nil {
		t.Errorf("expected an error on an unknown node type")
	}
}

func TestReplayEmptyEdge0(t *testing.T) {
	nodes := []*flowformat.Node{
		{ID: "start", NodeType: "start", ExecutionType: "TRIGGERED"},
	}
	testCases := []*flowformat.Flow{
		{Nodes: nodes, Edges: []*flowformat.DataEdge{nil}, RouteEdges: []*flowformat.RouteEdge{}},
		{Nodes: nodes, Edges: []*flowformat.DataEdge{}, RouteEdges: []*flowformat.RouteEdge{nil}},
	}
	for index, flow := range testCases {
		if _, err := testEditor(t).Replay(flow, false); err == nil {
			t.Errorf("test #%d: expected an error on an empty edge", index)
		}
	}

	// decoded flows never get that far
	if _, err := flowformat.Decode([]byte(`{"nodes":[{"id":"start","node_type":"start"}],"edges":[null]}`)); err == nil {
		t.Errorf("expected a decode error on an empty edge")
	}
}
