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

package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/purpleidea/nodeflow/editor"
	"github.com/purpleidea/nodeflow/flowformat"
	"github.com/purpleidea/nodeflow/meta"
	"github.com/purpleidea/nodeflow/prometheus"

	"github.com/kylelemons/godebug/pretty"
)

const testMetas = `
start:
  title: Start
  category: control
  no_trigger: true
  inputs: []
  outputs:
    - name: next
      type: route
const_list:
  title: List
  category: data
  execution: DATA
  inputs:
    - name: count
      type: int
  outputs:
    - name: out
      type: list<int>
first:
  title: First
  category: list
  execution: DATA_ONCE
  generic_types: [T]
  inputs:
    - name: in
      type: list<T>
  outputs:
    - name: out
      type: T
sink_int:
  title: Sink
  category: io
  inputs:
    - name: in
      type: int
  outputs: []
`

const testFlow = `{"nodes":[` +
	`{"id":"start","node_type":"start","execution_type":"TRIGGERED","inputs":{}},` +
	`{"id":"1","node_type":"const_list","execution_type":"DATA","inputs":{"count":2}},` +
	`{"id":"2","node_type":"first","execution_type":"DATA_ONCE","inputs":{}},` +
	`{"id":"3","node_type":"sink_int","execution_type":"TRIGGERED","inputs":{}}],` +
	`"edges":[` +
	`{"source_id":"1","source_pin":"out","target_id":"2","target_pin":"in"},` +
	`{"source_id":"2","source_pin":"out","target_id":"3","target_pin":"in"}],` +
	`"route_edges":[{"source_id":"start","source_pin":"next","target_id":"3"}]}`

type response struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func testServer(t *testing.T, prom *prometheus.Prometheus) *Server {
	metas, err := meta.ParseYAML([]byte(testMetas))
	if err != nil {
		t.Fatalf("could not parse metas: %+v", err)
	}
	obj := &Server{
		Metas:      metas,
		StartKind:  "start",
		Prometheus: prom,
		Debug:      testing.Verbose(),
		Logf: func(format string, v ...interface{}) {
			t.Logf("server: "+format, v...)
		},
	}
	if err := obj.Init(); err != nil {
		t.Fatalf("init failed: %+v", err)
	}
	return obj
}

func do(t *testing.T, router http.Handler, method, path, body string) (int, *response, string) {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if !strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		return w.Code, nil, w.Body.String()
	}
	resp := &response{}
	if err := json.Unmarshal(w.Body.Bytes(), resp); err != nil {
		t.Fatalf("could not decode response: %+v", err)
	}
	return w.Code, resp, w.Body.String()
}

func TestInit0(t *testing.T) {
	if err := (&Server{}).Init(); err == nil {
		t.Errorf("expected an error without metadata")
	}
	obj := testServer(t, nil)
	if obj.Listen != DefaultListen {
		t.Errorf("unexpected listen address: %s", obj.Listen)
	}
}

func TestPing0(t *testing.T) {
	code, _, body := do(t, testServer(t, nil).Router(), http.MethodGet, "/ping", "")
	if code != http.StatusOK || body != "pong" {
		t.Errorf("unexpected ping: %d %s", code, body)
	}
}

func TestNodeMetas0(t *testing.T) {
	obj := testServer(t, nil)
	code, resp, body := do(t, obj.Router(), http.MethodGet, "/node-metas", "")
	if code != http.StatusOK || resp.Status != "success" {
		t.Fatalf("unexpected response: %d %s", code, body)
	}
	// the response is one which the metadata loader accepts
	registry, err := meta.ParseJSON([]byte(body))
	if err != nil {
		t.Fatalf("could not parse served metas: %+v", err)
	}
	if diff := pretty.Compare(obj.Metas.Names(), registry.Names()); diff != "" {
		t.Errorf("names diff: (-exp +got)\n%s", diff)
	}
}

func TestExecutionTypes0(t *testing.T) {
	code, resp, body := do(t, testServer(t, nil).Router(), http.MethodGet, "/execution-types", "")
	if code != http.StatusOK || resp.Status != "success" {
		t.Fatalf("unexpected response: %d %s", code, body)
	}
	choices := []struct {
		Name meta.ExecutionType `json:"name"`
		Tip  string             `json:"tip"`
	}{}
	if err := json.Unmarshal(resp.Data, &choices); err != nil {
		t.Fatalf("could not decode data: %+v", err)
	}
	if len(choices) != 3 {
		t.Fatalf("unexpected choices: %s", body)
	}
	for index, x := range meta.ExecutionTypes() {
		if choices[index].Name != x || choices[index].Tip != x.Tip() {
			t.Errorf("test #%d: unexpected choice: %+v", index, choices[index])
		}
	}
}

func TestCheck0(t *testing.T) {
	prom := &prometheus.Prometheus{}
	if err := prom.Init(); err != nil {
		t.Fatalf("prometheus init failed: %+v", err)
	}
	router := testServer(t, prom).Router()

	code, resp, body := do(t, router, http.MethodPost, "/check?reset=true", testFlow)
	if code != http.StatusOK || resp.Status != "success" {
		t.Fatalf("unexpected response: %d %s", code, body)
	}
	data := &struct {
		Report *editor.Report   `json:"report"`
		Flow   *flowformat.Flow `json:"flow"`
	}{}
	if err := json.Unmarshal(resp.Data, data); err != nil {
		t.Fatalf("could not decode data: %+v", err)
	}
	if !data.Report.OK() || data.Report.Accepted != 3 {
		t.Errorf("unexpected report: %s", body)
	}
	if len(data.Flow.Edges) != 2 || len(data.Flow.RouteEdges) != 1 {
		t.Errorf("unexpected flow: %s", body)
	}
	for _, n := range data.Flow.Nodes {
		if n.ID != "2" {
			continue
		}
		if s := n.GenericTypes.String(); s != "{T: int}" {
			t.Errorf("unexpected bindings: %s", s)
		}
	}

	totals, err := prom.Totals()
	if err != nil {
		t.Fatalf("could not gather: %+v", err)
	}
	if v := totals[`nodeflow_connect_total{accepted="true",kind="data",reason="accepted"}`]; v != 2 {
		t.Errorf("unexpected data total: %v", v)
	}

	code, _, body = do(t, router, http.MethodGet, "/metrics", "")
	if code != http.StatusOK || !strings.Contains(body, "nodeflow_connect_total") {
		t.Errorf("unexpected metrics: %d %s", code, body)
	}
}

func TestCheckError0(t *testing.T) {
	router := testServer(t, nil).Router()
	testCases := []struct {
		path string
		body string
	}{
		{"/check", "not json"},
		{"/check?reset=maybe", testFlow},
		{"/check", `{"nodes":[{"id":"1","node_type":"nope"}]}`},
		{"/execute-request", "not json"},
		{"/execute-request", `{"nodes":[{"id":"1","node_type":"nope"}]}`},
	}
	for index, tc := range testCases {
		code, resp, body := do(t, router, http.MethodPost, tc.path, tc.body)
		if code != http.StatusBadRequest || resp == nil || resp.Status != "error" || resp.Message == "" {
			t.Errorf("test #%d: unexpected response: %d %s", index, code, body)
		}
	}

	// without prometheus there is no metrics endpoint
	if code, _, _ := do(t, router, http.MethodGet, "/metrics", ""); code != http.StatusNotFound {
		t.Errorf("unexpected metrics status: %d", code)
	}
}

func TestExecuteRequest0(t *testing.T) {
	code, resp, body := do(t, testServer(t, nil).Router(), http.MethodPost, "/execute-request", testFlow)
	if code != http.StatusOK || resp.Status != "success" {
		t.Fatalf("unexpected response: %d %s", code, body)
	}
	req := &flowformat.ExecuteRequest{}
	if err := json.Unmarshal(resp.Data, req); err != nil {
		t.Fatalf("could not decode data: %+v", err)
	}
	if len(req.Nodes) != 4 || len(req.Edges) != 2 || len(req.RouteEdges) != 1 {
		t.Errorf("unexpected request: %s", body)
	}
}
