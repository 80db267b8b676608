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
	"os/exec"
	"strconv"

	"github.com/spf13/afero"
)

// Graphviz outputs the graph in graphviz format. Route edges are drawn bold,
// and data edges are labelled with their ports and drawn in their color.
// https://en.wikipedia.org/wiki/DOT_%28graph_description_language%29
func (g *Graph) Graphviz() (out string) {
	out += fmt.Sprintf("digraph %s {\n", strconv.Quote(g.Name))
	out += fmt.Sprintf("\tlabel=%s;\n", strconv.Quote(g.Name))
	out += "\tnode [shape=box];\n"
	for _, n := range g.nodes {
		out += fmt.Sprintf("\t%s [label=%s];\n", strconv.Quote(n.ID), strconv.Quote(n.String()))
	}
	for _, e := range g.edges {
		label := strconv.Quote(fmt.Sprintf("%s -> %s", e.SourcePort, e.TargetPort))
		attrs := fmt.Sprintf("label=%s", label)
		if e.IsRoute() {
			attrs += ",style=bold"
		} else if e.Color != "" {
			attrs += fmt.Sprintf(",color=%s", strconv.Quote(cssToGraphviz(e.Color)))
		}
		out += fmt.Sprintf("\t%s -> %s [%s];\n", strconv.Quote(e.Source), strconv.Quote(e.Target), attrs)
	}
	out += "}\n"
	return
}

// WriteGraphviz writes the graphviz data to a file.
func (g *Graph) WriteGraphviz(fs afero.Fs, filename string) error {
	if filename == "" {
		return fmt.Errorf("no filename given")
	}
	if err := afero.WriteFile(fs, filename, []byte(g.Graphviz()), 0644); err != nil {
		return fmt.Errorf("error writing to filename: %v", err)
	}
	return nil
}

// ExecGraphviz writes out the graphviz data and runs the correct graphviz
// filter command to render a png next to it.
func (g *Graph) ExecGraphviz(program, filename string) error {
	switch program {
	case "dot", "neato", "twopi", "circo", "fdp":
	default:
		return fmt.Errorf("invalid graphviz program selected")
	}

	if err := g.WriteGraphviz(afero.NewOsFs(), filename); err != nil {
		return err
	}

	path, err := exec.LookPath(program)
	if err != nil {
		return fmt.Errorf("the Graphviz program is missing")
	}

	out := fmt.Sprintf("%s.png", filename)
	cmd := exec.Command(path, "-Tpng", fmt.Sprintf("-o%s", out), filename)
	if _, err := cmd.Output(); err != nil {
		return fmt.Errorf("error writing to image")
	}
	return nil
}

// cssToGraphviz turns `rgb(r, g, b)` into the `#rrggbb` form graphviz wants.
func cssToGraphviz(css string) string {
	var r, g, b uint8
	if _, err := fmt.Sscanf(css, "rgb(%d, %d, %d)", &r, &g, &b); err != nil {
		return "black"
	}
	return fmt.Sprintf("#%02x%02x%02x", r, g, b)
}
