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

// Package history stores graph snapshots for undo and redo.
package history

import (
	"github.com/purpleidea/nodeflow/graph"
)

// DefaultMax is the default number of snapshots which are kept.
const DefaultMax = 1000

// History is a linear list of graph snapshots with a cursor. Saving while the
// cursor is not at the end discards the snapshots after it. The graphs are
// stored as given, so they must not be modified after they're saved.
type History struct {
	// Max is the number of snapshots kept. If zero, DefaultMax is used.
	Max int

	entries []*graph.Graph
	index   int

	// accumulating is true if the last save was an accumulating one.
	accumulating bool
}

// New builds a history whose first snapshot is the given graph.
func New(g *graph.Graph) *History {
	obj := &History{}
	obj.Clear(g)
	return obj
}

// Save adds a snapshot after the cursor. If accumulate is true and the previous
// save was also accumulating, the snapshot at the cursor is replaced instead.
// This merges a run of small changes, like the steps of a drag, into one entry.
func (obj *History) Save(g *graph.Graph, accumulate bool) {
	merge := accumulate && obj.accumulating
	obj.accumulating = accumulate

	end := obj.index + 1
	if merge {
		end = obj.index
	}
	if end > len(obj.entries) {
		end = len(obj.entries)
	}
	obj.entries = append(obj.entries[:end:end], g)

	limit := obj.Max
	if limit <= 0 {
		limit = DefaultMax
	}
	if len(obj.entries) > limit {
		obj.entries = obj.entries[len(obj.entries)-limit:]
	}
	obj.index = len(obj.entries) - 1
}

// Clear drops every snapshot and starts again from the given graph.
func (obj *History) Clear(g *graph.Graph) {
	obj.entries = []*graph.Graph{}
	obj.index = 0
	obj.Save(g, false)
	obj.accumulating = false
}

// Undo moves the cursor back and returns the snapshot there. It returns false
// if there was nothing to undo.
func (obj *History) Undo() (*graph.Graph, bool) {
	if !obj.CanUndo() {
		return nil, false
	}
	obj.index--
	obj.accumulating = false
	return obj.entries[obj.index], true
}

// Redo moves the cursor forward and returns the snapshot there. It returns false
// if there was nothing to redo.
func (obj *History) Redo() (*graph.Graph, bool) {
	if !obj.CanRedo() {
		return nil, false
	}
	obj.index++
	obj.accumulating = false
	return obj.entries[obj.index], true
}

// CanUndo returns true if there is an older snapshot.
func (obj *History) CanUndo() bool {
	return obj.index > 0
}

// CanRedo returns true if there is a newer snapshot.
func (obj *History) CanRedo() bool {
	return obj.index < len(obj.entries)-1
}

// Current returns the snapshot at the cursor, or nil if there are none.
func (obj *History) Current() *graph.Graph {
	if len(obj.entries) == 0 {
		return nil
	}
	return obj.entries[obj.index]
}

// Len returns the number of stored snapshots.
func (obj *History) Len() int {
	return len(obj.entries)
}
