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

package recwatch

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func next(t *testing.T, obj *FileWatcher) Event {
	select {
	case event, ok := <-obj.Events():
		if !ok {
			t.Fatalf("events closed")
		}
		return event
	case <-time.After(10 * time.Second):
		t.Fatalf("timeout waiting for an event")
	}
	return Event{} // unreachable
}

func TestFileWatcher0(t *testing.T) {
	dir := t.TempDir()
	flow := filepath.Join(dir, "flow.json")
	other := filepath.Join(dir, "other.json")
	if err := os.WriteFile(flow, []byte("{}"), 0600); err != nil {
		t.Fatalf("write failed: %+v", err)
	}

	obj, err := NewFileWatcher([]string{flow}, Debug(testing.Verbose()), Logf(t.Logf))
	if err != nil {
		t.Fatalf("init failed: %+v", err)
	}
	defer obj.Close()

	// a neighbour never shows up, so the first event is ours
	if err := os.WriteFile(other, []byte("{}"), 0600); err != nil {
		t.Fatalf("write failed: %+v", err)
	}
	if err := os.WriteFile(flow, []byte(`{"nodes":[]}`), 0600); err != nil {
		t.Fatalf("write failed: %+v", err)
	}
	event := next(t, obj)
	if event.Error != nil {
		t.Fatalf("watch error: %+v", event.Error)
	}
	if event.Body.Name != flow {
		t.Errorf("unexpected event for: %s", event.Body.Name)
	}
}

func TestFileWatcherReplace0(t *testing.T) {
	dir := t.TempDir()
	flow := filepath.Join(dir, "flow.json")
	obj, err := NewFileWatcher([]string{flow}, Logf(t.Logf))
	if err != nil {
		t.Fatalf("init failed: %+v", err)
	}
	defer obj.Close()

	// the file need not exist when the watch starts
	tmp := filepath.Join(dir, ".flow.json.tmp")
	if err := os.WriteFile(tmp, []byte("{}"), 0600); err != nil {
		t.Fatalf("write failed: %+v", err)
	}
	if err := os.Rename(tmp, flow); err != nil {
		t.Fatalf("rename failed: %+v", err)
	}
	if event := next(t, obj); event.Error != nil || event.Body.Name != flow {
		t.Errorf("unexpected event: %+v", event)
	}
}

func TestFileWatcherError0(t *testing.T) {
	if _, err := NewFileWatcher(nil); err == nil {
		t.Errorf("expected an error without paths")
	}
	missing := filepath.Join(t.TempDir(), "nope", "flow.json")
	if _, err := NewFileWatcher([]string{missing}); err == nil {
		t.Errorf("expected an error on a missing directory")
	}
	if _, err := NewFileWatcher([]string{"flow.json"}, Logf(nil)); err == nil {
		t.Errorf("expected an error on a nil logf")
	}
}
