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


// Package recwatch provides file watching events via fsnotify. Each file is
// watched through its parent directory, so that it keeps being followed when
// an editor replaces it instead of writing in place.
package recwatch

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"syscall"

	"github.com/purpleidea/nodeflow/util/errwrap"

	"github.com/fsnotify/fsnotify"
)

// Event represents a watcher event. These can include errors.
type Event struct {
	Error error
	Body  *fsnotify.Event
}

// FileWatcher watches a set of files. Run Init() on it.
type FileWatcher struct {
	// Paths are the files that we're watching. They don't need to exist
	// yet, but their directories do.
	Paths []string

	// Opts are the list of options that we are using this with.
	Opts []Option

	options *recwatchOptions // computed options
	names   map[string]struct{}
	watcher *fsnotify.Watcher
	events  chan Event // one channel for events and err...
	wg      sync.WaitGroup
	exit    chan struct{}
}

// NewFileWatcher creates and initializes a new file watcher.
func NewFileWatcher(paths []string, opts ...Option) (*FileWatcher, error) {
	obj := &FileWatcher{
		Paths: paths,
		Opts:  opts,
	}
	return obj, obj.Init()
}

// Init starts the file watcher.
func (obj *FileWatcher) Init() error {
	if len(obj.Paths) == 0 {
		return fmt.Errorf("recwatch: no paths to watch")
	}
	obj.names = make(map[string]struct{})
	obj.events = make(chan Event)
	obj.exit = make(chan struct{})
	obj.options = &recwatchOptions{ // default recwatch options
		debug: false,
		logf: func(format string, v ...interface{}) {
			// noop
		},
	}
	for _, optionFunc := range obj.Opts { // apply the recwatch options
		optionFunc(obj.options)
	}
	if obj.options.logf == nil {
		return fmt.Errorf("recwatch: logf must not be nil")
	}

	dirs := make(map[string]struct{})
	for _, p := range obj.Paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return errwrap.Wrapf(err, "recwatch: bad path %s", p)
		}
		obj.names[abs] = struct{}{}
		dirs[filepath.Dir(abs)] = struct{}{}
	}

	var err error
	obj.watcher, err = fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	for _, dir := range sortedKeys(dirs) {
		if obj.options.debug {
			obj.options.logf("watching: %s", dir)
		}
		if err := obj.watcher.Add(dir); err != nil {
			obj.watcher.Close()
			if err == syscall.ENOSPC {
				// no space left on device, out of inotify watches
				return fmt.Errorf("out of inotify watches: %v", err)
			} else if os.IsPermission(err) {
				return fmt.Errorf("permission denied adding a watch: %v", err)
			}
			return errwrap.Wrapf(err, "recwatch: could not watch %s", dir)
		}
	}

	obj.wg.Add(1)
	go func() {
		defer obj.wg.Done()
		obj.run()
	}()
	return nil
}

// run forwards the interesting events until we exit.
func (obj *FileWatcher) run() {
	for {
		var out Event
		select {
		case event, ok := <-obj.watcher.Events:
			if !ok {
				return
			}
			if obj.options.debug {
				obj.options.logf("event(%s): %v", event.Name, event.Op)
			}
			if _, exists := obj.names[filepath.Clean(event.Name)]; !exists {
				continue // a neighbour
			}
			// a replaced file shows up as a create or a rename
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			e := event // copy
			out = Event{Body: &e}

		case err, ok := <-obj.watcher.Errors:
			if !ok {
				return
			}
			out = Event{Error: err}

		case <-obj.exit:
			return
		}

		select {
		case obj.events <- out:
		case <-obj.exit:
			return
		}
	}
}

// Close shuts down the watcher.
func (obj *FileWatcher) Close() error {
	close(obj.exit) // send exit signal
	obj.wg.Wait()
	err := obj.watcher.Close()
	close(obj.events)
	return err
}

// Events returns a channel of events. These include events for errors.
func (obj *FileWatcher) Events() <-chan Event { return obj.events }

// Option is a type that can be used to configure the watcher.
type Option func(*recwatchOptions)

// recwatchOptions represents the different options we can build the watcher
// with.
type recwatchOptions struct {
	debug bool
	logf  func(format string, v ...interface{})
}

// Debug specifies whether we should run in debug mode or not.
func Debug(debug bool) Option {
	return func(rwo *recwatchOptions) {
		rwo.debug = debug
	}
}

// Logf passes a logger function that we can use if so desired.
func Logf(logf func(format string, v ...interface{})) Option {
	return func(rwo *recwatchOptions) {
		rwo.logf = logf
	}
}

func sortedKeys(m map[string]struct{}) []string {
	keys := []string{}
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
