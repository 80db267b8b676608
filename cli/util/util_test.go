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

package util

import (
	"bytes"
	"fmt"
	"strings"
	"testing"
)

type testParseArgs struct {
	Input string
}

type testCheckArgs struct {
	Flow string
}

type testArgs struct {
	Debug       bool           `arg:"--debug"`
	ParseCmd    *testParseArgs `arg:"subcommand:parse"`
	CheckCmd    *testCheckArgs `arg:"subcommand:check"`
	UntaggedCmd *testCheckArgs
}

func TestLookupSubcommand0(t *testing.T) {
	check := &testCheckArgs{}
	args := &testArgs{
		CheckCmd: check,
	}
	if name := LookupSubcommand(args, args.CheckCmd); name != "check" {
		t.Errorf("unexpected name: %s", name)
	}
	if name := LookupSubcommand(*args, check); name != "check" {
		t.Errorf("unexpected name without a pointer: %s", name)
	}
	if name := LookupSubcommand(args, &testParseArgs{}); name != "" {
		t.Errorf("unexpected name for an inactive command: %s", name)
	}

	untagged := &testArgs{
		UntaggedCmd: check,
	}
	if name := LookupSubcommand(untagged, check); name != "" {
		t.Errorf("unexpected name for an untagged field: %s", name)
	}
}

func TestSafeProgram0(t *testing.T) {
	if s := SafeProgram("nodeflow check"); s != "nodeflow" {
		t.Errorf("unexpected program: %s", s)
	}
	if s := SafeProgram(""); s != "" {
		t.Errorf("unexpected program: %s", s)
	}
}

func TestHello0(t *testing.T) {
	logged := []string{}
	data := &Data{
		Program: "nodeflow serve",
		Version: "0.0.1",
		Tagline: "typed node graphs",
		Flags: Flags{
			Logf: func(format string, v ...interface{}) {
				logged = append(logged, fmt.Sprintf(format, v...))
			},
		},
	}
	w := &bytes.Buffer{}
	Hello(w, data)
	s := w.String()
	if !strings.HasPrefix(s, "This is: nodeflow, version: 0.0.1\ntyped node graphs\n") {
		t.Errorf("unexpected banner:\n%s", s)
	}
	if len(logged) != 1 || !strings.HasPrefix(logged[0], "main: start: ") {
		t.Errorf("unexpected log: %v", logged)
	}
}
