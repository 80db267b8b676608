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


package util

import (
	"fmt"
	"io"
	"log"
	"os"
	"time"
)

// Hello sets up the std logger for a long running command, and writes a banner
// with the program name, version and tagline to w.
func Hello(w io.Writer, data *Data) {
	start := time.Now()

	logFlags := log.LstdFlags
	if data.Flags.Debug {
		logFlags = logFlags + log.Lshortfile
	}
	logFlags = logFlags - log.Ldate // remove the date for now
	log.SetFlags(logFlags)
	log.SetOutput(os.Stderr)

	program := SafeProgram(data.Program)
	if program == "" {
		program = "<unknown>"
	}
	fmt.Fprintf(w, "This is: %s, version: %s\n", program, data.Version)
	if data.Tagline != "" {
		fmt.Fprintf(w, "%s\n", data.Tagline)
	}
	fmt.Fprintf(w, "Copyright (C) 2013-2024+ James Shubin and the project contributors\n")
	if data.Flags.Logf != nil {
		data.Flags.Logf("main: start: %s", start.Format(time.RFC3339))
	}
}
