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

// Package meta contains the node type declarations which the editor is built
// from. They describe the ports of each node type and the generic parameters
// the port types may reference.
package meta

import (
	"fmt"
	"sort"

	"github.com/purpleidea/nodeflow/types"
	"github.com/purpleidea/nodeflow/util"
	"github.com/purpleidea/nodeflow/util/errwrap"
)

// RouteType is the raw port type of a control flow output.
const RouteType = "route"

// ExecutionType is the execution mode of a node.
type ExecutionType string

const (
	// ExecutionTriggered nodes run when a control edge triggers them.
	ExecutionTriggered ExecutionType = "TRIGGERED"

	// ExecutionData nodes run whenever their output is needed.
	ExecutionData ExecutionType = "DATA"

	// ExecutionDataOnce nodes run the first time their output is needed,
	// and the result is cached.
	ExecutionDataOnce ExecutionType = "DATA_ONCE"
)

// ExecutionTypes returns every known execution type, in the order a user picks
// from.
func ExecutionTypes() []ExecutionType {
	return []ExecutionType{ExecutionTriggered, ExecutionData, ExecutionDataOnce}
}

// Validate returns an error if this is not a known execution type.
func (obj ExecutionType) Validate() error {
	switch obj {
	case ExecutionTriggered, ExecutionData, ExecutionDataOnce:
		return nil
	}
	return fmt.Errorf("unknown execution type: %s", obj)
}

// Tip returns a short human description of when a node of this type runs.
func (obj ExecutionType) Tip() string {
	switch obj {
	case ExecutionTriggered:
		return "when triggered"
	case ExecutionData:
		return "when output is needed"
	case ExecutionDataOnce:
		return "when output is needed, and cache result"
	}
	return ""
}

// Options are the optional widget settings of a port.
type Options struct {
	Default   interface{} `json:"default,omitempty" yaml:"default,omitempty"`
	Multiline bool        `json:"multiline,omitempty" yaml:"multiline,omitempty"`
	Choices   []string    `json:"choices,omitempty" yaml:"choices,omitempty"`
}

// Port is a single declared input or output of a node type. Type is the raw
// type expression, which may reference the declared generic parameters, or be
// the RouteType marker.
type Port struct {
	Name    string   `json:"name" yaml:"name"`
	Type    string   `json:"type" yaml:"type"`
	Widget  string   `json:"widget,omitempty" yaml:"widget,omitempty"`
	Options *Options `json:"options,omitempty" yaml:"options,omitempty"`
}

// IsRoute returns true if this port carries control flow instead of data.
func (obj *Port) IsRoute() bool {
	return obj.Type == RouteType
}

// DisplayWidget is an output-only display area on a node.
type DisplayWidget struct {
	Name string `json:"name" yaml:"name"`
	Type string `json:"type" yaml:"type"`
}

// NodeMeta is the declaration of a node type.
type NodeMeta struct {
	Title     string           `json:"title" yaml:"title"`
	Category  string           `json:"category" yaml:"category"`
	Execution ExecutionType    `json:"execution,omitempty" yaml:"execution,omitempty"`
	NoTrigger bool             `json:"no_trigger,omitempty" yaml:"no_trigger,omitempty"`
	Inputs    []*Port          `json:"inputs" yaml:"inputs"`
	Outputs   []*Port          `json:"outputs" yaml:"outputs"`
	Display   []*DisplayWidget `json:"display,omitempty" yaml:"display,omitempty"`

	// GenericTypes are the names of the generic parameters which this node
	// type declares.
	GenericTypes []string `json:"generic_types" yaml:"generic_types"`
}

// Input returns the named input port, or nil if there isn't one.
func (obj *NodeMeta) Input(name string) *Port {
	for _, port := range obj.Inputs {
		if port.Name == name {
			return port
		}
	}
	return nil
}

// Output returns the named output port, or nil if there isn't one.
func (obj *NodeMeta) Output(name string) *Port {
	for _, port := range obj.Outputs {
		if port.Name == name {
			return port
		}
	}
	return nil
}

// DefaultExecution returns the execution type a new node of this type gets.
func (obj *NodeMeta) DefaultExecution() ExecutionType {
	if obj.Execution == "" {
		return ExecutionTriggered
	}
	return obj.Execution
}

// DefaultInputs returns the initial input values for a new node of this type.
// A port's default option wins, otherwise the basic types get a zero value and
// everything else is left unset.
func (obj *NodeMeta) DefaultInputs() map[string]interface{} {
	inputs := make(map[string]interface{})
	for _, port := range obj.Inputs {
		if port.Options != nil && port.Options.Default != nil {
			inputs[port.Name] = port.Options.Default
			continue
		}
		switch port.Type {
		case "int":
			inputs[port.Name] = 0
		case "float":
			inputs[port.Name] = 0.0
		case "str":
			inputs[port.Name] = ""
		case "bool":
			inputs[port.Name] = false
		}
	}
	return inputs
}

// Validate checks that the declaration is usable. Every port type must parse,
// port names must be unique per side, and the generic parameter names must be
// plain identifiers. All the problems are returned together.
func (obj *NodeMeta) Validate() error {
	var reterr error
	if err := obj.DefaultExecution().Validate(); err != nil {
		reterr = errwrap.Append(reterr, err)
	}

	for _, param := range obj.GenericTypes {
		typ, err := types.Parse(param)
		if err != nil {
			reterr = errwrap.Append(reterr, errwrap.Wrapf(err, "generic type %s", param))
			continue
		}
		if len(typ.Args) > 0 || typ.IsWildcard() || typ.Main != param {
			reterr = errwrap.Append(reterr, fmt.Errorf("generic type `%s` is not a plain name", param))
		}
	}
	for _, dup := range util.StrListDuplicates(obj.GenericTypes) {
		reterr = errwrap.Append(reterr, fmt.Errorf("generic type %s is declared twice", dup))
	}

	sides := []struct {
		name  string
		ports []*Port
	}{
		{"input", obj.Inputs},
		{"output", obj.Outputs},
	}
	for _, side := range sides {
		names := []string{}
		for i, port := range side.ports {
			if port == nil || port.Name == "" {
				reterr = errwrap.Append(reterr, fmt.Errorf("%s #%d has no name", side.name, i))
				continue
			}
			names = append(names, port.Name)
			if port.IsRoute() {
				continue
			}
			if _, err := types.Parse(port.Type); err != nil {
				reterr = errwrap.Append(reterr, errwrap.Wrapf(err, "%s %s", side.name, port.Name))
			}
		}
		for _, dup := range util.StrListDuplicates(names) {
			reterr = errwrap.Append(reterr, fmt.Errorf("%s %s is declared twice", side.name, dup))
		}
	}
	return reterr
}

// Registry is the lookup table of node type declarations, by type name. It is
// not modified after it has been loaded.
type Registry map[string]*NodeMeta

// Names returns the sorted list of node type names.
func (obj Registry) Names() []string {
	names := []string{}
	for name := range obj {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Validate checks every declaration in the registry.
func (obj Registry) Validate() error {
	var reterr error
	for _, name := range obj.Names() {
		m := obj[name]
		if m == nil {
			reterr = errwrap.Append(reterr, fmt.Errorf("node type %s is empty", name))
			continue
		}
		if err := m.Validate(); err != nil {
			for _, e := range errwrap.Flatten(err) {
				reterr = errwrap.Append(reterr, errwrap.Wrapf(e, "node type %s", name))
			}
		}
	}
	return reterr
}

// normalize fills in the empty fields which the metadata source may omit.
func (obj Registry) normalize() {
	for _, m := range obj {
		if m == nil {
			continue
		}
		if m.GenericTypes == nil {
			m.GenericTypes = []string{}
		}
		if m.Inputs == nil {
			m.Inputs = []*Port{}
		}
		if m.Outputs == nil {
			m.Outputs = []*Port{}
		}
	}
}
