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

package meta

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/purpleidea/nodeflow/util/errwrap"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v2"
)

// envelope is the response shape of the node metadata endpoint.
type envelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// ParseYAML decodes and validates a registry from a yaml document which maps
// each node type name to its declaration.
func ParseYAML(data []byte) (Registry, error) {
	registry := make(Registry)
	if err := yaml.UnmarshalStrict(data, &registry); err != nil {
		return nil, errwrap.Wrapf(err, "could not decode yaml metadata")
	}
	return finish(registry)
}

// ParseJSON decodes and validates a registry from json. It accepts either the
// bare map of node type name to declaration, or the metadata endpoint response
// of the form {"status": "success", "data": {...}}.
func ParseJSON(data []byte) (Registry, error) {
	fields := make(map[string]json.RawMessage)
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, errwrap.Wrapf(err, "could not decode json metadata")
	}

	if raw, exists := fields["status"]; exists && strings.HasPrefix(strings.TrimSpace(string(raw)), `"`) {
		env := &envelope{}
		if err := json.Unmarshal(data, env); err != nil {
			return nil, errwrap.Wrapf(err, "could not decode metadata response")
		}
		if env.Status != "success" {
			msg := env.Message
			if msg == "" {
				msg = "failed to fetch node metas"
			}
			return nil, fmt.Errorf("metadata response status %s: %s", env.Status, msg)
		}
		data = env.Data
	}

	registry := make(Registry)
	if err := json.Unmarshal(data, &registry); err != nil {
		return nil, errwrap.Wrapf(err, "could not decode json metadata")
	}
	return finish(registry)
}

// Load reads a registry from a file. Files ending in .yaml or .yml are
// decoded as yaml, and everything else as json.
func Load(fs afero.Fs, filename string) (Registry, error) {
	data, err := afero.ReadFile(fs, filename)
	if err != nil {
		return nil, errwrap.Wrapf(err, "could not read metadata")
	}
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".yaml", ".yml":
		return ParseYAML(data)
	}
	return ParseJSON(data)
}

// finish runs the common normalization and validation after decoding.
func finish(registry Registry) (Registry, error) {
	registry.normalize()
	if err := registry.Validate(); err != nil {
		return nil, errwrap.Wrapf(err, "invalid metadata")
	}
	return registry, nil
}
