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

package types

import (
	"encoding/json"
	"fmt"
	"strings"
)

// jsonType is the wire representation of a Type. It exists so that the json
// methods below don't recurse into themselves.
type jsonType struct {
	Main string  `json:"mainType"`
	Args []*Type `json:"genericTypes"`
}

// MarshalJSON encodes the type as {"mainType": ..., "genericTypes": [...]}.
// A leaf always gets an empty list, rather than null.
func (obj *Type) MarshalJSON() ([]byte, error) {
	args := obj.Args
	if args == nil {
		args = []*Type{}
	}
	return json.Marshal(&jsonType{
		Main: obj.Main,
		Args: args,
	})
}

// UnmarshalJSON decodes a type tree. Since these come from files, the tree is
// checked to be one which Parse could have built, and a *SyntaxError is
// returned if it is not.
func (obj *Type) UnmarshalJSON(data []byte) error {
	var x jsonType
	if err := json.Unmarshal(data, &x); err != nil {
		return err
	}
	main := strings.TrimSpace(x.Main)
	if main == "" || strings.ContainsAny(main, "<>,") {
		return &SyntaxError{
			Text:   x.Main,
			Reason: "invalid main type",
		}
	}
	if main == Wildcard && len(x.Args) > 0 {
		return &SyntaxError{
			Text:   x.Main,
			Reason: "the wildcard cannot have generic arguments",
		}
	}
	for i, arg := range x.Args {
		if arg == nil {
			return &SyntaxError{
				Text:   x.Main,
				Reason: fmt.Sprintf("generic argument %d is null", i),
			}
		}
	}
	*obj = *newType(main, x.Args)
	return nil
}

// UnmarshalJSON decodes a set of bindings, and errors on any null entries.
func (obj *Bindings) UnmarshalJSON(data []byte) error {
	m := make(map[string]*Type)
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	for k, v := range m {
		if v == nil {
			return fmt.Errorf("binding for %s is null", k)
		}
	}
	*obj = m
	return nil
}
