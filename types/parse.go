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
	"fmt"
	"regexp"
	"strings"

	"github.com/purpleidea/nodeflow/util"
	"github.com/purpleidea/nodeflow/util/errwrap"
)

// ErrSyntax is the cause of every error returned while parsing a type.
const ErrSyntax = util.Error("invalid type definition")

// typeRegexp matches the outer `Identifier<...>` shape of a type expression.
// The contents of the angle brackets are split and checked separately.
var typeRegexp = regexp.MustCompile(`(?s)^([^<>,]+)(?:<(.+)>)?$`)

// SyntaxError is returned when a type expression is malformed. Text is the
// offending part of the expression, which may be a nested segment.
type SyntaxError struct {
	Text   string
	Reason string
}

// Error fulfills the error interface of this type.
func (obj *SyntaxError) Error() string {
	return fmt.Sprintf("%s `%s`: %s", ErrSyntax, obj.Text, obj.Reason)
}

// Unwrap returns ErrSyntax so that errors.Is can be used on the result.
func (obj *SyntaxError) Unwrap() error {
	return ErrSyntax
}

// Parse builds the type tree for an expression matching the grammar:
//
//	Type := Identifier ( '<' Type ( ',' Type )* '>' )?
//
// where an identifier is any run of characters other than `<`, `>` and `,`,
// with the surrounding whitespace removed. The wildcard may not have generic
// arguments. Use this on anything that comes from a user, since malformed
// input returns a *SyntaxError.
func Parse(s string) (*Type, error) {
	s = strings.TrimSpace(s)
	m := typeRegexp.FindStringSubmatch(s)
	if m == nil {
		return nil, &SyntaxError{
			Text:   s,
			Reason: "expected an identifier with optional <...> arguments",
		}
	}
	main := strings.TrimSpace(m[1])
	if m[2] == "" { // no generics block
		return newType(main, nil), nil
	}
	if main == Wildcard {
		return nil, &SyntaxError{
			Text:   s,
			Reason: "the wildcard cannot have generic arguments",
		}
	}

	segments, err := splitArgs(s, m[2])
	if err != nil {
		return nil, err
	}
	args := []*Type{}
	for _, segment := range segments {
		typ, err := Parse(segment)
		if err != nil {
			return nil, errwrap.Wrapf(err, "in `%s`", s)
		}
		args = append(args, typ)
	}
	return newType(main, args), nil
}

// MustParse is like Parse, but it panics on error. It should only be used on
// type expressions which are built into the program, or which have already
// been validated, since a failure there is a programming error.
func MustParse(s string) *Type {
	typ, err := Parse(s)
	if err != nil {
		panic(fmt.Sprintf("could not parse type: %+v", err))
	}
	return typ
}

// splitArgs splits the contents of a generics block into the top-level comma
// separated segments. Commas inside nested angle brackets are not split on.
// The full expression is only used for error messages.
func splitArgs(full, s string) ([]string, error) {
	segments := []string{}
	depth := 0
	start := 0
	for i, c := range s {
		switch c {
		case '<':
			depth++
		case '>':
			depth--
			if depth < 0 {
				return nil, &SyntaxError{
					Text:   full,
					Reason: "unbalanced `>`",
				}
			}
		case ',':
			if depth == 0 {
				segments = append(segments, s[start:i])
				start = i + 1
			}
		}
	}
	if depth != 0 {
		return nil, &SyntaxError{
			Text:   full,
			Reason: "unbalanced `<`",
		}
	}
	segments = append(segments, s[start:])

	out := []string{}
	for _, segment := range segments {
		segment = strings.TrimSpace(segment)
		if segment == "" {
			return nil, &SyntaxError{
				Text:   full,
				Reason: "empty generic argument",
			}
		}
		out = append(out, segment)
	}
	return out, nil
}
