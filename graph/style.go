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
	"math"
	"unicode/utf16"
)

// RGB is a display color.
type RGB struct {
	R uint8
	G uint8
	B uint8
}

// CSS returns the color in the `rgb(r, g, b)` form.
func (obj RGB) CSS() string {
	return fmt.Sprintf("rgb(%d, %d, %d)", obj.R, obj.G, obj.B)
}

// UnresolvedColor is used for wires whose source still has free parameters.
var UnresolvedColor = RGB{128, 128, 128}

// typeColors are the fixed colors of the common types. Anything else gets a
// color derived from a hash of its name.
var typeColors = map[string]RGB{
	"*":          {255, 255, 255},
	"ref":        {255, 165, 0},
	"str":        {0, 255, 0},
	"int":        {0, 0, 255},
	"float":      {0, 255, 255},
	"bool":       {255, 0, 255},
	"ref<str>":   {128, 255, 128},
	"ref<int>":   {128, 128, 255},
	"ref<float>": {128, 255, 255},
	"ref<bool>":  {255, 128, 255},
}

// TypeColor returns the display color of a type, given in its canonical string
// form. The same string always gets the same color.
func TypeColor(s string) RGB {
	if c, exists := typeColors[s]; exists {
		return c
	}

	hash := typeHash(s)
	h := float64(hash % 360)
	sat := float64(70 + abs(int32(hash)>>16)%31)
	val := float64(70 + abs(int32(hash)>>24)%31)

	c := (val / 100) * (sat / 100)
	x := c * (1 - math.Abs(math.Mod(h/60, 2)-1))
	m := (val / 100) - c

	var r, g, b float64
	switch {
	case h < 60:
		r, g, b = c, x, 0
	case h < 120:
		r, g, b = x, c, 0
	case h < 180:
		r, g, b = 0, c, x
	case h < 240:
		r, g, b = 0, x, c
	case h < 300:
		r, g, b = x, 0, c
	default:
		r, g, b = c, 0, x
	}
	return RGB{channel(r + m), channel(g + m), channel(b + m)}
}

// EdgeColor returns the css stroke color for a wire leaving the port described
// by info. Control wires and unknown ports get no color.
func EdgeColor(info *PortInfo) string {
	if info == nil || info.Kind != KindData || info.Type == nil {
		return ""
	}
	if info.HasUnresolved() {
		return UnresolvedColor.CSS()
	}
	return TypeColor(info.Type.String()).CSS()
}

// typeHash is a 32 bit fnv-1a variant over the utf-16 code units of s. It must
// stay stable, since colors are persisted in exported flows.
func typeHash(s string) uint32 {
	hash := uint32(0x811c9dc5)
	for _, c := range utf16.Encode([]rune(s)) {
		hash ^= uint32(c)
		hash += (hash << 1) + (hash << 4) + (hash << 7) + (hash << 8) + (hash << 24)
	}
	return hash
}

func abs(x int32) int32 {
	if x < 0 {
		return -x
	}
	return x
}

func channel(f float64) uint8 {
	return uint8(math.Floor(f*255 + 0.5))
}
