//----------------------------------------------------------------------
// This file is part of openmagnetics.
// Copyright (C) 2024-present Bernd Fix >Y<,  DO3YQ
//
// openmagnetics is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published
// by the Free Software Foundation, either version 3 of the License,
// or (at your option) any later version.
//
// openmagnetics is distributed in the hope that it will be useful, but
// WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the GNU
// Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.
//
// SPDX-License-Identifier: AGPL3.0-or-later
//----------------------------------------------------------------------

package magnetics

import (
	lua "github.com/Shopify/go-lua"
)

// LuaScoreFilter is an optional, user-supplied scoring dimension: a Lua
// script assigns a global `score` from a candidate's exposed fields, so
// callers can enrich a Referencer ranking with criteria this package
// does not hard-code (e.g. a manufacturer preference table).
//
// The script sees globals `core_shape` (string), `num_windings` (int),
// `turns_ratio` (number, first secondary over primary or 0 if none),
// `inductance` (number, always 0: no inductance is computed for the
// candidate) and must set `score` before returning.
type LuaScoreFilter struct {
	Script string // path to a .lua file
	state  *lua.State
}

// Open loads and opens the standard libraries into a fresh VM, ready for
// repeated Score calls against the same script.
func (f *LuaScoreFilter) Open() error {
	f.state = lua.NewState()
	lua.OpenLibraries(f.state)
	return nil
}

// Score runs the script against one candidate Magnetic and returns the
// resulting `score` global as a float64.
func (f *LuaScoreFilter) Score(m Magnetic) (float64, error) {
	if f.state == nil {
		if err := f.Open(); err != nil {
			return 0, err
		}
	}
	s := f.state

	s.PushString(m.Core.Shape)
	s.SetGlobal("core_shape")
	s.PushInteger(m.Coil.NumberWindings())
	s.SetGlobal("num_windings")

	ratio := 0.0
	if rs := m.TurnsRatios(); len(rs) > 0 {
		ratio = rs[0]
	}
	s.PushNumber(ratio)
	s.SetGlobal("turns_ratio")

	s.PushNumber(0)
	s.SetGlobal("inductance")

	if err := lua.DoFile(s, f.Script); err != nil {
		return 0, NewError(Unknown, "LuaScoreFilter.Score", err)
	}

	s.Global("score")
	v, ok := s.ToNumber(-1)
	s.Pop(1)
	if !ok {
		return 0, NewError(MissingData, "LuaScoreFilter.Score", nil)
	}
	return v, nil
}

// AsReferencerFilter adapts f into a ReferencerFilter[Magnetic] usable
// directly inside a Referencer[Magnetic] ranking alongside the built-in
// filters; scoring errors fold to 0 so one bad candidate does not abort
// the whole ranking.
func (f *LuaScoreFilter) AsReferencerFilter(name string, weight float64, invert bool) ReferencerFilter[Magnetic] {
	return ReferencerFilter[Magnetic]{
		Name:   name,
		Weight: weight,
		Invert: invert,
		RawScore: func(m Magnetic) float64 {
			v, err := f.Score(m)
			if err != nil {
				return 0
			}
			return v
		},
	}
}
