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
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// magnitude suffixes from -15 to 15 in steps of 3, used for human-
// readable engineering notation (nH, uF, kOhm, ...).
const mags = "fpnum kMGTP"

// ParseNumber parses a number optionally suffixed with an SI magnitude
// (e.g. "100n", "2.2k").
func ParseNumber(s string) (float64, error) {
	rs := []rune(strings.TrimSpace(s))
	lr := len(rs)
	if lr == 0 {
		return 0, errors.New("empty number string")
	}
	f := 1.
	if i := strings.IndexRune(mags, rs[lr-1]); i != -1 {
		f = math.Pow10(-15 + 3*i)
		rs = rs[:lr-1]
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(string(rs)), 64)
	if err != nil {
		return 0, err
	}
	return f * v, nil
}

// FormatNumber renders v in engineering notation with n significant
// digits, used by the netlist emitter (netlistNum) for component values.
func FormatNumber(v float64, n int) string {
	sign := ' '
	if v < 0 {
		sign = '-'
	}
	v = math.Abs(v)
	for i, mag := range mags {
		f := v / math.Pow10(-15+3*i)
		if f < 1000 || i == len(mags)-1 {
			k := (n - 1) - int(math.Log10(f))
			return strings.TrimSpace(fmt.Sprintf("%c%*.*f %c", sign, n, k, f, mag))
		}
	}
	return ""
}

// FormatDuration renders a number of seconds as a compact "1h 2m 3s"
// style string.
func FormatDuration(v int64) string {
	timespans := []struct {
		num  int64
		symb rune
	}{{60, 's'}, {60, 'm'}, {24, 'h'}, {365, 'd'}, {-1, 'y'}}
	out := ""
	var r int64
	for idx := 0; v != 0; idx++ {
		d := timespans[idx].num
		if d < 0 {
			r, v = v, 0
		} else {
			r = v % d
			v /= d
		}
		out = fmt.Sprintf("%d%c ", r, timespans[idx].symb) + out
	}
	return strings.TrimRight(out, " ")
}
