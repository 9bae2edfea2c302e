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
	"math"

	"gonum.org/v1/gonum/mat"
)

// IsNull returns true if a value is zero within tolerance.
func IsNull(f float64) bool {
	return math.Abs(f) < eps
}

// InRange returns true if v lies in [from, to] within tolerance.
func InRange(v, from, to float64) bool {
	return v-from > -eps && to-v > -eps
}

// Sqr returns the square of a value.
func Sqr(v float64) float64 {
	return v * v
}

// Clamp restricts v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

//----------------------------------------------------------------------

// LinearFit performs an ordinary least-squares fit y = a + b*x over the
// given samples.
func LinearFit(x, y []float64) (a, b float64, err error) {
	n := len(x)
	if n < 2 || n != len(y) {
		return 0, 0, NewError(InvalidInput, "LinearFit", nil)
	}
	A := mat.NewDense(n, 2, nil)
	for i := range x {
		A.Set(i, 0, 1)
		A.Set(i, 1, x[i])
	}
	Y := mat.NewVecDense(n, y)

	var coef mat.VecDense
	if err := coef.SolveVec(A, Y); err != nil {
		return 0, 0, NewError(Unknown, "LinearFit", err)
	}
	return coef.AtVec(0), coef.AtVec(1), nil
}
