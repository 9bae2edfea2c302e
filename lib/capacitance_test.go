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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func roundTurn(name string, x, y float64) Turn {
	return Turn{
		Name:        name,
		Coordinates: Point2{x, y},
		Dimensions:  Point2{1e-3, 1e-3},
		Shape:       ShapeRound,
		Length:      0.02,
	}
}

func TestSurroundingTurnsAdjacency(t *testing.T) {
	t0 := roundTurn("t0", 0, 0)
	neighbour := roundTurn("t1", 1.2e-3, 0)
	far := roundTurn("t2", 50e-3, 0)
	all := []Turn{t0, neighbour, far}

	out := SurroundingTurns(t0, all)
	require.Len(t, out, 1)
	assert.Equal(t, "t1", out[0].Name)
}

func TestSurroundingTurnsOcclusion(t *testing.T) {
	t0 := roundTurn("t0", 0, 0)
	blocker := roundTurn("mid", 1.2e-3, 0)
	beyond := roundTurn("beyond", 2.4e-3, 0)
	all := []Turn{t0, blocker, beyond}

	out := SurroundingTurns(t0, all)
	var names []string
	for _, o := range out {
		names = append(names, o.Name)
	}
	assert.Contains(t, names, "mid")
	assert.NotContains(t, names, "beyond")
}

func TestInsulationLayersBetweenOverlapping(t *testing.T) {
	t1 := roundTurn("a", 0, 0)
	t2 := roundTurn("b", 10, 0)
	layers := []Layer{
		{Kind: LayerInsulation, Thickness: 1e-4, Coordinates: Point2{5, 0}, RelativePermittivity: 3},
		{Kind: LayerInsulation, Thickness: 1e-4, Coordinates: Point2{20, 0}, RelativePermittivity: 3},
		{Kind: LayerConductive, Thickness: 1e-4, Coordinates: Point2{5, 0}},
	}
	out := InsulationLayersBetween(t1, t2, layers, OrientationOverlapping)
	require.Len(t, out, 1)
	assert.InDelta(t, 5.0, out[0].Coordinates[0], 1e-9)
}

func TestInsulationLayersBetweenContiguousWrap(t *testing.T) {
	t1 := Turn{Name: "a", Coordinates: Point2{0, 350}, Dimensions: Point2{1e-3, 1e-3}}
	t2 := Turn{Name: "b", Coordinates: Point2{0, 10}, Dimensions: Point2{1e-3, 1e-3}}
	layers := []Layer{
		{Kind: LayerInsulation, Thickness: 1e-4, Coordinates: Point2{0, 0}, RelativePermittivity: 3},
		{Kind: LayerInsulation, Thickness: 1e-4, Coordinates: Point2{0, 180}, RelativePermittivity: 3},
	}
	out := InsulationLayersBetween(t1, t2, layers, OrientationContiguous)
	require.Len(t, out, 1)
	assert.InDelta(t, 0.0, out[0].Coordinates[1], 1e-9)
}

func TestStaticCapacitanceModels(t *testing.T) {
	t1 := roundTurn("a", 0, 0)
	t2 := roundTurn("b", 1.2e-3, 0)
	distance := 0.2e-3

	for _, model := range []CapacitanceModel{ModelKoch, ModelAlbach, ModelDuerdoth, ModelMassarini} {
		c, err := StaticCapacitance(model, t1, t2, distance, nil)
		require.NoError(t, err)
		assert.Greater(t, c, 0.0)
		assert.False(t, math.IsNaN(c) || math.IsInf(c, 0))
	}
}

func TestStaticCapacitanceParallelPlate(t *testing.T) {
	t1 := Turn{Name: "a", Coordinates: Point2{0, 0}, Dimensions: Point2{5e-3, 1e-3}, Length: 0.02}
	t2 := Turn{Name: "b", Coordinates: Point2{0, 1e-3}, Dimensions: Point2{5e-3, 1e-3}, Length: 0.02}
	layers := []Layer{{Kind: LayerInsulation, Thickness: 5e-5, RelativePermittivity: 3}}

	c, err := StaticCapacitance(ModelParallelPlate, t1, t2, 5e-5, layers)
	require.NoError(t, err)
	assert.Greater(t, c, 0.0)
}

func TestStaticCapacitanceUnknownModel(t *testing.T) {
	t1 := roundTurn("a", 0, 0)
	t2 := roundTurn("b", 1.2e-3, 0)
	_, err := StaticCapacitance(CapacitanceModel(99), t1, t2, 0.2e-3, nil)
	require.Error(t, err)
	assert.Equal(t, Unknown, err.(*Error).Kind)
}

func TestTurnVoltageEndpoints(t *testing.T) {
	assert.InDelta(t, 10.0, TurnVoltage(10, 0, 5), 1e-9)
	assert.InDelta(t, 0.0, TurnVoltage(10, 4, 5), 1e-9)
	assert.InDelta(t, 5.0, TurnVoltage(10, 0, 1), 1e-9)
}

func TestTurnVoltagePanicsOnInvalidInput(t *testing.T) {
	assert.Panics(t, func() { TurnVoltage(math.NaN(), 0, 5) })
	assert.Panics(t, func() { TurnVoltage(math.Inf(1), 0, 5) })
}

func TestTurnVoltageRapidMonotonic(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		turnsW := rapid.IntRange(2, 50).Draw(rt, "turnsW")
		v := rapid.Float64Range(0.01, 1000).Draw(rt, "v")
		first := TurnVoltage(v, 0, turnsW)
		last := TurnVoltage(v, turnsW-1, turnsW)
		assert.GreaterOrEqual(t, first, last)
	})
}

func TestInterWindingCapacitanceConverges(t *testing.T) {
	pairs := []AdjacentPair{
		{IndexA: 0, IndexB: 0, Capacitance: 1e-12},
		{IndexA: 1, IndexB: 1, Capacitance: 1.2e-12},
		{IndexA: 2, IndexB: 2, Capacitance: 0.8e-12},
	}
	result := InterWindingCapacitance(5, 5, 1.0, 2.0, pairs, false)
	assert.True(t, result.Converged)
	assert.LessOrEqual(t, result.Iterations, FixedPointMaxIterations)
	assert.GreaterOrEqual(t, result.Capacitance, 0.0)
}

func TestInterWindingCapacitanceEmptyPairs(t *testing.T) {
	result := InterWindingCapacitance(5, 5, 1.0, 2.0, nil, false)
	assert.True(t, result.Converged)
	assert.Equal(t, 0.0, result.Capacitance)
}

func TestMaxwellMatrixStructure(t *testing.T) {
	n := 3
	raw := func(a, b int) float64 {
		if a > b {
			a, b = b, a
		}
		return float64(a+b+1) * 1e-12
	}
	result := MaxwellMatrix(n, raw)
	m := result.Matrix

	for a := 0; a < n; a++ {
		var sum float64
		for b := 0; b < n; b++ {
			if a == b {
				continue
			}
			assert.InDelta(t, -raw(a, b), m.At(a, b), 1e-20)
			assert.InDelta(t, m.At(a, b), m.At(b, a), 1e-20)
			sum += raw(a, b)
		}
		assert.InDelta(t, sum, m.At(a, a), 1e-20)
	}
}
