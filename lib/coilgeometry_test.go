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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func concentricCoil(turnsA, turnsB int) Coil {
	wireA := NewRoundWire("primary-wire", 5e-4, 5.5e-4, 2, 1000, 1)
	wireB := NewRoundWire("secondary-wire", 5e-4, 5.5e-4, 2, 1000, 1)
	core := Core{
		Shape:        "ETD29",
		ShapeFamily:  ShapeConcentric,
		WindowHeight: 8e-3,
		WindowWidth:  2e-2,
		NumberStacks: 1,
	}
	return Coil{
		FunctionalDescription: []Winding{
			{Name: "primary", NumberTurns: turnsA, NumberParallels: 1, Wire: wireA},
			{Name: "secondary", NumberTurns: turnsB, NumberParallels: 1, Wire: wireB},
		},
		Bobbin: Bobbin{Core: core},
	}
}

func TestWindBySectionsProducesOneSectionPerPatternEntry(t *testing.T) {
	c := concentricCoil(5, 5)
	err := c.WindBySections([]float64{0.5, 0.5}, []int{0, 1}, 1)
	require.NoError(t, err)
	require.Len(t, c.Sections, 2)
	assert.Equal(t, []string{"primary"}, c.Sections[0].WindingNames)
	assert.Equal(t, []string{"secondary"}, c.Sections[1].WindingNames)
}

func TestWindBySectionsRejectsZeroProportionTotal(t *testing.T) {
	c := concentricCoil(5, 5)
	err := c.WindBySections([]float64{0, 0}, []int{0, 1}, 1)
	require.Error(t, err)
	assert.Equal(t, Geometry, err.(*Error).Kind)
}

func TestWindFullPipelineSucceeds(t *testing.T) {
	c := concentricCoil(5, 5)
	require.NoError(t, c.WindBySections([]float64{0.5, 0.5}, []int{0, 1}, 1))

	reqs := map[string]WireSolidInsulationRequirement{
		"primary":   {MinBreakdownVoltage: 3000},
		"secondary": {MinBreakdownVoltage: 500},
	}
	isoSide := map[string]IsolationSide{
		"primary":   SidePrimary,
		"secondary": SideSecondary,
	}
	require.NoError(t, c.CalculateInsulation(reqs, isoSide, true))
	require.NotEmpty(t, c.Layers)

	ok := c.Wind(AlignSpread)
	require.True(t, ok)
	assert.Len(t, c.Turns, 10)
	assert.NoError(t, c.CheckIntegrity())
	assert.False(t, c.CheckCollisions())

	c.DelimitAndCompact()
	first := append([]Section{}, c.Sections...)
	c.DelimitAndCompact()
	for i := range first {
		assert.Equal(t, first[i].Coordinates, c.Sections[i].Coordinates)
		assert.Equal(t, first[i].Dimensions, c.Sections[i].Dimensions)
	}
}

func TestCalculateInsulationStrictRejectsUnresolvedBoundary(t *testing.T) {
	c := concentricCoil(5, 5)
	require.NoError(t, c.WindBySections([]float64{0.5, 0.5}, []int{0, 1}, 1))

	reqs := map[string]WireSolidInsulationRequirement{}
	isoSide := map[string]IsolationSide{
		"primary":   SidePrimary,
		"secondary": SideSecondary,
	}
	err := c.CalculateInsulation(reqs, isoSide, true)
	require.Error(t, err)
	assert.Equal(t, Geometry, err.(*Error).Kind)
}

func TestWindFailsWhenWireTooLargeForWindow(t *testing.T) {
	c := concentricCoil(5, 5)
	hugeWire := NewRoundWire("huge", 1, 1.01, 2, 1000, 1)
	c.FunctionalDescription[0].Wire = hugeWire
	require.NoError(t, c.WindBySections([]float64{0.5, 0.5}, []int{0, 1}, 1))
	assert.False(t, c.Wind(AlignSpread))
}

func TestCheckIntegrityRejectsMismatchedTurnCount(t *testing.T) {
	c := concentricCoil(5, 5)
	require.NoError(t, c.WindBySections([]float64{0.5, 0.5}, []int{0, 1}, 1))
	require.True(t, c.Wind(AlignSpread))
	c.Turns = c.Turns[:len(c.Turns)-1]
	err := c.CheckIntegrity()
	require.Error(t, err)
	assert.Equal(t, Geometry, err.(*Error).Kind)
}

func TestToroidalWindBySectionsUsesFullAngularWindow(t *testing.T) {
	wireA := NewRoundWire("primary-wire", 5e-4, 5.5e-4, 2, 1000, 1)
	core := Core{
		ShapeFamily:  ShapeToroidal,
		WindowHeight: 6e-3,
		InnerRadius:  1e-2,
		NumberStacks: 1,
	}
	c := Coil{
		FunctionalDescription: []Winding{{Name: "primary", NumberTurns: 20, NumberParallels: 1, Wire: wireA}},
		Bobbin:                Bobbin{Core: core},
	}
	require.NoError(t, c.WindBySections([]float64{1}, []int{0}, 1))
	require.Len(t, c.Sections, 1)
	assert.InDelta(t, 360, c.Sections[0].Dimensions[1], 1e-9)
}
