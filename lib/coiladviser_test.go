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

func TestDerivePatternsBoundedByFactorialAndMax(t *testing.T) {
	sides := []IsolationSide{SidePrimary, SideSecondary, SideTertiary}
	patterns := DerivePatterns(sides, false, 2)
	assert.Len(t, patterns, 2)
	for _, p := range patterns {
		assert.Len(t, p, 3)
	}
}

func TestDerivePatternsDropsLastForToroid(t *testing.T) {
	sides := []IsolationSide{SidePrimary, SideSecondary, SideTertiary}
	full := DerivePatterns(sides, false, 6)
	toroidal := DerivePatterns(sides, true, 6)
	require.Len(t, full, 3)
	assert.Len(t, toroidal, len(full)-1)
}

func TestDeriveRepetitionsSingleWindingOrToroid(t *testing.T) {
	assert.Equal(t, []int{1}, DeriveRepetitions(1, false, false))
	assert.Equal(t, []int{1}, DeriveRepetitions(3, true, false))
}

func TestDeriveRepetitionsPrefersInterleavingWithLeakageRequirement(t *testing.T) {
	assert.Equal(t, []int{2, 1}, DeriveRepetitions(2, false, true))
	assert.Equal(t, []int{1, 2}, DeriveRepetitions(2, false, false))
}

func TestNeedsMarginTrueWhenThinNeighbourPair(t *testing.T) {
	combo := []WireSolidInsulationRequirement{
		{MinGrade: 1, MinLayers: 1},
		{MinGrade: 1, MinLayers: 1},
	}
	assert.True(t, NeedsMargin(combo, []int{0, 1}, 1))
}

func TestNeedsMarginFalseWhenWellInsulated(t *testing.T) {
	combo := []WireSolidInsulationRequirement{
		{MinGrade: 3, MinLayers: 3},
		{MinGrade: 3, MinLayers: 3},
	}
	assert.False(t, NeedsMargin(combo, []int{0, 1}, 1))
}

func TestNeedsMarginFalseForSingleWinding(t *testing.T) {
	combo := []WireSolidInsulationRequirement{{MinGrade: 1, MinLayers: 1}}
	assert.False(t, NeedsMargin(combo, []int{0}, 1))
}

func TestDeriveInsulationCombinationsNoRequirement(t *testing.T) {
	combos := DeriveInsulationCombinations(nil, 2, []IsolationSide{SidePrimary, SideSecondary}, true, true)
	require.Len(t, combos, 1)
	assert.Equal(t, InsulationGrade(1), combos[0].PerWinding[0].MinGrade)
}

func TestDeriveInsulationCombinationsReinforced(t *testing.T) {
	v := 4000.0
	req := &InsulationRequirement{Type: InsulationReinforced, WithstandVoltage: &v}
	combos := DeriveInsulationCombinations(req, 2, []IsolationSide{SidePrimary, SideSecondary}, true, true)
	require.NotEmpty(t, combos)
	for _, c := range combos {
		require.Len(t, c.PerWinding, 2)
	}
}

func TestCheckIntegrityPassesThroughWhenTurnsSuffice(t *testing.T) {
	windings := []Winding{{NumberTurns: 10}, {NumberTurns: 10}}
	pattern, reps := CheckIntegrity(windings, []int{0, 1}, 2)
	assert.Equal(t, []int{0, 1}, pattern)
	assert.Equal(t, 2, reps)
}

func TestCheckIntegrityMergesWhenTurnsInsufficient(t *testing.T) {
	windings := []Winding{{NumberTurns: 10}, {NumberTurns: 1}}
	pattern, reps := CheckIntegrity(windings, []int{0, 1}, 2)
	assert.Equal(t, 1, reps)
	assert.Equal(t, []int{0, 1, 0}, pattern)
}

func adviserCore() Core {
	return Core{
		Shape:        "ETD29",
		ShapeFamily:  ShapeConcentric,
		WindowHeight: 8e-3,
		WindowWidth:  2e-2,
		NumberStacks: 1,
	}
}

func TestGetAdvisedCoilProducesWoundCandidate(t *testing.T) {
	base := Magnetic{
		Core: adviserCore(),
		Coil: Coil{FunctionalDescription: []Winding{
			{Name: "primary", NumberTurns: 5, NumberParallels: 1},
			{Name: "secondary", NumberTurns: 5, NumberParallels: 1},
		}},
	}

	current := BuildAnalytical(LabelSinusoidal, WaveformParams{Amplitude: 0.2}, 100e3)
	voltage := BuildAnalytical(LabelSinusoidal, WaveformParams{Amplitude: 10}, 100e3)
	exc := CompleteExcitation("primary", 100e3, current, voltage)
	exc2 := CompleteExcitation("secondary", 100e3, current, voltage)

	in := AdviseInput{
		DesignRequirements: DesignRequirements{
			IsolationSides: []IsolationSide{SidePrimary, SideSecondary},
		},
		OperatingPoints: []OperatingPoint{{
			Name:                  "op-1",
			ExcitationsPerWinding: []OperatingPointExcitation{exc, exc2},
		}},
		Wires: []Wire{
			NewRoundWire("w0.4mm", 4e-4, 4.4e-4, 2, 1000, 1),
			NewRoundWire("w0.5mm", 5e-4, 5.5e-4, 2, 1000, 1),
		},
		MaxResults: 4,
	}

	adviser := NewCoilAdviser(DefaultSettings())
	candidates := adviser.GetAdvisedCoil(base, in)
	require.NotEmpty(t, candidates)
	for _, c := range candidates {
		assert.NotEmpty(t, c.Reference)
		assert.NotEmpty(t, c.Magnetic.Coil.Turns)
		assert.NoError(t, c.Magnetic.Coil.CheckIntegrity())
	}
}
