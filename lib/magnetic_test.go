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

func TestMagneticTurnsRatios(t *testing.T) {
	m := Magnetic{
		Coil: Coil{
			FunctionalDescription: []Winding{
				{Name: "primary", NumberTurns: 20},
				{Name: "secondary", NumberTurns: 5},
				{Name: "aux", NumberTurns: 10},
			},
		},
	}
	ratios := m.TurnsRatios()
	require.Len(t, ratios, 2)
	assert.InDelta(t, 0.25, ratios[0], 1e-12)
	assert.InDelta(t, 0.5, ratios[1], 1e-12)
}

func TestMagneticTurnsRatiosEmptyCoil(t *testing.T) {
	m := Magnetic{}
	assert.Nil(t, m.TurnsRatios())
}

func TestSimpleReluctanceModelRejectsEmptyCoil(t *testing.T) {
	model := SimpleReluctanceModel{EffectiveArea: 1e-4}
	_, err := model.CalculateInductanceFromNumberTurnsAndGapping(Core{}, Coil{})
	require.Error(t, err)
	assert.Equal(t, MissingData, err.(*Error).Kind)
}

func TestSimpleReluctanceModelScalesWithTurnsSquared(t *testing.T) {
	model := SimpleReluctanceModel{EffectiveArea: 1e-4}
	core := Core{Gapping: []float64{1e-3}, NumberStacks: 1}
	coilLowN := Coil{FunctionalDescription: []Winding{{NumberTurns: 10}}}
	coilHighN := Coil{FunctionalDescription: []Winding{{NumberTurns: 20}}}

	lowResult, err := model.CalculateInductanceFromNumberTurnsAndGapping(core, coilLowN)
	require.NoError(t, err)
	highResult, err := model.CalculateInductanceFromNumberTurnsAndGapping(core, coilHighN)
	require.NoError(t, err)

	lowL, _ := lowResult.MagnetizingInductance.GetNominal()
	highL, _ := highResult.MagnetizingInductance.GetNominal()
	assert.InDelta(t, 4*lowL, highL, lowL*1e-9)
	assert.Equal(t, lowResult.Reluctance, highResult.Reluctance)
	assert.Equal(t, 1.0, lowResult.FringingFactor)
}

func TestSimpleReluctanceModelDefaultsAreaAndGapWhenUnset(t *testing.T) {
	model := SimpleReluctanceModel{}
	coil := Coil{FunctionalDescription: []Winding{{NumberTurns: 10}}}
	result, err := model.CalculateInductanceFromNumberTurnsAndGapping(Core{}, coil)
	require.NoError(t, err)
	l, ok := result.MagnetizingInductance.GetNominal()
	require.True(t, ok)
	assert.Greater(t, l, 0.0)
}
