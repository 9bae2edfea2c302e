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

func TestDimWithTolValidateRejectsEmpty(t *testing.T) {
	var d DimWithTol
	require.Error(t, d.Validate())
}

func TestDimWithTolValidateRejectsOutOfOrder(t *testing.T) {
	d := DimWithTol{Minimum: ptr(10), Maximum: ptr(5)}
	require.Error(t, d.Validate())
}

func TestDimWithTolValidateAcceptsOrdered(t *testing.T) {
	d := DimWithTol{Minimum: ptr(1), Nominal: ptr(2), Maximum: ptr(3)}
	require.NoError(t, d.Validate())
}

func TestDimWithTolGetNominalPrefersNominal(t *testing.T) {
	d := DimWithTol{Minimum: ptr(1), Nominal: ptr(2), Maximum: ptr(3)}
	v, ok := d.GetNominal()
	require.True(t, ok)
	assert.Equal(t, 2.0, v)
}

func TestDimWithTolGetNominalMidpointWhenOnlyBounds(t *testing.T) {
	d := DimRange(4, 8)
	v, ok := d.GetNominal()
	require.True(t, ok)
	assert.Equal(t, 6.0, v)
}

func TestDimWithTolGetNominalSingleBound(t *testing.T) {
	v, ok := DimMin(3).GetNominal()
	require.True(t, ok)
	assert.Equal(t, 3.0, v)
}

func TestDimWithTolGetNominalEmptyReturnsFalse(t *testing.T) {
	_, ok := DimWithTol{}.GetNominal()
	assert.False(t, ok)
}

func TestIsolationSideFromIndex(t *testing.T) {
	assert.Equal(t, SidePrimary, IsolationSideFromIndex(0))
	assert.Equal(t, SideSecondary, IsolationSideFromIndex(1))
	assert.Equal(t, SideSecondary, IsolationSideFromIndex(2))
}

func TestIsolationSideString(t *testing.T) {
	assert.Equal(t, "primary", SidePrimary.String())
	assert.Equal(t, "secondary", SideSecondary.String())
	assert.Equal(t, "tertiary", SideTertiary.String())
	assert.Equal(t, "quaternary", SideQuaternary.String())
}

func TestTopologyString(t *testing.T) {
	assert.Equal(t, "buck", TopologyBuck.String())
	assert.Equal(t, "boost", TopologyBoost.String())
	assert.Equal(t, "flyback", TopologyFlyback.String())
	assert.Equal(t, "isolated buck-boost", TopologyIsolatedBuckBoost.String())
}

func TestDesignRequirementsNumberWindings(t *testing.T) {
	dr := DesignRequirements{IsolationSides: []IsolationSide{SidePrimary, SideSecondary, SideSecondary}}
	assert.Equal(t, 3, dr.NumberWindings())
}
