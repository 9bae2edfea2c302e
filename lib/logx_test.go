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

func TestLogDropRecordsEntryInRing(t *testing.T) {
	ResetLog()
	err := NewError(Geometry, "Coil.Wind", nil)
	logDrop("Coil.Wind", err)

	entries := ReadLog()
	require.Len(t, entries, 1)
	assert.Equal(t, "Coil.Wind", entries[0].Op)
	assert.Equal(t, Geometry, entries[0].Kind)
	ResetLog()
}

func TestReadLogReturnsIndependentCopy(t *testing.T) {
	ResetLog()
	logDrop("op1", NewError(SimulatorFailure, "op1", nil))
	entries := ReadLog()
	entries[0].Op = "mutated"

	fresh := ReadLog()
	require.Len(t, fresh, 1)
	assert.Equal(t, "op1", fresh[0].Op)
	ResetLog()
}

func TestResetLogClearsRing(t *testing.T) {
	logDrop("op2", NewError(Unknown, "op2", nil))
	ResetLog()
	assert.Empty(t, ReadLog())
}

func TestDefaultReturnsNonNilLogger(t *testing.T) {
	assert.NotNil(t, Default())
}
