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
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultSettingsMatchesPackageConstants(t *testing.T) {
	s := DefaultSettings()
	assert.Equal(t, SkinEffectDowell, s.WindingSkinEffectLossesModel)
	assert.Equal(t, MaximumNumberParallels, s.MaximumNumberParallels)
	assert.True(t, s.UseToroidalCores)
}

func TestSettingsBuilderOverrides(t *testing.T) {
	s := NewSettingsBuilder().
		WithToroidalCores(false).
		WithConcentricCores(false).
		WithMarginTape(false).
		WithInsulatedWire(false).
		WithWireKinds(true, false, false, false, false).
		WithSkinEffectModel(SkinEffectWojda).
		WithHarmonicAmplitudeThreshold(0.02).
		Build()

	assert.False(t, s.UseToroidalCores)
	assert.False(t, s.UseConcentricCores)
	assert.False(t, s.CoilAllowMarginTape)
	assert.False(t, s.CoilAllowInsulatedWire)
	assert.True(t, s.WireAdviserIncludeRound)
	assert.False(t, s.WireAdviserIncludeLitz)
	assert.Equal(t, SkinEffectWojda, s.WindingSkinEffectLossesModel)
	assert.Equal(t, 0.02, s.HarmonicAmplitudeThreshold)
}

func TestSettingsBuilderFromFileOverlaysJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "settings.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"useToroidalCores":false,"coilAdviserMaximumWires":7}`), 0o644))

	b, err := NewSettingsBuilder().FromFile(path)
	require.NoError(t, err)
	s := b.Build()
	assert.False(t, s.UseToroidalCores)
	assert.Equal(t, 7, s.CoilAdviserMaximumWires)
}

func TestSettingsBuilderFromFileMissingFails(t *testing.T) {
	_, err := NewSettingsBuilder().FromFile(filepath.Join(t.TempDir(), "nope.json"))
	require.Error(t, err)
	assert.Equal(t, InvalidInput, err.(*Error).Kind)
}

func TestSettingsBuilderFromYAMLFileOverlaysYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "settings.yaml")
	body := "useToroidalCores: false\ncoilAdviserMaximumWires: 9\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	b, err := NewSettingsBuilder().FromYAMLFile(path)
	require.NoError(t, err)
	s := b.Build()
	assert.False(t, s.UseToroidalCores)
	assert.Equal(t, 9, s.CoilAdviserMaximumWires)
}

func TestSettingsBuilderFromYAMLFileMissingFails(t *testing.T) {
	_, err := NewSettingsBuilder().FromYAMLFile(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Equal(t, InvalidInput, err.(*Error).Kind)
}
