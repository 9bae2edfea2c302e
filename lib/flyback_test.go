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

func nominalFlyback(ripple float64) Flyback {
	maxDuty := 0.45
	return Flyback{
		InputVoltage:     DimRange(90, 265),
		DiodeVoltageDrop: 0.6,
		RippleRatio:      ripple,
		MaxDutyCycle:     &maxDuty,
		OperatingPoints: []FlybackOperatingPoint{
			{
				OutputVoltages:     []float64{12, 5},
				OutputCurrents:     []float64{2, 1},
				SwitchingFrequency: 100e3,
				AmbientTemperature: 25,
			},
		},
	}
}

func TestFlybackRunChecksRejectsMismatchedSecondaryCounts(t *testing.T) {
	f := nominalFlyback(0.5)
	f.OperatingPoints[0].OutputCurrents = []float64{2}
	_, err := f.RunChecks(false)
	require.Error(t, err)
	assert.Equal(t, InvalidDesignRequirements, err.(*Error).Kind)
}

func TestFlybackCCMScenarioEndToEnd(t *testing.T) {
	f := nominalFlyback(0.5)
	ok, err := f.RunChecks(false)
	require.NoError(t, err)
	require.True(t, ok)

	dr, err := f.ProcessDesignRequirements()
	require.NoError(t, err)
	require.Len(t, dr.TurnsRatios, 2)
	l, has := dr.MagnetizingInductance.GetNominal()
	require.True(t, has)
	assert.Greater(t, l, 0.0)
	require.Len(t, dr.IsolationSides, 3)
	assert.Equal(t, SidePrimary, dr.IsolationSides[0])

	ratios := make([]float64, len(dr.TurnsRatios))
	for i, r := range dr.TurnsRatios {
		v, ok := r.GetNominal()
		require.True(t, ok)
		ratios[i] = v
	}

	ops, err := f.ProcessOperatingPoints(ratios, l)
	require.NoError(t, err)
	require.NotEmpty(t, ops)
	for _, op := range ops {
		require.Len(t, op.ExcitationsPerWinding, 3) // primary + 2 secondaries
	}
}

func TestFlybackDCMScenarioEndToEnd(t *testing.T) {
	f := nominalFlyback(1.5) // ripple >= 1 resolves every point to DCM
	dr, err := f.ProcessDesignRequirements()
	require.NoError(t, err)

	// DCM resolution yields a min/max inductance range rather than a
	// bare nominal, per the preserved swap-and-inflate fallback.
	assert.NotNil(t, dr.MagnetizingInductance.Minimum)
	assert.NotNil(t, dr.MagnetizingInductance.Maximum)

	ratios := make([]float64, len(dr.TurnsRatios))
	for i, r := range dr.TurnsRatios {
		v, _ := r.GetNominal()
		ratios[i] = v
	}
	l, has := dr.MagnetizingInductance.GetNominal()
	require.True(t, has)
	ops, err := f.ProcessOperatingPoints(ratios, l)
	require.NoError(t, err)
	require.NotEmpty(t, ops)
}

func scenarioCFlyback(ripple float64) Flyback {
	maxVds := 350.0
	return Flyback{
		InputVoltage:          DimRange(110, 240),
		DiodeVoltageDrop:      0.7,
		MaxDrainSourceVoltage: &maxVds,
		RippleRatio:           ripple,
		OperatingPoints: []FlybackOperatingPoint{
			{
				OutputVoltages:     []float64{12, 12},
				OutputCurrents:     []float64{3, 5},
				SwitchingFrequency: 100e3,
				AmbientTemperature: 42,
			},
		},
	}
}

// TestFlybackScenarioCCCMEndToEnd exercises the flyback CCM end-to-end
// scenario: {min:110,max:240} input, 0.7V diode, 350V max drain-source,
// 0.3 ripple, one {Vout=[12,12],Iout=[3,5],f=100kHz,T=42C} point.
func TestFlybackScenarioCCCMEndToEnd(t *testing.T) {
	f := scenarioCFlyback(0.3)
	dr, err := f.ProcessDesignRequirements()
	require.NoError(t, err)
	ratios := make([]float64, len(dr.TurnsRatios))
	for i, r := range dr.TurnsRatios {
		v, ok := r.GetNominal()
		require.True(t, ok)
		ratios[i] = v
	}
	l, has := dr.MagnetizingInductance.GetNominal()
	require.True(t, has)

	ops, err := f.ProcessOperatingPoints(ratios, l)
	require.NoError(t, err)
	require.NotEmpty(t, ops)

	for _, op := range ops {
		require.Len(t, op.ExcitationsPerWinding, 3) // primary + 2 secondaries
		primary := op.ExcitationsPerWinding[0]
		assert.Equal(t, LabelFlybackPrimary, primary.Current.Waveform.Label)
		// CCM: the on-phase ramp starts from a nonzero current (the
		// waveform is 0 during the off-phase, so the sampled minimum is 0).
		assert.Greater(t, primary.Current.Waveform.Params.Offset, 0.0)
		vp, err := primary.Voltage.GetProcessed()
		require.NoError(t, err)
		assert.Greater(t, vp.Peak, 0.0)

		for i := 1; i < len(op.ExcitationsPerWinding); i++ {
			sec := op.ExcitationsPerWinding[i]
			assert.Equal(t, LabelSecondaryRectangular, sec.Voltage.Waveform.Label)
			assert.Equal(t, LabelFlybackSecondary, sec.Current.Waveform.Label)
			cp, err := sec.Current.GetProcessed()
			require.NoError(t, err)
			wanted := f.OperatingPoints[0].OutputCurrents[i-1]
			assert.InDelta(t, wanted, cp.Average, wanted*0.5)
		}
	}
}

// TestFlybackScenarioDDCMEndToEnd is Scenario C with ripple raised to
// 1.0, forcing every operating point to resolve to DCM.
func TestFlybackScenarioDDCMEndToEnd(t *testing.T) {
	f := scenarioCFlyback(1.0)
	dr, err := f.ProcessDesignRequirements()
	require.NoError(t, err)
	ratios := make([]float64, len(dr.TurnsRatios))
	for i, r := range dr.TurnsRatios {
		v, _ := r.GetNominal()
		ratios[i] = v
	}
	l, has := dr.MagnetizingInductance.GetNominal()
	require.True(t, has)

	ops, err := f.ProcessOperatingPoints(ratios, l)
	require.NoError(t, err)
	require.NotEmpty(t, ops)

	for _, op := range ops {
		primary := op.ExcitationsPerWinding[0]
		assert.Equal(t, LabelRectangularWithDeadtime, primary.Voltage.Waveform.Label)
		assert.Equal(t, LabelFlybackPrimaryWithDeadtime, primary.Current.Waveform.Label)
		assert.InDelta(t, 0, sampleMin(primary.Current.Waveform.Sample(1024)), 1e-6)

		for i := 1; i < len(op.ExcitationsPerWinding); i++ {
			sec := op.ExcitationsPerWinding[i]
			assert.Equal(t, LabelSecondaryRectangularWithDeadtime, sec.Voltage.Waveform.Label)
			assert.Equal(t, LabelFlybackSecondaryWithDeadtime, sec.Current.Waveform.Label)
		}
	}
}

func TestFlybackRejectsInvalidMaxDutyCycle(t *testing.T) {
	f := nominalFlyback(0.5)
	bad := 1.2
	f.MaxDutyCycle = &bad
	_, err := f.ProcessDesignRequirements()
	require.Error(t, err)
	assert.Equal(t, InvalidDesignRequirements, err.(*Error).Kind)
}
