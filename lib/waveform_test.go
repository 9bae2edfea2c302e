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
	"pgregory.net/rapid"
)

// sampleMin returns the minimum of vals, a small helper shared by the
// end-to-end converter scenario tests to check a waveform's trough.
func sampleMin(vals []float64) float64 {
	m := vals[0]
	for _, v := range vals {
		if v < m {
			m = v
		}
	}
	return m
}

func TestNextPow2(t *testing.T) {
	assert.Equal(t, 128, nextPow2(1))
	assert.Equal(t, 128, nextPow2(128))
	assert.Equal(t, 256, nextPow2(129))
	assert.Equal(t, 256, nextPow2(256))
}

func TestSampleRoundsUpAndSetsTimes(t *testing.T) {
	w := BuildAnalytical(LabelSinusoidal, WaveformParams{Amplitude: 10}, 1000)
	values := w.Sample(100)
	require.Len(t, values, 128)
	assert.Len(t, w.times, 128)
	assert.InDelta(t, 0, w.times[0], 1e-12)
}

func TestRectangularDutyCycle(t *testing.T) {
	w := BuildAnalytical(LabelRectangular, WaveformParams{Amplitude: 20, Duty: 0.25}, 100e3)
	p := w.Processed()
	require.True(t, p.HasDutyCycle)
	assert.InDelta(t, 0.25, p.DutyCycle, 0.02)
	assert.InDelta(t, 20, p.PeakToPeak, 1e-6)
}

func TestSinusoidalRMS(t *testing.T) {
	w := BuildAnalytical(LabelSinusoidal, WaveformParams{Amplitude: 10}, 1000)
	p := w.Processed()
	assert.InDelta(t, 10/sqrt2, p.RMS, 0.05)
	assert.False(t, p.HasDutyCycle)
}

const sqrt2 = 1.4142135623730951

func TestBuildSampledResample(t *testing.T) {
	times := []float64{0, 1, 2, 3}
	values := []float64{1, 2, 3, 4}
	w := BuildSampled(times, values, 1000)
	out := w.Sample(128)
	require.Len(t, out, 128)
	assert.InDelta(t, 1, out[0], 1e-9)
}

func TestHarmonicsDCComponent(t *testing.T) {
	w := BuildAnalytical(LabelSinusoidal, WaveformParams{Amplitude: 5, Offset: 2}, 1000)
	h := w.Harmonics()
	require.NotEmpty(t, h.Frequencies)
	assert.InDelta(t, 0, h.Frequencies[0], 1e-9)
	assert.InDelta(t, 2, h.Amplitudes[0], 0.05)
}

func TestSampleRapidAlwaysPowerOfTwoAtLeast128(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(1, 5000).Draw(rt, "n")
		w := BuildAnalytical(LabelTriangular, WaveformParams{Amplitude: 1, Duty: 0.5}, 50e3)
		out := w.Sample(n)
		count := len(out)
		assert.GreaterOrEqual(t, count, 128)
		assert.Zero(t, count&(count-1))
	})
}
