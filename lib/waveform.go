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

	"gonum.org/v1/gonum/dsp/fourier"
)

// WaveformLabel names an analytical waveform shape (§3).
type WaveformLabel int

const (
	LabelCustom WaveformLabel = iota
	LabelRectangular
	LabelRectangularWithDeadtime
	LabelSecondaryRectangular
	LabelSecondaryRectangularWithDeadtime
	LabelTriangular
	LabelTriangularWithDeadtime
	LabelFlybackPrimary
	LabelFlybackPrimaryWithDeadtime
	LabelFlybackSecondary
	LabelFlybackSecondaryWithDeadtime
	LabelSinusoidal
)

func (l WaveformLabel) String() string {
	switch l {
	case LabelRectangular:
		return "RECTANGULAR"
	case LabelRectangularWithDeadtime:
		return "RECTANGULAR_WITH_DEADTIME"
	case LabelSecondaryRectangular:
		return "SECONDARY_RECTANGULAR"
	case LabelSecondaryRectangularWithDeadtime:
		return "SECONDARY_RECTANGULAR_WITH_DEADTIME"
	case LabelTriangular:
		return "TRIANGULAR"
	case LabelTriangularWithDeadtime:
		return "TRIANGULAR_WITH_DEADTIME"
	case LabelFlybackPrimary:
		return "FLYBACK_PRIMARY"
	case LabelFlybackPrimaryWithDeadtime:
		return "FLYBACK_PRIMARY_WITH_DEADTIME"
	case LabelFlybackSecondary:
		return "FLYBACK_SECONDARY"
	case LabelFlybackSecondaryWithDeadtime:
		return "FLYBACK_SECONDARY_WITH_DEADTIME"
	case LabelSinusoidal:
		return "SINUSOIDAL"
	default:
		return "CUSTOM"
	}
}

// WaveformParams holds the parameters for every analytical label; only
// the subset relevant to a given label is consulted.
type WaveformParams struct {
	Amplitude float64 // Vpp or Ipp (or amp for SINUSOIDAL)
	Duty      float64 // D, fraction of period in the ON state
	Offset    float64
	DeadTime  float64 // delta, seconds
}

// Waveform is either an analytical (label, params, frequency) triple, or
// a sampled (time, value) sequence. processed() and harmonics() are
// lazily computed and cached; Sample replaces the cache.
type Waveform struct {
	Label     WaveformLabel
	Params    WaveformParams
	Frequency float64

	// Sampled form, when not analytical (Label == LabelCustom) or after
	// Sample() has been called for caching.
	times  []float64
	values []float64

	processed *Processed
	harmonics *Harmonics
}

// BuildAnalytical constructs an analytical periodic Waveform (§4.1).
func BuildAnalytical(label WaveformLabel, p WaveformParams, frequency float64) Waveform {
	return Waveform{Label: label, Params: p, Frequency: frequency}
}

// BuildSampled wraps an explicit (time, value) sequence, as returned by
// the external transient solver (§4.7).
func BuildSampled(times, values []float64, frequency float64) Waveform {
	return Waveform{Label: LabelCustom, Frequency: frequency, times: times, values: values}
}

// nextPow2 rounds n up to the next power of two, with a floor of 128
// (§4.1: "n is rounded up to the next power of two, minimum 128").
func nextPow2(n int) int {
	if n < 128 {
		n = 128
	}
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}

// eval evaluates the analytical waveform at phase t in [0, 1/f).
func (w *Waveform) eval(t float64) float64 {
	f := w.Frequency
	period := 1 / f
	D := w.Params.Duty
	amp := w.Params.Amplitude
	off := w.Params.Offset
	delta := w.Params.DeadTime
	tOn := D * period

	switch w.Label {
	case LabelRectangular:
		if t < tOn {
			return off + amp/2
		}
		return off - amp/2
	case LabelRectangularWithDeadtime:
		tOff := period - tOn - delta
		if t < tOn {
			return off + amp/2
		} else if t < tOn+tOff {
			return off - amp/2
		}
		return 0
	case LabelSecondaryRectangular:
		if t < tOn {
			return off - amp/2
		}
		return off + amp/2
	case LabelSecondaryRectangularWithDeadtime:
		tOff := period - tOn - delta
		if t < tOn {
			return off - amp/2
		} else if t < tOn+tOff {
			return off + amp/2
		}
		return 0
	case LabelTriangular:
		if t < tOn {
			return off - amp/2 + amp*(t/tOn)
		}
		tOff := period - tOn
		return off + amp/2 - amp*((t-tOn)/tOff)
	case LabelTriangularWithDeadtime:
		tOff := period - tOn - delta
		if t < tOn {
			return off - amp/2 + amp*(t/tOn)
		} else if t < tOn+tOff {
			return off + amp/2 - amp*((t-tOn)/tOff)
		}
		return 0
	case LabelFlybackPrimary, LabelFlybackPrimaryWithDeadtime:
		if t < tOn {
			return off + amp*(t/tOn)
		}
		return 0
	case LabelFlybackSecondary, LabelFlybackSecondaryWithDeadtime:
		tOff := period - tOn - delta
		if t < tOn {
			return 0
		} else if t < tOn+tOff {
			return off + amp - amp*((t-tOn)/tOff)
		}
		return 0
	case LabelSinusoidal:
		return off + amp*math.Sin(2*math.Pi*f*t)
	default:
		return 0
	}
}

// Sample returns n uniformly-spaced samples over one period, with n
// rounded up to the next power of two (minimum 128). The sampled form
// and any cached processed/harmonics data are replaced.
func (w *Waveform) Sample(n int) []float64 {
	n = nextPow2(n)
	period := 1 / w.Frequency
	times := make([]float64, n)
	values := make([]float64, n)
	if w.Label == LabelCustom && len(w.values) > 0 {
		// resample the existing custom sequence by nearest-index lookup.
		m := len(w.values)
		for i := 0; i < n; i++ {
			t := float64(i) / float64(n) * period
			times[i] = t
			idx := int(float64(i) / float64(n) * float64(m))
			if idx >= m {
				idx = m - 1
			}
			values[i] = w.values[idx]
		}
	} else {
		for i := 0; i < n; i++ {
			t := float64(i) / float64(n) * period
			times[i] = t
			values[i] = w.eval(t)
		}
	}
	w.times = times
	w.values = values
	w.processed = nil
	w.harmonics = nil
	return values
}

// Processed holds the lazily-computed derived attributes of a Waveform
// (§3, §4.1).
type Processed struct {
	Peak              float64
	PeakToPeak        float64
	Offset            float64
	RMS               float64
	Average           float64
	DutyCycle         float64
	HasDutyCycle      bool
	EffectiveFrequency float64
	Label             WaveformLabel
}

// pulseLike reports whether a label has a meaningful duty cycle.
func pulseLike(l WaveformLabel) bool {
	switch l {
	case LabelRectangular, LabelRectangularWithDeadtime,
		LabelSecondaryRectangular, LabelSecondaryRectangularWithDeadtime,
		LabelTriangular, LabelTriangularWithDeadtime,
		LabelFlybackPrimary, LabelFlybackPrimaryWithDeadtime,
		LabelFlybackSecondary, LabelFlybackSecondaryWithDeadtime:
		return true
	default:
		return false
	}
}

// Processed computes (and caches) the derived attributes from the
// waveform's sampled representation, sampling with a default resolution
// if no sample cache exists yet.
func (w *Waveform) Processed() Processed {
	if w.processed != nil {
		return *w.processed
	}
	if len(w.values) == 0 {
		w.Sample(1024)
	}
	n := len(w.values)

	var sum, sumAbs, sumSq, max, min float64
	max, min = w.values[0], w.values[0]
	for _, y := range w.values {
		sum += y
		sumAbs += math.Abs(y)
		sumSq += y * y
		if y > max {
			max = y
		}
		if y < min {
			min = y
		}
	}
	offset := sum / float64(n)
	rms := math.Sqrt(sumSq / float64(n))
	average := sumAbs / float64(n)
	peak := max
	if math.Abs(min) > math.Abs(max) {
		peak = min
	}
	p := Processed{
		Peak:       peak,
		PeakToPeak: max - min,
		Offset:     offset,
		RMS:        rms,
		Average:    average,
		Label:      w.Label,
	}
	if pulseLike(w.Label) {
		above := 0
		for _, y := range w.values {
			if y > offset {
				above++
			}
		}
		p.DutyCycle = float64(above) / float64(n)
		p.HasDutyCycle = true
	}

	h := w.Harmonics()
	var numEff, denEff float64
	for k := 1; k < len(h.Frequencies); k++ {
		a := h.Amplitudes[k]
		numEff += a * a * h.Frequencies[k] * h.Frequencies[k]
		denEff += a * a
	}
	if denEff > 0 {
		p.EffectiveFrequency = math.Sqrt(numEff / denEff)
	} else {
		p.EffectiveFrequency = w.Frequency
	}

	w.processed = &p
	return p
}

// Harmonics is a pair of equal-length (frequency, amplitude) sequences,
// frequencies[0] == 0 being the DC component (§3).
type Harmonics struct {
	Frequencies []float64
	Amplitudes  []float64
}

// Harmonics runs a real DFT over the sampled waveform at its current
// sample count (no padding; an unsampled waveform is first sampled with
// Sample(1024)) to produce harmonic amplitudes, caching the result.
func (w *Waveform) Harmonics() Harmonics {
	if w.harmonics != nil {
		return *w.harmonics
	}
	if len(w.values) == 0 {
		w.Sample(1024)
	}
	n := len(w.values)
	fft := fourier.NewFFT(n)
	coeffs := fft.Coefficients(nil, w.values)

	freqs := make([]float64, len(coeffs))
	amps := make([]float64, len(coeffs))
	df := w.Frequency
	for k, c := range coeffs {
		freqs[k] = float64(k) * df
		mag := math.Hypot(real(c), imag(c)) / float64(n)
		if k != 0 {
			mag *= 2
		}
		amps[k] = mag
	}
	h := Harmonics{Frequencies: freqs, Amplitudes: amps}
	w.harmonics = &h
	return h
}

// PruneHarmonics removes, from h, any harmonic k>=1 whose amplitude is
// below threshold*max_k(amplitudes[k]) (the max taken over k>=1, k
// starting at minIndex). Called from CompleteExcitation on every signal
// it builds.
func PruneHarmonics(h Harmonics, threshold float64, minIndex int) Harmonics {
	if minIndex < 1 {
		minIndex = 1
	}
	var maxAmp float64
	for k := minIndex; k < len(h.Amplitudes); k++ {
		if h.Amplitudes[k] > maxAmp {
			maxAmp = h.Amplitudes[k]
		}
	}
	freqs := []float64{h.Frequencies[0]}
	amps := []float64{h.Amplitudes[0]}
	for k := minIndex; k < len(h.Amplitudes); k++ {
		if h.Amplitudes[k] >= threshold*maxAmp {
			freqs = append(freqs, h.Frequencies[k])
			amps = append(amps, h.Amplitudes[k])
		}
	}
	return Harmonics{Frequencies: freqs, Amplitudes: amps}
}
