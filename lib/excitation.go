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

// SignalDescriptor bundles a waveform with its (possibly absent) derived
// attributes (§3). Any subset may be nil; GetProcessed/GetHarmonics
// compute it on demand from Waveform if possible.
type SignalDescriptor struct {
	Waveform  *Waveform
	processed *Processed
	harmonics *Harmonics
}

// NewSignal wraps a waveform into a descriptor with no precomputed
// attributes.
func NewSignal(w Waveform) *SignalDescriptor {
	return &SignalDescriptor{Waveform: &w}
}

// GetProcessed returns the processed attributes, computing them from
// Waveform if absent. Returns MissingData if no waveform is present.
func (s *SignalDescriptor) GetProcessed() (Processed, error) {
	if s == nil {
		return Processed{}, NewError(MissingData, "SignalDescriptor.GetProcessed", nil)
	}
	if s.processed != nil {
		return *s.processed, nil
	}
	if s.Waveform == nil {
		return Processed{}, NewError(MissingData, "SignalDescriptor.GetProcessed", nil)
	}
	p := s.Waveform.Processed()
	s.processed = &p
	return p, nil
}

// GetHarmonics returns the harmonics, computing them from Waveform if
// absent.
func (s *SignalDescriptor) GetHarmonics() (Harmonics, error) {
	if s == nil {
		return Harmonics{}, NewError(MissingData, "SignalDescriptor.GetHarmonics", nil)
	}
	if s.harmonics != nil {
		return *s.harmonics, nil
	}
	if s.Waveform == nil {
		return Harmonics{}, NewError(MissingData, "SignalDescriptor.GetHarmonics", nil)
	}
	h := s.Waveform.Harmonics()
	s.harmonics = &h
	return h, nil
}

// SetHarmonics attaches precomputed harmonics (e.g. after pruning).
func (s *SignalDescriptor) SetHarmonics(h Harmonics) { s.harmonics = &h }

// OperatingPointExcitation packages current, voltage and (induced)
// magnetising-current signals for one winding at one operating point
// (§3). Invariant: when all waveform frequencies are present they equal
// Frequency.
type OperatingPointExcitation struct {
	Name               string
	Frequency          float64
	Voltage            *SignalDescriptor
	Current            *SignalDescriptor
	MagnetizingCurrent *SignalDescriptor
}

// Validate checks the frequency-consistency invariant.
func (e OperatingPointExcitation) Validate() error {
	check := func(s *SignalDescriptor) error {
		if s == nil || s.Waveform == nil {
			return nil
		}
		if s.Waveform.Frequency != e.Frequency {
			return NewError(InvalidInput, "OperatingPointExcitation.Validate", nil)
		}
		return nil
	}
	if err := check(e.Voltage); err != nil {
		return err
	}
	if err := check(e.Current); err != nil {
		return err
	}
	return check(e.MagnetizingCurrent)
}

// CompleteExcitation builds an excitation from current+voltage waveforms
// at the given frequency, the common helper used by every converter
// model after assembling its per-winding waveforms. Harmonics below
// HarmonicAmplitudeThreshold are pruned from both signals immediately,
// so every excitation this package produces carries pruned harmonics
// rather than the raw DFT output.
func CompleteExcitation(name string, frequency float64, current, voltage Waveform) OperatingPointExcitation {
	e := OperatingPointExcitation{
		Name:      name,
		Frequency: frequency,
		Current:   NewSignal(current),
		Voltage:   NewSignal(voltage),
	}
	if h, err := e.Current.GetHarmonics(); err == nil {
		e.Current.SetHarmonics(PruneHarmonics(h, HarmonicAmplitudeThreshold, 1))
	}
	if h, err := e.Voltage.GetHarmonics(); err == nil {
		e.Voltage.SetHarmonics(PruneHarmonics(h, HarmonicAmplitudeThreshold, 1))
	}
	return e
}

// OperatingConditions carries the ambient conditions of one operating
// point (§3).
type OperatingConditions struct {
	AmbientTemperature float64
	Cooling            *string
}

// OperatingPoint bundles per-winding excitations under one name and
// condition set (§3). W (winding count) must be >= 1.
type OperatingPoint struct {
	Name                 string
	Conditions           OperatingConditions
	ExcitationsPerWinding []OperatingPointExcitation
}
