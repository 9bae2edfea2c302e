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

import "math"

// BoostOperatingPoint is one user-specified boost operating point
// (§4.2.2).
type BoostOperatingPoint struct {
	OutputVoltage      float64
	OutputCurrent      float64
	SwitchingFrequency float64
	AmbientTemperature float64
}

// Boost derives design requirements and per-corner operating points for
// a non-isolated boost converter (§4.2.2).
type Boost struct {
	InputVoltage         DimWithTol
	DiodeVoltageDrop     float64
	Efficiency           *float64
	CurrentRippleRatio   *float64
	MaximumSwitchCurrent *float64
	OperatingPoints      []BoostOperatingPoint
}

func (b Boost) efficiency() float64 {
	if b.Efficiency != nil {
		return *b.Efficiency
	}
	return 1
}

// calculateDutyCycle implements D = 1 - Vin*eta/(Vout+Vd) (§4.2.2).
func (b Boost) calculateDutyCycle(inputVoltage, outputVoltage float64) (float64, error) {
	d := 1 - inputVoltage*b.efficiency()/(outputVoltage+b.DiodeVoltageDrop)
	if d >= 1 {
		return 0, NewError(InvalidInput, "Boost.calculateDutyCycle", nil)
	}
	return d, nil
}

// RunChecks implements §4.8 for Boost.
func (b Boost) RunChecks(assert bool) (bool, error) {
	return RunChecksCommon(len(b.OperatingPoints), b.InputVoltage, assert)
}

// ProcessDesignRequirements derives L_min = max_op Vin_max*(Vout -
// Vin_max) / (dI_max*f*Vout) (§4.2.2).
func (b Boost) ProcessDesignRequirements() (DesignRequirements, error) {
	if b.CurrentRippleRatio == nil && b.MaximumSwitchCurrent == nil {
		return DesignRequirements{}, NewError(InvalidDesignRequirements, "Boost.ProcessDesignRequirements", nil)
	}
	minInput, hasMin := b.InputVoltage.Minimum, b.InputVoltage.Minimum != nil
	maxInput, hasMax := b.InputVoltage.Maximum, b.InputVoltage.Maximum != nil
	if !hasMax {
		v, ok := b.InputVoltage.GetNominal()
		if !ok {
			return DesignRequirements{}, NewError(MissingData, "Boost.ProcessDesignRequirements", nil)
		}
		maxInput = &v
	}
	if !hasMin {
		minInput = maxInput
	}

	var maxRipple float64
	if b.CurrentRippleRatio != nil {
		maxOutputCurrent := 0.0
		for _, op := range b.OperatingPoints {
			maxOutputCurrent = math.Max(maxOutputCurrent, op.OutputCurrent)
		}
		maxRipple = *b.CurrentRippleRatio * maxOutputCurrent
	}
	if b.MaximumSwitchCurrent != nil {
		for _, op := range b.OperatingPoints {
			d, err := b.calculateDutyCycle(*minInput, op.OutputVoltage)
			if err != nil {
				return DesignRequirements{}, err
			}
			r := (*b.MaximumSwitchCurrent - op.OutputCurrent/(1-d)) * 2
			maxRipple = math.Max(maxRipple, r)
		}
	}

	maxL := 0.0
	for _, op := range b.OperatingPoints {
		l := (*maxInput) * (op.OutputVoltage - *maxInput) / (maxRipple * op.SwitchingFrequency * op.OutputVoltage)
		maxL = math.Max(maxL, l)
	}

	return DesignRequirements{
		MagnetizingInductance: DimMin(maxL),
		IsolationSides:        []IsolationSide{SidePrimary},
		Topology:              TopologyBoost,
	}, nil
}

func (b Boost) processOne(inputVoltage float64, op BoostOperatingPoint, inductance float64) (OperatingPoint, error) {
	D, err := b.calculateDutyCycle(inputVoltage, op.OutputVoltage)
	if err != nil {
		return OperatingPoint{}, err
	}
	f := op.SwitchingFrequency
	tOn := D / f
	deltaIL := inputVoltage * tOn / inductance
	iAvg := op.OutputCurrent * (op.OutputVoltage + b.DiodeVoltageDrop) / inputVoltage
	iMin := iAvg - deltaIL/2

	vMin := inputVoltage - op.OutputVoltage - b.DiodeVoltageDrop
	vMax := inputVoltage
	vPP := vMax - vMin

	var current, voltage Waveform
	if iMin < 0 {
		tOn = math.Sqrt(2 * op.OutputCurrent * inductance * (op.OutputVoltage + b.DiodeVoltageDrop - inputVoltage) /
			(f * inputVoltage * inputVoltage))
		tOff := tOn * ((op.OutputVoltage+b.DiodeVoltageDrop)/(op.OutputVoltage+b.DiodeVoltageDrop-inputVoltage) - 1)
		deadTime := 1/f - tOn - tOff
		offset := deltaIL / 2

		current = BuildAnalytical(LabelTriangularWithDeadtime, WaveformParams{
			Amplitude: deltaIL, Duty: D, Offset: offset, DeadTime: deadTime,
		}, f)
		voltage = BuildAnalytical(LabelRectangularWithDeadtime, WaveformParams{
			Amplitude: vPP, Duty: D, Offset: 0, DeadTime: deadTime,
		}, f)
	} else {
		current = BuildAnalytical(LabelTriangular, WaveformParams{
			Amplitude: deltaIL, Duty: D, Offset: iAvg,
		}, f)
		voltage = BuildAnalytical(LabelRectangular, WaveformParams{
			Amplitude: vPP, Duty: D, Offset: 0,
		}, f)
	}

	excitation := CompleteExcitation("Primary", f, current, voltage)
	return OperatingPoint{
		Conditions:           OperatingConditions{AmbientTemperature: op.AmbientTemperature},
		ExcitationsPerWinding: []OperatingPointExcitation{excitation},
	}, nil
}

// ProcessOperatingPoints derives one OperatingPoint per (input-voltage
// corner, user operating point) pair (§4.2).
func (b Boost) ProcessOperatingPoints(turnsRatios []float64, magnetizingInductance float64) ([]OperatingPoint, error) {
	var out []OperatingPoint
	for _, c := range inputVoltageCorners(b.InputVoltage) {
		for i, op := range b.OperatingPoints {
			result, err := b.processOne(c.Value, op, magnetizingInductance)
			if err != nil {
				return nil, err
			}
			result.Name = opName(c.Corner, i, len(b.OperatingPoints))
			out = append(out, result)
		}
	}
	return out, nil
}

// ProcessOperatingPointsFromMagnetic resolves L from a built Magnetic via
// the external magnetising-inductance model (§6), then delegates.
func (b Boost) ProcessOperatingPointsFromMagnetic(magnetic Magnetic, model MagnetizingInductanceModel) ([]OperatingPoint, error) {
	if _, err := b.RunChecks(false); err != nil {
		return nil, err
	}
	result, err := model.CalculateInductanceFromNumberTurnsAndGapping(magnetic.Core, magnetic.Coil)
	if err != nil {
		return nil, err
	}
	l, ok := result.MagnetizingInductance.GetNominal()
	if !ok {
		return nil, NewError(MissingData, "Boost.ProcessOperatingPointsFromMagnetic", nil)
	}
	return b.ProcessOperatingPoints(magnetic.TurnsRatios(), l)
}
