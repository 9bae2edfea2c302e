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

// BuckOperatingPoint is one user-specified buck operating point (§4.2.1).
type BuckOperatingPoint struct {
	OutputVoltage      float64
	OutputCurrent      float64
	SwitchingFrequency float64
	AmbientTemperature float64
}

// Buck derives design requirements and per-corner operating points for a
// non-isolated buck converter (§4.2.1).
type Buck struct {
	InputVoltage        DimWithTol
	DiodeVoltageDrop    float64
	Efficiency          *float64 // defaults to 1 when nil
	CurrentRippleRatio  *float64
	MaximumSwitchCurrent *float64
	OperatingPoints     []BuckOperatingPoint
}

func (b Buck) efficiency() float64 {
	if b.Efficiency != nil {
		return *b.Efficiency
	}
	return 1
}

// calculateDutyCycle implements D = (Vout+Vd) / ((Vin+Vd)*eta); fails if
// D >= 1 (§4.2.1).
func (b Buck) calculateDutyCycle(inputVoltage, outputVoltage float64) (float64, error) {
	d := (outputVoltage + b.DiodeVoltageDrop) / ((inputVoltage + b.DiodeVoltageDrop) * b.efficiency())
	if d >= 1 {
		return 0, NewError(InvalidInput, "Buck.calculateDutyCycle", nil)
	}
	return d, nil
}

// RunChecks implements §4.8 for Buck.
func (b Buck) RunChecks(assert bool) (bool, error) {
	return RunChecksCommon(len(b.OperatingPoints), b.InputVoltage, assert)
}

// ProcessDesignRequirements derives L_min across every operating point
// from either a current-ripple ratio or a maximum switch current
// (§4.2.1).
func (b Buck) ProcessDesignRequirements() (DesignRequirements, error) {
	if b.CurrentRippleRatio == nil && b.MaximumSwitchCurrent == nil {
		return DesignRequirements{}, NewError(InvalidDesignRequirements, "Buck.ProcessDesignRequirements", nil)
	}
	maxInput, ok := b.InputVoltage.Maximum, true
	if maxInput == nil {
		nominal, has := b.InputVoltage.GetNominal()
		if !has {
			return DesignRequirements{}, NewError(MissingData, "Buck.ProcessDesignRequirements", nil)
		}
		maxInput = &nominal
		ok = true
	}
	_ = ok

	maxOutputCurrent := 0.0
	for _, op := range b.OperatingPoints {
		maxOutputCurrent = math.Max(maxOutputCurrent, op.OutputCurrent)
	}

	var maxRipple float64
	if b.CurrentRippleRatio != nil {
		maxRipple = *b.CurrentRippleRatio * maxOutputCurrent
	}
	if b.MaximumSwitchCurrent != nil {
		maxRipple = (*b.MaximumSwitchCurrent - maxOutputCurrent) * 2
	}

	maxL := 0.0
	for _, op := range b.OperatingPoints {
		l := op.OutputVoltage * (*maxInput - op.OutputVoltage) / (maxRipple * op.SwitchingFrequency * (*maxInput))
		maxL = math.Max(maxL, l)
	}

	return DesignRequirements{
		MagnetizingInductance: DimMin(maxL),
		TurnsRatios:           nil,
		IsolationSides:        []IsolationSide{SidePrimary},
		Topology:              TopologyBuck,
	}, nil
}

// processOne derives the OperatingPoint for one (inputVoltage, op)
// corner, implementing CCM/DCM waveform assembly (§4.2.1).
func (b Buck) processOne(inputVoltage float64, op BuckOperatingPoint, inductance float64) (OperatingPoint, error) {
	D, err := b.calculateDutyCycle(inputVoltage, op.OutputVoltage)
	if err != nil {
		return OperatingPoint{}, err
	}
	f := op.SwitchingFrequency
	tOn := D / f
	deltaIL := (inputVoltage - op.OutputVoltage) * tOn / inductance
	iMin := op.OutputCurrent - deltaIL/2

	vLow := -op.OutputVoltage - b.DiodeVoltageDrop
	vHigh := inputVoltage - op.OutputVoltage
	vPP := vHigh - vLow

	var current, voltage Waveform
	if iMin < 0 {
		tOn = math.Sqrt(2 * op.OutputCurrent * inductance * (op.OutputVoltage + b.DiodeVoltageDrop) /
			(f * (inputVoltage - op.OutputVoltage) * (inputVoltage + b.DiodeVoltageDrop)))
		tOff := tOn * ((inputVoltage+b.DiodeVoltageDrop)/(op.OutputVoltage+b.DiodeVoltageDrop) - 1)
		deadTime := 1/f - tOn - tOff
		deltaIL = (inputVoltage - op.OutputVoltage) * tOn / inductance
		offset := deltaIL / 2

		current = BuildAnalytical(LabelTriangularWithDeadtime, WaveformParams{
			Amplitude: deltaIL, Duty: D, Offset: offset, DeadTime: deadTime,
		}, f)
		voltage = BuildAnalytical(LabelRectangularWithDeadtime, WaveformParams{
			Amplitude: vPP, Duty: D, Offset: 0, DeadTime: deadTime,
		}, f)
	} else {
		current = BuildAnalytical(LabelTriangular, WaveformParams{
			Amplitude: deltaIL, Duty: D, Offset: op.OutputCurrent,
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
func (b Buck) ProcessOperatingPoints(turnsRatios []float64, magnetizingInductance float64) ([]OperatingPoint, error) {
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
func (b Buck) ProcessOperatingPointsFromMagnetic(magnetic Magnetic, model MagnetizingInductanceModel) ([]OperatingPoint, error) {
	if _, err := b.RunChecks(false); err != nil {
		return nil, err
	}
	result, err := model.CalculateInductanceFromNumberTurnsAndGapping(magnetic.Core, magnetic.Coil)
	if err != nil {
		return nil, err
	}
	l, ok := result.MagnetizingInductance.GetNominal()
	if !ok {
		return nil, NewError(MissingData, "Buck.ProcessOperatingPointsFromMagnetic", nil)
	}
	return b.ProcessOperatingPoints(magnetic.TurnsRatios(), l)
}
