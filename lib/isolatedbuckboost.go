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

// IsolatedBuckBoostOperatingPoint is one user-specified operating point,
// OutputVoltages/OutputCurrents both of length S (§4.2.4).
type IsolatedBuckBoostOperatingPoint struct {
	OutputVoltages     []float64
	OutputCurrents     []float64
	SwitchingFrequency float64
	AmbientTemperature float64
}

// IsolatedBuckBoost derives design requirements and per-corner operating
// points for an isolated buck-boost converter: a TRIANGULAR primary
// (inductor) and one FLYBACK_PRIMARY-shaped secondary per output,
// rising during the main switch's OFF-time (§4.2.4).
type IsolatedBuckBoost struct {
	InputVoltage         DimWithTol
	DiodeVoltageDrop     float64
	Efficiency           *float64
	MaximumSwitchCurrent *float64
	OperatingPoints      []IsolatedBuckBoostOperatingPoint
}

func (c IsolatedBuckBoost) efficiency() float64 {
	if c.Efficiency != nil {
		return *c.Efficiency
	}
	return 1
}

func (c IsolatedBuckBoost) numberSecondaries() int {
	if len(c.OperatingPoints) == 0 {
		return 0
	}
	return len(c.OperatingPoints[0].OutputVoltages)
}

// RunChecks implements §4.8.
func (c IsolatedBuckBoost) RunChecks(assert bool) (bool, error) {
	if ok, err := RunChecksCommon(len(c.OperatingPoints), c.InputVoltage, assert); !ok {
		return ok, err
	}
	n := c.numberSecondaries()
	for _, op := range c.OperatingPoints {
		if len(op.OutputVoltages) != n || len(op.OutputCurrents) != n {
			err := NewError(InvalidDesignRequirements, "IsolatedBuckBoost.RunChecks", nil)
			if assert {
				panic(err)
			}
			return false, err
		}
	}
	return true, nil
}

// calculateDutyCycle implements D = Vout_1*eta / (Vin + Vout_1) (§4.2.4).
func (c IsolatedBuckBoost) calculateDutyCycle(inputVoltage, vOut1 float64) (float64, error) {
	d := vOut1 * c.efficiency() / (inputVoltage + vOut1)
	if d >= 1 {
		return 0, NewError(InvalidInput, "IsolatedBuckBoost.calculateDutyCycle", nil)
	}
	return d, nil
}

// turnsRatios derives one ratio per isolated secondary winding (indices
// 1..S-1 of OutputVoltages/OutputCurrents); OutputVoltages[0] is the
// primary (inductor) side's own output, not a winding of its own, so
// there are S-1 ratios for S declared outputs (§4.2.4).
func (c IsolatedBuckBoost) turnsRatios() []float64 {
	op := c.OperatingPoints[0]
	ratios := make([]float64, len(op.OutputVoltages)-1)
	for i := 1; i < len(op.OutputVoltages); i++ {
		ratios[i-1] = op.OutputVoltages[0] / (op.OutputVoltages[i] + c.DiodeVoltageDrop)
	}
	return ratios
}

// ProcessDesignRequirements derives the inductance requirement (from
// either a current-ripple implied by MaximumSwitchCurrent, mirroring
// Buck's derivation, or a fallback default ripple ratio) and the turns
// ratios of OutputVoltages[0] against each further output (§4.2.4).
func (c IsolatedBuckBoost) ProcessDesignRequirements() (DesignRequirements, error) {
	if len(c.OperatingPoints) == 0 {
		return DesignRequirements{}, NewError(MissingData, "IsolatedBuckBoost.ProcessDesignRequirements", nil)
	}
	maxInput, ok := c.InputVoltage.Maximum, c.InputVoltage.Maximum != nil
	if !ok {
		v, has := c.InputVoltage.GetNominal()
		if !has {
			return DesignRequirements{}, NewError(MissingData, "IsolatedBuckBoost.ProcessDesignRequirements", nil)
		}
		maxInput = &v
	}

	op0 := c.OperatingPoints[0]
	maxOutputCurrent := 0.0
	for _, c := range op0.OutputCurrents {
		maxOutputCurrent = math.Max(maxOutputCurrent, c)
	}

	var maxRipple float64
	if c.MaximumSwitchCurrent != nil {
		maxRipple = (*c.MaximumSwitchCurrent - maxOutputCurrent) * 2
	} else {
		maxRipple = 0.3 * maxOutputCurrent
	}
	if maxRipple <= 0 {
		maxRipple = eps
	}

	maxL := 0.0
	for _, op := range c.OperatingPoints {
		d, err := c.calculateDutyCycle(*maxInput, op.OutputVoltages[0])
		if err != nil {
			return DesignRequirements{}, err
		}
		l := op.OutputVoltages[0] * d / (maxRipple * op.SwitchingFrequency)
		maxL = math.Max(maxL, l)
	}

	ratios := c.turnsRatios()
	n := len(ratios)
	tr := make([]DimWithTol, n)
	for i, r := range ratios {
		tr[i] = DimNominal(r)
	}
	isoSides := make([]IsolationSide, n+1)
	isoSides[0] = SidePrimary
	for i := 1; i <= n; i++ {
		isoSides[i] = SideSecondary
	}

	return DesignRequirements{
		MagnetizingInductance: DimMin(maxL),
		TurnsRatios:           tr,
		IsolationSides:        isoSides,
		Topology:              TopologyIsolatedBuckBoost,
	}, nil
}

func (c IsolatedBuckBoost) processOne(inputVoltage float64, op IsolatedBuckBoostOperatingPoint, ratios []float64, inductance float64) (OperatingPoint, error) {
	d, err := c.calculateDutyCycle(inputVoltage, op.OutputVoltages[0])
	if err != nil {
		return OperatingPoint{}, err
	}
	f := op.SwitchingFrequency
	tOn := d / f
	iPP := inputVoltage * tOn / inductance

	primaryCurrent := BuildAnalytical(LabelTriangular, WaveformParams{Amplitude: iPP, Duty: d, Offset: op.OutputCurrents[0]}, f)
	primaryVoltage := BuildAnalytical(LabelRectangular, WaveformParams{Amplitude: inputVoltage + op.OutputVoltages[0], Duty: d, Offset: 0}, f)

	excitations := []OperatingPointExcitation{CompleteExcitation("Primary", f, primaryCurrent, primaryVoltage)}

	for i := 1; i < len(op.OutputVoltages); i++ {
		vOut := op.OutputVoltages[i]
		n := ratios[i-1]
		name := "Secondary"
		if len(op.OutputVoltages) > 2 {
			name = "Secondary " + itoa(i)
		}
		iPPSec := iPP * n
		current := BuildAnalytical(LabelFlybackPrimary, WaveformParams{Amplitude: iPPSec, Duty: 1 - d, Offset: 0}, f)
		voltage := BuildAnalytical(LabelRectangular, WaveformParams{Amplitude: inputVoltage/n + vOut, Duty: 1 - d, Offset: 0}, f)
		excitations = append(excitations, CompleteExcitation(name, f, current, voltage))
	}

	return OperatingPoint{
		Conditions:           OperatingConditions{AmbientTemperature: op.AmbientTemperature},
		ExcitationsPerWinding: excitations,
	}, nil
}

// ProcessOperatingPoints derives one OperatingPoint per (input-voltage
// corner, user operating point) pair (§4.2).
func (c IsolatedBuckBoost) ProcessOperatingPoints(turnsRatios []float64, magnetizingInductance float64) ([]OperatingPoint, error) {
	var out []OperatingPoint
	for _, corner := range inputVoltageCorners(c.InputVoltage) {
		for i, op := range c.OperatingPoints {
			result, err := c.processOne(corner.Value, op, turnsRatios, magnetizingInductance)
			if err != nil {
				return nil, err
			}
			result.Name = opName(corner.Corner, i, len(c.OperatingPoints))
			out = append(out, result)
		}
	}
	return out, nil
}

// ProcessOperatingPointsFromMagnetic resolves L from a built Magnetic via
// the external magnetising-inductance model (§6), then delegates.
func (c IsolatedBuckBoost) ProcessOperatingPointsFromMagnetic(magnetic Magnetic, model MagnetizingInductanceModel) ([]OperatingPoint, error) {
	if _, err := c.RunChecks(false); err != nil {
		return nil, err
	}
	result, err := model.CalculateInductanceFromNumberTurnsAndGapping(magnetic.Core, magnetic.Coil)
	if err != nil {
		return nil, err
	}
	l, ok := result.MagnetizingInductance.GetNominal()
	if !ok {
		return nil, NewError(MissingData, "IsolatedBuckBoost.ProcessOperatingPointsFromMagnetic", nil)
	}
	return c.ProcessOperatingPoints(magnetic.TurnsRatios(), l)
}
