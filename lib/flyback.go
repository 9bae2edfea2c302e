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

// FlybackMode names one of the four conduction modes a flyback
// operating point may run in (§4.2.3, GLOSSARY).
type FlybackMode int

const (
	FlybackCCM FlybackMode = iota
	FlybackDCM
	FlybackBMO
	FlybackQRM
)

// FlybackOperatingPoint is one user-specified flyback operating point;
// OutputVoltages/OutputCurrents both have length S (one per secondary).
type FlybackOperatingPoint struct {
	OutputVoltages     []float64
	OutputCurrents     []float64
	SwitchingFrequency float64 // required for CCM/DCM; ignored (derived) for BMO/QRM
	AmbientTemperature float64
	Mode               *FlybackMode
	RippleRatio        *float64 // overrides Flyback.RippleRatio for this point if set
}

// Flyback derives design requirements and per-corner operating points
// for an isolated flyback converter with one primary and S secondaries
// (§4.2.3).
type Flyback struct {
	InputVoltage          DimWithTol
	DiodeVoltageDrop      float64
	Efficiency            *float64
	RippleRatio           float64 // default mode selector: CCM if < 1
	MaxDutyCycle          *float64
	MaxDrainSourceVoltage *float64
	DrainSourceCapacitance float64 // default 100e-12 F (Defaults.h), used in QRM
	OperatingPoints       []FlybackOperatingPoint
}

func (f Flyback) efficiency() float64 {
	if f.Efficiency != nil {
		return *f.Efficiency
	}
	return 1
}

func (f Flyback) drainSourceCapacitance() float64 {
	if f.DrainSourceCapacitance > 0 {
		return f.DrainSourceCapacitance
	}
	return DefaultDrainSourceCapacitance
}

func (f Flyback) numberSecondaries() int {
	if len(f.OperatingPoints) == 0 {
		return 0
	}
	return len(f.OperatingPoints[0].OutputVoltages)
}

// RunChecks implements §4.8: in addition to the common checks, every
// flyback operating point must declare the same number of secondaries.
func (f Flyback) RunChecks(assert bool) (bool, error) {
	if ok, err := RunChecksCommon(len(f.OperatingPoints), f.InputVoltage, assert); !ok {
		return ok, err
	}
	n := f.numberSecondaries()
	for _, op := range f.OperatingPoints {
		if len(op.OutputVoltages) != n || len(op.OutputCurrents) != n {
			err := NewError(InvalidDesignRequirements, "Flyback.RunChecks", nil)
			if assert {
				panic(err)
			}
			return false, err
		}
	}
	return true, nil
}

func (f Flyback) resolveMode(op FlybackOperatingPoint) FlybackMode {
	if op.Mode != nil {
		return *op.Mode
	}
	ripple := f.RippleRatio
	if op.RippleRatio != nil {
		ripple = *op.RippleRatio
	}
	if ripple < 1 {
		return FlybackCCM
	}
	return FlybackDCM
}

// dutyCycleAtMinimum derives D = N*Vout/(Vin + N*Vout), the boundary-mode
// closed form used for resolveFrequencyBMO's per-secondary duty cycle
// (§4.2.3).
func (f Flyback) dutyCycleAtMinimum(inputVoltageMin, n1, vOut1 float64) float64 {
	return n1 * vOut1 / (inputVoltageMin + n1*vOut1)
}

// dutyCycle derives the general per-operating-point duty cycle: the
// literal MaxDutyCycle when set, otherwise
// averageInputCurrent/(averageInputCurrent+maximumEffectiveLoadCurrentReflected),
// with maximumEffectiveLoadCurrent the lumped totalOutputPower/Vout_1 and
// averageInputCurrent = totalOutputPower/(efficiency*inputVoltage)
// (§4.2.3). Used by ProcessDesignRequirements' L_needed pass and by
// processOne's waveform construction, for every mode.
func (f Flyback) dutyCycle(inputVoltage float64, op FlybackOperatingPoint, n1 float64) float64 {
	if f.MaxDutyCycle != nil {
		return *f.MaxDutyCycle
	}
	var totalOutputPower float64
	for i := range op.OutputVoltages {
		totalOutputPower += op.OutputVoltages[i] * op.OutputCurrents[i]
	}
	maximumEffectiveLoadCurrent := totalOutputPower / op.OutputVoltages[0]
	maximumEffectiveLoadCurrentReflected := maximumEffectiveLoadCurrent / n1
	totalInputPower := totalOutputPower / f.efficiency()
	averageInputCurrent := totalInputPower / inputVoltage
	return averageInputCurrent / (averageInputCurrent + maximumEffectiveLoadCurrentReflected)
}

// turnsRatiosFromDutyCycle derives turns ratios from MaxDutyCycle: at
// minimum input, the reflected-primary current is I_refl =
// I_in_avg*(1-D)/D; N_1 is obtained from the lumped maximum effective load
// current (totalOutputPower/Vout_1), not the raw per-secondary output
// current; subsequent secondaries are scaled by the diode-drop-adjusted
// voltage ratio (§4.2.3).
func (f Flyback) turnsRatiosFromDutyCycle(inputVoltageMin float64, totalOutputPower float64) []float64 {
	D := *f.MaxDutyCycle
	op := f.OperatingPoints[0]
	iInAvg := totalOutputPower / (f.efficiency() * inputVoltageMin)
	iRefl := iInAvg * (1 - D) / D
	if iRefl <= 0 {
		iRefl = eps
	}
	maximumEffectiveLoadCurrent := totalOutputPower / op.OutputVoltages[0]
	n1 := maximumEffectiveLoadCurrent / iRefl
	ratios := make([]float64, len(op.OutputVoltages))
	ratios[0] = n1
	for i := 1; i < len(op.OutputVoltages); i++ {
		ratios[i] = n1 * (op.OutputVoltages[0] + f.DiodeVoltageDrop) / (op.OutputVoltages[i] + f.DiodeVoltageDrop)
	}
	return ratios
}

// turnsRatiosFromDrainSourceVoltage derives turns ratios from
// MaxDrainSourceVoltage: V_OR_min = factor*Vds_max - Vin_max; N_i =
// V_OR_min/(Vout_i+Vd) (§4.2.3).
func (f Flyback) turnsRatiosFromDrainSourceVoltage(inputVoltageMax float64) []float64 {
	vorMin := DefaultDrainSourceSafetyFactor**f.MaxDrainSourceVoltage - inputVoltageMax
	op := f.OperatingPoints[0]
	ratios := make([]float64, len(op.OutputVoltages))
	for i, vOut := range op.OutputVoltages {
		ratios[i] = vorMin / (vOut + f.DiodeVoltageDrop)
	}
	return ratios
}

// ProcessDesignRequirements derives turns ratios (from MaxDutyCycle
// and/or MaxDrainSourceVoltage, combined per §4.2.3) and the magnetising
// inductance (with the DCM L_max/L_needed swap-and-inflate fallback
// preserved from the source, see DESIGN.md).
func (f Flyback) ProcessDesignRequirements() (DesignRequirements, error) {
	if len(f.OperatingPoints) == 0 {
		return DesignRequirements{}, NewError(MissingData, "Flyback.ProcessDesignRequirements", nil)
	}
	minInput, hasMin := f.InputVoltage.Minimum, f.InputVoltage.Minimum != nil
	maxInput, hasMax := f.InputVoltage.Maximum, f.InputVoltage.Maximum != nil
	if !hasMin || !hasMax {
		v, ok := f.InputVoltage.GetNominal()
		if !ok {
			return DesignRequirements{}, NewError(MissingData, "Flyback.ProcessDesignRequirements", nil)
		}
		if !hasMin {
			minInput = &v
		}
		if !hasMax {
			maxInput = &v
		}
	}

	var totalOutputPower float64
	op0 := f.OperatingPoints[0]
	for i := range op0.OutputVoltages {
		totalOutputPower += op0.OutputVoltages[i] * op0.OutputCurrents[i]
	}

	var fromDuty, fromVds []float64
	if f.MaxDutyCycle != nil {
		if *f.MaxDutyCycle <= 0 || *f.MaxDutyCycle >= 1 {
			return DesignRequirements{}, NewError(InvalidDesignRequirements, "Flyback.ProcessDesignRequirements", nil)
		}
		fromDuty = f.turnsRatiosFromDutyCycle(*minInput, totalOutputPower)
	}
	if f.MaxDrainSourceVoltage != nil {
		fromVds = f.turnsRatiosFromDrainSourceVoltage(*maxInput)
	}

	n := f.numberSecondaries()
	ratios := make([]float64, n)
	for i := 0; i < n; i++ {
		switch {
		case fromDuty != nil && fromVds != nil:
			if fromDuty[i] > 1 {
				ratios[i] = math.Min(fromDuty[i], fromVds[i])
			} else {
				ratios[i] = math.Max(fromDuty[i], fromVds[i])
			}
		case fromDuty != nil:
			ratios[i] = fromDuty[i]
		case fromVds != nil:
			ratios[i] = fromVds[i]
		default:
			return DesignRequirements{}, NewError(InvalidDesignRequirements, "Flyback.ProcessDesignRequirements", nil)
		}
	}
	n1 := ratios[0]

	// inductance: for each point, L_needed = Vin_min*D / (r*f*I_center),
	// I_center = (totalOutputPower/Vout_1) / ((1-D)*N_1). Take the max.
	lNeeded := 0.0
	dcmSeen := false
	for _, op := range f.OperatingPoints {
		D := f.dutyCycle(*minInput, op, n1)
		ripple := f.RippleRatio
		if op.RippleRatio != nil {
			ripple = *op.RippleRatio
		}
		iCenter := (totalOutputPower / op.OutputVoltages[0]) / ((1 - D) * n1)
		l := *minInput * D / (ripple * op.SwitchingFrequency * iCenter)
		lNeeded = math.Max(lNeeded, l)
		if f.resolveMode(op) != FlybackCCM {
			dcmSeen = true
		}
	}

	inductance := DimMin(lNeeded)
	if dcmSeen {
		// Basso's maximum-inductance formula for DCM validity (§4.2.3).
		op := f.OperatingPoints[0]
		a := (op.OutputVoltages[0] + f.DiodeVoltageDrop) * n1
		vMin := *minInput
		lMax := f.efficiency() * vMin * vMin * a * a /
			(2 * totalOutputPower * op.SwitchingFrequency * (vMin + a) * (a + f.efficiency()*vMin))
		if lMax < lNeeded {
			// preserved byte-for-byte from the source's heuristic fallback
			// (Open Question, resolved in SPEC_FULL.md/DESIGN.md): swap and
			// inflate by 1.2 rather than raising InvalidDesignRequirements.
			lNeeded, lMax = lMax, lNeeded*1.2
		}
		inductance = DimWithTol{Minimum: ptr(lNeeded), Maximum: ptr(lMax)}
	}

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
		MagnetizingInductance: inductance,
		TurnsRatios:           tr,
		IsolationSides:        isoSides,
		Topology:              TopologyFlyback,
	}, nil
}

// resolveFrequencyBMO derives f from the boundary-mode condition
// I_min=0: Ipk = 2*Iout/(eta*(1-D)*N); ton = Ipk*L/Vin; toff =
// Ipk*L/(N*Vout); f = 1/(ton+toff), taking the maximum across secondaries
// (§4.2.3).
func (f Flyback) resolveFrequencyBMO(inputVoltage float64, op FlybackOperatingPoint, ratios []float64, L float64) float64 {
	maxFreq := 0.0
	for i, vOut := range op.OutputVoltages {
		n := ratios[i]
		d := f.dutyCycleAtMinimum(inputVoltage, n, vOut)
		iPk := 2 * op.OutputCurrents[i] / (f.efficiency() * (1 - d) * n)
		tOn := iPk * L / inputVoltage
		tOff := iPk * L / (n * vOut)
		freq := 1 / (tOn + tOff)
		if freq > maxFreq {
			maxFreq = freq
		}
	}
	return maxFreq
}

// resolveFrequencyQRM derives f via the Biela-Kolar quasi-resonant closed
// form, parameterised by L, total output power, reflected voltage and the
// drain-source capacitance (§4.2.3).
func (f Flyback) resolveFrequencyQRM(inputVoltage, totalOutputPower, reflectedVoltage, L float64) float64 {
	coss := f.drainSourceCapacitance()
	tRes := math.Pi * math.Sqrt(L*coss)
	tOn := 2 * L * totalOutputPower / (f.efficiency() * inputVoltage * inputVoltage)
	tOff := 2 * L * totalOutputPower / (f.efficiency() * reflectedVoltage * reflectedVoltage)
	return 1 / (tOn + tOff + tRes)
}

func (f Flyback) processOne(inputVoltage float64, op FlybackOperatingPoint, ratios []float64, inductance float64) (OperatingPoint, error) {
	mode := f.resolveMode(op)
	n1 := ratios[0]
	d := f.dutyCycle(inputVoltage, op, n1)

	freq := op.SwitchingFrequency
	switch mode {
	case FlybackBMO:
		freq = f.resolveFrequencyBMO(inputVoltage, op, ratios, inductance)
	case FlybackQRM:
		var total float64
		for i := range op.OutputVoltages {
			total += op.OutputVoltages[i] * op.OutputCurrents[i]
		}
		reflected := (op.OutputVoltages[0] + f.DiodeVoltageDrop) * n1
		freq = f.resolveFrequencyQRM(inputVoltage, total, reflected, inductance)
	}

	tOn := d / freq
	iPP := inputVoltage * tOn / inductance

	var maxReflected float64
	for i, vOut := range op.OutputVoltages {
		r := (vOut + f.DiodeVoltageDrop) * ratios[i]
		if r > maxReflected {
			maxReflected = r
		}
	}
	primaryVoltagePP := inputVoltage + maxReflected

	var totalOutputPower float64
	for i := range op.OutputVoltages {
		totalOutputPower += op.OutputVoltages[i] * op.OutputCurrents[i]
	}
	iCenter := (totalOutputPower / op.OutputVoltages[0]) / ((1 - d) * n1)

	excitations := make([]OperatingPointExcitation, 0, len(op.OutputVoltages)+1)

	if mode == FlybackCCM {
		iOff := iCenter - iPP/2
		if iOff < 0 {
			iOff = 0
		}
		current := BuildAnalytical(LabelFlybackPrimary, WaveformParams{Amplitude: iPP, Duty: d, Offset: iOff}, freq)
		voltage := BuildAnalytical(LabelRectangular, WaveformParams{Amplitude: primaryVoltagePP, Duty: d, Offset: 0}, freq)
		excitations = append(excitations, CompleteExcitation("Primary", freq, current, voltage))
	} else {
		deadTime := 0.0
		current := BuildAnalytical(LabelFlybackPrimaryWithDeadtime, WaveformParams{Amplitude: iPP, Duty: d, Offset: 0, DeadTime: deadTime}, freq)
		voltage := BuildAnalytical(LabelRectangularWithDeadtime, WaveformParams{Amplitude: primaryVoltagePP, Duty: d, Offset: 0, DeadTime: deadTime}, freq)
		excitations = append(excitations, CompleteExcitation("Primary", freq, current, voltage))
	}

	for i, vOut := range op.OutputVoltages {
		n := ratios[i]
		name := "Secondary"
		if len(op.OutputVoltages) > 1 {
			name = "Secondary " + itoa(i+1)
		}
		iPPSec := iPP * n
		vPPSec := inputVoltage/n + vOut + f.DiodeVoltageDrop

		var current, voltage Waveform
		if mode == FlybackCCM {
			iSecOff := op.OutputCurrents[i] - iPPSec/2
			if iSecOff < 0 {
				iSecOff = 0
			}
			current = BuildAnalytical(LabelFlybackSecondary, WaveformParams{Amplitude: iPPSec, Duty: d, Offset: iSecOff}, freq)
			voltage = BuildAnalytical(LabelSecondaryRectangular, WaveformParams{Amplitude: vPPSec, Duty: d, Offset: 0}, freq)
		} else {
			deadTime := 0.0
			current = BuildAnalytical(LabelFlybackSecondaryWithDeadtime, WaveformParams{Amplitude: iPPSec, Duty: d, Offset: 0, DeadTime: deadTime}, freq)
			voltage = BuildAnalytical(LabelSecondaryRectangularWithDeadtime, WaveformParams{Amplitude: vPPSec, Duty: d, Offset: 0, DeadTime: deadTime}, freq)
		}
		excitations = append(excitations, CompleteExcitation(name, freq, current, voltage))
	}

	return OperatingPoint{
		Conditions:           OperatingConditions{AmbientTemperature: op.AmbientTemperature},
		ExcitationsPerWinding: excitations,
	}, nil
}

// ProcessOperatingPoints derives one OperatingPoint per (input-voltage
// corner, user operating point) pair (§4.2).
func (f Flyback) ProcessOperatingPoints(turnsRatios []float64, magnetizingInductance float64) ([]OperatingPoint, error) {
	var out []OperatingPoint
	for _, c := range inputVoltageCorners(f.InputVoltage) {
		for i, op := range f.OperatingPoints {
			result, err := f.processOne(c.Value, op, turnsRatios, magnetizingInductance)
			if err != nil {
				return nil, err
			}
			result.Name = opName(c.Corner, i, len(f.OperatingPoints))
			out = append(out, result)
		}
	}
	return out, nil
}

// ProcessOperatingPointsFromMagnetic resolves L from a built Magnetic via
// the external magnetising-inductance model (§6), then delegates.
func (f Flyback) ProcessOperatingPointsFromMagnetic(magnetic Magnetic, model MagnetizingInductanceModel) ([]OperatingPoint, error) {
	if _, err := f.RunChecks(false); err != nil {
		return nil, err
	}
	result, err := model.CalculateInductanceFromNumberTurnsAndGapping(magnetic.Core, magnetic.Coil)
	if err != nil {
		return nil, err
	}
	l, ok := result.MagnetizingInductance.GetNominal()
	if !ok {
		return nil, NewError(MissingData, "Flyback.ProcessOperatingPointsFromMagnetic", nil)
	}
	return f.ProcessOperatingPoints(magnetic.TurnsRatios(), l)
}
