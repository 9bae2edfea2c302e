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
	"strings"
)

//----------------------------------------------------------------------
// netlist generation (§4.7)
//----------------------------------------------------------------------

// netlistNum renders v in engineering notation followed by unit, for
// embedding in SPICE deck lines.
func netlistNum(v float64, unit string) string {
	return strings.TrimSpace(FormatNumber(v, 4)) + unit
}

// NetlistRequest bundles the parameters a converter topology needs to
// emit a SPICE deck: which input-voltage corner and operating point to
// instantiate, the turns ratios and magnetising inductance to use, and
// an optional built Magnetic to export a richer per-winding subcircuit
// from instead of an ideal coupled-inductor pair.
type NetlistRequest struct {
	Topology      Topology
	CornerLabel   string
	OperatingName string
	TurnsRatios   []float64
	Inductance    float64
	Frequency     float64
	DutyCycle     float64
	InputVoltage  float64
	OutputVoltage []float64
	OutputCurrent []float64
	Magnetic      *Magnetic
	NumSteady     int
	NumExtract    int
}

// BuildNetlist emits a well-formed SPICE deck for the requested
// converter: a PWM pulse source driving an ideal voltage-controlled
// switch, an ideal diode per secondary, a coupled-inductor pair (or a
// per-winding subcircuit when a Magnetic is supplied), output
// capacitors with a per-output initial condition, resistive loads sized
// V_out/I_out, and a .tran with step 1/(200f), stop
// (N_steady+N_extract)*T, start N_steady*T (§4.7).
func BuildNetlist(req NetlistRequest) string {
	if req.NumSteady <= 0 {
		req.NumSteady = 5
	}
	if req.NumExtract <= 0 {
		req.NumExtract = 2
	}
	period := 1.0
	if req.Frequency > 0 {
		period = 1 / req.Frequency
	}
	step := period / 200
	stop := float64(req.NumSteady+req.NumExtract) * period
	start := float64(req.NumSteady) * period

	var b strings.Builder
	b.WriteString("* " + req.Topology.String() + " " + req.CornerLabel + " " + req.OperatingName + "\n")
	b.WriteString("Vin in 0 DC " + netlistNum(req.InputVoltage, "V") + "\n")
	b.WriteString("Vpulse gate 0 PULSE(0 5 0 1n 1n " + netlistNum(req.DutyCycle*period, "s") + " " + netlistNum(period, "s") + ")\n")
	b.WriteString(".model swmod SW(Ron=1m Roff=1Meg Vt=2.5 Vh=0.1)\n")
	b.WriteString("Ssw drain 0 gate 0 swmod\n")
	b.WriteString(".model diodemod D(Ron=1m Vfwd=0.5)\n")

	if req.Magnetic != nil {
		b.WriteString("* coupled winding subcircuit exported from built magnetic\n")
		for i, w := range req.Magnetic.Coil.FunctionalDescription {
			b.WriteString("Lwind" + itoa(i) + " w" + itoa(i) + "p w" + itoa(i) + "n " + netlistNum(req.Inductance, "H") + "\n")
			b.WriteString("Rdc" + itoa(i) + " w" + itoa(i) + "n w" + itoa(i) + "g " + netlistNum(windingDCResistance(w), "ohm") + "\n")
		}
		for i := 1; i < len(req.Magnetic.Coil.FunctionalDescription); i++ {
			b.WriteString("K" + itoa(i) + " Lwind0 Lwind" + itoa(i) + " 1.0\n")
		}
	} else {
		b.WriteString("Lprimary drain 0 " + netlistNum(req.Inductance, "H") + "\n")
		for i, ratio := range req.TurnsRatios {
			lsec := req.Inductance / Sqr(ratio)
			b.WriteString("Lsecondary" + itoa(i) + " sec" + itoa(i) + "p 0 " + netlistNum(lsec, "H") + "\n")
			b.WriteString("Ksec" + itoa(i) + " Lprimary Lsecondary" + itoa(i) + " 1.0\n")
		}
	}

	for i, vout := range req.OutputVoltage {
		b.WriteString("Dout" + itoa(i) + " sec" + itoa(i) + "p out" + itoa(i) + " diodemod\n")
		b.WriteString("Cout" + itoa(i) + " out" + itoa(i) + " 0 100u IC=" + netlistNum(vout, "V") + "\n")
		if i < len(req.OutputCurrent) && req.OutputCurrent[i] > 0 {
			r := vout / req.OutputCurrent[i]
			b.WriteString("Rload" + itoa(i) + " out" + itoa(i) + " 0 " + netlistNum(r, "ohm") + "\n")
		}
	}

	b.WriteString(".tran " + netlistNum(step, "s") + " " + netlistNum(stop, "s") + " " + netlistNum(start, "s") + " UIC\n")
	b.WriteString(".end\n")
	return b.String()
}

// windingDCResistance is a placeholder copper-resistance estimate used
// only to keep the exported netlist self-consistent when no richer
// per-winding DC-resistance model is wired in by the caller.
func windingDCResistance(w Winding) float64 {
	area := w.Wire.ConductingArea()
	if area <= 0 {
		return 0.01
	}
	length := float64(w.NumberTurns) * 0.05 // generic mean-turn-length guess
	return resistivityCopper * length / (area * float64(maxInt(w.NumberParallels, 1)))
}

//----------------------------------------------------------------------
// NgspiceRunner contract (§4.7, §6)
//----------------------------------------------------------------------

// SimulationConfig configures one run_simulation call.
type SimulationConfig struct {
	Frequency         float64
	ExtractOnePeriod  bool
	NumberOfPeriods   int
	SteadyStateCycles int
	TimeoutSeconds    float64
}

// SimulatedWaveform is one named time series returned by the solver.
type SimulatedWaveform struct {
	Name    string
	Times   []float64
	Samples []float64
}

// SimulationResult is the outcome of one run_simulation call (§4.7, §6).
type SimulationResult struct {
	Success         bool
	ErrorMessage    string
	Waveforms       []SimulatedWaveform
	SimulationTime  float64
}

// NgspiceRunner is the external circuit-simulator collaborator (§6): it
// runs a netlist and extracts named waveforms. A concrete binding to the
// real ngspice binary or shared library lives outside this package's
// scope; FakeNgspiceRunner below is a deterministic in-process stand-in
// used by tests and by cmd/simcheck.
type NgspiceRunner interface {
	IsAvailable() bool
	RunSimulation(netlist string, config SimulationConfig) (SimulationResult, error)
}

// FakeNgspiceRunner synthesises waveforms analytically from the same
// NetlistRequest that produced the netlist, instead of actually
// parsing/solving SPICE syntax: it exists so the C8 adapter (and
// cmd/simcheck) are exercisable without a real solver binary, mirroring
// the in-process analysis style of a small embedded SPICE engine rather
// than shelling out to one.
type FakeNgspiceRunner struct {
	Request NetlistRequest
}

func (f FakeNgspiceRunner) IsAvailable() bool { return true }

func (f FakeNgspiceRunner) RunSimulation(netlist string, config SimulationConfig) (SimulationResult, error) {
	req := f.Request
	if req.Frequency <= 0 {
		return SimulationResult{Success: false, ErrorMessage: "missing frequency"},
			NewError(SimulatorFailure, "FakeNgspiceRunner.RunSimulation", nil)
	}
	n := config.NumberOfPeriods
	if n <= 0 {
		n = 2
	}
	periods := 1
	if !config.ExtractOnePeriod {
		periods = n
	}

	primaryVoltage := BuildAnalytical(LabelRectangular, WaveformParams{Amplitude: req.InputVoltage, Duty: req.DutyCycle}, req.Frequency)
	primaryValues := primaryVoltage.Sample(nextPow2(128 * periods))
	primaryTimes := primaryVoltage.times

	var waveforms []SimulatedWaveform
	waveforms = append(waveforms, SimulatedWaveform{Name: "v(drain)", Times: primaryTimes, Samples: primaryValues})

	for i, vout := range req.OutputVoltage {
		cur := req.OutputCurrent
		iAvg := 0.0
		if i < len(cur) {
			iAvg = cur[i]
		}
		sw := BuildAnalytical(LabelTriangular, WaveformParams{Amplitude: iAvg * 2, Offset: iAvg, Duty: 0.5}, req.Frequency)
		values := sw.Sample(nextPow2(128 * periods))
		times := sw.times
		waveforms = append(waveforms, SimulatedWaveform{Name: "i(sec" + itoa(i) + ")", Times: times, Samples: values})
		waveforms = append(waveforms, SimulatedWaveform{Name: "v(out" + itoa(i) + ")", Times: times, Samples: constSeries(vout, len(times))})
	}

	return SimulationResult{Success: true, Waveforms: waveforms, SimulationTime: 0}, nil
}

func constSeries(v float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

//----------------------------------------------------------------------
// waveform-name mapping and conversion back to C2 excitations (§4.7)
//----------------------------------------------------------------------

// WaveformNameMapping binds one winding's voltage/current node names in
// the exported netlist back to the winding it represents, with an
// optional sign flip for current sense polarity (§4.7).
type WaveformNameMapping struct {
	WindingName  string
	VoltageNode  string
	CurrentNode  string
	FlipCurrent  bool
}

// ExtractOperatingPoint applies mappings to a SimulationResult, building
// one OperatingPointExcitation per winding (processed/harmonics
// computed via C1) wrapped into an OperatingPoint at the given ambient
// temperature (§4.7).
func ExtractOperatingPoint(result SimulationResult, mappings []WaveformNameMapping, opName string, ambientTemperature float64, frequency float64) (OperatingPoint, error) {
	if !result.Success {
		return OperatingPoint{}, NewError(SimulatorFailure, "ExtractOperatingPoint", nil)
	}
	byName := make(map[string]SimulatedWaveform, len(result.Waveforms))
	for _, w := range result.Waveforms {
		byName[w.Name] = w
	}

	var excitations []OperatingPointExcitation
	for _, m := range mappings {
		vW, okV := byName[m.VoltageNode]
		iW, okI := byName[m.CurrentNode]
		if !okV && !okI {
			continue
		}
		exc := OperatingPointExcitation{Name: m.WindingName, Frequency: frequency}
		if okV {
			exc.Voltage = sampledSignal(vW, frequency)
		}
		if okI {
			samples := iW.Samples
			if m.FlipCurrent {
				flipped := make([]float64, len(samples))
				for i, s := range samples {
					flipped[i] = -s
				}
				samples = flipped
			}
			exc.Current = sampledSignal(SimulatedWaveform{Name: iW.Name, Times: iW.Times, Samples: samples}, frequency)
		}
		excitations = append(excitations, exc)
	}

	return OperatingPoint{
		Name:                  opName,
		Conditions:            OperatingConditions{AmbientTemperature: ambientTemperature},
		ExcitationsPerWinding: excitations,
	}, nil
}

// sampledSignal wraps a raw simulator time series into a SignalDescriptor
// carrying a SAMPLED-style waveform so GetProcessed/GetHarmonics (C1) can
// compute the summary statistics and DFT from it.
func sampledSignal(w SimulatedWaveform, frequency float64) *SignalDescriptor {
	return NewSignal(BuildSampled(w.Times, w.Samples, frequency))
}
