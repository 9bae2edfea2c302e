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

// simcheck drives the C8 circuit-simulator adapter standalone: it builds
// a netlist for one converter corner, runs it through an NgspiceRunner
// (the fake in-process one unless a real binary is ever wired in), and
// prints the recovered per-winding operating-point summary, to sanity
// check a netlist or a waveform-name mapping without running the full
// synthesis pipeline.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"github.com/bfix/openmagnetics/lib"
)

func main() {
	var (
		topology      string
		inputVoltage  float64
		dutyCycle     float64
		inductance    float64
		frequency     float64
		vout          []float64
		iout          []float64
		ambient       float64
		numSteady     int
		numExtract    int
		printNetlist  bool
	)

	pflag.StringVarP(&topology, "topology", "t", "buck", "converter topology label recorded in the netlist header")
	pflag.Float64Var(&inputVoltage, "vin", 12, "input voltage (V)")
	pflag.Float64Var(&dutyCycle, "duty", 0.4, "switch duty cycle")
	pflag.Float64Var(&inductance, "inductance", 100e-6, "primary inductance (H)")
	pflag.Float64Var(&frequency, "freq", 100e3, "switching frequency (Hz)")
	pflag.Float64SliceVar(&vout, "vout", []float64{5}, "output voltage(s) (V)")
	pflag.Float64SliceVar(&iout, "iout", []float64{1}, "output current(s) (A)")
	pflag.Float64Var(&ambient, "ambient", 25, "ambient temperature (deg C)")
	pflag.IntVar(&numSteady, "num-steady", 5, "steady-state cycles to skip before extraction")
	pflag.IntVar(&numExtract, "num-extract", 2, "cycles to extract after steady state")
	pflag.BoolVar(&printNetlist, "print-netlist", false, "print the generated SPICE deck before simulating")
	pflag.Parse()

	log := lib.Default()

	topo, err := parseTopology(topology)
	if err != nil {
		log.Error("unknown topology", "topology", topology)
		os.Exit(1)
	}

	req := lib.NetlistRequest{
		Topology:      topo,
		CornerLabel:   "Nom.",
		OperatingName: "simcheck",
		Inductance:    inductance,
		Frequency:     frequency,
		DutyCycle:     dutyCycle,
		InputVoltage:  inputVoltage,
		OutputVoltage: vout,
		OutputCurrent: iout,
		NumSteady:     numSteady,
		NumExtract:    numExtract,
	}

	netlist := lib.BuildNetlist(req)
	if printNetlist {
		fmt.Println(netlist)
	}

	runner := lib.FakeNgspiceRunner{Request: req}
	if !runner.IsAvailable() {
		log.Error("ngspice runner unavailable")
		os.Exit(1)
	}

	config := lib.SimulationConfig{
		Frequency:         frequency,
		ExtractOnePeriod:  true,
		NumberOfPeriods:   numSteady + numExtract,
		SteadyStateCycles: numSteady,
		TimeoutSeconds:    5,
	}
	result, err := runner.RunSimulation(netlist, config)
	if err != nil {
		log.Error("simulation failed", "err", err)
		os.Exit(1)
	}
	if !result.Success {
		fmt.Fprintln(os.Stderr, "simulation reported failure:", result.ErrorMessage)
		os.Exit(1)
	}

	mappings := []lib.WaveformNameMapping{
		{WindingName: "Primary", VoltageNode: "v(drain)"},
	}
	for i := range vout {
		mappings = append(mappings, lib.WaveformNameMapping{
			WindingName: "Secondary" + fmt.Sprint(i+1),
			VoltageNode: "v(out" + fmt.Sprint(i) + ")",
			CurrentNode: "i(sec" + fmt.Sprint(i) + ")",
		})
	}

	op, err := lib.ExtractOperatingPoint(result, mappings, "simcheck", ambient, frequency)
	if err != nil {
		log.Error("could not extract operating point", "err", err)
		os.Exit(1)
	}

	fmt.Printf("operating point %q at %.1f degC\n", op.Name, op.Conditions.AmbientTemperature)
	for _, exc := range op.ExcitationsPerWinding {
		fmt.Printf("  winding %-12s", exc.Name)
		if exc.Voltage != nil {
			if p, err := exc.Voltage.GetProcessed(); err == nil {
				fmt.Printf(" V_rms=%8.4f V_pp=%8.4f", p.RMS, p.PeakToPeak)
			}
		}
		if exc.Current != nil {
			if p, err := exc.Current.GetProcessed(); err == nil {
				fmt.Printf(" I_rms=%8.4f I_avg=%8.4f", p.RMS, p.Average)
			}
		}
		fmt.Println()
	}
}

func parseTopology(s string) (lib.Topology, error) {
	switch s {
	case "buck":
		return lib.TopologyBuck, nil
	case "boost":
		return lib.TopologyBoost, nil
	case "flyback":
		return lib.TopologyFlyback, nil
	case "isolated-buck-boost":
		return lib.TopologyIsolatedBuckBoost, nil
	default:
		return 0, lib.NewError(lib.InvalidInput, "parseTopology", nil)
	}
}
