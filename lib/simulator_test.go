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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildNetlistContents(t *testing.T) {
	req := NetlistRequest{
		Topology:      TopologyBuck,
		CornerLabel:   "Nom.",
		OperatingName: "op-1",
		TurnsRatios:   []float64{1},
		Inductance:    100e-6,
		Frequency:     100e3,
		DutyCycle:     0.4,
		InputVoltage:  12,
		OutputVoltage: []float64{5},
		OutputCurrent: []float64{1},
		NumSteady:     5,
		NumExtract:    2,
	}
	netlist := BuildNetlist(req)
	assert.True(t, strings.HasPrefix(netlist, "* buck Nom. op-1\n"))
	assert.Contains(t, netlist, "Vin in 0 DC")
	assert.Contains(t, netlist, "Lprimary drain 0")
	assert.Contains(t, netlist, "Dout0 sec0p out0")
	assert.Contains(t, netlist, "Rload0 out0 0")
	assert.Contains(t, netlist, ".tran")
	assert.Contains(t, netlist, ".end")
}

func TestBuildNetlistDefaultsCycles(t *testing.T) {
	req := NetlistRequest{Topology: TopologyBoost, Frequency: 50e3, InputVoltage: 9, OutputVoltage: []float64{24}}
	netlist := BuildNetlist(req)
	assert.Contains(t, netlist, ".tran")
}

func TestFakeNgspiceRunnerProducesWaveforms(t *testing.T) {
	req := NetlistRequest{
		Topology:      TopologyBuck,
		Frequency:     100e3,
		DutyCycle:     0.5,
		InputVoltage:  12,
		OutputVoltage: []float64{5},
		OutputCurrent: []float64{2},
	}
	runner := FakeNgspiceRunner{Request: req}
	require.True(t, runner.IsAvailable())

	result, err := runner.RunSimulation(BuildNetlist(req), SimulationConfig{Frequency: req.Frequency, NumberOfPeriods: 2})
	require.NoError(t, err)
	require.True(t, result.Success)
	require.NotEmpty(t, result.Waveforms)

	var names []string
	for _, w := range result.Waveforms {
		names = append(names, w.Name)
	}
	assert.Contains(t, names, "v(drain)")
	assert.Contains(t, names, "i(sec0)")
	assert.Contains(t, names, "v(out0)")
}

func TestFakeNgspiceRunnerRejectsMissingFrequency(t *testing.T) {
	runner := FakeNgspiceRunner{Request: NetlistRequest{}}
	_, err := runner.RunSimulation("", SimulationConfig{})
	require.Error(t, err)
	assert.Equal(t, SimulatorFailure, err.(*Error).Kind)
}

func TestExtractOperatingPointRoundTrip(t *testing.T) {
	req := NetlistRequest{
		Topology:      TopologyBuck,
		Frequency:     100e3,
		DutyCycle:     0.5,
		InputVoltage:  12,
		OutputVoltage: []float64{5},
		OutputCurrent: []float64{2},
	}
	runner := FakeNgspiceRunner{Request: req}
	result, err := runner.RunSimulation(BuildNetlist(req), SimulationConfig{Frequency: req.Frequency, NumberOfPeriods: 2})
	require.NoError(t, err)

	mappings := []WaveformNameMapping{
		{WindingName: "Primary", VoltageNode: "v(drain)"},
		{WindingName: "Secondary1", VoltageNode: "v(out0)", CurrentNode: "i(sec0)"},
	}
	op, err := ExtractOperatingPoint(result, mappings, "test-op", 25, req.Frequency)
	require.NoError(t, err)
	assert.Equal(t, "test-op", op.Name)
	require.Len(t, op.ExcitationsPerWinding, 2)

	var sawPrimary, sawSecondary bool
	for _, exc := range op.ExcitationsPerWinding {
		if exc.Name == "Primary" {
			sawPrimary = true
			require.NotNil(t, exc.Voltage)
		}
		if exc.Name == "Secondary1" {
			sawSecondary = true
			require.NotNil(t, exc.Voltage)
			require.NotNil(t, exc.Current)
		}
	}
	assert.True(t, sawPrimary)
	assert.True(t, sawSecondary)
}

func TestExtractOperatingPointFailsOnUnsuccessfulResult(t *testing.T) {
	_, err := ExtractOperatingPoint(SimulationResult{Success: false}, nil, "x", 25, 1000)
	require.Error(t, err)
	assert.Equal(t, SimulatorFailure, err.(*Error).Kind)
}
