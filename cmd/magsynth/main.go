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

// magsynth runs the end-to-end pipeline: a converter topology plus its
// operating points go in, a ranked list of wound magnetics comes out.
//
// Pick a topology with '-topology' (buck, boost, flyback or
// isolated-buck-boost), describe the input-voltage range and one
// operating point, and magsynth derives the design requirements,
// builds a minimal core from the window/material flags, advises wire
// per winding from a small built-in catalogue (or one loaded via
// '-wire-catalogue'), and prints the ranked coil candidates. An
// optional Lua script ('-lua-script') adds a user-scored ranking
// dimension; an optional sqlite path ('-store') persists the ranking
// for later inspection.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"github.com/bfix/openmagnetics/lib"
)

func main() {
	var (
		topology    string
		vinMin      float64
		vinNom      float64
		vinMax      float64
		vout        []float64
		iout        []float64
		freq        float64
		ambient     float64
		efficiency  float64
		diodeDrop   float64
		rippleRatio float64
		maxSwitch   float64
		maxDuty     float64

		coreShape    string
		material     string
		toroid       bool
		windowWidth  float64
		windowHeight float64
		innerRadius  float64
		numStacks    int
		gapping      []float64

		primaryTurns int

		wireCatalogue string
		maxResults    int
		luaScript     string
		storePath     string
		queryTag      string
	)

	pflag.StringVarP(&topology, "topology", "t", "buck", "converter topology: buck, boost, flyback, isolated-buck-boost")
	pflag.Float64Var(&vinMin, "vin-min", 0, "minimum input voltage (V); 0 = unset")
	pflag.Float64Var(&vinNom, "vin-nom", 12, "nominal input voltage (V)")
	pflag.Float64Var(&vinMax, "vin-max", 0, "maximum input voltage (V); 0 = unset")
	pflag.Float64SliceVar(&vout, "vout", []float64{5}, "output voltage(s) (V), one per secondary")
	pflag.Float64SliceVar(&iout, "iout", []float64{1}, "output current(s) (A), one per secondary")
	pflag.Float64Var(&freq, "freq", 100e3, "switching frequency (Hz)")
	pflag.Float64Var(&ambient, "ambient", 25, "ambient temperature (deg C)")
	pflag.Float64Var(&efficiency, "efficiency", 0.9, "converter efficiency, 0 < eta <= 1")
	pflag.Float64Var(&diodeDrop, "diode-drop", 0.5, "rectifier diode forward drop (V)")
	pflag.Float64Var(&rippleRatio, "ripple-ratio", 0.3, "current ripple ratio used to size inductance")
	pflag.Float64Var(&maxSwitch, "max-switch-current", 0, "maximum switch current (A); 0 = unset, use ripple ratio instead")
	pflag.Float64Var(&maxDuty, "max-duty", 0, "flyback maximum duty cycle; 0 = unset")

	pflag.StringVar(&coreShape, "core-shape", "PQ 20/20", "core shape label, recorded on the built magnetic")
	pflag.StringVar(&material, "material", "N87", "core material label")
	pflag.BoolVar(&toroid, "toroid", false, "core is a toroid")
	pflag.Float64Var(&windowWidth, "window-width", 6e-3, "bobbin window width (m)")
	pflag.Float64Var(&windowHeight, "window-height", 12e-3, "bobbin window height (m)")
	pflag.Float64Var(&innerRadius, "inner-radius", 4e-3, "toroid bore radius (m), ignored for non-toroids")
	pflag.IntVar(&numStacks, "stacks", 1, "number of stacked cores")
	pflag.Float64SliceVar(&gapping, "gapping", nil, "gap lengths (m); empty = ungapped")
	pflag.IntVar(&primaryTurns, "primary-turns", 20, "primary winding turn count; secondary turns follow the derived turns ratios")

	pflag.StringVar(&wireCatalogue, "wire-catalogue", "", "NDJSON file of candidate wires; empty uses a small built-in set")
	pflag.IntVar(&maxResults, "max-results", 5, "maximum number of ranked candidates to print")
	pflag.StringVar(&luaScript, "lua-script", "", "optional Lua script adding a user-scored ranking dimension")
	pflag.StringVar(&storePath, "store", "", "optional sqlite path to persist the ranking")
	pflag.StringVar(&queryTag, "query-tag", "magsynth", "tag the ranking is stored under")
	pflag.Parse()

	log := lib.Default()

	inputVoltage, err := inputVoltageDim(vinMin, vinNom, vinMax)
	if err != nil {
		log.Error("invalid input voltage", "err", err)
		os.Exit(1)
	}

	dr, ops, err := deriveRequirements(topology, inputVoltage, vout, iout, freq, ambient, efficiency, diodeDrop, rippleRatio, maxSwitch, maxDuty)
	if err != nil {
		log.Error("could not derive design requirements", "topology", topology, "err", err)
		os.Exit(1)
	}

	core := lib.Core{
		Shape:        coreShape,
		Material:     material,
		Gapping:      gapping,
		NumberStacks: numStacks,
		WindowWidth:  windowWidth,
		WindowHeight: windowHeight,
		InnerRadius:  innerRadius,
	}
	if toroid {
		core.ShapeFamily = lib.ShapeToroidal
	}

	wires, err := loadWires(wireCatalogue)
	if err != nil {
		log.Error("could not load wire catalogue", "err", err)
		os.Exit(1)
	}

	settings := lib.NewSettingsBuilder().Build()
	adviser := lib.NewCoilAdviser(settings)

	base := lib.Magnetic{Core: core, Coil: lib.Coil{FunctionalDescription: windingsFromRatios(dr, primaryTurns)}}
	candidates := adviser.GetAdvisedCoil(base, lib.AdviseInput{
		DesignRequirements: dr,
		OperatingPoints:    ops,
		Wires:              wires,
		MaxResults:         maxResults,
	})
	if len(candidates) == 0 {
		fmt.Println("no candidate coil could be wound for the given requirements")
		return
	}

	ranked := rankCandidates(candidates, luaScript)

	fmt.Printf("%-24s %8s %8s\n", "reference", "windings", "score")
	refs := make([]string, len(ranked))
	scores := make([]float64, len(ranked))
	for i, r := range ranked {
		fmt.Printf("%-24s %8d %8.4f\n", r.Reference, r.Magnetic.Coil.NumberWindings(), r.score)
		refs[i] = r.Reference
		scores[i] = r.score
	}

	if storePath != "" {
		if err := persistRanking(storePath, queryTag, refs, scores); err != nil {
			log.Error("could not persist ranking", "err", err)
			os.Exit(1)
		}
	}
}

func inputVoltageDim(min, nom, max float64) (lib.DimWithTol, error) {
	var d lib.DimWithTol
	if min > 0 {
		d.Minimum = &min
	}
	if nom > 0 {
		d.Nominal = &nom
	}
	if max > 0 {
		d.Maximum = &max
	}
	return d, d.Validate()
}

// deriveRequirements builds the requested topology from flags, runs its
// checks, and derives both the DesignRequirements and the per-corner
// operating points magsynth passes on to the coil adviser.
func deriveRequirements(topology string, inputVoltage lib.DimWithTol, vout, iout []float64, freq, ambient, efficiency, diodeDrop, rippleRatio, maxSwitch, maxDuty float64) (lib.DesignRequirements, []lib.OperatingPoint, error) {
	eff := efficiency
	var maxSwitchPtr *float64
	if maxSwitch > 0 {
		maxSwitchPtr = &maxSwitch
	}
	var ripplePtr *float64
	if rippleRatio > 0 {
		ripplePtr = &rippleRatio
	}

	switch topology {
	case "buck":
		b := lib.Buck{
			InputVoltage:         inputVoltage,
			DiodeVoltageDrop:     diodeDrop,
			Efficiency:           &eff,
			CurrentRippleRatio:   ripplePtr,
			MaximumSwitchCurrent: maxSwitchPtr,
			OperatingPoints: []lib.BuckOperatingPoint{{
				OutputVoltage:      vout[0],
				OutputCurrent:      iout[0],
				SwitchingFrequency: freq,
				AmbientTemperature: ambient,
			}},
		}
		if _, err := b.RunChecks(false); err != nil {
			return lib.DesignRequirements{}, nil, err
		}
		dr, err := b.ProcessDesignRequirements()
		if err != nil {
			return lib.DesignRequirements{}, nil, err
		}
		l, _ := dr.MagnetizingInductance.GetNominal()
		ops, err := b.ProcessOperatingPoints(nil, l)
		return dr, ops, err

	case "boost":
		b := lib.Boost{
			InputVoltage:         inputVoltage,
			DiodeVoltageDrop:     diodeDrop,
			Efficiency:           &eff,
			CurrentRippleRatio:   ripplePtr,
			MaximumSwitchCurrent: maxSwitchPtr,
			OperatingPoints: []lib.BoostOperatingPoint{{
				OutputVoltage:      vout[0],
				OutputCurrent:      iout[0],
				SwitchingFrequency: freq,
				AmbientTemperature: ambient,
			}},
		}
		if _, err := b.RunChecks(false); err != nil {
			return lib.DesignRequirements{}, nil, err
		}
		dr, err := b.ProcessDesignRequirements()
		if err != nil {
			return lib.DesignRequirements{}, nil, err
		}
		l, _ := dr.MagnetizingInductance.GetNominal()
		ops, err := b.ProcessOperatingPoints(nil, l)
		return dr, ops, err

	case "flyback":
		f := lib.Flyback{
			InputVoltage:     inputVoltage,
			DiodeVoltageDrop: diodeDrop,
			Efficiency:       &eff,
			RippleRatio:      rippleRatio,
			OperatingPoints: []lib.FlybackOperatingPoint{{
				OutputVoltages:     vout,
				OutputCurrents:     iout,
				SwitchingFrequency: freq,
				AmbientTemperature: ambient,
			}},
		}
		if maxDuty > 0 {
			f.MaxDutyCycle = &maxDuty
		}
		if _, err := f.RunChecks(false); err != nil {
			return lib.DesignRequirements{}, nil, err
		}
		dr, err := f.ProcessDesignRequirements()
		if err != nil {
			return lib.DesignRequirements{}, nil, err
		}
		l, _ := dr.MagnetizingInductance.GetNominal()
		ratios := turnsRatiosNominal(dr)
		ops, err := f.ProcessOperatingPoints(ratios, l)
		return dr, ops, err

	case "isolated-buck-boost":
		c := lib.IsolatedBuckBoost{
			InputVoltage:         inputVoltage,
			DiodeVoltageDrop:     diodeDrop,
			Efficiency:           &eff,
			MaximumSwitchCurrent: maxSwitchPtr,
			OperatingPoints: []lib.IsolatedBuckBoostOperatingPoint{{
				OutputVoltages:     vout,
				OutputCurrents:     iout,
				SwitchingFrequency: freq,
				AmbientTemperature: ambient,
			}},
		}
		if _, err := c.RunChecks(false); err != nil {
			return lib.DesignRequirements{}, nil, err
		}
		dr, err := c.ProcessDesignRequirements()
		if err != nil {
			return lib.DesignRequirements{}, nil, err
		}
		l, _ := dr.MagnetizingInductance.GetNominal()
		ratios := turnsRatiosNominal(dr)
		ops, err := c.ProcessOperatingPoints(ratios, l)
		return dr, ops, err

	default:
		return lib.DesignRequirements{}, nil, lib.NewError(lib.InvalidInput, "deriveRequirements", nil)
	}
}

// windingsFromRatios builds one Winding per isolation side, scaling
// every secondary's turn count off the primary by the derived turns
// ratio. Resolving the turn count an inductance/reluctance model would
// actually need is the job of the magnetising-inductance model named in
// §6; here a fixed primary turn count stands in for it so the coil
// adviser has something concrete to wind.
func windingsFromRatios(dr lib.DesignRequirements, primaryTurns int) []lib.Winding {
	n := dr.NumberWindings()
	if n == 0 {
		n = 1
	}
	windings := make([]lib.Winding, n)
	windings[0] = lib.Winding{Name: "W0", NumberTurns: primaryTurns, NumberParallels: 1}
	for i := 1; i < n; i++ {
		turns := primaryTurns
		if i-1 < len(dr.TurnsRatios) {
			if r, ok := dr.TurnsRatios[i-1].GetNominal(); ok && r > 0 {
				turns = int(float64(primaryTurns)/r + 0.5)
				if turns < 1 {
					turns = 1
				}
			}
		}
		windings[i] = lib.Winding{Name: fmt.Sprintf("W%d", i), NumberTurns: turns, NumberParallels: 1}
	}
	return windings
}

func turnsRatiosNominal(dr lib.DesignRequirements) []float64 {
	out := make([]float64, len(dr.TurnsRatios))
	for i, t := range dr.TurnsRatios {
		v, _ := t.GetNominal()
		out[i] = v
	}
	return out
}

// loadWires returns the candidate wires advisors choose from: either a
// small built-in round-wire ladder, or one round wire per named entry
// of an NDJSON catalogue file. Only each entry's name is used: every
// catalogue wire gets the same 0.5 mm conducting / 0.55 mm outer
// diameter, and the rest of the record is not read.
func loadWires(path string) ([]lib.Wire, error) {
	if path == "" {
		var wires []lib.Wire
		for _, d := range []float64{0.2e-3, 0.3e-3, 0.4e-3, 0.5e-3, 0.71e-3, 1.0e-3, 1.4e-3} {
			wires = append(wires, lib.NewRoundWire(fmt.Sprintf("round %.2fmm", d*1e3), d, d*1.08, 1, 1000, 1))
		}
		return wires, nil
	}
	entries, err := lib.LoadCatalogueFile(path)
	if err != nil {
		return nil, err
	}
	var wires []lib.Wire
	for name := range entries {
		wires = append(wires, lib.NewRoundWire(name, 0.5e-3, 0.55e-3, 1, 1000, 1))
	}
	return wires, nil
}

// rankedCandidate bundles a CoilCandidate with the composite score that
// decided its position in the printed ranking.
type rankedCandidate struct {
	lib.CoilCandidate
	score float64
}

// rankCandidates scores every candidate by winding count (fewer is
// better) and, if luaScript is set, blends in the user-supplied Lua
// score, then sorts descending.
func rankCandidates(candidates []lib.CoilCandidate, luaScript string) []rankedCandidate {
	var filter *lib.LuaScoreFilter
	if luaScript != "" {
		filter = &lib.LuaScoreFilter{Script: luaScript}
	}

	out := make([]rankedCandidate, len(candidates))
	for i, c := range candidates {
		score := 1.0 / float64(1+c.Magnetic.Coil.NumberWindings())
		if filter != nil {
			if v, err := filter.Score(c.Magnetic); err == nil {
				score += v
			}
		}
		out[i] = rankedCandidate{CoilCandidate: c, score: score}
	}
	lib.StableSortDescending(out, func(r rankedCandidate) float64 { return r.score })
	return out
}

func persistRanking(path, tag string, refs []string, scores []float64) error {
	store, err := lib.OpenCatalogueStore(path)
	if err != nil {
		return err
	}
	defer store.Close()
	return store.SaveRankedCandidates(tag, refs, scores, 0)
}
