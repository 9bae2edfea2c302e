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

	"github.com/bfix/openmagnetics/internal/numeric"
)

// WireKind is the tagged variant discriminant of Wire (§9: "variants
// replacing runtime type checks").
type WireKind int

const (
	WireRound WireKind = iota
	WireRectangular
	WireFoil
	WirePlanar
	WireLitz
)

// InsulationGrade is the ordinal magnet-wire coating rating (GLOSSARY).
type InsulationGrade int

// Wire is a tagged variant over the five physical wire constructions
// named in §3. Only the fields relevant to Kind are populated; the
// getters below dispatch exhaustively on Kind rather than via an
// interface hierarchy, mirroring §9's redesign note.
type Wire struct {
	kind WireKind

	// ROUND
	ConductingDiameter float64
	OuterDiameter      float64

	// RECTANGULAR / FOIL / PLANAR
	Width      float64
	Height     float64
	OuterWidth  float64
	OuterHeight float64

	// LITZ
	StrandWire    *Wire
	NumberStrands int

	InsulationMaterial string
	Grade              InsulationGrade
	CoatingThicknessM  float64
	BreakdownVoltage   float64
	Layers             int

	Name string
}

// Kind returns the tagged variant discriminant.
func (w Wire) Kind() WireKind { return w.kind }

// NewRoundWire builds a ROUND wire.
func NewRoundWire(name string, conductingDiameter, outerDiameter float64, grade InsulationGrade, breakdownVoltage float64, layers int) Wire {
	return Wire{kind: WireRound, Name: name, ConductingDiameter: conductingDiameter, OuterDiameter: outerDiameter,
		Grade: grade, BreakdownVoltage: breakdownVoltage, Layers: layers,
		CoatingThicknessM: (outerDiameter - conductingDiameter) / 2}
}

// NewRectangularWire builds a RECTANGULAR wire.
func NewRectangularWire(name string, width, height, outerWidth, outerHeight float64, grade InsulationGrade, breakdownVoltage float64, layers int) Wire {
	return Wire{kind: WireRectangular, Name: name, Width: width, Height: height,
		OuterWidth: outerWidth, OuterHeight: outerHeight, Grade: grade, BreakdownVoltage: breakdownVoltage, Layers: layers}
}

// NewFoilWire builds a FOIL wire (effectively a single very wide/thin
// rectangular conductor run the full section width).
func NewFoilWire(name string, width, height, outerWidth, outerHeight float64, grade InsulationGrade, breakdownVoltage float64, layers int) Wire {
	return Wire{kind: WireFoil, Name: name, Width: width, Height: height,
		OuterWidth: outerWidth, OuterHeight: outerHeight, Grade: grade, BreakdownVoltage: breakdownVoltage, Layers: layers}
}

// NewPlanarWire builds a PLANAR wire (a PCB-trace-like flat conductor).
func NewPlanarWire(name string, width, height, outerWidth, outerHeight float64, grade InsulationGrade, breakdownVoltage float64, layers int) Wire {
	return Wire{kind: WirePlanar, Name: name, Width: width, Height: height,
		OuterWidth: outerWidth, OuterHeight: outerHeight, Grade: grade, BreakdownVoltage: breakdownVoltage, Layers: layers}
}

// NewLitzWire builds a LITZ wire from a strand ROUND wire and a strand
// count.
func NewLitzWire(name string, strand Wire, numberStrands int, outerDiameter float64, grade InsulationGrade, breakdownVoltage float64, layers int) Wire {
	return Wire{kind: WireLitz, Name: name, StrandWire: &strand, NumberStrands: numberStrands,
		OuterDiameter: outerDiameter, Grade: grade, BreakdownVoltage: breakdownVoltage, Layers: layers}
}

// MaximumConductingWidth returns the conductor's (non-insulated) width.
func (w Wire) MaximumConductingWidth() float64 {
	switch w.kind {
	case WireRound, WireLitz:
		return w.maxConductingDiameter()
	default:
		return w.Width
	}
}

// MaximumConductingHeight returns the conductor's (non-insulated)
// height.
func (w Wire) MaximumConductingHeight() float64 {
	switch w.kind {
	case WireRound, WireLitz:
		return w.maxConductingDiameter()
	default:
		return w.Height
	}
}

func (w Wire) maxConductingDiameter() float64 {
	if w.kind == WireLitz {
		if w.StrandWire == nil || w.NumberStrands == 0 {
			return w.OuterDiameter
		}
		// Bundle diameter for a round-packed litz bundle: d = strand_d *
		// sqrt(N) / packing_factor (packing_factor ~0.85 for round strands).
		return w.StrandWire.ConductingDiameter * math.Sqrt(float64(w.NumberStrands)) / 0.85
	}
	return w.ConductingDiameter
}

// MaximumOuterWidth returns the insulated (outer) width, used for
// section-fit checks.
func (w Wire) MaximumOuterWidth() float64 {
	switch w.kind {
	case WireRound, WireLitz:
		return w.maxOuterDiameter()
	default:
		return w.OuterWidth
	}
}

// MaximumOuterHeight returns the insulated (outer) height.
func (w Wire) MaximumOuterHeight() float64 {
	switch w.kind {
	case WireRound, WireLitz:
		return w.maxOuterDiameter()
	default:
		return w.OuterHeight
	}
}

func (w Wire) maxOuterDiameter() float64 {
	if w.kind == WireLitz {
		return w.OuterDiameter
	}
	return w.OuterDiameter
}

// CoatingThickness returns the insulation coating thickness (round wire)
// or zero for constructions without a uniform coating.
func (w Wire) CoatingThickness() float64 {
	if w.kind == WireRound || w.kind == WireLitz {
		return w.CoatingThicknessM
	}
	return 0
}

// ConductingArea returns the cross-sectional conducting area, dispatched
// exhaustively on Kind.
func (w Wire) ConductingArea() float64 {
	switch w.kind {
	case WireRound:
		r := w.ConductingDiameter / 2
		return math.Pi * r * r
	case WireRectangular, WireFoil, WirePlanar:
		return w.Width * w.Height
	case WireLitz:
		if w.StrandWire == nil {
			return 0
		}
		return w.StrandWire.ConductingArea() * float64(w.NumberStrands)
	default:
		return 0
	}
}

// OuterArea returns the insulated footprint area.
func (w Wire) OuterArea() float64 {
	return w.MaximumOuterWidth() * w.MaximumOuterHeight()
}

//----------------------------------------------------------------------
// wire advisor (C5, §4.4)
//----------------------------------------------------------------------

// WireSolidInsulationRequirement constrains the candidate wires usable
// for one winding within one insulation combination (§4.3 step 3, §4.4
// step 2).
type WireSolidInsulationRequirement struct {
	MinGrade            InsulationGrade
	MaxGrade            InsulationGrade // 0 means unbounded
	MinLayers           int
	MaxLayers           int // 0 means unbounded
	MinBreakdownVoltage float64
	MaxBreakdownVoltage float64 // 0 means unbounded
}

// satisfies reports whether w meets the requirement (or is more than it,
// when no Max* bound applies; Max* bounds force margin-tape-compatible
// wires when set, per §4.4 step 2).
func (r WireSolidInsulationRequirement) satisfies(w Wire) bool {
	if w.Grade < r.MinGrade {
		return false
	}
	if r.MaxGrade > 0 && w.Grade > r.MaxGrade {
		return false
	}
	if w.Layers < r.MinLayers {
		return false
	}
	if r.MaxLayers > 0 && w.Layers > r.MaxLayers {
		return false
	}
	if w.BreakdownVoltage < r.MinBreakdownVoltage {
		return false
	}
	if r.MaxBreakdownVoltage > 0 && w.BreakdownVoltage > r.MaxBreakdownVoltage {
		return false
	}
	return true
}

// WireCandidate is one (wire, parallel-count) pairing under
// consideration by the advisor.
type WireCandidate struct {
	Wire      Wire
	Parallels int

	AreaScore       float64
	SkinScore       float64
	ResistanceScore float64
	ProximityScore  float64
	Total           float64

	// FillScore is the distance of Parallels from the current-density-
	// optimal parallel count (0 means this candidate sits exactly at the
	// ideal fill for the winding's RMS current).
	FillScore float64
}

// WireAdviserInput bundles what WireAdvise needs to score a winding's
// candidate wires (§4.4).
type WireAdviserInput struct {
	Winding           Winding
	SectionArea       float64 // available area (outer footprint budget)
	CurrentHarmonics  Harmonics
	Temperature       float64
	Requirement       WireSolidInsulationRequirement
	NumberSections    int // N_sections (repetitions) the winding is split across
	MaxParallels      int
	MaxCurrentDensity float64 // A/m^2, defaults to MaximumEffectiveCurrentDensity
	SkinEffectModel   WindingSkinEffectLossesModel
	IncludeRound, IncludeLitz, IncludeRectangular, IncludeFoil, IncludePlanar bool
}

// WireAdviser scores a wire catalogue against a winding's requirements
// and returns a ranked list (§4.4).
type WireAdviser struct{}

// kindAllowed applies the §6/§4.4-supplemented wire-type inclusion
// flags.
func kindAllowed(in WireAdviserInput, k WireKind) bool {
	switch k {
	case WireRound:
		return in.IncludeRound
	case WireLitz:
		return in.IncludeLitz
	case WireRectangular:
		return in.IncludeRectangular
	case WireFoil:
		return in.IncludeFoil
	case WirePlanar:
		return in.IncludePlanar
	default:
		return true
	}
}

// resistivityCopper is the DC resistivity of copper at 20C (ohm*m), used
// by the skin-depth and effective-resistance scoring.
const resistivityCopper = 1.68e-8

// skinDepth returns delta = sqrt(rho / (pi * mu_0 * f)).
func skinDepth(f float64) float64 {
	if f <= 0 {
		return math.Inf(1)
	}
	return math.Sqrt(resistivityCopper / (math.Pi * Mu_0 * f))
}

// dowellFactor approximates the Dowell AC/DC resistance ratio for a
// round conductor of radius r at skin depth delta, in layer position
// (0-indexed) among numLayers total layers of the same winding section
// (a simplified closed-form standing in for the full Dowell/Lotfi/Wojda
// family named by Settings.WindingSkinEffectLossesModel).
func dowellFactor(r, delta float64, layerIndex, numLayers int) float64 {
	if delta <= 0 {
		return 1
	}
	xi := r / delta * math.Sqrt2
	m := float64(2*layerIndex + 1)
	fr := xi * (math.Sinh(2*xi) + math.Sin(2*xi)) / (math.Cosh(2*xi) - math.Cos(2*xi))
	fr += 2 * (m*m - 1) / 3 * xi * (math.Sinh(xi) - math.Sin(xi)) / (math.Cosh(xi) + math.Cos(xi))
	if fr < 1 {
		fr = 1
	}
	return fr
}

// Advise scores a wire catalogue against in, filters and ranks, and
// returns up to maxResults candidates (§4.4 steps 1-5).
func (WireAdviser) Advise(catalogue []Wire, in WireAdviserInput, maxResults int, weights ScoreWeights) []WireCandidate {
	maxParallels := in.MaxParallels
	if maxParallels <= 0 {
		maxParallels = MaximumNumberParallels
	}
	maxDensity := in.MaxCurrentDensity
	if maxDensity <= 0 {
		maxDensity = MaximumEffectiveCurrentDensity
	}

	fEff := 0.0
	var rmsCurrent float64
	for k := range in.CurrentHarmonics.Frequencies {
		if in.CurrentHarmonics.Frequencies[k] > fEff {
		}
		rmsCurrent += Sqr(in.CurrentHarmonics.Amplitudes[k])
	}
	rmsCurrent = math.Sqrt(rmsCurrent)
	if len(in.CurrentHarmonics.Frequencies) > 1 {
		var num, den float64
		for k := 1; k < len(in.CurrentHarmonics.Frequencies); k++ {
			a := in.CurrentHarmonics.Amplitudes[k]
			num += a * a * in.CurrentHarmonics.Frequencies[k] * in.CurrentHarmonics.Frequencies[k]
			den += a * a
		}
		if den > 0 {
			fEff = math.Sqrt(num / den)
		}
	}

	numSections := in.NumberSections
	if numSections < 1 {
		numSections = 1
	}
	requiredAreaTotal := in.Winding.Wire.ConductingArea() // placeholder, real area comes from wire under test
	_ = requiredAreaTotal

	var candidates []WireCandidate
	for _, w := range catalogue {
		if !kindAllowed(in, w.Kind()) {
			continue
		}
		if !in.Requirement.satisfies(w) {
			continue
		}

		allowedParallels := make([]float64, maxParallels)
		for i := range allowedParallels {
			allowedParallels[i] = float64(i + 1)
		}
		idealParallels := rmsCurrent / (maxDensity * w.ConductingArea())
		nearestFill, _ := numeric.NearestValue(allowedParallels, idealParallels)

		for parallels := 1; parallels <= maxParallels; parallels++ {
			condArea := w.ConductingArea() * float64(parallels)
			requiredArea := condArea * float64(in.Winding.NumberTurns) / float64(numSections)
			currentDensity := rmsCurrent / parallels / w.ConductingArea()
			if currentDensity > maxDensity {
				continue
			}
			outerArea := w.OuterArea() * float64(parallels)
			proportion := outerArea * float64(in.Winding.NumberTurns) / float64(numSections) / in.SectionArea
			if in.SectionArea > 0 && proportion > 1 {
				continue
			}

			delta := skinDepth(fEff)
			skinPenalty := 1.0
			if w.Kind() == WireRound || w.Kind() == WireLitz {
				r := w.MaximumConductingWidth() / 2
				skinPenalty = r / delta
			}

			dcResistance := resistivityCopper / (w.ConductingArea() * float64(parallels))
			acFactor := dowellFactor(w.MaximumConductingWidth()/2, delta, 0, 1)
			effResistance := dcResistance * acFactor

			proximity := acFactor - 1

			c := WireCandidate{
				Wire:            w,
				Parallels:       parallels,
				AreaScore:       requiredArea,
				SkinScore:       skinPenalty,
				ResistanceScore: effResistance,
				ProximityScore:  proximity,
				FillScore:       math.Abs(float64(parallels) - nearestFill),
			}
			candidates = append(candidates, c)
		}
	}

	if len(candidates) == 0 {
		return nil
	}

	area := make([]float64, len(candidates))
	skin := make([]float64, len(candidates))
	res := make([]float64, len(candidates))
	prox := make([]float64, len(candidates))
	for i, c := range candidates {
		area[i], skin[i], res[i], prox[i] = c.AreaScore, c.SkinScore, c.ResistanceScore, c.ProximityScore
	}
	areaN := Normalise(area, false, true, weights.Area)
	skinN := Normalise(skin, false, true, weights.Skin)
	resN := Normalise(res, false, true, weights.Resistance)
	proxN := Normalise(prox, false, true, weights.Proximity)

	for i := range candidates {
		candidates[i].Total = areaN[i] + skinN[i] + resN[i] + proxN[i]
	}

	StableSortDescending(candidates, func(c WireCandidate) float64 { return c.Total })
	if maxResults > 0 && len(candidates) > maxResults {
		candidates = candidates[:maxResults]
	}
	return candidates
}

// ScoreWeights are the per-filter weights §4.4 step 5 combines via §4.9.
type ScoreWeights struct {
	Area, Skin, Resistance, Proximity float64
}

// DefaultWireScoreWeights are the documented defaults (§4.4 step 5).
func DefaultWireScoreWeights() ScoreWeights {
	return ScoreWeights{Area: 1.0, Skin: 1.0, Resistance: 1.0, Proximity: 0.5}
}
