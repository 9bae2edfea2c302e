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

// WindingInsulationCombination assigns one WireSolidInsulationRequirement
// per winding for one candidate pattern x repetition (§4.3 step 3).
type WindingInsulationCombination struct {
	PerWinding []WireSolidInsulationRequirement
	NeedsMargin bool
}

// CoilAdviser enumerates isolation-side patterns, repetitions and
// insulation combinations, picks wire per winding via a WireAdviser it
// owns by value (§9: "decompose deep inheritance into two
// collaborators"), attempts to wind, and returns ranked candidates
// (§4.3).
type CoilAdviser struct {
	Wires    WireAdviser
	Settings Settings
}

// NewCoilAdviser builds a CoilAdviser with the given settings.
func NewCoilAdviser(s Settings) CoilAdviser {
	return CoilAdviser{Wires: WireAdviser{}, Settings: s}
}

//----------------------------------------------------------------------
// pattern / repetition / insulation-combination enumeration (§4.3)
//----------------------------------------------------------------------

// DerivePatterns enumerates up to min(K!/2, maximum_coil_pattern)
// distinct permutations of the distinct isolation sides (in
// first-occurrence order), each expanded back to winding indices; for
// toroidal cores the last permutation is dropped (§4.3 step 1).
func DerivePatterns(isoSides []IsolationSide, isToroid bool, maxPatterns int) [][]int {
	if maxPatterns <= 0 {
		maxPatterns = MaximumCoilPattern
	}
	distinct := firstOccurrenceOrder(isoSides)
	K := len(distinct)

	bound := factorial(K) / 2
	if bound < 1 {
		bound = 1
	}
	if bound > maxPatterns {
		bound = maxPatterns
	}

	perms := nextPermutations(distinct, bound)
	patterns := make([][]int, 0, len(perms))
	for _, perm := range perms {
		var windingOrder []int
		for _, side := range perm {
			for i, s := range isoSides {
				if s == side {
					windingOrder = append(windingOrder, i)
				}
			}
		}
		patterns = append(patterns, windingOrder)
	}
	if isToroid && len(patterns) > 1 {
		patterns = patterns[:len(patterns)-1]
	}
	return patterns
}

func firstOccurrenceOrder(sides []IsolationSide) []IsolationSide {
	var out []IsolationSide
	seen := make(map[IsolationSide]bool)
	for _, s := range sides {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}

func factorial(n int) int {
	f := 1
	for i := 2; i <= n; i++ {
		f *= i
	}
	return f
}

// nextPermutations returns up to limit permutations of items starting
// from the identity order, advancing via the standard next-permutation
// algorithm (lexicographic successor).
func nextPermutations(items []IsolationSide, limit int) [][]IsolationSide {
	cur := append([]IsolationSide{}, items...)
	out := [][]IsolationSide{append([]IsolationSide{}, cur...)}
	for len(out) < limit {
		if !nextPermutation(cur) {
			break
		}
		out = append(out, append([]IsolationSide{}, cur...))
	}
	return out
}

func nextPermutation(a []IsolationSide) bool {
	n := len(a)
	if n < 2 {
		return false
	}
	i := n - 2
	for i >= 0 && a[i] >= a[i+1] {
		i--
	}
	if i < 0 {
		return false
	}
	j := n - 1
	for a[j] <= a[i] {
		j--
	}
	a[i], a[j] = a[j], a[i]
	for l, r := i+1, n-1; l < r; l, r = l+1, r-1 {
		a[l], a[r] = a[r], a[l]
	}
	return true
}

// DeriveRepetitions returns {1} for a single winding or a toroid, else
// {2,1} when a leakage-inductance requirement is present (interleaving
// reduces leakage) or {1,2} otherwise (§4.3 step 2).
func DeriveRepetitions(numWindings int, isToroid bool, hasLeakageRequirement bool) []int {
	if numWindings <= 1 || isToroid {
		return []int{1}
	}
	if hasLeakageRequirement {
		return []int{2, 1}
	}
	return []int{1, 2}
}

// NeedsMargin implements §4.3 step 4: true iff some cyclic-neighbour pair
// (cyclic only when r>=1, which it always is) has layers_sum < 3 AND
// grades_sum < 4.
func NeedsMargin(combo []WireSolidInsulationRequirement, pattern []int, repetitions int) bool {
	if len(pattern) <= 1 {
		return false
	}
	expanded := make([]int, 0, len(pattern)*repetitions)
	for r := 0; r < repetitions; r++ {
		expanded = append(expanded, pattern...)
	}
	n := len(expanded)
	if n <= 1 {
		return false
	}
	for i := 0; i < n; i++ {
		a := combo[expanded[i]]
		b := combo[expanded[(i+1)%n]]
		gradesSum := int(a.MinGrade) + int(b.MinGrade)
		layersSum := a.MinLayers + b.MinLayers
		if layersSum < 3 && gradesSum < 4 {
			return true
		}
	}
	return false
}

// DeriveInsulationCombinations enumerates admissible per-winding
// WireSolidInsulationRequirements for a DesignRequirements' insulation
// need (§4.3 step 3).
func DeriveInsulationCombinations(req *InsulationRequirement, numWindings int, isoSides []IsolationSide, allowMarginTape, allowInsulatedWire bool) []WindingInsulationCombination {
	functionalAll := WindingInsulationCombination{PerWinding: repeatRequirement(WireSolidInsulationRequirement{MinGrade: 1, MinLayers: 1}, numWindings)}

	if req == nil || req.Type == InsulationNone {
		return []WindingInsulationCombination{functionalAll}
	}

	withstand := 0.0
	if req.WithstandVoltage != nil {
		withstand = *req.WithstandVoltage
	}

	distinctSides := firstOccurrenceOrder(isoSides)

	switch req.Type {
	case InsulationReinforced, InsulationDouble:
		var out []WindingInsulationCombination
		for _, side := range distinctSides {
			combo := make([]WireSolidInsulationRequirement, numWindings)
			for i := range combo {
				if isoSides[i] != side {
					grade := InsulationGrade(2)
					if allowInsulatedWire {
						grade = 3
					}
					combo[i] = WireSolidInsulationRequirement{MinGrade: grade, MinLayers: 3, MinBreakdownVoltage: withstand}
				} else {
					combo[i] = WireSolidInsulationRequirement{MinGrade: 1, MinLayers: 1}
				}
			}
			out = append(out, WindingInsulationCombination{PerWinding: combo})
		}
		return out

	case InsulationBasic, InsulationSupplementary:
		effectiveType := req.Type
		if !allowMarginTape {
			effectiveType = InsulationDouble
		}
		var out []WindingInsulationCombination
		if effectiveType == req.Type {
			out = append(out, functionalAll) // requires margin tape
		}
		for _, side := range distinctSides {
			combo := make([]WireSolidInsulationRequirement, numWindings)
			for i := range combo {
				if isoSides[i] != side {
					combo[i] = WireSolidInsulationRequirement{MinGrade: 1, MinLayers: 2, MinBreakdownVoltage: withstand}
				} else {
					combo[i] = WireSolidInsulationRequirement{MinGrade: 1, MinLayers: 1}
				}
			}
			out = append(out, WindingInsulationCombination{PerWinding: combo})
		}
		if effectiveType == InsulationDouble {
			allBasic := make([]WireSolidInsulationRequirement, numWindings)
			for i := range allBasic {
				allBasic[i] = WireSolidInsulationRequirement{MinGrade: 1, MinLayers: 2, MinBreakdownVoltage: withstand}
			}
			out = append(out, WindingInsulationCombination{PerWinding: allBasic})
		}
		return out

	default:
		return []WindingInsulationCombination{functionalAll}
	}
}

func repeatRequirement(r WireSolidInsulationRequirement, n int) []WireSolidInsulationRequirement {
	out := make([]WireSolidInsulationRequirement, n)
	for i := range out {
		out[i] = r
	}
	return out
}

// CheckIntegrity implements §4.3 step 5: if any winding has fewer
// physical turns than r, merge to a single expanded pattern where the
// first repetition's window is kept verbatim and subsequent repetitions
// contribute only the windings with enough turns (the Open Question of
// §9, resolved literally per DESIGN.md item D.2), and r is reset to 1.
func CheckIntegrity(windings []Winding, pattern []int, repetitions int) ([]int, int) {
	enough := func(idx int) bool { return windings[idx].NumberTurns >= repetitions }
	allEnough := true
	for _, idx := range pattern {
		if !enough(idx) {
			allEnough = false
			break
		}
	}
	if allEnough {
		return pattern, repetitions
	}
	expanded := append([]int{}, pattern...)
	for r := 1; r < repetitions; r++ {
		for _, idx := range pattern {
			if enough(idx) {
				expanded = append(expanded, idx)
			}
		}
	}
	return expanded, 1
}

//----------------------------------------------------------------------
// candidate generation (§4.3 steps 6-7)
//----------------------------------------------------------------------

// CoilCandidate is one ranked wound Magnetic plus the combination
// reference string that produced it.
type CoilCandidate struct {
	Magnetic  Magnetic
	Reference string
}

// AdviseInput bundles everything GetAdvisedCoil needs beyond the
// Magnetic itself.
type AdviseInput struct {
	DesignRequirements DesignRequirements
	OperatingPoints    []OperatingPoint
	Wires              []Wire
	MaxResults         int
}

// GetAdvisedCoil runs the full §4.3 algorithm and returns up to
// MaxResults ranked candidates, or an empty slice if no combination could
// be wound (§7 user-visible behaviour).
func (ca CoilAdviser) GetAdvisedCoil(base Magnetic, in AdviseInput) []CoilCandidate {
	dr := in.DesignRequirements
	isToroid := base.Core.ShapeFamily == ShapeToroidal
	patterns := DerivePatterns(dr.IsolationSides, isToroid, ca.Settings.MaximumCoilPattern)
	repetitions := DeriveRepetitions(len(dr.IsolationSides), isToroid, dr.LeakageInductance != nil)

	var results []CoilCandidate
	perCombo := 1
	numCombosEstimate := len(patterns) * len(repetitions)
	if numCombosEstimate > 0 && in.MaxResults > 0 {
		perCombo = (in.MaxResults + numCombosEstimate - 1) / numCombosEstimate
		if perCombo < 1 {
			perCombo = 1
		}
	}

	for pi, pattern := range patterns {
		for _, r := range repetitions {
			expandedPattern, effectiveR := CheckIntegrity(base.Coil.FunctionalDescription, pattern, r)

			combos := DeriveInsulationCombinations(dr.Insulation, len(dr.IsolationSides), dr.IsolationSides,
				ca.Settings.CoilAllowMarginTape, ca.Settings.CoilAllowInsulatedWire)

			for ci, combo := range combos {
				needsMargin := NeedsMargin(combo.PerWinding, expandedPattern, effectiveR)
				if needsMargin && !ca.Settings.CoilAllowMarginTape {
					continue
				}

				candidate, ok := ca.tryWind(base, in, expandedPattern, effectiveR, combo)
				if !ok {
					continue
				}
				candidate.Reference = referenceString(pi, expandedPattern, effectiveR, needsMargin, dr.Insulation, ci)
				results = append(results, candidate)
				if len(results) >= perCombo*(pi+1) {
					break
				}
			}
		}
	}

	if in.MaxResults > 0 && len(results) > in.MaxResults {
		results = results[:in.MaxResults]
	}
	return results
}

func referenceString(patternIndex int, pattern []int, repetitions int, needsMargin bool, insulation *InsulationRequirement, comboIndex int) string {
	ref := "pattern" + itoa(patternIndex) + "_rep" + itoa(repetitions)
	if repetitions > 1 {
		ref += "_interleaved"
	}
	if needsMargin {
		ref += "_margin"
	}
	if insulation != nil {
		ref += "_combo" + itoa(comboIndex)
	}
	return ref
}

// tryWind invokes the wire advisor per winding and attempts to wind,
// retrying with relaxed current-density/parallel budgets up to four
// attempts on zero survivors (§4.3 step 6, §4.4 step 6).
func (ca CoilAdviser) tryWind(base Magnetic, in AdviseInput, pattern []int, repetitions int, combo WindingInsulationCombination) (CoilCandidate, bool) {
	coil := base.Coil
	coil.FunctionalDescription = append([]Winding{}, base.Coil.FunctionalDescription...)

	proportions := make([]float64, len(coil.FunctionalDescription))
	for i, w := range coil.FunctionalDescription {
		rms := 0.0
		if i < len(in.OperatingPoints[0].ExcitationsPerWinding) {
			if proc, err := in.OperatingPoints[0].ExcitationsPerWinding[i].Current.GetProcessed(); err == nil {
				rms = proc.RMS
			}
		}
		proportions[i] = windingPower(w, math.Max(rms, 1e-6))
	}

	windowArea := base.Core.WindowWidth * base.Core.WindowHeight
	maxDensity := ca.Settings.MaximumEffectiveCurrentDensity
	maxParallels := ca.Settings.MaximumNumberParallels

	for attempt := 0; attempt < 4; attempt++ {
		ok := true
		for i, w := range coil.FunctionalDescription {
			if i >= len(combo.PerWinding) {
				break
			}
			harmonics := Harmonics{}
			if i < len(in.OperatingPoints[0].ExcitationsPerWinding) {
				if h, err := in.OperatingPoints[0].ExcitationsPerWinding[i].Current.GetHarmonics(); err == nil {
					harmonics = h
				}
			}
			candidates := ca.Wires.Advise(in.Wires, WireAdviserInput{
				Winding:           w,
				SectionArea:       windowArea / float64(len(coil.FunctionalDescription)*repetitions),
				CurrentHarmonics:  harmonics,
				Requirement:       combo.PerWinding[i],
				NumberSections:    repetitions,
				MaxParallels:      maxParallels,
				MaxCurrentDensity: maxDensity,
				IncludeRound:      ca.Settings.WireAdviserIncludeRound,
				IncludeLitz:       ca.Settings.WireAdviserIncludeLitz,
				IncludeRectangular: ca.Settings.WireAdviserIncludeRectangular,
				IncludeFoil:       ca.Settings.WireAdviserIncludeFoil,
				IncludePlanar:     ca.Settings.WireAdviserIncludePlanar,
			}, 1, DefaultWireScoreWeights())
			if len(candidates) == 0 {
				ok = false
				break
			}
			coil.FunctionalDescription[i].Wire = candidates[0].Wire
			coil.FunctionalDescription[i].NumberParallels = candidates[0].Parallels
		}
		if ok {
			break
		}
		maxDensity *= 2
		maxParallels *= 2
		if attempt == 3 {
			logDrop("CoilAdviser.tryWind", NewError(Geometry, "wire advisor exhausted retry budget", nil))
			return CoilCandidate{}, false
		}
	}

	coil.Bobbin = Bobbin{Core: base.Core}
	if err := coil.WindBySections(proportions, pattern, repetitions); err != nil {
		logDrop("CoilAdviser.tryWind", err)
		return CoilCandidate{}, false
	}
	isoSideOf := map[string]IsolationSide{}
	for i, w := range coil.FunctionalDescription {
		if i < len(in.DesignRequirements.IsolationSides) {
			isoSideOf[w.Name] = in.DesignRequirements.IsolationSides[i]
		}
	}
	reqByWinding := map[string]WireSolidInsulationRequirement{}
	for i, w := range coil.FunctionalDescription {
		if i < len(combo.PerWinding) {
			reqByWinding[w.Name] = combo.PerWinding[i]
		}
	}
	_ = coil.CalculateInsulation(reqByWinding, isoSideOf, false)

	coil.DelimitAndCompact()
	if !coil.Wind(AlignSpread) {
		logDrop("CoilAdviser.tryWind", NewError(Geometry, "wind failed", nil))
		return CoilCandidate{}, false
	}
	coil.DelimitAndCompact()

	result := base
	result.Coil = coil
	return CoilCandidate{Magnetic: result}, true
}
