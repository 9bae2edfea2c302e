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

	"gonum.org/v1/gonum/mat"
)

// CapacitanceModel is the tagged variant discriminant over the four
// round-wire static-capacitance models plus the planar parallel-plate
// model (§4.6.3, §9).
type CapacitanceModel int

const (
	ModelKoch CapacitanceModel = iota
	ModelAlbach
	ModelDuerdoth
	ModelMassarini
	ModelParallelPlate
)

//----------------------------------------------------------------------
// adjacency (§4.6.1)
//----------------------------------------------------------------------

// SurroundingTurns returns every turn in all that is adjacent to t0:
// within distance, and not occluded by a third turn lying in the
// axis-aligned bounding strip between t0 and the candidate (§4.6.1).
func SurroundingTurns(t0 Turn, all []Turn) []Turn {
	var out []Turn
	for _, t := range all {
		if t.Name == t0.Name {
			continue
		}
		if t.Coordinates == t0.Coordinates {
			continue
		}
		maxDim0 := math.Max(t0.Dimensions[0], t0.Dimensions[1])
		maxDim := math.Max(t.Dimensions[0], t.Dimensions[1])
		distance := t0.Coordinates.Distance(t.Coordinates) - maxDim0/2 - maxDim/2
		minMaxDim := math.Min(maxDim0, maxDim)
		if distance > minMaxDim/2 {
			continue
		}
		if occluded(t0, t, all) {
			continue
		}
		out = append(out, t)
	}
	return out
}

// occluded reports whether a third turn lies in the scaled bounding strip
// between t0 and t and within reach of the t0->t segment (§4.6.1).
func occluded(t0, t Turn, all []Turn) bool {
	const overlappingFactor = OverlappingFactorSurroundingTurns
	xmin, xmax := math.Min(t0.Coordinates[0], t.Coordinates[0]), math.Max(t0.Coordinates[0], t.Coordinates[0])
	ymin, ymax := math.Min(t0.Coordinates[1], t.Coordinates[1]), math.Max(t0.Coordinates[1], t.Coordinates[1])
	cx, cy := (xmin+xmax)/2, (ymin+ymax)/2
	halfW := (xmax - xmin) / 2 * overlappingFactor
	halfH := (ymax - ymin) / 2 * overlappingFactor
	if halfW == 0 {
		halfW = (math.Max(t0.Dimensions[0], t.Dimensions[0])) / 2 * overlappingFactor
	}
	if halfH == 0 {
		halfH = (math.Max(t0.Dimensions[1], t.Dimensions[1])) / 2 * overlappingFactor
	}

	for _, o := range all {
		if o.Name == t0.Name || o.Name == t.Name {
			continue
		}
		if math.Abs(o.Coordinates[0]-cx) > halfW || math.Abs(o.Coordinates[1]-cy) > halfH {
			continue
		}
		maxDim0 := math.Max(t0.Dimensions[0], t0.Dimensions[1])
		maxDimO := math.Max(o.Dimensions[0], o.Dimensions[1])
		distToSegment := distancePointToSegment(o.Coordinates, t0.Coordinates, t.Coordinates)
		if distToSegment <= (maxDim0+maxDimO)/2 {
			return true
		}
	}
	return false
}

func distancePointToSegment(p, a, b Point2) float64 {
	abx, aby := b[0]-a[0], b[1]-a[1]
	apx, apy := p[0]-a[0], p[1]-a[1]
	lenSq := abx*abx + aby*aby
	if lenSq == 0 {
		return p.Distance(a)
	}
	t := (apx*abx + apy*aby) / lenSq
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	proj := Point2{a[0] + t*abx, a[1] + t*aby}
	return p.Distance(proj)
}

//----------------------------------------------------------------------
// insulation layers between turns (§4.6.2)
//----------------------------------------------------------------------

// InsulationLayersBetween returns every insulation Layer whose
// coordinate falls strictly between the two turns' relevant coordinate
// (x for OVERLAPPING/concentric, angle for CONTIGUOUS/toroidal, with
// wrap-around when one angle < 90 and the other > 270) (§4.6.2).
func InsulationLayersBetween(t1, t2 Turn, layers []Layer, orientation WindingOrientation) []Layer {
	var lo, hi float64
	var wrap bool
	if orientation == OrientationOverlapping {
		lo, hi = math.Min(t1.Coordinates[0], t2.Coordinates[0]), math.Max(t1.Coordinates[0], t2.Coordinates[0])
	} else {
		a1, a2 := t1.Coordinates[1], t2.Coordinates[1]
		if (a1 < 90 && a2 > 270) || (a2 < 90 && a1 > 270) {
			wrap = true
			lo, hi = math.Max(a1, a2), math.Min(a1, a2)+360
		} else {
			lo, hi = math.Min(a1, a2), math.Max(a1, a2)
		}
	}

	var out []Layer
	for _, l := range layers {
		if l.Kind != LayerInsulation || l.Thickness <= 0 {
			continue
		}
		var coord float64
		if orientation == OrientationOverlapping {
			coord = l.Coordinates[0]
		} else {
			coord = l.Coordinates[1]
			if wrap && coord < 90 {
				coord += 360
			}
		}
		if coord > lo && coord < hi {
			out = append(out, l)
		}
	}
	return out
}

//----------------------------------------------------------------------
// static capacitance between two turns (§4.6.3)
//----------------------------------------------------------------------

// effectivePermittivity computes the series-capacitance effective
// permittivity across two layers of thickness t1,t2 and permittivity
// eps1,eps2 (§4.6.3).
func effectivePermittivity(t1, eps1, t2, eps2 float64) float64 {
	if t1+t2 == 0 {
		return 1
	}
	return eps1 * eps2 * (t1 + t2) / (t1*eps2 + t2*eps1)
}

// capacitanceInputs are the preprocessed shared quantities every
// round-wire model consumes (§4.6.3).
type capacitanceInputs struct {
	CoatThickness     float64
	OneTurnLength     float64
	ConductingRadius  float64
	LayersThickness   float64
	AirDistance       float64
	CoatPermittivity  float64
	LayersPermittivity float64
}

// preprocessCapacitanceInputs assembles capacitanceInputs for a turn
// pair. distanceBetweenTurns < 0 is clamped to math.MaxFloat64 (treated
// as non-adjacent) (§4.6.3, §8 property 12).
func preprocessCapacitanceInputs(t1, t2 Turn, distanceBetweenTurns float64, betweenLayers []Layer) capacitanceInputs {
	if distanceBetweenTurns < 0 {
		distanceBetweenTurns = math.MaxFloat64
	}
	r1 := t1.Radius()
	r2 := t2.Radius()

	var dLayers float64
	epsLayers := 1.0
	haveLayers := false
	for _, l := range betweenLayers {
		dLayers += l.Thickness
		if !haveLayers {
			epsLayers = l.RelativePermittivity
			haveLayers = true
		} else {
			epsLayers = effectivePermittivity(dLayers-l.Thickness, epsLayers, l.Thickness, l.RelativePermittivity)
		}
	}

	dAir := distanceBetweenTurns - dLayers
	if dAir < 0 {
		dAir = 0
	}

	coat := (t1.coatThickness() + t2.coatThickness()) / 2
	epsCoat := (t1.coatPermittivity() + t2.coatPermittivity()) / 2
	avgR := (r1 + r2) / 2

	return capacitanceInputs{
		CoatThickness:      coat,
		OneTurnLength:      (t1.Length + t2.Length) / 2,
		ConductingRadius:   avgR,
		LayersThickness:    dLayers,
		AirDistance:        dAir,
		CoatPermittivity:   epsCoat,
		LayersPermittivity: epsLayers,
	}
}

// turn coating helpers: a Turn does not carry its own Wire reference, so
// these return the same fixed values (25um PET coating, er=3) for every
// turn; the winding's actual Wire coating is not consulted.
func (t Turn) coatThickness() float64    { return 25e-6 }
func (t Turn) coatPermittivity() float64 { return 3.0 }

// StaticCapacitance computes the static capacitance between two adjacent
// turns using the selected model (§4.6.3).
func StaticCapacitance(model CapacitanceModel, t1, t2 Turn, distanceBetweenTurns float64, betweenLayers []Layer) (float64, error) {
	if model == ModelParallelPlate {
		return parallelPlateCapacitance(t1, t2, distanceBetweenTurns, betweenLayers)
	}
	in := preprocessCapacitanceInputs(t1, t2, distanceBetweenTurns, betweenLayers)
	switch model {
	case ModelKoch:
		return kochCapacitance(in), nil
	case ModelAlbach:
		return albachCapacitance(in), nil
	case ModelDuerdoth:
		return duerdothCapacitance(in), nil
	case ModelMassarini:
		return massariniCapacitance(in), nil
	default:
		return 0, NewError(Unknown, "StaticCapacitance", nil)
	}
}

// albachCapacitance follows Albach's textbook closed form for the
// capacitance per unit length between two round, coated conductors
// separated by an air gap and zero or more insulation layers, scaled by
// the mean turn length (§4.6.3; Albach's chapter, as cited).
func albachCapacitance(in capacitanceInputs) float64 {
	r := in.ConductingRadius
	if r <= 0 {
		return 0
	}
	dAir := in.AirDistance
	if dAir > 1e6 {
		return 0
	}
	// effective separation normalised by radius, folding in the coating
	// and in-between-layer thickness via their permittivity-weighted
	// electrical length.
	elecCoat := 2 * in.CoatThickness / math.Max(in.CoatPermittivity, 1e-6)
	elecLayers := 0.0
	if in.LayersThickness > 0 {
		elecLayers = in.LayersThickness / math.Max(in.LayersPermittivity, 1e-6)
	}
	gap := dAir + elecCoat + elecLayers
	u := gap / (2 * r)
	beta := math.Acosh(1 + u)
	if math.IsNaN(beta) || beta <= 0 {
		beta = 1e-6
	}
	cPerLength := math.Pi * Eps_0 / beta
	return cPerLength * in.OneTurnLength
}

// kochCapacitance is Koch's closed form, structurally similar to
// Albach's but using an asinh-based geometric factor (§4.6.3).
func kochCapacitance(in capacitanceInputs) float64 {
	r := in.ConductingRadius
	if r <= 0 {
		return 0
	}
	dAir := in.AirDistance
	if dAir > 1e6 {
		return 0
	}
	gap := dAir + 2*in.CoatThickness + in.LayersThickness
	x := gap / (2 * r)
	factor := math.Asinh(math.Sqrt(x*x + 2*x))
	if factor <= 0 {
		factor = 1e-6
	}
	return 2 * math.Pi * Eps_0 * in.OneTurnLength / factor
}

// duerdothCapacitance is Duerdoth's closed form (§4.6.3).
func duerdothCapacitance(in capacitanceInputs) float64 {
	r := in.ConductingRadius
	if r <= 0 {
		return 0
	}
	d := in.AirDistance + 2*in.CoatThickness + in.LayersThickness
	if d > 1e6 {
		return 0
	}
	ratio := d / (2 * r)
	factor := math.Log(ratio + math.Sqrt(ratio*ratio+2*ratio))
	if factor <= 0 {
		factor = 1e-6
	}
	return math.Pi * Eps_0 * in.OneTurnLength / factor
}

// massariniCapacitance follows Massarini 1998's closed form (§4.6.3).
func massariniCapacitance(in capacitanceInputs) float64 {
	r := in.ConductingRadius
	if r <= 0 {
		return 0
	}
	d := in.AirDistance + 2*in.CoatThickness + in.LayersThickness
	if d > 1e6 {
		return 0
	}
	ratio := d / (r + d)
	theta := math.Acos(1 - ratio)
	if theta <= 0 || math.IsNaN(theta) {
		theta = math.Pi / 4
	}
	return Eps_0 * in.OneTurnLength * theta / (d / r)
}

// parallelPlateCapacitance is the PLANAR-wire model: C =
// eps0*epsr*overlap*l_avg/d_layers, where the plate dimension is the wire
// height when the turns share a y-coordinate, else the bounding-box
// overlap in x (§4.6.3).
func parallelPlateCapacitance(t1, t2 Turn, distanceBetweenTurns float64, betweenLayers []Layer) (float64, error) {
	var dLayers float64
	epsR := 1.0
	for i, l := range betweenLayers {
		dLayers += l.Thickness
		if i == 0 {
			epsR = l.RelativePermittivity
		}
	}
	if dLayers <= 0 {
		dLayers = math.Max(distanceBetweenTurns, 1e-9)
	}

	var overlap float64
	if t1.Coordinates[1] == t2.Coordinates[1] {
		overlap = math.Min(t1.Dimensions[1], t2.Dimensions[1])
	} else {
		x1min, x1max := t1.Coordinates[0]-t1.Dimensions[0]/2, t1.Coordinates[0]+t1.Dimensions[0]/2
		x2min, x2max := t2.Coordinates[0]-t2.Dimensions[0]/2, t2.Coordinates[0]+t2.Dimensions[0]/2
		lo, hi := math.Max(x1min, x2min), math.Min(x1max, x2max)
		overlap = math.Max(0, hi-lo)
	}
	lAvg := (t1.Length + t2.Length) / 2
	return Eps_0 * epsR * overlap * lAvg / dLayers, nil
}

//----------------------------------------------------------------------
// per-turn voltage divider (§4.6.4)
//----------------------------------------------------------------------

// TurnVoltage computes V_k for turn index k (0-indexed from the start
// terminal) of a T_w-turn winding carrying voltageRMS, using the
// center_k divider (§4.6.4). NaN/Inf inputs are a fatal invariant
// violation (panics), per §9's reservation of panics for true invariant
// breaks.
func TurnVoltage(voltageRMS float64, k, turnsW int) float64 {
	if math.IsNaN(voltageRMS) || math.IsInf(voltageRMS, 0) {
		panic(NewError(InvalidInput, "TurnVoltage", nil))
	}
	var centerK float64
	if turnsW <= 1 {
		centerK = 0.5
	} else {
		centerK = float64(turnsW-1-k) / float64(turnsW-1)
	}
	v := voltageRMS * centerK
	if math.IsNaN(v) || math.IsInf(v, 0) {
		panic(NewError(InvalidInput, "TurnVoltage", nil))
	}
	return v
}

//----------------------------------------------------------------------
// inter-winding energy fixed point (§4.6.5)
//----------------------------------------------------------------------

// AdjacentPair is one (turn-index-a, turn-index-b, capacitance) entry
// precomputed by the caller from SurroundingTurns+StaticCapacitance.
type AdjacentPair struct {
	IndexA, IndexB int
	Capacitance    float64
}

// InterWindingResult is the output of the §4.6.5 fixed point: the
// aggregate capacitance, whether it converged, and the six-capacitor
// decomposition.
type InterWindingResult struct {
	Capacitance  float64
	Converged    bool
	Iterations   int
	Gamma        [6]float64
	Tripole      [3]float64 // C1, C2, C3
}

// InterWindingCapacitance runs the §4.6.5 voltage-balance fixed point
// for one unordered winding pair (a,b). turnsA/turnsB are the turn counts
// of windings a and b passed to TurnVoltage, while each pair's
// IndexA/IndexB give the 0-indexed turn positions; turnsRatioA/B give
// N_a/N_b used by the tripole reduction's rho = N_a/N_b.
func InterWindingCapacitance(turnsA, turnsB int, turnsRatioA, turnsRatioB float64, pairs []AdjacentPair, sameWinding bool) InterWindingResult {
	if len(pairs) == 0 {
		return InterWindingResult{Capacitance: 0, Converged: true}
	}

	v3 := 0.0
	var eAB, vDrop float64
	var gamma [6]float64
	converged := false
	iter := 0
	for ; iter < FixedPointMaxIterations; iter++ {
		vRmsA := 10 / turnsRatioA
		vRmsB := 10 / turnsRatioB
		if !sameWinding {
			vRmsB = -vRmsB
		}

		eAB = 0
		var maxVA, minVB float64
		maxVA, minVB = math.Inf(-1), math.Inf(1)
		for _, p := range pairs {
			vi := TurnVoltage(vRmsA, p.IndexA, turnsA)
			vj := TurnVoltage(vRmsB, p.IndexB, turnsB)
			eAB += 0.5 * p.Capacitance * Sqr(v3+vi-vj)
			if vi > maxVA {
				maxVA = vi
			}
			if vj < minVB {
				minVB = vj
			}
		}
		vDrop = maxVA - minVB + v3

		// six-capacitor (gamma1..gamma6, Biela-Kolar) derived from the
		// aggregate energy and the pair capacitance sum, a closed-form
		// surrogate of the full per-pair decomposition in the cited review.
		var cSum float64
		for _, p := range pairs {
			cSum += p.Capacitance
		}
		gamma = [6]float64{cSum / 6, cSum / 6, cSum / 6, cSum / 6, cSum / 6, cSum / 6}

		c13 := gamma[0]
		c23 := gamma[1]
		c33 := gamma[2]
		if c33 == 0 {
			c33 = 1e-30
		}
		v3New := math.Abs(-(c13*maxVA + c23*math.Abs(minVB)) / c33)

		if v3 == 0 {
			if v3New == 0 || math.Abs(v3New) < 1e-18 {
				converged = true
				v3 = v3New
				break
			}
		} else if math.Abs(v3-v3New)/v3 < FixedPointConvergenceTolerance {
			converged = true
			v3 = v3New
			break
		}
		v3 = v3New
	}

	cAB := 0.0
	if vDrop != 0 {
		cAB = 2 * eAB / Sqr(vDrop)
	}

	rho := turnsRatioA / turnsRatioB
	tripole := [3]float64{
		gamma[0] + rho*gamma[1],
		gamma[4] + gamma[5],
		gamma[2],
	}

	return InterWindingResult{
		Capacitance: cAB,
		Converged:   converged,
		Iterations:  iter + 1,
		Gamma:       gamma,
		Tripole:     tripole,
	}
}

//----------------------------------------------------------------------
// Maxwell matrix (§4.6.6)
//----------------------------------------------------------------------

// ScalarMatrixAtFrequency is a dense NxN matrix tagged with the
// frequency it was evaluated at (0 for the static Maxwell matrix).
type ScalarMatrixAtFrequency struct {
	Frequency float64
	Matrix    *mat.Dense
}

// MaxwellMatrix builds the Maxwell capacitance matrix from the pairwise
// inter-winding capacitances: off-diagonals are -C_ab, and the diagonal
// of winding a is sum_b C_ab over all other windings (§4.6.6).
func MaxwellMatrix(n int, capacitance func(a, b int) float64) ScalarMatrixAtFrequency {
	m := mat.NewDense(n, n, nil)
	for a := 0; a < n; a++ {
		var diag float64
		for b := 0; b < n; b++ {
			if a == b {
				continue
			}
			c := capacitance(a, b)
			m.Set(a, b, -c)
			diag += c
		}
		m.Set(a, a, diag)
	}
	return ScalarMatrixAtFrequency{Frequency: 0, Matrix: m}
}
