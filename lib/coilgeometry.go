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

// WindingOrientation selects how sections tile the bobbin window:
// OVERLAPPING is radial (concentric cores), CONTIGUOUS is angular
// (toroids) (§4.5).
type WindingOrientation int

const (
	OrientationOverlapping WindingOrientation = iota
	OrientationContiguous
)

// TurnAlignment selects how turns are packed within a layer (§4.5).
type TurnAlignment int

const (
	AlignSpread TurnAlignment = iota
	AlignInnerOrTop
	AlignOuterOrBottom
	AlignCentered
)

// CoreShapeFamily distinguishes toroidal cores (CONTIGUOUS/angular
// windows) from every other (concentric/OVERLAPPING) shape family.
type CoreShapeFamily int

const (
	ShapeConcentric CoreShapeFamily = iota
	ShapeToroidal
)

// Core is the magnetic core chosen for a Magnetic (§3).
type Core struct {
	Shape         string
	ShapeFamily   CoreShapeFamily
	Material      string
	Gapping       []float64 // gap lengths, meters
	NumberStacks  int
	WindowHeight  float64 // bobbin window, meters (radial extent for toroids)
	WindowWidth   float64
	InnerRadius   float64 // toroid bore radius; unused for concentric
}

func (c Core) orientation() WindingOrientation {
	if c.ShapeFamily == ShapeToroidal {
		return OrientationContiguous
	}
	return OrientationOverlapping
}

// Winding is the functional (pre-geometry) description of one winding of
// a Coil (§3).
type Winding struct {
	Name            string
	NumberTurns     int
	NumberParallels int
	Wire            Wire
}

// Section is a rectangular (or angular, for toroids) region of the
// bobbin window assigned to one or more windings (§3).
type Section struct {
	Name               string
	Dimensions         Point2 // width/height, or (radial extent, angular extent-deg) for toroids
	Coordinates        Point2 // center, cartesian or polar per Core.orientation
	MarginTapeThickness float64
	WindingNames       []string
}

// LayerKind distinguishes conductive layers (holding turns) from
// insulation layers (tape/film) (§3).
type LayerKind int

const (
	LayerConductive LayerKind = iota
	LayerInsulation
)

// Layer subdivides a Section (§3).
type Layer struct {
	Name        string
	Kind        LayerKind
	Section     int // index into Coil.Sections
	Dimensions  Point2
	Coordinates Point2
	WindingName string // only meaningful for LayerConductive

	// insulation-only fields
	Thickness         float64
	RelativePermittivity float64
}

// CrossSectionalShape of a Turn (§3).
type CrossSectionalShape int

const (
	ShapeRound CrossSectionalShape = iota
	ShapeRect
)

// Turn is one conductor loop of one winding (§3).
type Turn struct {
	Name        string
	Winding     string
	Parallel    int
	Coordinates Point2
	Dimensions  Point2 // (width,height) or (diameter,diameter) for round
	Shape       CrossSectionalShape
	Length      float64 // one-turn mean length
	Layer       int     // index into Coil.Layers
	Section     int     // index into Coil.Sections
}

// Radius returns half the turn's largest dimension, for round turns.
func (t Turn) Radius() float64 {
	return math.Max(t.Dimensions[0], t.Dimensions[1]) / 2
}

// Bobbin holds the window geometry and core-shape family that bounds
// every Section/Layer/Turn placement (§3).
type Bobbin struct {
	Core Core
}

func (b Bobbin) orientation() WindingOrientation { return b.Core.orientation() }

// Coil is the three-level geometric refinement of a set of windings:
// functional description, then sections, then layers, then turns (§3).
type Coil struct {
	FunctionalDescription []Winding
	Bobbin                Bobbin
	Sections              []Section
	Layers                []Layer
	Turns                 []Turn
}

// NumberWindings returns the count of functional windings.
func (c Coil) NumberWindings() int { return len(c.FunctionalDescription) }

// windingIndex finds the functional-description index of name, or -1.
func (c Coil) windingIndex(name string) int {
	for i, w := range c.FunctionalDescription {
		if w.Name == name {
			return i
		}
	}
	return -1
}

// CheckIntegrity verifies the structural invariants of §3: every
// winding's turn count matches N*parallels, every turn's winding exists
// in the functional description, and no two turns collide.
func (c Coil) CheckIntegrity() error {
	counts := make(map[string]int)
	for _, t := range c.Turns {
		if c.windingIndex(t.Winding) < 0 {
			return NewError(Geometry, "Coil.CheckIntegrity", nil)
		}
		counts[t.Winding]++
	}
	for _, w := range c.FunctionalDescription {
		want := w.NumberTurns * w.NumberParallels
		if counts[w.Name] != want {
			return NewError(Geometry, "Coil.CheckIntegrity", nil)
		}
	}
	if c.CheckCollisions() {
		return NewError(Geometry, "Coil.CheckIntegrity", nil)
	}
	return nil
}

// CheckCollisions reports whether any two turns overlap, using
// centre-to-centre distance vs. sum-of-radii when both turns are round
// and per-axis half-extent comparison otherwise (§4.5).
func (c Coil) CheckCollisions() bool {
	n := len(c.Turns)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			a, b := c.Turns[i], c.Turns[j]
			if a.Shape == ShapeRound && b.Shape == ShapeRound {
				if CollidesRound(a.Coordinates, a.Radius(), b.Coordinates, b.Radius()) {
					return true
				}
			} else {
				if CollidesRect(a.Coordinates, a.Dimensions, b.Coordinates, b.Dimensions) {
					return true
				}
			}
		}
	}
	return false
}

//----------------------------------------------------------------------
// winding (§4.5)
//----------------------------------------------------------------------

// windingPower estimates a winding's average apparent power from its RMS
// current (via the supplied excitation) and a nominal voltage per turn,
// used only to proportion sections; callers without excitation data may
// pass an all-equal proportions map instead.
func windingPower(w Winding, rmsCurrent float64) float64 {
	return rmsCurrent * float64(w.NumberTurns)
}

// WindBySections divides the bobbin window along the winding orientation
// into len(pattern)*repetitions sections, sized proportionally to
// `proportions` (one entry per winding index; each section's share is
// floored at 5% before the shares are re-normalised to fill the window,
// so a floored section can end up slightly below 5%), and assigns each section's
// winding from the tiled pattern (§4.5).
func (c *Coil) WindBySections(proportions []float64, pattern []int, repetitions int) error {
	if repetitions < 1 {
		repetitions = 1
	}
	total := 0.0
	for _, idx := range pattern {
		total += proportions[idx]
	}
	if total <= 0 {
		return NewError(Geometry, "Coil.WindBySections", nil)
	}

	minShare := 0.05
	nSections := len(pattern) * repetitions
	shares := make([]float64, nSections)
	si := 0
	for r := 0; r < repetitions; r++ {
		for _, idx := range pattern {
			shares[si] = math.Max(proportions[idx]/total, minShare)
			si++
		}
	}
	var shareSum float64
	for _, s := range shares {
		shareSum += s
	}

	orientation := c.Bobbin.orientation()
	windowExtent := c.Bobbin.Core.WindowWidth
	crossExtent := c.Bobbin.Core.WindowHeight
	if orientation == OrientationContiguous {
		windowExtent = 360
		crossExtent = c.Bobbin.Core.WindowHeight
	}

	c.Sections = c.Sections[:0]
	pos := 0.0
	si = 0
	for r := 0; r < repetitions; r++ {
		for _, idx := range pattern {
			extent := windowExtent * shares[si] / shareSum
			var coord Point2
			var dim Point2
			if orientation == OrientationContiguous {
				coord = Point2{c.Bobbin.Core.InnerRadius + crossExtent/2, pos + extent/2}
				dim = Point2{crossExtent, extent}
			} else {
				coord = Point2{pos + extent/2, crossExtent / 2}
				dim = Point2{extent, crossExtent}
			}
			c.Sections = append(c.Sections, Section{
				Name:         "section" + itoa(si),
				Dimensions:   dim,
				Coordinates:  coord,
				WindingNames: []string{c.FunctionalDescription[idx].Name},
			})
			pos += extent
			si++
		}
	}
	return nil
}

// CalculateInsulation inserts insulation layers between sections whose
// adjacent windings belong to different isolation sides, sized from the
// active WireSolidInsulationRequirements (§4.5). strict requires every
// cross-side boundary to carry a nonzero-thickness layer; non-strict
// skips a boundary whose requirements yield zero thickness, without
// checking the wire coating.
func (c *Coil) CalculateInsulation(reqs map[string]WireSolidInsulationRequirement, isoSideOf map[string]IsolationSide, strict bool) error {
	for i := 0; i < len(c.Sections)-1; i++ {
		a, b := c.Sections[i], c.Sections[i+1]
		if len(a.WindingNames) == 0 || len(b.WindingNames) == 0 {
			continue
		}
		sideA, sideB := isoSideOf[a.WindingNames[0]], isoSideOf[b.WindingNames[0]]
		if sideA == sideB {
			continue
		}
		reqA := reqs[a.WindingNames[0]]
		reqB := reqs[b.WindingNames[0]]
		thickness := insulationLayerThickness(reqA, reqB)
		if thickness <= 0 && strict {
			return NewError(Geometry, "Coil.CalculateInsulation", nil)
		}
		if thickness <= 0 {
			continue
		}
		c.Layers = append(c.Layers, Layer{
			Name:                "insulation" + itoa(len(c.Layers)),
			Kind:                LayerInsulation,
			Section:             i,
			Thickness:           thickness,
			RelativePermittivity: 3.0, // generic polyester-film default
		})
	}
	return nil
}

// insulationLayerThickness sizes a margin/insulation layer from the
// combined withstand-voltage requirement of two adjacent windings, using
// a generic film breakdown strength of 20 kV/mm (Kapton-grade).
func insulationLayerThickness(a, b WireSolidInsulationRequirement) float64 {
	v := math.Max(a.MinBreakdownVoltage, b.MinBreakdownVoltage)
	if v <= 0 {
		return 0
	}
	const breakdownStrength = 20e6 // V/m
	return v / breakdownStrength
}

// Wind lays out turns within each section's layers, respecting the wire
// outer dimension and the requested alignment. Returns false (not an
// error) if any turn cannot be placed without violating window bounds or
// colliding with another turn (§4.5, §7).
func (c *Coil) Wind(alignment TurnAlignment) bool {
	c.Turns = c.Turns[:0]
	c.Layers = append([]Layer{}, filterConductiveOut(c.Layers)...)

	orientation := c.Bobbin.orientation()
	for si := range c.Sections {
		sec := &c.Sections[si]
		if len(sec.WindingNames) == 0 {
			continue
		}
		wIdx := c.windingIndex(sec.WindingNames[0])
		if wIdx < 0 {
			return false
		}
		w := c.FunctionalDescription[wIdx]
		outerW, outerH := w.Wire.MaximumOuterWidth(), w.Wire.MaximumOuterHeight()
		if outerW <= 0 || outerH <= 0 {
			return false
		}

		crossExtent := sec.Dimensions[1]
		if orientation == OrientationContiguous {
			crossExtent = sec.Dimensions[0]
		}
		layersFit := int(math.Floor(crossExtent / outerH))
		if layersFit < 1 {
			return false
		}

		totalTurns := w.NumberTurns * w.NumberParallels
		alongExtent := sec.Dimensions[0]
		if orientation == OrientationContiguous {
			alongExtent = sec.Dimensions[1]
		}
		turnsPerLayer := int(math.Floor(alongExtent / outerW))
		if turnsPerLayer < 1 {
			return false
		}

		placed := 0
		for layer := 0; layer < layersFit && placed < totalTurns; layer++ {
			layerIdx := len(c.Layers)
			c.Layers = append(c.Layers, Layer{
				Name:        sec.Name + "_layer" + itoa(layer),
				Kind:        LayerConductive,
				Section:     si,
				WindingName: w.Name,
			})
			n := turnsPerLayer
			if totalTurns-placed < n {
				n = totalTurns - placed
			}
			offset := alignmentOffset(alignment, n, turnsPerLayer, outerW)
			for k := 0; k < n; k++ {
				var coord Point2
				if orientation == OrientationContiguous {
					radial := sec.Coordinates[0] - crossExtent/2 + outerH/2 + float64(layer)*outerH
					angExtent := AngleToWoundDistance(sec.Dimensions[1], radial)
					_ = angExtent
					startAngle := sec.Coordinates[1] - sec.Dimensions[1]/2
					angle := startAngle + offset + (float64(k)+0.5)*outerW
					coord = Point2{radial, angle}
				} else {
					x := sec.Coordinates[0] - alongExtent/2 + offset + (float64(k)+0.5)*outerW
					y := sec.Coordinates[1] - crossExtent/2 + outerH/2 + float64(layer)*outerH
					coord = Point2{x, y}
				}
				shape := ShapeRound
				dims := Point2{w.Wire.MaximumConductingWidth(), w.Wire.MaximumConductingHeight()}
				if w.Wire.Kind() == WireRectangular || w.Wire.Kind() == WireFoil || w.Wire.Kind() == WirePlanar {
					shape = ShapeRect
				}
				turn := Turn{
					Name:        w.Name + "_t" + itoa(placed),
					Winding:     w.Name,
					Parallel:    placed % w.NumberParallels,
					Coordinates: coord,
					Dimensions:  dims,
					Shape:       shape,
					Length:      turnLength(c.Bobbin, coord),
					Layer:       layerIdx,
					Section:     si,
				}
				c.Turns = append(c.Turns, turn)
				placed++
			}
		}
		if placed < totalTurns {
			return false
		}
	}
	return !c.CheckCollisions()
}

func filterConductiveOut(layers []Layer) []Layer {
	out := layers[:0:0]
	for _, l := range layers {
		if l.Kind == LayerInsulation {
			out = append(out, l)
		}
	}
	return out
}

func alignmentOffset(a TurnAlignment, n, capacity int, outerW float64) float64 {
	spare := float64(capacity-n) * outerW
	switch a {
	case AlignInnerOrTop, AlignOuterOrBottom:
		return 0
	case AlignCentered:
		return spare / 2
	default: // AlignSpread
		if n <= 1 {
			return spare / 2
		}
		return 0
	}
}

// turnLength computes the one-turn mean length as the circumference at
// the turn's first coordinate (2*pi*coord[0]) for every core family; no
// rectangular bobbin perimeter is computed for concentric cores.
func turnLength(b Bobbin, coord Point2) float64 {
	if b.orientation() == OrientationContiguous {
		return 2 * math.Pi * coord[0]
	}
	return 2 * math.Pi * coord[0]
}

// DelimitAndCompact shrinks each section's bounding box to the box
// spanned by its turn centres plus margin-tape thickness and re-centres
// sections; layer positions are left unchanged. Idempotent: a second call with unchanged
// turns produces identical coordinates (§4.5, §8 property 9).
func (c *Coil) DelimitAndCompact() {
	bySection := make(map[int]*BoundingBox2D)
	for _, t := range c.Turns {
		bb, ok := bySection[t.Section]
		if !ok {
			bb = NewBoundingBox2D()
			bySection[t.Section] = bb
		}
		bb.Include(t.Coordinates)
	}
	for i := range c.Sections {
		bb, ok := bySection[i]
		if !ok {
			continue
		}
		margin := c.Sections[i].MarginTapeThickness
		c.Sections[i].Coordinates = bb.Center()
		c.Sections[i].Dimensions = Point2{bb.Width() + 2*margin, bb.Height() + 2*margin}
	}
}
