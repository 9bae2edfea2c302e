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

// Point2 is a coordinate pair in the bobbin window's local frame: either
// cartesian (x, y) for concentric cores, or the same pair reused as polar
// (radius, angle-in-degrees) for toroidal cores.
type Point2 [2]float64

// Add returns the sum of two points.
func (p Point2) Add(q Point2) Point2 {
	return Point2{p[0] + q[0], p[1] + q[1]}
}

// Sub returns the difference of two points.
func (p Point2) Sub(q Point2) Point2 {
	return Point2{p[0] - q[0], p[1] - q[1]}
}

// Distance is the euclidean distance between two points.
func (p Point2) Distance(q Point2) float64 {
	return math.Hypot(p[0]-q[0], p[1]-q[1])
}

//----------------------------------------------------------------------

// BoundingBox2D is an axis-aligned box used for sections, layers and
// collision pre-checks.
type BoundingBox2D struct {
	Xmin, Xmax float64
	Ymin, Ymax float64
}

// NewBoundingBox2D returns an empty (inverted) box ready for Include.
func NewBoundingBox2D() *BoundingBox2D {
	limit := math.MaxFloat64
	return &BoundingBox2D{Xmin: limit, Xmax: -limit, Ymin: limit, Ymax: -limit}
}

// Include grows the box to cover p.
func (b *BoundingBox2D) Include(p Point2) {
	b.Xmin = min(p[0], b.Xmin)
	b.Xmax = max(p[0], b.Xmax)
	b.Ymin = min(p[1], b.Ymin)
	b.Ymax = max(p[1], b.Ymax)
}

// Width of the box.
func (b *BoundingBox2D) Width() float64 { return b.Xmax - b.Xmin }

// Height of the box.
func (b *BoundingBox2D) Height() float64 { return b.Ymax - b.Ymin }

// Center of the box.
func (b *BoundingBox2D) Center() Point2 {
	return Point2{(b.Xmin + b.Xmax) / 2, (b.Ymin + b.Ymax) / 2}
}

//----------------------------------------------------------------------
// cartesian <-> polar helpers for toroidal coils (§4.5)
//----------------------------------------------------------------------

// ToCartesian converts a (radius, angle-degrees) polar pair to cartesian
// coordinates.
func ToCartesian(r, angDeg float64) Point2 {
	rad := angDeg * math.Pi / 180
	return Point2{r * math.Cos(rad), r * math.Sin(rad)}
}

// ToPolar converts cartesian coordinates to (radius, angle-degrees).
func ToPolar(p Point2) (r, angDeg float64) {
	r = math.Hypot(p[0], p[1])
	angDeg = math.Atan2(p[1], p[0]) * 180 / math.Pi
	return
}

// WoundDistanceToAngle converts a wound (chord) distance on a toroid of
// radius r into the subtended angle in degrees, using the chord formula.
// Returns 360 degrees (a full turn) when asin would be fed an argument
// >= 1 (the chord spans the whole circle).
func WoundDistanceToAngle(d, r float64) float64 {
	x := d / (2 * r)
	if x >= 1 {
		return 360
	}
	return 2 * math.Asin(x) * 180 / math.Pi
}

// AngleToWoundDistance is the inverse of WoundDistanceToAngle.
func AngleToWoundDistance(angDeg, r float64) float64 {
	return 2 * math.Sin(angDeg*math.Pi/360) * r
}

//----------------------------------------------------------------------
// collision checks (§4.5 wind / check_collisions)
//----------------------------------------------------------------------

// collisionTolerance is the tolerance used by check_collisions when
// comparing centre-to-centre distance against the sum of radii.
const collisionTolerance = 1e-8

// CollidesRound reports whether two round cross-sections (centres c1, c2
// and radii r1, r2) overlap, comparing centre-to-centre distance against
// the sum of radii with a small tolerance.
func CollidesRound(c1 Point2, r1 float64, c2 Point2, r2 float64) bool {
	return c1.Distance(c2) < r1+r2-collisionTolerance
}

// CollidesRect reports whether two axis-aligned rectangular
// cross-sections (centres c1, c2; full dimensions dim1, dim2) overlap,
// comparing per-axis half-extents.
func CollidesRect(c1 Point2, dim1 Point2, c2 Point2, dim2 Point2) bool {
	dx := math.Abs(c1[0]-c2[0]) - (dim1[0]+dim2[0])/2
	dy := math.Abs(c1[1]-c2[1]) - (dim1[1]+dim2[1])/2
	return dx < -collisionTolerance && dy < -collisionTolerance
}
