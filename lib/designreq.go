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

// DimWithTol is a dimension with an optional minimum/nominal/maximum; at
// least one must be present, and when more than one is present the
// ordering min <= nominal <= max must hold (§3).
type DimWithTol struct {
	Minimum *float64
	Nominal *float64
	Maximum *float64
}

func ptr(v float64) *float64 { return &v }

// DimMin builds a DimWithTol with only a minimum set.
func DimMin(v float64) DimWithTol { return DimWithTol{Minimum: ptr(v)} }

// DimNominal builds a DimWithTol with only a nominal set.
func DimNominal(v float64) DimWithTol { return DimWithTol{Nominal: ptr(v)} }

// DimRange builds a DimWithTol with a minimum and maximum.
func DimRange(min, max float64) DimWithTol { return DimWithTol{Minimum: ptr(min), Maximum: ptr(max)} }

// Validate enforces at least one field present and min <= nominal <= max.
func (d DimWithTol) Validate() error {
	if d.Minimum == nil && d.Nominal == nil && d.Maximum == nil {
		return NewError(InvalidDesignRequirements, "DimWithTol.Validate", nil)
	}
	if d.Minimum != nil && d.Nominal != nil && *d.Minimum > *d.Nominal {
		return NewError(InvalidDesignRequirements, "DimWithTol.Validate", nil)
	}
	if d.Nominal != nil && d.Maximum != nil && *d.Nominal > *d.Maximum {
		return NewError(InvalidDesignRequirements, "DimWithTol.Validate", nil)
	}
	if d.Minimum != nil && d.Maximum != nil && *d.Minimum > *d.Maximum {
		return NewError(InvalidDesignRequirements, "DimWithTol.Validate", nil)
	}
	return nil
}

// GetNominal resolves a single representative value: the nominal if
// present, else the midpoint of the remaining bound(s).
func (d DimWithTol) GetNominal() (float64, bool) {
	if d.Nominal != nil {
		return *d.Nominal, true
	}
	if d.Minimum != nil && d.Maximum != nil {
		return (*d.Minimum + *d.Maximum) / 2, true
	}
	if d.Minimum != nil {
		return *d.Minimum, true
	}
	if d.Maximum != nil {
		return *d.Maximum, true
	}
	return 0, false
}

// IsolationSide is an ordinal-indexed finite enum of galvanic reference
// classes (§3).
type IsolationSide int

const (
	SidePrimary IsolationSide = iota
	SideSecondary
	SideTertiary
	SideQuaternary
)

func (s IsolationSide) String() string {
	switch s {
	case SidePrimary:
		return "primary"
	case SideSecondary:
		return "secondary"
	case SideTertiary:
		return "tertiary"
	case SideQuaternary:
		return "quaternary"
	default:
		return "side"
	}
}

// IsolationSideFromIndex maps a winding index to its isolation side:
// winding 0 is always primary; every other winding is secondary, unless
// the caller supplies an explicit mapping via DesignRequirements.
func IsolationSideFromIndex(i int) IsolationSide {
	if i == 0 {
		return SidePrimary
	}
	return SideSecondary
}

// InsulationType is the required insulation class between isolation
// sides (§3).
type InsulationType int

const (
	InsulationNone InsulationType = iota
	InsulationFunctional
	InsulationBasic
	InsulationSupplementary
	InsulationReinforced
	InsulationDouble
)

// InsulationRequirement pairs an insulation type with an optional
// withstand voltage.
type InsulationRequirement struct {
	Type             InsulationType
	WithstandVoltage *float64
}

// Topology names the converter topology a DesignRequirements was derived
// from.
type Topology int

const (
	TopologyBuck Topology = iota
	TopologyBoost
	TopologyFlyback
	TopologyIsolatedBuckBoost
)

func (t Topology) String() string {
	switch t {
	case TopologyBuck:
		return "buck"
	case TopologyBoost:
		return "boost"
	case TopologyFlyback:
		return "flyback"
	case TopologyIsolatedBuckBoost:
		return "isolated buck-boost"
	default:
		return "topology"
	}
}

// DesignRequirements is the immutable output of a converter synthesiser
// (§3). Once constructed it is never mutated.
type DesignRequirements struct {
	MagnetizingInductance DimWithTol
	TurnsRatios           []DimWithTol // length W-1
	IsolationSides        []IsolationSide // length W
	Insulation            *InsulationRequirement
	Topology              Topology
	LeakageInductance     *DimWithTol
}

// NumberWindings returns W, the number of windings implied by
// IsolationSides.
func (d DesignRequirements) NumberWindings() int { return len(d.IsolationSides) }
