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

// ManufacturerInfo is opaque metadata attached to a finished Magnetic.
type ManufacturerInfo struct {
	Name      string
	Reference string
}

// Magnetic bundles a chosen Core with a (possibly partially-built) Coil
// (§3).
type Magnetic struct {
	Core             Core
	Coil             Coil
	ManufacturerInfo *ManufacturerInfo
}

// TurnsRatios returns the turns ratio of every secondary winding against
// the first (primary) winding, derived from the coil's functional
// description (number_turns), used by ProcessOperatingPointsFromMagnetic
// to resolve a DesignRequirements.TurnsRatios equivalent directly from a
// built coil (§4.2 "process_operating_points(magnetic)").
func (m Magnetic) TurnsRatios() []float64 {
	fd := m.Coil.FunctionalDescription
	if len(fd) == 0 {
		return nil
	}
	n0 := float64(fd[0].NumberTurns)
	ratios := make([]float64, len(fd)-1)
	for i := 1; i < len(fd); i++ {
		ratios[i-1] = float64(fd[i].NumberTurns) / n0
	}
	return ratios
}

// InductanceResult is the result of the external magnetising-inductance
// model (§6): the core only consults GetNominal() of
// MagnetizingInductance.
type InductanceResult struct {
	MagnetizingInductance DimWithTol
	Reluctance            float64
	FringingFactor        float64
}

// MagnetizingInductanceModel is the external collaborator of §6: given a
// core and a coil (turns, gapping already fixed), it returns the
// resulting magnetising inductance. Only an interface is specified here;
// a concrete implementation (e.g. a reluctance-network model) lives
// outside this package's scope, consistent with §1's "external
// collaborators" boundary.
type MagnetizingInductanceModel interface {
	CalculateInductanceFromNumberTurnsAndGapping(core Core, coil Coil) (InductanceResult, error)
}

// SimpleReluctanceModel is a minimal, self-contained
// MagnetizingInductanceModel: L = N^2 / reluctance, where reluctance is
// derived from the sum of gap lengths over (mu_0 * effective area),
// standing in for the external model named in §6 so that
// ProcessOperatingPointsFromMagnetic is independently testable without a
// catalogue-backed reluctance network.
type SimpleReluctanceModel struct {
	EffectiveArea float64 // m^2
}

func (m SimpleReluctanceModel) CalculateInductanceFromNumberTurnsAndGapping(core Core, coil Coil) (InductanceResult, error) {
	if len(coil.FunctionalDescription) == 0 {
		return InductanceResult{}, NewError(MissingData, "SimpleReluctanceModel.CalculateInductanceFromNumberTurnsAndGapping", nil)
	}
	area := m.EffectiveArea
	if area <= 0 {
		area = 1e-4
	}
	gap := 1e-4
	var totalGap float64
	for _, g := range core.Gapping {
		totalGap += g
	}
	if totalGap > 0 {
		gap = totalGap
	}
	reluctance := gap / (Mu_0 * area * float64(maxInt(core.NumberStacks, 1)))
	n := float64(coil.FunctionalDescription[0].NumberTurns)
	l := n * n / reluctance
	return InductanceResult{
		MagnetizingInductance: DimNominal(l),
		Reluctance:            reluctance,
		FringingFactor:        1.0,
	}, nil
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
