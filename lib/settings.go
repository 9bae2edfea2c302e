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
	"encoding/json"
	"os"

	"gopkg.in/yaml.v3"
)

// CoreLossesModel names a core-loss estimation method considered by an
// external loss model (out of scope here; only the name travels through
// Settings).
type CoreLossesModel string

const (
	CoreLossesIGSE        CoreLossesModel = "IGSE"
	CoreLossesProprietary CoreLossesModel = "PROPRIETARY"
	CoreLossesLossFactor  CoreLossesModel = "LOSS_FACTOR"
	CoreLossesSteinmetz   CoreLossesModel = "STEINMETZ"
	CoreLossesRoshen      CoreLossesModel = "ROSHEN"
)

// WindingSkinEffectLossesModel names the skin-effect loss model used by
// the wire advisor's AC-resistance scoring.
type WindingSkinEffectLossesModel string

const (
	SkinEffectDowell WindingSkinEffectLossesModel = "DOWELL"
	SkinEffectWojda  WindingSkinEffectLossesModel = "WOJDA"
	SkinEffectAlbach WindingSkinEffectLossesModel = "ALBACH"
	SkinEffectPayne  WindingSkinEffectLossesModel = "PAYNE"
	SkinEffectLotfi  WindingSkinEffectLossesModel = "LOTFI"
)

// Settings is the process configuration threaded explicitly through
// advisor constructors. It is a plain value: built once via
// NewSettingsBuilder()...Build() and never mutated afterwards. Advisors
// take a Settings by value, never a shared global.
type Settings struct {
	UseToroidalCores              bool `json:"useToroidalCores" yaml:"useToroidalCores"`
	UseConcentricCores            bool `json:"useConcentricCores" yaml:"useConcentricCores"`
	UseOnlyCoresInStock           bool `json:"useOnlyCoresInStock" yaml:"useOnlyCoresInStock"`
	CoilAllowMarginTape           bool `json:"coilAllowMarginTape" yaml:"coilAllowMarginTape"`
	CoilAllowInsulatedWire        bool `json:"coilAllowInsulatedWire" yaml:"coilAllowInsulatedWire"`
	CoilAdviserMaximumWires       int  `json:"coilAdviserMaximumWires" yaml:"coilAdviserMaximumWires"`
	WireAdviserIncludeRound       bool `json:"wireAdviserIncludeRound" yaml:"wireAdviserIncludeRound"`
	WireAdviserIncludeLitz        bool `json:"wireAdviserIncludeLitz" yaml:"wireAdviserIncludeLitz"`
	WireAdviserIncludeRectangular bool `json:"wireAdviserIncludeRectangular" yaml:"wireAdviserIncludeRectangular"`
	WireAdviserIncludeFoil        bool `json:"wireAdviserIncludeFoil" yaml:"wireAdviserIncludeFoil"`
	WireAdviserIncludePlanar      bool `json:"wireAdviserIncludePlanar" yaml:"wireAdviserIncludePlanar"`

	CoreLossesModelNames []CoreLossesModel `json:"coreLossesModelNames" yaml:"coreLossesModelNames"`

	WindingSkinEffectLossesModel WindingSkinEffectLossesModel `json:"windingSkinEffectLossesModel" yaml:"windingSkinEffectLossesModel"`

	HarmonicAmplitudeThreshold float64 `json:"harmonicAmplitudeThreshold" yaml:"harmonicAmplitudeThreshold"`
	MagneticFieldMirroringDim  int     `json:"magneticFieldMirroringDimension" yaml:"magneticFieldMirroringDimension"`

	OverlappingFactorSurroundingTurns      float64 `json:"overlappingFactorSurroundingTurns" yaml:"overlappingFactorSurroundingTurns"`
	MagnetizingInductanceThresholdValidity float64 `json:"magnetizingInductanceThresholdValidity" yaml:"magnetizingInductanceThresholdValidity"`
	MaximumCoilPattern                     int     `json:"maximumCoilPattern" yaml:"maximumCoilPattern"`
	MaximumEffectiveCurrentDensity         float64 `json:"maximumEffectiveCurrentDensity" yaml:"maximumEffectiveCurrentDensity"`
	MaximumNumberParallels                 int     `json:"maximumNumberParallels" yaml:"maximumNumberParallels"`
}

// DefaultSettings returns the documented defaults (§6 Settings singleton,
// minus the mutable-singleton shape: this is a plain value).
func DefaultSettings() Settings {
	return Settings{
		UseToroidalCores:              true,
		UseConcentricCores:            true,
		UseOnlyCoresInStock:           true,
		CoilAllowMarginTape:           true,
		CoilAllowInsulatedWire:        true,
		CoilAdviserMaximumWires:       100,
		WireAdviserIncludeRound:       true,
		WireAdviserIncludeLitz:        true,
		WireAdviserIncludeRectangular: true,
		WireAdviserIncludeFoil:        true,
		WireAdviserIncludePlanar:      true,

		CoreLossesModelNames: []CoreLossesModel{
			CoreLossesIGSE, CoreLossesProprietary, CoreLossesLossFactor,
			CoreLossesSteinmetz, CoreLossesRoshen,
		},
		WindingSkinEffectLossesModel: SkinEffectDowell,

		HarmonicAmplitudeThreshold: HarmonicAmplitudeThreshold,
		MagneticFieldMirroringDim:  1,

		OverlappingFactorSurroundingTurns:      OverlappingFactorSurroundingTurns,
		MagnetizingInductanceThresholdValidity: MagnetizingInductanceThresholdValidity,
		MaximumCoilPattern:                     MaximumCoilPattern,
		MaximumEffectiveCurrentDensity:         MaximumEffectiveCurrentDensity,
		MaximumNumberParallels:                 MaximumNumberParallels,
	}
}

// SettingsBuilder accumulates overrides on top of DefaultSettings before
// producing an immutable Settings value. Mutation only happens here, never
// after Build() hands the value to an advisor.
type SettingsBuilder struct {
	s Settings
}

// NewSettingsBuilder starts from the documented defaults.
func NewSettingsBuilder() *SettingsBuilder {
	return &SettingsBuilder{s: DefaultSettings()}
}

// FromFile overlays JSON-encoded overrides read from fname onto the
// builder's current state.
func (b *SettingsBuilder) FromFile(fname string) (*SettingsBuilder, error) {
	data, err := os.ReadFile(fname)
	if err != nil {
		return b, NewError(InvalidInput, "Settings.FromFile", err)
	}
	if err := json.Unmarshal(data, &b.s); err != nil {
		return b, NewError(InvalidInput, "Settings.FromFile", err)
	}
	return b, nil
}

// FromYAMLFile overlays YAML-encoded overrides read from fname onto the
// builder's current state, for deployments that keep configuration in
// YAML rather than JSON.
func (b *SettingsBuilder) FromYAMLFile(fname string) (*SettingsBuilder, error) {
	data, err := os.ReadFile(fname)
	if err != nil {
		return b, NewError(InvalidInput, "Settings.FromYAMLFile", err)
	}
	if err := yaml.Unmarshal(data, &b.s); err != nil {
		return b, NewError(InvalidInput, "Settings.FromYAMLFile", err)
	}
	return b, nil
}

func (b *SettingsBuilder) WithToroidalCores(v bool) *SettingsBuilder {
	b.s.UseToroidalCores = v
	return b
}

func (b *SettingsBuilder) WithConcentricCores(v bool) *SettingsBuilder {
	b.s.UseConcentricCores = v
	return b
}

func (b *SettingsBuilder) WithMarginTape(v bool) *SettingsBuilder {
	b.s.CoilAllowMarginTape = v
	return b
}

func (b *SettingsBuilder) WithInsulatedWire(v bool) *SettingsBuilder {
	b.s.CoilAllowInsulatedWire = v
	return b
}

func (b *SettingsBuilder) WithWireKinds(round, litz, rectangular, foil, planar bool) *SettingsBuilder {
	b.s.WireAdviserIncludeRound = round
	b.s.WireAdviserIncludeLitz = litz
	b.s.WireAdviserIncludeRectangular = rectangular
	b.s.WireAdviserIncludeFoil = foil
	b.s.WireAdviserIncludePlanar = planar
	return b
}

func (b *SettingsBuilder) WithSkinEffectModel(m WindingSkinEffectLossesModel) *SettingsBuilder {
	b.s.WindingSkinEffectLossesModel = m
	return b
}

func (b *SettingsBuilder) WithHarmonicAmplitudeThreshold(v float64) *SettingsBuilder {
	b.s.HarmonicAmplitudeThreshold = v
	return b
}

// Build freezes the accumulated overrides into a Settings value. The
// returned value is safe to share across goroutines: nothing in this
// package ever mutates a Settings after Build returns it.
func (b *SettingsBuilder) Build() Settings {
	return b.s
}
