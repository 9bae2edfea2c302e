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

// magplot drives the Painter trait (lib.SVGPainter) standalone, for
// visual inspection of a waveform shape or a coil cross-section without
// running the full synthesis pipeline.
//
// '-mode waveform' builds one analytical waveform from '-label',
// '-amplitude', '-duty', '-offset', '-deadtime' and '-freq' and renders
// it as a PNG line plot. '-mode coil' builds a single round-wound coil
// with '-turns' turns of '-diameter' wire around a window
// '-window-width' x '-window-height' and renders its cross-section as
// SVG.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"github.com/bfix/openmagnetics/lib"
)

func main() {
	var (
		mode   string
		out    string
		label  string
		amp    float64
		duty   float64
		offset float64
		dead   float64
		freq   float64

		turns        int
		diameter     float64
		windowWidth  float64
		windowHeight float64
	)

	pflag.StringVarP(&mode, "mode", "m", "waveform", "what to paint: waveform, coil")
	pflag.StringVarP(&out, "out", "o", "out.png", "output file path")
	pflag.StringVar(&label, "label", "rectangular", "waveform shape: rectangular, rectangular-deadtime, triangular, triangular-deadtime, sinusoidal")
	pflag.Float64Var(&amp, "amplitude", 1, "waveform peak-to-peak amplitude (peak amplitude for sinusoidal)")
	pflag.Float64Var(&duty, "duty", 0.5, "waveform duty cycle")
	pflag.Float64Var(&offset, "offset", 0, "waveform DC offset")
	pflag.Float64Var(&dead, "deadtime", 0, "waveform dead time (s), for the *-deadtime shapes")
	pflag.Float64Var(&freq, "freq", 100e3, "waveform fundamental frequency (Hz)")

	pflag.IntVar(&turns, "turns", 20, "number of turns to wind")
	pflag.Float64Var(&diameter, "diameter", 0.5e-3, "round wire conducting diameter (m)")
	pflag.Float64Var(&windowWidth, "window-width", 6e-3, "bobbin window width (m)")
	pflag.Float64Var(&windowHeight, "window-height", 12e-3, "bobbin window height (m)")
	pflag.Parse()

	log := lib.Default()
	painter := lib.SVGPainter{}

	switch mode {
	case "waveform":
		lbl, err := waveformLabel(label)
		if err != nil {
			log.Error("unknown waveform label", "label", label)
			os.Exit(1)
		}
		w := lib.BuildAnalytical(lbl, lib.WaveformParams{
			Amplitude: amp, Duty: duty, Offset: offset, DeadTime: dead,
		}, freq)
		if err := painter.PaintWaveform(out, label, &w); err != nil {
			log.Error("could not paint waveform", "err", err)
			os.Exit(1)
		}

	case "coil":
		core := lib.Core{
			Shape:        "magplot preview",
			WindowWidth:  windowWidth,
			WindowHeight: windowHeight,
		}
		wire := lib.NewRoundWire("preview", diameter, diameter*1.08, 1, 1000, 1)
		coil := lib.Coil{
			Bobbin:                lib.Bobbin{Core: core},
			FunctionalDescription: []lib.Winding{{Name: "Primary", NumberTurns: turns, NumberParallels: 1, Wire: wire}},
		}
		if err := coil.WindBySections([]float64{1}, []int{0}, 1); err != nil {
			log.Error("could not section coil", "err", err)
			os.Exit(1)
		}
		if !coil.Wind(lib.AlignSpread) {
			log.Error("could not wind coil: turns do not fit the window")
			os.Exit(1)
		}
		coil.DelimitAndCompact()
		if err := painter.PaintCoil(out, coil); err != nil {
			log.Error("could not paint coil", "err", err)
			os.Exit(1)
		}

	default:
		fmt.Fprintf(os.Stderr, "unknown mode %q\n", mode)
		os.Exit(1)
	}

	fmt.Println("wrote", out)
}

func waveformLabel(s string) (lib.WaveformLabel, error) {
	switch s {
	case "rectangular":
		return lib.LabelRectangular, nil
	case "rectangular-deadtime":
		return lib.LabelRectangularWithDeadtime, nil
	case "triangular":
		return lib.LabelTriangular, nil
	case "triangular-deadtime":
		return lib.LabelTriangularWithDeadtime, nil
	case "sinusoidal":
		return lib.LabelSinusoidal, nil
	default:
		return 0, lib.NewError(lib.InvalidInput, "waveformLabel", nil)
	}
}
