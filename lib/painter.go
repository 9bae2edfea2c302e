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
	"bytes"
	"fmt"
	"os"

	svg "github.com/ajstarks/svgo"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// Painter is the external write-only collaborator of §6: the core never
// renders directly, it only calls through this trait with the model
// objects it wants drawn.
type Painter interface {
	PaintCoil(path string, coil Coil) error
	PaintWaveform(path string, name string, w *Waveform) error
}

// SVGPainter is the reference Painter implementation: coil
// cross-sections via github.com/ajstarks/svgo, waveforms via
// gonum.org/v1/plot.
type SVGPainter struct {
	Precision float64 // meters per SVG unit; defaults to 1e-5 if zero
	Margin    int
}

func (p SVGPainter) precision() float64 {
	if p.Precision <= 0 {
		return 1e-5
	}
	return p.Precision
}

func (p SVGPainter) margin() int {
	if p.Margin <= 0 {
		return 10
	}
	return p.Margin
}

// PaintCoil renders every turn of coil as a circle or rectangle (per
// its CrossSectionalShape) plus every insulation layer as a filled
// band, scaled to the bounding box of the turn centres.
func (p SVGPainter) PaintCoil(path string, coil Coil) error {
	prec := p.precision()
	margin := p.margin()

	box := NewBoundingBox2D()
	for _, t := range coil.Turns {
		box.Include(t.Coordinates)
	}
	if len(coil.Turns) == 0 {
		box.Include(Point2{0, 0})
		box.Include(Point2{1, 1})
	}

	width := int(box.Width()/prec) + 2*margin
	height := int(box.Height()/prec) + 2*margin
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}

	xlate := func(c Point2) (int, int) {
		return int((c[0]-box.Xmin)/prec) + margin, int((c[1]-box.Ymin)/prec) + margin
	}

	var buf bytes.Buffer
	canvas := svg.New(&buf)
	canvas.Start(width, height)
	canvas.Rect(0, 0, width, height, "fill:white")

	windingColor := map[string]string{}
	palette := []string{"#3366cc", "#dc3912", "#ff9900", "#109618", "#990099"}
	for i, w := range coil.FunctionalDescription {
		windingColor[w.Name] = palette[i%len(palette)]
	}

	for _, t := range coil.Turns {
		cx, cy := xlate(t.Coordinates)
		style := "fill:" + windingColor[t.Winding] + ";stroke:black;stroke-width:1"
		if t.Shape == ShapeRound {
			r := int(t.Radius() / prec)
			if r < 1 {
				r = 1
			}
			canvas.Circle(cx, cy, r, style)
		} else {
			w := int(t.Dimensions[0] / prec)
			h := int(t.Dimensions[1] / prec)
			canvas.Rect(cx-w/2, cy-h/2, w, h, style)
		}
	}
	for _, l := range coil.Layers {
		if l.Kind != LayerInsulation {
			continue
		}
		cx, cy := xlate(l.Coordinates)
		w := int(l.Dimensions[0] / prec)
		h := int(l.Dimensions[1] / prec)
		if w < 1 {
			w = 1
		}
		if h < 1 {
			h = 1
		}
		canvas.Rect(cx-w/2, cy-h/2, w, h, "fill:#ffee99;fill-opacity:0.6")
	}
	canvas.End()

	return os.WriteFile(path, buf.Bytes(), 0o644)
}

// PaintWaveform samples w over one period and renders it as a line
// plot titled name.
func (p SVGPainter) PaintWaveform(path string, name string, w *Waveform) error {
	values := w.values
	times := w.times
	if len(values) == 0 {
		w.Sample(1024)
		values = w.values
		times = w.times
	}

	pts := make(plotter.XYs, len(values))
	for i := range values {
		pts[i].X = times[i]
		pts[i].Y = values[i]
	}

	pl := plot.New()
	pl.Title.Text = name
	pl.X.Label.Text = "t (s)"
	pl.Y.Label.Text = "value"

	line, err := plotter.NewLine(pts)
	if err != nil {
		return NewError(Unknown, "SVGPainter.PaintWaveform", err)
	}
	pl.Add(line)

	if err := pl.Save(6*vg.Inch, 4*vg.Inch, path); err != nil {
		return NewError(Unknown, "SVGPainter.PaintWaveform", err)
	}
	return nil
}

// referenceLabel formats a quick human-readable tag for a painted file
// as prefix_NNN.
func referenceLabel(prefix string, index int) string {
	return fmt.Sprintf("%s_%03d", prefix, index)
}
