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
	"sort"
)

// Normalise maps raw scores into [0,1] via per-filter min-max (optionally
// log) normalisation, then inverts and weights (§4.9). min_score is
// max(raw_min, 1e-4) per the source default; when min==max every score
// collapses to weight*1.0.
func Normalise(raw []float64, useLog, invert bool, weight float64) []float64 {
	if len(raw) == 0 {
		return nil
	}
	minScore, maxScore := raw[0], raw[0]
	for _, v := range raw {
		minScore = math.Min(minScore, v)
		maxScore = math.Max(maxScore, v)
	}
	minScore = math.Max(minScore, 1e-4)

	out := make([]float64, len(raw))
	if maxScore == minScore {
		for i := range out {
			out[i] = weight * 1.0
		}
		return out
	}
	for i, v := range raw {
		var x float64
		if useLog {
			x = (math.Log(v) - math.Log(minScore)) / (math.Log(maxScore) - math.Log(minScore))
		} else {
			x = (v - minScore) / (maxScore - minScore)
		}
		if invert {
			x = 1 - x
		}
		out[i] = x * weight
	}
	return out
}

// StableSortDescending stably sorts items in place by descending key(i).
func StableSortDescending[T any](items []T, key func(T) float64) {
	sort.SliceStable(items, func(i, j int) bool {
		return key(items[i]) > key(items[j])
	})
}

// Truncate returns the first k items of items, or all of them if there
// are fewer than k.
func Truncate[T any](items []T, k int) []T {
	if k <= 0 || len(items) <= k {
		return items
	}
	return items[:k]
}

// Referencer scores a catalogue slice of T against a target using a
// caller-supplied raw-score function per filter, then combines via
// Normalise/StableSortDescending/Truncate. Generic enough that callers can
// build a core/material cross-referencer on it without this package
// inventing catalogue or loss-model behaviour.
type Referencer[T any] struct {
	Filters []ReferencerFilter[T]
}

// ReferencerFilter is one scoring dimension: RawScore produces one score
// per catalogue item, and the remaining fields configure how Normalise
// combines it.
type ReferencerFilter[T any] struct {
	Name     string
	RawScore func(T) float64
	Log      bool
	Invert   bool
	Weight   float64
}

// Rank scores every item in catalogue across all filters, sums the
// normalised contributions, stably sorts descending and truncates to k.
func (r Referencer[T]) Rank(catalogue []T, k int) []T {
	n := len(catalogue)
	if n == 0 {
		return nil
	}
	totals := make([]float64, n)
	for _, f := range r.Filters {
		raw := make([]float64, n)
		for i, item := range catalogue {
			raw[i] = f.RawScore(item)
		}
		scored := Normalise(raw, f.Log, f.Invert, f.Weight)
		for i, s := range scored {
			totals[i] += s
		}
	}
	out := make([]T, n)
	copy(out, catalogue)
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(i, j int) bool { return totals[idx[i]] > totals[idx[j]] })
	ranked := make([]T, n)
	for i, j := range idx {
		ranked[i] = out[j]
	}
	return Truncate(ranked, k)
}
