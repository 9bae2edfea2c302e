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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormaliseBasic(t *testing.T) {
	out := Normalise([]float64{1, 2, 3}, false, false, 1)
	require.Len(t, out, 3)
	assert.InDelta(t, 0, out[0], 1e-9)
	assert.InDelta(t, 1, out[2], 1e-9)
}

func TestNormaliseInvert(t *testing.T) {
	out := Normalise([]float64{1, 2, 3}, false, true, 1)
	assert.InDelta(t, 1, out[0], 1e-9)
	assert.InDelta(t, 0, out[2], 1e-9)
}

func TestNormaliseWeight(t *testing.T) {
	out := Normalise([]float64{1, 2, 3}, false, false, 2)
	assert.InDelta(t, 2, out[2], 1e-9)
}

func TestNormaliseConstantCollapses(t *testing.T) {
	out := Normalise([]float64{5, 5, 5}, false, false, 3)
	for _, v := range out {
		assert.InDelta(t, 3, v, 1e-9)
	}
}

func TestNormaliseEmpty(t *testing.T) {
	assert.Nil(t, Normalise(nil, false, false, 1))
}

func TestStableSortDescendingPreservesTiesOrder(t *testing.T) {
	items := []string{"a", "b", "c", "d"}
	keys := map[string]float64{"a": 1, "b": 2, "c": 2, "d": 0}
	StableSortDescending(items, func(s string) float64 { return keys[s] })
	assert.Equal(t, []string{"b", "c", "a", "d"}, items)
}

func TestTruncate(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}
	assert.Equal(t, []int{1, 2, 3}, Truncate(items, 3))
	assert.Equal(t, items, Truncate(items, 0))
	assert.Equal(t, items, Truncate(items, 100))
}

func TestReferencerRankCombinesFilters(t *testing.T) {
	type candidate struct {
		name string
		cost float64
		perf float64
	}
	catalogue := []candidate{
		{"cheap-slow", 1, 1},
		{"expensive-fast", 10, 10},
		{"balanced", 5, 5},
	}
	r := Referencer[candidate]{
		Filters: []ReferencerFilter[candidate]{
			{Name: "cost", RawScore: func(c candidate) float64 { return c.cost }, Invert: true, Weight: 1},
			{Name: "perf", RawScore: func(c candidate) float64 { return c.perf }, Weight: 1},
		},
	}
	ranked := r.Rank(catalogue, 2)
	require.Len(t, ranked, 2)
	// cost and perf are perfectly anti/correlated with equal weight, so
	// every candidate ties; the stable sort keeps catalogue order.
	assert.Equal(t, "cheap-slow", ranked[0].name)
}

func TestReferencerRankEmptyCatalogue(t *testing.T) {
	r := Referencer[int]{}
	assert.Nil(t, r.Rank(nil, 5))
}
