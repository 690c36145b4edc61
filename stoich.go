/*
Copyright © 2018 the Kinet authors.
This file is part of Kinet.

Kinet is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

Kinet is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with Kinet.  If not, see <http://www.gnu.org/licenses/>.
*/

package kinet

import (
	"math"

	"github.com/ctessum/sparse"
)

// A stoichManager holds the sparse stoichiometric coefficients for one
// role (for example the reactant side, or the reversible-product side)
// across all reactions registered with it. Reactions are bucketed at
// registration time by the number of distinct species they touch in
// this role, so that the evaluation kernels for the overwhelmingly
// common one-, two-, and three-species cases run without an inner loop
// over a variable-length species list. These kernels sit in the
// innermost loop of a simulation; they operate on caller-owned slices
// and never allocate.
//
// The zero value is ready to use.
type stoichManager struct {
	g1 group1
	g2 group2
	g3 group3
	gN groupN
}

// group1 holds reactions that touch exactly one distinct species in
// this role, as parallel arrays. Entry n associates reaction rxn[n]
// with species k0[n] at stoichiometric coefficient nu0[n].
type group1 struct {
	rxn []int
	k0  []int
	nu0 []float64
}

// group2 holds reactions that touch exactly two distinct species in
// this role.
type group2 struct {
	rxn      []int
	k0, k1   []int
	nu0, nu1 []float64
}

// group3 holds reactions that touch exactly three distinct species in
// this role.
type group3 struct {
	rxn           []int
	k0, k1, k2    []int
	nu0, nu1, nu2 []float64
}

// groupN holds reactions that touch four or more distinct species, and
// all reactions with explicit (possibly fractional) reaction orders.
// Row n spans entries off[n] to off[n+1] of the flattened spc, nu, and
// order arrays. nu is the stoichiometric coefficient used for
// creation/destruction bookkeeping; order is the exponent applied to
// the species concentration, which equals nu unless an explicit order
// was supplied.
type groupN struct {
	rxn   []int
	off   []int
	spc   []int
	nu    []float64
	order []float64
}

// powNu raises a concentration to a small-integer stoichiometric
// coefficient without calling math.Pow in the common cases.
func powNu(c, nu float64) float64 {
	switch nu {
	case 1:
		return c
	case 2:
		return c * c
	case 3:
		return c * c * c
	}
	return math.Pow(c, nu)
}

// add registers the entries of one reaction with this role. spc must
// be sorted and duplicate-free, nu the positive stoichiometric
// coefficients, and order the concentration exponents. Reactions with
// any order differing from its coefficient always go to groupN so that
// the fixed-arity kernels stay free of order bookkeeping.
func (m *stoichManager) add(rxn int, spc []int, nu, order []float64) {
	integral := true
	for i, o := range order {
		if o != nu[i] {
			integral = false
			break
		}
	}
	if integral {
		switch len(spc) {
		case 0:
			return
		case 1:
			m.g1.rxn = append(m.g1.rxn, rxn)
			m.g1.k0 = append(m.g1.k0, spc[0])
			m.g1.nu0 = append(m.g1.nu0, nu[0])
			return
		case 2:
			m.g2.rxn = append(m.g2.rxn, rxn)
			m.g2.k0 = append(m.g2.k0, spc[0])
			m.g2.k1 = append(m.g2.k1, spc[1])
			m.g2.nu0 = append(m.g2.nu0, nu[0])
			m.g2.nu1 = append(m.g2.nu1, nu[1])
			return
		case 3:
			m.g3.rxn = append(m.g3.rxn, rxn)
			m.g3.k0 = append(m.g3.k0, spc[0])
			m.g3.k1 = append(m.g3.k1, spc[1])
			m.g3.k2 = append(m.g3.k2, spc[2])
			m.g3.nu0 = append(m.g3.nu0, nu[0])
			m.g3.nu1 = append(m.g3.nu1, nu[1])
			m.g3.nu2 = append(m.g3.nu2, nu[2])
			return
		}
	}
	m.addN(rxn, spc, nu, order)
}

// addN registers a reaction directly with the variable-length group,
// bypassing the arity buckets. Reactions whose orders may later be
// replaced with setOrders must live here, since only this group keeps
// a separate order array.
func (m *stoichManager) addN(rxn int, spc []int, nu, order []float64) {
	if len(m.gN.off) == 0 {
		m.gN.off = append(m.gN.off, 0)
	}
	m.gN.rxn = append(m.gN.rxn, rxn)
	m.gN.spc = append(m.gN.spc, spc...)
	m.gN.nu = append(m.gN.nu, nu...)
	m.gN.order = append(m.gN.order, order...)
	m.gN.off = append(m.gN.off, len(m.gN.spc))
}

// multiply multiplies rates[i], for every reaction i registered with
// this role, by the product of the species concentrations raised to
// their reaction orders. An order of exactly zero contributes a factor
// of one and is skipped rather than evaluated as c⁰.
func (m *stoichManager) multiply(conc, rates []float64) {
	g1 := &m.g1
	for n, i := range g1.rxn {
		rates[i] *= powNu(conc[g1.k0[n]], g1.nu0[n])
	}
	g2 := &m.g2
	for n, i := range g2.rxn {
		rates[i] *= powNu(conc[g2.k0[n]], g2.nu0[n]) *
			powNu(conc[g2.k1[n]], g2.nu1[n])
	}
	g3 := &m.g3
	for n, i := range g3.rxn {
		rates[i] *= powNu(conc[g3.k0[n]], g3.nu0[n]) *
			powNu(conc[g3.k1[n]], g3.nu1[n]) *
			powNu(conc[g3.k2[n]], g3.nu2[n])
	}
	gN := &m.gN
	for n, i := range gN.rxn {
		p := 1.0
		for j := gN.off[n]; j < gN.off[n+1]; j++ {
			if o := gN.order[j]; o != 0 {
				p *= powNu(conc[gN.spc[j]], o)
			}
		}
		rates[i] *= p
	}
}

// incrementSpecies scatter-adds each reaction's rate into the species
// entries it touches, scaled by the species' stoichiometric
// coefficients: out[k] += νₖᵢ·rates[i].
func (m *stoichManager) incrementSpecies(rates, out []float64) {
	g1 := &m.g1
	for n, i := range g1.rxn {
		out[g1.k0[n]] += g1.nu0[n] * rates[i]
	}
	g2 := &m.g2
	for n, i := range g2.rxn {
		r := rates[i]
		out[g2.k0[n]] += g2.nu0[n] * r
		out[g2.k1[n]] += g2.nu1[n] * r
	}
	g3 := &m.g3
	for n, i := range g3.rxn {
		r := rates[i]
		out[g3.k0[n]] += g3.nu0[n] * r
		out[g3.k1[n]] += g3.nu1[n] * r
		out[g3.k2[n]] += g3.nu2[n] * r
	}
	gN := &m.gN
	for n, i := range gN.rxn {
		r := rates[i]
		for j := gN.off[n]; j < gN.off[n+1]; j++ {
			out[gN.spc[j]] += gN.nu[j] * r
		}
	}
}

// decrementSpecies is the subtracting counterpart of incrementSpecies:
// out[k] -= νₖᵢ·rates[i].
func (m *stoichManager) decrementSpecies(rates, out []float64) {
	g1 := &m.g1
	for n, i := range g1.rxn {
		out[g1.k0[n]] -= g1.nu0[n] * rates[i]
	}
	g2 := &m.g2
	for n, i := range g2.rxn {
		r := rates[i]
		out[g2.k0[n]] -= g2.nu0[n] * r
		out[g2.k1[n]] -= g2.nu1[n] * r
	}
	g3 := &m.g3
	for n, i := range g3.rxn {
		r := rates[i]
		out[g3.k0[n]] -= g3.nu0[n] * r
		out[g3.k1[n]] -= g3.nu1[n] * r
		out[g3.k2[n]] -= g3.nu2[n] * r
	}
	gN := &m.gN
	for n, i := range gN.rxn {
		r := rates[i]
		for j := gN.off[n]; j < gN.off[n+1]; j++ {
			out[gN.spc[j]] -= gN.nu[j] * r
		}
	}
}

// incrementReactions gathers a per-species property into each
// reaction: out[i] += Σₖ νₖᵢ·prop[k]. Together with
// decrementReactions it forms the reaction-delta queries.
func (m *stoichManager) incrementReactions(prop, out []float64) {
	g1 := &m.g1
	for n, i := range g1.rxn {
		out[i] += g1.nu0[n] * prop[g1.k0[n]]
	}
	g2 := &m.g2
	for n, i := range g2.rxn {
		out[i] += g2.nu0[n]*prop[g2.k0[n]] + g2.nu1[n]*prop[g2.k1[n]]
	}
	g3 := &m.g3
	for n, i := range g3.rxn {
		out[i] += g3.nu0[n]*prop[g3.k0[n]] +
			g3.nu1[n]*prop[g3.k1[n]] +
			g3.nu2[n]*prop[g3.k2[n]]
	}
	gN := &m.gN
	for n, i := range gN.rxn {
		var s float64
		for j := gN.off[n]; j < gN.off[n+1]; j++ {
			s += gN.nu[j] * prop[gN.spc[j]]
		}
		out[i] += s
	}
}

// decrementReactions gathers a per-species property into each
// reaction with a negative sign: out[i] -= Σₖ νₖᵢ·prop[k].
func (m *stoichManager) decrementReactions(prop, out []float64) {
	g1 := &m.g1
	for n, i := range g1.rxn {
		out[i] -= g1.nu0[n] * prop[g1.k0[n]]
	}
	g2 := &m.g2
	for n, i := range g2.rxn {
		out[i] -= g2.nu0[n]*prop[g2.k0[n]] + g2.nu1[n]*prop[g2.k1[n]]
	}
	g3 := &m.g3
	for n, i := range g3.rxn {
		out[i] -= g3.nu0[n]*prop[g3.k0[n]] +
			g3.nu1[n]*prop[g3.k1[n]] +
			g3.nu2[n]*prop[g3.k2[n]]
	}
	gN := &m.gN
	for n, i := range gN.rxn {
		var s float64
		for j := gN.off[n]; j < gN.off[n+1]; j++ {
			s += gN.nu[j] * prop[gN.spc[j]]
		}
		out[i] -= s
	}
}

// addCoeffs adds this role's stoichiometric coefficients into a
// species-by-reaction sparse matrix.
func (m *stoichManager) addCoeffs(a *sparse.SparseArray) {
	g1 := &m.g1
	for n, i := range g1.rxn {
		a.AddVal(g1.nu0[n], g1.k0[n], i)
	}
	g2 := &m.g2
	for n, i := range g2.rxn {
		a.AddVal(g2.nu0[n], g2.k0[n], i)
		a.AddVal(g2.nu1[n], g2.k1[n], i)
	}
	g3 := &m.g3
	for n, i := range g3.rxn {
		a.AddVal(g3.nu0[n], g3.k0[n], i)
		a.AddVal(g3.nu1[n], g3.k1[n], i)
		a.AddVal(g3.nu2[n], g3.k2[n], i)
	}
	gN := &m.gN
	for n, i := range gN.rxn {
		for j := gN.off[n]; j < gN.off[n+1]; j++ {
			a.AddVal(gN.nu[j], gN.spc[j], i)
		}
	}
}

// setOrders replaces the reaction orders of reaction rxn, which must
// live in groupN. It reports whether the reaction was found.
func (m *stoichManager) setOrders(rxn int, order []float64) bool {
	gN := &m.gN
	for n, i := range gN.rxn {
		if i != rxn {
			continue
		}
		copy(gN.order[gN.off[n]:gN.off[n+1]], order)
		return true
	}
	return false
}
