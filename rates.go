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
	"fmt"
	"sort"

	"github.com/ctessum/sparse"
)

// SpeciesCoeff pairs a species index with a stoichiometric
// coefficient.
type SpeciesCoeff struct {
	Species int
	Coeff   float64
}

// ReactionStoichMgr handles the calculation of quantities involving
// the stoichiometry of a set of reactions: species creation,
// destruction, and net production rates, changes of molar species
// properties in the reactions, and concentration products. The
// stoichiometric coefficient matrices are very sparse, so they are
// stored as arity-bucketed parallel arrays (see stoichManager) and
// never materialized densely during rate evaluation.
//
// Reactions are registered once each with Add or AddWithOrders, before
// any rate query is issued. Reaction indices double as positions into
// all rate-of-progress slices, so the caller must assign them densely
// and contiguously starting at zero; the manager does not reorder
// reactions.
//
// All queries write into caller-provided slices that must already be
// sized to the number of species (K) or reactions (I); a shorter slice
// is a programming error in the caller and panics. The creation,
// destruction, and net-production queries zero their output before
// accumulating. The delta-property queries do not: they accumulate
// into whatever the caller supplies.
type ReactionStoichMgr struct {
	nSpecies   int
	nReactions int

	reversible map[int]bool  // registration record; also duplicate guard
	globalSpc  map[int][]int // reactant sparsity of explicit-order reactions

	// Integer-stoichiometry roles. revReactants mirrors the
	// reversible subset of reactants so that the reverse-direction
	// queries never touch entries of irreversible reactions.
	reactants     stoichManager
	revReactants  stoichManager
	revProducts   stoichManager
	irrevProducts stoichManager

	// Explicit-order ("global") role. A reaction with explicit
	// reaction orders is registered here once, both sides together;
	// its reverse direction derives from the product stoichiometry
	// rather than from a separate products-role entry.
	gReactants    stoichManager
	gRevReactants stoichManager
	gProducts     stoichManager
	gRevProducts  stoichManager
}

// NewReactionStoichMgr creates a stoichiometry manager for a mechanism
// with nSpecies species.
func NewReactionStoichMgr(nSpecies int) *ReactionStoichMgr {
	return &ReactionStoichMgr{
		nSpecies:   nSpecies,
		reversible: make(map[int]bool),
		globalSpc:  make(map[int][]int),
	}
}

// NumSpecies returns the number of species the manager was created
// with.
func (m *ReactionStoichMgr) NumSpecies() int { return m.nSpecies }

// NumReactions returns one plus the highest reaction index registered
// so far.
func (m *ReactionStoichMgr) NumReactions() int { return m.nReactions }

// IsReversible reports whether reaction rxn was registered as
// reversible.
func (m *ReactionStoichMgr) IsReversible(rxn int) bool { return m.reversible[rxn] }

// Add registers reaction rxn with mass-action kinetics. reactants and
// products hold the species indices of the two sides of the reaction;
// a species participating with multiplicity greater than one appears
// that many times (for example, O + O = O2 has reactants {O, O}).
//
// rxn is the index into the rate-of-progress slices in the rate
// queries. Registering a negative or already-used index, or a species
// index outside [0, K), is an error, and the manager is left in its
// prior state.
func (m *ReactionStoichMgr) Add(rxn int, reactants, products []int, reversible bool) error {
	if err := m.checkRxn(rxn); err != nil {
		return err
	}
	rspc, rnu, err := m.collapse(rxn, reactants)
	if err != nil {
		return err
	}
	pspc, pnu, err := m.collapse(rxn, products)
	if err != nil {
		return err
	}
	m.reactants.add(rxn, rspc, rnu, rnu)
	if reversible {
		m.revReactants.add(rxn, rspc, rnu, rnu)
		m.revProducts.add(rxn, pspc, pnu, pnu)
	} else {
		m.irrevProducts.add(rxn, pspc, pnu, pnu)
	}
	m.commit(rxn, reversible)
	return nil
}

// AddWithOrders registers reaction rxn with explicit, possibly
// non-integral, reaction orders for the reactants. reactants and
// products pair each distinct species with its stoichiometric
// coefficient (which may itself be fractional for empirical
// mechanisms); orders holds the concentration exponent for the species
// in the corresponding position of reactants and must have the same
// length. If the reaction is reversible, its reverse concentration
// product is computed from the product stoichiometry.
//
// Coefficients must be positive and orders non-negative; an order of
// zero means the species' concentration does not affect the rate.
func (m *ReactionStoichMgr) AddWithOrders(rxn int, reactants []SpeciesCoeff, orders []float64, products []SpeciesCoeff, reversible bool) error {
	if err := m.checkRxn(rxn); err != nil {
		return err
	}
	if len(orders) != len(reactants) {
		return fmt.Errorf("kinet: reaction %d: %d reaction orders supplied for %d reactants",
			rxn, len(orders), len(reactants))
	}
	rspc, rnu, rord, err := m.collapseCoeffs(rxn, reactants, orders)
	if err != nil {
		return err
	}
	pspc, pnu, _, err := m.collapseCoeffs(rxn, products, nil)
	if err != nil {
		return err
	}
	// Reactant-side entries go straight to the variable-length group
	// so ModifyOrders can find their order arrays later, even when the
	// supplied orders happen to equal the coefficients.
	m.gReactants.addN(rxn, rspc, rnu, rord)
	m.gProducts.add(rxn, pspc, pnu, pnu)
	if reversible {
		m.gRevReactants.addN(rxn, rspc, rnu, rord)
		m.gRevProducts.add(rxn, pspc, pnu, pnu)
	}
	m.globalSpc[rxn] = rspc
	m.commit(rxn, reversible)
	return nil
}

// ModifyOrders replaces the reaction orders of a reaction previously
// registered with AddWithOrders, without changing which species it
// touches. orders pairs each reactant species with its new order; the
// species set must match the registered one exactly.
func (m *ReactionStoichMgr) ModifyOrders(rxn int, orders []SpeciesCoeff) error {
	spc, ok := m.globalSpc[rxn]
	if !ok {
		return fmt.Errorf("kinet: reaction %d is not registered with explicit reaction orders", rxn)
	}
	if len(orders) != len(spc) {
		return fmt.Errorf("kinet: reaction %d: %d reaction orders supplied for %d reactant species",
			rxn, len(orders), len(spc))
	}
	sorted := make([]SpeciesCoeff, len(orders))
	copy(sorted, orders)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Species < sorted[j].Species })
	ord := make([]float64, len(sorted))
	for i, sc := range sorted {
		if sc.Species != spc[i] {
			return fmt.Errorf("kinet: reaction %d: species %d does not match the registered reactant species %d",
				rxn, sc.Species, spc[i])
		}
		if sc.Coeff < 0 {
			return fmt.Errorf("kinet: reaction %d: negative reaction order %g for species %d",
				rxn, sc.Coeff, sc.Species)
		}
		ord[i] = sc.Coeff
	}
	m.gReactants.setOrders(rxn, ord)
	m.gRevReactants.setOrders(rxn, ord)
	return nil
}

// CreationRates computes the species creation rates
// C = Nₚ·Q_fwd + Nᵣ·Q_rev: the products of the forward direction plus
// the reactants of the reverse direction. revROP entries for
// irreversible reactions must be zero. creation is zeroed before
// accumulation.
func (m *ReactionStoichMgr) CreationRates(fwdROP, revROP, creation []float64) {
	m.checkLenI(fwdROP, "forward rate of progress")
	m.checkLenI(revROP, "reverse rate of progress")
	m.checkLenK(creation, "creation rate")
	zero(creation[:m.nSpecies])
	m.revProducts.incrementSpecies(fwdROP, creation)
	m.irrevProducts.incrementSpecies(fwdROP, creation)
	m.gProducts.incrementSpecies(fwdROP, creation)
	m.revReactants.incrementSpecies(revROP, creation)
	m.gRevReactants.incrementSpecies(revROP, creation)
}

// DestructionRates computes the species destruction rates
// D = Nᵣ·Q_fwd + Nₚ·Q_rev: the reactants of the forward direction plus
// the products of the reverse direction. destruction is zeroed before
// accumulation.
func (m *ReactionStoichMgr) DestructionRates(fwdROP, revROP, destruction []float64) {
	m.checkLenI(fwdROP, "forward rate of progress")
	m.checkLenI(revROP, "reverse rate of progress")
	m.checkLenK(destruction, "destruction rate")
	zero(destruction[:m.nSpecies])
	m.reactants.incrementSpecies(fwdROP, destruction)
	m.gReactants.incrementSpecies(fwdROP, destruction)
	m.revProducts.incrementSpecies(revROP, destruction)
	m.gRevProducts.incrementSpecies(revROP, destruction)
}

// NetProductionRates computes the species net production rates
// W = (Nₚ − Nᵣ)·Q_net directly from the net rates of progress,
// avoiding a separate creation and destruction pass. net is zeroed
// before accumulation.
func (m *ReactionStoichMgr) NetProductionRates(netROP, net []float64) {
	m.checkLenI(netROP, "net rate of progress")
	m.checkLenK(net, "net production rate")
	zero(net[:m.nSpecies])
	m.revProducts.incrementSpecies(netROP, net)
	m.irrevProducts.incrementSpecies(netROP, net)
	m.gProducts.incrementSpecies(netROP, net)
	m.reactants.decrementSpecies(netROP, net)
	m.gReactants.decrementSpecies(netROP, net)
}

// ReactionDelta computes, for every reaction, the change of the molar
// species property g across the reaction: dg[i] accumulates
// Σₖ νₚ(k,i)·g[k] − Σₖ νᵣ(k,i)·g[k]. It is used to form ΔH, ΔS, and ΔG
// of reaction from per-species molar properties. dg is not zeroed
// here; callers accumulate into a slice they have prepared.
func (m *ReactionStoichMgr) ReactionDelta(g, dg []float64) {
	m.checkLenK(g, "species property")
	m.checkLenI(dg, "reaction property change")
	m.revProducts.incrementReactions(g, dg)
	m.irrevProducts.incrementReactions(g, dg)
	m.gProducts.incrementReactions(g, dg)
	m.reactants.decrementReactions(g, dg)
	m.gReactants.decrementReactions(g, dg)
}

// RevReactionDelta is ReactionDelta restricted to the reversible
// reactions; dg entries belonging to irreversible reactions are left
// untouched. It is primarily used to compute reverse rate coefficients
// from thermochemistry.
func (m *ReactionStoichMgr) RevReactionDelta(g, dg []float64) {
	m.checkLenK(g, "species property")
	m.checkLenI(dg, "reaction property change")
	m.revProducts.incrementReactions(g, dg)
	m.gRevProducts.incrementReactions(g, dg)
	m.revReactants.decrementReactions(g, dg)
	m.gRevReactants.decrementReactions(g, dg)
}

// MultiplyReactants multiplies rates[i], for every reaction, by the
// product of the species concentrations raised to their reactant
// reaction orders: rates[i] *= Πₖ conc[k]^o(k,i). Concentrations must
// be non-negative; a zero concentration raised to a positive
// fractional order yields zero.
func (m *ReactionStoichMgr) MultiplyReactants(conc, rates []float64) {
	m.checkLenK(conc, "concentration")
	m.checkLenI(rates, "rate")
	m.reactants.multiply(conc, rates)
	m.gReactants.multiply(conc, rates)
}

// MultiplyRevProducts multiplies rates[i], for every reversible
// reaction, by the product of the species concentrations raised to
// their product stoichiometric coefficients. Entries belonging to
// irreversible reactions are left untouched.
func (m *ReactionStoichMgr) MultiplyRevProducts(conc, rates []float64) {
	m.checkLenK(conc, "concentration")
	m.checkLenI(rates, "rate")
	m.revProducts.multiply(conc, rates)
	m.gRevProducts.multiply(conc, rates)
}

// ReactantStoichCoeffs returns the reactant stoichiometric coefficient
// matrix as a freshly allocated species-by-reaction sparse array. It
// is intended for diagnostics and reference calculations, not for the
// rate-evaluation hot path.
func (m *ReactionStoichMgr) ReactantStoichCoeffs() *sparse.SparseArray {
	a := sparse.ZerosSparse(m.nSpecies, m.nReactions)
	m.reactants.addCoeffs(a)
	m.gReactants.addCoeffs(a)
	return a
}

// ProductStoichCoeffs returns the product stoichiometric coefficient
// matrix as a freshly allocated species-by-reaction sparse array.
func (m *ReactionStoichMgr) ProductStoichCoeffs() *sparse.SparseArray {
	a := sparse.ZerosSparse(m.nSpecies, m.nReactions)
	m.revProducts.addCoeffs(a)
	m.irrevProducts.addCoeffs(a)
	m.gProducts.addCoeffs(a)
	return a
}

func (m *ReactionStoichMgr) checkRxn(rxn int) error {
	if rxn < 0 {
		return fmt.Errorf("kinet: negative reaction index %d", rxn)
	}
	if _, ok := m.reversible[rxn]; ok {
		return fmt.Errorf("kinet: reaction index %d is already registered", rxn)
	}
	return nil
}

func (m *ReactionStoichMgr) commit(rxn int, reversible bool) {
	m.reversible[rxn] = reversible
	if rxn+1 > m.nReactions {
		m.nReactions = rxn + 1
	}
}

// collapse converts a multiset of species indices into sorted,
// duplicate-free parallel slices of species indices and integer
// multiplicities.
func (m *ReactionStoichMgr) collapse(rxn int, list []int) (spc []int, nu []float64, err error) {
	for _, k := range list {
		if k < 0 || k >= m.nSpecies {
			return nil, nil, fmt.Errorf("kinet: reaction %d: species index %d is outside [0, %d)",
				rxn, k, m.nSpecies)
		}
	}
	s := make([]int, len(list))
	copy(s, list)
	sort.Ints(s)
	for i := 0; i < len(s); {
		j := i
		for j < len(s) && s[j] == s[i] {
			j++
		}
		spc = append(spc, s[i])
		nu = append(nu, float64(j-i))
		i = j
	}
	return spc, nu, nil
}

// collapseCoeffs validates and sorts explicit species/coefficient
// pairs, carrying the parallel order slice (if any) through the sort.
func (m *ReactionStoichMgr) collapseCoeffs(rxn int, list []SpeciesCoeff, orders []float64) (spc []int, nu, ord []float64, err error) {
	idx := make([]int, len(list))
	for i := range idx {
		idx[i] = i
	}
	sort.Slice(idx, func(a, b int) bool { return list[idx[a]].Species < list[idx[b]].Species })
	spc = make([]int, len(list))
	nu = make([]float64, len(list))
	if orders != nil {
		ord = make([]float64, len(list))
	}
	for i, n := range idx {
		sc := list[n]
		if sc.Species < 0 || sc.Species >= m.nSpecies {
			return nil, nil, nil, fmt.Errorf("kinet: reaction %d: species index %d is outside [0, %d)",
				rxn, sc.Species, m.nSpecies)
		}
		if i > 0 && spc[i-1] == sc.Species {
			return nil, nil, nil, fmt.Errorf("kinet: reaction %d: species %d appears more than once on one side",
				rxn, sc.Species)
		}
		if sc.Coeff <= 0 {
			return nil, nil, nil, fmt.Errorf("kinet: reaction %d: non-positive stoichiometric coefficient %g for species %d",
				rxn, sc.Coeff, sc.Species)
		}
		spc[i] = sc.Species
		nu[i] = sc.Coeff
		if orders != nil {
			if orders[n] < 0 {
				return nil, nil, nil, fmt.Errorf("kinet: reaction %d: negative reaction order %g for species %d",
					rxn, orders[n], sc.Species)
			}
			ord[i] = orders[n]
		}
	}
	if ord == nil {
		ord = nu
	}
	return spc, nu, ord, nil
}

func (m *ReactionStoichMgr) checkLenK(x []float64, name string) {
	if len(x) < m.nSpecies {
		panic(fmt.Sprintf("kinet: %s slice has length %d but the mechanism has %d species",
			name, len(x), m.nSpecies))
	}
}

func (m *ReactionStoichMgr) checkLenI(x []float64, name string) {
	if len(x) < m.nReactions {
		panic(fmt.Sprintf("kinet: %s slice has length %d but the mechanism has %d reactions",
			name, len(x), m.nReactions))
	}
}

func zero(x []float64) {
	for i := range x {
		x[i] = 0
	}
}
