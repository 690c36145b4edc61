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

	"gonum.org/v1/gonum/floats"
)

// SurfaceKinetics manages a heterogeneous reaction mechanism: a set of
// reactions occurring at an interface between phases. On top of the
// intrinsic (temperature- and concentration-driven) rate calculation
// handled by its ReactionStoichMgr, it carries the extrinsic
// bookkeeping the multi-phase case needs: whether each phase currently
// exists, and whether it is stable.
//
// If a phase supplying a reactant doesn't exist — has, say, dropped to
// zero moles as the simulation evolved — a reaction cannot proceed in
// the forward direction, no matter what the rate expression predicts;
// the symmetric statement holds for the reverse direction and product
// phases. If a phase exists but is thermodynamically disfavored, the
// caller can mark it unstable, and species in it will not be allowed a
// positive net production rate. That clamp avoids the oscillatory
// formation and destruction of a disfavored phase across successive
// integrator steps.
//
// A SurfaceKinetics with a single registered phase never gates
// anything and behaves exactly like its embedded stoichiometry
// manager.
type SurfaceKinetics struct {
	*ReactionStoichMgr

	phaseNames []string
	spcPhase   []int // phase index per species; -1 before assignment
	spcCharge  []float64
	phi        []float64 // electric potential per phase [V]

	phaseExists []bool
	phaseStable []bool
	existsCheck int // number of phases that do not exist
	stableCheck int // number of phases that are not stable

	// rxnPhaseIsReactant[i][p] records whether phase p supplies a
	// reactant to reaction i; rxnPhaseIsProduct[i][p] whether it
	// receives a product. Both are derived once at registration.
	rxnPhaseIsReactant [][]bool
	rxnPhaseIsProduct  [][]bool

	// Rate evaluation is expensive, so results are cached per state
	// generation. Anything that invalidates previously computed
	// rates of progress bumps gen; UpdateROP reuses its last result
	// while gen is unchanged.
	gen  uint64
	last *ROP

	grt  []float64 // species-length scratch
	wdot []float64 // species-length scratch for interface current
}

// ROP holds the gated rates of progress from one UpdateROP
// evaluation, stamped with the state generation it was computed at.
// Callers must treat the slices as read-only; a fresh ROP is returned
// whenever the generation changes.
type ROP struct {
	Generation uint64
	Fwd        []float64 // forward rate of progress per reaction
	Rev        []float64 // reverse rate of progress per reaction
	Net        []float64 // Fwd − Rev
}

// NewSurfaceKinetics creates a heterogeneous kinetics manager for a
// mechanism with nSpecies species. Phases are registered with
// AddPhase and reactions with AddReaction before any rate query.
func NewSurfaceKinetics(nSpecies int) *SurfaceKinetics {
	k := &SurfaceKinetics{
		ReactionStoichMgr: NewReactionStoichMgr(nSpecies),
		spcPhase:          make([]int, nSpecies),
		spcCharge:         make([]float64, nSpecies),
		grt:               make([]float64, nSpecies),
		wdot:              make([]float64, nSpecies),
	}
	for i := range k.spcPhase {
		k.spcPhase[i] = -1
	}
	return k
}

// AddPhase registers a phase owning the given species and returns its
// index. Phase indices are assigned contiguously in registration
// order. Every species must be owned by exactly one phase before the
// reactions touching it are registered. New phases start out existing
// and stable, with zero electric potential.
func (k *SurfaceKinetics) AddPhase(name string, species ...int) (int, error) {
	if k.NumReactions() > 0 {
		return 0, fmt.Errorf("kinet: phase %q: phases must be registered before reactions", name)
	}
	for _, s := range species {
		if s < 0 || s >= k.NumSpecies() {
			return 0, fmt.Errorf("kinet: phase %q: species index %d is outside [0, %d)",
				name, s, k.NumSpecies())
		}
		if k.spcPhase[s] >= 0 {
			return 0, fmt.Errorf("kinet: phase %q: species %d already belongs to phase %q",
				name, s, k.phaseNames[k.spcPhase[s]])
		}
	}
	p := len(k.phaseNames)
	k.phaseNames = append(k.phaseNames, name)
	k.phaseExists = append(k.phaseExists, true)
	k.phaseStable = append(k.phaseStable, true)
	k.phi = append(k.phi, 0)
	for _, s := range species {
		k.spcPhase[s] = p
	}
	return p, nil
}

// NumPhases returns the number of registered phases.
func (k *SurfaceKinetics) NumPhases() int { return len(k.phaseNames) }

// PhaseName returns the name phase p was registered with.
func (k *SurfaceKinetics) PhaseName(p int) string { return k.phaseNames[p] }

// SpeciesPhase returns the index of the phase owning species s, or -1
// if the species has not been assigned to a phase.
func (k *SurfaceKinetics) SpeciesPhase(s int) int { return k.spcPhase[s] }

// SetCharge sets the charge number of species s (for example +1 for a
// singly charged cation), used by the electrochemical queries.
func (k *SurfaceKinetics) SetCharge(s int, z float64) {
	k.spcCharge[s] = z
	k.gen++
}

// AddReaction registers reaction rxn (see ReactionStoichMgr.Add) and
// derives the reaction's phase participation from the phase ownership
// of its species. All participating species must already belong to
// phases.
func (k *SurfaceKinetics) AddReaction(rxn int, reactants, products []int, reversible bool) error {
	if err := k.checkPhases(rxn, reactants, products); err != nil {
		return err
	}
	if err := k.Add(rxn, reactants, products, reversible); err != nil {
		return err
	}
	k.recordParticipation(rxn, reactants, products)
	return nil
}

// AddReactionWithOrders registers reaction rxn with explicit reaction
// orders (see ReactionStoichMgr.AddWithOrders) and derives its phase
// participation.
func (k *SurfaceKinetics) AddReactionWithOrders(rxn int, reactants []SpeciesCoeff, orders []float64, products []SpeciesCoeff, reversible bool) error {
	rs := speciesOf(reactants)
	ps := speciesOf(products)
	if err := k.checkPhases(rxn, rs, ps); err != nil {
		return err
	}
	if err := k.AddWithOrders(rxn, reactants, orders, products, reversible); err != nil {
		return err
	}
	k.recordParticipation(rxn, rs, ps)
	return nil
}

func speciesOf(list []SpeciesCoeff) []int {
	s := make([]int, len(list))
	for i, sc := range list {
		s[i] = sc.Species
	}
	return s
}

func (k *SurfaceKinetics) checkPhases(rxn int, reactants, products []int) error {
	for _, s := range append(append([]int{}, reactants...), products...) {
		if s < 0 || s >= k.NumSpecies() {
			return fmt.Errorf("kinet: reaction %d: species index %d is outside [0, %d)",
				rxn, s, k.NumSpecies())
		}
		if k.spcPhase[s] < 0 {
			return fmt.Errorf("kinet: reaction %d: species %d has not been assigned to a phase", rxn, s)
		}
	}
	return nil
}

func (k *SurfaceKinetics) recordParticipation(rxn int, reactants, products []int) {
	for len(k.rxnPhaseIsReactant) <= rxn {
		k.rxnPhaseIsReactant = append(k.rxnPhaseIsReactant, make([]bool, k.NumPhases()))
		k.rxnPhaseIsProduct = append(k.rxnPhaseIsProduct, make([]bool, k.NumPhases()))
	}
	for _, s := range reactants {
		k.rxnPhaseIsReactant[rxn][k.spcPhase[s]] = true
	}
	for _, s := range products {
		k.rxnPhaseIsProduct[rxn][k.spcPhase[s]] = true
	}
}

// SetPhaseExistence tells the kinetics manager whether phase p is
// physically present. This is extrinsic information layered on top of
// the intrinsic rate calculation: the owning simulation flips it as a
// phase's amount reaches or leaves zero. Marking a phase nonexistent
// also marks it unstable; use SetPhaseStability afterward to override
// that.
func (k *SurfaceKinetics) SetPhaseExistence(p int, exists bool) {
	k.checkPhase(p)
	if k.phaseExists[p] != exists {
		k.phaseExists[p] = exists
		if exists {
			k.existsCheck--
		} else {
			k.existsCheck++
		}
	}
	if !exists {
		k.setStability(p, false)
	}
	k.gen++
}

// SetPhaseStability tells the kinetics manager whether phase p is
// thermodynamically stable. Species in an unstable phase are not
// allowed a positive net production rate: the phase may still be
// consumed, never formed.
func (k *SurfaceKinetics) SetPhaseStability(p int, stable bool) {
	k.checkPhase(p)
	k.setStability(p, stable)
	k.gen++
}

func (k *SurfaceKinetics) setStability(p int, stable bool) {
	if k.phaseStable[p] != stable {
		k.phaseStable[p] = stable
		if stable {
			k.stableCheck--
		} else {
			k.stableCheck++
		}
	}
}

// PhaseExistence reports whether phase p currently exists.
func (k *SurfaceKinetics) PhaseExistence(p int) bool {
	k.checkPhase(p)
	return k.phaseExists[p]
}

// PhaseStability reports whether phase p is currently stable.
func (k *SurfaceKinetics) PhaseStability(p int) bool {
	k.checkPhase(p)
	return k.phaseStable[p]
}

// SetElectricPotential sets the electric potential of phase p [V].
func (k *SurfaceKinetics) SetElectricPotential(p int, v float64) {
	k.checkPhase(p)
	k.phi[p] = v
	k.gen++
}

// ElectricPotential returns the electric potential of phase p [V].
func (k *SurfaceKinetics) ElectricPotential(p int) float64 {
	k.checkPhase(p)
	return k.phi[p]
}

func (k *SurfaceKinetics) checkPhase(p int) {
	if p < 0 || p >= len(k.phaseNames) {
		panic(fmt.Sprintf("kinet: phase index %d is outside [0, %d)", p, len(k.phaseNames)))
	}
}

// Invalidate marks previously computed rates of progress as stale.
// Call it whenever temperature, concentrations, or rate constants
// change between UpdateROP calls; changes made through the
// SurfaceKinetics setters invalidate automatically.
func (k *SurfaceKinetics) Invalidate() { k.gen++ }

// Generation returns the current state generation. The ROP returned
// by UpdateROP carries the generation it was computed at.
func (k *SurfaceKinetics) Generation() uint64 { return k.gen }

// UpdateROP assembles the rates of progress for every reaction from
// the forward and reverse rate constants kf and kr and the activity
// concentrations conc: each rate constant is multiplied by the
// concentration product of its source side, and the result is gated by
// phase existence — the forward rate of a reaction is forced to zero
// if any phase supplying one of its reactants does not exist, and the
// reverse rate is forced to zero if any phase on its product side does
// not exist. kr entries for irreversible reactions must be zero.
//
// While the state generation is unchanged the previous result is
// returned without recomputation; the inputs are assumed not to have
// changed meanwhile (call Invalidate when they do).
func (k *SurfaceKinetics) UpdateROP(kf, kr, conc []float64) *ROP {
	if k.last != nil && k.last.Generation == k.gen {
		return k.last
	}
	nr := k.NumReactions()
	k.checkLenI(kf, "forward rate constant")
	k.checkLenI(kr, "reverse rate constant")
	k.checkLenK(conc, "concentration")

	rop := &ROP{
		Generation: k.gen,
		Fwd:        make([]float64, nr),
		Rev:        make([]float64, nr),
		Net:        make([]float64, nr),
	}
	copy(rop.Fwd, kf[:nr])
	copy(rop.Rev, kr[:nr])
	k.MultiplyReactants(conc, rop.Fwd)
	k.MultiplyRevProducts(conc, rop.Rev)

	if k.existsCheck > 0 {
		for i := 0; i < nr; i++ {
			for p, exists := range k.phaseExists {
				if exists {
					continue
				}
				if k.rxnPhaseIsReactant[i][p] {
					rop.Fwd[i] = 0
				}
				if k.rxnPhaseIsProduct[i][p] {
					rop.Rev[i] = 0
				}
			}
		}
	}

	floats.SubTo(rop.Net, rop.Fwd, rop.Rev)
	k.last = rop
	return rop
}

// NetProductionRates computes the species net production rates from a
// gated rate-of-progress result, then applies the phase-stability
// clamp: a positive net rate for a species in an unstable phase is set
// to zero. net is zeroed before accumulation.
func (k *SurfaceKinetics) NetProductionRates(rop *ROP, net []float64) {
	k.ReactionStoichMgr.NetProductionRates(rop.Net, net)
	if k.stableCheck > 0 {
		for s := 0; s < k.NumSpecies(); s++ {
			if net[s] > 0 && k.spcPhase[s] >= 0 && !k.phaseStable[k.spcPhase[s]] {
				net[s] = 0
			}
		}
	}
}

// CreationRates computes the species creation rates from a gated
// rate-of-progress result.
func (k *SurfaceKinetics) CreationRates(rop *ROP, creation []float64) {
	k.ReactionStoichMgr.CreationRates(rop.Fwd, rop.Rev, creation)
}

// DestructionRates computes the species destruction rates from a
// gated rate-of-progress result.
func (k *SurfaceKinetics) DestructionRates(rop *ROP, destruction []float64) {
	k.ReactionStoichMgr.DestructionRates(rop.Fwd, rop.Rev, destruction)
}

// DeltaElectrochemPotentials computes, for every reaction, the change
// in electrochemical potential: the chemical potentials mu [J/mol] of
// the species, corrected by zF·Φ for the electric potential of each
// species' phase, differenced across the reaction stoichiometry.
// deltaM follows the delta-query convention of ReactionDelta: it is
// accumulated into, not zeroed.
func (k *SurfaceKinetics) DeltaElectrochemPotentials(mu, deltaM []float64) {
	k.checkLenK(mu, "chemical potential")
	for s := 0; s < k.NumSpecies(); s++ {
		k.grt[s] = mu[s]
		if p := k.spcPhase[s]; p >= 0 {
			k.grt[s] += k.spcCharge[s] * Faraday * k.phi[p]
		}
	}
	k.ReactionDelta(k.grt, deltaM)
}

// InterfaceCurrent returns the net positive charge entering phase p
// per unit area and time [A/m² for a surface mechanism], computed from
// the net production rates implied by rop.
func (k *SurfaceKinetics) InterfaceCurrent(rop *ROP, p int) float64 {
	k.checkPhase(p)
	k.NetProductionRates(rop, k.wdot)
	var current float64
	for s := 0; s < k.NumSpecies(); s++ {
		if k.spcPhase[s] == p {
			current += k.spcCharge[s] * k.wdot[s]
		}
	}
	return current * Faraday
}
