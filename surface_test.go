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
	"testing"
)

// twoPhaseKinetics builds a small gas/bulk interface mechanism:
//	reaction 0: A(g) + M(b) ⇌ AM(b)   (draws a reactant from the bulk)
//	reaction 1: B(g) ⇌ A(g)           (gas only)
//	reaction 2: AM(b) → B(g) + M(b)   (irreversible)
func twoPhaseKinetics(t *testing.T) (k *SurfaceKinetics, gas, bulk int) {
	const (
		iA = iota
		iB
		iM
		iAM
		nSpc
	)
	k = NewSurfaceKinetics(nSpc)
	var err error
	gas, err = k.AddPhase("gas", iA, iB)
	if err != nil {
		t.Fatal(err)
	}
	bulk, err = k.AddPhase("bulk", iM, iAM)
	if err != nil {
		t.Fatal(err)
	}
	if err := k.AddReaction(0, []int{iA, iM}, []int{iAM}, true); err != nil {
		t.Fatal(err)
	}
	if err := k.AddReaction(1, []int{iB}, []int{iA}, true); err != nil {
		t.Fatal(err)
	}
	if err := k.AddReaction(2, []int{iAM}, []int{iB, iM}, false); err != nil {
		t.Fatal(err)
	}
	return k, gas, bulk
}

var (
	surfConc = []float64{0.4, 0.6, 1.2, 0.8}
	surfKf   = []float64{2.0, 1.1, 0.3}
	surfKr   = []float64{0.5, 0.3, 0}
)

func TestPhaseExistenceGating(t *testing.T) {
	k, _, bulk := twoPhaseKinetics(t)

	// With all phases present nothing is gated.
	rop := k.UpdateROP(surfKf, surfKr, surfConc)
	for i, f := range rop.Fwd {
		if f == 0 {
			t.Errorf("reaction %d: forward rate of progress is 0 with all phases present", i)
		}
	}

	// Remove the bulk phase. Reaction 0 draws a reactant from it, so
	// its forward direction must stop exactly, stale concentrations
	// notwithstanding; its reverse direction consumes AM(b), which is
	// also gone. Reaction 1 is gas-only and unaffected.
	k.SetPhaseExistence(bulk, false)
	rop = k.UpdateROP(surfKf, surfKr, surfConc)
	if rop.Fwd[0] != 0 {
		t.Errorf("reaction 0: forward rate %g with a nonexistent reactant phase, want exactly 0", rop.Fwd[0])
	}
	if rop.Rev[0] != 0 {
		t.Errorf("reaction 0: reverse rate %g with a nonexistent product phase, want exactly 0", rop.Rev[0])
	}
	if rop.Fwd[1] == 0 || rop.Rev[1] == 0 {
		t.Error("reaction 1: gas-only reaction was gated by the bulk phase")
	}
	if rop.Fwd[2] != 0 {
		t.Errorf("reaction 2: forward rate %g with a nonexistent reactant phase, want exactly 0", rop.Fwd[2])
	}

	// Restoring the phase (and its stability) restores the rates.
	k.SetPhaseExistence(bulk, true)
	k.SetPhaseStability(bulk, true)
	rop2 := k.UpdateROP(surfKf, surfKr, surfConc)
	rop0 := k.UpdateROP(surfKf, surfKr, surfConc) // same generation, cached
	if rop2 != rop0 {
		t.Error("UpdateROP recomputed without a state change")
	}
	if rop2.Fwd[0] == 0 {
		t.Error("reaction 0: still gated after the phase was restored")
	}
}

func TestPhaseStabilityClamp(t *testing.T) {
	k, _, bulk := twoPhaseKinetics(t)

	rop := k.UpdateROP(surfKf, surfKr, surfConc)
	net := make([]float64, k.NumSpecies())
	k.NetProductionRates(rop, net)
	const iAM = 3
	if net[iAM] <= 0 {
		t.Fatalf("test setup: expected positive intrinsic net production of AM, got %g", net[iAM])
	}

	// An unstable bulk phase may be consumed but never formed.
	k.SetPhaseStability(bulk, false)
	rop = k.UpdateROP(surfKf, surfKr, surfConc)
	k.NetProductionRates(rop, net)
	if net[iAM] != 0 {
		t.Errorf("net production of a species in an unstable phase is %g, want exactly 0", net[iAM])
	}

	// Creation and destruction themselves are not clamped, only net
	// formation is.
	creation := make([]float64, k.NumSpecies())
	k.CreationRates(rop, creation)
	if creation[iAM] == 0 {
		t.Error("creation rate was clamped by phase stability")
	}

	// Consumption stays possible: drive reaction 0 backward.
	kf := []float64{0, surfKf[1], surfKf[2]}
	k.Invalidate()
	rop = k.UpdateROP(kf, surfKr, surfConc)
	k.NetProductionRates(rop, net)
	if net[iAM] >= 0 {
		t.Errorf("consumption of a species in an unstable phase was clamped: net %g", net[iAM])
	}
}

func TestNonexistentPhaseIsUnstable(t *testing.T) {
	k, _, bulk := twoPhaseKinetics(t)
	k.SetPhaseExistence(bulk, false)
	if k.PhaseStability(bulk) {
		t.Error("a nonexistent phase must default to unstable")
	}
	// The policy can be overridden afterward.
	k.SetPhaseStability(bulk, true)
	if !k.PhaseStability(bulk) {
		t.Error("stability override after existence change was lost")
	}
	if k.PhaseExistence(bulk) {
		t.Error("stability override changed phase existence")
	}
}

func TestGenerationCaching(t *testing.T) {
	k, _, bulk := twoPhaseKinetics(t)

	rop1 := k.UpdateROP(surfKf, surfKr, surfConc)
	rop2 := k.UpdateROP(surfKf, surfKr, surfConc)
	if rop1 != rop2 {
		t.Error("UpdateROP recomputed at an unchanged generation")
	}
	if rop1.Generation != k.Generation() {
		t.Error("cached result carries a stale generation")
	}

	k.Invalidate()
	rop3 := k.UpdateROP(surfKf, surfKr, surfConc)
	if rop3 == rop1 {
		t.Error("UpdateROP returned a stale result after Invalidate")
	}

	k.SetPhaseExistence(bulk, false)
	rop4 := k.UpdateROP(surfKf, surfKr, surfConc)
	if rop4 == rop3 {
		t.Error("UpdateROP returned a stale result after a phase change")
	}
	if rop4.Fwd[0] != 0 {
		t.Error("recomputed result does not reflect the phase change")
	}
}

func TestHomogeneousGateIsNoOp(t *testing.T) {
	// A single-phase mechanism never gates: results equal the bare
	// stoichiometry-manager pipeline.
	k := NewSurfaceKinetics(3)
	if _, err := k.AddPhase("gas", 0, 1, 2); err != nil {
		t.Fatal(err)
	}
	if err := k.AddReaction(0, []int{0, 1}, []int{2}, true); err != nil {
		t.Fatal(err)
	}
	conc := []float64{0.5, 2.0, 0.25}
	kf := []float64{3.0}
	kr := []float64{1.5}
	rop := k.UpdateROP(kf, kr, conc)

	wantF := kf[0] * conc[0] * conc[1]
	wantR := kr[0] * conc[2]
	if different(rop.Fwd[0], wantF, testTolerance) || different(rop.Rev[0], wantR, testTolerance) {
		t.Errorf("got (%g, %g), want (%g, %g)", rop.Fwd[0], rop.Rev[0], wantF, wantR)
	}
	if different(rop.Net[0], wantF-wantR, testTolerance) {
		t.Errorf("net %g, want %g", rop.Net[0], wantF-wantR)
	}
}

func TestDeltaElectrochemPotentials(t *testing.T) {
	// An electrode/electrolyte charge-transfer step:
	// M(electrode) → M⁺(electrolyte) + e⁻(electrode).
	const (
		iM = iota
		iMplus
		iElectron
		nSpc
	)
	k := NewSurfaceKinetics(nSpc)
	electrode, err := k.AddPhase("electrode", iM, iElectron)
	if err != nil {
		t.Fatal(err)
	}
	electrolyte, err := k.AddPhase("electrolyte", iMplus)
	if err != nil {
		t.Fatal(err)
	}
	k.SetCharge(iMplus, 1)
	k.SetCharge(iElectron, -1)
	if err := k.AddReaction(0, []int{iM}, []int{iMplus, iElectron}, true); err != nil {
		t.Fatal(err)
	}
	const (
		phiS = 0.8 // electrode potential [V]
		phiL = 0.2 // electrolyte potential [V]
	)
	k.SetElectricPotential(electrode, phiS)
	k.SetElectricPotential(electrolyte, phiL)

	mu := []float64{-1.0e4, 2.0e4, 0}
	deltaM := make([]float64, 1)
	k.DeltaElectrochemPotentials(mu, deltaM)
	want := (mu[iMplus] + 1*Faraday*phiL) + (mu[iElectron] - 1*Faraday*phiS) - mu[iM]
	if different(deltaM[0], want, testTolerance) {
		t.Errorf("electrochemical potential delta %g, want %g", deltaM[0], want)
	}

	// Interface current: positive charge entering the electrolyte.
	kf := []float64{2.0}
	kr := []float64{0.5}
	conc := []float64{1, 1, 1}
	rop := k.UpdateROP(kf, kr, conc)
	gotI := k.InterfaceCurrent(rop, electrolyte)
	wantI := Faraday * (kf[0] - kr[0]) // M⁺ production carries +1 each
	if different(gotI, wantI, testTolerance) {
		t.Errorf("interface current %g, want %g", gotI, wantI)
	}
	if gotJ := k.InterfaceCurrent(rop, electrode); different(gotJ, -wantI, testTolerance) {
		t.Errorf("electrode current %g, want %g", gotJ, -wantI)
	}
}

func TestAddPhaseErrors(t *testing.T) {
	k := NewSurfaceKinetics(3)
	if _, err := k.AddPhase("a", 0, 1); err != nil {
		t.Fatal(err)
	}
	if _, err := k.AddPhase("b", 1); err == nil {
		t.Error("expected an error for a species owned by another phase")
	}
	if _, err := k.AddPhase("c", 5); err == nil {
		t.Error("expected an error for an out-of-range species")
	}
	if err := k.AddReaction(0, []int{0}, []int{2}, false); err == nil {
		t.Error("expected an error for a species without a phase")
	}
	if _, err := k.AddPhase("d", 2); err != nil {
		t.Fatal(err)
	}
	if err := k.AddReaction(0, []int{0}, []int{2}, false); err != nil {
		t.Fatal(err)
	}
	if _, err := k.AddPhase("e"); err == nil {
		t.Error("expected an error when adding a phase after a reaction")
	}
}

func TestInterfaceCurrentNeutral(t *testing.T) {
	k, gas, _ := twoPhaseKinetics(t)
	rop := k.UpdateROP(surfKf, surfKr, surfConc)
	if got := k.InterfaceCurrent(rop, gas); math.Abs(got) > 1e-12 {
		t.Errorf("neutral mechanism carries interface current %g", got)
	}
}
