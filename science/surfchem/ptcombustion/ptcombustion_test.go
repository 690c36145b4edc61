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

package ptcombustion

import (
	"math"
	"testing"
)

const testTolerance = 1.e-10

// elemC, elemO, and sites give the carbon, oxygen, and platinum-site
// content of each species, used to check conservation.
var (
	elemC = []float64{iCO: 1, iO2: 0, iCO2: 1, iPT: 0, iOs: 0, iCOs: 1}
	elemO = []float64{iCO: 1, iO2: 2, iCO2: 2, iPT: 0, iOs: 1, iCOs: 1}
	sites = []float64{iCO: 0, iO2: 0, iCO2: 0, iPT: 1, iOs: 1, iCOs: 1}
)

func TestConservation(t *testing.T) {
	m := Mechanism{}
	k, err := m.Kinetics()
	if err != nil {
		t.Fatal(err)
	}
	kf, kr := m.NominalRateConstants()
	rop := k.UpdateROP(kf, kr, m.NominalConcentrations())
	net := make([]float64, m.Len())
	k.NetProductionRates(rop, net)

	for _, c := range []struct {
		name string
		elem []float64
	}{
		{"carbon", elemC},
		{"oxygen", elemO},
		{"platinum sites", sites},
	} {
		var sum, scale float64
		for s, n := range c.elem {
			sum += n * net[s]
			scale += math.Abs(n * net[s])
		}
		if math.Abs(sum) > testTolerance*scale {
			t.Errorf("%s not conserved: residual %g against scale %g", c.name, sum, scale)
		}
	}
}

func TestRates(t *testing.T) {
	m := Mechanism{}
	k, err := m.Kinetics()
	if err != nil {
		t.Fatal(err)
	}
	conc := m.NominalConcentrations()
	kf, kr := m.NominalRateConstants()
	rop := k.UpdateROP(kf, kr, conc)

	wantF := []float64{
		kf[rO2Adsorption] * conc[iO2] * conc[iPT] * conc[iPT],
		kf[rCOAdsorption] * conc[iCO] * conc[iPT],
		kf[rSurfOxidation] * conc[iCOs] * conc[iOs],
	}
	for i, w := range wantF {
		if math.Abs(rop.Fwd[i]-w) > testTolerance*math.Abs(w) {
			t.Errorf("reaction %d: forward rate %g, want %g", i, rop.Fwd[i], w)
		}
	}
	if w := kr[rCOAdsorption] * conc[iCOs]; math.Abs(rop.Rev[rCOAdsorption]-w) > testTolerance*math.Abs(w) {
		t.Errorf("CO desorption rate %g, want %g", rop.Rev[rCOAdsorption], w)
	}
	if rop.Rev[rO2Adsorption] != 0 || rop.Rev[rSurfOxidation] != 0 {
		t.Error("irreversible reaction has a nonzero reverse rate")
	}

	// CO2 is produced only by the surface oxidation step.
	creation := make([]float64, m.Len())
	k.CreationRates(rop, creation)
	if math.Abs(creation[iCO2]-rop.Fwd[rSurfOxidation]) > testTolerance*creation[iCO2] {
		t.Errorf("CO2 creation %g, want %g", creation[iCO2], rop.Fwd[rSurfOxidation])
	}
}

func TestSurfacePhaseGating(t *testing.T) {
	m := Mechanism{}
	k, err := m.Kinetics()
	if err != nil {
		t.Fatal(err)
	}
	kf, kr := m.NominalRateConstants()

	// Every reaction in this mechanism involves the surface, so
	// removing the surface phase must stop all of them.
	k.SetPhaseExistence(1, false)
	rop := k.UpdateROP(kf, kr, m.NominalConcentrations())
	for i := 0; i < m.NumReactions(); i++ {
		if rop.Fwd[i] != 0 || rop.Rev[i] != 0 {
			t.Errorf("reaction %d proceeds without the surface phase: fwd %g, rev %g",
				i, rop.Fwd[i], rop.Rev[i])
		}
	}
}

func TestMetadata(t *testing.T) {
	m := Mechanism{}
	if got := len(m.Species()); got != m.Len() {
		t.Errorf("%d species names for %d species", got, m.Len())
	}
	if u, err := m.Units("O(s)"); err != nil || u != "kmol/m²" {
		t.Errorf("Units(O(s)) = %q, %v", u, err)
	}
	if _, err := m.Units("XYZ"); err == nil {
		t.Error("expected an error for an invalid species name")
	}
	k, err := m.Kinetics()
	if err != nil {
		t.Fatal(err)
	}
	if k.NumPhases() != len(m.Phases()) {
		t.Errorf("%d phases registered, %d named", k.NumPhases(), len(m.Phases()))
	}
	if k.NumReactions() != m.NumReactions() {
		t.Errorf("%d reactions registered, want %d", k.NumReactions(), m.NumReactions())
	}
}
