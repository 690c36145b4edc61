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

// Package ptcombustion contains a simplified mechanism for the
// catalytic oxidation of carbon monoxide on a platinum surface.
package ptcombustion

import (
	"fmt"

	"github.com/spatialmodel/kinet"
)

// Mechanism is a compiled-in CO oxidation mechanism with a gas phase
// and a platinum surface phase.
type Mechanism struct{}

// physical constants
const (
	// Molar masses [grams per mole]
	mwCO  = 28.0101
	mwO2  = 31.9988
	mwCO2 = 44.0095

	// SiteDensity is the density of platinum surface sites
	// [kmol/m²].
	SiteDensity = 2.7063e-8
)

// Indices of individual species in arrays.
const (
	iCO int = iota
	iO2
	iCO2
	iPT  // empty platinum site
	iOs  // adsorbed atomic oxygen
	iCOs // adsorbed carbon monoxide
)

// Reaction indices.
const (
	rO2Adsorption int = iota // O2 + 2 PT(s) → 2 O(s)
	rCOAdsorption            // CO + PT(s) ⇌ CO(s)
	rSurfOxidation           // CO(s) + O(s) → CO2 + 2 PT(s)
)

// Len returns the number of chemical species in this mechanism (6).
func (m Mechanism) Len() int {
	return 6
}

// NumReactions returns the number of reactions in this mechanism (3).
func (m Mechanism) NumReactions() int {
	return 3
}

// Species returns the names of the chemical species used by this
// mechanism, in array order.
func (m Mechanism) Species() []string {
	return []string{
		"CO",
		"O2",
		"CO2",
		"PT(s)",
		"O(s)",
		"CO(s)",
	}
}

// Phases returns the names of the phases used by this mechanism, in
// phase-index order.
func (m Mechanism) Phases() []string {
	return []string{"gas", "surface"}
}

// Kinetics builds the heterogeneous kinetics manager for this
// mechanism, with the gas phase at index 0 and the platinum surface
// phase at index 1.
func (m Mechanism) Kinetics() (*kinet.SurfaceKinetics, error) {
	k := kinet.NewSurfaceKinetics(m.Len())
	if _, err := k.AddPhase("gas", iCO, iO2, iCO2); err != nil {
		return nil, fmt.Errorf("ptcombustion: %v", err)
	}
	if _, err := k.AddPhase("surface", iPT, iOs, iCOs); err != nil {
		return nil, fmt.Errorf("ptcombustion: %v", err)
	}
	// Dissociative oxygen adsorption.
	if err := k.AddReaction(rO2Adsorption,
		[]int{iO2, iPT, iPT}, []int{iOs, iOs}, false); err != nil {
		return nil, fmt.Errorf("ptcombustion: %v", err)
	}
	// Molecular CO adsorption and desorption.
	if err := k.AddReaction(rCOAdsorption,
		[]int{iCO, iPT}, []int{iCOs}, true); err != nil {
		return nil, fmt.Errorf("ptcombustion: %v", err)
	}
	// Langmuir-Hinshelwood surface oxidation.
	if err := k.AddReaction(rSurfOxidation,
		[]int{iCOs, iOs}, []int{iCO2, iPT, iPT}, false); err != nil {
		return nil, fmt.Errorf("ptcombustion: %v", err)
	}
	return k, nil
}

// NominalConcentrations returns a representative activity-concentration
// vector for testing and benchmarking: gas species as molar
// concentrations [kmol/m³] for atmospheric pressure at 900 K, surface
// species as site concentrations [kmol/m²] for a partially covered
// surface.
func (m Mechanism) NominalConcentrations() []float64 {
	c := make([]float64, m.Len())
	c[iCO] = 1.35e-3
	c[iO2] = 2.84e-3
	c[iCO2] = 1.35e-4
	c[iPT] = 0.5 * SiteDensity
	c[iOs] = 0.2 * SiteDensity
	c[iCOs] = 0.3 * SiteDensity
	return c
}

// NominalRateConstants returns representative forward and reverse rate
// constants for the mechanism's reactions at 900 K. Reverse entries
// for irreversible reactions are zero.
func (m Mechanism) NominalRateConstants() (kf, kr []float64) {
	kf = []float64{
		rO2Adsorption:  1.8e21,
		rCOAdsorption:  4.6e13,
		rSurfOxidation: 3.7e14,
	}
	kr = []float64{
		rO2Adsorption:  0,
		rCOAdsorption:  8.9e3,
		rSurfOxidation: 0,
	}
	return kf, kr
}

var speciesUnits = []string{
	iCO:  "kmol/m³",
	iO2:  "kmol/m³",
	iCO2: "kmol/m³",
	iPT:  "kmol/m²",
	iOs:  "kmol/m²",
	iCOs: "kmol/m²",
}

// Units returns the concentration units of the given species, or an
// error if the name is invalid.
func (m Mechanism) Units(species string) (string, error) {
	for i, n := range m.Species() {
		if n == species {
			return speciesUnits[i], nil
		}
	}
	return "", fmt.Errorf("ptcombustion: invalid species name %s; valid names are %v", species, m.Species())
}
