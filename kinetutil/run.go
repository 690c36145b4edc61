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

package kinetutil

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/kinet"
)

var logger *logrus.Logger

func init() {
	logger = logrus.StandardLogger()
	logrus.SetFormatter(&logrus.TextFormatter{
		ForceColors:     true,
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339Nano,
		DisableSorting:  true,
	})
}

// Run evaluates the rates of the named mechanism once and writes the
// output variables defined by outputVars to outputFile.
// concOverrides replaces the mechanism's nominal concentrations for
// the named species, excludePhases marks the named phases nonexistent,
// and potentials sets phase electric potentials [V].
func Run(mechName, outputFile string, outputVars, concOverrides map[string]string,
	excludePhases []string, potentials map[string]string) error {

	mech, err := mechanism(mechName)
	if err != nil {
		return err
	}
	k, conc, err := setupState(mech, concOverrides, excludePhases)
	if err != nil {
		return err
	}
	pot, err := floatMap(potentials)
	if err != nil {
		return err
	}
	for name, v := range pot {
		p, err := phaseIndex(mech, name)
		if err != nil {
			return err
		}
		k.SetElectricPotential(p, v)
	}

	logger.WithFields(logrus.Fields{
		"mechanism": mechName,
		"species":   mech.Len(),
		"reactions": mech.NumReactions(),
	}).Info("calculating rates")

	r := Rates(mech, k, conc)

	o, err := NewOutputter(outputFile, outputVars, nil)
	if err != nil {
		return err
	}
	if err := o.Output(r); err != nil {
		return err
	}
	logger.WithField("file", outputFile).Info("wrote output")
	return nil
}

// setupState builds the kinetics manager for a mechanism and its
// concentration vector, with the given overrides and phase exclusions
// applied.
func setupState(mech Mechanism, concOverrides map[string]string, excludePhases []string) (*kinet.SurfaceKinetics, []float64, error) {
	k, err := mech.Kinetics()
	if err != nil {
		return nil, nil, err
	}
	conc := mech.NominalConcentrations()
	over, err := floatMap(concOverrides)
	if err != nil {
		return nil, nil, err
	}
	for name, v := range over {
		s, err := speciesIndex(mech, name)
		if err != nil {
			return nil, nil, err
		}
		conc[s] = v
	}
	for _, name := range excludePhases {
		p, err := phaseIndex(mech, name)
		if err != nil {
			return nil, nil, err
		}
		k.SetPhaseExistence(p, false)
	}
	return k, conc, nil
}

// Rates evaluates the mechanism's rates of progress at the given
// concentrations and collects the species rates and phase currents.
func Rates(mech Mechanism, k *kinet.SurfaceKinetics, conc []float64) *RateResult {
	kf, kr := mech.NominalRateConstants()
	rop := k.UpdateROP(kf, kr, conc)

	r := &RateResult{
		Species:     mech.Species(),
		Phases:      mech.Phases(),
		Creation:    make([]float64, mech.Len()),
		Destruction: make([]float64, mech.Len()),
		Net:         make([]float64, mech.Len()),
		Current:     make([]float64, k.NumPhases()),
		Fwd:         rop.Fwd,
		Rev:         rop.Rev,
		NetROP:      rop.Net,
	}
	k.CreationRates(rop, r.Creation)
	k.DestructionRates(rop, r.Destruction)
	k.NetProductionRates(rop, r.Net)
	for p := 0; p < k.NumPhases(); p++ {
		r.Current[p] = k.InterfaceCurrent(rop, p)
	}
	return r
}

func speciesIndex(mech Mechanism, name string) (int, error) {
	for i, n := range mech.Species() {
		if n == name {
			return i, nil
		}
	}
	return 0, fmt.Errorf("kinet: invalid species name %s; valid names are %v", name, mech.Species())
}

func phaseIndex(mech Mechanism, name string) (int, error) {
	for i, n := range mech.Phases() {
		if n == name {
			return i, nil
		}
	}
	return 0, fmt.Errorf("kinet: invalid phase name %s; valid names are %v", name, mech.Phases())
}
