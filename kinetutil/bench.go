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
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/GaryBoone/GoStats/stats"
	"github.com/sirupsen/logrus"
)

// BenchConfig holds a set of benchmark scenarios, typically decoded
// from a TOML file.
type BenchConfig struct {
	Scenario []BenchScenario
}

// BenchScenario describes one benchmark case: a mechanism state and a
// number of rate evaluations to time.
type BenchScenario struct {
	// Name identifies the scenario in the report.
	Name string

	// Iterations is the number of rate evaluations to time. If zero,
	// the command-wide iteration count is used.
	Iterations int

	// Concentrations overrides the mechanism's nominal concentration
	// for the given species.
	Concentrations map[string]string

	// ExcludePhases lists phases to treat as nonexistent.
	ExcludePhases []string
}

// Bench times repeated rate evaluations of the named mechanism and
// logs timing statistics per scenario. If scenarioFile is empty a
// single scenario with the given state is used.
func Bench(mechName, scenarioFile string, iterations int, concOverrides map[string]string, excludePhases []string) error {
	mech, err := mechanism(mechName)
	if err != nil {
		return err
	}

	var cfg BenchConfig
	if scenarioFile == "" {
		cfg.Scenario = []BenchScenario{{
			Name:           "nominal",
			Concentrations: concOverrides,
			ExcludePhases:  excludePhases,
		}}
	} else {
		if _, err := toml.DecodeFile(os.ExpandEnv(scenarioFile), &cfg); err != nil {
			return fmt.Errorf("kinet: reading benchmark scenario file: %v", err)
		}
		if len(cfg.Scenario) == 0 {
			return fmt.Errorf("kinet: benchmark scenario file %s contains no scenarios", scenarioFile)
		}
	}

	for _, sc := range cfg.Scenario {
		n := sc.Iterations
		if n == 0 {
			n = iterations
		}
		if err := benchScenario(mech, sc, n); err != nil {
			return err
		}
	}
	return nil
}

func benchScenario(mech Mechanism, sc BenchScenario, iterations int) error {
	k, conc, err := setupState(mech, sc.Concentrations, sc.ExcludePhases)
	if err != nil {
		return fmt.Errorf("kinet: scenario %s: %v", sc.Name, err)
	}
	kf, kr := mech.NominalRateConstants()
	net := make([]float64, mech.Len())

	var s stats.Stats
	for i := 0; i < iterations; i++ {
		k.Invalidate()
		start := time.Now()
		rop := k.UpdateROP(kf, kr, conc)
		k.NetProductionRates(rop, net)
		s.Update(time.Since(start).Seconds() * 1e6)
	}

	logger.WithFields(logrus.Fields{
		"scenario":   sc.Name,
		"iterations": s.Count(),
		"mean_µs":    s.Mean(),
		"stddev_µs":  s.SampleStandardDeviation(),
		"min_µs":     s.Min(),
		"max_µs":     s.Max(),
	}).Info("benchmark complete")
	return nil
}
