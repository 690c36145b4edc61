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

// Package kinetutil provides commands for running reaction-rate
// calculations with compiled-in mechanisms.
package kinetutil

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/lnashier/viper"
	"github.com/spatialmodel/kinet"
	"github.com/spatialmodel/kinet/science/surfchem/ptcombustion"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Cfg holds configuration information.
var Cfg *viper.Viper

// Mechanism is the interface that compiled-in reaction mechanisms
// fulfil.
type Mechanism interface {
	// Len returns the number of chemical species.
	Len() int

	// NumReactions returns the number of reactions.
	NumReactions() int

	// Species returns the species names, in array order.
	Species() []string

	// Phases returns the phase names, in phase-index order.
	Phases() []string

	// Kinetics builds the heterogeneous kinetics manager for the
	// mechanism.
	Kinetics() (*kinet.SurfaceKinetics, error)

	// NominalConcentrations returns a representative
	// activity-concentration vector.
	NominalConcentrations() []float64

	// NominalRateConstants returns representative forward and
	// reverse rate constants.
	NominalRateConstants() (kf, kr []float64)

	// Units returns the concentration units of the named species.
	Units(species string) (string, error)
}

// Mechanisms lists the compiled-in mechanisms available to the
// commands, by name.
var Mechanisms = map[string]Mechanism{
	"ptcombustion": ptcombustion.Mechanism{},
}

func mechanism(name string) (Mechanism, error) {
	m, ok := Mechanisms[name]
	if !ok {
		names := make([]string, 0, len(Mechanisms))
		for n := range Mechanisms {
			names = append(names, n)
		}
		return nil, fmt.Errorf("kinet: invalid mechanism name %s; valid options are %v", name, names)
	}
	return m, nil
}

var options []struct {
	name, usage, shorthand string
	defaultVal             interface{}
	flagsets               []*pflag.FlagSet
}

func init() {
	// Options are the configuration options available to Kinet.
	options = []struct {
		name, usage, shorthand string
		defaultVal             interface{}
		flagsets               []*pflag.FlagSet
	}{
		{
			name: "config",
			usage: `
              config specifies the configuration file location.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "mechanism",
			usage: `
              mechanism specifies the name of the compiled-in reaction
              mechanism to use. Currently 'ptcombustion' is the only
              available mechanism.`,
			shorthand:  "m",
			defaultVal: "ptcombustion",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "OutputFile",
			usage: `
              OutputFile specifies the path to the rates output file. The
              file extension chooses the format: '.csv' or '.json'.`,
			defaultVal: "rates.csv",
			flagsets:   []*pflag.FlagSet{ratesCmd.Flags()},
		},
		{
			name: "OutputVariables",
			usage: `
              OutputVariables specifies which variables should be output,
              as a mapping from output names to expressions over the
              mechanism's rate variables. Each species contributes
              'creation_X', 'destruction_X', and 'net_X' variables, where
              X is the species name with non-alphanumeric characters
              replaced by underscores; the slices 'creation',
              'destruction', and 'net' hold all species at once, the
              slices 'rop_fwd', 'rop_rev', and 'rop_net' hold the
              per-reaction rates of progress, and each phase contributes
              a 'current_P' variable. Expressions may use the functions
              exp(x), abs(x), and sum(x).`,
			defaultVal: map[string]string{
				"NetCO2": "net_CO2",
			},
			flagsets: []*pflag.FlagSet{ratesCmd.Flags()},
		},
		{
			name: "Rates.Concentrations",
			usage: `
              Rates.Concentrations overrides the mechanism's nominal
              concentration for the given species, as a mapping from
              species names to numbers.`,
			defaultVal: map[string]string{},
			flagsets:   []*pflag.FlagSet{ratesCmd.Flags(), benchCmd.Flags()},
		},
		{
			name: "Rates.ExcludePhases",
			usage: `
              Rates.ExcludePhases lists phases that should be treated as
              nonexistent during the calculation.`,
			defaultVal: []string{},
			flagsets:   []*pflag.FlagSet{ratesCmd.Flags(), benchCmd.Flags()},
		},
		{
			name: "Rates.Potentials",
			usage: `
              Rates.Potentials sets the electric potential of the given
              phases [V], as a mapping from phase names to numbers.`,
			defaultVal: map[string]string{},
			flagsets:   []*pflag.FlagSet{ratesCmd.Flags()},
		},
		{
			name: "Bench.ScenarioFile",
			usage: `
              Bench.ScenarioFile specifies the path to a TOML file listing
              benchmark scenarios. If empty, a single scenario with the
              mechanism's nominal state is used.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{benchCmd.Flags()},
		},
		{
			name: "Bench.Iterations",
			usage: `
              Bench.Iterations specifies the number of rate evaluations
              per benchmark scenario, for scenarios that don't set their
              own count.`,
			shorthand:  "n",
			defaultVal: 10000,
			flagsets:   []*pflag.FlagSet{benchCmd.Flags()},
		},
	}

	Cfg = viper.New()

	// Set the prefix for configuration environment variables.
	Cfg.SetEnvPrefix("KINET")

	for _, option := range options {
		for i, set := range option.flagsets {
			if i != 0 { // We don't want to create the same flag twice.
				set.AddFlag(option.flagsets[0].Lookup(option.name))
				continue
			}
			switch option.defaultVal.(type) {
			case string:
				if option.shorthand == "" {
					set.String(option.name, option.defaultVal.(string), option.usage)
				} else {
					set.StringP(option.name, option.shorthand, option.defaultVal.(string), option.usage)
				}
			case []string:
				if option.shorthand == "" {
					set.StringSlice(option.name, option.defaultVal.([]string), option.usage)
				} else {
					set.StringSliceP(option.name, option.shorthand, option.defaultVal.([]string), option.usage)
				}
			case bool:
				if option.shorthand == "" {
					set.Bool(option.name, option.defaultVal.(bool), option.usage)
				} else {
					set.BoolP(option.name, option.shorthand, option.defaultVal.(bool), option.usage)
				}
			case int:
				if option.shorthand == "" {
					set.Int(option.name, option.defaultVal.(int), option.usage)
				} else {
					set.IntP(option.name, option.shorthand, option.defaultVal.(int), option.usage)
				}
			case float64:
				if option.shorthand == "" {
					set.Float64(option.name, option.defaultVal.(float64), option.usage)
				} else {
					set.Float64P(option.name, option.shorthand, option.defaultVal.(float64), option.usage)
				}
			case map[string]string:
				b := bytes.NewBuffer(nil)
				e := json.NewEncoder(b)
				e.Encode(option.defaultVal)
				s := string(b.Bytes())
				if option.shorthand == "" {
					set.String(option.name, s, option.usage)
				} else {
					set.StringP(option.name, option.shorthand, s, option.usage)
				}
			default:
				panic("invalid argument type")
			}
			Cfg.BindPFlag(option.name, set.Lookup(option.name))
		}
	}
}

func init() {
	// Link the commands together.
	Root.AddCommand(versionCmd)
	Root.AddCommand(ratesCmd)
	Root.AddCommand(benchCmd)
}

// setConfig finds and reads in the configuration file, if there is one.
func setConfig() error {
	if cfgpath := Cfg.GetString("config"); cfgpath != "" {
		Cfg.SetConfigFile(cfgpath)
		if err := Cfg.ReadInConfig(); err != nil {
			return fmt.Errorf("kinet: problem reading configuration file: %v", err)
		}
	}
	return nil
}

// Root is the main command.
var Root = &cobra.Command{
	Use:   "kinet",
	Short: "A reaction stoichiometry and rate-of-progress engine.",
	Long: `Kinet calculates species creation, destruction, and net production
rates for chemical reaction mechanisms, including phase-existence and
phase-stability gating for heterogeneous surface kinetics.
Use the subcommands specified below to access the functionality.

Refer to the subcommand documentation for configuration options and default
settings. Configuration can be changed by using a configuration file (and
providing the path to the file using the --config flag), by using
command-line arguments, or by setting environment variables in the format
'KINET_var' where 'var' is the name of the variable to be set.
Refer to https://github.com/spf13/viper for additional configuration
information.`,
	DisableAutoGenTag: true,
	PersistentPreRunE: func(*cobra.Command, []string) error { return setConfig() },
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Long:  "version prints the version number of this version of Kinet.",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Printf("Kinet v%s\n", kinet.Version)
	},
	DisableAutoGenTag: true,
}

// ratesCmd is a command that evaluates a mechanism's reaction rates
// once and writes the requested output variables to a file.
var ratesCmd = &cobra.Command{
	Use:   "rates",
	Short: "Calculate reaction rates.",
	Long: `rates evaluates the rates of progress of every reaction in the chosen
mechanism at its nominal state, modified by any concentration overrides,
phase exclusions, and phase potentials given in the configuration, and
writes the output variables to OutputFile.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		outputFile, err := checkOutputFile(Cfg.GetString("OutputFile"))
		if err != nil {
			return err
		}
		outputVars, err := checkOutputVars(GetStringMapString("OutputVariables", Cfg))
		if err != nil {
			return err
		}
		return Run(
			Cfg.GetString("mechanism"),
			outputFile,
			outputVars,
			GetStringMapString("Rates.Concentrations", Cfg),
			expandStringSlice(Cfg.GetStringSlice("Rates.ExcludePhases")),
			GetStringMapString("Rates.Potentials", Cfg),
		)
	},
	DisableAutoGenTag: true,
}

// benchCmd is a command that benchmarks rate evaluation.
var benchCmd = &cobra.Command{
	Use:   "bench",
	Short: "Benchmark rate evaluation.",
	Long: `bench repeatedly evaluates the rates of progress of the chosen
mechanism and reports timing statistics. Scenarios can be given in a TOML
file specified by Bench.ScenarioFile; otherwise the mechanism's nominal
state is benchmarked.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return Bench(
			Cfg.GetString("mechanism"),
			Cfg.GetString("Bench.ScenarioFile"),
			Cfg.GetInt("Bench.Iterations"),
			GetStringMapString("Rates.Concentrations", Cfg),
			expandStringSlice(Cfg.GetStringSlice("Rates.ExcludePhases")),
		)
	},
	DisableAutoGenTag: true,
}
