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
	"encoding/csv"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"

	"github.com/Knetic/govaluate"
	"github.com/ctessum/unit"
	"gonum.org/v1/gonum/floats"
)

// kmol is the unit dimension rates are reported in; the engine works
// in kmol throughout.
var kmol = unit.NewDimension("kmol")

// rateUnit attaches surface-rate units [kmol/m²/s] to a value.
func rateUnit(v float64) *unit.Unit {
	return unit.New(v, unit.Dimensions{kmol: 1, unit.LengthDim: -2, unit.TimeDim: -1})
}

// RateResult holds the species rates and phase currents from one
// mechanism evaluation.
type RateResult struct {
	Species []string // species names, in array order
	Phases  []string // phase names, in phase-index order

	Creation    []float64 // creation rate per species
	Destruction []float64 // destruction rate per species
	Net         []float64 // net production rate per species
	Current     []float64 // interface current per phase [A/m²]

	Fwd    []float64 // forward rate of progress per reaction
	Rev    []float64 // reverse rate of progress per reaction
	NetROP []float64 // net rate of progress per reaction
}

var identRegexp = regexp.MustCompile("[^a-zA-Z0-9_]+")

// identifier converts a species or phase name into a form usable as an
// expression variable, replacing runs of characters that are not
// letters, digits, or underscores with a single underscore.
func identifier(name string) string {
	s := identRegexp.ReplaceAllString(name, "_")
	for len(s) > 0 && s[len(s)-1] == '_' {
		s = s[:len(s)-1]
	}
	return s
}

// params lays the result out as expression variables: 'creation_X',
// 'destruction_X', and 'net_X' per species X, 'current_P' per phase P,
// the slices 'creation', 'destruction', and 'net', and the per-reaction
// rate-of-progress slices 'rop_fwd', 'rop_rev', and 'rop_net'.
func (r *RateResult) params() map[string]interface{} {
	p := map[string]interface{}{
		"creation":    r.Creation,
		"destruction": r.Destruction,
		"net":         r.Net,
		"rop_fwd":     r.Fwd,
		"rop_rev":     r.Rev,
		"rop_net":     r.NetROP,
	}
	for i, name := range r.Species {
		id := identifier(name)
		p["creation_"+id] = r.Creation[i]
		p["destruction_"+id] = r.Destruction[i]
		p["net_"+id] = r.Net[i]
	}
	for i, name := range r.Phases {
		p["current_"+identifier(name)] = r.Current[i]
	}
	return p
}

// Outputter writes rate results to a file. The fields of the output
// are defined by expressions over the rate variables of the mechanism.
//
// Functions are defined in the outputFunctions variable.
type Outputter struct {
	fileName        string
	outputVariables map[string]string
	outputFunctions map[string]govaluate.ExpressionFunction
}

// NewOutputter initializes a new Outputter holder and adds a set of default
// output functions. Default functions include:
//
// 'exp(x)' which applies the exponential function e^x.
//
// 'abs(x)' which takes the absolute value of x.
//
// 'sum(x)' which sums a variable across all species.
func NewOutputter(fileName string, outputVariables map[string]string, outputFunctions map[string]govaluate.ExpressionFunction) (*Outputter, error) {
	defaultOutputFuncs := map[string]govaluate.ExpressionFunction{
		"exp": func(arg ...interface{}) (interface{}, error) {
			if len(arg) != 1 {
				return nil, fmt.Errorf("kinet: got %d arguments for function 'exp', but needs 1", len(arg))
			}
			return (float64)(math.Exp(arg[0].(float64))), nil
		},
		"abs": func(arg ...interface{}) (interface{}, error) {
			if len(arg) != 1 {
				return nil, fmt.Errorf("kinet: got %d arguments for function 'abs', but needs 1", len(arg))
			}
			return (float64)(math.Abs(arg[0].(float64))), nil
		},
		"sum": func(arg ...interface{}) (interface{}, error) {
			if len(arg) != 1 {
				return nil, fmt.Errorf("kinet: got %d arguments for function 'sum', but needs 1", len(arg))
			}
			return floats.Sum(arg[0].([]float64)), nil
		},
	}

	for key, val := range outputFunctions {
		defaultOutputFuncs[key] = val
	}

	if len(outputVariables) == 0 {
		return nil, fmt.Errorf("kinet: no output variables specified")
	}

	return &Outputter{
		fileName:        fileName,
		outputVariables: outputVariables,
		outputFunctions: defaultOutputFuncs,
	}, nil
}

// Evaluate computes the output variables from a rate result.
func (o *Outputter) Evaluate(r *RateResult) (map[string]float64, error) {
	params := r.params()
	out := make(map[string]float64, len(o.outputVariables))
	for name, exprStr := range o.outputVariables {
		expr, err := govaluate.NewEvaluableExpressionWithFunctions(exprStr, o.outputFunctions)
		if err != nil {
			return nil, fmt.Errorf("kinet: parsing output variable %s: %v", name, err)
		}
		v, err := expr.Evaluate(params)
		if err != nil {
			return nil, fmt.Errorf("kinet: evaluating output variable %s: %v", name, err)
		}
		f, ok := v.(float64)
		if !ok {
			return nil, fmt.Errorf("kinet: output variable %s is not a number: %v", name, v)
		}
		out[name] = f
	}
	return out, nil
}

// Output evaluates the output variables and writes them to the
// Outputter's file, as CSV or JSON depending on the file extension.
func (o *Outputter) Output(r *RateResult) error {
	out, err := o.Evaluate(r)
	if err != nil {
		return err
	}
	f, err := os.Create(o.fileName)
	if err != nil {
		return fmt.Errorf("kinet: creating output file: %v", err)
	}
	defer f.Close()

	switch filepath.Ext(o.fileName) {
	case ".json":
		e := json.NewEncoder(f)
		e.SetIndent("", "\t")
		return e.Encode(out)
	default:
		names := make([]string, 0, len(out))
		for name := range out {
			names = append(names, name)
		}
		sort.Strings(names)
		w := csv.NewWriter(f)
		if err := w.Write([]string{"variable", "value", "rate"}); err != nil {
			return err
		}
		for _, name := range names {
			v := out[name]
			row := []string{name, strconv.FormatFloat(v, 'g', -1, 64), fmt.Sprintf("%v", rateUnit(v))}
			if err := w.Write(row); err != nil {
				return err
			}
		}
		w.Flush()
		return w.Error()
	}
}
