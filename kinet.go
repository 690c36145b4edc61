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

// Package kinet is a reaction stoichiometry and rate-of-progress
// engine for chemical kinetics mechanisms. It converts sets of sparse,
// possibly fractional, stoichiometric coefficients plus externally
// supplied forward and reverse reaction rates into per-species
// creation, destruction, and net production rates, and gates those
// rates by phase-existence and phase-stability rules for heterogeneous
// (surface) reaction networks.
//
// The package deliberately excludes rate-expression evaluation
// (Arrhenius and friends), thermodynamic property managers, time
// integration, and any input-file parsing: those are collaborators
// that supply rate constants, concentrations, and molar properties to
// this engine and consume the aggregate rates it produces.
//
// Everything here is single-threaded and synchronous. A mechanism
// instance holds no global state, but it is not safe for concurrent
// mutation; hosts evaluating several independent mechanisms at once
// must use one instance per goroutine.
package kinet

// Version gives the version number.
const Version = "0.4.0"

// Faraday is the Faraday constant [C/mol], used to convert phase
// electric potentials into electrochemical potential contributions.
const Faraday = 96485.33212331001
