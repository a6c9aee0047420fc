// Package model holds the static structural description of an economy:
// variable counts, auxiliary-variable metadata, lead/lag structure and
// the shared parameter and exogenous vectors.
package model

import (
	"fmt"

	"github.com/MacroFinanceHub/dynare/internal/num"
)

// AuxVarSpec records one auxiliary variable introduced by the model
// transformation. OrigIndex is a non-owning back-reference to the
// original variable it substitutes for, used only in diagnostics.
type AuxVarSpec struct {
	Index     int
	OrigIndex int
}

type Descriptor struct {
	Name string

	EndoNames  []string
	ExoNames   []string
	ParamNames []string

	// OrigEndoNbr counts the endogenous variables of the original model;
	// auxiliary variables are appended after them.
	OrigEndoNbr int
	AuxVars     []AuxVarSpec

	Linear  bool
	MaxLead int
	MaxLag  int

	// StaticDynamicDiffer marks models where some equations are tagged
	// with distinct static and dynamic forms, which must be proven
	// equivalent at any candidate steady state.
	StaticDynamicDiffer bool

	// Ramsey layout: the first RamseyEqNbr equations are the original
	// equilibrium conditions, the remainder the multiplier block.
	// MultiplierNbr counts the Lagrange multipliers appended to the
	// variable vector.
	RamseyEqNbr   int
	MultiplierNbr int

	// Blocks is the block decomposition used by the block-structured
	// solve path: an ordered partition of variable/equation indices.
	Blocks [][]int

	// Params is shared with the caller; a user steady-state function may
	// update entries in place.
	Params num.Vec

	// ExoSteady concatenates steady-state values of the contemporaneous
	// and deterministic exogenous processes.
	ExoSteady num.Vec
}

// EndoNbr is the full variable count, auxiliaries included.
func (d *Descriptor) EndoNbr() int {
	return d.OrigEndoNbr + len(d.AuxVars)
}

// VarName resolves index i to a printable name. Auxiliary variables
// report the original variable they substitute for, so diagnostics
// point at something the model author actually wrote.
func (d *Descriptor) VarName(i int) string {
	if i < d.OrigEndoNbr {
		if i < len(d.EndoNames) {
			return d.EndoNames[i]
		}
		return fmt.Sprintf("y%d", i+1)
	}
	k := i - d.OrigEndoNbr
	if k < len(d.AuxVars) {
		orig := d.AuxVars[k].OrigIndex
		if orig >= 0 && orig < len(d.EndoNames) {
			return fmt.Sprintf("aux(%s)", d.EndoNames[orig])
		}
	}
	return fmt.Sprintf("aux%d", k+1)
}

// Periods is the number of time columns a steady state must be
// broadcast across when evaluating the dynamic equations.
func (d *Descriptor) Periods() int {
	return d.MaxLead + d.MaxLag + 1
}

func (d *Descriptor) Validate() error {
	if d.OrigEndoNbr <= 0 {
		return fmt.Errorf("model %s: no endogenous variables", d.Name)
	}
	for _, a := range d.AuxVars {
		if a.OrigIndex < 0 || a.OrigIndex >= d.OrigEndoNbr {
			return fmt.Errorf("model %s: aux var %d back-references unknown variable %d", d.Name, a.Index, a.OrigIndex)
		}
	}
	if d.MultiplierNbr > 0 && d.RamseyEqNbr <= 0 {
		return fmt.Errorf("model %s: multipliers declared without a core equation block", d.Name)
	}
	return nil
}
