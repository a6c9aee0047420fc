package steadystate

import (
	"math"
	"strings"

	"gonum.org/v1/gonum/mat"

	"github.com/MacroFinanceHub/dynare/internal/config"
	"github.com/MacroFinanceHub/dynare/internal/model"
	"github.com/MacroFinanceHub/dynare/internal/num"
)

// Diagnostic output is a side channel for human operators: it names
// the offending equations and, where possible, the variable behind
// them, so a mis-specified model can be located. Auxiliary-variable
// columns are resolved to the original variable they substitute for.

func absOver(x, tol float64) bool {
	return math.IsNaN(x) || math.Abs(x) > tol
}

func (o *Orchestrator) reportNonFiniteResiduals(m *model.Descriptor, resid num.Vec, point num.Vec) {
	for i, r := range resid {
		if math.IsNaN(r) || math.IsInf(r, 0) {
			o.log.Error().
				Int("equation", i+1).
				Float64("residual", r).
				Msg("equation evaluates to a non-finite residual at the initial values")
		}
	}
	for i := 0; i < len(point) && i < m.EndoNbr(); i++ {
		if math.IsNaN(point[i]) || math.IsInf(point[i], 0) {
			o.log.Error().
				Str("variable", m.VarName(i)).
				Float64("value", point[i]).
				Msg("variable has a non-finite initial value")
		}
	}
}

func (o *Orchestrator) reportResiduals(m *model.Descriptor, resid num.Vec, tol float64) {
	for i, r := range resid {
		if absOver(r, tol) {
			o.log.Error().
				Int("equation", i+1).
				Float64("residual", r).
				Msg("equation residual exceeds tolerance")
		}
	}
}

func (o *Orchestrator) reportUnsolved(m *model.Descriptor, resid num.Vec, guess num.Vec) {
	o.log.Error().Str("model", m.Name).Msg("steady state could not be computed from the initial values")
	for i, r := range resid {
		if absOver(r, config.PostStepResidualTol) {
			initVal := math.NaN()
			if i < len(guess) {
				initVal = guess[i]
			}
			o.log.Error().
				Int("equation", i+1).
				Str("variable", m.VarName(min(i, m.EndoNbr()-1))).
				Float64("initial_value", initVal).
				Float64("residual", r).
				Msg("unsolved equation")
		}
	}
}

// scanJacobian is the debug-mode sweep over the static Jacobian: every
// non-finite entry is reported with its equation row and originating
// variable column.
func (o *Orchestrator) scanJacobian(m *model.Descriptor, jac *mat.Dense) {
	rows, cols := jac.Dims()
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			v := jac.At(i, j)
			if math.IsNaN(v) || math.IsInf(v, 0) {
				o.log.Warn().
					Int("equation", i+1).
					Str("variable", m.VarName(j)).
					Float64("derivative", v).
					Msg("non-finite jacobian entry")
			}
		}
	}
}

// reportInstruments prints the Ramsey instrument values at the
// candidate point, so the operator can see which policy settings the
// file's conditional steady state was computed for.
func (o *Orchestrator) reportInstruments(m *model.Descriptor, opts *config.Options, point num.Vec) {
	if len(opts.Instruments) == 0 {
		return
	}
	for _, name := range opts.Instruments {
		for i, endo := range m.EndoNames {
			if strings.EqualFold(endo, name) && i < len(point) {
				o.log.Info().Str("instrument", name).Float64("value", point[i]).Msg("ramsey instrument")
			}
		}
	}
}
