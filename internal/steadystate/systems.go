package steadystate

import (
	"gonum.org/v1/gonum/mat"

	"github.com/MacroFinanceHub/dynare/internal/model"
	"github.com/MacroFinanceHub/dynare/internal/num"
	"github.com/MacroFinanceHub/dynare/internal/solver"
)

// staticSystem adapts the static evaluator to the solver interface
// with exogenous values and parameters bound.
type staticSystem struct {
	static Evaluator
	exo    num.Vec
	params num.Vec
	dim    int
}

func (s *staticSystem) Dim() int { return s.dim }

func (s *staticSystem) Evaluate(y num.Vec) (num.Vec, *mat.Dense, error) {
	return s.static.Evaluate(y, s.exo, s.params)
}

func (o *Orchestrator) fullSystem(m *model.Descriptor, exo, params num.Vec) solver.System {
	return &staticSystem{static: o.static, exo: exo, params: params, dim: m.EndoNbr()}
}

// restrictedSystem exposes only the original (non-auxiliary) variable
// block to the solver. Auxiliary values are recomputed from the
// candidate original block on every call, so the appended auxiliary
// equations hold by construction and the solver iterates over
// OrigEndoNbr unknowns.
type restrictedSystem struct {
	static   Evaluator
	expander AuxExpander
	exo      num.Vec
	params   num.Vec
	origN    int
	auxN     int
}

func (r *restrictedSystem) Dim() int { return r.origN }

func (r *restrictedSystem) Evaluate(y num.Vec) (num.Vec, *mat.Dense, error) {
	full := y
	if r.auxN > 0 {
		ext, err := r.expander.Expand(y, r.exo, r.params)
		if err != nil {
			return nil, nil, err
		}
		full = ext
	}

	resid, jac, err := r.static.Evaluate(full, r.exo, r.params)
	if err != nil {
		return nil, nil, err
	}
	if r.auxN == 0 {
		return resid, jac, nil
	}

	sub := mat.NewDense(r.origN, r.origN, nil)
	sub.Copy(jac.Slice(0, r.origN, 0, r.origN))
	return resid[:r.origN], sub, nil
}

func (o *Orchestrator) restrictedSystem(m *model.Descriptor, exo, params num.Vec) solver.System {
	return &restrictedSystem{
		static:   o.static,
		expander: o.expander,
		exo:      exo,
		params:   params,
		origN:    m.OrigEndoNbr,
		auxN:     len(m.AuxVars),
	}
}
