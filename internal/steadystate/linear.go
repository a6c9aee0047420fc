package steadystate

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/MacroFinanceHub/dynare/internal/config"
	"github.com/MacroFinanceHub/dynare/internal/model"
	"github.com/MacroFinanceHub/dynare/internal/num"
)

// solveLinear is the closed-form path for linear models: one Jacobian
// evaluation, at most one Newton step. The initial-acceptance
// threshold (1e-12) and the post-step threshold (1e-6) are distinct on
// purpose; see config.InitialResidualTol / config.PostStepResidualTol.
func (o *Orchestrator) solveLinear(guess num.Vec, m *model.Descriptor, opts *config.Options) (num.Vec, bool) {
	resid, jac, err := o.static.Evaluate(guess, m.ExoSteady, m.Params)
	if err != nil {
		o.log.Error().Err(err).Msg("static evaluation failed")
		return guess, true
	}

	if opts.Debug {
		o.scanJacobian(m, jac)
	}

	if !resid.IsFinite() {
		o.reportNonFiniteResiduals(m, resid, guess)
		return guess, true
	}

	// Already solved: skip the matrix solve entirely rather than risk
	// an ill-conditioned elimination for nothing.
	if resid.Norm() <= config.InitialResidualTol {
		return guess, false
	}

	n := len(resid)
	var lu mat.LU
	lu.Factorize(jac)
	step := mat.NewVecDense(n, nil)
	if math.Abs(lu.Det()) < 1e-300 || lu.SolveVecTo(step, false, mat.NewVecDense(n, resid)) != nil {
		o.log.Error().Msg("linear model jacobian is singular")
		return guess, true
	}

	ys := make(num.Vec, n)
	for i := range ys {
		ys[i] = guess[i] - step.AtVec(i)
	}

	resid2, _, err := o.static.Evaluate(ys, m.ExoSteady, m.Params)
	if err != nil {
		o.log.Error().Err(err).Msg("static re-evaluation failed")
		return ys, true
	}
	if resid2.MaxAbs() > config.PostStepResidualTol {
		o.reportResiduals(m, resid2, config.PostStepResidualTol)
		return ys, true
	}

	return ys, false
}
