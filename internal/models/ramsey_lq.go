package models

import (
	"gonum.org/v1/gonum/mat"

	"github.com/MacroFinanceHub/dynare/internal/config"
	"github.com/MacroFinanceHub/dynare/internal/model"
	"github.com/MacroFinanceHub/dynare/internal/num"
)

// Linear-quadratic Ramsey toy: a planner picks the tax instrument tau
// to steer the allocation x toward its bliss point, subject to the
// private equilibrium condition x = 1 - tau. The variable vector
// appends the Lagrange multiplier lam after the original variables;
// the first RamseyEqNbr equations are the equilibrium conditions, the
// rest the planner's first-order conditions.
//
//	x - 1 + tau = 0          (equilibrium, core block)
//	-(x - xstar) + lam = 0   (FOC wrt x)
//	lam = 0                  (FOC wrt tau)
//
// Steady state: x = xstar, tau = 1 - xstar, lam = 0.
type ramseyLQ struct {
	xstar float64
}

func NewRamseyLQ() *Economy {
	desc := &model.Descriptor{
		Name:          "ramsey_lq",
		EndoNames:     []string{"x", "tau", "lam"},
		ExoNames:      []string{"eps"},
		ParamNames:    []string{"xstar"},
		OrigEndoNbr:   3,
		RamseyEqNbr:   1,
		MultiplierNbr: 1,
		Params:        num.Vec{0.7},
		ExoSteady:     num.Vec{0.0},
	}
	return &Economy{
		Desc:   desc,
		Static: &ramseyLQ{xstar: 0.7},
		Guess:  num.Vec{0.5, 0.5, 0},
		Configure: func(o *config.Options) {
			o.RamseyPolicy = true
			o.Instruments = []string{"tau"}
		},
	}
}

func (r *ramseyLQ) Evaluate(y, exo, params num.Vec) (num.Vec, *mat.Dense, error) {
	xstar := params[0]
	x, tau, lam := y[0], y[1], y[2]

	resid := num.Vec{
		x - 1 + tau + exo[0],
		-(x - xstar) + lam,
		lam,
	}
	jac := mat.NewDense(3, 3, []float64{
		1, 1, 0,
		-1, 0, 1,
		0, 0, 1,
	})
	return resid, jac, nil
}
