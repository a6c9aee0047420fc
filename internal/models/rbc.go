package models

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/MacroFinanceHub/dynare/internal/config"
	"github.com/MacroFinanceHub/dynare/internal/model"
	"github.com/MacroFinanceHub/dynare/internal/num"
	"github.com/MacroFinanceHub/dynare/internal/steadystate"
)

// One-sector RBC economy without labor. Static equations:
//
//	1 - beta*(alpha*z*k^(alpha-1) + 1 - delta) = 0   (Euler)
//	c + delta*k - z*k^alpha = 0                      (resource constraint)
//	z - zbar = 0                                     (technology level)
//
// with variables (c, k, z) and a closed-form steady state used by the
// rbc_file variant.
type rbc struct {
	alpha, beta, delta float64
}

func rbcDescriptor() *model.Descriptor {
	return &model.Descriptor{
		Name:        "rbc",
		EndoNames:   []string{"c", "k", "z"},
		ExoNames:    []string{"zbar"},
		ParamNames:  []string{"alpha", "beta", "delta"},
		OrigEndoNbr: 3,
		MaxLead:     1,
		MaxLag:      1,
		Params:      num.Vec{0.33, 0.99, 0.025},
		ExoSteady:   num.Vec{1.0},
	}
}

func NewRBC() *Economy {
	return &Economy{
		Desc:   rbcDescriptor(),
		Static: &rbc{alpha: 0.33, beta: 0.99, delta: 0.025},
		Guess:  num.Vec{1, 10, 1},
	}
}

// NewRBCWithFile is the same economy solved through its closed-form
// steady-state file instead of the nonlinear solver.
func NewRBCWithFile() *Economy {
	e := NewRBC()
	e.Desc.Name = "rbc_file"
	e.File = &rbcSteadyFile{alpha: 0.33, beta: 0.99, delta: 0.025}
	e.Configure = func(o *config.Options) {
		o.SteadyStateFile = true
	}
	return e
}

func (r *rbc) Evaluate(y, exo, params num.Vec) (num.Vec, *mat.Dense, error) {
	alpha, beta, delta := params[0], params[1], params[2]
	zbar := exo[0]
	c, k, z := y[0], y[1], y[2]

	resid := num.Vec{
		1 - beta*(alpha*z*math.Pow(k, alpha-1) + 1 - delta),
		c + delta*k - z*math.Pow(k, alpha),
		z - zbar,
	}

	jac := mat.NewDense(3, 3, []float64{
		0, -beta * alpha * (alpha - 1) * z * math.Pow(k, alpha-2), -beta * alpha * math.Pow(k, alpha-1),
		1, delta - alpha*z*math.Pow(k, alpha-1), -math.Pow(k, alpha),
		0, 0, 1,
	})
	return resid, jac, nil
}

// rbcSteadyFile computes the closed form:
//
//	k = (alpha*z / (1/beta - 1 + delta))^(1/(1-alpha))
//	c = z*k^alpha - delta*k
type rbcSteadyFile struct {
	alpha, beta, delta float64
}

func (f *rbcSteadyFile) Evaluate(guess, exo, params num.Vec, opts *config.Options) (*mat.CDense, num.Vec, steadystate.Status) {
	alpha, beta, delta := params[0], params[1], params[2]
	z := exo[0]

	k := math.Pow(alpha*z/(1/beta-1+delta), 1/(1-alpha))
	c := z*math.Pow(k, alpha) - delta*k

	ys := mat.NewCDense(3, 1, []complex128{
		complex(c, 0),
		complex(k, 0),
		complex(z, 0),
	})
	return ys, params, steadystate.OK()
}
