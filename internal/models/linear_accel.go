package models

import (
	"gonum.org/v1/gonum/mat"

	"github.com/MacroFinanceHub/dynare/internal/config"
	"github.com/MacroFinanceHub/dynare/internal/model"
	"github.com/MacroFinanceHub/dynare/internal/num"
)

// Samuelson-style multiplier-accelerator economy, fully linear.
//
//	y = c + i + g
//	c = alpha*y
//	i = beta*y
//
// Steady state: y = g/(1-alpha-beta), c = alpha*y, i = beta*y.
type linearAccel struct {
	alpha, beta float64
}

func NewLinearAccelerator() *Economy {
	desc := &model.Descriptor{
		Name:        "linear_accel",
		EndoNames:   []string{"y", "c", "i"},
		ExoNames:    []string{"g"},
		ParamNames:  []string{"alpha", "beta"},
		OrigEndoNbr: 3,
		Linear:      true,
		MaxLead:     0,
		MaxLag:      1,
		Params:      num.Vec{0.6, 0.2},
		ExoSteady:   num.Vec{1.0},
	}
	return &Economy{
		Desc:   desc,
		Static: &linearAccel{alpha: 0.6, beta: 0.2},
		Guess:  num.Vec{1, 1, 1},
		Configure: func(o *config.Options) {
			o.Linear = true
		},
	}
}

func (l *linearAccel) Evaluate(y, exo, params num.Vec) (num.Vec, *mat.Dense, error) {
	alpha, beta := params[0], params[1]
	g := exo[0]

	resid := num.Vec{
		y[0] - y[1] - y[2] - g,
		y[1] - alpha*y[0],
		y[2] - beta*y[0],
	}
	jac := mat.NewDense(3, 3, []float64{
		1, -1, -1,
		-alpha, 1, 0,
		-beta, 0, 1,
	})
	return resid, jac, nil
}
