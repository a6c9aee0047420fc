package models

import (
	"gonum.org/v1/gonum/mat"

	"github.com/MacroFinanceHub/dynare/internal/model"
	"github.com/MacroFinanceHub/dynare/internal/num"
)

// Habit-formation economy with a two-period consumption lag. The model
// transformation introduces one auxiliary variable for the extra lag,
// and the habit equation is tagged with distinct static and dynamic
// forms (the dynamic one spreads the habit over both lags), so the
// static/dynamic consistency check is exercised.
//
// Variables: x (consumption), h (habit stock), aux = x(-1).
//
//	Static:  x - kappa*h - mu = 0
//	         h - rho*x = 0
//	         aux - x = 0
//	Dynamic: x(t) - kappa*h(t) - mu = 0
//	         h(t) - (rho/2)*x(t-1) - (rho/2)*aux(t-1) = 0
//	         aux(t) - x(t-1) = 0
type lagHabit struct {
	kappa, rho, mu float64
}

func NewLagHabit() *Economy {
	desc := &model.Descriptor{
		Name:                "lag_habit",
		EndoNames:           []string{"x", "h"},
		ExoNames:            []string{"mu_shift"},
		ParamNames:          []string{"kappa", "rho", "mu"},
		OrigEndoNbr:         2,
		AuxVars:             []model.AuxVarSpec{{Index: 2, OrigIndex: 0}},
		MaxLead:             0,
		MaxLag:              1,
		StaticDynamicDiffer: true,
		Params:              num.Vec{0.5, 0.8, 1.0},
		ExoSteady:           num.Vec{0.0},
	}
	m := &lagHabit{kappa: 0.5, rho: 0.8, mu: 1.0}
	return &Economy{
		Desc:     desc,
		Static:   m,
		Dynamic:  m,
		Expander: m,
		Guess:    num.Vec{1, 1, 0},
	}
}

func (l *lagHabit) Evaluate(y, exo, params num.Vec) (num.Vec, *mat.Dense, error) {
	kappa, rho, mu := params[0], params[1], params[2]
	x, h, aux := y[0], y[1], y[2]
	shift := exo[0]

	resid := num.Vec{
		x - kappa*h - mu - shift,
		h - rho*x,
		aux - x,
	}
	jac := mat.NewDense(3, 3, []float64{
		1, -kappa, 0,
		-rho, 1, 0,
		-1, 0, 1,
	})
	return resid, jac, nil
}

// EvaluateDynamic evaluates the dynamic forms on a stacked vector of
// Periods() = 2 columns (t-1, t).
func (l *lagHabit) EvaluateDynamic(stacked, exoStacked, params num.Vec) (num.Vec, error) {
	kappa, rho, mu := params[0], params[1], params[2]
	n := 3
	prev := stacked[:n]
	cur := stacked[n : 2*n]
	shift := exoStacked[len(exoStacked)-1]

	return num.Vec{
		cur[0] - kappa*cur[1] - mu - shift,
		cur[1] - (rho/2)*prev[0] - (rho/2)*prev[2],
		cur[2] - prev[0],
	}, nil
}

func (l *lagHabit) Expand(guess, exo, params num.Vec) (num.Vec, error) {
	ext := make(num.Vec, 3)
	copy(ext, guess[:2])
	ext[2] = guess[0]
	return ext, nil
}
