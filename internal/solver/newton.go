// Package solver implements the generic nonlinear solvers the
// steady-state orchestrator delegates to: a damped Newton iteration
// with backtracking line search, and a block-structured variant that
// walks a recursive block decomposition.
package solver

import (
	"errors"
	"math"

	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/mat"

	"github.com/MacroFinanceHub/dynare/internal/num"
)

// System is a square nonlinear system. Evaluate returns the residual
// vector and its Jacobian at y.
type System interface {
	Dim() int
	Evaluate(y num.Vec) (num.Vec, *mat.Dense, error)
}

type Options struct {
	MaxIter int
	TolF    float64
	Logger  zerolog.Logger
}

func DefaultOptions() Options {
	return Options{
		MaxIter: 50,
		TolF:    1e-5,
		Logger:  zerolog.Nop(),
	}
}

// Result carries the final iterate, the unsolved flag the caller
// interprets, and the residual-norm history per iteration.
type Result struct {
	Y          num.Vec
	Unsolved   bool
	Iterations int
	History    []float64
}

var ErrDimensionMismatch = errors.New("solver: guess dimension does not match system")

const (
	minStep     = 1e-8
	jacobianEps = 1e-10
)

// Newton runs a damped Newton iteration from guess. A non-converging
// system is reported through Result.Unsolved, never by looping forever;
// only an evaluator failure or a dimension mismatch yields an error.
func Newton(sys System, guess num.Vec, opts Options) (Result, error) {
	n := sys.Dim()
	if len(guess) != n {
		return Result{}, ErrDimensionMismatch
	}

	y := guess.Clone()
	res := Result{History: make([]float64, 0, opts.MaxIter+1)}

	resid, jac, err := sys.Evaluate(y)
	if err != nil {
		return Result{}, err
	}
	fnorm := resid.Norm()
	res.History = append(res.History, fnorm)

	if !resid.IsFinite() {
		res.Y = y
		res.Unsolved = true
		return res, nil
	}

	for iter := 0; iter < opts.MaxIter; iter++ {
		if resid.MaxAbs() <= opts.TolF {
			res.Y = y
			res.Iterations = iter
			return res, nil
		}

		step, ok := newtonStep(jac, resid, n)
		if !ok {
			opts.Logger.Debug().Int("iter", iter).Msg("singular jacobian, solve abandoned")
			res.Y = y
			res.Iterations = iter
			res.Unsolved = true
			return res, nil
		}

		// Backtracking: halve the step until the residual norm drops.
		lambda := 1.0
		var yNew, residNew num.Vec
		var jacNew *mat.Dense
		for {
			yNew = make(num.Vec, n)
			for i := range yNew {
				yNew[i] = y[i] - lambda*step[i]
			}
			residNew, jacNew, err = sys.Evaluate(yNew)
			if err != nil {
				return Result{}, err
			}
			if residNew.IsFinite() && residNew.Norm() < fnorm {
				break
			}
			lambda /= 2
			if lambda < minStep {
				res.Y = y
				res.Iterations = iter
				res.Unsolved = true
				res.History = append(res.History, residNew.Norm())
				return res, nil
			}
		}

		y, resid, jac = yNew, residNew, jacNew
		fnorm = resid.Norm()
		res.History = append(res.History, fnorm)
		opts.Logger.Debug().Int("iter", iter+1).Float64("fnorm", fnorm).Float64("lambda", lambda).Msg("newton step")
	}

	res.Y = y
	res.Iterations = opts.MaxIter
	res.Unsolved = resid.MaxAbs() > opts.TolF
	return res, nil
}

func newtonStep(jac *mat.Dense, resid num.Vec, n int) (num.Vec, bool) {
	var lu mat.LU
	lu.Factorize(jac)
	if math.Abs(lu.Det()) < jacobianEps {
		return nil, false
	}

	b := mat.NewVecDense(n, resid)
	d := mat.NewVecDense(n, nil)
	if err := lu.SolveVecTo(d, false, b); err != nil {
		return nil, false
	}

	step := make(num.Vec, n)
	for i := range step {
		step[i] = d.AtVec(i)
	}
	return step, true
}
