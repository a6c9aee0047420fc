// Package ramsey implements the optimal-policy static solver: a joint
// Newton solve over the original equilibrium variables and the
// Lagrange multipliers of the planner's first-order conditions.
package ramsey

import (
	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/mat"

	"github.com/MacroFinanceHub/dynare/internal/config"
	"github.com/MacroFinanceHub/dynare/internal/model"
	"github.com/MacroFinanceHub/dynare/internal/num"
	"github.com/MacroFinanceHub/dynare/internal/solver"
	"github.com/MacroFinanceHub/dynare/internal/steadystate"
)

type Solver struct {
	static steadystate.Evaluator
	log    zerolog.Logger
}

func New(static steadystate.Evaluator) *Solver {
	return &Solver{static: static, log: zerolog.Nop()}
}

func (s *Solver) SetLogger(log zerolog.Logger) { s.log = log }

// Solve runs the joint solve. Multipliers enter linearly in the
// optimality conditions, so a zero multiplier seed is a safe default
// when the guess covers only the non-multiplier block.
func (s *Solver) Solve(guess num.Vec, m *model.Descriptor, opts *config.Options) (num.CVec, num.Vec, steadystate.Status) {
	n := m.EndoNbr()

	seed := make(num.Vec, n)
	copy(seed, guess)

	sys := &jointSystem{static: s.static, exo: m.ExoSteady, params: m.Params, dim: n}
	r, err := solver.Newton(sys, seed, solver.Options{
		MaxIter: opts.MaxIter,
		TolF:    opts.DynaTolF,
		Logger:  s.log,
	})
	if err != nil {
		s.log.Error().Err(err).Msg("ramsey joint solve failed")
		return num.FromReal(seed), m.Params, steadystate.Status{Code: steadystate.CodeNotConverged, Magnitude: 1}
	}
	if r.Unsolved {
		return num.FromReal(r.Y), m.Params, steadystate.Status{Code: steadystate.CodeNotConverged, Magnitude: r.History[len(r.History)-1]}
	}
	return num.FromReal(r.Y), m.Params, steadystate.OK()
}

type jointSystem struct {
	static steadystate.Evaluator
	exo    num.Vec
	params num.Vec
	dim    int
}

func (j *jointSystem) Dim() int { return j.dim }

func (j *jointSystem) Evaluate(y num.Vec) (num.Vec, *mat.Dense, error) {
	return j.static.Evaluate(y, j.exo, j.params)
}
