package steadystate

import (
	"gonum.org/v1/gonum/mat"

	"github.com/MacroFinanceHub/dynare/internal/config"
	"github.com/MacroFinanceHub/dynare/internal/model"
	"github.com/MacroFinanceHub/dynare/internal/num"
	"github.com/MacroFinanceHub/dynare/internal/solver"
)

// Evaluator computes the static model residuals and their Jacobian at
// a candidate variable vector. Implemented by the generated-code
// adapter produced at model-load time.
type Evaluator interface {
	Evaluate(y, exo, params num.Vec) (num.Vec, *mat.Dense, error)
}

// DynamicEvaluator computes the dynamic residuals over a time-stacked
// variable vector (model.Periods() copies laid end to end). Used only
// to cross-check models whose static and dynamic equation forms
// diverge.
type DynamicEvaluator interface {
	EvaluateDynamic(stacked, exoStacked, params num.Vec) (num.Vec, error)
}

// SteadyStateFile is a user-supplied closed-form steady-state
// computation. The returned matrix must be a single column of
// EndoNbr() rows; a row-shaped return is a hard contract violation.
// The returned parameter vector replaces entries of the shared one in
// place. A nonzero status is propagated to the caller unchanged.
type SteadyStateFile interface {
	Evaluate(guess, exo, params num.Vec, opts *config.Options) (*mat.CDense, num.Vec, Status)
}

// RamseySolver computes the joint steady state of an optimal-policy
// model: original variables plus Lagrange multipliers.
type RamseySolver interface {
	Solve(guess num.Vec, m *model.Descriptor, opts *config.Options) (num.CVec, num.Vec, Status)
}

// AuxExpander fills in auxiliary-variable values from the original
// block of a candidate vector. Pure: same inputs, same output. The
// input must have at least OrigEndoNbr populated entries; the result
// has length EndoNbr().
type AuxExpander interface {
	Expand(guess, exo, params num.Vec) (num.Vec, error)
}

// SolveResult is what a nonlinear solve hands back to the
// orchestrator. The vector is complex-typed because inner solvers are
// allowed to wander off the real line; only the terminal checks look.
type SolveResult struct {
	Y          num.CVec
	Unsolved   bool
	Iterations int
	History    []float64
}

type NonlinearSolver interface {
	Solve(sys solver.System, guess num.Vec, opts solver.Options) (SolveResult, error)
}

type BlockSolver interface {
	Solve(sys solver.System, guess num.Vec, blocks [][]int, opts solver.Options) (SolveResult, error)
}

// newtonSolver adapts solver.Newton to the orchestrator's interface.
type newtonSolver struct{}

func (newtonSolver) Solve(sys solver.System, guess num.Vec, opts solver.Options) (SolveResult, error) {
	r, err := solver.Newton(sys, guess, opts)
	if err != nil {
		return SolveResult{}, err
	}
	return SolveResult{
		Y:          num.FromReal(r.Y),
		Unsolved:   r.Unsolved,
		Iterations: r.Iterations,
		History:    r.History,
	}, nil
}

type blockNewtonSolver struct{}

func (blockNewtonSolver) Solve(sys solver.System, guess num.Vec, blocks [][]int, opts solver.Options) (SolveResult, error) {
	r, err := solver.BlockNewton(sys, guess, blocks, opts)
	if err != nil {
		return SolveResult{}, err
	}
	return SolveResult{
		Y:          num.FromReal(r.Y),
		Unsolved:   r.Unsolved,
		Iterations: r.Iterations,
		History:    r.History,
	}, nil
}
