// Package steadystate evaluates the steady state of a nonlinear
// dynamic economic model: it dispatches among solution strategies
// (closed-form file, Ramsey optimal policy, linear one-step,
// block-structured, generic nonlinear), validates the result against
// the delicate failure modes (NaN, Inf, complex residues,
// non-convergence, static/dynamic divergence) and reports structured
// status codes instead of throwing.
package steadystate

import (
	"errors"
	"fmt"
	"math"

	"github.com/rs/zerolog"

	"github.com/MacroFinanceHub/dynare/internal/config"
	"github.com/MacroFinanceHub/dynare/internal/model"
	"github.com/MacroFinanceHub/dynare/internal/num"
	"github.com/MacroFinanceHub/dynare/internal/solver"
)

// ErrRowShapedSteadyState is the one hard contract violation reported
// as an error instead of a status code: the user steady-state function
// returned a row vector where a column is required.
var ErrRowShapedSteadyState = errors.New("steadystate: user steady-state function returned a row vector, want a column")

type Orchestrator struct {
	static    Evaluator
	dynamic   DynamicEvaluator
	file      SteadyStateFile
	ramsey    RamseySolver
	expander  AuxExpander
	nonlinear NonlinearSolver
	block     BlockSolver
	log       zerolog.Logger
}

func New(static Evaluator) *Orchestrator {
	return &Orchestrator{
		static:    static,
		nonlinear: newtonSolver{},
		block:     blockNewtonSolver{},
		log:       zerolog.Nop(),
	}
}

func (o *Orchestrator) SetDynamic(d DynamicEvaluator)   { o.dynamic = d }
func (o *Orchestrator) SetFile(f SteadyStateFile)       { o.file = f }
func (o *Orchestrator) SetRamsey(r RamseySolver)        { o.ramsey = r }
func (o *Orchestrator) SetExpander(e AuxExpander)       { o.expander = e }
func (o *Orchestrator) SetSolver(s NonlinearSolver)     { o.nonlinear = s }
func (o *Orchestrator) SetBlockSolver(b BlockSolver)    { o.block = b }
func (o *Orchestrator) SetLogger(log zerolog.Logger)    { o.log = log }

// Output collects the by-products of one Compute call beyond the
// returned triple.
type Output struct {
	SteadyState num.Vec
	Iterations  int
	History     []float64
}

// Compute evaluates the steady state from the given initial guess.
// The returned error is non-nil only for contract violations
// (mis-wired collaborators, row-shaped file output, evaluator
// failures); every numeric outcome travels in the Status. The shared
// parameter vector of m may be updated in place by a user steady-state
// function.
func (o *Orchestrator) Compute(guess num.Vec, m *model.Descriptor, opts *config.Options, out *Output) (num.Vec, num.Vec, Status, error) {
	if err := m.Validate(); err != nil {
		return nil, m.Params, Status{}, err
	}
	if err := opts.Validate(); err != nil {
		return nil, m.Params, Status{}, err
	}

	strategy := DeriveStrategy(opts)
	params := m.Params
	exo := m.ExoSteady

	guess = guess.Clone()

	// Auxiliary variables are computed from the original block unless a
	// steady-state file is configured; files return already-extended
	// vectors.
	if len(m.AuxVars) > 0 && !opts.SteadyStateFile {
		if o.expander == nil {
			return nil, params, Status{}, fmt.Errorf("steadystate: model %s has auxiliary variables but no expander is registered", m.Name)
		}
		ext, err := o.expander.Expand(guess, exo, params)
		if err != nil {
			return nil, params, Status{}, err
		}
		guess = ext
	}

	o.log.Debug().Str("model", m.Name).Stringer("strategy", strategy).Msg("steady state dispatch")

	var ys num.CVec
	var unsolved bool

	switch strategy {
	case RamseyWithFile, RamseyNoFile:
		ysR, st, err := o.computeRamsey(guess, m, opts, strategy == RamseyWithFile)
		if err != nil {
			return nil, params, Status{}, err
		}
		if !st.Ok() {
			return ysR.Real(), params, st, nil
		}
		ys = ysR

	case ExplicitFile:
		ysF, st, err := o.callFile(guess, m, opts)
		if err != nil {
			return nil, params, Status{}, err
		}
		if !st.Ok() {
			// The file's own status is propagated unchanged.
			return ysF.Real(), params, st, nil
		}
		ys = ysF

	case LinearDirect:
		point, bad := o.solveLinear(guess, m, opts)
		ys = num.FromReal(point)
		unsolved = bad

	case BlockStructured:
		r, err := o.block.Solve(o.fullSystem(m, exo, params), guess, m.Blocks, o.solverOptions(opts))
		if err != nil {
			return nil, params, Status{}, err
		}
		ys = r.Y
		unsolved = r.Unsolved
		fillOutput(out, r)

	case NonlinearGeneric:
		r, err := o.nonlinear.Solve(o.restrictedSystem(m, exo, params), guess[:m.OrigEndoNbr].Clone(), o.solverOptions(opts))
		if err != nil {
			return nil, params, Status{}, err
		}
		ext, err := o.extendSolution(r.Y, guess, m, exo, params)
		if err != nil {
			return nil, params, Status{}, err
		}
		ys = ext
		unsolved = r.Unsolved
		fillOutput(out, r)
	}

	if unsolved {
		point := ys.Real()
		resid, _, err := o.static.Evaluate(point, exo, params)
		if err != nil {
			return point, params, Status{}, err
		}
		o.reportUnsolved(m, resid, guess)
		st := Status{Code: CodeNotConverged, Magnitude: resid.SumSquares()}
		if math.IsNaN(st.Magnitude) {
			st.Code = CodeNaN
		}
		return point, params, st, nil
	}

	if m.StaticDynamicDiffer {
		if o.dynamic == nil {
			return ys.Real(), params, Status{}, fmt.Errorf("steadystate: model %s tags divergent static/dynamic equations but no dynamic evaluator is registered", m.Name)
		}
		st, err := o.checkDynamicConsistency(ys.Real(), m, opts)
		if err != nil {
			return ys.Real(), params, Status{}, err
		}
		if !st.Ok() {
			return ys.Real(), params, st, nil
		}
	}

	// Terminal sanity checks, in order; each returns immediately.
	if !ys.IsReal() {
		st := Status{Code: CodeComplex, Magnitude: ys.ImagSumSquares()}
		o.log.Warn().Float64("imag_mass", st.Magnitude).Msg("complex steady state, salvaging real part")
		return ys.Real(), params, st, nil
	}

	result := ys.Real()
	if result.HasNaN() {
		return result, params, Status{Code: CodeNaN, Magnitude: math.NaN()}, nil
	}

	if out != nil {
		out.SteadyState = result.Clone()
	}
	return result, params, OK(), nil
}

func (o *Orchestrator) callFile(guess num.Vec, m *model.Descriptor, opts *config.Options) (num.CVec, Status, error) {
	if o.file == nil {
		return nil, Status{}, fmt.Errorf("steadystate: steadystate_file option set but no file registered")
	}

	ysMat, newParams, st := o.file.Evaluate(guess, m.ExoSteady, m.Params, opts)
	if ysMat == nil {
		return nil, Status{}, fmt.Errorf("steadystate: user steady-state function returned no vector")
	}
	r, c := ysMat.Dims()
	if r == 1 && c > 1 {
		return nil, Status{}, ErrRowShapedSteadyState
	}
	if c != 1 {
		return nil, Status{}, fmt.Errorf("steadystate: user steady-state function returned a %dx%d matrix, want a column", r, c)
	}

	ys := make(num.CVec, r)
	for i := range ys {
		ys[i] = ysMat.At(i, 0)
	}

	// Parameters are updated, never replaced: the caller keeps its
	// reference to the shared vector.
	if newParams != nil {
		copy(m.Params, newParams)
	}

	return ys, st, nil
}

func (o *Orchestrator) solverOptions(opts *config.Options) solver.Options {
	return solver.Options{
		MaxIter: opts.MaxIter,
		TolF:    opts.DynaTolF,
		Logger:  o.log,
	}
}

// extendSolution re-attaches the auxiliary block to a solution of the
// restricted (original-variable) system.
func (o *Orchestrator) extendSolution(sol num.CVec, guess num.Vec, m *model.Descriptor, exo, params num.Vec) (num.CVec, error) {
	if len(m.AuxVars) == 0 {
		return sol, nil
	}
	if sol.IsReal() && !sol.HasNaN() && o.expander != nil {
		ext, err := o.expander.Expand(sol.Real(), exo, params)
		if err != nil {
			return nil, err
		}
		return num.FromReal(ext), nil
	}
	// Invalid original block: keep the guess's auxiliary entries so the
	// terminal checks see the full-length vector.
	full := num.FromReal(guess)
	copy(full[:m.OrigEndoNbr], sol)
	return full, nil
}

func fillOutput(out *Output, r SolveResult) {
	if out == nil {
		return
	}
	out.Iterations = r.Iterations
	out.History = append(out.History[:0], r.History...)
}
