package steadystate

import (
	"errors"
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/MacroFinanceHub/dynare/internal/config"
	"github.com/MacroFinanceHub/dynare/internal/model"
	"github.com/MacroFinanceHub/dynare/internal/num"
	"github.com/MacroFinanceHub/dynare/internal/solver"
)

// evalFunc adapts a closure to the Evaluator interface, counting calls.
type evalFunc struct {
	fn    func(y, exo, params num.Vec) (num.Vec, *mat.Dense, error)
	calls int
}

func (e *evalFunc) Evaluate(y, exo, params num.Vec) (num.Vec, *mat.Dense, error) {
	e.calls++
	return e.fn(y, exo, params)
}

// identityAffine is f(y) = y - target with jacobian I: exactly linear.
func identityAffine(target num.Vec) *evalFunc {
	return &evalFunc{fn: func(y, exo, params num.Vec) (num.Vec, *mat.Dense, error) {
		n := len(target)
		resid := make(num.Vec, n)
		data := make([]float64, n*n)
		for i := range resid {
			resid[i] = y[i] - target[i]
			data[i*n+i] = 1
		}
		return resid, mat.NewDense(n, n, data), nil
	}}
}

type countingExpander struct {
	calls int
	fn    func(guess, exo, params num.Vec) (num.Vec, error)
}

func (c *countingExpander) Expand(guess, exo, params num.Vec) (num.Vec, error) {
	c.calls++
	if c.fn != nil {
		return c.fn(guess, exo, params)
	}
	return guess.Clone(), nil
}

type stubSolver struct {
	result SolveResult
	err    error
	calls  int
}

func (s *stubSolver) Solve(sys solver.System, guess num.Vec, opts solver.Options) (SolveResult, error) {
	s.calls++
	return s.result, s.err
}

func testDescriptor(n int) *model.Descriptor {
	names := make([]string, n)
	for i := range names {
		names[i] = string(rune('a' + i))
	}
	return &model.Descriptor{
		Name:        "test",
		EndoNames:   names,
		OrigEndoNbr: n,
		Params:      num.Vec{1},
		ExoSteady:   num.Vec{0},
	}
}

func TestLinearAlreadySolvedFastPath(t *testing.T) {
	target := num.Vec{2, -1}
	ev := identityAffine(target)
	o := New(ev)

	m := testDescriptor(2)
	m.Linear = true
	opts := config.DefaultOptions()
	opts.Linear = true

	ys, _, st, err := o.Compute(target.Clone(), m, opts, nil)
	if err != nil {
		t.Fatal(err)
	}
	if !st.Ok() {
		t.Fatalf("status = %v, want ok", st)
	}
	for i := range target {
		if ys[i] != target[i] {
			t.Errorf("ys[%d] = %v, want %v (guess must pass through unchanged)", i, ys[i], target[i])
		}
	}
	// One evaluation only: the matrix solve must be skipped.
	if ev.calls != 1 {
		t.Errorf("evaluator called %d times, want 1", ev.calls)
	}
}

func TestLinearOneNewtonStep(t *testing.T) {
	target := num.Vec{3, 5}
	o := New(identityAffine(target))

	m := testDescriptor(2)
	m.Linear = true
	opts := config.DefaultOptions()
	opts.Linear = true

	ys, _, st, err := o.Compute(num.Vec{0, 0}, m, opts, nil)
	if err != nil {
		t.Fatal(err)
	}
	if !st.Ok() {
		t.Fatalf("status = %v, want ok", st)
	}
	for i := range target {
		if math.Abs(ys[i]-target[i]) > 1e-10 {
			t.Errorf("ys[%d] = %v, want %v", i, ys[i], target[i])
		}
	}
}

func TestLinearPostStepFailure(t *testing.T) {
	// The evaluator lies about its jacobian, so the single Newton step
	// cannot reach tolerance.
	ev := &evalFunc{fn: func(y, exo, params num.Vec) (num.Vec, *mat.Dense, error) {
		return num.Vec{y[0]*y[0] - 4}, mat.NewDense(1, 1, []float64{1}), nil
	}}
	o := New(ev)

	m := testDescriptor(1)
	m.Linear = true
	opts := config.DefaultOptions()
	opts.Linear = true

	ys, _, st, err := o.Compute(num.Vec{10}, m, opts, nil)
	if err != nil {
		t.Fatal(err)
	}
	if st.Code != CodeNotConverged {
		t.Fatalf("status = %v, want code 20", st)
	}
	resid, _, _ := ev.Evaluate(ys, m.ExoSteady, m.Params)
	if math.Abs(st.Magnitude-resid.SumSquares()) > 1e-9 {
		t.Errorf("magnitude = %v, want residual sum of squares %v", st.Magnitude, resid.SumSquares())
	}
}

func TestLinearNonFiniteResidual(t *testing.T) {
	ev := &evalFunc{fn: func(y, exo, params num.Vec) (num.Vec, *mat.Dense, error) {
		return num.Vec{math.Inf(1)}, mat.NewDense(1, 1, []float64{1}), nil
	}}
	o := New(ev)

	m := testDescriptor(1)
	m.Linear = true
	opts := config.DefaultOptions()
	opts.Linear = true

	_, _, st, err := o.Compute(num.Vec{1}, m, opts, nil)
	if err != nil {
		t.Fatal(err)
	}
	if st.Code != CodeNaN && st.Code != CodeNotConverged {
		t.Fatalf("status = %v, want non-convergence report", st)
	}
}

func TestExpanderNotInvokedWithoutAuxVars(t *testing.T) {
	exp := &countingExpander{}
	o := New(identityAffine(num.Vec{1}))
	o.SetExpander(exp)

	m := testDescriptor(1)
	opts := config.DefaultOptions()

	if _, _, _, err := o.Compute(num.Vec{1}, m, opts, nil); err != nil {
		t.Fatal(err)
	}
	if exp.calls != 0 {
		t.Errorf("expander invoked %d times for a model with no aux vars, want 0", exp.calls)
	}
}

func TestExpanderInvokedForAuxVars(t *testing.T) {
	exp := &countingExpander{fn: func(guess, exo, params num.Vec) (num.Vec, error) {
		ext := make(num.Vec, 2)
		ext[0] = guess[0]
		ext[1] = guess[0]
		return ext, nil
	}}
	// System over (a, aux) with aux = a: f = [a-2, aux-a].
	ev := &evalFunc{fn: func(y, exo, params num.Vec) (num.Vec, *mat.Dense, error) {
		return num.Vec{y[0] - 2, y[1] - y[0]}, mat.NewDense(2, 2, []float64{1, 0, -1, 1}), nil
	}}
	o := New(ev)
	o.SetExpander(exp)

	m := testDescriptor(1)
	m.AuxVars = []model.AuxVarSpec{{Index: 1, OrigIndex: 0}}
	opts := config.DefaultOptions()

	ys, _, st, err := o.Compute(num.Vec{5}, m, opts, nil)
	if err != nil {
		t.Fatal(err)
	}
	if !st.Ok() {
		t.Fatalf("status = %v, want ok", st)
	}
	if exp.calls == 0 {
		t.Error("expander never invoked for a model with aux vars")
	}
	if len(ys) != 2 || math.Abs(ys[0]-2) > 1e-6 || math.Abs(ys[1]-2) > 1e-6 {
		t.Errorf("ys = %v, want [2 2]", ys)
	}
}

type stubFile struct {
	ys     *mat.CDense
	params num.Vec
	status Status
	calls  int
}

func (s *stubFile) Evaluate(guess, exo, params num.Vec, opts *config.Options) (*mat.CDense, num.Vec, Status) {
	s.calls++
	return s.ys, s.params, s.status
}

func TestFileRowShapeIsFatal(t *testing.T) {
	ev := identityAffine(num.Vec{1, 2, 3})
	o := New(ev)
	o.SetFile(&stubFile{ys: mat.NewCDense(1, 3, []complex128{1, 2, 3})})

	m := testDescriptor(3)
	opts := config.DefaultOptions()
	opts.SteadyStateFile = true

	_, _, _, err := o.Compute(num.Vec{0, 0, 0}, m, opts, nil)
	if !errors.Is(err, ErrRowShapedSteadyState) {
		t.Fatalf("err = %v, want ErrRowShapedSteadyState", err)
	}
	if ev.calls != 0 {
		t.Errorf("residual evaluation ran %d times after a shape violation, want 0", ev.calls)
	}
}

func TestFileStatusPropagatedUnchanged(t *testing.T) {
	o := New(identityAffine(num.Vec{1}))
	want := Status{Code: CodeNotConverged, Magnitude: 7.5}
	o.SetFile(&stubFile{ys: mat.NewCDense(1, 1, []complex128{9}), status: want})

	m := testDescriptor(1)
	opts := config.DefaultOptions()
	opts.SteadyStateFile = true

	_, _, st, err := o.Compute(num.Vec{0}, m, opts, nil)
	if err != nil {
		t.Fatal(err)
	}
	if st != want {
		t.Errorf("status = %v, want %v propagated unchanged", st, want)
	}
}

func TestFileUpdatesParamsInPlace(t *testing.T) {
	o := New(identityAffine(num.Vec{4}))
	o.SetFile(&stubFile{
		ys:     mat.NewCDense(1, 1, []complex128{4}),
		params: num.Vec{42},
	})

	m := testDescriptor(1)
	caller := m.Params // shares the backing array
	opts := config.DefaultOptions()
	opts.SteadyStateFile = true

	_, params, st, err := o.Compute(num.Vec{0}, m, opts, nil)
	if err != nil {
		t.Fatal(err)
	}
	if !st.Ok() {
		t.Fatalf("status = %v", st)
	}
	if caller[0] != 42 {
		t.Errorf("caller's parameter slice not updated in place: %v", caller)
	}
	if params[0] != 42 {
		t.Errorf("returned parameters = %v, want [42]", params)
	}
}

func TestNonlinearRoundTripProperty(t *testing.T) {
	ev := &evalFunc{fn: func(y, exo, params num.Vec) (num.Vec, *mat.Dense, error) {
		return num.Vec{y[0]*y[0] - 4, y[1] - y[0]}, mat.NewDense(2, 2, []float64{2 * y[0], 0, -1, 1}), nil
	}}
	o := New(ev)

	m := testDescriptor(2)
	opts := config.DefaultOptions()

	ys, params, st, err := o.Compute(num.Vec{3, 3}, m, opts, nil)
	if err != nil {
		t.Fatal(err)
	}
	if !st.Ok() {
		t.Fatalf("status = %v, want ok", st)
	}

	resid, _, err := ev.Evaluate(ys, m.ExoSteady, params)
	if err != nil {
		t.Fatal(err)
	}
	if resid.MaxAbs() > opts.DynaTolF {
		t.Errorf("round trip violated: max residual %v > %v", resid.MaxAbs(), opts.DynaTolF)
	}
}

func TestUnsolvedReportsCode20(t *testing.T) {
	ev := identityAffine(num.Vec{0, 0})
	o := New(ev)
	o.SetSolver(&stubSolver{result: SolveResult{Y: num.CVec{3, 4}, Unsolved: true}})

	m := testDescriptor(2)
	opts := config.DefaultOptions()

	_, _, st, err := o.Compute(num.Vec{1, 1}, m, opts, nil)
	if err != nil {
		t.Fatal(err)
	}
	if st.Code != CodeNotConverged {
		t.Fatalf("status = %v, want code 20", st)
	}
	// f(3,4) = (3,4): sum of squares is 25.
	if math.Abs(st.Magnitude-25) > 1e-12 {
		t.Errorf("magnitude = %v, want 25", st.Magnitude)
	}
}

func TestUnsolvedNaNEscalatesTo22(t *testing.T) {
	ev := &evalFunc{fn: func(y, exo, params num.Vec) (num.Vec, *mat.Dense, error) {
		return num.Vec{math.NaN()}, mat.NewDense(1, 1, []float64{1}), nil
	}}
	o := New(ev)
	o.SetSolver(&stubSolver{result: SolveResult{Y: num.CVec{1}, Unsolved: true}})

	m := testDescriptor(1)
	opts := config.DefaultOptions()

	_, _, st, err := o.Compute(num.Vec{1}, m, opts, nil)
	if err != nil {
		t.Fatal(err)
	}
	if st.Code != CodeNaN {
		t.Fatalf("status = %v, want code 22", st)
	}
}

func TestComplexSteadyStateSalvaged(t *testing.T) {
	o := New(identityAffine(num.Vec{0, 0}))
	o.SetSolver(&stubSolver{result: SolveResult{Y: num.CVec{complex(1, 2), complex(3, -1)}}})

	m := testDescriptor(2)
	opts := config.DefaultOptions()

	ys, _, st, err := o.Compute(num.Vec{0, 0}, m, opts, nil)
	if err != nil {
		t.Fatal(err)
	}
	if st.Code != CodeComplex {
		t.Fatalf("status = %v, want code 21", st)
	}
	// magnitude = 2^2 + (-1)^2 = 5
	if math.Abs(st.Magnitude-5) > 1e-12 {
		t.Errorf("magnitude = %v, want 5", st.Magnitude)
	}
	if ys[0] != 1 || ys[1] != 3 {
		t.Errorf("ys = %v, want real parts [1 3]", ys)
	}
}

func TestNaNSteadyStateReports22(t *testing.T) {
	o := New(identityAffine(num.Vec{0}))
	o.SetSolver(&stubSolver{result: SolveResult{Y: num.CVec{complex(math.NaN(), 0)}}})

	m := testDescriptor(1)
	opts := config.DefaultOptions()

	_, _, st, err := o.Compute(num.Vec{0}, m, opts, nil)
	if err != nil {
		t.Fatal(err)
	}
	if st.Code != CodeNaN {
		t.Fatalf("status = %v, want code 22", st)
	}
	if !math.IsNaN(st.Magnitude) {
		t.Errorf("magnitude = %v, want NaN", st.Magnitude)
	}
}

type stubDynamic struct {
	resid num.Vec
	calls int
}

func (s *stubDynamic) EvaluateDynamic(stacked, exoStacked, params num.Vec) (num.Vec, error) {
	s.calls++
	return s.resid, nil
}

func TestStaticDynamicMismatchReports25(t *testing.T) {
	o := New(identityAffine(num.Vec{1}))
	dyn := &stubDynamic{resid: num.Vec{0.5}}
	o.SetDynamic(dyn)

	m := testDescriptor(1)
	m.StaticDynamicDiffer = true
	opts := config.DefaultOptions()

	_, _, st, err := o.Compute(num.Vec{1}, m, opts, nil)
	if err != nil {
		t.Fatal(err)
	}
	if st.Code != CodeStaticDynamicMismatch {
		t.Fatalf("status = %v, want code 25", st)
	}
	if st.Magnitude != 0.5 {
		t.Errorf("magnitude = %v, want 0.5", st.Magnitude)
	}
	if dyn.calls != 1 {
		t.Errorf("dynamic evaluator called %d times, want 1", dyn.calls)
	}
}

func TestMismatchTagWithoutDynamicEvaluatorErrors(t *testing.T) {
	o := New(identityAffine(num.Vec{1}))

	m := testDescriptor(1)
	m.StaticDynamicDiffer = true
	opts := config.DefaultOptions()

	_, _, _, err := o.Compute(num.Vec{1}, m, opts, nil)
	if err == nil {
		t.Fatal("expected wiring error when no dynamic evaluator is registered")
	}
}

func TestConsistencyCheckSkippedWhenFormsAgree(t *testing.T) {
	o := New(identityAffine(num.Vec{1}))
	dyn := &stubDynamic{resid: num.Vec{0.5}}
	o.SetDynamic(dyn)

	m := testDescriptor(1)
	// Forms not tagged as divergent: the check must not run.
	opts := config.DefaultOptions()

	_, _, st, err := o.Compute(num.Vec{1}, m, opts, nil)
	if err != nil {
		t.Fatal(err)
	}
	if !st.Ok() {
		t.Fatalf("status = %v, want ok", st)
	}
	if dyn.calls != 0 {
		t.Errorf("dynamic evaluator called %d times, want 0", dyn.calls)
	}
}

func TestOutputPopulated(t *testing.T) {
	ev := &evalFunc{fn: func(y, exo, params num.Vec) (num.Vec, *mat.Dense, error) {
		return num.Vec{y[0]*y[0] - 4}, mat.NewDense(1, 1, []float64{2 * y[0]}), nil
	}}
	o := New(ev)

	m := testDescriptor(1)
	opts := config.DefaultOptions()
	out := &Output{}

	ys, _, st, err := o.Compute(num.Vec{3}, m, opts, out)
	if err != nil {
		t.Fatal(err)
	}
	if !st.Ok() {
		t.Fatalf("status = %v", st)
	}
	if len(out.History) == 0 {
		t.Error("residual history not recorded")
	}
	if len(out.SteadyState) != 1 || math.Abs(out.SteadyState[0]-ys[0]) > 1e-15 {
		t.Errorf("output steady state %v does not match returned %v", out.SteadyState, ys)
	}
}

func TestBlockStrategy(t *testing.T) {
	// Lower-triangular system solved block by block.
	ev := &evalFunc{fn: func(y, exo, params num.Vec) (num.Vec, *mat.Dense, error) {
		return num.Vec{y[0] - 3, y[1]*y[1] - y[0]},
			mat.NewDense(2, 2, []float64{1, 0, -1, 2 * y[1]}), nil
	}}
	o := New(ev)

	m := testDescriptor(2)
	m.Blocks = [][]int{{0}, {1}}
	opts := config.DefaultOptions()
	opts.Block = true

	ys, _, st, err := o.Compute(num.Vec{0, 1}, m, opts, nil)
	if err != nil {
		t.Fatal(err)
	}
	if !st.Ok() {
		t.Fatalf("status = %v, want ok", st)
	}
	if math.Abs(ys[0]-3) > 1e-4 || math.Abs(ys[1]-math.Sqrt(3)) > 1e-4 {
		t.Errorf("ys = %v, want (3, sqrt(3))", ys)
	}
}
