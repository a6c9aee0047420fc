package steadystate

import "fmt"

// Code enumerates steady-state failure kinds. The space is closed: a
// nonzero code always means the returned vector must not be fed to a
// decision-rule computation without inspection.
type Code int

const (
	CodeOK Code = 0

	// CodeNotConverged is the generic non-convergence report; the
	// status magnitude carries the sum of squared residuals at the
	// returned point.
	CodeNotConverged Code = 20

	// CodeComplex marks a steady state with a nonzero imaginary
	// component. Recoverable: the real part is salvaged and returned,
	// the magnitude carries the sum of squared imaginary parts.
	CodeComplex Code = 21

	CodeNaN Code = 22

	// CodeStaticDynamicMismatch: equations tagged with distinct static
	// and dynamic forms disagree at the candidate steady state.
	CodeStaticDynamicMismatch Code = 25

	// Ramsey-mode failures.
	CodeRamseyNotSolving     Code = 81 // joint residual exceeds tolerance
	CodeRamseyNaN            Code = 82 // NaN in the core equation block
	CodeRamseyAuxNaN         Code = 83 // NaN in the multiplier block
	CodeRamseyFileNaN        Code = 84 // steady-state file produced NaN
	CodeRamseyFileNotSolving Code = 85 // steady-state file residual exceeds tolerance

	// CodeRamseyInternal reports a nonzero status from inside the
	// Ramsey static solver. Should not happen; escalated
	// unconditionally, never retried or masked.
	CodeRamseyInternal Code = 86
)

var codeNames = map[Code]string{
	CodeOK:                    "ok",
	CodeNotConverged:          "not converged",
	CodeComplex:               "complex steady state",
	CodeNaN:                   "NaN in steady state",
	CodeStaticDynamicMismatch: "static/dynamic equation mismatch",
	CodeRamseyNotSolving:      "ramsey joint residual exceeds tolerance",
	CodeRamseyNaN:             "ramsey NaN in core equations",
	CodeRamseyAuxNaN:          "ramsey NaN in multiplier equations",
	CodeRamseyFileNaN:         "ramsey steady-state file produced NaN",
	CodeRamseyFileNotSolving:  "ramsey steady-state file residual exceeds tolerance",
	CodeRamseyInternal:        "ramsey solver internal error",
}

func (c Code) String() string {
	if name, ok := codeNames[c]; ok {
		return name
	}
	return fmt.Sprintf("code %d", int(c))
}

// Status is the tagged result of one steady-state evaluation: a
// discrete failure code plus a continuous diagnostic magnitude
// (residual norm, NaN count, imaginary mass — depends on the code).
type Status struct {
	Code      Code
	Magnitude float64
}

func OK() Status { return Status{} }

func (s Status) Ok() bool { return s.Code == CodeOK }

func (s Status) String() string {
	if s.Ok() {
		return "ok"
	}
	return fmt.Sprintf("%s (magnitude %g)", s.Code, s.Magnitude)
}
