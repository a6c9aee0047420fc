package steadystate

import (
	"fmt"

	"github.com/MacroFinanceHub/dynare/internal/config"
	"github.com/MacroFinanceHub/dynare/internal/model"
	"github.com/MacroFinanceHub/dynare/internal/num"
)

// computeRamsey runs the optimal-policy path. With a steady-state file
// configured, the file's conditional steady state is validated over
// the core (non-multiplier) equations before the joint solve; the
// joint result is then re-validated over all equations including the
// multiplier block.
func (o *Orchestrator) computeRamsey(guess num.Vec, m *model.Descriptor, opts *config.Options, withFile bool) (num.CVec, Status, error) {
	if o.ramsey == nil {
		return nil, Status{}, fmt.Errorf("steadystate: ramsey_policy option set but no ramsey solver registered")
	}
	coreN := m.RamseyEqNbr

	if withFile {
		ysF, st, err := o.callFile(guess, m, opts)
		if err != nil {
			return nil, Status{}, err
		}
		if !st.Ok() {
			return ysF, st, nil
		}

		point := ysF.Real()
		resid, _, err := o.static.Evaluate(point, m.ExoSteady, m.Params)
		if err != nil {
			return nil, Status{}, err
		}
		if nanCount := resid[:coreN].NaNCount(); nanCount > 0 {
			o.reportNonFiniteResiduals(m, resid[:coreN], point)
			return ysF, Status{Code: CodeRamseyFileNaN, Magnitude: float64(nanCount)}, nil
		}
		if maxAbs := resid[:coreN].MaxAbs(); maxAbs > opts.DynaTolF {
			o.reportInstruments(m, opts, point)
			o.reportResiduals(m, resid[:coreN], opts.DynaTolF)
			return ysF, Status{Code: CodeRamseyFileNotSolving, Magnitude: maxAbs}, nil
		}
		guess = point
	}

	ys, newParams, st := o.ramsey.Solve(guess, m, opts)
	if !st.Ok() {
		// An inner-solver failure is an invariant violation; escalate,
		// never retry or mask. The magnitude carries the inner code.
		return ys, Status{Code: CodeRamseyInternal, Magnitude: float64(st.Code)}, nil
	}
	if newParams != nil {
		copy(m.Params, newParams)
	}

	resid, _, err := o.static.Evaluate(ys.Real(), m.ExoSteady, m.Params)
	if err != nil {
		return nil, Status{}, err
	}
	if nanCount := resid[:coreN].NaNCount(); nanCount > 0 {
		o.reportNonFiniteResiduals(m, resid[:coreN], ys.Real())
		return ys, Status{Code: CodeRamseyNaN, Magnitude: float64(nanCount)}, nil
	}
	if nanCount := resid[coreN:].NaNCount(); nanCount > 0 {
		return ys, Status{Code: CodeRamseyAuxNaN, Magnitude: float64(nanCount)}, nil
	}
	if maxAbs := resid.MaxAbs(); maxAbs > opts.DynaTolF {
		o.reportResiduals(m, resid, opts.DynaTolF)
		return ys, Status{Code: CodeRamseyNotSolving, Magnitude: maxAbs}, nil
	}

	return ys, OK(), nil
}
