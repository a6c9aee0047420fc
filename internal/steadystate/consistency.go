package steadystate

import (
	"github.com/MacroFinanceHub/dynare/internal/config"
	"github.com/MacroFinanceHub/dynare/internal/model"
	"github.com/MacroFinanceHub/dynare/internal/num"
)

// checkDynamicConsistency re-evaluates the dynamic equations with the
// candidate steady state broadcast across every lead/lag period.
// Static and dynamic forms of tagged equations are allowed to diverge
// textually; they must still agree numerically at the steady state.
func (o *Orchestrator) checkDynamicConsistency(ys num.Vec, m *model.Descriptor, opts *config.Options) (Status, error) {
	periods := m.Periods()
	stacked := ys.Repeat(periods)
	exoStacked := m.ExoSteady.Repeat(periods)

	resid, err := o.dynamic.EvaluateDynamic(stacked, exoStacked, m.Params)
	if err != nil {
		return Status{}, err
	}

	if maxAbs := resid.MaxAbs(); maxAbs > opts.SolveTolF || resid.HasNaN() {
		for i, r := range resid {
			if absOver(r, opts.SolveTolF) {
				o.log.Error().Int("equation", i+1).Float64("residual", r).Msg("dynamic equation does not hold at the static steady state")
			}
		}
		return Status{Code: CodeStaticDynamicMismatch, Magnitude: maxAbs}, nil
	}
	return OK(), nil
}
