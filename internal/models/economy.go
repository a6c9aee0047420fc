// Package models is the catalog of example economies the CLI and the
// tests solve. Each economy bundles a descriptor with the evaluator
// implementations the orchestrator needs for its strategy.
package models

import (
	"fmt"
	"sort"

	"github.com/MacroFinanceHub/dynare/internal/config"
	"github.com/MacroFinanceHub/dynare/internal/model"
	"github.com/MacroFinanceHub/dynare/internal/num"
	"github.com/MacroFinanceHub/dynare/internal/steadystate"
)

type Economy struct {
	Desc     *model.Descriptor
	Static   steadystate.Evaluator
	Dynamic  steadystate.DynamicEvaluator
	File     steadystate.SteadyStateFile
	Expander steadystate.AuxExpander
	Guess    num.Vec

	// Configure applies the option flags this economy needs (linear,
	// ramsey_policy, ...) on top of whatever the user supplied.
	Configure func(*config.Options)
}

var registry = map[string]func() *Economy{
	"linear_accel": NewLinearAccelerator,
	"rbc":          NewRBC,
	"rbc_file":     NewRBCWithFile,
	"lag_habit":    NewLagHabit,
	"ramsey_lq":    NewRamseyLQ,
}

func Lookup(name string) (*Economy, error) {
	build, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown model: %s", name)
	}
	return build(), nil
}

func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
