package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	DefaultDynaTolF  = 1e-5
	DefaultSolveTolF = 1e-5
	DefaultMaxIter   = 50

	// InitialResidualTol accepts the initial guess of a linear model
	// without solving; PostStepResidualTol accepts the point after the
	// single Newton step. The second is looser on purpose: elimination
	// error accumulates through the matrix solve.
	InitialResidualTol  = 1e-12
	PostStepResidualTol = 1e-6
)

type Options struct {
	Model string `yaml:"model"`

	SteadyStateFile bool `yaml:"steadystate_file"`
	RamseyPolicy    bool `yaml:"ramsey_policy"`
	Linear          bool `yaml:"linear"`
	Block           bool `yaml:"block"`
	Bytecode        bool `yaml:"bytecode"`
	Debug           bool `yaml:"debug"`

	DynaTolF  float64 `yaml:"dynatol_f"`
	SolveTolF float64 `yaml:"solve_tolf"`

	SolveAlgo string `yaml:"solve_algo"`
	MaxIter   int    `yaml:"max_iter"`

	// Instruments lists the Ramsey policy control variables; used only
	// for diagnostic printing.
	Instruments []string `yaml:"instruments"`

	InitVals map[string]float64 `yaml:"init_vals"`
}

func DefaultOptions() *Options {
	return &Options{
		DynaTolF:  DefaultDynaTolF,
		SolveTolF: DefaultSolveTolF,
		SolveAlgo: "newton",
		MaxIter:   DefaultMaxIter,
	}
}

func Load(path string) (*Options, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	opts := DefaultOptions()
	if err := yaml.Unmarshal(data, opts); err != nil {
		return nil, err
	}
	return opts, nil
}

func Save(path string, opts *Options) error {
	data, err := yaml.Marshal(opts)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (o *Options) Validate() error {
	if o.DynaTolF <= 0 {
		return fmt.Errorf("dynatol_f must be positive, got %g", o.DynaTolF)
	}
	if o.SolveTolF <= 0 {
		return fmt.Errorf("solve_tolf must be positive, got %g", o.SolveTolF)
	}
	if o.MaxIter <= 0 {
		return fmt.Errorf("max_iter must be positive, got %d", o.MaxIter)
	}
	if o.Block && o.Bytecode {
		return fmt.Errorf("block and bytecode modes are mutually exclusive")
	}
	return nil
}
