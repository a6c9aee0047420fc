package steadystate

import "github.com/MacroFinanceHub/dynare/internal/config"

// Strategy identifies the single solution path one Compute call takes.
// It is derived once from the options at entry and matched
// exhaustively, so no later checkpoint has to re-derive which
// combination of flags is active.
type Strategy int

const (
	RamseyWithFile Strategy = iota
	RamseyNoFile
	ExplicitFile
	BlockStructured
	LinearDirect
	NonlinearGeneric
)

var strategyNames = map[Strategy]string{
	RamseyWithFile:   "ramsey+file",
	RamseyNoFile:     "ramsey",
	ExplicitFile:     "file",
	BlockStructured:  "block",
	LinearDirect:     "linear",
	NonlinearGeneric: "nonlinear",
}

func (s Strategy) String() string { return strategyNames[s] }

// DeriveStrategy applies the dispatch precedence: Ramsey mode first,
// then an explicit steady-state file, then the block/bytecode entry
// point, then the linear fast path, with the generic nonlinear solve
// as the default.
func DeriveStrategy(opts *config.Options) Strategy {
	switch {
	case opts.RamseyPolicy && opts.SteadyStateFile:
		return RamseyWithFile
	case opts.RamseyPolicy:
		return RamseyNoFile
	case opts.SteadyStateFile:
		return ExplicitFile
	case opts.Block || opts.Bytecode:
		return BlockStructured
	case opts.Linear:
		return LinearDirect
	default:
		return NonlinearGeneric
	}
}
