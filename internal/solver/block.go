package solver

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/MacroFinanceHub/dynare/internal/num"
)

// BlockNewton solves the system block by block: each block pairs a set
// of equations with the same-indexed set of variables, earlier blocks
// feeding their solution into later ones. This is the alternate entry
// point used for block-decomposed (or bytecode-compiled) models.
func BlockNewton(sys System, guess num.Vec, blocks [][]int, opts Options) (Result, error) {
	n := sys.Dim()
	if len(guess) != n {
		return Result{}, ErrDimensionMismatch
	}
	if len(blocks) == 0 {
		return Newton(sys, guess, opts)
	}

	covered := make([]bool, n)
	for _, blk := range blocks {
		for _, idx := range blk {
			if idx < 0 || idx >= n {
				return Result{}, fmt.Errorf("solver: block index %d out of range", idx)
			}
			if covered[idx] {
				return Result{}, fmt.Errorf("solver: variable %d assigned to two blocks", idx)
			}
			covered[idx] = true
		}
	}
	for idx, ok := range covered {
		if !ok {
			return Result{}, fmt.Errorf("solver: variable %d not covered by any block", idx)
		}
	}

	y := guess.Clone()
	agg := Result{Y: y}

	for bi, blk := range blocks {
		sub := &subSystem{full: sys, indices: blk, point: y}
		subGuess := make(num.Vec, len(blk))
		for i, idx := range blk {
			subGuess[i] = y[idx]
		}

		r, err := Newton(sub, subGuess, opts)
		if err != nil {
			return Result{}, err
		}
		for i, idx := range blk {
			y[idx] = r.Y[i]
		}
		agg.Iterations += r.Iterations
		agg.History = append(agg.History, r.History...)
		if r.Unsolved {
			opts.Logger.Debug().Int("block", bi).Msg("block solve did not converge")
			agg.Unsolved = true
			return agg, nil
		}
	}

	agg.Y = y
	return agg, nil
}

// subSystem restricts the full system to one block, holding every
// variable outside the block fixed at the current point.
type subSystem struct {
	full    System
	indices []int
	point   num.Vec
}

func (s *subSystem) Dim() int { return len(s.indices) }

func (s *subSystem) Evaluate(y num.Vec) (num.Vec, *mat.Dense, error) {
	fullY := s.point.Clone()
	for i, idx := range s.indices {
		fullY[idx] = y[i]
	}

	resid, jac, err := s.full.Evaluate(fullY)
	if err != nil {
		return nil, nil, err
	}

	m := len(s.indices)
	subResid := make(num.Vec, m)
	subJac := mat.NewDense(m, m, nil)
	for i, ei := range s.indices {
		subResid[i] = resid[ei]
		for j, vj := range s.indices {
			subJac.Set(i, j, jac.At(ei, vj))
		}
	}
	return subResid, subJac, nil
}
