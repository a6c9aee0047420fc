package num

import "math"

// CVec is a complex-valued candidate vector. Closed-form steady-state
// files and inner solvers may transiently produce complex entries (even
// roots, logs of negative intermediates); only the terminal sanity
// checks inspect the imaginary parts.
type CVec []complex128

func FromReal(v Vec) CVec {
	c := make(CVec, len(v))
	for i, x := range v {
		c[i] = complex(x, 0)
	}
	return c
}

func (c CVec) Clone() CVec {
	out := make(CVec, len(c))
	copy(out, c)
	return out
}

func (c CVec) Real() Vec {
	out := make(Vec, len(c))
	for i, z := range c {
		out[i] = real(z)
	}
	return out
}

func (c CVec) IsReal() bool {
	for _, z := range c {
		if imag(z) != 0 {
			return false
		}
	}
	return true
}

// ImagSumSquares is the diagnostic magnitude attached to a
// complex-valued steady state.
func (c CVec) ImagSumSquares() float64 {
	sum := 0.0
	for _, z := range c {
		sum += imag(z) * imag(z)
	}
	return sum
}

func (c CVec) HasNaN() bool {
	for _, z := range c {
		if math.IsNaN(real(z)) || math.IsNaN(imag(z)) {
			return true
		}
	}
	return false
}
