package num

import "math"

type Vec []float64

func (v Vec) Clone() Vec {
	c := make(Vec, len(v))
	copy(c, v)
	return c
}

func (v Vec) IsFinite() bool {
	for _, x := range v {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return false
		}
	}
	return true
}

func (v Vec) HasNaN() bool {
	for _, x := range v {
		if math.IsNaN(x) {
			return true
		}
	}
	return false
}

// NaNCount reports how many entries are NaN; used as a diagnostic
// magnitude when a strategy returns a partially invalid vector.
func (v Vec) NaNCount() int {
	n := 0
	for _, x := range v {
		if math.IsNaN(x) {
			n++
		}
	}
	return n
}

func (v Vec) Norm() float64 {
	sum := 0.0
	for _, x := range v {
		sum += x * x
	}
	return math.Sqrt(sum)
}

func (v Vec) SumSquares() float64 {
	sum := 0.0
	for _, x := range v {
		sum += x * x
	}
	return sum
}

func (v Vec) MaxAbs() float64 {
	m := 0.0
	for _, x := range v {
		if a := math.Abs(x); a > m {
			m = a
		}
	}
	return m
}

// Repeat concatenates n copies of v, the layout residual evaluators
// expect for a vector broadcast across time periods.
func (v Vec) Repeat(n int) Vec {
	result := make(Vec, 0, len(v)*n)
	for i := 0; i < n; i++ {
		result = append(result, v...)
	}
	return result
}
