package num

import (
	"math"
	"testing"
)

func TestVecIsFinite(t *testing.T) {
	tests := []struct {
		name string
		v    Vec
		want bool
	}{
		{"empty", Vec{}, true},
		{"finite", Vec{1, -2, 3.5}, true},
		{"nan", Vec{1, math.NaN()}, false},
		{"inf", Vec{math.Inf(1), 0}, false},
		{"neg inf", Vec{0, math.Inf(-1)}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.v.IsFinite(); got != tt.want {
				t.Errorf("IsFinite() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestVecNaNCount(t *testing.T) {
	v := Vec{math.NaN(), 1, math.NaN(), math.Inf(1)}
	if got := v.NaNCount(); got != 2 {
		t.Errorf("expected 2 NaNs, got %d", got)
	}
}

func TestVecNorms(t *testing.T) {
	v := Vec{3, -4}
	if got := v.Norm(); math.Abs(got-5) > 1e-15 {
		t.Errorf("Norm() = %v, want 5", got)
	}
	if got := v.SumSquares(); math.Abs(got-25) > 1e-15 {
		t.Errorf("SumSquares() = %v, want 25", got)
	}
	if got := v.MaxAbs(); got != 4 {
		t.Errorf("MaxAbs() = %v, want 4", got)
	}
}

func TestVecRepeat(t *testing.T) {
	v := Vec{1, 2}
	r := v.Repeat(3)
	if len(r) != 6 {
		t.Fatalf("expected length 6, got %d", len(r))
	}
	want := Vec{1, 2, 1, 2, 1, 2}
	for i := range want {
		if r[i] != want[i] {
			t.Errorf("r[%d] = %v, want %v", i, r[i], want[i])
		}
	}
}

func TestVecCloneIndependent(t *testing.T) {
	v := Vec{1, 2}
	c := v.Clone()
	c[0] = 9
	if v[0] != 1 {
		t.Error("clone shares backing array with original")
	}
}

func TestCVecRealAndImag(t *testing.T) {
	c := CVec{complex(1, 0), complex(2, -3)}

	if c.IsReal() {
		t.Error("expected IsReal() == false")
	}
	if got := c.ImagSumSquares(); math.Abs(got-9) > 1e-15 {
		t.Errorf("ImagSumSquares() = %v, want 9", got)
	}

	r := c.Real()
	if r[0] != 1 || r[1] != 2 {
		t.Errorf("Real() = %v, want [1 2]", r)
	}
}

func TestCVecHasNaN(t *testing.T) {
	if (CVec{complex(1, 0)}).HasNaN() {
		t.Error("no NaN expected")
	}
	if !(CVec{complex(math.NaN(), 0)}).HasNaN() {
		t.Error("real NaN not detected")
	}
	if !(CVec{complex(0, math.NaN())}).HasNaN() {
		t.Error("imaginary NaN not detected")
	}
}

func TestFromRealRoundTrip(t *testing.T) {
	v := Vec{1.5, -2.5}
	c := FromReal(v)
	if !c.IsReal() {
		t.Error("FromReal produced imaginary parts")
	}
	r := c.Real()
	for i := range v {
		if r[i] != v[i] {
			t.Errorf("round trip mismatch at %d: %v != %v", i, r[i], v[i])
		}
	}
}
