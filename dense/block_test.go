package dense

import (
	"math"
	"testing"
)

func TestViewSharesStorage(t *testing.T) {
	b := New(4, 4)
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			b.Set(i, j, float64(i*4+j))
		}
	}
	v := b.View(1, 1, 2, 2)
	v.Set(0, 0, 100)
	if got := b.At(1, 1); got != 100 {
		t.Errorf("View did not alias parent storage: b.At(1,1) = %v, want 100", got)
	}
}

func TestAddSub(t *testing.T) {
	a := New(2, 2)
	a.Set(0, 0, 1)
	a.Set(1, 1, 2)
	b := a.Clone()
	a.Add(b)
	if a.At(0, 0) != 2 || a.At(1, 1) != 4 {
		t.Errorf("Add produced %v, %v; want 2, 4", a.At(0, 0), a.At(1, 1))
	}
	a.Sub(b)
	a.Sub(b)
	if a.At(0, 0) != 0 || a.At(1, 1) != 0 {
		t.Errorf("a-b-b should be zero, got %v, %v", a.At(0, 0), a.At(1, 1))
	}
}

func TestTransposeRoundTrip(t *testing.T) {
	a := New(3, 2)
	n := 0
	for i := 0; i < 3; i++ {
		for j := 0; j < 2; j++ {
			n++
			a.Set(i, j, float64(n))
		}
	}
	tt := a.T().T()
	for i := 0; i < 3; i++ {
		for j := 0; j < 2; j++ {
			if a.At(i, j) != tt.At(i, j) {
				t.Fatalf("transpose(transpose(a)) != a at (%d,%d)", i, j)
			}
		}
	}
}

func TestGemmDense(t *testing.T) {
	a := New(2, 2)
	a.Set(0, 0, 1)
	a.Set(0, 1, 2)
	a.Set(1, 0, 3)
	a.Set(1, 1, 4)
	b := a.Clone()
	c := New(2, 2)
	Gemm(1, a, b, 0, c)
	want := [2][2]float64{{7, 10}, {15, 22}}
	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			if math.Abs(c.At(i, j)-want[i][j]) > 1e-12 {
				t.Errorf("c[%d][%d] = %v, want %v", i, j, c.At(i, j), want[i][j])
			}
		}
	}
}

func TestNorm(t *testing.T) {
	a := New(1, 3)
	a.Set(0, 0, 3)
	a.Set(0, 1, 4)
	a.Set(0, 2, 0)
	if got := a.Norm(); math.Abs(got-5) > 1e-12 {
		t.Errorf("Norm() = %v, want 5", got)
	}
}
