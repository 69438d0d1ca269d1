package kernel

import (
	"math"
	"testing"

	"github.com/hmatrix-go/hmatrix/cluster"
	"github.com/hmatrix-go/hmatrix/dense"
)

func TestZerosAndIdentity(t *testing.T) {
	z := dense.New(3, 3)
	z.Fill(Zeros(), 0, 0)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			if z.At(i, j) != 0 {
				t.Fatalf("Zeros: At(%d,%d)=%v", i, j, z.At(i, j))
			}
		}
	}

	id := dense.New(3, 3)
	id.Fill(Identity(), 0, 0)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			want := 0.0
			if i == j {
				want = 1
			}
			if id.At(i, j) != want {
				t.Fatalf("Identity: At(%d,%d)=%v, want %v", i, j, id.At(i, j), want)
			}
		}
	}
}

func TestArangeOffset(t *testing.T) {
	b := dense.New(2, 2)
	b.Fill(Arange(5), 1, 2)
	if b.At(0, 0) != float64(1*5+2) {
		t.Errorf("At(0,0) = %v, want %v", b.At(0, 0), 1*5+2)
	}
	if b.At(1, 1) != float64(2*5+3) {
		t.Errorf("At(1,1) = %v, want %v", b.At(1, 1), 2*5+3)
	}
}

func TestLaplace1DSymmetricAndRegularized(t *testing.T) {
	x := []float64{0, 1, 3, 7}
	b := dense.New(4, 4)
	b.Fill(Laplace1D(x), 0, 0)
	for i := range x {
		if b.At(i, i) != 0 {
			t.Errorf("diagonal at %d = %v, want 0", i, b.At(i, i))
		}
	}
	if got, want := b.At(0, 2), 1/math.Abs(x[0]-x[2]); math.Abs(got-want) > 1e-12 {
		t.Errorf("At(0,2) = %v, want %v", got, want)
	}
	if b.At(1, 2) != b.At(2, 1) {
		t.Errorf("Laplace1D not symmetric: %v != %v", b.At(1, 2), b.At(2, 1))
	}
}

func TestLaplaceNDMatchesLaplace1DInOneDimension(t *testing.T) {
	x := []float64{0, 1, 3, 7}
	points := cluster.PointSet{Coords: make([][]float64, len(x))}
	for i, v := range x {
		points.Coords[i] = []float64{v}
	}
	a := dense.New(4, 4)
	a.Fill(Laplace1D(x), 0, 0)
	b := dense.New(4, 4)
	b.Fill(LaplaceND(points), 0, 0)
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			if math.Abs(a.At(i, j)-b.At(i, j)) > 1e-12 {
				t.Fatalf("LaplaceND(%d,%d) = %v, want %v", i, j, b.At(i, j), a.At(i, j))
			}
		}
	}
}

func TestCauchy2DBoundedAndSymmetric(t *testing.T) {
	points := cluster.PointSet{Coords: [][]float64{{0, 0}, {1, 0}, {0, 1}}}
	b := dense.New(3, 3)
	b.Fill(Cauchy2D(points), 0, 0)
	if b.At(0, 0) != 1 {
		t.Errorf("Cauchy2D diagonal = %v, want 1", b.At(0, 0))
	}
	if b.At(0, 1) != b.At(1, 0) {
		t.Errorf("Cauchy2D not symmetric")
	}
	if b.At(0, 1) <= 0 || b.At(0, 1) > 1 {
		t.Errorf("Cauchy2D off-diagonal out of (0,1]: %v", b.At(0, 1))
	}
}

func TestHelmholtzNDDiagonal(t *testing.T) {
	points := cluster.PointSet{Coords: [][]float64{{0, 0, 0}, {1, 1, 1}}}
	b := dense.New(2, 2)
	b.Fill(HelmholtzND(points, 2.5), 0, 0)
	if b.At(0, 0) != 1 {
		t.Errorf("HelmholtzND diagonal = %v, want 1", b.At(0, 0))
	}
}

func TestRandomDistributionsFillWithinBlockBounds(t *testing.T) {
	b := dense.New(4, 4)
	b.Fill(RandomUniform(-1, 1), 0, 0)
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			if v := b.At(i, j); v < -1 || v > 1 {
				t.Fatalf("RandomUniform out of range: %v", v)
			}
		}
	}
	n := dense.New(4, 4)
	n.Fill(RandomNormal(0, 1), 0, 0)
	_ = n
}
