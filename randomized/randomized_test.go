package randomized

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/floats"

	"github.com/hmatrix-go/hmatrix/dense"
)

func lowRankMatrix(m, n, r int) *dense.Block {
	u := randomNormalBlock(m, r)
	v := randomNormalBlock(r, n)
	out := dense.New(m, n)
	dense.Gemm(1, u, v, 0, out)
	return out
}

func TestRSVDReconstructsExactLowRank(t *testing.T) {
	a := lowRankMatrix(40, 30, 5)
	u, s, v := RSVD(a, 5)
	us := dense.New(40, 5)
	dense.Gemm(1, u, s, 0, us)
	recon := dense.New(40, 30)
	dense.Gemm(1, us, v, 0, recon)

	var diffNorm, aNorm float64
	for i := 0; i < 40; i++ {
		for j := 0; j < 30; j++ {
			d := recon.At(i, j) - a.At(i, j)
			diffNorm += d * d
			aNorm += a.At(i, j) * a.At(i, j)
		}
	}
	rel := math.Sqrt(diffNorm) / math.Sqrt(aNorm)
	if rel > 1e-8 {
		t.Errorf("RSVD relative reconstruction error = %v, want <= 1e-8", rel)
	}
}

func TestRSVDOrthonormalColumns(t *testing.T) {
	a := lowRankMatrix(20, 20, 8)
	u, _, _ := RSVD(a, 6)
	rows, cols := u.Dims()
	gram := dense.New(cols, cols)
	dense.Gemm(1, u.T(), u, 0, gram)
	for i := 0; i < cols; i++ {
		for j := 0; j < cols; j++ {
			want := 0.0
			if i == j {
				want = 1.0
			}
			if !floats.EqualWithinAbsOrRel(gram.At(i, j), want, 1e-6, 1e-6) {
				t.Errorf("UᵀU[%d][%d] = %v, want %v", i, j, gram.At(i, j), want)
			}
		}
	}
	_ = rows
}

func TestOneSidedIDAccuracy(t *testing.T) {
	m, n, k := 64, 32, 8
	a := lowRankMatrix(m, n, k)
	aCopy := a.Clone()
	v, pivots := OneSidedID(aCopy, k)

	cols := a.Columns(pivots)
	recon := dense.New(m, n)
	dense.Gemm(1, cols, v, 0, recon)

	var diffNorm, aNorm float64
	for i := 0; i < m; i++ {
		for j := 0; j < n; j++ {
			d := recon.At(i, j) - a.At(i, j)
			diffNorm += d * d
			aNorm += a.At(i, j) * a.At(i, j)
		}
	}
	rel := math.Sqrt(diffNorm) / math.Sqrt(aNorm)
	if rel > 1e-4 {
		t.Errorf("one-sided ID relative error = %v, want <= 1e-4", rel)
	}
}
