package randomized

import (
	"gonum.org/v1/gonum/blas"

	"github.com/hmatrix-go/hmatrix/dense"
	"github.com/hmatrix-go/hmatrix/internal/lapackx"
)

// OneSidedID computes a rank-k interpolative decomposition A ≈ A[:,π]·V
// via column-pivoted QR (spec §4.6): factor A·Π = Q·R with R = [R11
// R12], solve R11·T = R12, and assemble V as the π⁻¹ permutation of
// [I_k | T]. Returns V (k×n) and the first k pivot columns π[0:k].
// Mutates a (the pivoted QR factorization overwrites it).
func OneSidedID(a *dense.Block, k int) (v *dense.Block, pivots []int) {
	m, n := a.Dims()
	if k <= 0 || k > min(m, n) {
		panic("randomized: rank out of range")
	}
	_, jpvt := lapackx.ColPivotedQR(a.RawGeneral())

	r11 := a.View(0, 0, k, k).Clone()
	r11.ZeroLowerTriangle()
	t := a.View(0, k, k, n-k).Clone()
	lapackx.Trsm(blas.Left, blas.Upper, blas.NoTrans, blas.NonUnit, 1, r11.RawGeneral(), t.RawGeneral())

	v = dense.New(k, n)
	for c := 0; c < k; c++ {
		v.Set(c, jpvt[c], 1)
	}
	for c := 0; c < n-k; c++ {
		orig := jpvt[k+c]
		for row := 0; row < k; row++ {
			v.Set(row, orig, t.At(row, c))
		}
	}
	pivots = append([]int(nil), jpvt[:k]...)
	return v, pivots
}

// TwoSidedID computes a rank-k skeleton decomposition A ≈ U·S·V by
// applying OneSidedID to A and to Aᵀ, then reading S off the
// intersection of the row and column pivots (spec §4.6).
func TwoSidedID(a *dense.Block, k int) (u, s, v *dense.Block) {
	colV, colPivots := OneSidedID(a.Clone(), k)
	rowV, rowPivots := OneSidedID(a.T(), k)

	v = colV
	u = rowV.T()
	s = dense.New(k, k)
	for i := 0; i < k; i++ {
		for j := 0; j < k; j++ {
			s.Set(i, j, a.At(rowPivots[i], colPivots[j]))
		}
	}
	return u, s, v
}
