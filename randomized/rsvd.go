// Package randomized implements the randomized dense factorizations
// of spec §4.6 (C6): randomized SVD, one- and two-sided interpolative
// decomposition, and the QR/RQ helpers the hierarchical constructor
// and block factorizations build on.
package randomized

import (
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/hmatrix-go/hmatrix/dense"
	"github.com/hmatrix-go/hmatrix/internal/lapackx"
)

// Oversampling is the fixed randomized-SVD oversampling parameter p
// from spec §4.2 ("draw Ω∈ℝ^{n×(k+p)}... p=5").
const Oversampling = 5

func randomNormalBlock(rows, cols int) *dense.Block {
	b := dense.New(rows, cols)
	dist := distuv.Normal{Mu: 0, Sigma: 1}
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			b.Set(i, j, dist.Rand())
		}
	}
	return b
}

// RSVD computes a hard rank-k truncated randomized SVD of a (spec
// §4.2): draw a Gaussian test matrix Ω, form Y = A·Ω, orthogonalize Y
// via QR to get the range-finder basis Q, project B = Qᵀ·A, and take
// the SVD of the small matrix B. Truncation is hard; k must not
// exceed min(a.Dims()).
func RSVD(a *dense.Block, k int) (u, s, v *dense.Block) {
	m, n := a.Dims()
	if k < 0 || k > min(m, n) {
		panic("randomized: rank exceeds min(dim)")
	}
	l := k + Oversampling
	if l > n {
		l = n
	}
	omega := randomNormalBlock(n, l)
	y := dense.New(m, l)
	dense.Gemm(1, a, omega, 0, y)

	tau := lapackx.QR(y.RawGeneral())
	q := dense.NewFromGeneral(lapackx.FormQ(y.RawGeneral(), tau, l))

	b := dense.New(l, n)
	dense.Gemm(1, q.T(), a, 0, b)

	uFull, sFull, vt, err := lapackx.SVD(b.RawGeneral())
	if err != nil {
		panic(err)
	}
	uSmall := dense.NewFromGeneral(uFull).View(0, 0, l, k).Clone()
	u = dense.New(m, k)
	dense.Gemm(1, q, uSmall, 0, u)

	s = dense.New(k, k)
	for i := 0; i < k; i++ {
		s.Set(i, i, sFull[i])
	}
	v = dense.NewFromGeneral(vt).View(0, 0, k, n).Clone()
	return u, s, v
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
