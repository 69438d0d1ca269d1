package randomized

import (
	"github.com/hmatrix-go/hmatrix/dense"
	"github.com/hmatrix-go/hmatrix/internal/lapackx"
)

// QR computes the thin QR factorization of a (spec §4.6): Q is
// m×min(m,n) with orthonormal columns, R is min(m,n)×n upper
// trapezoidal. a is left unmodified.
func QR(a *dense.Block) (q, r *dense.Block) {
	m, n := a.Dims()
	k := min(m, n)
	work := a.Clone()
	tau := lapackx.QR(work.RawGeneral())
	q = dense.NewFromGeneral(lapackx.FormQ(work.RawGeneral(), tau, k))
	r = dense.New(k, n)
	for i := 0; i < k; i++ {
		for j := i; j < n; j++ {
			r.Set(i, j, work.At(i, j))
		}
	}
	return q, r
}

// RQ computes a factorization a = R·Qᵀ of an m×n matrix, m<=n, with R
// m×m and Q n×m with orthonormal columns (spec §4.6).
func RQ(a *dense.Block) (r, q *dense.Block) {
	rawR, rawQ := lapackx.RQ(a.RawGeneral())
	return dense.NewFromGeneral(rawR), dense.NewFromGeneral(rawQ)
}

// ColPivotedQR computes a column-pivoted QR factorization A·Π = Q·R
// (spec "Supplemented Features" #4), a diagnostic primitive the
// original exposed only as a private helper of OneSidedID. a is
// mutated in place; R is left in its upper triangle.
func ColPivotedQR(a *dense.Block) (tau []float64, pivots []int) {
	return lapackx.ColPivotedQR(a.RawGeneral())
}
