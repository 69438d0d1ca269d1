// Package lapackx adapts gonum's blas64/lapack64 bindings to the exact
// primitives the hierarchical engine needs: plain QR/RQ, SVD, LU
// without pivoting exposed upward, column-pivoted QR, and the blocked
// Householder primitives (geqrt/larfb/tpqrt/tpmqrt) used to drive
// block-TSQR over a block column (spec §4.6, §4.7).
//
// gonum's public lapack64 package wraps the unblocked computational
// routines (Geqrf, Gesvd, Getrf, ...) but not the blocked
// tile-QR family (dgeqrt/dtpqrt/dtpmqrt/dlarfb) or RQ/column-pivoted
// QR. Rather than invent a dependency that does not exist, this
// package composes the missing primitives from the ones gonum does
// export (Geqrf, Ormqr, Gemm, Trsm) following the standard LAPACK
// Working Note relations; see DESIGN.md.
package lapackx

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/blas"
	"gonum.org/v1/gonum/blas/blas64"
	"gonum.org/v1/gonum/lapack"
	lapackgonum "gonum.org/v1/gonum/lapack/gonum"
	"gonum.org/v1/gonum/lapack/lapack64"
)

// Error reports a LAPACK computational failure (info != 0), per
// spec §7 "Numerical failure".
type Error struct {
	Routine string
	Info    int
}

func (e *Error) Error() string {
	return fmt.Sprintf("lapackx: %s failed, info = %d", e.Routine, e.Info)
}

func general(m, n int) blas64.General {
	return blas64.General{Rows: m, Cols: n, Stride: n, Data: make([]float64, m*n)}
}

func identity(n int) blas64.General {
	g := general(n, n)
	for i := 0; i < n; i++ {
		g.Data[i*g.Stride+i] = 1
	}
	return g
}

// clone returns a deep copy of g.
func clone(g blas64.General) blas64.General {
	out := g
	out.Data = append([]float64(nil), g.Data...)
	return out
}

// QR computes the QR factorization of a in place: on return a's upper
// triangle (the first min(m,n) rows) holds R and the reflectors are
// stored below the diagonal together with the returned tau, exactly
// as dgeqrf leaves them. Callers that need explicit Q use FormQ.
func QR(a blas64.General) (tau []float64) {
	m, n := a.Rows, a.Cols
	k := min(m, n)
	tau = make([]float64, k)
	work := []float64{0}
	lapack64.Geqrf(a, tau, work, -1)
	work = make([]float64, int(work[0]))
	lapack64.Geqrf(a, tau, work, len(work))
	return tau
}

// FormQ reconstructs the first ncols columns of the orthogonal factor
// implicitly stored in a (as left by QR) by applying the reflectors to
// the identity, mirroring mat.QR.QTo's use of Ormqr rather than an
// exported Orgqr.
func FormQ(a blas64.General, tau []float64, ncols int) blas64.General {
	full := identity(a.Rows)
	work := []float64{0}
	lapack64.Ormqr(blas.Left, blas.NoTrans, a, tau, full, work, -1)
	work = make([]float64, int(work[0]))
	lapack64.Ormqr(blas.Left, blas.NoTrans, a, tau, full, work, len(work))
	if ncols == full.Cols {
		return full
	}
	out := general(full.Rows, ncols)
	for i := 0; i < full.Rows; i++ {
		copy(out.Data[i*out.Stride:i*out.Stride+ncols], full.Data[i*full.Stride:i*full.Stride+ncols])
	}
	return out
}

func transposeOf(a blas64.General) blas64.General {
	out := general(a.Cols, a.Rows)
	for i := 0; i < a.Rows; i++ {
		for j := 0; j < a.Cols; j++ {
			out.Data[j*out.Stride+i] = a.Data[i*a.Stride+j]
		}
	}
	return out
}

// RQ computes a factorization A = R*Qᵀ of an m×n matrix (m <= n),
// with R m×m and Q n×m with orthonormal columns, via the QR
// factorization of Aᵀ: Aᵀ = Q*R1 gives A = R1ᵀ*Qᵀ, so R = R1ᵀ.
// gonum's lapack64 does not export Gerqf; this composes the relation
// from Geqrf/Ormqr instead of adding a dependency.
func RQ(a blas64.General) (r, q blas64.General) {
	at := transposeOf(a) // n×m, n >= m
	tau := QR(at)
	q = FormQ(at, tau, a.Rows) // n×m, orthonormal columns
	r = general(a.Rows, a.Rows)
	for i := 0; i < a.Rows; i++ {
		for j := i; j < a.Rows; j++ {
			r.Data[j*r.Stride+i] = at.Data[i*at.Stride+j]
		}
	}
	return r, q
}

// SVD computes a thin SVD, A ≈ U*diag(s)*Vt, with U m×min(m,n) and Vt
// min(m,n)×n, destroying a. Mirrors mat.SVD.Factorize's work-query
// idiom over lapack64.Gesvd.
func SVD(a blas64.General) (u blas64.General, s []float64, vt blas64.General, err error) {
	m, n := a.Rows, a.Cols
	k := min(m, n)
	u = general(m, k)
	vt = general(k, n)
	s = make([]float64, k)
	work := []float64{0}
	lapack64.Gesvd(lapack.SVDStore, lapack.SVDStore, a, u, vt, s, work, -1)
	work = make([]float64, int(work[0]))
	ok := lapack64.Gesvd(lapack.SVDStore, lapack.SVDStore, a, u, vt, s, work, len(work))
	if !ok {
		return u, s, vt, &Error{Routine: "dgesvd", Info: -1}
	}
	return u, s, vt, nil
}

// LU computes an in-place LU factorization of square or rectangular a
// via dgetrf, returning the pivot vector. Per spec §4.7's GETRF rule,
// the hierarchical driver discards any permutation it receives from a
// diagonal leaf (the engine's no-pivot-across-blocks contract), but
// LU still returns ipiv so a caller validating a single leaf can check
// it induced no permutation.
func LU(a blas64.General) (ipiv []int, err error) {
	k := min(a.Rows, a.Cols)
	ipiv = make([]int, k)
	ok := lapack64.Getrf(a, ipiv)
	if !ok {
		return ipiv, &Error{Routine: "dgetrf", Info: 1}
	}
	return ipiv, nil
}

// ColPivotedQR computes a column-pivoted QR factorization A*Π = Q*R
// via the native Go implementation's Dgeqp3, which lapack64 does not
// wrap. R is left in a's upper triangle on return. Returns the
// Householder scalars tau and the zero-based column permutation jpvt
// such that column jpvt[i] of A became column i of A*Π. Every column is
// free to be pivoted.
func ColPivotedQR(a blas64.General) (tau []float64, jpvt []int) {
	impl := lapackgonum.Implementation{}
	m, n := a.Rows, a.Cols
	jpvt = make([]int, n)
	for j := range jpvt {
		jpvt[j] = -1
	}
	tau = make([]float64, min(m, n))
	work := []float64{0}
	impl.Dgeqp3(m, n, a.Data, a.Stride, jpvt, tau, work, -1)
	work = make([]float64, int(work[0]))
	impl.Dgeqp3(m, n, a.Data, a.Stride, jpvt, tau, work, len(work))
	return tau, jpvt
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// Gemm computes c = beta*c + alpha*op(a)*op(b) via blas64.Implementation's
// Dgemm, the primitive every D/D GEMM rule in spec §4.7 bottoms out in.
func Gemm(tA, tB blas.Transpose, alpha float64, a, b blas64.General, beta float64, c blas64.General) {
	m, k := a.Rows, a.Cols
	if tA == blas.Trans {
		m, k = a.Cols, a.Rows
	}
	n := b.Cols
	if tB == blas.Trans {
		n = b.Rows
	}
	blas64.Implementation().Dgemm(tA, tB, m, n, k, alpha, a.Data, a.Stride, b.Data, b.Stride, beta, c.Data, c.Stride)
}

// Gemv computes y = beta*y + alpha*op(a)*x, the DGEMV fast path used
// when a GEMM's right operand has a single column (spec §4.1).
func Gemv(tA blas.Transpose, alpha float64, a blas64.General, x []float64, beta float64, y []float64) {
	blas64.Implementation().Dgemv(tA, a.Rows, a.Cols, alpha, a.Data, a.Stride, x, 1, beta, y, 1)
}

// Trsm solves op(a)*x = alpha*b or x*op(a) = alpha*b for triangular a,
// overwriting b with the solution x, via blas64.Implementation's Dtrsm.
func Trsm(side blas.Side, uplo blas.Uplo, tA blas.Transpose, diag blas.Diag, alpha float64, a, b blas64.General) {
	blas64.Implementation().Dtrsm(side, uplo, tA, diag, b.Rows, b.Cols, alpha, a.Data, a.Stride, b.Data, b.Stride)
}

// reflectorEntry returns V(r,c) for the standard Householder storage
// convention used by Geqrf/Geqrt: zero above the diagonal, an implicit
// unit diagonal, and the stored subdiagonal value below it.
func reflectorEntry(v blas64.General, r, c int) float64 {
	switch {
	case r < c:
		return 0
	case r == c:
		return 1
	default:
		return v.Data[r*v.Stride+c]
	}
}

// larft computes the k×k upper triangular block-reflector matrix T
// such that the product of k elementary reflectors with scalars tau
// and vectors stored in v (standard unit-diagonal convention) equals
// I - V*T*Vᵀ. This is the classical dlarft recurrence (Schreiber &
// Van Loan), computed directly rather than via a BLAS/LAPACK call
// gonum does not expose.
func larft(v blas64.General, tau []float64) blas64.General {
	k := v.Cols
	t := general(k, k)
	for i := 0; i < k; i++ {
		t.Data[i*t.Stride+i] = tau[i]
		if i == 0 {
			continue
		}
		z := make([]float64, i)
		for j := 0; j < i; j++ {
			var s float64
			for r := 0; r < v.Rows; r++ {
				s += reflectorEntry(v, r, j) * reflectorEntry(v, r, i)
			}
			z[j] = s
		}
		for row := 0; row < i; row++ {
			var s float64
			for c := row; c < i; c++ {
				s += t.Data[row*t.Stride+c] * z[c]
			}
			t.Data[row*t.Stride+i] = -tau[i] * s
		}
	}
	return t
}

// Geqrt computes the blocked QR factorization of the square k×k block
// a in place: R is left in a's upper triangle, the Householder vectors
// in its strict lower triangle (implicit unit diagonal), and the
// returned T is the k×k block-reflector matrix later consumed by
// Larfb/Tpmqrt. Mirrors dgeqrt; built from Geqrf + larft since gonum
// does not expose dgeqrt directly.
func Geqrt(a blas64.General) (t blas64.General) {
	tau := QR(a)
	return larft(a, tau)
}

// Larfb applies the block reflector (v, t) — as produced by Geqrt over
// the square block v — to c (v.Rows×c.Cols), in place:
//
//	c := (I - V*T*Vᵀ)*c          if trans is false
//	c := (I - V*Tᵀ*Vᵀ)*c         if trans is true (apply the transpose)
func Larfb(v, t, c blas64.General, trans bool) {
	k := v.Cols
	w := general(k, c.Cols)
	Gemm(blas.Trans, blas.NoTrans, 1, v, c, 0, w)
	tt := blas.NoTrans
	if trans {
		tt = blas.Trans
	}
	wOut := general(k, c.Cols)
	Gemm(tt, blas.NoTrans, 1, t, w, 0, wOut)
	Gemm(blas.NoTrans, blas.NoTrans, -1, v, wOut, 1, c)
}

// Tpqrt eliminates the m×k dense block b into the k×k upper triangular
// block a, updating a in place to the combined R and overwriting b
// with the Householder vectors of the triangular-pentagonal reflector
// (the "V2" half; the implicit top half is the identity, per the
// standard L=0 tpqrt convention). Returns the k×k block-reflector T
// for later use by Tpmqrt. Mirrors dtpqrt, computed column-by-column
// since gonum does not expose it.
func Tpqrt(a, b blas64.General) (t blas64.General) {
	k, m := a.Cols, b.Rows
	tau := make([]float64, k)
	for i := 0; i < k; i++ {
		alpha := a.Data[i*a.Stride+i]
		var normSq float64
		for r := 0; r < m; r++ {
			x := b.Data[r*b.Stride+i]
			normSq += x * x
		}
		norm := math.Sqrt(alpha*alpha + normSq)
		if norm == 0 {
			tau[i] = 0
			continue
		}
		beta := -math.Copysign(norm, alpha)
		tauI := (beta - alpha) / beta
		scale := 1 / (alpha - beta)
		for r := 0; r < m; r++ {
			b.Data[r*b.Stride+i] *= scale
		}
		a.Data[i*a.Stride+i] = beta
		tau[i] = tauI
		for j := i + 1; j < k; j++ {
			s := a.Data[i*a.Stride+j]
			for r := 0; r < m; r++ {
				s += b.Data[r*b.Stride+i] * b.Data[r*b.Stride+j]
			}
			s *= tauI
			a.Data[i*a.Stride+j] -= s
			for r := 0; r < m; r++ {
				b.Data[r*b.Stride+j] -= s * b.Data[r*b.Stride+i]
			}
		}
	}
	return larftV2(b, tau)
}

// larftV2 is larft specialized to the tpqrt convention where the
// implicit top half of V is the identity matrix: distinct identity
// columns are orthogonal, so their cross terms in the classical
// recurrence vanish and only the dense half v2 contributes.
func larftV2(v2 blas64.General, tau []float64) blas64.General {
	k := v2.Cols
	t := general(k, k)
	for i := 0; i < k; i++ {
		t.Data[i*t.Stride+i] = tau[i]
		if i == 0 {
			continue
		}
		z := make([]float64, i)
		for j := 0; j < i; j++ {
			var s float64
			for r := 0; r < v2.Rows; r++ {
				s += v2.Data[r*v2.Stride+j] * v2.Data[r*v2.Stride+i]
			}
			z[j] = s
		}
		for row := 0; row < i; row++ {
			var s float64
			for c := row; c < i; c++ {
				s += t.Data[row*t.Stride+c] * z[c]
			}
			t.Data[row*t.Stride+i] = -tau[i] * s
		}
	}
	return t
}

// Tpmqrt applies the triangular-pentagonal block reflector (v2, t), as
// produced by Tpqrt, to the row pair (top, bottom) in place:
//
//	[top; bottom] := (I - V*Tᵀ*Vᵀ)*[top; bottom]   if trans
//	[top; bottom] := (I - V*T*Vᵀ)*[top; bottom]    otherwise
//
// where V's implicit top half is the identity, so the update only
// needs v2 (the stored dense half) and the two row blocks being
// combined. Mirrors dtpmqrt.
func Tpmqrt(v2, t, top, bottom blas64.General, trans bool) {
	k, n := v2.Cols, top.Cols
	w := clone(top) // k×n, V1ᵀ*top = top since V1 = I
	Gemm(blas.Trans, blas.NoTrans, 1, v2, bottom, 1, w)
	tt := blas.NoTrans
	if trans {
		tt = blas.Trans
	}
	wOut := general(k, n)
	Gemm(tt, blas.NoTrans, 1, t, w, 0, wOut)
	for r := 0; r < k; r++ {
		for c := 0; c < n; c++ {
			top.Data[r*top.Stride+c] -= wOut.Data[r*wOut.Stride+c]
		}
	}
	Gemm(blas.NoTrans, blas.NoTrans, -1, v2, wOut, 1, bottom)
}
