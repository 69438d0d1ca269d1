package ops

import (
	"github.com/hmatrix-go/hmatrix/dense"
	"github.com/hmatrix-go/hmatrix/internal/lapackx"
	"github.com/hmatrix-go/hmatrix/matrix"
)

// Getrf factors a Dense diagonal leaf in place via dgetrf (spec
// §4.7's GETRF row; the Hierarchical recursion over block-rows and
// -columns is the block-LU driver in package factorize, not this
// dispatch — GETRF itself is only ever called here on a Dense leaf,
// matching spec §4.1's "GETRF returning unit-lower L and upper U
// in-place"). LowRank and Hierarchical operands are undefined.
func Getrf(a *matrix.Matrix) (l, u *matrix.Matrix, err error) {
	if a.Kind() != matrix.KindDense {
		contractViolation("getrf", "only defined for a Dense diagonal leaf")
	}
	lb, ub, ferr := a.Dense().Getrf()
	if ferr != nil {
		return nil, nil, ferr
	}
	return matrix.FromDense(lb), matrix.FromDense(ub), nil
}

// Geqrt computes the blocked Householder QR of a Dense leaf in place,
// returning the T factor (spec §4.7's block-QR driver; grounded on
// internal/lapackx.Geqrt).
func Geqrt(a *matrix.Matrix) (t *matrix.Matrix) {
	requireDense("geqrt", a)
	return matrix.FromDense(dense.NewFromGeneral(lapackx.Geqrt(a.Dense().RawGeneral())))
}

// Larfb applies the block reflector (v, t) to c in place (spec
// §4.7/§4.8's block-QR driver).
func Larfb(v, t, c *matrix.Matrix, trans bool) {
	requireDense("larfb", v, t, c)
	lapackx.Larfb(v.Dense().RawGeneral(), t.Dense().RawGeneral(), c.Dense().RawGeneral(), trans)
}

// Tpqrt eliminates the pentagonal block b against the triangular
// block a in place, returning the T factor (spec §4.7/§4.8's BLR-TSQR
// driver; grounded on internal/lapackx.Tpqrt).
func Tpqrt(a, b *matrix.Matrix) (t *matrix.Matrix) {
	requireDense("tpqrt", a, b)
	return matrix.FromDense(dense.NewFromGeneral(lapackx.Tpqrt(a.Dense().RawGeneral(), b.Dense().RawGeneral())))
}

// Tpmqrt applies the (v2, t) block reflector from a Tpqrt call to the
// (top, bottom) pair in place (spec §4.7/§4.8's BLR-TSQR driver).
func Tpmqrt(v2, t, top, bottom *matrix.Matrix, trans bool) {
	requireDense("tpmqrt", v2, t, top, bottom)
	lapackx.Tpmqrt(v2.Dense().RawGeneral(), t.Dense().RawGeneral(), top.Dense().RawGeneral(), bottom.Dense().RawGeneral(), trans)
}

func requireDense(op string, ms ...*matrix.Matrix) {
	for _, m := range ms {
		if m.Kind() != matrix.KindDense {
			contractViolation(op, "TSQR primitives operate on Dense leaves only")
		}
	}
}
