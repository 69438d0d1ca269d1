// Package factorize implements the block-LU and block-QR driver loops
// of spec §4.7/§4.8 (C8): thin nested loops entirely in terms of
// package ops's elementary operations, over a Hierarchical (or, at the
// base case, Dense) operand.
package factorize

import (
	"gonum.org/v1/gonum/blas"

	"github.com/hmatrix-go/hmatrix/dense"
	"github.com/hmatrix-go/hmatrix/hierarchical"
	"github.com/hmatrix-go/hmatrix/matrix"
	"github.com/hmatrix-go/hmatrix/ops"
)

// grid is the same structural block-grid surface package ops uses;
// duplicated here (rather than exported from ops) since ops's dispatch
// internals are not part of this engine's public operation API (spec
// §6's Operation API lists only gemm/trsm/getrf/the TSQR primitives).
type grid interface {
	BlockDims() (d0, d1 int)
	At(i, j int) *matrix.Matrix
	RowExtent(i int) int
	ColExtent(j int) int
}

func asGrid(h matrix.Hierarchical) grid {
	g, ok := h.(grid)
	if !ok {
		panic("factorize: hierarchical operand exposes no block grid")
	}
	return g
}

func rowExtents(g grid) []int {
	d0, _ := g.BlockDims()
	out := make([]int, d0)
	for i := range out {
		out[i] = g.RowExtent(i)
	}
	return out
}

func colExtents(g grid) []int {
	_, d1 := g.BlockDims()
	out := make([]int, d1)
	for j := range out {
		out[j] = g.ColExtent(j)
	}
	return out
}

func zeroMatrix(rows, cols int) *matrix.Matrix { return matrix.FromDense(dense.New(rows, cols)) }

// BlockLU factors a square operand A = L·U via the no-pivot-
// across-blocks left-looking driver of spec §4.7's GETRF pseudocode.
// A Dense operand bottoms out directly in ops.Getrf; a Hierarchical
// operand recurses block-by-block, consuming its Dense leaves'
// storage directly into L/U rather than copying (the driver's own
// diagonal recursion handles nested Hierarchical diagonal blocks).
//
// Precondition (spec §9, "No pivoting invariant"): every diagonal leaf
// reached by the recursion must be nonsingular without row
// permutation. This is a documented caller contract, not a bug.
func BlockLU(a *matrix.Matrix) (l, u *matrix.Matrix, err error) {
	if a.Kind() == matrix.KindDense {
		return ops.Getrf(a)
	}
	g := asGrid(a.Hierarchical())
	d0, d1 := g.BlockDims()
	if d0 != d1 {
		panic("factorize: BlockLU requires a square block grid")
	}
	rowN, colN := rowExtents(g), colExtents(g)
	lOut := hierarchical.NewBlock(rowN, colN)
	uOut := hierarchical.NewBlock(rowN, colN)
	for i := 0; i < d0; i++ {
		for j := 0; j < d1; j++ {
			if i < j {
				lOut.Set(i, j, zeroMatrix(rowN[i], colN[j]), hierarchical.Position{})
			}
			if i > j {
				uOut.Set(i, j, zeroMatrix(rowN[i], colN[j]), hierarchical.Position{})
			}
		}
	}

	for k := 0; k < d0; k++ {
		lkk, ukk, ferr := BlockLU(g.At(k, k))
		if ferr != nil {
			return nil, nil, ferr
		}
		lOut.Set(k, k, lkk, hierarchical.Position{})
		uOut.Set(k, k, ukk, hierarchical.Position{})

		for ic := k + 1; ic < d0; ic++ {
			cell := g.At(ic, k)
			ops.Trsm(ukk, cell, blas.Right, blas.Upper, blas.NonUnit)
			lOut.Set(ic, k, cell, hierarchical.Position{})
		}
		for j := k + 1; j < d1; j++ {
			cell := g.At(k, j)
			ops.Trsm(lkk, cell, blas.Left, blas.Lower, blas.Unit)
			uOut.Set(k, j, cell, hierarchical.Position{})
		}
		for ic := k + 1; ic < d0; ic++ {
			for kc := k + 1; kc < d1; kc++ {
				ops.Gemm(-1, lOut.At(ic, k), uOut.At(k, kc), 1, g.At(ic, kc))
			}
		}
	}
	return matrix.FromHierarchical(lOut), matrix.FromHierarchical(uOut), nil
}

// SolveLU solves A·x = rhs given A's block-LU factors (L, U from
// BlockLU): forward-substitute L·y = rhs, then back-substitute U·x = y
// (spec §4.8, "triangular solve drivers for right-hand-side vectors
// and matrices are forward/backward block-substitution mirroring the
// GETRF loop").
func SolveLU(l, u, rhs *matrix.Matrix) *matrix.Matrix {
	y := rhs.Clone()
	ops.Trsm(l, y, blas.Left, blas.Lower, blas.Unit)
	ops.Trsm(u, y, blas.Left, blas.Upper, blas.NonUnit)
	return y
}
