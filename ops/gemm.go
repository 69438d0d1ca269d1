package ops

import (
	"github.com/hmatrix-go/hmatrix/basis"
	"github.com/hmatrix-go/hmatrix/dense"
	"github.com/hmatrix-go/hmatrix/hierarchical"
	"github.com/hmatrix-go/hmatrix/lowrank"
	"github.com/hmatrix-go/hmatrix/matrix"
)

// Gemm computes C := β·C + α·A·B, dispatching on the runtime variants
// of A, B and C (spec §4.7's operand-triple table, "the heart").
func Gemm(alpha float64, a, b *matrix.Matrix, beta float64, c *matrix.Matrix) {
	aH := a.Kind() == matrix.KindHierarchical
	bH := b.Kind() == matrix.KindHierarchical
	cH := c.Kind() == matrix.KindHierarchical

	if !aH && !bH && !cH {
		gemmLeaf(alpha, a, b, beta, c)
		return
	}

	// At least one operand is Hierarchical: re-block the rest to match
	// (spec §4.7's generic "re-block the Dense/LowRank operand" rule),
	// including the D/L,D/L,H triple the literal table leaves implicit
	// — the HODLR LU Schur update's `gemm(L(ic,k), A(k,kc), A(ic,kc))`
	// routinely produces exactly this case when A(ic,kc) is a nested
	// Hierarchical diagonal block and L(ic,k)/A(k,kc) are its
	// LowRank off-diagonal neighbors.
	ga, gb, rowN, colN := conformGrids(a, b, c)
	switch {
	case cH:
		gemmHHH(alpha, ga, gb, beta, asGrid(c.Hierarchical()))
	case c.Kind() == matrix.KindDense:
		cGrid := hierarchical.NewView(c, rowN, colN)
		gemmHHH(alpha, ga, gb, beta, cGrid)
	default:
		m, n := c.Dims()
		tmp := dense.New(m, n)
		tmpMatrix := matrix.FromDense(tmp)
		cGrid := hierarchical.NewView(tmpMatrix, rowN, colN)
		gemmHHH(1, ga, gb, 0, cGrid)
		foldGemmIntoLowRank(alpha, tmp, beta, c)
	}
}

// gemmHHH is the block triple loop of spec §4.7: "C(i,j) = β·C(i,j);
// for k: C(i,j) += α·A(i,k)·B(k,j)". cGrid's cells must be real
// storage (a Block's own cells, or a Dense-backed View's shared-buffer
// sub-blocks) — never a LowRank-backed View, whose cells all alias one
// shared S (see Gemm's dense-temporary fold path for that case).
func gemmHHH(alpha float64, ga, gb grid, beta float64, cGrid grid) {
	d0, dk := ga.BlockDims()
	dk2, d1 := gb.BlockDims()
	if dk != dk2 {
		contractViolation("gemm", "contraction dimension block counts disagree")
	}
	for i := 0; i < d0; i++ {
		for j := 0; j < d1; j++ {
			cell := cGrid.At(i, j)
			Scale(cell, beta)
			for k := 0; k < dk; k++ {
				Gemm(alpha, ga.At(i, k), gb.At(k, j), 1, cell)
			}
		}
	}
}

// foldGemmIntoLowRank implements the D,D,L gemm rule ("Form Dense AB,
// C.S *= β, then C += LowRank(AB, C.rank)"), reused verbatim for the
// H,H,L rule ("Compute Dense result into a temporary, compress to
// C.rank") since both reduce to the same fold once AB has been
// materialized densely.
func foldGemmIntoLowRank(alpha float64, ab *dense.Block, beta float64, c *matrix.Matrix) {
	lr := c.LowRank()
	lr.Scale(beta)
	delta := lowrank.FromDense(ab, lr.Rank())
	delta.Scale(alpha)
	c.SetLowRank(lowrank.Add(lr, delta))
}

func gemmLeaf(alpha float64, a, b *matrix.Matrix, beta float64, c *matrix.Matrix) {
	switch {
	case a.Kind() == matrix.KindDense && b.Kind() == matrix.KindDense && c.Kind() == matrix.KindDense:
		dense.Gemm(alpha, a.Dense(), b.Dense(), beta, c.Dense())

	case a.Kind() == matrix.KindLowRank && b.Kind() == matrix.KindDense && c.Kind() == matrix.KindDense:
		// C += α·A.U·(A.S·(A.V·B))
		lr := a.LowRank()
		_, bCols := b.Dims()
		vb := dense.New(lr.Rank(), bCols)
		dense.Gemm(1, lr.V().Block(), b.Dense(), 0, vb)
		svb := dense.New(lr.Rank(), bCols)
		dense.Gemm(1, lr.S(), vb, 0, svb)
		c.Dense().Scale(beta)
		dense.Gemm(alpha, lr.U().Block(), svb, 1, c.Dense())

	case a.Kind() == matrix.KindDense && b.Kind() == matrix.KindLowRank && c.Kind() == matrix.KindDense:
		// C += α·((A·B.U)·B.S)·B.V
		lr := b.LowRank()
		aRows, _ := a.Dims()
		au := dense.New(aRows, lr.Rank())
		dense.Gemm(1, a.Dense(), lr.U().Block(), 0, au)
		aus := dense.New(aRows, lr.Rank())
		dense.Gemm(1, au, lr.S(), 0, aus)
		c.Dense().Scale(beta)
		dense.Gemm(alpha, aus, lr.V().Block(), 1, c.Dense())

	case a.Kind() == matrix.KindLowRank && b.Kind() == matrix.KindLowRank && c.Kind() == matrix.KindDense:
		// C += α·A.U·(A.S·((A.V·B.U)·B.S))·B.V
		la, lb := a.LowRank(), b.LowRank()
		avbu := dense.New(la.Rank(), lb.Rank())
		dense.Gemm(1, la.V().Block(), lb.U().Block(), 0, avbu)
		t1 := dense.New(la.Rank(), lb.Rank())
		dense.Gemm(1, la.S(), avbu, 0, t1)
		t2 := dense.New(la.Rank(), lb.Rank())
		dense.Gemm(1, t1, lb.S(), 0, t2)
		aRows, _ := a.Dims()
		ut2 := dense.New(aRows, lb.Rank())
		dense.Gemm(1, la.U().Block(), t2, 0, ut2)
		c.Dense().Scale(beta)
		dense.Gemm(alpha, ut2, lb.V().Block(), 1, c.Dense())

	case a.Kind() == matrix.KindDense && b.Kind() == matrix.KindDense && c.Kind() == matrix.KindLowRank:
		m, n := c.Dims()
		ab := dense.New(m, n)
		dense.Gemm(1, a.Dense(), b.Dense(), 0, ab)
		foldGemmIntoLowRank(alpha, ab, beta, c)

	case a.Kind() == matrix.KindLowRank && b.Kind() == matrix.KindDense && c.Kind() == matrix.KindLowRank:
		// Copy A, multiply its V by B on the right, scale, merge-add into C.
		la := a.LowRank().Clone()
		_, bCols := b.Dims()
		newV := dense.New(la.Rank(), bCols)
		dense.Gemm(1, la.V().Block(), b.Dense(), 0, newV)
		delta := lowrank.NewShared(la.U(), la.S(), basis.Private(newV))
		delta.Scale(alpha)
		lr := c.LowRank()
		lr.Scale(beta)
		c.SetLowRank(lowrank.Add(lr, delta))

	case a.Kind() == matrix.KindDense && b.Kind() == matrix.KindLowRank && c.Kind() == matrix.KindLowRank:
		lb := b.LowRank().Clone()
		aRows, _ := a.Dims()
		newU := dense.New(aRows, lb.Rank())
		dense.Gemm(1, a.Dense(), lb.U().Block(), 0, newU)
		delta := lowrank.NewShared(basis.Private(newU), lb.S(), lb.V())
		delta.Scale(alpha)
		lr := c.LowRank()
		lr.Scale(beta)
		c.SetLowRank(lowrank.Add(lr, delta))

	case a.Kind() == matrix.KindLowRank && b.Kind() == matrix.KindLowRank && c.Kind() == matrix.KindLowRank:
		// Ranks must match; S = A.S·(A.V·B.U)·B.S, scale, merge-add.
		la, lb := a.LowRank(), b.LowRank()
		if la.Rank() != lb.Rank() {
			contractViolation("gemm", "LowRank·LowRank->LowRank requires matching ranks")
		}
		avbu := dense.New(la.Rank(), lb.Rank())
		dense.Gemm(1, la.V().Block(), lb.U().Block(), 0, avbu)
		t1 := dense.New(la.Rank(), lb.Rank())
		dense.Gemm(1, la.S(), avbu, 0, t1)
		newS := dense.New(la.Rank(), lb.Rank())
		dense.Gemm(1, t1, lb.S(), 0, newS)
		delta := lowrank.NewShared(la.U(), newS, lb.V())
		delta.Scale(alpha)
		lr := c.LowRank()
		lr.Scale(beta)
		c.SetLowRank(lowrank.Add(lr, delta))

	default:
		undefinedTriple("gemm", a, b, c)
	}
}
