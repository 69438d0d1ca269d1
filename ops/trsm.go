package ops

import (
	"gonum.org/v1/gonum/blas"

	"github.com/hmatrix-go/hmatrix/basis"
	"github.com/hmatrix-go/hmatrix/hierarchical"
	"github.com/hmatrix-go/hmatrix/internal/lapackx"
	"github.com/hmatrix-go/hmatrix/lowrank"
	"github.com/hmatrix-go/hmatrix/matrix"
)

// Trsm solves A·X = B (side=blas.Left) or X·A = B (side=blas.Right)
// for triangular A, overwriting B with X (spec §4.7's TRSM dispatch).
func Trsm(a, b *matrix.Matrix, side blas.Side, uplo blas.Uplo, diag blas.Diag) {
	switch {
	case a.Kind() == matrix.KindDense && b.Kind() == matrix.KindDense:
		lapackx.Trsm(side, uplo, blas.NoTrans, diag, 1, a.Dense().RawGeneral(), b.Dense().RawGeneral())

	case a.Kind() == matrix.KindDense && b.Kind() == matrix.KindLowRank:
		trsmDenseLowRank(a, b, side, uplo, diag)

	case a.Kind() == matrix.KindHierarchical && b.Kind() == matrix.KindHierarchical:
		trsmHH(asGrid(a.Hierarchical()), asGrid(b.Hierarchical()), side, uplo, diag)

	case a.Kind() == matrix.KindHierarchical && b.Kind() == matrix.KindDense:
		ga := asGrid(a.Hierarchical())
		gb := reblockForTrsm(b, ga, side)
		trsmHH(ga, gb, side, uplo, diag)

	case a.Kind() == matrix.KindHierarchical && b.Kind() == matrix.KindLowRank:
		// Promote the LowRank's U (side=Left) or V (side=Right) to a
		// Hierarchical column vector matching A's block rows/columns,
		// solve, collapse back (spec §4.7).
		lr := b.LowRank()
		if side == blas.Left {
			uDecoupled := lr.U().Decouple()
			uMatrix := matrix.FromDense(uDecoupled.Block())
			Trsm(a, uMatrix, side, uplo, diag)
			b.SetLowRank(lowrank.NewShared(basis.Private(uMatrix.Dense()), lr.S(), lr.V()))
		} else {
			vDecoupled := lr.V().Decouple()
			vMatrix := matrix.FromDense(vDecoupled.Block())
			Trsm(a, vMatrix, side, uplo, diag)
			b.SetLowRank(lowrank.NewShared(lr.U(), lr.S(), basis.Private(vMatrix.Dense())))
		}

	default:
		undefinedTriple("trsm", a, b, b)
	}
}

func trsmDenseLowRank(a, b *matrix.Matrix, side blas.Side, uplo blas.Uplo, diag blas.Diag) {
	lr := b.LowRank()
	if side == blas.Left {
		uDecoupled := lr.U().Decouple()
		lapackx.Trsm(side, uplo, blas.NoTrans, diag, 1, a.Dense().RawGeneral(), uDecoupled.Block().RawGeneral())
		b.SetLowRank(lowrank.NewShared(uDecoupled, lr.S(), lr.V()))
	} else {
		vDecoupled := lr.V().Decouple()
		lapackx.Trsm(side, uplo, blas.NoTrans, diag, 1, a.Dense().RawGeneral(), vDecoupled.Block().RawGeneral())
		b.SetLowRank(lowrank.NewShared(lr.U(), lr.S(), vDecoupled))
	}
}

// reblockForTrsm re-blocks a Dense right-hand side to conform with
// ga's square block layout: row-partitioned like ga for a left solve,
// column-partitioned like ga for a right solve.
func reblockForTrsm(b *matrix.Matrix, ga grid, side blas.Side) grid {
	m, n := b.Dims()
	if side == blas.Left {
		return hierarchical.NewView(b, rowExtents(ga), []int{n})
	}
	return hierarchical.NewView(b, []int{m}, colExtents(ga))
}

// trsmHH is the block forward/backward substitution of spec §4.7's
// TRSM row, generalizing the left-lower-unit and right-upper-nonunit
// shapes the GETRF driver's pseudocode uses literally (spec §4.7's
// GETRF block) to all four (side, uplo) combinations.
func trsmHH(ga, gb grid, side blas.Side, uplo blas.Uplo, diag blas.Diag) {
	if side == blas.Left {
		trsmLeft(ga, gb, uplo, diag)
		return
	}
	trsmRight(ga, gb, uplo, diag)
}

func trsmLeft(ga, gb grid, uplo blas.Uplo, diag blas.Diag) {
	d0, _ := ga.BlockDims()
	_, dc := gb.BlockDims()
	if uplo == blas.Lower {
		for i := 0; i < d0; i++ {
			for jc := 0; jc < dc; jc++ {
				cell := gb.At(i, jc)
				for k := 0; k < i; k++ {
					Gemm(-1, ga.At(i, k), gb.At(k, jc), 1, cell)
				}
				Trsm(ga.At(i, i), cell, blas.Left, blas.Lower, diag)
			}
		}
		return
	}
	for i := d0 - 1; i >= 0; i-- {
		for jc := 0; jc < dc; jc++ {
			cell := gb.At(i, jc)
			for k := i + 1; k < d0; k++ {
				Gemm(-1, ga.At(i, k), gb.At(k, jc), 1, cell)
			}
			Trsm(ga.At(i, i), cell, blas.Left, blas.Upper, diag)
		}
	}
}

func trsmRight(ga, gb grid, uplo blas.Uplo, diag blas.Diag) {
	d0, _ := gb.BlockDims()
	dc, _ := ga.BlockDims()
	if uplo == blas.Upper {
		for j := 0; j < dc; j++ {
			for i := 0; i < d0; i++ {
				cell := gb.At(i, j)
				for k := 0; k < j; k++ {
					Gemm(-1, gb.At(i, k), ga.At(k, j), 1, cell)
				}
				Trsm(ga.At(j, j), cell, blas.Right, blas.Upper, diag)
			}
		}
		return
	}
	for j := dc - 1; j >= 0; j-- {
		for i := 0; i < d0; i++ {
			cell := gb.At(i, j)
			for k := j + 1; k < dc; k++ {
				Gemm(-1, gb.At(i, k), ga.At(k, j), 1, cell)
			}
			Trsm(ga.At(j, j), cell, blas.Right, blas.Lower, diag)
		}
	}
}
