package hierarchical

import (
	"github.com/hmatrix-go/hmatrix/basis"
	"github.com/hmatrix-go/hmatrix/dense"
	"github.com/hmatrix-go/hmatrix/lowrank"
	"github.com/hmatrix-go/hmatrix/matrix"
)

// View is a non-owning re-blocking window over a Dense or LowRank
// Matrix: it presents the same underlying storage under a target
// d0×d1 block layout, without materializing a Block grid (spec §9's
// Open Question — "the rewrite should pick one [materialized
// Hierarchical or view] and apply it uniformly"; this engine always
// uses the view, grounded on original_source's no_copy_split.h/.cpp,
// SPEC_FULL.md "Supplemented Features" #2). ops uses View whenever a
// Dense/LowRank operand must be dispatched against a Hierarchical
// operand of a given block layout.
type View struct {
	underlying *matrix.Matrix
	rowN, colN []int
}

// NewView re-blocks underlying (Kind Dense or LowRank) into a grid
// with the given per-row and per-column extents. The extents must sum
// to underlying's dimensions.
func NewView(underlying *matrix.Matrix, rowN, colN []int) *View {
	if underlying.Kind() == matrix.KindHierarchical {
		panic("hierarchical: View operand must be Dense or LowRank")
	}
	ur, uc := underlying.Dims()
	var sr, sc int
	for _, n := range rowN {
		sr += n
	}
	for _, n := range colN {
		sc += n
	}
	if sr != ur || sc != uc {
		panic(ErrShape)
	}
	return &View{underlying: underlying, rowN: append([]int(nil), rowN...), colN: append([]int(nil), colN...)}
}

// BlockDims returns the view's grid shape.
func (v *View) BlockDims() (d0, d1 int) { return len(v.rowN), len(v.colN) }

// Dims returns the underlying operand's total shape.
func (v *View) Dims() (rows, cols int) { return v.underlying.Dims() }

// RowExtent returns the row-count of block-row i.
func (v *View) RowExtent(i int) int { return v.rowN[i] }

// ColExtent returns the column-count of block-column j.
func (v *View) ColExtent(j int) int { return v.colN[j] }

func (v *View) rowStart(i int) int {
	s := 0
	for k := 0; k < i; k++ {
		s += v.rowN[k]
	}
	return s
}

func (v *View) colStart(j int) int {
	s := 0
	for k := 0; k < j; k++ {
		s += v.colN[k]
	}
	return s
}

// At materializes the (i,j) sub-block as a Matrix sharing storage with
// the underlying operand: a Dense view shares the backing slice; a
// LowRank view shares the row-sliced U (resp. column-sliced V) as
// Shared basis handles over the single private S (spec §4.9 applies
// transitively — mutating a re-blocked LowRank cell's U requires
// Decouple, same as any other shared basis).
func (v *View) At(i, j int) *matrix.Matrix {
	rs, cs := v.rowStart(i), v.colStart(j)
	rn, cn := v.rowN[i], v.colN[j]
	switch v.underlying.Kind() {
	case matrix.KindDense:
		return matrix.FromDense(v.underlying.Dense().View(rs, cs, rn, cn))
	default:
		lr := v.underlying.LowRank()
		r := lr.Rank()
		uView := lr.U().Block().View(rs, 0, rn, r)
		vView := lr.V().Block().View(0, cs, r, cn)
		return matrix.FromLowRank(lowrank.NewShared(basis.Shared(uView), lr.S(), basis.Shared(vView)))
	}
}

// Norm forwards to the underlying operand (re-blocking does not
// change the represented values).
func (v *View) Norm() float64 { return v.underlying.Norm() }

// Clone materializes the view as an owned Block (spec §4.3, "clone
// produces a deep copy").
func (v *View) Clone() matrix.Hierarchical {
	d0, d1 := v.BlockDims()
	out := NewBlock(v.rowN, v.colN)
	for i := 0; i < d0; i++ {
		for j := 0; j < d1; j++ {
			out.Set(i, j, v.At(i, j).Clone(), Position{})
		}
	}
	return out
}

// Transpose returns a materialized, transposed Block (a transposed
// view would need independent row/col re-blocking of a transposed
// underlying operand, which ops never requires: callers transpose the
// Dense/LowRank operand itself before re-viewing it).
func (v *View) Transpose() matrix.Hierarchical {
	return v.Clone().(*Block).transposeBlock()
}

// DenseKernel is a convenience constructor used by tests and the root
// kernel package: a Kernel backed by an explicit in-memory Dense
// buffer, useful for wrapping a pre-built operand as a View target.
func DenseKernel(src *dense.Block) dense.Kernel {
	return func(rows, cols, stride int, data []float64, rowStart, colStart int) {
		for i := 0; i < rows; i++ {
			for j := 0; j < cols; j++ {
				data[i*stride+j] = src.At(rowStart+i, colStart+j)
			}
		}
	}
}
