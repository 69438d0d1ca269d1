package hierarchical

import (
	"github.com/hmatrix-go/hmatrix/basis"
	"github.com/hmatrix-go/hmatrix/lowrank"
	"github.com/hmatrix-go/hmatrix/matrix"
)

// Uniform wraps a Block built in SharedBasis mode (spec §4.5, §4.9):
// it is a Block whose LowRank cells may alias U across a block-row or
// V across a block-column, with a Clone that threads a CopyTracker so
// the copy preserves that sharing (spec §9, "Hierarchical copy
// preserves sharing"; grounded on original_source's uniform_hierarchical
// nested-basis container, SPEC_FULL.md "Supplemented Features" #1).
// Plain Block.Clone does not do this — it is a correct but
// sharing-oblivious deep copy, appropriate for NormalBasis trees.
type Uniform struct {
	*Block
}

// NewUniform wraps b, typically the result of a Builder.Build call
// made with Mode: SharedBasis.
func NewUniform(b *Block) *Uniform { return &Uniform{Block: b} }

// Clone deep-copies every cell, preserving basis sharing: two LowRank
// cells that share a U (or V) handle in u end up sharing a U (or V)
// handle in the copy too (spec §4.9).
func (u *Uniform) Clone() matrix.Hierarchical {
	tracker := basis.NewCopyTracker()
	out := u.cloneWithTracker(tracker)
	tracker.Clear()
	return out
}

func (u *Uniform) cloneWithTracker(t *basis.CopyTracker) *Uniform {
	d0, d1 := u.BlockDims()
	out := NewBlock(rowExtents(u.Block), colExtents(u.Block))
	for i := 0; i < d0; i++ {
		for j := 0; j < d1; j++ {
			out.Set(i, j, cloneCellPreservingSharing(u.At(i, j), t), u.Position(i, j))
		}
	}
	return NewUniform(out)
}

func cloneCellPreservingSharing(m *matrix.Matrix, t *basis.CopyTracker) *matrix.Matrix {
	switch m.Kind() {
	case matrix.KindDense:
		return matrix.FromDense(m.Dense().Clone())
	case matrix.KindLowRank:
		lr := m.LowRank()
		u := t.Copy(lr.U())
		v := t.Copy(lr.V())
		return matrix.FromLowRank(lowrank.NewShared(u, lr.S().Clone(), v))
	default:
		h := m.Hierarchical()
		if nested, ok := h.(*Uniform); ok {
			return matrix.FromHierarchical(nested.cloneWithTracker(t))
		}
		if nested, ok := h.(*Block); ok {
			return matrix.FromHierarchical(NewUniform(nested).cloneWithTracker(t).Block)
		}
		return matrix.FromHierarchical(h.Clone())
	}
}

func rowExtents(b *Block) []int {
	d0, _ := b.BlockDims()
	out := make([]int, d0)
	for i := 0; i < d0; i++ {
		out[i] = b.RowExtent(i)
	}
	return out
}

func colExtents(b *Block) []int {
	_, d1 := b.BlockDims()
	out := make([]int, d1)
	for j := 0; j < d1; j++ {
		out[j] = b.ColExtent(j)
	}
	return out
}
