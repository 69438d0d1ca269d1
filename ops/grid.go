package ops

import (
	"github.com/hmatrix-go/hmatrix/hierarchical"
	"github.com/hmatrix-go/hmatrix/matrix"
)

// grid is the block-grid surface every Hierarchical concrete type
// (hierarchical.Block, hierarchical.Uniform, hierarchical.View) shares
// structurally; ops works against it instead of importing each
// concrete type individually.
type grid interface {
	BlockDims() (d0, d1 int)
	At(i, j int) *matrix.Matrix
	RowExtent(i int) int
	ColExtent(j int) int
}

func asGrid(h matrix.Hierarchical) grid {
	g, ok := h.(grid)
	if !ok {
		contractViolation("grid", "hierarchical operand exposes no block grid")
	}
	return g
}

// toGrid re-blocks a Dense/LowRank operand into a View conforming to
// rowN/colN, or returns its existing grid if it is already
// Hierarchical (spec §9's Open Question — this engine always
// re-blocks via a view, never a materialized copy).
func toGrid(m *matrix.Matrix, rowN, colN []int) grid {
	if m.Kind() == matrix.KindHierarchical {
		return asGrid(m.Hierarchical())
	}
	return hierarchical.NewView(m, rowN, colN)
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

// conformGrids derives the row/column/contraction block partitions a
// Gemm or Trsm needs from whichever of a, b, c is already
// Hierarchical, and re-blocks the rest to match (spec §4.7, the
// generic "re-block the Dense/LowRank operand" rule applied
// uniformly).
func conformGrids(a, b, c *matrix.Matrix) (ga, gb grid, rowN, colN []int) {
	aH := a.Kind() == matrix.KindHierarchical
	bH := b.Kind() == matrix.KindHierarchical
	cH := c.Kind() == matrix.KindHierarchical

	var midN []int
	switch {
	case aH:
		rowN = rowExtents(asGrid(a.Hierarchical()))
	case cH:
		rowN = rowExtents(asGrid(c.Hierarchical()))
	default:
		m, _ := a.Dims()
		rowN = []int{m}
	}
	switch {
	case bH:
		colN = colExtents(asGrid(b.Hierarchical()))
	case cH:
		colN = colExtents(asGrid(c.Hierarchical()))
	default:
		_, n := b.Dims()
		colN = []int{n}
	}
	switch {
	case aH:
		midN = colExtents(asGrid(a.Hierarchical()))
	case bH:
		midN = rowExtents(asGrid(b.Hierarchical()))
	default:
		_, k := a.Dims()
		midN = []int{k}
	}
	ga = toGrid(a, rowN, midN)
	gb = toGrid(b, midN, colN)
	return ga, gb, rowN, colN
}
