package ops

import (
	"github.com/hmatrix-go/hmatrix/hierarchical"
	"github.com/hmatrix-go/hmatrix/lowrank"
	"github.com/hmatrix-go/hmatrix/matrix"
)

// Scale multiplies m by alpha in place (spec §4.7's "*=" row):
// Dense scales every element, LowRank scales only S, Hierarchical
// recurses over its grid.
func Scale(m *matrix.Matrix, alpha float64) {
	switch m.Kind() {
	case matrix.KindDense:
		m.Dense().Scale(alpha)
	case matrix.KindLowRank:
		m.LowRank().Scale(alpha)
	default:
		g := asGrid(m.Hierarchical())
		d0, d1 := g.BlockDims()
		for i := 0; i < d0; i++ {
			for j := 0; j < d1; j++ {
				Scale(g.At(i, j), alpha)
			}
		}
	}
}

func scaledClone(m *matrix.Matrix, alpha float64) *matrix.Matrix {
	out := m.Clone()
	Scale(out, alpha)
	return out
}

// Add returns a+b (spec §4.7's addition dispatch): D±D elementwise,
// D±L densifies the LowRank operand first, L±L merge-adds (§4.2),
// H±H is elementwise over a matching grid. Mixed Hierarchical with a
// non-Hierarchical operand is undefined; re-block first.
func Add(a, b *matrix.Matrix) *matrix.Matrix {
	aH := a.Kind() == matrix.KindHierarchical
	bH := b.Kind() == matrix.KindHierarchical
	if aH != bH {
		undefinedTriple("add", a, b, a)
	}
	if aH {
		return addHH(a, b)
	}
	if a.Kind() == matrix.KindLowRank && b.Kind() == matrix.KindLowRank {
		return matrix.FromLowRank(lowrank.Add(a.LowRank(), b.LowRank()))
	}
	ad, bd := densify(a), densify(b)
	out := ad.Clone()
	out.Add(bd)
	return matrix.FromDense(out)
}

func addHH(a, b *matrix.Matrix) *matrix.Matrix {
	ga, gb := asGrid(a.Hierarchical()), asGrid(b.Hierarchical())
	d0, d1 := ga.BlockDims()
	bd0, bd1 := gb.BlockDims()
	if d0 != bd0 || d1 != bd1 {
		contractViolation("add", "Hierarchical grid shapes disagree")
	}
	rowN, colN := rowExtents(ga), colExtents(ga)
	out := newBlockLike(rowN, colN)
	for i := 0; i < d0; i++ {
		for j := 0; j < d1; j++ {
			out.Set(i, j, Add(ga.At(i, j), gb.At(i, j)), hierarchical.Position{})
		}
	}
	return matrix.FromHierarchical(out)
}

// Sub returns a-b, implemented as a + (-1)·b so it shares Add's
// dispatch and grid-shape checks.
func Sub(a, b *matrix.Matrix) *matrix.Matrix {
	return Add(a, scaledClone(b, -1))
}

// Transpose returns the transpose of m, preserving variant (spec
// §4.7, "Transpose").
func Transpose(m *matrix.Matrix) *matrix.Matrix { return m.Transpose() }

// Norm returns the Frobenius norm of m (spec §4.7, "Norm": Dense sums
// squared entries, LowRank densifies first for correctness over
// speed, Hierarchical sums children's squared norms).
func Norm(m *matrix.Matrix) float64 { return m.Norm() }

// Resize reallocates a Dense operand's storage (spec §4.1); only
// defined for Dense, since LowRank and Hierarchical have no single
// "stride" to resize against their own representation.
func Resize(m *matrix.Matrix, rows, cols int) {
	if m.Kind() != matrix.KindDense {
		contractViolation("resize", "only defined for a Dense operand")
	}
	m.Dense().Resize(rows, cols)
}
