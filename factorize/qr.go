package factorize

import (
	"github.com/hmatrix-go/hmatrix/dense"
	"github.com/hmatrix-go/hmatrix/hierarchical"
	"github.com/hmatrix-go/hmatrix/matrix"
	"github.com/hmatrix-go/hmatrix/ops"
)

// QR holds the state left behind by BlockQR: the mutated operand grid
// (each diagonal/sub-diagonal block now carries Householder vectors in
// place of its original entries, as Geqrt/Tpqrt leave them) and the T
// factors threaded through the BLR-TSQR driver. R and Q materialize
// the two explicit factors on demand.
type QR struct {
	a          grid
	t          [][]*matrix.Matrix
	d0, d1     int
	rowN, colN []int
}

// BlockQR factors a via the panel-and-eliminate BLR-TSQR driver of
// spec §4.8: block column k's diagonal is factored with Geqrt, every
// block to its right updated with Larfb, then every block below the
// diagonal eliminated against it with Tpqrt and the elimination
// propagated right with Tpmqrt. a may be Hierarchical with any
// rectangular block grid, or a single Dense leaf (the trivial
// single-panel case).
func BlockQR(a *matrix.Matrix) *QR {
	var g grid
	if a.Kind() == matrix.KindDense {
		rows, cols := a.Dims()
		g = hierarchical.NewView(a, []int{rows}, []int{cols})
	} else {
		g = asGrid(a.Hierarchical())
	}
	d0, d1 := g.BlockDims()
	t := make([][]*matrix.Matrix, d0)
	for i := range t {
		t[i] = make([]*matrix.Matrix, d1)
	}

	panels := d0
	if d1 < panels {
		panels = d1
	}
	for k := 0; k < panels; k++ {
		t[k][k] = ops.Geqrt(g.At(k, k))
		for j := k + 1; j < d1; j++ {
			ops.Larfb(g.At(k, k), t[k][k], ensureDense(g.At(k, j)), true)
		}
		for i := k + 1; i < d0; i++ {
			t[i][k] = ops.Tpqrt(g.At(k, k), ensureDense(g.At(i, k)))
			for j := k + 1; j < d1; j++ {
				ops.Tpmqrt(g.At(i, k), t[i][k], g.At(k, j), ensureDense(g.At(i, j)), true)
			}
		}
	}
	return &QR{a: g, t: t, d0: d0, d1: d1, rowN: rowExtents(g), colN: colExtents(g)}
}

// ensureDense materializes m's contents as Dense in place when it
// currently holds a LowRank variant, mutating the grid cell m points
// at (At returns the grid's own stored pointer, so SetDense here is
// visible to every later At call on the same (i,j)). The TSQR
// primitives (geqrt/larfb/tpqrt/tpmqrt) are defined on Dense leaves
// only; BLR off-diagonal blocks start out compressed, so the driver
// densifies each one the first time a reflector touches it.
func ensureDense(m *matrix.Matrix) *matrix.Matrix {
	if m.Kind() == matrix.KindLowRank {
		m.SetDense(m.LowRank().Densify())
	}
	return m
}

// R returns the upper block-triangular factor: strictly-lower blocks
// are zero, diagonal blocks have their strictly-lower triangle zeroed
// (spec §4.8's zero_lowtri/zero_whole cleanup), everything else is the
// factored operand's (unchanged) upper content.
func (f *QR) R() *matrix.Matrix {
	out := hierarchical.NewBlock(f.rowN, f.colN)
	for i := 0; i < f.d0; i++ {
		for j := 0; j < f.d1; j++ {
			switch {
			case i > j:
				out.Set(i, j, zeroMatrix(f.rowN[i], f.colN[j]), hierarchical.Position{})
			case i == j:
				d := f.a.At(i, j).Dense().Clone()
				d.ZeroLowerTriangle()
				out.Set(i, j, matrix.FromDense(d), hierarchical.Position{})
			default:
				out.Set(i, j, f.a.At(i, j).Clone(), hierarchical.Position{})
			}
		}
	}
	return matrix.FromHierarchical(out)
}

// Q reconstructs the explicit orthogonal factor by applying the
// stored reflectors, in reverse panel order, to the identity (spec
// §4.8: "Q is reconstructed, when required, by applying the
// reflectors in reverse to the identity").
func (f *QR) Q() *matrix.Matrix {
	q := hierarchical.NewBlock(f.rowN, f.rowN)
	for i := 0; i < f.d0; i++ {
		for j := 0; j < f.d0; j++ {
			if i == j {
				q.Set(i, j, matrix.FromDense(dense.Identity(f.rowN[i])), hierarchical.Position{})
			} else {
				q.Set(i, j, zeroMatrix(f.rowN[i], f.rowN[j]), hierarchical.Position{})
			}
		}
	}

	panels := f.d0
	if f.d1 < panels {
		panels = f.d1
	}
	for k := panels - 1; k >= 0; k-- {
		for i := f.d0 - 1; i > k; i-- {
			for j := 0; j < f.d0; j++ {
				ops.Tpmqrt(f.a.At(i, k), f.t[i][k], q.At(k, j), q.At(i, j), false)
			}
		}
		for j := 0; j < f.d0; j++ {
			ops.Larfb(f.a.At(k, k), f.t[k][k], q.At(k, j), false)
		}
	}
	return matrix.FromHierarchical(q)
}
