// Package matrix implements the Matrix proxy (spec §4.3, C3): a
// closed tagged-variant handle over {Dense, LowRank, Hierarchical},
// the universal argument and return type of every operation in
// package ops. The hierarchical package imports matrix for its grid
// cells; matrix does not import hierarchical back (it holds
// Hierarchical blocks behind an interface to avoid the cycle — see
// DESIGN.md).
package matrix

import (
	"fmt"

	"github.com/hmatrix-go/hmatrix/dense"
	"github.com/hmatrix-go/hmatrix/lowrank"
)

// Kind tags which of the three variants a Matrix currently holds.
type Kind int

// The closed set of variants (spec §3, "exactly one of the three
// variants inside").
const (
	KindDense Kind = iota
	KindLowRank
	KindHierarchical
)

func (k Kind) String() string {
	switch k {
	case KindDense:
		return "Dense"
	case KindLowRank:
		return "LowRank"
	case KindHierarchical:
		return "Hierarchical"
	default:
		return "unknown"
	}
}

// Hierarchical is the subset of hierarchical.Block/Uniform/View
// behavior the proxy needs. Defined here (rather than importing the
// hierarchical package) to keep matrix free of a dependency cycle,
// since hierarchical's grid cells are themselves Matrix proxies.
type Hierarchical interface {
	Dims() (rows, cols int)
	Norm() float64
	Clone() Hierarchical
	Transpose() Hierarchical
}

// Matrix is the owning handle described in spec §4.3: never nil after
// construction, exactly one variant populated.
type Matrix struct {
	kind   Kind
	dense  *dense.Block
	lr     *lowrank.LowRank
	hier   Hierarchical
}

// FromDense wraps a Dense block as a Matrix.
func FromDense(b *dense.Block) *Matrix { return &Matrix{kind: KindDense, dense: b} }

// FromLowRank wraps a LowRank block as a Matrix.
func FromLowRank(l *lowrank.LowRank) *Matrix { return &Matrix{kind: KindLowRank, lr: l} }

// FromHierarchical wraps a Hierarchical block as a Matrix.
func FromHierarchical(h Hierarchical) *Matrix { return &Matrix{kind: KindHierarchical, hier: h} }

// Kind reports which variant is populated.
func (m *Matrix) Kind() Kind { return m.kind }

// Dense returns the wrapped Dense block. Panics if Kind() != KindDense.
func (m *Matrix) Dense() *dense.Block {
	m.mustBe(KindDense)
	return m.dense
}

// LowRank returns the wrapped LowRank block. Panics if Kind() != KindLowRank.
func (m *Matrix) LowRank() *lowrank.LowRank {
	m.mustBe(KindLowRank)
	return m.lr
}

// Hierarchical returns the wrapped Hierarchical block. Panics if
// Kind() != KindHierarchical.
func (m *Matrix) Hierarchical() Hierarchical {
	m.mustBe(KindHierarchical)
	return m.hier
}

func (m *Matrix) mustBe(k Kind) {
	if m.kind != k {
		panic(fmt.Sprintf("matrix: variant is %s, not %s", m.kind, k))
	}
}

// Dims forwards to the wrapped variant (spec §4.3, "forwarded
// get_n_rows, get_n_cols").
func (m *Matrix) Dims() (rows, cols int) {
	switch m.kind {
	case KindDense:
		return m.dense.Dims()
	case KindLowRank:
		return m.lr.Dims()
	default:
		return m.hier.Dims()
	}
}

// Norm forwards to the wrapped variant (spec §4.7, "Norm").
func (m *Matrix) Norm() float64 {
	switch m.kind {
	case KindDense:
		return m.dense.Norm()
	case KindLowRank:
		return m.lr.Densify().Norm()
	default:
		return m.hier.Norm()
	}
}

// Clone returns a deep copy of the variant's own state. A LowRank clone
// gets private copies of U and V, so a basis it shared with other blocks
// is no longer shared with them. A Hierarchical clone is the variant's
// own Clone: hierarchical.Uniform keeps shared bases shared among the
// copied cells, a plain hierarchical.Block does not.
func (m *Matrix) Clone() *Matrix {
	switch m.kind {
	case KindDense:
		return FromDense(m.dense.Clone())
	case KindLowRank:
		return FromLowRank(m.lr.Clone())
	default:
		return FromHierarchical(m.hier.Clone())
	}
}

// SetDense replaces m's contents with b, changing its Kind to
// KindDense if necessary. Used by package ops when an operation's
// result variant differs from its accumulator's current variant (spec
// §4.7, e.g. the D,D,L gemm rule densifies then recompresses, but
// D,D,D just mutates the existing Dense accumulator in place without
// ever calling this).
func (m *Matrix) SetDense(b *dense.Block) {
	m.kind, m.dense, m.lr, m.hier = KindDense, b, nil, nil
}

// SetLowRank replaces m's contents with l.
func (m *Matrix) SetLowRank(l *lowrank.LowRank) {
	m.kind, m.dense, m.lr, m.hier = KindLowRank, nil, l, nil
}

// SetHierarchical replaces m's contents with h.
func (m *Matrix) SetHierarchical(h Hierarchical) {
	m.kind, m.dense, m.lr, m.hier = KindHierarchical, nil, nil, h
}

// Transpose returns the transpose of m, preserving variant.
func (m *Matrix) Transpose() *Matrix {
	switch m.kind {
	case KindDense:
		return FromDense(m.dense.T())
	case KindLowRank:
		return FromLowRank(m.lr.T())
	default:
		return FromHierarchical(m.hier.Transpose())
	}
}
