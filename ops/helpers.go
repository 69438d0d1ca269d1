package ops

import (
	"github.com/hmatrix-go/hmatrix/dense"
	"github.com/hmatrix-go/hmatrix/hierarchical"
	"github.com/hmatrix-go/hmatrix/matrix"
)

// densify returns m's Dense leaf, densifying a LowRank operand first
// if needed (spec §4.7's D±L addition rule: "densify L, elementwise").
func densify(m *matrix.Matrix) *dense.Block {
	if m.Kind() == matrix.KindLowRank {
		return m.LowRank().Densify()
	}
	return m.Dense()
}

func newBlockLike(rowN, colN []int) *hierarchical.Block {
	return hierarchical.NewBlock(rowN, colN)
}
