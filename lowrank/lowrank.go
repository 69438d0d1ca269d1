// Package lowrank implements the LowRank leaf of spec §3/§4.2 (C2): a
// U·S·V triple where U and V may be shared bases (spec §4.9) and S is
// always private.
package lowrank

import (
	"errors"
	"sync/atomic"

	"github.com/hmatrix-go/hmatrix/basis"
	"github.com/hmatrix-go/hmatrix/config"
	"github.com/hmatrix-go/hmatrix/dense"
	"github.com/hmatrix-go/hmatrix/internal/lapackx"
	"github.com/hmatrix-go/hmatrix/randomized"
)

// ErrRank reports a contract violation involving a LowRank's rank or
// shape (mismatched U/S/V ranks, or Add operands of different shapes).
// A target rank exceeding min(dim) is rejected by randomized.RSVD with
// its own panic, not with ErrRank.
var ErrRank = errors.New("lowrank: rank mismatch")

// LowRank is the m×n operator U·S·V, U∈ℝ^{m×r}, S∈ℝ^{r×r}, V∈ℝ^{r×n}.
type LowRank struct {
	u, v *basis.Basis
	s    *dense.Block
}

// New assembles a LowRank from its three factors, validating that the
// ranks agree (spec §3).
func New(u *dense.Block, s *dense.Block, v *dense.Block) *LowRank {
	return fromBases(basis.Private(u), s, basis.Private(v))
}

func fromBases(u *basis.Basis, s *dense.Block, v *basis.Basis) *LowRank {
	_, ru := u.Block().Dims()
	rs1, rs2 := s.Dims()
	rv, _ := v.Block().Dims()
	if ru != rs1 || rs1 != rs2 || rs2 != rv {
		panic(ErrRank)
	}
	return &LowRank{u: u, s: s, v: v}
}

// NewShared assembles a LowRank whose U and/or V are shared handles
// (spec §4.9, nested/shared basis), used by the hierarchical
// constructor's shared-basis mode.
func NewShared(u *basis.Basis, s *dense.Block, v *basis.Basis) *LowRank {
	return fromBases(u, s, v)
}

// FromDense builds a rank-k LowRank approximation of a via randomized
// SVD (spec §4.2). Truncation is hard: k is taken as given, with no
// error-tolerance stopping rule.
func FromDense(a *dense.Block, k int) *LowRank {
	u, s, v := randomized.RSVD(a, k)
	return New(u, s, v)
}

// Dims returns the represented operator's shape.
func (l *LowRank) Dims() (m, n int) {
	m, _ = l.u.Block().Dims()
	_, n = l.v.Block().Dims()
	return m, n
}

// Rank returns r.
func (l *LowRank) Rank() int {
	r, _ := l.s.Dims()
	return r
}

// U returns the column-basis handle.
func (l *LowRank) U() *basis.Basis { return l.u }

// V returns the row-basis handle.
func (l *LowRank) V() *basis.Basis { return l.v }

// S returns the (always private) inner factor.
func (l *LowRank) S() *dense.Block { return l.s }

// Densify computes U·S·V as a new Dense block (spec §4.2).
func (l *LowRank) Densify() *dense.Block {
	m, n := l.Dims()
	r := l.Rank()
	us := dense.New(m, r)
	dense.Gemm(1, l.u.Block(), l.s, 0, us)
	out := dense.New(m, n)
	dense.Gemm(1, us, l.v.Block(), 0, out)
	return out
}

// Clone returns a deep copy; U and V are decoupled (no longer
// shared), matching Matrix's "clone produces a deep copy" invariant
// (spec §3).
func (l *LowRank) Clone() *LowRank {
	return New(l.u.Block().Clone(), l.s.Clone(), l.v.Block().Clone())
}

// Scale multiplies S by alpha, leaving U and V untouched (spec §4.2,
// "scalar multiply").
func (l *LowRank) Scale(alpha float64) {
	l.s.Scale(alpha)
}

// T returns the transpose: U and V are transposed individually and
// swapped (spec §4.2).
func (l *LowRank) T() *LowRank {
	return New(l.v.Block().T(), l.s.T(), l.u.Block().T())
}

var additionCount atomic.Int64

// AdditionCount returns how many LowRank+LowRank recompressions have
// run since the last ResetAdditionCount, when the LR_ADDITION_COUNTER
// flag is enabled (spec §6, SPEC_FULL "Supplemented Features" #3).
func AdditionCount() int64 { return additionCount.Load() }

// ResetAdditionCount zeros the recompression counter.
func ResetAdditionCount() { additionCount.Store(0) }

func countRecompression() {
	if config.Get(config.LRAdditionCounter) != 0 {
		additionCount.Add(1)
	}
}

// Add computes l+other (spec §4.2, "Addition LR + LR"). If the
// combined rank would reach min(dim), it falls back to a dense
// recompression to rank l.Rank(); otherwise it merges the two bases
// and recompresses according to the LRA flag.
func Add(l, other *LowRank) *LowRank {
	if m1, n1 := l.Dims(); true {
		if m2, n2 := other.Dims(); m1 != m2 || n1 != n2 {
			panic(ErrRank)
		}
	}
	m, n := l.Dims()
	if l.Rank()+other.Rank() >= min(m, n) {
		countRecompression()
		sum := l.Densify()
		sum.Add(other.Densify())
		return FromDense(sum, l.Rank())
	}
	switch config.Get(config.LRA) {
	case config.LRANaive:
		return addNaive(l, other)
	case config.LRAOrthogonal:
		return addOrthogonal(l, other)
	default:
		return addOrthogonal(l, other)
	}
}

// addNaive recompresses the merged block-diagonal form by densifying
// it and taking a fresh randomized SVD (spec §4.2, LRA=0).
func addNaive(l, other *LowRank) *LowRank {
	countRecompression()
	merged := mergeBlockDiagonal(l, other)
	return FromDense(merged.Densify(), l.Rank())
}

// addOrthogonal recompresses via QR on the merged U and V followed by
// an SVD of the small inner block (spec §4.2, LRA=1/2, "orthogonal
// LRA"): equivalent to a rank-r truncated SVD of A+B to within rsvd
// accuracy.
func addOrthogonal(l, other *LowRank) *LowRank {
	countRecompression()
	merged := mergeBlockDiagonal(l, other)
	r := l.Rank()
	m, n := merged.Dims()

	qU, rU := randomized.QR(merged.u.Block())
	qV, rV := randomized.QR(merged.v.Block().T())

	rowsU, colsU := rU.Dims()
	rowsV, _ := rV.Dims()
	tmp := dense.New(rowsU, colsU)
	dense.Gemm(1, rU, merged.s, 0, tmp)
	small := dense.New(rowsU, rowsV)
	dense.Gemm(1, tmp, rV.T(), 0, small)

	uFull, sFull, vtFull, err := lapackx.SVD(small.RawGeneral())
	if err != nil {
		panic(err)
	}
	uSmall := dense.NewFromGeneral(uFull).View(0, 0, rowsU, r).Clone()
	vSmall := dense.NewFromGeneral(vtFull).View(0, 0, r, rowsV).Clone()
	sSmall := dense.New(r, r)
	for i := 0; i < r; i++ {
		sSmall.Set(i, i, sFull[i])
	}

	u := dense.New(m, r)
	dense.Gemm(1, qU, uSmall, 0, u)
	vt := dense.New(r, n)
	dense.Gemm(1, vSmall, qV.T(), 0, vt)
	return New(u, sSmall, vt)
}

func mergeBlockDiagonal(l, other *LowRank) *LowRank {
	u := mergeU(l, other)
	s := mergeS(l, other)
	v := mergeV(l, other)
	return New(u, s, v)
}

// mergeU constructs [U_A | U_B] side by side (spec §4.2).
func mergeU(l, other *LowRank) *dense.Block {
	m, _ := l.Dims()
	ra, rb := l.Rank(), other.Rank()
	out := dense.New(m, ra+rb)
	for i := 0; i < m; i++ {
		for j := 0; j < ra; j++ {
			out.Set(i, j, l.u.Block().At(i, j))
		}
		for j := 0; j < rb; j++ {
			out.Set(i, ra+j, other.u.Block().At(i, j))
		}
	}
	return out
}

// mergeV constructs [V_A; V_B] stacked (spec §4.2).
func mergeV(l, other *LowRank) *dense.Block {
	_, n := l.Dims()
	ra, rb := l.Rank(), other.Rank()
	out := dense.New(ra+rb, n)
	for j := 0; j < n; j++ {
		for i := 0; i < ra; i++ {
			out.Set(i, j, l.v.Block().At(i, j))
		}
		for i := 0; i < rb; i++ {
			out.Set(ra+i, j, other.v.Block().At(i, j))
		}
	}
	return out
}

// mergeS constructs the block-diagonal inner factor with off-block
// entries exactly zero (spec §4.2).
func mergeS(l, other *LowRank) *dense.Block {
	ra, rb := l.Rank(), other.Rank()
	out := dense.New(ra+rb, ra+rb)
	for i := 0; i < ra; i++ {
		for j := 0; j < ra; j++ {
			out.Set(i, j, l.s.At(i, j))
		}
	}
	for i := 0; i < rb; i++ {
		for j := 0; j < rb; j++ {
			out.Set(ra+i, ra+j, other.s.At(i, j))
		}
	}
	return out
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
