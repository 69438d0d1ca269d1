package hierarchical

import (
	"github.com/hmatrix-go/hmatrix/basis"
	"github.com/hmatrix-go/hmatrix/cluster"
	"github.com/hmatrix-go/hmatrix/dense"
	"github.com/hmatrix-go/hmatrix/lowrank"
	"github.com/hmatrix-go/hmatrix/matrix"
	"github.com/hmatrix-go/hmatrix/randomized"
)

// BasisMode selects between a fresh basis per admissible block and a
// basis shared across every admissible block in the same block-row
// (resp. block-column) — spec §4.5, "Normal basis" / "Shared basis",
// and §6's NORMAL/SHARED construction parameter.
type BasisMode int

const (
	NormalBasis BasisMode = iota
	SharedBasis
)

// Builder holds the construction-time parameters spec §4.5's build
// algorithm needs: the entry kernel, the admissibility predicate, the
// target compression rank, and (in SharedBasis mode) the row/column
// basis trackers (spec §4.9, C9).
type Builder struct {
	Kernel        dense.Kernel
	Admissibility cluster.Admissibility
	Rank          int
	Mode          BasisMode

	colBasis *basis.RangeTracker // keyed by row IndexRange
	rowBasis *basis.RangeTracker // keyed by column IndexRange
}

// NewBuilder returns a Builder ready for Build. In SharedBasis mode it
// owns its own pair of trackers, cleared at the end of each Build call
// (spec §4.9, "cleared at well-defined phase boundaries").
func NewBuilder(kernel dense.Kernel, admis cluster.Admissibility, rank int, mode BasisMode) *Builder {
	return &Builder{
		Kernel: kernel, Admissibility: admis, Rank: rank, Mode: mode,
		colBasis: basis.NewRangeTracker(), rowBasis: basis.NewRangeTracker(),
	}
}

// Build partitions rows×cols into a d0×d1 cluster tree (leaf size
// nleaf) and recursively constructs the Hierarchical representation
// via spec §4.5's build algorithm.
func (bd *Builder) Build(rows, cols cluster.IndexRange, d0, d1, nleaf int) *Block {
	root := cluster.New(rows, cols, d0, d1, nleaf)
	out := bd.buildNode(root)
	bd.colBasis.Clear()
	bd.rowBasis.Clear()
	return out
}

func (bd *Builder) buildNode(node *cluster.Tree) *Block {
	children := node.Children()
	d0 := len(children)
	d1 := len(children[0])

	rowN := make([]int, d0)
	for i := 0; i < d0; i++ {
		rowN[i] = children[i][0].Rows.N
	}
	colN := make([]int, d1)
	for j := 0; j < d1; j++ {
		colN[j] = children[0][j].Cols.N
	}

	admis := make([][]bool, d0)
	var wideRow, wideCol map[int]*dense.Block
	if bd.Mode == SharedBasis {
		wideRow = map[int]*dense.Block{}
		wideCol = map[int]*dense.Block{}
	}
	for i := 0; i < d0; i++ {
		admis[i] = make([]bool, d1)
		for j := 0; j < d1; j++ {
			admis[i][j] = bd.Admissibility.IsAdmissible(children[i][j])
			if admis[i][j] && bd.Mode == SharedBasis {
				bd.accumulateWide(wideRow, wideCol, children[i][j], i, j)
			}
		}
	}

	out := NewBlock(rowN, colN)
	for i := 0; i < d0; i++ {
		for j := 0; j < d1; j++ {
			c := children[i][j]
			p := Position{RelRow: c.RelPos[0], RelCol: c.RelPos[1], AbsRowStart: c.Rows.Start, AbsColStart: c.Cols.Start, Level: c.Level}
			var m *matrix.Matrix
			switch {
			case admis[i][j]:
				m = matrix.FromLowRank(bd.compressed(c, i, j, wideRow, wideCol))
			case c.IsLeaf():
				m = matrix.FromDense(bd.dense(c))
			default:
				m = matrix.FromHierarchical(bd.buildNode(c))
			}
			out.Set(i, j, m, p)
		}
	}
	return out
}

func (bd *Builder) dense(c *cluster.Tree) *dense.Block {
	d := dense.New(c.Rows.N, c.Cols.N)
	d.Fill(bd.Kernel, c.Rows.Start, c.Cols.Start)
	return d
}

// accumulateWide appends c's dense block into the running block-row
// concatenation (keyed by grid row i) and block-column concatenation
// (keyed by grid column j), the "assemble the block-row (resp.
// block-column) of admissible blocks" step of spec §4.5.
func (bd *Builder) accumulateWide(wideRow, wideCol map[int]*dense.Block, c *cluster.Tree, i, j int) {
	d := bd.dense(c)
	if cur, ok := wideRow[i]; ok {
		wideRow[i] = hconcat(cur, d)
	} else {
		wideRow[i] = d
	}
	if cur, ok := wideCol[j]; ok {
		wideCol[j] = vconcat(cur, d)
	} else {
		wideCol[j] = d
	}
}

func hconcat(a, b *dense.Block) *dense.Block {
	ar, ac := a.Dims()
	_, bc := b.Dims()
	out := dense.New(ar, ac+bc)
	for i := 0; i < ar; i++ {
		for j := 0; j < ac; j++ {
			out.Set(i, j, a.At(i, j))
		}
		for j := 0; j < bc; j++ {
			out.Set(i, ac+j, b.At(i, j))
		}
	}
	return out
}

func vconcat(a, b *dense.Block) *dense.Block {
	ar, ac := a.Dims()
	br, _ := b.Dims()
	out := dense.New(ar+br, ac)
	for i := 0; i < ar; i++ {
		for j := 0; j < ac; j++ {
			out.Set(i, j, a.At(i, j))
		}
	}
	for i := 0; i < br; i++ {
		for j := 0; j < ac; j++ {
			out.Set(ar+i, j, b.At(i, j))
		}
	}
	return out
}

// compressed builds the LowRank representation of admissible child c
// (spec §4.5, "get_compressed_representation"). In NormalBasis mode it
// runs RSVD directly on the block; in SharedBasis mode it reuses (or
// computes and caches) a column basis keyed by c's row range and a row
// basis keyed by c's column range, then sets S = Uᵀ·A(c)·Vᵀ.
func (bd *Builder) compressed(c *cluster.Tree, i, j int, wideRow, wideCol map[int]*dense.Block) *lowrank.LowRank {
	if bd.Mode == NormalBasis {
		return lowrank.FromDense(bd.dense(c), bd.Rank)
	}

	rank := bd.Rank
	u := bd.colBasis.GetOrStore(c.Rows, func() *dense.Block {
		colU, _, _ := randomized.RSVD(wideRow[i], rank)
		return colU
	})
	v := bd.rowBasis.GetOrStore(c.Cols, func() *dense.Block {
		rowU, _, _ := randomized.RSVD(wideCol[j].T(), rank)
		return rowU.T()
	})

	a := bd.dense(c)
	m, _ := a.Dims()
	av := dense.New(m, rank)
	dense.Gemm(1, a, v.Block().T(), 0, av)
	s := dense.New(rank, rank)
	dense.Gemm(1, u.Block().T(), av, 0, s)

	return lowrank.NewShared(u, s, v)
}
