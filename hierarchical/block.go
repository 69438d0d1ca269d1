// Package hierarchical implements the Hierarchical block (spec §4.4,
// C4): a 2-D grid of Matrix proxies, its construction from a kernel
// via cluster+randomized (spec §4.5), the Uniform shared-basis
// variant, and the non-owning re-blocking View (spec §9's Open
// Question, resolved in SPEC_FULL.md).
package hierarchical

import (
	"errors"
	"math"

	"github.com/hmatrix-go/hmatrix/matrix"
)

// ErrShape reports a contract violation in a Hierarchical block's grid
// (mismatched row/column counts across a block-row or block-column).
var ErrShape = errors.New("hierarchical: shape mismatch")

// Position records a child's placement within its parent grid (spec
// §3, "child (i,j) carries its position in the parent").
type Position struct {
	RelRow, RelCol           int
	AbsRowStart, AbsColStart int
	Level                    int
}

// Block is a d0×d1 grid of Matrix proxies (spec §4.4). All cells in
// row i share a row-count; all cells in column j share a column-count.
type Block struct {
	cells [][]*matrix.Matrix
	pos   [][]Position
	rowN  []int
	colN  []int
}

// NewBlock allocates an empty d0×d1 grid with the given per-row and
// per-column extents. Cells must be filled with Set before use.
func NewBlock(rowN, colN []int) *Block {
	d0, d1 := len(rowN), len(colN)
	cells := make([][]*matrix.Matrix, d0)
	pos := make([][]Position, d0)
	for i := range cells {
		cells[i] = make([]*matrix.Matrix, d1)
		pos[i] = make([]Position, d1)
	}
	return &Block{cells: cells, pos: pos, rowN: append([]int(nil), rowN...), colN: append([]int(nil), colN...)}
}

// BlockDims returns the grid shape (d0, d1).
func (b *Block) BlockDims() (d0, d1 int) { return len(b.rowN), len(b.colN) }

// Dims returns the total row and column counts (spec §4.3, "forwarded
// get_n_rows, get_n_cols").
func (b *Block) Dims() (rows, cols int) {
	for _, n := range b.rowN {
		rows += n
	}
	for _, n := range b.colN {
		cols += n
	}
	return rows, cols
}

// RowExtent returns the row-count of block-row i.
func (b *Block) RowExtent(i int) int { return b.rowN[i] }

// ColExtent returns the column-count of block-column j.
func (b *Block) ColExtent(j int) int { return b.colN[j] }

// At returns the (i,j) cell (spec §4.4, "(i,j) indexing returns
// Matrix proxy").
func (b *Block) At(i, j int) *matrix.Matrix { return b.cells[i][j] }

// Set assigns the (i,j) cell and its position metadata.
func (b *Block) Set(i, j int, m *matrix.Matrix, p Position) {
	b.cells[i][j] = m
	b.pos[i][j] = p
}

// Position returns the (i,j) cell's recorded placement.
func (b *Block) Position(i, j int) Position { return b.pos[i][j] }

// Row returns block-row i as a slice of cells, left to right (spec
// §4.4, "[k] for row/column vectors").
func (b *Block) Row(i int) []*matrix.Matrix { return b.cells[i] }

// Column returns block-column j as a slice of cells, top to bottom.
func (b *Block) Column(j int) []*matrix.Matrix {
	d0, _ := b.BlockDims()
	out := make([]*matrix.Matrix, d0)
	for i := 0; i < d0; i++ {
		out[i] = b.cells[i][j]
	}
	return out
}

// Norm sums squared Frobenius norms of every leaf (spec §4.7, "Norm").
func (b *Block) Norm() float64 {
	var sumSq float64
	d0, d1 := b.BlockDims()
	for i := 0; i < d0; i++ {
		for j := 0; j < d1; j++ {
			n := b.cells[i][j].Norm()
			sumSq += n * n
		}
	}
	return math.Sqrt(sumSq)
}

// Clone deep-copies every cell (spec §4.4, "copy constructor that
// deep-copies children"). This plain Clone does not preserve
// cross-cell basis sharing; use Uniform.Clone for that (spec §4.9).
func (b *Block) Clone() matrix.Hierarchical { return b.cloneBlock() }

func (b *Block) cloneBlock() *Block {
	d0, d1 := b.BlockDims()
	out := NewBlock(b.rowN, b.colN)
	for i := 0; i < d0; i++ {
		for j := 0; j < d1; j++ {
			out.Set(i, j, b.cells[i][j].Clone(), b.pos[i][j])
		}
	}
	return out
}

// Transpose transposes the grid and each sub-block (spec §4.7,
// "Hierarchical transpose transposes the grid and each sub-block").
func (b *Block) Transpose() matrix.Hierarchical { return b.transposeBlock() }

func (b *Block) transposeBlock() *Block {
	d0, d1 := b.BlockDims()
	out := NewBlock(b.colN, b.rowN)
	for i := 0; i < d0; i++ {
		for j := 0; j < d1; j++ {
			p := b.pos[i][j]
			tp := Position{RelRow: p.RelCol, RelCol: p.RelRow, AbsRowStart: p.AbsColStart, AbsColStart: p.AbsRowStart, Level: p.Level}
			out.Set(j, i, b.cells[i][j].Transpose(), tp)
		}
	}
	return out
}
