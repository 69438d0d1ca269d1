// Package dense implements the engine's Dense leaf (spec §3, §4.1):
// a contiguous row-major block with stride, optional sub-view
// semantics over a parent's storage, and thin wrappers over the
// BLAS-3/LAPACK primitives it bottoms out in. It is grounded on
// gonum's mat.Dense/blas64.General view idiom, reimplemented as its
// own type so the three-variant dispatch table of ops stays closed
// and exhaustive (spec Design Notes, "closed variant vs virtual
// dispatch").
//
// Sub-views share the parent's underlying slice directly; because the
// Go runtime keeps a backing array alive for as long as any slice
// refers into it, no explicit reference counting is needed here (a
// simplification over the original's explicit refcounted buffer
// handle — see DESIGN.md).
package dense

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/blas"
	"gonum.org/v1/gonum/blas/blas64"

	"github.com/hmatrix-go/hmatrix/internal/lapackx"
)

// ErrShape reports a contract violation: an operation's operands do
// not have the shapes it requires (spec §7, "Contract violation").
var ErrShape = errors.New("dense: shape mismatch")

// Block is a dense m×n matrix stored row-major with stride s >= n.
// The zero Block is not usable; construct one with New.
type Block struct {
	mat blas64.General
}

// New allocates a zeroed rows×cols Block.
func New(rows, cols int) *Block {
	if rows < 0 || cols < 0 {
		panic(ErrShape)
	}
	return &Block{mat: blas64.General{Rows: rows, Cols: cols, Stride: cols, Data: make([]float64, rows*cols)}}
}

// NewFromGeneral wraps an existing blas64.General without copying,
// for callers that already hold BLAS-shaped storage (e.g. the result
// of a lapackx factorization).
func NewFromGeneral(g blas64.General) *Block {
	return &Block{mat: g}
}

// Identity allocates an n×n identity Block.
func Identity(n int) *Block {
	b := New(n, n)
	for i := 0; i < n; i++ {
		b.Set(i, i, 1)
	}
	return b
}

// Dims returns the block's row and column counts.
func (b *Block) Dims() (rows, cols int) { return b.mat.Rows, b.mat.Cols }

// RawGeneral exposes the underlying blas64.General descriptor for
// direct BLAS/LAPACK calls elsewhere in the engine (ops, randomized).
func (b *Block) RawGeneral() blas64.General { return b.mat }

// At returns the (i,j) element.
func (b *Block) At(i, j int) float64 {
	b.checkIndex(i, j)
	return b.mat.Data[i*b.mat.Stride+j]
}

// Set assigns the (i,j) element.
func (b *Block) Set(i, j int, v float64) {
	b.checkIndex(i, j)
	b.mat.Data[i*b.mat.Stride+j] = v
}

func (b *Block) checkIndex(i, j int) {
	if i < 0 || i >= b.mat.Rows || j < 0 || j >= b.mat.Cols {
		panic(ErrShape)
	}
}

// View returns a Block that shares storage with the i0..i0+rows,
// j0..j0+cols rectangle of b. Mutating the view mutates b.
func (b *Block) View(i0, j0, rows, cols int) *Block {
	if i0 < 0 || j0 < 0 || rows < 0 || cols < 0 || i0+rows > b.mat.Rows || j0+cols > b.mat.Cols {
		panic(ErrShape)
	}
	start := i0*b.mat.Stride + j0
	end := (i0+rows-1)*b.mat.Stride + j0 + cols
	if rows == 0 {
		end = start
	}
	return &Block{mat: blas64.General{
		Rows: rows, Cols: cols, Stride: b.mat.Stride,
		Data: b.mat.Data[start:end],
	}}
}

// Clone returns a compacted deep copy of b.
func (b *Block) Clone() *Block {
	out := New(b.mat.Rows, b.mat.Cols)
	out.CopyFrom(b)
	return out
}

// CopyFrom overwrites b's elements with src's. b and src must have
// identical dimensions.
func (b *Block) CopyFrom(src *Block) {
	if b.mat.Rows != src.mat.Rows || b.mat.Cols != src.mat.Cols {
		panic(ErrShape)
	}
	for i := 0; i < b.mat.Rows; i++ {
		copy(b.mat.Data[i*b.mat.Stride:i*b.mat.Stride+b.mat.Cols], src.mat.Data[i*src.mat.Stride:i*src.mat.Stride+src.mat.Cols])
	}
}

// Resize reallocates b to rows×cols. Existing contents are not
// preserved; callers that need the overlapping rectangle kept must
// copy it out first (spec §4.1).
func (b *Block) Resize(rows, cols int) {
	if rows < 0 || cols < 0 {
		panic(ErrShape)
	}
	b.mat = blas64.General{Rows: rows, Cols: cols, Stride: cols, Data: make([]float64, rows*cols)}
}

// Kernel fills a rows×cols block of data (row-major, given stride)
// starting at global offset (rowStart, colStart). Kernels close over
// whatever point set or analytic form they evaluate (spec §6).
type Kernel func(rows, cols, stride int, data []float64, rowStart, colStart int)

// Fill evaluates kernel over b's full extent, with the supplied
// global start offsets (used by kernels that index into a shared
// point set, e.g. laplace1d).
func (b *Block) Fill(kernel Kernel, rowStart, colStart int) {
	kernel(b.mat.Rows, b.mat.Cols, b.mat.Stride, b.mat.Data, rowStart, colStart)
}

// Scale multiplies every element of b by alpha.
func (b *Block) Scale(alpha float64) {
	for i := 0; i < b.mat.Rows; i++ {
		row := b.mat.Data[i*b.mat.Stride : i*b.mat.Stride+b.mat.Cols]
		for j := range row {
			row[j] *= alpha
		}
	}
}

// Add sets b := b + other. Dimensions must match.
func (b *Block) Add(other *Block) {
	if b.mat.Rows != other.mat.Rows || b.mat.Cols != other.mat.Cols {
		panic(ErrShape)
	}
	for i := 0; i < b.mat.Rows; i++ {
		brow := b.mat.Data[i*b.mat.Stride : i*b.mat.Stride+b.mat.Cols]
		orow := other.mat.Data[i*other.mat.Stride : i*other.mat.Stride+other.mat.Cols]
		for j := range brow {
			brow[j] += orow[j]
		}
	}
}

// Sub sets b := b - other. Dimensions must match.
func (b *Block) Sub(other *Block) {
	if b.mat.Rows != other.mat.Rows || b.mat.Cols != other.mat.Cols {
		panic(ErrShape)
	}
	for i := 0; i < b.mat.Rows; i++ {
		brow := b.mat.Data[i*b.mat.Stride : i*b.mat.Stride+b.mat.Cols]
		orow := other.mat.Data[i*other.mat.Stride : i*other.mat.Stride+other.mat.Cols]
		for j := range brow {
			brow[j] -= orow[j]
		}
	}
}

// T returns an out-of-place transpose of b.
func (b *Block) T() *Block {
	out := New(b.mat.Cols, b.mat.Rows)
	for i := 0; i < b.mat.Rows; i++ {
		for j := 0; j < b.mat.Cols; j++ {
			out.mat.Data[j*out.mat.Stride+i] = b.mat.Data[i*b.mat.Stride+j]
		}
	}
	return out
}

// TransposeInPlace transposes a square b without allocating.
func (b *Block) TransposeInPlace() {
	if b.mat.Rows != b.mat.Cols {
		panic(ErrShape)
	}
	n := b.mat.Rows
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			ij := i*b.mat.Stride + j
			ji := j*b.mat.Stride + i
			b.mat.Data[ij], b.mat.Data[ji] = b.mat.Data[ji], b.mat.Data[ij]
		}
	}
}

// Columns extracts the columns named by idx into a new Block with
// len(idx) columns.
func (b *Block) Columns(idx []int) *Block {
	out := New(b.mat.Rows, len(idx))
	for i := 0; i < b.mat.Rows; i++ {
		for k, j := range idx {
			out.mat.Data[i*out.mat.Stride+k] = b.At(i, j)
		}
	}
	return out
}

// ZeroLowerTriangle zeros the strictly-lower-triangular part of a
// square b, used to clean up a diagonal block's mutated reflector
// storage after block-QR (spec §4.7, "strict lower zeroed").
func (b *Block) ZeroLowerTriangle() {
	if b.mat.Rows != b.mat.Cols {
		panic(ErrShape)
	}
	for i := 1; i < b.mat.Rows; i++ {
		row := b.mat.Data[i*b.mat.Stride : i*b.mat.Stride+i]
		for j := range row {
			row[j] = 0
		}
	}
}

// ZeroAll zeros every element of b. factorize.QR.R does not call it; it
// allocates fresh zero blocks below the diagonal instead.
func (b *Block) ZeroAll() {
	for i := 0; i < b.mat.Rows; i++ {
		row := b.mat.Data[i*b.mat.Stride : i*b.mat.Stride+b.mat.Cols]
		for j := range row {
			row[j] = 0
		}
	}
}

// Norm returns the Frobenius norm of b.
func (b *Block) Norm() float64 {
	var sumSq float64
	for i := 0; i < b.mat.Rows; i++ {
		row := b.mat.Data[i*b.mat.Stride : i*b.mat.Stride+b.mat.Cols]
		for _, v := range row {
			sumSq += v * v
		}
	}
	return math.Sqrt(sumSq)
}

// Gemm computes c := beta*c + alpha*a*b, taking the DGEMV fast path
// when b has a single column (spec §4.1).
func Gemm(alpha float64, a, b *Block, beta float64, c *Block) {
	if a.mat.Cols != b.mat.Rows || a.mat.Rows != c.mat.Rows || b.mat.Cols != c.mat.Cols {
		panic(ErrShape)
	}
	if b.mat.Cols == 1 {
		y := make([]float64, c.mat.Rows)
		for i := range y {
			y[i] = c.mat.Data[i*c.mat.Stride]
		}
		x := make([]float64, b.mat.Rows)
		for i := range x {
			x[i] = b.mat.Data[i*b.mat.Stride]
		}
		lapackx.Gemv(blas.NoTrans, alpha, a.mat, x, beta, y)
		for i := range y {
			c.mat.Data[i*c.mat.Stride] = y[i]
		}
		return
	}
	lapackx.Gemm(blas.NoTrans, blas.NoTrans, alpha, a.mat, b.mat, beta, c.mat)
}

// Getrf factors a in place via dgetrf (no pivoting exposed upward,
// per spec's documented no-pivot-across-blocks precondition) and
// returns it split into a unit-lower L and upper U.
func (b *Block) Getrf() (l, u *Block, err error) {
	if b.mat.Rows != b.mat.Cols {
		panic(ErrShape)
	}
	n := b.mat.Rows
	if _, ferr := lapackx.LU(b.mat); ferr != nil {
		return nil, nil, ferr
	}
	l, u = New(n, n), New(n, n)
	for i := 0; i < n; i++ {
		l.Set(i, i, 1)
		for j := 0; j < i; j++ {
			l.Set(i, j, b.At(i, j))
		}
		for j := i; j < n; j++ {
			u.Set(i, j, b.At(i, j))
		}
	}
	return l, u, nil
}
