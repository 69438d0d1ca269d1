package ops

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/blas"

	"github.com/hmatrix-go/hmatrix/dense"
	"github.com/hmatrix-go/hmatrix/hierarchical"
	"github.com/hmatrix-go/hmatrix/lowrank"
	"github.com/hmatrix-go/hmatrix/matrix"
)

func seqDense(rows, cols int, scale float64) *dense.Block {
	b := dense.New(rows, cols)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			b.Set(i, j, scale*float64(i*cols+j+1))
		}
	}
	return b
}

func lowRank(rows, cols, rank int) *lowrank.LowRank {
	u := seqDense(rows, rank, 1)
	s := dense.New(rank, rank)
	for i := 0; i < rank; i++ {
		s.Set(i, i, 1)
	}
	v := seqDense(rank, cols, 0.5)
	return lowrank.New(u, s, v)
}

func denseMatricesEqual(t *testing.T, got, want *dense.Block, tol float64) {
	t.Helper()
	gr, gc := got.Dims()
	wr, wc := want.Dims()
	if gr != wr || gc != wc {
		t.Fatalf("shape mismatch: got (%d,%d), want (%d,%d)", gr, gc, wr, wc)
	}
	for i := 0; i < gr; i++ {
		for j := 0; j < gc; j++ {
			if math.Abs(got.At(i, j)-want.At(i, j)) > tol {
				t.Fatalf("(%d,%d) = %v, want %v", i, j, got.At(i, j), want.At(i, j))
			}
		}
	}
}

func TestGemmDenseDenseDense(t *testing.T) {
	a := matrix.FromDense(seqDense(3, 2, 1))
	b := matrix.FromDense(seqDense(2, 4, 1))
	c := matrix.FromDense(dense.New(3, 4))
	Gemm(1, a, b, 0, c)

	want := dense.New(3, 4)
	dense.Gemm(1, a.Dense(), b.Dense(), 0, want)
	denseMatricesEqual(t, c.Dense(), want, 1e-9)
}

func TestGemmLowRankDenseDense(t *testing.T) {
	lr := lowRank(3, 2, 2)
	a := matrix.FromLowRank(lr)
	b := matrix.FromDense(seqDense(2, 4, 1))
	c := matrix.FromDense(dense.New(3, 4))
	Gemm(1, a, b, 0, c)

	want := dense.New(3, 4)
	dense.Gemm(1, lr.Densify(), b.Dense(), 0, want)
	denseMatricesEqual(t, c.Dense(), want, 1e-9)
}

func TestGemmDenseDenseLowRank(t *testing.T) {
	a := matrix.FromDense(seqDense(4, 3, 1))
	b := matrix.FromDense(seqDense(3, 4, 1))
	lr := lowRank(4, 4, 3)
	c := matrix.FromLowRank(lr)
	Gemm(1, a, b, 0, c)
	if c.Kind() != matrix.KindLowRank {
		t.Fatalf("Kind() = %v, want KindLowRank", c.Kind())
	}

	want := dense.New(4, 4)
	dense.Gemm(1, a.Dense(), b.Dense(), 0, want)
	denseMatricesEqual(t, c.LowRank().Densify(), want, 1e-6)
}

func gridOfDense(rowN, colN []int, scale float64) *hierarchical.Block {
	blk := hierarchical.NewBlock(rowN, colN)
	for i, r := range rowN {
		for j, c := range colN {
			blk.Set(i, j, matrix.FromDense(seqDense(r, c, scale*float64(i+j+1))), hierarchical.Position{})
		}
	}
	return blk
}

func TestGemmHierarchicalHierarchicalHierarchical(t *testing.T) {
	a := matrix.FromHierarchical(gridOfDense([]int{2, 2}, []int{2, 2}, 1))
	b := matrix.FromHierarchical(gridOfDense([]int{2, 2}, []int{2, 2}, 1))
	c := matrix.FromHierarchical(gridOfDense([]int{2, 2}, []int{2, 2}, 0))
	Gemm(1, a, b, 0, c)

	ad := hierarchicalToDense(a)
	bd := hierarchicalToDense(b)
	want := dense.New(4, 4)
	dense.Gemm(1, ad, bd, 0, want)
	got := hierarchicalToDense(c)
	denseMatricesEqual(t, got, want, 1e-9)
}

func hierarchicalToDense(m *matrix.Matrix) *dense.Block {
	rows, cols := m.Dims()
	out := dense.New(rows, cols)
	if m.Kind() == matrix.KindDense {
		for i := 0; i < rows; i++ {
			for j := 0; j < cols; j++ {
				out.Set(i, j, m.Dense().At(i, j))
			}
		}
		return out
	}
	g := asGrid(m.Hierarchical())
	d0, d1 := g.BlockDims()
	rowOff := 0
	for i := 0; i < d0; i++ {
		colOff := 0
		for j := 0; j < d1; j++ {
			cell := hierarchicalToDense(g.At(i, j))
			cr, cc := cell.Dims()
			for ci := 0; ci < cr; ci++ {
				for cj := 0; cj < cc; cj++ {
					out.Set(rowOff+ci, colOff+cj, cell.At(ci, cj))
				}
			}
			colOff += g.ColExtent(j)
		}
		rowOff += g.RowExtent(i)
	}
	return out
}

func TestAddDenseDense(t *testing.T) {
	a := matrix.FromDense(seqDense(2, 2, 1))
	b := matrix.FromDense(seqDense(2, 2, 2))
	sum := Add(a, b)
	want := seqDense(2, 2, 1)
	want.Add(seqDense(2, 2, 2))
	denseMatricesEqual(t, sum.Dense(), want, 1e-9)
}

func TestSubIsInverseOfAdd(t *testing.T) {
	a := matrix.FromDense(seqDense(2, 3, 1))
	b := matrix.FromDense(seqDense(2, 3, 3))
	sum := Add(a, b)
	back := Sub(sum, b)
	denseMatricesEqual(t, back.Dense(), a.Dense(), 1e-9)
}

func TestScaleDense(t *testing.T) {
	a := matrix.FromDense(seqDense(2, 2, 1))
	Scale(a, 2)
	want := seqDense(2, 2, 2)
	denseMatricesEqual(t, a.Dense(), want, 1e-9)
}

func TestTrsmDenseDenseLowerUnit(t *testing.T) {
	l := dense.New(3, 3)
	l.Set(0, 0, 1)
	l.Set(1, 0, 2)
	l.Set(1, 1, 1)
	l.Set(2, 0, 1)
	l.Set(2, 1, 3)
	l.Set(2, 2, 1)
	x := seqDense(3, 1, 1)
	rhs := dense.New(3, 1)
	dense.Gemm(1, l, x, 0, rhs)

	a := matrix.FromDense(l)
	b := matrix.FromDense(rhs)
	Trsm(a, b, blas.Left, blas.Lower, blas.Unit)
	denseMatricesEqual(t, b.Dense(), x, 1e-9)
}

func TestGetrfReconstructsA(t *testing.T) {
	orig := dense.New(3, 3)
	orig.Set(0, 0, 4)
	orig.Set(0, 1, 3)
	orig.Set(0, 2, 2)
	orig.Set(1, 0, 2)
	orig.Set(1, 1, 5)
	orig.Set(1, 2, 1)
	orig.Set(2, 0, 1)
	orig.Set(2, 1, 1)
	orig.Set(2, 2, 6)
	clone := orig.Clone()

	a := matrix.FromDense(clone)
	l, u, err := Getrf(a)
	if err != nil {
		t.Fatalf("Getrf error: %v", err)
	}
	recon := dense.New(3, 3)
	dense.Gemm(1, l.Dense(), u.Dense(), 0, recon)
	denseMatricesEqual(t, recon, orig, 1e-8)
}
