package hierarchical

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/hmatrix-go/hmatrix/dense"
	"github.com/hmatrix-go/hmatrix/matrix"
)

func denseCell(rows, cols int, fill float64) *matrix.Matrix {
	b := dense.New(rows, cols)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			b.Set(i, j, fill)
		}
	}
	return matrix.FromDense(b)
}

func twoByTwoBlock() *Block {
	blk := NewBlock([]int{2, 3}, []int{2, 3})
	blk.Set(0, 0, denseCell(2, 2, 1), Position{})
	blk.Set(0, 1, denseCell(2, 3, 2), Position{})
	blk.Set(1, 0, denseCell(3, 2, 3), Position{})
	blk.Set(1, 1, denseCell(3, 3, 4), Position{})
	return blk
}

func TestBlockDimsAndExtents(t *testing.T) {
	blk := twoByTwoBlock()
	rows, cols := blk.Dims()
	if rows != 5 || cols != 5 {
		t.Fatalf("Dims() = (%d,%d), want (5,5)", rows, cols)
	}
	if blk.RowExtent(0) != 2 || blk.ColExtent(1) != 3 {
		t.Errorf("unexpected extents")
	}

	gotRows := []int{blk.RowExtent(0), blk.RowExtent(1)}
	gotCols := []int{blk.ColExtent(0), blk.ColExtent(1)}
	wantRows, wantCols := []int{2, 3}, []int{2, 3}
	if diff := cmp.Diff(wantRows, gotRows); diff != "" {
		t.Errorf("row extents mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(wantCols, gotCols); diff != "" {
		t.Errorf("col extents mismatch (-want +got):\n%s", diff)
	}
}

func TestBlockNormSumsLeafNormsSquared(t *testing.T) {
	blk := twoByTwoBlock()
	var want float64
	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			n := blk.At(i, j).Norm()
			want += n * n
		}
	}
	want = math.Sqrt(want)
	if got := blk.Norm(); math.Abs(got-want) > 1e-9 {
		t.Errorf("Norm() = %v, want %v", got, want)
	}
}

func TestBlockCloneIsDeep(t *testing.T) {
	blk := twoByTwoBlock()
	clone := blk.Clone().(*Block)
	clone.At(0, 0).Dense().Set(0, 0, -99)
	if blk.At(0, 0).Dense().At(0, 0) == -99 {
		t.Error("Clone() shares storage with the original")
	}
}

func TestBlockTransposeSwapsGridAndContents(t *testing.T) {
	blk := twoByTwoBlock()
	tp := blk.Transpose().(*Block)
	rows, cols := tp.Dims()
	if rows != 5 || cols != 5 {
		t.Fatalf("Transpose Dims() = (%d,%d)", rows, cols)
	}
	if tp.At(1, 0).Dense().At(0, 0) != blk.At(0, 1).Dense().At(0, 0) {
		t.Errorf("Transpose did not swap (0,1) into (1,0)")
	}
}

func TestViewOverDenseSharesStorage(t *testing.T) {
	d := dense.New(4, 4)
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			d.Set(i, j, float64(i*4+j))
		}
	}
	m := matrix.FromDense(d)
	v := NewView(m, []int{2, 2}, []int{2, 2})
	d0, d1 := v.BlockDims()
	if d0 != 2 || d1 != 2 {
		t.Fatalf("BlockDims() = (%d,%d), want (2,2)", d0, d1)
	}
	cell := v.At(1, 1)
	cell.Dense().Set(0, 0, -1)
	if d.At(2, 2) != -1 {
		t.Error("View does not alias the underlying Dense storage")
	}
}

func TestViewRejectsHierarchicalUnderlying(t *testing.T) {
	blk := twoByTwoBlock()
	h := matrix.FromHierarchical(blk)
	defer func() {
		if recover() == nil {
			t.Error("NewView over a Hierarchical operand did not panic")
		}
	}()
	NewView(h, []int{5}, []int{5})
}
