package matrix

import (
	"testing"

	"github.com/hmatrix-go/hmatrix/dense"
	"github.com/hmatrix-go/hmatrix/lowrank"
)

func fillSeq(b *dense.Block) *dense.Block {
	rows, cols := b.Dims()
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			b.Set(i, j, float64(i*cols+j+1))
		}
	}
	return b
}

func TestKindAccessorsPanicOnWrongVariant(t *testing.T) {
	m := FromDense(fillSeq(dense.New(2, 2)))
	if m.Kind() != KindDense {
		t.Fatalf("Kind() = %v, want KindDense", m.Kind())
	}
	defer func() {
		if recover() == nil {
			t.Error("LowRank() on a Dense Matrix did not panic")
		}
	}()
	m.LowRank()
}

func TestDimsNormCloneTransposeForward(t *testing.T) {
	d := fillSeq(dense.New(2, 3))
	m := FromDense(d)
	rows, cols := m.Dims()
	if rows != 2 || cols != 3 {
		t.Fatalf("Dims() = (%d,%d), want (2,3)", rows, cols)
	}
	if m.Norm() != d.Norm() {
		t.Errorf("Norm() = %v, want %v", m.Norm(), d.Norm())
	}

	clone := m.Clone()
	clone.Dense().Set(0, 0, -1)
	if m.Dense().At(0, 0) == -1 {
		t.Error("Clone() shares storage with the original")
	}

	tp := m.Transpose()
	tr, tc := tp.Dims()
	if tr != 3 || tc != 2 {
		t.Fatalf("Transpose Dims() = (%d,%d), want (3,2)", tr, tc)
	}
	if tp.Dense().At(1, 0) != d.At(0, 1) {
		t.Errorf("Transpose()[1][0] = %v, want %v", tp.Dense().At(1, 0), d.At(0, 1))
	}
}

func TestSetVariantSwitchesKind(t *testing.T) {
	m := FromDense(dense.New(2, 2))
	u := dense.New(2, 1)
	s := dense.New(1, 1)
	v := dense.New(1, 2)
	lr := lowrank.New(u, s, v)
	m.SetLowRank(lr)
	if m.Kind() != KindLowRank {
		t.Fatalf("Kind() after SetLowRank = %v, want KindLowRank", m.Kind())
	}
	defer func() {
		if recover() == nil {
			t.Error("Dense() after SetLowRank did not panic")
		}
	}()
	m.Dense()
}
