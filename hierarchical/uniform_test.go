package hierarchical

import (
	"testing"

	"github.com/hmatrix-go/hmatrix/cluster"
	"github.com/hmatrix-go/hmatrix/kernel"
	"github.com/hmatrix-go/hmatrix/matrix"
)

func collectLowRank(blk *Block, out *[]*matrix.Matrix) {
	d0, d1 := blk.BlockDims()
	for i := 0; i < d0; i++ {
		for j := 0; j < d1; j++ {
			cell := blk.At(i, j)
			switch cell.Kind() {
			case matrix.KindLowRank:
				*out = append(*out, cell)
			case matrix.KindHierarchical:
				collectLowRank(cell.Hierarchical().(*Block), out)
			}
		}
	}
}

func TestUniformCloneKeepsSharedBasesShared(t *testing.T) {
	n := 32
	x := points1D(n)
	k := kernel.Laplace1D(x)
	admis := cluster.PositionBased{Admis: 2}
	b := NewBuilder(k, admis, 6, SharedBasis)
	root := b.Build(cluster.IndexRange{Start: 0, N: n}, cluster.IndexRange{Start: 0, N: n}, 4, 4, 8)
	orig := NewUniform(root)

	var before []*matrix.Matrix
	collectLowRank(root, &before)

	cloned := orig.Clone().(*Uniform)
	var after []*matrix.Matrix
	collectLowRank(cloned.Block, &after)

	if len(before) != len(after) {
		t.Fatalf("clone has %d LowRank cells, want %d", len(after), len(before))
	}

	sharedBeforeCount := 0
	for i := range before {
		for j := i + 1; j < len(before); j++ {
			if before[i].LowRank().U().Block() == before[j].LowRank().U().Block() {
				sharedBeforeCount++
			}
		}
	}
	sharedAfterCount := 0
	for i := range after {
		for j := i + 1; j < len(after); j++ {
			if after[i].LowRank().U().Block() == after[j].LowRank().U().Block() {
				sharedAfterCount++
			}
		}
	}
	if sharedBeforeCount == 0 {
		t.Fatal("test setup produced no shared U bases to begin with")
	}
	if sharedAfterCount != sharedBeforeCount {
		t.Errorf("clone shares %d U-basis pairs, want %d", sharedAfterCount, sharedBeforeCount)
	}

	for i := range before {
		if before[i].LowRank().U().Block() == after[i].LowRank().U().Block() {
			t.Error("clone did not copy U storage; still aliases the original")
		}
	}
}
