// Package basis implements shared/nested basis tracking (spec §4.9,
// C9): ref-counted-by-the-Go-runtime immutable handles around a
// dense.Block, with copy-on-write decoupling on first mutation, and
// the two content-addressable trackers the hierarchical constructor
// and copy operation use to preserve sharing.
package basis

import (
	"github.com/hmatrix-go/hmatrix/cluster"
	"github.com/hmatrix-go/hmatrix/dense"
)

// Basis is a handle to a column or row basis matrix that may be
// shared by several LowRank blocks in the same block-row or
// block-column. Treat the wrapped Block as immutable while Shared is
// true; call Decouple before mutating it.
type Basis struct {
	block  *dense.Block
	shared bool
}

// Private wraps b as a basis owned by a single LowRank block.
func Private(b *dense.Block) *Basis { return &Basis{block: b} }

// Shared wraps b as a basis that may be aliased by other LowRank
// blocks; callers must Decouple before mutating it in place.
func Shared(b *dense.Block) *Basis { return &Basis{block: b, shared: true} }

// Block returns the underlying matrix. Do not mutate it in place
// unless IsShared is false or it has just been Decouple'd.
func (h *Basis) Block() *dense.Block { return h.block }

// IsShared reports whether this handle may be aliased elsewhere.
func (h *Basis) IsShared() bool { return h.shared }

// Decouple returns a handle safe to mutate in place: h itself if it
// is already private, or a fresh private deep copy otherwise (spec
// §4.9, "operations that modify a shared basis must first decouple").
func (h *Basis) Decouple() *Basis {
	if !h.shared {
		return h
	}
	return Private(h.block.Clone())
}

// key identifies a basis by its underlying storage identity, matching
// spec §3's "(pointer, dim)" BasisTracker key.
type key struct {
	ptr        uintptr
	rows, cols int
}

func identityOf(b *dense.Block) key {
	g := b.RawGeneral()
	rows, cols := b.Dims()
	var ptr uintptr
	if len(g.Data) > 0 {
		ptr = sliceDataPointer(g.Data)
	}
	return key{ptr: ptr, rows: rows, cols: cols}
}

// RangeTracker is the construction-time tracker keyed by a row (or
// column) IndexRange: the first admissible block over a given range
// computes the canonical basis; later blocks over the same range
// reuse it (spec §4.5, §4.9).
type RangeTracker struct {
	byRange map[cluster.IndexRange]*Basis
}

// NewRangeTracker returns an empty tracker.
func NewRangeTracker() *RangeTracker {
	return &RangeTracker{byRange: map[cluster.IndexRange]*Basis{}}
}

// GetOrStore returns the basis already registered for r, or registers
// and returns compute()'s result if none exists yet.
func (t *RangeTracker) GetOrStore(r cluster.IndexRange, compute func() *dense.Block) *Basis {
	if b, ok := t.byRange[r]; ok {
		return b
	}
	b := Shared(compute())
	t.byRange[r] = b
	return b
}

// Clear empties the tracker, used at the phase boundaries of spec
// §4.9 (end of construction).
func (t *RangeTracker) Clear() {
	t.byRange = map[cluster.IndexRange]*Basis{}
}

// CopyTracker is the hierarchical-copy-time tracker keyed by source
// basis identity: the first time a shared basis is encountered during
// a deep copy, a canonical copy is made; later encounters of the same
// source basis reuse that copy, so sharing survives the copy (spec
// §4.9, "hierarchical_copy" tracker).
type CopyTracker struct {
	byIdentity map[key]*Basis
}

// NewCopyTracker returns an empty tracker.
func NewCopyTracker() *CopyTracker {
	return &CopyTracker{byIdentity: map[key]*Basis{}}
}

// Copy returns the copy already made for src, or makes, registers,
// and returns one if src has not been seen before in this tracker's
// lifetime.
func (t *CopyTracker) Copy(src *Basis) *Basis {
	k := identityOf(src.block)
	if out, ok := t.byIdentity[k]; ok {
		return out
	}
	out := &Basis{block: src.block.Clone(), shared: src.shared}
	t.byIdentity[k] = out
	return out
}

// Clear empties the tracker, used at the end of a copy (spec §4.9).
func (t *CopyTracker) Clear() {
	t.byIdentity = map[key]*Basis{}
}
