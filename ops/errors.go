// Package ops implements the elementary operation dispatch table (spec
// §4.7, C7): one rule per (A-variant, B-variant, C-variant) triple,
// for Gemm, Trsm, Getrf, the block-TSQR primitives (Geqrt/Larfb/Tpqrt/
// Tpmqrt), Add/Sub/Scale, Transpose, Norm and Resize. Violations this
// package detects itself panic with a value from this file (spec §7's
// contract-violation / undefined-dispatch taxonomy); panics raised one
// layer down (dense.ErrShape, lowrank.ErrRank, randomized's rank check,
// and the *lapackx.Error of a failed SVD during LowRank recompression)
// pass through unchanged. Getrf returns a LAPACK info≠0 failure as an
// ordinary Go error, since that is the caller's to decide how to
// recover from (spec §7, "Recovery is a caller decision").
package ops

import (
	"fmt"

	"github.com/hmatrix-go/hmatrix/matrix"
)

// ErrUndefinedDispatch reports spec §7's "Undefined dispatch": no rule
// exists for the given operand-variant triple (the caller must
// re-block via a hierarchical.View or materialized Block first).
type ErrUndefinedDispatch struct {
	Op      string
	A, B, C matrix.Kind
}

func (e *ErrUndefinedDispatch) Error() string {
	return fmt.Sprintf("ops: %s(%s, %s, %s) undefined", e.Op, e.A, e.B, e.C)
}

func undefinedTriple(op string, a, b, c *matrix.Matrix) {
	panic(&ErrUndefinedDispatch{Op: op, A: a.Kind(), B: b.Kind(), C: c.Kind()})
}

// ErrContract reports spec §7's "Contract violation": a shape
// mismatch, rank mismatch, or other caller-bug-indicating condition.
type ErrContract struct {
	Op  string
	Why string
}

func (e *ErrContract) Error() string {
	return fmt.Sprintf("ops: %s: %s", e.Op, e.Why)
}

func contractViolation(op, why string) {
	panic(&ErrContract{Op: op, Why: why})
}
