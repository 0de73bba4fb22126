package symcore

import "github.com/pkg/errors"

// ErrNonFinite is returned when a Variable is assigned a NaN or infinite
// value. Variables must always hold a finite real.
var ErrNonFinite = errors.New("symcore: variable assigned a non-finite value")

// ErrContextMismatch is returned when Bind, AtomicBind or AtomicAssign is
// given an Expression or Variable that was built under a different Context
// than the receiver. Interning tables are owned by exactly one Context, so
// mixing them would either silently re-intern into the wrong table set or
// produce a Node unreachable from its own owner; neither is acceptable, so
// the operation fails closed instead.
var ErrContextMismatch = errors.New("symcore: expression or variable belongs to a different context")
