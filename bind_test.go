package symcore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestBindSubstitutesAndResimplifies verifies Bind rebuilds through the
// smart constructors, so substituting a constant in for a variable folds
// the result rather than leaving a structural Add/Mul around it.
func TestBindSubstitutesAndResimplifies(t *testing.T) {
	ctx := NewContext()
	x := NewVariable(ctx)
	ex := FromVariable(ctx, x)
	expr := ex.Mul(FromFloat(ctx, 2)).Add(FromFloat(ctx, 3))

	bound, err := expr.Bind(x, FromFloat(ctx, 5))
	require.NoError(t, err)
	assert.Equal(t, KindConstant, bound.node.kind)
	assert.Equal(t, 13.0, bound.Evaluate())

	bound.Release()
	expr.Release()
	ex.Release()
}

// TestBindContextMismatch verifies binding across two different Contexts
// fails with ErrContextMismatch rather than silently mixing nodes.
func TestBindContextMismatch(t *testing.T) {
	ctx1 := NewContext()
	ctx2 := NewContext()
	x := NewVariable(ctx1)
	ex := FromVariable(ctx1, x)
	foreign := FromFloat(ctx2, 1)

	_, err := ex.Bind(x, foreign)
	assert.ErrorIs(t, err, ErrContextMismatch)

	ex.Release()
	foreign.Release()
}

// TestAtomicBindIsSimultaneous verifies AtomicBind substitutes every
// variable using the *original* expression tree, so a replacement
// mentioning one of the other bound variables is not itself further
// substituted - the defining property that distinguishes it from two
// sequential Bind calls.
func TestAtomicBindIsSimultaneous(t *testing.T) {
	ctx := NewContext()
	a := NewVariable(ctx)
	b := NewVariable(ctx)
	ea := FromVariable(ctx, a)
	eb := FromVariable(ctx, b)

	swap := ea.Sub(eb) // a - b

	bound, err := swap.AtomicBind(map[*Variable]Expression{
		a: eb,
		b: ea,
	})
	require.NoError(t, err)

	_ = a.SetValue(10)
	_ = b.SetValue(3)
	// (a - b) with a and b swapped simultaneously is (b - a) = 3 - 10 = -7,
	// not 0 as two sequential substitutions reusing already-substituted
	// results would produce.
	assert.Equal(t, -7.0, bound.Evaluate())

	bound.Release()
	swap.Release()
	ea.Release()
	eb.Release()
}

// TestAtomicAssignSwapsSimultaneously verifies AtomicAssign snapshots every
// update expression under the current values before writing any of them,
// so a simultaneous swap (a, b = b, a) never observes a partially updated
// variable.
func TestAtomicAssignSwapsSimultaneously(t *testing.T) {
	ctx := NewContext()
	a := NewVariable(ctx)
	b := NewVariable(ctx)
	_ = a.SetValue(1)
	_ = b.SetValue(2)
	ea := FromVariable(ctx, a)
	eb := FromVariable(ctx, b)

	err := AtomicAssign(ctx, []AtomicAssignment{
		{Var: a, Expr: eb},
		{Var: b, Expr: ea},
	})
	require.NoError(t, err)
	assert.Equal(t, 2.0, a.Value())
	assert.Equal(t, 1.0, b.Value())

	ea.Release()
	eb.Release()
}
