package symcore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestDeriveLinear verifies d/dx(x) = 1 and d/dx(constant) = 0.
func TestDeriveLinear(t *testing.T) {
	ctx := NewContext()
	x := NewVariable(ctx)
	ex := FromVariable(ctx, x)

	dx := ex.Derive(x)
	assert.True(t, dx.node.isConstant(1))

	dc := FromFloat(ctx, 7).Derive(x)
	assert.True(t, dc.node.isConstant(0))

	dx.Release()
	dc.Release()
	ex.Release()
}

// TestDerivePowerRule verifies d/dx(x^2) = 2*x.
func TestDerivePowerRule(t *testing.T) {
	ctx := NewContext()
	x := NewVariable(ctx)
	ex := FromVariable(ctx, x)

	squared := ex.Pow(FromFloat(ctx, 2))
	d := squared.Derive(x)

	_ = x.SetValue(3)
	assert.Equal(t, 6.0, d.Evaluate())

	squared.Release()
	d.Release()
	ex.Release()
}

// TestDeriveProductRule verifies d/dx(x*x) = 2*x via the product rule
// rather than the power-law shortcut (they must agree numerically).
func TestDeriveProductRule(t *testing.T) {
	ctx := NewContext()
	x := NewVariable(ctx)
	ex := FromVariable(ctx, x)

	product := ex.Mul(ex)
	d := product.Derive(x)

	_ = x.SetValue(4)
	assert.Equal(t, 8.0, d.Evaluate())

	product.Release()
	d.Release()
	ex.Release()
}

// TestDeriveCacheReturnsSameNode verifies the single-slot derivative cache
// : deriving the same expression wrt the same variable twice in a row
// returns the identical cached node instead of rebuilding it.
func TestDeriveCacheReturnsSameNode(t *testing.T) {
	ctx := NewContext()
	x := NewVariable(ctx)
	ex := FromVariable(ctx, x)

	expr := ex.Mul(ex).Add(ex)
	first := expr.Derive(x)
	second := expr.Derive(x)
	assert.Same(t, first.node, second.node)

	first.Release()
	second.Release()
	expr.Release()
	ex.Release()
}

// TestDeriveSwitchingVariableRecomputes verifies that deriving the same
// expression wrt a different variable recomputes correctly without
// requiring Purge first - each node's cache slot is keyed on the variable
// it was last derived against.
func TestDeriveSwitchingVariableRecomputes(t *testing.T) {
	ctx := NewContext()
	x := NewVariable(ctx)
	y := NewVariable(ctx)
	ex := FromVariable(ctx, x)
	ey := FromVariable(ctx, y)

	expr := ex.Mul(FromFloat(ctx, 2)).Add(ey.Mul(FromFloat(ctx, 3)))
	dx := expr.Derive(x)
	dy := expr.Derive(y)

	assert.Equal(t, 2.0, dx.Evaluate())
	assert.Equal(t, 3.0, dy.Evaluate())

	dx.Release()
	dy.Release()
	expr.Release()
	ex.Release()
	ey.Release()
}

// TestPurgeClearsDerivativeCache verifies Purge releases every cached
// derivative reachable from a subtree, shrinking the interning tables back
// down.
func TestPurgeClearsDerivativeCache(t *testing.T) {
	ctx := NewContext()
	x := NewVariable(ctx)
	ex := FromVariable(ctx, x)

	expr := ex.Mul(ex)
	d := expr.Derive(x)
	require.NotNil(t, expr.node.derivNode)

	expr.Purge()
	assert.Nil(t, expr.node.derivNode)

	d.Release()
	expr.Release()
	ex.Release()
}
