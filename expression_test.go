package symcore

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestStringMinimalParenthesization verifies the printing contract only
// parenthesizes where precedence would otherwise make the output
// ambiguous.
func TestStringMinimalParenthesization(t *testing.T) {
	ctx := NewContext()
	x := NewVariable(ctx)
	y := NewVariable(ctx)
	x.SetName("x")
	y.SetName("y")
	ex := FromVariable(ctx, x)
	ey := FromVariable(ctx, y)

	sum := ex.Add(ey)
	assert.Equal(t, "x + y", sum.String())

	product := sum.Mul(ex)
	assert.Equal(t, "(x + y)*x", product.String())

	sum.Release()
	product.Release()
	ex.Release()
	ey.Release()
}

// TestStringVariableFallbackName verifies an unnamed variable prints a
// generated placeholder rather than an empty string.
func TestStringVariableFallbackName(t *testing.T) {
	ctx := NewContext()
	x := NewVariable(ctx)
	ex := FromVariable(ctx, x)
	assert.Regexp(t, `^x_[0-9a-f]{8}$`, ex.String())
	ex.Release()
}

// TestDepthGrowsWithNesting verifies Depth tracks structural nesting, the
// same counter the stack-limit rebalancing guard watches.
func TestDepthGrowsWithNesting(t *testing.T) {
	ctx := NewContext()
	x := NewVariable(ctx)
	ex := FromVariable(ctx, x)

	leaf := ex
	chain := ex.Add(FromFloat(ctx, 1)).Add(FromFloat(ctx, 2)).Add(FromFloat(ctx, 3))
	assert.Greater(t, chain.Depth(), leaf.Depth())

	chain.Release()
	ex.Release()
}

// TestReleaseCollapsesWholeSubtree verifies that once every handle obtained
// while building a compound expression (including the intermediate ones) is
// released, every interned node it was built from is released too,
// returning every table to its pre-construction size.
func TestReleaseCollapsesWholeSubtree(t *testing.T) {
	ctx := NewContext()
	beforeC, beforeV, beforeA, beforeM, beforeP, beforeF := ctx.InterningSize()

	x := NewVariable(ctx)
	ex := FromVariable(ctx, x)
	sine := ex.Sin()
	two := FromFloat(ctx, 2)
	product := ex.Mul(ex)
	sum := product.Add(sine)
	expr := sum.Pow(two)
	expr.Release()
	sum.Release()
	product.Release()
	sine.Release()
	two.Release()
	ex.Release()

	afterC, afterV, afterA, afterM, afterP, afterF := ctx.InterningSize()
	assert.Equal(t, beforeC, afterC)
	assert.Equal(t, beforeV, afterV)
	assert.Equal(t, beforeA, afterA)
	assert.Equal(t, beforeM, afterM)
	assert.Equal(t, beforeP, afterP)
	assert.Equal(t, beforeF, afterF)
}
