package symcore

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestDoubleApplicationCollapses covers the cross-rewrite rules that fold a
// function composed with its own inverse: abs(abs(f))=abs(f),
// sqrt(square(f))=abs(f), square(sqrt(f))=f.
func TestDoubleApplicationCollapses(t *testing.T) {
	ctx := NewContext()
	x := NewVariable(ctx)
	ex := FromVariable(ctx, x)

	absAbs := ex.Abs().Abs()
	abs := ex.Abs()
	assert.Same(t, abs.node, absAbs.node)

	sqrtSquare := ex.Square().Sqrt()
	assert.Equal(t, abs.node, sqrtSquare.node)

	squareSqrt := ex.Sqrt().Square()
	assert.Same(t, ex.node, squareSqrt.node)

	absAbs.Release()
	abs.Release()
	sqrtSquare.Release()
	squareSqrt.Release()
	ex.Release()
}

// TestExpLogRoundTrip verifies exp(log(f))=f and log(exp(f))=f.
func TestExpLogRoundTrip(t *testing.T) {
	ctx := NewContext()
	x := NewVariable(ctx)
	ex := FromVariable(ctx, x)

	viaLog := ex.Log().Exp()
	assert.Same(t, ex.node, viaLog.node)

	viaExp := ex.Exp().Log()
	assert.Same(t, ex.node, viaExp.node)

	viaLog.Release()
	viaExp.Release()
	ex.Release()
}

// TestErfAndErfcAreDistinctTags checks that erf/erfc are interned under
// distinct FuncTags, so the two never collide in the function-node
// interning table.
func TestErfAndErfcAreDistinctTags(t *testing.T) {
	ctx := NewContext()
	x := NewVariable(ctx)
	ex := FromVariable(ctx, x)

	erf := ex.Erf()
	erfc := ex.ErfC()
	assert.Equal(t, FuncErf, erf.node.fn)
	assert.Equal(t, FuncErfc, erfc.node.fn)
	assert.NotEqual(t, erf.node, erfc.node)

	erf.Release()
	erfc.Release()
	ex.Release()
}

// TestConstantFunctionFolding verifies that applying an elementary function
// to a constant argument folds to a constant immediately.
func TestConstantFunctionFolding(t *testing.T) {
	ctx := NewContext()
	zero := FromFloat(ctx, 0)

	s := zero.Sin()
	assert.Equal(t, KindConstant, s.node.kind)
	assert.InDelta(t, 0, s.Evaluate(), 1e-12)

	c := zero.Cos()
	assert.Equal(t, KindConstant, c.node.kind)
	assert.InDelta(t, 1, c.Evaluate(), 1e-12)

	s.Release()
	c.Release()
	zero.Release()
}

// TestNaNPropagatesThroughEverything verifies any operation involving NaN
// collapses to the single context-wide NaN sentinel.
func TestNaNPropagatesThroughEverything(t *testing.T) {
	ctx := NewContext()
	x := NewVariable(ctx)
	ex := FromVariable(ctx, x)
	nan := FromFloat(ctx, math.NaN())

	sum := ex.Add(nan)
	prod := ex.Mul(nan)
	fn := nan.Sin()

	assert.Same(t, ctx.nan, sum.node)
	assert.Same(t, ctx.nan, prod.node)
	assert.Same(t, ctx.nan, fn.node)

	sum.Release()
	prod.Release()
	fn.Release()
	ex.Release()
	nan.Release()
}
