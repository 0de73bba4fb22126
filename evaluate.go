package symcore

import "math"

// Evaluate returns n's current numeric value, using a lazy cache: the
// cached value is only recomputed when the owning Context's dirty level has
// advanced past the level recorded at the last Evaluate call, so a chain of
// Variable writes between two Evaluate calls costs a single recomputation,
// not one per write.
func (ctx *Context) Evaluate(n *Node) float64 {
	if n.cleanLevel == ctx.dirtyLevel {
		ctx.metrics.EvalCacheHits.Inc()
		return n.valueCache
	}
	v := ctx.value(n)
	n.valueCache = v
	n.cleanLevel = ctx.dirtyLevel
	ctx.metrics.EvalCacheMiss.Inc()
	return v
}

func (ctx *Context) value(n *Node) float64 {
	switch n.kind {
	case KindNaN:
		return math.NaN()
	case KindConstant:
		return n.value
	case KindVariable:
		return n.variable.value
	case KindFunc:
		return ctx.valueFunc(n)
	case KindAdd:
		return ctx.Evaluate(n.a) + ctx.Evaluate(n.b)
	case KindMul:
		// Numeric short-circuit: if either operand evaluates to exactly
		// zero, the product is zero even when the other operand is
		// undefined (e.g. 0 * 1/0). The first operand is always evaluated;
		// the second is skipped when the first is zero.
		av := ctx.Evaluate(n.a)
		if av == 0 {
			return 0
		}
		bv := ctx.Evaluate(n.b)
		if bv == 0 {
			return 0
		}
		return av * bv
	case KindPow:
		return math.Pow(ctx.Evaluate(n.a), ctx.Evaluate(n.b))
	}
	return math.NaN()
}

func (ctx *Context) valueFunc(n *Node) float64 {
	x := ctx.Evaluate(n.a)
	v, _ := foldConstant(n.fn, x)
	return v
}
