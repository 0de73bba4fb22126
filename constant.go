package symcore

import "math"

// constant returns the interned Node for the real value d, retained once
// for the caller. A NaN input folds to the context's single NaN sentinel
// rather than allocating a distinct constant node for every NaN.
func (ctx *Context) constant(d float64) *Node {
	if math.IsNaN(d) {
		return ctx.nan.retain()
	}
	if existing, ok := ctx.constants[d]; ok {
		ctx.metrics.recordIntern(KindConstant, true)
		return existing.retain()
	}
	n := &Node{ctx: ctx, id: ctx.newID(), kind: KindConstant, value: d, depth: 0, refs: 1}
	ctx.constants[d] = n
	ctx.metrics.recordIntern(KindConstant, false)
	return n
}
