package symcore

import "math"

// function is the generic unary-function smart constructor: constant
// folding, then interning lookup, then allocation. Individual wrappers
// below apply the cross-rewrite rules (double-application collapses,
// inverse-function round trips) documented per node kind before falling
// through to this generic path.
func (ctx *Context) function(tag FuncTag, x *Node) *Node {
	if x.isNaN() {
		return ctx.nan.retain()
	}
	if x.kind == KindConstant {
		if v, ok := foldConstant(tag, x.value); ok {
			return ctx.constant(v)
		}
	}

	key := funcKey{tag: tag, x: x}
	if existing, ok := ctx.funcTable[key]; ok {
		ctx.metrics.recordIntern(KindFunc, true)
		return existing.retain()
	}
	n := &Node{ctx: ctx, id: ctx.newID(), kind: KindFunc, fn: tag, a: x.retain(), depth: depthOf(x) + 1, refs: 1}
	ctx.funcTable[key] = n
	ctx.metrics.recordIntern(KindFunc, false)
	return n
}

func foldConstant(tag FuncTag, v float64) (float64, bool) {
	switch tag {
	case FuncAbs:
		return math.Abs(v), true
	case FuncSgn:
		return float64(b2i(v > 0)) - float64(b2i(v < 0)), true
	case FuncSqrt:
		return math.Sqrt(v), true
	case FuncCbrt:
		return math.Cbrt(v), true
	case FuncExp:
		return math.Exp(v), true
	case FuncExpM1:
		return math.Expm1(v), true
	case FuncLog:
		return math.Log(v), true
	case FuncLog1P:
		return math.Log1p(v), true
	case FuncSin:
		return math.Sin(v), true
	case FuncCos:
		return math.Cos(v), true
	case FuncTan:
		return math.Tan(v), true
	case FuncSec:
		return 1 / math.Cos(v), true
	case FuncASin:
		return math.Asin(v), true
	case FuncACos:
		return math.Acos(v), true
	case FuncATan:
		return math.Atan(v), true
	case FuncSinH:
		return math.Sinh(v), true
	case FuncCosH:
		return math.Cosh(v), true
	case FuncTanH:
		return math.Tanh(v), true
	case FuncSecH:
		return 1 / math.Cosh(v), true
	case FuncASinH:
		return math.Asinh(v), true
	case FuncACosH:
		return math.Acosh(v), true
	case FuncATanH:
		return math.Atanh(v), true
	case FuncErf:
		return math.Erf(v), true
	case FuncErfc:
		return math.Erfc(v), true
	case FuncInvert:
		return 1 / v, true
	case FuncNegate:
		return -v, true
	case FuncSquare:
		return v * v, true
	case FuncXConic:
		return math.Sqrt(v*v - 1), true
	case FuncYConic:
		return math.Sqrt(v*v + 1), true
	case FuncZConic:
		return math.Sqrt(1 - v*v), true
	case FuncSoftPP:
		// Integral of softplus: -Li2(-e^v), whose derivative is log1p(e^v).
		return -spence(-math.Exp(v)), true
	case FuncSpence:
		return spence(v), true
	}
	return 0, false
}

func b2i(b bool) int {
	if b {
		return 1
	}
	return 0
}

// spence evaluates the dilogarithm Li2(x) (for x > 1, its real part), via a
// direct series/reflection evaluation since math.Erf-style stdlib support
// does not exist for it.
func spence(x float64) float64 {
	// Standard series for the dilogarithm Li2(z) = -∫0^z ln(1-t)/t dt,
	// evaluated at z=x with the reflection formula for |x|>1 to keep the
	// series region well-conditioned.
	if x > 1 {
		l := math.Log(x)
		return math.Pi*math.Pi/3 - 0.5*l*l - spence(1/x)
	}
	if x < -1 {
		l := math.Log(-x)
		return -math.Pi*math.Pi/6 - 0.5*l*l - spence(1/x)
	}
	return spenceSeries(x)
}

func spenceSeries(x float64) float64 {
	sum := 0.0
	term := x
	for k := 1; k < 200; k++ {
		sum += term / float64(k*k)
		term *= x
		if math.Abs(term) < 1e-18 {
			break
		}
	}
	return sum
}

// applyFunc dispatches to the tag-specific wrapper so callers that only
// have a FuncTag in hand (substitution, JSON round-tripping) still get the
// cross-rewrite rules those wrappers apply, instead of the bare interning
// path in function.
func (ctx *Context) applyFunc(tag FuncTag, x *Node) *Node {
	switch tag {
	case FuncAbs:
		return ctx.abs(x)
	case FuncSgn:
		return ctx.sgn(x)
	case FuncSqrt:
		return ctx.sqrt(x)
	case FuncCbrt:
		return ctx.cbrt(x)
	case FuncExp:
		return ctx.exp(x)
	case FuncExpM1:
		return ctx.expm1(x)
	case FuncLog:
		return ctx.log(x)
	case FuncLog1P:
		return ctx.log1p(x)
	case FuncSin:
		return ctx.sin(x)
	case FuncCos:
		return ctx.cos(x)
	case FuncTan:
		return ctx.tan(x)
	case FuncSec:
		return ctx.sec(x)
	case FuncASin:
		return ctx.asin(x)
	case FuncACos:
		return ctx.acos(x)
	case FuncATan:
		return ctx.atan(x)
	case FuncSinH:
		return ctx.sinh(x)
	case FuncCosH:
		return ctx.cosh(x)
	case FuncTanH:
		return ctx.tanh(x)
	case FuncSecH:
		return ctx.sech(x)
	case FuncASinH:
		return ctx.asinh(x)
	case FuncACosH:
		return ctx.acosh(x)
	case FuncATanH:
		return ctx.atanh(x)
	case FuncErf:
		return ctx.erf(x)
	case FuncErfc:
		return ctx.erfc(x)
	case FuncInvert:
		return ctx.invert(x)
	case FuncNegate:
		return ctx.negate(x)
	case FuncSquare:
		return ctx.square(x)
	case FuncXConic:
		return ctx.xconic(x)
	case FuncYConic:
		return ctx.yconic(x)
	case FuncZConic:
		return ctx.zconic(x)
	case FuncSoftPP:
		return ctx.softpp(x)
	case FuncSpence:
		return ctx.spenceNode(x)
	}
	return ctx.function(tag, x)
}

func (ctx *Context) negate(x *Node) *Node {
	if x.isNaN() {
		return ctx.nan.retain()
	}
	if x.kind == KindConstant {
		return ctx.constant(-x.value)
	}
	if n := x.stripNegate(); n != nil {
		return n.retain()
	}
	return ctx.function(FuncNegate, x)
}

func (ctx *Context) invert(x *Node) *Node {
	if x.isNaN() {
		return ctx.nan.retain()
	}
	if x.kind == KindConstant {
		return ctx.constant(1 / x.value)
	}
	if n := x.stripInvert(); n != nil {
		return n.retain()
	}
	return ctx.function(FuncInvert, x)
}

func (ctx *Context) abs(x *Node) *Node {
	if x.isNaN() {
		return ctx.nan.retain()
	}
	if x.kind == KindFunc {
		switch x.fn {
		case FuncAbs, FuncSqrt, FuncSquare, FuncXConic, FuncYConic, FuncZConic:
			return x.retain()
		case FuncNegate:
			return ctx.abs(x.a)
		}
	}
	return ctx.function(FuncAbs, x)
}

func (ctx *Context) sgn(x *Node) *Node {
	if x.isNaN() {
		return ctx.nan.retain()
	}
	return ctx.function(FuncSgn, x)
}

func (ctx *Context) sqrt(x *Node) *Node {
	if x.isNaN() {
		return ctx.nan.retain()
	}
	if x.kind == KindFunc && x.fn == FuncSquare {
		return ctx.abs(x.a)
	}
	return ctx.function(FuncSqrt, x)
}

func (ctx *Context) cbrt(x *Node) *Node {
	if x.isNaN() {
		return ctx.nan.retain()
	}
	return ctx.function(FuncCbrt, x)
}

func (ctx *Context) square(x *Node) *Node {
	if x.isNaN() {
		return ctx.nan.retain()
	}
	if x.kind == KindFunc {
		switch x.fn {
		case FuncSqrt:
			return x.a.retain()
		case FuncNegate:
			return ctx.square(x.a)
		case FuncAbs:
			return ctx.square(x.a)
		}
	}
	return ctx.function(FuncSquare, x)
}

func (ctx *Context) exp(x *Node) *Node {
	if x.isNaN() {
		return ctx.nan.retain()
	}
	if x.kind == KindFunc && x.fn == FuncLog {
		return x.a.retain()
	}
	if x.kind == KindFunc && x.fn == FuncNegate {
		tmp := ctx.exp(x.a)
		out := ctx.invert(tmp)
		tmp.release()
		return out
	}
	return ctx.function(FuncExp, x)
}

func (ctx *Context) expm1(x *Node) *Node {
	if x.isNaN() {
		return ctx.nan.retain()
	}
	return ctx.function(FuncExpM1, x)
}

func (ctx *Context) log(x *Node) *Node {
	if x.isNaN() {
		return ctx.nan.retain()
	}
	if x.kind == KindFunc && x.fn == FuncExp {
		return x.a.retain()
	}
	return ctx.function(FuncLog, x)
}

func (ctx *Context) log1p(x *Node) *Node {
	if x.isNaN() {
		return ctx.nan.retain()
	}
	return ctx.function(FuncLog1P, x)
}

func (ctx *Context) sin(x *Node) *Node {
	if x.isNaN() {
		return ctx.nan.retain()
	}
	if x.kind == KindFunc && x.fn == FuncASin {
		return x.a.retain()
	}
	if x.kind == KindFunc && x.fn == FuncNegate {
		tmp := ctx.sin(x.a)
		out := ctx.negate(tmp)
		tmp.release()
		return out
	}
	return ctx.function(FuncSin, x)
}

func (ctx *Context) cos(x *Node) *Node {
	if x.isNaN() {
		return ctx.nan.retain()
	}
	if x.kind == KindFunc && x.fn == FuncACos {
		return x.a.retain()
	}
	if x.kind == KindFunc && x.fn == FuncNegate {
		return ctx.cos(x.a)
	}
	return ctx.function(FuncCos, x)
}

func (ctx *Context) tan(x *Node) *Node {
	if x.isNaN() {
		return ctx.nan.retain()
	}
	if x.kind == KindFunc && x.fn == FuncATan {
		return x.a.retain()
	}
	if x.kind == KindFunc && x.fn == FuncNegate {
		tmp := ctx.tan(x.a)
		out := ctx.negate(tmp)
		tmp.release()
		return out
	}
	return ctx.function(FuncTan, x)
}

func (ctx *Context) sec(x *Node) *Node {
	if x.isNaN() {
		return ctx.nan.retain()
	}
	if x.kind == KindFunc && x.fn == FuncNegate {
		return ctx.sec(x.a)
	}
	return ctx.function(FuncSec, x)
}

func (ctx *Context) asin(x *Node) *Node {
	if x.isNaN() {
		return ctx.nan.retain()
	}
	if x.kind == KindFunc && x.fn == FuncSin && ctx.guaranteed(x.a, AttrUnitRange) {
		return x.a.retain()
	}
	return ctx.function(FuncASin, x)
}

func (ctx *Context) acos(x *Node) *Node {
	if x.isNaN() {
		return ctx.nan.retain()
	}
	if x.kind == KindFunc && x.fn == FuncCos && ctx.guaranteed(x.a, AttrUnitRange) {
		return x.a.retain()
	}
	return ctx.function(FuncACos, x)
}

func (ctx *Context) atan(x *Node) *Node {
	if x.isNaN() {
		return ctx.nan.retain()
	}
	if x.kind == KindFunc && x.fn == FuncTan {
		return x.a.retain()
	}
	return ctx.function(FuncATan, x)
}

func (ctx *Context) sinh(x *Node) *Node {
	if x.isNaN() {
		return ctx.nan.retain()
	}
	if x.kind == KindFunc && x.fn == FuncASinH {
		return x.a.retain()
	}
	if x.kind == KindFunc && x.fn == FuncNegate {
		tmp := ctx.sinh(x.a)
		out := ctx.negate(tmp)
		tmp.release()
		return out
	}
	return ctx.function(FuncSinH, x)
}

func (ctx *Context) cosh(x *Node) *Node {
	if x.isNaN() {
		return ctx.nan.retain()
	}
	if x.kind == KindFunc && x.fn == FuncACosH {
		return x.a.retain()
	}
	if x.kind == KindFunc && x.fn == FuncNegate {
		return ctx.cosh(x.a)
	}
	return ctx.function(FuncCosH, x)
}

func (ctx *Context) tanh(x *Node) *Node {
	if x.isNaN() {
		return ctx.nan.retain()
	}
	if x.kind == KindFunc && x.fn == FuncATanH {
		return x.a.retain()
	}
	return ctx.function(FuncTanH, x)
}

func (ctx *Context) sech(x *Node) *Node {
	if x.isNaN() {
		return ctx.nan.retain()
	}
	return ctx.function(FuncSecH, x)
}

func (ctx *Context) asinh(x *Node) *Node {
	if x.isNaN() {
		return ctx.nan.retain()
	}
	if x.kind == KindFunc && x.fn == FuncSinH {
		return x.a.retain()
	}
	if x.kind == KindFunc && x.fn == FuncXConic {
		tmp := ctx.abs(x.a)
		out := ctx.acosh(tmp)
		tmp.release()
		return out
	}
	return ctx.function(FuncASinH, x)
}

func (ctx *Context) acosh(x *Node) *Node {
	if x.isNaN() {
		return ctx.nan.retain()
	}
	if x.kind == KindFunc && x.fn == FuncCosH && ctx.guaranteed(x.a, AttrNonnegative) {
		return x.a.retain()
	}
	if x.kind == KindFunc && x.fn == FuncYConic {
		tmp := ctx.abs(x.a)
		out := ctx.asinh(tmp)
		tmp.release()
		return out
	}
	return ctx.function(FuncACosH, x)
}

func (ctx *Context) atanh(x *Node) *Node {
	if x.isNaN() {
		return ctx.nan.retain()
	}
	if x.kind == KindFunc && x.fn == FuncTanH {
		return x.a.retain()
	}
	return ctx.function(FuncATanH, x)
}

func (ctx *Context) erf(x *Node) *Node {
	if x.isNaN() {
		return ctx.nan.retain()
	}
	if x.kind == KindFunc && x.fn == FuncNegate {
		tmp := ctx.erf(x.a)
		out := ctx.negate(tmp)
		tmp.release()
		return out
	}
	return ctx.function(FuncErf, x)
}

func (ctx *Context) erfc(x *Node) *Node {
	if x.isNaN() {
		return ctx.nan.retain()
	}
	return ctx.function(FuncErfc, x)
}

func (ctx *Context) softpp(x *Node) *Node {
	if x.isNaN() {
		return ctx.nan.retain()
	}
	return ctx.function(FuncSoftPP, x)
}

func (ctx *Context) spenceNode(x *Node) *Node {
	if x.isNaN() {
		return ctx.nan.retain()
	}
	return ctx.function(FuncSpence, x)
}

// xconic(x) = sqrt(x^2-1); yconic(x) = sqrt(x^2+1); zconic(x) = sqrt(1-x^2).
// Dedicated node kinds (rather than building them from sqrt/square/add)
// keep repeated differentiation of the inverse trig/hyperbolic family from
// growing the radical subtree on every application.
func (ctx *Context) xconic(x *Node) *Node {
	if x.isNaN() {
		return ctx.nan.retain()
	}
	if x.kind == KindFunc {
		switch x.fn {
		case FuncNegate, FuncAbs:
			return ctx.xconic(x.a)
		case FuncYConic:
			return ctx.abs(x.a)
		}
	}
	return ctx.function(FuncXConic, x)
}

func (ctx *Context) yconic(x *Node) *Node {
	if x.isNaN() {
		return ctx.nan.retain()
	}
	if x.kind == KindFunc {
		switch x.fn {
		case FuncNegate, FuncAbs:
			return ctx.yconic(x.a)
		case FuncXConic:
			return ctx.abs(x.a)
		case FuncSinH:
			return ctx.cosh(x.a)
		}
	}
	return ctx.function(FuncYConic, x)
}

func (ctx *Context) zconic(x *Node) *Node {
	if x.isNaN() {
		return ctx.nan.retain()
	}
	if x.kind == KindFunc {
		switch x.fn {
		case FuncZConic:
			return ctx.abs(x.a)
		case FuncNegate, FuncAbs:
			return ctx.zconic(x.a)
		case FuncSin:
			tmp := ctx.cos(x.a)
			out := ctx.abs(tmp)
			tmp.release()
			return out
		case FuncCos:
			tmp := ctx.sin(x.a)
			out := ctx.abs(tmp)
			tmp.release()
			return out
		}
	}
	return ctx.function(FuncZConic, x)
}
