package symcore

import "math"

// derive computes d/dVar of n, uninfluenced by any cache, and returns a
// retained node. This is the actual rule table; Derive (below) is the
// cached public entry point.
func (ctx *Context) derive(n *Node, v *Variable) *Node {
	switch n.kind {
	case KindNaN:
		return ctx.nan.retain()
	case KindConstant:
		return ctx.constant(0)
	case KindVariable:
		if n.variable == v {
			return ctx.constant(1)
		}
		return ctx.constant(0)
	case KindFunc:
		return ctx.deriveFunc(n, v)
	case KindAdd:
		df := ctx.Derive(n.a, v)
		dg := ctx.Derive(n.b, v)
		out := ctx.add(df, dg)
		df.release()
		dg.release()
		return out
	case KindMul:
		// d(f*g) = df*g + dg*f
		df := ctx.Derive(n.a, v)
		dg := ctx.Derive(n.b, v)
		t1 := ctx.mul(df, n.b)
		t2 := ctx.mul(dg, n.a)
		out := ctx.add(t1, t2)
		df.release()
		dg.release()
		t1.release()
		t2.release()
		return out
	case KindPow:
		// d(f^g) = df*g*f^(g-1) + dg*f^g*log(f)
		f, g := n.a, n.b
		df := ctx.Derive(f, v)
		dg := ctx.Derive(g, v)

		one := ctx.constant(1)
		negOne := ctx.negate(one)
		one.release()
		gMinus1 := ctx.add(g, negOne)
		negOne.release()
		fPowGMinus1 := ctx.pow(f, gMinus1)
		gMinus1.release()
		term1a := ctx.mul(df, g)
		term1 := ctx.mul(term1a, fPowGMinus1)
		term1a.release()
		fPowGMinus1.release()

		logf := ctx.log(f)
		term2a := ctx.mul(dg, n)
		term2 := ctx.mul(term2a, logf)
		term2a.release()
		logf.release()

		out := ctx.add(term1, term2)
		df.release()
		dg.release()
		term1.release()
		term2.release()
		return out
	}
	return ctx.nan.retain()
}

func (ctx *Context) deriveFunc(n *Node, v *Variable) *Node {
	f := n.a
	df := ctx.Derive(f, v)
	defer df.release()

	chain := func(inner *Node) *Node {
		out := ctx.mul(df, inner)
		inner.release()
		return out
	}

	switch n.fn {
	case FuncAbs:
		return chain(ctx.sgn(f))
	case FuncSgn:
		return ctx.constant(0)
	case FuncSqrt:
		half := ctx.constant(0.5)
		invSqrt := ctx.invert(n)
		inner := ctx.mul(half, invSqrt)
		half.release()
		invSqrt.release()
		return chain(inner)
	case FuncCbrt:
		third := ctx.constant(1.0 / 3.0)
		sq := ctx.square(n)
		invSq := ctx.invert(sq)
		sq.release()
		inner := ctx.mul(third, invSq)
		third.release()
		invSq.release()
		return chain(inner)
	case FuncExp:
		return chain(n.retain())
	case FuncExpM1:
		e := ctx.exp(f)
		return chain(e)
	case FuncLog:
		return chain(ctx.invert(f))
	case FuncLog1P:
		one := ctx.constant(1)
		fp1 := ctx.add(f, one)
		one.release()
		inv := ctx.invert(fp1)
		fp1.release()
		return chain(inv)
	case FuncSin:
		return chain(ctx.cos(f))
	case FuncCos:
		s := ctx.sin(f)
		neg := ctx.negate(s)
		s.release()
		return chain(neg)
	case FuncTan:
		s := ctx.sec(f)
		sq := ctx.square(s)
		s.release()
		return chain(sq)
	case FuncSec:
		t := ctx.tan(f)
		s := ctx.sec(f)
		inner := ctx.mul(t, s)
		t.release()
		s.release()
		return chain(inner)
	case FuncASin:
		z := ctx.zconic(f)
		inv := ctx.invert(z)
		z.release()
		return chain(inv)
	case FuncACos:
		z := ctx.zconic(f)
		inv := ctx.invert(z)
		z.release()
		neg := ctx.negate(inv)
		inv.release()
		return chain(neg)
	case FuncATan:
		y := ctx.yconic(f)
		sq := ctx.square(y)
		y.release()
		inv := ctx.invert(sq)
		sq.release()
		return chain(inv)
	case FuncSinH:
		return chain(ctx.cosh(f))
	case FuncCosH:
		return chain(ctx.sinh(f))
	case FuncTanH:
		s := ctx.sech(f)
		sq := ctx.square(s)
		s.release()
		return chain(sq)
	case FuncSecH:
		t := ctx.tanh(f)
		s := ctx.sech(f)
		inner := ctx.mul(t, s)
		t.release()
		s.release()
		neg := ctx.negate(inner)
		inner.release()
		return chain(neg)
	case FuncASinH:
		y := ctx.yconic(f)
		inv := ctx.invert(y)
		y.release()
		return chain(inv)
	case FuncACosH:
		x := ctx.xconic(f)
		inv := ctx.invert(x)
		x.release()
		return chain(inv)
	case FuncATanH:
		z := ctx.zconic(f)
		sq := ctx.square(z)
		z.release()
		inv := ctx.invert(sq)
		sq.release()
		return chain(inv)
	case FuncErf:
		// D(f) * 1/exp(f^2) * 1/sqrt(atan(1)), where atan(1) == pi/4.
		fsq := ctx.square(f)
		e := ctx.exp(fsq)
		fsq.release()
		invE := ctx.invert(e)
		e.release()
		c := ctx.constant(1 / sqrtQuarterPi)
		inner := ctx.mul(invE, c)
		invE.release()
		c.release()
		return chain(inner)
	case FuncErfc:
		fsq := ctx.square(f)
		e := ctx.exp(fsq)
		fsq.release()
		invE := ctx.invert(e)
		e.release()
		c := ctx.constant(-1 / sqrtQuarterPi)
		inner := ctx.mul(invE, c)
		invE.release()
		c.release()
		return chain(inner)
	case FuncInvert:
		sq := ctx.square(n)
		neg := ctx.negate(sq)
		sq.release()
		return chain(neg)
	case FuncNegate:
		return chain(ctx.constant(-1))
	case FuncSquare:
		two := ctx.constant(2)
		inner := ctx.mul(two, f)
		two.release()
		return chain(inner)
	case FuncXConic:
		x := ctx.xconic(f)
		inv := ctx.invert(x)
		x.release()
		inner := ctx.mul(f, inv)
		inv.release()
		return chain(inner)
	case FuncYConic:
		y := ctx.yconic(f)
		inv := ctx.invert(y)
		y.release()
		inner := ctx.mul(f, inv)
		inv.release()
		return chain(inner)
	case FuncZConic:
		z := ctx.zconic(f)
		inv := ctx.invert(z)
		z.release()
		neg := ctx.negate(f)
		inner := ctx.mul(neg, inv)
		neg.release()
		inv.release()
		return chain(inner)
	case FuncSoftPP:
		e := ctx.exp(f)
		l := ctx.log1p(e)
		e.release()
		return chain(l)
	case FuncSpence:
		// D(f) * log1p(-f) * 1/(-f)
		negF := ctx.negate(f)
		l := ctx.log1p(negF)
		invNegF := ctx.invert(negF)
		negF.release()
		inner := ctx.mul(l, invNegF)
		l.release()
		invNegF.release()
		return chain(inner)
	}
	return ctx.constant(0)
}

// sqrtQuarterPi == sqrt(atan(1)) == sqrt(pi/4), the normalization constant
// in Erf's and ErfC's derivative, computed as 1/sqrt(atan(1)) rather than
// the more common 2/sqrt(pi) form.
var sqrtQuarterPi = math.Sqrt(math.Atan(1))

// Derive returns d(n)/dVar(v), using a single per-node derivative cache: a
// node remembers only its most recently computed derivative, not one per
// variable. The slot records the Variable it was computed for, so calling
// Derive with a different Variable recomputes and replaces the cached entry.
func (ctx *Context) Derive(n *Node, v *Variable) *Node {
	if n.derivNode != nil && n.derivVar == v {
		return n.derivNode.retain()
	}
	d := ctx.derive(n, v)
	if n.derivNode != nil {
		n.derivNode.release()
	}
	n.derivNode = d.retain()
	n.derivVar = v
	return d
}

// Purge clears this node's cached derivative and every cached derivative
// reachable through its children, releasing the derivative nodes they held;
// a subsequent Derive recomputes from scratch.
func (ctx *Context) Purge(n *Node) {
	if n == nil {
		return
	}
	if n.derivNode != nil {
		n.derivNode.release()
		n.derivNode = nil
		n.derivVar = nil
	}
	ctx.Purge(n.a)
	ctx.Purge(n.b)
}
