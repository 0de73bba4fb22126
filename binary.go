package symcore

import "math"

// stackLimit bounds how deep a chain of same-kind binary nodes may grow
// before the smart constructors rebalance the tree via associativity
// instead of nesting further: depth-first recursion into a 10000+-deep
// Add/Mul chain would otherwise blow the call stack, and distributing
// keeps it shallow.
const stackLimit = 10000

func powKey(base, exp *Node) nodePair {
	return nodePair{base, exp}
}

// add builds x+y, simplifying and interning eagerly.
func (ctx *Context) add(x, y *Node) *Node {
	if x.isNaN() || y.isNaN() {
		return ctx.nan.retain()
	}
	if x.kind == KindConstant && y.kind == KindConstant {
		return ctx.constant(x.value + y.value)
	}
	if x.isConstant(0) {
		return y.retain()
	}
	if y.isConstant(0) {
		return x.retain()
	}

	// Sign propagation: -f + -g -> -(f+g). We special-case the two-negate
	// collapse here and leave x + (-g) as a structural Add (there is no
	// general subtraction node).
	if nx, ny := x.stripNegate(), y.stripNegate(); nx != nil && ny != nil {
		inner := ctx.add(nx, ny)
		out := ctx.negate(inner)
		inner.release()
		return out
	}

	if maxDepth(x, y) > stackLimit {
		if left, right := x, y; depthOf(left) >= depthOf(right) && left.kind == KindAdd {
			// (a+b)+y, a or b deeper: re-associate into a+(b+y) descending
			// into whichever child is deeper, keeping recursion shallow.
			if depthOf(left.a) >= depthOf(left.b) {
				inner := ctx.add(left.b, right)
				out := ctx.add(left.a, inner)
				inner.release()
				return out
			}
			inner := ctx.add(left.a, right)
			out := ctx.add(left.b, inner)
			inner.release()
			return out
		}
		if right := y; right.kind == KindAdd && depthOf(right) > depthOf(x) {
			if depthOf(right.a) >= depthOf(right.b) {
				inner := ctx.add(x, right.b)
				out := ctx.add(right.a, inner)
				inner.release()
				return out
			}
			inner := ctx.add(x, right.a)
			out := ctx.add(right.b, inner)
			inner.release()
			return out
		}
	}

	key := pairKey(x, y)
	if existing, ok := ctx.addTable[key]; ok {
		ctx.metrics.recordIntern(KindAdd, true)
		return existing.retain()
	}
	n := &Node{ctx: ctx, id: ctx.newID(), kind: KindAdd, a: x.retain(), b: y.retain(), depth: maxDepth(x, y) + 1, refs: 1}
	ctx.addTable[key] = n
	ctx.metrics.recordIntern(KindAdd, false)
	return n
}

// mul builds x*y, simplifying and interning eagerly.
func (ctx *Context) mul(x, y *Node) *Node {
	if x.isNaN() || y.isNaN() {
		return ctx.nan.retain()
	}
	if x.kind == KindConstant && y.kind == KindConstant {
		return ctx.constant(x.value * y.value)
	}
	if x.kind == KindConstant {
		switch x.value {
		case 0:
			return ctx.constant(0)
		case 1:
			return y.retain()
		case -1:
			return ctx.negate(y)
		}
	}
	if y.kind == KindConstant {
		switch y.value {
		case 0:
			return ctx.constant(0)
		case 1:
			return x.retain()
		case -1:
			return ctx.negate(x)
		}
	}

	// -f * -g -> f*g
	if nx, ny := x.stripNegate(), y.stripNegate(); nx != nil && ny != nil {
		return ctx.mul(nx, ny)
	}
	// -f * g -> -(f*g)
	if nx := x.stripNegate(); nx != nil {
		inner := ctx.mul(nx, y)
		out := ctx.negate(inner)
		inner.release()
		return out
	}
	if ny := y.stripNegate(); ny != nil {
		inner := ctx.mul(x, ny)
		out := ctx.negate(inner)
		inner.release()
		return out
	}

	// 1/f * 1/g -> 1/(f*g)
	if ix, iy := x.stripInvert(), y.stripInvert(); ix != nil && iy != nil {
		inner := ctx.mul(ix, iy)
		out := ctx.invert(inner)
		inner.release()
		return out
	}

	// (x^a)*x -> x^(a+1), x*(x^a) -> x^(a+1)
	if x.kind == KindPow && x.a == y {
		one := ctx.constant(1)
		newExp := ctx.add(x.b, one)
		one.release()
		out := ctx.pow(x.a, newExp)
		newExp.release()
		return out
	}
	if y.kind == KindPow && y.a == x {
		one := ctx.constant(1)
		newExp := ctx.add(y.b, one)
		one.release()
		out := ctx.pow(y.a, newExp)
		newExp.release()
		return out
	}

	if maxDepth(x, y) > stackLimit {
		// Distribute over the deeper Add operand: (a+b)*y -> a*y + b*y.
		if x.kind == KindAdd && depthOf(x) >= depthOf(y) {
			left := ctx.mul(x.a, y)
			right := ctx.mul(x.b, y)
			out := ctx.add(left, right)
			left.release()
			right.release()
			return out
		}
		if y.kind == KindAdd && depthOf(y) > depthOf(x) {
			left := ctx.mul(x, y.a)
			right := ctx.mul(x, y.b)
			out := ctx.add(left, right)
			left.release()
			right.release()
			return out
		}
	}

	key := pairKey(x, y)
	if existing, ok := ctx.mulTable[key]; ok {
		ctx.metrics.recordIntern(KindMul, true)
		return existing.retain()
	}
	n := &Node{ctx: ctx, id: ctx.newID(), kind: KindMul, a: x.retain(), b: y.retain(), depth: maxDepth(x, y) + 1, refs: 1}
	ctx.mulTable[key] = n
	ctx.metrics.recordIntern(KindMul, false)
	return n
}

// pow builds base^exp, simplifying and interning eagerly.
func (ctx *Context) pow(base, exp *Node) *Node {
	if base.isNaN() || exp.isNaN() {
		return ctx.nan.retain()
	}
	if exp.kind == KindConstant {
		switch exp.value {
		case 0:
			return ctx.constant(1)
		case 1:
			return base.retain()
		case 2:
			return ctx.square(base)
		case -1:
			return ctx.invert(base)
		case 0.5:
			return ctx.sqrt(base)
		case 1.0 / 3.0:
			return ctx.cbrt(base)
		}
	}
	if base.kind == KindConstant && exp.kind == KindConstant {
		return ctx.constant(math.Pow(base.value, exp.value))
	}
	if base.kind == KindConstant {
		switch base.value {
		case 0:
			if ctx.guaranteed(exp, AttrNonzero) {
				return ctx.constant(0)
			}
		case 1:
			return ctx.constant(1)
		}
	}

	// (x^(1/2))^e = x^(e/2), (x^(1/3))^e = x^(e/3), (x^2)^e = x^(2e)
	if base.kind == KindFunc && base.fn == FuncSqrt {
		half := ctx.constant(0.5)
		newExp := ctx.mul(exp, half)
		half.release()
		out := ctx.pow(base.a, newExp)
		newExp.release()
		return out
	}
	if base.kind == KindFunc && base.fn == FuncCbrt {
		third := ctx.constant(1.0 / 3.0)
		newExp := ctx.mul(exp, third)
		third.release()
		out := ctx.pow(base.a, newExp)
		newExp.release()
		return out
	}
	if base.kind == KindFunc && base.fn == FuncSquare {
		two := ctx.constant(2)
		newExp := ctx.mul(exp, two)
		two.release()
		out := ctx.pow(base.a, newExp)
		newExp.release()
		return out
	}
	// (x^a)^b = x^(a*b)
	if base.kind == KindPow {
		newExp := ctx.mul(base.b, exp)
		out := ctx.pow(base.a, newExp)
		newExp.release()
		return out
	}

	key := powKey(base, exp)
	if existing, ok := ctx.powTable[key]; ok {
		ctx.metrics.recordIntern(KindPow, true)
		return existing.retain()
	}
	n := &Node{ctx: ctx, id: ctx.newID(), kind: KindPow, a: base.retain(), b: exp.retain(), depth: maxDepth(base, exp) + 1, refs: 1}
	ctx.powTable[key] = n
	ctx.metrics.recordIntern(KindPow, false)
	return n
}
