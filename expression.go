package symcore

// Expression is the user-facing, reference-counted handle onto a Node.
// Every constructor below returns an Expression already retained once on
// the caller's behalf; Release must be called exactly once per Expression
// obtained this way, since interning-table cleanup relies on refcounting
// rather than the garbage collector.
type Expression struct {
	ctx  *Context
	node *Node
}

func wrap(ctx *Context, n *Node) Expression {
	return Expression{ctx: ctx, node: n}
}

// Retain increments the underlying node's reference count and returns a
// second independent handle to the same node.
func (e Expression) Retain() Expression {
	e.node.retain()
	return e
}

// Release decrements the underlying node's reference count, collapsing
// the subtree from root to leaves once no handle references it.
func (e Expression) Release() {
	e.node.release()
}

// Context returns the Context this expression's node belongs to.
func (e Expression) Context() *Context { return e.ctx }

// FromVariable builds a leaf Expression referencing v.
func FromVariable(ctx *Context, v *Variable) Expression {
	return wrap(ctx, v.node())
}

// FromFloat builds a constant Expression.
func FromFloat(ctx *Context, x float64) Expression {
	return wrap(ctx, ctx.constant(x))
}

// FromInt builds a constant Expression from an integer.
func FromInt(ctx *Context, x int) Expression {
	return wrap(ctx, ctx.constant(float64(x)))
}

// Add returns e+o.
func (e Expression) Add(o Expression) Expression { return wrap(e.ctx, e.ctx.add(e.node, o.node)) }

// Sub returns e-o.
func (e Expression) Sub(o Expression) Expression {
	neg := e.ctx.negate(o.node)
	out := e.ctx.add(e.node, neg)
	neg.release()
	return wrap(e.ctx, out)
}

// Mul returns e*o.
func (e Expression) Mul(o Expression) Expression { return wrap(e.ctx, e.ctx.mul(e.node, o.node)) }

// Div returns e/o (built as e * (1/o)).
func (e Expression) Div(o Expression) Expression {
	inv := e.ctx.invert(o.node)
	out := e.ctx.mul(e.node, inv)
	inv.release()
	return wrap(e.ctx, out)
}

// Pow returns e^o.
func (e Expression) Pow(o Expression) Expression { return wrap(e.ctx, e.ctx.pow(e.node, o.node)) }

// Neg returns -e.
func (e Expression) Neg() Expression { return wrap(e.ctx, e.ctx.negate(e.node)) }

func (e Expression) Abs() Expression    { return wrap(e.ctx, e.ctx.abs(e.node)) }
func (e Expression) Sgn() Expression    { return wrap(e.ctx, e.ctx.sgn(e.node)) }
func (e Expression) Sqrt() Expression   { return wrap(e.ctx, e.ctx.sqrt(e.node)) }
func (e Expression) Cbrt() Expression   { return wrap(e.ctx, e.ctx.cbrt(e.node)) }
func (e Expression) Exp() Expression    { return wrap(e.ctx, e.ctx.exp(e.node)) }
func (e Expression) ExpM1() Expression  { return wrap(e.ctx, e.ctx.expm1(e.node)) }
func (e Expression) Log() Expression    { return wrap(e.ctx, e.ctx.log(e.node)) }
func (e Expression) Log1P() Expression  { return wrap(e.ctx, e.ctx.log1p(e.node)) }
func (e Expression) Sin() Expression    { return wrap(e.ctx, e.ctx.sin(e.node)) }
func (e Expression) Cos() Expression    { return wrap(e.ctx, e.ctx.cos(e.node)) }
func (e Expression) Tan() Expression    { return wrap(e.ctx, e.ctx.tan(e.node)) }
func (e Expression) Sec() Expression    { return wrap(e.ctx, e.ctx.sec(e.node)) }
func (e Expression) ASin() Expression   { return wrap(e.ctx, e.ctx.asin(e.node)) }
func (e Expression) ACos() Expression   { return wrap(e.ctx, e.ctx.acos(e.node)) }
func (e Expression) ATan() Expression   { return wrap(e.ctx, e.ctx.atan(e.node)) }
func (e Expression) SinH() Expression   { return wrap(e.ctx, e.ctx.sinh(e.node)) }
func (e Expression) CosH() Expression   { return wrap(e.ctx, e.ctx.cosh(e.node)) }
func (e Expression) TanH() Expression   { return wrap(e.ctx, e.ctx.tanh(e.node)) }
func (e Expression) SecH() Expression   { return wrap(e.ctx, e.ctx.sech(e.node)) }
func (e Expression) ASinH() Expression  { return wrap(e.ctx, e.ctx.asinh(e.node)) }
func (e Expression) ACosH() Expression  { return wrap(e.ctx, e.ctx.acosh(e.node)) }
func (e Expression) ATanH() Expression  { return wrap(e.ctx, e.ctx.atanh(e.node)) }
func (e Expression) Erf() Expression    { return wrap(e.ctx, e.ctx.erf(e.node)) }
func (e Expression) ErfC() Expression   { return wrap(e.ctx, e.ctx.erfc(e.node)) }
func (e Expression) Invert() Expression { return wrap(e.ctx, e.ctx.invert(e.node)) }
func (e Expression) Square() Expression { return wrap(e.ctx, e.ctx.square(e.node)) }
func (e Expression) XConic() Expression { return wrap(e.ctx, e.ctx.xconic(e.node)) }
func (e Expression) YConic() Expression { return wrap(e.ctx, e.ctx.yconic(e.node)) }
func (e Expression) ZConic() Expression { return wrap(e.ctx, e.ctx.zconic(e.node)) }
func (e Expression) SoftPP() Expression { return wrap(e.ctx, e.ctx.softpp(e.node)) }
func (e Expression) Spence() Expression { return wrap(e.ctx, e.ctx.spenceNode(e.node)) }

// Derive returns dE/dv. Each node keeps a single cached derivative slot,
// tagged with the Variable it was computed for; deriving wrt a different
// Variable recomputes and replaces it.
func (e Expression) Derive(v *Variable) Expression {
	return wrap(e.ctx, e.ctx.Derive(e.node, v))
}

// Purge clears every cached derivative reachable from this expression.
func (e Expression) Purge() { e.ctx.Purge(e.node) }

// Evaluate returns the expression's current numeric value.
func (e Expression) Evaluate() float64 { return e.ctx.Evaluate(e.node) }

// Guaranteed reports whether attribute a is provably true of e. A false
// result means "not provably true", never "definitely false".
func (e Expression) Guaranteed(a Attr) bool { return e.ctx.guaranteed(e.node, a) }

// Depth returns the node's structural depth, the same counter the
// stack-limit rebalancing guard watches.
func (e Expression) Depth() int32 { return e.node.depth }

// Touch forces every node's evaluation cache to be considered stale,
// without changing any variable's value - useful after external state a
// Variable doesn't own has changed.
func Touch(ctx *Context) { ctx.touch() }

// Bind substitutes v with replacement throughout e, rebuilding through the
// smart constructors so simplification runs on the substituted tree.
func (e Expression) Bind(v *Variable, replacement Expression) (Expression, error) {
	n, err := e.ctx.Bind(e.node, v, replacement.node)
	if err != nil {
		return Expression{}, err
	}
	return wrap(e.ctx, n), nil
}

// AtomicBind substitutes every (Variable, Expression) pair in subs
// simultaneously, under the pre-substitution tree.
func (e Expression) AtomicBind(subs map[*Variable]Expression) (Expression, error) {
	m := make(map[*Variable]*Node, len(subs))
	for v, r := range subs {
		m[v] = r.node
	}
	n, err := e.ctx.AtomicBind(e.node, m)
	if err != nil {
		return Expression{}, err
	}
	return wrap(e.ctx, n), nil
}

// AtomicAssignment pairs a Variable with the Expression whose current
// value should be assigned to it, for the free AtomicAssign function.
type AtomicAssignment struct {
	Var  *Variable
	Expr Expression
}

// AtomicAssign evaluates every update's expression under the current
// variable values, then writes all results simultaneously, so a set of
// mutually-dependent updates (e.g. swapping two variables) never observes
// a partially updated state. This is a free function, not a method,
// because it operates on a batch of (Variable, Expression) pairs rather
// than a single receiver.
func AtomicAssign(ctx *Context, updates []AtomicAssignment) error {
	batch := make([]VarUpdate, len(updates))
	for i, u := range updates {
		batch[i] = VarUpdate{Var: u.Var, Expr: u.Expr.node}
	}
	return ctx.AtomicAssign(batch)
}

// String renders e using the minimal-parenthesization printing contract
// : exact spelling is an observable contract exercised by tests.
func (e Expression) String() string { return e.ctx.String(e.node) }
