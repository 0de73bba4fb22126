package symcore

import "github.com/pkg/errors"

// Bind returns a new expression obtained by substituting every occurrence
// of v with replacement, rebuilt through the smart constructors so
// simplification runs again on the substituted tree. Both n and
// replacement must belong to ctx.
func (ctx *Context) Bind(n *Node, v *Variable, replacement *Node) (*Node, error) {
	if v.ctx != ctx || replacement.ctx != ctx {
		return nil, errors.WithStack(ErrContextMismatch)
	}
	return ctx.substitute(n, map[*Variable]*Node{v: replacement}), nil
}

// AtomicBind substitutes every variable in subs simultaneously, in a
// single traversal, so a replacement expression that itself mentions one
// of the other bound variables is not further substituted.
func (ctx *Context) AtomicBind(n *Node, subs map[*Variable]*Node) (*Node, error) {
	for v, r := range subs {
		if v.ctx != ctx || r.ctx != ctx {
			return nil, errors.WithStack(ErrContextMismatch)
		}
	}
	return ctx.substitute(n, subs), nil
}

func (ctx *Context) substitute(n *Node, subs map[*Variable]*Node) *Node {
	switch n.kind {
	case KindNaN, KindConstant:
		return n.retain()
	case KindVariable:
		if r, ok := subs[n.variable]; ok {
			return r.retain()
		}
		return n.retain()
	case KindFunc:
		a := ctx.substitute(n.a, subs)
		out := ctx.applyFunc(n.fn, a)
		a.release()
		return out
	case KindAdd:
		a := ctx.substitute(n.a, subs)
		b := ctx.substitute(n.b, subs)
		out := ctx.add(a, b)
		a.release()
		b.release()
		return out
	case KindMul:
		a := ctx.substitute(n.a, subs)
		b := ctx.substitute(n.b, subs)
		out := ctx.mul(a, b)
		a.release()
		b.release()
		return out
	case KindPow:
		a := ctx.substitute(n.a, subs)
		b := ctx.substitute(n.b, subs)
		out := ctx.pow(a, b)
		a.release()
		b.release()
		return out
	}
	return ctx.nan.retain()
}

// VarUpdate pairs a Variable with the Expression whose current value it
// should be assigned, for AtomicAssign.
type VarUpdate struct {
	Var  *Variable
	Expr *Node
}

// AtomicAssign evaluates every update's expression under the *current*
// variable values before writing any of them, so simultaneous swaps (e.g.
// a, b = b, a) never observe a partially updated state. All
// variables and expressions must belong to ctx.
func (ctx *Context) AtomicAssign(updates []VarUpdate) error {
	for _, u := range updates {
		if u.Var.ctx != ctx || u.Expr.ctx != ctx {
			return errors.WithStack(ErrContextMismatch)
		}
	}
	snapshot := make([]float64, len(updates))
	for i, u := range updates {
		snapshot[i] = ctx.Evaluate(u.Expr)
	}
	for i, u := range updates {
		if err := u.Var.SetValue(snapshot[i]); err != nil {
			return err
		}
	}
	return nil
}
