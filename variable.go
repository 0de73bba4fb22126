package symcore

import (
	"math"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// Variable is a named, mutable leaf of the expression DAG. Its
// identity is the uuid token, not its address or its display name: two
// Variables with the same name are still distinct, and the same Variable
// keeps its identity across renames. This is what the variable interning
// table is keyed on, so a Context can be logged or diffed by variable
// identity without leaking Go pointers.
type Variable struct {
	ctx   *Context
	id    uuid.UUID
	name  string
	value float64
}

// NewVariable creates a Variable initialized to 0, owned by ctx.
func NewVariable(ctx *Context) *Variable {
	return &Variable{ctx: ctx, id: uuid.New()}
}

// Name returns the variable's display name, or "" if unset.
func (v *Variable) Name() string { return v.name }

// SetName sets the variable's display name, used by String and by the
// collaborator binaries for user-facing output.
func (v *Variable) SetName(name string) { v.name = name }

// Value returns the variable's current real value.
func (v *Variable) Value() float64 { return v.value }

// SetValue assigns a new value to the variable and bumps the owning
// Context's dirty level, lazily invalidating every node's evaluation cache.
// Assigning a non-finite value is a usage error and is rejected rather than
// silently stored.
func (v *Variable) SetValue(x float64) error {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return errors.Wrapf(ErrNonFinite, "variable %q assigned %v", v.name, x)
	}
	v.value = x
	v.ctx.touch()
	klog.V(4).InfoS("variable assigned", "name", v.name, "value", x)
	return nil
}

// node returns (creating if necessary) the interned KindVariable Node for
// this Variable, retained once for the caller.
func (v *Variable) node() *Node {
	ctx := v.ctx
	if existing, ok := ctx.variables[v.id]; ok {
		ctx.metrics.recordIntern(KindVariable, true)
		return existing.retain()
	}
	n := &Node{ctx: ctx, id: ctx.newID(), kind: KindVariable, variable: v, depth: 1, refs: 1}
	ctx.variables[v.id] = n
	ctx.metrics.recordIntern(KindVariable, false)
	return n
}
