package symcore

import "github.com/google/uuid"

// nodePair is the interning key for the two commutative binary kinds (Add,
// Mul). A context-level map keyed by a canonically ordered pair guarantees
// at most one Add/Mul node for a given unordered pair of children, with a
// single map entry per pair and without requiring each Node to carry its
// own table.
type nodePair struct {
	x, y *Node
}

// pairKey canonicalizes (x, y) into (x, y) or (y, x), whichever orders its
// operands by ascending node id, so Add(f,g) and Add(g,f) land on the same
// table slot. Pow is not commutative and is keyed in construction order
// instead (see powKey in binary.go).
func pairKey(x, y *Node) nodePair {
	if x.id <= y.id {
		return nodePair{x, y}
	}
	return nodePair{y, x}
}

// funcKey is the interning key for unary function nodes: the function tag
// plus its single argument.
type funcKey struct {
	tag FuncTag
	x   *Node
}

// Context owns every interning table and the dirty-level counter for one
// independent universe of expressions, rather than process-global tables:
// every construction and evaluation call threads an explicit *Context, so
// two Contexts never interact and concurrent callers simply use separate
// Contexts instead of relying on internal locking.
type Context struct {
	nextID uint64

	dirtyLevel uint64

	nan       *Node
	constants map[float64]*Node
	variables map[uuid.UUID]*Node

	addTable  map[nodePair]*Node
	mulTable  map[nodePair]*Node
	powTable  map[nodePair]*Node
	funcTable map[funcKey]*Node

	metrics *Metrics
}

// NewContext creates an empty, independent universe of interning tables.
func NewContext() *Context {
	ctx := &Context{
		dirtyLevel: 1, // node cleanLevel zero-values to 0, so every node starts dirty.
		constants: make(map[float64]*Node),
		variables: make(map[uuid.UUID]*Node),
		addTable:  make(map[nodePair]*Node),
		mulTable:  make(map[nodePair]*Node),
		powTable:  make(map[nodePair]*Node),
		funcTable: make(map[funcKey]*Node),
		metrics:   newMetrics(),
	}
	ctx.nan = &Node{ctx: ctx, id: ctx.newID(), kind: KindNaN, refs: 1}
	return ctx
}

func (ctx *Context) newID() uint64 {
	ctx.nextID++
	return ctx.nextID
}

// touch bumps the dirty level, invalidating every node's evaluation cache
// in O(1): each node's cleanLevel is compared against it in evaluate.
func (ctx *Context) touch() {
	ctx.dirtyLevel++
	ctx.metrics.DirtyBumps.Inc()
}

// Metrics returns the prometheus collectors backing this Context, for a
// collaborator to register on its own /metrics endpoint.
func (ctx *Context) Metrics() *Metrics { return ctx.metrics }

// InterningSize reports the number of live entries in each interning table,
// for tests that check refcount collapse : after releasing
// the last handle to a subtree, these counts must return to what they were
// before construction.
func (ctx *Context) InterningSize() (constants, variables, add, mul, pow, funcs int) {
	return len(ctx.constants), len(ctx.variables), len(ctx.addTable), len(ctx.mulTable), len(ctx.powTable), len(ctx.funcTable)
}
