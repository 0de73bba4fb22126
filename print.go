package symcore

import (
	"fmt"
	"strconv"
	"strings"
)

// String renders n with minimal parenthesization: parentheses appear only
// where operator precedence would otherwise make the output ambiguous, and
// a Variable prints as its display name if set, else a generated "x_"
// placeholder followed by the first 8 characters of its uuid.
func (ctx *Context) String(n *Node) string {
	var b strings.Builder
	writeNode(&b, n, 0)
	return b.String()
}

// precedence levels, low to high, used to decide when a child needs
// parenthesizing around its parent.
const (
	precAdd = iota
	precMul
	precUnary
	precPow
	precAtom
)

func writeNode(b *strings.Builder, n *Node, parent int) {
	switch n.kind {
	case KindNaN:
		b.WriteString("nan")
	case KindConstant:
		b.WriteString(formatConstant(n.value))
	case KindVariable:
		if n.variable.name != "" {
			b.WriteString(n.variable.name)
		} else {
			b.WriteString("x_" + n.variable.id.String()[:8])
		}
	case KindFunc:
		writeFunc(b, n)
	case KindAdd:
		wrapParen(b, precAdd, parent, func() {
			writeNode(b, n.a, precAdd)
			b.WriteString(" + ")
			writeNode(b, n.b, precAdd)
		})
	case KindMul:
		wrapParen(b, precMul, parent, func() {
			writeNode(b, n.a, precMul)
			b.WriteString("*")
			writeNode(b, n.b, precMul)
		})
	case KindPow:
		wrapParen(b, precPow, parent, func() {
			writeNode(b, n.a, precPow+1)
			b.WriteString("^")
			writeNode(b, n.b, precPow)
		})
	}
}

func writeFunc(b *strings.Builder, n *Node) {
	if n.fn == FuncNegate {
		b.WriteString("-")
		writeNode(b, n.a, precUnary)
		return
	}
	b.WriteString(n.fn.String())
	b.WriteString("(")
	writeNode(b, n.a, precAdd)
	b.WriteString(")")
}

func wrapParen(b *strings.Builder, level, parent int, body func()) {
	if level < parent {
		b.WriteString("(")
		body()
		b.WriteString(")")
		return
	}
	body()
}

func formatConstant(v float64) string {
	if v == float64(int64(v)) {
		return strconv.FormatInt(int64(v), 10)
	}
	return fmt.Sprintf("%g", v)
}
