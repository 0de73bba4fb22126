package main

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/mjkallio/symcore"
)

// parseExpr parses a small infix expression language over +, -, *, /, ^,
// parentheses, numeric literals, bound variable names (resolved through
// s.variable so unbound names auto-register at 0), and calls to the
// function names listed in unaryFuncs (e.g. "sin(x)"). It exists so
// /tool's expression-taking calls can accept a human-typed formula
// instead of requiring a client to build the DAG itself over multiple
// calls.
func parseExpr(s *server, src string) (symcore.Expression, error) {
	p := &exprParser{s: s, toks: tokenize(src)}
	e, err := p.parseAdd()
	if err != nil {
		return symcore.Expression{}, err
	}
	if p.pos != len(p.toks) {
		return symcore.Expression{}, fmt.Errorf("unexpected token %q", p.toks[p.pos])
	}
	return e, nil
}

type exprParser struct {
	s    *server
	toks []string
	pos  int
}

func tokenize(src string) []string {
	var toks []string
	runes := []rune(src)
	for i := 0; i < len(runes); {
		c := runes[i]
		switch {
		case unicode.IsSpace(c):
			i++
		case strings.ContainsRune("+-*/^(),", c):
			toks = append(toks, string(c))
			i++
		case unicode.IsDigit(c) || c == '.':
			j := i
			for j < len(runes) && (unicode.IsDigit(runes[j]) || runes[j] == '.') {
				j++
			}
			toks = append(toks, string(runes[i:j]))
			i = j
		case unicode.IsLetter(c) || c == '_':
			j := i
			for j < len(runes) && (unicode.IsLetter(runes[j]) || unicode.IsDigit(runes[j]) || runes[j] == '_') {
				j++
			}
			toks = append(toks, string(runes[i:j]))
			i = j
		default:
			i++
		}
	}
	return toks
}

func (p *exprParser) peek() string {
	if p.pos < len(p.toks) {
		return p.toks[p.pos]
	}
	return ""
}

func (p *exprParser) next() string {
	t := p.peek()
	p.pos++
	return t
}

func (p *exprParser) parseAdd() (symcore.Expression, error) {
	left, err := p.parseMul()
	if err != nil {
		return symcore.Expression{}, err
	}
	for p.peek() == "+" || p.peek() == "-" {
		op := p.next()
		right, err := p.parseMul()
		if err != nil {
			return symcore.Expression{}, err
		}
		if op == "+" {
			left = left.Add(right)
		} else {
			left = left.Sub(right)
		}
	}
	return left, nil
}

func (p *exprParser) parseMul() (symcore.Expression, error) {
	left, err := p.parsePow()
	if err != nil {
		return symcore.Expression{}, err
	}
	for p.peek() == "*" || p.peek() == "/" {
		op := p.next()
		right, err := p.parsePow()
		if err != nil {
			return symcore.Expression{}, err
		}
		if op == "*" {
			left = left.Mul(right)
		} else {
			left = left.Div(right)
		}
	}
	return left, nil
}

func (p *exprParser) parsePow() (symcore.Expression, error) {
	base, err := p.parseUnary()
	if err != nil {
		return symcore.Expression{}, err
	}
	if p.peek() == "^" {
		p.next()
		exp, err := p.parsePow()
		if err != nil {
			return symcore.Expression{}, err
		}
		return base.Pow(exp), nil
	}
	return base, nil
}

func (p *exprParser) parseUnary() (symcore.Expression, error) {
	if p.peek() == "-" {
		p.next()
		e, err := p.parseUnary()
		if err != nil {
			return symcore.Expression{}, err
		}
		return e.Neg(), nil
	}
	return p.parseAtom()
}

var unaryFuncs = map[string]func(symcore.Expression) symcore.Expression{
	"abs":    symcore.Expression.Abs,
	"sqrt":   symcore.Expression.Sqrt,
	"cbrt":   symcore.Expression.Cbrt,
	"exp":    symcore.Expression.Exp,
	"log":    symcore.Expression.Log,
	"sin":    symcore.Expression.Sin,
	"cos":    symcore.Expression.Cos,
	"tan":    symcore.Expression.Tan,
	"asin":   symcore.Expression.ASin,
	"acos":   symcore.Expression.ACos,
	"atan":   symcore.Expression.ATan,
	"sinh":   symcore.Expression.SinH,
	"cosh":   symcore.Expression.CosH,
	"tanh":   symcore.Expression.TanH,
	"asinh":  symcore.Expression.ASinH,
	"acosh":  symcore.Expression.ACosH,
	"atanh":  symcore.Expression.ATanH,
	"erf":    symcore.Expression.Erf,
	"erfc":   symcore.Expression.ErfC,
	"square": symcore.Expression.Square,
}

func (p *exprParser) parseAtom() (symcore.Expression, error) {
	tok := p.peek()
	switch {
	case tok == "(":
		p.next()
		e, err := p.parseAdd()
		if err != nil {
			return symcore.Expression{}, err
		}
		if p.next() != ")" {
			return symcore.Expression{}, fmt.Errorf("expected )")
		}
		return e, nil
	case tok == "":
		return symcore.Expression{}, fmt.Errorf("unexpected end of expression")
	case tok[0] >= '0' && tok[0] <= '9' || tok[0] == '.':
		p.next()
		v, err := strconv.ParseFloat(tok, 64)
		if err != nil {
			return symcore.Expression{}, err
		}
		return symcore.FromFloat(p.s.ctx, v), nil
	default:
		p.next()
		if fn, ok := unaryFuncs[tok]; ok {
			if p.next() != "(" {
				return symcore.Expression{}, fmt.Errorf("expected ( after %s", tok)
			}
			arg, err := p.parseAdd()
			if err != nil {
				return symcore.Expression{}, err
			}
			if p.next() != ")" {
				return symcore.Expression{}, fmt.Errorf("expected )")
			}
			return fn(arg), nil
		}
		return symcore.FromVariable(p.s.ctx, p.s.variable(tok)), nil
	}
}
