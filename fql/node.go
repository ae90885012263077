// Copyright 2026 Winnow Data, Inc.
//
//  Licensed under the Apache License, Version 2.0 (the "License");
//  you may not use this file except in compliance with the License.
//  You may obtain a copy of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
//  Unless required by applicable law or agreed to in writing, software
//  distributed under the License is distributed on an "AS IS" BASIS,
//  WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
//  See the License for the specific language governing permissions and
//  limitations under the License.

// Package fql implements the syntax tree for the Winnow filter
// query language and the rewrite passes that normalize a tree
// before it reaches the planner: flattening, negation pushdown,
// field-alias expansion support, bounded-range handling, tree
// equality, and term counting.
//
// Trees are produced by a parser that is not part of this package.
// A rewrite pass consumes its input tree and returns a root that
// the caller then owns; the returned tree may share structure with
// the input, so callers must not keep using the input after the
// call. Passes that need to attach one logical node under more
// than one new parent deep-copy it first (see Copy).
package fql

import (
	"strconv"
	"strings"
)

// Visitor is an interface that must
// be satisfied by the argument to Visit.
//
// A Visitor's Visit method is invoked for each node encountered by Walk. If
// the result visitor w is not nil, Walk visits each of the children of node
// with the visitor w, followed by a call of w.Visit(nil).
//
// (see also: ast.Visitor)
type Visitor interface {
	Visit(Node) Visitor
}

// Rewriter accepts a Node and returns
// a new node (or just its argument)
type Rewriter interface {
	// Rewrite is applied to nodes
	// in depth-first order, and each
	// node is re-written to use the
	// returned value.
	Rewrite(Node) Node

	// Walk is called during node traversal
	// and the returned Rewriter is used for
	// all the children of Node.
	// If the returned rewriter is nil,
	// then traversal does not proceed past Node.
	Walk(Node) Rewriter
}

type nonleaf interface {
	rewrite(r Rewriter) Node
}

// Rewrite recursively applies a Rewriter in depth-first order
func Rewrite(r Rewriter, n Node) Node {
	if n == nil {
		return nil
	}
	nl, ok := n.(nonleaf)
	if ok {
		rc := r.Walk(n)
		if rc != nil {
			n = nl.rewrite(rc)
		}
	}
	n = r.Rewrite(n)
	return n
}

// Walk traverses an AST in depth-first order: It starts by calling
// v.Visit(node); node must not be nil. If the visitor w returned by
// v.Visit(node) is not nil, Walk is invoked recursively with visitor w for
// each of the non-nil children of node, followed by a call of w.Visit(nil).
//
// (see also: ast.Walk)
func Walk(v Visitor, n Node) {
	w := v.Visit(n)
	if w != nil {
		n.walk(w)
		w.Visit(nil)
	}
}

// ToString returns the string
// representation of this AST node
// and its children in FQL syntax
func ToString(p Printable) string {
	if p == nil {
		return "<nil>"
	}
	var dst strings.Builder
	p.text(&dst, false)
	return dst.String()
}

// ToRedacted returns the string
// representation of this AST node
// and its children in FQL syntax,
// but with all literals replaced
// with random (deterministic) values.
func ToRedacted(p Printable) string {
	if p == nil {
		return "<nil>"
	}
	var dst strings.Builder
	p.text(&dst, true)
	return dst.String()
}

type Printable interface {
	// text should write the textual representation
	// of this node to dst, and should redact itself
	// if it is a literal and redact is true
	text(dst *strings.Builder, redact bool)
}

// Node is a filter expression AST node
type Node interface {
	Printable

	walk(Visitor)
}

// Script is the root produced by parsing one query:
// an ordered sequence of statements. Filter queries
// have exactly one statement in practice, but the
// tree model does not rely on that.
type Script struct {
	Stmts []Node
}

func (s *Script) text(dst *strings.Builder, redact bool) {
	for i := range s.Stmts {
		if i != 0 {
			dst.WriteString("; ")
		}
		s.Stmts[i].text(dst, redact)
	}
}

func (s *Script) walk(v Visitor) {
	for i := range s.Stmts {
		Walk(v, s.Stmts[i])
	}
}

func (s *Script) rewrite(r Rewriter) Node {
	for i := range s.Stmts {
		s.Stmts[i] = Rewrite(r, s.Stmts[i])
	}
	return s
}

// Block is a braced statement body.
type Block struct {
	Body []Node
}

func (b *Block) text(dst *strings.Builder, redact bool) {
	dst.WriteString("{ ")
	for i := range b.Body {
		if i != 0 {
			dst.WriteString("; ")
		}
		b.Body[i].text(dst, redact)
	}
	dst.WriteString(" }")
}

func (b *Block) walk(v Visitor) {
	for i := range b.Body {
		Walk(v, b.Body[i])
	}
}

func (b *Block) rewrite(r Rewriter) Node {
	for i := range b.Body {
		b.Body[i] = Rewrite(r, b.Body[i])
	}
	return b
}

// Ref is the reference wrapper the parser leaves
// around value expressions. It is transparent:
// a Ref means exactly its child, and Flatten
// removes it.
type Ref struct {
	Expr Node
}

func (f *Ref) text(dst *strings.Builder, redact bool) {
	f.Expr.text(dst, redact)
}

func (f *Ref) walk(v Visitor) {
	Walk(v, f.Expr)
}

func (f *Ref) rewrite(r Rewriter) Node {
	f.Expr = Rewrite(r, f.Expr)
	return f
}

// Paren is an explicit parenthesization.
// Like Ref it is transparent and Flatten removes it;
// it exists so that printed trees round-trip through
// the parser with their original grouping.
type Paren struct {
	Expr Node
}

func (p *Paren) text(dst *strings.Builder, redact bool) {
	dst.WriteByte('(')
	p.Expr.text(dst, redact)
	dst.WriteByte(')')
}

func (p *Paren) walk(v Visitor) {
	Walk(v, p.Expr)
}

func (p *Paren) rewrite(r Rewriter) Node {
	p.Expr = Rewrite(r, p.Expr)
	return p
}

// Ident is a field identifier
type Ident string

func (i Ident) text(dst *strings.Builder, redact bool) {
	dst.WriteString(string(i))
}

func (i Ident) walk(v Visitor) {}

// String is a literal string AST node
type String string

func (s String) text(dst *strings.Builder, redact bool) {
	v := string(s)
	if redact {
		v = redactString(v)
	}
	quote(dst, v)
}

func (s String) walk(v Visitor) {}

// Integer is a literal integer AST node
type Integer int64

func (i Integer) text(dst *strings.Builder, redact bool) {
	var buf [32]byte
	v := int64(i)
	if redact {
		v = redactInt(v)
	}
	dst.Write(strconv.AppendInt(buf[:0], v, 10))
}

func (i Integer) walk(v Visitor) {}

// Float is a literal float AST node
type Float float64

func (f Float) text(dst *strings.Builder, redact bool) {
	var buf [32]byte
	v := float64(f)
	if redact {
		v = redactFloat(v)
	}
	dst.Write(strconv.AppendFloat(buf[:0], v, 'g', -1, 64))
}

func (f Float) walk(v Visitor) {}

// Bool is a literal boolean AST node
type Bool bool

func (b Bool) text(dst *strings.Builder, redact bool) {
	if b {
		dst.WriteString("true")
	} else {
		dst.WriteString("false")
	}
}

func (b Bool) walk(v Visitor) {}

// Null is the null literal
type Null struct{}

func (n Null) text(dst *strings.Builder, redact bool) {
	dst.WriteString("null")
}

func (n Null) walk(v Visitor) {}

// LogicalOp is a logical operation
type LogicalOp int

const (
	OpAnd LogicalOp = iota // A && B
	OpOr                   // A || B
)

func (l LogicalOp) String() string {
	switch l {
	case OpAnd:
		return "&&"
	case OpOr:
		return "||"
	}
	return "<unknown logical op>"
}

// Logical is a Node that represents an n-ary
// conjunction or disjunction. Child order is
// not semantically meaningful.
type Logical struct {
	Op    LogicalOp
	Nodes []Node
}

func (l *Logical) walk(v Visitor) {
	for i := range l.Nodes {
		Walk(v, l.Nodes[i])
	}
}

func (l *Logical) rewrite(r Rewriter) Node {
	for i := range l.Nodes {
		l.Nodes[i] = Rewrite(r, l.Nodes[i])
	}
	return l
}

func (l *Logical) text(dst *strings.Builder, redact bool) {
	var middle string
	switch l.Op {
	case OpAnd:
		middle = " && "
	case OpOr:
		middle = " || "
	default:
		middle = " <unknown logical op> "
	}
	for i := range l.Nodes {
		if i != 0 {
			dst.WriteString(middle)
		}
		// nested logical expressions must keep their
		// own grouping when printed inside this one
		if _, ok := l.Nodes[i].(*Logical); ok {
			dst.WriteByte('(')
			l.Nodes[i].text(dst, redact)
			dst.WriteByte(')')
		} else {
			l.Nodes[i].text(dst, redact)
		}
	}
}

// And yields '<args[0]> && <args[1]> && ...'.
// It returns nil for no arguments and args[0]
// for a single argument.
func And(args ...Node) Node {
	switch len(args) {
	case 0:
		return nil
	case 1:
		return args[0]
	}
	return &Logical{Op: OpAnd, Nodes: args}
}

// Or yields '<args[0]> || <args[1]> || ...'.
// It returns nil for no arguments and args[0]
// for a single argument.
func Or(args ...Node) Node {
	switch len(args) {
	case 0:
		return nil
	case 1:
		return args[0]
	}
	return &Logical{Op: OpOr, Nodes: args}
}

// Not yields
//
//	!(Expr)
type Not struct {
	Expr Node
}

func (n *Not) text(dst *strings.Builder, redact bool) {
	dst.WriteString("!(")
	n.Expr.text(dst, redact)
	dst.WriteByte(')')
}

func (n *Not) walk(v Visitor) {
	Walk(v, n.Expr)
}

func (n *Not) rewrite(r Rewriter) Node {
	n.Expr = Rewrite(r, n.Expr)
	return n
}

// CmpOp is a comparison operation type
type CmpOp int

const (
	Equals CmpOp = iota
	NotEquals

	// note: keep these in order
	// so that we can determine
	// quickly if we are performing
	// an ordinal comparison:

	Less
	LessEquals
	Greater
	GreaterEquals

	Matches    // regular expression match
	NotMatches // negated regular expression match
)

func (c CmpOp) String() string {
	switch c {
	case Equals:
		return "=="
	case NotEquals:
		return "!="
	case Less:
		return "<"
	case LessEquals:
		return "<="
	case Greater:
		return ">"
	case GreaterEquals:
		return ">="
	case Matches:
		return "=~"
	case NotMatches:
		return "!~"
	default:
		return "<unknown cmp op>"
	}
}

// Ordinal returns whether the comparison
// is an ordering comparison (<, <=, >, >=).
func (c CmpOp) Ordinal() bool {
	return c >= Less && c <= GreaterEquals
}

// Compare generates a comparison operation
// of the given type and with the given arguments
func Compare(op CmpOp, left, right Node) Node {
	return &Comparison{Op: op, Left: left, Right: right}
}

// Comparison is a Node that compares
// a field against a literal (or, rarely,
// a field against a field)
type Comparison struct {
	Op          CmpOp
	Left, Right Node
}

func (c *Comparison) walk(v Visitor) {
	if c.Left != nil {
		Walk(v, c.Left)
	}
	if c.Right != nil {
		Walk(v, c.Right)
	}
}

func (c *Comparison) rewrite(r Rewriter) Node {
	c.Left = Rewrite(r, c.Left)
	c.Right = Rewrite(r, c.Right)
	return c
}

func (c *Comparison) text(dst *strings.Builder, redact bool) {
	// logical expressions bind more loosely than
	// comparisons, so they need explicit grouping
	// when they appear as an operand
	if _, ok := c.Left.(*Logical); ok {
		dst.WriteByte('(')
		c.Left.text(dst, redact)
		dst.WriteByte(')')
	} else {
		c.Left.text(dst, redact)
	}
	dst.WriteByte(' ')
	dst.WriteString(c.Op.String())
	dst.WriteByte(' ')
	parens := false
	if _, ok := c.Right.(*Comparison); ok {
		parens = true
	}
	if _, ok := c.Right.(*Logical); ok {
		parens = true
	}
	if parens {
		dst.WriteByte('(')
	}
	c.Right.text(dst, redact)
	if parens {
		dst.WriteByte(')')
	}
}

// Call yields 'namespace:name(args...)'.
func Call(namespace, name string, args ...Node) *Func {
	return &Func{Namespace: namespace, Name: name, Args: args}
}

// Func is a Node that represents a call to a
// namespaced filter function, for example
//
//	filter:includeRegex(NAME, 'pat.*')
type Func struct {
	Namespace string // function namespace; may be empty
	Name      string // function name
	Args      []Node // function arguments
}

func (f *Func) walk(v Visitor) {
	for i := range f.Args {
		Walk(v, f.Args[i])
	}
}

func (f *Func) rewrite(r Rewriter) Node {
	for i := range f.Args {
		f.Args[i] = Rewrite(r, f.Args[i])
	}
	return f
}

func (f *Func) text(dst *strings.Builder, redact bool) {
	if f.Namespace != "" {
		dst.WriteString(f.Namespace)
		dst.WriteByte(':')
	}
	dst.WriteString(f.Name)
	dst.WriteByte('(')
	for i := range f.Args {
		if i != 0 {
			dst.WriteString(", ")
		}
		f.Args[i].text(dst, redact)
	}
	dst.WriteByte(')')
}

// Method is a Node that represents a method call
// on a receiver expression, for example
//
//	NAME.size()
type Method struct {
	Recv Node
	Name string
	Args []Node
}

func (m *Method) walk(v Visitor) {
	Walk(v, m.Recv)
	for i := range m.Args {
		Walk(v, m.Args[i])
	}
}

func (m *Method) rewrite(r Rewriter) Node {
	m.Recv = Rewrite(r, m.Recv)
	for i := range m.Args {
		m.Args[i] = Rewrite(r, m.Args[i])
	}
	return m
}

func (m *Method) text(dst *strings.Builder, redact bool) {
	if _, ok := m.Recv.(*Logical); ok {
		dst.WriteByte('(')
		m.Recv.text(dst, redact)
		dst.WriteByte(')')
	} else {
		m.Recv.text(dst, redact)
	}
	dst.WriteByte('.')
	dst.WriteString(m.Name)
	dst.WriteByte('(')
	for i := range m.Args {
		if i != 0 {
			dst.WriteString(", ")
		}
		m.Args[i].text(dst, redact)
	}
	dst.WriteByte(')')
}
