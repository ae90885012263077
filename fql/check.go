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

package fql

import (
	"errors"
	"fmt"
)

// ErrMalformed is the sentinel wrapped by errors that indicate a
// structurally broken tree. A malformed tree means an upstream
// invariant was violated; callers must surface the error rather
// than continue rewriting.
var ErrMalformed = errors.New("malformed query tree")

// StructureError is the error type returned from Check when a
// tree violates a structural invariant.
type StructureError struct {
	At  Node
	Msg string
}

// Error implements error. The node is identified by kind, not
// by its printed form: a malformed node cannot be printed.
func (s *StructureError) Error() string {
	return fmt.Sprintf("malformed %s node: %s", kindOf(s.At), s.Msg)
}

func (s *StructureError) Unwrap() error {
	return ErrMalformed
}

func errstruct(at Node, msg string) *StructureError {
	return &StructureError{At: at, Msg: msg}
}

type checker interface {
	check() error
}

type checkwalk struct {
	errors []error
}

func (c *checkwalk) Visit(n Node) Visitor {
	if n == nil {
		return nil
	}
	ce, ok := n.(checker)
	if ok {
		err := ce.check()
		if err != nil {
			c.errors = append(c.errors, err)
			return nil
		}
	}
	return c
}

func combine(err []error) error {
	if len(err) == 1 {
		return err[0]
	}
	return fmt.Errorf("%w and %d other errors", err[0], len(err)-1)
}

// Check walks the AST given by n and verifies the structural
// invariants the rewrite passes rely on: connectives and
// wrappers have their children, comparisons have both operands,
// markers carry a registered kind, and a bounded-range marker
// decorates an actual two-bound range.
func Check(n Node) error {
	if n == nil {
		return errstruct(nil, "nil root")
	}
	c := &checkwalk{}
	Walk(c, n)
	if c.errors == nil {
		return nil
	}
	return combine(c.errors)
}

func (s *Script) check() error {
	if len(s.Stmts) == 0 {
		return errstruct(s, "script has no statements")
	}
	for i := range s.Stmts {
		if s.Stmts[i] == nil {
			return errstruct(s, "nil statement")
		}
	}
	return nil
}

func (b *Block) check() error {
	for i := range b.Body {
		if b.Body[i] == nil {
			return errstruct(b, "nil statement")
		}
	}
	return nil
}

func (f *Ref) check() error {
	if f.Expr == nil {
		return errstruct(f, "reference with no child")
	}
	return nil
}

func (p *Paren) check() error {
	if p.Expr == nil {
		return errstruct(p, "parenthesized expression with no child")
	}
	return nil
}

func (l *Logical) check() error {
	if len(l.Nodes) == 0 {
		return errstruct(l, "logical expression with no children")
	}
	for i := range l.Nodes {
		if l.Nodes[i] == nil {
			return errstruct(l, "nil child")
		}
	}
	return nil
}

func (n *Not) check() error {
	if n.Expr == nil {
		return errstruct(n, "negation with no child")
	}
	return nil
}

func (c *Comparison) check() error {
	if c.Left == nil || c.Right == nil {
		return errstruct(c, "comparison missing an operand")
	}
	return nil
}

func (f *Func) check() error {
	if f.Name == "" {
		return errstruct(f, "function call with no name")
	}
	for i := range f.Args {
		if f.Args[i] == nil {
			return errstruct(f, "nil argument")
		}
	}
	return nil
}

func (m *Method) check() error {
	if m.Recv == nil {
		return errstruct(m, "method call with no receiver")
	}
	if m.Name == "" {
		return errstruct(m, "method call with no name")
	}
	for i := range m.Args {
		if m.Args[i] == nil {
			return errstruct(m, "nil argument")
		}
	}
	return nil
}

func (m *Marker) check() error {
	if !KnownMarker(m.Kind) {
		return errstruct(m, fmt.Sprintf("unknown marker kind %s", m.Kind))
	}
	if m.Source == nil {
		return errstruct(m, "marker with no source")
	}
	if m.Kind == Bounded {
		if _, ok := FindRange(m); !ok {
			return errstruct(m, "bounded marker source is not a two-bound range")
		}
	}
	return nil
}
