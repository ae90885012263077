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

package model

import (
	"fmt"

	"github.com/winnowdata/winnow/fql"
)

// Apply rewrites tree so that every logical field name is
// replaced by the physical aliases m maps it to. valid, if
// non-nil, restricts substitution to the listed physical fields;
// a field whose aliases are all filtered out keeps its own name.
// The input should be flattened; the output is not guaranteed
// flat and callers normalize it afterwards.
//
// A comparison over an aliased field becomes the disjunction of
// one copy per alias (the cartesian product when both operands
// are aliased), except that equality against null and the
// complemented operators != and !~ distribute over conjunction
// instead. A bounded range, marker form or raw, becomes one
// Bounded marker per alias. Method calls pin their receiver
// expression, so any expression containing one has identifiers
// substituted in place rather than being split into copies.
// Ivarator marker sources are left untouched.
//
// Apply deep-copies tree before rewriting; the input is never
// mutated and may be reused.
func Apply(tree fql.Node, m *Model, valid []string) (fql.Node, error) {
	if tree == nil {
		return nil, nil
	}
	x := &expander{m: m}
	if valid != nil {
		x.valid = make(map[string]struct{}, len(valid))
		for i := range valid {
			x.valid[valid[i]] = struct{}{}
		}
	}
	return x.expand(fql.Copy(tree))
}

type expander struct {
	m     *Model
	valid map[string]struct{}
}

// aliases resolves a field name to its usable physical aliases:
// the model's mapping filtered to the valid set, falling back to
// the field itself when nothing remains.
func (x *expander) aliases(field string) []string {
	al := x.m.Aliases(field)
	if x.valid != nil {
		keep := al[:0]
		for i := range al {
			if _, ok := x.valid[al[i]]; ok {
				keep = append(keep, al[i])
			}
		}
		al = keep
	}
	if len(al) == 0 {
		return []string{field}
	}
	return al
}

// expand owns n (a copy of the caller's tree) and may mutate it.
func (x *expander) expand(n fql.Node) (fql.Node, error) {
	var err error
	switch t := n.(type) {
	case *fql.Script:
		for i := range t.Stmts {
			t.Stmts[i], err = x.expand(t.Stmts[i])
			if err != nil {
				return nil, err
			}
		}
		return t, nil
	case *fql.Block:
		for i := range t.Body {
			t.Body[i], err = x.expand(t.Body[i])
			if err != nil {
				return nil, err
			}
		}
		return t, nil
	case *fql.Ref:
		t.Expr, err = x.expand(t.Expr)
		return t, err
	case *fql.Paren:
		t.Expr, err = x.expand(t.Expr)
		return t, err
	case *fql.Not:
		t.Expr, err = x.expand(t.Expr)
		return t, err
	case *fql.Logical:
		if lr, ok := fql.FindRange(t); ok {
			return x.expandRange(lr), nil
		}
		for i := range t.Nodes {
			t.Nodes[i], err = x.expand(t.Nodes[i])
			if err != nil {
				return nil, err
			}
		}
		return t, nil
	case *fql.Marker:
		if t.Kind == fql.Bounded {
			lr, ok := fql.FindRange(t)
			if !ok {
				return nil, fmt.Errorf("%w: bounded marker source is not a range", fql.ErrMalformed)
			}
			return x.expandRange(lr), nil
		}
		if t.Opaque() {
			return t, nil
		}
		t.Source, err = x.expand(t.Source)
		return t, err
	case *fql.Comparison:
		return x.expandComparison(t)
	case *fql.Func:
		return x.restrict(t), nil
	case *fql.Method:
		return x.restrict(t), nil
	default:
		return n, nil
	}
}

// expandRange builds the physical form of a bounded range: one
// Bounded marker per alias of the range field, disjoined.
func (x *expander) expandRange(lr *fql.LiteralRange) fql.Node {
	al := x.aliases(string(lr.Field))
	nodes := make([]fql.Node, len(al))
	for i := range al {
		r := fql.LiteralRange{
			Field:   fql.Ident(al[i]),
			LowerOp: lr.LowerOp,
			Lower:   fql.Copy(lr.Lower),
			UpperOp: lr.UpperOp,
			Upper:   fql.Copy(lr.Upper),
		}
		nodes[i] = r.Marker()
	}
	return fql.Or(nodes...)
}

func (x *expander) expandComparison(c *fql.Comparison) (fql.Node, error) {
	if c.Left == nil || c.Right == nil {
		return nil, fmt.Errorf("%w: comparison missing an operand", fql.ErrMalformed)
	}
	if hasMethod(c.Left) || hasMethod(c.Right) {
		// a method call pins its receiver expression, so the
		// comparison cannot split into per-alias copies
		return x.restrict(c), nil
	}
	left := x.operandSet(c.Left)
	right := x.operandSet(c.Right)
	if len(left) == 1 && len(right) == 1 {
		c.Left, c.Right = left[0], right[0]
		return c, nil
	}
	nodes := make([]fql.Node, 0, len(left)*len(right))
	for i := range left {
		for j := range right {
			nodes = append(nodes, &fql.Comparison{
				Op:    c.Op,
				Left:  fql.Copy(left[i]),
				Right: fql.Copy(right[j]),
			})
		}
	}
	if requiresAnd(c) {
		return fql.And(nodes...), nil
	}
	return fql.Or(nodes...), nil
}

// operandSet returns the nodes an operand expands to. An
// identifier expands to its aliases; any other operand is a
// single element with nested identifiers substituted in place.
func (x *expander) operandSet(n fql.Node) []fql.Node {
	if id, ok := fql.Unwrap(n).(fql.Ident); ok {
		al := x.aliases(string(id))
		out := make([]fql.Node, len(al))
		for i := range al {
			out[i] = fql.Ident(al[i])
		}
		return out
	}
	return []fql.Node{x.restrict(n)}
}

// requiresAnd reports whether the expanded copies must all hold
// rather than any one. Equality against null states "the field
// is absent", which only holds if every alias is absent; the
// complemented operators distribute over conjunction the same
// way.
func requiresAnd(c *fql.Comparison) bool {
	if c.Op == fql.NotEquals || c.Op == fql.NotMatches {
		return true
	}
	if c.Op != fql.Equals {
		return false
	}
	if _, ok := fql.Unwrap(c.Left).(fql.Null); ok {
		return true
	}
	_, ok := fql.Unwrap(c.Right).(fql.Null)
	return ok
}

// restrict substitutes identifiers without splitting the
// enclosing expression: one alias replaces the identifier
// directly and several become a disjunction of identifiers.
func (x *expander) restrict(n fql.Node) fql.Node {
	return fql.Rewrite(aliasRewriter{x}, n)
}

type aliasRewriter struct {
	x *expander
}

func (a aliasRewriter) Walk(n fql.Node) fql.Rewriter { return a }

func (a aliasRewriter) Rewrite(n fql.Node) fql.Node {
	id, ok := n.(fql.Ident)
	if !ok {
		return n
	}
	al := a.x.aliases(string(id))
	if len(al) == 1 {
		return fql.Ident(al[0])
	}
	nodes := make([]fql.Node, len(al))
	for i := range al {
		nodes[i] = fql.Ident(al[i])
	}
	return fql.Or(nodes...)
}

type methodFinder struct {
	found bool
}

func (m *methodFinder) Visit(n fql.Node) fql.Visitor {
	if m.found || n == nil {
		return nil
	}
	if _, ok := n.(*fql.Method); ok {
		m.found = true
		return nil
	}
	return m
}

func hasMethod(n fql.Node) bool {
	f := &methodFinder{}
	fql.Walk(f, n)
	return f.found
}
