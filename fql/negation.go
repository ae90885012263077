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

// PushDownNegations rewrites n so that every negation is either
// eliminated or wraps only a leaf predicate or an opaque subtree.
// Negations over conjunctions and disjunctions are pushed down
// with De Morgan's law, adjacent negations cancel, and negated
// != and !~ comparisons flip to == and =~. Negations are never
// pushed into == or =~ (the planner needs those shapes intact),
// nor into bounded ranges or ivarator markers; a negation over a
// non-opaque marker moves inside the wrapper onto its source.
//
// The result is logically equivalent to the input. The input is
// flattened on entry (De Morgan's law needs n-ary shape) and the
// output is flattened again, since removing a negation can
// re-introduce collapsible nesting.
func PushDownNegations(n Node) Node {
	n = Flatten(n)
	n, _ = pushdown(n, false)
	return Flatten(n)
}

// pushdown carries the pending-negation flag down the tree and
// reports whether the subtree absorbed it. When the flag comes
// back false the caller still owns the negation and must keep
// its Not node. When negated is false the returned flag is
// always false.
func pushdown(n Node, negated bool) (Node, bool) {
	switch t := n.(type) {
	case *Not:
		if negated {
			// adjacent negations cancel; anything below this
			// point starts over with no negation pending
			out, _ := pushdown(t.Expr, false)
			return out, true
		}
		out, absorbed := pushdown(t.Expr, true)
		if absorbed {
			return out, false
		}
		return &Not{Expr: out}, false
	case *Logical:
		if negated {
			if t.Op == OpAnd {
				if _, ok := FindRange(t); ok {
					// a bounded range is one predicate,
					// not a conjunction to split
					return t, false
				}
			}
			return demorgan(t), true
		}
		nodes := make([]Node, len(t.Nodes))
		for i := range t.Nodes {
			nodes[i], _ = pushdown(t.Nodes[i], false)
		}
		return &Logical{Op: t.Op, Nodes: nodes}, false
	case *Comparison:
		if negated {
			switch t.Op {
			case NotEquals:
				return &Comparison{Op: Equals, Left: t.Left, Right: t.Right}, true
			case NotMatches:
				return &Comparison{Op: Matches, Left: t.Left, Right: t.Right}, true
			}
		}
		return t, false
	case *Marker:
		if t.Opaque() {
			// the execution layer depends on the exact shape
			// under an ivarator or bounded-range marker, so the
			// subtree is left alone entirely
			return t, false
		}
		if negated {
			src, absorbed := pushdown(t.Source, true)
			if !absorbed {
				return t, false
			}
			return &Marker{Kind: t.Kind, Source: src}, true
		}
		src, _ := pushdown(t.Source, false)
		return &Marker{Kind: t.Kind, Source: src}, false
	case *Script:
		stmts := make([]Node, len(t.Stmts))
		for i := range t.Stmts {
			stmts[i], _ = pushdown(t.Stmts[i], false)
		}
		return &Script{Stmts: stmts}, false
	case *Block:
		body := make([]Node, len(t.Body))
		for i := range t.Body {
			body[i], _ = pushdown(t.Body[i], false)
		}
		return &Block{Body: body}, false
	case *Ref:
		return pushdown(t.Expr, negated)
	case *Paren:
		return pushdown(t.Expr, negated)
	default:
		// comparisons were handled above; functions, methods
		// and literals are opaque to negation
		return n, false
	}
}

// demorgan replaces l with its dual: the operator flips and
// every child is negated.
func demorgan(l *Logical) Node {
	op := OpOr
	if l.Op == OpOr {
		op = OpAnd
	}
	nodes := make([]Node, len(l.Nodes))
	for i := range l.Nodes {
		nodes[i] = negated(l.Nodes[i])
	}
	return &Logical{Op: op, Nodes: nodes}
}

// negated returns the negation of n with the negation already
// pushed as deep as it will go; if nothing below absorbed it,
// the result is an explicit Not.
func negated(n Node) Node {
	out, absorbed := pushdown(n, true)
	if absorbed {
		return out
	}
	return &Not{Expr: out}
}
