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
	"fmt"

	"golang.org/x/exp/slices"
)

// Equivalent reports whether a and b denote the same query.
//
// Two trees are equivalent if they are structurally equal after
// stripping transparent wrappers, where the children of a
// conjunction or disjunction may appear in any order. Neither
// tree needs to be flattened first.
func Equivalent(a, b Node) bool {
	return Diff(a, b) == nil
}

// Diff returns nil if a and b are equivalent (see Equivalent),
// or an error describing the first mismatch found. The error is
// built innermost-first with %w, so the full chain reads from
// the root difference down to the leaf that caused it.
//
// Children are matched as a multiset by greedy first-fit: for
// each child of a, the first not-yet-consumed equivalent child
// of b is taken. First-fit is not a full bipartite search, so
// pathological trees exist where a valid pairing is missed
// because an earlier match consumed the wrong candidate; the
// trees this package produces do not have that shape.
func Diff(a, b Node) error {
	return diff(a, b)
}

func diff(a, b Node) error {
	a = Unwrap(a)
	b = Unwrap(b)
	if a == b {
		return nil
	}
	if a == nil || b == nil {
		return kindErr(a, b)
	}
	switch t := a.(type) {
	case Ident:
		o, ok := b.(Ident)
		if !ok {
			return kindErr(a, b)
		}
		if t != o {
			return fmt.Errorf("identifiers differ: %s vs %s", t, o)
		}
		return nil
	case String:
		o, ok := b.(String)
		if !ok {
			return kindErr(a, b)
		}
		if t != o {
			return valueErr(a, b)
		}
		return nil
	case Integer:
		o, ok := b.(Integer)
		if !ok {
			return kindErr(a, b)
		}
		if t != o {
			return valueErr(a, b)
		}
		return nil
	case Float:
		o, ok := b.(Float)
		if !ok {
			return kindErr(a, b)
		}
		if t != o {
			return valueErr(a, b)
		}
		return nil
	case Bool:
		o, ok := b.(Bool)
		if !ok {
			return kindErr(a, b)
		}
		if t != o {
			return valueErr(a, b)
		}
		return nil
	case Null:
		if _, ok := b.(Null); !ok {
			return kindErr(a, b)
		}
		return nil
	case *Logical:
		o, ok := b.(*Logical)
		if !ok || o.Op != t.Op {
			return kindErr(a, b)
		}
	case *Not:
		if _, ok := b.(*Not); !ok {
			return kindErr(a, b)
		}
	case *Comparison:
		o, ok := b.(*Comparison)
		if !ok || o.Op != t.Op {
			return kindErr(a, b)
		}
	case *Func:
		o, ok := b.(*Func)
		if !ok {
			return kindErr(a, b)
		}
		if t.Namespace != o.Namespace || t.Name != o.Name {
			return fmt.Errorf("functions differ: %s vs %s", funcHeader(t), funcHeader(o))
		}
	case *Method:
		o, ok := b.(*Method)
		if !ok {
			return kindErr(a, b)
		}
		if t.Name != o.Name {
			return fmt.Errorf("methods differ: %s vs %s", t.Name, o.Name)
		}
	case *Marker:
		o, ok := b.(*Marker)
		if !ok {
			return kindErr(a, b)
		}
		if t.Kind != o.Kind {
			return fmt.Errorf("marker kinds differ: %s vs %s", t.Kind, o.Kind)
		}
	case *Script:
		if _, ok := b.(*Script); !ok {
			return kindErr(a, b)
		}
	case *Block:
		if _, ok := b.(*Block); !ok {
			return kindErr(a, b)
		}
	default:
		return fmt.Errorf("cannot compare %T nodes", a)
	}
	return childDiff(a, b)
}

// childDiff matches the normalized child lists of a and b as
// multisets, greedily consuming b's children in order.
func childDiff(a, b Node) error {
	ak := listChildren(a)
	bk := listChildren(b)
	if len(ak) != len(bk) {
		return fmt.Errorf("child counts differ: %d vs %d (%s vs %s)",
			len(ak), len(bk), ToString(a), ToString(b))
	}
	rem := slices.Clone(bk)
	for i := range ak {
		matched := false
		var last error
		for j := range rem {
			err := diff(ak[i], rem[j])
			if err == nil {
				rem = slices.Delete(rem, j, j+1)
				matched = true
				break
			}
			last = err
		}
		if !matched {
			return fmt.Errorf("no match for %s in %s: %w",
				ToString(ak[i]), ToString(b), last)
		}
	}
	return nil
}

// listChildren returns the normalized child list of n: each
// child is stripped of transparent wrappers, and children of a
// logical node that are themselves logicals with the same
// operator are spliced in at this level.
func listChildren(n Node) []Node {
	switch t := n.(type) {
	case *Script:
		return unwrapAll(t.Stmts)
	case *Block:
		return unwrapAll(t.Body)
	case *Not:
		return []Node{Unwrap(t.Expr)}
	case *Logical:
		return spliceSameOp(make([]Node, 0, len(t.Nodes)), t.Op, t.Nodes)
	case *Comparison:
		return []Node{Unwrap(t.Left), Unwrap(t.Right)}
	case *Func:
		return unwrapAll(t.Args)
	case *Method:
		out := make([]Node, 0, len(t.Args)+1)
		out = append(out, Unwrap(t.Recv))
		for i := range t.Args {
			out = append(out, Unwrap(t.Args[i]))
		}
		return out
	case *Marker:
		return []Node{Unwrap(t.Source)}
	default:
		return nil
	}
}

func unwrapAll(nodes []Node) []Node {
	out := make([]Node, len(nodes))
	for i := range nodes {
		out[i] = Unwrap(nodes[i])
	}
	return out
}

func spliceSameOp(dst []Node, op LogicalOp, nodes []Node) []Node {
	for i := range nodes {
		c := Unwrap(nodes[i])
		if l, ok := c.(*Logical); ok && l.Op == op {
			dst = spliceSameOp(dst, op, l.Nodes)
			continue
		}
		dst = append(dst, c)
	}
	return dst
}

func kindErr(a, b Node) error {
	return fmt.Errorf("node kinds differ: %s vs %s", kindOf(a), kindOf(b))
}

func valueErr(a, b Node) error {
	return fmt.Errorf("values differ: %s vs %s", ToString(a), ToString(b))
}

func kindOf(n Node) string {
	switch t := n.(type) {
	case nil:
		return "<nil>"
	case *Script:
		return "script"
	case *Block:
		return "block"
	case *Ref:
		return "ref"
	case *Paren:
		return "paren"
	case *Logical:
		if t.Op == OpAnd {
			return "and"
		}
		return "or"
	case *Not:
		return "not"
	case *Comparison:
		return t.Op.String()
	case Ident:
		return "identifier"
	case String:
		return "string"
	case Integer:
		return "integer"
	case Float:
		return "float"
	case Bool:
		return "boolean"
	case Null:
		return "null"
	case *Func:
		return "function"
	case *Method:
		return "method"
	case *Marker:
		return "marker"
	default:
		return fmt.Sprintf("%T", n)
	}
}

func funcHeader(f *Func) string {
	if f.Namespace == "" {
		return f.Name
	}
	return f.Namespace + ":" + f.Name
}
