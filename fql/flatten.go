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

// Unwrap strips transparent wrappers from n: Ref, Paren, and
// single-child Logical nodes all denote exactly their child.
// Unwrap does not recurse into children.
func Unwrap(n Node) Node {
	for {
		switch t := n.(type) {
		case *Ref:
			n = t.Expr
		case *Paren:
			n = t.Expr
		case *Logical:
			if len(t.Nodes) != 1 {
				return n
			}
			n = t.Nodes[0]
		default:
			return n
		}
	}
}

// Flatten returns the canonical structural form of n:
// transparent wrappers are removed, nested same-operator
// conjunctions and disjunctions are merged into a single n-ary
// node, and a logical node left with one child collapses to
// that child. Flatten is idempotent.
//
// Markers are boundaries: a marker's source is flattened on its
// own and the marker is never merged into a surrounding
// conjunction, so marker identity survives normalization.
//
// Flatten consumes its input; the returned tree may share
// structure with it.
func Flatten(n Node) Node {
	if n == nil {
		return nil
	}
	switch t := n.(type) {
	case *Script:
		stmts := make([]Node, len(t.Stmts))
		for i := range t.Stmts {
			stmts[i] = Flatten(t.Stmts[i])
		}
		return &Script{Stmts: stmts}
	case *Block:
		body := make([]Node, len(t.Body))
		for i := range t.Body {
			body[i] = Flatten(t.Body[i])
		}
		return &Block{Body: body}
	case *Ref:
		return Flatten(t.Expr)
	case *Paren:
		return Flatten(t.Expr)
	case *Not:
		return &Not{Expr: Flatten(t.Expr)}
	case *Logical:
		flat := flattenInto(make([]Node, 0, len(t.Nodes)), t.Op, t.Nodes)
		if len(flat) == 1 {
			return flat[0]
		}
		return &Logical{Op: t.Op, Nodes: flat}
	case *Marker:
		return &Marker{Kind: t.Kind, Source: Flatten(t.Source)}
	case *Comparison:
		return &Comparison{Op: t.Op, Left: Flatten(t.Left), Right: Flatten(t.Right)}
	case *Func:
		args := make([]Node, len(t.Args))
		for i := range t.Args {
			args[i] = Flatten(t.Args[i])
		}
		return &Func{Namespace: t.Namespace, Name: t.Name, Args: args}
	case *Method:
		args := make([]Node, len(t.Args))
		for i := range t.Args {
			args[i] = Flatten(t.Args[i])
		}
		return &Method{Recv: Flatten(t.Recv), Name: t.Name, Args: args}
	default:
		return n
	}
}

// flattenInto appends the flattened members of nodes to dst,
// splicing the children of any member that flattens to a
// logical node with the same operator.
func flattenInto(dst []Node, op LogicalOp, nodes []Node) []Node {
	for i := range nodes {
		c := Flatten(nodes[i])
		if l, ok := c.(*Logical); ok && l.Op == op {
			dst = append(dst, l.Nodes...)
			continue
		}
		dst = append(dst, c)
	}
	return dst
}
