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

// Copy returns a deep copy of n: no pointer-typed node reachable
// from the result is shared with n. Value-typed leaves are
// returned as-is since they cannot be mutated through the tree.
//
// Copy is the ownership primitive for passes that attach one
// logical node under more than one new parent.
func Copy(n Node) Node {
	if n == nil {
		return nil
	}
	switch t := n.(type) {
	case *Script:
		return &Script{Stmts: copyAll(t.Stmts)}
	case *Block:
		return &Block{Body: copyAll(t.Body)}
	case *Ref:
		return &Ref{Expr: Copy(t.Expr)}
	case *Paren:
		return &Paren{Expr: Copy(t.Expr)}
	case *Logical:
		return &Logical{Op: t.Op, Nodes: copyAll(t.Nodes)}
	case *Not:
		return &Not{Expr: Copy(t.Expr)}
	case *Comparison:
		return &Comparison{Op: t.Op, Left: Copy(t.Left), Right: Copy(t.Right)}
	case *Func:
		return &Func{Namespace: t.Namespace, Name: t.Name, Args: copyAll(t.Args)}
	case *Method:
		return &Method{Recv: Copy(t.Recv), Name: t.Name, Args: copyAll(t.Args)}
	case *Marker:
		return &Marker{Kind: t.Kind, Source: Copy(t.Source)}
	default:
		return n
	}
}

func copyAll(nodes []Node) []Node {
	if nodes == nil {
		return nil
	}
	out := make([]Node, len(nodes))
	for i := range nodes {
		out[i] = Copy(nodes[i])
	}
	return out
}
