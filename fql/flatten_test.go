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
	"testing"
)

func TestFlatten(t *testing.T) {
	tests := []struct {
		in   Node
		want string
	}{
		{
			And(eq("A", "1"), And(eq("B", "2"), eq("C", "3"))),
			"A == '1' && B == '2' && C == '3'",
		},
		{
			Or(Or(eq("A", "1"), eq("B", "2")), Or(eq("C", "3"), Or(eq("D", "4"), eq("E", "5")))),
			"A == '1' || B == '2' || C == '3' || D == '4' || E == '5'",
		},
		{
			&Paren{Expr: &Ref{Expr: eq("A", "1")}},
			"A == '1'",
		},
		{
			&Logical{Op: OpAnd, Nodes: []Node{eq("B", "2")}},
			"B == '2'",
		},
		{
			// mixed operators do not merge
			And(eq("A", "1"), Or(eq("B", "2"), eq("C", "3"))),
			"A == '1' && (B == '2' || C == '3')",
		},
		{
			Or(And(eq("A", "1"), eq("B", "2")), And(eq("C", "3"), eq("D", "4"))),
			"(A == '1' && B == '2') || (C == '3' && D == '4')",
		},
		{
			// markers are boundaries; their source flattens internally
			And(eq("A", "1"), Mark(Delayed, And(eq("B", "2"), And(eq("C", "3"), eq("D", "4"))))),
			"A == '1' && ((_Delayed_ = true) && (B == '2' && C == '3' && D == '4'))",
		},
		{
			&Not{Expr: &Paren{Expr: eq("A", "1")}},
			"!(A == '1')",
		},
		{
			&Script{Stmts: []Node{And(eq("A", "1"), And(eq("B", "2"), eq("C", "3")))}},
			"A == '1' && B == '2' && C == '3'",
		},
		{
			// a parenthesized conjunction splices into its parent
			And(&Paren{Expr: And(eq("A", "1"), eq("B", "2"))}, eq("C", "3")),
			"A == '1' && B == '2' && C == '3'",
		},
		{
			&Comparison{Op: Equals, Left: &Paren{Expr: Ident("A")}, Right: String("1")},
			"A == '1'",
		},
		{
			rawRange("NUM", "0", "50"),
			"NUM >= '0' && NUM < '50'",
		},
		{
			Call("filter", "includeRegex", &Ref{Expr: Ident("NAME")}, String("x.*")),
			"filter:includeRegex(NAME, 'x.*')",
		},
	}
	for i := range tests {
		got := Flatten(tests[i].in)
		if s := ToString(got); s != tests[i].want {
			t.Errorf("case %d: got %s, want %s", i, s, tests[i].want)
		}
		checkFlat(t, got)
		again := Flatten(got)
		if s := ToString(again); s != tests[i].want {
			t.Errorf("case %d: not idempotent: got %s", i, s)
		}
	}
}

func TestFlattenNil(t *testing.T) {
	if got := Flatten(nil); got != nil {
		t.Errorf("Flatten(nil) = %s", ToString(got))
	}
}

// checkFlat asserts the canonical-form invariant: no transparent
// wrappers, no connective with fewer than two children, and no
// connective child with the same operator as its parent.
func checkFlat(t *testing.T, n Node) {
	t.Helper()
	switch v := n.(type) {
	case nil:
		return
	case *Ref, *Paren:
		t.Errorf("wrapper survived flattening: %s", ToString(n))
	case *Logical:
		if len(v.Nodes) < 2 {
			t.Errorf("connective %s flattened to %d children", ToString(n), len(v.Nodes))
		}
		for i := range v.Nodes {
			if c, ok := v.Nodes[i].(*Logical); ok && c.Op == v.Op {
				t.Errorf("nested %s under %s: %s", c.Op, v.Op, ToString(n))
			}
			checkFlat(t, v.Nodes[i])
		}
	case *Not:
		checkFlat(t, v.Expr)
	case *Marker:
		checkFlat(t, v.Source)
	case *Comparison:
		checkFlat(t, v.Left)
		checkFlat(t, v.Right)
	case *Func:
		for i := range v.Args {
			checkFlat(t, v.Args[i])
		}
	case *Method:
		checkFlat(t, v.Recv)
		for i := range v.Args {
			checkFlat(t, v.Args[i])
		}
	case *Script:
		for i := range v.Stmts {
			checkFlat(t, v.Stmts[i])
		}
	case *Block:
		for i := range v.Body {
			checkFlat(t, v.Body[i])
		}
	}
}

func BenchmarkFlatten(b *testing.B) {
	// a deep left-leaning conjunction with disjunctions mixed in
	n := Node(eq("F0", "v"))
	for i := 1; i < 64; i++ {
		if i%4 == 0 {
			n = And(n, Or(eq("G", "1"), eq("H", "2")))
			continue
		}
		n = And(n, eq("F", "v"))
	}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Flatten(n)
	}
}
