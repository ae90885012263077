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
	"strings"
	"testing"
)

func TestToString(t *testing.T) {
	tests := []struct {
		in   Node
		want string
	}{
		{eq("EVENT", "login"), "EVENT == 'login'"},
		{ne("EVENT", "login"), "EVENT != 'login'"},
		{er("NAME", "jo.*"), "NAME =~ 'jo.*'"},
		{nr("NAME", "jo.*"), "NAME !~ 'jo.*'"},
		{Compare(Less, Ident("NUM"), Integer(50)), "NUM < 50"},
		{Compare(GreaterEquals, Ident("NUM"), Float(2.5)), "NUM >= 2.5"},
		{Compare(Equals, Ident("OK"), Bool(true)), "OK == true"},
		{Compare(Equals, Ident("GONE"), Null{}), "GONE == null"},
		{Ident("FOO_BAR"), "FOO_BAR"},
		{String("it's"), `'it\'s'`},
		{String(`a\b`), `'a\\b'`},
		{
			And(eq("A", "1"), eq("B", "2")),
			"A == '1' && B == '2'",
		},
		{
			And(eq("A", "1"), Or(eq("B", "2"), eq("C", "3"))),
			"A == '1' && (B == '2' || C == '3')",
		},
		{
			&Not{Expr: eq("A", "1")},
			"!(A == '1')",
		},
		{
			&Paren{Expr: eq("A", "1")},
			"(A == '1')",
		},
		{
			&Ref{Expr: eq("A", "1")},
			"A == '1'",
		},
		{
			Call("filter", "includeRegex", Ident("NAME"), String("x.*")),
			"filter:includeRegex(NAME, 'x.*')",
		},
		{
			Call("", "matchesAtLeastCountOf", Integer(2), Ident("NAME"), String("a"), String("b")),
			"matchesAtLeastCountOf(2, NAME, 'a', 'b')",
		},
		{
			&Method{Recv: Ident("NAME"), Name: "size"},
			"NAME.size()",
		},
		{
			&Method{Recv: Ident("NAME"), Name: "getValuesForGroups", Args: []Node{String("g0")}},
			"NAME.getValuesForGroups('g0')",
		},
		{
			&Script{Stmts: []Node{eq("A", "1"), eq("B", "2")}},
			"A == '1'; B == '2'",
		},
		{
			&Block{Body: []Node{eq("A", "1")}},
			"{ A == '1' }",
		},
		{
			Mark(Bounded, rawRange("NUM", "0", "50")),
			"((_Bounded_ = true) && (NUM >= '0' && NUM < '50'))",
		},
		{
			Mark(ExceededTerm, er("NAME", ".*")),
			"((_Term_ = true) && (NAME =~ '.*'))",
		},
	}
	for i := range tests {
		if got := ToString(tests[i].in); got != tests[i].want {
			t.Errorf("case %d: got %s, want %s", i, got, tests[i].want)
		}
	}
	if got := ToString(nil); got != "<nil>" {
		t.Errorf("ToString(nil) = %q", got)
	}
}

func TestConstructors(t *testing.T) {
	if got := And(); got != nil {
		t.Errorf("And() = %s", ToString(got))
	}
	if got := Or(); got != nil {
		t.Errorf("Or() = %s", ToString(got))
	}
	one := eq("A", "1")
	if got := And(one); got != one {
		t.Errorf("And(x) = %s", ToString(got))
	}
	if got := Or(one); got != one {
		t.Errorf("Or(x) = %s", ToString(got))
	}
	three, ok := And(one, eq("B", "2"), eq("C", "3")).(*Logical)
	if !ok || three.Op != OpAnd || len(three.Nodes) != 3 {
		t.Errorf("And(x, y, z) built %s", ToString(three))
	}
}

func TestToRedacted(t *testing.T) {
	in := And(
		eq("USER", "halvorsen"),
		Or(Compare(Less, Ident("NUM"), Integer(42)), er("NAME", "secret.*")),
	)
	red := ToRedacted(in)
	if red == ToString(in) {
		t.Fatalf("redaction changed nothing: %s", red)
	}
	if red != ToRedacted(in) {
		t.Errorf("redaction is not deterministic")
	}
	// identifiers and operators survive, literal values do not
	for _, keep := range []string{"USER", "NUM", "NAME", "==", "<", "=~", "&&", "||"} {
		if !strings.Contains(red, keep) {
			t.Errorf("redacted form %s lost %q", red, keep)
		}
	}
	for _, gone := range []string{"halvorsen", "secret"} {
		if strings.Contains(red, gone) {
			t.Errorf("redacted form %s leaks %q", red, gone)
		}
	}
	// equal literals redact to equal tokens
	a := ToRedacted(eq("A", "x"))
	b := ToRedacted(eq("B", "x"))
	ai := strings.Index(a, "== ")
	bi := strings.Index(b, "== ")
	if ai < 0 || bi < 0 || a[ai:] != b[bi:] {
		t.Errorf("same literal redacted differently: %s vs %s", a, b)
	}
}

func TestQuote(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"simple", "'simple'"},
		{"", "''"},
		{"it's", `'it\'s'`},
		{`back\slash`, `'back\\slash'`},
		{"tab\there", `'tab\there'`},
	}
	for i := range tests {
		if got := Quote(tests[i].in); got != tests[i].want {
			t.Errorf("case %d: Quote(%q) = %s, want %s", i, tests[i].in, got, tests[i].want)
		}
	}
}

type upcase struct{}

func (u upcase) Rewrite(n Node) Node {
	if id, ok := n.(Ident); ok {
		return Ident(strings.ToUpper(string(id)))
	}
	return n
}

func (u upcase) Walk(n Node) Rewriter { return u }

func TestRewrite(t *testing.T) {
	in := And(
		Compare(Equals, Ident("event"), String("login")),
		&Not{Expr: Call("filter", "includeRegex", Ident("name"), String("x.*"))},
	)
	got := Rewrite(upcase{}, in)
	want := "EVENT == 'login' && !(filter:includeRegex(NAME, 'x.*'))"
	if s := ToString(got); s != want {
		t.Errorf("got %s, want %s", s, want)
	}
}

type countVisits int

func (c *countVisits) Visit(n Node) Visitor {
	if n != nil {
		*c++
	}
	return c
}

func TestWalk(t *testing.T) {
	in := And(
		eq("A", "1"),
		Or(eq("B", "2"), &Not{Expr: eq("C", "3")}),
	)
	// 2 connectives, 1 not, 3 comparisons, 3 idents, 3 strings
	var n countVisits
	Walk(&n, in)
	if n != 12 {
		t.Errorf("visited %d nodes, want 12", n)
	}
}
