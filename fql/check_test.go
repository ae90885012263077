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
	"strings"
	"testing"
)

func TestCheckValid(t *testing.T) {
	tests := []Node{
		eq("A", "1"),
		And(eq("A", "1"), Or(eq("B", "2"), &Not{Expr: eq("C", "3")})),
		boundedRange("NUM", "0", "50"),
		Mark(Delayed, incl("NAME", "x.*")),
		&Script{Stmts: []Node{eq("A", "1"), eq("B", "2")}},
		&Block{Body: []Node{eq("A", "1")}},
		&Method{Recv: Ident("NAME"), Name: "size"},
		Compare(Equals, Ident("OK"), Bool(true)),
		&Paren{Expr: &Ref{Expr: Null{}}},
	}
	for i := range tests {
		if err := Check(tests[i]); err != nil {
			t.Errorf("case %d: %s: %v", i, ToString(tests[i]), err)
		}
	}
}

func TestCheckMalformed(t *testing.T) {
	tests := []struct {
		in   Node
		want string
	}{
		{
			nil,
			"nil root",
		},
		{
			&Logical{Op: OpAnd},
			"no children",
		},
		{
			&Logical{Op: OpOr, Nodes: []Node{eq("A", "1"), nil}},
			"nil child",
		},
		{
			&Comparison{Op: Equals, Left: Ident("A")},
			"comparison missing an operand",
		},
		{
			&Not{},
			"negation with no child",
		},
		{
			&Ref{},
			"reference with no child",
		},
		{
			&Paren{},
			"parenthesized expression with no child",
		},
		{
			&Func{Namespace: "filter", Args: []Node{Ident("A")}},
			"function call with no name",
		},
		{
			&Func{Name: "f", Args: []Node{nil}},
			"nil argument",
		},
		{
			&Method{Name: "size"},
			"method call with no receiver",
		},
		{
			&Method{Recv: Ident("NAME")},
			"method call with no name",
		},
		{
			Mark("_Bogus_", eq("A", "1")),
			"unknown marker kind",
		},
		{
			&Marker{Kind: Delayed},
			"marker with no source",
		},
		{
			Mark(Bounded, eq("A", "1")),
			"bounded marker source is not a two-bound range",
		},
		{
			&Script{},
			"script has no statements",
		},
		{
			// the broken node may be arbitrarily deep
			And(eq("A", "1"), Or(eq("B", "2"), &Comparison{Op: Less, Right: String("5")})),
			"comparison missing an operand",
		},
	}
	for i := range tests {
		err := Check(tests[i].in)
		if err == nil {
			t.Errorf("case %d: malformed tree passed", i)
			continue
		}
		if !errors.Is(err, ErrMalformed) {
			t.Errorf("case %d: error %v does not wrap ErrMalformed", i, err)
		}
		if !strings.Contains(err.Error(), tests[i].want) {
			t.Errorf("case %d: error %q does not mention %q", i, err, tests[i].want)
		}
	}
}

func TestCheckCombinesErrors(t *testing.T) {
	in := And(
		&Comparison{Op: Equals, Left: Ident("A")},
		&Not{},
		eq("B", "2"),
	)
	err := Check(in)
	if err == nil {
		t.Fatal("malformed tree passed")
	}
	if !strings.Contains(err.Error(), "1 other error") {
		t.Errorf("error %q does not count the remaining failures", err)
	}
	if !errors.Is(err, ErrMalformed) {
		t.Errorf("combined error does not wrap ErrMalformed")
	}
}

func TestCheckStopsBelowBrokenNodes(t *testing.T) {
	// the checker must not descend into a node that failed,
	// which would dereference its nil children
	in := And(&Not{}, &Comparison{Op: Equals})
	err := Check(in)
	if err == nil {
		t.Fatal("malformed tree passed")
	}
}
