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

// CountTerms returns the number of leaf predicates in n. The
// planner uses the count as a cost heuristic before building
// index lookups.
//
// Every comparison contributes 1 and every function call
// contributes 1, without recursing into their operands. A
// bounded range contributes 1 for the whole range rather than
// 2 for its bounds. Conjunctions and disjunctions contribute
// the sum of their children.
func CountTerms(n Node) int {
	if n == nil {
		return 0
	}
	switch t := n.(type) {
	case *Script:
		return sumTerms(t.Stmts)
	case *Block:
		return sumTerms(t.Body)
	case *Ref:
		return CountTerms(t.Expr)
	case *Paren:
		return CountTerms(t.Expr)
	case *Not:
		return CountTerms(t.Expr)
	case *Logical:
		if t.Op == OpAnd {
			if _, ok := FindRange(t); ok {
				return 1
			}
		}
		return sumTerms(t.Nodes)
	case *Marker:
		if t.Kind == Bounded {
			return 1
		}
		return CountTerms(t.Source)
	case *Comparison:
		return 1
	case *Func:
		return 1
	default:
		return 0
	}
}

func sumTerms(nodes []Node) int {
	total := 0
	for i := range nodes {
		total += CountTerms(nodes[i])
	}
	return total
}
