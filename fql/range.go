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

// LiteralRange is the decomposed form of a bounded range: a
// two-sided interval over a single field, for example
//
//	NUM >= '0' && NUM < '50'
//
// Several passes treat a bounded range as one indivisible
// predicate rather than as two comparisons.
type LiteralRange struct {
	Field   Ident
	LowerOp CmpOp // Greater or GreaterEquals
	Lower   Node
	UpperOp CmpOp // Less or LessEquals
	Upper   Node
}

// Marker returns the canonical physical form of the range:
// a Bounded marker over the two-bound conjunction.
func (lr *LiteralRange) Marker() *Marker {
	return Mark(Bounded, And(
		Compare(lr.LowerOp, lr.Field, lr.Lower),
		Compare(lr.UpperOp, lr.Field, lr.Upper),
	))
}

// FindRange extracts the bounded range denoted by n, if any.
// Both physical shapes are recognized: the Bounded marker form
// and the raw two-child conjunction of one lower and one upper
// bound over the same field, in either child order.
func FindRange(n Node) (*LiteralRange, bool) {
	n = Unwrap(n)
	if m, ok := n.(*Marker); ok {
		if m.Kind != Bounded {
			return nil, false
		}
		n = Unwrap(m.Source)
	}
	l, ok := n.(*Logical)
	if !ok || l.Op != OpAnd || len(l.Nodes) != 2 {
		return nil, false
	}
	a, aok := asBound(l.Nodes[0])
	b, bok := asBound(l.Nodes[1])
	if !aok || !bok || a.lower == b.lower {
		return nil, false
	}
	lo, hi := a, b
	if !a.lower {
		lo, hi = b, a
	}
	if lo.field != hi.field {
		return nil, false
	}
	return &LiteralRange{
		Field:   lo.field,
		LowerOp: lo.op,
		Lower:   lo.value,
		UpperOp: hi.op,
		Upper:   hi.value,
	}, true
}

type rangeBound struct {
	field Ident
	op    CmpOp
	value Node
	lower bool
}

// asBound decomposes 'FIELD <op> literal' for an ordering op.
func asBound(n Node) (rangeBound, bool) {
	c, ok := Unwrap(n).(*Comparison)
	if !ok || !c.Op.Ordinal() {
		return rangeBound{}, false
	}
	field, ok := Unwrap(c.Left).(Ident)
	if !ok {
		return rangeBound{}, false
	}
	value := Unwrap(c.Right)
	switch value.(type) {
	case String, Integer, Float:
	default:
		return rangeBound{}, false
	}
	return rangeBound{
		field: field,
		op:    c.Op,
		value: value,
		lower: c.Op == Greater || c.Op == GreaterEquals,
	}, true
}
