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
)

// MarkerKind names the special handling a Marker requests
// for its source subtree. The kind is also the identifier
// used in the printed wire form, so parsers and printers
// agree on marker identity by name.
type MarkerKind string

const (
	// Delayed tags a predicate whose evaluation has been
	// deferred past index lookup.
	Delayed MarkerKind = "_Delayed_"
	// EvalOnly tags a predicate that can only be checked
	// against full records, never against an index.
	EvalOnly MarkerKind = "_Eval_"
	// ExceededValue tags a predicate whose value expansion
	// overflowed its threshold.
	ExceededValue MarkerKind = "_Value_"
	// ExceededTerm tags a predicate whose term expansion
	// overflowed its threshold.
	ExceededTerm MarkerKind = "_Term_"
	// ExceededOr tags a disjunction that overflowed the
	// maximum disjunction size.
	ExceededOr MarkerKind = "_List_"
	// IndexHole tags a predicate over a field range that is
	// known to be missing from the index.
	IndexHole MarkerKind = "_Hole_"
	// Bounded tags a two-sided range over a single field.
	Bounded MarkerKind = "_Bounded_"
)

type markerInfo struct {
	// ivarator markers decorate subtrees that the execution
	// layer evaluates with stateful iterators; rewrite passes
	// must not restructure them
	ivarator bool
}

var markers = map[MarkerKind]markerInfo{
	Delayed:       {},
	EvalOnly:      {},
	ExceededValue: {ivarator: true},
	ExceededTerm:  {ivarator: true},
	ExceededOr:    {ivarator: true},
	IndexHole:     {},
	Bounded:       {},
}

// RegisterMarker adds a marker kind to the known set.
// It must be called before any trees are processed
// (init time); registering a kind twice panics.
func RegisterMarker(kind MarkerKind, ivarator bool) {
	if _, ok := markers[kind]; ok {
		panic("fql: RegisterMarker called twice for " + string(kind))
	}
	markers[kind] = markerInfo{ivarator: ivarator}
}

// KnownMarker returns whether kind has been registered.
func KnownMarker(kind MarkerKind) bool {
	_, ok := markers[kind]
	return ok
}

// Ivarator returns whether the kind belongs to the
// ivarator class (see RegisterMarker).
func (k MarkerKind) Ivarator() bool {
	return markers[k].ivarator
}

// Mark tags source with the given marker kind.
func Mark(kind MarkerKind, source Node) *Marker {
	return &Marker{Kind: kind, Source: source}
}

// Marker tags its source subtree with out-of-band metadata for
// the planner and execution layer, for example "this predicate
// is delayed" or "this conjunction is a bounded range". The
// source is the logical predicate; the kind never participates
// in boolean evaluation. Markers print in the wire form
//
//	((_Kind_ = true) && (source))
//
// and the parser folds that shape back into a Marker, so the
// synthetic assignment only ever exists as text.
type Marker struct {
	Kind   MarkerKind
	Source Node
}

// Opaque returns whether rewrite passes are forbidden from
// restructuring the marker's source: true for bounded ranges
// and for the ivarator class.
func (m *Marker) Opaque() bool {
	return m.Kind == Bounded || m.Kind.Ivarator()
}

func (m *Marker) text(dst *strings.Builder, redact bool) {
	dst.WriteString("((")
	dst.WriteString(string(m.Kind))
	dst.WriteString(" = true) && (")
	m.Source.text(dst, redact)
	dst.WriteString("))")
}

func (m *Marker) walk(v Visitor) {
	Walk(v, m.Source)
}

func (m *Marker) rewrite(r Rewriter) Node {
	m.Source = Rewrite(r, m.Source)
	return m
}

// FindMarker returns the marker denoted by n, skipping any
// transparent wrappers around it. It does not descend into
// nested markers: for a marker whose source is itself marked,
// the outermost one is returned.
func FindMarker(n Node) (*Marker, bool) {
	m, ok := Unwrap(n).(*Marker)
	return m, ok
}
