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

// Package model implements the field alias model used to expand
// logical field names in a query into the physical fields that
// actually carry the data.
//
// A model maps each logical field to an ordered list of physical
// aliases, and optionally maps physical fields back to a display
// name for presenting results. Models are built programmatically
// with New and Add or loaded from YAML with Open and Decode, and
// applied to a query tree with Apply.
package model

import (
	"encoding/hex"
	"io"

	"golang.org/x/crypto/blake2b"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// Model is a bidirectional field name mapping. The zero value is
// not usable; use New.
type Model struct {
	name    string
	order   []string            // logical fields, first-seen order
	forward map[string][]string // logical -> physical aliases
	reverse map[string]string   // physical -> display name
}

// New returns an empty model with the given name.
func New(name string) *Model {
	return &Model{
		name:    name,
		forward: make(map[string][]string),
		reverse: make(map[string]string),
	}
}

// Name returns the model's name.
func (m *Model) Name() string { return m.name }

// Add appends aliases to the mapping for the logical field.
// Aliases already present for the field are ignored, so the
// stored list keeps the first occurrence of each alias in
// insertion order.
func (m *Model) Add(field string, aliases ...string) {
	have, ok := m.forward[field]
	if !ok {
		m.order = append(m.order, field)
	}
	for i := range aliases {
		if slices.Contains(have, aliases[i]) {
			continue
		}
		have = append(have, aliases[i])
	}
	m.forward[field] = have
}

// SetDisplay records the display name for a physical field.
func (m *Model) SetDisplay(physical, display string) {
	m.reverse[physical] = display
}

// Aliases returns the physical aliases of the logical field in
// mapping order, or nil if the field is not mapped. The returned
// slice is the caller's to keep.
func (m *Model) Aliases(field string) []string {
	return slices.Clone(m.forward[field])
}

// Display returns the display name of a physical field. A field
// with no reverse mapping displays as itself.
func (m *Model) Display(physical string) string {
	if d, ok := m.reverse[physical]; ok {
		return d
	}
	return physical
}

// Fields returns the mapped logical fields in sorted order.
func (m *Model) Fields() []string {
	out := maps.Keys(m.forward)
	slices.Sort(out)
	return out
}

// ReverseFields returns the physical fields that have a display
// name, in sorted order.
func (m *Model) ReverseFields() []string {
	out := maps.Keys(m.reverse)
	slices.Sort(out)
	return out
}

// Fingerprint returns a hex-encoded blake2b digest of the
// model's full contents. Two models with the same mappings have
// the same fingerprint regardless of insertion order, so the
// fingerprint can be used to detect drift between deployed
// model files.
func (m *Model) Fingerprint() string {
	h, err := blake2b.New256(nil)
	if err != nil {
		panic("model: blake2b init: " + err.Error())
	}
	writeField := func(s string) {
		io.WriteString(h, s)
		h.Write([]byte{0})
	}
	writeField(m.name)
	for _, f := range m.Fields() {
		writeField(f)
		for _, a := range m.forward[f] {
			writeField(a)
		}
		h.Write([]byte{0})
	}
	for _, f := range m.ReverseFields() {
		writeField(f)
		writeField(m.reverse[f])
	}
	return hex.EncodeToString(h.Sum(nil))
}
