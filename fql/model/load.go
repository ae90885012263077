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

package model

import (
	"errors"
	"fmt"
	"io"
	"io/fs"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
	"sigs.k8s.io/yaml"
)

// ErrBadModel is the sentinel wrapped by errors from Decode and
// Open when a model file is syntactically valid but semantically
// unusable.
var ErrBadModel = errors.New("invalid field model")

// just pick an upper limit to prevent DoS
const maxModelSize = 1024 * 1024

// modelFile is the serialized form of a Model. YAML and JSON are
// both accepted; YAML documents are converted before decoding.
type modelFile struct {
	// Name identifies the model in logs and reports.
	Name string `json:"name"`
	// Mappings maps each logical field to its physical aliases.
	Mappings map[string][]string `json:"mappings"`
	// Display optionally maps physical fields back to the name
	// shown in results.
	Display map[string]string `json:"display,omitempty"`
}

// Decode decodes a model from src.
//
// Mapped fields are inserted in sorted order so that two
// documents with the same contents decode to models with the
// same fingerprint.
//
// See also: Open
func Decode(src io.Reader) (*Model, error) {
	buf, err := io.ReadAll(io.LimitReader(src, maxModelSize+1))
	if err != nil {
		return nil, err
	}
	if len(buf) > maxModelSize {
		return nil, fmt.Errorf("%w: document beyond limit %d", ErrBadModel, maxModelSize)
	}
	f := new(modelFile)
	if err := yaml.UnmarshalStrict(buf, f); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrBadModel, err)
	}
	if f.Name == "" {
		return nil, fmt.Errorf("%w: model has no name", ErrBadModel)
	}
	m := New(f.Name)
	fields := maps.Keys(f.Mappings)
	slices.Sort(fields)
	for _, field := range fields {
		aliases := f.Mappings[field]
		if field == "" {
			return nil, fmt.Errorf("%w: model %q maps an empty field", ErrBadModel, f.Name)
		}
		if len(aliases) == 0 {
			return nil, fmt.Errorf("%w: model %q: field %q has no aliases", ErrBadModel, f.Name, field)
		}
		for i := range aliases {
			if aliases[i] == "" {
				return nil, fmt.Errorf("%w: model %q: field %q has an empty alias", ErrBadModel, f.Name, field)
			}
		}
		m.Add(field, aliases...)
	}
	for physical, display := range f.Display {
		if physical == "" || display == "" {
			return nil, fmt.Errorf("%w: model %q has an empty display entry", ErrBadModel, f.Name)
		}
		m.SetDisplay(physical, display)
	}
	return m, nil
}

func checkSize(f fs.File) error {
	info, err := f.Stat()
	if err != nil {
		return err
	}
	if info.Size() > maxModelSize {
		return fmt.Errorf("%w: model of size %d beyond limit %d", ErrBadModel, info.Size(), maxModelSize)
	}
	return nil
}

// Open opens and decodes the model file at path.
//
// See also: Decode
func Open(s fs.FS, path string) (*Model, error) {
	f, err := s.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if err := checkSize(f); err != nil {
		return nil, err
	}
	return Decode(f)
}
