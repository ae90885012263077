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

// Command modelcheck validates field model files and prints a
// summary of each one, so that model changes can be checked
// before they are deployed to the query planners.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/winnowdata/winnow/fql/model"
)

var dashv bool

func init() {
	flag.BoolVar(&dashv, "v", false, "dump the full mapping table of each model")
}

func exitf(f string, args ...any) {
	fmt.Fprintf(os.Stderr, f, args...)
	os.Exit(1)
}

func load(path string) (*model.Model, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return model.Decode(f)
}

func describe(path string, m *model.Model) {
	aliases := 0
	for _, f := range m.Fields() {
		aliases += len(m.Aliases(f))
	}
	fmt.Printf("%s: model %q: fields=%d aliases=%d reverse=%d fingerprint=%s\n",
		path, m.Name(), len(m.Fields()), aliases, len(m.ReverseFields()), m.Fingerprint())
	if !dashv {
		return
	}
	for _, f := range m.Fields() {
		fmt.Printf("    %s -> %s\n", f, strings.Join(m.Aliases(f), ", "))
	}
	for _, f := range m.ReverseFields() {
		fmt.Printf("    display %s -> %s\n", f, m.Display(f))
	}
}

func main() {
	flag.Parse()
	args := flag.Args()
	if len(args) == 0 {
		fmt.Fprintf(os.Stderr, "usage: %s [-v] <model.yaml> ...\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "    validate field model files and describe their contents\n")
		flag.Usage()
		os.Exit(1)
	}
	bad := 0
	for _, path := range args {
		m, err := load(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %s\n", path, err)
			bad++
			continue
		}
		describe(path, m)
	}
	if bad > 0 {
		exitf("%d of %d model files failed\n", bad, len(args))
	}
}
