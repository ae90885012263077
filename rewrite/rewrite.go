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

// Package rewrite composes the fql normalization passes into the
// pipeline the planner runs once per query: structural checking,
// flattening, negation pushdown, field-alias expansion, and term
// counting.
//
// Each pass is also callable on its own through the fql and
// fql/model packages; a Pipeline adds the per-query bookkeeping
// around them (query IDs, content hashes, stage timings, a term
// budget, and an optional compressed audit trace). A Pipeline is
// stateless between calls and safe for concurrent use.
package rewrite

import (
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/blake2b"

	"github.com/winnowdata/winnow/fql"
	"github.com/winnowdata/winnow/fql/model"
)

// ErrTermBudget is the sentinel wrapped by errors from Run when
// the rewritten query has more terms than the pipeline allows.
// Expansion can multiply the term count of the input, so the
// budget is enforced on the final tree, not the original one.
var ErrTermBudget = errors.New("too many query terms")

// Pipeline runs the rewrite stages in order over one query tree
// at a time. Use New to build one; the zero value runs the
// passes with no model, no budget, and no diagnostics.
type Pipeline struct {
	// model, if non-nil, is applied after negation pushdown;
	// valid restricts it to the listed physical fields
	model *model.Model
	valid []string

	// maxTerms bounds the term count of the final tree.
	// Zero means unbounded.
	maxTerms int

	// trace, if non-nil, receives one record per stage
	trace *Trace

	// logger receives one summary line per Run.
	// If logger is nil, no output is logged.
	logger *log.Logger
}

// Option is an optional argument to New
// to indicate optional Pipeline configuration.
type Option func(p *Pipeline)

// WithModel is an option that can be passed to New to have the
// pipeline expand field aliases using m. valid, if present,
// restricts substitution to the listed physical fields (see
// model.Apply).
func WithModel(m *model.Model, valid ...string) Option {
	return func(p *Pipeline) {
		p.model = m
		p.valid = valid
	}
}

// WithMaxTerms is an option that can be passed to New to make
// Run fail with ErrTermBudget when the rewritten query has more
// than n terms. If n is zero, no budget is enforced.
func WithMaxTerms(n int) Option {
	return func(p *Pipeline) {
		p.maxTerms = n
	}
}

// WithTrace is an option that can be passed to New to have the
// pipeline append one audit record per stage to t. One Trace may
// be shared by several Pipelines.
func WithTrace(t *Trace) Option {
	return func(p *Pipeline) {
		p.trace = t
	}
}

// WithLogger is an option that can be passed to New to have the
// pipeline log one summary line per query. If no logger is set,
// the pipeline does not write out any diagnostics.
func WithLogger(l *log.Logger) Option {
	return func(p *Pipeline) {
		p.logger = l
	}
}

// New makes a Pipeline from the list of options provided.
func New(opt ...Option) *Pipeline {
	p := &Pipeline{}
	for _, o := range opt {
		o(p)
	}
	return p
}

// StageTiming is the time one rewrite stage took during one Run.
type StageTiming struct {
	Name    string
	Elapsed time.Duration
}

// Result is the outcome of one Run.
type Result struct {
	// ID identifies this run in logs and trace records.
	ID string
	// Hash is the hex-encoded blake2b digest of the printed
	// input query, before any rewriting. Queries with identical
	// text hash identically across runs.
	Hash string
	// Tree is the rewritten query owned by the caller.
	Tree fql.Node
	// Terms is the term count of Tree (see fql.CountTerms).
	Terms int
	// Elapsed is the total rewrite time.
	Elapsed time.Duration
	// Stages lists the per-stage timings in execution order.
	Stages []StageTiming
}

type stage struct {
	name string
	pass func(fql.Node) (fql.Node, error)
}

// stages returns the rewrite sequence for this configuration.
// Negation pushdown flattens its own output, so the extra
// flatten stage only runs when a model was applied after it.
func (p *Pipeline) stages() []stage {
	flatten := func(n fql.Node) (fql.Node, error) { return fql.Flatten(n), nil }
	out := []stage{
		{"check", func(n fql.Node) (fql.Node, error) { return n, fql.Check(n) }},
		{"flatten", flatten},
		{"pushdown", func(n fql.Node) (fql.Node, error) { return fql.PushDownNegations(n), nil }},
	}
	if p.model != nil {
		out = append(out,
			stage{"model", func(n fql.Node) (fql.Node, error) { return model.Apply(n, p.model, p.valid) }},
			stage{"flatten", flatten},
		)
	}
	return out
}

// Run rewrites tree and returns the rewritten form along with
// the run's bookkeeping. The input tree is consumed: the result
// may share structure with it, so the caller must not use the
// input afterwards. On error no Result is returned; a malformed
// input surfaces as an error wrapping fql.ErrMalformed and a
// blown term budget as one wrapping ErrTermBudget.
func (p *Pipeline) Run(tree fql.Node) (*Result, error) {
	start := time.Now()
	res := &Result{
		ID:   uuid.New().String(),
		Hash: hashQuery(tree),
	}
	for _, s := range p.stages() {
		t0 := time.Now()
		out, err := s.pass(tree)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", s.name, err)
		}
		tree = out
		if err := p.record(res, s.name, time.Since(t0), tree); err != nil {
			return nil, err
		}
	}
	t0 := time.Now()
	res.Terms = fql.CountTerms(tree)
	if err := p.record(res, "count", time.Since(t0), tree); err != nil {
		return nil, err
	}
	if p.maxTerms > 0 && res.Terms > p.maxTerms {
		return nil, fmt.Errorf("query has %d terms, budget is %d: %w",
			res.Terms, p.maxTerms, ErrTermBudget)
	}
	res.Tree = tree
	res.Elapsed = time.Since(start)
	p.logf("query %s: %d terms after %d stages in %s",
		res.ID, res.Terms, len(res.Stages), res.Elapsed)
	return res, nil
}

// record appends the stage timing to res and, if a trace is
// configured, one audit record. Trace queries are redacted;
// literal values never reach the trace writer.
func (p *Pipeline) record(res *Result, name string, elapsed time.Duration, tree fql.Node) error {
	res.Stages = append(res.Stages, StageTiming{Name: name, Elapsed: elapsed})
	if p.trace == nil {
		return nil
	}
	err := p.trace.Write(&Record{
		QueryID: res.ID,
		Hash:    res.Hash,
		Stage:   name,
		Query:   fql.ToRedacted(tree),
		Micros:  elapsed.Microseconds(),
		Terms:   fql.CountTerms(tree),
	})
	if err != nil {
		return fmt.Errorf("trace: %w", err)
	}
	return nil
}

func (p *Pipeline) logf(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Printf(msg, args...)
	}
}

func hashQuery(n fql.Node) string {
	sum := blake2b.Sum256([]byte(fql.ToString(n)))
	return hex.EncodeToString(sum[:])
}
