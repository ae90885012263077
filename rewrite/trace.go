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

package rewrite

import (
	"encoding/json"
	"io"
	"sync"

	"github.com/klauspost/compress/zstd"
)

// Record is one audit trace entry: the state of one query after
// one rewrite stage. Query text is recorded in redacted form
// only, so traces never contain literal values.
type Record struct {
	QueryID string `json:"queryId"`
	Hash    string `json:"hash"`
	Stage   string `json:"stage"`
	Query   string `json:"query"`
	Micros  int64  `json:"elapsedMicros"`
	Terms   int    `json:"terms,omitempty"`
}

// Trace is an append-only audit log of rewrite activity,
// compressed with zstd. One Trace may be shared by any number of
// Pipelines; writes are serialized internally. Close must not be
// called concurrently with Run.
type Trace struct {
	lock sync.Mutex
	enc  *zstd.Encoder
	jw   *json.Encoder
}

// NewTrace returns a Trace writing compressed records to w.
func NewTrace(w io.Writer) (*Trace, error) {
	enc, err := zstd.NewWriter(w, zstd.WithEncoderConcurrency(1))
	if err != nil {
		return nil, err
	}
	return &Trace{enc: enc, jw: json.NewEncoder(enc)}, nil
}

// Write appends one record to the trace.
func (t *Trace) Write(rec *Record) error {
	t.lock.Lock()
	defer t.lock.Unlock()
	return t.jw.Encode(rec)
}

// Close flushes buffered records and closes the compressor.
// The underlying writer is not closed.
func (t *Trace) Close() error {
	t.lock.Lock()
	defer t.lock.Unlock()
	return t.enc.Close()
}

// ReadTrace decodes all records from a trace produced by
// NewTrace.
func ReadTrace(r io.Reader) ([]Record, error) {
	dec, err := zstd.NewReader(r, zstd.WithDecoderConcurrency(1))
	if err != nil {
		return nil, err
	}
	defer dec.Close()
	var out []Record
	jd := json.NewDecoder(dec)
	for {
		var rec Record
		err := jd.Decode(&rec)
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return out, err
		}
		out = append(out, rec)
	}
}
