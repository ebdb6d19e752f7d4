/*
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package logging

import (
	"context"
	"sync"
)

// Entry is a captured log record.
type Entry struct {
	Level   string
	Message string
	Fields  map[string]any
}

// Recorder keeps every record in memory. Tests use it to assert on what
// was logged.
type Recorder struct {
	mu      *sync.Mutex
	entries *[]Entry
	base    []Field
}

// NewRecorder returns an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{
		mu:      &sync.Mutex{},
		entries: &[]Entry{},
	}
}

func (r *Recorder) With(fields ...Field) Logger {
	base := make([]Field, 0, len(r.base)+len(fields))
	base = append(base, r.base...)
	base = append(base, fields...)

	return &Recorder{mu: r.mu, entries: r.entries, base: base}
}

func (r *Recorder) Debug(_ context.Context, msg string, fields ...Field) { r.add("debug", msg, fields) }
func (r *Recorder) Info(_ context.Context, msg string, fields ...Field)  { r.add("info", msg, fields) }
func (r *Recorder) Warn(_ context.Context, msg string, fields ...Field)  { r.add("warn", msg, fields) }
func (r *Recorder) Error(_ context.Context, msg string, fields ...Field) { r.add("error", msg, fields) }

func (r *Recorder) add(level, msg string, fields []Field) {
	m := make(map[string]any, len(r.base)+len(fields))
	for _, f := range r.base {
		m[f.Key] = f.Value
	}

	for _, f := range fields {
		m[f.Key] = f.Value
	}

	r.mu.Lock()
	*r.entries = append(*r.entries, Entry{Level: level, Message: msg, Fields: m})
	r.mu.Unlock()
}

// Entries returns a copy of everything recorded so far.
func (r *Recorder) Entries() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Entry, len(*r.entries))
	copy(out, *r.entries)

	return out
}

// Messages returns the entries whose message equals msg.
func (r *Recorder) Messages(msg string) []Entry {
	var out []Entry

	for _, e := range r.Entries() {
		if e.Message == msg {
			out = append(out, e)
		}
	}

	return out
}
