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

// Package eloop runs callbacks one at a time on a single goroutine. Signal
// polls, steering decisions and store updates all execute on the loop, so
// the state they share needs no locking.
package eloop

import (
	"context"
	"errors"
	"sync"
	"time"
)

var (
	ErrLoopStopped = errors.New("event loop stopped")
)

const (
	defaultQueueSize = 64
)

// Scheduler registers one-shot callbacks.
type Scheduler interface {
	RegisterTimeout(d time.Duration, fn func()) *Timeout
}

// Timeout is a pending one-shot callback.
type Timeout struct {
	mu       sync.Mutex
	timer    *time.Timer
	canceled bool
}

// Cancel prevents the callback from running if it has not started yet.
func (t *Timeout) Cancel() {
	if t == nil {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	t.canceled = true

	if t.timer != nil {
		t.timer.Stop()
	}
}

func (t *Timeout) isCanceled() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.canceled
}

// Loop is a serialized task runner.
type Loop struct {
	tasks    chan func()
	done     chan struct{}
	stopOnce sync.Once

	mu       sync.Mutex
	timeouts map[*Timeout]struct{}
}

// New creates a loop. Run must be called for queued work to execute.
func New() *Loop {
	return &Loop{
		tasks:    make(chan func(), defaultQueueSize),
		done:     make(chan struct{}),
		timeouts: make(map[*Timeout]struct{}),
	}
}

// Run executes posted callbacks until ctx is canceled. Pending timeouts are
// canceled on return.
func (l *Loop) Run(ctx context.Context) error {
	defer l.stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case fn := <-l.tasks:
			fn()
		}
	}
}

func (l *Loop) stop() {
	l.stopOnce.Do(func() {
		close(l.done)

		l.mu.Lock()
		pending := l.timeouts
		l.timeouts = make(map[*Timeout]struct{})
		l.mu.Unlock()

		for t := range pending {
			t.Cancel()
		}
	})
}

// Post queues fn for execution on the loop.
func (l *Loop) Post(fn func()) error {
	select {
	case <-l.done:
		return ErrLoopStopped
	default:
	}

	select {
	case l.tasks <- fn:
		return nil
	case <-l.done:
		return ErrLoopStopped
	}
}

// Call runs fn on the loop and waits for it to finish.
func (l *Loop) Call(ctx context.Context, fn func()) error {
	finished := make(chan struct{})

	if err := l.Post(func() {
		defer close(finished)
		fn()
	}); err != nil {
		return err
	}

	select {
	case <-finished:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-l.done:
		return ErrLoopStopped
	}
}

// RegisterTimeout arranges for fn to run on the loop after d.
func (l *Loop) RegisterTimeout(d time.Duration, fn func()) *Timeout {
	t := &Timeout{}

	l.mu.Lock()
	l.timeouts[t] = struct{}{}
	l.mu.Unlock()

	t.mu.Lock()
	t.timer = time.AfterFunc(d, func() {
		if err := l.Post(func() {
			l.forget(t)

			if t.isCanceled() {
				return
			}

			fn()
		}); err != nil {
			l.forget(t)
		}
	})
	t.mu.Unlock()

	return t
}

func (l *Loop) forget(t *Timeout) {
	l.mu.Lock()
	delete(l.timeouts, t)
	l.mu.Unlock()
}

// Pending reports how many timeouts are registered and not yet run.
func (l *Loop) Pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	return len(l.timeouts)
}
