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

package eloop

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startLoop(t *testing.T) (*Loop, context.CancelFunc) {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	loop := New()

	exited := make(chan struct{})

	go func() {
		defer close(exited)
		_ = loop.Run(ctx)
	}()

	t.Cleanup(func() {
		cancel()
		<-exited
	})

	return loop, cancel
}

func TestLoop_CallRunsInOrder(t *testing.T) {
	loop, _ := startLoop(t)

	var order []int

	for i := 0; i < 10; i++ {
		i := i
		require.NoError(t, loop.Post(func() { order = append(order, i) }))
	}

	// Call waits for everything queued before it.
	require.NoError(t, loop.Call(context.Background(), func() {}))

	assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}, order)
}

func TestLoop_RegisterTimeout(t *testing.T) {
	loop, _ := startLoop(t)

	fired := make(chan struct{})

	loop.RegisterTimeout(10*time.Millisecond, func() { close(fired) })

	select {
	case <-fired:
	case <-time.After(2 * time.Second):
		t.Fatal("timeout callback did not run")
	}

	assert.Eventually(t, func() bool { return loop.Pending() == 0 }, time.Second, 5*time.Millisecond)
}

func TestLoop_CancelTimeout(t *testing.T) {
	loop, _ := startLoop(t)

	var ran atomic.Bool

	timeout := loop.RegisterTimeout(20*time.Millisecond, func() { ran.Store(true) })
	timeout.Cancel()

	time.Sleep(60 * time.Millisecond)
	require.NoError(t, loop.Call(context.Background(), func() {}))

	assert.False(t, ran.Load())
}

func TestLoop_StopRejectsWork(t *testing.T) {
	loop, cancel := startLoop(t)

	var ran atomic.Bool

	loop.RegisterTimeout(time.Hour, func() { ran.Store(true) })
	assert.Equal(t, 1, loop.Pending())

	cancel()

	assert.Eventually(t, func() bool {
		return loop.Post(func() {}) == ErrLoopStopped
	}, time.Second, 5*time.Millisecond)

	assert.Eventually(t, func() bool { return loop.Pending() == 0 }, time.Second, 5*time.Millisecond)
	assert.ErrorIs(t, loop.Call(context.Background(), func() {}), ErrLoopStopped)
	assert.False(t, ran.Load())
}
