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

package lifecycle

import (
	"context"
	"errors"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeService struct {
	startErr error
	stopErr  error
	started  atomic.Bool
	stopped  atomic.Bool
}

func (f *fakeService) Start(ctx context.Context) error {
	f.started.Store(true)

	if f.startErr != nil {
		return f.startErr
	}

	<-ctx.Done()

	return ctx.Err()
}

func (f *fakeService) Stop(context.Context) error {
	f.stopped.Store(true)
	return f.stopErr
}

func run(t *testing.T, ctx context.Context, svc Service, handler http.Handler) <-chan error {
	t.Helper()

	done := make(chan error, 1)

	go func() {
		done <- RunServer(ctx, &ServerOptions{
			ServiceName: "apsteer-test",
			Service:     svc,
			HTTPAddr:    "127.0.0.1:0",
			HTTPHandler: handler,
			GRPCAddr:    "127.0.0.1:0",
		})
	}()

	return done
}

func TestRunServer_ContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	svc := &fakeService{}

	done := run(t, ctx, svc, http.NotFoundHandler())

	require.Eventually(t, svc.started.Load, 2*time.Second, 10*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(ShutdownTimeout):
		t.Fatal("RunServer did not return")
	}

	assert.True(t, svc.stopped.Load())
}

func TestRunServer_ServiceError(t *testing.T) {
	errStart := errors.New("start failed")
	svc := &fakeService{startErr: errStart}

	done := run(t, context.Background(), svc, nil)

	select {
	case err := <-done:
		require.ErrorIs(t, err, errServiceFailed)
		require.ErrorIs(t, err, errStart)
	case <-time.After(ShutdownTimeout):
		t.Fatal("RunServer did not return")
	}

	assert.True(t, svc.stopped.Load())
}

func TestRunServer_StopError(t *testing.T) {
	errStop := errors.New("stop failed")
	ctx, cancel := context.WithCancel(context.Background())
	svc := &fakeService{stopErr: errStop}

	done := run(t, ctx, svc, nil)

	require.Eventually(t, svc.started.Load, 2*time.Second, 10*time.Millisecond)
	cancel()

	err := <-done
	require.ErrorIs(t, err, errShutdown)
	require.ErrorIs(t, err, errStop)
}
