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

// Package lifecycle runs the daemon's long-lived service alongside its HTTP
// and gRPC listeners and tears everything down on a signal or error.
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mfreeman451/apsteer/pkg/grpc"
	"github.com/mfreeman451/apsteer/pkg/logging"
)

const (
	MaxRecvSize       = 4 * 1024 * 1024 // 4MB
	MaxSendSize       = 4 * 1024 * 1024 // 4MB
	ShutdownTimeout   = 10 * time.Second
	readHeaderTimeout = 5 * time.Second
)

var (
	errServiceFailed = errors.New("service error")
	errShutdown      = errors.New("shutdown error")
)

// Service defines the interface that all services must implement.
type Service interface {
	Start(context.Context) error
	Stop(context.Context) error
}

// ServerOptions holds configuration for creating a server.
type ServerOptions struct {
	ServiceName string
	Service     Service
	HTTPAddr    string
	HTTPHandler http.Handler
	GRPCAddr    string // empty disables the health endpoint
	Log         logging.Logger
}

// RunServer starts a service with the provided options and blocks until a
// termination signal, a component failure or ctx cancellation.
func RunServer(ctx context.Context, opts *ServerOptions) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	log := opts.Log
	if log == nil {
		log = logging.Noop()
	}

	log.Info(ctx, "Starting service", logging.String("service", opts.ServiceName))

	errChan := make(chan error, 3)

	report := func(err error) {
		select {
		case errChan <- err:
		default:
			log.Error(ctx, "Dropped component error", logging.Err(err))
		}
	}

	go func() {
		if err := opts.Service.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			report(err)
		}
	}()

	var grpcServer *grpc.Server

	if opts.GRPCAddr != "" {
		grpcServer = grpc.NewServer(opts.GRPCAddr,
			grpc.WithLogger(log),
			grpc.WithMaxRecvSize(MaxRecvSize),
			grpc.WithMaxSendSize(MaxSendSize),
		)
		grpcServer.SetServing("", true)
		grpcServer.SetServing(opts.ServiceName, true)

		go func() {
			if err := grpcServer.Start(); err != nil {
				report(err)
			}
		}()
	}

	var httpServer *http.Server

	if opts.HTTPHandler != nil {
		httpServer = &http.Server{
			Addr:              opts.HTTPAddr,
			Handler:           opts.HTTPHandler,
			ReadHeaderTimeout: readHeaderTimeout,
		}

		go func() {
			log.Info(ctx, "HTTP server listening", logging.String("addr", opts.HTTPAddr))

			if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				report(err)
			}
		}()
	}

	runErr := waitForShutdown(ctx, log, errChan)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer shutdownCancel()

	cancel()

	if httpServer != nil {
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Warn(shutdownCtx, "HTTP server shutdown failed", logging.Err(err))
		}
	}

	if grpcServer != nil {
		grpcServer.Stop(shutdownCtx)
	}

	if err := opts.Service.Stop(shutdownCtx); err != nil {
		log.Error(shutdownCtx, "Error during service shutdown", logging.Err(err))
		return fmt.Errorf("%w: %w", errShutdown, err)
	}

	return runErr
}

func waitForShutdown(ctx context.Context, log logging.Logger, errChan <-chan error) error {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	defer signal.Stop(sigChan)

	select {
	case sig := <-sigChan:
		log.Info(ctx, "Received signal, initiating shutdown", logging.String("signal", sig.String()))
	case err := <-errChan:
		log.Error(ctx, "Received error, initiating shutdown", logging.Err(err))
		return fmt.Errorf("%w: %w", errServiceFailed, err)
	case <-ctx.Done():
		log.Info(ctx, "Context canceled, initiating shutdown")
	}

	return nil
}
