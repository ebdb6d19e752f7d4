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

// Package grpc pkg/grpc/server.go
package grpc

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/keepalive"
	"google.golang.org/grpc/reflection"

	"github.com/mfreeman451/apsteer/pkg/logging"
)

// ServerOption is a function type that modifies Server configuration.
type ServerOption func(*Server)

const (
	shutdownTimer = 5 * time.Second
)

// Server wraps a gRPC server that exposes the standard health service.
type Server struct {
	srv         *grpc.Server
	healthCheck *health.Server
	addr        string
	log         logging.Logger
	mu          sync.RWMutex
	services    map[string]struct{}
	serverOpts  []grpc.ServerOption
}

// NewServer creates a new gRPC server listening on addr once started.
func NewServer(addr string, opts ...ServerOption) *Server {
	s := &Server{
		addr:     addr,
		log:      logging.Noop(),
		services: make(map[string]struct{}),
	}

	for _, opt := range opts {
		opt(s)
	}

	serverOpts := []grpc.ServerOption{
		grpc.ChainUnaryInterceptor(
			LoggingInterceptor(s.log),
			RecoveryInterceptor(s.log),
		),
		grpc.KeepaliveParams(keepalive.ServerParameters{
			MaxConnectionIdle:     10 * time.Minute,
			MaxConnectionAge:      24 * time.Hour,
			MaxConnectionAgeGrace: 5 * time.Minute,
			Time:                  120 * time.Second,
			Timeout:               20 * time.Second,
		}),
		grpc.KeepaliveEnforcementPolicy(keepalive.EnforcementPolicy{
			MinTime:             120 * time.Second,
			PermitWithoutStream: true,
		}),
	}

	s.srv = grpc.NewServer(append(serverOpts, s.serverOpts...)...)
	s.healthCheck = health.NewServer()

	healthpb.RegisterHealthServer(s.srv, s.healthCheck)
	reflection.Register(s.srv)

	return s
}

// WithLogger sets the logger used by the server and its interceptors.
func WithLogger(log logging.Logger) ServerOption {
	return func(s *Server) {
		s.log = log
	}
}

// WithServerOptions adds gRPC server options.
func WithServerOptions(opt ...grpc.ServerOption) ServerOption {
	return func(s *Server) {
		s.serverOpts = append(s.serverOpts, opt...)
	}
}

// WithMaxRecvSize sets the maximum receive message size.
func WithMaxRecvSize(size int) ServerOption {
	return func(s *Server) {
		s.serverOpts = append(s.serverOpts, grpc.MaxRecvMsgSize(size))
	}
}

// WithMaxSendSize sets the maximum send message size.
func WithMaxSendSize(size int) ServerOption {
	return func(s *Server) {
		s.serverOpts = append(s.serverOpts, grpc.MaxSendMsgSize(size))
	}
}

// SetServing records the health of a named service. The empty name is the
// overall server status.
func (s *Server) SetServing(service string, serving bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.services[service] = struct{}{}

	status := healthpb.HealthCheckResponse_NOT_SERVING
	if serving {
		status = healthpb.HealthCheckResponse_SERVING
	}

	s.healthCheck.SetServingStatus(service, status)
}

// Start listens on the configured address and serves until Stop.
func (s *Server) Start() error {
	lis, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}

	return s.Serve(lis)
}

// Serve serves on an existing listener until Stop.
func (s *Server) Serve(lis net.Listener) error {
	s.log.Info(context.Background(), "gRPC server listening", logging.String("addr", lis.Addr().String()))

	if err := s.srv.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return fmt.Errorf("failed to serve: %w", err)
	}

	return nil
}

// Stop marks every service as not serving and stops the server, forcing
// the stop if graceful shutdown does not finish in time.
func (s *Server) Stop(ctx context.Context) {
	s.mu.Lock()
	for service := range s.services {
		s.healthCheck.SetServingStatus(service, healthpb.HealthCheckResponse_NOT_SERVING)
	}
	s.mu.Unlock()

	s.healthCheck.Shutdown()

	ctx, cancel := context.WithTimeout(ctx, shutdownTimer)
	defer cancel()

	stopped := make(chan struct{})

	go func() {
		s.srv.GracefulStop()
		close(stopped)
	}()

	select {
	case <-stopped:
		s.log.Info(ctx, "gRPC server stopped gracefully")
	case <-ctx.Done():
		s.log.Warn(ctx, "gRPC server shutdown timed out, forcing stop")
		s.srv.Stop()
	}
}

// LoggingInterceptor logs RPC calls.
func LoggingInterceptor(log logging.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		start := time.Now()
		resp, err := handler(ctx, req)

		fields := []logging.Field{
			logging.String("method", info.FullMethod),
			logging.Duration("duration", time.Since(start)),
		}
		if err != nil {
			fields = append(fields, logging.Err(err))
		}

		log.Debug(ctx, "gRPC call", fields...)

		return resp, err
	}
}

// RecoveryInterceptor handles panics in RPC handlers.
func RecoveryInterceptor(log logging.Logger) grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req interface{},
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler) (resp interface{}, err error) {
		defer func() {
			if r := recover(); r != nil {
				log.Error(ctx, "Recovered from panic in RPC handler",
					logging.String("method", info.FullMethod),
					logging.Any("panic", r))

				err = errInternalError
			}
		}()

		return handler(ctx, req)
	}
}
