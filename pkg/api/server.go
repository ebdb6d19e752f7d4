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

// Package api pkg/api/server.go
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	httpx "github.com/mfreeman451/apsteer/pkg/http"
	"github.com/mfreeman451/apsteer/pkg/logging"
	"github.com/mfreeman451/apsteer/pkg/models"
)

var (
	errInvalidBody = errors.New("invalid request body")
	errInvalidMAC  = errors.New("invalid station address")
)

const maxBodyBytes = 4096

type Server struct {
	router    *mux.Router
	svc       Service
	events    EventSource
	metrics   http.Handler
	log       logging.Logger
	rateLimit int
	upgrader  websocket.Upgrader
}

type Option func(*Server)

func WithEvents(src EventSource) Option {
	return func(s *Server) { s.events = src }
}

// WithMetricsHandler mounts h at /metrics.
func WithMetricsHandler(h http.Handler) Option {
	return func(s *Server) { s.metrics = h }
}

func WithLogger(log logging.Logger) Option {
	return func(s *Server) { s.log = log }
}

// WithRateLimit caps API requests per second across all clients.
func WithRateLimit(perSecond int) Option {
	return func(s *Server) { s.rateLimit = perSecond }
}

func NewServer(svc Service, opts ...Option) *Server {
	s := &Server{
		router: mux.NewRouter(),
		svc:    svc,
		log:    logging.Noop(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}

	for _, opt := range opts {
		opt(s)
	}

	s.setupRoutes()

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	s.router.Use(httpx.CommonMiddleware)

	api := s.router.PathPrefix("/api").Subrouter()
	api.Use(httpx.RateLimit(s.rateLimit))

	// Hooks
	api.HandleFunc("/interfaces/{iface}/probe", s.handleProbe).Methods(http.MethodPost)
	api.HandleFunc("/interfaces/{iface}/assoc", s.handleAssoc).Methods(http.MethodPost)
	api.HandleFunc("/interfaces/{iface}/connect", s.handleConnect).Methods(http.MethodPost)
	api.HandleFunc("/interfaces/{iface}/disconnect", s.handleDisconnect).Methods(http.MethodPost)

	// Diagnostics
	api.HandleFunc("/interfaces/{iface}/stations", s.getStations).Methods(http.MethodGet)
	api.HandleFunc("/stations/{mac}/signal", s.getSignalHistory).Methods(http.MethodGet)
	api.HandleFunc("/stations/{mac}/capability", s.getCapability).Methods(http.MethodGet)
	api.HandleFunc("/reasons", s.getReasons).Methods(http.MethodGet)
	api.HandleFunc("/status", s.getStatus).Methods(http.MethodGet)

	if s.events != nil {
		api.HandleFunc("/events", s.streamEvents).Methods(http.MethodGet)
	}

	if s.metrics != nil {
		s.router.Handle("/metrics", s.metrics).Methods(http.MethodGet)
	}
}

func (s *Server) handleProbe(w http.ResponseWriter, r *http.Request) {
	var req ProbeRequest

	addr, ok := s.decodeStation(w, r, &req, func() string { return req.MAC })
	if !ok {
		return
	}

	recorded, err := s.svc.Probe(r.Context(), mux.Vars(r)["iface"], addr, req.Signal)
	if err != nil {
		s.writeError(r.Context(), w, err)
		return
	}

	writeJSON(w, http.StatusOK, ProbeResponse{Recorded: recorded})
}

func (s *Server) handleAssoc(w http.ResponseWriter, r *http.Request) {
	var req AssocRequest

	addr, ok := s.decodeStation(w, r, &req, func() string { return req.MAC })
	if !ok {
		return
	}

	iface := mux.Vars(r)["iface"]

	decision, err := s.svc.Associate(r.Context(), iface, addr, req.Signal, req.Reassoc)
	if err != nil {
		s.writeError(r.Context(), w, err)
		return
	}

	writeJSON(w, http.StatusOK, DecisionResponse{Interface: iface, Station: addr, Decision: decision})
}

func (s *Server) handleConnect(w http.ResponseWriter, r *http.Request) {
	var req StationRequest

	addr, ok := s.decodeStation(w, r, &req, func() string { return req.MAC })
	if !ok {
		return
	}

	if err := s.svc.Connect(r.Context(), mux.Vars(r)["iface"], addr); err != nil {
		s.writeError(r.Context(), w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDisconnect(w http.ResponseWriter, r *http.Request) {
	var req StationRequest

	addr, ok := s.decodeStation(w, r, &req, func() string { return req.MAC })
	if !ok {
		return
	}

	if err := s.svc.Disconnect(r.Context(), mux.Vars(r)["iface"], addr); err != nil {
		s.writeError(r.Context(), w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) getStations(w http.ResponseWriter, r *http.Request) {
	stations, err := s.svc.Stations(r.Context(), mux.Vars(r)["iface"])
	if err != nil {
		s.writeError(r.Context(), w, err)
		return
	}

	writeJSON(w, http.StatusOK, stations)
}

func (s *Server) getSignalHistory(w http.ResponseWriter, r *http.Request) {
	addr, ok := s.pathStation(w, r)
	if !ok {
		return
	}

	points := s.svc.SignalHistory(addr)
	if points == nil {
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "no signal history for station"})
		return
	}

	writeJSON(w, http.StatusOK, points)
}

func (s *Server) getCapability(w http.ResponseWriter, r *http.Request) {
	addr, ok := s.pathStation(w, r)
	if !ok {
		return
	}

	capability, err := s.svc.Capability(r.Context(), addr)
	if err != nil {
		s.writeError(r.Context(), w, err)
		return
	}

	writeJSON(w, http.StatusOK, capability)
}

func (*Server) getReasons(w http.ResponseWriter, _ *http.Request) {
	reasons := make([]ReasonInfo, 0, len(models.Reasons))
	for _, reason := range models.Reasons {
		reasons = append(reasons, ReasonInfo{Code: int(reason), Name: reason.String()})
	}

	writeJSON(w, http.StatusOK, reasons)
}

func (s *Server) getStatus(w http.ResponseWriter, r *http.Request) {
	status, err := s.svc.Status(r.Context())
	if err != nil {
		s.writeError(r.Context(), w, err)
		return
	}

	writeJSON(w, http.StatusOK, status)
}

// decodeStation reads a JSON body into dst and parses the station address
// it names. On failure the response has already been written.
func (s *Server) decodeStation(w http.ResponseWriter, r *http.Request, dst any, mac func() string) (models.HardwareAddr, bool) {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: errInvalidBody.Error()})
		return models.HardwareAddr{}, false
	}

	addr, err := models.ParseHardwareAddr(mac())
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: errInvalidMAC.Error()})
		return models.HardwareAddr{}, false
	}

	return addr, true
}

func (*Server) pathStation(w http.ResponseWriter, r *http.Request) (models.HardwareAddr, bool) {
	addr, err := models.ParseHardwareAddr(mux.Vars(r)["mac"])
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: errInvalidMAC.Error()})
		return models.HardwareAddr{}, false
	}

	return addr, true
}

func (s *Server) writeError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, models.ErrUnknownInterface):
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: err.Error()})
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		writeJSON(w, http.StatusServiceUnavailable, ErrorResponse{Error: err.Error()})
	default:
		s.log.Error(ctx, "API request failed", logging.Err(err))
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	_ = json.NewEncoder(w).Encode(v)
}
