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

// cmd/apsteerd/main.go
package main

import (
	"context"
	"flag"
	"log"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/mfreeman451/apsteer/pkg/api"
	"github.com/mfreeman451/apsteer/pkg/config"
	"github.com/mfreeman451/apsteer/pkg/controller"
	"github.com/mfreeman451/apsteer/pkg/driver"
	"github.com/mfreeman451/apsteer/pkg/lifecycle"
	"github.com/mfreeman451/apsteer/pkg/logging"
	"github.com/mfreeman451/apsteer/pkg/metrics"
)

func main() {
	log.Printf("Starting apsteer daemon...")

	configPath := flag.String("config", "/etc/apsteer/apsteerd.json", "Path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := logging.New(cfg.Log)

	collector, err := metrics.NewCollector(prometheus.DefaultRegisterer)
	if err != nil {
		log.Fatalf("Failed to register metrics: %v", err)
	}

	ctrl, err := controller.New(cfg, func(ifname string) driver.Driver {
		return driver.NewIW(ifname, nil)
	}, logger, controller.WithCollector(collector))
	if err != nil {
		log.Fatalf("Failed to create controller: %v", err)
	}

	apiServer := api.NewServer(ctrl,
		api.WithEvents(ctrl.Events()),
		api.WithMetricsHandler(collector.Handler()),
		api.WithLogger(logger),
		api.WithRateLimit(cfg.APIRateLimit),
	)

	opts := &lifecycle.ServerOptions{
		ServiceName: "apsteer",
		Service:     ctrl,
		HTTPAddr:    cfg.ListenAddr,
		HTTPHandler: apiServer,
		GRPCAddr:    cfg.GrpcAddr,
		Log:         logger,
	}

	if err := lifecycle.RunServer(context.Background(), opts); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}

	log.Printf("Shutdown complete")
}
