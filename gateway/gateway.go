// Copyright 2025 Agrilink Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or
// implied. See the License for the specific language governing
// permissions and limitations under the License.

package gateway

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/agrilink-io/sarson/ipfs"
	"github.com/agrilink-io/sarson/ledger"
)

// Gateway is the provenance submission and verification REST
// API server.
type Gateway struct {
	ledger     *ledger.Ledger
	logger     *slog.Logger
	ipfs       *ipfs.Client
	httpServer *http.Server
	config     GatewayConfig
	mu         sync.Mutex
}

// GatewayConfig holds gateway server configuration.
type GatewayConfig struct {
	ListenAddress string
}

// New creates a new gateway API server instance. The IPFS
// client is optional; without it, stage metadata is not
// persisted off-chain and responses carry an empty CID.
func New(
	cfg GatewayConfig,
	lgr *ledger.Ledger,
	ipfsClient *ipfs.Client,
	logger *slog.Logger,
) *Gateway {
	if logger == nil {
		logger = slog.New(
			slog.NewJSONHandler(io.Discard, nil),
		)
	}
	logger = logger.With("component", "gateway")
	if cfg.ListenAddress == "" {
		cfg.ListenAddress = ":3000"
	}
	return &Gateway{
		config: cfg,
		logger: logger,
		ledger: lgr,
		ipfs:   ipfsClient,
	}
}

// Start starts the HTTP server in a background goroutine.
func (g *Gateway) Start(ctx context.Context) error {
	g.mu.Lock()
	if g.httpServer != nil {
		g.mu.Unlock()
		return errors.New("server already started")
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /", g.handleRoot)
	mux.HandleFunc("GET /health", g.handleHealth)
	mux.HandleFunc(
		"POST /api/v1/farmer/register",
		g.handleFarmerRegister,
	)
	mux.HandleFunc(
		"GET /api/v1/farmer/{did}",
		g.handleFarmerVerify,
	)
	mux.HandleFunc(
		"POST /api/v1/fpo/purchase",
		g.handleFPOPurchase,
	)
	mux.HandleFunc(
		"POST /api/v1/warehouse/update",
		g.handleWarehouseUpdate,
	)
	mux.HandleFunc(
		"GET /api/v1/warehouse/{id}",
		g.handleWarehouseVerify,
	)
	mux.HandleFunc(
		"POST /api/v1/logistics/milestone",
		g.handleLogisticsMilestone,
	)
	mux.HandleFunc(
		"POST /api/v1/process/batch",
		g.handleProcessBatch,
	)
	mux.HandleFunc(
		"POST /api/v1/sku/create",
		g.handleCreateSKU,
	)
	mux.HandleFunc(
		"GET /api/v1/sku/{id}",
		g.handleSKUVerify,
	)
	mux.HandleFunc(
		"POST /api/v1/fraud/report",
		g.handleFraudReport,
	)
	mux.HandleFunc(
		"POST /api/v1/score/commit",
		g.handleScoreCommit,
	)
	mux.HandleFunc(
		"POST /api/v1/score/reveal",
		g.handleScoreReveal,
	)
	mux.HandleFunc(
		"GET /api/v1/score/{batch}",
		g.handleScoreVerify,
	)
	mux.HandleFunc(
		"GET /api/v1/events",
		g.handleEvents,
	)

	server := &http.Server{
		Addr:              g.config.ListenAddress,
		Handler:           mux,
		ReadHeaderTimeout: 60 * time.Second,
	}
	g.httpServer = server
	g.mu.Unlock()

	// Start the server with deterministic error detection
	if err := g.startServer(server); err != nil {
		g.mu.Lock()
		g.httpServer = nil
		g.mu.Unlock()
		return err
	}

	g.logger.Info(
		"gateway API listener started on " +
			g.config.ListenAddress,
	)

	// Monitor context for cancellation
	go func() {
		<-ctx.Done()
		g.mu.Lock()
		srv := g.httpServer
		g.httpServer = nil
		g.mu.Unlock()

		if srv != nil {
			g.logger.Debug(
				"context cancelled, shutting down " +
					"gateway API server",
			)
			//nolint:contextcheck
			shutdownCtx, cancel := context.WithTimeout(
				context.Background(),
				30*time.Second,
			)
			defer cancel()
			//nolint:contextcheck
			if err := srv.Shutdown(
				shutdownCtx,
			); err != nil {
				g.logger.Error(
					"failed to shutdown gateway "+
						"API server on context "+
						"cancellation",
					"error", err,
				)
			}
		}
	}()

	return nil
}

// Stop gracefully shuts down the HTTP server.
func (g *Gateway) Stop(ctx context.Context) error {
	g.mu.Lock()
	srv := g.httpServer
	g.httpServer = nil
	g.mu.Unlock()

	if srv != nil {
		g.logger.Debug("shutting down gateway API server")
		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf(
				"failed to shutdown gateway API "+
					"server: %w",
				err,
			)
		}
	}
	return nil
}

// startServer binds the listening socket first so port
// conflicts are detected immediately, then serves in a
// background goroutine.
func (g *Gateway) startServer(server *http.Server) error {
	ln, err := net.Listen("tcp", server.Addr)
	if err != nil {
		return fmt.Errorf(
			"failed to listen for gateway API "+
				"server: %w",
			err,
		)
	}
	go func() {
		if err := server.Serve(ln); err != nil &&
			!errors.Is(err, http.ErrServerClosed) {
			g.logger.Error(
				"gateway API server error",
				"error", err,
			)
		}
	}()
	return nil
}
