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
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package sarson

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/agrilink-io/sarson/database"
	"github.com/agrilink-io/sarson/event"
	"github.com/agrilink-io/sarson/gateway"
	"github.com/agrilink-io/sarson/ipfs"
	"github.com/agrilink-io/sarson/ledger"
)

type Node struct {
	eventBus      *event.EventBus
	db            *database.Database
	ledger        *ledger.Ledger
	gateway       *gateway.Gateway
	ipfsClient    *ipfs.Client
	shutdownFuncs []func(context.Context) error
	config        Config
	done          chan struct{}
	shutdownOnce  sync.Once
}

func New(cfg Config) (*Node, error) {
	eventBus := event.NewEventBus(
		cfg.promRegistry,
		cfg.logger,
	)
	n := &Node{
		config:   cfg,
		eventBus: eventBus,
		done:     make(chan struct{}),
	}
	if err := n.configValidate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return n, nil
}

func (n *Node) Run() error {
	// Configure tracing
	if n.config.tracing {
		if err := n.setupTracing(); err != nil {
			return err
		}
	}
	// Load database
	dbConfig := &database.Config{
		DataDir: n.config.dataDir,
		Logger:  n.config.logger,
	}
	db, err := database.New(dbConfig)
	if db == nil {
		n.config.logger.Error(
			"failed to create database",
			"error",
			"empty database returned",
		)
		return errors.New("empty database returned")
	}
	n.db = db
	if err != nil {
		var dbErr database.CommitTimestampError
		if !errors.As(err, &dbErr) {
			return fmt.Errorf("failed to open database: %w", err)
		}
		// The stores disagree about the last durable mutation. There
		// is no divergent replica to resync from, so refuse to start
		// rather than serve inconsistent provenance
		n.config.logger.Error(
			"database stores are inconsistent",
			"error",
			err,
		)
		return fmt.Errorf("database needs manual recovery: %w", err)
	}
	// Load ledger
	lgr, err := ledger.NewLedger(
		ledger.LedgerConfig{
			Database:       n.db,
			EventBus:       n.eventBus,
			Logger:         n.config.logger,
			Clock:          n.config.clock,
			PromRegistry:   n.config.promRegistry,
			Genesis:        n.config.genesisIdentity,
			MinRevealDelay: n.config.minRevealDelay,
			MaxRevealDelay: n.config.maxRevealDelay,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to load ledger: %w", err)
	}
	n.ledger = lgr
	// Configure IPFS client
	if n.config.ipfsEndpoint != "" {
		n.ipfsClient = ipfs.NewClient(ipfs.ClientConfig{
			Endpoint: n.config.ipfsEndpoint,
			Logger:   n.config.logger,
		})
	}
	// Configure gateway API
	if n.config.gatewayListenAddress != "" {
		n.gateway = gateway.New(
			gateway.GatewayConfig{
				ListenAddress: n.config.gatewayListenAddress,
			},
			n.ledger,
			n.ipfsClient,
			n.config.logger,
		)
		//nolint:contextcheck
		if err := n.gateway.Start(context.Background()); err != nil {
			return err
		}
	}

	// Wait for shutdown signal
	<-n.done
	return nil
}

func (n *Node) Stop() error {
	var err error
	n.shutdownOnce.Do(func() {
		err = n.shutdown()
	})
	return err
}

// Ledger returns the provenance ledger. It is only available after Run
// has started
func (n *Node) Ledger() *ledger.Ledger {
	return n.ledger
}

func (n *Node) shutdown() error {
	// Create shutdown context with timeout (default 30s if not configured)
	shutdownTimeout := 30 * time.Second
	if n.config.shutdownTimeout > 0 {
		shutdownTimeout = n.config.shutdownTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	var err error

	n.config.logger.Debug("starting graceful shutdown")

	// Phase 1: Stop accepting new submissions
	n.config.logger.Debug("shutdown phase 1: stopping new work")

	if n.gateway != nil {
		if stopErr := n.gateway.Stop(ctx); stopErr != nil {
			err = errors.Join(
				err,
				fmt.Errorf("gateway shutdown: %w", stopErr),
			)
		}
	}

	// Phase 2: Flush state and close database
	n.config.logger.Debug("shutdown phase 2: flushing state")

	if n.db != nil {
		if closeErr := n.db.Close(); closeErr != nil {
			err = errors.Join(
				err,
				fmt.Errorf("database close: %w", closeErr),
			)
		}
	}

	// Phase 3: Cleanup resources
	n.config.logger.Debug("shutdown phase 3: cleanup resources")

	// Call registered shutdown functions
	for _, fn := range n.shutdownFuncs {
		if fnErr := fn(ctx); fnErr != nil {
			err = errors.Join(err, fmt.Errorf("shutdown function: %w", fnErr))
		}
	}
	n.shutdownFuncs = nil

	if n.eventBus != nil {
		n.eventBus.Stop()
	}

	n.config.logger.Debug("graceful shutdown complete")
	close(n.done)
	return err
}
