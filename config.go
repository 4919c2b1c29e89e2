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
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/agrilink-io/sarson/ledger"
	"github.com/prometheus/client_golang/prometheus"
)

type Config struct {
	promRegistry         prometheus.Registerer
	logger               *slog.Logger
	clock                ledger.Clock
	dataDir              string
	ipfsEndpoint         string
	gatewayListenAddress string
	genesisIdentity      ledger.Identity
	minRevealDelay       int64
	maxRevealDelay       int64
	tracing              bool
	tracingStdout        bool
	shutdownTimeout      time.Duration
}

type ConfigOptionFunc func(*Config)

// NewConfig creates a new sarson config with the specified options
func NewConfig(opts ...ConfigOptionFunc) Config {
	c := Config{
		// Default logger will throw away logs
		// We do this so we don't have to add guards around every log operation
		logger: slog.New(slog.NewJSONHandler(io.Discard, nil)),
	}
	// Apply options
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// WithDataDir specifies the persistent data directory to use. The default is to store everything in memory
func WithDataDir(dataDir string) ConfigOptionFunc {
	return func(c *Config) {
		c.dataDir = dataDir
	}
}

// WithLogger specifies the logger to use. This defaults to discarding log output
func WithLogger(logger *slog.Logger) ConfigOptionFunc {
	return func(c *Config) {
		c.logger = logger
	}
}

// WithGatewayListenAddress specifies the listen address for the REST gateway. An empty value disables the gateway
func WithGatewayListenAddress(address string) ConfigOptionFunc {
	return func(c *Config) {
		c.gatewayListenAddress = address
	}
}

// WithIpfsEndpoint specifies the IPFS HTTP API endpoint for off-chain metadata. An empty value disables off-chain storage
func WithIpfsEndpoint(endpoint string) ConfigOptionFunc {
	return func(c *Config) {
		c.ipfsEndpoint = endpoint
	}
}

// WithGenesisIdentity specifies the identity granted all roles at first startup
func WithGenesisIdentity(
	identity ledger.Identity,
) ConfigOptionFunc {
	return func(c *Config) {
		c.genesisIdentity = identity
	}
}

// WithClock overrides the ledger timestamp source. This is mostly useful for testing
func WithClock(clock ledger.Clock) ConfigOptionFunc {
	return func(c *Config) {
		c.clock = clock
	}
}

// WithRevealWindow overrides the commit-reveal window bounds, in seconds
func WithRevealWindow(minDelay, maxDelay int64) ConfigOptionFunc {
	return func(c *Config) {
		c.minRevealDelay = minDelay
		c.maxRevealDelay = maxDelay
	}
}

// WithPrometheusRegistry specifies a registry for metrics collection
func WithPrometheusRegistry(
	registry prometheus.Registerer,
) ConfigOptionFunc {
	return func(c *Config) {
		c.promRegistry = registry
	}
}

// WithTracing enables OpenTelemetry tracing
func WithTracing(tracing bool) ConfigOptionFunc {
	return func(c *Config) {
		c.tracing = tracing
	}
}

// WithTracingStdout enables the stdout trace exporter instead of OTLP-over-HTTP
func WithTracingStdout(stdout bool) ConfigOptionFunc {
	return func(c *Config) {
		c.tracingStdout = stdout
	}
}

// WithShutdownTimeout specifies the timeout for graceful shutdown
func WithShutdownTimeout(timeout time.Duration) ConfigOptionFunc {
	return func(c *Config) {
		c.shutdownTimeout = timeout
	}
}

func (n *Node) configValidate() error {
	if n.config.genesisIdentity.IsZero() {
		return errors.New("no genesis identity provided")
	}
	if n.config.minRevealDelay < 0 || n.config.maxRevealDelay < 0 {
		return errors.New("reveal window bounds cannot be negative")
	}
	if n.config.maxRevealDelay > 0 &&
		n.config.minRevealDelay >= n.config.maxRevealDelay {
		return errors.New(
			"reveal window minimum must be below the maximum",
		)
	}
	return nil
}
