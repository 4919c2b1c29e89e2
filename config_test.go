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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agrilink-io/sarson/ledger"
)

func TestNewConfigDefaults(t *testing.T) {
	cfg := NewConfig()
	assert.NotNil(t, cfg.logger)
	assert.Empty(t, cfg.dataDir)
	assert.Empty(t, cfg.gatewayListenAddress)
	assert.Empty(t, cfg.ipfsEndpoint)
	assert.True(t, cfg.genesisIdentity.IsZero())
}

func TestConfigOptions(t *testing.T) {
	genesis := ledger.HashString("genesis-admin")
	cfg := NewConfig(
		WithDataDir("/var/lib/sarson"),
		WithGatewayListenAddress("127.0.0.1:3000"),
		WithIpfsEndpoint("http://localhost:5001"),
		WithGenesisIdentity(genesis),
		WithRevealWindow(600, 7200),
		WithTracing(true),
		WithTracingStdout(true),
		WithShutdownTimeout(10*time.Second),
	)
	assert.Equal(t, "/var/lib/sarson", cfg.dataDir)
	assert.Equal(t, "127.0.0.1:3000", cfg.gatewayListenAddress)
	assert.Equal(t, "http://localhost:5001", cfg.ipfsEndpoint)
	assert.Equal(t, genesis, cfg.genesisIdentity)
	assert.Equal(t, int64(600), cfg.minRevealDelay)
	assert.Equal(t, int64(7200), cfg.maxRevealDelay)
	assert.True(t, cfg.tracing)
	assert.True(t, cfg.tracingStdout)
	assert.Equal(t, 10*time.Second, cfg.shutdownTimeout)
}

func TestConfigValidate(t *testing.T) {
	genesis := ledger.HashString("genesis-admin")

	// No genesis identity
	_, err := New(NewConfig())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "genesis identity")

	// Negative window bound
	_, err = New(NewConfig(
		WithGenesisIdentity(genesis),
		WithRevealWindow(-1, 7200),
	))
	require.Error(t, err)

	// Inverted window
	_, err = New(NewConfig(
		WithGenesisIdentity(genesis),
		WithRevealWindow(7200, 600),
	))
	require.Error(t, err)

	// Valid config
	n, err := New(NewConfig(
		WithGenesisIdentity(genesis),
		WithRevealWindow(600, 7200),
	))
	require.NoError(t, err)
	assert.NotNil(t, n)
}
