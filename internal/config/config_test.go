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

package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func resetGlobalConfig() {
	globalConfig = &Config{
		DatabasePath:    ".sarson",
		BindAddr:        "0.0.0.0",
		GatewayPort:     3000,
		MetricsPort:     12798,
		IpfsEndpoint:    "",
		GenesisIdentity: "",
		ShutdownTimeout: DefaultShutdownTimeout,
	}
}

func TestLoad_CompareFullStruct(t *testing.T) {
	resetGlobalConfig()
	yamlContent := `
databasePath: "/var/lib/sarson"
bindAddr: "127.0.0.1"
ipfsEndpoint: "http://localhost:5001"
genesisIdentity: "aabbccdd"
shutdownTimeout: "10s"
minRevealDelay: 600
maxRevealDelay: 7200
gatewayPort: 8080
metricsPort: 9100
tracing: true
tracingStdout: true
`

	tmpDir := t.TempDir()
	tmpFile := filepath.Join(tmpDir, "test-sarson.yaml")

	err := os.WriteFile(tmpFile, []byte(yamlContent), 0644)
	if err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	defer os.Remove(tmpFile)

	expected := &Config{
		DatabasePath:    "/var/lib/sarson",
		BindAddr:        "127.0.0.1",
		IpfsEndpoint:    "http://localhost:5001",
		GenesisIdentity: "aabbccdd",
		ShutdownTimeout: "10s",
		MinRevealDelay:  600,
		MaxRevealDelay:  7200,
		GatewayPort:     8080,
		MetricsPort:     9100,
		Tracing:         true,
		TracingStdout:   true,
	}

	actual, err := LoadConfig(tmpFile)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if !reflect.DeepEqual(actual, expected) {
		t.Errorf(
			"Loaded config does not match expected.\nActual: %+v\nExpected: %+v",
			actual,
			expected,
		)
	}
}

func TestLoad_WithoutConfigFile_UsesDefaults(t *testing.T) {
	resetGlobalConfig()

	// Without Config file
	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	// Expected is the original default values from globalConfig
	expected := &Config{
		DatabasePath:    ".sarson",
		BindAddr:        "0.0.0.0",
		GatewayPort:     3000,
		MetricsPort:     12798,
		IpfsEndpoint:    "",
		GenesisIdentity: "",
		ShutdownTimeout: DefaultShutdownTimeout,
	}

	if !reflect.DeepEqual(cfg, expected) {
		t.Errorf(
			"config mismatch without file:\nExpected: %+v\nGot:      %+v",
			expected,
			cfg,
		)
	}
}

func TestLoad_PartialOverlay(t *testing.T) {
	resetGlobalConfig()

	// Values not present in the file keep their defaults
	yamlContent := `
genesisIdentity: "deadbeef"
gatewayPort: 4000
`

	tmpDir := t.TempDir()
	tmpFile := filepath.Join(tmpDir, "test-partial.yaml")

	err := os.WriteFile(tmpFile, []byte(yamlContent), 0644)
	if err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	cfg, err := LoadConfig(tmpFile)
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	if cfg.GenesisIdentity != "deadbeef" {
		t.Errorf(
			"expected GenesisIdentity to be deadbeef, got: %s",
			cfg.GenesisIdentity,
		)
	}
	if cfg.GatewayPort != 4000 {
		t.Errorf("expected GatewayPort to be 4000, got: %d", cfg.GatewayPort)
	}
	if cfg.DatabasePath != ".sarson" {
		t.Errorf(
			"expected default DatabasePath, got: %s",
			cfg.DatabasePath,
		)
	}
}

func TestLoad_EnvironmentOverride(t *testing.T) {
	resetGlobalConfig()

	t.Setenv("SARSON_IPFS_ENDPOINT", "http://ipfs.internal:5001")
	t.Setenv("SARSON_MIN_REVEAL_DELAY", "120")

	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	if cfg.IpfsEndpoint != "http://ipfs.internal:5001" {
		t.Errorf(
			"expected IpfsEndpoint from environment, got: %s",
			cfg.IpfsEndpoint,
		)
	}
	if cfg.MinRevealDelay != 120 {
		t.Errorf(
			"expected MinRevealDelay to be 120, got: %d",
			cfg.MinRevealDelay,
		)
	}
}

func TestContextRoundtrip(t *testing.T) {
	resetGlobalConfig()

	ctx := WithContext(t.Context(), globalConfig)
	if got := FromContext(ctx); got != globalConfig {
		t.Errorf("expected config from context, got: %+v", got)
	}
	if got := FromContext(t.Context()); got != nil {
		t.Errorf("expected nil config from empty context, got: %+v", got)
	}
}
