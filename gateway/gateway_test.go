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
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agrilink-io/sarson/database"
	"github.com/agrilink-io/sarson/event"
	"github.com/agrilink-io/sarson/ledger"
)

// manualClock lets tests step ledger time across the reveal window.
type manualClock struct {
	mu  sync.Mutex
	now int64
}

func (c *manualClock) Now() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *manualClock) Advance(secs int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now += secs
}

var testAdmin = ledger.HashString("genesis-admin")

func newTestGateway(t *testing.T) (*Gateway, *manualClock) {
	t.Helper()
	db, err := database.New(&database.Config{
		DataDir: t.TempDir(),
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = db.Close()
	})
	bus := event.NewEventBus(nil, nil)
	t.Cleanup(bus.Stop)
	clk := &manualClock{now: 1700000000}
	lgr, err := ledger.NewLedger(ledger.LedgerConfig{
		Database: db,
		EventBus: bus,
		Clock:    clk,
		Genesis:  testAdmin,
	})
	require.NoError(t, err)
	return New(
		GatewayConfig{ListenAddress: "127.0.0.1:0"},
		lgr,
		nil,
		nil,
	), clk
}

func postJSON(
	t *testing.T,
	handler http.HandlerFunc,
	target string,
	body any,
) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(
		http.MethodPost,
		target,
		bytes.NewReader(data),
	)
	w := httptest.NewRecorder()
	handler(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.NewDecoder(w.Body).Decode(v))
}

func TestStartStop(t *testing.T) {
	g, _ := newTestGateway(t)

	err := g.Start(t.Context())
	require.NoError(t, err)

	g.mu.Lock()
	assert.NotNil(t, g.httpServer)
	g.mu.Unlock()

	stopCtx, stopCancel := context.WithTimeout(
		context.Background(),
		5*time.Second,
	)
	defer stopCancel()
	err = g.Stop(stopCtx)
	require.NoError(t, err)

	g.mu.Lock()
	assert.Nil(t, g.httpServer)
	g.mu.Unlock()
}

func TestStartAlreadyStarted(t *testing.T) {
	g, _ := newTestGateway(t)

	ctx := t.Context()
	err := g.Start(ctx)
	require.NoError(t, err)
	defer func() {
		stopCtx, stopCancel := context.WithTimeout(
			context.Background(),
			5*time.Second,
		)
		defer stopCancel()
		_ = g.Stop(stopCtx)
	}()

	err = g.Start(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already started")
}

func TestHandleRoot(t *testing.T) {
	g, _ := newTestGateway(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	g.handleRoot(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(
		t,
		"application/json",
		w.Header().Get("Content-Type"),
	)

	var resp RootResponse
	decodeBody(t, w, &resp)
	assert.Equal(t, "sarson", resp.Service)
	assert.Equal(t, apiVersion, resp.Version)
}

func TestHandleHealth(t *testing.T) {
	g, _ := newTestGateway(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	g.handleHealth(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp HealthResponse
	decodeBody(t, w, &resp)
	assert.True(t, resp.IsHealthy)
}

func TestFarmerRegisterAndVerify(t *testing.T) {
	g, _ := newTestGateway(t)

	w := postJSON(
		t,
		g.handleFarmerRegister,
		"/api/v1/farmer/register",
		FarmerRegisterRequest{
			Caller:     testAdmin.String(),
			FarmerName: "Ramesh Patel",
			CropType:   "mustard",
			Location:   "Bharatpur",
		},
	)
	require.Equal(t, http.StatusCreated, w.Code)

	var resp FarmerRegisterResponse
	decodeBody(t, w, &resp)
	assert.NotEmpty(t, resp.DidURI)
	assert.NotEmpty(t, resp.FarmerDID)
	assert.NotEmpty(t, resp.CropIDHash)
	// No IPFS client configured, so no CID
	assert.Empty(t, resp.IpfsCID)

	req := httptest.NewRequest(
		http.MethodGet,
		"/api/v1/farmer/"+resp.FarmerDID,
		nil,
	)
	req.SetPathValue("did", resp.FarmerDID)
	w2 := httptest.NewRecorder()
	g.handleFarmerVerify(w2, req)

	require.Equal(t, http.StatusOK, w2.Code)
	var verify FarmerVerifyResponse
	decodeBody(t, w2, &verify)
	assert.True(t, verify.Registered)
	assert.Equal(t, resp.CropIDHash, verify.CropIDHash)
}

func TestFarmerRegisterMissingFields(t *testing.T) {
	g, _ := newTestGateway(t)

	w := postJSON(
		t,
		g.handleFarmerRegister,
		"/api/v1/farmer/register",
		FarmerRegisterRequest{
			Caller:     testAdmin.String(),
			FarmerName: "Ramesh Patel",
		},
	)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestFarmerRegisterUnauthorized(t *testing.T) {
	g, _ := newTestGateway(t)

	w := postJSON(
		t,
		g.handleFarmerRegister,
		"/api/v1/farmer/register",
		FarmerRegisterRequest{
			Caller:     ledger.HashString("stranger").String(),
			FarmerName: "Ramesh Patel",
			CropType:   "mustard",
			Location:   "Bharatpur",
		},
	)
	assert.Equal(t, http.StatusForbidden, w.Code)

	var resp ErrorResponse
	decodeBody(t, w, &resp)
	assert.Equal(t, "forbidden", resp.Error)
}

func TestFarmerVerifyUnknown(t *testing.T) {
	g, _ := newTestGateway(t)

	unknown := ledger.HashString("nobody").String()
	req := httptest.NewRequest(
		http.MethodGet,
		"/api/v1/farmer/"+unknown,
		nil,
	)
	req.SetPathValue("did", unknown)
	w := httptest.NewRecorder()
	g.handleFarmerVerify(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp FarmerVerifyResponse
	decodeBody(t, w, &resp)
	assert.False(t, resp.Registered)
}

func TestFarmerVerifyBadDigest(t *testing.T) {
	g, _ := newTestGateway(t)

	req := httptest.NewRequest(
		http.MethodGet,
		"/api/v1/farmer/nothex",
		nil,
	)
	req.SetPathValue("did", "nothex")
	w := httptest.NewRecorder()
	g.handleFarmerVerify(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestFPOPurchaseUnregisteredFarmer(t *testing.T) {
	g, _ := newTestGateway(t)

	w := postJSON(
		t,
		g.handleFPOPurchase,
		"/api/v1/fpo/purchase",
		FPOPurchaseRequest{
			Caller:     testAdmin.String(),
			FarmerDID:  ledger.HashString("ghost").String(),
			FPOName:    "Bharatpur FPO",
			BatchID:    "BATCH-001",
			QuantityKg: 500,
		},
	)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestFPOPurchaseFlow(t *testing.T) {
	g, _ := newTestGateway(t)

	w := postJSON(
		t,
		g.handleFarmerRegister,
		"/api/v1/farmer/register",
		FarmerRegisterRequest{
			Caller:     testAdmin.String(),
			FarmerName: "Ramesh Patel",
			CropType:   "mustard",
			Location:   "Bharatpur",
		},
	)
	require.Equal(t, http.StatusCreated, w.Code)
	var farmer FarmerRegisterResponse
	decodeBody(t, w, &farmer)

	w = postJSON(
		t,
		g.handleFPOPurchase,
		"/api/v1/fpo/purchase",
		FPOPurchaseRequest{
			Caller:     testAdmin.String(),
			FarmerDID:  farmer.FarmerDID,
			FPOName:    "Bharatpur FPO",
			BatchID:    "BATCH-001",
			QuantityKg: 500,
		},
	)
	require.Equal(t, http.StatusCreated, w.Code)
	var resp FPOPurchaseResponse
	decodeBody(t, w, &resp)
	assert.NotEmpty(t, resp.BatchHash)
}

func TestWarehouseUpdateAndVerify(t *testing.T) {
	g, _ := newTestGateway(t)

	w := postJSON(
		t,
		g.handleWarehouseUpdate,
		"/api/v1/warehouse/update",
		WarehouseUpdateRequest{
			Caller:             testAdmin.String(),
			WarehouseID:        "WH-JAIPUR-01",
			BatchID:            "BATCH-001",
			StorageLocation:    "bay 4",
			TemperatureCelsius: 21.5,
			HumidityPercentage: 48,
		},
	)
	require.Equal(t, http.StatusCreated, w.Code)
	var resp WarehouseUpdateResponse
	decodeBody(t, w, &resp)

	req := httptest.NewRequest(
		http.MethodGet,
		"/api/v1/warehouse/"+resp.WarehouseID,
		nil,
	)
	req.SetPathValue("id", resp.WarehouseID)
	w2 := httptest.NewRecorder()
	g.handleWarehouseVerify(w2, req)

	require.Equal(t, http.StatusOK, w2.Code)
	var verify WarehouseVerifyResponse
	decodeBody(t, w2, &verify)
	assert.True(t, verify.Known)
	assert.Equal(t, resp.StateHash, verify.StateHash)
}

func TestLogisticsMilestone(t *testing.T) {
	g, _ := newTestGateway(t)

	w := postJSON(
		t,
		g.handleLogisticsMilestone,
		"/api/v1/logistics/milestone",
		LogisticsMilestoneRequest{
			Caller:          testAdmin.String(),
			ShipmentID:      "SHIP-001",
			CurrentLocation: "Jaipur depot",
			MilestoneType:   "pickup",
			CarrierName:     "AgriTrans",
			VehicleID:       "RJ14-1234",
			GPSCoordinates: GPSCoordinates{
				Latitude:  26.9124,
				Longitude: 75.7873,
			},
		},
	)
	require.Equal(t, http.StatusCreated, w.Code)
	var resp LogisticsMilestoneResponse
	decodeBody(t, w, &resp)
	assert.NotEmpty(t, resp.ShipmentID)
	assert.NotEmpty(t, resp.LocationHash)
}

func TestProcessBatch(t *testing.T) {
	g, _ := newTestGateway(t)

	w := postJSON(
		t,
		g.handleProcessBatch,
		"/api/v1/process/batch",
		ProcessBatchRequest{
			Caller:           testAdmin.String(),
			InputBatchID:     "BATCH-001",
			ProcessorName:    "Sarson Oils Ltd",
			ProcessingType:   "cold_press",
			InputQuantityKg:  500,
			OutputQuantityKg: 180,
			YieldPercentage:  36,
			WastePercentage:  4,
			OutputBatchIDs:   []string{"OIL-001", "CAKE-001"},
		},
	)
	require.Equal(t, http.StatusCreated, w.Code)
	var resp ProcessBatchResponse
	decodeBody(t, w, &resp)
	assert.Len(t, resp.OutputBatchHashes, 2)
	assert.NotEmpty(t, resp.TransformHash)
}

func TestProcessBatchNoOutputs(t *testing.T) {
	g, _ := newTestGateway(t)

	w := postJSON(
		t,
		g.handleProcessBatch,
		"/api/v1/process/batch",
		ProcessBatchRequest{
			Caller:        testAdmin.String(),
			InputBatchID:  "BATCH-001",
			ProcessorName: "Sarson Oils Ltd",
		},
	)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateSKUAndVerify(t *testing.T) {
	g, _ := newTestGateway(t)

	body := CreateSKURequest{
		Caller:        testAdmin.String(),
		SkuID:         "SKU-OIL-1L-001",
		ParentBatchID: "OIL-001",
		ProductName:   "Cold-Pressed Mustard Oil 1L",
		MerkleProof:   []string{"leaf-a", "leaf-b", "leaf-c"},
	}
	w := postJSON(
		t,
		g.handleCreateSKU,
		"/api/v1/sku/create",
		body,
	)
	require.Equal(t, http.StatusCreated, w.Code)
	var resp CreateSKUResponse
	decodeBody(t, w, &resp)
	assert.NotEmpty(t, resp.MerkleRoot)

	// Same SKU again conflicts
	w = postJSON(
		t,
		g.handleCreateSKU,
		"/api/v1/sku/create",
		body,
	)
	assert.Equal(t, http.StatusConflict, w.Code)

	req := httptest.NewRequest(
		http.MethodGet,
		"/api/v1/sku/"+resp.SkuID,
		nil,
	)
	req.SetPathValue("id", resp.SkuID)
	w2 := httptest.NewRecorder()
	g.handleSKUVerify(w2, req)

	require.Equal(t, http.StatusOK, w2.Code)
	var verify SKUVerifyResponse
	decodeBody(t, w2, &verify)
	assert.Equal(t, resp.MerkleRoot, verify.MerkleRoot)
	assert.Equal(t, resp.ParentBatchHash, verify.ParentBatchHash)
}

func TestSKUVerifyUnknown(t *testing.T) {
	g, _ := newTestGateway(t)

	unknown := ledger.HashString("no-such-sku").String()
	req := httptest.NewRequest(
		http.MethodGet,
		"/api/v1/sku/"+unknown,
		nil,
	)
	req.SetPathValue("id", unknown)
	w := httptest.NewRecorder()
	g.handleSKUVerify(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestFraudReportUnknownSKU(t *testing.T) {
	g, _ := newTestGateway(t)

	w := postJSON(
		t,
		g.handleFraudReport,
		"/api/v1/fraud/report",
		FraudReportRequest{
			Caller:      testAdmin.String(),
			SkuID:       ledger.HashString("no-such-sku").String(),
			Description: "label mismatch",
		},
	)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestFraudReportFlow(t *testing.T) {
	g, _ := newTestGateway(t)

	w := postJSON(
		t,
		g.handleCreateSKU,
		"/api/v1/sku/create",
		CreateSKURequest{
			Caller:        testAdmin.String(),
			SkuID:         "SKU-OIL-1L-001",
			ParentBatchID: "OIL-001",
			ProductName:   "Cold-Pressed Mustard Oil 1L",
		},
	)
	require.Equal(t, http.StatusCreated, w.Code)
	var sku CreateSKUResponse
	decodeBody(t, w, &sku)

	// Fraud reports are open to any identity
	w = postJSON(
		t,
		g.handleFraudReport,
		"/api/v1/fraud/report",
		FraudReportRequest{
			Caller:      ledger.HashString("consumer").String(),
			SkuID:       sku.SkuID,
			Description: "label mismatch",
			Evidence:    json.RawMessage(`{"photo":"ipfs://evidence"}`),
		},
	)
	require.Equal(t, http.StatusCreated, w.Code)
	var resp FraudReportResponse
	decodeBody(t, w, &resp)
	assert.NotEmpty(t, resp.EvidenceHash)
}

func TestScoreCommitRevealFlow(t *testing.T) {
	g, clk := newTestGateway(t)

	w := postJSON(
		t,
		g.handleScoreCommit,
		"/api/v1/score/commit",
		ScoreCommitRequest{
			Caller:       testAdmin.String(),
			BatchID:      "BATCH-001",
			ModelName:    "quality-v2",
			QualityScore: 87.5,
		},
	)
	require.Equal(t, http.StatusCreated, w.Code)
	var commit ScoreCommitResponse
	decodeBody(t, w, &commit)
	require.NotEmpty(t, commit.Nonce)

	// Revealing before the window opens conflicts
	reveal := ScoreRevealRequest{
		Caller:     testAdmin.String(),
		BatchHash:  commit.BatchHash,
		RevealHash: commit.RevealHash,
		Nonce:      commit.Nonce,
	}
	w = postJSON(
		t,
		g.handleScoreReveal,
		"/api/v1/score/reveal",
		reveal,
	)
	assert.Equal(t, http.StatusConflict, w.Code)

	clk.Advance(ledger.MinRevealDelay)
	w = postJSON(
		t,
		g.handleScoreReveal,
		"/api/v1/score/reveal",
		reveal,
	)
	require.Equal(t, http.StatusOK, w.Code)

	req := httptest.NewRequest(
		http.MethodGet,
		"/api/v1/score/"+commit.BatchHash,
		nil,
	)
	req.SetPathValue("batch", commit.BatchHash)
	w2 := httptest.NewRecorder()
	g.handleScoreVerify(w2, req)

	require.Equal(t, http.StatusOK, w2.Code)
	var verify ScoreVerifyResponse
	decodeBody(t, w2, &verify)
	assert.True(t, verify.Committed)
	assert.True(t, verify.Revealed)
	assert.Equal(t, commit.RevealHash, verify.RevealHash)
}

func TestScoreRevealWrongNonce(t *testing.T) {
	g, clk := newTestGateway(t)

	w := postJSON(
		t,
		g.handleScoreCommit,
		"/api/v1/score/commit",
		ScoreCommitRequest{
			Caller:    testAdmin.String(),
			BatchID:   "BATCH-001",
			ModelName: "quality-v2",
		},
	)
	require.Equal(t, http.StatusCreated, w.Code)
	var commit ScoreCommitResponse
	decodeBody(t, w, &commit)

	clk.Advance(ledger.MinRevealDelay)
	w = postJSON(
		t,
		g.handleScoreReveal,
		"/api/v1/score/reveal",
		ScoreRevealRequest{
			Caller:     testAdmin.String(),
			BatchHash:  commit.BatchHash,
			RevealHash: commit.RevealHash,
			Nonce:      ledger.HashString("wrong").String(),
		},
	)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestScoreVerifyUnknown(t *testing.T) {
	g, _ := newTestGateway(t)

	unknown := ledger.HashString("no-such-batch").String()
	req := httptest.NewRequest(
		http.MethodGet,
		"/api/v1/score/"+unknown,
		nil,
	)
	req.SetPathValue("batch", unknown)
	w := httptest.NewRecorder()
	g.handleScoreVerify(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp ScoreVerifyResponse
	decodeBody(t, w, &resp)
	assert.False(t, resp.Committed)
	assert.False(t, resp.Revealed)
}

func TestHandleEvents(t *testing.T) {
	g, _ := newTestGateway(t)

	w := postJSON(
		t,
		g.handleFarmerRegister,
		"/api/v1/farmer/register",
		FarmerRegisterRequest{
			Caller:     testAdmin.String(),
			FarmerName: "Ramesh Patel",
			CropType:   "mustard",
			Location:   "Bharatpur",
		},
	)
	require.Equal(t, http.StatusCreated, w.Code)

	req := httptest.NewRequest(
		http.MethodGet,
		"/api/v1/events",
		nil,
	)
	w2 := httptest.NewRecorder()
	g.handleEvents(w2, req)

	require.Equal(t, http.StatusOK, w2.Code)
	var resp EventsResponse
	decodeBody(t, w2, &resp)
	// Genesis role grant plus the farmer registration
	assert.GreaterOrEqual(t, resp.Total, uint64(2))
	assert.NotEmpty(t, resp.Events)
}

func TestHandleEventsBadLimit(t *testing.T) {
	g, _ := newTestGateway(t)

	req := httptest.NewRequest(
		http.MethodGet,
		"/api/v1/events?limit=bogus",
		nil,
	)
	w := httptest.NewRecorder()
	g.handleEvents(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestComputeMerkleRoot(t *testing.T) {
	leafA := ledger.HashString("a")
	leafB := ledger.HashString("b")
	leafC := ledger.HashString("c")

	// A single leaf is its own root
	assert.Equal(
		t,
		leafA,
		computeMerkleRoot([]ledger.Digest{leafA}),
	)

	// Two leaves hash together
	assert.Equal(
		t,
		ledger.HashData(leafA.Bytes(), leafB.Bytes()),
		computeMerkleRoot([]ledger.Digest{leafA, leafB}),
	)

	// An odd leaf is paired with itself
	ab := ledger.HashData(leafA.Bytes(), leafB.Bytes())
	cc := ledger.HashData(leafC.Bytes(), leafC.Bytes())
	assert.Equal(
		t,
		ledger.HashData(ab.Bytes(), cc.Bytes()),
		computeMerkleRoot([]ledger.Digest{leafA, leafB, leafC}),
	)

	// Order matters
	assert.NotEqual(
		t,
		computeMerkleRoot([]ledger.Digest{leafA, leafB}),
		computeMerkleRoot([]ledger.Digest{leafB, leafA}),
	)
}
