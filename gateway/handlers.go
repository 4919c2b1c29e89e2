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
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/agrilink-io/sarson/ledger"
	"github.com/google/uuid"
)

const apiVersion = "0.1.0"

const (
	defaultEventPageSize = 100
	maxEventPageSize     = 1000
)

// writeJSON writes a JSON response with the given status
// code.
func writeJSON(
	w http.ResponseWriter,
	status int,
	v any,
) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	//nolint:errcheck,errchkjson
	json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error response.
func writeError(
	w http.ResponseWriter,
	status int,
	errStr string,
	message string,
) {
	writeJSON(w, status, ErrorResponse{
		StatusCode: status,
		Error:      errStr,
		Message:    message,
	})
}

// writeLedgerError maps ledger sentinel errors to HTTP
// statuses.
func (g *Gateway) writeLedgerError(
	w http.ResponseWriter,
	err error,
) {
	switch {
	case errors.Is(err, ledger.ErrUnauthorized):
		writeError(
			w,
			http.StatusForbidden,
			"forbidden",
			err.Error(),
		)
	case errors.Is(err, ledger.ErrAlreadyRegistered),
		errors.Is(err, ledger.ErrSKUAlreadyExists),
		errors.Is(err, ledger.ErrAlreadyCommitted),
		errors.Is(err, ledger.ErrAlreadyRevealed),
		errors.Is(err, ledger.ErrRevealTooEarly),
		errors.Is(err, ledger.ErrRevealTooLate):
		writeError(
			w,
			http.StatusConflict,
			"conflict",
			err.Error(),
		)
	case errors.Is(err, ledger.ErrFarmerNotRegistered),
		errors.Is(err, ledger.ErrSKUNotFound),
		errors.Is(err, ledger.ErrNotCommitted):
		writeError(
			w,
			http.StatusNotFound,
			"not_found",
			err.Error(),
		)
	case errors.Is(err, ledger.ErrInvalidReveal),
		errors.Is(err, ledger.ErrLengthMismatch):
		writeError(
			w,
			http.StatusBadRequest,
			"bad_request",
			err.Error(),
		)
	default:
		g.logger.Error(
			"ledger submission failed",
			"error", err,
		)
		writeError(
			w,
			http.StatusInternalServerError,
			"internal",
			"internal server error",
		)
	}
}

// decode reads the request body into v, writing a 400 on
// failure.
func (g *Gateway) decode(
	w http.ResponseWriter,
	r *http.Request,
	v any,
) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(
			w,
			http.StatusBadRequest,
			"bad_request",
			"invalid JSON body: "+err.Error(),
		)
		return false
	}
	return true
}

// parseCaller parses the caller identity digest, writing a
// 400 on failure.
func (g *Gateway) parseCaller(
	w http.ResponseWriter,
	caller string,
) (ledger.Identity, bool) {
	identity, err := ledger.ParseDigest(caller)
	if err != nil {
		writeError(
			w,
			http.StatusBadRequest,
			"bad_request",
			"invalid caller identity: "+err.Error(),
		)
		return ledger.Identity{}, false
	}
	return identity, true
}

// parsePathDigest parses a hex digest path segment, writing a
// 400 on failure.
func (g *Gateway) parsePathDigest(
	w http.ResponseWriter,
	r *http.Request,
	name string,
) (ledger.Digest, bool) {
	d, err := ledger.ParseDigest(r.PathValue(name))
	if err != nil {
		writeError(
			w,
			http.StatusBadRequest,
			"bad_request",
			fmt.Sprintf("invalid %s: %s", name, err),
		)
		return ledger.Digest{}, false
	}
	return d, true
}

// pinMetadata uploads a metadata document to IPFS and pins
// it. Returns an empty CID when no IPFS client is configured.
func (g *Gateway) pinMetadata(
	r *http.Request,
	v any,
) (string, error) {
	if g.ipfs == nil {
		return "", nil
	}
	cid, err := g.ipfs.AddJSON(r.Context(), v)
	if err != nil {
		return "", err
	}
	if err := g.ipfs.Pin(r.Context(), cid); err != nil {
		return "", err
	}
	return cid, nil
}

func (g *Gateway) writeIpfsError(
	w http.ResponseWriter,
	err error,
) {
	g.logger.Error("IPFS upload failed", "error", err)
	writeError(
		w,
		http.StatusBadGateway,
		"ipfs_error",
		"failed to persist metadata off-chain",
	)
}

// generateDID returns a fresh decentralized identifier with
// the given method prefix.
func generateDID(prefix string) string {
	return fmt.Sprintf("did:%s:%s", prefix, uuid.NewString())
}

// newNonce returns a cryptographically random blinding nonce.
func newNonce() (ledger.Digest, error) {
	var nonce ledger.Digest
	if _, err := rand.Read(nonce[:]); err != nil {
		return ledger.Digest{}, err
	}
	return nonce, nil
}

// computeMerkleRoot folds leaf digests pairwise into a single
// root. An odd leaf at any level is paired with itself. A
// single leaf is its own root.
func computeMerkleRoot(leaves []ledger.Digest) ledger.Digest {
	if len(leaves) == 0 {
		return ledger.HashData([]byte("empty"))
	}
	level := leaves
	for len(level) > 1 {
		next := make([]ledger.Digest, 0, (len(level)+1)/2)
		for i := 0; i < len(level); i += 2 {
			left := level[i]
			right := left
			if i+1 < len(level) {
				right = level[i+1]
			}
			next = append(
				next,
				ledger.HashData(
					left.Bytes(),
					right.Bytes(),
				),
			)
		}
		level = next
	}
	return level[0]
}

// handleRoot handles GET / and returns API metadata.
func (g *Gateway) handleRoot(
	w http.ResponseWriter,
	_ *http.Request,
) {
	writeJSON(w, http.StatusOK, RootResponse{
		Service: "sarson",
		Version: apiVersion,
	})
}

// handleHealth handles GET /health.
func (g *Gateway) handleHealth(
	w http.ResponseWriter,
	_ *http.Request,
) {
	writeJSON(w, http.StatusOK, HealthResponse{
		IsHealthy: true,
	})
}

// handleFarmerRegister handles POST /api/v1/farmer/register.
// It derives a fresh farmer DID, persists the registration
// metadata off-chain, and records the digests on the ledger.
func (g *Gateway) handleFarmerRegister(
	w http.ResponseWriter,
	r *http.Request,
) {
	var req FarmerRegisterRequest
	if !g.decode(w, r, &req) {
		return
	}
	if req.FarmerName == "" || req.CropType == "" ||
		req.Location == "" {
		writeError(
			w,
			http.StatusBadRequest,
			"bad_request",
			"farmer_name, crop_type and location are "+
				"required",
		)
		return
	}
	caller, ok := g.parseCaller(w, req.Caller)
	if !ok {
		return
	}

	now := time.Now().Unix()
	didURI := generateDID("farmer")
	farmerDID := ledger.HashString(didURI)
	cropIDHash := ledger.HashString(
		fmt.Sprintf("%s-%s-%d", didURI, req.CropType, now),
	)

	cid, err := g.pinMetadata(r, map[string]any{
		"farmer_did":        didURI,
		"crop_id_hash":      cropIDHash.String(),
		"registration_data": req,
		"registered_at":     now,
	})
	if err != nil {
		g.writeIpfsError(w, err)
		return
	}

	if err := g.ledger.RegisterFarmer(
		caller,
		farmerDID,
		cropIDHash,
		cid,
	); err != nil {
		g.writeLedgerError(w, err)
		return
	}

	g.logger.Info(
		"registered farmer",
		"farmer_did", farmerDID.String(),
		"cid", cid,
	)
	writeJSON(w, http.StatusCreated, FarmerRegisterResponse{
		DidURI:       didURI,
		FarmerDID:    farmerDID.String(),
		CropIDHash:   cropIDHash.String(),
		IpfsCID:      cid,
		RegisteredAt: now,
	})
}

// handleFarmerVerify handles GET /api/v1/farmer/{did}.
func (g *Gateway) handleFarmerVerify(
	w http.ResponseWriter,
	r *http.Request,
) {
	farmerDID, ok := g.parsePathDigest(w, r, "did")
	if !ok {
		return
	}
	rec, registered, err := g.ledger.VerifyFarmer(farmerDID)
	if err != nil {
		g.writeLedgerError(w, err)
		return
	}
	resp := FarmerVerifyResponse{
		FarmerDID:  farmerDID.String(),
		Registered: registered,
	}
	if registered {
		resp.CropIDHash = rec.CropIDHash.String()
		resp.RegisteredAt = rec.RegisteredAt
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleFPOPurchase handles POST /api/v1/fpo/purchase.
func (g *Gateway) handleFPOPurchase(
	w http.ResponseWriter,
	r *http.Request,
) {
	var req FPOPurchaseRequest
	if !g.decode(w, r, &req) {
		return
	}
	if req.FarmerDID == "" || req.FPOName == "" ||
		req.BatchID == "" {
		writeError(
			w,
			http.StatusBadRequest,
			"bad_request",
			"farmer_did, fpo_name and batch_id are "+
				"required",
		)
		return
	}
	caller, ok := g.parseCaller(w, req.Caller)
	if !ok {
		return
	}
	farmerDID, err := ledger.ParseDigest(req.FarmerDID)
	if err != nil {
		writeError(
			w,
			http.StatusBadRequest,
			"bad_request",
			"invalid farmer_did: "+err.Error(),
		)
		return
	}

	now := time.Now().Unix()
	batchHash := ledger.HashString(fmt.Sprintf(
		"%s-%s-%g-%s",
		req.FarmerDID,
		req.BatchID,
		req.QuantityKg,
		req.FPOName,
	))

	cid, err := g.pinMetadata(r, map[string]any{
		"batch_hash":    batchHash.String(),
		"purchase_data": req,
		"purchased_at":  now,
	})
	if err != nil {
		g.writeIpfsError(w, err)
		return
	}

	if err := g.ledger.FPOPurchase(
		caller,
		batchHash,
		farmerDID,
		cid,
	); err != nil {
		g.writeLedgerError(w, err)
		return
	}

	g.logger.Info(
		"recorded FPO purchase",
		"batch_hash", batchHash.String(),
		"cid", cid,
	)
	writeJSON(w, http.StatusCreated, FPOPurchaseResponse{
		BatchHash:   batchHash.String(),
		IpfsCID:     cid,
		PurchasedAt: now,
	})
}

// handleWarehouseUpdate handles POST /api/v1/warehouse/update.
// The state hash covers the sensor readings and the metadata
// CID so any off-chain tampering breaks verification.
func (g *Gateway) handleWarehouseUpdate(
	w http.ResponseWriter,
	r *http.Request,
) {
	var req WarehouseUpdateRequest
	if !g.decode(w, r, &req) {
		return
	}
	if req.WarehouseID == "" || req.BatchID == "" {
		writeError(
			w,
			http.StatusBadRequest,
			"bad_request",
			"warehouse_id and batch_id are required",
		)
		return
	}
	caller, ok := g.parseCaller(w, req.Caller)
	if !ok {
		return
	}

	now := time.Now().Unix()
	warehouseID := ledger.HashString(req.WarehouseID)

	cid, err := g.pinMetadata(r, map[string]any{
		"warehouse_id":   req.WarehouseID,
		"warehouse_data": req,
		"updated_at":     now,
	})
	if err != nil {
		g.writeIpfsError(w, err)
		return
	}

	stateHash := ledger.HashString(fmt.Sprintf(
		"%s-%s-%g-%g-%s",
		req.WarehouseID,
		req.BatchID,
		req.TemperatureCelsius,
		req.HumidityPercentage,
		cid,
	))

	if err := g.ledger.UpdateWarehouseState(
		caller,
		warehouseID,
		stateHash,
		cid,
	); err != nil {
		g.writeLedgerError(w, err)
		return
	}

	g.logger.Info(
		"updated warehouse state",
		"warehouse_id", warehouseID.String(),
		"cid", cid,
	)
	writeJSON(w, http.StatusCreated, WarehouseUpdateResponse{
		WarehouseID: warehouseID.String(),
		StateHash:   stateHash.String(),
		IpfsCID:     cid,
		UpdatedAt:   now,
	})
}

// handleWarehouseVerify handles GET /api/v1/warehouse/{id}.
func (g *Gateway) handleWarehouseVerify(
	w http.ResponseWriter,
	r *http.Request,
) {
	warehouseID, ok := g.parsePathDigest(w, r, "id")
	if !ok {
		return
	}
	state, known, err := g.ledger.GetWarehouseState(
		warehouseID,
	)
	if err != nil {
		g.writeLedgerError(w, err)
		return
	}
	resp := WarehouseVerifyResponse{
		WarehouseID: warehouseID.String(),
		Known:       known,
	}
	if known {
		resp.StateHash = state.StateHash.String()
		resp.LastUpdated = state.LastUpdated
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleLogisticsMilestone handles POST
// /api/v1/logistics/milestone.
func (g *Gateway) handleLogisticsMilestone(
	w http.ResponseWriter,
	r *http.Request,
) {
	var req LogisticsMilestoneRequest
	if !g.decode(w, r, &req) {
		return
	}
	if req.ShipmentID == "" {
		writeError(
			w,
			http.StatusBadRequest,
			"bad_request",
			"shipment_id is required",
		)
		return
	}
	caller, ok := g.parseCaller(w, req.Caller)
	if !ok {
		return
	}

	now := time.Now().Unix()
	shipmentID := ledger.HashString(req.ShipmentID)
	locationHash := ledger.HashString(fmt.Sprintf(
		"%s-%s-%g-%g",
		req.ShipmentID,
		req.CurrentLocation,
		req.GPSCoordinates.Latitude,
		req.GPSCoordinates.Longitude,
	))

	cid, err := g.pinMetadata(r, map[string]any{
		"shipment_id":    req.ShipmentID,
		"location_hash":  locationHash.String(),
		"milestone_data": req,
		"recorded_at":    now,
	})
	if err != nil {
		g.writeIpfsError(w, err)
		return
	}

	if err := g.ledger.RecordLogistics(
		caller,
		shipmentID,
		locationHash,
		req.IsDelivered,
		cid,
	); err != nil {
		g.writeLedgerError(w, err)
		return
	}

	g.logger.Info(
		"recorded logistics milestone",
		"shipment_id", shipmentID.String(),
		"delivered", req.IsDelivered,
		"cid", cid,
	)
	writeJSON(
		w,
		http.StatusCreated,
		LogisticsMilestoneResponse{
			ShipmentID:   shipmentID.String(),
			LocationHash: locationHash.String(),
			IpfsCID:      cid,
			RecordedAt:   now,
		},
	)
}

// handleProcessBatch handles POST /api/v1/process/batch.
func (g *Gateway) handleProcessBatch(
	w http.ResponseWriter,
	r *http.Request,
) {
	var req ProcessBatchRequest
	if !g.decode(w, r, &req) {
		return
	}
	if req.InputBatchID == "" || req.ProcessorName == "" {
		writeError(
			w,
			http.StatusBadRequest,
			"bad_request",
			"input_batch_id and processor_name are "+
				"required",
		)
		return
	}
	if len(req.OutputBatchIDs) == 0 {
		writeError(
			w,
			http.StatusBadRequest,
			"bad_request",
			"at least one output batch is required",
		)
		return
	}
	caller, ok := g.parseCaller(w, req.Caller)
	if !ok {
		return
	}

	now := time.Now().Unix()
	inputBatchHash := ledger.HashString(fmt.Sprintf(
		"%s-%s-%g",
		req.InputBatchID,
		req.ProcessorName,
		req.InputQuantityKg,
	))
	transformHash := ledger.HashString(fmt.Sprintf(
		"%s-%g-%g",
		req.ProcessingType,
		req.YieldPercentage,
		req.WastePercentage,
	))
	outputHashes := make(
		[]ledger.Digest,
		0,
		len(req.OutputBatchIDs),
	)
	outputHashStrs := make(
		[]string,
		0,
		len(req.OutputBatchIDs),
	)
	for _, id := range req.OutputBatchIDs {
		h := ledger.HashString(fmt.Sprintf(
			"%s-%g",
			id,
			req.OutputQuantityKg,
		))
		outputHashes = append(outputHashes, h)
		outputHashStrs = append(
			outputHashStrs,
			h.String(),
		)
	}

	cid, err := g.pinMetadata(r, map[string]any{
		"input_batch_hash":    inputBatchHash.String(),
		"transform_hash":      transformHash.String(),
		"output_batch_hashes": outputHashStrs,
		"process_data":        req,
		"processed_at":        now,
	})
	if err != nil {
		g.writeIpfsError(w, err)
		return
	}

	if err := g.ledger.ProcessBatch(
		caller,
		inputBatchHash,
		transformHash,
		outputHashes,
		cid,
	); err != nil {
		g.writeLedgerError(w, err)
		return
	}

	g.logger.Info(
		"processed batch",
		"input_batch_hash", inputBatchHash.String(),
		"outputs", len(outputHashes),
		"cid", cid,
	)
	writeJSON(w, http.StatusCreated, ProcessBatchResponse{
		InputBatchHash:    inputBatchHash.String(),
		TransformHash:     transformHash.String(),
		OutputBatchHashes: outputHashStrs,
		IpfsCID:           cid,
		ProcessedAt:       now,
	})
}

// handleCreateSKU handles POST /api/v1/sku/create. The merkle
// root covers the supplied proof leaves, falling back to the
// SKU itself when none are given.
func (g *Gateway) handleCreateSKU(
	w http.ResponseWriter,
	r *http.Request,
) {
	var req CreateSKURequest
	if !g.decode(w, r, &req) {
		return
	}
	if req.SkuID == "" || req.ParentBatchID == "" ||
		req.ProductName == "" {
		writeError(
			w,
			http.StatusBadRequest,
			"bad_request",
			"sku_id, parent_batch_id and product_name "+
				"are required",
		)
		return
	}
	caller, ok := g.parseCaller(w, req.Caller)
	if !ok {
		return
	}

	now := time.Now().Unix()
	skuID := ledger.HashString(req.SkuID)
	parentBatchHash := ledger.HashString(fmt.Sprintf(
		"%s-%s",
		req.ParentBatchID,
		req.ProductName,
	))
	var leaves []ledger.Digest
	if len(req.MerkleProof) > 0 {
		leaves = make(
			[]ledger.Digest,
			0,
			len(req.MerkleProof),
		)
		for _, leaf := range req.MerkleProof {
			leaves = append(
				leaves,
				ledger.HashString(leaf),
			)
		}
	} else {
		leaves = []ledger.Digest{skuID}
	}
	merkleRoot := computeMerkleRoot(leaves)

	cid, err := g.pinMetadata(r, map[string]any{
		"sku_id":            req.SkuID,
		"parent_batch_hash": parentBatchHash.String(),
		"merkle_root":       merkleRoot.String(),
		"sku_data":          req,
		"packaged_at":       now,
	})
	if err != nil {
		g.writeIpfsError(w, err)
		return
	}

	if err := g.ledger.CreateSKU(
		caller,
		skuID,
		parentBatchHash,
		merkleRoot,
		cid,
	); err != nil {
		g.writeLedgerError(w, err)
		return
	}

	g.logger.Info(
		"created SKU",
		"sku_id", skuID.String(),
		"cid", cid,
	)
	writeJSON(w, http.StatusCreated, CreateSKUResponse{
		SkuID:           skuID.String(),
		ParentBatchHash: parentBatchHash.String(),
		MerkleRoot:      merkleRoot.String(),
		IpfsCID:         cid,
		PackagedAt:      now,
	})
}

// handleSKUVerify handles GET /api/v1/sku/{id}.
func (g *Gateway) handleSKUVerify(
	w http.ResponseWriter,
	r *http.Request,
) {
	skuID, ok := g.parsePathDigest(w, r, "id")
	if !ok {
		return
	}
	rec, err := g.ledger.VerifyPackageOrigin(skuID)
	if err != nil {
		g.writeLedgerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, SKUVerifyResponse{
		SkuID:           skuID.String(),
		ParentBatchHash: rec.ParentBatchHash.String(),
		MerkleRoot:      rec.MerkleRoot.String(),
		PackagedAt:      rec.PackagedAt,
	})
}

// handleFraudReport handles POST /api/v1/fraud/report. Fraud
// reports are open to any caller; the evidence digest binds
// the report to the uploaded evidence document.
func (g *Gateway) handleFraudReport(
	w http.ResponseWriter,
	r *http.Request,
) {
	var req FraudReportRequest
	if !g.decode(w, r, &req) {
		return
	}
	if req.SkuID == "" || req.Description == "" {
		writeError(
			w,
			http.StatusBadRequest,
			"bad_request",
			"sku_id and description are required",
		)
		return
	}
	caller, ok := g.parseCaller(w, req.Caller)
	if !ok {
		return
	}
	skuID, err := ledger.ParseDigest(req.SkuID)
	if err != nil {
		writeError(
			w,
			http.StatusBadRequest,
			"bad_request",
			"invalid sku_id: "+err.Error(),
		)
		return
	}

	now := time.Now().Unix()
	evidenceHash := ledger.HashData(
		skuID.Bytes(),
		[]byte(req.Description),
		req.Evidence,
	)

	cid, err := g.pinMetadata(r, map[string]any{
		"sku_id":        req.SkuID,
		"evidence_hash": evidenceHash.String(),
		"report_data":   req,
		"reported_at":   now,
	})
	if err != nil {
		g.writeIpfsError(w, err)
		return
	}

	if err := g.ledger.ReportFraud(
		caller,
		skuID,
		evidenceHash,
		cid,
	); err != nil {
		g.writeLedgerError(w, err)
		return
	}

	g.logger.Info(
		"recorded fraud report",
		"sku_id", skuID.String(),
		"cid", cid,
	)
	writeJSON(w, http.StatusCreated, FraudReportResponse{
		SkuID:        skuID.String(),
		EvidenceHash: evidenceHash.String(),
		IpfsCID:      cid,
		ReportedAt:   now,
	})
}

// handleScoreCommit handles POST /api/v1/score/commit. The
// score payload is hashed and blinded with a fresh nonce; the
// payload itself stays off the ledger until reveal.
func (g *Gateway) handleScoreCommit(
	w http.ResponseWriter,
	r *http.Request,
) {
	var req ScoreCommitRequest
	if !g.decode(w, r, &req) {
		return
	}
	if req.BatchID == "" || req.ModelName == "" {
		writeError(
			w,
			http.StatusBadRequest,
			"bad_request",
			"batch_id and model_name are required",
		)
		return
	}
	caller, ok := g.parseCaller(w, req.Caller)
	if !ok {
		return
	}

	now := time.Now().Unix()
	batchHash := ledger.HashString(fmt.Sprintf(
		"%s-%s",
		req.BatchID,
		req.ModelName,
	))
	revealData, err := json.Marshal(req)
	if err != nil {
		writeError(
			w,
			http.StatusBadRequest,
			"bad_request",
			"unserializable score payload",
		)
		return
	}
	revealHash := ledger.HashData(revealData)
	nonce, err := newNonce()
	if err != nil {
		g.logger.Error(
			"nonce generation failed",
			"error", err,
		)
		writeError(
			w,
			http.StatusInternalServerError,
			"internal",
			"internal server error",
		)
		return
	}
	commitHash := ledger.ComputeAIScoreCommit(
		revealHash,
		nonce,
	)

	if err := g.ledger.CommitAIScore(
		caller,
		batchHash,
		commitHash,
	); err != nil {
		g.writeLedgerError(w, err)
		return
	}

	g.logger.Info(
		"committed AI score",
		"batch_hash", batchHash.String(),
	)
	writeJSON(w, http.StatusCreated, ScoreCommitResponse{
		BatchHash:   batchHash.String(),
		CommitHash:  commitHash.String(),
		RevealHash:  revealHash.String(),
		Nonce:       nonce.String(),
		CommittedAt: now,
	})
}

// handleScoreReveal handles POST /api/v1/score/reveal.
func (g *Gateway) handleScoreReveal(
	w http.ResponseWriter,
	r *http.Request,
) {
	var req ScoreRevealRequest
	if !g.decode(w, r, &req) {
		return
	}
	caller, ok := g.parseCaller(w, req.Caller)
	if !ok {
		return
	}
	batchHash, err := ledger.ParseDigest(req.BatchHash)
	if err != nil {
		writeError(
			w,
			http.StatusBadRequest,
			"bad_request",
			"invalid batch_hash: "+err.Error(),
		)
		return
	}
	revealHash, err := ledger.ParseDigest(req.RevealHash)
	if err != nil {
		writeError(
			w,
			http.StatusBadRequest,
			"bad_request",
			"invalid reveal_hash: "+err.Error(),
		)
		return
	}
	nonce, err := ledger.ParseDigest(req.Nonce)
	if err != nil {
		writeError(
			w,
			http.StatusBadRequest,
			"bad_request",
			"invalid nonce: "+err.Error(),
		)
		return
	}

	now := time.Now().Unix()
	if err := g.ledger.RevealAIScore(
		caller,
		batchHash,
		revealHash,
		nonce,
		req.MetadataRef,
	); err != nil {
		g.writeLedgerError(w, err)
		return
	}

	g.logger.Info(
		"revealed AI score",
		"batch_hash", batchHash.String(),
	)
	writeJSON(w, http.StatusOK, ScoreRevealResponse{
		BatchHash:  batchHash.String(),
		RevealHash: revealHash.String(),
		RevealedAt: now,
	})
}

// handleScoreVerify handles GET /api/v1/score/{batch}.
func (g *Gateway) handleScoreVerify(
	w http.ResponseWriter,
	r *http.Request,
) {
	batchHash, ok := g.parsePathDigest(w, r, "batch")
	if !ok {
		return
	}
	rec, err := g.ledger.GetAIScore(batchHash)
	if err != nil {
		g.writeLedgerError(w, err)
		return
	}
	resp := ScoreVerifyResponse{
		BatchHash: batchHash.String(),
		Committed: !rec.CommitHash.IsZero(),
		Revealed:  !rec.RevealHash.IsZero(),
	}
	if resp.Committed {
		resp.CommitHash = rec.CommitHash.String()
		resp.CommittedAt = rec.CommittedAt
	}
	if resp.Revealed {
		resp.RevealHash = rec.RevealHash.String()
		resp.RevealedAt = rec.RevealedAt
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleEvents handles GET /api/v1/events with seq and limit
// query parameters.
func (g *Gateway) handleEvents(
	w http.ResponseWriter,
	r *http.Request,
) {
	var seq uint64
	if s := r.URL.Query().Get("seq"); s != "" {
		parsed, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			writeError(
				w,
				http.StatusBadRequest,
				"bad_request",
				"invalid seq: "+err.Error(),
			)
			return
		}
		seq = parsed
	}
	limit := defaultEventPageSize
	if s := r.URL.Query().Get("limit"); s != "" {
		parsed, err := strconv.Atoi(s)
		if err != nil || parsed < 1 {
			writeError(
				w,
				http.StatusBadRequest,
				"bad_request",
				"invalid limit",
			)
			return
		}
		limit = min(parsed, maxEventPageSize)
	}

	events, err := g.ledger.Events(seq, limit)
	if err != nil {
		g.writeLedgerError(w, err)
		return
	}
	total, err := g.ledger.EventCount()
	if err != nil {
		g.writeLedgerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, EventsResponse{
		Events: events,
		Total:  total,
	})
}
