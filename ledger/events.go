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

package ledger

import (
	"github.com/agrilink-io/sarson/event"
)

const (
	RoleGrantedEventType           event.EventType = "ledger.role_granted"
	RoleRevokedEventType           event.EventType = "ledger.role_revoked"
	FarmerRegisteredEventType      event.EventType = "ledger.farmer_registered"
	OwnershipTransferEventType     event.EventType = "ledger.ownership_transfer"
	WarehouseStateUpdatedEventType event.EventType = "ledger.warehouse_state_updated"
	LogisticsMilestoneEventType    event.EventType = "ledger.logistics_milestone"
	BatchProcessedEventType        event.EventType = "ledger.batch_processed"
	SKUPackagedEventType           event.EventType = "ledger.sku_packaged"
	FraudDetectedEventType         event.EventType = "ledger.fraud_detected"
	AIScoreCommittedEventType      event.EventType = "ledger.ai_score_committed"
	AIScoreRevealedEventType       event.EventType = "ledger.ai_score_revealed"
)

// RoleGrantedEvent is emitted on every grant, including re-grants of a
// role the identity already holds
type RoleGrantedEvent struct {
	Identity  Identity `json:"identity"`
	Roles     RoleMask `json:"roles"`
	Timestamp int64    `json:"timestamp"`
}

// RoleRevokedEvent is emitted on every revoke, including revokes of a
// role the identity does not hold
type RoleRevokedEvent struct {
	Identity  Identity `json:"identity"`
	Roles     RoleMask `json:"roles"`
	Timestamp int64    `json:"timestamp"`
}

type FarmerRegisteredEvent struct {
	FarmerDID   Digest `json:"farmerDid"`
	CropIDHash  Digest `json:"cropIdHash"`
	Timestamp   int64  `json:"timestamp"`
	MetadataRef string `json:"metadataRef"`
}

// OwnershipTransferEvent records a custody transfer at a point in time.
// Transfers carry no persisted state beyond this event
type OwnershipTransferEvent struct {
	BatchHash   Digest    `json:"batchHash"`
	FarmerDID   Digest    `json:"farmerDid"`
	NewOwner    Identity  `json:"newOwner"`
	Timestamp   int64     `json:"timestamp"`
	Stage       StageCode `json:"stage"`
	MetadataRef string    `json:"metadataRef"`
}

type WarehouseStateUpdatedEvent struct {
	WarehouseID Digest `json:"warehouseId"`
	StateHash   Digest `json:"stateHash"`
	Timestamp   int64  `json:"timestamp"`
	MetadataRef string `json:"metadataRef"`
}

type LogisticsMilestoneEvent struct {
	ShipmentID   Digest `json:"shipmentId"`
	LocationHash Digest `json:"locationHash"`
	IsDelivered  bool   `json:"isDelivered"`
	Timestamp    int64  `json:"timestamp"`
	MetadataRef  string `json:"metadataRef"`
}

// BatchProcessedEvent models a 1-to-N batch split or transformation,
// e.g. raw batch into refined plus byproduct batches
type BatchProcessedEvent struct {
	InputBatchHash    Digest   `json:"inputBatchHash"`
	TransformHash     Digest   `json:"transformHash"`
	OutputBatchHashes []Digest `json:"outputBatchHashes"`
	Timestamp         int64    `json:"timestamp"`
	MetadataRef       string   `json:"metadataRef"`
}

type SKUPackagedEvent struct {
	SkuID           Digest `json:"skuId"`
	ParentBatchHash Digest `json:"parentBatchHash"`
	MerkleRoot      Digest `json:"merkleRoot"`
	Timestamp       int64  `json:"timestamp"`
	MetadataRef     string `json:"metadataRef"`
}

// FraudDetectedEvent is a tamper-evident timestamped accusation. There
// is no on-ledger adjudication
type FraudDetectedEvent struct {
	SkuID        Digest   `json:"skuId"`
	Reporter     Identity `json:"reporter"`
	EvidenceHash Digest   `json:"evidenceHash"`
	Timestamp    int64    `json:"timestamp"`
	EvidenceRef  string   `json:"evidenceRef"`
}

type AIScoreCommittedEvent struct {
	BatchHash  Digest `json:"batchHash"`
	CommitHash Digest `json:"commitHash"`
	Timestamp  int64  `json:"timestamp"`
}

type AIScoreRevealedEvent struct {
	BatchHash   Digest `json:"batchHash"`
	RevealHash  Digest `json:"revealHash"`
	Timestamp   int64  `json:"timestamp"`
	MetadataRef string `json:"metadataRef"`
}
