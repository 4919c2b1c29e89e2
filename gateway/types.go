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
	"encoding/json"

	"github.com/agrilink-io/sarson/database"
)

// ErrorResponse is the JSON error body returned for failed
// requests.
type ErrorResponse struct {
	Error      string `json:"error"`
	Message    string `json:"message"`
	StatusCode int    `json:"status_code"`
}

// RootResponse is returned by GET /.
type RootResponse struct {
	Service string `json:"service"`
	Version string `json:"version"`
}

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	IsHealthy bool `json:"is_healthy"`
}

// GPSCoordinates is a WGS84 position attached to registration
// and logistics metadata.
type GPSCoordinates struct {
	Altitude  *float64 `json:"altitude,omitempty"`
	Latitude  float64  `json:"latitude"`
	Longitude float64  `json:"longitude"`
}

// FarmerRegisterRequest is the body of POST
// /api/v1/farmer/register.
type FarmerRegisterRequest struct {
	GPSCoordinates      *GPSCoordinates `json:"gps_coordinates,omitempty"`
	Caller              string          `json:"caller"`
	FarmerName          string          `json:"farmer_name"`
	CropType            string          `json:"crop_type"`
	Location            string          `json:"location"`
	KYCDocumentURL      string          `json:"kyc_document_url,omitempty"`
	SatelliteImageryURL string          `json:"satellite_imagery_url,omitempty"`
	SoilTestReport      string          `json:"soil_test_report,omitempty"`
	PhoneNumber         string          `json:"phone_number,omitempty"`
	Email               string          `json:"email,omitempty"`
	LandOwnershipDocs   []string        `json:"land_ownership_docs,omitempty"`
	LandAreaHectares    float64         `json:"land_area_hectares"`
}

// FarmerRegisterResponse echoes the derived on-ledger digests
// for a new farmer.
type FarmerRegisterResponse struct {
	DidURI       string `json:"did_uri"`
	FarmerDID    string `json:"farmer_did"`
	CropIDHash   string `json:"crop_id_hash"`
	IpfsCID      string `json:"ipfs_cid"`
	RegisteredAt int64  `json:"registered_at"`
}

// FarmerVerifyResponse is returned by GET /api/v1/farmer/{did}.
type FarmerVerifyResponse struct {
	FarmerDID    string `json:"farmer_did"`
	CropIDHash   string `json:"crop_id_hash,omitempty"`
	RegisteredAt int64  `json:"registered_at,omitempty"`
	Registered   bool   `json:"registered"`
}

// FPOPurchaseRequest is the body of POST /api/v1/fpo/purchase.
type FPOPurchaseRequest struct {
	Caller             string   `json:"caller"`
	FarmerDID          string   `json:"farmer_did"`
	FPOName            string   `json:"fpo_name"`
	BatchID            string   `json:"batch_id"`
	QualityGrade       string   `json:"quality_grade"`
	QualityReportURL   string   `json:"quality_report_url,omitempty"`
	WeightSlipURL      string   `json:"weight_slip_url,omitempty"`
	PaymentReference   string   `json:"payment_reference,omitempty"`
	Photos             []string `json:"photos,omitempty"`
	QuantityKg         float64  `json:"quantity_kg"`
	PricePerKg         float64  `json:"price_per_kg"`
	MoistureContent    float64  `json:"moisture_content,omitempty"`
	ImpurityPercentage float64  `json:"impurity_percentage,omitempty"`
}

// FPOPurchaseResponse is returned by POST /api/v1/fpo/purchase.
type FPOPurchaseResponse struct {
	BatchHash   string `json:"batch_hash"`
	IpfsCID     string `json:"ipfs_cid"`
	PurchasedAt int64  `json:"purchased_at"`
}

// PestInspection captures a warehouse pest-control check.
type PestInspection struct {
	PestType         string `json:"pest_type,omitempty"`
	TreatmentApplied string `json:"treatment_applied,omitempty"`
	InspectedAt      int64  `json:"inspected_at"`
	PestFound        bool   `json:"pest_found"`
}

// WarehouseUpdateRequest is the body of POST
// /api/v1/warehouse/update.
type WarehouseUpdateRequest struct {
	PestInspection     *PestInspection `json:"pest_inspection,omitempty"`
	Caller             string          `json:"caller"`
	WarehouseID        string          `json:"warehouse_id"`
	BatchID            string          `json:"batch_id"`
	StorageLocation    string          `json:"storage_location"`
	IotLogsURL         string          `json:"iot_logs_url,omitempty"`
	InspectionReports  []string        `json:"inspection_reports,omitempty"`
	TemperatureCelsius float64         `json:"temperature_celsius,omitempty"`
	HumidityPercentage float64         `json:"humidity_percentage,omitempty"`
	CO2LevelPPM        float64         `json:"co2_level_ppm,omitempty"`
	QualityDegradation float64         `json:"quality_degradation,omitempty"`
}

// WarehouseUpdateResponse is returned by POST
// /api/v1/warehouse/update.
type WarehouseUpdateResponse struct {
	WarehouseID string `json:"warehouse_id"`
	StateHash   string `json:"state_hash"`
	IpfsCID     string `json:"ipfs_cid"`
	UpdatedAt   int64  `json:"updated_at"`
}

// WarehouseVerifyResponse is returned by GET
// /api/v1/warehouse/{id}.
type WarehouseVerifyResponse struct {
	WarehouseID string `json:"warehouse_id"`
	StateHash   string `json:"state_hash,omitempty"`
	LastUpdated int64  `json:"last_updated,omitempty"`
	Known       bool   `json:"known"`
}

// ShockEvent is an accelerometer reading recorded during
// transport.
type ShockEvent struct {
	Location  *GPSCoordinates `json:"location,omitempty"`
	Timestamp int64           `json:"timestamp"`
	GForce    float64         `json:"g_force"`
}

// LogisticsMilestoneRequest is the body of POST
// /api/v1/logistics/milestone.
type LogisticsMilestoneRequest struct {
	Caller           string         `json:"caller"`
	ShipmentID       string         `json:"shipment_id"`
	CurrentLocation  string         `json:"current_location"`
	MilestoneType    string         `json:"milestone_type"`
	CarrierName      string         `json:"carrier_name"`
	VehicleID        string         `json:"vehicle_id"`
	DriverName       string         `json:"driver_name,omitempty"`
	GpsHistoryURL    string         `json:"gps_history_url,omitempty"`
	TemperatureLog   string         `json:"temperature_log,omitempty"`
	ShockEvents      []ShockEvent   `json:"shock_events,omitempty"`
	GPSCoordinates   GPSCoordinates `json:"gps_coordinates"`
	EstimatedArrival int64          `json:"estimated_arrival,omitempty"`
	IsDelivered      bool           `json:"is_delivered"`
}

// LogisticsMilestoneResponse is returned by POST
// /api/v1/logistics/milestone.
type LogisticsMilestoneResponse struct {
	ShipmentID   string `json:"shipment_id"`
	LocationHash string `json:"location_hash"`
	IpfsCID      string `json:"ipfs_cid"`
	RecordedAt   int64  `json:"recorded_at"`
}

// ProcessingParameters describe how a processing run was
// executed.
type ProcessingParameters struct {
	Method             string  `json:"method"`
	TemperatureCelsius float64 `json:"temperature_celsius,omitempty"`
	PressureBar        float64 `json:"pressure_bar,omitempty"`
	DurationMinutes    uint32  `json:"duration_minutes,omitempty"`
}

// ProcessBatchRequest is the body of POST
// /api/v1/process/batch.
type ProcessBatchRequest struct {
	ProcessingParameters *ProcessingParameters `json:"processing_parameters,omitempty"`
	Caller               string                `json:"caller"`
	InputBatchID         string                `json:"input_batch_id"`
	ProcessorName        string                `json:"processor_name"`
	ProcessingType       string                `json:"processing_type"`
	LabResultsURL        []string              `json:"lab_results_url,omitempty"`
	Certifications       []string              `json:"certifications,omitempty"`
	OutputBatchIDs       []string              `json:"output_batch_ids"`
	InputQuantityKg      float64               `json:"input_quantity_kg"`
	OutputQuantityKg     float64               `json:"output_quantity_kg"`
	YieldPercentage      float64               `json:"yield_percentage"`
	WastePercentage      float64               `json:"waste_percentage"`
}

// ProcessBatchResponse is returned by POST
// /api/v1/process/batch.
type ProcessBatchResponse struct {
	InputBatchHash    string   `json:"input_batch_hash"`
	TransformHash     string   `json:"transform_hash"`
	IpfsCID           string   `json:"ipfs_cid"`
	OutputBatchHashes []string `json:"output_batch_hashes"`
	ProcessedAt       int64    `json:"processed_at"`
}

// CreateSKURequest is the body of POST /api/v1/sku/create.
type CreateSKURequest struct {
	Caller                   string   `json:"caller"`
	SkuID                    string   `json:"sku_id"`
	ParentBatchID            string   `json:"parent_batch_id"`
	ProductName              string   `json:"product_name"`
	Brand                    string   `json:"brand"`
	PackageType              string   `json:"package_type"`
	Barcode                  string   `json:"barcode,omitempty"`
	QRCode                   string   `json:"qr_code,omitempty"`
	NutritionalInfoURL       string   `json:"nutritional_info_url,omitempty"`
	RegulatoryCertifications []string `json:"regulatory_certifications,omitempty"`
	LabelImages              []string `json:"label_images,omitempty"`
	MerkleProof              []string `json:"merkle_proof,omitempty"`
	UnitWeightGrams          float64  `json:"unit_weight_grams"`
	UnitsPackaged            uint32   `json:"units_packaged"`
	ExpiryDate               int64    `json:"expiry_date,omitempty"`
	BestBeforeDate           int64    `json:"best_before_date,omitempty"`
}

// CreateSKUResponse is returned by POST /api/v1/sku/create.
type CreateSKUResponse struct {
	SkuID           string `json:"sku_id"`
	ParentBatchHash string `json:"parent_batch_hash"`
	MerkleRoot      string `json:"merkle_root"`
	IpfsCID         string `json:"ipfs_cid"`
	PackagedAt      int64  `json:"packaged_at"`
}

// SKUVerifyResponse is returned by GET /api/v1/sku/{id}.
type SKUVerifyResponse struct {
	SkuID           string `json:"sku_id"`
	ParentBatchHash string `json:"parent_batch_hash"`
	MerkleRoot      string `json:"merkle_root"`
	PackagedAt      int64  `json:"packaged_at"`
}

// FraudReportRequest is the body of POST /api/v1/fraud/report.
type FraudReportRequest struct {
	Caller      string          `json:"caller"`
	SkuID       string          `json:"sku_id"`
	Description string          `json:"description"`
	Location    string          `json:"location,omitempty"`
	Evidence    json.RawMessage `json:"evidence,omitempty"`
	PhotoURLs   []string        `json:"photo_urls,omitempty"`
}

// FraudReportResponse is returned by POST /api/v1/fraud/report.
type FraudReportResponse struct {
	SkuID        string `json:"sku_id"`
	EvidenceHash string `json:"evidence_hash"`
	IpfsCID      string `json:"ipfs_cid"`
	ReportedAt   int64  `json:"reported_at"`
}

// ScoreCommitRequest is the body of POST /api/v1/score/commit.
// The full score payload stays off-chain until reveal; only its
// blinded commitment goes on the ledger.
type ScoreCommitRequest struct {
	Features            json.RawMessage `json:"features,omitempty"`
	Predictions         json.RawMessage `json:"predictions,omitempty"`
	Caller              string          `json:"caller"`
	BatchID             string          `json:"batch_id"`
	ModelName           string          `json:"model_name"`
	ModelVersion        string          `json:"model_version"`
	ModelArtifactsURL   string          `json:"model_artifacts_url,omitempty"`
	TrainingDataHash    string          `json:"training_data_hash,omitempty"`
	QualityScore        float64         `json:"quality_score"`
	SustainabilityScore float64         `json:"sustainability_score"`
	TraceabilityScore   float64         `json:"traceability_score"`
	Confidence          float64         `json:"confidence"`
}

// ScoreCommitResponse is returned by POST /api/v1/score/commit.
// The caller must retain the nonce to reveal the score later.
type ScoreCommitResponse struct {
	BatchHash   string `json:"batch_hash"`
	CommitHash  string `json:"commit_hash"`
	RevealHash  string `json:"reveal_hash"`
	Nonce       string `json:"nonce"`
	CommittedAt int64  `json:"committed_at"`
}

// ScoreRevealRequest is the body of POST /api/v1/score/reveal.
type ScoreRevealRequest struct {
	Caller      string `json:"caller"`
	BatchHash   string `json:"batch_hash"`
	RevealHash  string `json:"reveal_hash"`
	Nonce       string `json:"nonce"`
	MetadataRef string `json:"metadata_ref,omitempty"`
}

// ScoreRevealResponse is returned by POST /api/v1/score/reveal.
type ScoreRevealResponse struct {
	BatchHash  string `json:"batch_hash"`
	RevealHash string `json:"reveal_hash"`
	RevealedAt int64  `json:"revealed_at"`
}

// ScoreVerifyResponse is returned by GET /api/v1/score/{batch}.
type ScoreVerifyResponse struct {
	BatchHash   string `json:"batch_hash"`
	CommitHash  string `json:"commit_hash,omitempty"`
	RevealHash  string `json:"reveal_hash,omitempty"`
	CommittedAt int64  `json:"committed_at,omitempty"`
	RevealedAt  int64  `json:"revealed_at,omitempty"`
	Committed   bool   `json:"committed"`
	Revealed    bool   `json:"revealed"`
}

// EventsResponse is returned by GET /api/v1/events.
type EventsResponse struct {
	Events []database.OutboxEvent `json:"events"`
	Total  uint64                 `json:"total"`
}
