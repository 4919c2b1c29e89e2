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
	"fmt"

	"github.com/agrilink-io/sarson/database"
)

// PackageRecord binds a SKU to its parent batch digest and a Merkle
// commitment over the physical units inside the package. Write-once
type PackageRecord struct {
	SkuID           Digest
	ParentBatchHash Digest
	MerkleRoot      Digest
	PackagedAt      int64
}

// CreateSKU creates the write-once package record. The caller must hold
// PACKAGER. A second creation for the same SKU fails with
// ErrSKUAlreadyExists
func (l *Ledger) CreateSKU(
	caller Identity,
	skuID Digest,
	parentBatchHash Digest,
	merkleRoot Digest,
	metadataRef string,
) error {
	return l.mutate(func(txn *database.Txn, now int64) ([]pendingEvent, error) {
		if err := l.requireRole(txn, caller, RolePackager); err != nil {
			return nil, err
		}
		existing, err := l.db.GetPackage(skuID.Bytes(), txn)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return nil, fmt.Errorf("%w: %s", ErrSKUAlreadyExists, skuID)
		}
		if err := l.db.SetPackage(
			skuID.Bytes(),
			parentBatchHash.Bytes(),
			merkleRoot.Bytes(),
			now,
			txn,
		); err != nil {
			return nil, err
		}
		return []pendingEvent{
			{
				Type: SKUPackagedEventType,
				Key:  skuID,
				Payload: SKUPackagedEvent{
					SkuID:           skuID,
					ParentBatchHash: parentBatchHash,
					MerkleRoot:      merkleRoot,
					Timestamp:       now,
					MetadataRef:     metadataRef,
				},
			},
		}, nil
	})
}

// VerifyPackageOrigin returns the package record for a SKU. Unlike the
// other reads it fails with ErrSKUNotFound when absent, so downstream
// verifiers cannot silently accept a zero-value record as an origin
// proof
func (l *Ledger) VerifyPackageOrigin(skuID Digest) (PackageRecord, error) {
	rec, err := l.db.GetPackage(skuID.Bytes(), nil)
	if err != nil {
		return PackageRecord{}, err
	}
	if rec == nil {
		return PackageRecord{}, fmt.Errorf("%w: %s", ErrSKUNotFound, skuID)
	}
	parentBatchHash, err := NewDigest(rec.ParentBatchHash)
	if err != nil {
		return PackageRecord{}, err
	}
	merkleRoot, err := NewDigest(rec.MerkleRoot)
	if err != nil {
		return PackageRecord{}, err
	}
	return PackageRecord{
		SkuID:           skuID,
		ParentBatchHash: parentBatchHash,
		MerkleRoot:      merkleRoot,
		PackagedAt:      rec.PackagedAt,
	}, nil
}
