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

// FarmerRecord binds a farmer DID to a crop-identity digest. Records are
// write-once: once created they never change
type FarmerRecord struct {
	FarmerDID    Digest
	CropIDHash   Digest
	RegisteredAt int64
}

// RegisterFarmer creates the write-once farmer record. The caller must
// hold FARMER. A second registration for the same DID fails with
// ErrAlreadyRegistered
func (l *Ledger) RegisterFarmer(
	caller Identity,
	farmerDID Digest,
	cropIDHash Digest,
	metadataRef string,
) error {
	return l.mutate(func(txn *database.Txn, now int64) ([]pendingEvent, error) {
		if err := l.requireRole(txn, caller, RoleFarmer); err != nil {
			return nil, err
		}
		existing, err := l.db.GetFarmer(farmerDID.Bytes(), txn)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return nil, fmt.Errorf("%w: %s", ErrAlreadyRegistered, farmerDID)
		}
		if err := l.db.SetFarmer(
			farmerDID.Bytes(),
			cropIDHash.Bytes(),
			now,
			txn,
		); err != nil {
			return nil, err
		}
		return []pendingEvent{
			{
				Type: FarmerRegisteredEventType,
				Key:  farmerDID,
				Payload: FarmerRegisteredEvent{
					FarmerDID:   farmerDID,
					CropIDHash:  cropIDHash,
					Timestamp:   now,
					MetadataRef: metadataRef,
				},
			},
		}, nil
	})
}

// VerifyFarmer is a pure read. It returns the zero-value record and
// exists=false when no record is present
func (l *Ledger) VerifyFarmer(farmerDID Digest) (FarmerRecord, bool, error) {
	rec, err := l.db.GetFarmer(farmerDID.Bytes(), nil)
	if err != nil {
		return FarmerRecord{}, false, err
	}
	if rec == nil {
		return FarmerRecord{}, false, nil
	}
	cropIDHash, err := NewDigest(rec.CropIDHash)
	if err != nil {
		return FarmerRecord{}, false, err
	}
	return FarmerRecord{
		FarmerDID:    farmerDID,
		CropIDHash:   cropIDHash,
		RegisteredAt: rec.RegisteredAt,
	}, true, nil
}
