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

// StageCode classifies custody transfers for off-chain indexing. No
// ledger-side state machine enforces stage ordering; sequencing is
// interpreted off-chain
type StageCode uint8

const (
	StageFPOPurchase StageCode = 1
	StageWarehouse   StageCode = 2
	StageProcessor   StageCode = 3
	StageRetail      StageCode = 4
)

func (s StageCode) String() string {
	switch s {
	case StageFPOPurchase:
		return "FPO_PURCHASE"
	case StageWarehouse:
		return "WAREHOUSE"
	case StageProcessor:
		return "PROCESSOR"
	case StageRetail:
		return "RETAIL"
	default:
		return fmt.Sprintf("UNKNOWN(%d)", uint8(s))
	}
}

// FPOPurchase records a custody transfer of a batch from a farmer to the
// calling FPO. The caller must hold FPO and the farmer must be
// registered. Transfers are event-only: repeating the same call succeeds
// again with a new timestamp
func (l *Ledger) FPOPurchase(
	caller Identity,
	batchHash Digest,
	farmerDID Digest,
	metadataRef string,
) error {
	return l.mutate(func(txn *database.Txn, now int64) ([]pendingEvent, error) {
		if err := l.requireRole(txn, caller, RoleFPO); err != nil {
			return nil, err
		}
		farmer, err := l.db.GetFarmer(farmerDID.Bytes(), txn)
		if err != nil {
			return nil, err
		}
		if farmer == nil {
			return nil, fmt.Errorf("%w: %s", ErrFarmerNotRegistered, farmerDID)
		}
		return []pendingEvent{
			{
				Type: OwnershipTransferEventType,
				Key:  batchHash,
				Payload: OwnershipTransferEvent{
					BatchHash:   batchHash,
					FarmerDID:   farmerDID,
					NewOwner:    caller,
					Timestamp:   now,
					Stage:       StageFPOPurchase,
					MetadataRef: metadataRef,
				},
			},
		}, nil
	})
}
