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

// RecordLogistics records a location/delivery milestone for a shipment.
// The caller must hold LOGISTICS. Milestones are event-only and carry no
// prior-state check
func (l *Ledger) RecordLogistics(
	caller Identity,
	shipmentID Digest,
	locationHash Digest,
	isDelivered bool,
	metadataRef string,
) error {
	return l.mutate(func(txn *database.Txn, now int64) ([]pendingEvent, error) {
		if err := l.requireRole(txn, caller, RoleLogistics); err != nil {
			return nil, err
		}
		return []pendingEvent{
			{
				Type: LogisticsMilestoneEventType,
				Key:  shipmentID,
				Payload: LogisticsMilestoneEvent{
					ShipmentID:   shipmentID,
					LocationHash: locationHash,
					IsDelivered:  isDelivered,
					Timestamp:    now,
					MetadataRef:  metadataRef,
				},
			},
		}, nil
	})
}

// BatchRecordLogistics emits one milestone per index with a shared
// timestamp and no metadata reference. All three arrays must be equal
// length or the whole batch is rejected
func (l *Ledger) BatchRecordLogistics(
	caller Identity,
	shipmentIDs []Digest,
	locationHashes []Digest,
	delivered []bool,
) error {
	if len(shipmentIDs) != len(locationHashes) ||
		len(shipmentIDs) != len(delivered) {
		return fmt.Errorf(
			"%w: %d shipment ids, %d location hashes, %d delivery flags",
			ErrLengthMismatch,
			len(shipmentIDs),
			len(locationHashes),
			len(delivered),
		)
	}
	return l.mutate(func(txn *database.Txn, now int64) ([]pendingEvent, error) {
		if err := l.requireRole(txn, caller, RoleLogistics); err != nil {
			return nil, err
		}
		events := make([]pendingEvent, 0, len(shipmentIDs))
		for i, shipmentID := range shipmentIDs {
			events = append(events, pendingEvent{
				Type: LogisticsMilestoneEventType,
				Key:  shipmentID,
				Payload: LogisticsMilestoneEvent{
					ShipmentID:   shipmentID,
					LocationHash: locationHashes[i],
					IsDelivered:  delivered[i],
					Timestamp:    now,
				},
			})
		}
		return events, nil
	})
}
