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

// WarehouseState is the latest-state digest for a warehouse. Updates
// fully overwrite prior state; no history is retained in the keyed table
type WarehouseState struct {
	WarehouseID Digest
	StateHash   Digest
	LastUpdated int64
}

// UpdateWarehouseState overwrites the stored state for a warehouse. The
// caller must hold WAREHOUSE. The first call creates the record, later
// calls replace it
func (l *Ledger) UpdateWarehouseState(
	caller Identity,
	warehouseID Digest,
	stateHash Digest,
	metadataRef string,
) error {
	return l.mutate(func(txn *database.Txn, now int64) ([]pendingEvent, error) {
		if err := l.requireRole(txn, caller, RoleWarehouse); err != nil {
			return nil, err
		}
		if err := l.db.SetWarehouse(
			warehouseID.Bytes(),
			stateHash.Bytes(),
			now,
			txn,
		); err != nil {
			return nil, err
		}
		return []pendingEvent{
			{
				Type: WarehouseStateUpdatedEventType,
				Key:  warehouseID,
				Payload: WarehouseStateUpdatedEvent{
					WarehouseID: warehouseID,
					StateHash:   stateHash,
					Timestamp:   now,
					MetadataRef: metadataRef,
				},
			},
		}, nil
	})
}

// BatchUpdateWarehouse applies the same overwrite to every id/hash pair
// using one shared timestamp, emitting one event per entry with an empty
// metadata reference. A length mismatch rejects the whole batch before
// any write
func (l *Ledger) BatchUpdateWarehouse(
	caller Identity,
	warehouseIDs []Digest,
	stateHashes []Digest,
) error {
	if len(warehouseIDs) != len(stateHashes) {
		return fmt.Errorf(
			"%w: %d warehouse ids, %d state hashes",
			ErrLengthMismatch,
			len(warehouseIDs),
			len(stateHashes),
		)
	}
	return l.mutate(func(txn *database.Txn, now int64) ([]pendingEvent, error) {
		if err := l.requireRole(txn, caller, RoleWarehouse); err != nil {
			return nil, err
		}
		events := make([]pendingEvent, 0, len(warehouseIDs))
		for i, warehouseID := range warehouseIDs {
			if err := l.db.SetWarehouse(
				warehouseID.Bytes(),
				stateHashes[i].Bytes(),
				now,
				txn,
			); err != nil {
				return nil, err
			}
			events = append(events, pendingEvent{
				Type: WarehouseStateUpdatedEventType,
				Key:  warehouseID,
				Payload: WarehouseStateUpdatedEvent{
					WarehouseID: warehouseID,
					StateHash:   stateHashes[i],
					Timestamp:   now,
				},
			})
		}
		return events, nil
	})
}

// GetWarehouseState is a pure read. It returns the zero-value state and
// exists=false when the warehouse has never been updated
func (l *Ledger) GetWarehouseState(
	warehouseID Digest,
) (WarehouseState, bool, error) {
	rec, err := l.db.GetWarehouse(warehouseID.Bytes(), nil)
	if err != nil {
		return WarehouseState{}, false, err
	}
	if rec == nil {
		return WarehouseState{}, false, nil
	}
	stateHash, err := NewDigest(rec.StateHash)
	if err != nil {
		return WarehouseState{}, false, err
	}
	return WarehouseState{
		WarehouseID: warehouseID,
		StateHash:   stateHash,
		LastUpdated: rec.LastUpdated,
	}, true, nil
}
