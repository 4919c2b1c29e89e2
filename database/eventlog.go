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

package database

import (
	"encoding/json"
	"fmt"
)

// OutboxEvent is one entry of the persistent append-only event outbox.
// Seq is assigned in mutation order and is the external filtering key
// together with the hex-encoded primary digest in Key
type OutboxEvent struct {
	Type      string          `json:"type"`
	Key       string          `json:"key"`
	Payload   json.RawMessage `json:"payload"`
	Seq       uint64          `json:"seq"`
	Timestamp int64           `json:"timestamp"`
}

// AppendEvent writes an outbox entry within the given transaction
func (d *Database) AppendEvent(evt OutboxEvent, txn *Txn) error {
	if txn == nil {
		return errBlobStoreUnavailable
	}
	value, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("failed to encode outbox event: %w", err)
	}
	return d.blob.AppendEvent(txn.Blob(), evt.Seq, value)
}

// GetEvents returns up to limit outbox entries starting at seq
func (d *Database) GetEvents(seq uint64, limit int) ([]OutboxEvent, error) {
	raw, err := d.blob.GetEvents(seq, limit)
	if err != nil {
		return nil, err
	}
	ret := make([]OutboxEvent, 0, len(raw))
	for _, val := range raw {
		var evt OutboxEvent
		if err := json.Unmarshal(val, &evt); err != nil {
			return nil, fmt.Errorf("failed to decode outbox event: %w", err)
		}
		ret = append(ret, evt)
	}
	return ret, nil
}

// NextEventSeq returns the sequence number the next outbox entry will
// receive
func (d *Database) NextEventSeq() (uint64, error) {
	return d.blob.NextEventSeq()
}
