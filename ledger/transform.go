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
	"github.com/agrilink-io/sarson/database"
)

// ProcessBatch records a 1-to-N batch transformation carrying the full
// list of output digests. The caller must hold PROCESSOR. Transforms are
// event-only
func (l *Ledger) ProcessBatch(
	caller Identity,
	inputBatchHash Digest,
	transformHash Digest,
	outputBatchHashes []Digest,
	metadataRef string,
) error {
	return l.mutate(func(txn *database.Txn, now int64) ([]pendingEvent, error) {
		if err := l.requireRole(txn, caller, RoleProcessor); err != nil {
			return nil, err
		}
		return []pendingEvent{
			{
				Type: BatchProcessedEventType,
				Key:  inputBatchHash,
				Payload: BatchProcessedEvent{
					InputBatchHash:    inputBatchHash,
					TransformHash:     transformHash,
					OutputBatchHashes: outputBatchHashes,
					Timestamp:         now,
					MetadataRef:       metadataRef,
				},
			},
		}, nil
	})
}
