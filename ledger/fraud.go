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

// ReportFraud records a fraud accusation against a SKU. It is
// intentionally open to any caller; the only precondition is that the
// referenced package exists
func (l *Ledger) ReportFraud(
	caller Identity,
	skuID Digest,
	evidenceHash Digest,
	evidenceRef string,
) error {
	return l.mutate(func(txn *database.Txn, now int64) ([]pendingEvent, error) {
		pkg, err := l.db.GetPackage(skuID.Bytes(), txn)
		if err != nil {
			return nil, err
		}
		if pkg == nil {
			return nil, fmt.Errorf("%w: %s", ErrSKUNotFound, skuID)
		}
		return []pendingEvent{
			{
				Type: FraudDetectedEventType,
				Key:  skuID,
				Payload: FraudDetectedEvent{
					SkuID:        skuID,
					Reporter:     caller,
					EvidenceHash: evidenceHash,
					Timestamp:    now,
					EvidenceRef:  evidenceRef,
				},
			},
		}, nil
	})
}
