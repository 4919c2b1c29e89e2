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

// Reveal window bounds in seconds. The minimum delay prevents an oracle
// from revealing in the same instant as committing; the maximum forces
// timely finalization of stale commitments
const (
	MinRevealDelay int64 = 3600
	MaxRevealDelay int64 = 86400
)

// AIScoreRecord is the two-phase score record for a batch. Lifecycle:
// absent, committed, revealed (terminal). Each transition is one-way
type AIScoreRecord struct {
	BatchHash   Digest
	CommitHash  Digest
	RevealHash  Digest
	CommittedAt int64
	RevealedAt  int64
}

// ComputeAIScoreCommit is the commitment function: Hash(revealHash ‖
// nonce). It is deterministic so off-chain tooling and ledger-side
// verification agree bit-for-bit
func ComputeAIScoreCommit(revealHash Digest, nonce Digest) Digest {
	return HashData(revealHash.Bytes(), nonce.Bytes())
}

// CommitAIScore stores a hiding, binding commitment to a batch score.
// The caller must hold AI_ORACLE. A batch may be committed exactly once
func (l *Ledger) CommitAIScore(
	caller Identity,
	batchHash Digest,
	commitHash Digest,
) error {
	return l.mutate(func(txn *database.Txn, now int64) ([]pendingEvent, error) {
		if err := l.requireRole(txn, caller, RoleAIOracle); err != nil {
			return nil, err
		}
		existing, err := l.db.GetAIScore(batchHash.Bytes(), txn)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return nil, fmt.Errorf("%w: %s", ErrAlreadyCommitted, batchHash)
		}
		if err := l.db.SetAIScoreCommit(
			batchHash.Bytes(),
			commitHash.Bytes(),
			now,
			txn,
		); err != nil {
			return nil, err
		}
		return []pendingEvent{
			{
				Type: AIScoreCommittedEventType,
				Key:  batchHash,
				Payload: AIScoreCommittedEvent{
					BatchHash:  batchHash,
					CommitHash: commitHash,
					Timestamp:  now,
				},
			},
		}, nil
	})
}

// RevealAIScore opens a prior commitment. The reveal must fall inside
// the window [committedAt+MinRevealDelay, committedAt+MaxRevealDelay]
// (inclusive at both bounds) and Hash(revealHash ‖ nonce) must equal the
// stored commitment. The window is checked against the ledger's own
// clock, not submission order: an early reveal ordered before the delay
// elapses is still rejected
func (l *Ledger) RevealAIScore(
	caller Identity,
	batchHash Digest,
	revealHash Digest,
	nonce Digest,
	metadataRef string,
) error {
	return l.mutate(func(txn *database.Txn, now int64) ([]pendingEvent, error) {
		if err := l.requireRole(txn, caller, RoleAIOracle); err != nil {
			return nil, err
		}
		rec, err := l.db.GetAIScore(batchHash.Bytes(), txn)
		if err != nil {
			return nil, err
		}
		if rec == nil {
			return nil, fmt.Errorf("%w: %s", ErrNotCommitted, batchHash)
		}
		if rec.RevealedAt != 0 {
			return nil, fmt.Errorf("%w: %s", ErrAlreadyRevealed, batchHash)
		}
		if now < rec.CommittedAt+l.config.MinRevealDelay {
			return nil, fmt.Errorf(
				"%w: reveal window opens at %d, now %d",
				ErrRevealTooEarly,
				rec.CommittedAt+l.config.MinRevealDelay,
				now,
			)
		}
		if now > rec.CommittedAt+l.config.MaxRevealDelay {
			return nil, fmt.Errorf(
				"%w: reveal window closed at %d, now %d",
				ErrRevealTooLate,
				rec.CommittedAt+l.config.MaxRevealDelay,
				now,
			)
		}
		commitHash, err := NewDigest(rec.CommitHash)
		if err != nil {
			return nil, err
		}
		if ComputeAIScoreCommit(revealHash, nonce) != commitHash {
			return nil, fmt.Errorf("%w: %s", ErrInvalidReveal, batchHash)
		}
		if err := l.db.SetAIScoreReveal(
			batchHash.Bytes(),
			revealHash.Bytes(),
			now,
			txn,
		); err != nil {
			return nil, err
		}
		return []pendingEvent{
			{
				Type: AIScoreRevealedEventType,
				Key:  batchHash,
				Payload: AIScoreRevealedEvent{
					BatchHash:   batchHash,
					RevealHash:  revealHash,
					Timestamp:   now,
					MetadataRef: metadataRef,
				},
			},
		}, nil
	})
}

// GetAIScore is a pure read. It returns the zero-value record when no
// commitment exists
func (l *Ledger) GetAIScore(batchHash Digest) (AIScoreRecord, error) {
	rec, err := l.db.GetAIScore(batchHash.Bytes(), nil)
	if err != nil {
		return AIScoreRecord{}, err
	}
	if rec == nil {
		return AIScoreRecord{}, nil
	}
	commitHash, err := NewDigest(rec.CommitHash)
	if err != nil {
		return AIScoreRecord{}, err
	}
	ret := AIScoreRecord{
		BatchHash:   batchHash,
		CommitHash:  commitHash,
		CommittedAt: rec.CommittedAt,
		RevealedAt:  rec.RevealedAt,
	}
	if len(rec.RevealHash) > 0 {
		revealHash, err := NewDigest(rec.RevealHash)
		if err != nil {
			return AIScoreRecord{}, err
		}
		ret.RevealHash = revealHash
	}
	return ret, nil
}
