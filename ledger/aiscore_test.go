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

package ledger_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/agrilink-io/sarson/ledger"
)

func TestComputeAIScoreCommitDeterministic(t *testing.T) {
	revealHash := ledger.HashString("score-payload")
	nonce := ledger.HashString("nonce")
	c1 := ledger.ComputeAIScoreCommit(revealHash, nonce)
	c2 := ledger.ComputeAIScoreCommit(revealHash, nonce)
	require.Equal(t, c1, c2)
	require.NotEqual(
		t,
		c1,
		ledger.ComputeAIScoreCommit(revealHash, ledger.HashString("other")),
	)
	require.NotEqual(
		t,
		c1,
		ledger.ComputeAIScoreCommit(ledger.HashString("other"), nonce),
	)
}

type commitFixture struct {
	ledger     *ledger.Ledger
	clock      *manualClock
	oracle     ledger.Identity
	batchHash  ledger.Digest
	revealHash ledger.Digest
	nonce      ledger.Digest
}

func newCommitFixture(t *testing.T) *commitFixture {
	t.Helper()
	clock := &manualClock{now: 1700000000}
	l, admin := newTestLedger(t, clock)
	f := &commitFixture{
		ledger:     l,
		clock:      clock,
		oracle:     admin,
		batchHash:  ledger.HashString("batch-under-score"),
		revealHash: ledger.HashString("score-payload"),
		nonce:      ledger.HashString("blinding-nonce"),
	}
	commitHash := ledger.ComputeAIScoreCommit(
		f.revealHash,
		f.nonce,
	)
	require.NoError(
		t,
		l.CommitAIScore(f.oracle, f.batchHash, commitHash),
	)
	return f
}

func (f *commitFixture) reveal() error {
	return f.ledger.RevealAIScore(
		f.oracle,
		f.batchHash,
		f.revealHash,
		f.nonce,
		"",
	)
}

func TestCommitAIScoreWriteOnce(t *testing.T) {
	f := newCommitFixture(t)
	err := f.ledger.CommitAIScore(
		f.oracle,
		f.batchHash,
		ledger.HashString("another-commitment"),
	)
	require.ErrorIs(t, err, ledger.ErrAlreadyCommitted)
}

func TestCommitAIScoreRequiresOracle(t *testing.T) {
	l, _ := newTestLedger(t, nil)
	mallory := ledger.HashString("mallory")
	err := l.CommitAIScore(
		mallory,
		ledger.HashString("batch"),
		ledger.HashString("commit"),
	)
	require.ErrorIs(t, err, ledger.ErrUnauthorized)
}

func TestRevealWithoutCommit(t *testing.T) {
	l, admin := newTestLedger(t, nil)
	err := l.RevealAIScore(
		admin,
		ledger.HashString("never-committed"),
		ledger.HashString("reveal"),
		ledger.HashString("nonce"),
		"",
	)
	require.ErrorIs(t, err, ledger.ErrNotCommitted)
}

func TestRevealWindowBoundaries(t *testing.T) {
	committedAt := int64(1700000000)

	// One tick before the window opens
	f := newCommitFixture(t)
	f.clock.now = committedAt + ledger.MinRevealDelay - 1
	require.ErrorIs(t, f.reveal(), ledger.ErrRevealTooEarly)

	// The window bounds are inclusive
	f.clock.now = committedAt + ledger.MinRevealDelay
	require.NoError(t, f.reveal())

	f2 := newCommitFixture(t)
	f2.clock.now = committedAt + ledger.MaxRevealDelay
	require.NoError(t, f2.reveal())

	// One tick past the close
	f3 := newCommitFixture(t)
	f3.clock.now = committedAt + ledger.MaxRevealDelay + 1
	require.ErrorIs(t, f3.reveal(), ledger.ErrRevealTooLate)
}

func TestRevealTooEarlyLeavesCommitmentOpen(t *testing.T) {
	committedAt := int64(1700000000)
	f := newCommitFixture(t)
	f.clock.now = committedAt + 1
	require.ErrorIs(t, f.reveal(), ledger.ErrRevealTooEarly)

	// A failed reveal does not consume the commitment
	f.clock.now = committedAt + ledger.MinRevealDelay
	require.NoError(t, f.reveal())
}

func TestRevealInvalidOpening(t *testing.T) {
	committedAt := int64(1700000000)
	f := newCommitFixture(t)
	f.clock.now = committedAt + ledger.MinRevealDelay

	// Wrong nonce
	err := f.ledger.RevealAIScore(
		f.oracle,
		f.batchHash,
		f.revealHash,
		ledger.HashString("wrong-nonce"),
		"",
	)
	require.ErrorIs(t, err, ledger.ErrInvalidReveal)

	// Wrong reveal hash
	err = f.ledger.RevealAIScore(
		f.oracle,
		f.batchHash,
		ledger.HashString("forged-payload"),
		f.nonce,
		"",
	)
	require.ErrorIs(t, err, ledger.ErrInvalidReveal)

	// The correct opening still works afterwards
	require.NoError(t, f.reveal())
}

func TestRevealOnlyOnce(t *testing.T) {
	committedAt := int64(1700000000)
	f := newCommitFixture(t)
	f.clock.now = committedAt + ledger.MinRevealDelay
	require.NoError(t, f.reveal())
	require.ErrorIs(t, f.reveal(), ledger.ErrAlreadyRevealed)
}

func TestGetAIScoreLifecycle(t *testing.T) {
	committedAt := int64(1700000000)
	f := newCommitFixture(t)

	rec, err := f.ledger.GetAIScore(f.batchHash)
	require.NoError(t, err)
	require.False(t, rec.CommitHash.IsZero())
	require.True(t, rec.RevealHash.IsZero())
	require.Equal(t, committedAt, rec.CommittedAt)
	require.Zero(t, rec.RevealedAt)

	f.clock.now = committedAt + ledger.MinRevealDelay
	require.NoError(t, f.reveal())

	rec, err = f.ledger.GetAIScore(f.batchHash)
	require.NoError(t, err)
	require.Equal(t, f.revealHash, rec.RevealHash)
	require.Equal(t, f.clock.now, rec.RevealedAt)

	// Unknown batch yields the zero record
	rec, err = f.ledger.GetAIScore(
		ledger.HashString("unknown-batch"),
	)
	require.NoError(t, err)
	require.True(t, rec.CommitHash.IsZero())
}
