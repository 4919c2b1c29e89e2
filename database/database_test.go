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

package database_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/agrilink-io/sarson/database"
)

func newTestDatabase(t *testing.T) *database.Database {
	t.Helper()
	db, err := database.New(&database.Config{
		DataDir: t.TempDir(),
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		db.Close() //nolint:errcheck
	})
	return db
}

func testKey(b byte) []byte {
	key := make([]byte, 32)
	key[0] = b
	return key
}

func TestCapabilityRoundtrip(t *testing.T) {
	db := newTestDatabase(t)
	identity := testKey(1)

	// Absent identity yields nil, not an error
	rec, err := db.GetCapability(identity, nil)
	require.NoError(t, err)
	require.Nil(t, rec)

	require.NoError(t, db.SetCapability(identity, 0b101, nil))
	rec, err = db.GetCapability(identity, nil)
	require.NoError(t, err)
	require.NotNil(t, rec)
	require.Equal(t, uint64(0b101), rec.Roles)

	// Upsert overwrites
	require.NoError(t, db.SetCapability(identity, 0b010, nil))
	rec, err = db.GetCapability(identity, nil)
	require.NoError(t, err)
	require.Equal(t, uint64(0b010), rec.Roles)
}

func TestFarmerRoundtrip(t *testing.T) {
	db := newTestDatabase(t)
	did := testKey(2)
	crop := testKey(3)

	rec, err := db.GetFarmer(did, nil)
	require.NoError(t, err)
	require.Nil(t, rec)

	require.NoError(t, db.SetFarmer(did, crop, 12345, nil))
	rec, err = db.GetFarmer(did, nil)
	require.NoError(t, err)
	require.NotNil(t, rec)
	require.Equal(t, crop, rec.CropIDHash)
	require.Equal(t, int64(12345), rec.RegisteredAt)
}

func TestWarehouseOverwrite(t *testing.T) {
	db := newTestDatabase(t)
	id := testKey(4)

	require.NoError(t, db.SetWarehouse(id, testKey(5), 100, nil))
	require.NoError(t, db.SetWarehouse(id, testKey(6), 200, nil))

	rec, err := db.GetWarehouse(id, nil)
	require.NoError(t, err)
	require.NotNil(t, rec)
	require.Equal(t, testKey(6), rec.StateHash)
	require.Equal(t, int64(200), rec.LastUpdated)
}

func TestPackageRoundtrip(t *testing.T) {
	db := newTestDatabase(t)
	sku := testKey(12)

	rec, err := db.GetPackage(sku, nil)
	require.NoError(t, err)
	require.Nil(t, rec)

	require.NoError(
		t,
		db.SetPackage(sku, testKey(13), testKey(14), 300, nil),
	)
	rec, err = db.GetPackage(sku, nil)
	require.NoError(t, err)
	require.NotNil(t, rec)
	require.Equal(t, testKey(13), rec.ParentBatchHash)
	require.Equal(t, testKey(14), rec.MerkleRoot)
	require.Equal(t, int64(300), rec.PackagedAt)
}

func TestAIScoreCommitReveal(t *testing.T) {
	db := newTestDatabase(t)
	batch := testKey(7)

	require.NoError(
		t,
		db.SetAIScoreCommit(batch, testKey(8), 1000, nil),
	)
	rec, err := db.GetAIScore(batch, nil)
	require.NoError(t, err)
	require.NotNil(t, rec)
	require.Equal(t, testKey(8), rec.CommitHash)
	require.Equal(t, int64(1000), rec.CommittedAt)
	require.Empty(t, rec.RevealHash)

	require.NoError(
		t,
		db.SetAIScoreReveal(batch, testKey(9), 2000, nil),
	)
	rec, err = db.GetAIScore(batch, nil)
	require.NoError(t, err)
	require.Equal(t, testKey(9), rec.RevealHash)
	require.Equal(t, int64(2000), rec.RevealedAt)

	// Revealing a missing commitment fails
	err = db.SetAIScoreReveal(testKey(10), testKey(9), 2000, nil)
	require.Error(t, err)
}

func TestEventOutbox(t *testing.T) {
	db := newTestDatabase(t)

	seq, err := db.NextEventSeq()
	require.NoError(t, err)
	require.Equal(t, uint64(0), seq)

	txn := db.Transaction(true)
	err = txn.Do(func(txn *database.Txn) error {
		for i := range 5 {
			evt := database.OutboxEvent{
				Seq:       uint64(i),
				Type:      "test.event",
				Key:       "key",
				Timestamp: int64(i * 100),
				Payload:   json.RawMessage(fmt.Sprintf(`{"n":%d}`, i)),
			}
			if err := db.AppendEvent(evt, txn); err != nil {
				return err
			}
		}
		return nil
	})
	require.NoError(t, err)

	seq, err = db.NextEventSeq()
	require.NoError(t, err)
	require.Equal(t, uint64(5), seq)

	events, err := db.GetEvents(0, 10)
	require.NoError(t, err)
	require.Len(t, events, 5)
	for i, evt := range events {
		require.Equal(t, uint64(i), evt.Seq)
	}

	// Page from an offset with a limit
	events, err = db.GetEvents(2, 2)
	require.NoError(t, err)
	require.Len(t, events, 2)
	require.Equal(t, uint64(2), events[0].Seq)
	require.Equal(t, uint64(3), events[1].Seq)

	// Past the end
	events, err = db.GetEvents(100, 10)
	require.NoError(t, err)
	require.Empty(t, events)
}

func TestTransactionRollbackOnError(t *testing.T) {
	db := newTestDatabase(t)
	identity := testKey(11)

	errBoom := errors.New("boom")
	txn := db.Transaction(true)
	err := txn.Do(func(txn *database.Txn) error {
		if err := db.SetCapability(identity, 7, txn); err != nil {
			return err
		}
		return errBoom
	})
	require.ErrorIs(t, err, errBoom)

	// The write inside the failed transaction is not visible
	rec, err := db.GetCapability(identity, nil)
	require.NoError(t, err)
	require.Nil(t, rec)
}

func TestCommitTimestampRoundtrip(t *testing.T) {
	db := newTestDatabase(t)

	txn := db.Transaction(true)
	err := txn.Do(func(txn *database.Txn) error {
		return db.SetCommitTimestamp(txn, 424242)
	})
	require.NoError(t, err)

	ts, err := db.Metadata().GetCommitTimestamp()
	require.NoError(t, err)
	require.Equal(t, int64(424242), ts)

	blobTs, err := db.Blob().GetCommitTimestamp()
	require.NoError(t, err)
	require.Equal(t, int64(424242), blobTs)
}
