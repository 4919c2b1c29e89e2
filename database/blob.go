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
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	badger "github.com/dgraph-io/badger/v4"
)

var (
	eventKeyPrefix          = []byte("event/")
	blobCommitTimestampKey  = []byte("commit_timestamp")
	errBlobStoreUnavailable = errors.New("blob store unavailable")
)

// BlobStore is the badger-backed append-only store for the event outbox.
// Outbox entries are keyed by big-endian sequence number under a shared
// prefix, so iteration order is mutation order
type BlobStore struct {
	db      *badger.DB
	logger  *slog.Logger
	dataDir string
}

// NewBlobStore creates a badger blob store. Uses an in-memory database
// if dataDir is empty
func NewBlobStore(
	dataDir string,
	logger *slog.Logger,
) (*BlobStore, error) {
	b := &BlobStore{
		dataDir: dataDir,
		logger:  logger,
	}
	if b.logger == nil {
		// Create logger to throw away logs
		// We do this so we don't have to add guards around every log operation
		b.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	var blobDb *badger.DB
	var err error
	if dataDir == "" {
		badgerOpts := badger.DefaultOptions("").
			WithLogger(newBadgerLogger(b.logger)).
			// The default INFO logging is a bit verbose
			WithLoggingLevel(badger.WARNING).
			WithInMemory(true)
		blobDb, err = badger.Open(badgerOpts)
		if err != nil {
			return nil, err
		}
	} else {
		// Make sure that we can read data dir, and create if it doesn't exist
		if _, err := os.Stat(dataDir); err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("failed to read data dir: %w", err)
			}
			if err := os.MkdirAll(dataDir, 0o755); err != nil {
				return nil, fmt.Errorf("failed to create data dir: %w", err)
			}
		}
		blobDir := filepath.Join(
			dataDir,
			"blob",
		)
		badgerOpts := badger.DefaultOptions(blobDir).
			WithLogger(newBadgerLogger(b.logger)).
			WithLoggingLevel(badger.WARNING)
		blobDb, err = badger.Open(badgerOpts)
		if err != nil {
			return nil, err
		}
	}
	b.db = blobDb
	return b, nil
}

// NewTransaction starts a new badger transaction
func (b *BlobStore) NewTransaction(readWrite bool) *badger.Txn {
	return b.db.NewTransaction(readWrite)
}

func (b *BlobStore) Close() error {
	return b.db.Close()
}

func eventKey(seq uint64) []byte {
	key := make([]byte, 0, len(eventKeyPrefix)+8)
	key = append(key, eventKeyPrefix...)
	key = binary.BigEndian.AppendUint64(key, seq)
	return key
}

// AppendEvent writes an outbox entry at the given sequence number within
// the provided transaction
func (b *BlobStore) AppendEvent(txn *badger.Txn, seq uint64, value []byte) error {
	if txn == nil {
		return errBlobStoreUnavailable
	}
	return txn.Set(eventKey(seq), value)
}

// GetEvents returns up to limit raw outbox entries starting at seq
func (b *BlobStore) GetEvents(seq uint64, limit int) ([][]byte, error) {
	ret := [][]byte{}
	err := b.db.View(func(txn *badger.Txn) error {
		iterOpts := badger.DefaultIteratorOptions
		iterOpts.Prefix = eventKeyPrefix
		it := txn.NewIterator(iterOpts)
		defer it.Close()
		for it.Seek(eventKey(seq)); it.ValidForPrefix(eventKeyPrefix); it.Next() {
			if limit > 0 && len(ret) >= limit {
				break
			}
			val, err := it.Item().ValueCopy(nil)
			if err != nil {
				return err
			}
			ret = append(ret, val)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ret, nil
}

// NextEventSeq returns the sequence number the next outbox entry will
// receive, determined from the highest existing key
func (b *BlobStore) NextEventSeq() (uint64, error) {
	var next uint64
	err := b.db.View(func(txn *badger.Txn) error {
		iterOpts := badger.DefaultIteratorOptions
		iterOpts.Prefix = eventKeyPrefix
		iterOpts.Reverse = true
		it := txn.NewIterator(iterOpts)
		defer it.Close()
		// Seek past the last possible event key and step back into the prefix
		seekKey := append([]byte{}, eventKeyPrefix...)
		seekKey = append(seekKey, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff)
		for it.Seek(seekKey); it.ValidForPrefix(eventKeyPrefix); it.Next() {
			key := it.Item().Key()
			if len(key) != len(eventKeyPrefix)+8 {
				return fmt.Errorf("malformed event key: %x", key)
			}
			next = binary.BigEndian.Uint64(key[len(eventKeyPrefix):]) + 1
			break
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return next, nil
}

func (b *BlobStore) GetCommitTimestamp() (int64, error) {
	var ret int64
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(blobCommitTimestampKey)
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return nil
			}
			return err
		}
		return item.Value(func(val []byte) error {
			if len(val) != 8 {
				return fmt.Errorf("malformed commit timestamp: %x", val)
			}
			ret = int64(binary.BigEndian.Uint64(val)) //nolint:gosec
			return nil
		})
	})
	if err != nil {
		return 0, err
	}
	return ret, nil
}

func (b *BlobStore) SetCommitTimestamp(txn *badger.Txn, timestamp int64) error {
	if txn == nil {
		return errBlobStoreUnavailable
	}
	val := binary.BigEndian.AppendUint64(nil, uint64(timestamp)) //nolint:gosec
	return txn.Set(blobCommitTimestampKey, val)
}

// badgerLogger is a wrapper type to give our logger the expected interface
type badgerLogger struct {
	*slog.Logger
}

func newBadgerLogger(logger *slog.Logger) *badgerLogger {
	return &badgerLogger{Logger: logger}
}

func (b *badgerLogger) Infof(msg string, args ...any) {
	b.Info(fmt.Sprintf(msg, args...))
}

func (b *badgerLogger) Warningf(msg string, args ...any) {
	b.Warn(fmt.Sprintf(msg, args...))
}

func (b *badgerLogger) Debugf(msg string, args ...any) {
	b.Debug(fmt.Sprintf(msg, args...))
}

func (b *badgerLogger) Errorf(msg string, args ...any) {
	b.Error(fmt.Sprintf(msg, args...))
}
