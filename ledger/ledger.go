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
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/agrilink-io/sarson/database"
	"github.com/agrilink-io/sarson/event"
)

// Ledger is the serialized provenance ledger. Every mutating call is
// applied atomically and in a strict total order: the mutation, its
// outbox events, and the commit timestamp are written in a single
// database transaction, and in-memory subscribers are notified only
// after the transaction is durable
type Ledger struct {
	config  LedgerConfig
	db      *database.Database
	bus     *event.EventBus
	clock   Clock
	logger  *slog.Logger
	metrics *ledgerMetrics
	mutex   sync.Mutex
	nextSeq uint64
}

type LedgerConfig struct {
	Database     *database.Database
	EventBus     *event.EventBus
	Logger       *slog.Logger
	Clock        Clock
	PromRegistry prometheus.Registerer
	// Genesis is the initializing identity. It is granted the full role
	// bitmask when the capability table is created
	Genesis Identity
	// MinRevealDelay/MaxRevealDelay override the protocol reveal window
	// (seconds). Zero means use the protocol default
	MinRevealDelay int64
	MaxRevealDelay int64
}

type pendingEvent struct {
	Payload any
	Type    event.EventType
	Key     Digest
}

// NewLedger creates a ledger over the given database and event bus and
// performs genesis: if the genesis identity holds no roles yet, it is
// granted the full bitmask
func NewLedger(cfg LedgerConfig) (*Ledger, error) {
	if cfg.Database == nil {
		return nil, errors.New("no database provided")
	}
	if cfg.EventBus == nil {
		return nil, errors.New("no event bus provided")
	}
	if cfg.Clock == nil {
		cfg.Clock = NewWallClock()
	}
	if cfg.Logger == nil {
		// Create logger to throw away logs
		// We do this so we don't have to add guards around every log operation
		cfg.Logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	if cfg.Genesis.IsZero() {
		return nil, errors.New("no genesis identity provided")
	}
	if cfg.MinRevealDelay == 0 {
		cfg.MinRevealDelay = MinRevealDelay
	}
	if cfg.MaxRevealDelay == 0 {
		cfg.MaxRevealDelay = MaxRevealDelay
	}
	if cfg.MinRevealDelay > cfg.MaxRevealDelay {
		return nil, fmt.Errorf(
			"invalid reveal window: min %d > max %d",
			cfg.MinRevealDelay,
			cfg.MaxRevealDelay,
		)
	}
	l := &Ledger{
		config: cfg,
		db:     cfg.Database,
		bus:    cfg.EventBus,
		clock:  cfg.Clock,
		logger: cfg.Logger.With("component", "ledger"),
	}
	if cfg.PromRegistry != nil {
		l.metrics = &ledgerMetrics{}
		l.metrics.init(cfg.PromRegistry)
	}
	nextSeq, err := l.db.NextEventSeq()
	if err != nil {
		return nil, fmt.Errorf("failed to read event outbox position: %w", err)
	}
	l.nextSeq = nextSeq
	if l.metrics != nil {
		l.metrics.outboxSeq.Set(float64(l.nextSeq))
	}
	if err := l.genesis(); err != nil {
		return nil, fmt.Errorf("genesis failed: %w", err)
	}
	return l, nil
}

// genesis grants the full role bitmask to the initializing identity on
// first startup. Subsequent startups observe the existing record and do
// nothing
func (l *Ledger) genesis() error {
	existing, err := l.db.GetCapability(l.config.Genesis.Bytes(), nil)
	if err != nil {
		return err
	}
	if existing != nil {
		return nil
	}
	l.logger.Info(
		"initializing capability table",
		"genesis", l.config.Genesis.String(),
	)
	return l.mutate(func(txn *database.Txn, now int64) ([]pendingEvent, error) {
		if err := l.db.SetCapability(
			l.config.Genesis.Bytes(),
			uint64(RoleAll),
			txn,
		); err != nil {
			return nil, err
		}
		return []pendingEvent{
			{
				Type: RoleGrantedEventType,
				Key:  l.config.Genesis,
				Payload: RoleGrantedEvent{
					Identity:  l.config.Genesis,
					Roles:     RoleAll,
					Timestamp: now,
				},
			},
		}, nil
	})
}

// mutate runs fn while holding the ledger's serialization lock. The
// returned events are appended to the persistent outbox inside the same
// transaction as fn's writes, so a mutation and its events are atomic.
// Any error from fn rolls the whole call back with no state change
func (l *Ledger) mutate(
	fn func(txn *database.Txn, now int64) ([]pendingEvent, error),
) error {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	start := time.Now()
	now := l.clock.Now()
	var events []pendingEvent
	txn := l.db.Transaction(true)
	err := txn.Do(func(txn *database.Txn) error {
		var err error
		events, err = fn(txn, now)
		if err != nil {
			return err
		}
		for i, evt := range events {
			payload, err := json.Marshal(evt.Payload)
			if err != nil {
				return fmt.Errorf("failed to encode event payload: %w", err)
			}
			rec := database.OutboxEvent{
				Seq:       l.nextSeq + uint64(i), //nolint:gosec
				Type:      string(evt.Type),
				Key:       evt.Key.String(),
				Timestamp: now,
				Payload:   payload,
			}
			if err := l.db.AppendEvent(rec, txn); err != nil {
				return err
			}
		}
		return l.db.SetCommitTimestamp(txn, now)
	})
	if err != nil {
		if l.metrics != nil {
			l.metrics.mutationErrorsTotal.Inc()
		}
		return err
	}
	l.nextSeq += uint64(len(events)) //nolint:gosec
	if l.metrics != nil {
		l.metrics.mutationsTotal.Inc()
		l.metrics.eventsAppendedTotal.Add(float64(len(events)))
		l.metrics.outboxSeq.Set(float64(l.nextSeq))
		l.metrics.mutationLatency.Observe(time.Since(start).Seconds())
	}
	// Notify in-memory subscribers only after the mutation is durable
	for _, evt := range events {
		l.bus.Publish(evt.Type, event.NewEvent(evt.Type, evt.Payload))
	}
	return nil
}

// Events returns a page of the persistent event outbox starting at seq.
// The outbox is the sole notification channel for off-chain indexers;
// ordering is by sequence number, which matches mutation order
func (l *Ledger) Events(seq uint64, limit int) ([]database.OutboxEvent, error) {
	return l.db.GetEvents(seq, limit)
}

// EventCount returns the number of events in the outbox
func (l *Ledger) EventCount() (uint64, error) {
	return l.db.NextEventSeq()
}
