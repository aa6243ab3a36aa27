// Package notify pushes state changes of watched transactions and addresses
// to their subscribed connections. Dispatch runs once per applied block and
// once per observe (the initial snapshot), and emits only items whose state
// differs from the last push to that connection.
package notify

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/AtsukiTak/bitcoinrs/internal/model"
	"github.com/AtsukiTak/bitcoinrs/internal/subscription"
	"github.com/AtsukiTak/bitcoinrs/pkg/workerpool"
	"go.uber.org/zap"
)

// DefaultWorkers bounds the per-round fan-out concurrency.
const DefaultWorkers = 8

// Config holds the Dispatcher tunables.
type Config struct {
	Workers int
}

func (c Config) withDefaults() Config {
	if c.Workers <= 0 {
		c.Workers = DefaultWorkers
	}
	return c
}

// Dispatcher fans out per-block notifications to registered connections.
// It is decoupled from ingestion by a coalescing signal: a slow round never
// blocks the next block's apply, and each round reads the latest state.
type Dispatcher struct {
	logger   *zap.Logger
	cfg      Config
	results  Results
	registry Registry
	metrics  Metrics

	signal chan struct{}

	mu      sync.RWMutex
	senders map[string]*conn
}

// conn pairs a delivery sender with a lock serializing dispatch to it.
// An initial-snapshot push racing a block round would otherwise diff both
// messages against the same stale snapshots and deliver an item twice.
type conn struct {
	sender Sender
	mu     sync.Mutex
}

// NewDispatcher constructs a Dispatcher.
func NewDispatcher(cfg Config, results Results, registry Registry, metrics Metrics, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{
		logger:   logger.Named("dispatcher"),
		cfg:      cfg.withDefaults(),
		results:  results,
		registry: registry,
		metrics:  metrics,
		signal:   make(chan struct{}, 1),
		senders:  make(map[string]*conn),
	}
}

// Register attaches a delivery sender for a connection.
func (d *Dispatcher) Register(connID string, sender Sender) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.senders[connID] = &conn{sender: sender}
}

// Deregister detaches a connection so no further deliveries are scheduled
// for it. Safe to call for unknown connections.
func (d *Dispatcher) Deregister(connID string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.senders, connID)
}

// BlockApplied schedules a dispatch round. Signals coalesce: if a round is
// already pending the new one folds into it, which is fine because every
// round reads the then-current state.
func (d *Dispatcher) BlockApplied(uint64) {
	select {
	case d.signal <- struct{}{}:
	default:
	}
}

// Run serves dispatch rounds until the context is canceled.
func (d *Dispatcher) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-d.signal:
		}
		d.round(ctx)
	}
}

// PushInitial delivers the initial snapshot for a connection right after an
// observe registered new watches. New watches carry no snapshot yet, so they
// are always included; previously known items are suppressed as usual.
func (d *Dispatcher) PushInitial(connID string) {
	d.mu.RLock()
	c := d.senders[connID]
	d.mu.RUnlock()
	if c == nil {
		return
	}
	d.dispatchTo(connID, c)
}

func (d *Dispatcher) round(ctx context.Context) {
	started := time.Now()

	d.mu.RLock()
	conns := make([]string, 0, len(d.senders))
	for id := range d.senders {
		conns = append(conns, id)
	}
	d.mu.RUnlock()

	_ = workerpool.Process(ctx, d.cfg.Workers, conns, func(_ context.Context, connID string) error {
		d.mu.RLock()
		c := d.senders[connID]
		d.mu.RUnlock()
		if c != nil {
			d.dispatchTo(connID, c)
		}
		return nil
	})

	if d.metrics != nil {
		d.metrics.ObserveRound(len(conns), started)
	}
}

func (d *Dispatcher) dispatchTo(connID string, c *conn) {
	c.mu.Lock()
	defer c.mu.Unlock()

	watches := d.registry.Watches(connID)
	if len(watches) == 0 {
		return
	}

	var msg model.PushMessage
	txSnaps := make(map[string]string)
	addrSnaps := make(map[string]string)

	for _, w := range watches {
		switch w.Kind {
		case subscription.KindTransaction:
			res := d.results.StatusOf(w.Item)
			fp := txFingerprint(res)
			if w.HasSnapshot && w.Snapshot == fp {
				continue
			}
			msg.Transactions = append(msg.Transactions, res)
			txSnaps[w.Item] = fp
		case subscription.KindAddress:
			res := d.results.UTXOsOf(w.Item)
			fp := addressFingerprint(res)
			if w.HasSnapshot && w.Snapshot == fp {
				continue
			}
			msg.Addresses = append(msg.Addresses, res)
			addrSnaps[w.Item] = fp
		}
	}

	if msg.Empty() {
		return
	}

	items := len(msg.Transactions) + len(msg.Addresses)
	if err := c.sender.Send(&msg); err != nil {
		// No retry: the client has to re-establish and re-observe.
		d.logger.Warn("delivery failed, dropping connection",
			zap.String("conn", connID), zap.Error(err))
		d.registry.Close(connID)
		d.Deregister(connID)
		if d.metrics != nil {
			d.metrics.ObservePush(err, items)
			d.metrics.ObserveDroppedConnection()
		}
		return
	}

	d.registry.SetSnapshots(connID, subscription.KindTransaction, txSnaps)
	d.registry.SetSnapshots(connID, subscription.KindAddress, addrSnaps)
	if d.metrics != nil {
		d.metrics.ObservePush(nil, items)
	}
}

// txFingerprint changes whenever the confirmation count or mined block of a
// watched transaction changes, so pending transactions are re-pushed every
// block until they age out.
func txFingerprint(res model.TxStatusResult) string {
	return fmt.Sprintf("%d|%s", res.Confirmation, res.MinedBlock)
}

// addressFingerprint covers the UTXO set membership, values and mined blocks
// but deliberately not confirmations: a block that neither spends nor pays
// the address must not trigger a push.
func addressFingerprint(res model.AddressUTXOsResult) string {
	var b strings.Builder
	for _, u := range res.UTXOs {
		fmt.Fprintf(&b, "%s:%d:%d:%s;", u.TxID, u.Index, int64(u.Amount), u.MinedBlock)
	}
	return b.String()
}
