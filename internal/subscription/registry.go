// Package subscription tracks per-connection watches over transactions and
// addresses, with TTL-based expiry and the last-pushed snapshot used for
// change detection.
package subscription

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/AtsukiTak/bitcoinrs/internal/clock"
	"github.com/AtsukiTak/bitcoinrs/internal/model"
	"go.uber.org/zap"
)

// Kind distinguishes the two watchable object families.
type Kind int

const (
	// KindTransaction watches a transaction id for confirmation changes.
	KindTransaction Kind = iota
	// KindAddress watches an address for UTXO set changes.
	KindAddress
)

const (
	// DefaultTTL covers roughly one client reconnect cycle.
	DefaultTTL = 10 * time.Minute
	// DefaultSweepInterval is how often expired watches are collected.
	DefaultSweepInterval = 30 * time.Second
)

// Metrics records registry activity.
type Metrics interface {
	ObserveSweep(removed int, started time.Time)
	SetWatchCount(n int)
}

// Config holds the Registry tunables.
type Config struct {
	TTL           time.Duration
	SweepInterval time.Duration
}

func (c Config) withDefaults() Config {
	if c.TTL <= 0 {
		c.TTL = DefaultTTL
	}
	if c.SweepInterval <= 0 {
		c.SweepInterval = DefaultSweepInterval
	}
	return c
}

// WatchView is a read-only view of one watch used by the dispatcher.
type WatchView struct {
	Kind        Kind
	Item        string
	Snapshot    string
	HasSnapshot bool
}

type watch struct {
	expiry      time.Time
	snapshot    string
	hasSnapshot bool
}

type connection struct {
	txs   map[string]*watch
	addrs map[string]*watch
}

func (c *connection) bucket(kind Kind) map[string]*watch {
	if kind == KindTransaction {
		return c.txs
	}
	return c.addrs
}

// Registry is the subscription registry. Writer operations (observe, close,
// sweep) are serialized; the dispatcher reads concurrently.
type Registry struct {
	logger  *zap.Logger
	cfg     Config
	metrics Metrics
	sleep   func(context.Context, time.Duration) error
	now     func() time.Time

	mu    sync.RWMutex
	conns map[string]*connection
}

// NewRegistry constructs an empty Registry.
func NewRegistry(cfg Config, metrics Metrics, logger *zap.Logger) *Registry {
	return &Registry{
		logger:  logger.Named("subscriptions"),
		cfg:     cfg.withDefaults(),
		metrics: metrics,
		sleep:   clock.SleepWithContext,
		now:     time.Now,
		conns:   make(map[string]*connection),
	}
}

// Observe inserts or refreshes watches for the given items on a connection.
// Malformed identifiers are dropped. Returns the accepted items; re-observing
// an existing watch only extends its expiry, the snapshot is preserved so
// unchanged items are not re-pushed.
func (r *Registry) Observe(connID string, kind Kind, items []string) []string {
	accepted := model.FilterValidIDs(items)
	if len(accepted) == 0 {
		return nil
	}
	expiry := r.now().Add(r.cfg.TTL)

	r.mu.Lock()
	defer r.mu.Unlock()

	conn := r.conns[connID]
	if conn == nil {
		conn = &connection{txs: make(map[string]*watch), addrs: make(map[string]*watch)}
		r.conns[connID] = conn
	}
	bucket := conn.bucket(kind)
	for _, item := range accepted {
		if w, ok := bucket[item]; ok {
			w.expiry = expiry
			continue
		}
		bucket[item] = &watch{expiry: expiry}
	}
	return accepted
}

// Close removes every watch of a connection immediately.
func (r *Registry) Close(connID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.conns, connID)
}

// ExpireSweep removes watches whose expiry passed without a refresh. This is
// the only removal path besides Close; a watch is never dropped just because
// its item did not change.
func (r *Registry) ExpireSweep(now time.Time) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for connID, conn := range r.conns {
		for _, bucket := range []map[string]*watch{conn.txs, conn.addrs} {
			for item, w := range bucket {
				if w.expiry.Before(now) {
					delete(bucket, item)
					removed++
				}
			}
		}
		if len(conn.txs) == 0 && len(conn.addrs) == 0 {
			delete(r.conns, connID)
		}
	}
	return removed
}

// Run sweeps expired watches periodically until the context is canceled.
func (r *Registry) Run(ctx context.Context) error {
	for {
		if err := r.sleep(ctx, r.cfg.SweepInterval); err != nil {
			return err
		}
		started := time.Now()
		removed := r.ExpireSweep(r.now())
		if removed > 0 {
			r.logger.Debug("expired watches removed", zap.Int("count", removed))
		}
		if r.metrics != nil {
			r.metrics.ObserveSweep(removed, started)
			r.metrics.SetWatchCount(r.watchCount())
		}
	}
}

// Connections lists connection ids with at least one active watch.
func (r *Registry) Connections() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.conns))
	for id := range r.conns {
		ids = append(ids, id)
	}
	return ids
}

// Watches returns the active watches of a connection.
func (r *Registry) Watches(connID string) []WatchView {
	r.mu.RLock()
	defer r.mu.RUnlock()

	conn := r.conns[connID]
	if conn == nil {
		return nil
	}
	views := make([]WatchView, 0, len(conn.txs)+len(conn.addrs))
	for item, w := range conn.txs {
		views = append(views, WatchView{Kind: KindTransaction, Item: item, Snapshot: w.snapshot, HasSnapshot: w.hasSnapshot})
	}
	for item, w := range conn.addrs {
		views = append(views, WatchView{Kind: KindAddress, Item: item, Snapshot: w.snapshot, HasSnapshot: w.hasSnapshot})
	}
	// Deterministic order keeps push payloads stable for a given state.
	sort.Slice(views, func(i, j int) bool {
		if views[i].Kind != views[j].Kind {
			return views[i].Kind < views[j].Kind
		}
		return views[i].Item < views[j].Item
	})
	return views
}

// SetSnapshots records the last-pushed state fingerprints after a successful
// delivery. Watches that expired or closed in the meantime are skipped.
func (r *Registry) SetSnapshots(connID string, kind Kind, snapshots map[string]string) {
	if len(snapshots) == 0 {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	conn := r.conns[connID]
	if conn == nil {
		return
	}
	bucket := conn.bucket(kind)
	for item, snapshot := range snapshots {
		if w, ok := bucket[item]; ok {
			w.snapshot = snapshot
			w.hasSnapshot = true
		}
	}
}

func (r *Registry) watchCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n := 0
	for _, conn := range r.conns {
		n += len(conn.txs) + len(conn.addrs)
	}
	return n
}
