package clickhouse

import (
	"context"
	"time"

	"github.com/AtsukiTak/bitcoinrs/internal/model"
	"github.com/AtsukiTak/bitcoinrs/pkg/batcher"
	"go.uber.org/zap"
)

const (
	defaultFlushSize     = 200
	defaultFlushInterval = 2 * time.Second
	defaultFlushRPS      = 10
)

// Inserter is the write surface the sink flushes into.
type Inserter interface {
	InsertBlockEvents(ctx context.Context, rows []BlockEventRow) error
}

// SinkConfig holds the batching tunables of the journal sink.
type SinkConfig struct {
	FlushSize     int
	FlushInterval time.Duration
	FlushRPS      int
}

func (c SinkConfig) withDefaults() SinkConfig {
	if c.FlushSize <= 0 {
		c.FlushSize = defaultFlushSize
	}
	if c.FlushInterval <= 0 {
		c.FlushInterval = defaultFlushInterval
	}
	if c.FlushRPS <= 0 {
		c.FlushRPS = defaultFlushRPS
	}
	return c
}

// Sink buffers journal rows and flushes them to ClickHouse in batches, so a
// burst of small blocks does not turn into a burst of small inserts.
type Sink struct {
	batcher *batcher.Batcher[BlockEventRow]
	now     func() time.Time
}

// NewSink constructs a journal sink over the given inserter.
func NewSink(cfg SinkConfig, inserter Inserter, logger *zap.Logger) *Sink {
	cfg = cfg.withDefaults()
	return &Sink{
		batcher: batcher.New(
			logger.Named("archive"),
			inserter.InsertBlockEvents,
			cfg.FlushSize,
			cfg.FlushInterval,
			cfg.FlushRPS,
		),
		now: time.Now,
	}
}

// Start begins the background flushing loop.
func (s *Sink) Start(ctx context.Context) {
	s.batcher.Start(ctx)
}

// Stop flushes the remaining buffer and stops the loop.
func (s *Sink) Stop() {
	s.batcher.Stop()
}

// RecordApplied journals a block applied to the chain state.
func (s *Sink) RecordApplied(ctx context.Context, ev *model.BlockEvent) error {
	return s.batcher.Add(ctx, AppliedRow(ev, s.now()))
}

// RecordRolledBack journals a block undone by a reorg.
func (s *Sink) RecordRolledBack(ctx context.Context, height uint64, hash string) error {
	return s.batcher.Add(ctx, RolledBackRow(height, hash, s.now()))
}
