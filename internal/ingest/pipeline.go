// Package ingest drives the single-writer ingestion loop: it pulls ordered
// block events from the data source, applies them to the chain state store,
// resolves reorganizations and wakes the notification dispatcher.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/AtsukiTak/bitcoinrs/internal/chainstate"
	"github.com/AtsukiTak/bitcoinrs/internal/clock"
	"github.com/AtsukiTak/bitcoinrs/internal/model"
	"go.uber.org/zap"
)

const (
	defaultPollInterval = 10 * time.Second
	defaultIdleInterval = 30 * time.Second
	defaultBackoff      = 5 * time.Second
)

// Config holds the Pipeline tunables.
type Config struct {
	// StartHeight is where ingestion begins on an empty store. Zero means
	// start at the source's current tip.
	StartHeight uint64
	// PollInterval is the pause between catch-up iterations.
	PollInterval time.Duration
	// IdleInterval is the pause when the source has no new blocks.
	IdleInterval time.Duration
	// Backoff is the pause after a failed iteration.
	Backoff time.Duration
}

func (c Config) withDefaults() Config {
	if c.PollInterval <= 0 {
		c.PollInterval = defaultPollInterval
	}
	if c.IdleInterval <= 0 {
		c.IdleInterval = defaultIdleInterval
	}
	if c.Backoff <= 0 {
		c.Backoff = defaultBackoff
	}
	return c
}

// Pipeline is the single writer of the chain state store. Block events are
// applied strictly one at a time, in order, because reorg detection depends
// on sequential height comparison.
type Pipeline struct {
	logger     *zap.Logger
	cfg        Config
	source     Source
	state      State
	dispatcher Dispatcher
	archive    Archive
	metrics    Metrics

	sleep       func(context.Context, time.Duration) error
	blockSignal <-chan struct{}
}

// NewPipeline constructs a Pipeline. archive may be nil to run without a
// durable log; blockSignal may be nil to rely on polling alone.
func NewPipeline(
	cfg Config,
	source Source,
	state State,
	dispatcher Dispatcher,
	archive Archive,
	metrics Metrics,
	logger *zap.Logger,
	blockSignal <-chan struct{},
) (*Pipeline, error) {
	if source == nil || state == nil || dispatcher == nil {
		return nil, errors.New("ingest: source, state and dispatcher are required")
	}
	return &Pipeline{
		logger:      logger.Named("ingest"),
		cfg:         cfg.withDefaults(),
		source:      source,
		state:       state,
		dispatcher:  dispatcher,
		archive:     archive,
		metrics:     metrics,
		sleep:       clock.SleepWithContext,
		blockSignal: blockSignal,
	}, nil
}

// Run ingests blocks until the context is canceled.
func (p *Pipeline) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := p.run(ctx); err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return err
			}
			p.logger.Warn("ingest iteration failed, backing off",
				zap.Error(err), zap.Duration("sleep", p.cfg.Backoff))
			if sleepErr := p.wait(ctx, p.cfg.Backoff); sleepErr != nil {
				return sleepErr
			}
		}
	}
}

func (p *Pipeline) run(ctx context.Context) error {
	started := time.Now()
	latest, err := p.source.LatestHeight(ctx)
	if p.metrics != nil {
		p.metrics.ObserveLatestHeight(err, started)
	}
	if err != nil {
		return fmt.Errorf("latest height: %w", err)
	}

	next := p.cfg.StartHeight
	if tipHeight, _, ok := p.state.Tip(); ok {
		next = tipHeight + 1
	} else if next == 0 {
		next = latest
	}

	if next > latest {
		return p.wait(ctx, p.cfg.IdleInterval)
	}

	for height := next; height <= latest; height++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		ev, err := p.source.FetchBlock(ctx, height)
		if err != nil {
			return fmt.Errorf("fetch block %d: %w", height, err)
		}
		if err := p.apply(ctx, ev); err != nil {
			return err
		}
	}
	return p.wait(ctx, p.cfg.PollInterval)
}

// apply applies one event, resolving a reorg when the event does not link to
// the stored top.
func (p *Pipeline) apply(ctx context.Context, ev *model.BlockEvent) error {
	err := p.applyOne(ctx, ev)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, chainstate.ErrUnknownParent):
		return p.resolveReorg(ctx, ev)
	case errors.Is(err, chainstate.ErrGap):
		// Terminal until the missing range is backfilled; reads keep serving
		// the last consistent state meanwhile.
		if p.metrics != nil {
			p.metrics.ObserveGap()
		}
		p.logger.Error("chain discontinuity", zap.Uint64("height", ev.Height), zap.Error(err))
		return err
	default:
		return err
	}
}

func (p *Pipeline) applyOne(ctx context.Context, ev *model.BlockEvent) error {
	started := time.Now()
	err := p.state.ApplyBlock(ev)
	if p.metrics != nil {
		p.metrics.ObserveApply(err, ev.Height, started)
	}
	if err != nil {
		return err
	}

	if p.archive != nil {
		if archiveErr := p.archive.RecordApplied(ctx, ev); archiveErr != nil {
			p.logger.Warn("archive write failed", zap.Uint64("height", ev.Height), zap.Error(archiveErr))
		}
	}
	p.dispatcher.BlockApplied(ev.Height)
	p.logger.Debug("block applied", zap.Uint64("height", ev.Height), zap.String("hash", ev.Hash))
	return nil
}

// resolveReorg walks the source chain backwards from the branch tip until it
// finds the block still shared with the store, then re-applies the branch on
// top of that ancestor. The store rolls back its side when the first branch
// block comes in.
func (p *Pipeline) resolveReorg(ctx context.Context, tip *model.BlockEvent) error {
	ancestor := tip.Height - 1
	for {
		stored, ok := p.state.HashAt(ancestor)
		if !ok {
			return fmt.Errorf("reorg ancestor of block %s below stored window: %w",
				tip.Hash, chainstate.ErrRollbackTooDeep)
		}
		ev, err := p.source.FetchBlock(ctx, ancestor)
		if err != nil {
			return fmt.Errorf("fetch reorg ancestor %d: %w", ancestor, err)
		}
		if ev.Hash == stored {
			break
		}
		if ancestor == 0 {
			return fmt.Errorf("no common ancestor for block %s: %w", tip.Hash, chainstate.ErrUnknownParent)
		}
		ancestor--
	}

	oldTop, _, _ := p.state.Tip()
	depth := int(oldTop - ancestor)
	p.logger.Info("resolving reorg",
		zap.Uint64("ancestor", ancestor),
		zap.Uint64("old_top", oldTop),
		zap.Uint64("branch_tip", tip.Height))
	if p.metrics != nil {
		p.metrics.ObserveReorg(depth)
	}

	if p.archive != nil {
		for h := oldTop; h > ancestor; h-- {
			if hash, ok := p.state.HashAt(h); ok {
				if err := p.archive.RecordRolledBack(ctx, h, hash); err != nil {
					p.logger.Warn("archive rollback record failed", zap.Uint64("height", h), zap.Error(err))
				}
			}
		}
	}

	for height := ancestor + 1; height <= tip.Height; height++ {
		ev := tip
		if height != tip.Height {
			var err error
			ev, err = p.source.FetchBlock(ctx, height)
			if err != nil {
				return fmt.Errorf("fetch branch block %d: %w", height, err)
			}
		}
		if err := p.applyOne(ctx, ev); err != nil {
			return fmt.Errorf("apply branch block %d: %w", height, err)
		}
	}
	return nil
}

func (p *Pipeline) wait(ctx context.Context, d time.Duration) error {
	if p.blockSignal == nil {
		return p.sleep(ctx, d)
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-p.blockSignal:
		return nil
	case <-timer.C:
		return nil
	}
}
