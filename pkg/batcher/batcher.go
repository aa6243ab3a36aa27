// Package batcher coalesces individual writes into rate-limited batches.
package batcher

import (
	"context"
	"time"

	"go.uber.org/ratelimit"
	"go.uber.org/zap"
)

// Batcher collects items from Add and hands them to the flush function once
// the buffer is full or the flush interval elapses, whichever comes first.
// Flush errors are logged, not returned; callers that need delivery
// guarantees should not use a Batcher.
type Batcher[T any] struct {
	logger   *zap.Logger
	flush    func(context.Context, []T) error
	size     int
	interval time.Duration
	limiter  ratelimit.Limiter

	in      chan T
	stopped chan struct{}
	done    chan struct{}
}

// New constructs a Batcher flushing at most rps batches per second.
func New[T any](logger *zap.Logger, flush func(context.Context, []T) error, size int, interval time.Duration, rps int) *Batcher[T] {
	return &Batcher[T]{
		logger:   logger,
		flush:    flush,
		size:     size,
		interval: interval,
		limiter:  ratelimit.New(rps),
		in:       make(chan T, size*2),
		stopped:  make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start launches the background flush loop.
func (b *Batcher[T]) Start(ctx context.Context) {
	go b.loop(ctx)
}

// Stop flushes what is buffered and shuts the loop down. Add fails afterwards.
func (b *Batcher[T]) Stop() {
	close(b.stopped)
	<-b.done
}

// Add queues an item. It blocks while the buffer is full and returns the
// context error if ctx ends first.
func (b *Batcher[T]) Add(ctx context.Context, item T) error {
	select {
	case <-b.stopped:
		return context.Canceled
	default:
	}

	select {
	case b.in <- item:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (b *Batcher[T]) loop(ctx context.Context) {
	defer close(b.done)

	tick := time.NewTicker(b.interval)
	defer tick.Stop()

	pending := make([]T, 0, b.size)

	for {
		select {
		case item := <-b.in:
			pending = append(pending, item)
			if len(pending) >= b.size {
				pending = b.emit(ctx, pending)
			}

		case <-tick.C:
			pending = b.emit(ctx, pending)

		case <-b.stopped:
			// Take whatever Add managed to queue before Stop.
			for {
				select {
				case item := <-b.in:
					pending = append(pending, item)
				default:
					b.emit(ctx, pending)
					return
				}
			}

		case <-ctx.Done():
			b.emit(ctx, pending)
			return
		}
	}
}

func (b *Batcher[T]) emit(ctx context.Context, pending []T) []T {
	if len(pending) == 0 {
		return pending
	}

	b.limiter.Take()
	if err := b.flush(ctx, pending); err != nil {
		b.logger.Error("batch not flushed", zap.Int("size", len(pending)), zap.Error(err))
	} else {
		b.logger.Debug("batch flushed", zap.Int("size", len(pending)))
	}
	return pending[:0]
}
