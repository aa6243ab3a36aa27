package ingest

import (
	"context"
	"time"

	"github.com/AtsukiTak/bitcoinrs/internal/model"
)

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=$GOPACKAGE

type (
	// Source is the external data source feeding ordered block events.
	Source interface {
		LatestHeight(ctx context.Context) (uint64, error)
		FetchBlock(ctx context.Context, height uint64) (*model.BlockEvent, error)
	}

	// State is the write side of the chain state store.
	State interface {
		ApplyBlock(ev *model.BlockEvent) error
		Tip() (height uint64, hash string, ok bool)
		HashAt(height uint64) (hash string, ok bool)
	}

	// Dispatcher is notified after every successfully applied block.
	Dispatcher interface {
		BlockApplied(height uint64)
	}

	// Archive is the durable append-only log of chain events. Archiving is
	// best effort and never blocks ingestion correctness.
	Archive interface {
		RecordApplied(ctx context.Context, ev *model.BlockEvent) error
		RecordRolledBack(ctx context.Context, height uint64, hash string) error
	}

	// Metrics records ingestion activity.
	Metrics interface {
		ObserveLatestHeight(err error, started time.Time)
		ObserveApply(err error, height uint64, started time.Time)
		ObserveReorg(depth int)
		ObserveGap()
	}
)
