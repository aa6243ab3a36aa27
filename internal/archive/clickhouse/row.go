package clickhouse

import (
	"time"

	"github.com/AtsukiTak/bitcoinrs/internal/model"
)

// EventStatus marks why a block entered the journal.
type EventStatus string

const (
	EventApplied    EventStatus = "applied"
	EventRolledBack EventStatus = "rolled_back"
)

// BlockEventRow is one journal entry. The journal records both directions of
// every chain move, so the full history of a reorg stays reconstructible.
type BlockEventRow struct {
	Height       uint64
	Hash         string
	PrevHash     string
	Status       EventStatus
	TxCount      uint32
	SpentCount   uint32
	CreatedCount uint32
	RecordedAt   time.Time
}

// AppliedRow builds the journal entry for a block applied to the chain state.
func AppliedRow(ev *model.BlockEvent, now time.Time) BlockEventRow {
	return BlockEventRow{
		Height:       ev.Height,
		Hash:         ev.Hash,
		PrevHash:     ev.PrevHash,
		Status:       EventApplied,
		TxCount:      uint32(len(ev.TxIDs)),
		SpentCount:   uint32(len(ev.Spent)),
		CreatedCount: uint32(len(ev.Created)),
		RecordedAt:   now.UTC(),
	}
}

// RolledBackRow builds the journal entry for a block undone by a reorg.
func RolledBackRow(height uint64, hash string, now time.Time) BlockEventRow {
	return BlockEventRow{
		Height:     height,
		Hash:       hash,
		Status:     EventRolledBack,
		RecordedAt: now.UTC(),
	}
}
