package chainstate

import (
	"fmt"
	"testing"

	"github.com/AtsukiTak/bitcoinrs/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestStore(t *testing.T, cfg Config) *Store {
	t.Helper()
	return New(cfg, zap.NewNop())
}

func blockEvent(height uint64, hash, prev string, opts ...func(*model.BlockEvent)) *model.BlockEvent {
	ev := &model.BlockEvent{Height: height, Hash: hash, PrevHash: prev}
	for _, opt := range opts {
		opt(ev)
	}
	return ev
}

func withTx(txid string) func(*model.BlockEvent) {
	return func(ev *model.BlockEvent) {
		ev.TxIDs = append(ev.TxIDs, txid)
	}
}

func withOutput(txid string, index uint32, address string, amount model.Amount) func(*model.BlockEvent) {
	return func(ev *model.BlockEvent) {
		ev.TxIDs = append(ev.TxIDs, txid)
		ev.Created = append(ev.Created, model.OutputRecord{
			Outpoint: model.Outpoint{TxID: txid, Index: index},
			Address:  address,
			Amount:   amount,
		})
	}
}

func withSpend(txid string, index uint32) func(*model.BlockEvent) {
	return func(ev *model.BlockEvent) {
		ev.Spent = append(ev.Spent, model.Outpoint{TxID: txid, Index: index})
	}
}

// applyChain applies a linear chain of n empty blocks on top of the store.
func applyChain(t *testing.T, s *Store, from, to uint64, opts map[uint64][]func(*model.BlockEvent)) {
	t.Helper()
	for h := from; h <= to; h++ {
		prev := fmt.Sprintf("hash%d", h-1)
		if h == from {
			if _, hash, ok := s.Tip(); ok {
				prev = hash
			}
		}
		ev := blockEvent(h, fmt.Sprintf("hash%d", h), prev)
		for _, opt := range opts[h] {
			opt(ev)
		}
		require.NoError(t, s.ApplyBlock(ev))
	}
}

func TestStore_ConfirmationTracksTopHeight(t *testing.T) {
	t.Parallel()

	s := newTestStore(t, Config{})
	applyChain(t, s, 100, 100, map[uint64][]func(*model.BlockEvent){
		100: {withTx("tx1")},
	})

	status, conf, ok := s.ConfirmationOf("tx1")
	require.True(t, ok)
	assert.Equal(t, uint64(1), conf)
	assert.Equal(t, uint64(100), status.MinedHeight)
	assert.Equal(t, "hash100", status.MinedBlockHash)

	applyChain(t, s, 101, 105, nil)
	_, conf, ok = s.ConfirmationOf("tx1")
	require.True(t, ok)
	assert.Equal(t, uint64(6), conf, "confirmation = top - mined + 1")
}

func TestStore_UnknownTransactionIsNotAnError(t *testing.T) {
	t.Parallel()

	s := newTestStore(t, Config{})
	_, _, ok := s.ConfirmationOf("never-seen")
	assert.False(t, ok)
}

func TestStore_SpentOutputLeavesIndex(t *testing.T) {
	t.Parallel()

	s := newTestStore(t, Config{})
	applyChain(t, s, 1, 1, map[uint64][]func(*model.BlockEvent){
		1: {withOutput("txa", 0, "addr1", 500)},
	})

	utxos, top := s.UTXOsOf("addr1")
	require.Len(t, utxos, 1)
	assert.Equal(t, uint64(1), top)
	assert.Equal(t, model.Amount(500), utxos[0].Amount)

	applyChain(t, s, 2, 2, map[uint64][]func(*model.BlockEvent){
		2: {withSpend("txa", 0)},
	})
	utxos, _ = s.UTXOsOf("addr1")
	assert.Empty(t, utxos)
}

func TestStore_SameBlockCreateAndSpend(t *testing.T) {
	t.Parallel()

	s := newTestStore(t, Config{})
	applyChain(t, s, 1, 1, map[uint64][]func(*model.BlockEvent){
		1: {
			withOutput("txa", 0, "addr1", 100),
			withOutput("txb", 0, "addr2", 90),
			withSpend("txa", 0),
		},
	})

	utxos, _ := s.UTXOsOf("addr1")
	assert.Empty(t, utxos, "output spent within its own block never surfaces")
	utxos, _ = s.UTXOsOf("addr2")
	assert.Len(t, utxos, 1)
}

func TestStore_GapIsTerminal(t *testing.T) {
	t.Parallel()

	s := newTestStore(t, Config{})
	applyChain(t, s, 1, 1, nil)

	err := s.ApplyBlock(blockEvent(3, "hash3", "hash2"))
	require.ErrorIs(t, err, ErrGap)

	// State is untouched and still serves the last consistent view.
	assert.Equal(t, uint64(1), s.CurrentHeight())
}

func TestStore_UnknownParentRejected(t *testing.T) {
	t.Parallel()

	s := newTestStore(t, Config{})
	applyChain(t, s, 1, 1, nil)

	err := s.ApplyBlock(blockEvent(2, "hash2", "not-hash1"))
	require.ErrorIs(t, err, ErrUnknownParent)
}

func TestStore_DuplicateBlockIgnored(t *testing.T) {
	t.Parallel()

	s := newTestStore(t, Config{})
	applyChain(t, s, 1, 2, nil)

	require.NoError(t, s.ApplyBlock(blockEvent(2, "hash2", "hash1")))
	assert.Equal(t, uint64(2), s.CurrentHeight())
}

func TestStore_WindowEviction(t *testing.T) {
	t.Parallel()

	s := newTestStore(t, Config{Window: 3, MaxReorgDepth: 2})
	applyChain(t, s, 1, 1, map[uint64][]func(*model.BlockEvent){
		1: {withOutput("txa", 0, "addr1", 100)},
	})
	applyChain(t, s, 2, 3, nil)

	_, conf, ok := s.ConfirmationOf("txa")
	require.True(t, ok)
	assert.Equal(t, uint64(3), conf)

	// Height 4 pushes block 1 out of the window.
	applyChain(t, s, 4, 4, nil)
	_, _, ok = s.ConfirmationOf("txa")
	assert.False(t, ok, "aged-out transaction becomes unknown")
	utxos, _ := s.UTXOsOf("addr1")
	assert.Empty(t, utxos, "aged-out output leaves the index")
}

func TestStore_ReorgMatchesDirectApply(t *testing.T) {
	t.Parallel()

	build := func() *Store {
		s := newTestStore(t, Config{})
		applyChain(t, s, 1, 1, map[uint64][]func(*model.BlockEvent){
			1: {withOutput("txa", 0, "addr1", 100)},
		})
		return s
	}

	// Chain A: blocks 2..3 spend txa and pay addr2; then a reorg replaces
	// both with chain B paying addr3.
	reorged := build()
	applyChain(t, reorged, 2, 3, map[uint64][]func(*model.BlockEvent){
		2: {withOutput("txb", 0, "addr2", 60), withSpend("txa", 0)},
		3: {withTx("txc")},
	})
	require.NoError(t, reorged.ApplyBlock(blockEvent(2, "alt2", "hash1", withOutput("txd", 0, "addr3", 70))))
	require.NoError(t, reorged.ApplyBlock(blockEvent(3, "alt3", "alt2")))

	// Chain B applied directly from height 1.
	direct := build()
	require.NoError(t, direct.ApplyBlock(blockEvent(2, "alt2", "hash1", withOutput("txd", 0, "addr3", 70))))
	require.NoError(t, direct.ApplyBlock(blockEvent(3, "alt3", "alt2")))

	for _, s := range []*Store{reorged, direct} {
		assert.Equal(t, uint64(3), s.CurrentHeight())

		utxos, _ := s.UTXOsOf("addr1")
		require.Len(t, utxos, 1, "rolled-back spend reinstates the output")
		assert.Equal(t, model.Amount(100), utxos[0].Amount)

		utxos, _ = s.UTXOsOf("addr2")
		assert.Empty(t, utxos, "orphaned branch outputs are gone")

		utxos, _ = s.UTXOsOf("addr3")
		require.Len(t, utxos, 1)

		_, _, ok := s.ConfirmationOf("txb")
		assert.False(t, ok)
		_, _, ok = s.ConfirmationOf("txc")
		assert.False(t, ok)
		_, conf, ok := s.ConfirmationOf("txd")
		require.True(t, ok)
		assert.Equal(t, uint64(2), conf)
	}
}

func TestStore_ConfirmationDecreasesAcrossReorg(t *testing.T) {
	t.Parallel()

	s := newTestStore(t, Config{})
	applyChain(t, s, 1, 5, map[uint64][]func(*model.BlockEvent){
		3: {withTx("txa")},
	})

	_, conf, ok := s.ConfirmationOf("txa")
	require.True(t, ok)
	assert.Equal(t, uint64(3), conf)

	// Replace heights 3..5 with a branch that does not mine txa.
	require.NoError(t, s.ApplyBlock(blockEvent(3, "alt3", "hash2")))
	_, _, ok = s.ConfirmationOf("txa")
	assert.False(t, ok, "reorg may turn a confirmed transaction unknown")
}

func TestStore_ReorgAtGenesisDropsOrphanedBranch(t *testing.T) {
	t.Parallel()

	s := newTestStore(t, Config{})
	require.NoError(t, s.ApplyBlock(blockEvent(0, "genesis", "")))
	require.NoError(t, s.ApplyBlock(blockEvent(1, "hash1", "genesis",
		withOutput("txa", 0, "addr1", 10))))

	// A competing genesis replaces the whole window, not just height 0.
	require.NoError(t, s.ApplyBlock(blockEvent(0, "altgenesis", "")))

	height, hash, ok := s.Tip()
	require.True(t, ok)
	assert.Equal(t, uint64(0), height)
	assert.Equal(t, "altgenesis", hash)

	_, _, known := s.ConfirmationOf("txa")
	assert.False(t, known, "transactions of the orphaned branch are gone")
	utxos, _ := s.UTXOsOf("addr1")
	assert.Empty(t, utxos, "UTXOs of the orphaned branch are gone")
	_, ok = s.HashAt(1)
	assert.False(t, ok, "orphaned blocks are gone")

	// The new branch extends normally.
	require.NoError(t, s.ApplyBlock(blockEvent(1, "alt1", "altgenesis")))
	assert.Equal(t, uint64(1), s.CurrentHeight())
}

func TestStore_ReorgAtGenesisNeedsFullUndoCoverage(t *testing.T) {
	t.Parallel()

	s := newTestStore(t, Config{MaxReorgDepth: 2})
	require.NoError(t, s.ApplyBlock(blockEvent(0, "genesis", "")))
	applyChain(t, s, 1, 4, nil)

	err := s.ApplyBlock(blockEvent(0, "altgenesis", ""))
	require.ErrorIs(t, err, ErrRollbackTooDeep)
	assert.Equal(t, uint64(4), s.CurrentHeight(), "a refused reorg leaves the store untouched")
}

func TestStore_RollbackBeyondUndoLogFails(t *testing.T) {
	t.Parallel()

	s := newTestStore(t, Config{MaxReorgDepth: 2})
	applyChain(t, s, 1, 10, nil)

	err := s.RollbackToHeight(5)
	require.ErrorIs(t, err, ErrRollbackTooDeep)

	require.NoError(t, s.RollbackToHeight(8))
	assert.Equal(t, uint64(8), s.CurrentHeight())
}

func TestStore_RollbackToWindowBottomEmptiesStore(t *testing.T) {
	t.Parallel()

	s := newTestStore(t, Config{MaxReorgDepth: 5})
	applyChain(t, s, 1, 3, nil)

	require.NoError(t, s.RollbackToHeight(0))
	_, _, ok := s.Tip()
	assert.False(t, ok)

	// A fresh base at any height is accepted after a full rollback.
	require.NoError(t, s.ApplyBlock(blockEvent(1, "other1", "")))
	assert.Equal(t, uint64(1), s.CurrentHeight())
}

func TestStore_HashAt(t *testing.T) {
	t.Parallel()

	s := newTestStore(t, Config{})
	applyChain(t, s, 7, 9, nil)

	hash, ok := s.HashAt(8)
	require.True(t, ok)
	assert.Equal(t, "hash8", hash)
	_, ok = s.HashAt(6)
	assert.False(t, ok)
}
