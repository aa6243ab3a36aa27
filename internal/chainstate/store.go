// Package chainstate maintains the rolling window of recent chain state:
// which transactions are mined at which height and which outputs are unspent
// per address. It is written by exactly one ingestion goroutine and read
// concurrently by queries and notification dispatch.
package chainstate

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/AtsukiTak/bitcoinrs/internal/model"
	"go.uber.org/zap"
)

var (
	// ErrGap reports that the incoming block skips ahead of the stored top.
	// Ingestion must backfill the missing range before further blocks are
	// accepted.
	ErrGap = errors.New("chainstate: height gap")
	// ErrUnknownParent reports that the incoming block does not link to any
	// stored block. The caller has to walk back to a common ancestor.
	ErrUnknownParent = errors.New("chainstate: unknown parent block")
	// ErrRollbackTooDeep reports that a reorg reaches below the retained
	// undo log.
	ErrRollbackTooDeep = errors.New("chainstate: rollback exceeds undo log")
	// ErrInvalidEvent reports a structurally unusable block event.
	ErrInvalidEvent = errors.New("chainstate: invalid block event")
)

const (
	// DefaultWindow is the observation window in blocks.
	DefaultWindow = 5000
	// DefaultMaxReorgDepth bounds the per-block undo log.
	DefaultMaxReorgDepth = 100
)

// Config holds the Store tunables.
type Config struct {
	// Window is the number of recent blocks kept queryable.
	Window uint64
	// MaxReorgDepth is the number of recent blocks that can be rolled back.
	MaxReorgDepth int
}

func (c Config) withDefaults() Config {
	if c.Window == 0 {
		c.Window = DefaultWindow
	}
	if c.MaxReorgDepth <= 0 {
		c.MaxReorgDepth = DefaultMaxReorgDepth
	}
	if uint64(c.MaxReorgDepth) > c.Window {
		c.MaxReorgDepth = int(c.Window)
	}
	return c
}

type blockRecord struct {
	hash     string
	prevHash string
	txIDs    []string
	created  []model.Outpoint
}

// undoRecord holds what is needed to exactly invert one applied block.
type undoRecord struct {
	height  uint64
	created []model.Outpoint
	spent   []model.UTXOEntry
}

// Store is the chain state store plus its derived UTXO index.
type Store struct {
	logger *zap.Logger
	cfg    Config

	mu         sync.RWMutex
	haveBlocks bool
	bottom     uint64
	top        uint64
	blocks     map[uint64]*blockRecord
	txIndex    map[string]model.TxStatus
	utxoByOut  map[model.Outpoint]model.UTXOEntry
	utxoByAddr map[string]map[model.Outpoint]model.UTXOEntry
	undo       []undoRecord
}

// New constructs an empty Store.
func New(cfg Config, logger *zap.Logger) *Store {
	return &Store{
		logger:     logger.Named("chainstate"),
		cfg:        cfg.withDefaults(),
		blocks:     make(map[uint64]*blockRecord),
		txIndex:    make(map[string]model.TxStatus),
		utxoByOut:  make(map[model.Outpoint]model.UTXOEntry),
		utxoByAddr: make(map[string]map[model.Outpoint]model.UTXOEntry),
	}
}

// ApplyBlock applies one block event. The event must extend the stored top;
// an event at an already-applied height with a different hash triggers a
// reorg, rolling the store back to the event's parent before applying.
// Readers never observe a partially-applied block.
func (s *Store) ApplyBlock(ev *model.BlockEvent) error {
	if ev == nil || ev.Hash == "" {
		return ErrInvalidEvent
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.haveBlocks {
		s.applyLocked(ev)
		s.logger.Info("chain base applied", zap.Uint64("height", ev.Height), zap.String("hash", ev.Hash))
		return nil
	}

	switch {
	case ev.Height == s.top+1:
		if ev.PrevHash != s.blocks[s.top].hash {
			return fmt.Errorf("%w: block %s at height %d links to %s, top is %s",
				ErrUnknownParent, ev.Hash, ev.Height, ev.PrevHash, s.blocks[s.top].hash)
		}
		s.applyLocked(ev)
		return nil

	case ev.Height > s.top+1:
		return fmt.Errorf("%w: got height %d, top is %d", ErrGap, ev.Height, s.top)

	default: // ev.Height <= s.top: duplicate or reorg
		if ev.Height < s.bottom {
			return fmt.Errorf("%w: height %d is below window bottom %d", ErrRollbackTooDeep, ev.Height, s.bottom)
		}
		if cur := s.blocks[ev.Height]; cur != nil && cur.hash == ev.Hash {
			s.logger.Debug("duplicate block ignored", zap.Uint64("height", ev.Height), zap.String("hash", ev.Hash))
			return nil
		}
		if ev.Height > s.bottom {
			if parent := s.blocks[ev.Height-1]; parent == nil || parent.hash != ev.PrevHash {
				return fmt.Errorf("%w: reorg block %s at height %d links to unknown parent %s",
					ErrUnknownParent, ev.Hash, ev.Height, ev.PrevHash)
			}
		}
		depth := s.top - ev.Height + 1
		if ev.Height == 0 {
			// A different genesis orphans everything; there is no parent
			// height to roll back to, so the store empties first.
			if err := s.rollbackAllLocked(); err != nil {
				return err
			}
		} else if err := s.rollbackLocked(ev.Height - 1); err != nil {
			return err
		}
		s.applyLocked(ev)
		s.logger.Info("reorg applied",
			zap.Uint64("height", ev.Height),
			zap.Uint64("depth", depth),
			zap.String("hash", ev.Hash))
		return nil
	}
}

// RollbackToHeight discards all blocks above h, restoring the state as it was
// right after h was applied.
func (s *Store) RollbackToHeight(h uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rollbackLocked(h)
}

func (s *Store) applyLocked(ev *model.BlockEvent) {
	rec := &blockRecord{
		hash:     ev.Hash,
		prevHash: ev.PrevHash,
		txIDs:    append([]string(nil), ev.TxIDs...),
	}
	und := undoRecord{height: ev.Height}

	// Created outputs go in first so a block can spend its own outputs.
	for _, out := range ev.Created {
		entry := model.UTXOEntry{
			Outpoint:    out.Outpoint,
			Address:     out.Address,
			Amount:      out.Amount,
			MinedHeight: ev.Height,
		}
		s.insertUTXOLocked(entry)
		rec.created = append(rec.created, out.Outpoint)
		und.created = append(und.created, out.Outpoint)
	}
	for _, op := range ev.Spent {
		entry, ok := s.utxoByOut[op]
		if !ok {
			// Spends an output outside the window; nothing tracked to remove.
			continue
		}
		s.removeUTXOLocked(entry)
		und.spent = append(und.spent, entry)
	}
	for _, txid := range ev.TxIDs {
		s.txIndex[txid] = model.TxStatus{TxID: txid, MinedHeight: ev.Height, MinedBlockHash: ev.Hash}
	}

	s.blocks[ev.Height] = rec
	if !s.haveBlocks {
		s.haveBlocks = true
		s.bottom = ev.Height
	}
	s.top = ev.Height

	s.undo = append(s.undo, und)
	if len(s.undo) > s.cfg.MaxReorgDepth {
		s.undo = s.undo[len(s.undo)-s.cfg.MaxReorgDepth:]
	}

	s.evictLocked()
}

func (s *Store) rollbackLocked(h uint64) error {
	if !s.haveBlocks || h >= s.top {
		return nil
	}
	if h+1 < s.bottom {
		return fmt.Errorf("%w: target height %d is below window bottom %d", ErrRollbackTooDeep, h, s.bottom)
	}
	// Checked up front so a failed rollback never leaves partial state.
	if s.top-h > uint64(len(s.undo)) {
		return fmt.Errorf("%w: need %d blocks undone, undo log holds %d", ErrRollbackTooDeep, s.top-h, len(s.undo))
	}

	for s.haveBlocks && s.top > h {
		s.undoTopLocked()
	}
	return nil
}

// rollbackAllLocked empties the store, undoing every retained block. Used for
// a reorg landing on the window bottom, where no parent height exists inside
// the window.
func (s *Store) rollbackAllLocked() error {
	if !s.haveBlocks {
		return nil
	}
	if span := s.top - s.bottom + 1; span > uint64(len(s.undo)) {
		return fmt.Errorf("%w: need %d blocks undone, undo log holds %d", ErrRollbackTooDeep, span, len(s.undo))
	}

	for s.haveBlocks {
		s.undoTopLocked()
	}
	return nil
}

// undoTopLocked exactly inverts the top block. The caller has verified the
// undo log covers it.
func (s *Store) undoTopLocked() {
	und := s.undo[len(s.undo)-1]
	s.undo = s.undo[:len(s.undo)-1]

	rec := s.blocks[s.top]
	for _, txid := range rec.txIDs {
		if st, ok := s.txIndex[txid]; ok && st.MinedHeight == s.top {
			delete(s.txIndex, txid)
		}
	}
	// Inverse of apply: reinstate spends first, then drop creations.
	for _, entry := range und.spent {
		s.insertUTXOLocked(entry)
	}
	for _, op := range und.created {
		if entry, ok := s.utxoByOut[op]; ok && entry.MinedHeight == s.top {
			s.removeUTXOLocked(entry)
		}
	}

	delete(s.blocks, s.top)
	if s.top == s.bottom {
		s.haveBlocks = false
		s.top, s.bottom = 0, 0
		return
	}
	s.top--
}

func (s *Store) evictLocked() {
	for s.top-s.bottom+1 > s.cfg.Window {
		rec := s.blocks[s.bottom]
		for _, txid := range rec.txIDs {
			if st, ok := s.txIndex[txid]; ok && st.MinedHeight == s.bottom {
				delete(s.txIndex, txid)
			}
		}
		for _, op := range rec.created {
			if entry, ok := s.utxoByOut[op]; ok && entry.MinedHeight == s.bottom {
				s.removeUTXOLocked(entry)
			}
		}
		delete(s.blocks, s.bottom)
		if len(s.undo) > 0 && s.undo[0].height == s.bottom {
			s.undo = s.undo[1:]
		}
		s.bottom++
	}
}

func (s *Store) insertUTXOLocked(entry model.UTXOEntry) {
	s.utxoByOut[entry.Outpoint] = entry
	byAddr := s.utxoByAddr[entry.Address]
	if byAddr == nil {
		byAddr = make(map[model.Outpoint]model.UTXOEntry)
		s.utxoByAddr[entry.Address] = byAddr
	}
	byAddr[entry.Outpoint] = entry
}

func (s *Store) removeUTXOLocked(entry model.UTXOEntry) {
	delete(s.utxoByOut, entry.Outpoint)
	if byAddr := s.utxoByAddr[entry.Address]; byAddr != nil {
		delete(byAddr, entry.Outpoint)
		if len(byAddr) == 0 {
			delete(s.utxoByAddr, entry.Address)
		}
	}
}

// CurrentHeight returns the height of the stored top, or zero when empty.
func (s *Store) CurrentHeight() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.top
}

// Tip returns the stored top block, if any.
func (s *Store) Tip() (height uint64, hash string, ok bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.haveBlocks {
		return 0, "", false
	}
	return s.top, s.blocks[s.top].hash, true
}

// HashAt returns the stored block hash at the given height.
func (s *Store) HashAt(height uint64) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.blocks[height]
	if !ok {
		return "", false
	}
	return rec.hash, true
}

// ConfirmationOf reports the mined position and confirmation count of a
// transaction inside the observation window. Unknown or aged-out ids return
// ok == false, never an error.
func (s *Store) ConfirmationOf(txid string) (status model.TxStatus, confirmation uint64, ok bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	status, ok = s.txIndex[txid]
	if !ok {
		return model.TxStatus{}, 0, false
	}
	return status, status.Confirmation(s.top), true
}

// UTXOsOf returns the unspent outputs of an address together with the top
// height both were read at, so callers derive consistent confirmations.
// Entries are ordered by mined height, then txid, then output index.
func (s *Store) UTXOsOf(address string) ([]model.UTXOEntry, uint64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	byAddr := s.utxoByAddr[address]
	entries := make([]model.UTXOEntry, 0, len(byAddr))
	for _, entry := range byAddr {
		entries = append(entries, entry)
	}
	sort.Slice(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.MinedHeight != b.MinedHeight {
			return a.MinedHeight < b.MinedHeight
		}
		if a.TxID != b.TxID {
			return a.TxID < b.TxID
		}
		return a.Index < b.Index
	})
	return entries, s.top
}
