// Package query answers one-shot stateless lookups against the chain state
// store and UTXO index.
package query

import (
	"time"

	"github.com/AtsukiTak/bitcoinrs/internal/model"
	"go.uber.org/zap"
)

// Engine serves point-in-time lookups. It never consults or mutates the
// subscription registry.
type Engine struct {
	state   State
	metrics Metrics
	logger  *zap.Logger
}

// NewEngine constructs an Engine over the given state reader.
func NewEngine(state State, metrics Metrics, logger *zap.Logger) *Engine {
	return &Engine{
		state:   state,
		metrics: metrics,
		logger:  logger.Named("query"),
	}
}

// StatusOf resolves a single well-formed transaction id. Unknown or aged-out
// ids yield confirmation zero with no mined block.
func (e *Engine) StatusOf(txid string) model.TxStatusResult {
	status, confirmation, ok := e.state.ConfirmationOf(txid)
	if !ok {
		return model.TxStatusResult{TxID: txid, Confirmation: 0}
	}
	return model.TxStatusResult{
		TxID:         txid,
		Confirmation: confirmation,
		MinedBlock:   status.MinedBlockHash,
	}
}

// UTXOsOf resolves a single well-formed address. Unknown addresses yield an
// empty UTXO list.
func (e *Engine) UTXOsOf(address string) model.AddressUTXOsResult {
	entries, top := e.state.UTXOsOf(address)
	utxos := make([]model.UTXOResult, 0, len(entries))
	for _, entry := range entries {
		utxos = append(utxos, model.UTXOResult{
			TxID:         entry.TxID,
			Index:        entry.Index,
			Amount:       entry.Amount,
			Confirmation: top - entry.MinedHeight + 1,
			MinedBlock:   minedBlockOf(entry, e.state),
		})
	}
	return model.AddressUTXOsResult{Address: address, UTXOs: utxos}
}

// TransactionStatuses answers a batch transaction lookup. Malformed ids are
// dropped from the result set, never surfaced as errors.
func (e *Engine) TransactionStatuses(ids []string) []model.TxStatusResult {
	started := time.Now()
	valid := model.FilterValidIDs(ids)
	results := make([]model.TxStatusResult, 0, len(valid))
	for _, id := range valid {
		results = append(results, e.StatusOf(id))
	}
	if e.metrics != nil {
		e.metrics.Observe("transactions", len(results), started)
	}
	return results
}

// AddressUTXOs answers a batch address lookup. Malformed addresses are
// dropped; unknown ones appear with empty UTXO lists.
func (e *Engine) AddressUTXOs(addresses []string) []model.AddressUTXOsResult {
	started := time.Now()
	valid := model.FilterValidIDs(addresses)
	results := make([]model.AddressUTXOsResult, 0, len(valid))
	for _, addr := range valid {
		results = append(results, e.UTXOsOf(addr))
	}
	if e.metrics != nil {
		e.metrics.Observe("utxos", len(results), started)
	}
	return results
}

func minedBlockOf(entry model.UTXOEntry, state State) string {
	// The creating transaction is in the tx index for as long as the entry
	// itself is in the window.
	if status, _, ok := state.ConfirmationOf(entry.TxID); ok {
		return status.MinedBlockHash
	}
	return ""
}
