// Package bitcoin turns verbose blocks served by a Bitcoin-family node into
// ordered block events.
package bitcoin

import (
	"context"
	"fmt"
	"math"

	"github.com/AtsukiTak/bitcoinrs/internal/model"
	"github.com/AtsukiTak/bitcoinrs/pkg/safe"
	"github.com/btcsuite/btcd/btcjson"
	"github.com/btcsuite/btcd/btcutil"
)

// Source implements the ingest block source for Bitcoin.
type Source struct {
	rpc     *RPCClient
	decoder ScriptDecoder
	network string
}

// NewSource creates a block event source backed by a node RPC connection.
func NewSource(rpc *RPCClient, decoder ScriptDecoder, network string) (*Source, error) {
	if rpc == nil || decoder == nil {
		return nil, fmt.Errorf("rpc client and script decoder are required")
	}
	return &Source{
		rpc:     rpc,
		decoder: decoder,
		network: network,
	}, nil
}

// LatestHeight returns the latest block height from the node.
func (s *Source) LatestHeight(_ context.Context) (uint64, error) {
	count, err := s.rpc.GetBlockCount()
	if err != nil {
		return 0, err
	}
	height, err := safe.Uint64(count)
	if err != nil {
		return 0, fmt.Errorf("block count overflow: %w", err)
	}
	return height, nil
}

// FetchBlock retrieves the block at the given height and flattens it into the
// spent outpoints and created outputs it carries.
func (s *Source) FetchBlock(ctx context.Context, height uint64) (*model.BlockEvent, error) {
	if height > math.MaxInt64 {
		return nil, fmt.Errorf("block height %d exceeds rpc limit", height)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	hash, err := s.rpc.GetBlockHash(int64(height))
	if err != nil {
		return nil, fmt.Errorf("get block hash at height %d: %w", height, err)
	}
	src, err := s.rpc.GetBlockVerboseTx(hash)
	if err != nil {
		return nil, fmt.Errorf("get block %s: %w", hash, err)
	}

	ev := &model.BlockEvent{
		Height:   height,
		Hash:     src.Hash,
		PrevHash: src.PreviousHash,
		TxIDs:    make([]string, 0, len(src.Tx)),
	}
	for _, tx := range src.Tx {
		ev.TxIDs = append(ev.TxIDs, tx.Txid)

		for _, vin := range tx.Vin {
			if vin.IsCoinBase() {
				continue
			}
			ev.Spent = append(ev.Spent, model.Outpoint{TxID: vin.Txid, Index: vin.Vout})
		}

		created, err := s.convertOutputs(tx)
		if err != nil {
			return nil, err
		}
		ev.Created = append(ev.Created, created...)
	}
	return ev, nil
}

func (s *Source) convertOutputs(tx btcjson.TxRawResult) ([]model.OutputRecord, error) {
	records := make([]model.OutputRecord, 0, len(tx.Vout))
	for idx, vout := range tx.Vout {
		if vout.Value < 0 {
			return nil, fmt.Errorf("tx %s output %d negative value: %f", tx.Txid, idx, vout.Value)
		}
		index, err := safe.Uint32(idx)
		if err != nil {
			return nil, fmt.Errorf("tx %s output index overflow: %w", tx.Txid, err)
		}
		amount, err := btcutil.NewAmount(vout.Value)
		if err != nil {
			return nil, fmt.Errorf("tx %s output %d value: %w", tx.Txid, idx, err)
		}
		addresses, err := s.decoder.DecodeAddresses(vout)
		if err != nil {
			return nil, fmt.Errorf("decode addresses for tx %s output %d: %w", tx.Txid, idx, err)
		}
		if len(addresses) == 0 {
			// Provably unspendable or non-standard scripts carry no address
			// and are never looked up.
			continue
		}

		records = append(records, model.OutputRecord{
			Outpoint: model.Outpoint{TxID: tx.Txid, Index: index},
			// Bare multisig decodes to several addresses; the outpoint is
			// indexed under the first one.
			Address: addresses[0],
			Amount:  model.Amount(amount),
		})
	}
	return records, nil
}
