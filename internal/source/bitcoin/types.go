package bitcoin

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=bitcoin

import (
	"time"

	"github.com/btcsuite/btcd/btcjson"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

type (
	// NodeRPC is the subset of the node RPC surface the source needs.
	NodeRPC interface {
		GetBlockCount() (int64, error)
		GetBlockHash(blockHeight int64) (*chainhash.Hash, error)
		GetBlockVerboseTx(blockHash *chainhash.Hash) (*btcjson.GetBlockVerboseTxResult, error)
	}

	// RPCMetrics records metrics for RPC calls.
	RPCMetrics interface {
		Observe(operation string, err error, started time.Time)
	}

	// ScriptDecoder extracts human-readable addresses from a tx output.
	ScriptDecoder interface {
		DecodeAddresses(vout btcjson.Vout) ([]string, error)
	}
)
