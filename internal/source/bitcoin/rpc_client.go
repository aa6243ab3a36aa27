package bitcoin

import (
	"time"

	"github.com/btcsuite/btcd/btcjson"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/rpcclient"
)

// RPCClient wraps a node RPC connection with metrics instrumentation.
type RPCClient struct {
	client     NodeRPC
	rpcMetrics RPCMetrics
}

// NewRPCClient constructs an instrumented RPC client.
func NewRPCClient(client NodeRPC, rpcMetrics RPCMetrics) *RPCClient {
	return &RPCClient{
		client:     client,
		rpcMetrics: rpcMetrics,
	}
}

// Dial opens a plain HTTP POST connection to a node.
func Dial(host, user, pass string) (*rpcclient.Client, error) {
	return rpcclient.New(&rpcclient.ConnConfig{
		Host:         host,
		User:         user,
		Pass:         pass,
		HTTPPostMode: true,
		DisableTLS:   true,
	}, nil)
}

// observe starts timing one RPC call and returns its completion callback.
func (r *RPCClient) observe(operation string) func(error) {
	started := time.Now()
	return func(err error) {
		r.rpcMetrics.Observe(operation, err, started)
	}
}

// GetBlockCount returns the latest block count.
func (r *RPCClient) GetBlockCount() (int64, error) {
	done := r.observe("get_block_count")
	count, err := r.client.GetBlockCount()
	done(err)
	return count, err
}

// GetBlockHash returns the block hash for a height.
func (r *RPCClient) GetBlockHash(blockHeight int64) (*chainhash.Hash, error) {
	done := r.observe("get_block_hash")
	hash, err := r.client.GetBlockHash(blockHeight)
	done(err)
	return hash, err
}

// GetBlockVerboseTx returns a verbose block with transactions.
func (r *RPCClient) GetBlockVerboseTx(blockHash *chainhash.Hash) (*btcjson.GetBlockVerboseTxResult, error) {
	done := r.observe("get_block_verbose_tx")
	res, err := r.client.GetBlockVerboseTx(blockHash)
	done(err)
	return res, err
}
