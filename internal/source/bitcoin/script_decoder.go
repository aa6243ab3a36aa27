package bitcoin

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/btcsuite/btcd/btcjson"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/txscript"
)

var networkParams = map[string]*chaincfg.Params{
	"main":     &chaincfg.MainNetParams,
	"mainnet":  &chaincfg.MainNetParams,
	"bitcoin":  &chaincfg.MainNetParams,
	"testnet":  &chaincfg.TestNet3Params,
	"testnet3": &chaincfg.TestNet3Params,
	"regtest":  &chaincfg.RegressionNetParams,
	"signet":   &chaincfg.SigNetParams,
}

// scriptDecoder turns ScriptPubKey results into the address strings outputs
// are indexed under.
type scriptDecoder struct {
	params *chaincfg.Params
}

// NewScriptDecoder builds a decoder bound to the chain params of network.
func NewScriptDecoder(network string) (ScriptDecoder, error) {
	params, ok := networkParams[strings.ToLower(network)]
	if !ok {
		return nil, fmt.Errorf("unsupported network %q", network)
	}
	return &scriptDecoder{params: params}, nil
}

// DecodeAddresses prefers what the node already decoded and only falls back
// to parsing the raw script.
func (d *scriptDecoder) DecodeAddresses(vout btcjson.Vout) ([]string, error) {
	spk := vout.ScriptPubKey
	switch {
	case len(spk.Addresses) > 0:
		return append([]string(nil), spk.Addresses...), nil
	case spk.Address != "":
		return []string{spk.Address}, nil
	case spk.Hex == "":
		return nil, nil
	}

	script, err := hex.DecodeString(spk.Hex)
	if err != nil {
		return nil, fmt.Errorf("decode script hex: %w", err)
	}
	_, addrs, _, err := txscript.ExtractPkScriptAddrs(script, d.params)
	if err != nil {
		return nil, err
	}

	out := make([]string, len(addrs))
	for i, addr := range addrs {
		out[i] = addr.EncodeAddress()
	}
	return out, nil
}
