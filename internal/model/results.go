package model

// TxStatusResult is the wire form of a transaction status lookup.
type TxStatusResult struct {
	TxID         string `json:"txid"`
	Confirmation uint64 `json:"confirmation"`
	MinedBlock   string `json:"mined_block,omitempty"`
}

// UTXOResult is the wire form of one unspent output.
type UTXOResult struct {
	TxID         string `json:"txid"`
	Index        uint32 `json:"index"`
	Amount       Amount `json:"amount"`
	Confirmation uint64 `json:"confirmation"`
	MinedBlock   string `json:"mined_block,omitempty"`
}

// AddressUTXOsResult is the wire form of an address lookup.
type AddressUTXOsResult struct {
	Address string       `json:"address"`
	UTXOs   []UTXOResult `json:"utxos"`
}

// PushMessage is one server-to-client notification batch. Only items whose
// state changed since the last push to that connection are included.
type PushMessage struct {
	Transactions []TxStatusResult     `json:"transactions,omitempty"`
	Addresses    []AddressUTXOsResult `json:"addresses,omitempty"`
}

// Empty reports whether the message carries no items.
func (m *PushMessage) Empty() bool {
	return len(m.Transactions) == 0 && len(m.Addresses) == 0
}
