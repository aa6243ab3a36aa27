// Package model defines domain models for chain observation.
package model

// Outpoint uniquely identifies a transaction output.
type Outpoint struct {
	TxID  string
	Index uint32
}

// OutputRecord describes an output created by a block, with its owner and value.
type OutputRecord struct {
	Outpoint
	Address string
	Amount  Amount
}

// BlockEvent is one fully-resolved block as delivered by the data source:
// the transactions it contains, the outpoints it spends and the outputs it creates.
type BlockEvent struct {
	Height   uint64
	Hash     string
	PrevHash string
	TxIDs    []string
	Spent    []Outpoint
	Created  []OutputRecord
}
