package model

// TxStatus is the mined position of a tracked transaction inside the
// observation window.
type TxStatus struct {
	TxID           string
	MinedHeight    uint64
	MinedBlockHash string
}

// Confirmation returns the confirmation count relative to the given top height.
func (t TxStatus) Confirmation(topHeight uint64) uint64 {
	if topHeight < t.MinedHeight {
		return 0
	}
	return topHeight - t.MinedHeight + 1
}

// UTXOEntry is an unspent output tracked for an address.
type UTXOEntry struct {
	Outpoint
	Address     string
	Amount      Amount
	MinedHeight uint64
}
