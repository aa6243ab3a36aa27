package query

import (
	"time"

	"github.com/AtsukiTak/bitcoinrs/internal/model"
)

type (
	// State is the read side of the chain state store.
	State interface {
		ConfirmationOf(txid string) (status model.TxStatus, confirmation uint64, ok bool)
		UTXOsOf(address string) (entries []model.UTXOEntry, topHeight uint64)
	}

	// Metrics records query activity.
	Metrics interface {
		Observe(operation string, items int, started time.Time)
	}
)
