package notify

import (
	"time"

	"github.com/AtsukiTak/bitcoinrs/internal/model"
	"github.com/AtsukiTak/bitcoinrs/internal/subscription"
)

type (
	// Results computes the current state of watched items.
	Results interface {
		StatusOf(txid string) model.TxStatusResult
		UTXOsOf(address string) model.AddressUTXOsResult
	}

	// Registry is the subscription registry view used during dispatch.
	Registry interface {
		Watches(connID string) []subscription.WatchView
		SetSnapshots(connID string, kind subscription.Kind, snapshots map[string]string)
		Close(connID string)
	}

	// Sender delivers one push message to a connection. Implementations must
	// not block; a full outbound queue is reported as an error and the
	// connection is dropped rather than stalling dispatch.
	Sender interface {
		Send(msg *model.PushMessage) error
	}

	// Metrics records dispatch activity.
	Metrics interface {
		ObserveRound(connections int, started time.Time)
		ObservePush(err error, items int)
		ObserveDroppedConnection()
	}
)
