package transport

import (
	"time"

	"github.com/AtsukiTak/bitcoinrs/internal/model"
	"github.com/AtsukiTak/bitcoinrs/internal/notify"
	"github.com/AtsukiTak/bitcoinrs/internal/subscription"
)

type (
	// Query answers stateless lookups against the current chain state.
	Query interface {
		TransactionStatuses(ids []string) []model.TxStatusResult
		AddressUTXOs(addresses []string) []model.AddressUTXOsResult
	}

	// Registry tracks what each websocket connection is watching.
	Registry interface {
		Observe(connID string, kind subscription.Kind, items []string) []string
		Close(connID string)
	}

	// Dispatcher routes push messages to registered connections.
	Dispatcher interface {
		Register(connID string, sender notify.Sender)
		Deregister(connID string)
		PushInitial(connID string)
	}

	// Chain reports the stored chain tip, used by the health endpoint.
	Chain interface {
		Tip() (height uint64, hash string, ok bool)
	}

	// Metrics records request handling.
	Metrics interface {
		Observe(operation string, err error, started time.Time)
		SetWebsocketClients(count int)
	}
)
