package transport

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/AtsukiTak/bitcoinrs/internal/model"
	"github.com/AtsukiTak/bitcoinrs/internal/subscription"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	// wsPongLimit is how long the connection may stay silent before the
	// read side gives up on it.
	wsPongLimit  = 60 * time.Second
	wsPingPeriod = wsPongLimit / 2
	wsWriteLimit = wsPingPeriod / 2

	wsReadLimit = 64 * 1024

	// pushBufSize is the outbound queue depth per connection. Dispatch never
	// waits on it; a connection that cannot drain this many messages is
	// dropped.
	pushBufSize = 64

	opObserveTransactions = "observe_transactions"
	opObserveAddresses    = "observe_addresses"
)

var errSlowConsumer = errors.New("outbound queue full")

// wsRequest is one client command on the websocket.
type wsRequest struct {
	Op    string   `json:"op"`
	Items []string `json:"items"`
}

// wsAck confirms a command, echoing the accepted items.
type wsAck struct {
	Op       string   `json:"op"`
	Accepted []string `json:"accepted"`
	Error    string   `json:"error,omitempty"`
}

// wsSender is the dispatcher's delivery handle for one connection.
type wsSender struct {
	out chan *model.PushMessage
}

// Send enqueues a push without blocking. Dispatch treats the error as a dead
// connection.
func (c *wsSender) Send(msg *model.PushMessage) error {
	select {
	case c.out <- msg:
		return nil
	default:
		return errSlowConsumer
	}
}

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
}

func (s *Server) handleWebsocket(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "use GET")
		return
	}
	// Racy against concurrent upgrades, a couple of extra clients may sneak
	// in past the limit. Not worth a lock.
	if int(s.wsClients.Load()) >= s.cfg.MaxWebsocketClients {
		s.writeError(w, http.StatusServiceUnavailable, "websocket client limit reached")
		return
	}

	ws, err := wsUpgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Info("websocket upgrade failed", zap.Error(err))
		return
	}

	connID := uuid.NewString()
	sender := &wsSender{out: make(chan *model.PushMessage, pushBufSize)}
	ackChan := make(chan wsAck)

	s.metrics.SetWebsocketClients(int(s.wsClients.Add(1)))
	s.dispatcher.Register(connID, sender)
	s.logger.Debug("websocket connected", zap.String("conn_id", connID))

	go s.handleWsWrites(ws, sender.out, ackChan)
	s.handleWsReads(ws, connID, ackChan)
}

func (s *Server) handleWsWrites(ws *websocket.Conn, out <-chan *model.PushMessage, ackChan <-chan wsAck) {
	pingTicker := time.NewTicker(wsPingPeriod)
eventloop:
	for {
		select {
		case <-s.shutdown:
			break eventloop
		case msg, ok := <-out:
			if !ok {
				break eventloop
			}
			if err := ws.SetWriteDeadline(time.Now().Add(wsWriteLimit)); err != nil {
				break eventloop
			}
			if err := ws.WriteJSON(msg); err != nil {
				break eventloop
			}
		case ack, ok := <-ackChan:
			if !ok {
				break eventloop
			}
			if err := ws.SetWriteDeadline(time.Now().Add(wsWriteLimit)); err != nil {
				break eventloop
			}
			if err := ws.WriteJSON(ack); err != nil {
				break eventloop
			}
		case <-pingTicker.C:
			if err := ws.SetWriteDeadline(time.Now().Add(wsWriteLimit)); err != nil {
				break eventloop
			}
			if err := ws.WriteMessage(websocket.PingMessage, []byte{}); err != nil {
				break eventloop
			}
		}
	}
	ws.Close()
	pingTicker.Stop()
}

func (s *Server) handleWsReads(ws *websocket.Conn, connID string, ackChan chan<- wsAck) {
	ws.SetReadLimit(wsReadLimit)
	err := ws.SetReadDeadline(time.Now().Add(wsPongLimit))
	ws.SetPongHandler(func(string) error { return ws.SetReadDeadline(time.Now().Add(wsPongLimit)) })

requestloop:
	for err == nil {
		var req wsRequest
		if err = ws.ReadJSON(&req); err != nil {
			break
		}
		ack := s.handleWsRequest(connID, req)
		select {
		case <-s.shutdown:
			break requestloop
		case ackChan <- ack:
		}
		if ack.Error == "" && len(ack.Accepted) > 0 {
			// The snapshot for freshly observed items goes out through the
			// regular push path.
			s.dispatcher.PushInitial(connID)
		}
	}

	s.dispatcher.Deregister(connID)
	s.registry.Close(connID)
	s.metrics.SetWebsocketClients(int(s.wsClients.Add(-1)))
	close(ackChan)
	ws.Close()
	s.logger.Debug("websocket closed", zap.String("conn_id", connID))
}

func (s *Server) handleWsRequest(connID string, req wsRequest) wsAck {
	ack := wsAck{Op: req.Op}
	switch req.Op {
	case opObserveTransactions:
		ack.Accepted = s.registry.Observe(connID, subscription.KindTransaction, req.Items)
	case opObserveAddresses:
		ack.Accepted = s.registry.Observe(connID, subscription.KindAddress, req.Items)
	default:
		ack.Error = fmt.Sprintf("unknown operation %q", req.Op)
	}
	return ack
}
