// Package transport exposes the HTTP query API and the websocket push API.
package transport

import (
	"encoding/json"
	"errors"
	"net/http"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

const defaultMaxWebsocketClients = 64

var errMethodNotAllowed = errors.New("method not allowed")

// Config holds the transport tunables.
type Config struct {
	// MaxWebsocketClients caps concurrent websocket connections. Further
	// upgrade attempts are rejected with 503.
	MaxWebsocketClients int
}

func (c Config) withDefaults() Config {
	if c.MaxWebsocketClients <= 0 {
		c.MaxWebsocketClients = defaultMaxWebsocketClients
	}
	return c
}

// Server bundles the HTTP handlers of the service.
type Server struct {
	logger     *zap.Logger
	cfg        Config
	query      Query
	registry   Registry
	dispatcher Dispatcher
	chain      Chain
	metrics    Metrics

	wsClients atomic.Int64
	shutdown  chan struct{}
}

// NewServer constructs a Server.
func NewServer(cfg Config, query Query, registry Registry, dispatcher Dispatcher, chain Chain, metrics Metrics, logger *zap.Logger) *Server {
	return &Server{
		logger:     logger.Named("transport"),
		cfg:        cfg.withDefaults(),
		query:      query,
		registry:   registry,
		dispatcher: dispatcher,
		chain:      chain,
		metrics:    metrics,
		shutdown:   make(chan struct{}),
	}
}

// Handler returns the route table of the server.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/transactions", s.handleTransactionStatuses)
	mux.HandleFunc("/v1/utxos", s.handleAddressUTXOs)
	mux.HandleFunc("/ws", s.handleWebsocket)
	mux.HandleFunc("/health", s.handleHealth)
	return mux
}

// Close makes the websocket write pumps exit. In-flight HTTP requests are
// unaffected; the outer http.Server handles their draining.
func (s *Server) Close() {
	close(s.shutdown)
}

func (s *Server) handleTransactionStatuses(w http.ResponseWriter, r *http.Request) {
	started := time.Now()
	var err error
	defer func() {
		s.metrics.Observe("transaction_statuses", err, started)
	}()

	ids, err := s.readIDList(w, r)
	if err != nil {
		return
	}
	s.writeJSON(w, s.query.TransactionStatuses(ids))
}

func (s *Server) handleAddressUTXOs(w http.ResponseWriter, r *http.Request) {
	started := time.Now()
	var err error
	defer func() {
		s.metrics.Observe("address_utxos", err, started)
	}()

	addresses, err := s.readIDList(w, r)
	if err != nil {
		return
	}
	s.writeJSON(w, s.query.AddressUTXOs(addresses))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "use GET")
		return
	}

	height, hash, ok := s.chain.Tip()
	status := struct {
		Status string `json:"status"`
		Height uint64 `json:"height"`
		Hash   string `json:"hash,omitempty"`
	}{Status: "ok"}
	if ok {
		status.Height = height
		status.Hash = hash
	} else {
		status.Status = "syncing"
	}
	s.writeJSON(w, status)
}

// readIDList parses the request body, a bare JSON array of strings. Malformed
// entries inside a well-formed array are the query layer's concern; only a
// structurally invalid body is rejected here.
func (s *Server) readIDList(w http.ResponseWriter, r *http.Request) ([]string, error) {
	if r.Method != http.MethodPost {
		err := errMethodNotAllowed
		s.writeError(w, http.StatusMethodNotAllowed, "use POST")
		return nil, err
	}

	var ids []string
	if err := json.NewDecoder(r.Body).Decode(&ids); err != nil {
		s.writeError(w, http.StatusBadRequest, "body must be a JSON array of strings")
		return nil, err
	}
	return ids, nil
}

func (s *Server) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("response write failed", zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(map[string]string{"error": msg}); err != nil {
		s.logger.Warn("error response write failed", zap.Error(err))
	}
}
