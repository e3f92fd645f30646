// Package server provides an HTTP/WebSocket service exposing a token ledger:
// metadata and filtered notification history over plain HTTP, operations via
// JSON commands, and a live notification stream over WebSocket.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/holiman/uint256"

	"github.com/metacore-xyz/go-metacore/eventlog"
	"github.com/metacore-xyz/go-metacore/eventsource"
	"github.com/metacore-xyz/go-metacore/token"
)

// Server serves a single ledger instance. Operations are applied serially by
// the ledger's own lock; the server only fans notifications out. With a
// journal attached, operations are persisted before being acknowledged.
type Server struct {
	mu      sync.RWMutex
	ledger  *token.Ledger
	journal *eventsource.Journal
	clients map[*client]bool

	upgrader websocket.Upgrader
}

// client is one connected WebSocket observer.
type client struct {
	id     string
	conn   *websocket.Conn
	send   chan []byte
	kind   string // optional kind filter
	addr   string // optional address filter, lowercase hex
	server *Server
}

// New creates a server for the ledger and installs the notification
// broadcast observer.
func New(ledger *token.Ledger) *Server {
	s := &Server{
		ledger:  ledger,
		clients: make(map[*client]bool),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
	ledger.SetObserver(s.broadcast)
	return s
}

// NewJournaled creates a server over a journal-backed ledger: every accepted
// operation is appended to the journal's stream.
func NewJournaled(journal *eventsource.Journal) *Server {
	s := New(journal.Ledger())
	s.journal = journal
	return s
}

// Handler returns the HTTP handler for all server routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/info", s.handleInfo)
	mux.HandleFunc("/events", s.handleEvents)
	mux.HandleFunc("/op", s.handleOp)
	mux.HandleFunc("/ws", s.handleWS)
	return mux
}

// infoResponse is the JSON shape of /info.
type infoResponse struct {
	Name        string `json:"name"`
	Symbol      string `json:"symbol"`
	Decimals    uint8  `json:"decimals"`
	TotalSupply string `json:"totalSupply"`
	Owner       string `json:"owner"`
	Contract    string `json:"contract"`
}

func (s *Server) handleInfo(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	info := s.ledger.ContractInfo()
	writeJSON(w, http.StatusOK, infoResponse{
		Name:        info.Name,
		Symbol:      info.Symbol,
		Decimals:    info.Decimals,
		TotalSupply: info.TotalSupply.Dec(),
		Owner:       info.Owner.Hex(),
		Contract:    info.Contract.Hex(),
	})
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	lg := eventlog.FromLedger(s.ledger.Events())
	if kind := r.URL.Query().Get("kind"); kind != "" {
		lg = lg.FilterKind(kind)
	}
	if addr := r.URL.Query().Get("address"); addr != "" {
		lg = lg.FilterAddress(addr)
	}
	writeJSON(w, http.StatusOK, lg.Records)
}

// opRequest is a JSON operation command.
type opRequest struct {
	Op      string `json:"op"` // transfer, approve, transferFrom, mint
	Caller  string `json:"caller"`
	From    string `json:"from,omitempty"`
	To      string `json:"to,omitempty"`
	Spender string `json:"spender,omitempty"`
	Value   string `json:"value"` // decimal
}

type opResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

func (s *Server) handleOp(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req opRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, opResponse{Error: "invalid JSON: " + err.Error()})
		return
	}

	if err := s.apply(r.Context(), req); err != nil {
		status := http.StatusUnprocessableEntity
		switch {
		case errors.Is(err, token.ErrUnauthorized):
			status = http.StatusForbidden
		case isBadRequest(err):
			status = http.StatusBadRequest
		}
		writeJSON(w, status, opResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, opResponse{OK: true})
}

func (s *Server) apply(ctx context.Context, req opRequest) error {
	caller, err := parseAddress(req.Caller, "caller")
	if err != nil {
		return err
	}
	value := new(uint256.Int)
	if req.Value != "" {
		v, err := uint256.FromDecimal(req.Value)
		if err != nil {
			return badRequestError{"invalid value: " + err.Error()}
		}
		value = v
	}

	switch req.Op {
	case "transfer":
		to, err := parseAddress(req.To, "to")
		if err != nil {
			return err
		}
		if s.journal != nil {
			return s.journal.Transfer(ctx, caller, to, value)
		}
		_, err = s.ledger.Transfer(caller, to, value)
		return err
	case "approve":
		spender, err := parseAddress(req.Spender, "spender")
		if err != nil {
			return err
		}
		if s.journal != nil {
			return s.journal.Approve(ctx, caller, spender, value)
		}
		_, err = s.ledger.Approve(caller, spender, value)
		return err
	case "transferFrom":
		from, err := parseAddress(req.From, "from")
		if err != nil {
			return err
		}
		to, err := parseAddress(req.To, "to")
		if err != nil {
			return err
		}
		if s.journal != nil {
			return s.journal.TransferFrom(ctx, caller, from, to, value)
		}
		_, err = s.ledger.TransferFrom(caller, from, to, value)
		return err
	case "mint":
		to, err := parseAddress(req.To, "to")
		if err != nil {
			return err
		}
		if s.journal != nil {
			return s.journal.Mint(ctx, caller, to, value)
		}
		return s.ledger.Mint(caller, to, value)
	default:
		return badRequestError{"unknown op: " + req.Op}
	}
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade: %v", err)
		return
	}

	c := &client{
		id:     uuid.New().String(),
		conn:   conn,
		send:   make(chan []byte, 64),
		kind:   r.URL.Query().Get("kind"),
		addr:   strings.ToLower(r.URL.Query().Get("address")),
		server: s,
	}

	s.mu.Lock()
	s.clients[c] = true
	s.mu.Unlock()

	go c.writeLoop()
	go c.readLoop()
}

// broadcast fans a sealed record out to matching clients. Runs under the
// ledger lock, so it must never block: slow clients drop messages.
func (s *Server) broadcast(rec token.Record) {
	exported := eventlog.FromLedger([]token.Record{rec}).Records[0]
	data, err := json.Marshal(exported)
	if err != nil {
		log.Printf("marshal record: %v", err)
		return
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	for c := range s.clients {
		if c.kind != "" && c.kind != exported.Kind {
			continue
		}
		if c.addr != "" && !matchesAddress(exported, c.addr) {
			continue
		}
		select {
		case c.send <- data:
		default:
			// Client buffer full, drop.
		}
	}
}

func matchesAddress(r eventlog.Record, addr string) bool {
	for _, field := range []string{r.From, r.To, r.Owner, r.Spender, r.Contract, r.Deployer} {
		if field != "" && strings.ToLower(field) == addr {
			return true
		}
	}
	return false
}

func (c *client) writeLoop() {
	ticker := time.NewTicker(30 * time.Second)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case data, ok := <-c.send:
			if !ok {
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *client) readLoop() {
	defer c.server.removeClient(c)
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (s *Server) removeClient(c *client) {
	s.mu.Lock()
	if s.clients[c] {
		delete(s.clients, c)
		close(c.send)
	}
	s.mu.Unlock()
	c.conn.Close()
}

// ClientCount returns the number of connected WebSocket observers.
func (s *Server) ClientCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clients)
}

type badRequestError struct{ msg string }

func (e badRequestError) Error() string { return e.msg }

func isBadRequest(err error) bool {
	var bad badRequestError
	return errors.As(err, &bad)
}

func parseAddress(s, field string) (common.Address, error) {
	if !common.IsHexAddress(s) {
		return common.Address{}, badRequestError{"invalid " + field + " address: " + s}
	}
	return common.HexToAddress(s), nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("write response: %v", err)
	}
}
