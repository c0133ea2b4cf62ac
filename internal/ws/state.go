package ws

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	diag "github.com/coreman2200/lightpaint/internal/diagnostics"
)

// queueLen bounds each client's backlog; frames past it are dropped.
const queueLen = 64

const writeWait = 200 * time.Millisecond

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// State fans animator frames and diagnostics out to websocket subscribers.
type State struct {
	mu        sync.RWMutex
	leds      int
	rows      int
	state     string
	frameID   uint64
	startTime time.Time

	clients     map[*client]struct{}
	diagClients map[*client]struct{}
	upgrader    websocket.Upgrader
	dropped     atomic.Uint64
}

func NewState(leds, rows int) *State {
	return &State{
		leds:        leds,
		rows:        rows,
		state:       "idle",
		startTime:   time.Now(),
		clients:     map[*client]struct{}{},
		diagClients: map[*client]struct{}{},
		upgrader:    websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }},
	}
}

type frame struct {
	T       int64  `json:"t"`
	FrameID uint64 `json:"frame_id"`
	Row     int    `json:"row"`
	Pass    int    `json:"pass"`
	RGB     []byte `json:"rgb"`
}

// SetState records the animator state reported by /health.
func (s *State) SetState(name string) {
	s.mu.Lock()
	s.state = name
	s.mu.Unlock()
}

// PushFrame queues rgb for every frame subscriber. Row -1 is the blank frame.
// It never blocks on a slow client.
func (s *State) PushFrame(pass, row int, rgb []byte) {
	s.mu.Lock()
	s.frameID++
	id := s.frameID
	s.mu.Unlock()

	b, err := json.Marshal(frame{T: time.Now().UnixNano(), FrameID: id, Row: row, Pass: pass, RGB: rgb})
	if err != nil {
		log.Debug().Err(err).Msg("marshal frame")
		return
	}
	s.broadcast(s.clients, b)
}

func (s *State) PushDiag(d diag.Diagnostic) {
	b, err := json.Marshal(d)
	if err != nil {
		log.Debug().Err(err).Msg("marshal diagnostic")
		return
	}
	s.broadcast(s.diagClients, b)
}

func (s *State) broadcast(set map[*client]struct{}, b []byte) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for c := range set {
		select {
		case c.send <- b:
		default:
			s.dropped.Add(1)
		}
	}
}

func (s *State) HandleFramesWS(w http.ResponseWriter, r *http.Request) {
	s.subscribe(w, r, s.clients)
}

func (s *State) HandleDiagWS(w http.ResponseWriter, r *http.Request) {
	s.subscribe(w, r, s.diagClients)
}

func (s *State) subscribe(w http.ResponseWriter, r *http.Request, set map[*client]struct{}) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	c := &client{conn: conn, send: make(chan []byte, queueLen)}
	s.mu.Lock()
	set[c] = struct{}{}
	s.mu.Unlock()

	go s.writePump(c)
	go func() {
		defer func() {
			s.mu.Lock()
			delete(set, c)
			close(c.send)
			s.mu.Unlock()
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

func (s *State) writePump(c *client) {
	defer c.conn.Close()
	for b := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, b); err != nil {
			log.Debug().Err(err).Msg("write frame")
			return
		}
	}
}

func (s *State) HandleHealth(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	resp := map[string]any{
		"frame_id": s.frameID,
		"uptime_s": time.Since(s.startTime).Seconds(),
		"leds":     s.leds,
		"rows":     s.rows,
		"state":    s.state,
		"dropped":  s.dropped.Load(),
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

func (s *State) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.HandleFramesWS)
	mux.HandleFunc("/diag", s.HandleDiagWS)
	mux.HandleFunc("/health", s.HandleHealth)
	return withCORS(mux)
}

// Serve listens on addr until ctx is done. The returned channel reports the
// server's exit error, if any.
func (s *State) Serve(ctx context.Context, addr string) (net.Addr, <-chan error, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, nil, err
	}
	srv := &http.Server{
		Handler:     s.Handler(),
		ReadTimeout: 5 * time.Second,
		IdleTimeout: 60 * time.Second,
	}
	done := make(chan error, 1)
	go func() {
		log.Info().Str("addr", ln.Addr().String()).Msg("monitor listening")
		err := srv.Serve(ln)
		if err == http.ErrServerClosed {
			err = nil
		}
		done <- err
	}()
	go func() {
		<-ctx.Done()
		_ = srv.Close()
	}()
	return ln.Addr(), done, nil
}

func withCORS(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(200)
			return
		}
		h.ServeHTTP(w, r)
	})
}
