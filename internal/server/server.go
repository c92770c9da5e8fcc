// Package server exposes the pathfinder over websockets.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/udisondev/jumppath/internal/pathfinder"
	"github.com/udisondev/jumppath/internal/pathfinding"
)

const writeTimeout = 5 * time.Second

// Config configures a Server.
type Config struct {
	// DefaultCharacter routes requests that carry no character.
	DefaultCharacter *pathfinding.Settings
}

// Server accepts path requests on /ws and reports counters on /stats.
type Server struct {
	pf       *pathfinder.Pathfinder
	cfg      Config
	upgrader websocket.Upgrader
	sessions atomic.Int32
}

// New creates a server backed by pf.
func New(pf *pathfinder.Pathfinder, cfg Config) *Server {
	return &Server{
		pf:  pf,
		cfg: cfg,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

// Handler returns the HTTP routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWS)
	mux.HandleFunc("/stats", s.handleStats)
	return mux
}

// Sessions returns the number of open websocket sessions.
func (s *Server) Sessions() int {
	return int(s.sessions.Load())
}

// ListenAndServe serves on addr (blocks until ctx is canceled).
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln (blocks until ctx is canceled).
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()

	slog.Info("websocket server listening", "address", ln.Addr().String())

	select {
	case err := <-errCh:
		return fmt.Errorf("serving: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down server: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serving: %w", err)
	}

	slog.Info("websocket server stopped")
	return nil
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(s.pf.Stats()); err != nil {
		slog.Error("encoding stats", "error", err)
	}
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("websocket upgrade failed", "remote", r.RemoteAddr, "error", err)
		return
	}

	sess := &session{
		conn:    conn,
		pending: make(map[int]struct{}),
	}

	s.sessions.Add(1)
	defer s.sessions.Add(-1)

	slog.Debug("session opened", "remote", r.RemoteAddr)
	s.serveSession(sess)
	slog.Debug("session closed", "remote", r.RemoteAddr)
}

func (s *Server) serveSession(sess *session) {
	defer func() {
		for _, id := range sess.drainPending() {
			s.pf.Cancel(id)
		}
		sess.conn.Close()
	}()

	for {
		_, payload, err := sess.conn.ReadMessage()
		if err != nil {
			return
		}

		var msg clientMessage
		if err := json.Unmarshal(payload, &msg); err != nil {
			slog.Debug("discarding malformed message", "error", err)
			if !sess.writeJSON(errorMessage{Type: TypeError, Error: "malformed message"}) {
				return
			}
			continue
		}

		if !s.handleMessage(sess, msg) {
			return
		}
	}
}

// handleMessage returns false once the connection is unusable.
func (s *Server) handleMessage(sess *session, msg clientMessage) bool {
	switch msg.Type {
	case TypeCompute:
		if msg.Initial == nil || msg.Goal == nil {
			return sess.writeJSON(errorMessage{Type: TypeError, Seq: msg.Seq, Error: "initial and goal are required"})
		}

		// Holding the write lock keeps the path from overtaking its ack.
		sess.writeMu.Lock()
		defer sess.writeMu.Unlock()

		id := s.pf.ComputePath(msg.request(s.cfg.DefaultCharacter), sess)
		sess.track(id)
		return sess.writeLocked(acceptedMessage{Type: TypeAccepted, Seq: msg.Seq, ID: id})

	case TypeCancel:
		// Ids of other sessions are left alone.
		if sess.untrack(msg.ID) {
			s.pf.Cancel(msg.ID)
		} else {
			slog.Debug("ignoring cancel of foreign request", "id", msg.ID)
		}
		return true

	default:
		return sess.writeJSON(errorMessage{Type: TypeError, Seq: msg.Seq, Error: fmt.Sprintf("unknown message type %q", msg.Type)})
	}
}

// session is one websocket connection. It receives the paths it requested.
type session struct {
	conn    *websocket.Conn
	writeMu sync.Mutex

	mu      sync.Mutex
	pending map[int]struct{}
}

// OnPath implements pathfinder.Receiver.
func (s *session) OnPath(id int, res pathfinder.Result) {
	if !s.writeJSON(newPathMessage(id, res)) {
		slog.Debug("dropping path for closed session", "id", id)
	}
	s.untrack(id)
}

func (s *session) track(id int) {
	s.mu.Lock()
	s.pending[id] = struct{}{}
	s.mu.Unlock()
}

// untrack reports whether id was pending on this session.
func (s *session) untrack(id int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.pending[id]
	delete(s.pending, id)
	return ok
}

func (s *session) drainPending() []int {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]int, 0, len(s.pending))
	for id := range s.pending {
		ids = append(ids, id)
	}
	clear(s.pending)
	return ids
}

func (s *session) writeJSON(v any) bool {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.writeLocked(v)
}

func (s *session) writeLocked(v any) bool {
	data, err := json.Marshal(v)
	if err != nil {
		slog.Error("marshaling message", "error", err)
		return true
	}

	if err := s.conn.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
		return false
	}
	return s.conn.WriteMessage(websocket.TextMessage, data) == nil
}
