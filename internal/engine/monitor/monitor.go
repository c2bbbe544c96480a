package monitor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/atomic"

	"github.com/go-theft-craft/voxel/internal/engine/pipeline"
	"github.com/go-theft-craft/voxel/internal/engine/render"
	"github.com/go-theft-craft/voxel/internal/engine/world"
)

// Snapshot is one sample of engine state.
type Snapshot struct {
	Time     time.Time      `json:"time"`
	World    world.Stats    `json:"world"`
	Pipeline pipeline.Stats `json:"pipeline"`
	Render   render.Stats   `json:"render"`
}

// Message is a frame sent to feed clients.
type Message struct {
	Type    string    `json:"type"` // "hello" or "stats"
	Session string    `json:"session"`
	Stats   *Snapshot `json:"stats,omitempty"`
}

// Server serves engine stats to loopback clients, as JSON on /stats and as a
// websocket feed on /ws.
type Server struct {
	log      *slog.Logger
	session  string
	sample   func() Snapshot
	interval time.Duration

	upgrader websocket.Upgrader
	clients  atomic.Int64
}

// New creates a Server that samples engine state every interval.
func New(session string, sample func() Snapshot, interval time.Duration, log *slog.Logger) *Server {
	if interval <= 0 {
		interval = time.Second
	}
	return &Server{
		log:      log,
		session:  session,
		sample:   sample,
		interval: interval,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 16 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// Clients returns the number of connected feed clients.
func (s *Server) Clients() int64 { return s.clients.Load() }

// Handler returns the HTTP handler for the monitor endpoints.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /stats", s.handleStats)
	mux.HandleFunc("GET /ws", s.handleFeed)
	return mux
}

// Run serves on addr until ctx is cancelled.
func (s *Server) Run(ctx context.Context, addr string) error {
	lc := net.ListenConfig{}
	ln, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", addr, err)
	}

	srv := &http.Server{Handler: s.Handler(), ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	s.log.Info("monitor started", "addr", ln.Addr().String())
	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve monitor: %w", err)
	}
	return nil
}

func (s *Server) handleStats(rw http.ResponseWriter, r *http.Request) {
	if !isLoopbackRemote(r.RemoteAddr) {
		http.Error(rw, "forbidden", http.StatusForbidden)
		return
	}
	snap := s.sample()
	rw.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(rw).Encode(Message{Type: "stats", Session: s.session, Stats: &snap})
}

func (s *Server) handleFeed(rw http.ResponseWriter, r *http.Request) {
	if !isLoopbackRemote(r.RemoteAddr) {
		http.Error(rw, "forbidden", http.StatusForbidden)
		return
	}
	conn, err := s.upgrader.Upgrade(rw, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	s.clients.Inc()
	defer s.clients.Dec()
	s.log.Debug("monitor client connected", "remote", r.RemoteAddr)

	// The feed is one-way; the reader only notices the client going away.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	if err := s.write(conn, Message{Type: "hello", Session: s.session}); err != nil {
		return
	}
	t := time.NewTicker(s.interval)
	defer t.Stop()
	for {
		snap := s.sample()
		if err := s.write(conn, Message{Type: "stats", Session: s.session, Stats: &snap}); err != nil {
			s.log.Debug("monitor client write failed", "remote", r.RemoteAddr, "error", err)
			return
		}
		select {
		case <-done:
			return
		case <-r.Context().Done():
			_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"), time.Now().Add(time.Second))
			return
		case <-t.C:
		}
	}
}

func (s *Server) write(conn *websocket.Conn, m Message) error {
	_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	return conn.WriteJSON(m)
}

func isLoopbackRemote(remoteAddr string) bool {
	host := remoteAddr
	if h, _, err := net.SplitHostPort(remoteAddr); err == nil {
		host = h
	}
	host = strings.TrimPrefix(host, "[")
	host = strings.TrimSuffix(host, "]")
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}
