package monitor

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/go-theft-craft/voxel/internal/engine/pipeline"
	"github.com/go-theft-craft/voxel/internal/engine/world"
)

func discard() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func newServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()
	n := 0
	sample := func() Snapshot {
		n++
		return Snapshot{
			World:    world.Stats{Active: 9, Pending: n},
			Pipeline: pipeline.Stats{Generated: int64(n)},
		}
	}
	s := New("sess-1", sample, 10*time.Millisecond, discard())
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return s, ts
}

func TestStatsEndpoint(t *testing.T) {
	_, ts := newServer(t)

	resp, err := http.Get(ts.URL + "/stats")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	var m Message
	if err := json.NewDecoder(resp.Body).Decode(&m); err != nil {
		t.Fatal(err)
	}
	if m.Type != "stats" || m.Session != "sess-1" || m.Stats == nil {
		t.Fatalf("message = %+v", m)
	}
	if m.Stats.World.Active != 9 {
		t.Errorf("World.Active = %d, want 9", m.Stats.World.Active)
	}
}

func TestFeed(t *testing.T) {
	s, ts := newServer(t)

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial() = %v", err)
	}
	defer conn.Close()

	var hello Message
	if err := conn.ReadJSON(&hello); err != nil {
		t.Fatal(err)
	}
	if hello.Type != "hello" || hello.Session != "sess-1" {
		t.Errorf("hello = %+v", hello)
	}

	var last int64
	for i := range 3 {
		var m Message
		conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		if err := conn.ReadJSON(&m); err != nil {
			t.Fatalf("read frame %d: %v", i, err)
		}
		if m.Type != "stats" || m.Stats == nil {
			t.Fatalf("frame %d = %+v", i, m)
		}
		if m.Stats.Pipeline.Generated <= last {
			t.Errorf("frame %d not newer: %d after %d", i, m.Stats.Pipeline.Generated, last)
		}
		last = m.Stats.Pipeline.Generated
	}
	if s.Clients() != 1 {
		t.Errorf("Clients() = %d, want 1", s.Clients())
	}
}

func TestLoopbackOnly(t *testing.T) {
	s := New("sess-1", func() Snapshot { return Snapshot{} }, time.Second, discard())
	req := httptest.NewRequest(http.MethodGet, "/stats", nil)
	req.RemoteAddr = "203.0.113.9:5555"
	rw := httptest.NewRecorder()
	s.Handler().ServeHTTP(rw, req)
	if rw.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", rw.Code)
	}
}

func TestIsLoopbackRemote(t *testing.T) {
	tests := []struct {
		addr string
		want bool
	}{
		{"127.0.0.1:80", true},
		{"[::1]:80", true},
		{"10.0.0.1:80", false},
		{"garbage", false},
	}
	for _, tt := range tests {
		if got := isLoopbackRemote(tt.addr); got != tt.want {
			t.Errorf("isLoopbackRemote(%q) = %v, want %v", tt.addr, got, tt.want)
		}
	}
}
