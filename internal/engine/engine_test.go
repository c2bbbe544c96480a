package engine

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/go-theft-craft/voxel/internal/engine/config"
	"github.com/go-theft-craft/voxel/internal/engine/render"
	"github.com/go-theft-craft/voxel/internal/engine/storage"
	"github.com/go-theft-craft/voxel/pkg/world/block"
	"github.com/go-theft-craft/voxel/pkg/world/chunk"
)

func discard() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func testConfig(t *testing.T) *config.Config {
	cfg := config.DefaultConfig()
	cfg.ViewDistance = 3
	cfg.GeneratorType = "flat"
	cfg.MeshWorkers = 2
	cfg.CacheCapacity = 64
	cfg.ExportDir = t.TempDir()
	cfg.MonitorAddr = "127.0.0.1:0"
	cfg.StreamInterval = time.Millisecond
	return cfg
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := testConfig(t)
	cfg.ViewDistance = 0
	if _, err := New(cfg, discard()); !errors.Is(err, config.ErrInvalid) {
		t.Errorf("New() = %v, want ErrInvalid", err)
	}
}

func TestNewUnknownPack(t *testing.T) {
	cfg := testConfig(t)
	cfg.BlockPack = "missing"
	if _, err := New(cfg, discard()); !errors.Is(err, block.ErrUnknownPack) {
		t.Errorf("New() = %v, want ErrUnknownPack", err)
	}
}

func TestStartRendersAndExports(t *testing.T) {
	h := &render.Headless{}
	e, err := New(testConfig(t), discard(), WithRenderer(h), WithTick(func(e *Engine) {
		e.World().SetPlayerPosition(mgl32.Vec3{8, 10, 8})
	}))
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- e.Start(ctx) }()

	deadline := time.Now().Add(5 * time.Second)
	origin := e.Exporter().Path(chunk.Pos{})
	for h.LastQuads() == 0 || e.Exporter().Written() < 9 || !exists(origin) {
		if time.Now().After(deadline) {
			cancel()
			t.Fatalf("engine produced no geometry: %+v", e.Snapshot())
		}
		time.Sleep(10 * time.Millisecond)
	}
	cancel()
	if err := <-done; err != nil {
		t.Fatalf("Start() = %v", err)
	}

	rec, err := storage.ReadExport(origin)
	if err != nil {
		t.Fatalf("ReadExport() = %v", err)
	}
	if rec.Session != e.Session().String() {
		t.Errorf("export session = %s, want %s", rec.Session, e.Session())
	}
	if rec.Mesh.Opaque.Empty() {
		t.Error("exported mesh has no opaque geometry")
	}
	if s := e.Snapshot(); s.World.Active != 9 || s.Render.Frames == 0 {
		t.Errorf("Snapshot() = %+v", s)
	}
}

func TestNewBlockPackFile(t *testing.T) {
	path := t.TempDir() + "/pack.json"
	pack := `{"name":"tiny","always_transparent":0,"blocks":[
		{"id":0,"name":"air","invisible":true,"translucent":true,"penetrable":true},
		{"id":1,"name":"rock","casts_shadows":true}
	]}`
	if err := os.WriteFile(path, []byte(pack), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg := testConfig(t)
	cfg.BlockPackFile = path
	e, err := New(cfg, discard())
	if err != nil {
		t.Fatalf("New() = %v", err)
	}
	defer e.Pipeline().Close()
	if e.Blocks().Name() != "tiny" {
		t.Errorf("Blocks().Name() = %q, want tiny", e.Blocks().Name())
	}
}
