package storage

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/go-cmp/cmp"

	"github.com/go-theft-craft/voxel/internal/engine/config"
	"github.com/go-theft-craft/voxel/pkg/world/chunk"
)

func discard() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func TestLoadConfigMissingFile(t *testing.T) {
	cfg := config.DefaultConfig()
	if err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"), cfg, discard()); err != nil {
		t.Fatalf("LoadConfig() = %v", err)
	}
	if diff := cmp.Diff(config.DefaultConfig(), cfg); diff != "" {
		t.Errorf("config changed (-want +got):\n%s", diff)
	}
}

func TestConfigRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "voxeld.yaml")
	want := config.DefaultConfig()
	want.Seed = 42
	want.GeneratorType = "flat"
	want.StreamInterval = 120 * time.Millisecond
	want.MonitorAddr = "127.0.0.1:7070"

	if err := SaveConfig(path, want); err != nil {
		t.Fatalf("SaveConfig() = %v", err)
	}
	if _, err := os.Stat(path + ".tmp"); !errors.Is(err, os.ErrNotExist) {
		t.Error("temp file left behind")
	}

	got := &config.Config{}
	if err := LoadConfig(path, got, discard()); err != nil {
		t.Fatalf("LoadConfig() = %v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadConfigPartial(t *testing.T) {
	path := filepath.Join(t.TempDir(), "voxeld.yaml")
	data := "view_distance: 8\nstream_interval: 250ms\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	got := &config.Config{}
	if err := LoadConfig(path, got, discard()); err != nil {
		t.Fatalf("LoadConfig() = %v", err)
	}
	if got.ViewDistance != 8 {
		t.Errorf("ViewDistance = %d, want 8", got.ViewDistance)
	}
	if got.StreamInterval != 250*time.Millisecond {
		t.Errorf("StreamInterval = %v, want 250ms", got.StreamInterval)
	}
	if got.Seed != 0 {
		t.Errorf("Seed = %d, want unset", got.Seed)
	}
}

func TestLoadConfigInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "voxeld.yaml")
	if err := os.WriteFile(path, []byte("view_distance: [1, 2\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := LoadConfig(path, &config.Config{}, discard()); err == nil {
		t.Error("LoadConfig() accepted malformed YAML")
	}
}

func TestExportRoundTrip(t *testing.T) {
	e, err := NewExporter(t.TempDir(), "session-1", discard())
	if err != nil {
		t.Fatal(err)
	}
	m := &chunk.Mesh{
		Pos: chunk.Pos{X: -3, Z: 7},
		Opaque: chunk.Buffers{
			Vertices:  []mgl32.Vec3{{0, 1, 0}, {1, 1, 0}, {1, 1, 1}, {0, 1, 1}},
			TexCoords: []mgl32.Vec2{{0, 0}, {0.0624, 0}, {0.0624, 0.0624}, {0, 0.0624}},
			Colors:    []mgl32.Vec4{{0.95, 0.95, 0.95, 1}, {0.95, 0.95, 0.95, 1}, {0.95, 0.95, 0.95, 1}, {0.95, 0.95, 0.95, 1}},
		},
	}

	path, err := e.Export(m)
	if err != nil {
		t.Fatalf("Export() = %v", err)
	}
	if path != e.Path(m.Pos) {
		t.Errorf("Export() path = %s, want %s", path, e.Path(m.Pos))
	}
	if e.Written() != 1 {
		t.Errorf("Written() = %d, want 1", e.Written())
	}

	rec, err := ReadExport(path)
	if err != nil {
		t.Fatalf("ReadExport() = %v", err)
	}
	if rec.Session != "session-1" || rec.Quads != 1 {
		t.Errorf("record header = %q/%d, want session-1/1", rec.Session, rec.Quads)
	}
	if diff := cmp.Diff(m, rec.Mesh); diff != "" {
		t.Errorf("mesh mismatch (-want +got):\n%s", diff)
	}
}

func TestReadExportNotZstd(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plain.json.zst")
	if err := os.WriteFile(path, []byte(`{"session":"x"}`), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := ReadExport(path); err == nil {
		t.Error("ReadExport() accepted an uncompressed file")
	}
}
