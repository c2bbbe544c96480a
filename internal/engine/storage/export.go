package storage

import (
	"bufio"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/klauspost/compress/zstd"
	"go.uber.org/atomic"

	"github.com/go-theft-craft/voxel/pkg/world/chunk"
)

// ExportRecord is the content of one geometry export file.
type ExportRecord struct {
	Session  string      `json:"session"`
	Exported time.Time   `json:"exported"`
	Quads    int         `json:"quads"`
	Mesh     *chunk.Mesh `json:"mesh"`
}

// Exporter writes chunk meshes as zstd-compressed JSON, one file per chunk,
// under <dir>/<session>/. A newer mesh for the same chunk replaces the file.
type Exporter struct {
	dir     string
	session string
	log     *slog.Logger
	written atomic.Int64
}

// NewExporter creates the session directory under dir.
func NewExporter(dir, session string, log *slog.Logger) (*Exporter, error) {
	d := filepath.Join(dir, session)
	if err := os.MkdirAll(d, 0o755); err != nil {
		return nil, fmt.Errorf("create directory %s: %w", d, err)
	}
	return &Exporter{dir: d, session: session, log: log}, nil
}

// Dir returns the directory export files are written to.
func (e *Exporter) Dir() string { return e.dir }

// Written returns the number of files written so far.
func (e *Exporter) Written() int64 { return e.written.Load() }

// Path returns the export file path for a chunk.
func (e *Exporter) Path(p chunk.Pos) string {
	return filepath.Join(e.dir, fmt.Sprintf("chunk_%d_%d.json.zst", p.X, p.Z))
}

// Export writes m and returns the file path.
func (e *Exporter) Export(m *chunk.Mesh) (string, error) {
	rec := ExportRecord{Session: e.session, Exported: time.Now().UTC(), Quads: m.Quads(), Mesh: m}
	path := e.Path(m.Pos)
	err := atomicWrite(path, func(f *os.File) error {
		enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedFastest))
		if err != nil {
			return err
		}
		bw := bufio.NewWriter(enc)
		if err := json.NewEncoder(bw).Encode(&rec); err != nil {
			enc.Close()
			return fmt.Errorf("encode mesh: %w", err)
		}
		if err := bw.Flush(); err != nil {
			enc.Close()
			return err
		}
		return enc.Close()
	})
	if err != nil {
		return "", fmt.Errorf("export chunk %s: %w", m.Pos, err)
	}
	e.written.Inc()
	e.log.Debug("exported mesh", "chunk", m.Pos, "quads", rec.Quads, "path", path)
	return path, nil
}

// ReadExport decodes an export file.
func ReadExport(path string) (*ExportRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open export: %w", err)
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("open zstd stream: %w", err)
	}
	defer dec.Close()

	var rec ExportRecord
	if err := json.NewDecoder(bufio.NewReader(dec)).Decode(&rec); err != nil {
		return nil, fmt.Errorf("decode export %s: %w", path, err)
	}
	return &rec, nil
}
