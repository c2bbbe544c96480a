package config

import (
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"slices"
	"time"

	"github.com/go-theft-craft/voxel/pkg/world/gen"
)

// ErrInvalid is wrapped by every Validate failure.
var ErrInvalid = errors.New("invalid config")

// Config holds the engine configuration.
type Config struct {
	ViewDistance  int    `yaml:"view_distance"` // active grid edge in chunks
	Seed          int64  `yaml:"seed"`
	GeneratorType string `yaml:"generator"` // "default" or "flat"
	BlockPack     string `yaml:"block_pack"`
	BlockPackFile string `yaml:"block_pack_file,omitempty"`

	CacheCapacity    int `yaml:"cache_capacity"`
	EvictionBatch    int `yaml:"eviction_batch"`
	UpdateBatch      int `yaml:"update_batch"`
	ReadyQueue       int `yaml:"ready_queue"`
	EditQueue        int `yaml:"edit_queue"`
	RelaxationPasses int `yaml:"relaxation_passes"`
	MeshWorkers      int `yaml:"mesh_workers"`

	Daylight     float32 `yaml:"daylight"`
	TickRate     int     `yaml:"tick_rate"`
	MaxFrameSkip int     `yaml:"max_frame_skip"`

	StreamInterval time.Duration `yaml:"stream_interval"`
	StreamBurst    int           `yaml:"stream_burst"`

	MonitorAddr string `yaml:"monitor_addr,omitempty"` // empty disables the monitor
	ExportDir   string `yaml:"export_dir,omitempty"`   // empty disables mesh export
	LogLevel    string `yaml:"log_level"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		ViewDistance:     16,
		GeneratorType:    "default",
		BlockPack:        "classic",
		CacheCapacity:    1024,
		EvictionBatch:    16,
		UpdateBatch:      16,
		ReadyQueue:       256,
		EditQueue:        1024,
		RelaxationPasses: 16,
		MeshWorkers:      runtime.NumCPU(),
		Daylight:         0.95,
		TickRate:         60,
		MaxFrameSkip:     5,
		StreamInterval:   50 * time.Millisecond,
		StreamBurst:      4,
		LogLevel:         "info",
	}
}

// Merge applies file-loaded config values into cfg, but only for fields
// that were NOT explicitly set via CLI flags. explicitFlags contains the
// flag names that were explicitly provided on the command line.
// Zero values in fromFile are treated as unset.
func Merge(cfg *Config, fromFile *Config, explicitFlags map[string]bool) {
	mergeInt := func(flag string, dst *int, src int) {
		if !explicitFlags[flag] && src != 0 {
			*dst = src
		}
	}
	mergeString := func(flag string, dst *string, src string) {
		if !explicitFlags[flag] && src != "" {
			*dst = src
		}
	}

	mergeInt("view-distance", &cfg.ViewDistance, fromFile.ViewDistance)
	if !explicitFlags["seed"] && fromFile.Seed != 0 {
		cfg.Seed = fromFile.Seed
	}
	mergeString("generator", &cfg.GeneratorType, fromFile.GeneratorType)
	mergeString("block-pack", &cfg.BlockPack, fromFile.BlockPack)
	mergeString("block-pack-file", &cfg.BlockPackFile, fromFile.BlockPackFile)

	mergeInt("cache-capacity", &cfg.CacheCapacity, fromFile.CacheCapacity)
	mergeInt("eviction-batch", &cfg.EvictionBatch, fromFile.EvictionBatch)
	mergeInt("update-batch", &cfg.UpdateBatch, fromFile.UpdateBatch)
	mergeInt("ready-queue", &cfg.ReadyQueue, fromFile.ReadyQueue)
	mergeInt("edit-queue", &cfg.EditQueue, fromFile.EditQueue)
	mergeInt("relaxation-passes", &cfg.RelaxationPasses, fromFile.RelaxationPasses)
	mergeInt("mesh-workers", &cfg.MeshWorkers, fromFile.MeshWorkers)

	if !explicitFlags["daylight"] && fromFile.Daylight != 0 {
		cfg.Daylight = fromFile.Daylight
	}
	mergeInt("tick-rate", &cfg.TickRate, fromFile.TickRate)
	mergeInt("max-frame-skip", &cfg.MaxFrameSkip, fromFile.MaxFrameSkip)

	if !explicitFlags["stream-interval"] && fromFile.StreamInterval != 0 {
		cfg.StreamInterval = fromFile.StreamInterval
	}
	mergeInt("stream-burst", &cfg.StreamBurst, fromFile.StreamBurst)

	mergeString("monitor", &cfg.MonitorAddr, fromFile.MonitorAddr)
	mergeString("export-dir", &cfg.ExportDir, fromFile.ExportDir)
	mergeString("log-level", &cfg.LogLevel, fromFile.LogLevel)
}

// Validate reports every out-of-range field, each wrapped with ErrInvalid.
func (c *Config) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalid}, args...)...))
		}
	}

	check(c.ViewDistance >= 1 && c.ViewDistance <= 64, "view_distance %d not in [1, 64]", c.ViewDistance)
	check(slices.Contains(gen.Kinds, c.GeneratorType), "generator %q not one of %v", c.GeneratorType, gen.Kinds)
	check(c.BlockPack != "" || c.BlockPackFile != "", "block_pack or block_pack_file must be set")
	check(c.CacheCapacity >= 1, "cache_capacity %d < 1", c.CacheCapacity)
	check(c.EvictionBatch >= 1 && c.EvictionBatch <= c.CacheCapacity, "eviction_batch %d not in [1, cache_capacity]", c.EvictionBatch)
	check(c.UpdateBatch >= 1, "update_batch %d < 1", c.UpdateBatch)
	check(c.ReadyQueue >= 1, "ready_queue %d < 1", c.ReadyQueue)
	check(c.EditQueue >= 1, "edit_queue %d < 1", c.EditQueue)
	check(c.RelaxationPasses >= 1, "relaxation_passes %d < 1", c.RelaxationPasses)
	check(c.MeshWorkers >= 1, "mesh_workers %d < 1", c.MeshWorkers)
	check(c.Daylight >= 0 && c.Daylight <= 1, "daylight %v not in [0, 1]", c.Daylight)
	check(c.TickRate >= 1, "tick_rate %d < 1", c.TickRate)
	check(c.MaxFrameSkip >= 1, "max_frame_skip %d < 1", c.MaxFrameSkip)
	check(c.StreamInterval > 0, "stream_interval %v <= 0", c.StreamInterval)
	check(c.StreamBurst >= 1, "stream_burst %d < 1", c.StreamBurst)
	if _, err := c.Level(); err != nil {
		errs = append(errs, fmt.Errorf("%w: %w", ErrInvalid, err))
	}
	return errors.Join(errs...)
}

// Level parses LogLevel.
func (c *Config) Level() (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("log_level %q: %w", c.LogLevel, err)
	}
	return l, nil
}

// TickDuration returns the fixed simulation step.
func (c *Config) TickDuration() time.Duration {
	return time.Second / time.Duration(c.TickRate)
}
