package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"

	"github.com/go-theft-craft/voxel/internal/engine"
	"github.com/go-theft-craft/voxel/internal/engine/config"
	"github.com/go-theft-craft/voxel/internal/engine/storage"
)

func main() {
	cfg := config.DefaultConfig()
	daylight := float64(cfg.Daylight)

	var (
		configPath  = flag.String("config", "voxeld.yaml", "YAML config file, ignored when missing")
		writeConfig = flag.Bool("write-config", false, "write the effective config to -config and exit")
		duration    = flag.Duration("duration", 0, "stop after this long (0 runs until interrupted)")
		walkSpeed   = flag.Float64("walk-speed", 0.25, "scripted player speed in blocks per tick along +X")
		buildEvery  = flag.Int("build-every", 120, "place a pillar in front of the player every N ticks (0 disables)")
		showStats   = flag.Bool("stats", false, "print colored stats to stderr every second")
	)

	flag.IntVar(&cfg.ViewDistance, "view-distance", cfg.ViewDistance, "active grid edge in chunks")
	flag.Int64Var(&cfg.Seed, "seed", cfg.Seed, "world seed")
	flag.StringVar(&cfg.GeneratorType, "generator", cfg.GeneratorType, "terrain generator (default, flat)")
	flag.StringVar(&cfg.BlockPack, "block-pack", cfg.BlockPack, "registered block pack name")
	flag.StringVar(&cfg.BlockPackFile, "block-pack-file", cfg.BlockPackFile, "JSON block pack file, overrides -block-pack")
	flag.IntVar(&cfg.CacheCapacity, "cache-capacity", cfg.CacheCapacity, "chunk cache capacity")
	flag.IntVar(&cfg.EvictionBatch, "eviction-batch", cfg.EvictionBatch, "chunks evicted at once when the cache is full")
	flag.IntVar(&cfg.UpdateBatch, "update-batch", cfg.UpdateBatch, "chunks processed per update pass")
	flag.IntVar(&cfg.ReadyQueue, "ready-queue", cfg.ReadyQueue, "ready mesh queue length")
	flag.IntVar(&cfg.EditQueue, "edit-queue", cfg.EditQueue, "block edit queue length")
	flag.IntVar(&cfg.RelaxationPasses, "relaxation-passes", cfg.RelaxationPasses, "light diffusion passes per chunk update")
	flag.IntVar(&cfg.MeshWorkers, "mesh-workers", cfg.MeshWorkers, "parallel mesh builders")
	flag.Float64Var(&daylight, "daylight", daylight, "global brightness factor")
	flag.IntVar(&cfg.TickRate, "tick-rate", cfg.TickRate, "simulation ticks per second")
	flag.IntVar(&cfg.MaxFrameSkip, "max-frame-skip", cfg.MaxFrameSkip, "ticks run per frame before drawing")
	flag.DurationVar(&cfg.StreamInterval, "stream-interval", cfg.StreamInterval, "minimum time between streaming passes")
	flag.IntVar(&cfg.StreamBurst, "stream-burst", cfg.StreamBurst, "streaming passes allowed back to back")
	flag.StringVar(&cfg.MonitorAddr, "monitor", cfg.MonitorAddr, "loopback address for the stats monitor (empty disables)")
	flag.StringVar(&cfg.ExportDir, "export-dir", cfg.ExportDir, "directory for zstd mesh exports (empty disables)")
	flag.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level (debug, info, warn, error)")
	flag.Parse()
	cfg.Daylight = float32(daylight)

	bootLog := slog.New(slog.NewTextHandler(os.Stdout, nil))

	explicit := make(map[string]bool)
	flag.Visit(func(f *flag.Flag) { explicit[f.Name] = true })

	fromFile := &config.Config{}
	if err := storage.LoadConfig(*configPath, fromFile, bootLog); err != nil {
		bootLog.Error("load config", "error", err)
		os.Exit(1)
	}
	config.Merge(cfg, fromFile, explicit)

	if *writeConfig {
		if err := storage.SaveConfig(*configPath, cfg); err != nil {
			bootLog.Error("save config", "error", err)
			os.Exit(1)
		}
		bootLog.Info("wrote config", "path", *configPath)
		return
	}

	level, err := cfg.Level()
	if err != nil {
		bootLog.Error("parse log level", "error", err)
		os.Exit(1)
	}
	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))

	w := newWalker(float32(*walkSpeed), *buildEvery)
	eng, err := engine.New(cfg, log, engine.WithTick(w.tick))
	if err != nil {
		log.Error("create engine", "error", err)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	if *duration > 0 {
		var stop context.CancelFunc
		ctx, stop = context.WithTimeout(ctx, *duration)
		defer stop()
	}

	if *showStats {
		go printStats(ctx, eng)
	}

	if err := eng.Start(ctx); err != nil {
		log.Error("engine error", "error", err)
		os.Exit(1)
	}
}

func printStats(ctx context.Context, eng *engine.Engine) {
	label := color.New(color.FgCyan, color.Bold).SprintFunc()
	warn := color.New(color.FgYellow).SprintFunc()
	t := time.NewTicker(time.Second)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
		}
		s := eng.Snapshot()
		pending := fmt.Sprint(s.World.Pending)
		if s.World.Pending > 0 {
			pending = warn(pending)
		}
		fmt.Fprintf(color.Error, "%s chunk %s active %d pending %s cache %d/%d  %s gen %d mesh %d ready %d  %s frames %d meshes %d\n",
			label("world"), s.World.PlayerChunk, s.World.Active, pending, s.World.Cached, s.World.CacheCap,
			label("pipeline"), s.Pipeline.Generated, s.Pipeline.Meshed, s.Pipeline.ReadyQueued,
			label("render"), s.Render.Frames, s.Render.Meshes)
	}
}
